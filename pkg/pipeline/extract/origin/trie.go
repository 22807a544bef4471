/*
 * Copyright (C) 2025 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package origin

import (
	"iter"
	"net/netip"

	"github.com/gaissmai/bart"
	"github.com/netobserv/asn-ranges/pkg/asn"
)

// Trie maps announced blocks to the union of their origin ASNs.
type Trie struct {
	table bart.Table[asn.Set]
}

func NewTrie() *Trie {
	return &Trie{}
}

// Insert unions asns into the entry for p, creating it when missing.
func (t *Trie) Insert(p netip.Prefix, asns asn.Set) {
	if len(asns) == 0 {
		return
	}
	t.table.Modify(p, func(old asn.Set, _ bool) (asn.Set, bool) {
		return old.Union(asns), false
	})
}

func (t *Trie) Get(p netip.Prefix) (asn.Set, bool) {
	return t.table.Get(p)
}

// LookupAddr returns the most specific inserted block containing a.
func (t *Trie) LookupAddr(a netip.Addr) (netip.Prefix, asn.Set, bool) {
	if !a.IsValid() {
		return netip.Prefix{}, nil, false
	}
	return t.table.LookupPrefixLPM(netip.PrefixFrom(a, a.BitLen()))
}

func (t *Trie) Len() int {
	return t.table.Size()
}

// All iterates the entries, v4 first, sorted by address then prefix length.
func (t *Trie) All() iter.Seq2[netip.Prefix, asn.Set] {
	return t.table.AllSorted()
}
