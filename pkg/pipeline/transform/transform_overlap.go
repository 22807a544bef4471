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

package transform

import (
	"github.com/netobserv/asn-ranges/pkg/asn"
	"github.com/netobserv/asn-ranges/pkg/pipeline/cidr"
	"github.com/netobserv/asn-ranges/pkg/pipeline/extract/origin"
	log "github.com/sirupsen/logrus"
)

// SplitAnnouncements partitions the announced blocks: included holds the
// blocks with at least one target origin, excluded the blocks announced by
// non-target ASNs only. Both are simplified.
func SplitAnnouncements(trie *origin.Trie, targets asn.Set) (included, excluded *cidr.Set) {
	included, excluded = &cidr.Set{}, &cidr.Set{}
	for p, asns := range trie.All() {
		// trie blocks are canonical
		if asns.Intersects(targets) {
			_ = included.Add(p)
		} else {
			_ = excluded.Add(p)
		}
	}
	included.Simplify()
	excluded.Simplify()
	return included, excluded
}

// ExcludeOverlaps removes from included every excluded block that punches a
// hole into a strictly shorter included block. Excluded blocks of equal or
// shorter length than the included block holding them are kept.
func ExcludeOverlaps(included, excluded *cidr.Set) *cidr.Set {
	mask := &cidr.Set{}
	for b := range excluded.All() {
		if super, ok := included.Covers(b); ok && super.Bits() < b.Bits() {
			_ = mask.Add(b)
		}
	}
	out := included.Clone()
	out.Difference(mask)
	out.Simplify()
	log.Debugf("ExcludeOverlaps: included = %d, excluded = %d, mask = %d, out = %d",
		included.Len(), excluded.Len(), mask.Len(), out.Len())
	return out
}
