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

package aggregate

import (
	"maps"
	"net/netip"
	"slices"

	"github.com/netobserv/asn-ranges/pkg/asn"
	"github.com/netobserv/asn-ranges/pkg/pipeline/cidr"
)

// Ranges holds, per ASN, the simplified blocks it originates.
type Ranges map[uint32]*cidr.Set

// Select returns the simplified union of the ranges of asns.
func (r Ranges) Select(asns asn.Set) *cidr.Set {
	out := &cidr.Set{}
	for _, a := range asns {
		if set, ok := r[a]; ok {
			out.Union(set)
		}
	}
	out.Simplify()
	return out
}

// ASNs returns the ASNs holding ranges, sorted.
func (r Ranges) ASNs() []uint32 {
	return slices.Sorted(maps.Keys(r))
}

// Prefixes returns the blocks of one family per ASN. ASNs without block in
// the family are left out.
func (r Ranges) Prefixes(is4 bool) map[uint32][]netip.Prefix {
	out := map[uint32][]netip.Prefix{}
	for a, set := range r {
		if fam := set.Family(is4); fam.Len() > 0 {
			out[a] = fam.Prefixes()
		}
	}
	return out
}

// FromPrefixes rebuilds Ranges from per family block lists.
func FromPrefixes(families ...map[uint32][]netip.Prefix) (Ranges, error) {
	r := Ranges{}
	for _, fam := range families {
		for a, prefixes := range fam {
			set, found := r[a]
			if !found {
				set = &cidr.Set{}
				r[a] = set
			}
			for _, p := range prefixes {
				if err := set.Add(p); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, set := range r {
		set.Simplify()
	}
	return r, nil
}
