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
	"net/netip"

	"github.com/netobserv/asn-ranges/pkg/pipeline/cidr"
	"github.com/netobserv/asn-ranges/pkg/pipeline/extract/origin"
	log "github.com/sirupsen/logrus"
)

var (
	lastV4 = netip.AddrFrom4([4]byte{0xff, 0xff, 0xff, 0xff})
	lastV6 = netip.AddrFrom16([16]byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	})
)

func lastAddr(is4 bool) netip.Addr {
	if is4 {
		return lastV4
	}
	return lastV6
}

// Aggregate walks the elementary intervals delimited by consecutive split
// points. The origin set of an interval is the one of the most specific block
// holding its first address; the interval is converted to CIDR blocks once and
// credited to every ASN of that set.
func Aggregate(trie *origin.Trie, splits *origin.SplitIndex) Ranges {
	log.Debugf("entering Aggregate, blocks = %d, split points = %d", trie.Len(), splits.Len())
	ranges := Ranges{}
	for _, is4 := range []bool{true, false} {
		points := splits.Points(is4)
		for i, start := range points {
			_, asns, ok := trie.LookupAddr(start)
			if !ok {
				continue
			}
			var blocks []netip.Prefix
			switch {
			case i+1 < len(points):
				blocks = cidr.Convert(start, points[i+1])
			case splits.TopClosed(is4):
				blocks = cidr.ConvertInclusive(start, lastAddr(is4))
			}
			if len(blocks) == 0 {
				continue
			}
			for _, a := range asns {
				set, found := ranges[a]
				if !found {
					set = &cidr.Set{}
					ranges[a] = set
				}
				for _, b := range blocks {
					// converted blocks are canonical
					_ = set.Add(b)
				}
			}
		}
	}
	for _, set := range ranges {
		set.Simplify()
	}
	log.Debugf("exiting Aggregate, ASNs = %d", len(ranges))
	return ranges
}
