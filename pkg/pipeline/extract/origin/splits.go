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
	"net/netip"
	"slices"

	"go4.org/netipx"
)

// SplitIndex records, per family, the addresses where announced blocks start
// and where they stop. Between two consecutive points no announced block
// boundary exists, so the origin set is constant on the interval.
type SplitIndex struct {
	v4, v6     map[netip.Addr]struct{}
	top4, top6 bool
}

func NewSplitIndex() *SplitIndex {
	return &SplitIndex{
		v4: map[netip.Addr]struct{}{},
		v6: map[netip.Addr]struct{}{},
	}
}

func (s *SplitIndex) family(is4 bool) map[netip.Addr]struct{} {
	if is4 {
		return s.v4
	}
	return s.v6
}

// InsertPrefix adds the network address of p and the address following its
// last one. A block reaching the top of the space marks the family as closed
// at the top instead.
func (s *SplitIndex) InsertPrefix(p netip.Prefix) {
	is4 := p.Addr().Is4()
	points := s.family(is4)
	points[p.Addr()] = struct{}{}
	next := netipx.PrefixLastIP(p).Next()
	if next.IsValid() {
		points[next] = struct{}{}
		return
	}
	if is4 {
		s.top4 = true
	} else {
		s.top6 = true
	}
}

// Points returns the split points of one family in increasing order.
func (s *SplitIndex) Points(is4 bool) []netip.Addr {
	points := s.family(is4)
	out := make([]netip.Addr, 0, len(points))
	for a := range points {
		out = append(out, a)
	}
	slices.SortFunc(out, netip.Addr.Compare)
	return out
}

// TopClosed reports whether an announced block of the family ends at its
// last address.
func (s *SplitIndex) TopClosed(is4 bool) bool {
	if is4 {
		return s.top4
	}
	return s.top6
}

func (s *SplitIndex) Len() int {
	return len(s.v4) + len(s.v6)
}

// Merge unions o into s.
func (s *SplitIndex) Merge(o *SplitIndex) {
	for a := range o.v4 {
		s.v4[a] = struct{}{}
	}
	for a := range o.v6 {
		s.v6[a] = struct{}{}
	}
	s.top4 = s.top4 || o.top4
	s.top6 = s.top6 || o.top6
}
