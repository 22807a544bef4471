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
	"testing"

	"github.com/netobserv/asn-ranges/pkg/asn"
	"github.com/netobserv/asn-ranges/pkg/pipeline/cidr"
	"github.com/netobserv/asn-ranges/pkg/pipeline/extract/origin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type announce struct {
	prefix string
	asns   []uint32
}

func build(announces ...announce) (*origin.Trie, *origin.SplitIndex) {
	trie, splits := origin.NewTrie(), origin.NewSplitIndex()
	for _, a := range announces {
		p := netip.MustParsePrefix(a.prefix)
		trie.Insert(p, asn.NewSet(a.asns...))
		splits.InsertPrefix(p)
	}
	return trie, splits
}

func prefixes(ss ...string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(ss))
	for _, s := range ss {
		out = append(out, netip.MustParsePrefix(s))
	}
	return out
}

func TestAggregateMoreSpecificOrigin(t *testing.T) {
	ranges := Aggregate(build(
		announce{"10.0.0.0/8", []uint32{1000}},
		announce{"10.255.0.0/16", []uint32{1001}},
	))

	assert.Equal(t, []uint32{1000, 1001}, ranges.ASNs())
	assert.Equal(t, prefixes(
		"10.0.0.0/9", "10.128.0.0/10", "10.192.0.0/11", "10.224.0.0/12",
		"10.240.0.0/13", "10.248.0.0/14", "10.252.0.0/15", "10.254.0.0/16",
	), ranges[1000].Prefixes())
	assert.Equal(t, prefixes("10.255.0.0/16"), ranges[1001].Prefixes())

	assert.Equal(t, prefixes("10.0.0.0/8"), ranges.Select(asn.NewSet(1000, 1001)).Prefixes())
	assert.Equal(t, prefixes("10.255.0.0/16"), ranges.Select(asn.NewSet(1001, 4242)).Prefixes())
	assert.Zero(t, ranges.Select(nil).Len())
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		announces []announce
		want      map[uint32][]string
	}{
		{
			name:      "nested same origin",
			announces: []announce{{"10.0.0.0/8", []uint32{1}}, {"10.1.0.0/16", []uint32{1}}},
			want:      map[uint32][]string{1: {"10.0.0.0/8"}},
		},
		{
			name:      "multi origin block",
			announces: []announce{{"10.0.0.0/8", []uint32{1, 2}}},
			want:      map[uint32][]string{1: {"10.0.0.0/8"}, 2: {"10.0.0.0/8"}},
		},
		{
			name:      "adjacent blocks merged",
			announces: []announce{{"10.0.0.0/9", []uint32{1}}, {"10.128.0.0/9", []uint32{1}}, {"11.0.0.0/8", []uint32{2}}},
			want:      map[uint32][]string{1: {"10.0.0.0/8"}, 2: {"11.0.0.0/8"}},
		},
		{
			name:      "whole v4 space",
			announces: []announce{{"0.0.0.0/0", []uint32{7}}},
			want:      map[uint32][]string{7: {"0.0.0.0/0"}},
		},
		{
			name:      "top of both spaces",
			announces: []announce{{"255.255.255.0/24", []uint32{8}}, {"ffff::/16", []uint32{9}}, {"::/0", []uint32{10}}},
			want: map[uint32][]string{
				8:  {"255.255.255.0/24"},
				9:  {"ffff::/16"},
				10: {"::/1", "8000::/2", "c000::/3", "e000::/4", "f000::/5", "f800::/6", "fc00::/7", "fe00::/8", "ff00::/9", "ff80::/10", "ffc0::/11", "ffe0::/12", "fff0::/13", "fff8::/14", "fffc::/15", "fffe::/16"},
			},
		},
		{
			name: "single origin regions round trip",
			announces: []announce{
				{"1.0.0.0/24", []uint32{13335}},
				{"8.8.8.0/24", []uint32{15169}},
				{"8.8.4.0/24", []uint32{15169}},
				{"2001:db8::/32", []uint32{64496}},
				{"2001:db9::/48", []uint32{64497}},
			},
			want: map[uint32][]string{
				13335: {"1.0.0.0/24"},
				15169: {"8.8.4.0/24", "8.8.8.0/24"},
				64496: {"2001:db8::/32"},
				64497: {"2001:db9::/48"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranges := Aggregate(build(tt.announces...))
			got := map[uint32][]string{}
			for a, set := range ranges {
				for p := range set.All() {
					got[a] = append(got[a], p.String())
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrefixesRoundTrip(t *testing.T) {
	ranges := Aggregate(build(
		announce{"10.0.0.0/8", []uint32{1000}},
		announce{"10.255.0.0/16", []uint32{1001}},
		announce{"2001:db8::/32", []uint32{1000}},
	))
	v4, v6 := ranges.Prefixes(true), ranges.Prefixes(false)
	assert.Len(t, v4, 2)
	assert.Equal(t, map[uint32][]netip.Prefix{1000: prefixes("2001:db8::/32")}, v6)

	back, err := FromPrefixes(v4, v6)
	require.NoError(t, err)
	require.Equal(t, ranges.ASNs(), back.ASNs())
	for a, set := range ranges {
		assert.Truef(t, set.Equal(back[a]), "AS%d: %s != %s", a, set, back[a])
	}

	_, err = FromPrefixes(map[uint32][]netip.Prefix{1: {netip.Prefix{}}})
	assert.ErrorIs(t, err, cidr.ErrInvalidBlock)
}
