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

package cidr

import (
	"math/rand/v2"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go4.org/netipx"
)

func pfx(s string) netip.Prefix {
	return netip.MustParsePrefix(s)
}

func pfxs(ss ...string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(ss))
	for _, s := range ss {
		out = append(out, pfx(s))
	}
	return out
}

func mustSet(t *testing.T, ss ...string) *Set {
	s, err := NewSet(pfxs(ss...)...)
	require.NoError(t, err)
	return s
}

func TestNewBlock(t *testing.T) {
	p, err := NewBlock(netip.MustParseAddr("10.1.2.3"), 8)
	require.NoError(t, err)
	require.Equal(t, pfx("10.0.0.0/8"), p)

	_, err = NewBlock(netip.MustParseAddr("10.1.2.3"), 33)
	require.ErrorIs(t, err, ErrInvalidBlock)
	_, err = NewBlock(netip.MustParseAddr("2001:db8::"), 129)
	require.ErrorIs(t, err, ErrInvalidBlock)
	_, err = NewBlock(netip.MustParseAddr("2001:db8::"), 128)
	require.NoError(t, err)
}

func TestAddInvalid(t *testing.T) {
	s := &Set{}
	require.ErrorIs(t, s.Add(netip.Prefix{}), ErrInvalidBlock)
	require.ErrorIs(t, s.Add(netip.PrefixFrom(netip.MustParseAddr("10.0.0.0"), 40)), ErrInvalidBlock)
	require.ErrorIs(t, s.Remove(netip.Prefix{}), ErrInvalidBlock)
	require.Zero(t, s.Len())
}

func TestAddNormalizes(t *testing.T) {
	s := mustSet(t, "10.1.0.0/16", "10.2.0.0/16", "192.168.0.0/24", "2001:db8::/32")
	// covered by an existing block
	require.NoError(t, s.Add(pfx("10.1.5.0/24")))
	require.Equal(t, pfxs("10.1.0.0/16", "10.2.0.0/16", "192.168.0.0/24", "2001:db8::/32"), s.Prefixes())

	// swallows existing blocks
	require.NoError(t, s.Add(pfx("10.0.0.0/8")))
	require.Equal(t, pfxs("10.0.0.0/8", "192.168.0.0/24", "2001:db8::/32"), s.Prefixes())

	// host bits are cleared
	require.NoError(t, s.Add(pfx("172.16.3.4/12")))
	require.Equal(t, pfxs("10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/24", "2001:db8::/32"), s.Prefixes())

	// duplicate
	require.NoError(t, s.Add(pfx("2001:db8::/32")))
	require.Equal(t, 4, s.Len())
}

func TestRemoveSplits(t *testing.T) {
	s := mustSet(t, "10.0.0.0/8")
	require.NoError(t, s.Remove(pfx("10.255.0.0/16")))
	assert.Equal(t, pfxs(
		"10.0.0.0/9",
		"10.128.0.0/10",
		"10.192.0.0/11",
		"10.224.0.0/12",
		"10.240.0.0/13",
		"10.248.0.0/14",
		"10.252.0.0/15",
		"10.254.0.0/16",
	), s.Prefixes())

	s = mustSet(t, "10.0.0.0/24")
	require.NoError(t, s.Remove(pfx("10.0.0.128/26")))
	assert.Equal(t, pfxs("10.0.0.0/25", "10.0.0.192/26"), s.Prefixes())

	// removing a supernet drops every block below it
	s = mustSet(t, "10.1.0.0/16", "10.2.0.0/16", "11.0.0.0/8")
	require.NoError(t, s.Remove(pfx("10.0.0.0/8")))
	assert.Equal(t, pfxs("11.0.0.0/8"), s.Prefixes())

	// exact removal and removal of absent space
	require.NoError(t, s.Remove(pfx("11.0.0.0/8")))
	require.NoError(t, s.Remove(pfx("12.0.0.0/8")))
	assert.Zero(t, s.Len())
}

func TestSimplify(t *testing.T) {
	s := mustSet(t,
		"10.0.0.0/24", "10.0.1.0/24", "10.0.2.0/23",
		"10.0.8.0/24",
		"2001:db8::/33", "2001:db8:8000::/33",
	)
	s.Simplify()
	assert.Equal(t, pfxs("10.0.0.0/22", "10.0.8.0/24", "2001:db8::/32"), s.Prefixes())

	// adjacent but not siblings
	s = mustSet(t, "10.0.1.0/24", "10.0.2.0/24")
	s.Simplify()
	assert.Equal(t, pfxs("10.0.1.0/24", "10.0.2.0/24"), s.Prefixes())

	// the two halves of the IPv4 space
	s = mustSet(t, "0.0.0.0/1", "128.0.0.0/1")
	s.Simplify()
	assert.Equal(t, pfxs("0.0.0.0/0"), s.Prefixes())
}

func TestCovers(t *testing.T) {
	s := mustSet(t, "10.0.0.0/8", "192.168.1.0/24", "2001:db8::/32")
	table := []struct {
		query string
		want  string
	}{
		{query: "10.255.0.0/16", want: "10.0.0.0/8"},
		{query: "10.0.0.0/8", want: "10.0.0.0/8"},
		{query: "10.0.0.0/7"},
		{query: "192.168.1.128/25", want: "192.168.1.0/24"},
		{query: "192.168.0.0/16"},
		{query: "11.0.0.0/8"},
		{query: "2001:db8:1::/48", want: "2001:db8::/32"},
		{query: "::/0"},
	}
	for _, tt := range table {
		t.Run(tt.query, func(t *testing.T) {
			got, ok := s.Covers(pfx(tt.query))
			if tt.want == "" {
				require.False(t, ok)
				return
			}
			require.True(t, ok)
			require.Equal(t, pfx(tt.want), got)
		})
	}
	require.True(t, s.ContainsAddr(netip.MustParseAddr("10.9.9.9")))
	require.False(t, s.ContainsAddr(netip.MustParseAddr("192.168.2.1")))
}

func TestUnionDifferenceFamily(t *testing.T) {
	a := mustSet(t, "10.0.0.0/9", "2001:db8::/32")
	b := mustSet(t, "10.128.0.0/9", "192.0.2.0/24")
	a.Union(b)
	a.Simplify()
	require.Equal(t, pfxs("10.0.0.0/8", "192.0.2.0/24", "2001:db8::/32"), a.Prefixes())

	a.Difference(mustSet(t, "10.0.0.0/9"))
	require.Equal(t, pfxs("10.128.0.0/9", "192.0.2.0/24", "2001:db8::/32"), a.Prefixes())

	require.Equal(t, pfxs("2001:db8::/32"), a.Family(false).Prefixes())
	require.Equal(t, pfxs("10.128.0.0/9", "192.0.2.0/24"), a.Family(true).Prefixes())

	c := a.Clone()
	require.True(t, c.Equal(a))
	require.NoError(t, c.Add(pfx("198.51.100.0/24")))
	require.False(t, c.Equal(a))
}

func randomV4Prefix(r *rand.Rand) netip.Prefix {
	// keep everything under 10.0.0.0/16 so blocks collide often
	bits := 16 + r.IntN(17)
	v := 10<<24 | r.Uint32N(1<<16)
	addr := netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
	return netip.PrefixFrom(addr, bits).Masked()
}

// TestAgainstIPSet replays random additions and removals on both a Set and a
// netipx.IPSetBuilder and checks they agree once simplified.
func TestAgainstIPSet(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 50; round++ {
		s := &Set{}
		var b netipx.IPSetBuilder
		for op := 0; op < 200; op++ {
			p := randomV4Prefix(r)
			if r.IntN(3) == 0 {
				require.NoError(t, s.Remove(p))
				b.RemovePrefix(p)
			} else {
				require.NoError(t, s.Add(p))
				b.AddPrefix(p)
			}
		}
		ipset, err := b.IPSet()
		require.NoError(t, err)

		s.Simplify()
		require.Equal(t, ipset.Prefixes(), s.Prefixes(), "round %d", round)

		// idempotence
		again := s.Clone()
		again.Simplify()
		require.True(t, again.Equal(s), "round %d", round)
	}
}

func TestConvert(t *testing.T) {
	table := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{name: "aligned /24", start: "192.168.0.0", end: "192.168.1.0", want: []string{"192.168.0.0/24"}},
		{name: "aligned /23", start: "10.0.0.0", end: "10.0.2.0", want: []string{"10.0.0.0/23"}},
		{name: "unaligned start", start: "10.0.1.0", end: "10.0.2.0", want: []string{"10.0.1.0/24"}},
		{name: "two blocks", start: "10.0.1.0", end: "10.0.3.0", want: []string{"10.0.1.0/24", "10.0.2.0/24"}},
		{name: "single address", start: "10.0.0.7", end: "10.0.0.8", want: []string{"10.0.0.7/32"}},
		{name: "ragged", start: "10.0.0.1", end: "10.0.0.7", want: []string{"10.0.0.1/32", "10.0.0.2/31", "10.0.0.4/31", "10.0.0.6/32"}},
		{name: "empty", start: "10.0.0.1", end: "10.0.0.1"},
		{name: "reversed", start: "10.0.0.2", end: "10.0.0.1"},
		{name: "mixed families", start: "10.0.0.0", end: "2001:db8::"},
		{name: "v6", start: "2001:db8::", end: "2001:db8:0:2::", want: []string{"2001:db8::/63"}},
	}
	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(netip.MustParseAddr(tt.start), netip.MustParseAddr(tt.end))
			if len(tt.want) == 0 {
				require.Empty(t, got)
				return
			}
			require.Equal(t, pfxs(tt.want...), got)
		})
	}
}

func TestConvertInclusiveTopOfSpace(t *testing.T) {
	got := ConvertInclusive(netip.MustParseAddr("255.255.255.0"), netip.MustParseAddr("255.255.255.255"))
	require.Equal(t, pfxs("255.255.255.0/24"), got)
	got = ConvertInclusive(netip.MustParseAddr("ffff::"), netip.MustParseAddr("ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff"))
	require.Equal(t, pfxs("ffff::/16"), got)
}

// TestConvertExact checks random intervals are covered exactly and minimally.
func TestConvertExact(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 500; i++ {
		a, b := r.Uint32(), r.Uint32()
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		start := netip.AddrFrom4([4]byte{byte(a >> 24), byte(a >> 16), byte(a >> 8), byte(a)})
		end := netip.AddrFrom4([4]byte{byte(b >> 24), byte(b >> 16), byte(b >> 8), byte(b)})

		blocks := Convert(start, end)
		s, err := NewSet(blocks...)
		require.NoError(t, err)
		require.Equal(t, len(blocks), s.Len(), "blocks must not overlap")

		var builder netipx.IPSetBuilder
		builder.AddRange(netipx.IPRangeFrom(start, end.Prev()))
		want, err := builder.IPSet()
		require.NoError(t, err)
		require.Equal(t, want.Prefixes(), s.Prefixes())

		simplified := s.Clone()
		simplified.Simplify()
		require.True(t, simplified.Equal(s), "cover of [%s, %s) is not minimal", start, end)
	}
}
