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

// Package cidr implements a normalized container of CIDR blocks and the
// conversion of address intervals into CIDR blocks. Both address families are
// handled by the same code: netip.Addr carries the family width.
package cidr

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"net/netip"
	"slices"

	"go4.org/netipx"
)

var ErrInvalidBlock = errors.New("invalid CIDR block")

// NewBlock returns the canonical block of addr with the given prefix length.
func NewBlock(addr netip.Addr, bits int) (netip.Prefix, error) {
	if !addr.IsValid() || bits < 0 || bits > addr.BitLen() {
		return netip.Prefix{}, fmt.Errorf("%w: %s/%d", ErrInvalidBlock, addr, bits)
	}
	return netip.PrefixFrom(addr, bits).Masked(), nil
}

func canonical(p netip.Prefix) (netip.Prefix, error) {
	if !p.IsValid() {
		return netip.Prefix{}, fmt.Errorf("%w: %s", ErrInvalidBlock, p)
	}
	return p.Masked(), nil
}

// Compare orders blocks by network address, then by prefix length.
// IPv4 blocks sort before IPv6 blocks.
func Compare(a, b netip.Prefix) int {
	if c := a.Addr().Compare(b.Addr()); c != 0 {
		return c
	}
	return cmp.Compare(a.Bits(), b.Bits())
}

// Set is a union of CIDR blocks. Blocks are kept sorted and never overlap;
// Simplify additionally merges sibling blocks into their parent.
//
// The zero value is an empty set ready to use.
type Set struct {
	prefixes []netip.Prefix
}

// NewSet builds a set from the given blocks.
func NewSet(prefixes ...netip.Prefix) (*Set, error) {
	s := &Set{}
	for _, p := range prefixes {
		if err := s.Add(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// lowerBound returns the index of the first block starting at or after a.
func (s *Set) lowerBound(a netip.Addr) int {
	i, _ := slices.BinarySearchFunc(s.prefixes, a, func(e netip.Prefix, t netip.Addr) int {
		return e.Addr().Compare(t)
	})
	return i
}

// containing returns the index of the block holding all of p, if any.
// Blocks never overlap, so only the block starting at p's address or its
// predecessor can qualify.
func (s *Set) containing(p netip.Prefix) (int, bool) {
	i := s.lowerBound(p.Addr())
	if i < len(s.prefixes) && s.prefixes[i].Addr() == p.Addr() && s.prefixes[i].Bits() <= p.Bits() {
		return i, true
	}
	if i > 0 {
		prev := s.prefixes[i-1]
		if prev.Bits() <= p.Bits() && prev.Contains(p.Addr()) {
			return i - 1, true
		}
	}
	return 0, false
}

// within returns the half-open index range of blocks contained in p.
func (s *Set) within(p netip.Prefix) (int, int) {
	i := s.lowerBound(p.Addr())
	j := i
	for j < len(s.prefixes) && p.Contains(s.prefixes[j].Addr()) {
		j++
	}
	return i, j
}

// Add inserts p. Blocks already covered by p are dropped; adding a block
// covered by an existing one is a no-op.
func (s *Set) Add(p netip.Prefix) error {
	p, err := canonical(p)
	if err != nil {
		return err
	}
	if _, ok := s.containing(p); ok {
		return nil
	}
	i, j := s.within(p)
	s.prefixes = slices.Replace(s.prefixes, i, j, p)
	return nil
}

// Remove subtracts p. A block partially covered by p is split into the
// canonical blocks surviving around p.
func (s *Set) Remove(p netip.Prefix) error {
	p, err := canonical(p)
	if err != nil {
		return err
	}
	if k, ok := s.containing(p); ok {
		s.prefixes = slices.Replace(s.prefixes, k, k+1, split(s.prefixes[k], p)...)
		return nil
	}
	i, j := s.within(p)
	s.prefixes = slices.Delete(s.prefixes, i, j)
	return nil
}

// split returns outer minus inner, inner being a subnet of outer.
func split(outer, inner netip.Prefix) []netip.Prefix {
	var out []netip.Prefix
	if inner.Addr() != outer.Addr() {
		out = append(out, ConvertInclusive(outer.Addr(), inner.Addr().Prev())...)
	}
	innerLast, outerLast := netipx.PrefixLastIP(inner), netipx.PrefixLastIP(outer)
	if innerLast != outerLast {
		out = append(out, ConvertInclusive(innerLast.Next(), outerLast)...)
	}
	return out
}

// Union adds every block of o.
func (s *Set) Union(o *Set) {
	for _, p := range o.prefixes {
		// blocks of o are canonical already
		_ = s.Add(p)
	}
}

// Difference removes every block of o.
func (s *Set) Difference(o *Set) {
	for _, p := range o.prefixes {
		_ = s.Remove(p)
	}
}

// Simplify merges every pair of sibling blocks into their parent, repeating
// until no pair is left.
func (s *Set) Simplify() {
	out := s.prefixes[:0]
	for _, p := range s.prefixes {
		out = append(out, p)
		for len(out) >= 2 {
			parent, ok := siblings(out[len(out)-2], out[len(out)-1])
			if !ok {
				break
			}
			out = append(out[:len(out)-2], parent)
		}
	}
	clear(s.prefixes[len(out):])
	s.prefixes = out
}

// siblings returns the parent of a and b when they are its two halves.
func siblings(a, b netip.Prefix) (netip.Prefix, bool) {
	if a.Bits() != b.Bits() || a.Bits() == 0 || a.Addr().Is4() != b.Addr().Is4() {
		return netip.Prefix{}, false
	}
	parent := netip.PrefixFrom(a.Addr(), a.Bits()-1).Masked()
	if parent.Addr() != a.Addr() || netipx.PrefixLastIP(a).Next() != b.Addr() {
		return netip.Prefix{}, false
	}
	return parent, true
}

// Covers returns the block of s holding all of p, which is therefore p itself
// or a supernet of it.
func (s *Set) Covers(p netip.Prefix) (netip.Prefix, bool) {
	p, err := canonical(p)
	if err != nil {
		return netip.Prefix{}, false
	}
	if k, ok := s.containing(p); ok {
		return s.prefixes[k], true
	}
	return netip.Prefix{}, false
}

func (s *Set) ContainsAddr(a netip.Addr) bool {
	_, ok := s.containing(netip.PrefixFrom(a, a.BitLen()))
	return ok
}

// All iterates the blocks sorted by address then prefix length.
func (s *Set) All() iter.Seq[netip.Prefix] {
	return func(yield func(netip.Prefix) bool) {
		for _, p := range s.prefixes {
			if !yield(p) {
				return
			}
		}
	}
}

func (s *Set) Prefixes() []netip.Prefix {
	return slices.Clone(s.prefixes)
}

// Family returns the blocks of one address family as a new set.
func (s *Set) Family(is4 bool) *Set {
	out := &Set{}
	for _, p := range s.prefixes {
		if p.Addr().Is4() == is4 {
			out.prefixes = append(out.prefixes, p)
		}
	}
	return out
}

func (s *Set) Len() int {
	return len(s.prefixes)
}

func (s *Set) Equal(o *Set) bool {
	return slices.Equal(s.prefixes, o.prefixes)
}

func (s *Set) Clone() *Set {
	return &Set{prefixes: slices.Clone(s.prefixes)}
}

func (s *Set) String() string {
	return fmt.Sprint(s.prefixes)
}
