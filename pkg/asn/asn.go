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

// Package asn holds the ASN helpers shared by the pipeline stages.
package asn

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var ErrInvalidASN = errors.New("invalid ASN")

const (
	private16Low  uint32 = 64512
	private16High uint32 = 65534
	private32Low  uint32 = 4_200_000_000
	private32High uint32 = 4_294_967_294
)

// IsPrivate reports whether asn falls in one of the reserved private ranges
// (RFC 6996).
func IsPrivate(asn uint32) bool {
	return (asn >= private16Low && asn <= private16High) ||
		(asn >= private32Low && asn <= private32High)
}

// Parse accepts "13335", "AS13335" or "as13335".
func Parse(s string) (uint32, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > 2 && strings.EqualFold(trimmed[:2], "as") {
		trimmed = trimmed[2:]
	}
	v, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidASN, s, err)
	}
	return uint32(v), nil
}

// Set is a sorted list of unique ASNs. A Set is never modified in place:
// operations return a new slice, so values can be shared between tables.
type Set []uint32

// NewSet builds a Set from arbitrary input, sorting and removing duplicates.
func NewSet(asns ...uint32) Set {
	if len(asns) == 0 {
		return nil
	}
	s := slices.Clone(asns)
	slices.Sort(s)
	return Set(slices.Compact(s))
}

func (s Set) Contains(asn uint32) bool {
	_, found := slices.BinarySearch(s, asn)
	return found
}

// Union returns the sorted union of s and o.
func (s Set) Union(o Set) Set {
	if len(o) == 0 {
		return s
	}
	if len(s) == 0 {
		return o
	}
	out := make(Set, 0, len(s)+len(o))
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		switch {
		case s[i] < o[j]:
			out = append(out, s[i])
			i++
		case s[i] > o[j]:
			out = append(out, o[j])
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	out = append(out, s[i:]...)
	out = append(out, o[j:]...)
	return out
}

// Intersects reports whether s and o share at least one ASN.
func (s Set) Intersects(o Set) bool {
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		switch {
		case s[i] < o[j]:
			i++
		case s[i] > o[j]:
			j++
		default:
			return true
		}
	}
	return false
}

func (s Set) AnyPrivate() bool {
	return slices.ContainsFunc(s, IsPrivate)
}

func (s Set) Equal(o Set) bool {
	return slices.Equal(s, o)
}

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, a := range s {
		parts[i] = "AS" + strconv.FormatUint(uint64(a), 10)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
