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
	"net/netip"

	"go4.org/netipx"
)

// Convert returns the minimal list of CIDR blocks covering [start, endExclusive).
// It returns nil when the interval is empty or the addresses belong to
// different families.
func Convert(start, endExclusive netip.Addr) []netip.Prefix {
	if !start.IsValid() || !endExclusive.IsValid() || start.Is4() != endExclusive.Is4() {
		return nil
	}
	if start.Compare(endExclusive) >= 0 {
		return nil
	}
	return ConvertInclusive(start, endExclusive.Prev())
}

// ConvertInclusive returns the minimal list of CIDR blocks covering [first, last].
// Blocks are chosen greedily from first: the largest aligned block not going
// past last, then again from the address following it.
func ConvertInclusive(first, last netip.Addr) []netip.Prefix {
	r := netipx.IPRangeFrom(first, last)
	if !r.IsValid() {
		return nil
	}
	return r.Prefixes()
}
