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

package ingest

import (
	"context"
	"errors"
	"net/netip"

	"github.com/netobserv/asn-ranges/pkg/asn"
)

// ErrSourceUnreadable is returned, wrapped with the source name, when an input
// cannot be opened or decoded.
var ErrSourceUnreadable = errors.New("source unreadable")

type ElemType uint8

const (
	Announce ElemType = iota
	Withdraw
)

func (e ElemType) String() string {
	switch e {
	case Announce:
		return "announce"
	case Withdraw:
		return "withdraw"
	default:
		return "unknown"
	}
}

// Record is one routing element read from a source. Origins is nil when the
// element carries no usable AS_PATH. Path holds the AS_SEQUENCE hops, nearest
// hop last, and is nil when the path contains an AS_SET.
type Record struct {
	Type    ElemType
	Prefix  netip.Prefix
	Origins asn.Set
	Path    []uint32
}

type ProcessFunction func(Record) error

type Ingester interface {
	// Ingest decodes the whole source, calling process for every element.
	// An error returned by process stops the ingestion and is returned as is.
	Ingest(ctx context.Context, process ProcessFunction) error
}
