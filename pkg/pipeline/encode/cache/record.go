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

package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net/netip"

	"github.com/golang/snappy"
	"github.com/netobserv/asn-ranges/pkg/api"
)

// Version is bumped whenever the layout of Record changes.
const Version = 1

// ErrCacheUnusable marks a record that exists but cannot be reused. Load
// turns it into a miss.
var ErrCacheUnusable = errors.New("cache unusable")

// Announcement is one entry of the enriched origin trie.
type Announcement struct {
	Prefix netip.Prefix
	ASNs   []uint32
}

// Record is the persisted result of a build.
type Record struct {
	Version          int
	Fingerprint      string
	IgnorePrivateASN bool
	SharedUpstream   api.TransformSharedUpstream
	V4               map[uint32][]netip.Prefix
	V6               map[uint32][]netip.Prefix
	Announcements    []Announcement
}

// Encode writes rec as a snappy framed gob stream.
func Encode(w io.Writer, rec *Record) error {
	sw := snappy.NewBufferedWriter(w)
	if err := gob.NewEncoder(sw).Encode(rec); err != nil {
		_ = sw.Close()
		return fmt.Errorf("encoding cache record: %w", err)
	}
	return sw.Close()
}

// Decode reads a record written by Encode. Any failure is reported as
// ErrCacheUnusable.
func Decode(r io.Reader) (*Record, error) {
	var rec Record
	if err := gob.NewDecoder(snappy.NewReader(r)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnusable, err)
	}
	if rec.Version != Version {
		return nil, fmt.Errorf("%w: version %d, expected %d", ErrCacheUnusable, rec.Version, Version)
	}
	return &rec, nil
}
