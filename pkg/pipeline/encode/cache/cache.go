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
	"bytes"
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Cache loads and saves records, hiding unusable ones behind a miss.
type Cache struct {
	store Store
}

func New(store Store) *Cache {
	return &Cache{store: store}
}

// Load returns the record stored for fingerprint when it was built with the
// same private ASN setting. Any other outcome is a miss.
func (c *Cache) Load(ctx context.Context, fingerprint string, ignorePrivateASN bool) (*Record, bool) {
	log.Debugf("entering cache Load, fingerprint = %s", fingerprint)
	rec, err := c.load(ctx, fingerprint, ignorePrivateASN)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Debugf("cache miss: %v", err)
		} else {
			log.Debugf("cache miss, record discarded: %v", err)
		}
		return nil, false
	}
	return rec, true
}

func (c *Cache) load(ctx context.Context, fingerprint string, ignorePrivateASN bool) (*Record, error) {
	rc, err := c.store.Get(ctx, fingerprint)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	rec, err := Decode(rc)
	if err != nil {
		return nil, err
	}
	if rec.Fingerprint != fingerprint {
		return nil, fmt.Errorf("%w: fingerprint mismatch", ErrCacheUnusable)
	}
	if rec.IgnorePrivateASN != ignorePrivateASN {
		return nil, fmt.Errorf("%w: private ASN setting mismatch", ErrCacheUnusable)
	}
	return rec, nil
}

// Save persists rec under its fingerprint.
func (c *Cache) Save(ctx context.Context, rec *Record) error {
	rec.Version = Version
	var buf bytes.Buffer
	if err := Encode(&buf, rec); err != nil {
		return err
	}
	log.Debugf("saving cache record %s, %d bytes", rec.Fingerprint, buf.Len())
	return c.store.Put(ctx, rec.Fingerprint, buf.Bytes())
}
