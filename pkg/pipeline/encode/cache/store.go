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
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/netobserv/asn-ranges/pkg/api"
)

// ErrNotFound is returned by a Store when no object exists for a key.
var ErrNotFound = errors.New("cache object not found")

const objectSuffix = ".cache"

// Store keeps encoded records by fingerprint.
type Store interface {
	Get(ctx context.Context, fingerprint string) (io.ReadCloser, error)
	Put(ctx context.Context, fingerprint string, data []byte) error
}

func NewStore(params api.Cache) (Store, error) {
	switch params.Type {
	case api.CacheTypeFile:
		return NewFileStore(params.Dir)
	case api.CacheTypeS3:
		return NewS3Store(params.S3)
	default:
		return nil, fmt.Errorf("unknown cache type %q", params.Type)
	}
}
