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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/netobserv/asn-ranges/pkg/api"
)

// SourceIdentity describes a source by its absolute path, size and
// modification time.
func SourceIdentity(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano()), nil
}

// Fingerprint identifies the inputs and settings a record is built from.
// Source order does not matter.
func Fingerprint(sources []string, ignorePrivateASN bool, upstream api.TransformSharedUpstream) (string, error) {
	ids := make([]string, 0, len(sources))
	for _, src := range sources {
		id, err := SourceIdentity(src)
		if err != nil {
			return "", fmt.Errorf("fingerprinting %s: %w", src, err)
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	h := sha256.New()
	h.Write([]byte(strings.Join(ids, "\n")))
	fmt.Fprintf(h, "\nversion=%d\nignore-private-asn=%t\n", Version, ignorePrivateASN)
	if upstream.Enable {
		fmt.Fprintf(h, "shared-upstream=%d/%d\n", upstream.GetMaxHops(), upstream.GetMinSources())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
