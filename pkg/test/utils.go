/*
 * Copyright (C) 2021 IBM, Inc.
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

package test

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// BGPDumpLine renders one `bgpdump -m` RIB entry seen from peerASN.
func BGPDumpLine(peerASN uint32, prefix string, path ...uint32) string {
	hops := make([]string, 0, len(path)+1)
	hops = append(hops, fmt.Sprint(peerASN))
	for _, h := range path {
		hops = append(hops, fmt.Sprint(h))
	}
	return fmt.Sprintf("TABLE_DUMP2|1700000000|B|192.0.2.1|%d|%s|%s|IGP", peerASN, prefix, strings.Join(hops, " "))
}

// WriteRIBs writes each content as a bgpdump text file in a temporary
// directory and returns the file names, in order.
func WriteRIBs(t *testing.T, ribs ...string) []string {
	dir := t.TempDir()
	files := make([]string, 0, len(ribs))
	for i, rib := range ribs {
		name := filepath.Join(dir, fmt.Sprintf("rib%d.txt", i))
		require.NoError(t, os.WriteFile(name, []byte(strings.TrimSpace(rib)+"\n"), 0o600))
		files = append(files, name)
	}
	return files
}

func Prefixes(ss ...string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(ss))
	for _, s := range ss {
		out = append(out, netip.MustParsePrefix(s))
	}
	return out
}
