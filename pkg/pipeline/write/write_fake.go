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

package write

import (
	"net/netip"

	log "github.com/sirupsen/logrus"
)

type WriteFake struct {
	AllRecords []netip.Prefix
}

// Write stores in memory all records.
func (w *WriteFake) Write(in []netip.Prefix) error {
	log.Debugf("entering writeFake Write")
	log.Debugf("writeFake: number of entries = %d", len(in))
	w.AllRecords = append(w.AllRecords, in...)
	return nil
}

// Strings returns the stored records in text form.
func (w *WriteFake) Strings() []string {
	out := make([]string, 0, len(w.AllRecords))
	for _, p := range w.AllRecords {
		out = append(out, p.String())
	}
	return out
}

// NewWriteFake creates a new write.
func NewWriteFake() *WriteFake {
	log.Debugf("entering NewWriteFake")
	return &WriteFake{}
}
