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
	"bufio"
	"fmt"
	"io"
	"net/netip"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/netobserv/asn-ranges/pkg/api"
	log "github.com/sirupsen/logrus"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonLine struct {
	Prefix string `json:"prefix"`
	Family int    `json:"family"`
}

type writeStdout struct {
	format string
	out    io.Writer
}

// Write writes one block per line
func (t *writeStdout) Write(prefixes []netip.Prefix) error {
	log.Debugf("entering writeStdout Write")
	log.Debugf("writeStdout: number of entries = %d", len(prefixes))
	w := bufio.NewWriter(t.out)
	for _, p := range prefixes {
		if t.format == api.WriteFormatJSON {
			family := 6
			if p.Addr().Is4() {
				family = 4
			}
			txt, err := jsonAPI.Marshal(jsonLine{Prefix: p.String(), Family: family})
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w, string(txt)); err != nil {
				return err
			}
		} else if _, err := fmt.Fprintln(w, p.String()); err != nil {
			return err
		}
	}
	return w.Flush()
}

// NewWriteStdout create a new write
func NewWriteStdout(params api.WriteStdout) (Writer, error) {
	return NewWriteTo(os.Stdout, params)
}

// NewWriteTo creates a writer with the stdout formats on any output.
func NewWriteTo(out io.Writer, params api.WriteStdout) (Writer, error) {
	log.Debugf("entering NewWriteStdout")
	switch params.Format {
	case "", api.WriteFormatText, api.WriteFormatJSON:
	default:
		return nil, fmt.Errorf("unknown output format %q", params.Format)
	}
	return &writeStdout{
		format: params.Format,
		out:    out,
	}, nil
}
