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
	"bufio"
	"context"
	"fmt"
	"io"
	"net/netip"
	"strings"

	"github.com/netobserv/asn-ranges/pkg/asn"
	"github.com/netobserv/asn-ranges/pkg/pipeline/cidr"
	log "github.com/sirupsen/logrus"
)

// bgpdump -m columns
const (
	colProto  = 0
	colType   = 2
	colPrefix = 5
	colPath   = 6
)

// decodeBGPDump reads the one-line-per-element text output of `bgpdump -m`:
//
//	TABLE_DUMP2|1700000000|B|192.0.2.1|64496|10.0.0.0/8|64496 1000|IGP|...
//	BGP4MP|1700000000|A|192.0.2.1|64496|10.0.0.0/8|64496 1000|IGP|...
//	BGP4MP|1700000000|W|192.0.2.1|64496|10.0.0.0/8
//
// State changes and blank or comment lines are skipped.
func decodeBGPDump(ctx context.Context, name string, r io.Reader, process ProcessFunction) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, ok, err := parseBGPDumpLine(line)
		if err != nil {
			return fmt.Errorf("%w: %s:%d: %w", ErrSourceUnreadable, name, lineNo, err)
		}
		if !ok {
			continue
		}
		if err := process(rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, name, err)
	}
	log.Debugf("%s: %d lines", name, lineNo)
	return nil
}

func parseBGPDumpLine(line string) (Record, bool, error) {
	fields := strings.Split(line, "|")
	if len(fields) <= colType {
		return Record{}, false, fmt.Errorf("truncated line %q", line)
	}
	var rec Record
	switch fields[colType] {
	case "B", "A":
		rec.Type = Announce
	case "W":
		rec.Type = Withdraw
	default:
		return Record{}, false, nil
	}
	if !strings.HasPrefix(fields[colProto], "TABLE_DUMP") && !strings.HasPrefix(fields[colProto], "BGP4MP") {
		return Record{}, false, fmt.Errorf("unknown record kind %q", fields[colProto])
	}
	if len(fields) <= colPrefix {
		return Record{}, false, fmt.Errorf("missing prefix in %q", line)
	}
	p, err := netip.ParsePrefix(fields[colPrefix])
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: %v", cidr.ErrInvalidBlock, err)
	}
	addr, bits := p.Addr(), p.Bits()
	if addr.Is4In6() && bits >= 96 {
		addr, bits = addr.Unmap(), bits-96
	}
	if rec.Prefix, err = cidr.NewBlock(addr, bits); err != nil {
		return Record{}, false, err
	}
	if rec.Type == Withdraw {
		return rec, true, nil
	}
	if len(fields) > colPath {
		rec.Origins, rec.Path, err = parseASPath(fields[colPath])
		if err != nil {
			return Record{}, false, err
		}
	}
	return rec, true, nil
}

// parseASPath reads a space separated path where "{a,b}" is an AS_SET.
// Confederation segments in parentheses or brackets make the path unusable;
// a path ending with one has no origin.
func parseASPath(s string) (asn.Set, []uint32, error) {
	segments := splitSegments(s)
	if len(segments) == 0 {
		return nil, nil, nil
	}
	var hops []uint32
	usable := true
	var origins asn.Set
	for i, seg := range segments {
		last := i == len(segments)-1
		switch seg[0] {
		case '{':
			set, err := parseASSet(strings.Trim(seg, "{}"))
			if err != nil {
				return nil, nil, err
			}
			usable = false
			if last {
				origins = set
			}
		case '(', '[':
			usable = false
			if last {
				origins = nil
			}
		default:
			a, err := asn.Parse(seg)
			if err != nil {
				return nil, nil, err
			}
			hops = append(hops, a)
			if last {
				origins = asn.Set{a}
			}
		}
	}
	if !usable {
		hops = nil
	}
	return origins, hops, nil
}

// splitSegments splits on spaces outside of {}, () and [] groups.
func splitSegments(s string) []string {
	var out []string
	depth, start := 0, -1
	for i, c := range s {
		switch c {
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
		}
		if c == ' ' || c == '\t' {
			if depth == 0 && start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func parseASSet(s string) (asn.Set, error) {
	var members []uint32
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok == "" {
			continue
		}
		a, err := asn.Parse(tok)
		if err != nil {
			return nil, err
		}
		members = append(members, a)
	}
	return asn.NewSet(members...), nil
}
