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

package origin

import (
	"net/netip"
	"slices"

	"github.com/netobserv/asn-ranges/pkg/asn"
	"github.com/netobserv/asn-ranges/pkg/pipeline/ingest"
)

// PathKey identifies the paths seen towards one origin for one block.
type PathKey struct {
	Prefix netip.Prefix
	Origin uint32
}

// Path is an AS path as seen from one source, truncated to its last hops.
type Path struct {
	Source int
	Hops   []uint32
}

type Stats struct {
	Announced int
	Withdrawn int
	NoOrigin  int
	Private   int
}

// Partial accumulates the records of a single source. It is owned by the
// goroutine reading that source and merged once reading is over.
type Partial struct {
	Source           int
	IgnorePrivateASN bool
	// MaxHops bounds the recorded paths, zero disables path recording.
	MaxHops int
	Origins map[netip.Prefix]asn.Set
	Paths   map[PathKey][]Path
	Splits  *SplitIndex
	Stats   Stats
}

func NewPartial(source int, ignorePrivateASN bool, maxHops int) *Partial {
	return &Partial{
		Source:           source,
		IgnorePrivateASN: ignorePrivateASN,
		MaxHops:          maxHops,
		Origins:          map[netip.Prefix]asn.Set{},
		Paths:            map[PathKey][]Path{},
		Splits:           NewSplitIndex(),
	}
}

// Add is an ingest.ProcessFunction.
func (p *Partial) Add(r ingest.Record) error {
	if r.Type != ingest.Announce {
		p.Stats.Withdrawn++
		return nil
	}
	if len(r.Origins) == 0 {
		p.Stats.NoOrigin++
		return nil
	}
	if p.IgnorePrivateASN && r.Origins.AnyPrivate() {
		p.Stats.Private++
		return nil
	}
	p.Stats.Announced++
	p.Origins[r.Prefix] = p.Origins[r.Prefix].Union(r.Origins)
	p.Splits.InsertPrefix(r.Prefix)

	if p.MaxHops > 0 && len(r.Path) > 0 && len(r.Origins) == 1 {
		key := PathKey{Prefix: r.Prefix, Origin: r.Origins[0]}
		hops := TruncatePath(r.Path, p.MaxHops)
		known := slices.ContainsFunc(p.Paths[key], func(o Path) bool {
			return slices.Equal(o.Hops, hops)
		})
		if !known {
			p.Paths[key] = append(p.Paths[key], Path{Source: p.Source, Hops: hops})
		}
	}
	return nil
}

// TruncatePath keeps the last maxHops hops of the path as received.
// Prepended hops count toward maxHops.
func TruncatePath(path []uint32, maxHops int) []uint32 {
	hops := slices.Clone(path)
	if maxHops > 0 && len(hops) > maxHops {
		hops = hops[len(hops)-maxHops:]
	}
	return slices.Clip(hops)
}

// Result is the reduction of every partial of a run.
type Result struct {
	Trie   *Trie
	Paths  map[PathKey][]Path
	Splits *SplitIndex
	Stats  Stats
}

// Merge reduces the partials, in order, into one trie, one path table and
// one split index.
func Merge(partials []*Partial) *Result {
	res := &Result{
		Trie:   NewTrie(),
		Paths:  map[PathKey][]Path{},
		Splits: NewSplitIndex(),
	}
	for _, p := range partials {
		if p == nil {
			continue
		}
		for pfx, asns := range p.Origins {
			res.Trie.Insert(pfx, asns)
		}
		for key, paths := range p.Paths {
			res.Paths[key] = append(res.Paths[key], paths...)
		}
		res.Splits.Merge(p.Splits)
		res.Stats.Announced += p.Stats.Announced
		res.Stats.Withdrawn += p.Stats.Withdrawn
		res.Stats.NoOrigin += p.Stats.NoOrigin
		res.Stats.Private += p.Stats.Private
	}
	return res
}
