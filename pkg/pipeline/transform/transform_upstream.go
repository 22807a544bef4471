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

package transform

import (
	"fmt"
	"slices"

	"github.com/netobserv/asn-ranges/pkg/api"
	"github.com/netobserv/asn-ranges/pkg/asn"
	"github.com/netobserv/asn-ranges/pkg/pipeline/extract/origin"
	log "github.com/sirupsen/logrus"
)

// CommonSuffix returns the hops every path ends with, each path being first
// truncated to its last maxHops hops. The scan goes from the tail inward and
// stops at the first disagreement or at the end of the shortest path.
func CommonSuffix(paths [][]uint32, maxHops int) []uint32 {
	if len(paths) == 0 {
		return nil
	}
	truncated := make([][]uint32, len(paths))
	shortest := -1
	for i, p := range paths {
		truncated[i] = origin.TruncatePath(p, maxHops)
		if shortest < 0 || len(truncated[i]) < shortest {
			shortest = len(truncated[i])
		}
	}

	n := 0
	for ; n < shortest; n++ {
		ref := truncated[0][len(truncated[0])-1-n]
		if slices.ContainsFunc(truncated[1:], func(p []uint32) bool {
			return p[len(p)-1-n] != ref
		}) {
			break
		}
	}
	if n == 0 {
		return nil
	}
	return slices.Clone(truncated[0][len(truncated[0])-n:])
}

type SharedUpstream struct {
	maxHops          int
	minSources       int
	ignorePrivateASN bool
}

// NewTransformSharedUpstream credits the transit ASNs every source agrees on
// near the origin of a block.
func NewTransformSharedUpstream(params api.TransformSharedUpstream, ignorePrivateASN bool) (*SharedUpstream, error) {
	log.Debugf("entering NewTransformSharedUpstream")
	if params.MaxHops < 0 || params.MinSources < 0 {
		return nil, fmt.Errorf("invalid shared upstream settings: max hops %d, min sources %d", params.MaxHops, params.MinSources)
	}
	return &SharedUpstream{
		maxHops:          params.GetMaxHops(),
		minSources:       params.GetMinSources(),
		ignorePrivateASN: ignorePrivateASN,
	}, nil
}

func (s *SharedUpstream) Transform(res *origin.Result) {
	enriched := s.Attribute(res.Trie, res.Paths)
	log.Infof("shared upstream: %d blocks enriched out of %d path keys", enriched, len(res.Paths))
}

// Attribute unions the common suffix of the paths of every block into its
// origin set. Keys seen from fewer than minSources distinct sources are left
// alone. It returns the number of blocks whose origin set grew.
func (s *SharedUpstream) Attribute(trie *origin.Trie, paths map[origin.PathKey][]origin.Path) int {
	enriched := 0
	for key, list := range paths {
		sources := map[int]struct{}{}
		hops := make([][]uint32, 0, len(list))
		for _, p := range list {
			sources[p.Source] = struct{}{}
			hops = append(hops, p.Hops)
		}
		if len(sources) < s.minSources {
			continue
		}
		suffix := CommonSuffix(hops, s.maxHops)
		if s.ignorePrivateASN {
			suffix = slices.DeleteFunc(suffix, asn.IsPrivate)
		}
		if len(suffix) == 0 {
			continue
		}
		credited := asn.NewSet(suffix...)
		before, _ := trie.Get(key.Prefix)
		if before.Union(credited).Equal(before) {
			continue
		}
		trie.Insert(key.Prefix, credited)
		enriched++
	}
	return enriched
}
