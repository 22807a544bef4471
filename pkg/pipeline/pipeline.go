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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"runtime"
	"sync/atomic"

	"github.com/heptiolabs/healthcheck"
	"github.com/netobserv/asn-ranges/pkg/api"
	"github.com/netobserv/asn-ranges/pkg/asn"
	"github.com/netobserv/asn-ranges/pkg/config"
	"github.com/netobserv/asn-ranges/pkg/operational"
	"github.com/netobserv/asn-ranges/pkg/pipeline/cidr"
	"github.com/netobserv/asn-ranges/pkg/pipeline/encode/cache"
	"github.com/netobserv/asn-ranges/pkg/pipeline/extract/aggregate"
	"github.com/netobserv/asn-ranges/pkg/pipeline/extract/origin"
	"github.com/netobserv/asn-ranges/pkg/pipeline/ingest"
	"github.com/netobserv/asn-ranges/pkg/pipeline/transform"
	"github.com/netobserv/asn-ranges/pkg/pipeline/write"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	StageIngest    = "ingest"
	StageMerge     = "merge"
	StageTransform = "transform"
	StageExtract   = "extract"
	StageEncode    = "encode"
	StageWrite     = "write"
)

// Pipeline manager
type Pipeline struct {
	IsRunning   atomic.Bool
	built       atomic.Bool
	cfg         *config.Config
	opMetrics   *operational.Metrics
	metrics     *metrics
	cache       *cache.Cache
	transformer transform.Transformer
	writer      write.Writer
}

// Result is the outcome of a build, fresh or loaded from the cache.
type Result struct {
	Ranges    aggregate.Ranges
	Trie      *origin.Trie
	FromCache bool
}

// NewPipeline defines the pipeline elements
func NewPipeline(cfg *config.Config, opMetrics *operational.Metrics) (*Pipeline, error) {
	writer, err := write.NewWriteStdout(cfg.Write)
	if err != nil {
		return nil, err
	}
	return newPipeline(cfg, opMetrics, writer)
}

func newPipeline(cfg *config.Config, opMetrics *operational.Metrics, writer write.Writer) (*Pipeline, error) {
	log.Debugf("entering NewPipeline")
	transformer, err := transform.NewTransformer(cfg.SharedUpstream, cfg.Sources.IgnorePrivateASN)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:         cfg,
		opMetrics:   opMetrics,
		metrics:     newMetrics(opMetrics),
		transformer: transformer,
		writer:      writer,
	}
	if cfg.Cache.Enabled() {
		store, err := cache.NewStore(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		p.cache = cache.New(store)
	}
	return p, nil
}

// Run builds the ranges and writes the blocks of the requested ASNs.
func (p *Pipeline) Run(ctx context.Context) error {
	p.IsRunning.Store(true)
	defer p.IsRunning.Store(false)

	res, err := p.Build(ctx)
	if err != nil {
		return err
	}
	timer := p.opMetrics.StageDurationTimer(StageWrite)
	timer.Start()
	defer timer.ObserveMilliseconds()
	return p.writer.Write(p.Select(res))
}

// Build returns the per ASN ranges, from the cache when a record matches the
// sources and settings, otherwise by ingesting every source.
func (p *Pipeline) Build(ctx context.Context) (*Result, error) {
	sources := p.cfg.Sources
	fingerprint := ""
	if p.cache != nil {
		var err error
		fingerprint, err = cache.Fingerprint(sources.Files, sources.IgnorePrivateASN, p.cfg.SharedUpstream)
		if err != nil {
			log.Debugf("cache lookup skipped: %v", err)
		} else if rec, ok := p.cache.Load(ctx, fingerprint, sources.IgnorePrivateASN); ok {
			res, err := fromRecord(rec)
			if err == nil {
				p.metrics.cacheLookup(true)
				log.Infof("using cached ranges %s", fingerprint)
				p.built.Store(true)
				return res, nil
			}
			log.Debugf("cache miss, record discarded: %v", err)
		}
		p.metrics.cacheLookup(false)
	}

	partials, err := p.ingest(ctx)
	if err != nil {
		return nil, err
	}

	timer := p.opMetrics.StageDurationTimer(StageMerge)
	timer.Start()
	merged := origin.Merge(partials)
	timer.ObserveMilliseconds()
	p.metrics.skipped(merged.Stats)
	log.Infof("merged %d sources: %d blocks, %d split points", len(partials), merged.Trie.Len(), merged.Splits.Len())

	timer = p.opMetrics.StageDurationTimer(StageTransform)
	timer.Start()
	p.transformer.Transform(merged)
	timer.ObserveMilliseconds()

	timer = p.opMetrics.StageDurationTimer(StageExtract)
	timer.Start()
	res := &Result{
		Ranges: aggregate.Aggregate(merged.Trie, merged.Splits),
		Trie:   merged.Trie,
	}
	timer.ObserveMilliseconds()
	p.metrics.asns.Set(float64(len(res.Ranges)))

	if p.cache != nil && fingerprint != "" {
		timer = p.opMetrics.StageDurationTimer(StageEncode)
		timer.Start()
		err := p.cache.Save(ctx, toRecord(fingerprint, p.cfg, res))
		timer.ObserveMilliseconds()
		p.metrics.cacheWrite(err)
		if err != nil {
			log.Warnf("failed to persist cache record %s: %v", fingerprint, err)
		}
	}
	p.built.Store(true)
	return res, nil
}

func (p *Pipeline) ingest(ctx context.Context) ([]*origin.Partial, error) {
	sources := p.cfg.Sources
	maxHops := 0
	if p.cfg.SharedUpstream.Enable {
		maxHops = p.cfg.SharedUpstream.GetMaxHops()
	}
	workers := sources.GetWorkers(runtime.NumCPU())
	log.Debugf("ingesting %d sources with %d workers", len(sources.Files), workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	partials := make([]*origin.Partial, len(sources.Files))
	for i, file := range sources.Files {
		g.Go(func() error {
			format := ingest.DetectFormat(file, sources.Format)
			ingester, err := ingest.NewIngestFile(api.IngestFile{Filename: file, Format: format})
			if err != nil {
				return err
			}
			ingester = ingest.NewInstrumented(p.opMetrics, ingester, format)
			partial := origin.NewPartial(i, sources.IgnorePrivateASN, maxHops)
			if err := ingester.Ingest(gctx, partial.Add); err != nil {
				return err
			}
			log.Infof("%s: %d announcements, %d withdrawals, %d without origin, %d private",
				file, partial.Stats.Announced, partial.Stats.Withdrawn, partial.Stats.NoOrigin, partial.Stats.Private)
			partials[i] = partial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return partials, nil
}

// Select returns the blocks of the requested ASNs, v4 first, sorted by
// address then prefix length.
func (p *Pipeline) Select(res *Result) []netip.Prefix {
	return selectPrefixes(res, p.cfg.ASNs, p.cfg.Overlap.Enable)
}

func selectPrefixes(res *Result, targets asn.Set, excludeOverlap bool) []netip.Prefix {
	var out *cidr.Set
	if excludeOverlap {
		included, excluded := transform.SplitAnnouncements(res.Trie, targets)
		out = transform.ExcludeOverlaps(included, excluded)
	} else {
		out = res.Ranges.Select(targets)
	}
	return out.Prefixes()
}

func toRecord(fingerprint string, cfg *config.Config, res *Result) *cache.Record {
	rec := &cache.Record{
		Fingerprint:      fingerprint,
		IgnorePrivateASN: cfg.Sources.IgnorePrivateASN,
		SharedUpstream:   cfg.SharedUpstream,
		V4:               res.Ranges.Prefixes(true),
		V6:               res.Ranges.Prefixes(false),
	}
	for pfx, asns := range res.Trie.All() {
		rec.Announcements = append(rec.Announcements, cache.Announcement{Prefix: pfx, ASNs: asns})
	}
	return rec
}

func fromRecord(rec *cache.Record) (*Result, error) {
	ranges, err := aggregate.FromPrefixes(rec.V4, rec.V6)
	if err != nil {
		return nil, errors.Join(cache.ErrCacheUnusable, err)
	}
	trie := origin.NewTrie()
	for _, a := range rec.Announcements {
		trie.Insert(a.Prefix, asn.NewSet(a.ASNs...))
	}
	return &Result{Ranges: ranges, Trie: trie, FromCache: true}, nil
}

func (p *Pipeline) IsReady() healthcheck.Check {
	return func() error {
		if !p.built.Load() {
			return fmt.Errorf("ranges are not built yet")
		}
		return nil
	}
}

func (p *Pipeline) IsAlive() healthcheck.Check {
	return func() error {
		if !p.IsRunning.Load() {
			return fmt.Errorf("pipeline is not running")
		}
		return nil
	}
}
