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
	"github.com/netobserv/asn-ranges/pkg/operational"
	"github.com/netobserv/asn-ranges/pkg/pipeline/extract/origin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordsSkipped = operational.DefineMetric(
		"records_skipped",
		"Number of routing elements not used for attribution",
		operational.TypeCounter,
		"reason",
	)
	cacheLookups = operational.DefineMetric(
		"cache_lookups",
		"Number of cache lookups",
		operational.TypeCounter,
		"result",
	)
	cacheWrites = operational.DefineMetric(
		"cache_writes",
		"Number of cache records written",
		operational.TypeCounter,
		"status",
	)
	asnsWithRanges = operational.DefineMetric(
		"asns_with_ranges",
		"Number of ASNs originating at least one block",
		operational.TypeGauge,
	)
)

type metrics struct {
	skippedRecords *prometheus.CounterVec
	lookups        *prometheus.CounterVec
	writes         *prometheus.CounterVec
	asns           prometheus.Gauge
}

func newMetrics(opMetrics *operational.Metrics) *metrics {
	return &metrics{
		skippedRecords: opMetrics.NewCounterVec(&recordsSkipped),
		lookups:        opMetrics.NewCounterVec(&cacheLookups),
		writes:         opMetrics.NewCounterVec(&cacheWrites),
		asns:           opMetrics.NewGauge(&asnsWithRanges),
	}
}

func (m *metrics) skipped(stats origin.Stats) {
	m.skippedRecords.WithLabelValues("withdrawn").Add(float64(stats.Withdrawn))
	m.skippedRecords.WithLabelValues("no_origin").Add(float64(stats.NoOrigin))
	m.skippedRecords.WithLabelValues("private").Add(float64(stats.Private))
}

func (m *metrics) cacheLookup(hit bool) {
	if hit {
		m.lookups.WithLabelValues("hit").Inc()
	} else {
		m.lookups.WithLabelValues("miss").Inc()
	}
}

func (m *metrics) cacheWrite(err error) {
	if err != nil {
		m.writes.WithLabelValues("error").Inc()
	} else {
		m.writes.WithLabelValues("ok").Inc()
	}
}
