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
	"context"

	"github.com/netobserv/asn-ranges/pkg/operational"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordsRead = operational.DefineMetric(
		"ingest_records",
		"Number of routing elements read from the sources",
		operational.TypeCounter,
		"format", "type",
	)
	sourcesIngested = operational.DefineMetric(
		"ingest_sources",
		"Number of sources ingested",
		operational.TypeCounter,
		"format", "status",
	)
)

type metrics struct {
	*operational.Metrics
	format    string
	announced prometheus.Counter
	withdrawn prometheus.Counter
	sources   *prometheus.CounterVec
}

func newMetrics(opMetrics *operational.Metrics, format string) *metrics {
	return &metrics{
		Metrics:   opMetrics,
		format:    format,
		announced: opMetrics.NewCounter(&recordsRead, format, Announce.String()),
		withdrawn: opMetrics.NewCounter(&recordsRead, format, Withdraw.String()),
		sources:   opMetrics.NewCounterVec(&sourcesIngested),
	}
}

type instrumented struct {
	Ingester
	metrics *metrics
}

// NewInstrumented counts the records and sources going through ingester and
// times each ingestion.
func NewInstrumented(opMetrics *operational.Metrics, ingester Ingester, format string) Ingester {
	return &instrumented{
		Ingester: ingester,
		metrics:  newMetrics(opMetrics, format),
	}
}

func (i *instrumented) Ingest(ctx context.Context, process ProcessFunction) error {
	timer := i.metrics.StageDurationTimer("ingest")
	timer.Start()
	defer timer.ObserveMilliseconds()

	err := i.Ingester.Ingest(ctx, func(r Record) error {
		if r.Type == Announce {
			i.metrics.announced.Inc()
		} else {
			i.metrics.withdrawn.Inc()
		}
		return process(r)
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	i.metrics.sources.WithLabelValues(i.metrics.format, status).Inc()
	return err
}
