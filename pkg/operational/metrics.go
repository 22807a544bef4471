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

package operational

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

type MetricType string

const (
	TypeCounter   MetricType = "counter"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

const defaultPrefix = "asn_ranges_"

type MetricDefinition struct {
	Name   string
	Help   string
	Type   MetricType
	Labels []string
}

var allMetrics []MetricDefinition

// DefineMetric declares a metric so that it shows up in the generated
// documentation. Collectors are created per Metrics instance.
func DefineMetric(name, help string, t MetricType, labels ...string) MetricDefinition {
	def := MetricDefinition{
		Name:   name,
		Help:   help,
		Type:   t,
		Labels: labels,
	}
	allMetrics = append(allMetrics, def)
	return def
}

var (
	stageDuration = DefineMetric(
		"stage_duration_ms",
		"Pipeline stage duration in milliseconds",
		TypeHistogram,
		"stage",
	)
)

// Metrics holds the collectors of one run, registered on a private registry.
type Metrics struct {
	prefix   string
	registry *prometheus.Registry
	mu       sync.Mutex
	counters map[string]*prometheus.CounterVec
	gauges   map[string]*prometheus.GaugeVec
	histos   map[string]*prometheus.HistogramVec
}

func NewMetrics(prefix string) *Metrics {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Metrics{
		prefix:   prefix,
		registry: prometheus.NewRegistry(),
		counters: map[string]*prometheus.CounterVec{},
		gauges:   map[string]*prometheus.GaugeVec{},
		histos:   map[string]*prometheus.HistogramVec{},
	}
}

func (o *Metrics) Registry() *prometheus.Registry {
	return o.registry
}

func (o *Metrics) register(c prometheus.Collector, name string) {
	err := o.registry.Register(c)
	if err != nil {
		log.Errorf("metrics registration error [%s]: %v", name, err)
	}
}

func (o *Metrics) NewCounterVec(def *MetricDefinition) *prometheus.CounterVec {
	o.mu.Lock()
	defer o.mu.Unlock()
	if c, ok := o.counters[def.Name]; ok {
		return c
	}
	fullName := o.prefix + def.Name
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: fullName,
		Help: def.Help,
	}, def.Labels)
	o.register(c, fullName)
	o.counters[def.Name] = c
	return c
}

func (o *Metrics) NewCounter(def *MetricDefinition, labels ...string) prometheus.Counter {
	return o.NewCounterVec(def).WithLabelValues(labels...)
}

func (o *Metrics) NewGaugeVec(def *MetricDefinition) *prometheus.GaugeVec {
	o.mu.Lock()
	defer o.mu.Unlock()
	if g, ok := o.gauges[def.Name]; ok {
		return g
	}
	fullName := o.prefix + def.Name
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: fullName,
		Help: def.Help,
	}, def.Labels)
	o.register(g, fullName)
	o.gauges[def.Name] = g
	return g
}

func (o *Metrics) NewGauge(def *MetricDefinition, labels ...string) prometheus.Gauge {
	return o.NewGaugeVec(def).WithLabelValues(labels...)
}

func (o *Metrics) NewHistogramVec(def *MetricDefinition, buckets []float64) *prometheus.HistogramVec {
	o.mu.Lock()
	defer o.mu.Unlock()
	if h, ok := o.histos[def.Name]; ok {
		return h
	}
	fullName := o.prefix + def.Name
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    fullName,
		Help:    def.Help,
		Buckets: buckets,
	}, def.Labels)
	o.register(h, fullName)
	o.histos[def.Name] = h
	return h
}

func (o *Metrics) GetOrCreateStageDurationHisto() *prometheus.HistogramVec {
	return o.NewHistogramVec(&stageDuration, []float64{.1, 1, 10, 100, 1000, 10000, 100000})
}

// StageDurationTimer starts a timer observing into the stage duration histogram.
func (o *Metrics) StageDurationTimer(stage string) *Timer {
	return NewTimer(o.GetOrCreateStageDurationHisto().WithLabelValues(stage))
}

type Timer struct {
	startTime *time.Time
	observer  prometheus.Observer
}

func NewTimer(o prometheus.Observer) *Timer {
	return &Timer{
		observer: o,
	}
}

// Start starts or restarts the timer
func (t *Timer) Start() time.Time {
	now := time.Now()
	t.startTime = &now
	return now
}

// ObserveMilliseconds stops the timer and records the elapsed time in milliseconds
func (t *Timer) ObserveMilliseconds() {
	if t.startTime == nil {
		log.Warn("Timer was not started, cannot observe")
		return
	}
	duration := time.Since(*t.startTime)
	t.observer.Observe(float64(duration.Milliseconds()))
	t.startTime = nil
}

func GetDocumentation() string {
	defs := make([]MetricDefinition, len(allMetrics))
	copy(defs, allMetrics)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	doc := ""
	for _, opts := range defs {
		doc += fmt.Sprintf(
			`
### %s
| **Name** | %s | 
|:---|:---|
| **Description** | %s | 
| **Type** | %s | 
| **Labels** | %s | 

`,
			opts.Name,
			defaultPrefix+opts.Name,
			opts.Help,
			opts.Type,
			strings.Join(opts.Labels, ", "),
		)
	}

	return doc
}
