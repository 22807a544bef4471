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

package prometheus

import (
	"net/http"

	"github.com/netobserv/asn-ranges/pkg/config"
	"github.com/netobserv/asn-ranges/pkg/pipeline/utils"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

const maxHeaderBytes = 1 << 20

// InitializePrometheus starts the metrics server in the background, adding
// the Go runtime and process collectors to registry. It returns nil when no
// port is configured.
func InitializePrometheus(settings *config.MetricsSettings, registry *prom.Registry) *http.Server {
	if settings.Port == 0 {
		log.Debugf("metrics server disabled")
		return nil
	}
	for _, c := range []prom.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registry.Register(c); err != nil {
			log.Warnf("metrics registration error: %v", err)
		}
	}
	server := &http.Server{MaxHeaderBytes: maxHeaderBytes}
	go utils.StartPromServer(settings, registry, server)
	return server
}
