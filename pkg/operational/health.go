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
	"net"
	"net/http"

	"github.com/heptiolabs/healthcheck"
	"github.com/netobserv/asn-ranges/pkg/config"
	log "github.com/sirupsen/logrus"
)

const defaultServerHost = "0.0.0.0"

func newHealthHandler(isAlive, isReady healthcheck.Check) healthcheck.Handler {
	handler := healthcheck.NewHandler()
	handler.AddLivenessCheck("PipelineCheck", isAlive)
	handler.AddReadinessCheck("PipelineCheck", isReady)
	return handler
}

// NewHealthServer starts serving "/live" and "/ready" in the background. The
// caller owns the returned server and shuts it down.
func NewHealthServer(opts *config.Options, isAlive, isReady healthcheck.Check) *http.Server {
	host := opts.Health.Address
	if host == "" {
		host = defaultServerHost
	}
	server := &http.Server{
		Addr:    net.JoinHostPort(host, opts.Health.Port),
		Handler: newHealthHandler(isAlive, isReady),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("health server: http.ListenAndServe error %v", err)
		}
	}()

	return server
}
