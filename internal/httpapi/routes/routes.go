/*
SPDX-License-Identifier: GPL-3.0-or-later

Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com

This file is part of GoSight.

GoSight is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GoSight is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GoSight. If not, see https://www.gnu.org/licenses/.
*/

// Package routes wires the DuckTracker HTTP surface onto a gorilla/mux
// router: the Hauk-compatible publisher endpoints, the subscriber
// login/stream endpoints, and the supplementary pubtags/healthz/metrics
// endpoints from SPEC_FULL.md §6.
package routes

import (
	"net/http"

	"github.com/aaronlmathis/gosight-server/internal/httpapi/handlers"
	"github.com/aaronlmathis/gosight-server/internal/httpapi/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options controls which optional routes New wires in.
type Options struct {
	EnableMetrics  bool
	MetricsPath    string
	EnableDebugWS  bool
	RateLimitRPS   float64
	RateLimitBurst int
}

// New builds the complete router. deps carries the Engine, password
// file, and token store every handler needs.
func New(deps *handlers.Deps, opts Options, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging(log))

	rl := middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)

	publisher := r.PathPrefix("/api").Subrouter()
	publisher.HandleFunc("/create", deps.Create).Methods(http.MethodPost)
	publisher.Handle("/post", rl.Limit(http.HandlerFunc(deps.Post))).Methods(http.MethodPost)
	publisher.HandleFunc("/stop", deps.Stop).Methods(http.MethodPost)

	r.HandleFunc("/api/login", deps.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/stream", deps.Stream).Methods(http.MethodGet)
	r.HandleFunc("/api/pubtags", deps.PubTags).Methods(http.MethodGet)

	r.HandleFunc("/healthz", deps.Healthz).Methods(http.MethodGet)

	if opts.EnableMetrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(handlers.NewEngineCollector(deps.Engine))
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	if opts.EnableDebugWS {
		r.HandleFunc("/debug/ws", func(w http.ResponseWriter, req *http.Request) {
			debugStream(deps, w, req)
		}).Methods(http.MethodGet)
	}

	return r
}
