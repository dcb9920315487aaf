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

package handlers

import (
	"github.com/aaronlmathis/gosight-server/internal/hub"
	"github.com/prometheus/client_golang/prometheus"
)

// engineCollector adapts hub.Engine.Snapshot into Prometheus gauges,
// scraped fresh on every /metrics request rather than pushed, since the
// Engine already keeps an authoritative in-memory snapshot.
type engineCollector struct {
	engine *hub.Engine

	fetches     *prometheus.Desc
	subscribers *prometheus.Desc
	evictions   *prometheus.Desc
	queueDepth  *prometheus.Desc
}

// NewEngineCollector returns a prometheus.Collector exposing live fetch
// count, subscriber count, eviction count, and total outbound queue
// depth.
func NewEngineCollector(engine *hub.Engine) prometheus.Collector {
	return &engineCollector{
		engine:      engine,
		fetches:     prometheus.NewDesc("ducktracker_fetches", "Number of currently active fetches.", nil, nil),
		subscribers: prometheus.NewDesc("ducktracker_subscribers", "Number of currently connected subscribers.", nil, nil),
		evictions:   prometheus.NewDesc("ducktracker_evictions_total", "Total fetches evicted by TTL expiry or explicit stop.", nil, nil),
		queueDepth:  prometheus.NewDesc("ducktracker_subscriber_queue_depth", "Total pending events across all subscriber outbound queues.", nil, nil),
	}
}

func (c *engineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.fetches
	ch <- c.subscribers
	ch <- c.evictions
	ch <- c.queueDepth
}

func (c *engineCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.engine.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.fetches, prometheus.GaugeValue, float64(stats.Fetches))
	ch <- prometheus.MustNewConstMetric(c.subscribers, prometheus.GaugeValue, float64(stats.Subscribers))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(stats.Evictions))
	ch <- prometheus.MustNewConstMetric(c.queueDepth, prometheus.GaugeValue, float64(stats.QueueDepth))
}
