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

// Package scheduler drives time-based eviction: it ticks the hub.Engine
// at a fixed interval so fetch TTLs and subscriber idle limits are
// enforced even when no publisher or subscriber traffic happens to pass
// through that logic.
package scheduler

import (
	"context"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/core"
	"github.com/rs/zerolog"
)

// Ticker is the minimal surface Scheduler needs from the hub.Engine,
// kept narrow so the scheduler can be tested against a fake.
type Ticker interface {
	Tick(now time.Time)
}

// TickerFunc adapts a plain function to the Ticker interface, so a
// component that doesn't naturally take the name Tick (such as
// auth.TokenStore.Sweep) can still be driven by the Scheduler.
type TickerFunc func(now time.Time)

// Tick implements Ticker.
func (f TickerFunc) Tick(now time.Time) { f(now) }

// Scheduler fires Tick on every registered target at least every
// interval, per spec §4.5 / §5. The fetch store, tag index and
// subscriber registry share one Engine.Tick; the auth token store is
// ticked alongside it via its own Ticker (typically a TickerFunc
// wrapping TokenStore.Sweep).
type Scheduler struct {
	targets  []Ticker
	clock    core.Clock
	interval time.Duration
	log      zerolog.Logger
}

// New constructs a Scheduler. interval defaults to 10s when zero.
// targets are ticked in the order given on every interval.
func New(clock core.Clock, interval time.Duration, log zerolog.Logger, targets ...Ticker) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Scheduler{
		targets:  targets,
		clock:    clock,
		interval: interval,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Run blocks, ticking the engine until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("expiry scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("expiry scheduler shutting down")
			return
		case <-t.C:
			now := s.clock.Now()
			for _, target := range s.targets {
				target.Tick(now)
			}
		}
	}
}
