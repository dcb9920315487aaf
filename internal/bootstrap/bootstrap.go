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

// Package bootstrap performs DuckTracker's startup sequence: config
// (flags -> env -> file), logging, the Auth Gate's password file and
// its change watcher, the hub.Engine, the Expiry Scheduler, and the
// HTTP router — each step in its own function, in the order the
// teacher's own InitGoSight sequence uses, fatal on any step that
// can't proceed without leaving the server half-working.
package bootstrap

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/auth"
	"github.com/aaronlmathis/gosight-server/internal/boxwrap"
	"github.com/aaronlmathis/gosight-server/internal/config"
	"github.com/aaronlmathis/gosight-server/internal/core"
	"github.com/aaronlmathis/gosight-server/internal/hub"
	"github.com/aaronlmathis/gosight-server/internal/httpapi/handlers"
	"github.com/aaronlmathis/gosight-server/internal/httpapi/routes"
	"github.com/aaronlmathis/gosight-server/internal/scheduler"
	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// System is every long-lived component the server needs to run and
// shut down cleanly.
type System struct {
	Config    *config.ServerConfig
	Log       zerolog.Logger
	Engine    *hub.Engine
	Scheduler *scheduler.Scheduler
	Router    *mux.Router
	watcher   *fsnotify.Watcher
}

// Init runs the full startup sequence and returns a wired System, or a
// fatal error the caller should exit on.
func Init(cfg *config.ServerConfig) (*System, error) {
	log := setupLogging(cfg.LogLevel)
	log.Info().Msg("starting ducktracker server")

	passwd, err := auth.LoadPasswdFile(cfg.PasswdFile)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load password file: %w", err)
	}
	log.Info().Str("path", cfg.PasswdFile).Msg("loaded password file")

	watcher, err := watchPasswdFile(cfg.PasswdFile, log)
	if err != nil {
		log.Warn().Err(err).Msg("password file watcher not started")
	}

	wrap := boxwrap.Identity()
	if cfg.BoxCoords != "" {
		box, err := boxwrap.Parse(cfg.BoxCoords)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: parse box-coords: %w", err)
		}
		wrap = boxwrap.New(box)
		log.Info().Str("box_coords", cfg.BoxCoords).Msg("coordinate privacy wrap enabled")
	}

	clock := core.SystemClock{}
	engineCfg := hub.DefaultConfig()
	if cfg.DefaultTTL > 0 {
		engineCfg.DefaultTTL = time.Duration(cfg.DefaultTTL)
	}
	if cfg.MaxPoints > 0 {
		engineCfg.MaxPointsCap = cfg.MaxPoints
	}
	engine := hub.New(clock, engineCfg, log)

	tokens := auth.NewTokenStore(clock)

	tick := time.Duration(cfg.TickInterval)
	sched := scheduler.New(clock, tick, log, engine, scheduler.TickerFunc(tokens.Sweep))

	deps := &handlers.Deps{Engine: engine, Passwd: passwd, Tokens: tokens, Wrap: wrap, Log: log}
	router := routes.New(deps, routes.Options{
		EnableMetrics:  cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		EnableDebugWS:  true,
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
	}, log)

	return &System{
		Config:    cfg,
		Log:       log,
		Engine:    engine,
		Scheduler: sched,
		Router:    router,
		watcher:   watcher,
	}, nil
}

// Close releases resources Init acquired outside the request/response
// lifecycle, such as the password file watcher.
func (s *System) Close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
}

// setupLogging builds the process-wide zerolog.Logger: pretty console
// output on a TTY, structured JSON otherwise, matching the teacher's
// own console-vs-JSON split for its utils logger.
func setupLogging(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var writer io.Writer = os.Stdout
	if isatty.IsTerminal(os.Stdout.Fd()) {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(writer).With().Timestamp().Logger()
}

// watchPasswdFile logs a warning whenever the password file changes on
// disk. DuckTracker never hot-reloads credentials (spec §6.3: "reloaded
// only on restart"), so this exists purely to tell an operator their
// edit hasn't taken effect yet.
func watchPasswdFile(path string, log zerolog.Logger) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					log.Warn().Str("path", path).Msg("password file changed on disk; restart to apply")
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("password file watcher error")
			}
		}
	}()
	return w, nil
}
