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

// File: cmd/ducktracker/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/auth"
	"github.com/aaronlmathis/gosight-server/internal/bootstrap"
	"github.com/aaronlmathis/gosight-server/internal/config"
	"github.com/spf13/pflag"
)

func main() {
	var (
		configPath   = pflag.String("config", "ducktracker.yaml", "path to the server config file")
		bind         = pflag.String("bind", "", "listen address, overrides config")
		passwdPath   = pflag.String("passwd", "", "password file path, overrides config")
		boxCoords    = pflag.String("box-coords", "", "lat1,lng1,lat2,lng2 privacy wrap box, overrides config")
		defaultTTL   = pflag.Duration("default-ttl", 0, "default fetch lifetime, overrides config")
		maxPoints    = pflag.Int("max-points", 0, "per-fetch point cap, overrides config")
		logLevel     = pflag.String("log-level", "", "zerolog level (debug/info/warn/error), overrides config")
		hashPassword = pflag.String("hash-password", "", "print a bcrypt hash for the given password and exit")
	)
	pflag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, "hash-password:", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	if err := config.EnsureDefaultConfig(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "ensure default config:", err)
		os.Exit(1)
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	config.ApplyEnvOverrides(cfg)
	applyFlagOverrides(cfg, *bind, *passwdPath, *boxCoords, *defaultTTL, *maxPoints, *logLevel)

	sys, err := bootstrap.Init(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bootstrap:", err)
		os.Exit(1)
	}
	defer sys.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sys.Scheduler.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: sys.Router,
	}

	go func() {
		sys.Log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sys.Log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	sys.Log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sys.Log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// applyFlagOverrides layers explicitly-set CLI flags on top of cfg,
// which has already had file and environment values applied. Flags
// take the highest precedence of the three, per spec §6.3.
func applyFlagOverrides(cfg *config.ServerConfig, bind, passwd, boxCoords string, defaultTTL time.Duration, maxPoints int, logLevel string) {
	if bind != "" {
		cfg.ListenAddr = bind
	}
	if passwd != "" {
		cfg.PasswdFile = passwd
	}
	if boxCoords != "" {
		cfg.BoxCoords = boxCoords
	}
	if defaultTTL > 0 {
		cfg.DefaultTTL = config.Duration(defaultTTL)
	}
	if maxPoints > 0 {
		cfg.MaxPoints = maxPoints
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
}
