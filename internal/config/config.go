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

// server/internal/config/config.go

// Package config provides configuration loading and management for the
// DuckTracker server. It supports loading configuration from a YAML
// file, environment variable overrides, and (applied by the caller on
// top, see cmd/ducktracker) CLI flag overrides, in flags → env → file
// precedence order.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RateLimitConfig bounds how fast a single publisher IP may call
// /api/post before the rate limiter middleware starts returning 429.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// MetricsConfig controls the optional Prometheus /metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServerConfig is the complete DuckTracker server configuration.
type ServerConfig struct {
	ListenAddr string `yaml:"listen"`
	LogLevel   string `yaml:"log_level"`

	// PasswdFile is the path to the Hauk-style user:secret credentials
	// file consulted by the Auth Gate. Reloaded only on restart.
	PasswdFile string `yaml:"passwd_file"`

	// BoxCoords, if non-empty, is a "lat_lo,lat_hi,lon_lo,lon_hi" box
	// spec enabling the coordinate privacy wrap (spec §4.7). Empty
	// disables the wrap and forwards coordinates unchanged.
	BoxCoords string `yaml:"box_coords"`

	// DefaultTTL is how long a fetch lives when the publisher doesn't
	// request a different duration.
	DefaultTTL Duration `yaml:"default_ttl"`

	// MaxPoints bounds how many trail points a single fetch retains
	// server-side, before clamping to AbsoluteMaxPoints.
	MaxPoints int `yaml:"max_points"`

	// TickInterval is how often the Expiry Scheduler sweeps for
	// expired fetches, subscribers and bearer tokens.
	TickInterval Duration `yaml:"tick_interval"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// LoadConfig reads and parses a YAML ServerConfig from path.
func LoadConfig(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg ServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnvOverrides overlays DUCKTRACKER_* environment variables onto
// cfg, taking precedence over whatever the YAML file set.
func ApplyEnvOverrides(cfg *ServerConfig) {
	if val := os.Getenv("DUCKTRACKER_LISTEN"); val != "" {
		cfg.ListenAddr = val
	}
	if val := os.Getenv("DUCKTRACKER_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
	if val := os.Getenv("DUCKTRACKER_PASSWD_FILE"); val != "" {
		cfg.PasswdFile = val
	}
	if val := os.Getenv("DUCKTRACKER_BOX_COORDS"); val != "" {
		cfg.BoxCoords = val
	}
	if val := os.Getenv("DUCKTRACKER_DEFAULT_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.DefaultTTL = Duration(d)
		}
	}
	if val := os.Getenv("DUCKTRACKER_MAX_POINTS"); val != "" {
		if n, err := parsePositiveInt(val); err == nil {
			cfg.MaxPoints = n
		}
	}
}

func parsePositiveInt(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("config: value %q must be positive", s)
	}
	return n, nil
}
