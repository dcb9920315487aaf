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

// Package handlers implements the HTTP surface named in SPEC_FULL.md
// §6: the Hauk-compatible publisher endpoints (line-oriented text),
// the subscriber login/stream endpoints (JSON / SSE), and the
// supplementary pubtags/healthz/metrics endpoints. Every handler is a
// method on Deps so the hub.Engine and friends are explicit parameters,
// never ambient singletons, matching the teacher's own preference for
// a struct of wired dependencies over package-level state.
package handlers

import (
	"github.com/aaronlmathis/gosight-server/internal/auth"
	"github.com/aaronlmathis/gosight-server/internal/boxwrap"
	"github.com/aaronlmathis/gosight-server/internal/hub"
	"github.com/rs/zerolog"
)

// Deps bundles every collaborator the handlers package needs.
type Deps struct {
	Engine *hub.Engine
	Passwd *auth.PasswdFile
	Tokens *auth.TokenStore
	Wrap   boxwrap.Wrapper
	Log    zerolog.Logger
}
