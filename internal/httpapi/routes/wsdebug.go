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

package routes

import (
	"net/http"
	"strings"

	"github.com/aaronlmathis/gosight-server/internal/httpapi/handlers"
	"github.com/aaronlmathis/gosight-server/internal/hub"
	"github.com/google/uuid"
)

// debugStream authenticates exactly like Stream (bearer token + tags
// query param) but mirrors the feed over a WebSocket instead of SSE,
// for local tooling parity with the teacher's hub pattern. Not part of
// the spec's subscriber contract — see SPEC_FULL.md DOMAIN STACK.
func debugStream(deps *handlers.Deps, w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	user, err := deps.Tokens.Consume(token)
	if err != nil {
		http.Error(w, "token expired", http.StatusUnauthorized)
		return
	}

	var selected []string
	if raw := r.URL.Query().Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				selected = append(selected, t)
			}
		}
	}

	subID := uuid.NewString()
	sub := deps.Engine.Subscribe(subID, user, selected)
	defer deps.Engine.Unsubscribe(subID)

	_ = hub.ServeDebugWS(r.Context(), deps.Engine, sub, w, r)
}
