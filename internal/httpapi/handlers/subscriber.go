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
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/hub"
	"github.com/google/uuid"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Login handles POST /api/login.
func (d *Deps) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request"})
		return
	}

	if !d.Passwd.Verify(req.Username, req.Password) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "bad credentials"})
		return
	}

	token, err := d.Tokens.Issue(req.Username)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not issue token"})
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

const streamKeepalive = 25 * time.Second

// Stream handles GET /api/stream?token=...&tags=a,b,c — an
// EventSource-compatible Server-Sent Events feed of the subscriber's
// matching fetches, per spec §6.2.
func (d *Deps) Stream(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	user, err := d.Tokens.Consume(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "token expired"})
		return
	}

	var selected []string
	if raw := r.URL.Query().Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				selected = append(selected, t)
			}
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	subID := uuid.NewString()
	sub := d.Engine.Subscribe(subID, user, selected)
	defer d.Engine.Unsubscribe(subID)

	ctx := r.Context()
	ticker := time.NewTicker(streamKeepalive)
	defer ticker.Stop()

	if upd, ok := d.Engine.Drain(subID); ok {
		if err := hub.WriteSSE(w, upd); err != nil {
			return
		}
		flusher.Flush()
		d.Engine.Touch(subID)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Wake():
			upd, ok := d.Engine.Drain(subID)
			if !ok {
				continue
			}
			if err := hub.WriteSSE(w, upd); err != nil {
				return
			}
			flusher.Flush()
			d.Engine.Touch(subID)
		case <-ticker.C:
			if err := hub.WriteSSEComment(w, "keepalive"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
