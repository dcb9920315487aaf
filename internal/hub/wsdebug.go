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

// wsdebug.go mirrors a subscriber's update feed over a WebSocket
// instead of SSE. It exists purely as a local tooling/testing
// convenience — the spec's real subscriber transport is the SSE stream
// in handlers.go — grounded on the teacher's client/hub shape in
// internal/websocket/eventhub.go: one *websocket.Conn, one buffered
// Send channel, one writePump goroutine.
package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var debugUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeDebugWS upgrades r to a WebSocket and mirrors sub's drained
// updates onto it until the connection drops or ctx is cancelled.
func ServeDebugWS(ctx context.Context, e *Engine, sub *Subscriber, w http.ResponseWriter, r *http.Request) error {
	conn, err := debugUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Wake():
			if upd, ok := e.Drain(sub.ID); ok {
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				data, _ := json.Marshal(upd)
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return err
				}
				e.Touch(sub.ID)
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}
