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

package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/core"
	"github.com/aaronlmathis/gosight-server/internal/ducktrackerrors"
	"github.com/google/uuid"
)

// TokenTTL is the fixed lifetime of a subscriber stream token.
const TokenTTL = 5 * time.Minute

type tokenRecord struct {
	user      string
	expiresAt time.Time
}

// TokenStore issues and validates the short-lived, single-bearer,
// reusable-within-TTL tokens subscribers use to open a stream. It does
// not authorize publisher POSTs — those carry HTTP Basic credentials on
// every call, verified separately via PasswdFile.
//
// Unlike the teacher's JWT-based session tokens (internal/auth/session.go
// in the original), this is a plain in-memory map: the spec's tokens are
// opaque, five-minute-lived, and never need to survive a restart or be
// verified by another process, so there is nothing a signed/stateless
// token format would buy here (see DESIGN.md).
type TokenStore struct {
	mu     sync.Mutex
	clock  core.Clock
	tokens map[string]tokenRecord
}

// NewTokenStore constructs an empty TokenStore.
func NewTokenStore(clock core.Clock) *TokenStore {
	return &TokenStore{clock: clock, tokens: make(map[string]tokenRecord)}
}

// Issue mints a fresh opaque token for user, valid for TokenTTL.
func (ts *TokenStore) Issue(user string) (string, error) {
	tok := uuid.NewString()
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.tokens[tok] = tokenRecord{user: user, expiresAt: ts.clock.Now().Add(TokenTTL)}
	return tok, nil
}

// Consume validates token and returns the user it was issued to. The
// token remains usable until its TTL lapses (it is not single-use).
func (ts *TokenStore) Consume(token string) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	rec, ok := ts.tokens[token]
	if !ok {
		return "", fmt.Errorf("auth: %w", ducktrackerrors.ErrTokenExpired)
	}
	if ts.clock.Now().After(rec.expiresAt) {
		delete(ts.tokens, token)
		return "", fmt.Errorf("auth: %w", ducktrackerrors.ErrTokenExpired)
	}
	return rec.user, nil
}

// Sweep drops every expired token. Called by the Expiry Scheduler tick
// alongside fetch and subscriber eviction.
func (ts *TokenStore) Sweep(now time.Time) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for tok, rec := range ts.tokens {
		if now.After(rec.expiresAt) {
			delete(ts.tokens, tok)
		}
	}
}
