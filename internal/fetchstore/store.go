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

package fetchstore

import (
	"fmt"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/core"
	"github.com/aaronlmathis/gosight-server/internal/ducktrackerrors"
	"github.com/aaronlmathis/gosight-server/internal/model"
	"github.com/aaronlmathis/gosight-server/internal/tagparser"
)

// CreatedFetch is one fetch produced by a Create call, along with the
// per-tag share token a web client uses to view that tag directly.
type CreatedFetch struct {
	FetchID    uint64
	Tag        string
	Visibility model.Visibility
	ShareToken string
}

// CreateResult is the outcome of Create: the session id a publisher uses
// for subsequent append/stop calls, and one CreatedFetch per distinct tag.
type CreateResult struct {
	SessionID string
	Fetches   []CreatedFetch
}

// Store is the authoritative, lock-free map of active fetches. Callers
// (normally hub.Engine) are responsible for serializing access.
type Store struct {
	ids   *core.IDAllocator
	clock core.Clock

	defaultTTL   time.Duration
	maxPointsCap int

	fetches map[uint64]*Fetch
	session map[string][]uint64 // session id -> sibling fetch ids
	siblOf  map[uint64]string   // fetch id -> owning session id
}

// New constructs an empty Store. defaultTTL and maxPointsCap correspond
// to --default-ttl and --max-points.
func New(ids *core.IDAllocator, clock core.Clock, defaultTTL time.Duration, maxPointsCap int) *Store {
	if maxPointsCap <= 0 || maxPointsCap > AbsoluteMaxPoints {
		maxPointsCap = AbsoluteMaxPoints
	}
	return &Store{
		ids:          ids,
		clock:        clock,
		defaultTTL:   defaultTTL,
		maxPointsCap: maxPointsCap,
		fetches:      make(map[uint64]*Fetch),
		session:      make(map[string][]uint64),
		siblOf:       make(map[uint64]string),
	}
}

// Get returns the fetch for id, if live.
func (s *Store) Get(id uint64) (*Fetch, bool) {
	f, ok := s.fetches[id]
	return f, ok
}

// Create allocates one Fetch per distinct tag in tags, all belonging to
// one session. now is the creation timestamp; dur, if positive and
// smaller than the configured default TTL, shortens the initial
// expiry (the publisher's requested share duration can never extend
// it past the configured default).
func (s *Store) Create(tags []tagparser.TagSpec, maxPoints int, dur time.Duration, now time.Time) (CreateResult, error) {
	if len(tags) == 0 {
		return CreateResult{}, fmt.Errorf("%w: create requires at least one tag", ducktrackerrors.ErrInvalidTagSpec)
	}

	pointsCap := s.maxPointsCap
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	if maxPoints > pointsCap {
		maxPoints = pointsCap
	}

	ttl := s.defaultTTL
	if dur > 0 && dur < ttl {
		ttl = dur
	}

	sessionID := core.MustRandomToken(12)

	result := CreateResult{SessionID: sessionID}
	ids := make([]uint64, 0, len(tags))

	for _, t := range tags {
		id := s.ids.Next()
		shareToken := core.MustRandomToken(12)

		s.fetches[id] = &Fetch{
			ID:         id,
			LinkToken:  shareToken,
			Tag:        t.Tag,
			Visibility: t.Visibility,
			MaxPoints:  maxPoints,
			CreatedAt:  now,
			ExpiresAt:  now.Add(ttl),
		}
		s.siblOf[id] = sessionID
		ids = append(ids, id)

		result.Fetches = append(result.Fetches, CreatedFetch{
			FetchID:    id,
			Tag:        t.Tag,
			Visibility: t.Visibility,
			ShareToken: shareToken,
		})
	}

	s.session[sessionID] = ids
	return result, nil
}

// AppendResult reports, per fetch id, the points that were actually
// accepted into that fetch's ring after sort/trim.
type AppendResult struct {
	Accepted map[uint64][]model.Location
}

// Append appends pts to every sibling fetch of sessionID, refreshing
// each one's expiry. Returns ErrUnknownShare if the session id is
// unrecognized, ErrShareExpired if every sibling has already expired.
func (s *Store) Append(sessionID string, pts []model.Location, now time.Time) (AppendResult, error) {
	ids, ok := s.session[sessionID]
	if !ok {
		return AppendResult{}, fmt.Errorf("%w: session %q", ducktrackerrors.ErrUnknownShare, sessionID)
	}

	res := AppendResult{Accepted: make(map[uint64][]model.Location)}
	anyLive := false

	for _, id := range ids {
		f, ok := s.fetches[id]
		if !ok || f.Expired(now) {
			continue
		}
		anyLive = true
		accepted := f.appendPoints(pts, now)
		f.ExpiresAt = now.Add(s.defaultTTL)
		if len(accepted) > 0 {
			res.Accepted[id] = accepted
		}
	}

	if !anyLive {
		return AppendResult{}, fmt.Errorf("%w: session %q", ducktrackerrors.ErrShareExpired, sessionID)
	}
	return res, nil
}

// Stop marks every sibling of sessionID expired immediately and returns
// their fetch ids so the caller can notify subscribers and clean the
// tag index.
func (s *Store) Stop(sessionID string, now time.Time) ([]uint64, error) {
	ids, ok := s.session[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session %q", ducktrackerrors.ErrUnknownShare, sessionID)
	}
	for _, id := range ids {
		if f, ok := s.fetches[id]; ok {
			f.ExpiresAt = now
		}
	}
	return s.removeIDs(ids), nil
}

// Tick evicts every fetch whose ExpiresAt has passed as of now and
// returns their ids so the caller can drop them from the tag index and
// notify subscribers.
func (s *Store) Tick(now time.Time) []uint64 {
	var expired []uint64
	for id, f := range s.fetches {
		if f.Expired(now) {
			expired = append(expired, id)
		}
	}
	return s.removeIDs(expired)
}

// removeIDs deletes the given fetch ids (and, for any session whose
// every sibling is now gone, the session entry itself) and returns the
// subset that actually existed.
func (s *Store) removeIDs(ids []uint64) []uint64 {
	var removed []uint64
	touched := make(map[string]struct{})

	for _, id := range ids {
		if _, ok := s.fetches[id]; !ok {
			continue
		}
		delete(s.fetches, id)
		if sid, ok := s.siblOf[id]; ok {
			touched[sid] = struct{}{}
			delete(s.siblOf, id)
		}
		removed = append(removed, id)
	}

	for sid := range touched {
		remaining := s.session[sid][:0]
		for _, id := range s.session[sid] {
			if _, ok := s.fetches[id]; ok {
				remaining = append(remaining, id)
			}
		}
		if len(remaining) == 0 {
			delete(s.session, sid)
		} else {
			s.session[sid] = remaining
		}
	}

	return removed
}

// Len returns the number of live fetches, for metrics.
func (s *Store) Len() int { return len(s.fetches) }
