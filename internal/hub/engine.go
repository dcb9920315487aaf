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

package hub

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/core"
	"github.com/aaronlmathis/gosight-server/internal/ducktrackerrors"
	"github.com/aaronlmathis/gosight-server/internal/fetchstore"
	"github.com/aaronlmathis/gosight-server/internal/model"
	"github.com/aaronlmathis/gosight-server/internal/tagindex"
	"github.com/aaronlmathis/gosight-server/internal/tagparser"
	"github.com/rs/zerolog"
)

// Config bounds the Engine's resource usage; all fields map directly to
// spec §5 defaults.
type Config struct {
	DefaultTTL     time.Duration
	MaxPointsCap   int
	MaxQueueLen    int
	SubscriberIdle time.Duration
}

// DefaultConfig matches the spec's stated defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:     time.Hour,
		MaxPointsCap:   fetchstore.AbsoluteMaxPoints,
		MaxQueueLen:    256,
		SubscriberIdle: 5 * time.Minute,
	}
}

// Engine is the single coarse-grained mutable domain named in the spec:
// Fetch Store, Tag Index, and Subscriber Registry behind one RWMutex,
// plus the Delta Engine logic that turns store/index mutations into
// per-subscriber UpdateChange queues. It is the explicit handle threaded
// to every HTTP handler — never an ambient singleton.
type Engine struct {
	mu sync.RWMutex

	store *fetchstore.Store
	index *tagindex.Index
	subs  map[string]*Subscriber

	evictions uint64 // atomic; fetches evicted by TTL or explicit stop, for /metrics

	clock core.Clock
	cfg   Config
	log   zerolog.Logger
}

// New wires a fresh Engine around its own Fetch Store and Tag Index.
func New(clock core.Clock, cfg Config, log zerolog.Logger) *Engine {
	return &Engine{
		store: fetchstore.New(core.NewIDAllocator(), clock, cfg.DefaultTTL, cfg.MaxPointsCap),
		index: tagindex.New(),
		subs:  make(map[string]*Subscriber),
		clock: clock,
		cfg:   cfg,
		log:   log.With().Str("component", "hub").Logger(),
	}
}

// CreateFetch allocates one fetch per tag, indexes each, and fans out
// AddFetch deltas (plus any newly-discoverable public tags) to every
// live subscriber.
func (e *Engine) CreateFetch(tags []tagparser.TagSpec, maxPoints int, dur time.Duration) (fetchstore.CreateResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	res, err := e.store.Create(tags, maxPoints, dur, now)
	if err != nil {
		return fetchstore.CreateResult{}, err
	}

	for _, cf := range res.Fetches {
		e.index.Insert(cf.FetchID, cf.Tag, cf.Visibility)
	}

	newFetchIDs := make(map[uint64]struct{}, len(res.Fetches))
	for _, cf := range res.Fetches {
		newFetchIDs[cf.FetchID] = struct{}{}
	}

	for _, sub := range e.subs {
		before := len(sub.pending)
		e.deliverAddFetch(sub, newFetchIDs)
		if len(sub.pending) > before {
			e.flushBound(sub, now)
			sub.notify()
		}
	}

	e.log.Debug().Str("session", res.SessionID).Int("fetches", len(res.Fetches)).Msg("created fetch session")
	return res, nil
}

// AppendPoints appends points to every sibling fetch in the session and
// fans out AddPoints deltas to subscribers that currently see them.
func (e *Engine) AppendPoints(sessionID string, pts []model.Location) (fetchstore.AppendResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	res, err := e.store.Append(sessionID, pts, now)
	if err != nil {
		return fetchstore.AppendResult{}, err
	}

	for fetchID, accepted := range res.Accepted {
		if len(accepted) == 0 {
			continue
		}
		for _, sub := range e.subs {
			if _, visible := sub.visible[fetchID]; visible {
				sub.enqueueAddPoints(fetchID, accepted)
				e.flushBound(sub, now)
				sub.notify()
			}
		}
	}
	return res, nil
}

// StopFetch expires every sibling fetch in the session immediately.
func (e *Engine) StopFetch(sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	ids, err := e.store.Stop(sessionID, now)
	if err != nil {
		return err
	}
	e.expireFetchesLocked(ids, now)
	return nil
}

// Tick drives time-based eviction: expired fetches and idle subscribers.
// Called by the Expiry Scheduler at least every tick_interval.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	expired := e.store.Tick(now)
	e.expireFetchesLocked(expired, now)

	for id, sub := range e.subs {
		if now.Sub(sub.LastActivity) > e.cfg.SubscriberIdle {
			delete(e.subs, id)
		}
	}
}

// expireFetchesLocked removes ids from the tag index and notifies every
// subscriber that had one of them visible. Caller must hold e.mu.
func (e *Engine) expireFetchesLocked(ids []uint64, now time.Time) {
	if len(ids) == 0 {
		return
	}
	atomic.AddUint64(&e.evictions, uint64(len(ids)))
	for _, id := range ids {
		e.index.Remove(id)
	}
	for _, sub := range e.subs {
		before := len(sub.pending)
		for _, id := range ids {
			if _, ok := sub.visible[id]; !ok {
				continue
			}
			delete(sub.visible, id)
			sub.enqueue(model.UpdateChange{
				Kind:        model.ChangeExpireFetch,
				ExpireFetch: &model.ExpireFetchPayload{FetchID: id},
			})
		}
		if len(sub.pending) > before {
			e.flushBound(sub, now)
			sub.notify()
		}
	}
}

// Subscribe registers a new stream filtered by selectedTags and returns
// it with its initial Reset + snapshot already queued. EventSource-style
// transports cannot change query parameters mid-stream (spec §9), so a
// subscriber filter change is implemented by the caller opening a brand
// new Subscribe and discarding the old subscriber — which is exactly why
// every new subscriber unconditionally starts with Reset.
func (e *Engine) Subscribe(id, user string, selectedTags []string) *Subscriber {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	selected := make(map[string]struct{}, len(selectedTags))
	for _, t := range selectedTags {
		selected[t] = struct{}{}
	}

	sub := newSubscriber(id, user, selected, now)
	e.resyncLocked(sub, now)
	e.subs[id] = sub
	return sub
}

// Unsubscribe removes a subscriber from the registry. Safe to call more
// than once and never blocks on, or is blocked by, the publisher path.
func (e *Engine) Unsubscribe(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subs, id)
}

// Touch refreshes a subscriber's idle deadline. Call whenever a flush is
// delivered or a heartbeat is sent.
func (e *Engine) Touch(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sub, ok := e.subs[id]; ok {
		sub.LastActivity = e.clock.Now()
	}
}

// Drain removes and returns everything pending for a subscriber as one
// ordered Update, stamped with the current server time. ok is false when
// there was nothing queued.
func (e *Engine) Drain(id string) (model.Update, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub, ok := e.subs[id]
	if !ok || len(sub.pending) == 0 {
		return model.Update{}, false
	}

	changes := groupByKindOrdered(sub.pending)
	sub.pending = nil
	return model.Update{ServerTime: e.clock.Now().Unix(), Changes: changes}, true
}

// PublicTags returns the current public tag set, for GET /api/pubtags.
func (e *Engine) PublicTags() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	tags := e.index.PublicTags()
	sort.Strings(tags)
	return tags
}

// Stats is a point-in-time snapshot for /metrics.
type Stats struct {
	Fetches     int
	Subscribers int
	Evictions   uint64
	QueueDepth  int
}

func (e *Engine) Snapshot() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	depth := 0
	for _, sub := range e.subs {
		depth += len(sub.pending)
	}
	return Stats{
		Fetches:     e.store.Len(),
		Subscribers: len(e.subs),
		Evictions:   atomic.LoadUint64(&e.evictions),
		QueueDepth:  depth,
	}
}

// flushBound enforces the per-subscriber outbound queue cap: on
// overflow, drop the oldest AddPoints first; if still over, fall back to
// a full Reset + resnapshot.
func (e *Engine) flushBound(sub *Subscriber, now time.Time) {
	if len(sub.pending) <= e.cfg.MaxQueueLen {
		return
	}
	for i, c := range sub.pending {
		if c.Kind == model.ChangeAddPoints {
			sub.pending = append(sub.pending[:i], sub.pending[i+1:]...)
			break
		}
	}
	if len(sub.pending) <= e.cfg.MaxQueueLen {
		return
	}
	e.log.Warn().Str("sub", sub.ID).Msg(ducktrackerrors.ErrQueueOverflow.Error())
	e.resyncLocked(sub, now)
}

// resyncLocked clears a subscriber's pending queue and visible set, then
// rebuilds a fresh Reset + full snapshot from the current tag index and
// fetch store. Caller must hold e.mu.
func (e *Engine) resyncLocked(sub *Subscriber, now time.Time) {
	sub.pending = []model.UpdateChange{{Kind: model.ChangeReset}}
	sub.visible = make(map[uint64]struct{})
	sub.publicSeen = make(map[string]struct{})

	matched := e.index.Matches(sub.Selected)
	if len(matched) == 0 {
		sub.notify()
		return
	}
	e.deliverAddFetch(sub, matched)

	pointsPayload := &model.AddPointsPayload{Points: make(map[uint64][]model.Location)}
	for id := range matched {
		if f, ok := e.store.Get(id); ok && len(f.Points) > 0 {
			pointsPayload.Points[id] = append([]model.Location(nil), f.Points...)
		}
	}
	if len(pointsPayload.Points) > 0 {
		sub.enqueue(model.UpdateChange{Kind: model.ChangeAddPoints, AddPoints: pointsPayload})
	}
	sub.notify()
}

// deliverAddFetch computes, for sub, which of candidateIDs are newly
// visible under sub's filter and which public tags sub hasn't seen yet,
// and queues a single AddFetch change covering both. Caller must hold
// e.mu.
func (e *Engine) deliverAddFetch(sub *Subscriber, candidateIDs map[uint64]struct{}) {
	matched := e.index.Matches(sub.Selected)

	newTags := make(map[uint64][]string)
	newMaxPoints := make(map[uint64]int)
	newNames := make(map[uint64]*string)

	for id := range candidateIDs {
		if _, stillMatches := matched[id]; !stillMatches {
			continue
		}
		if _, already := sub.visible[id]; already {
			continue
		}
		f, ok := e.store.Get(id)
		if !ok {
			continue
		}
		newTags[id] = []string{f.Tag}
		newMaxPoints[id] = f.MaxPoints
		if f.Name != "" {
			name := f.Name
			newNames[id] = &name
		}
		sub.visible[id] = struct{}{}
	}

	var newPublic []string
	for _, tag := range e.index.PublicTags() {
		if _, seen := sub.publicSeen[tag]; !seen {
			newPublic = append(newPublic, tag)
			sub.publicSeen[tag] = struct{}{}
		}
	}
	sort.Strings(newPublic)

	if len(newTags) == 0 && len(newPublic) == 0 {
		return
	}

	sub.enqueue(model.UpdateChange{
		Kind: model.ChangeAddFetch,
		AddFetch: &model.AddFetchPayload{
			Tags:      newTags,
			Public:    newPublic,
			Names:     newNames,
			MaxPoints: newMaxPoints,
		},
	})
}

// groupByKindOrdered re-orders a subscriber's raw pending queue into the
// spec's tie-break shape for a single flush: Reset, then one merged
// AddFetch (fetch ids ascending), then one merged AddPoints (fetch ids
// ascending), then ExpireFetch entries (ascending).
func groupByKindOrdered(pending []model.UpdateChange) []model.UpdateChange {
	var out []model.UpdateChange

	hasReset := false
	addFetch := &model.AddFetchPayload{
		Tags:      make(map[uint64][]string),
		Names:     make(map[uint64]*string),
		MaxPoints: make(map[uint64]int),
	}
	publicSeen := make(map[string]struct{})
	addPoints := &model.AddPointsPayload{Points: make(map[uint64][]model.Location)}
	var expireIDs []uint64

	for _, c := range pending {
		switch c.Kind {
		case model.ChangeReset:
			hasReset = true
		case model.ChangeAddFetch:
			for id, tags := range c.AddFetch.Tags {
				addFetch.Tags[id] = tags
			}
			for id, n := range c.AddFetch.Names {
				addFetch.Names[id] = n
			}
			for id, mp := range c.AddFetch.MaxPoints {
				addFetch.MaxPoints[id] = mp
			}
			for _, tag := range c.AddFetch.Public {
				if _, ok := publicSeen[tag]; !ok {
					publicSeen[tag] = struct{}{}
					addFetch.Public = append(addFetch.Public, tag)
				}
			}
		case model.ChangeAddPoints:
			for id, pts := range c.AddPoints.Points {
				addPoints.Points[id] = append(addPoints.Points[id], pts...)
			}
		case model.ChangeExpireFetch:
			expireIDs = append(expireIDs, c.ExpireFetch.FetchID)
		}
	}

	if hasReset {
		out = append(out, model.UpdateChange{Kind: model.ChangeReset})
	}
	if len(addFetch.Tags) > 0 || len(addFetch.Public) > 0 {
		sort.Strings(addFetch.Public)
		out = append(out, model.UpdateChange{Kind: model.ChangeAddFetch, AddFetch: addFetch})
	}
	if len(addPoints.Points) > 0 {
		out = append(out, model.UpdateChange{Kind: model.ChangeAddPoints, AddPoints: addPoints})
	}
	if len(expireIDs) > 0 {
		sort.Slice(expireIDs, func(i, j int) bool { return expireIDs[i] < expireIDs[j] })
		for _, id := range expireIDs {
			out = append(out, model.UpdateChange{Kind: model.ChangeExpireFetch, ExpireFetch: &model.ExpireFetchPayload{FetchID: id}})
		}
	}
	return out
}
