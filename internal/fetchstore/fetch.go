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

// Package fetchstore holds the authoritative map of active fetches: one
// record per tag created by a publisher's /api/create call, owning a
// bounded, time-ordered ring of recent points.
//
// Nothing in this package takes a lock; it is designed to be driven
// entirely from within the hub.Engine's single coarse-grained mutex, per
// the concurrency model that shares Fetch Store, Tag Index, and
// Subscriber Registry state under one critical section.
package fetchstore

import (
	"sort"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/model"
)

// AbsoluteMaxPoints bounds max_points regardless of what a publisher
// requests via points:N.
const AbsoluteMaxPoints = 10000

// DefaultMaxPoints is used when a create request does not set points:N.
const DefaultMaxPoints = 100

// Fetch is one active share session bound to a single tag.
type Fetch struct {
	ID          uint64
	LinkToken   string
	Tag         string
	Visibility  model.Visibility
	MaxPoints   int
	MaxPointAge time.Duration // 0 means unset
	Name        string
	Points      []model.Location
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the fetch's TTL has passed as of now.
func (f *Fetch) Expired(now time.Time) bool {
	return !f.ExpiresAt.After(now)
}

// appendPoints merges in new points (already sorted by Time ascending
// among themselves), drops late arrivals whose Time is strictly less
// than the current last point's Time, then trims the front of the ring
// per MaxPoints and MaxPointAge. Returns the points that were actually
// accepted, in final stored order, for the Delta Engine to relay.
func (f *Fetch) appendPoints(pts []model.Location, now time.Time) []model.Location {
	sorted := make([]model.Location, len(pts))
	copy(sorted, pts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	var accepted []model.Location
	for _, p := range sorted {
		if len(f.Points) > 0 && p.Time < f.Points[len(f.Points)-1].Time {
			// Late arrival: history is not reordered.
			continue
		}
		f.Points = append(f.Points, p)
		accepted = append(accepted, p)
	}

	f.trim(now)
	return accepted
}

// trim drops points from the front of the ring while the fetch is over
// its point cap or its oldest point has aged past MaxPointAge.
func (f *Fetch) trim(now time.Time) {
	for len(f.Points) > f.MaxPoints {
		f.Points = f.Points[1:]
	}
	if f.MaxPointAge > 0 {
		for len(f.Points) > 0 && now.Sub(time.Unix(f.Points[0].Time, 0)) > f.MaxPointAge {
			f.Points = f.Points[1:]
		}
	}
}
