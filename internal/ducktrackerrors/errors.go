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

// Package ducktrackerrors collects the sentinel errors shared across the
// DuckTracker core and HTTP layer. Handlers use errors.Is against these
// to pick a status code; nothing here carries request-scoped detail.
package ducktrackerrors

import "errors"

var (
	// ErrBadCredentials covers both an unknown user and a wrong password;
	// the two are never distinguished in a response.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrInvalidTagSpec is returned by the Tag Parser on malformed input.
	ErrInvalidTagSpec = errors.New("invalid tag spec")

	// ErrInvalidPoint is returned when a posted location fails validation.
	ErrInvalidPoint = errors.New("invalid point")

	// ErrUnknownShare is returned when a link token has no matching fetch.
	ErrUnknownShare = errors.New("unknown share")

	// ErrShareExpired is returned when a link token's fetches have all expired.
	ErrShareExpired = errors.New("share expired")

	// ErrTokenExpired is returned when a subscriber bearer token has lapsed.
	ErrTokenExpired = errors.New("token expired")

	// ErrQueueOverflow is raised internally when a subscriber's outbound
	// queue cannot absorb another event; recovered by a Reset + refill.
	ErrQueueOverflow = errors.New("subscriber queue overflow")
)
