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

// Package boxwrap implements the --box-coords privacy wrap: a pure
// function applied to every incoming point before it reaches the core,
// remapping real coordinates into a configured bounding box so raw
// positions never appear in stored state or subscriber events.
package boxwrap

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Box is a bounding rectangle expressed as two opposite corners.
type Box struct {
	Lat1, Lng1, Lat2, Lng2 float64
}

// Parse reads the --box-coords flag value "lat1,lng1,lat2,lng2".
func Parse(s string) (Box, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Box{}, fmt.Errorf("boxwrap: expected 4 comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Box{}, fmt.Errorf("boxwrap: %q is not a number: %w", p, err)
		}
		vals[i] = v
	}
	return Box{Lat1: vals[0], Lng1: vals[1], Lat2: vals[2], Lng2: vals[3]}, nil
}

// Wrapper remaps raw lat/lon into a Box using modular fractional remap,
// resolving the spec's open question in favor of the option that avoids
// clustering artifacts: wrapped = lo + mod(raw - lo, hi - lo).
type Wrapper struct {
	box    Box
	active bool
}

// Identity returns a Wrapper that passes coordinates through unchanged,
// used when --box-coords is not set.
func Identity() Wrapper {
	return Wrapper{}
}

// New returns a Wrapper bound to box.
func New(box Box) Wrapper {
	return Wrapper{box: box, active: true}
}

// Wrap remaps (lat, lon) into the configured box. A no-op Wrapper
// returns its input unchanged.
func (w Wrapper) Wrap(lat, lon float64) (float64, float64) {
	if !w.active {
		return lat, lon
	}
	return wrapInto(lat, w.box.Lat1, w.box.Lat2), wrapInto(lon, w.box.Lng1, w.box.Lng2)
}

func wrapInto(v, lo, hi float64) float64 {
	span := hi - lo
	if span == 0 {
		return lo
	}
	return lo + positiveMod(v-lo, span)
}

// positiveMod is math.Mod normalized to always return a non-negative
// result in [0, m), regardless of the sign of a.
func positiveMod(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += math.Abs(m)
	}
	return r
}
