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

// Package model holds the wire and domain types shared by the fetch
// store, tag index, and hub: Location, Provider, and the fixed-arity
// JSON array encoding Hauk subscribers expect.
package model

import (
	"encoding/json"
	"fmt"
)

// Provider identifies the source of a fix.
type Provider int

const (
	ProviderGPS Provider = iota
	ProviderNetwork
)

// Location is one geo-point in a fetch's trail. The ordering of the
// fields is meaningful: Hauk-compatible clients decode it as a fixed
// 6-element JSON array, not an object.
type Location struct {
	Lat      float64
	Lon      float64
	Time     int64 // unix seconds
	Speed    float64
	Accuracy float64
	Provider Provider
}

// MarshalJSON encodes Location as [lat, lon, time, speed, accuracy, provider].
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal([6]float64{
		l.Lat, l.Lon, float64(l.Time), l.Speed, l.Accuracy, float64(l.Provider),
	})
}

// UnmarshalJSON decodes a fixed 6-element JSON array into Location.
func (l *Location) UnmarshalJSON(b []byte) error {
	var arr [6]float64
	if err := json.Unmarshal(b, &arr); err != nil {
		return fmt.Errorf("location: %w", err)
	}
	l.Lat = arr[0]
	l.Lon = arr[1]
	l.Time = int64(arr[2])
	l.Speed = arr[3]
	l.Accuracy = arr[4]
	l.Provider = Provider(arr[5])
	return nil
}

// Valid reports whether the location's coordinates are within range.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}
