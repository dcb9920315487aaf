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
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aaronlmathis/gosight-server/internal/ducktrackerrors"
	"github.com/aaronlmathis/gosight-server/internal/fetchstore"
	"github.com/aaronlmathis/gosight-server/internal/model"
	"github.com/aaronlmathis/gosight-server/internal/tagparser"
)

// writeFail writes the Hauk-compatible "FAIL\n<reason>" line-oriented
// body at the given status code.
func writeFail(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "FAIL\n%s\n", reason)
}

func writeOK(w http.ResponseWriter, lines ...string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK\n")
	for _, l := range lines {
		fmt.Fprintf(w, "%s\n", l)
	}
}

// verifyPublisherCreds accepts either a standard HTTP Basic
// Authorization header or the usr/pw form fields Hauk clients have
// historically posted alongside it, and checks them against Passwd.
func (d *Deps) verifyPublisherCreds(r *http.Request) (string, bool) {
	if user, pass, ok := r.BasicAuth(); ok {
		return user, d.Passwd.Verify(user, pass)
	}
	user := r.FormValue("usr")
	pass := r.FormValue("pw")
	if user == "" {
		return "", false
	}
	return user, d.Passwd.Verify(user, pass)
}

// Create handles POST /api/create.
func (d *Deps) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := d.verifyPublisherCreds(r); !ok {
		writeFail(w, http.StatusUnauthorized, ducktrackerrors.ErrBadCredentials.Error())
		return
	}

	parsed, err := tagparser.Parse(r.FormValue("lid"))
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	var dur time.Duration
	if raw := r.FormValue("dur"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			dur = time.Duration(secs) * time.Second
		}
	}

	maxPoints := parsed.Options.MaxPoints

	result, err := d.Engine.CreateFetch(parsed.Tags, maxPoints, dur)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	urls := make([]string, 0, len(result.Fetches))
	for _, f := range result.Fetches {
		urls = append(urls, shareURL(f))
	}
	writeOK(w, append([]string{result.SessionID}, urls...)...)
}

// shareURL reconstructs the per-tag share link in the same
// visibility:tag shape the publisher submitted, matching spec S1's
// literal example "/?pub:museum=<lt>". Bare private tags (the common
// case) get no prefix, mirroring the input convention where a tag
// without "pub:"/"priv:" defaults to private.
func shareURL(f fetchstore.CreatedFetch) string {
	if f.Visibility == model.Public {
		return fmt.Sprintf("/?pub:%s=%s", f.Tag, f.ShareToken)
	}
	return fmt.Sprintf("/?%s=%s", f.Tag, f.ShareToken)
}

// Post handles POST /api/post.
func (d *Deps) Post(w http.ResponseWriter, r *http.Request) {
	sid := r.FormValue("sid")
	if sid == "" {
		writeFail(w, http.StatusBadRequest, "missing sid")
		return
	}

	lat, err1 := strconv.ParseFloat(r.FormValue("lat"), 64)
	lon, err2 := strconv.ParseFloat(r.FormValue("lon"), 64)
	if err1 != nil || err2 != nil {
		writeFail(w, http.StatusBadRequest, ducktrackerrors.ErrInvalidPoint.Error())
		return
	}
	lat, lon = d.Wrap.Wrap(lat, lon)

	ts, _ := strconv.ParseInt(r.FormValue("time"), 10, 64)
	acc, _ := strconv.ParseFloat(r.FormValue("acc"), 64)
	spd, _ := strconv.ParseFloat(r.FormValue("spd"), 64)
	prv, _ := strconv.Atoi(r.FormValue("prv"))

	loc := model.Location{
		Lat: lat, Lon: lon, Time: ts, Speed: spd, Accuracy: acc,
		Provider: model.Provider(prv),
	}
	if !loc.Valid() {
		writeFail(w, http.StatusBadRequest, ducktrackerrors.ErrInvalidPoint.Error())
		return
	}

	_, err := d.Engine.AppendPoints(sid, []model.Location{loc})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ducktrackerrors.ErrUnknownShare) || errors.Is(err, ducktrackerrors.ErrShareExpired) {
			status = http.StatusGone
		}
		writeFail(w, status, err.Error())
		return
	}
	writeOK(w)
}

// Stop handles POST /api/stop.
func (d *Deps) Stop(w http.ResponseWriter, r *http.Request) {
	sid := r.FormValue("sid")
	if sid == "" {
		writeFail(w, http.StatusBadRequest, "missing sid")
		return
	}
	if err := d.Engine.StopFetch(sid); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ducktrackerrors.ErrUnknownShare) {
			status = http.StatusGone
		}
		writeFail(w, status, err.Error())
		return
	}
	writeOK(w)
}
