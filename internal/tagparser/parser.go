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

// Package tagparser parses the Hauk "preferred link id" string into the
// list of (visibility, tag) pairs and out-of-band options a fetch create
// request carries.
package tagparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aaronlmathis/gosight-server/internal/core"
	"github.com/aaronlmathis/gosight-server/internal/ducktrackerrors"
	"github.com/aaronlmathis/gosight-server/internal/model"
)

// Visibility re-exports model.Visibility for callers that only import
// the parser.
type Visibility = model.Visibility

const (
	Private = model.Private
	Public  = model.Public
)

// TagSpec is one parsed (visibility, tag) pair.
type TagSpec struct {
	Visibility Visibility
	Tag        string
}

// Options carries the non-tag items parsed out of the link id (currently
// only points:N).
type Options struct {
	MaxPoints int // 0 means "not specified"
}

// Result is the full output of Parse.
type Result struct {
	Tags    []TagSpec
	Options Options
}

// randomTagBytes is the entropy used to synthesize a private tag when the
// link id is empty; base32-encoded this yields well over the 16-character
// floor the spec requires.
const randomTagBytes = 12

// Parse splits raw (the "lid" form field) on commas and evaluates each
// item left to right. A prefix (pub:/public:/priv:/private:) applies only
// to the item it is attached to. Bare tags default to private. Empty
// items are skipped. Tags are lowercased, trimmed, and deduplicated
// within the request. points:N sets Options.MaxPoints and is not itself a
// tag.
//
// An empty raw input is not an error: the caller gets a single synthetic
// private tag unique enough to act as a share link.
func Parse(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{
			Tags: []TagSpec{{Visibility: Private, Tag: "lk" + strings.ToLower(core.MustRandomToken(randomTagBytes))}},
		}, nil
	}

	var res Result
	seen := make(map[string]struct{})

	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		if opt, val, ok := strings.Cut(item, ":"); ok && strings.EqualFold(opt, "points") {
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return Result{}, fmt.Errorf("%w: points value %q is not numeric", ducktrackerrors.ErrInvalidTagSpec, val)
			}
			res.Options.MaxPoints = n
			continue
		}

		vis, tag, err := splitPrefix(item)
		if err != nil {
			return Result{}, err
		}

		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			return Result{}, fmt.Errorf("%w: tag %q is whitespace-only", ducktrackerrors.ErrInvalidTagSpec, item)
		}
		if strings.Contains(tag, ",") {
			// Unreachable via comma-splitting, kept for defense against
			// future callers that pre-join tags with other separators.
			return Result{}, fmt.Errorf("%w: tag %q contains a comma", ducktrackerrors.ErrInvalidTagSpec, tag)
		}

		key := vis.String() + ":" + tag
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		res.Tags = append(res.Tags, TagSpec{Visibility: vis, Tag: tag})
	}

	if len(res.Tags) == 0 {
		return Result{}, fmt.Errorf("%w: no tags parsed from %q", ducktrackerrors.ErrInvalidTagSpec, raw)
	}

	return res, nil
}

// splitPrefix strips a recognized visibility prefix from item. A prefix
// applies only to this one item, never "sticking" to subsequent items.
func splitPrefix(item string) (Visibility, string, error) {
	prefix, rest, ok := strings.Cut(item, ":")
	if !ok {
		return Private, item, nil
	}

	switch strings.ToLower(prefix) {
	case "pub", "public":
		return Public, rest, nil
	case "priv", "private":
		return Private, rest, nil
	default:
		// Not a recognized prefix (e.g. an item that just happens to
		// contain a colon that isn't points:); treat the whole item as
		// a bare, default-visibility tag.
		return Private, item, nil
	}
}
