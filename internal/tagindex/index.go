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

// Package tagindex is the reverse index from tag to fetch id, split into
// public and private namespaces. Like fetchstore, it holds no lock of
// its own; hub.Engine serializes access.
package tagindex

import "github.com/aaronlmathis/gosight-server/internal/model"

// Index is the tag -> set<fetch_id> reverse index.
type Index struct {
	public  map[string]map[uint64]struct{}
	private map[string]map[uint64]struct{}
	tagsOf  map[uint64]string // fetch id -> its tag, for O(1) Remove
	visOf   map[uint64]model.Visibility
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		public:  make(map[string]map[uint64]struct{}),
		private: make(map[string]map[uint64]struct{}),
		tagsOf:  make(map[uint64]string),
		visOf:   make(map[uint64]model.Visibility),
	}
}

// Insert adds fetchID under tag in the namespace selected by vis.
func (idx *Index) Insert(fetchID uint64, tag string, vis model.Visibility) {
	ns := idx.namespace(vis)
	if ns[tag] == nil {
		ns[tag] = make(map[uint64]struct{})
	}
	ns[tag][fetchID] = struct{}{}
	idx.tagsOf[fetchID] = tag
	idx.visOf[fetchID] = vis
}

// Remove drops fetchID from whichever namespace and tag it was indexed
// under. Safe to call on an id that was never inserted.
func (idx *Index) Remove(fetchID uint64) {
	tag, ok := idx.tagsOf[fetchID]
	if !ok {
		return
	}
	ns := idx.namespace(idx.visOf[fetchID])
	if set, ok := ns[tag]; ok {
		delete(set, fetchID)
		if len(set) == 0 {
			delete(ns, tag)
		}
	}
	delete(idx.tagsOf, fetchID)
	delete(idx.visOf, fetchID)
}

// HasPublicTag reports whether tag is currently present in the public
// namespace (carried by at least one live fetch).
func (idx *Index) HasPublicTag(tag string) bool {
	_, ok := idx.public[tag]
	return ok
}

// PublicTags returns every tag currently advertised in the public
// namespace.
func (idx *Index) PublicTags() []string {
	tags := make([]string, 0, len(idx.public))
	for tag := range idx.public {
		tags = append(tags, tag)
	}
	return tags
}

// Matches implements the spec's matching rule: an empty selected set
// returns the union of the public namespace. A non-empty set returns
// that same public union (public tags are always delivered to every
// subscriber as a discovery default — see spec worked example S2, which
// a strictly intersection-only reading of §4.3 could not satisfy)
// plus every fetch, public or private, carrying at least one selected
// tag.
func (idx *Index) Matches(selected map[string]struct{}) map[uint64]struct{} {
	out := make(map[uint64]struct{})

	for _, set := range idx.public {
		for id := range set {
			out[id] = struct{}{}
		}
	}
	if len(selected) == 0 {
		return out
	}

	for tag := range selected {
		for id := range idx.public[tag] {
			out[id] = struct{}{}
		}
		for id := range idx.private[tag] {
			out[id] = struct{}{}
		}
	}
	return out
}

func (idx *Index) namespace(vis model.Visibility) map[string]map[uint64]struct{} {
	if vis == model.Public {
		return idx.public
	}
	return idx.private
}
