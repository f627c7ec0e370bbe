// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package vpath implements the fully-qualified symbol identity model: Path,
// Type, and InstantiatedType.
package vpath

import "strings"

// Path is an ordered sequence of string segments, e.g. ["crate", "bitmap", "alloc"]
// rendered as "crate::bitmap::alloc". Equality is segment-wise string equality.
type Path struct {
	segments []string
}

// NewPath builds a Path from segments. With no segments it returns the empty
// Path (the same value as Empty()) rather than panicking.
func NewPath(segments ...string) Path {
	if len(segments) == 0 {
		return Path{}
	}
	out := make([]string, len(segments))
	copy(out, segments)
	return Path{segments: out}
}

// Empty returns the zero Path (no segments).
func Empty() Path {
	return Path{}
}

// ParsePath parses a "::"-joined string into a Path. An empty input string yields
// Empty(), never a Path with one empty segment.
func ParsePath(s string) Path {
	if s == "" {
		return Empty()
	}
	return NewPath(strings.Split(s, "::")...)
}

// IsEmpty reports whether the Path has zero segments.
func (p Path) IsEmpty() bool {
	return len(p.segments) == 0
}

// Segments returns a copy of the path's segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// Join appends other's segments after p's, returning a new Path.
func (p Path) Join(other Path) Path {
	out := make([]string, 0, len(p.segments)+len(other.segments))
	out = append(out, p.segments...)
	out = append(out, other.segments...)
	return Path{segments: out}
}

// Append appends bare segments, returning a new Path.
func (p Path) Append(segments ...string) Path {
	out := make([]string, 0, len(p.segments)+len(segments))
	out = append(out, p.segments...)
	out = append(out, segments...)
	return Path{segments: out}
}

// Last returns the final segment, or "" if the path is empty.
func (p Path) Last() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Parent returns the path with its final segment removed. Parent of an empty or
// single-segment path is Empty().
func (p Path) Parent() Path {
	if len(p.segments) <= 1 {
		return Empty()
	}
	return Path{segments: append([]string(nil), p.segments[:len(p.segments)-1]...)}
}

// String renders the path in "::"-joined form.
func (p Path) String() string {
	return strings.Join(p.segments, "::")
}

// Flatten renders the path "___"-joined, used to derive stable export names
// (spec.md §4.6: "flat___name").
func (p Path) Flatten() string {
	return strings.Join(p.segments, "___")
}

// Equal reports segment-wise string equality.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// Compare gives Path a total order: shorter-prefix-first, then lexicographic
// segment-by-segment. Used to make Path usable as a sort key / in ordered worklists.
func (p Path) Compare(other Path) int {
	n := len(p.segments)
	if len(other.segments) < n {
		n = len(other.segments)
	}
	for i := 0; i < n; i++ {
		if p.segments[i] != other.segments[i] {
			if p.segments[i] < other.segments[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(p.segments) < len(other.segments):
		return -1
	case len(p.segments) > len(other.segments):
		return 1
	default:
		return 0
	}
}

// Key returns a comparable string usable as a map key, making Path hashable.
func (p Path) Key() string {
	return p.String()
}
