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

package vpath

import "strings"

// Kind distinguishes the two Type variants.
type Kind int

const (
	// Precise is a concrete, non-generic type: just a Path.
	Precise Kind = iota
	// Generic is a base path applied to type arguments, e.g. Foo<Bar, Baz>.
	Generic
)

// Type is the tagged variant {Precise(Path), Generic{Base, Args}}.
type Type struct {
	kind Kind
	base Path
	args []Type
}

// NewPrecise builds a Precise type from a Path.
func NewPrecise(p Path) Type {
	return Type{kind: Precise, base: p}
}

// NewGeneric builds a Generic type from a base path and argument types.
func NewGeneric(base Path, args ...Type) Type {
	return Type{kind: Generic, base: base, args: append([]Type(nil), args...)}
}

// IsGeneric reports whether t is the Generic variant.
func (t Type) IsGeneric() bool {
	return t.kind == Generic
}

// Base returns the underlying Path (the type itself for Precise, the base for Generic).
func (t Type) Base() Path {
	return t.base
}

// Args returns the generic argument types, empty for Precise.
func (t Type) Args() []Type {
	out := make([]Type, len(t.args))
	copy(out, t.args)
	return out
}

// EqIgnoreGenerics compares only the base paths, ignoring any generic argument list.
func (t Type) EqIgnoreGenerics(other Type) bool {
	return t.base.Equal(other.base)
}

// Equal compares kind, base path, and (for Generic) argument types positionally.
func (t Type) Equal(other Type) bool {
	if t.kind != other.kind {
		return false
	}
	if !t.base.Equal(other.base) {
		return false
	}
	if t.kind == Precise {
		return true
	}
	if len(t.args) != len(other.args) {
		return false
	}
	for i := range t.args {
		if !t.args[i].Equal(other.args[i]) {
			return false
		}
	}
	return true
}

// Render produces the type's string form: a bare path for Precise, and an
// angle-bracketed comma-joined argument list appended for Generic.
func (t Type) Render() string {
	if t.kind == Precise {
		return t.base.String()
	}
	parts := make([]string, len(t.args))
	for i, a := range t.args {
		parts[i] = a.Render()
	}
	return t.base.String() + "<" + strings.Join(parts, ", ") + ">"
}

// FromPathString parses one level of embedded angle brackets: "Foo<Bar, Baz<Qux>>"
// becomes Generic{Foo, [Bar, Baz<Qux>]} where the inner "Baz<Qux>" argument is kept
// as a single Precise-rendered segment (only one level of nesting is unpacked, per
// spec.md §3: "parses one level of embedded angle brackets").
func FromPathString(s string) Type {
	open := strings.IndexByte(s, '<')
	if open == -1 || !strings.HasSuffix(s, ">") {
		return NewPrecise(ParsePath(strings.TrimSpace(s)))
	}
	base := strings.TrimSpace(s[:open])
	inner := s[open+1 : len(s)-1]
	rawArgs := splitTopLevelCommaArgs(inner)
	args := make([]Type, 0, len(rawArgs))
	for _, a := range rawArgs {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		args = append(args, NewPrecise(ParsePath(a)))
	}
	return NewGeneric(ParsePath(base), args...)
}

// splitTopLevelCommaArgs splits a comma list while respecting nested angle brackets,
// e.g. "Bar, Baz<Qux, Quux>" -> ["Bar", " Baz<Qux, Quux>"].
func splitTopLevelCommaArgs(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// InstantiatedType pairs a single-segment user-visible alias name with the generic
// type it concretely instantiates, e.g. `type FB = Foo<Bar>` becomes
// {Alias: "FB", Concrete: Generic{Foo, [Bar]}}.
type InstantiatedType struct {
	Alias    Path
	Concrete Type
}

// Valid reports the InstantiatedType invariants from spec.md §3: Concrete must be
// Generic, and Alias must be a single-segment path.
func (it InstantiatedType) Valid() bool {
	return it.Concrete.IsGeneric() && len(it.Alias.Segments()) == 1
}
