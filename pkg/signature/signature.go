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

// Package signature models parsed function signatures and the entities built on top
// of them: FunctionMetadata, Function, CommonFunction, and Precondition.
package signature

import (
	"strings"

	"github.com/kraklabs/verieasy/pkg/vpath"
)

// Receiver describes a method's self-receiver, if any.
type Receiver struct {
	Present bool
	Ref     bool // &self / &mut self
	Mut     bool // mut self / &mut self
}

// Param is a single positional parameter's rendered type (names are not part of
// signature identity, per spec.md §3).
type Param struct {
	Type string // string-rendered form, names and bindings stripped
}

// Signature is an opaque carrier of a parsed signature plus custom equality.
type Signature struct {
	Ident      string
	Receiver   Receiver
	Params     []Param
	ReturnType string
}

// Equal compares function identifier, arity, positional argument types (by
// string-rendered form ignoring names/bindings), and return type. Self-receivers
// compare equal regardless of mutability/reference (spec.md §3).
func (s Signature) Equal(other Signature) bool {
	if s.Ident != other.Ident {
		return false
	}
	if s.Receiver.Present != other.Receiver.Present {
		return false
	}
	if len(s.Params) != len(other.Params) {
		return false
	}
	for i := range s.Params {
		if normalizeRendered(s.Params[i].Type) != normalizeRendered(other.Params[i].Type) {
			return false
		}
	}
	return normalizeRendered(s.ReturnType) == normalizeRendered(other.ReturnType)
}

// normalizeRendered strips surrounding whitespace so trivially-different renderings
// of the same type string don't break the "string-rendered form" comparison.
func normalizeRendered(s string) string {
	return strings.TrimSpace(s)
}

// FunctionMetadata identifies a function or method.
type FunctionMetadata struct {
	Name      vpath.Path
	Sig       Signature
	ImplType  *vpath.Type // nil for free functions
}

const (
	constructorIdent = "verieasy_new"
	getterIdent      = "verieasy_get"
)

// IsConstructor reports whether this metadata describes the special constructor
// method (spec.md §6: the function named `verieasy_new` in an impl block).
func (m FunctionMetadata) IsConstructor() bool {
	return m.ImplType != nil && m.Sig.Ident == constructorIdent
}

// IsGetter reports whether this metadata describes the special state-comparison
// getter (spec.md §6): a method named `verieasy_get` with a self-receiver. The
// number of non-receiver parameters is not checked.
func (m FunctionMetadata) IsGetter() bool {
	return m.ImplType != nil && m.Sig.Ident == getterIdent && m.Sig.Receiver.Present
}

// Function pairs metadata with an opaque textual body.
type Function struct {
	Metadata FunctionMetadata
	Body     string
}

// CommonFunction represents the same function present in both compared sources.
type CommonFunction struct {
	Metadata FunctionMetadata
	Body1    string
	Body2    string
}

// Precondition names a translator-emitted checker target.
type Precondition struct {
	Name     vpath.Path
	ImplType *vpath.Type
}

const checkerPrefix = "verieasy_pre_"

// CheckerName derives the generated checker function's name (spec.md §3):
// for a free function, the last segment prefixed with "verieasy_pre_"; for a
// method, a bare single-segment "verieasy_pre_<ident>" (it's called on the state
// receiver, so no outer path is needed).
func (p Precondition) CheckerName() vpath.Path {
	return vpath.NewPath(checkerPrefix + p.Name.Last())
}
