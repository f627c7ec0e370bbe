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

// Package checker implements the per-function state machine that drives
// components over the two sources' common functions (spec.md §4.1).
package checker

import (
	"github.com/kraklabs/verieasy/pkg/signature"
	"github.com/kraklabs/verieasy/pkg/vpath"
)

// CheckerState is the full mutable state of one checking run (spec.md §3):
// four disjoint-by-convention worklists plus constructors, getters,
// preconditions, and the two source snapshots.
type CheckerState struct {
	common map[string]signature.CommonFunction // key: Metadata.Name.Key()

	UnderChecking []vpath.Path
	Verified      []vpath.Path
	Tested        []vpath.Path
	Failed        []vpath.Path

	Constructors map[string]signature.CommonFunction // key: ImplType.Base().Key()
	Getters      map[string]signature.CommonFunction
	Preconditions []signature.Precondition

	// Snapshot1/Snapshot2 hold each source's functions that never matched the
	// other source (spec.md §4.1 step 1: "carried only for diagnostic output").
	Snapshot1 []signature.Function
	Snapshot2 []signature.Function

	// formalFails records, per common-function key, the names of formal
	// components that logged a fail verdict for it (inconclusive but worth
	// surfacing as a post-run inconsistency, spec.md §7 "Post-run").
	formalFails map[string][]string
}

func newCheckerState() *CheckerState {
	return &CheckerState{
		common:        map[string]signature.CommonFunction{},
		Constructors:  map[string]signature.CommonFunction{},
		Getters:       map[string]signature.CommonFunction{},
		formalFails:   map[string][]string{},
	}
}

// Common looks up a CommonFunction by its fully-qualified name.
func (s *CheckerState) Common(name vpath.Path) (signature.CommonFunction, bool) {
	cf, ok := s.common[name.Key()]
	return cf, ok
}

// removeFromUnderChecking removes name from UnderChecking, returning whether
// it was present.
func (s *CheckerState) removeFromUnderChecking(name vpath.Path) bool {
	for i, p := range s.UnderChecking {
		if p.Equal(name) {
			s.UnderChecking = append(s.UnderChecking[:i], s.UnderChecking[i+1:]...)
			return true
		}
	}
	return false
}

func containsPath(list []vpath.Path, name vpath.Path) bool {
	for _, p := range list {
		if p.Equal(name) {
			return true
		}
	}
	return false
}

// StateView is a read-only projection of CheckerState (spec.md §5: "a
// read-only view of the full checker state"). Components receive only this,
// never the mutable CheckerState, so they cannot bypass the orchestrator's
// worklist transitions.
type StateView struct {
	state *CheckerState
}

func newStateView(s *CheckerState) StateView {
	return StateView{state: s}
}

// UnderChecking returns the functions not yet verified or failed.
func (v StateView) UnderChecking() []vpath.Path {
	return append([]vpath.Path(nil), v.state.UnderChecking...)
}

// Verified returns the functions already formally verified.
func (v StateView) Verified() []vpath.Path {
	return append([]vpath.Path(nil), v.state.Verified...)
}

// Tested returns the functions that passed at least one testing component.
func (v StateView) Tested() []vpath.Path {
	return append([]vpath.Path(nil), v.state.Tested...)
}

// Failed returns the functions a testing component produced a counterexample for.
func (v StateView) Failed() []vpath.Path {
	return append([]vpath.Path(nil), v.state.Failed...)
}

// Common looks up a CommonFunction by its fully-qualified name.
func (v StateView) Common(name vpath.Path) (signature.CommonFunction, bool) {
	return v.state.Common(name)
}

// Constructor returns the constructor CommonFunction for an impl type, if any.
func (v StateView) Constructor(implType vpath.Path) (signature.CommonFunction, bool) {
	cf, ok := v.state.Constructors[implType.Key()]
	return cf, ok
}

// Getter returns the getter CommonFunction for an impl type, if any.
func (v StateView) Getter(implType vpath.Path) (signature.CommonFunction, bool) {
	cf, ok := v.state.Getters[implType.Key()]
	return cf, ok
}

// Preconditions returns every precondition descriptor collected for this run.
func (v StateView) Preconditions() []signature.Precondition {
	return append([]signature.Precondition(nil), v.state.Preconditions...)
}
