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

package checker

import (
	"context"
	"log/slog"
	"time"

	"github.com/kraklabs/verieasy/pkg/vpath"
)

// Polarity distinguishes a component's evidence character (spec.md §4.1
// "Rationale for the asymmetry", GLOSSARY "Formal component"/"Testing component").
type Polarity int

const (
	// Formal components are sound: a pass is conclusive, a fail is merely
	// inconclusive.
	Formal Polarity = iota
	// Testing components are under-approximate: a fail is a witness of
	// divergence, a pass is only evidence.
	Testing
)

func (p Polarity) String() string {
	if p == Formal {
		return "formal"
	}
	return "testing"
}

// CheckResult is one component invocation's verdict batch.
type CheckResult struct {
	Status error
	Ok     []vpath.Path
	Fail   []vpath.Path
}

// Component is a verdict source the orchestrator drives in declared order.
type Component interface {
	Name() string
	Polarity() Polarity
	Check(ctx context.Context, view StateView) CheckResult
}

// Report is the final classification the orchestrator produces once every
// component has run or under_checking has emptied (spec.md §4.1 "Termination").
type Report struct {
	Verified     []vpath.Path
	Tested       []vpath.Path
	Failed       []vpath.Path
	Unverified   []vpath.Path // still in under_checking at the end, including functions that only passed testing components (those are also in Tested)
	// Inconsistent holds functions a formal component logged a fail for that
	// nonetheless ended verified or tested (spec.md §7 "Post-run"): a warning,
	// not an error.
	Inconsistent []vpath.Path
	StoppedEarly bool
}

// Run drives components in order over st, mutating its worklists, and
// returns the final report (spec.md §4.1's per-component loop and
// termination rule). m may be nil, in which case no metrics are recorded.
func Run(ctx context.Context, st *CheckerState, components []Component, strict bool, logger *slog.Logger, m *Metrics) Report {
	if logger == nil {
		logger = slog.Default()
	}

	for _, comp := range components {
		if len(st.UnderChecking) == 0 {
			break
		}

		start := time.Now()
		result := comp.Check(ctx, newStateView(st))
		m.timeComponent(comp.Name(), start, result.Status)

		if result.Status != nil {
			logger.Warn("checker.component_error", "component", comp.Name(), "error", result.Status)
			continue
		}

		applyOk(st, comp, result.Ok)
		stoppedEarly := applyFail(st, comp, result.Fail, strict)
		m.Observe(st)

		if stoppedEarly {
			return buildReport(st, true)
		}
	}

	return buildReport(st, false)
}

func applyOk(st *CheckerState, comp Component, ok []vpath.Path) {
	for _, name := range ok {
		if !containsPath(st.UnderChecking, name) {
			continue
		}
		switch comp.Polarity() {
		case Formal:
			st.removeFromUnderChecking(name)
			st.Verified = append(st.Verified, name)
		case Testing:
			if !containsPath(st.Tested, name) {
				st.Tested = append(st.Tested, name)
			}
		}
	}
}

// applyFail reports whether strict mode demands an early stop.
func applyFail(st *CheckerState, comp Component, fail []vpath.Path, strict bool) bool {
	anyTestingFail := false
	for _, name := range fail {
		if !containsPath(st.UnderChecking, name) {
			continue
		}
		switch comp.Polarity() {
		case Testing:
			st.removeFromUnderChecking(name)
			st.Failed = append(st.Failed, name)
			anyTestingFail = true
		case Formal:
			key := name.Key()
			st.formalFails[key] = append(st.formalFails[key], comp.Name())
		}
	}
	return comp.Polarity() == Testing && anyTestingFail && strict
}

func buildReport(st *CheckerState, stoppedEarly bool) Report {
	rep := Report{
		Verified:     append([]vpath.Path(nil), st.Verified...),
		Tested:       append([]vpath.Path(nil), st.Tested...),
		Failed:       append([]vpath.Path(nil), st.Failed...),
		Unverified:   append([]vpath.Path(nil), st.UnderChecking...),
		StoppedEarly: stoppedEarly,
	}

	for key, comps := range st.formalFails {
		if len(comps) == 0 {
			continue
		}
		for _, name := range append(append([]vpath.Path{}, st.Verified...), st.Tested...) {
			if name.Key() == key {
				rep.Inconsistent = append(rep.Inconsistent, name)
				break
			}
		}
	}

	return rep
}
