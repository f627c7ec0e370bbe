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
	"github.com/kraklabs/verieasy/pkg/precond"
	"github.com/kraklabs/verieasy/pkg/signature"
	"github.com/kraklabs/verieasy/pkg/sourceparse"
	"github.com/kraklabs/verieasy/pkg/vpath"
)

// PreprocessInput bundles everything the preprocessing step (spec.md §4.1
// "Preprocessing (once)") needs from the two sources plus the translated
// precondition set.
type PreprocessInput struct {
	Source1, Source2           sourceparse.Collected
	Functions                  []precond.FunctionPrecond
	Methods                    []precond.MethodPrecond
}

// Preprocess matches common functions across the two sources, intersects and
// applies the generic-alias rewrite, and partitions the result into
// constructors, getters, and the initial under_checking worklist (spec.md
// §4.1 steps 1-3).
func Preprocess(in PreprocessInput) *CheckerState {
	st := newCheckerState()

	common, snap1, snap2 := matchCommonFunctions(in.Source1.Functions, in.Source2.Functions)
	globalInst := intersectInstantiated(in.Source1.Instantiated, in.Source2.Instantiated)

	rewrittenPreconds := rewritePreconditions(in.Functions, in.Methods, globalInst)
	st.Preconditions = rewrittenPreconds

	for i := range common {
		cf := rewriteGenericAlias(common[i], globalInst)
		st.common[cf.Metadata.Name.Key()] = cf

		switch {
		case cf.Metadata.IsConstructor():
			st.Constructors[cf.Metadata.ImplType.Base().Key()] = cf
		case cf.Metadata.IsGetter():
			st.Getters[cf.Metadata.ImplType.Base().Key()] = cf
		default:
			st.UnderChecking = append(st.UnderChecking, cf.Metadata.Name)
		}
	}

	st.Snapshot1 = snap1
	st.Snapshot2 = snap2

	applyMethodCleanup(st)

	return st
}

// matchCommonFunctions pairs functions present in both sources under equal
// signature and fully-qualified name (spec.md §4.1 step 1, §8 "Common
// function"). Unmatched functions are returned as per-source snapshots.
func matchCommonFunctions(fns1, fns2 []signature.Function) ([]signature.CommonFunction, []signature.Function, []signature.Function) {
	byName2 := map[string]signature.Function{}
	for _, f := range fns2 {
		byName2[f.Metadata.Name.Key()] = f
	}

	matched2 := map[string]bool{}
	var common []signature.CommonFunction
	var snap1 []signature.Function

	for _, f1 := range fns1 {
		f2, ok := byName2[f1.Metadata.Name.Key()]
		if ok && f1.Metadata.Sig.Equal(f2.Metadata.Sig) {
			common = append(common, signature.CommonFunction{
				Metadata: f1.Metadata,
				Body1:    f1.Body,
				Body2:    f2.Body,
			})
			matched2[f1.Metadata.Name.Key()] = true
			continue
		}
		snap1 = append(snap1, f1)
	}

	var snap2 []signature.Function
	for _, f2 := range fns2 {
		if !matched2[f2.Metadata.Name.Key()] {
			snap2 = append(snap2, f2)
		}
	}

	return common, snap1, snap2
}

// intersectInstantiated keeps only instantiated-type aliases both sources
// agree on (spec.md §3: "intersected across the two sources to form the
// globally-valid instantiations").
func intersectInstantiated(a, b []vpath.InstantiatedType) []vpath.InstantiatedType {
	byAlias2 := map[string]vpath.InstantiatedType{}
	for _, it := range b {
		byAlias2[it.Alias.Key()] = it
	}

	var out []vpath.InstantiatedType
	for _, it1 := range a {
		it2, ok := byAlias2[it1.Alias.Key()]
		if ok && it1.Concrete.Equal(it2.Concrete) {
			out = append(out, it1)
		}
	}
	return out
}

// rewriteGenericAlias rewrites cf's impl_type and name to use a matching
// instantiation's alias (spec.md §4.1 step 2).
func rewriteGenericAlias(cf signature.CommonFunction, instantiated []vpath.InstantiatedType) signature.CommonFunction {
	if cf.Metadata.ImplType == nil || !cf.Metadata.ImplType.IsGeneric() {
		return cf
	}
	for _, it := range instantiated {
		if !cf.Metadata.ImplType.EqIgnoreGenerics(it.Concrete) {
			continue
		}
		aliasType := vpath.NewPrecise(it.Alias)
		cf.Metadata.ImplType = &aliasType
		cf.Metadata.Name = it.Alias.Append(cf.Metadata.Name.Last())
		return cf
	}
	return cf
}

// rewritePreconditions applies the same generic-alias rewrite to every
// method precondition whose impl_type matches an instantiation (spec.md
// §4.1 step 2: "The same rewrite is applied to every precondition").
func rewritePreconditions(fns []precond.FunctionPrecond, methods []precond.MethodPrecond, instantiated []vpath.InstantiatedType) []signature.Precondition {
	var out []signature.Precondition
	for _, f := range fns {
		out = append(out, signature.Precondition{Name: f.Name})
	}
	for _, m := range methods {
		implType := m.ImplType
		for _, it := range instantiated {
			if implType.EqIgnoreGenerics(it.Concrete) {
				implType = vpath.NewPrecise(it.Alias)
				break
			}
		}
		it := implType
		out = append(out, signature.Precondition{Name: vpath.NewPath(m.Name), ImplType: &it})
	}
	return out
}

// applyMethodCleanup removes methods whose impl_type lacks a constructor, and
// then removes constructors/getters whose impl_type has no surviving method
// (spec.md §3 invariants, §4.5 "Cleanup rules"). Applying it twice is a no-op
// (spec.md §8 idempotence property), since the second pass finds nothing left
// to remove.
func applyMethodCleanup(st *CheckerState) {
	var kept []vpath.Path
	for _, name := range st.UnderChecking {
		cf, ok := st.common[name.Key()]
		if !ok || cf.Metadata.ImplType == nil {
			kept = append(kept, name)
			continue
		}
		if _, hasCtor := st.Constructors[cf.Metadata.ImplType.Base().Key()]; hasCtor {
			kept = append(kept, name)
		}
	}
	st.UnderChecking = kept

	surviving := map[string]bool{}
	for _, name := range st.UnderChecking {
		if cf, ok := st.common[name.Key()]; ok && cf.Metadata.ImplType != nil {
			surviving[cf.Metadata.ImplType.Base().Key()] = true
		}
	}
	for key := range st.Constructors {
		if !surviving[key] {
			delete(st.Constructors, key)
		}
	}
	for key := range st.Getters {
		if !surviving[key] {
			delete(st.Getters, key)
		}
	}
}
