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

package precond

import (
	"strings"

	"github.com/kraklabs/verieasy/pkg/vpath"
)

// specPrefix marks a spec-mode item's name in the source dialect. Items named
// with it are not directly executable and must be translated or erased before
// emission (spec.md §4.4).
const specPrefix = "spec_"

// Translated is the preprocessed, emission-ready form of a Collected set: every
// requires clause has had old() erased, every spec function/method has survived
// the allowed-set fixed point (or been dropped), and every spec_ name has been
// stripped.
type Translated struct {
	Functions []FunctionPrecond
	Methods   []MethodPrecond
	SpecFns   map[string]SpecFunction // key: stripped flattened name
	SpecMeths map[string]SpecMethod   // key: implType.Render() + "::" + stripped name

	// DroppedSpec counts spec functions/methods removed by the allowed-set fixed
	// point for calling something neither allowed nor known-executable.
	DroppedSpec int
}

// ExpandTraitDefaults turns each TraitPrecond into one MethodPrecond per impl
// type the caller reports for that trait (spec.md §4.4, §9: a trait-default
// `requires` binds every implementing type unless the type overrides the method
// itself, in which case the override's own requires wins). impls maps a trait's
// "::"-joined path to the concrete impl types pkg/sourceparse collected for it;
// precond has no notion of impls on its own, so the caller (cmd/verieasy's
// translatePreconditions) builds it from source2's sourceparse.Collected.TraitImpls.
func ExpandTraitDefaults(traits []TraitPrecond, methods []MethodPrecond, impls map[string][]vpath.Type) []MethodPrecond {
	overridden := map[string]bool{}
	for _, m := range methods {
		overridden[m.ImplType.Render()+"::"+m.Name] = true
	}

	var out []MethodPrecond
	for _, tp := range traits {
		for _, impl := range impls[tp.Trait.String()] {
			if overridden[impl.Render()+"::"+tp.Name] {
				continue
			}
			out = append(out, MethodPrecond{
				ImplType: impl,
				Name:     tp.Name,
				Inputs:   tp.Inputs,
				Requires: tp.Requires,
			})
		}
	}
	return out
}

// Translate runs the precondition translation pipeline (spec.md §4.4) over an
// already trait-expanded Collected set: old() erasure on every requires clause,
// and the allowed-set fixed point over spec-mode bodies followed by spec_-prefix
// stripping on whatever survives it.
func Translate(c Collected) Translated {
	t := Translated{
		SpecFns:   map[string]SpecFunction{},
		SpecMeths: map[string]SpecMethod{},
	}

	allowed := map[string]bool{}
	specFns := map[string]SpecFunction{}
	for _, f := range c.SpecFns {
		key := f.Name.String()
		allowed[key] = true
		specFns[key] = f
	}
	specMeths := map[string]SpecMethod{}
	for _, m := range c.SpecMeths {
		key := specMethodKey(m)
		allowed[key] = true
		specMeths[key] = m
	}

	for {
		changed := false
		for key, f := range specFns {
			if !allowed[key] {
				continue
			}
			if !calleesSatisfied(f.Body, allowed, "") {
				delete(allowed, key)
				changed = true
			}
		}
		for key, m := range specMeths {
			if !allowed[key] {
				continue
			}
			if !calleesSatisfied(m.Body, allowed, m.ImplType.Render()) {
				delete(allowed, key)
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for key, f := range specFns {
		if !allowed[key] {
			t.DroppedSpec++
			continue
		}
		f.Name = stripSpecPrefixFromPath(f.Name)
		t.SpecFns[f.Name.Flatten()] = f
	}
	for key, m := range specMeths {
		if !allowed[key] {
			t.DroppedSpec++
			continue
		}
		m.Name = stripSpecPrefix(m.Name)
		t.SpecMeths[m.ImplType.Render()+"::"+m.Name] = m
	}

	for _, f := range c.Functions {
		f.Requires = filterSatisfiedRequires(eraseOldAll(f.Requires), allowed, "")
		t.Functions = append(t.Functions, f)
	}
	for _, m := range c.Methods {
		m.Requires = filterSatisfiedRequires(eraseOldAll(m.Requires), allowed, m.ImplType.Render())
		t.Methods = append(t.Methods, m)
	}

	return t
}

// filterSatisfiedRequires keeps only the requires clauses that, after old()
// erasure, reference no callee besides known-executable code and names in the
// final allowed set (spec.md §4.4 preprocessing step 3). A requires clause
// calling a spec_ item the fixed point dropped would otherwise be emitted
// referencing a function that no longer exists in the executable fragment.
func filterSatisfiedRequires(exprs []*Expr, allowed map[string]bool, implType string) []*Expr {
	var kept []*Expr
	for _, e := range exprs {
		if calleesSatisfied(e, allowed, implType) {
			kept = append(kept, e)
		}
	}
	return kept
}

func specMethodKey(m SpecMethod) string {
	return m.ImplType.Render() + "::" + m.Name
}

// calleesSatisfied reports whether every callee in e is either a known-executable
// reference (its last path segment doesn't start with specPrefix, meaning it's
// assumed to be ordinary already-compiled code) or present in the allowed set
// (spec.md §4.4's allowed-set fixed point). implType, when non-empty, is used to
// resolve "Self::f" callees inside a method body to "implType::f".
func calleesSatisfied(e *Expr, allowed map[string]bool, implType string) bool {
	ok := true
	e.Walk(func(n *Expr) {
		if n.Kind != KindCall && n.Kind != KindMethod {
			return
		}
		name := n.Name
		if implType != "" && strings.HasPrefix(name, "Self::") {
			name = implType + "::" + strings.TrimPrefix(name, "Self::")
		}
		if !strings.HasPrefix(lastSegment(name), specPrefix) {
			return // known-executable: ordinary compiled code, always satisfied
		}
		if !allowed[name] {
			ok = false
		}
	})
	return ok
}

func lastSegment(s string) string {
	if i := strings.LastIndex(s, "::"); i != -1 {
		return s[i+2:]
	}
	return s
}

func stripSpecPrefix(s string) string {
	return strings.TrimPrefix(s, specPrefix)
}

// stripSpecCallee rewrites a call or method-call name whose last path segment
// starts with specPrefix by stripping that prefix, leaving any qualifying
// segments (e.g. "Wallet::") untouched (spec.md §4.4 preprocessing step 4). By
// the time Render sees a surviving spec_-prefixed callee, Translate's
// allowed-set fixed point has already guaranteed it has a definition emitted
// under its own stripped name.
func stripSpecCallee(name string) string {
	if i := strings.LastIndex(name, "::"); i != -1 {
		seg := name[i+2:]
		if strings.HasPrefix(seg, specPrefix) {
			return name[:i+2] + strings.TrimPrefix(seg, specPrefix)
		}
		return name
	}
	return stripSpecPrefix(name)
}

// stripSpecPrefixFromPath strips specPrefix from a Path's final segment only,
// leaving module-qualifying segments untouched.
func stripSpecPrefixFromPath(p vpath.Path) vpath.Path {
	segs := p.Segments()
	if len(segs) == 0 {
		return p
	}
	segs[len(segs)-1] = stripSpecPrefix(segs[len(segs)-1])
	return vpath.NewPath(segs...)
}

// eraseOldAll rewrites every old(e) node to e across a set of requires clauses.
// Sound only for preconditions, which evaluate entirely in the pre-state
// (spec.md §4.4: "old() erasure is sound for requires clauses because a
// precondition has no post-state to distinguish it from").
func eraseOldAll(exprs []*Expr) []*Expr {
	out := make([]*Expr, len(exprs))
	for i, e := range exprs {
		out[i] = eraseOld(e)
	}
	return out
}

func eraseOld(e *Expr) *Expr {
	return e.Transform(func(n *Expr) *Expr {
		if n.Kind == KindOldCall {
			return n.Sub
		}
		return n
	})
}
