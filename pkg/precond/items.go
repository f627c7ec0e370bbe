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
	"regexp"
	"strings"

	"github.com/kraklabs/verieasy/pkg/vpath"
)

// Input holds a parameter as written in the specification source.
type Input struct {
	Name string
	Type string
}

// FunctionPrecond is a non-generic executable-mode free function bearing a
// `requires` clause (spec.md §4.4).
type FunctionPrecond struct {
	Name     vpath.Path
	Inputs   []Input
	Requires []*Expr
}

// MethodPrecond is a non-generic executable-mode impl method bearing a `requires`
// clause.
type MethodPrecond struct {
	ImplType vpath.Type
	Name     string
	Inputs   []Input
	Requires []*Expr
}

// TraitPrecond is a trait-default `requires`, later expanded into one
// MethodPrecond per concrete impl of that trait (spec.md §4.4).
type TraitPrecond struct {
	Trait    vpath.Path
	Name     string
	Inputs   []Input
	Requires []*Expr
}

// SpecFunction is a non-generic spec-mode free function.
type SpecFunction struct {
	Name   vpath.Path
	Inputs []Input
	Body   *Expr
}

// SpecMethod is a non-generic spec-mode impl method.
type SpecMethod struct {
	ImplType vpath.Type
	Name     string
	Inputs   []Input
	Body     *Expr
}

// Collected holds every item the collection pass (spec.md §4.4) pulled out of a
// specification source, before the allowed-set/old()/spec_ preprocessing passes.
type Collected struct {
	Functions []FunctionPrecond
	Methods   []MethodPrecond
	Traits    []TraitPrecond
	SpecFns   []SpecFunction
	SpecMeths []SpecMethod

	// Dropped counts untranslatable items for diagnostics (spec.md §4.4: "silently
	// dropped" -- counted here, never surfaced as an error).
	Dropped int
}

var (
	reSpecFn  = regexp.MustCompile(`(?s)^\s*spec\s+fn\s+(\w+)\s*\(([^)]*)\)\s*(?:->\s*([\w:<>,\s]+?))?\s*\{`)
	reFn      = regexp.MustCompile(`(?s)^\s*(?:pub\s+)?fn\s+(\w+)\s*\(([^)]*)\)(.*?)\{`)
	reImpl    = regexp.MustCompile(`(?s)^\s*impl(?:<[^>]*>)?\s+([\w:]+)\s*\{`)
	reTrait   = regexp.MustCompile(`(?s)^\s*trait\s+(\w+)\s*\{`)
	reRequire = regexp.MustCompile(`requires\s+(.*)`)
)

// Collect parses a specification source's text into the item structures spec.md
// §4.4 describes. It is best-effort: an item whose header or body the regexes
// above don't recognize is silently dropped (counted in Dropped), matching the
// translator's documented failure semantics.
func Collect(logger logf, source string) Collected {
	var out Collected
	items := splitTopLevelItems(source)
	for _, raw := range items {
		switch {
		case reSpecFn.MatchString(raw):
			collectSpecFn(logger, raw, "", &out)
		case reImpl.MatchString(raw):
			collectImplBody(logger, raw, &out)
		case reTrait.MatchString(raw):
			collectTrait(logger, raw, &out)
		case reFn.MatchString(raw):
			collectFn(logger, raw, "", &out)
		default:
			out.Dropped++
		}
	}
	return out
}

// logf is a minimal logging seam so precond doesn't force a slog dependency on
// callers that just want pure-function behavior in tests.
type logf func(format string, args ...any)

func collectSpecFn(logger logf, raw, implType string, out *Collected) {
	m := reSpecFn.FindStringSubmatch(raw)
	name := m[1]
	inputs := parseInputs(m[2])
	body, ok := bodyBetweenBraces(raw)
	if !ok {
		out.Dropped++
		return
	}
	expr, err := ParseExpr(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(body), ";")))
	if err != nil {
		logger("precond.collect.spec_fn_dropped name=%s err=%v", name, err)
		out.Dropped++
		return
	}
	if implType == "" {
		out.SpecFns = append(out.SpecFns, SpecFunction{Name: vpath.ParsePath(name), Inputs: inputs, Body: expr})
		return
	}
	out.SpecMeths = append(out.SpecMeths, SpecMethod{
		ImplType: vpath.NewPrecise(vpath.ParsePath(implType)),
		Name:     name,
		Inputs:   stripSelf(inputs),
		Body:     expr,
	})
}

func collectFn(logger logf, raw, implType string, out *Collected) {
	m := reFn.FindStringSubmatch(raw)
	name := m[1]
	inputs := parseInputs(m[2])
	clause := m[3]

	reqMatch := reRequire.FindStringSubmatch(clause)
	if reqMatch == nil {
		out.Dropped++
		return
	}
	requiresText := strings.TrimSpace(reqMatch[1])
	requiresText = strings.TrimSuffix(requiresText, "{")
	requiresText = strings.TrimSpace(requiresText)

	var exprs []*Expr
	for _, part := range splitTopLevelCommas(requiresText, false) {
		e, err := ParseExpr(strings.TrimSpace(part))
		if err != nil {
			logger("precond.collect.requires_clause_dropped name=%s err=%v", name, err)
			continue
		}
		exprs = append(exprs, e)
	}
	if len(exprs) == 0 {
		out.Dropped++
		return
	}

	if implType == "" {
		out.Functions = append(out.Functions, FunctionPrecond{Name: vpath.ParsePath(name), Inputs: inputs, Requires: exprs})
		return
	}
	out.Methods = append(out.Methods, MethodPrecond{
		ImplType: vpath.NewPrecise(vpath.ParsePath(implType)),
		Name:     name,
		Inputs:   stripSelf(inputs),
		Requires: exprs,
	})
}

func collectImplBody(logger logf, raw string, out *Collected) {
	m := reImpl.FindStringSubmatch(raw)
	implType := m[1]
	body, ok := bodyBetweenBraces(raw)
	if !ok {
		out.Dropped++
		return
	}
	for _, item := range splitTopLevelItems(body) {
		switch {
		case reSpecFn.MatchString(item):
			collectSpecFn(logger, item, implType, out)
		case reFn.MatchString(item):
			collectFn(logger, item, implType, out)
		default:
			out.Dropped++
		}
	}
}

func collectTrait(logger logf, raw string, out *Collected) {
	m := reTrait.FindStringSubmatch(raw)
	traitName := m[1]
	body, ok := bodyBetweenBraces(raw)
	if !ok {
		out.Dropped++
		return
	}
	for _, item := range splitTopLevelItems(body) {
		// Trait methods may be declarations (no body): "fn name(...) requires e;"
		reqMatch := reRequire.FindStringSubmatch(item)
		if reqMatch == nil {
			out.Dropped++
			continue
		}
		nameMatch := regexp.MustCompile(`fn\s+(\w+)\s*\(([^)]*)\)`).FindStringSubmatch(item)
		if nameMatch == nil {
			out.Dropped++
			continue
		}
		methodName := nameMatch[1]
		inputs := stripSelf(parseInputs(nameMatch[2]))
		requiresText := strings.TrimSuffix(strings.TrimSpace(reqMatch[1]), ";")
		var exprs []*Expr
		for _, part := range splitTopLevelCommas(requiresText, false) {
			e, err := ParseExpr(strings.TrimSpace(part))
			if err != nil {
				logger("precond.collect.trait_requires_dropped trait=%s err=%v", traitName, err)
				continue
			}
			exprs = append(exprs, e)
		}
		if len(exprs) == 0 {
			out.Dropped++
			continue
		}
		out.Traits = append(out.Traits, TraitPrecond{Trait: vpath.ParsePath(traitName), Name: methodName, Inputs: inputs, Requires: exprs})
	}
}

// parseInputs parses a parameter list "a: T1, b: T2, self" into Inputs, reusing
// top-level-comma splitting the way pkg/sigparse/sigparse.go does for Go params.
func parseInputs(s string) []Input {
	var out []Input
	for _, part := range splitTopLevelCommas(s, true) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "self" || part == "&self" || part == "&mut self" {
			out = append(out, Input{Name: "self"})
			continue
		}
		idx := strings.Index(part, ":")
		if idx == -1 {
			out = append(out, Input{Name: part})
			continue
		}
		out = append(out, Input{
			Name: strings.TrimSpace(part[:idx]),
			Type: strings.TrimSpace(part[idx+1:]),
		})
	}
	return out
}

func stripSelf(inputs []Input) []Input {
	var out []Input
	for _, in := range inputs {
		if in.Name != "self" {
			out = append(out, in)
		}
	}
	return out
}

// splitTopLevelCommas splits on commas not nested inside (), [], or (when angles
// is set, as for parameter types) <>, mirroring pkg/sigparse/sigparse.go's
// splitAtTopLevelCommas. Requires clauses pass angles=false, since there '<' and
// '>' are comparison operators.
func splitTopLevelCommas(s string, angles bool) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '<', '>':
			if angles && r == '<' {
				depth++
			} else if angles {
				depth--
			}
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

// splitTopLevelItems splits a sequence of items (function/impl/trait declarations)
// on brace boundaries, returning each item's full text including its header and
// trailing "}".
func splitTopLevelItems(s string) []string {
	var items []string
	depth := 0
	start := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if depth == 0 {
				if start == -1 {
					start = findItemStart(s, i)
				}
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start != -1 {
				items = append(items, s[start:i+1])
				start = -1
			}
		case ';':
			if depth == 0 {
				if start == -1 {
					start = findItemStart(s, i)
				}
				items = append(items, s[start:i+1])
				start = -1
			}
		}
	}
	return items
}

// findItemStart walks backward from a '{' (or a body-less item's ';') to find
// where its enclosing item's header began (the end of the previous top-level
// item, or the start of s).
func findItemStart(s string, braceIdx int) int {
	depth := 0
	for i := braceIdx - 1; i >= 0; i-- {
		switch s[i] {
		case '}':
			if depth == 0 {
				return i + 1
			}
			depth++
		case '{':
			depth--
		case ';':
			if depth == 0 {
				return i + 1
			}
		}
		if depth < 0 {
			return i + 1
		}
	}
	return 0
}

// bodyBetweenBraces returns the text strictly between an item's outermost
// matching '{' and '}'.
func bodyBetweenBraces(item string) (string, bool) {
	open := strings.IndexByte(item, '{')
	if open == -1 {
		return "", false
	}
	depth := 0
	for i := open; i < len(item); i++ {
		switch item[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return item[open+1 : i], true
			}
		}
	}
	return "", false
}
