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
	"fmt"
	"strings"

	"github.com/kraklabs/verieasy/pkg/signature"
	"github.com/kraklabs/verieasy/pkg/vpath"
)

// Render renders e back to executable surface syntax. "==>" is lowered to its
// boolean expansion (spec.md §4.4: "==> has no executable-mode equivalent and is
// lowered to (!a) || b during emission"); old() wrappers still present at render
// time (spec bodies, which Translate does not erase) are rendered as their bare
// argument, same as an erased requires clause.
func Render(e *Expr) string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindBoolLit:
		return fmt.Sprintf("%t", e.BoolLit)
	case KindIntLit:
		return fmt.Sprintf("%d", e.IntLit)
	case KindStringLit:
		return fmt.Sprintf("%q", e.StringLit)
	case KindPath:
		return e.Path
	case KindIndex:
		return fmt.Sprintf("%s[%s]", Render(e.L), Render(e.R))
	case KindCast:
		return fmt.Sprintf("(%s as %s)", Render(e.Sub), e.Type)
	case KindField:
		return fmt.Sprintf("%s.%s", Render(e.Sub), e.Name)
	case KindUnary:
		return fmt.Sprintf("%s%s", e.Op, Render(e.Sub))
	case KindCall:
		return fmt.Sprintf("%s(%s)", stripSpecCallee(e.Name), renderArgs(e.Args))
	case KindMethod:
		return fmt.Sprintf("%s.%s(%s)", Render(e.Sub), stripSpecCallee(e.Name), renderArgs(e.Args))
	case KindOldCall:
		return Render(e.Sub)
	case KindBinary:
		if e.Op == "==>" {
			return fmt.Sprintf("(!(%s)) || (%s)", Render(e.L), Render(e.R))
		}
		return fmt.Sprintf("(%s %s %s)", Render(e.L), e.Op, Render(e.R))
	default:
		return ""
	}
}

func renderArgs(args []*Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Render(a)
	}
	return strings.Join(parts, ", ")
}

// EmitFunctionChecker renders a free-function precondition as a standalone
// boolean-valued checker function, named per signature.Precondition.CheckerName
// (spec.md §3, §4.4).
func EmitFunctionChecker(f FunctionPrecond) (vpath.Path, string) {
	name := signature.Precondition{Name: f.Name}.CheckerName()
	return name, emitCheckerBody(name.Last(), f.Inputs, f.Requires)
}

// EmitMethodChecker renders an impl-method precondition as a boolean-valued
// checker method inside an impl block of the impl type. The receiver is
// written as "self: <ImplType>", and harness code calls the checker on a state
// value with method-call syntax (spec.md §4.4, §6).
func EmitMethodChecker(m MethodPrecond) (vpath.Path, string) {
	name := signature.Precondition{Name: vpath.NewPath(m.ImplType.Render(), m.Name)}.CheckerName()
	inputs := append([]Input{{Name: "self", Type: m.ImplType.Render()}}, m.Inputs...)
	return name, fmt.Sprintf("impl %s {\n%s\n}", m.ImplType.Render(), emitCheckerBody(name.Last(), inputs, m.Requires))
}

func emitCheckerBody(name string, inputs []Input, requires []*Expr) string {
	conj := make([]string, len(requires))
	for i, r := range requires {
		conj[i] = Render(r)
	}
	body := "true"
	if len(conj) > 0 {
		body = strings.Join(conj, " && ")
	}
	return fmt.Sprintf("fn %s(%s) -> bool {\n    %s\n}", name, renderInputs(inputs), body)
}

func renderInputs(inputs []Input) string {
	parts := make([]string, len(inputs))
	for i, in := range inputs {
		if in.Type == "" {
			parts[i] = in.Name
			continue
		}
		parts[i] = fmt.Sprintf("%s: %s", in.Name, in.Type)
	}
	return strings.Join(parts, ", ")
}

// EmitSpecFunction renders a surviving spec function as an ordinary executable
// function, its spec_ prefix already stripped by Translate.
func EmitSpecFunction(f SpecFunction) string {
	return fmt.Sprintf("fn %s(%s) -> bool {\n    %s\n}", f.Name.Last(), renderInputs(f.Inputs), Render(f.Body))
}

// EmitSpecMethod renders a surviving spec method as an ordinary executable
// method on its impl type (an impl block holding that single method), its
// spec_ prefix already stripped by Translate.
func EmitSpecMethod(m SpecMethod) string {
	inputs := append([]Input{{Name: "self"}}, m.Inputs...)
	return fmt.Sprintf("impl %s {\nfn %s(%s) -> bool {\n    %s\n}\n}", m.ImplType.Render(), m.Name, renderInputs(inputs), Render(m.Body))
}
