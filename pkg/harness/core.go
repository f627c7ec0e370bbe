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

// Package harness synthesizes back-end-specific driver programs for a set of
// common functions (spec.md §4.5). Core logic here is back-end-agnostic; the
// kani/pbt/fuzz/alive2 files each implement Backend to fill in the axes the
// spec says backends differ along.
package harness

import (
	"fmt"
	"strings"

	"github.com/kraklabs/verieasy/pkg/signature"
	"github.com/kraklabs/verieasy/pkg/vpath"
)

// Param is one non-receiver argument of a harness-emitted function.
type Param struct {
	Name string
	Type string
}

// FunctionSpec is a harness-time view of a common function: enough to emit a
// check driver for it.
type FunctionSpec struct {
	Name     vpath.Path
	Params   []Param
	ImplType *vpath.Type
	Receiver signature.Receiver
	HasPre   bool // a verieasy_pre_<ident> checker exists for this function
}

// FlatName is the function's "___"-joined export name (spec.md §4.6).
func (f FunctionSpec) FlatName() string {
	return f.Name.Flatten()
}

// CheckerFnName is the emitted driver's name: check_<flat-name>.
func (f FunctionSpec) CheckerFnName() string {
	return "check_" + f.FlatName()
}

// FunctionCollection re-partitions a checker run's common functions into
// free functions, methods, constructors and getters, dropping whatever the
// cleanup rules (spec.md §4.5 "Cleanup rules") disqualify.
type FunctionCollection struct {
	Free         []FunctionSpec
	Methods      []FunctionSpec
	Constructors map[string]FunctionSpec // keyed by ImplType.Base().Key()
	Getters      map[string]FunctionSpec
	Dropped      []string // warnings, one line each
}

// NewFunctionCollection partitions fns (already matched/rewritten common
// functions, spec.md §4.1) and applies the cleanup rules.
func NewFunctionCollection(fns []FunctionSpec, preAvailable map[string]bool) FunctionCollection {
	fc := FunctionCollection{
		Constructors: map[string]FunctionSpec{},
		Getters:      map[string]FunctionSpec{},
	}

	var methods []FunctionSpec
	for _, f := range fns {
		f.HasPre = preAvailable[preconditionKey(f)]
		switch {
		case f.ImplType == nil:
			fc.Free = append(fc.Free, f)
		case f.Name.Last() == "verieasy_new":
			fc.Constructors[f.ImplType.Base().Key()] = f
		case f.Name.Last() == "verieasy_get" && f.Receiver.Present:
			fc.Getters[f.ImplType.Base().Key()] = f
		default:
			methods = append(methods, f)
		}
	}

	for _, m := range methods {
		if _, ok := fc.Constructors[m.ImplType.Base().Key()]; ok {
			fc.Methods = append(fc.Methods, m)
			continue
		}
		fc.Dropped = append(fc.Dropped, fmt.Sprintf("method %s dropped: no constructor for %s", m.Name, m.ImplType.Render()))
	}

	surviving := map[string]bool{}
	for _, m := range fc.Methods {
		surviving[m.ImplType.Base().Key()] = true
	}
	for key, ctor := range fc.Constructors {
		if !surviving[key] {
			fc.Dropped = append(fc.Dropped, fmt.Sprintf("constructor %s dropped: no surviving method", ctor.Name))
			delete(fc.Constructors, key)
		}
	}
	for key, g := range fc.Getters {
		if !surviving[key] {
			fc.Dropped = append(fc.Dropped, fmt.Sprintf("getter %s dropped: no surviving method", g.Name))
			delete(fc.Getters, key)
		}
	}

	return fc
}

func preconditionKey(f FunctionSpec) string {
	if f.ImplType != nil {
		return f.ImplType.Render() + "::" + f.Name.Last()
	}
	return f.Name.Key()
}

// ReceiverPrefix derives the (ampersand?, mut?) tuple for re-emitting a state
// value so it matches the callee's self-receiver (spec.md §4.5 "Receiver-
// prefix derivation").
func ReceiverPrefix(r signature.Receiver, value string) string {
	switch {
	case !r.Present:
		return value
	case r.Ref && r.Mut:
		return "&mut " + value
	case r.Ref:
		return "&" + value
	default:
		return value
	}
}

// ArgNames returns f's parameter names in order, for building an argument
// tuple call expression.
func ArgNames(f FunctionSpec) []string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return names
}

// RecordName is the argument-record type name for f.
func RecordName(f FunctionSpec) string {
	flat := f.FlatName()
	if flat == "" {
		return "Args"
	}
	return "Args" + strings.ToUpper(flat[:1]) + flat[1:]
}

// Backend fills in the axes spec.md §4.5 says drivers differ along.
type Backend interface {
	// DeriveAttributes returns the derive/attribute line(s) placed above an
	// argument-record struct (serializable bytes, symbolic arbitrary, or
	// random-testing arbitrary).
	DeriveAttributes() string
	// SourceArgs renders the statement(s) that obtain an argument record
	// named recordVar of type recordType.
	SourceArgs(recordVar, recordType string) string
	// CatchPanics reports whether target-call panics should be caught and
	// mapped to "skip" (testing backends) rather than propagated (symbolic).
	CatchPanics() bool
	// RenderPrecondition renders the precondition guard given the checker
	// call expression; e.g. "if !(%s) { return skip; }" or an assume-style
	// statement that prunes the search space.
	RenderPrecondition(checkCall string) string
	// ReportMismatch renders the statement that reports a divergence for
	// name, given the two evaluated result expressions.
	ReportMismatch(name, result1, result2 string) string
	// Boilerplate renders file-level header text (module declarations, test
	// wrappers, fuzzer entry points, configuration literals).
	Boilerplate() string
}

// EmitCheckDriver renders the back-end-agnostic skeleton of check_<flat-
// name> for a free function (spec.md §4.5 "Core logic... free function").
func EmitCheckDriver(b Backend, f FunctionSpec) string {
	record := RecordName(f)
	var sb strings.Builder

	sb.WriteString(b.DeriveAttributes())
	sb.WriteString(fmt.Sprintf("struct %s {\n", record))
	for _, p := range f.Params {
		sb.WriteString(fmt.Sprintf("    %s: %s,\n", p.Name, p.Type))
	}
	sb.WriteString("}\n\n")

	sb.WriteString(fmt.Sprintf("fn %s() {\n", f.CheckerFnName()))
	sb.WriteString("    " + b.SourceArgs("args", record) + "\n")

	if f.HasPre {
		checkerCall := fmt.Sprintf("verieasy_pre_%s(%s)", f.Name.Last(), renderArgTuple(f, "args"))
		sb.WriteString("    " + b.RenderPrecondition(checkerCall) + "\n")
	}

	call1 := fmt.Sprintf("mod1::%s(%s)", f.Name.Last(), renderArgTuple(f, "args"))
	call2 := fmt.Sprintf("mod2::%s(%s)", f.Name.Last(), renderArgTuple(f, "args"))
	if b.CatchPanics() {
		sb.WriteString(fmt.Sprintf("    let r1 = std::panic::catch_unwind(|| %s);\n", call1))
		sb.WriteString(fmt.Sprintf("    let r2 = std::panic::catch_unwind(|| %s);\n", call2))
		sb.WriteString("    let (Ok(r1), Ok(r2)) = (r1, r2) else { return; };\n")
	} else {
		sb.WriteString(fmt.Sprintf("    let r1 = %s;\n", call1))
		sb.WriteString(fmt.Sprintf("    let r2 = %s;\n", call2))
	}

	sb.WriteString("    if r1 != r2 {\n")
	sb.WriteString("        " + b.ReportMismatch(f.Name.String(), "r1", "r2") + "\n")
	sb.WriteString("    }\n")
	sb.WriteString("}\n")

	return sb.String()
}

// EmitMethodDriver renders the method variant: constructs two states,
// applies the receiver-prefix, and optionally compares getters (spec.md
// §4.5 "For each method emit, additionally").
func EmitMethodDriver(b Backend, f, ctor FunctionSpec, getter *FunctionSpec) string {
	record := RecordName(f)
	ctorRecord := RecordName(ctor)
	var sb strings.Builder

	sb.WriteString(b.DeriveAttributes())
	sb.WriteString(fmt.Sprintf("struct %s {\n", record))
	for _, p := range f.Params {
		sb.WriteString(fmt.Sprintf("    %s: %s,\n", p.Name, p.Type))
	}
	sb.WriteString("}\n\n")

	sb.WriteString(fmt.Sprintf("fn %s() {\n", f.CheckerFnName()))
	sb.WriteString("    " + b.SourceArgs("ctor_args", ctorRecord) + "\n")
	sb.WriteString("    " + b.SourceArgs("args", record) + "\n")

	implName := ""
	if f.ImplType != nil {
		implName = f.ImplType.Render()
	}
	sb.WriteString(fmt.Sprintf("    let mut s1 = mod1::%s::%s(%s);\n", implName, ctor.Name.Last(), renderArgTuple(ctor, "ctor_args")))
	sb.WriteString(fmt.Sprintf("    let mut s2 = mod2::%s::%s(%s);\n", implName, ctor.Name.Last(), renderArgTuple(ctor, "ctor_args")))

	if f.HasPre {
		checkerCall := fmt.Sprintf("%s.verieasy_pre_%s(%s)", ReceiverPrefix(f.Receiver, "s2"), f.Name.Last(), renderArgTuple(f, "args"))
		sb.WriteString("    " + b.RenderPrecondition(checkerCall) + "\n")
	}

	call1 := fmt.Sprintf("%s.%s(%s)", ReceiverPrefix(f.Receiver, "s1"), f.Name.Last(), renderArgTuple(f, "args"))
	call2 := fmt.Sprintf("%s.%s(%s)", ReceiverPrefix(f.Receiver, "s2"), f.Name.Last(), renderArgTuple(f, "args"))
	if b.CatchPanics() {
		sb.WriteString(fmt.Sprintf("    let r1 = std::panic::catch_unwind(std::panic::AssertUnwindSafe(|| %s));\n", call1))
		sb.WriteString(fmt.Sprintf("    let r2 = std::panic::catch_unwind(std::panic::AssertUnwindSafe(|| %s));\n", call2))
		sb.WriteString("    let (Ok(r1), Ok(r2)) = (r1, r2) else { return; };\n")
	} else {
		sb.WriteString(fmt.Sprintf("    let r1 = %s;\n", call1))
		sb.WriteString(fmt.Sprintf("    let r2 = %s;\n", call2))
	}

	sb.WriteString("    if r1 != r2 {\n")
	sb.WriteString("        " + b.ReportMismatch(f.Name.String(), "r1", "r2") + "\n")
	sb.WriteString("    }\n")

	if getter != nil {
		sb.WriteString(fmt.Sprintf("    if s1.%s() != s2.%s() {\n", getter.Name.Last(), getter.Name.Last()))
		sb.WriteString("        " + b.ReportMismatch(f.Name.String()+" (state)", "s1", "s2") + "\n")
		sb.WriteString("    }\n")
	}

	sb.WriteString("}\n")
	return sb.String()
}

func renderArgTuple(f FunctionSpec, recordVar string) string {
	names := ArgNames(f)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = recordVar + "." + n
	}
	return strings.Join(parts, ", ")
}
