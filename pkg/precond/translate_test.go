// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package precond

import (
	"testing"

	"github.com/kraklabs/verieasy/pkg/vpath"
)

func mustParse(t *testing.T, s string) *Expr {
	t.Helper()
	e, err := ParseExpr(s)
	if err != nil {
		t.Fatalf("ParseExpr(%q): %v", s, err)
	}
	return e
}

func TestEraseOld_ReplacesWithBareArgument(t *testing.T) {
	e := mustParse(t, "self.len() == old(self.len()) + 1")
	erased := eraseOld(e)
	if erased.R.L.Kind == KindOldCall {
		t.Fatalf("old() should have been erased, got %+v", erased.R.L)
	}
	if Render(erased) != "(self.len() == (self.len() + 1))" {
		t.Errorf("Render(erased) = %q", Render(erased))
	}
}

func TestEraseOld_NestedOldCalls(t *testing.T) {
	e := mustParse(t, "old(old(a))")
	erased := eraseOld(e)
	if erased.Kind != KindPath || erased.Path != "a" {
		t.Fatalf("expected full erasure down to the bare path, got %+v", erased)
	}
}

func TestTranslate_SpecFunctionSurvivesOnKnownExecutableCallee(t *testing.T) {
	c := Collected{
		SpecFns: []SpecFunction{
			{Name: vpath.ParsePath("spec_ok"), Body: mustParse(t, "helper(a)")},
		},
	}
	tr := Translate(c)
	if len(tr.SpecFns) != 1 {
		t.Fatalf("expected the spec function to survive, got %d survivors, %d dropped", len(tr.SpecFns), tr.DroppedSpec)
	}
	if _, ok := tr.SpecFns["ok"]; !ok {
		t.Errorf("expected spec_ prefix stripped to \"ok\", got keys %v", keysOf(tr.SpecFns))
	}
}

func TestTranslate_SpecFunctionDroppedOnUnknownSpecCallee(t *testing.T) {
	c := Collected{
		SpecFns: []SpecFunction{
			{Name: vpath.ParsePath("spec_a"), Body: mustParse(t, "spec_missing(x)")},
		},
	}
	tr := Translate(c)
	if len(tr.SpecFns) != 0 || tr.DroppedSpec != 1 {
		t.Fatalf("expected the item dropped for calling an unresolved spec_ callee, got survivors=%v dropped=%d", keysOf(tr.SpecFns), tr.DroppedSpec)
	}
}

func TestTranslate_SpecFunctionSurvivesOnAllowedSpecCallee(t *testing.T) {
	c := Collected{
		SpecFns: []SpecFunction{
			{Name: vpath.ParsePath("spec_a"), Body: mustParse(t, "spec_b(x)")},
			{Name: vpath.ParsePath("spec_b"), Body: mustParse(t, "true")},
		},
	}
	tr := Translate(c)
	if len(tr.SpecFns) != 2 {
		t.Fatalf("expected both spec functions to survive, got %v (dropped=%d)", keysOf(tr.SpecFns), tr.DroppedSpec)
	}
}

func TestTranslate_FixedPointCascadesRemoval(t *testing.T) {
	// spec_a calls spec_b calls spec_missing: removing spec_b must also remove spec_a.
	c := Collected{
		SpecFns: []SpecFunction{
			{Name: vpath.ParsePath("spec_a"), Body: mustParse(t, "spec_b(x)")},
			{Name: vpath.ParsePath("spec_b"), Body: mustParse(t, "spec_missing(x)")},
		},
	}
	tr := Translate(c)
	if len(tr.SpecFns) != 0 || tr.DroppedSpec != 2 {
		t.Fatalf("expected cascading removal of both, got %v (dropped=%d)", keysOf(tr.SpecFns), tr.DroppedSpec)
	}
}

func TestTranslate_SelfRewrittenToImplTypeInSpecMethod(t *testing.T) {
	c := Collected{
		SpecMeths: []SpecMethod{
			{ImplType: vpath.NewPrecise(vpath.ParsePath("Wallet")), Name: "spec_invariant", Body: mustParse(t, "Self::spec_helper(self)")},
		},
	}
	// Self::spec_helper resolves to Wallet::spec_helper, which isn't allowed: dropped.
	tr := Translate(c)
	if len(tr.SpecMeths) != 0 || tr.DroppedSpec != 1 {
		t.Fatalf("expected the method dropped, got %v", keysOf(tr.SpecMeths))
	}
}

func TestTranslate_RequiresClausesCarryThroughWithOldErased(t *testing.T) {
	c := Collected{
		Functions: []FunctionPrecond{
			{Name: vpath.ParsePath("withdraw"), Requires: []*Expr{mustParse(t, "amount <= old(balance)")}},
		},
	}
	tr := Translate(c)
	if len(tr.Functions) != 1 {
		t.Fatalf("expected the function to survive translation untouched in count, got %+v", tr.Functions)
	}
	got := Render(tr.Functions[0].Requires[0])
	if got != "(amount <= balance)" {
		t.Errorf("Render after old() erasure = %q", got)
	}
}

func TestTranslate_RequiresClauseDroppedOnUnresolvedSpecCallee(t *testing.T) {
	c := Collected{
		Functions: []FunctionPrecond{
			{
				Name: vpath.ParsePath("withdraw"),
				Requires: []*Expr{
					mustParse(t, "amount > 0"),
					mustParse(t, "spec_missing(amount)"),
				},
			},
		},
	}
	tr := Translate(c)
	if len(tr.Functions) != 1 {
		t.Fatalf("expected the function to survive, got %+v", tr.Functions)
	}
	reqs := tr.Functions[0].Requires
	if len(reqs) != 1 {
		t.Fatalf("expected only the clause with no unresolved callee to survive, got %d: %+v", len(reqs), reqs)
	}
	if Render(reqs[0]) != "(amount > 0)" {
		t.Errorf("unexpected surviving clause: %s", Render(reqs[0]))
	}
}

func TestTranslate_RequiresClauseSurvivesOnAllowedSpecCallee(t *testing.T) {
	c := Collected{
		Functions: []FunctionPrecond{
			{
				Name:     vpath.ParsePath("withdraw"),
				Requires: []*Expr{mustParse(t, "spec_valid(amount)")},
			},
		},
		SpecFns: []SpecFunction{
			{Name: vpath.ParsePath("spec_valid"), Body: mustParse(t, "true")},
		},
	}
	tr := Translate(c)
	reqs := tr.Functions[0].Requires
	if len(reqs) != 1 {
		t.Fatalf("expected the clause referencing an allowed spec callee to survive, got %+v", reqs)
	}
	if Render(reqs[0]) != "valid(amount)" {
		t.Errorf("expected the surviving callee rewritten to its stripped name, got %s", Render(reqs[0]))
	}
}

func TestTranslate_MethodRequiresClauseDroppedOnUnresolvedSelfSpecCallee(t *testing.T) {
	c := Collected{
		Methods: []MethodPrecond{
			{
				ImplType: vpath.NewPrecise(vpath.ParsePath("Wallet")),
				Name:     "withdraw",
				Requires: []*Expr{mustParse(t, "Self::spec_missing(self)")},
			},
		},
	}
	tr := Translate(c)
	if len(tr.Methods) != 1 {
		t.Fatalf("expected the method to survive, got %+v", tr.Methods)
	}
	if len(tr.Methods[0].Requires) != 0 {
		t.Fatalf("expected the unresolved-callee clause dropped, got %+v", tr.Methods[0].Requires)
	}
}

func TestExpandTraitDefaults_SkipsOverriddenMethod(t *testing.T) {
	traits := []TraitPrecond{
		{Trait: vpath.ParsePath("Account"), Name: "withdraw", Requires: []*Expr{mustParse(t, "amount > 0")}},
	}
	methods := []MethodPrecond{
		{ImplType: vpath.NewPrecise(vpath.ParsePath("Checking")), Name: "withdraw", Requires: []*Expr{mustParse(t, "amount > 1")}},
	}
	impls := map[string][]vpath.Type{
		"Account": {
			vpath.NewPrecise(vpath.ParsePath("Checking")),
			vpath.NewPrecise(vpath.ParsePath("Savings")),
		},
	}
	expanded := ExpandTraitDefaults(traits, methods, impls)
	if len(expanded) != 1 || expanded[0].ImplType.Render() != "Savings" {
		t.Fatalf("expected only Savings to inherit the default, got %+v", expanded)
	}
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
