// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package precond

import (
	"strings"
	"testing"

	"github.com/kraklabs/verieasy/pkg/vpath"
)

func TestRender_ImplicationLowered(t *testing.T) {
	e := mustParse(t, "a ==> b")
	got := Render(e)
	want := "(!(a)) || (b)"
	if got != want {
		t.Errorf("Render(a ==> b) = %q, want %q", got, want)
	}
}

func TestRender_RoundTripsBinaryAndCall(t *testing.T) {
	e := mustParse(t, "f(a, b) == 1")
	got := Render(e)
	want := "(f(a, b) == 1)"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_StripsSpecPrefixFromCallSite(t *testing.T) {
	e := mustParse(t, "spec_helper(a)")
	got := Render(e)
	want := "helper(a)"
	if got != want {
		t.Errorf("Render(spec_helper(a)) = %q, want %q", got, want)
	}
}

func TestRender_StripsSpecPrefixFromMethodCallSite(t *testing.T) {
	e := mustParse(t, "self.spec_helper(a)")
	got := Render(e)
	want := "self.helper(a)"
	if got != want {
		t.Errorf("Render(self.spec_helper(a)) = %q, want %q", got, want)
	}
}

func TestRender_LeavesQualifierIntactWhenStrippingCallSite(t *testing.T) {
	e := mustParse(t, "Wallet::spec_helper(a)")
	got := Render(e)
	want := "Wallet::helper(a)"
	if got != want {
		t.Errorf("Render(Wallet::spec_helper(a)) = %q, want %q", got, want)
	}
}

func TestEmitFunctionChecker_Name(t *testing.T) {
	fp := FunctionPrecond{
		Name:     vpath.ParsePath("withdraw"),
		Inputs:   []Input{{Name: "balance", Type: "u64"}, {Name: "amount", Type: "u64"}},
		Requires: []*Expr{mustParse(t, "amount <= balance")},
	}
	name, body := EmitFunctionChecker(fp)
	if name.Last() != "verieasy_pre_withdraw" {
		t.Errorf("checker name = %q", name.String())
	}
	if !strings.Contains(body, "fn verieasy_pre_withdraw(balance: u64, amount: u64) -> bool") {
		t.Errorf("body missing expected signature: %s", body)
	}
	if !strings.Contains(body, "(amount <= balance)") {
		t.Errorf("body missing requires expression: %s", body)
	}
}

func TestEmitFunctionChecker_ConjoinsMultipleRequires(t *testing.T) {
	fp := FunctionPrecond{
		Name:     vpath.ParsePath("f"),
		Requires: []*Expr{mustParse(t, "a > 0"), mustParse(t, "b > 0")},
	}
	_, body := EmitFunctionChecker(fp)
	if !strings.Contains(body, "(a > 0) && (b > 0)") {
		t.Errorf("expected conjunction of both clauses, got: %s", body)
	}
}

func TestEmitMethodChecker_IncludesSelfParam(t *testing.T) {
	mp := MethodPrecond{
		ImplType: vpath.NewPrecise(vpath.ParsePath("Wallet")),
		Name:     "withdraw",
		Inputs:   []Input{{Name: "amount", Type: "u64"}},
		Requires: []*Expr{mustParse(t, "amount <= self.balance")},
	}
	name, body := EmitMethodChecker(mp)
	if name.Last() != "verieasy_pre_withdraw" {
		t.Errorf("checker name = %q", name.String())
	}
	if !strings.Contains(body, "self: Wallet") {
		t.Errorf("expected self parameter in body: %s", body)
	}
}

func TestEmitSpecFunction(t *testing.T) {
	f := SpecFunction{
		Name:   vpath.ParsePath("is_valid"),
		Inputs: []Input{{Name: "balance", Type: "u64"}},
		Body:   mustParse(t, "balance >= 0"),
	}
	got := EmitSpecFunction(f)
	if !strings.Contains(got, "fn is_valid(balance: u64) -> bool") {
		t.Errorf("got %s", got)
	}
}

func TestEmitSpecMethod(t *testing.T) {
	m := SpecMethod{
		ImplType: vpath.NewPrecise(vpath.ParsePath("Wallet")),
		Name:     "invariant",
		Body:     mustParse(t, "self.balance >= 0"),
	}
	got := EmitSpecMethod(m)
	if !strings.Contains(got, "fn invariant(self) -> bool") {
		t.Errorf("got %s", got)
	}
}
