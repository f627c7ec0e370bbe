// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package precond

import "testing"

func discardLog(string, ...any) {}

func TestCollect_FreeFunctionRequires(t *testing.T) {
	src := `
fn withdraw(balance: u64, amount: u64) requires amount <= balance {
    balance - amount
}
`
	c := Collect(discardLog, src)
	if len(c.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d (dropped=%d)", len(c.Functions), c.Dropped)
	}
	f := c.Functions[0]
	if f.Name.String() != "withdraw" {
		t.Errorf("Name = %q, want \"withdraw\"", f.Name.String())
	}
	if len(f.Inputs) != 2 || f.Inputs[0].Name != "balance" || f.Inputs[0].Type != "u64" {
		t.Errorf("Inputs = %+v", f.Inputs)
	}
	if len(f.Requires) != 1 {
		t.Fatalf("expected 1 requires clause, got %d", len(f.Requires))
	}
}

func TestCollect_MultipleRequiresClauses(t *testing.T) {
	src := `fn f(a: u64, b: u64) requires a > 0, b > 0 { a + b }`
	c := Collect(discardLog, src)
	if len(c.Functions) != 1 || len(c.Functions[0].Requires) != 2 {
		t.Fatalf("expected 2 requires conjuncts, got %+v", c.Functions)
	}
}

func TestCollect_ImplMethodRequires(t *testing.T) {
	src := `
impl Wallet {
    fn withdraw(&mut self, amount: u64) requires amount <= self.balance {
        self.balance -= amount;
    }
}
`
	c := Collect(discardLog, src)
	if len(c.Methods) != 1 {
		t.Fatalf("expected 1 method, got %d (dropped=%d)", len(c.Methods), c.Dropped)
	}
	m := c.Methods[0]
	if m.ImplType.Render() != "Wallet" || m.Name != "withdraw" {
		t.Errorf("got ImplType=%q Name=%q", m.ImplType.Render(), m.Name)
	}
	if len(m.Inputs) != 1 || m.Inputs[0].Name != "amount" {
		t.Errorf("Inputs = %+v, self should be stripped", m.Inputs)
	}
}

func TestCollect_SpecFunction(t *testing.T) {
	src := `
spec fn spec_is_valid(balance: u64) -> bool {
    balance >= 0
}
`
	c := Collect(discardLog, src)
	if len(c.SpecFns) != 1 {
		t.Fatalf("expected 1 spec function, got %d (dropped=%d)", len(c.SpecFns), c.Dropped)
	}
	if c.SpecFns[0].Name.String() != "spec_is_valid" {
		t.Errorf("Name = %q", c.SpecFns[0].Name.String())
	}
}

func TestCollect_SpecMethodInImpl(t *testing.T) {
	src := `
impl Wallet {
    spec fn spec_invariant(self) -> bool {
        self.balance >= 0
    }
}
`
	c := Collect(discardLog, src)
	if len(c.SpecMeths) != 1 {
		t.Fatalf("expected 1 spec method, got %d (dropped=%d)", len(c.SpecMeths), c.Dropped)
	}
	if c.SpecMeths[0].ImplType.Render() != "Wallet" || c.SpecMeths[0].Name != "spec_invariant" {
		t.Errorf("got %+v", c.SpecMeths[0])
	}
}

func TestCollect_TraitDefaultRequires(t *testing.T) {
	src := `
trait Account {
    fn withdraw(&mut self, amount: u64) requires amount > 0;
}
`
	c := Collect(discardLog, src)
	if len(c.Traits) != 1 {
		t.Fatalf("expected 1 trait precond, got %d (dropped=%d)", len(c.Traits), c.Dropped)
	}
	if c.Traits[0].Trait.String() != "Account" || c.Traits[0].Name != "withdraw" {
		t.Errorf("got %+v", c.Traits[0])
	}
}

func TestCollect_DropsUnparsableRequires(t *testing.T) {
	src := `fn f(a: u64) requires * a { a }`
	c := Collect(discardLog, src)
	if len(c.Functions) != 0 || c.Dropped != 1 {
		t.Fatalf("expected the item to be dropped, got Functions=%+v Dropped=%d", c.Functions, c.Dropped)
	}
}

func TestCollect_DropsItemsWithoutRequires(t *testing.T) {
	src := `fn f(a: u64) { a }`
	c := Collect(discardLog, src)
	if len(c.Functions) != 0 || c.Dropped != 1 {
		t.Fatalf("expected the requires-less function to be dropped, got %+v", c)
	}
}
