// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package vpath

import "testing"

func TestFromPathString_Precise(t *testing.T) {
	ty := FromPathString("Foo::Bar")
	if ty.IsGeneric() {
		t.Fatal("expected Precise")
	}
	if got, want := ty.Render(), "Foo::Bar"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestFromPathString_Generic(t *testing.T) {
	ty := FromPathString("Foo<Bar, Baz>")
	if !ty.IsGeneric() {
		t.Fatal("expected Generic")
	}
	if got, want := ty.Render(), "Foo<Bar, Baz>"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if len(ty.Args()) != 2 {
		t.Fatalf("expected 2 args, got %d", len(ty.Args()))
	}
}

func TestFromPathString_NestedOneLevel(t *testing.T) {
	ty := FromPathString("Foo<Bar<Qux>>")
	if !ty.IsGeneric() {
		t.Fatal("expected Generic")
	}
	args := ty.Args()
	if len(args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(args))
	}
	// Only one level is unpacked: the inner arg keeps its raw rendered form.
	if got, want := args[0].Render(), "Bar<Qux>"; got != want {
		t.Errorf("inner arg Render() = %q, want %q", got, want)
	}
}

func TestType_EqIgnoreGenerics(t *testing.T) {
	a := NewGeneric(ParsePath("Foo"), NewPrecise(ParsePath("Bar")))
	b := NewGeneric(ParsePath("Foo"), NewPrecise(ParsePath("Baz")))
	if !a.EqIgnoreGenerics(b) {
		t.Error("expected EqIgnoreGenerics to ignore differing args")
	}
	if a.Equal(b) {
		t.Error("expected Equal to notice differing args")
	}
}

func TestInstantiatedType_Valid(t *testing.T) {
	valid := InstantiatedType{
		Alias:    ParsePath("FB"),
		Concrete: NewGeneric(ParsePath("Foo"), NewPrecise(ParsePath("Bar"))),
	}
	if !valid.Valid() {
		t.Error("expected valid InstantiatedType")
	}

	badAlias := valid
	badAlias.Alias = ParsePath("a::b")
	if badAlias.Valid() {
		t.Error("expected multi-segment alias to be invalid")
	}

	badConcrete := valid
	badConcrete.Concrete = NewPrecise(ParsePath("Bar"))
	if badConcrete.Valid() {
		t.Error("expected non-generic concrete to be invalid")
	}
}
