// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package signature

import (
	"testing"

	"github.com/kraklabs/verieasy/pkg/vpath"
)

func TestSignature_Equal_IgnoresNamesAndReceiverMutability(t *testing.T) {
	a := Signature{
		Ident:      "alloc",
		Receiver:   Receiver{Present: true, Ref: true, Mut: false},
		Params:     []Param{{Type: "Range"}},
		ReturnType: "bool",
	}
	b := Signature{
		Ident:      "alloc",
		Receiver:   Receiver{Present: true, Ref: true, Mut: true}, // differs in mutability
		Params:     []Param{{Type: "Range"}},
		ReturnType: "bool",
	}
	if !a.Equal(b) {
		t.Error("expected receiver mutability/reference to be ignored")
	}
}

func TestSignature_Equal_ReflexiveSymmetric(t *testing.T) {
	a := Signature{Ident: "add", Params: []Param{{Type: "u32"}, {Type: "u32"}}, ReturnType: "u32"}
	b := Signature{Ident: "add", Params: []Param{{Type: "u32"}, {Type: "u32"}}, ReturnType: "u32"}
	if !a.Equal(a) {
		t.Error("Equal should be reflexive")
	}
	if a.Equal(b) != b.Equal(a) {
		t.Error("Equal should be symmetric")
	}
}

func TestSignature_Equal_DifferentArity(t *testing.T) {
	a := Signature{Ident: "add", Params: []Param{{Type: "u32"}}}
	b := Signature{Ident: "add", Params: []Param{{Type: "u32"}, {Type: "u32"}}}
	if a.Equal(b) {
		t.Error("expected different arity to compare unequal")
	}
}

func TestFunctionMetadata_IsConstructor(t *testing.T) {
	implType := vpath.NewPrecise(vpath.ParsePath("Bitmap"))
	m := FunctionMetadata{
		Name:     vpath.ParsePath("Bitmap::verieasy_new"),
		Sig:      Signature{Ident: "verieasy_new"},
		ImplType: &implType,
	}
	if !m.IsConstructor() {
		t.Error("expected constructor to be recognized")
	}

	free := FunctionMetadata{Name: vpath.ParsePath("verieasy_new"), Sig: Signature{Ident: "verieasy_new"}}
	if free.IsConstructor() {
		t.Error("free function named verieasy_new is not a constructor (no impl_type)")
	}
}

func TestFunctionMetadata_IsGetter(t *testing.T) {
	implType := vpath.NewPrecise(vpath.ParsePath("Bitmap"))
	m := FunctionMetadata{
		Name:     vpath.ParsePath("Bitmap::verieasy_get"),
		Sig:      Signature{Ident: "verieasy_get", Receiver: Receiver{Present: true, Ref: true}},
		ImplType: &implType,
	}
	if !m.IsGetter() {
		t.Error("expected getter to be recognized")
	}

	noReceiver := m
	noReceiver.Sig.Receiver = Receiver{}
	if noReceiver.IsGetter() {
		t.Error("getter requires a self-receiver as first argument")
	}
}

func TestPrecondition_CheckerName(t *testing.T) {
	free := Precondition{Name: vpath.ParsePath("crate::bitmap::sub")}
	if got, want := free.CheckerName().String(), "verieasy_pre_sub"; got != want {
		t.Errorf("free function checker name = %q, want %q", got, want)
	}

	implType := vpath.NewPrecise(vpath.ParsePath("Bitmap"))
	method := Precondition{Name: vpath.ParsePath("Bitmap::alloc"), ImplType: &implType}
	if got, want := method.CheckerName().String(), "verieasy_pre_alloc"; got != want {
		t.Errorf("method checker name = %q, want %q", got, want)
	}
}

func TestPrecondition_CheckerName_DependsOnlyOnLastSegmentAndImplType(t *testing.T) {
	a := Precondition{Name: vpath.ParsePath("a::b::foo")}
	b := Precondition{Name: vpath.ParsePath("x::y::foo")}
	if !a.CheckerName().Equal(b.CheckerName()) {
		t.Error("checker name should depend only on the last path segment")
	}
}
