// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package checker

import (
	"testing"

	"github.com/kraklabs/verieasy/pkg/signature"
	"github.com/kraklabs/verieasy/pkg/sourceparse"
	"github.com/kraklabs/verieasy/pkg/vpath"
)

func fn(name, body string) signature.Function {
	return signature.Function{
		Metadata: signature.FunctionMetadata{Name: vpath.ParsePath(name)},
		Body:     body,
	}
}

func TestPreprocess_MatchesCommonFunctionsByNameAndSignature(t *testing.T) {
	in := PreprocessInput{
		Source1: sourceparse.Collected{Functions: []signature.Function{fn("add", "a + b")}},
		Source2: sourceparse.Collected{Functions: []signature.Function{fn("add", "b + a")}},
	}
	st := Preprocess(in)
	if len(st.UnderChecking) != 1 {
		t.Fatalf("expected 1 common function in under_checking, got %d", len(st.UnderChecking))
	}
	cf, ok := st.Common(vpath.ParsePath("add"))
	if !ok || cf.Body1 != "a + b" || cf.Body2 != "b + a" {
		t.Fatalf("Common(add) = %+v, ok=%v", cf, ok)
	}
}

func TestPreprocess_UnmatchedFunctionsGoToSnapshots(t *testing.T) {
	in := PreprocessInput{
		Source1: sourceparse.Collected{Functions: []signature.Function{fn("only1", "x")}},
		Source2: sourceparse.Collected{Functions: []signature.Function{fn("only2", "y")}},
	}
	st := Preprocess(in)
	if len(st.UnderChecking) != 0 {
		t.Fatalf("expected no common functions, got %d", len(st.UnderChecking))
	}
	if len(st.Snapshot1) != 1 || st.Snapshot1[0].Metadata.Name.String() != "only1" {
		t.Errorf("Snapshot1 = %+v", st.Snapshot1)
	}
	if len(st.Snapshot2) != 1 || st.Snapshot2[0].Metadata.Name.String() != "only2" {
		t.Errorf("Snapshot2 = %+v", st.Snapshot2)
	}
}

func TestPreprocess_PartitionsConstructorsAndGetters(t *testing.T) {
	implType := vpath.NewPrecise(vpath.ParsePath("Wallet"))
	ctor := signature.Function{Metadata: signature.FunctionMetadata{
		Name:     vpath.ParsePath("Wallet::verieasy_new"),
		Sig:      signature.Signature{Ident: "verieasy_new"},
		ImplType: &implType,
	}}
	getter := signature.Function{Metadata: signature.FunctionMetadata{
		Name:     vpath.ParsePath("Wallet::verieasy_get"),
		Sig:      signature.Signature{Ident: "verieasy_get", Receiver: signature.Receiver{Present: true}},
		ImplType: &implType,
	}}
	method := signature.Function{Metadata: signature.FunctionMetadata{
		Name:     vpath.ParsePath("Wallet::withdraw"),
		Sig:      signature.Signature{Ident: "withdraw", Receiver: signature.Receiver{Present: true}},
		ImplType: &implType,
	}}

	in := PreprocessInput{
		Source1: sourceparse.Collected{Functions: []signature.Function{ctor, getter, method}},
		Source2: sourceparse.Collected{Functions: []signature.Function{ctor, getter, method}},
	}
	st := Preprocess(in)

	if _, ok := st.Constructors["Wallet"]; !ok {
		t.Error("expected a constructor for Wallet")
	}
	if _, ok := st.Getters["Wallet"]; !ok {
		t.Error("expected a getter for Wallet")
	}
	if !containsPath(st.UnderChecking, vpath.ParsePath("Wallet::withdraw")) {
		t.Errorf("expected withdraw in under_checking, got %+v", st.UnderChecking)
	}
}

func TestPreprocess_DropsMethodWithoutConstructor(t *testing.T) {
	implType := vpath.NewPrecise(vpath.ParsePath("Orphan"))
	method := signature.Function{Metadata: signature.FunctionMetadata{
		Name:     vpath.ParsePath("Orphan::act"),
		Sig:      signature.Signature{Ident: "act", Receiver: signature.Receiver{Present: true}},
		ImplType: &implType,
	}}
	in := PreprocessInput{
		Source1: sourceparse.Collected{Functions: []signature.Function{method}},
		Source2: sourceparse.Collected{Functions: []signature.Function{method}},
	}
	st := Preprocess(in)
	if len(st.UnderChecking) != 0 {
		t.Fatalf("expected the constructor-less method to be dropped, got %+v", st.UnderChecking)
	}
}

func TestPreprocess_GenericAliasRewrite(t *testing.T) {
	generic := vpath.NewGeneric(vpath.ParsePath("Foo"), vpath.NewPrecise(vpath.ParsePath("Bar")))
	method := signature.Function{Metadata: signature.FunctionMetadata{
		Name:     vpath.ParsePath("Foo::act"),
		Sig:      signature.Signature{Ident: "act", Receiver: signature.Receiver{Present: true}},
		ImplType: &generic,
	}}
	ctorType := vpath.NewPrecise(vpath.ParsePath("FB"))
	ctor := signature.Function{Metadata: signature.FunctionMetadata{
		Name:     vpath.ParsePath("FB::verieasy_new"),
		Sig:      signature.Signature{Ident: "verieasy_new"},
		ImplType: &ctorType,
	}}
	inst := vpath.InstantiatedType{Alias: vpath.ParsePath("FB"), Concrete: generic}

	in := PreprocessInput{
		Source1: sourceparse.Collected{
			Functions:    []signature.Function{method, ctor},
			Instantiated: []vpath.InstantiatedType{inst},
		},
		Source2: sourceparse.Collected{
			Functions:    []signature.Function{method, ctor},
			Instantiated: []vpath.InstantiatedType{inst},
		},
	}
	st := Preprocess(in)
	if !containsPath(st.UnderChecking, vpath.ParsePath("FB::act")) {
		t.Fatalf("expected Foo::act rewritten to FB::act, got %+v", st.UnderChecking)
	}
	if containsPath(st.UnderChecking, vpath.ParsePath("Foo::act")) {
		t.Errorf("original generic name should not remain in under_checking")
	}
}
