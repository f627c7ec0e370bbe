// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package adapters

import (
	"context"
	"testing"

	"github.com/kraklabs/verieasy/pkg/checker"
	"github.com/kraklabs/verieasy/pkg/harness"
	"github.com/kraklabs/verieasy/pkg/signature"
	"github.com/kraklabs/verieasy/pkg/sourceparse"
	"github.com/kraklabs/verieasy/pkg/vpath"
)

// captureComponent records the StateView it was given, so tests can drive
// buildFunctionSpecs against a real Preprocess result without pkg/adapters
// needing a direct constructor for checker.StateView.
type captureComponent struct {
	view checker.StateView
}

func (c *captureComponent) Name() string             { return "capture" }
func (c *captureComponent) Polarity() checker.Polarity { return checker.Formal }
func (c *captureComponent) Check(_ context.Context, view checker.StateView) checker.CheckResult {
	c.view = view
	return checker.CheckResult{}
}

func TestBuildFunctionSpecs_IncludesConstructorAndGetter(t *testing.T) {
	implType := vpath.NewPrecise(vpath.ParsePath("Wallet"))

	ctor := fn("Wallet::verieasy_new", "body")
	ctor.Metadata.ImplType = &implType
	ctor.Metadata.Sig.Ident = "verieasy_new"

	getter := fn("Wallet::verieasy_get", "body")
	getter.Metadata.ImplType = &implType
	getter.Metadata.Sig.Ident = "verieasy_get"
	getter.Metadata.Sig.Receiver = signature.Receiver{Present: true}

	method := fn("Wallet::withdraw", "body")
	method.Metadata.ImplType = &implType
	method.Metadata.Sig.Ident = "withdraw"
	method.Metadata.Sig.Receiver = signature.Receiver{Present: true, Ref: true, Mut: true}

	st := checker.Preprocess(checker.PreprocessInput{
		Source1: sourceparse.Collected{Functions: []signature.Function{ctor, getter, method}},
		Source2: sourceparse.Collected{Functions: []signature.Function{ctor, getter, method}},
	})

	cap := &captureComponent{}
	checker.Run(context.Background(), st, []checker.Component{cap}, false, nil, nil)

	specs := buildFunctionSpecs(cap.view)
	fc := harness.NewFunctionCollection(specs, nil)

	if len(fc.Methods) != 1 {
		t.Fatalf("expected withdraw kept as a method, got %+v", fc.Methods)
	}
	if _, ok := fc.Constructors["Wallet"]; !ok {
		t.Fatalf("expected constructor carried through, got %+v", fc.Constructors)
	}
	if _, ok := fc.Getters["Wallet"]; !ok {
		t.Fatalf("expected getter carried through, got %+v", fc.Getters)
	}
}
