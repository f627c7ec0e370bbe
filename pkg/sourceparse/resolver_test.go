// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package sourceparse

import (
	"testing"

	"github.com/kraklabs/verieasy/pkg/vpath"
)

func TestResolver_RewriteRules(t *testing.T) {
	r := NewResolver(nil)
	r.PushModule("bitmap")

	r.BindImport("HashMap", vpath.ParsePath("std::collections::HashMap"))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crate", "crate::foo", "crate::foo"},
		{"self", "self::bar", "crate::bitmap::bar"},
		{"super", "super::baz", "crate::baz"},
		{"mapped", "HashMap::new", "std::collections::HashMap::new"},
		{"unmapped bare root", "Vec::new", "Vec::new"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(vpath.ParsePath(tt.in)).String()
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolver_ModuleSnapshotRestore(t *testing.T) {
	r := NewResolver(nil)
	r.BindImport("Foo", vpath.ParsePath("a::Foo"))

	r.PushModule("inner")
	// Inner module does not inherit the parent's imports.
	got := r.Resolve(vpath.ParsePath("Foo::bar")).String()
	if want := "Foo::bar"; got != want {
		t.Errorf("inner module should not see parent import, got %q want %q", got, want)
	}
	r.BindImport("Foo", vpath.ParsePath("b::Foo"))
	r.PopModule()

	// Restored parent scope sees its own original binding again.
	got = r.Resolve(vpath.ParsePath("Foo::bar")).String()
	if want := "a::Foo::bar"; got != want {
		t.Errorf("after pop, parent import should be restored, got %q want %q", got, want)
	}
}

func TestParseUseTree_RenamesAndGroups(t *testing.T) {
	bindings := ParseUseTree("use std::collections::{HashMap, HashSet as Set};")
	want := map[string]string{
		"HashMap": "std::collections::HashMap",
		"Set":     "std::collections::HashSet",
	}
	if len(bindings) != len(want) {
		t.Fatalf("expected %d bindings, got %d (%+v)", len(want), len(bindings), bindings)
	}
	for _, b := range bindings {
		if b.IsGlob {
			t.Fatalf("unexpected glob binding: %+v", b)
		}
		wantAbs, ok := want[b.LocalName]
		if !ok {
			t.Fatalf("unexpected local name %q", b.LocalName)
		}
		if b.Absolute.String() != wantAbs {
			t.Errorf("binding %q = %q, want %q", b.LocalName, b.Absolute.String(), wantAbs)
		}
	}
}

func TestParseUseTree_GlobIgnored(t *testing.T) {
	bindings := ParseUseTree("use crate::bitmap::*;")
	if len(bindings) != 1 || !bindings[0].IsGlob {
		t.Fatalf("expected a single glob binding, got %+v", bindings)
	}
}

func TestParseUseTree_NestedGroups(t *testing.T) {
	bindings := ParseUseTree("use a::{b::{c, d}, e};")
	want := map[string]string{
		"c": "a::b::c",
		"d": "a::b::d",
		"e": "a::e",
	}
	if len(bindings) != len(want) {
		t.Fatalf("expected %d bindings, got %d (%+v)", len(want), len(bindings), bindings)
	}
	for _, b := range bindings {
		if b.Absolute.String() != want[b.LocalName] {
			t.Errorf("binding %q = %q, want %q", b.LocalName, b.Absolute.String(), want[b.LocalName])
		}
	}
}
