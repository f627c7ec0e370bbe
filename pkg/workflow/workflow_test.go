// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package workflow

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingBlocksFallBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.toml")
	if err := os.WriteFile(path, []byte(`components = ["identical", "kani"]`), 0o600); err != nil {
		t.Fatal(err)
	}

	wf, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(wf.Components) != 2 || wf.Components[1] != ComponentKani {
		t.Fatalf("expected components carried through, got %+v", wf.Components)
	}
	if wf.Kani != defaultKaniConfig() {
		t.Fatalf("expected default kani config for an absent block, got %+v", wf.Kani)
	}
	want := defaultDiffFuzzConfig()
	if wf.DiffFuzz.CargoBinary != want.CargoBinary || wf.DiffFuzz.Executions != want.Executions ||
		wf.DiffFuzz.SeedCount != want.SeedCount || wf.DiffFuzz.SeedLen != want.SeedLen {
		t.Fatalf("expected default diff_fuzz config for an absent block, got %+v", wf.DiffFuzz)
	}
}

func TestLoad_OverridesApplied(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.toml")
	doc := `
components = ["kani"]

[kani]
binary = "/opt/kani/bin/kani"
unwind = 25
timeout_secs = 60
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	wf, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if wf.Kani.Binary != "/opt/kani/bin/kani" || wf.Kani.Unwind != 25 || wf.Kani.Timeout != 60 {
		t.Fatalf("expected overrides applied, got %+v", wf.Kani)
	}
}

func TestLoad_EmptyComponentsIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.toml")
	if err := os.WriteFile(path, []byte(`components = []`), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, nil); err == nil {
		t.Fatal("expected an error for an empty components list")
	}
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.toml")

	if err := Save(DefaultWorkflow(), path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	wf, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(wf.Components) != 5 {
		t.Fatalf("expected all five default components, got %+v", wf.Components)
	}
	if wf.PBT.Cases != defaultPBTConfig().Cases {
		t.Fatalf("expected pbt cases to round-trip, got %d", wf.PBT.Cases)
	}
}

func TestBuildComponents_UnknownNameErrors(t *testing.T) {
	wf := &Workflow{Components: []string{"not-a-real-component"}}
	if _, err := wf.BuildComponents(t.TempDir(), nil); err == nil {
		t.Fatal("expected an error for an unknown component name")
	}
}

func TestBuildComponents_OrderMatchesConfig(t *testing.T) {
	wf := DefaultWorkflow()
	components, err := wf.BuildComponents(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("BuildComponents: %v", err)
	}
	if len(components) != 5 {
		t.Fatalf("expected 5 components, got %d", len(components))
	}
	if components[0].Name() != "identical" || components[4].Name() != "alive2" {
		t.Fatalf("expected components in workflow.toml order, got first=%s last=%s",
			components[0].Name(), components[4].Name())
	}
}
