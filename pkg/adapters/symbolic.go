// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/kraklabs/verieasy/pkg/checker"
	"github.com/kraklabs/verieasy/pkg/harness"
)

// SymbolicAdapter drives the Kani symbolic prover (spec.md §4.6 "Symbolic
// prover (Kani-style)"): formal, so a pass is conclusive and a fail is only
// logged, never moves a function to Failed.
type SymbolicAdapter struct {
	Binary     string // "kani" if empty
	ProjectDir string
	Timeout    time.Duration // per-harness timeout, propagated as a CLI arg
	Unwind     int
	Logger     *slog.Logger
}

func (SymbolicAdapter) Name() string { return "kani" }

func (SymbolicAdapter) Polarity() checker.Polarity { return checker.Formal }

var harnessNamePattern = regexp.MustCompile(`^Checking harness (\S+)\.\.\.`)

func (a SymbolicAdapter) Check(ctx context.Context, view checker.StateView) checker.CheckResult {
	specs := buildFunctionSpecs(view)
	if len(specs) == 0 {
		return checker.CheckResult{}
	}

	backend := harness.KaniBackend{Unwind: a.Unwind}
	fc := harness.NewFunctionCollection(specs, preconditionSet(view))

	dir := a.ProjectDir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "verieasy-kani-*")
		if err != nil {
			return checker.CheckResult{Status: fmt.Errorf("create project dir: %w", err)}
		}
	}

	files := map[string]string{
		"src/driver.rs": buildKaniDriver(backend, fc),
	}
	if err := WriteProject(dir, files); err != nil {
		return checker.CheckResult{Status: err}
	}

	binary := a.Binary
	if binary == "" {
		binary = "kani"
	}
	args := []string{"src/driver.rs"}
	if a.Timeout > 0 {
		args = append(args, "--harness-timeout", a.Timeout.String())
	}

	result := RunInDir(ctx, dir, binary, args, a.Logger)
	if result.Err != nil {
		return checker.CheckResult{Status: result.Err}
	}
	// Exit code 1 is benign: some harnesses were inconclusive (spec.md §4.6).
	if result.ExitCode != 0 && result.ExitCode != 1 {
		return checker.CheckResult{Status: fmt.Errorf("kani exited %d: %s", result.ExitCode, result.Stderr)}
	}

	return parseKaniOutput(result.Stdout)
}

func buildKaniDriver(backend harness.KaniBackend, fc harness.FunctionCollection) string {
	var sb strings.Builder
	sb.WriteString(backend.Boilerplate())

	for _, f := range fc.Free {
		sb.WriteString(backend.HarnessAttr(f))
		sb.WriteString(harness.EmitCheckDriver(backend, f))
		sb.WriteString("\n")
	}
	for _, m := range fc.Methods {
		ctor := fc.Constructors[m.ImplType.Base().Key()]
		var getter *harness.FunctionSpec
		if g, ok := fc.Getters[m.ImplType.Base().Key()]; ok {
			getter = &g
		}
		sb.WriteString(backend.HarnessAttr(m))
		sb.WriteString(harness.EmitMethodDriver(backend, m, ctor, getter))
		sb.WriteString("\n")
	}

	return sb.String()
}

// parseKaniOutput looks for a harness name followed by a VERIFICATION
// verdict line (spec.md §4.6: "parse the stream of output looking for a
// line naming each harness and a subsequent VERIFICATION:- SUCCESSFUL or
// VERIFICATION:- FAILED").
func parseKaniOutput(stdout string) checker.CheckResult {
	var res checker.CheckResult
	var current string
	for _, line := range strings.Split(stdout, "\n") {
		if m := harnessNamePattern.FindStringSubmatch(line); m != nil {
			current = strings.TrimPrefix(m[1], "check_")
			continue
		}
		if current == "" {
			continue
		}
		switch {
		case strings.Contains(line, "VERIFICATION:- SUCCESSFUL"):
			res.Ok = append(res.Ok, harness.UnmangleExportName(current))
			current = ""
		case strings.Contains(line, "VERIFICATION:- FAILED"):
			res.Fail = append(res.Fail, harness.UnmangleExportName(current))
			current = ""
		}
	}
	return res
}

// preconditionSet derives a fast lookup of which functions have a
// generated verieasy_pre_* checker.
func preconditionSet(view checker.StateView) map[string]bool {
	set := map[string]bool{}
	for _, p := range view.Preconditions() {
		key := p.Name.Key()
		if p.ImplType != nil {
			key = p.ImplType.Render() + "::" + p.Name.Last()
		}
		set[key] = true
	}
	return set
}
