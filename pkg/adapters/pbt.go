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

	"github.com/kraklabs/verieasy/pkg/checker"
	"github.com/kraklabs/verieasy/pkg/harness"
)

// PBTAdapter drives cargo-proptest-style property testing (spec.md §4.6
// "Property tester"): testing, so a fail is conclusive (moves the function
// to Failed) and a pass is only recorded in Tested.
type PBTAdapter struct {
	CargoBinary string // "cargo" if empty
	ProjectDir  string
	Cases       int
	AssumeStyle bool
	Logger      *slog.Logger
}

func (PBTAdapter) Name() string { return "pbt" }

func (PBTAdapter) Polarity() checker.Polarity { return checker.Testing }

var testLinePattern = regexp.MustCompile(`^test (check_\S+) \.\.\. (ok|FAILED)`)

func (a PBTAdapter) Check(ctx context.Context, view checker.StateView) checker.CheckResult {
	specs := buildFunctionSpecs(view)
	if len(specs) == 0 {
		return checker.CheckResult{}
	}

	backend := harness.PBTBackend{Cases: a.Cases, AssumeStyle: a.AssumeStyle}
	fc := harness.NewFunctionCollection(specs, preconditionSet(view))

	dir := a.ProjectDir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "verieasy-pbt-*")
		if err != nil {
			return checker.CheckResult{Status: fmt.Errorf("create project dir: %w", err)}
		}
	}

	if err := WriteProject(dir, map[string]string{"tests/check.rs": buildPBTDriver(backend, fc)}); err != nil {
		return checker.CheckResult{Status: err}
	}

	binary := a.CargoBinary
	if binary == "" {
		binary = "cargo"
	}
	result := RunInDir(ctx, dir, binary, []string{"test", "--test", "check"}, a.Logger)
	if result.Err != nil {
		return checker.CheckResult{Status: result.Err}
	}

	return parsePBTOutput(result.Stdout)
}

func buildPBTDriver(backend harness.PBTBackend, fc harness.FunctionCollection) string {
	var sb strings.Builder
	sb.WriteString(backend.Boilerplate())

	for _, f := range fc.Free {
		sb.WriteString(backend.TestWrapper(f))
		sb.WriteString(harness.EmitCheckDriver(backend, f))
		sb.WriteString("    }\n")
	}
	for _, m := range fc.Methods {
		ctor := fc.Constructors[m.ImplType.Base().Key()]
		var getter *harness.FunctionSpec
		if g, ok := fc.Getters[m.ImplType.Base().Key()]; ok {
			getter = &g
		}
		sb.WriteString(backend.TestWrapper(m))
		sb.WriteString(harness.EmitMethodDriver(backend, m, ctor, getter))
		sb.WriteString("    }\n")
	}

	sb.WriteString("}\n")
	return sb.String()
}

// parsePBTOutput parses `test check_<flat-name> ... ok`/`... FAILED` lines
// (spec.md §4.6 "Property tester").
func parsePBTOutput(stdout string) checker.CheckResult {
	var res checker.CheckResult
	for _, line := range strings.Split(stdout, "\n") {
		m := testLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		flat := strings.TrimPrefix(m[1], "check_")
		name := harness.UnmangleExportName(flat)
		if m[2] == "ok" {
			res.Ok = append(res.Ok, name)
		} else {
			res.Fail = append(res.Fail, name)
		}
	}
	return res
}
