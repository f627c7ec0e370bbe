// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kraklabs/verieasy/pkg/checker"
	"github.com/kraklabs/verieasy/pkg/harness"
)

// IRAdapter drives alive-tv-style IR equivalence checking (spec.md §4.6 "IR
// checker (alive-tv-style)"): formal.
type IRAdapter struct {
	RustcBinary string // "rustc" if empty
	AliveBinary string // "alive-tv" if empty
	ProjectDir  string
	Logger      *slog.Logger
}

func (IRAdapter) Name() string { return "alive2" }

func (IRAdapter) Polarity() checker.Polarity { return checker.Formal }

var defineLinePattern = regexp.MustCompile(`^define[^@]*@([A-Za-z0-9_]+)\(`)

func (a IRAdapter) Check(ctx context.Context, view checker.StateView) checker.CheckResult {
	specs := buildFunctionSpecs(view)
	if len(specs) == 0 {
		return checker.CheckResult{}
	}

	backend := harness.Alive2Backend{}
	dir := a.ProjectDir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "verieasy-alive2-*")
		if err != nil {
			return checker.CheckResult{Status: fmt.Errorf("create project dir: %w", err)}
		}
	}

	src1, src2 := buildExportedSources(backend, specs)
	if err := WriteProject(dir, map[string]string{"src/mod1.rs": src1, "src/mod2.rs": src2}); err != nil {
		return checker.CheckResult{Status: err}
	}

	rustc := a.RustcBinary
	if rustc == "" {
		rustc = "rustc"
	}
	ll1 := filepath.Join(dir, "mod1.ll")
	ll2 := filepath.Join(dir, "mod2.ll")

	for _, pair := range [][2]string{{"src/mod1.rs", "mod1.ll"}, {"src/mod2.rs", "mod2.ll"}} {
		r := RunInDir(ctx, dir, rustc, []string{"--emit=llvm-ir", "--crate-type=lib", pair[0], "-o", pair[1]}, a.Logger)
		if r.Err != nil {
			return checker.CheckResult{Status: r.Err}
		}
		if r.ExitCode != 0 {
			return checker.CheckResult{Status: fmt.Errorf("rustc failed compiling %s: %s", pair[0], r.Stderr)}
		}
	}

	alive := a.AliveBinary
	if alive == "" {
		alive = "alive-tv"
	}
	result := RunInDir(ctx, dir, alive, []string{ll1, ll2}, a.Logger)
	if result.Err != nil {
		return checker.CheckResult{Status: result.Err}
	}

	return parseAliveOutput(result.Stdout)
}

func buildExportedSources(backend harness.Alive2Backend, specs []harness.FunctionSpec) (string, string) {
	var sb1, sb2 strings.Builder
	sb1.WriteString(backend.Boilerplate())
	sb2.WriteString(backend.Boilerplate())
	for _, f := range specs {
		if f.ImplType != nil && f.ImplType.IsGeneric() {
			continue // non-generic functions only (spec.md §4.6)
		}
		sb1.WriteString(backend.ExportAttribute(f.Name))
		sb2.WriteString(backend.ExportAttribute(f.Name))
	}
	return sb1.String(), sb2.String()
}

// parseAliveOutput tracks the function under analysis via `define` lines and
// looks for the success/error markers that follow (spec.md §4.6: "parse
// lines starting with define... then look for Transformation seems to be
// correct! (ok) or ERROR (abandon this function)").
func parseAliveOutput(stdout string) checker.CheckResult {
	var res checker.CheckResult
	var current string
	for _, line := range strings.Split(stdout, "\n") {
		if m := defineLinePattern.FindStringSubmatch(line); m != nil {
			current = m[1]
			continue
		}
		if current == "" {
			continue
		}
		switch {
		case strings.Contains(line, "Transformation seems to be correct!"):
			res.Ok = append(res.Ok, harness.UnmangleExportName(current))
			current = ""
		case strings.Contains(line, "ERROR"):
			res.Fail = append(res.Fail, harness.UnmangleExportName(current))
			current = ""
		}
	}
	return res
}
