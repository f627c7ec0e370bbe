// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/verieasy/pkg/checker"
	"github.com/kraklabs/verieasy/pkg/harness"
	"github.com/kraklabs/verieasy/pkg/vpath"
)

// FuzzAdapter drives libfuzzer-style differential fuzzing (spec.md §4.6
// "Differential fuzzer"): testing.
type FuzzAdapter struct {
	CargoBinary string // "cargo" if empty ("cargo fuzz run")
	ProjectDir  string
	Executions  int // the fuzzer's execution budget
	SeedCount   int
	SeedLen     int
	PreCommand  []string // optional user pre-command run before the fuzzer
	Logger      *slog.Logger
	RandSource  func(int) []byte // seed generator, defaults to crypto-weak PRNG
}

func (FuzzAdapter) Name() string { return "diff_fuzz" }

func (FuzzAdapter) Polarity() checker.Polarity { return checker.Testing }

func (a FuzzAdapter) Check(ctx context.Context, view checker.StateView) checker.CheckResult {
	// The function list always comes from the current StateView and the
	// harness project is regenerated on every run; there is no option to
	// reuse a pre-built harness project.
	specs := buildFunctionSpecs(view)
	if len(specs) == 0 {
		return checker.CheckResult{}
	}

	backend := harness.FuzzBackend{SeedLen: a.SeedLen}
	fc := harness.NewFunctionCollection(specs, preconditionSet(view))
	all := append(append([]harness.FunctionSpec{}, fc.Free...), fc.Methods...)

	dir := a.ProjectDir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "verieasy-fuzz-*")
		if err != nil {
			return checker.CheckResult{Status: fmt.Errorf("create project dir: %w", err)}
		}
	}

	files := map[string]string{
		"fuzz_targets/diff.rs": buildFuzzDriver(backend, fc, all),
	}

	seedCount := a.SeedCount
	if seedCount == 0 {
		seedCount = 8
	}
	randSource := a.RandSource
	if randSource == nil {
		randSource = randomBytes
	}
	for i, seed := range backend.SeedBuffers(seedCount, randSource) {
		files[fmt.Sprintf("corpus/seed-%d", i)] = string(seed)
	}

	if err := WriteProject(dir, files); err != nil {
		return checker.CheckResult{Status: err}
	}

	if len(a.PreCommand) > 0 {
		pre := RunInDir(ctx, dir, a.PreCommand[0], a.PreCommand[1:], a.Logger)
		if pre.Err != nil {
			return checker.CheckResult{Status: pre.Err}
		}
	}

	binary := a.CargoBinary
	if binary == "" {
		binary = "cargo"
	}
	execs := a.Executions
	if execs == 0 {
		execs = 100000
	}
	args := []string{"fuzz", "run", "diff", "--", fmt.Sprintf("-runs=%d", execs)}
	result := RunInDir(ctx, dir, binary, args, a.Logger)
	if result.Err != nil {
		return checker.CheckResult{Status: result.Err}
	}

	return parseFuzzLog(filepath.Join(dir, "mismatches.log"), all)
}

func buildFuzzDriver(backend harness.FuzzBackend, fc harness.FunctionCollection, all []harness.FunctionSpec) string {
	var sb strings.Builder
	sb.WriteString(backend.Boilerplate())

	for _, f := range fc.Free {
		sb.WriteString(harness.EmitCheckDriver(backend, f))
		sb.WriteString("\n")
	}
	for _, m := range fc.Methods {
		ctor := fc.Constructors[m.ImplType.Base().Key()]
		var getter *harness.FunctionSpec
		if g, ok := fc.Getters[m.ImplType.Base().Key()]; ok {
			getter = &g
		}
		sb.WriteString(harness.EmitMethodDriver(backend, m, ctor, getter))
		sb.WriteString("\n")
	}

	sb.WriteString(harness.EmitDispatch(all))
	return sb.String()
}

// parseFuzzLog reads the driver's harness-local mismatch log, one `MISMATCH:
// <qualified name>` line per divergence (spec.md §4.6 "Differential
// fuzzer"). Every other function in the batch that never appeared in the
// log is reported ok (it's testing evidence, not a proof).
func parseFuzzLog(path string, all []harness.FunctionSpec) checker.CheckResult {
	var res checker.CheckResult
	failed := map[string]bool{}

	data, err := os.ReadFile(path)
	if err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			const prefix = "MISMATCH: "
			if !strings.HasPrefix(line, prefix) {
				continue
			}
			name := strings.TrimSpace(strings.TrimPrefix(line, prefix))
			failed[name] = true
			res.Fail = append(res.Fail, vpath.ParsePath(name))
		}
	}

	for _, f := range all {
		if !failed[f.Name.String()] {
			res.Ok = append(res.Ok, f.Name)
		}
	}
	return res
}

func randomBytes(n int) []byte {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return buf
}
