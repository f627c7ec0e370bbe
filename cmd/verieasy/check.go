// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/verieasy/internal/errors"
	"github.com/kraklabs/verieasy/internal/ui"
	"github.com/kraklabs/verieasy/pkg/checker"
	"github.com/kraklabs/verieasy/pkg/precond"
	"github.com/kraklabs/verieasy/pkg/sourceparse"
	"github.com/kraklabs/verieasy/pkg/vpath"
	"github.com/kraklabs/verieasy/pkg/workflow"
)

// runCheck drives the full pipeline: load two sources, optionally translate a
// specification file's preconditions, preprocess into a CheckerState, load
// the workflow, and run the orchestrator. It returns the process exit code
// (always 0 on a completed run, per spec.md §6) and a non-nil error only for
// a pre-pipeline I/O/parse failure, which the caller reports via
// errors.FatalError.
func runCheck(path1, path2 string, g GlobalFlags) (int, error) {
	logger := newLogger(g.LogLevel)

	var metrics *checker.Metrics
	if g.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = checker.NewMetrics(reg)
		srv := &http.Server{Addr: g.MetricsAddr, Handler: metrics.Handler(reg)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics server exited", "error", err)
			}
		}()
	}

	ctx := context.Background()

	content1, err := os.ReadFile(path1) //nolint:gosec // G304: path comes from a positional CLI argument
	if err != nil {
		return 0, errors.NewInputError(
			"Cannot read first source file",
			fmt.Sprintf("Failed to read %s", path1),
			"Check the path and file permissions",
		)
	}
	content2, err := os.ReadFile(path2) //nolint:gosec // G304: path comes from a positional CLI argument
	if err != nil {
		return 0, errors.NewInputError(
			"Cannot read second source file",
			fmt.Sprintf("Failed to read %s", path2),
			"Check the path and file permissions",
		)
	}

	src2Collected, err := parseSource(ctx, logger, path2, content2)
	if err != nil {
		return 0, err
	}

	var translated precond.Translated
	if g.Preconditions != "" {
		specText, err := os.ReadFile(g.Preconditions) //nolint:gosec // G304: path comes from the -p flag
		if err != nil {
			return 0, errors.NewInputError(
				"Cannot read specification file",
				fmt.Sprintf("Failed to read %s", g.Preconditions),
				"Check the -p/--preconditions path and file permissions",
			)
		}
		var appended []byte
		translated, appended = translatePreconditions(logger, string(specText), content2, src2Collected)

		// Re-collect source2 now that its appended fragment defines the
		// verieasy_pre_* checkers the harness drivers will call.
		src2Collected, err = parseSource(ctx, logger, path2, appended)
		if err != nil {
			return 0, err
		}
	}

	src1Collected, err := parseSource(ctx, logger, path1, content1)
	if err != nil {
		return 0, err
	}

	st := checker.Preprocess(checker.PreprocessInput{
		Source1:   src1Collected,
		Source2:   src2Collected,
		Functions: translated.Functions,
		Methods:   translated.Methods,
	})

	wf, err := workflow.Load(g.ConfigPath, logger)
	if err != nil {
		return 0, errors.NewConfigError(
			"Cannot load workflow",
			err.Error(),
			fmt.Sprintf("Check %s or run 'verieasy init' to create one", g.ConfigPath),
			err,
		)
	}

	projectBase, err := os.MkdirTemp("", "verieasy-*")
	if err != nil {
		return 0, errors.NewInternalError(
			"Cannot create a harness project directory",
			err.Error(),
			"Check available disk space and permissions on the system temp directory",
			err,
		)
	}

	components, err := wf.BuildComponents(projectBase, logger)
	if err != nil {
		return 0, errors.NewConfigError(
			"Invalid workflow component",
			err.Error(),
			fmt.Sprintf("Fix the components list in %s", g.ConfigPath),
			err,
		)
	}

	total := len(st.UnderChecking)
	var bar *progressbar.ProgressBar
	if g.LogLevel != "brief" && !g.JSON && total > 0 {
		bar = progressbar.Default(int64(len(components)), "checking")
	}

	rep := runWithProgress(ctx, st, components, g.Strict, logger, metrics, bar)

	printReport(rep, g)

	return 0, nil
}

// runWithProgress wraps checker.Run, advancing bar once per component in the
// list, including components Run skips because under_checking is already
// empty (checker.Run itself has no progress hook, so this drives a
// fresh single-component Run call for each step instead of one multi-component
// call -- matching the orchestrator's single-threaded, run-to-completion
// semantics exactly, just observed one component at a time).
func runWithProgress(ctx context.Context, st *checker.CheckerState, components []checker.Component, strict bool, logger *slog.Logger, metrics *checker.Metrics, bar *progressbar.ProgressBar) checker.Report {
	var rep checker.Report
	for _, comp := range components {
		rep = checker.Run(ctx, st, []checker.Component{comp}, strict, logger, metrics)
		if bar != nil {
			_ = bar.Add(1)
		}
		if rep.StoppedEarly {
			break
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return rep
}

func parseSource(ctx context.Context, logger *slog.Logger, path string, content []byte) (sourceparse.Collected, error) {
	src, err := sourceparse.Parse(ctx, logger, path, content)
	if err != nil {
		return sourceparse.Collected{}, errors.NewInputError(
			"Cannot parse source file",
			fmt.Sprintf("%s: %v", path, err),
			"Fix the syntax error and re-run",
		)
	}
	defer src.Close()

	resolver := sourceparse.NewResolver(logger)
	return sourceparse.Collect(src, resolver), nil
}

// translatePreconditions runs the full precondition translator pipeline
// (spec.md §4.4) over specText and returns the translated descriptor set plus
// source2's content with the executable fragment appended verbatim.
func translatePreconditions(logger *slog.Logger, specText string, source2 []byte, src2 sourceparse.Collected) (precond.Translated, []byte) {
	collected := precond.Collect(func(format string, args ...any) {
		logger.Warn(fmt.Sprintf(format, args...))
	}, specText)

	impls := map[string][]vpath.Type{}
	for _, ti := range src2.TraitImpls {
		key := ti.Trait.String()
		impls[key] = append(impls[key], ti.ImplType)
	}
	collected.Methods = append(collected.Methods, precond.ExpandTraitDefaults(collected.Traits, collected.Methods, impls)...)

	translated := precond.Translate(collected)

	var fragment strings.Builder
	for _, f := range translated.Functions {
		_, body := precond.EmitFunctionChecker(f)
		fragment.WriteString(body)
		fragment.WriteString("\n\n")
	}
	for _, m := range translated.Methods {
		_, body := precond.EmitMethodChecker(m)
		fragment.WriteString(body)
		fragment.WriteString("\n\n")
	}
	for _, sf := range translated.SpecFns {
		fragment.WriteString(precond.EmitSpecFunction(sf))
		fragment.WriteString("\n\n")
	}
	for _, sm := range translated.SpecMeths {
		fragment.WriteString(precond.EmitSpecMethod(sm))
		fragment.WriteString("\n\n")
	}

	appended := append(append([]byte{}, source2...), []byte("\n\n"+fragment.String())...)
	return translated, appended
}

func newLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch level {
	case "brief":
		opts.Level = slog.LevelWarn
	case "verbose":
		opts.Level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func printReport(rep checker.Report, g GlobalFlags) {
	if g.JSON {
		_ = json.NewEncoder(os.Stdout).Encode(reportJSON(rep))
		return
	}

	for _, name := range rep.Verified {
		fmt.Printf("[Ok] %s %s\n", name.String(), ui.DimText("(verified)"))
	}
	for _, name := range rep.Tested {
		fmt.Printf("[Ok] %s %s\n", name.String(), ui.DimText("(tested)"))
	}
	for _, name := range rep.Failed {
		fmt.Printf("[Error] %s\n", name.String())
	}
	for _, name := range rep.Unverified {
		fmt.Printf("[Unsure] %s %s\n", name.String(), ui.DimText("(not verified)"))
	}
	for _, name := range rep.Inconsistent {
		fmt.Printf("[Warning] %s %s\n", name.String(), ui.DimText("(formal/testing disagreement)"))
	}
	if rep.StoppedEarly {
		fmt.Println("[Critical] strict mode stopped the pipeline after a testing-component fail")
	}

	fmt.Println()
	ui.SubHeader("Summary")
	fmt.Printf("  %s verified  %s tested  %s failed  %s unverified\n",
		ui.CountText(len(rep.Verified)), ui.CountText(len(rep.Tested)),
		ui.CountText(len(rep.Failed)), ui.CountText(len(rep.Unverified)))
}

type jsonReport struct {
	Verified     []string `json:"verified"`
	Tested       []string `json:"tested"`
	Failed       []string `json:"failed"`
	Unverified   []string `json:"unverified"`
	Inconsistent []string `json:"inconsistent"`
	StoppedEarly bool     `json:"stopped_early"`
}

func reportJSON(rep checker.Report) jsonReport {
	return jsonReport{
		Verified:     pathStrings(rep.Verified),
		Tested:       pathStrings(rep.Tested),
		Failed:       pathStrings(rep.Failed),
		Unverified:   pathStrings(rep.Unverified),
		Inconsistent: pathStrings(rep.Inconsistent),
		StoppedEarly: rep.StoppedEarly,
	}
}

func pathStrings(paths []vpath.Path) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}
