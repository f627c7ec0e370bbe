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

// Package main implements the verieasy CLI: a functional-equivalence checker
// for two Rust-dialect sources.
//
// Usage:
//
//	verieasy <src1> <src2> [-c workflow.toml] [-l brief|normal|verbose]
//	verieasy init                 Scaffold a starter workflow.toml
//	verieasy completion {bash,zsh,fish}
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/verieasy/internal/errors"
	"github.com/kraklabs/verieasy/internal/ui"
)

// GlobalFlags holds the flags that apply to the check command.
type GlobalFlags struct {
	ConfigPath     string
	LogLevel       string // brief, normal, verbose
	Preconditions  string
	Strict         bool
	JSON           bool
	NoColor        bool
	MetricsAddr    string
}

func main() {
	var (
		configPath  = flag.StringP("config", "c", "workflow.toml", "Workflow description path")
		logLevel    = flag.StringP("log", "l", "normal", "Log verbosity: brief, normal, verbose")
		preconds    = flag.StringP("preconditions", "p", "", "Specification file for the precondition translator")
		strict      = flag.BoolP("strict", "s", false, "Stop the pipeline after the first testing-component fail")
		jsonOutput  = flag.Bool("json", false, "Output the final report as JSON")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address while running (e.g. :9091)")
	)

	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `verieasy - functional-equivalence checker

Usage:
  verieasy <src1> <src2> [options]
  verieasy init [options]
  verieasy completion {bash,zsh,fish}

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  verieasy old.rs new.rs
  verieasy old.rs new.rs -c workflow.toml -p spec.vrs -s
  verieasy init
  verieasy completion bash

`)
	}

	flag.Parse()
	ui.InitColors(*noColor)

	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "init":
			runInit(args[1:])
			return
		case "completion":
			runCompletion(args[1:])
			return
		}
	}

	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}

	globals := GlobalFlags{
		ConfigPath:    *configPath,
		LogLevel:      *logLevel,
		Preconditions: *preconds,
		Strict:        *strict,
		JSON:          *jsonOutput,
		NoColor:       *noColor,
		MetricsAddr:   *metricsAddr,
	}

	code, err := runCheck(args[0], args[1], globals)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	os.Exit(code)
}
