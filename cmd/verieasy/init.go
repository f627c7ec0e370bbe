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
	"fmt"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kraklabs/verieasy/internal/errors"
	"github.com/kraklabs/verieasy/internal/ui"
	"github.com/kraklabs/verieasy/pkg/workflow"
)

const notesFileName = ".verieasy-notes.yaml"

// scaffoldNotes is the sidecar written next to workflow.toml: the machine-
// readable record of how and when the workflow was scaffolded. It carries no
// executable semantics of its own (workflow.toml alone drives a check run);
// it exists for a reviewer or a later 'verieasy init' to know what generated
// the file sitting next to it.
type scaffoldNotes struct {
	Version      string   `yaml:"version"`
	GeneratedAt  string   `yaml:"generated_at"`
	WorkflowFile string   `yaml:"workflow_file"`
	Components   []string `yaml:"components"`
}

// runInit scaffolds a starter workflow.toml in the current directory.
func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing workflow.toml")
	path := fs.StringP("output", "o", "workflow.toml", "Path to write the workflow file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: verieasy init [options]

Writes a starter workflow.toml running every component (identical, kani,
pbt, diff_fuzz, alive2) with documented defaults.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if _, err := os.Stat(*path); err == nil && !*force {
		errors.FatalError(errors.NewInputError(
			"Workflow file already exists",
			fmt.Sprintf("%s already exists", *path),
			"Use 'verieasy init --force' to overwrite it",
		), false)
	}

	wf := workflow.DefaultWorkflow()
	if err := workflow.Save(wf, *path); err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot write workflow file",
			fmt.Sprintf("Failed to write %s", *path),
			"Check directory permissions and available disk space",
			err,
		), false)
	}

	notesPath := filepath.Join(filepath.Dir(*path), notesFileName)
	notes := scaffoldNotes{
		Version:      "1",
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		WorkflowFile: filepath.Base(*path),
		Components:   wf.Components,
	}
	if data, err := yaml.Marshal(notes); err == nil {
		_ = os.WriteFile(notesPath, data, 0o600)
	}

	ui.Successf("Created %s", *path)
	ui.SubHeader("Next steps:")
	fmt.Println("  1. Review the component list and per-component settings")
	fmt.Println("  2. Run 'verieasy <src1> <src2>' to check two sources against it")
}
