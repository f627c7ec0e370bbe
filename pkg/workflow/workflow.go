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

// Package workflow loads the declarative workflow.toml file that selects
// which components run and how each is configured (spec.md §6 "Workflow
// file").
package workflow

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kraklabs/verieasy/pkg/adapters"
	"github.com/kraklabs/verieasy/pkg/checker"
)

const defaultWorkflowFile = "workflow.toml"

// Names of the five selectable components (spec.md §6: "an ordered subset of
// {identical, kani, pbt, diff_fuzz, alive2}").
const (
	ComponentIdentical = "identical"
	ComponentKani      = "kani"
	ComponentPBT       = "pbt"
	ComponentDiffFuzz  = "diff_fuzz"
	ComponentAlive2    = "alive2"
)

// KaniConfig configures the symbolic model-checking back-end.
type KaniConfig struct {
	Binary  string `toml:"binary"`
	Unwind  int    `toml:"unwind"`
	Timeout int    `toml:"timeout_secs"`
}

func defaultKaniConfig() KaniConfig {
	return KaniConfig{Binary: "kani", Unwind: 10, Timeout: 120}
}

// PBTConfig configures the property-based testing back-end.
type PBTConfig struct {
	CargoBinary string `toml:"cargo_binary"`
	Cases       int    `toml:"cases"`
	AssumeStyle bool   `toml:"assume_style"`
}

func defaultPBTConfig() PBTConfig {
	return PBTConfig{CargoBinary: "cargo", Cases: 256, AssumeStyle: false}
}

// DiffFuzzConfig configures the differential fuzzing back-end.
type DiffFuzzConfig struct {
	CargoBinary string   `toml:"cargo_binary"`
	Executions  int      `toml:"executions"`
	SeedCount   int      `toml:"seed_count"`
	SeedLen     int      `toml:"seed_len"`
	PreCommand  []string `toml:"pre_command,omitempty"`
}

func defaultDiffFuzzConfig() DiffFuzzConfig {
	return DiffFuzzConfig{CargoBinary: "cargo", Executions: 100000, SeedCount: 8, SeedLen: 64}
}

// Alive2Config configures the IR translation-validation back-end.
type Alive2Config struct {
	RustcBinary string `toml:"rustc_binary"`
	AliveBinary string `toml:"alive_binary"`
}

func defaultAlive2Config() Alive2Config {
	return Alive2Config{RustcBinary: "rustc", AliveBinary: "alive-tv"}
}

// Workflow is the parsed workflow.toml document: component selection plus
// per-component configuration records (spec.md §6).
type Workflow struct {
	Components []string       `toml:"components"`
	Kani       KaniConfig     `toml:"kani"`
	PBT        PBTConfig      `toml:"pbt"`
	DiffFuzz   DiffFuzzConfig `toml:"diff_fuzz"`
	Alive2     Alive2Config   `toml:"alive2"`
}

// DefaultWorkflow returns a workflow running every component in the spec's
// documented order, each with documented defaults.
func DefaultWorkflow() *Workflow {
	return &Workflow{
		Components: []string{ComponentIdentical, ComponentKani, ComponentPBT, ComponentDiffFuzz, ComponentAlive2},
		Kani:       defaultKaniConfig(),
		PBT:        defaultPBTConfig(),
		DiffFuzz:   defaultDiffFuzzConfig(),
		Alive2:     defaultAlive2Config(),
	}
}

// Load reads and parses a workflow.toml file. An empty path defaults to
// "workflow.toml" in the current directory. Absent component blocks are
// replaced with their documented defaults and a logged warning (spec.md §6:
// "Each record has documented defaults; absent blocks are replaced with
// defaults and a warning").
func Load(path string, logger *slog.Logger) (*Workflow, error) {
	if path == "" {
		path = defaultWorkflowFile
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the --config flag or its documented default
	if err != nil {
		return nil, fmt.Errorf("read workflow file %s: %w", path, err)
	}

	var raw struct {
		Components []string        `toml:"components"`
		Kani       *KaniConfig     `toml:"kani"`
		PBT        *PBTConfig      `toml:"pbt"`
		DiffFuzz   *DiffFuzzConfig `toml:"diff_fuzz"`
		Alive2     *Alive2Config   `toml:"alive2"`
	}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parse workflow file %s: %w", path, err)
	}

	if len(raw.Components) == 0 {
		return nil, fmt.Errorf("workflow file %s: components list is empty", path)
	}

	wf := &Workflow{Components: raw.Components}

	if raw.Kani != nil {
		wf.Kani = *raw.Kani
	} else {
		warnMissingBlock(logger, ComponentKani)
		wf.Kani = defaultKaniConfig()
	}
	if raw.PBT != nil {
		wf.PBT = *raw.PBT
	} else {
		warnMissingBlock(logger, ComponentPBT)
		wf.PBT = defaultPBTConfig()
	}
	if raw.DiffFuzz != nil {
		wf.DiffFuzz = *raw.DiffFuzz
	} else {
		warnMissingBlock(logger, ComponentDiffFuzz)
		wf.DiffFuzz = defaultDiffFuzzConfig()
	}
	if raw.Alive2 != nil {
		wf.Alive2 = *raw.Alive2
	} else {
		warnMissingBlock(logger, ComponentAlive2)
		wf.Alive2 = defaultAlive2Config()
	}

	return wf, nil
}

func warnMissingBlock(logger *slog.Logger, name string) {
	if logger == nil {
		return
	}
	logger.Warn("workflow block absent, using defaults", "component", name)
}

// Save writes wf to path as TOML, creating no parent directories (callers
// scaffold the containing directory themselves, matching `verieasy init`).
func Save(wf *Workflow, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create workflow file %s: %w", path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(wf); err != nil {
		return fmt.Errorf("encode workflow file %s: %w", path, err)
	}
	return nil
}

// BuildComponents instantiates the checker.Component for each selected name,
// in the order given by wf.Components, wiring each adapter's working
// directory under its own subdirectory of baseDir (spec.md §6: "Harness
// projects (output): each adapter writes a self-contained project" — one per
// component, since each writes its own src/mod1, src/mod2, driver, manifest).
func (wf *Workflow) BuildComponents(baseDir string, logger *slog.Logger) ([]checker.Component, error) {
	components := make([]checker.Component, 0, len(wf.Components))
	for _, name := range wf.Components {
		projectDir := filepath.Join(baseDir, name)
		switch name {
		case ComponentIdentical:
			components = append(components, adapters.IdenticalAdapter{})
		case ComponentKani:
			components = append(components, adapters.SymbolicAdapter{
				Binary:     wf.Kani.Binary,
				ProjectDir: projectDir,
				Timeout:    time.Duration(wf.Kani.Timeout) * time.Second,
				Unwind:     wf.Kani.Unwind,
				Logger:     logger,
			})
		case ComponentPBT:
			components = append(components, adapters.PBTAdapter{
				CargoBinary: wf.PBT.CargoBinary,
				ProjectDir:  projectDir,
				Cases:       wf.PBT.Cases,
				AssumeStyle: wf.PBT.AssumeStyle,
				Logger:      logger,
			})
		case ComponentDiffFuzz:
			components = append(components, adapters.FuzzAdapter{
				CargoBinary: wf.DiffFuzz.CargoBinary,
				ProjectDir:  projectDir,
				Executions:  wf.DiffFuzz.Executions,
				SeedCount:   wf.DiffFuzz.SeedCount,
				SeedLen:     wf.DiffFuzz.SeedLen,
				PreCommand:  wf.DiffFuzz.PreCommand,
				Logger:      logger,
			})
		case ComponentAlive2:
			components = append(components, adapters.IRAdapter{
				RustcBinary: wf.Alive2.RustcBinary,
				AliveBinary: wf.Alive2.AliveBinary,
				ProjectDir:  projectDir,
				Logger:      logger,
			})
		default:
			return nil, fmt.Errorf("unknown workflow component %q", name)
		}
	}
	return components, nil
}
