// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package adapters

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kraklabs/verieasy/pkg/checker"
	"github.com/kraklabs/verieasy/pkg/harness"
	"github.com/kraklabs/verieasy/pkg/signature"
	"github.com/kraklabs/verieasy/pkg/vpath"
)

// buildFunctionSpecs converts every function in view.UnderChecking() into
// harness.FunctionSpec, then adds each referenced impl type's constructor
// and getter (looked up from the checker state rather than UnderChecking,
// since Preprocess already moved them to their own maps) so
// harness.NewFunctionCollection's own cleanup pass has real constructor/
// getter data to re-partition against (spec.md: "FunctionCollection
// (harness-time re-partition)"). Positional argument names are synthesized
// since Signature strips original parameter names (spec.md §3: signature
// equality is name-independent).
func buildFunctionSpecs(view checker.StateView) []harness.FunctionSpec {
	var specs []harness.FunctionSpec
	implTypes := map[string]vpath.Path{}

	for _, name := range view.UnderChecking() {
		cf, ok := view.Common(name)
		if !ok {
			continue
		}
		specs = append(specs, toSpec(cf))
		if cf.Metadata.ImplType != nil {
			implTypes[cf.Metadata.ImplType.Base().Key()] = cf.Metadata.ImplType.Base()
		}
	}

	for _, base := range implTypes {
		if cf, ok := view.Constructor(base); ok {
			specs = append(specs, toSpec(cf))
		}
		if cf, ok := view.Getter(base); ok {
			specs = append(specs, toSpec(cf))
		}
	}

	return specs
}

func toSpec(cf signature.CommonFunction) harness.FunctionSpec {
	spec := harness.FunctionSpec{
		Name:     cf.Metadata.Name,
		ImplType: cf.Metadata.ImplType,
		Receiver: cf.Metadata.Sig.Receiver,
	}
	spec.Params = make([]harness.Param, len(cf.Metadata.Sig.Params))
	for i, p := range cf.Metadata.Sig.Params {
		spec.Params[i] = harness.Param{Name: fmt.Sprintf("arg%d", i), Type: p.Type}
	}
	return spec
}

// WriteProject writes files (relative-path -> contents) under dir, creating
// parent directories as needed (spec.md §6 "Harness projects (output)": a
// self-contained project with src/mod1, src/mod2, a driver file, and a
// manifest).
func WriteProject(dir string, files map[string]string) error {
	for rel, contents := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
