// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package harness

import (
	"fmt"

	"github.com/kraklabs/verieasy/pkg/vpath"
)

// Alive2Backend doesn't emit a Rust check driver at all: it emits export
// attributes so each common function compiles to LLVM IR under a stable
// name, and alive-tv compares the two resulting .ll files directly
// (spec.md §4.6 "IR checker (alive-tv-style)").
type Alive2Backend struct{}

// ExportName is the stable `flat___name` symbol alive-tv matches functions
// by (spec.md §4.6: "every non-generic function given a stable export name
// of the form flat___name").
func ExportName(name vpath.Path) string {
	return name.Flatten()
}

// UnmangleExportName reverses ExportName: "___" back to "::" (spec.md §4.6
// "mangled back via ___ -> ::").
func UnmangleExportName(export string) vpath.Path {
	return vpath.ParsePath(pathWithSeparator(export))
}

func pathWithSeparator(export string) string {
	out := ""
	i := 0
	for i < len(export) {
		if i+3 <= len(export) && export[i:i+3] == "___" {
			out += "::"
			i += 3
			continue
		}
		out += string(export[i])
		i++
	}
	return out
}

// ExportAttribute renders the attribute placed above fn so it survives
// compilation to IR under a stable, unmangled name.
func (b Alive2Backend) ExportAttribute(name vpath.Path) string {
	return fmt.Sprintf("#[export_name = %q]\n", ExportName(name))
}

// Boilerplate renders the sibling-module declarations shared by both IR
// compilation units (spec.md §4.6: "both sources as sibling modules").
func (b Alive2Backend) Boilerplate() string {
	return "#![allow(dead_code)]\nmod mod1;\nmod mod2;\n"
}
