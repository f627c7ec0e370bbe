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

package sourceparse

import (
	"log/slog"
	"strings"

	"github.com/kraklabs/verieasy/pkg/vpath"
)

// Resolver rewrites every type/use/call path into fully-qualified form (spec.md
// §4.2). It keeps a stack of module names for self/super/crate resolution and a
// stack of per-scope local-name -> absolute-path snapshots, pushed on module entry
// and restored on module exit, mirroring pkg/ingestion/resolver.go's import-alias
// bookkeeping generalized from Go packages to Rust modules.
type Resolver struct {
	moduleStack []string
	scopeStack  []map[string]vpath.Path
	logger      *slog.Logger
}

// NewResolver creates a Resolver rooted at the crate root with an empty scope.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		moduleStack: []string{"crate"},
		scopeStack:  []map[string]vpath.Path{{}},
		logger:      logger,
	}
}

// CurrentModule returns the module stack as a Path, e.g. "crate::bitmap".
func (r *Resolver) CurrentModule() vpath.Path {
	return vpath.NewPath(r.moduleStack...)
}

// PushModule enters a nested module: the module stack grows and a fresh (empty)
// scope is pushed, since "a module does not inherit its parent's imports" (spec.md
// §4.2).
func (r *Resolver) PushModule(name string) {
	r.moduleStack = append(r.moduleStack, name)
	r.scopeStack = append(r.scopeStack, map[string]vpath.Path{})
}

// PopModule exits the current module, discarding its scope and restoring the
// parent's.
func (r *Resolver) PopModule() {
	if len(r.moduleStack) > 1 {
		r.moduleStack = r.moduleStack[:len(r.moduleStack)-1]
	}
	if len(r.scopeStack) > 1 {
		r.scopeStack = r.scopeStack[:len(r.scopeStack)-1]
	}
}

func (r *Resolver) currentScope() map[string]vpath.Path {
	return r.scopeStack[len(r.scopeStack)-1]
}

// BindImport records that localName resolves to absolute within the current
// module's scope.
func (r *Resolver) BindImport(localName string, absolute vpath.Path) {
	r.currentScope()[localName] = absolute
}

// BindGlobImport records that a glob import (`use a::b::*`) occurred for
// diagnostic purposes only; glob imports are documented as ignored for name
// resolution (spec.md §4.2) since they don't introduce a single resolvable local
// name.
func (r *Resolver) BindGlobImport(modulePath vpath.Path) {
	r.logger.Debug("sourceparse.resolver.glob_import_ignored", "module", modulePath.String())
}

// Resolve rewrites a raw (as-written) path into fully-qualified form using the
// rewrite rule from spec.md §4.2:
//
//	crate -> [crate]
//	self  -> current module stack
//	super -> current module minus last
//	otherwise, lookup in the scope map; if missing, keep as a bare root.
//
// When the resolved target has more segments than the single first segment it
// replaced, the original path's remaining (trailing) segments are still appended
// verbatim — they may carry generic arguments not present in the mapping target.
func (r *Resolver) Resolve(raw vpath.Path) vpath.Path {
	segments := raw.Segments()
	if len(segments) == 0 {
		return raw
	}

	first := segments[0]
	rest := segments[1:]

	var base vpath.Path
	switch first {
	case "crate":
		base = vpath.NewPath("crate")
	case "self":
		base = r.CurrentModule()
	case "super":
		base = r.CurrentModule().Parent()
	default:
		if mapped, ok := r.currentScope()[first]; ok {
			base = mapped
		} else {
			base = vpath.NewPath(first)
		}
	}

	return base.Append(rest...)
}

// UseBinding is one flattened leaf of a `use` tree: a local name bound to an
// absolute path, or a glob marker.
type UseBinding struct {
	LocalName string
	Absolute  vpath.Path
	IsGlob    bool
}

// ParseUseTree flattens the text of a single `use` declaration's tree (everything
// between "use" and the terminating ";", exclusive) into its leaf bindings. It
// handles renames (`as`) and nested groups (`{a, b as c, d::{e, f}}`); glob leaves
// (`*`) are reported with IsGlob set and no LocalName.
func ParseUseTree(text string) []UseBinding {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "use")
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ";")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return flattenUseTree(nil, text)
}

// flattenUseTree recursively expands a use-tree fragment under the accumulated
// prefix segments.
func flattenUseTree(prefix []string, text string) []UseBinding {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if text == "*" {
		return []UseBinding{{Absolute: vpath.NewPath(prefix...), IsGlob: true}}
	}

	// Split the leading "a::b::c" chain from a possible trailing "{...}" group or
	// "as alias".
	groupStart := strings.IndexByte(text, '{')
	pathPart := text
	groupBody := ""
	if groupStart != -1 && strings.HasSuffix(text, "}") {
		pathPart = strings.TrimSuffix(text[:groupStart], "::")
		groupBody = text[groupStart+1 : len(text)-1]
	}

	segments := splitPathChain(pathPart)
	newPrefix := append(append([]string(nil), prefix...), segments...)

	if groupBody != "" {
		var out []UseBinding
		for _, part := range splitTopLevelGroupItems(groupBody) {
			out = append(out, flattenUseTree(newPrefix, part)...)
		}
		return out
	}

	if len(newPrefix) > 0 && newPrefix[len(newPrefix)-1] == "*" {
		return []UseBinding{{Absolute: vpath.NewPath(newPrefix[:len(newPrefix)-1]...), IsGlob: true}}
	}

	// Leaf: either "path::to::name" or "path::to::name as alias".
	if idx := strings.Index(pathPart, " as "); idx != -1 {
		base := strings.TrimSpace(pathPart[:idx])
		alias := strings.TrimSpace(pathPart[idx+len(" as "):])
		baseSegments := splitPathChain(base)
		full := append(append([]string(nil), prefix...), baseSegments...)
		return []UseBinding{{LocalName: alias, Absolute: vpath.NewPath(full...)}}
	}

	if len(newPrefix) == 0 {
		return nil
	}
	return []UseBinding{{LocalName: newPrefix[len(newPrefix)-1], Absolute: vpath.NewPath(newPrefix...)}}
}

func splitPathChain(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "::")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitTopLevelGroupItems splits a use-group body on top-level commas, respecting
// nested braces, mirroring the top-level-comma splitting technique in
// pkg/sigparse/sigparse.go's splitAtTopLevelCommas.
func splitTopLevelGroupItems(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
