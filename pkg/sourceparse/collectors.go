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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/verieasy/pkg/signature"
	"github.com/kraklabs/verieasy/pkg/vpath"
)

// TraitImpl records a `impl Trait for Type` block, used to expand trait-default
// preconditions into per-impl method preconditions (spec.md §4.4, §9).
type TraitImpl struct {
	Trait    vpath.Path
	ImplType vpath.Type
}

// Collected is everything the three collectors (FunctionCollector, SymbolCollector,
// TypeCollector in spec.md §4.3) pull out of one resolved source.
type Collected struct {
	Functions    []signature.Function
	TraitSymbols []vpath.Path
	TraitImpls   []TraitImpl
	Instantiated []vpath.InstantiatedType
}

// ignoreAttribute is the attribute that excludes an item from collection
// (spec.md §4.3: "no `ignore` attribute").
const ignoreAttribute = "verieasy::ignore"

// Collect walks the parsed source's syntax tree, resolving every path with r, and
// returns the collected functions, trait symbols, trait impls, and instantiated
// type aliases.
func Collect(src *Source, r *Resolver) Collected {
	var out Collected
	walkItems(src, r, src.Root(), &out)
	return out
}

// walkItems walks the named children of a block (source_file or a mod_item's
// declaration_list), dispatching on node kind. Pending attribute_item nodes are
// tracked so the following item can be checked against ignoreAttribute.
func walkItems(src *Source, r *Resolver, block *sitter.Node, out *Collected) {
	pendingIgnore := false

	for i := 0; i < int(block.NamedChildCount()); i++ {
		n := block.NamedChild(i)
		switch n.Type() {
		case "attribute_item", "inner_attribute_item":
			if strings.Contains(src.Text(n), ignoreAttribute) {
				pendingIgnore = true
			}
			continue
		case "function_item":
			if !pendingIgnore {
				collectFunction(src, r, n, nil, out)
			}
		case "impl_item":
			if !pendingIgnore {
				collectImpl(src, r, n, out)
			}
		case "trait_item":
			if !pendingIgnore {
				collectTrait(src, r, n, out)
			}
		case "type_item":
			if !pendingIgnore {
				collectTypeAlias(src, r, n, out)
			}
		case "use_declaration":
			collectUse(src, r, n)
		case "mod_item":
			if !pendingIgnore {
				collectMod(src, r, n, out)
			}
		}
		pendingIgnore = false
	}
}

func collectMod(src *Source, r *Resolver, n *sitter.Node, out *Collected) {
	name := src.Text(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")
	if body == nil {
		return // mod foo; (external file) — out of scope, nothing to walk here
	}
	r.PushModule(name)
	walkItems(src, r, body, out)
	r.PopModule()
}

func collectUse(src *Source, r *Resolver, n *sitter.Node) {
	for _, b := range ParseUseTree(src.Text(n)) {
		if b.IsGlob {
			r.BindGlobImport(b.Absolute)
			continue
		}
		r.BindImport(b.LocalName, r.Resolve(b.Absolute))
	}
}

// collectFunction records a free function or (when implType is non-nil) an impl
// method, skipping generic items (spec.md §4.3: "no generic parameters").
func collectFunction(src *Source, r *Resolver, n *sitter.Node, implType *vpath.Type, out *Collected) {
	if n.ChildByFieldName("type_parameters") != nil {
		return
	}

	name := src.Text(n.ChildByFieldName("name"))
	sig := parseSignature(src, r, n, implType)

	var qualified vpath.Path
	if implType != nil {
		qualified = implType.Base().Append(name)
	} else {
		qualified = r.CurrentModule().Append(name)
	}

	body := ""
	if b := n.ChildByFieldName("body"); b != nil {
		body = src.Text(b)
	}

	out.Functions = append(out.Functions, signature.Function{
		Metadata: signature.FunctionMetadata{
			Name:     qualified,
			Sig:      sig,
			ImplType: implType,
		},
		Body: body,
	})
}

// parseSignature renders a Signature from a function_item's parameter list and
// return type, resolving any path-shaped parameter/return types through r.
func parseSignature(src *Source, r *Resolver, n *sitter.Node, implType *vpath.Type) signature.Signature {
	sig := signature.Signature{Ident: src.Text(n.ChildByFieldName("name"))}

	params := n.ChildByFieldName("parameters")
	if params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			switch p.Type() {
			case "self_parameter":
				text := src.Text(p)
				sig.Receiver = signature.Receiver{
					Present: true,
					Ref:     strings.Contains(text, "&"),
					Mut:     strings.Contains(text, "mut"),
				}
			case "parameter":
				typeNode := p.ChildByFieldName("type")
				rendered := renderResolvedType(src, r, typeNode)
				sig.Params = append(sig.Params, signature.Param{Type: rendered})
			}
		}
	}

	if rt := n.ChildByFieldName("return_type"); rt != nil {
		sig.ReturnType = renderResolvedType(src, r, rt)
	} else {
		sig.ReturnType = "()"
	}

	return sig
}

// renderResolvedType renders a type node's text with its leading path segment
// resolved to fully-qualified form, preserving generic-argument suffixes verbatim
// (vpath.Type.FromPathString / Resolver.Resolve's "trailing segments" rule).
func renderResolvedType(src *Source, r *Resolver, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	raw := strings.TrimSpace(src.Text(n))
	prefix := ""
	for strings.HasPrefix(raw, "&") || strings.HasPrefix(raw, "*") {
		prefix += raw[:1]
		raw = strings.TrimSpace(raw[1:])
		raw = strings.TrimPrefix(raw, "mut ")
	}
	ty := vpath.FromPathString(raw)
	base := r.Resolve(ty.Base())
	resolved := vpath.NewGeneric(base, ty.Args()...)
	if !ty.IsGeneric() {
		resolved = vpath.NewPrecise(base)
	}
	return prefix + resolved.Render()
}

func collectImpl(src *Source, r *Resolver, n *sitter.Node, out *Collected) {
	if n.ChildByFieldName("type_parameters") != nil {
		return // generic impls are skipped: none of their methods is collected (spec.md §4.3, §9)
	}

	selfTypeNode := n.ChildByFieldName("type")
	if selfTypeNode == nil {
		return
	}
	selfPath := r.Resolve(vpath.ParsePath(strings.TrimSpace(src.Text(selfTypeNode))))
	implType := vpath.NewPrecise(selfPath)

	if traitNode := n.ChildByFieldName("trait"); traitNode != nil {
		traitPath := r.Resolve(vpath.ParsePath(strings.TrimSpace(src.Text(traitNode))))
		out.TraitImpls = append(out.TraitImpls, TraitImpl{Trait: traitPath, ImplType: implType})
		out.TraitSymbols = append(out.TraitSymbols, traitPath)
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	pendingIgnore := false
	for i := 0; i < int(body.NamedChildCount()); i++ {
		item := body.NamedChild(i)
		switch item.Type() {
		case "attribute_item":
			if strings.Contains(src.Text(item), ignoreAttribute) {
				pendingIgnore = true
			}
			continue
		case "function_item":
			if !pendingIgnore {
				collectFunction(src, r, item, &implType, out)
			}
		}
		pendingIgnore = false
	}
}

func collectTrait(src *Source, r *Resolver, n *sitter.Node, out *Collected) {
	name := src.Text(n.ChildByFieldName("name"))
	out.TraitSymbols = append(out.TraitSymbols, r.CurrentModule().Append(name))
}

func collectTypeAlias(src *Source, r *Resolver, n *sitter.Node, out *Collected) {
	name := src.Text(n.ChildByFieldName("name"))
	if n.ChildByFieldName("type_parameters") != nil {
		return // generic alias declaration itself ("type Foo<T> = ...") is not an instantiation
	}

	rhs := n.ChildByFieldName("type")
	if rhs == nil {
		return
	}
	raw := strings.TrimSpace(src.Text(rhs))
	ty := vpath.FromPathString(raw)
	if !ty.IsGeneric() {
		return // spec.md §4.3: "whose right-hand side is generic"
	}
	resolvedBase := r.Resolve(ty.Base())
	concrete := vpath.NewGeneric(resolvedBase, ty.Args()...)

	it := vpath.InstantiatedType{Alias: vpath.NewPath(name), Concrete: concrete}
	if it.Valid() {
		out.Instantiated = append(out.Instantiated, it)
	}
}
