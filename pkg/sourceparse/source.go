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

// Package sourceparse parses a compared source file with Tree-sitter, rewrites every
// symbol path into fully-qualified form (spec.md §4.2), and collects the functions,
// trait symbols, and type-alias instantiations each source contributes (spec.md §4.3).
package sourceparse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// parserPool mirrors pkg/ingestion/parser_treesitter.go's sync.Pool of Tree-sitter
// parsers (parsers are not safe for concurrent reuse).
var parserPool = sync.Pool{
	New: func() any {
		p := sitter.NewParser()
		p.SetLanguage(rust.GetLanguage())
		return p
	},
}

// Source is a parsed compared source file: the raw content plus its syntax tree.
type Source struct {
	Path    string
	Content []byte
	Tree    *sitter.Tree
	logger  *slog.Logger
}

// Close releases the underlying Tree-sitter tree.
func (s *Source) Close() {
	if s.Tree != nil {
		s.Tree.Close()
	}
}

// Root returns the syntax tree's root node.
func (s *Source) Root() *sitter.Node {
	return s.Tree.RootNode()
}

// Text returns the source text spanned by a node.
func (s *Source) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(s.Content)
}

// Parse parses Rust-dialect source content with Tree-sitter. Syntax errors are
// tolerated (Tree-sitter is error-recovering) and logged at Warn, matching
// pkg/ingestion/parser_treesitter.go's parseGoAST behavior.
func Parse(ctx context.Context, logger *slog.Logger, path string, content []byte) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	parserObj := parserPool.Get()
	parser, ok := parserObj.(*sitter.Parser)
	if !ok {
		return nil, fmt.Errorf("sourceparse: unexpected parser pool object type")
	}
	defer parserPool.Put(parser)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("sourceparse: tree-sitter parse %s: %w", path, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		if n := countErrors(root); n > 0 {
			logger.Warn("sourceparse.syntax_errors", "path", path, "error_count", n)
		}
	}

	return &Source{Path: path, Content: content, Tree: tree, logger: logger}, nil
}

// countErrors walks the tree counting ERROR/MISSING nodes, mirroring
// pkg/ingestion/parser_treesitter.go's countErrors helper.
func countErrors(n *sitter.Node) int {
	count := 0
	if n.IsError() || n.IsMissing() {
		count++
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		count += countErrors(n.Child(i))
	}
	return count
}
