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

package precond

import (
	"fmt"
	"strconv"
)

// errUnsupportedExprMarker is returned (wrapped) when an expression falls outside the closed
// grammar (spec.md §4.4: "Anything outside the grammar causes the enclosing item
// to be dropped").
var errUnsupportedExprMarker = fmt.Errorf("precond: expression outside the closed grammar")

// ParseExpr parses a single expression in the closed grammar (spec.md §4.4). It
// returns errUnsupportedExprMarker (wrapped) if the text isn't fully consumed by
// a recognized production, so callers can silently drop the enclosing item per
// spec.md §4.4's failure semantics.
func ParseExpr(s string) (*Expr, error) {
	p := &exprParser{toks: lexExpr(s)}
	e, err := p.parseImplication()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("%w: trailing input at %q", errUnsupportedExprMarker, p.peek().text)
	}
	return e, nil
}

type exprParser struct {
	toks []token
	pos  int
}

func (p *exprParser) peek() token {
	return p.toks[p.pos]
}

func (p *exprParser) next() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *exprParser) expect(text string) error {
	if p.peek().text != text {
		return fmt.Errorf("%w: expected %q, got %q", errUnsupportedExprMarker, text, p.peek().text)
	}
	p.next()
	return nil
}

// parseImplication: lowest precedence, right-associative "==>".
func (p *exprParser) parseImplication() (*Expr, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().text == "==>" {
		p.next()
		right, err := p.parseImplication()
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: KindBinary, Op: "==>", L: left, R: right}, nil
	}
	return left, nil
}

func (p *exprParser) parseOr() (*Expr, error) {
	return p.parseBinaryLevel([]string{"||"}, p.parseAnd)
}

func (p *exprParser) parseAnd() (*Expr, error) {
	return p.parseBinaryLevel([]string{"&&"}, p.parseEquality)
}

func (p *exprParser) parseEquality() (*Expr, error) {
	return p.parseBinaryLevel([]string{"==", "!="}, p.parseRelational)
}

func (p *exprParser) parseRelational() (*Expr, error) {
	return p.parseBinaryLevel([]string{"<", "<=", ">", ">="}, p.parseAdditive)
}

func (p *exprParser) parseAdditive() (*Expr, error) {
	return p.parseBinaryLevel([]string{"+", "-"}, p.parseMultiplicative)
}

func (p *exprParser) parseMultiplicative() (*Expr, error) {
	return p.parseBinaryLevel([]string{"*", "/", "%"}, p.parseCast)
}

func (p *exprParser) parseBinaryLevel(ops []string, next func() (*Expr, error)) (*Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for contains(ops, p.peek().text) {
		op := p.next().text
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: KindBinary, Op: op, L: left, R: right}
	}
	return left, nil
}

func contains(ops []string, s string) bool {
	for _, o := range ops {
		if o == s {
			return true
		}
	}
	return false
}

// parseCast: unary 'as' T.
func (p *exprParser) parseCast() (*Expr, error) {
	e, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokIdent && p.peek().text == "as" {
		p.next()
		ty := p.next()
		if ty.kind != tokIdent {
			return nil, fmt.Errorf("%w: expected type after 'as'", errUnsupportedExprMarker)
		}
		e = &Expr{Kind: KindCast, Sub: e, Type: ty.text}
	}
	return e, nil
}

func (p *exprParser) parseUnary() (*Expr, error) {
	if p.peek().text == "!" {
		p.next()
		sub, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: KindUnary, Op: "!", Sub: sub}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles field access, indexing, free calls and method calls
// (including the "view" pseudo-method), chained left to right.
func (p *exprParser) parsePostfix() (*Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().text {
		case ".":
			p.next()
			name := p.next()
			if name.kind != tokIdent {
				return nil, fmt.Errorf("%w: expected field/method name after '.'", errUnsupportedExprMarker)
			}
			if p.peek().text == "(" {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				e = &Expr{Kind: KindMethod, Sub: e, Name: name.text, Args: args}
			} else {
				e = &Expr{Kind: KindField, Sub: e, Name: name.text}
			}
		case "[":
			p.next()
			idx, err := p.parseImplication()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			e = &Expr{Kind: KindIndex, L: e, R: idx}
		default:
			return e, nil
		}
	}
}

func (p *exprParser) parseArgs() ([]*Expr, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var args []*Expr
	if p.peek().text != ")" {
		for {
			a, err := p.parseImplication()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.peek().text == "," {
				p.next()
				continue
			}
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *exprParser) parsePrimary() (*Expr, error) {
	t := p.peek()
	switch {
	case t.text == "(":
		p.next()
		e, err := p.parseImplication()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return e, nil
	case t.kind == tokInt:
		p.next()
		v, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad int literal %q", errUnsupportedExprMarker, t.text)
		}
		return &Expr{Kind: KindIntLit, IntLit: v}, nil
	case t.kind == tokString:
		p.next()
		return &Expr{Kind: KindStringLit, StringLit: t.text}, nil
	case t.kind == tokIdent:
		p.next()
		switch t.text {
		case "true", "false":
			return &Expr{Kind: KindBoolLit, BoolLit: t.text == "true"}, nil
		}
		if p.peek().text == "(" {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			if t.text == "old" && len(args) == 1 {
				return &Expr{Kind: KindOldCall, Sub: args[0]}, nil
			}
			return &Expr{Kind: KindCall, Name: t.text, Args: args}, nil
		}
		return &Expr{Kind: KindPath, Path: t.text}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected token %q", errUnsupportedExprMarker, t.text)
	}
}
