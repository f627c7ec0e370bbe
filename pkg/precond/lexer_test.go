// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package precond

import "testing"

func TestLexExpr_Punctuation(t *testing.T) {
	toks := lexExpr("a==>b && c!=d")
	var texts []string
	for _, tok := range toks {
		if tok.kind != tokEOF {
			texts = append(texts, tok.text)
		}
	}
	want := []string{"a", "==>", "b", "&&", "c", "!=", "d"}
	if len(texts) != len(want) {
		t.Fatalf("lexExpr token count = %d, want %d (%v)", len(texts), len(want), texts)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestLexExpr_GreedyMultiCharPuncts(t *testing.T) {
	toks := lexExpr("a<=b")
	if toks[1].text != "<=" {
		t.Errorf("expected greedy match on \"<=\", got %q", toks[1].text)
	}
}

func TestLexExpr_QualifiedPathIsOneIdent(t *testing.T) {
	toks := lexExpr("crate::bitmap::len")
	if len(toks) != 2 || toks[0].kind != tokIdent || toks[0].text != "crate::bitmap::len" {
		t.Fatalf("expected a single qualified-path ident token, got %+v", toks)
	}
}

func TestLexExpr_StringLiteral(t *testing.T) {
	toks := lexExpr(`"hello world"`)
	if toks[0].kind != tokString || toks[0].text != "hello world" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexExpr_IntLiteralUnderscores(t *testing.T) {
	toks := lexExpr("1_000_000")
	if toks[0].kind != tokInt || toks[0].text != "1000000" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexExpr_EOFSentinel(t *testing.T) {
	toks := lexExpr("a")
	if toks[len(toks)-1].kind != tokEOF {
		t.Errorf("last token should be tokEOF")
	}
}
