package lexer

import "testing"

func collect(input string) []Token {
	l := New(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks
}

func TestKeywordsAndIdents(t *testing.T) {
	toks := collect("let x = await foo;")
	want := []TokenType{LET, IDENT, ASSIGN, AWAIT, IDENT, SEMI, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"123", 123},
		{"1.5e2", 150},
		{"0xFF", 255},
		{"0o17", 15},
		{"0b101", 5},
	}
	for _, c := range cases {
		toks := collect(c.src)
		if toks[0].Type != NUMBER {
			t.Fatalf("%q: expected NUMBER, got %s", c.src, toks[0].Type)
		}
		if toks[0].Value.(float64) != c.want {
			t.Errorf("%q: got %v, want %v", c.src, toks[0].Value, c.want)
		}
	}
}

func TestBigIntLiteral(t *testing.T) {
	toks := collect("123n")
	if toks[0].Type != BIGINT || toks[0].Value != "123" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestStringEscapes(t *testing.T) {
	toks := collect(`"a\nbA\u{1F600}"`)
	if toks[0].Type != STRING {
		t.Fatalf("expected STRING, got %s", toks[0].Type)
	}
	got := toks[0].Value.(string)
	want := "a\nbA😀"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrivateIdentifier(t *testing.T) {
	toks := collect("this.#field")
	if toks[2].Type != PRIVATE_IDENT || toks[2].Literal != "#field" {
		t.Fatalf("got %+v", toks[2])
	}
}

func TestTemplateLiteralNoSubstitution(t *testing.T) {
	toks := collect("`hello world`")
	if toks[0].Type != TEMPLATE_NO_SUB || toks[0].Value != "hello world" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestTemplateLiteralWithSubstitution(t *testing.T) {
	l := New("`a${x}b`")
	head := l.NextToken()
	if head.Type != TEMPLATE_HEAD || head.Value != "a" {
		t.Fatalf("head: got %+v", head)
	}
	ident := l.NextToken()
	if ident.Type != IDENT || ident.Literal != "x" {
		t.Fatalf("ident: got %+v", ident)
	}
	tail := l.NextToken()
	if tail.Type != TEMPLATE_TAIL || tail.Value != "b" {
		t.Fatalf("tail: got %+v", tail)
	}
	eof := l.NextToken()
	if eof.Type != EOF {
		t.Fatalf("expected EOF, got %+v", eof)
	}
}

func TestTemplateLiteralNestedObjectInSubstitution(t *testing.T) {
	l := New("`x${ {a:1} }y`")
	head := l.NextToken()
	if head.Type != TEMPLATE_HEAD {
		t.Fatalf("head: got %+v", head)
	}
	lb := l.NextToken()
	if lb.Type != LBRACE {
		t.Fatalf("expected LBRACE, got %+v", lb)
	}
	l.EnterBrace()
	ident := l.NextToken()
	if ident.Type != IDENT {
		t.Fatalf("expected IDENT, got %+v", ident)
	}
	colon := l.NextToken()
	if colon.Type != COLON {
		t.Fatalf("expected COLON, got %+v", colon)
	}
	num := l.NextToken()
	if num.Type != NUMBER {
		t.Fatalf("expected NUMBER, got %+v", num)
	}
	rb := l.NextToken()
	if rb.Type != RBRACE {
		t.Fatalf("expected inner RBRACE (object literal close), got %+v", rb)
	}
	l.ExitBrace()
	tail := l.NextToken()
	if tail.Type != TEMPLATE_TAIL || tail.Value != "y" {
		t.Fatalf("tail: got %+v", tail)
	}
}

func TestRegexVsDivisionContext(t *testing.T) {
	// After an identifier, '/' starts division.
	toks := collect("a / b")
	if toks[1].Type != SLASH {
		t.Fatalf("expected SLASH after identifier, got %s", toks[1].Type)
	}

	// After 'return', '/' starts a regex literal.
	l := New("return /abc/g")
	ret := l.NextToken()
	if ret.Type != RETURN {
		t.Fatalf("expected RETURN, got %s", ret.Type)
	}
	re := l.NextToken()
	if re.Type != REGEX || re.Literal != "/abc/g" {
		t.Fatalf("expected REGEX /abc/g, got %+v", re)
	}
}

func TestAutomaticSemicolonNewlineFlag(t *testing.T) {
	toks := collect("a\nb")
	if toks[1].PrecededByNewline != true {
		t.Fatalf("expected second token to be flagged as preceded by a newline")
	}
}

func TestOperatorPunctuators(t *testing.T) {
	toks := collect("=> ?. ?? ??= **= >>>= ===")
	want := []TokenType{ARROW, QDOT, QQ, QQ_ASSIGN, STARSTAR_ASSIGN, USHR_ASSIGN, SEQ, EOF}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestSaveRestoreBacktracking(t *testing.T) {
	l := New("a b c")
	_ = l.NextToken()
	saved := l.Save()
	second := l.NextToken()
	if second.Literal != "b" {
		t.Fatalf("got %q", second.Literal)
	}
	l.Restore(saved)
	replay := l.NextToken()
	if replay.Literal != "b" {
		t.Fatalf("expected replay to reproduce 'b', got %q", replay.Literal)
	}
}

func TestBOMIsStripped(t *testing.T) {
	toks := collect("﻿let x")
	if toks[0].Type != LET {
		t.Fatalf("expected BOM to be stripped before first token, got %+v", toks[0])
	}
}

func TestUnterminatedStringRecordsError(t *testing.T) {
	l := New(`"abc`)
	_ = l.NextToken()
	if len(l.Errors()) == 0 {
		t.Fatal("expected an unterminated-string error to be recorded")
	}
}

func TestContextualKeywordsAreNotReserved(t *testing.T) {
	// `let`, `async`, `of` etc. must still be usable as ordinary
	// identifiers lexically; the parser (not the lexer) enforces context.
	toks := collect("let")
	if toks[0].Type != LET {
		t.Fatalf("got %s", toks[0].Type)
	}
}
