package lexer

// Position identifies a location in source text by line/column (1-based
// line, 1-based column counted in runes) plus a
// byte offset for slicing the original source when formatting diagnostics.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Token is one lexical unit: its type, literal text, decoded value for
// numeric/string/template literals, position, and whether a LineTerminator
// appeared in the whitespace immediately before it (the automatic
// semicolon insertion consults this per token).
type Token struct {
	Type             TokenType
	Literal          string
	Value            any // float64 for NUMBER, string for STRING/TEMPLATE_*, digit string for BIGINT
	Pos              Position
	PrecededByNewline bool
	// Raw holds the unescaped template-literal source segment, with
	// escapes intact, the form a tagged template's raw strings array needs.
	Raw string
}

func (t Token) String() string {
	if t.Type == EOF {
		return "EOF"
	}
	return t.Type.String() + "(" + t.Literal + ")"
}
