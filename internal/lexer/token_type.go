package lexer

// TokenType represents the category of a scanned token (the token
// grammar: IdentifierName, Punctuator, numeric/string/template/regex
// literals, plus the keywords that double as reserved words).
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	COMMENT // only emitted when WithPreserveComments(true)

	IDENT          // identifiers and non-reserved-word keywords (contextual keywords are IDENT + Value)
	PRIVATE_IDENT  // #name
	NUMBER         // 123, 1.5e10, 0x1F, 0o17, 0b101
	BIGINT         // 123n
	STRING         // 'single' or "double" quoted
	TEMPLATE_HEAD     // `...${
	TEMPLATE_MIDDLE   // }...${
	TEMPLATE_TAIL     // }...`
	TEMPLATE_NO_SUB   // `...` with no substitutions
	REGEX          // /pattern/flags

	literalEnd

	// Keywords (ReservedWord)
	BREAK
	CASE
	CATCH
	CLASS
	CONST
	CONTINUE
	DEBUGGER
	DEFAULT
	DELETE
	DO
	ELSE
	EXPORT
	EXTENDS
	FINALLY
	FOR
	FUNCTION
	IF
	IMPORT
	IN
	INSTANCEOF
	NEW
	RETURN
	SUPER
	SWITCH
	THIS
	THROW
	TRY
	TYPEOF
	VAR
	VOID
	WHILE
	WITH
	YIELD

	// Literals that are also reserved words
	NULL
	TRUE
	FALSE

	// Contextual keywords (not reserved; lexed as IDENT in most grammar
	// positions but given distinct token types to simplify the parser's
	// lookahead — notes these gate on context, e.g. `let` is a
	// BindingIdentifier outside strict mode and a declaration head inside).
	LET
	STATIC
	ASYNC
	AWAIT
	GET
	SET_KW
	OF
	AS
	FROM
	TARGET // new.target
	META   // import.meta

	keywordEnd

	// Punctuators
	LBRACE    // {
	RBRACE    // }
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	DOT       // .
	ELLIPSIS  // ...
	SEMI      // ;
	COMMA     // ,
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	EQ        // ==
	NEQ       // !=
	SEQ       // ===
	SNEQ      // !==
	PLUS      // +
	MINUS     // -
	STAR      // *
	PERCENT   // %
	STARSTAR  // **
	PLUSPLUS  // ++
	MINUSMINUS // --
	SHL       // <<
	SHR       // >>
	USHR      // >>>
	AND       // &
	OR        // |
	XOR       // ^
	NOT       // !
	TILDE     // ~
	LOGAND    // &&
	LOGOR     // ||
	QUESTION  // ?
	QDOT      // ?.
	QQ        // ??
	COLON     // :
	ASSIGN    // =
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	PERCENT_ASSIGN
	STARSTAR_ASSIGN
	SHL_ASSIGN
	SHR_ASSIGN
	USHR_ASSIGN
	AND_ASSIGN
	OR_ASSIGN
	XOR_ASSIGN
	LOGAND_ASSIGN
	LOGOR_ASSIGN
	QQ_ASSIGN
	ARROW // =>
	SLASH // /
	SLASH_ASSIGN
)

var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", COMMENT: "COMMENT",
	IDENT: "IDENT", PRIVATE_IDENT: "PRIVATE_IDENT", NUMBER: "NUMBER", BIGINT: "BIGINT",
	STRING: "STRING", TEMPLATE_HEAD: "TEMPLATE_HEAD", TEMPLATE_MIDDLE: "TEMPLATE_MIDDLE",
	TEMPLATE_TAIL: "TEMPLATE_TAIL", TEMPLATE_NO_SUB: "TEMPLATE_NO_SUB", REGEX: "REGEX",
	BREAK: "break", CASE: "case", CATCH: "catch", CLASS: "class", CONST: "const",
	CONTINUE: "continue", DEBUGGER: "debugger", DEFAULT: "default", DELETE: "delete",
	DO: "do", ELSE: "else", EXPORT: "export", EXTENDS: "extends", FINALLY: "finally",
	FOR: "for", FUNCTION: "function", IF: "if", IMPORT: "import", IN: "in",
	INSTANCEOF: "instanceof", NEW: "new", RETURN: "return", SUPER: "super",
	SWITCH: "switch", THIS: "this", THROW: "throw", TRY: "try", TYPEOF: "typeof",
	VAR: "var", VOID: "void", WHILE: "while", WITH: "with", YIELD: "yield",
	NULL: "null", TRUE: "true", FALSE: "false",
	LET: "let", STATIC: "static", ASYNC: "async", AWAIT: "await", GET: "get",
	SET_KW: "set", OF: "of", AS: "as", FROM: "from", TARGET: "target", META: "meta",
	LBRACE: "{", RBRACE: "}", LPAREN: "(", RPAREN: ")", LBRACKET: "[", RBRACKET: "]",
	DOT: ".", ELLIPSIS: "...", SEMI: ";", COMMA: ",", LT: "<", GT: ">", LE: "<=", GE: ">=",
	EQ: "==", NEQ: "!=", SEQ: "===", SNEQ: "!==", PLUS: "+", MINUS: "-", STAR: "*",
	PERCENT: "%", STARSTAR: "**", PLUSPLUS: "++", MINUSMINUS: "--", SHL: "<<", SHR: ">>",
	USHR: ">>>", AND: "&", OR: "|", XOR: "^", NOT: "!", TILDE: "~", LOGAND: "&&",
	LOGOR: "||", QUESTION: "?", QDOT: "?.", QQ: "??", COLON: ":", ASSIGN: "=",
	PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=", STAR_ASSIGN: "*=", PERCENT_ASSIGN: "%=",
	STARSTAR_ASSIGN: "**=", SHL_ASSIGN: "<<=", SHR_ASSIGN: ">>=", USHR_ASSIGN: ">>>=",
	AND_ASSIGN: "&=", OR_ASSIGN: "|=", XOR_ASSIGN: "^=", LOGAND_ASSIGN: "&&=",
	LOGOR_ASSIGN: "||=", QQ_ASSIGN: "??=", ARROW: "=>", SLASH: "/", SLASH_ASSIGN: "/=",
}

func (t TokenType) String() string {
	if n, ok := tokenNames[t]; ok {
		return n
	}
	return "UNKNOWN"
}

func (t TokenType) IsLiteral() bool { return t > EOF && t < literalEnd }
func (t TokenType) IsKeyword() bool { return t > literalEnd && t < keywordEnd }

var keywords = map[string]TokenType{
	"break": BREAK, "case": CASE, "catch": CATCH, "class": CLASS, "const": CONST,
	"continue": CONTINUE, "debugger": DEBUGGER, "default": DEFAULT, "delete": DELETE,
	"do": DO, "else": ELSE, "export": EXPORT, "extends": EXTENDS, "finally": FINALLY,
	"for": FOR, "function": FUNCTION, "if": IF, "import": IMPORT, "in": IN,
	"instanceof": INSTANCEOF, "new": NEW, "return": RETURN, "super": SUPER,
	"switch": SWITCH, "this": THIS, "throw": THROW, "try": TRY, "typeof": TYPEOF,
	"var": VAR, "void": VOID, "while": WHILE, "with": WITH, "yield": YIELD,
	"null": NULL, "true": TRUE, "false": FALSE,
}

// contextualKeywords are lexed as their own token types (LET, ASYNC, OF,
// ...) by LookupIdent, not as IDENT; the parser gives them their specific
// meaning in the grammar positions where the contextual grammar allows it
// (e.g. `let` before a BindingIdentifier, `async` immediately
// before `function` or a parameter list followed by `=>`).
var contextualKeywords = map[string]TokenType{
	"let": LET, "static": STATIC, "async": ASYNC, "await": AWAIT,
	"get": GET, "set": SET_KW, "of": OF, "as": AS, "from": FROM,
}

// LookupIdent classifies a scanned identifier string as a reserved keyword,
// a contextual keyword, or a plain IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	if tok, ok := contextualKeywords[ident]; ok {
		return tok
	}
	return IDENT
}
