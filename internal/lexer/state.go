package lexer

// State captures a Lexer's full scanning position so the parser can
// backtrack during speculative parses (arrow-function-parameter-list
// disambiguation, cover-grammar reparse).
type State struct {
	position      int
	readPosition  int
	line          int
	column        int
	ch            rune
	lastTokenType TokenType
	lastWasValue  bool
	templateStack []templateFrame
}

// Save snapshots the current scanning position.
func (l *Lexer) Save() State {
	stack := make([]templateFrame, len(l.templateStack))
	copy(stack, l.templateStack)
	return State{
		position:      l.position,
		readPosition:  l.readPosition,
		line:          l.line,
		column:        l.column,
		ch:            l.ch,
		lastTokenType: l.lastTokenType,
		lastWasValue:  l.lastTokenWasValue,
		templateStack: stack,
	}
}

// Restore rewinds the lexer to a previously saved State.
func (l *Lexer) Restore(s State) {
	l.position = s.position
	l.readPosition = s.readPosition
	l.line = s.line
	l.column = s.column
	l.ch = s.ch
	l.lastTokenType = s.lastTokenType
	l.lastTokenWasValue = s.lastWasValue
	l.templateStack = s.templateStack
}
