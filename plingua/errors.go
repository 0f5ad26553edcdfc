package plingua

import "fmt"

// Pos is a 1-based line and column in the model source.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// SyntaxKind classifies what went wrong with a model source.
type SyntaxKind string

const (
	// KindToken marks input the lexer could not turn into a token, like a
	// stray character or an unterminated block comment.
	KindToken SyntaxKind = "token"

	// KindGrammar marks token sequences the grammar does not admit.
	KindGrammar SyntaxKind = "grammar"

	// KindModel marks well-formed syntax with inconsistent meaning, like a
	// second @mu statement or a priority over unknown rule names.
	KindModel SyntaxKind = "model"
)

// SyntaxError reports a malformed model source with its position. The front
// end fails fast: the first error aborts immediately, no recovery is
// attempted, and no System is ever partially built.
type SyntaxError struct {
	Kind SyntaxKind
	Pos  Pos
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("plingua: %s: %s error: %s", e.Pos, e.Kind, e.Msg)
}

func syntaxErrorf(kind SyntaxKind, pos Pos, format string, args ...any) *SyntaxError {
	return &SyntaxError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
