package plingua

import "fmt"

// tokenKind discriminates the lexical classes of the modeling language.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokLBracket // [
	tokRBracket // ]
	tokLBrace   // {
	tokRBrace   // }
	tokLParen   // (
	tokRParen   // )
	tokComma    // ,
	tokSemi     // ;
	tokEquals   // =
	tokQuote    // '
	tokAt       // @
	tokLess     // <
	tokGreater  // >
	tokArrow    // -->

	// Keyword identifiers, recognized by text after the identifier scan so
	// that names like in_2 stay plain identifiers.
	tokModel // model
	tokDef   // def
	tokMu    // mu
	tokMs    // ms
	tokIn    // in
	tokOut   // out
	tokHere  // here
)

var keywords = map[string]tokenKind{
	"model": tokModel,
	"def":   tokDef,
	"mu":    tokMu,
	"ms":    tokMs,
	"in":    tokIn,
	"out":   tokOut,
	"here":  tokHere,
}

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokInt:
		return "number"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokSemi:
		return "';'"
	case tokEquals:
		return "'='"
	case tokQuote:
		return "\"'\""
	case tokAt:
		return "'@'"
	case tokLess:
		return "'<'"
	case tokGreater:
		return "'>'"
	case tokArrow:
		return "'-->'"
	case tokModel:
		return "'model'"
	case tokDef:
		return "'def'"
	case tokMu:
		return "'mu'"
	case tokMs:
		return "'ms'"
	case tokIn:
		return "'in'"
	case tokOut:
		return "'out'"
	case tokHere:
		return "'here'"
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}

// token is one lexical unit with its 1-based source position.
type token struct {
	Kind tokenKind
	Text string
	Val  int // parsed value of tokInt tokens
	Pos  Pos
}

// describe renders the token for error messages, quoting user-written text.
func (t token) describe() string {
	switch t.Kind {
	case tokIdent:
		return fmt.Sprintf("identifier %q", t.Text)
	case tokInt:
		return fmt.Sprintf("number %s", t.Text)
	default:
		return t.Kind.String()
	}
}
