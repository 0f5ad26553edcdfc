package plingua

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// lexer walks the source byte-wise; runes are decoded only when consuming,
// so positions count runes and multi-byte text inside comments stays honest.
type lexer struct {
	src  string
	off  int
	line int
	col  int
}

// lex turns the whole source into a token stream ending with an EOF token.
func lex(src string) ([]token, error) {
	l := &lexer{src: src, line: 1, col: 1}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) pos() Pos {
	return Pos{Line: l.line, Col: l.col}
}

func (l *lexer) rest() string {
	return l.src[l.off:]
}

// bump consumes one rune, keeping the 1-based line/column current.
func (l *lexer) bump() {
	r, size := utf8.DecodeRuneInString(l.rest())
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

// skipBlanks drops whitespace, // line comments, and non-nesting /* */ block
// comments without emitting tokens.
func (l *lexer) skipBlanks() error {
	for l.off < len(l.src) {
		switch {
		case isSpace(l.src[l.off]):
			l.bump()
		case strings.HasPrefix(l.rest(), "//"):
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.bump()
			}
		case strings.HasPrefix(l.rest(), "/*"):
			opened := l.pos()
			l.bump()
			l.bump()
			for {
				if l.off >= len(l.src) {
					return syntaxErrorf(KindToken, opened, "unterminated block comment")
				}
				if strings.HasPrefix(l.rest(), "*/") {
					l.bump()
					l.bump()
					break
				}
				l.bump()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) next() (token, error) {
	if err := l.skipBlanks(); err != nil {
		return token{}, err
	}
	start := l.pos()
	if l.off >= len(l.src) {
		return token{Kind: tokEOF, Pos: start}, nil
	}

	c := l.src[l.off]
	switch {
	case isIdentStart(c):
		text := l.scanWhile(isIdentPart)
		if kind, ok := keywords[text]; ok {
			return token{Kind: kind, Text: text, Pos: start}, nil
		}
		return token{Kind: tokIdent, Text: text, Pos: start}, nil
	case isDigit(c):
		text := l.scanWhile(isDigit)
		val, err := strconv.Atoi(text)
		if err != nil {
			return token{}, syntaxErrorf(KindToken, start, "number %s is out of range", text)
		}
		return token{Kind: tokInt, Text: text, Val: val, Pos: start}, nil
	}

	l.bump()
	if kind, ok := punctuation[c]; ok {
		return token{Kind: kind, Text: string(c), Pos: start}, nil
	}
	if c == '-' {
		// Maximal munch: the only token beginning with '-' is the arrow.
		if strings.HasPrefix(l.rest(), "->") {
			l.bump()
			l.bump()
			return token{Kind: tokArrow, Text: "-->", Pos: start}, nil
		}
		return token{}, syntaxErrorf(KindToken, start, "unexpected '-', the only arrow is '-->'")
	}
	return token{}, syntaxErrorf(KindToken, start, "unexpected character %q", rune(c))
}

var punctuation = map[byte]tokenKind{
	'[': tokLBracket, ']': tokRBracket,
	'{': tokLBrace, '}': tokRBrace,
	'(': tokLParen, ')': tokRParen,
	',': tokComma, ';': tokSemi,
	'=': tokEquals, '\'': tokQuote,
	'@': tokAt, '<': tokLess, '>': tokGreater,
}

// scanWhile consumes the maximal run satisfying pred and returns its text.
func (l *lexer) scanWhile(pred func(byte) bool) string {
	from := l.off
	for l.off < len(l.src) && pred(l.src[l.off]) {
		l.bump()
	}
	return l.src[from:l.off]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
