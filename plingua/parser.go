package plingua

import (
	"strconv"
	"strings"

	"github.com/membrango/membrango/psys"
)

// parser is a recursive descent over the token stream with bounded two-token
// lookahead and no backtracking. The first violation aborts the whole parse.
type parser struct {
	toks []token
	idx  int
}

func parse(toks []token) (*file, error) {
	p := &parser{toks: toks}
	return p.parseFile()
}

// peek returns the current token without consuming it.
func (p *parser) peek() token {
	return p.toks[p.idx]
}

// peekAt returns the token n places ahead, saturating at EOF.
func (p *parser) peekAt(n int) token {
	if p.idx+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.idx+n]
}

// bump consumes and returns the current token. EOF is sticky.
func (p *parser) bump() token {
	t := p.toks[p.idx]
	if t.Kind != tokEOF {
		p.idx++
	}
	return t
}

// expect consumes a token of the wanted kind or fails, naming the grammar
// slot that needed it.
func (p *parser) expect(kind tokenKind, where string) (token, error) {
	t := p.peek()
	if t.Kind != kind {
		return token{}, syntaxErrorf(KindGrammar, t.Pos, "expected %s %s, got %s", kind, where, t.describe())
	}
	return p.bump(), nil
}

func (p *parser) parseFile() (*file, error) {
	f := &file{}

	// Optional header: @model<name>
	if p.peek().Kind == tokAt && p.peekAt(1).Kind == tokModel {
		p.bump()
		p.bump()
		if _, err := p.expect(tokLess, "after '@model'"); err != nil {
			return nil, err
		}
		name, err := p.expect(tokIdent, "as the model name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokGreater, "after the model name"); err != nil {
			return nil, err
		}
		f.Model = name.Text
	}

	for p.peek().Kind != tokEOF {
		s, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		f.Stmts = append(f.Stmts, s)
	}
	return f, nil
}

func (p *parser) parseItem() (stmt, error) {
	if p.peek().Kind == tokDef {
		return p.parseDef()
	}
	return p.parseStmt()
}

func (p *parser) parseDef() (stmt, error) {
	at := p.bump().Pos // def
	name, err := p.expect(tokIdent, "as the definition name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLParen, "after the definition name"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, "in the definition signature"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace, "to open the definition body"); err != nil {
		return nil, err
	}
	d := &defStmt{pos: at, Name: name.Text}
	for p.peek().Kind != tokRBrace {
		if p.peek().Kind == tokEOF {
			return nil, syntaxErrorf(KindGrammar, p.peek().Pos, "unclosed definition body, expected '}'")
		}
		if p.peek().Kind == tokDef {
			return nil, syntaxErrorf(KindGrammar, p.peek().Pos, "definitions cannot nest")
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		d.Body = append(d.Body, s)
	}
	p.bump() // }
	return d, nil
}

func (p *parser) parseStmt() (stmt, error) {
	switch t := p.peek(); t.Kind {
	case tokAt:
		switch p.peekAt(1).Kind {
		case tokMu:
			return p.parseStructure()
		case tokMs:
			return p.parseContents()
		case tokModel:
			return nil, syntaxErrorf(KindGrammar, t.Pos, "the model header must come before all statements")
		default:
			return nil, syntaxErrorf(KindGrammar, p.peekAt(1).Pos,
				"expected 'mu' or 'ms' after '@', got %s", p.peekAt(1).describe())
		}
	case tokLBracket:
		return p.parseRule("", t.Pos)
	case tokIdent:
		switch p.peekAt(1).Kind {
		case tokEquals:
			name := p.bump()
			p.bump() // =
			if p.peek().Kind != tokLBracket {
				return nil, syntaxErrorf(KindGrammar, p.peek().Pos,
					"expected '[' to open the left side of rule %q, got %s", name.Text, p.peek().describe())
			}
			return p.parseRule(name.Text, name.Pos)
		case tokGreater, tokLess:
			return p.parsePriority()
		default:
			return nil, syntaxErrorf(KindGrammar, t.Pos,
				"identifier %q begins no statement, expected '=', '>' or '<' after it", t.Text)
		}
	default:
		return nil, syntaxErrorf(KindGrammar, t.Pos, "expected a statement, got %s", t.describe())
	}
}

// parseStructure reads `@mu = [...]'label ;`.
func (p *parser) parseStructure() (stmt, error) {
	at := p.bump().Pos // @
	p.bump()           // mu
	if _, err := p.expect(tokEquals, "after '@mu'"); err != nil {
		return nil, err
	}
	root, err := p.parseMembraneExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemi, "after the membrane structure"); err != nil {
		return nil, err
	}
	return &structureStmt{pos: at, Root: root}, nil
}

// parseMembraneExpr reads one nested bracket-with-label expression.
func (p *parser) parseMembraneExpr() (*membraneExpr, error) {
	open, err := p.expect(tokLBracket, "to open a membrane")
	if err != nil {
		return nil, err
	}
	m := &membraneExpr{pos: open.Pos}
	for p.peek().Kind == tokLBracket {
		child, err := p.parseMembraneExpr()
		if err != nil {
			return nil, err
		}
		m.Children = append(m.Children, child)
	}
	if _, err := p.expect(tokRBracket, "to close the membrane"); err != nil {
		return nil, err
	}
	m.Label, err = p.parseLabel()
	if err != nil {
		return nil, err
	}
	return m, nil
}

// parseLabel reads 'label, where the label is an identifier or a number.
func (p *parser) parseLabel() (string, error) {
	if _, err := p.expect(tokQuote, "before the membrane label"); err != nil {
		return "", err
	}
	switch t := p.peek(); t.Kind {
	case tokIdent, tokInt:
		p.bump()
		return t.Text, nil
	default:
		return "", syntaxErrorf(KindGrammar, t.Pos, "expected a membrane label, got %s", t.describe())
	}
}

// parseContents reads `@ms(id) = objects ;`.
func (p *parser) parseContents() (stmt, error) {
	at := p.bump().Pos // @
	p.bump()           // ms
	if _, err := p.expect(tokLParen, "after '@ms'"); err != nil {
		return nil, err
	}
	id, err := p.expect(tokInt, "as the membrane id")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, "after the membrane id"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEquals, "before the contents"); err != nil {
		return nil, err
	}
	objects, err := p.parseObjects(tokSemi)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemi, "after the contents"); err != nil {
		return nil, err
	}
	return &contentsStmt{pos: at, Membrane: id.Val, Objects: objects}, nil
}

// parseObjects reads a possibly-empty comma-separated object list, stopping
// in front of the closing token.
func (p *parser) parseObjects(closing tokenKind) ([]objectExpr, error) {
	if p.peek().Kind == closing {
		return nil, nil
	}
	var objects []objectExpr
	for {
		obj, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
		if p.peek().Kind != tokComma {
			return objects, nil
		}
		p.bump()
	}
}

// parseObject reads `symbol` or `symbol{count}`.
func (p *parser) parseObject() (objectExpr, error) {
	sym, err := p.expect(tokIdent, "as an object symbol")
	if err != nil {
		return objectExpr{}, err
	}
	obj := objectExpr{pos: sym.Pos, Symbol: sym.Text, Count: 1}
	if p.peek().Kind == tokLBrace {
		p.bump()
		count, err := p.expect(tokInt, "as the multiplicity")
		if err != nil {
			return objectExpr{}, err
		}
		if _, err := p.expect(tokRBrace, "after the multiplicity"); err != nil {
			return objectExpr{}, err
		}
		obj.Count = count.Val
	}
	return obj, nil
}

// parseRule reads `[lhs]'label --> rhs ;` with the opening bracket still
// pending; name is the optional rule name already consumed.
func (p *parser) parseRule(name string, at Pos) (stmt, error) {
	p.bump() // [
	lhs, err := p.parseObjects(tokRBracket)
	if err != nil {
		return nil, err
	}
	if len(lhs) == 0 {
		return nil, syntaxErrorf(KindModel, at, "a rule needs at least one object on its left side")
	}
	if _, err := p.expect(tokRBracket, "to close the left side"); err != nil {
		return nil, err
	}
	label, err := p.parseLabel()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokArrow, "between the rule's sides"); err != nil {
		return nil, err
	}
	rhs, err := p.parseRHS(label)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemi, "after the rule"); err != nil {
		return nil, err
	}
	return &ruleStmt{pos: at, Name: name, Label: label, LHS: lhs, RHS: rhs}, nil
}

func (p *parser) parseRHS(ruleLabel string) (ruleRHS, error) {
	switch t := p.peek(); t.Kind {
	case tokLBracket:
		p.bump()
		rhs := ruleRHS{pos: t.Pos, Bracket: true}
		objects, err := p.parseObjects(tokRBracket)
		if err != nil {
			return ruleRHS{}, err
		}
		rhs.Objects = objects
		if _, err := p.expect(tokRBracket, "to close the right side"); err != nil {
			return ruleRHS{}, err
		}
		quotePos := p.peek().Pos
		rhs.Label, err = p.parseLabel()
		if err != nil {
			return ruleRHS{}, err
		}
		if rhs.Label != ruleLabel {
			return ruleRHS{}, syntaxErrorf(KindModel, quotePos,
				"the right side's label %q must echo the rule's label %q", rhs.Label, ruleLabel)
		}
		rhs.Dissolve = len(objects) == 0
		return rhs, nil
	case tokLParen:
		return p.parseParenRHS()
	default:
		return ruleRHS{}, syntaxErrorf(KindGrammar, t.Pos,
			"expected '[' or '(' to open the right side, got %s", t.describe())
	}
}

// parseParenRHS reads `( products )` with an optional trailing destination:
// out, here, or in_<id>. A final in_<id> without a multiplicity names the
// destination; anywhere else it is an ordinary object.
func (p *parser) parseParenRHS() (ruleRHS, error) {
	open := p.bump() // (
	rhs := ruleRHS{pos: open.Pos, Target: psys.Here()}
	if p.peek().Kind == tokRParen {
		p.bump()
		return rhs, nil
	}
	for {
		switch t := p.peek(); t.Kind {
		case tokOut:
			p.bump()
			rhs.Target = psys.Out()
			_, err := p.expect(tokRParen, "after the destination")
			return rhs, err
		case tokHere:
			p.bump()
			rhs.Target = psys.Here()
			_, err := p.expect(tokRParen, "after the destination")
			return rhs, err
		case tokIdent:
			if child, ok := inChild(t.Text); ok && p.peekAt(1).Kind == tokRParen {
				p.bump()
				rhs.Target = psys.In(child)
				p.bump() // )
				return rhs, nil
			}
			obj, err := p.parseObject()
			if err != nil {
				return ruleRHS{}, err
			}
			rhs.Objects = append(rhs.Objects, obj)
		default:
			return ruleRHS{}, syntaxErrorf(KindGrammar, t.Pos,
				"expected an object or a destination, got %s", t.describe())
		}
		switch p.peek().Kind {
		case tokComma:
			p.bump()
		case tokRParen:
			p.bump()
			return rhs, nil
		default:
			return ruleRHS{}, syntaxErrorf(KindGrammar, p.peek().Pos,
				"expected ',' or ')' in the product list, got %s", p.peek().describe())
		}
	}
}

// parsePriority reads `a > b ;` or `a < b ;`.
func (p *parser) parsePriority() (stmt, error) {
	left := p.bump() // ident
	op := p.bump()   // > or <
	right, err := p.expect(tokIdent, "as the second rule name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemi, "after the priority relation"); err != nil {
		return nil, err
	}
	s := &priorityStmt{pos: left.Pos, Higher: left.Text, Lower: right.Text}
	if op.Kind == tokLess {
		s.Higher, s.Lower = right.Text, left.Text
	}
	return s, nil
}

// inChild recognizes in_<id> destination spellings.
func inChild(text string) (int, bool) {
	rest, ok := strings.CutPrefix(text, "in_")
	if !ok || rest == "" {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
