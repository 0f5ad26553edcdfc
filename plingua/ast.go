package plingua

import "github.com/membrango/membrango/psys"

// file is a parsed model source: the optional header value plus every
// statement in source order.
type file struct {
	Model string
	Stmts []stmt
}

// stmt is one statement of the modeling language.
type stmt interface {
	at() Pos
}

// structureStmt is `@mu = [...]'label ;`.
type structureStmt struct {
	pos  Pos
	Root *membraneExpr
}

// contentsStmt is `@ms(id) = a{2}, b ;`.
type contentsStmt struct {
	pos      Pos
	Membrane int
	Objects  []objectExpr
}

// ruleStmt is `name = [lhs]'label --> rhs ;` with the name optional.
type ruleStmt struct {
	pos   Pos
	Name  string
	Label string
	LHS   []objectExpr
	RHS   ruleRHS
}

// priorityStmt is `a > b ;` or its mirror `b < a ;`, normalized so Higher
// outranks Lower.
type priorityStmt struct {
	pos    Pos
	Higher string
	Lower  string
}

// defStmt is `def name() { ... }`. The body only groups statements; they
// run in source order, there are no call semantics.
type defStmt struct {
	pos  Pos
	Name string
	Body []stmt
}

func (s *structureStmt) at() Pos { return s.pos }
func (s *contentsStmt) at() Pos  { return s.pos }
func (s *ruleStmt) at() Pos      { return s.pos }
func (s *priorityStmt) at() Pos  { return s.pos }
func (s *defStmt) at() Pos       { return s.pos }

// membraneExpr is one bracket of the structure expression, e.g. the inner
// [ ]'2 of [[ ]'2]'1.
type membraneExpr struct {
	pos      Pos
	Label    string
	Children []*membraneExpr
}

// objectExpr is `symbol` or `symbol{count}`.
type objectExpr struct {
	pos    Pos
	Symbol string
	Count  int
}

// ruleRHS is a rule's right side: either a bracketed content expression
// (an empty bracket marks dissolution) or a parenthesized product list with
// an optional destination.
type ruleRHS struct {
	pos      Pos
	Objects  []objectExpr
	Bracket  bool
	Label    string // bracket form only, echoes the rule's label
	Dissolve bool
	Target   psys.Target
}
