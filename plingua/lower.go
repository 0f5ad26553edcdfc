// Package plingua compiles a P-Lingua-style modeling language into runnable
// membrane systems. Parse is the whole surface: lexing, recursive-descent
// parsing, and lowering of the syntax tree into psys values happen in one
// fail-fast pass.
package plingua

import (
	"sort"

	"github.com/membrango/membrango/multiset"
	"github.com/membrango/membrango/psys"
)

// Parse compiles model source into a validated system. Malformed source
// returns a *SyntaxError with position; structurally valid models that
// reference undeclared membranes surface the *psys.ValidationError of the
// final assembly. Either way no partially built System ever escapes.
func Parse(src string) (*psys.System, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	f, err := parse(toks)
	if err != nil {
		return nil, err
	}
	return newLowerer().lower(f)
}

// lowerer carries the id counter and registries threaded through one
// lowering walk. All state is per-call, keeping Parse reentrant.
type lowerer struct {
	membranes []*psys.Membrane
	initial   map[int]multiset.Multiset
	rules     []*psys.Rule
	byName    map[string]*psys.Rule
	relations []relation
	symbols   map[string]struct{}
	nextID    int
	structure *Pos // where the @mu statement was seen
}

// relation is one declared domination between named rules.
type relation struct {
	higher string
	lower  string
	pos    Pos
}

func newLowerer() *lowerer {
	return &lowerer{
		initial: make(map[int]multiset.Multiset),
		byName:  make(map[string]*psys.Rule),
		symbols: make(map[string]struct{}),
		nextID:  1,
	}
}

func (lw *lowerer) lower(f *file) (*psys.System, error) {
	if err := lw.stmts(f.Stmts); err != nil {
		return nil, err
	}
	if err := lw.applyPriorities(); err != nil {
		return nil, err
	}
	return psys.NewSystem(lw.membranes, lw.alphabet(), lw.initial, lw.rules)
}

func (lw *lowerer) stmts(stmts []stmt) error {
	for _, s := range stmts {
		var err error
		switch s := s.(type) {
		case *defStmt:
			err = lw.stmts(s.Body) // definitions only group
		case *structureStmt:
			err = lw.structureStmt(s)
		case *contentsStmt:
			err = lw.contentsStmt(s)
		case *ruleStmt:
			err = lw.ruleStmt(s)
		case *priorityStmt:
			lw.relations = append(lw.relations, relation{higher: s.Higher, lower: s.Lower, pos: s.pos})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (lw *lowerer) structureStmt(s *structureStmt) error {
	if lw.structure != nil {
		return syntaxErrorf(KindModel, s.pos,
			"duplicate @mu statement, the structure was already declared at %s", lw.structure)
	}
	pos := s.pos
	lw.structure = &pos
	lw.membrane(s.Root, psys.NoParent)
	return nil
}

// membrane assigns ids depth-first over the structure expression, the outer
// membrane of the whole expression getting id 1.
func (lw *lowerer) membrane(expr *membraneExpr, parent int) {
	id := lw.nextID
	lw.nextID++
	lw.membranes = append(lw.membranes, psys.NewMembrane(id, expr.Label, parent))
	for _, child := range expr.Children {
		lw.membrane(child, id)
	}
}

func (lw *lowerer) contentsStmt(s *contentsStmt) error {
	// Repeated @ms statements for one membrane accumulate.
	lw.initial[s.Membrane] = lw.initial[s.Membrane].Add(lw.multiset(s.Objects))
	return nil
}

func (lw *lowerer) ruleStmt(s *ruleStmt) error {
	lhs := lw.multiset(s.LHS)
	if lhs.IsEmpty() {
		// Zero multiplicities can hollow out a non-empty object list.
		return syntaxErrorf(KindModel, s.pos, "a rule's left side cannot be empty")
	}
	r := &psys.Rule{
		Name:      s.Name,
		Label:     s.Label,
		LHS:       lhs,
		RHS:       lw.multiset(s.RHS.Objects),
		Target:    s.RHS.Target,
		Dissolves: s.RHS.Dissolve,
	}
	if s.Name != "" {
		if _, dup := lw.byName[s.Name]; dup {
			return syntaxErrorf(KindModel, s.pos, "duplicate rule name %q", s.Name)
		}
		lw.byName[s.Name] = r
	}
	lw.rules = append(lw.rules, r)
	return nil
}

// multiset folds object expressions into a value, recording every mentioned
// symbol for the alphabet.
func (lw *lowerer) multiset(objects []objectExpr) multiset.Multiset {
	if len(objects) == 0 {
		return multiset.Multiset{}
	}
	counts := make(map[string]int, len(objects))
	for _, o := range objects {
		counts[o.Symbol] += o.Count
		lw.symbols[o.Symbol] = struct{}{}
	}
	return multiset.FromCounts(counts)
}

// applyPriorities turns the collected relations into integers: a rule's
// priority becomes the length of the longest domination chain below it, so
// every declared `a > b` ends with Priority(a) > Priority(b).
func (lw *lowerer) applyPriorities() error {
	if len(lw.relations) == 0 {
		return nil
	}
	dominates := make(map[string][]string)
	for _, rel := range lw.relations {
		for _, name := range []string{rel.higher, rel.lower} {
			if _, ok := lw.byName[name]; !ok {
				return syntaxErrorf(KindModel, rel.pos, "priority over unknown rule name %q", name)
			}
		}
		dominates[rel.higher] = append(dominates[rel.higher], rel.lower)
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)
	rank := make(map[string]int)
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return syntaxErrorf(KindModel, lw.relationPos(name),
				"priority relations form a cycle involving %q", name)
		}
		state[name] = visiting
		highest := -1
		for _, lower := range dominates[name] {
			if err := visit(lower); err != nil {
				return err
			}
			if rank[lower] > highest {
				highest = rank[lower]
			}
		}
		state[name] = done
		rank[name] = highest + 1
		return nil
	}

	names := make([]string, 0, len(dominates))
	for name := range dominates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := visit(name); err != nil {
			return err
		}
	}

	for name, r := range rank {
		lw.byName[name].Priority = r
	}
	return nil
}

// relationPos finds the first declared relation mentioning name.
func (lw *lowerer) relationPos(name string) Pos {
	for _, rel := range lw.relations {
		if rel.higher == name || rel.lower == name {
			return rel.pos
		}
	}
	return Pos{}
}

func (lw *lowerer) alphabet() []string {
	symbols := make([]string, 0, len(lw.symbols))
	for s := range lw.symbols {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
