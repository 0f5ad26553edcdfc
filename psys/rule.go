package psys

import (
	"fmt"
	"strings"

	"github.com/membrango/membrango/multiset"
)

// TargetKind enumerates where a rule delivers its right-hand side. It is a
// closed variant: the simulator dispatches over it exhaustively and treats
// anything out of range as a programming error.
type TargetKind int

const (
	// TargetHere keeps the products in the membrane that fired the rule.
	TargetHere TargetKind = iota
	// TargetOut sends the products to the parent membrane.
	TargetOut
	// TargetIn sends the products into one named child membrane.
	TargetIn
)

// Target is the destination of a rule's products. Child is meaningful only
// when Kind is TargetIn.
type Target struct {
	Kind  TargetKind
	Child int
}

// Here targets the firing membrane itself.
func Here() Target { return Target{Kind: TargetHere} }

// Out targets the firing membrane's parent.
func Out() Target { return Target{Kind: TargetOut} }

// In targets the membrane with the given ID.
func In(child int) Target { return Target{Kind: TargetIn, Child: child} }

// String renders the modeling-language spelling: here, out, or in_N.
func (t Target) String() string {
	switch t.Kind {
	case TargetHere:
		return "here"
	case TargetOut:
		return "out"
	case TargetIn:
		return fmt.Sprintf("in_%d", t.Child)
	default:
		return fmt.Sprintf("target(%d)", int(t.Kind))
	}
}

// Rule is an evolution rule bound to all membranes carrying Label. When a
// rule fires it consumes LHS from the membrane's contents and delivers RHS to
// Target; a dissolving rule additionally removes the membrane's boundary,
// cascading its remaining contents to the parent.
//
// Rules are immutable once owned by a System. Priority orders selection:
// higher fires first, equal priorities keep declaration order.
type Rule struct {
	Name      string // optional, used in diagnostics and priority statements
	Label     string
	LHS       multiset.Multiset
	RHS       multiset.Multiset
	Target    Target
	Dissolves bool
	Priority  int
}

// NewRule builds a plain rewriting rule: products stay in the firing
// membrane, no dissolution, priority zero.
func NewRule(label string, lhs, rhs multiset.Multiset) *Rule {
	return &Rule{Label: label, LHS: lhs, RHS: rhs, Target: Here()}
}

// IsApplicable reports whether the rule can fire against the given contents,
// i.e. whether LHS is contained in them. Applicability is monotonic: growing
// the contents never turns an applicable rule inapplicable.
func (r *Rule) IsApplicable(contents multiset.Multiset) bool {
	return r.LHS.SubsetOf(contents)
}

// String renders an approximation of the modeling-language rule syntax,
// e.g. `[a]'2 --> (b, out)` or `[a]'1 --> [b{2}]'1`.
func (r *Rule) String() string {
	var b strings.Builder
	if r.Name != "" {
		b.WriteString(r.Name)
		b.WriteString(" = ")
	}
	fmt.Fprintf(&b, "[%s]'%s --> ", r.LHS, r.Label)
	switch {
	case r.Dissolves && r.RHS.IsEmpty() && r.Target.Kind == TargetHere:
		fmt.Fprintf(&b, "[]'%s", r.Label)
	case r.Target.Kind == TargetHere:
		fmt.Fprintf(&b, "[%s]'%s", r.RHS, r.Label)
	default:
		fmt.Fprintf(&b, "(%s, %s)", r.RHS, r.Target)
	}
	if r.Dissolves && !(r.RHS.IsEmpty() && r.Target.Kind == TargetHere) {
		b.WriteString(" δ")
	}
	return b.String()
}
