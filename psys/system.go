package psys

import (
	"sort"

	"github.com/membrango/membrango/multiset"
)

// System is the immutable, validated definition of a P system: the membrane
// tree, the informational alphabet, the initial multiset per membrane, and
// the rule list. Declaration order of membranes and rules is preserved — rule
// order is the tie-breaker during selection, membrane order drives each
// simulation step.
//
// A System is read-only after NewSystem returns and may be shared across
// concurrent simulation runs.
type System struct {
	membranes []*Membrane
	alphabet  []string
	initial   map[int]multiset.Multiset
	rules     []*Rule

	index map[int]*Membrane
}

// NewSystem assembles and validates a System. It builds the id→membrane
// index, wires each membrane into its parent's child set (the single mutation
// membranes see after their own construction), and validates fail-fast: the
// first violation found is returned as a *ValidationError and no System is
// produced.
func NewSystem(membranes []*Membrane, alphabet []string, initial map[int]multiset.Multiset, rules []*Rule) (*System, error) {
	index := make(map[int]*Membrane, len(membranes))
	for _, m := range membranes {
		if _, dup := index[m.ID]; dup {
			return nil, validationErrorf(KindDuplicateID, "membrane id %d declared twice", m.ID)
		}
		index[m.ID] = m
	}

	// Child wiring. Dangling parents are skipped here and reported by
	// validation below in the documented order.
	for _, m := range membranes {
		if m.Parent == NoParent {
			continue
		}
		if parent, ok := index[m.Parent]; ok {
			parent.AddChild(m.ID)
		}
	}

	initialCopy := make(map[int]multiset.Multiset, len(initial))
	for id, ms := range initial {
		initialCopy[id] = ms.Clone()
	}

	s := &System{
		membranes: membranes,
		alphabet:  dedupSorted(alphabet),
		initial:   initialCopy,
		rules:     rules,
		index:     index,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate re-checks the System invariants and returns the first violation
// as a *ValidationError. NewSystem runs it once; the simulator runs it again
// before every run so hand-assembled or stale systems fail there too.
func (s *System) Validate() error {
	for _, id := range sortedKeys(s.initial) {
		if _, ok := s.index[id]; !ok {
			return validationErrorf(KindUnknownMembrane, "initial multiset references membrane %d which does not exist", id)
		}
	}

	labels := make(map[string]struct{}, len(s.membranes))
	for _, m := range s.membranes {
		labels[m.Label] = struct{}{}
	}
	for _, r := range s.rules {
		if _, ok := labels[r.Label]; !ok {
			return validationErrorf(KindUnknownLabel, "rule %s references label %q which matches no membrane", r, r.Label)
		}
	}

	for _, m := range s.membranes {
		if m.Parent == NoParent {
			continue
		}
		if _, ok := s.index[m.Parent]; !ok {
			return validationErrorf(KindDanglingParent, "membrane %d references parent %d which does not exist", m.ID, m.Parent)
		}
	}

	for _, r := range s.rules {
		if r.LHS.IsEmpty() {
			return validationErrorf(KindEmptyLHS, "rule %s consumes nothing and would fire forever", r)
		}
	}
	return nil
}

// Membrane looks a membrane up by ID.
func (s *System) Membrane(id int) (*Membrane, bool) {
	m, ok := s.index[id]
	return m, ok
}

// Membranes returns the membranes in declaration order. The slice is shared;
// callers must not modify it.
func (s *System) Membranes() []*Membrane {
	return s.membranes
}

// RulesFor returns the rules bound to the given label, preserving declaration
// order — the order matters for tie-breaking during selection.
func (s *System) RulesFor(label string) []*Rule {
	var out []*Rule
	for _, r := range s.rules {
		if r.Label == label {
			out = append(out, r)
		}
	}
	return out
}

// Rules returns all rules in declaration order. The slice is shared; callers
// must not modify it.
func (s *System) Rules() []*Rule {
	return s.rules
}

// Skin returns the first parentless membrane in declaration order, or nil if
// every membrane has a parent. More than one parentless membrane is a latent
// inconsistency the model tolerates: the first one wins.
func (s *System) Skin() *Membrane {
	for _, m := range s.membranes {
		if m.IsSkin() {
			return m
		}
	}
	return nil
}

// Children returns the direct child IDs of the given membrane in ascending
// order, or nil for an unknown ID.
func (s *System) Children(id int) []int {
	m, ok := s.index[id]
	if !ok {
		return nil
	}
	return m.Children()
}

// Initial returns the declared initial contents for the membrane, or the
// empty multiset when none were declared.
func (s *System) Initial(id int) multiset.Multiset {
	return s.initial[id].Clone()
}

// Alphabet returns the informational alphabet, sorted and deduplicated.
func (s *System) Alphabet() []string {
	return s.alphabet
}

func dedupSorted(symbols []string) []string {
	if len(symbols) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[int]multiset.Multiset) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
