package sim

import (
	"fmt"
	"sort"

	"github.com/membrango/membrango/multiset"
	"github.com/membrango/membrango/psys"
)

// Strategy decides which of a membrane's applicable rules fire in one step.
type Strategy int

const (
	// StrategyMaximal fires rules maximally: higher priority first, equal
	// priority in declaration order, each rule repeated while its left side
	// still fits the remaining budget. The result is always a maximal set
	// (nothing selected could fire once more against the final remainder),
	// found by deterministic greedy exhaustion rather than sampled uniformly
	// from all maximal sets.
	StrategyMaximal Strategy = iota

	// StrategyRandom fires exactly one uniformly chosen applicable rule.
	StrategyRandom

	// StrategyFirst fires the first applicable rule in declaration order,
	// once.
	StrategyFirst
)

// String returns the name ParseStrategy accepts for s.
func (s Strategy) String() string {
	switch s {
	case StrategyMaximal:
		return "maximal"
	case StrategyRandom:
		return "random"
	case StrategyFirst:
		return "first"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps a strategy name arriving dynamically, from a flag or a
// scenario attribute, onto its Strategy value. Unknown names return an
// ArgumentError.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "maximal":
		return StrategyMaximal, nil
	case "random":
		return StrategyRandom, nil
	case "first":
		return StrategyFirst, nil
	default:
		return 0, &ArgumentError{Name: "strategy", Value: name}
	}
}

// ApplicableRules returns the rules that could fire in membrane id against
// its current contents, preserving declaration order. Inactive or unknown
// membranes have none.
func ApplicableRules(sys *psys.System, cfg *Configuration, id int) []*psys.Rule {
	if !cfg.IsActive(id) {
		return nil
	}
	m, ok := sys.Membrane(id)
	if !ok {
		return nil
	}
	contents := cfg.Multiset(id)
	var applicable []*psys.Rule
	for _, r := range sys.RulesFor(m.Label) {
		if r.IsApplicable(contents) {
			applicable = append(applicable, r)
		}
	}
	return applicable
}

// selectInstances turns one membrane's applicable rules into the ordered
// rule-instance sequence to apply this step. applicable must be non-empty.
func (s *Simulator) selectInstances(applicable []*psys.Rule, contents multiset.Multiset) []*psys.Rule {
	switch s.strategy {
	case StrategyFirst:
		return []*psys.Rule{applicable[0]}
	case StrategyRandom:
		return []*psys.Rule{applicable[s.rand.IntN(len(applicable))]}
	case StrategyMaximal:
		return selectMaximal(applicable, contents)
	default:
		// New rejects unknown strategies, so this is unreachable.
		panic(fmt.Sprintf("sim: unhandled strategy %v", s.strategy))
	}
}

// selectMaximal greedily exhausts rules against a shrinking budget:
// stable-sorted by priority descending (declaration order breaks ties), each
// rule is instantiated repeatedly until its left side no longer fits, then
// the walk moves on. Nothing in the returned sequence could fire once more
// against the final remainder.
func selectMaximal(applicable []*psys.Rule, contents multiset.Multiset) []*psys.Rule {
	ordered := make([]*psys.Rule, len(applicable))
	copy(ordered, applicable)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	var instances []*psys.Rule
	remaining := contents.Clone()
	for _, r := range ordered {
		for {
			rest, ok := remaining.Subtract(r.LHS)
			if !ok {
				break
			}
			instances = append(instances, r)
			remaining = rest
		}
	}
	return instances
}
