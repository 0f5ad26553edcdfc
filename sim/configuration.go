package sim

import (
	"sort"

	"github.com/membrango/membrango/multiset"
	"github.com/membrango/membrango/psys"
)

// Configuration is the mutable state of one run: the current multiset of
// every membrane, the set of membranes not yet dissolved, and the number of
// steps executed so far. A Configuration belongs to exactly one run at a
// time; concurrent runs over a shared System each build their own.
type Configuration struct {
	contents map[int]multiset.Multiset
	active   map[int]struct{}
	steps    int
}

// NewConfiguration builds the starting state for a run of sys: every
// membrane holds a copy of its declared initial contents (empty when none
// was declared), every membrane is active, and the step counter is zero.
func NewConfiguration(sys *psys.System) *Configuration {
	membranes := sys.Membranes()
	cfg := &Configuration{
		contents: make(map[int]multiset.Multiset, len(membranes)),
		active:   make(map[int]struct{}, len(membranes)),
	}
	for _, m := range membranes {
		cfg.contents[m.ID] = sys.Initial(m.ID)
		cfg.active[m.ID] = struct{}{}
	}
	return cfg
}

// Multiset returns the current contents of membrane id, the empty multiset
// when the membrane holds nothing or does not exist.
func (c *Configuration) Multiset(id int) multiset.Multiset {
	return c.contents[id]
}

// SetMultiset replaces the contents of membrane id.
func (c *Configuration) SetMultiset(id int, ms multiset.Multiset) {
	c.contents[id] = ms
}

// IsActive reports whether membrane id exists and has not been dissolved.
func (c *Configuration) IsActive(id int) bool {
	_, ok := c.active[id]
	return ok
}

// ActiveIDs returns the ids of all active membranes in ascending order.
func (c *Configuration) ActiveIDs() []int {
	ids := make([]int, 0, len(c.active))
	for id := range c.active {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Dissolve removes membrane id from the active set. It does not move the
// membrane's contents anywhere; cascading them into the parent is the
// caller's job, done before the dissolve takes effect.
func (c *Configuration) Dissolve(id int) {
	delete(c.active, id)
}

// Steps returns the number of steps executed so far.
func (c *Configuration) Steps() int {
	return c.steps
}

// Copy returns an independent deep clone, used for trace snapshots.
func (c *Configuration) Copy() *Configuration {
	cp := &Configuration{
		contents: make(map[int]multiset.Multiset, len(c.contents)),
		active:   make(map[int]struct{}, len(c.active)),
		steps:    c.steps,
	}
	for id, ms := range c.contents {
		cp.contents[id] = ms.Clone()
	}
	for id := range c.active {
		cp.active[id] = struct{}{}
	}
	return cp
}

// Equal reports whether two configurations hold the same contents for every
// membrane, the same active set, and the same step count. A membrane with no
// contents entry and one holding the empty multiset count as the same.
func (c *Configuration) Equal(other *Configuration) bool {
	if other == nil {
		return false
	}
	if c.steps != other.steps || len(c.active) != len(other.active) {
		return false
	}
	for id := range c.active {
		if !other.IsActive(id) {
			return false
		}
	}
	for id, ms := range c.contents {
		if !ms.Equal(other.contents[id]) {
			return false
		}
	}
	for id, ms := range other.contents {
		if !ms.Equal(c.contents[id]) {
			return false
		}
	}
	return true
}

// IsHalted reports whether no active membrane of cfg has any applicable rule
// against its current contents. A halted configuration can never change
// again under any strategy.
func IsHalted(cfg *Configuration, sys *psys.System) bool {
	for _, m := range sys.Membranes() {
		if !cfg.IsActive(m.ID) {
			continue
		}
		contents := cfg.Multiset(m.ID)
		for _, r := range sys.RulesFor(m.Label) {
			if r.IsApplicable(contents) {
				return false
			}
		}
	}
	return true
}
