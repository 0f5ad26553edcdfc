// Package psys defines the static model of a P system: the membrane tree, the
// evolution rules bound to membrane labels, and the validated System that
// aggregates them together with the initial contents.
//
// A System is constructed once, validated fail-fast, and read-only afterwards,
// which makes it safe to share across concurrent simulation runs. Per-run
// mutable state lives in the sim package.
package psys

import (
	"fmt"
	"sort"
)

// NoParent is the Parent value of the skin membrane. Membrane IDs are
// strictly positive, so zero is free to mean "none".
const NoParent = 0

// Membrane is one region of the membrane hierarchy: a node in a tree held in
// an arena and linked by IDs rather than pointers. The label groups membranes
// that share a rule set; the ID is unique per system.
//
// Membranes are never mutated after System construction, with one exception:
// the constructor wires each membrane's parent's child set exactly once.
type Membrane struct {
	ID     int
	Label  string
	Parent int // NoParent for the skin

	children map[int]struct{}
}

// NewMembrane builds a membrane with no children. parent may be NoParent.
func NewMembrane(id int, label string, parent int) *Membrane {
	return &Membrane{
		ID:       id,
		Label:    label,
		Parent:   parent,
		children: make(map[int]struct{}),
	}
}

// IsSkin reports whether the membrane has no parent.
func (m *Membrane) IsSkin() bool {
	return m.Parent == NoParent
}

// IsElementary reports whether the membrane has no children.
func (m *Membrane) IsElementary() bool {
	return len(m.children) == 0
}

// AddChild records id as a child. Adding an existing child is a no-op.
func (m *Membrane) AddChild(id int) {
	if m.children == nil {
		m.children = make(map[int]struct{})
	}
	m.children[id] = struct{}{}
}

// RemoveChild removes id from the child set if present.
func (m *Membrane) RemoveChild(id int) {
	delete(m.children, id)
}

// HasChild reports whether id is a direct child.
func (m *Membrane) HasChild(id int) bool {
	_, ok := m.children[id]
	return ok
}

// Children returns the direct child IDs in ascending order.
func (m *Membrane) Children() []int {
	if len(m.children) == 0 {
		return nil
	}
	ids := make([]int, 0, len(m.children))
	for id := range m.children {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Equal reports whether both membranes carry the same ID, label, parent, and
// child set.
func (m *Membrane) Equal(other *Membrane) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.ID != other.ID || m.Label != other.Label || m.Parent != other.Parent {
		return false
	}
	if len(m.children) != len(other.children) {
		return false
	}
	for id := range m.children {
		if _, ok := other.children[id]; !ok {
			return false
		}
	}
	return true
}

// String renders the membrane for diagnostics, e.g. `membrane 2 'inner' (parent 1)`.
func (m *Membrane) String() string {
	if m.IsSkin() {
		return fmt.Sprintf("membrane %d %q (skin)", m.ID, m.Label)
	}
	return fmt.Sprintf("membrane %d %q (parent %d)", m.ID, m.Label, m.Parent)
}
