// Package multiset implements the symbol-multiplicity algebra that membrane
// configurations and evolution rules are built on.
//
// A Multiset maps symbols to nonnegative counts. Values are immutable by
// convention: every operation returns a new Multiset or an independent copy,
// and no method ever writes to a receiver's backing map after construction.
// The zero value is the empty multiset and all methods are safe on it, so
// Multisets can be passed, stored, and compared freely as plain values.
package multiset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Multiset is a collection of symbols where each symbol carries a positive
// integer multiplicity. Absent symbols have count zero; counts are never
// stored as zero or negative.
type Multiset struct {
	counts map[string]int
}

// New builds a multiset containing one occurrence of each listed symbol.
// Repeating a symbol accumulates its count.
func New(symbols ...string) Multiset {
	if len(symbols) == 0 {
		return Multiset{}
	}
	counts := make(map[string]int, len(symbols))
	for _, s := range symbols {
		counts[s]++
	}
	return Multiset{counts: counts}
}

// FromCounts builds a multiset from a symbol→count map. The map is copied,
// entries with count zero are dropped, and a negative count panics: negative
// multiplicities are unrepresentable, so passing one is a programmer error.
func FromCounts(counts map[string]int) Multiset {
	if len(counts) == 0 {
		return Multiset{}
	}
	cp := make(map[string]int, len(counts))
	for s, n := range counts {
		if n < 0 {
			panic(fmt.Sprintf("multiset: negative count %d for symbol %q", n, s))
		}
		if n > 0 {
			cp[s] = n
		}
	}
	if len(cp) == 0 {
		return Multiset{}
	}
	return Multiset{counts: cp}
}

// Parse reads the compact notation used by the modeling language: a
// comma-separated list of `symbol` or `symbol{count}` items, e.g. "a{2}, b".
// Empty or blank text denotes the empty multiset.
func Parse(text string) (Multiset, error) {
	if strings.TrimSpace(text) == "" {
		return Multiset{}, nil
	}
	counts := make(map[string]int)
	for _, item := range strings.Split(text, ",") {
		symbol, n, err := parseItem(strings.TrimSpace(item))
		if err != nil {
			return Multiset{}, err
		}
		counts[symbol] += n
	}
	return FromCounts(counts), nil
}

// parseItem splits one `symbol` or `symbol{count}` item.
func parseItem(item string) (string, int, error) {
	if item == "" {
		return "", 0, fmt.Errorf("multiset: empty item in %q notation", "symbol{count}")
	}
	open := strings.IndexByte(item, '{')
	if open < 0 {
		if !validSymbol(item) {
			return "", 0, fmt.Errorf("multiset: invalid symbol %q", item)
		}
		return item, 1, nil
	}
	symbol := strings.TrimSpace(item[:open])
	rest := item[open+1:]
	end := strings.IndexByte(rest, '}')
	if end < 0 || strings.TrimSpace(rest[end+1:]) != "" {
		return "", 0, fmt.Errorf("multiset: malformed item %q", item)
	}
	if !validSymbol(symbol) {
		return "", 0, fmt.Errorf("multiset: invalid symbol %q", symbol)
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
	if err != nil {
		return "", 0, fmt.Errorf("multiset: invalid count in %q: %w", item, err)
	}
	if n < 0 {
		return "", 0, fmt.Errorf("multiset: negative count in %q", item)
	}
	return symbol, n, nil
}

func validSymbol(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Count returns the multiplicity of symbol, zero when absent.
func (m Multiset) Count(symbol string) int {
	return m.counts[symbol]
}

// Cardinality is the total number of objects: the sum of all counts, not the
// number of distinct symbols.
func (m Multiset) Cardinality() int {
	total := 0
	for _, n := range m.counts {
		total += n
	}
	return total
}

// IsEmpty reports whether the multiset holds no objects at all.
func (m Multiset) IsEmpty() bool {
	return len(m.counts) == 0
}

// Add returns the elementwise sum of m and other.
func (m Multiset) Add(other Multiset) Multiset {
	if other.IsEmpty() {
		return m.Clone()
	}
	if m.IsEmpty() {
		return other.Clone()
	}
	counts := make(map[string]int, len(m.counts)+len(other.counts))
	for s, n := range m.counts {
		counts[s] = n
	}
	for s, n := range other.counts {
		counts[s] += n
	}
	return Multiset{counts: counts}
}

// Subtract returns the elementwise difference m − other, all or nothing: when
// any count of other exceeds the corresponding count of m, the subtraction is
// not representable and Subtract returns the zero Multiset and false. This
// outcome is an expected sentinel (it drives applicability checks), never an
// error.
func (m Multiset) Subtract(other Multiset) (Multiset, bool) {
	if !other.SubsetOf(m) {
		return Multiset{}, false
	}
	if other.IsEmpty() {
		return m.Clone(), true
	}
	counts := make(map[string]int, len(m.counts))
	for s, n := range m.counts {
		if rest := n - other.counts[s]; rest > 0 {
			counts[s] = rest
		}
	}
	if len(counts) == 0 {
		return Multiset{}, true
	}
	return Multiset{counts: counts}, true
}

// Scale returns a copy of m with every count multiplied by k. k must be
// nonnegative; Scale(0) is the empty multiset.
func (m Multiset) Scale(k int) Multiset {
	if k < 0 {
		panic(fmt.Sprintf("multiset: negative scale factor %d", k))
	}
	if k == 0 || m.IsEmpty() {
		return Multiset{}
	}
	counts := make(map[string]int, len(m.counts))
	for s, n := range m.counts {
		counts[s] = n * k
	}
	return Multiset{counts: counts}
}

// SubsetOf reports whether every symbol of m occurs in other at least as many
// times, i.e. m ≤ other elementwise. Every multiset is a subset of itself.
func (m Multiset) SubsetOf(other Multiset) bool {
	for s, n := range m.counts {
		if other.counts[s] < n {
			return false
		}
	}
	return true
}

// Equal reports structural equality: the same symbols with the same counts.
func (m Multiset) Equal(other Multiset) bool {
	if len(m.counts) != len(other.counts) {
		return false
	}
	for s, n := range m.counts {
		if other.counts[s] != n {
			return false
		}
	}
	return true
}

// Clone returns an independent copy sharing no state with m.
func (m Multiset) Clone() Multiset {
	if m.IsEmpty() {
		return Multiset{}
	}
	counts := make(map[string]int, len(m.counts))
	for s, n := range m.counts {
		counts[s] = n
	}
	return Multiset{counts: counts}
}

// Symbols returns the distinct symbols in ascending order.
func (m Multiset) Symbols() []string {
	if len(m.counts) == 0 {
		return nil
	}
	symbols := make([]string, 0, len(m.counts))
	for s := range m.counts {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// String renders the canonical compact notation: symbols in ascending order,
// `{n}` suffixes only for counts above one. The empty multiset renders as "".
func (m Multiset) String() string {
	var b strings.Builder
	for i, s := range m.Symbols() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s)
		if n := m.counts[s]; n > 1 {
			b.WriteByte('{')
			b.WriteString(strconv.Itoa(n))
			b.WriteByte('}')
		}
	}
	return b.String()
}
