package psys

import "fmt"

// ValidationKind discriminates the ways a System definition can be invalid.
type ValidationKind string

const (
	// KindDuplicateID marks two membranes declared with the same ID.
	KindDuplicateID ValidationKind = "duplicate membrane id"
	// KindUnknownMembrane marks initial contents keyed by a nonexistent membrane.
	KindUnknownMembrane ValidationKind = "unknown membrane"
	// KindUnknownLabel marks a rule whose label matches no membrane.
	KindUnknownLabel ValidationKind = "unknown label"
	// KindDanglingParent marks a membrane whose parent ID does not exist.
	KindDanglingParent ValidationKind = "dangling parent"
	// KindEmptyLHS marks a rule that consumes nothing: such a rule is always
	// applicable and would make maximal selection non-terminating.
	KindEmptyLHS ValidationKind = "empty left-hand side"
)

// ValidationError reports the first violation found while constructing or
// re-validating a System. Construction is fail-fast: a System is never
// partially built.
type ValidationError struct {
	Kind   ValidationKind
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("psys: %s: %s", e.Kind, e.Detail)
}

func validationErrorf(kind ValidationKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
