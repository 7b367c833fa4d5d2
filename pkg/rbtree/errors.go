package rbtree

import "fmt"

// Kind identifies the category of an [Error] returned by the engine.
type Kind int

const (
	// DuplicateKey is returned by InsertByKey when the tree forbids
	// duplicates and the value compares equal to one already present.
	// Caller fault; the tree is left strictly unchanged.
	DuplicateKey Kind = iota

	// OutOfRange is returned when a rank argument falls outside the
	// operation's valid range. Caller fault; the tree is left strictly
	// unchanged.
	OutOfRange

	// NotFound is returned when a handle or key is absent at operation
	// time, where the contract allows returning rather than raising.
	NotFound

	// InvariantViolated indicates a bug, either in a caller-supplied
	// comparator or in the engine itself: the satellite comparator
	// returned zero for two distinct values, or a structural check
	// failed during fixup. The tree is tainted; callers should drop it.
	InvariantViolated

	// ConcurrentMutation is returned by an iterator that observes the
	// tree's version counter has advanced since the iterator was
	// created.
	ConcurrentMutation

	// ResourceExhausted indicates the handle space is exhausted. Fatal;
	// the tree is tainted.
	ResourceExhausted
)

func (k Kind) String() string {
	switch k {
	case DuplicateKey:
		return "DuplicateKey"
	case OutOfRange:
		return "OutOfRange"
	case NotFound:
		return "NotFound"
	case InvariantViolated:
		return "InvariantViolated"
	case ConcurrentMutation:
		return "ConcurrentMutation"
	case ResourceExhausted:
		return "ResourceExhausted"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the error type returned by every fallible operation on
// [Tree] except Validate, which reports plain errors. Use [Kind] to switch on the failure category, or
// [github.com/flier/ostree/pkg/xerrors.AsA] to recover it from a
// wrapped error chain.
type Error struct {
	Kind    Kind
	Op      string // the operation that failed, e.g. "InsertByKey"
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("rbtree: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("rbtree: %s: %s: %s", e.Op, e.Kind, e.Message)
}

// Taints reports whether errors of this kind leave the tree in an
// indeterminate state that callers should not continue operating on.
func (k Kind) Taints() bool {
	return k == InvariantViolated || k == ResourceExhausted
}

func newError(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...)}
}
