package filter

import (
	"errors"
	"fmt"
)

// ErrInvalidFilter is matched by every error returned from Parse and Compile.
//
//	if errors.Is(err, filter.ErrInvalidFilter) {
//	    // respond with 400 Bad Request
//	}
var ErrInvalidFilter = errors.New("invalid filter")

// Kind classifies why a filter was rejected.
type Kind int

const (
	// KindStructural covers unbalanced parentheses, malformed lists and
	// relations missing an attribute or value neighbour.
	KindStructural Kind = iota + 1
	// KindGrammar covers unknown relations, wrong value arity and
	// misplaced logical operators.
	KindGrammar
	// KindSchema covers attribute paths that do not resolve.
	KindSchema
	// KindType covers values that cannot be coerced to the field type.
	KindType
	// KindLimit covers inputs exceeding the configured size limits.
	KindLimit
	// KindInternal signals a broken compiler invariant.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindGrammar:
		return "grammar"
	case KindSchema:
		return "schema"
	case KindType:
		return "type"
	case KindLimit:
		return "limit"
	case KindInternal:
		return "internal"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the single error type returned for rejected filters.
type Error struct {
	// Kind is the failure class.
	Kind Kind
	// Input is the offending substring or attribute path, when known.
	Input string
	// Reason is the human-readable explanation.
	Reason string
}

func (e *Error) Error() string {
	return "invalid filter: " + e.Reason
}

// Unwrap makes errors.Is(err, ErrInvalidFilter) hold for every kind.
func (e *Error) Unwrap() error {
	return ErrInvalidFilter
}

func newError(kind Kind, input, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Input:  input,
		Reason: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the Kind of a filter error, or 0 if err is not one.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
