// Package pricingerr defines the error taxonomy shared by every component of
// the pricing subsystem. The taxonomy is a closed set of Kinds rather than a
// grab-bag of sentinel errors, so callers can dispatch on errors.As without
// needing to know which component raised the failure.
package pricingerr

import (
	"errors"
	"fmt"
)

// Kind classifies a pricing failure. See each constant's comment for how
// that Kind propagates through the pricing loop.
type Kind int

const (
	// NotApplicable means the solver cannot handle the subproblem it was
	// asked to solve; the controller re-enqueues with the next candidate
	// solver. Never aggregated into a problem's terminal status.
	NotApplicable Kind = iota
	// Limit means a time/node/solution/iteration cap was hit mid-solve.
	// Partial results are kept; the problem is not terminally done.
	Limit
	// Numerical means the LP solver reported a numerical failure inside a
	// solve. Treated as Limit: warned, loop continues.
	Numerical
	// Invalid means an internal invariant was violated (duplicate entry in
	// a sorted sparse vector, pool key collision on insert, ...). Fatal.
	Invalid
	// Interrupted means the round was cancelled cooperatively. Non-fatal;
	// the round ends cleanly with store and pool left intact.
	Interrupted
	// Infeasible means the subproblem has no feasible solution under the
	// current branching constraints.
	Infeasible
)

func (k Kind) String() string {
	switch k {
	case NotApplicable:
		return "not_applicable"
	case Limit:
		return "limit"
	case Numerical:
		return "numerical"
	case Invalid:
		return "invalid"
	case Interrupted:
		return "interrupted"
	case Infeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind so that the pricing loop can
// decide how to recover without string-matching messages.
type Error struct {
	Kind      Kind
	Invariant string // set only for Kind == Invalid; names the violated invariant
	Err       error
}

func (e *Error) Error() string {
	if e.Invariant != "" {
		return fmt.Sprintf("pricing: %s: %s: %v", e.Kind, e.Invariant, e.Err)
	}
	return fmt.Sprintf("pricing: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a pricingerr.Error of the given Kind.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Invalidf builds a fatal Invalid error naming the violated invariant: a
// one-line diagnostic identifying which invariant broke.
func Invalidf(invariant, format string, args ...interface{}) *Error {
	return &Error{Kind: Invalid, Invariant: invariant, Err: fmt.Errorf(format, args...)}
}

// Is reports whether err, or any error it wraps, is an *Error of the given
// Kind. Like errors.Is, it looks through wrapping.
func Is(err error, kind Kind) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Kind == kind
}
