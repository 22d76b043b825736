// Package solver defines SolverCapability: the polymorphic external
// collaborator that solves one block's subproblem and returns columns.
package solver

import (
	"context"

	"github.com/scipgcg/pricing/pkg/column"
	"github.com/scipgcg/pricing/pkg/master"
	"github.com/scipgcg/pricing/pkg/problem"
)

// Limits bounds one solve call.
type Limits struct {
	JobTimeLimit float64 // seconds
	NodeLimit    int64
	SolLimit     int64
	Heuristic    bool
}

// Objective is the block objective the controller assembles from current
// master duals before dispatch.
type Objective struct {
	// CoefOf returns the original-problem objective coefficient for varID,
	// already folded with the dual contribution the caller wants reflected
	// in the subproblem's own objective (the block's own c_j minus the
	// relevant π^T A_b column).
	CoefOf func(varID string) float64
}

// Result is what a solver call returns: status, block-level lower bound, and
// any columns it produced.
type Result struct {
	Status     problem.Status
	LowerBound float64
	Columns    []*column.Column
}

// Capability is the small vtable every concrete subsolver binding implements:
// solve, canHandle, name, priority. The controller binds candidates to
// blocks at setup time and dispatches by calling Solve.
type Capability interface {
	// Name identifies the solver for logging and tie-breaking.
	Name() string
	// Priority orders candidates bound to the same block; higher runs
	// first when multiple solvers advertise capability for a block.
	Priority() int
	// CanHandle reports whether this solver can price block b at all.
	CanHandle(b master.BlockIndex) bool
	// Solve prices pricingModel against objective, incorporating the
	// branching constraints up to (but not past) what nextConsIdx has
	// already folded in.
	Solve(ctx context.Context, pricingModel interface{}, objective Objective, active []master.BranchingConstraint, limits Limits) (Result, error)
}

// ProbingScope is a scoped acquisition of solver-side probing bound changes:
// every push must be matched by a pop on every exit path, including an
// aborted, errored, or panicking solve.
//
// Usage:
//
//	scope := solver.NewProbingScope(pop)
//	defer scope.Close()
//	... push bound changes, call the underlying LP solver ...
type ProbingScope struct {
	pop    func()
	closed bool
}

// NewProbingScope wraps pop, the callback that undoes whatever bound pushes
// the caller is about to make.
func NewProbingScope(pop func()) *ProbingScope {
	return &ProbingScope{pop: pop}
}

// Close pops exactly once, even if called multiple times (idempotent so a
// deferred Close composes safely with an explicit early Close on the happy
// path).
func (s *ProbingScope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.pop != nil {
		s.pop()
	}
}
