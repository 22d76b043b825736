package solver

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/scipgcg/pricing/pkg/column"
	"github.com/scipgcg/pricing/pkg/master"
	"github.com/scipgcg/pricing/pkg/problem"
)

// SyntheticModel is a deterministic stand-in for a real block subproblem
// model, used by tests and by cmd/pricingctl's demo run in place of an
// actual LP/MIP solver. Its shape — a fixed variable universe with simple
// bounds — is a cheap, deterministic objective landscape to exercise the
// orchestration logic against, without
// depending on a real solver backend.
type SyntheticModel struct {
	Block   master.BlockIndex
	VarIDs  []string
	Lower   []float64
	Upper   []float64
}

// ExactSolver enumerates corners of the synthetic model's box and returns
// the single best extreme point under the given objective — a miniature
// exact algorithm standing in for a real LP solve of the block's LP
// relaxation vertex.
type ExactSolver struct {
	priority int
}

func NewExactSolver() *ExactSolver { return &ExactSolver{priority: 10} }

func (s *ExactSolver) Name() string              { return "exact" }
func (s *ExactSolver) Priority() int              { return s.priority }
func (s *ExactSolver) CanHandle(master.BlockIndex) bool { return true }

func (s *ExactSolver) Solve(ctx context.Context, pricingModel interface{}, objective Objective, active []master.BranchingConstraint, limits Limits) (Result, error) {
	model, ok := pricingModel.(*SyntheticModel)
	if !ok {
		return Result{Status: problem.StatusNotApplicable}, nil
	}

	if err := ctx.Err(); err != nil {
		return Result{Status: problem.StatusUserInterrupt}, nil
	}

	lower := append([]float64(nil), model.Lower...)
	upper := append([]float64(nil), model.Upper...)
	applyBranching(model.VarIDs, lower, upper, active)

	// Greedy corner selection: for a linear objective over a box, the
	// optimum sits at a corner; pick lower or upper bound per variable by
	// the sign of its coefficient (minimizing reduced cost).
	vals := make([]float64, len(model.VarIDs))
	var obj float64
	for i, v := range model.VarIDs {
		coef := objective.CoefOf(v)
		val := upper[i]
		if coef >= 0 {
			val = lower[i]
		}
		vals[i] = val
		obj += coef * val
	}

	col, err := column.New(model.Block, model.VarIDs, vals, false, obj, nil)
	if err != nil {
		return Result{}, err
	}
	if col.IsEmpty() {
		return Result{Status: problem.StatusOptimal, LowerBound: obj}, nil
	}
	return Result{Status: problem.StatusOptimal, LowerBound: obj, Columns: []*column.Column{col}}, nil
}

func applyBranching(varIDs []string, lower, upper []float64, active []master.BranchingConstraint) {
	index := make(map[string]int, len(varIDs))
	for i, v := range varIDs {
		index[v] = i
	}
	for _, c := range active {
		i, ok := index[c.VarID]
		if !ok {
			continue
		}
		switch c.Bound {
		case master.BoundLower:
			if c.BoundVal > lower[i] {
				lower[i] = c.BoundVal
			}
		case master.BoundUpper:
			if c.BoundVal < upper[i] {
				upper[i] = c.BoundVal
			}
		case master.BoundFixed:
			lower[i], upper[i] = c.BoundVal, c.BoundVal
		}
		if lower[i] > upper[i] {
			lower[i], upper[i] = upper[i], lower[i]
		}
	}
}

// HeuristicSolver produces a candidate column by recombining two previously
// known good columns for the same block, one-point-crossover style: a
// random cut point splits the variable universe, and
// the child inherits the first parent's values before the cut and the
// second parent's after.
type HeuristicSolver struct {
	rng      *rand.Rand
	priority int
}

func NewHeuristicSolver(seed int64) *HeuristicSolver {
	return &HeuristicSolver{rng: rand.New(rand.NewSource(seed)), priority: 1}
}

func (s *HeuristicSolver) Name() string              { return "heuristic" }
func (s *HeuristicSolver) Priority() int              { return s.priority }
func (s *HeuristicSolver) CanHandle(master.BlockIndex) bool { return true }

// Recombine is exposed separately from Solve so tests can supply
// deterministic parent columns without going through ctx plumbing.
func (s *HeuristicSolver) Recombine(model *SyntheticModel, parent1, parent2 *column.Column, objective Objective) (*column.Column, error) {
	point := s.rng.Intn(len(model.VarIDs) + 1)

	valueIn := func(c *column.Column, varID string) float64 {
		i := sort.SearchStrings(c.Vars, varID)
		if i < len(c.Vars) && c.Vars[i] == varID {
			return c.Vals[i]
		}
		return 0
	}

	vals := make([]float64, len(model.VarIDs))
	var obj float64
	for i, v := range model.VarIDs {
		var val float64
		if i < point {
			val = valueIn(parent1, v)
		} else {
			val = valueIn(parent2, v)
		}
		val = math.Max(model.Lower[i], math.Min(model.Upper[i], val))
		vals[i] = val
		obj += objective.CoefOf(v) * val
	}

	return column.New(model.Block, model.VarIDs, vals, false, obj, nil)
}

func (s *HeuristicSolver) Solve(ctx context.Context, pricingModel interface{}, objective Objective, active []master.BranchingConstraint, limits Limits) (Result, error) {
	model, ok := pricingModel.(*SyntheticModel)
	if !ok {
		return Result{Status: problem.StatusNotApplicable}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{Status: problem.StatusUserInterrupt}, nil
	}

	// With no known parent columns this degrades to a single random corner;
	// a real heuristic would be warm-started from the pool's best entries.
	vals := make([]float64, len(model.VarIDs))
	var obj float64
	for i, v := range model.VarIDs {
		val := model.Lower[i]
		if s.rng.Float64() < 0.5 {
			val = model.Upper[i]
		}
		vals[i] = val
		obj += objective.CoefOf(v) * val
	}
	col, err := column.New(model.Block, model.VarIDs, vals, false, obj, nil)
	if err != nil {
		return Result{}, err
	}
	if col.IsEmpty() {
		return Result{Status: problem.StatusOptimal, LowerBound: obj}, nil
	}
	return Result{Status: problem.StatusOptimal, LowerBound: obj, Columns: []*column.Column{col}}, nil
}
