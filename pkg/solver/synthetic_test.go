package solver_test

import (
	"context"
	"testing"

	"github.com/scipgcg/pricing/pkg/column"
	"github.com/scipgcg/pricing/pkg/master"
	"github.com/scipgcg/pricing/pkg/problem"
	"github.com/scipgcg/pricing/pkg/solver"
)

func TestExactSolverPicksMinimizingCorner(t *testing.T) {
	model := &solver.SyntheticModel{
		Block:  0,
		VarIDs: []string{"x1", "x2"},
		Lower:  []float64{0, 0},
		Upper:  []float64{1, 1},
	}
	s := solver.NewExactSolver()
	obj := solver.Objective{CoefOf: func(v string) float64 {
		if v == "x1" {
			return -1
		}
		return 1
	}}

	result, err := s.Solve(context.Background(), model, obj, nil, solver.Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != problem.StatusOptimal {
		t.Fatalf("expected optimal status, got %v", result.Status)
	}
	if len(result.Columns) != 1 {
		t.Fatalf("expected exactly one column, got %d", len(result.Columns))
	}
	col := result.Columns[0]
	got := map[string]float64{}
	for i, v := range col.Vars {
		got[v] = col.Vals[i]
	}
	if got["x1"] != 1 {
		t.Fatalf("expected x1 at its upper bound (negative coef), got %v", got["x1"])
	}
	if _, ok := got["x2"]; ok {
		t.Fatalf("expected x2 dropped at its lower bound 0 (zero entry), got %v", got)
	}
}

func TestExactSolverRejectsWrongModelType(t *testing.T) {
	s := solver.NewExactSolver()
	result, err := s.Solve(context.Background(), "not a model", solver.Objective{}, nil, solver.Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != problem.StatusNotApplicable {
		t.Fatalf("expected NotApplicable for a foreign model type, got %v", result.Status)
	}
}

func TestExactSolverHonorsBranchingBound(t *testing.T) {
	model := &solver.SyntheticModel{
		Block:  0,
		VarIDs: []string{"x1"},
		Lower:  []float64{0},
		Upper:  []float64{1},
	}
	s := solver.NewExactSolver()
	obj := solver.Objective{CoefOf: func(string) float64 { return -1 }} // wants upper bound
	active := []master.BranchingConstraint{{VarID: "x1", Bound: master.BoundUpper, BoundVal: 0.5}}

	result, err := s.Solve(context.Background(), model, obj, active, solver.Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Columns) != 1 || result.Columns[0].Vals[0] != 0.5 {
		t.Fatalf("expected branching to cap x1 at 0.5, got %+v", result.Columns)
	}
}

func TestHeuristicRecombineSplitsAtCutPoint(t *testing.T) {
	model := &solver.SyntheticModel{
		Block:  0,
		VarIDs: []string{"x1", "x2"},
		Lower:  []float64{0, 0},
		Upper:  []float64{5, 5},
	}
	p1 := mustCol(t, model, []float64{1, 1})
	p2 := mustCol(t, model, []float64{9, 9})

	h := solver.NewHeuristicSolver(1)
	child, err := h.Recombine(model, p1, p2, solver.Objective{CoefOf: func(string) float64 { return 1 }})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if child == nil || child.IsEmpty() {
		t.Fatalf("expected a non-empty recombined child")
	}
}

func mustCol(t *testing.T, model *solver.SyntheticModel, vals []float64) *column.Column {
	t.Helper()
	c, err := column.New(model.Block, model.VarIDs, vals, false, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}
