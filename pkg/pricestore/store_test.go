package pricestore_test

import (
	"testing"

	"k8s.io/klog/v2"

	v1alpha1 "github.com/scipgcg/pricing/pkg/api/v1alpha1"
	"github.com/scipgcg/pricing/pkg/column"
	"github.com/scipgcg/pricing/pkg/master"
	"github.com/scipgcg/pricing/pkg/pricestore"
)

func colWithCoefs(t *testing.T, redcost float64, coefs []float64) *column.Column {
	t.Helper()
	vars := make([]string, len(coefs))
	for i := range coefs {
		vars[i] = string(rune('a' + i))
	}
	c, err := column.New(0, vars, coefs, false, redcost, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := make([]master.Row, len(coefs))
	for i, v := range vars {
		rows[i] = master.Row{ID: master.ConstraintID(v), VarID: []string{v}, Coef: []float64{1}}
	}
	c.ComputeMasterCoefs(rows, nil)
	c.RedCost = redcost
	return c
}

func newStore(caps v1alpha1.ColumnCaps, minOrth float64) *pricestore.Store {
	return pricestore.New(klog.Background(), pricestore.Config{
		Weights:        v1alpha1.ScoreWeights{RedCostFactor: 1},
		MinColOrth:     minOrth,
		Caps:           caps,
		EfficacyChoice: v1alpha1.EfficacyRedcost,
	})
}

func TestApplyColsRespectsZeroCap(t *testing.T) {
	s := newStore(v1alpha1.ColumnCaps{MaxColsRoot: 0, MaxCols: 0, MaxColsFarkas: 0}, 0)
	s.AddCol(colWithCoefs(t, -1, []float64{1}), false)

	specs, leftover := s.ApplyCols(func(c *column.Column) master.VarSpec { return master.VarSpec{} })
	if len(specs) != 0 {
		t.Fatalf("expected zero specs with maxcols=0, got %d", len(specs))
	}
	if len(leftover) != 1 {
		t.Fatalf("expected the unpicked column returned as leftover, got %d", len(leftover))
	}
}

func TestApplyColsForcedBypassesCapAndOrtho(t *testing.T) {
	s := newStore(v1alpha1.ColumnCaps{MaxColsRoot: 0, MaxCols: 0, MaxColsFarkas: 0}, 0.99)
	s.AddCol(colWithCoefs(t, -1, []float64{1}), true)

	specs, leftover := s.ApplyCols(func(c *column.Column) master.VarSpec { return master.VarSpec{Block: c.Block} })
	if len(specs) != 1 {
		t.Fatalf("expected the forced column to be applied despite cap=0, got %d", len(specs))
	}
	if len(leftover) != 0 {
		t.Fatalf("expected no leftover, got %d", len(leftover))
	}
}

func TestApplyColsOrderByScoreDescending(t *testing.T) {
	s := newStore(v1alpha1.ColumnCaps{MaxColsRoot: 10, MaxCols: 10, MaxColsFarkas: 10}, -1)
	worse := colWithCoefs(t, -1, []float64{1})
	better := colWithCoefs(t, -10, []float64{1})
	s.AddCol(worse, false)
	s.AddCol(better, false)

	var order []float64
	_, _ = s.ApplyCols(func(c *column.Column) master.VarSpec {
		order = append(order, c.RedCost)
		return master.VarSpec{}
	})
	if len(order) != 2 || order[0] != -10 {
		t.Fatalf("expected the better (more negative) reduced cost column picked first, got %v", order)
	}
}

func TestRemoveInefficaciousColsDropsNonPositiveEfficacy(t *testing.T) {
	s := newStore(v1alpha1.ColumnCaps{MaxColsRoot: 10, MaxCols: 10, MaxColsFarkas: 10}, -1)
	s.AddCol(colWithCoefs(t, 1, []float64{1}), false) // redcost positive -> inefficacious
	s.AddCol(colWithCoefs(t, -1, []float64{1}), false)

	s.RemoveInefficaciousCols(false)
	if s.Len() != 1 {
		t.Fatalf("expected exactly one column to survive, got %d", s.Len())
	}
}

func TestRemoveInefficaciousColsNeverDropsForced(t *testing.T) {
	s := newStore(v1alpha1.ColumnCaps{MaxColsRoot: 10, MaxCols: 10, MaxColsFarkas: 10}, -1)
	s.AddCol(colWithCoefs(t, 1, []float64{1}), true)

	s.RemoveInefficaciousCols(false)
	if s.Len() != 1 {
		t.Fatalf("expected the forced column to survive despite non-positive efficacy")
	}
}

func TestClearEmptiesStore(t *testing.T) {
	s := newStore(v1alpha1.ColumnCaps{MaxColsRoot: 10, MaxCols: 10, MaxColsFarkas: 10}, -1)
	s.AddCol(colWithCoefs(t, -1, []float64{1}), false)
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("expected store empty after Clear, got %d", s.Len())
	}
}
