package colpool_test

import (
	"testing"

	"k8s.io/klog/v2"

	v1alpha1 "github.com/scipgcg/pricing/pkg/api/v1alpha1"
	"github.com/scipgcg/pricing/pkg/colpool"
	"github.com/scipgcg/pricing/pkg/column"
	"github.com/scipgcg/pricing/pkg/master"
	"github.com/scipgcg/pricing/pkg/pricestore"
)

type fakeTarget struct{ added []*column.Column }

func (f *fakeTarget) AddCol(col *column.Column, force bool) { f.added = append(f.added, col) }

func newCol(t *testing.T, vals ...float64) *column.Column {
	t.Helper()
	vars := make([]string, len(vals))
	for i := range vals {
		vars[i] = string(rune('a' + i))
	}
	c, err := column.New(0, vars, vals, false, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestAddRejectsDuplicateAndEmpty(t *testing.T) {
	pool := colpool.New(klog.Background(), -1)

	empty := newCol(t, 1e-15)
	if pool.Add(empty) {
		t.Fatalf("expected the empty column to be rejected")
	}

	c1 := newCol(t, 1, 2)
	if !pool.Add(c1) {
		t.Fatalf("expected first add to succeed")
	}
	c2 := newCol(t, 1, 2)
	if pool.Add(c2) {
		t.Fatalf("expected a structurally equal column to be rejected as a duplicate")
	}
	if pool.Len() != 1 {
		t.Fatalf("expected pool size 1, got %d", pool.Len())
	}
}

func TestUpdateNodeClearsOnChangeOnly(t *testing.T) {
	pool := colpool.New(klog.Background(), -1)
	pool.Add(newCol(t, 1, 2))

	pool.UpdateNode(master.NodeIdentity(1))
	if pool.Len() != 0 {
		t.Fatalf("expected first UpdateNode call to clear the pool")
	}

	pool.Add(newCol(t, 3, 4))
	pool.UpdateNode(master.NodeIdentity(1))
	if pool.Len() != 1 {
		t.Fatalf("expected UpdateNode with the same node to be a no-op, got size %d", pool.Len())
	}

	pool.UpdateNode(master.NodeIdentity(2))
	if pool.Len() != 0 {
		t.Fatalf("expected UpdateNode with a new node to clear again")
	}
}

func TestPriceMovesNegativeReducedCostAndAges(t *testing.T) {
	pool := colpool.New(klog.Background(), 1)

	improving := newCol(t, 1)
	improving.RedCost = -1
	pool.Add(improving)

	stale := newCol(t, 2)
	stale.RedCost = 1
	pool.Add(stale)

	target := &fakeTarget{}
	pool.Price(target)

	if len(target.added) != 1 {
		t.Fatalf("expected exactly one improving column moved to target, got %d", len(target.added))
	}
	if pool.Len() != 1 {
		t.Fatalf("expected the stale column to remain (aged once, limit 1), got size %d", pool.Len())
	}

	// Age again: stale column exceeds ageLimit=1 and is evicted.
	pool.Price(target)
	if pool.Len() != 0 {
		t.Fatalf("expected the stale column to be evicted once its age exceeds the limit")
	}
}

func TestAgeLimitDisabledWhenNegativeOne(t *testing.T) {
	pool := colpool.New(klog.Background(), -1)
	stale := newCol(t, 1)
	stale.RedCost = 1
	pool.Add(stale)

	target := &fakeTarget{}
	for i := 0; i < 10; i++ {
		pool.Price(target)
	}
	if pool.Len() != 1 {
		t.Fatalf("expected ageLimit=-1 to disable eviction entirely, got size %d", pool.Len())
	}
}

// TestFarkasTransitionMovesImprovingColumnsIntoPriceStoreUnderFarkasCap
// exercises the pool/store handoff across a Farkas transition: columns
// evaluated as Farkas-improving move out of the pool into a real PriceStore,
// which then selects among them under its Farkas-specific round cap rather
// than its ordinary one.
func TestFarkasTransitionMovesImprovingColumnsIntoPriceStoreUnderFarkasCap(t *testing.T) {
	pool := colpool.New(klog.Background(), -1)
	rows := []master.Row{{ID: "r1", VarID: []string{"a"}, Coef: []float64{1}}}

	for _, val := range []float64{1, 2} {
		if !pool.Add(newCol(t, val)) {
			t.Fatalf("expected column to be added to the pool")
		}
	}

	pool.SetFarkas(true)
	pool.UpdateRedcostAndCoefs(colpool.DualContext{
		Rows: rows,
		// y=2 on r1 drives every column's Farkas reduced cost negative
		// (-y^T(A_b x)), regardless of the (ignored) block objective.
		Duals:     master.DualValues{Rows: map[master.ConstraintID]float64{"r1": 2}},
		ObjCoefOf: func(string) float64 { return 1000 },
	})

	store := pricestore.New(klog.Background(), pricestore.Config{
		Weights:        v1alpha1.ScoreWeights{RedCostFactor: 1},
		EfficacyChoice: v1alpha1.EfficacyRedcost,
		Caps:           v1alpha1.ColumnCaps{MaxColsRoot: 10, MaxCols: 10, MaxColsFarkas: 1},
	})
	pool.Price(store)

	if store.Len() != 2 {
		t.Fatalf("expected both Farkas-improving columns moved into the store, got %d", store.Len())
	}
	if pool.Len() != 0 {
		t.Fatalf("expected the pool drained of improving columns, got %d", pool.Len())
	}

	store.StartFarkas()
	specs, leftover := store.ApplyCols(func(c *column.Column) master.VarSpec { return master.VarSpec{Block: c.Block} })
	if len(specs) != 1 {
		t.Fatalf("expected the Farkas cap (1) to limit injection despite MaxCols=10, got %d specs", len(specs))
	}
	if len(leftover) != 1 {
		t.Fatalf("expected exactly one column left over under the Farkas cap, got %d", len(leftover))
	}
}

func TestRemoveErrorsOnAbsentColumn(t *testing.T) {
	pool := colpool.New(klog.Background(), -1)
	c := newCol(t, 1)
	if err := pool.Remove(c, true); err == nil {
		t.Fatalf("expected an error removing a column never added")
	}
}
