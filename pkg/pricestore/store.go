// Package pricestore implements the PriceStore: the per-round staging buffer
// that decides which generated columns are actually injected into the
// master LP, using a scoring and orthogonality-based greedy selection.
//
// The greedy select-best-then-filter-by-diversity loop in ApplyCols ranks by
// quality, then preserves diversity against what's already chosen, adapted
// from Pareto-front ranking to a single weighted score plus a hard
// orthogonality threshold.
package pricestore

import (
	"sort"
	"sync"

	"k8s.io/klog/v2"

	v1alpha1 "github.com/scipgcg/pricing/pkg/api/v1alpha1"
	"github.com/scipgcg/pricing/pkg/column"
	"github.com/scipgcg/pricing/pkg/master"
)

// ObjCoefsFunc supplies a block's objective coefficients aligned positionally
// with the master row list used for ComputeMasterCoefs, for the objParalFactor
// scoring term.
type ObjCoefsFunc func(block master.BlockIndex) []float64

// Store is the per-round column staging buffer.
type Store struct {
	logger klog.Logger

	weights        v1alpha1.ScoreWeights
	minColOrth     float64
	caps           v1alpha1.ColumnCaps
	efficacyChoice v1alpha1.EfficacyChoice
	objCoefsOf     ObjCoefsFunc

	mu       sync.Mutex
	cols     []*column.Column
	forced   map[*column.Column]bool
	inFarkas bool
	atRoot   bool
}

// Config bundles Store's construction-time parameters, read from
// api/v1alpha1.Options.
type Config struct {
	Weights        v1alpha1.ScoreWeights
	MinColOrth     float64
	Caps           v1alpha1.ColumnCaps
	EfficacyChoice v1alpha1.EfficacyChoice
	ObjCoefsOf     ObjCoefsFunc
}

// New builds an empty Store.
func New(logger klog.Logger, cfg Config) *Store {
	return &Store{
		logger:         logger,
		weights:        cfg.Weights,
		minColOrth:     cfg.MinColOrth,
		caps:           cfg.Caps,
		efficacyChoice: cfg.EfficacyChoice,
		objCoefsOf:     cfg.ObjCoefsOf,
		forced:         make(map[*column.Column]bool),
	}
}

// SetAtRoot records whether the current B&B node is the root, selecting
// which cap ApplyCols uses.
func (s *Store) SetAtRoot(atRoot bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.atRoot = atRoot
}

// StartFarkas / EndFarkas set the scoring function to use the Farkas-ray
// efficacy norm appropriate for infeasibility-reducing columns.
// Because normRedcost already branches on efficacyChoice and RedCost is
// computed in Farkas semantics by Column.ComputeReducedCost whenever the
// caller is in Farkas mode, StartFarkas only needs to flip the cap selection
// and record the mode for logging/diagnostics.
func (s *Store) StartFarkas() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFarkas = true
}

func (s *Store) EndFarkas() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFarkas = false
}

// AddCol takes ownership of col for the remainder of the round. force=true
// bypasses scoring and guarantees the column is applied.
// AddCol also satisfies colpool.Target so ColumnPool.Price can hand columns
// directly to a Store.
func (s *Store) AddCol(col *column.Column, force bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols = append(s.cols, col)
	if force {
		s.forced[col] = true
	}
}

// Len reports the number of staged columns.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cols)
}

// RemoveInefficaciousCols drops columns whose efficacy score is non-positive;
// never drops a forced column.
func (s *Store) RemoveInefficaciousCols(atRoot bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.cols[:0]
	for _, c := range s.cols {
		if s.forced[c] {
			kept = append(kept, c)
			continue
		}
		if normRedcost(c, s.efficacyChoice) > 0 {
			kept = append(kept, c)
		} else {
			s.logger.V(5).Info("dropping inefficacious column", "block", c.Block)
			delete(s.forced, c)
		}
	}
	s.cols = kept
}

// Clear drops everything staged.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols = nil
	s.forced = make(map[*column.Column]bool)
}

// capForRound returns the per-round injection cap: maxcolsroot at depth 0,
// maxcolsfarkas while inFarkas, else maxcols.
func (s *Store) capForRound() int {
	switch {
	case s.atRoot:
		return s.caps.MaxColsRoot
	case s.inFarkas:
		return s.caps.MaxColsFarkas
	default:
		return s.caps.MaxCols
	}
}

// NewVar is the factory the caller supplies to turn an accepted Column into
// a master.VarSpec (the exact mapping — objective coefficient, bounds — is
// master-LP specific and thus supplied by the caller, not hardcoded here).
type NewVar func(col *column.Column) master.VarSpec

// ApplyCols sorts staged columns by score (forced columns always sort to the
// front), greedily picks columns whose pairwise orthogonality with
// already-picked columns is >= minColOrth, up to the round cap; for each
// picked column it builds a master.VarSpec via newVar and releases the
// Column. Returns the VarSpecs to inject, plus the staged columns that were
// not picked this round — the caller (Pricer) archives those into the
// ColumnPool instead of discarding them.
//
// Scores are computed once, before the greedy pass, against an empty picked
// set, so the orthoFactor term is the same for every column and does not
// change the order; diversity among picked columns comes only from the
// minColOrth check.
func (s *Store) ApplyCols(newVar NewVar) ([]master.VarSpec, []*column.Column) {
	s.mu.Lock()
	cols := append([]*column.Column(nil), s.cols...)
	forced := make(map[*column.Column]bool, len(s.forced))
	for c := range s.forced {
		forced[c] = true
	}
	roundCap := s.capForRound()
	s.mu.Unlock()

	type scored struct {
		col   *column.Column
		score float64
		force bool
	}
	entries := make([]scored, 0, len(cols))
	for _, c := range cols {
		objCoefs := []float64(nil)
		if s.objCoefsOf != nil {
			objCoefs = s.objCoefsOf(c.Block)
		}
		entries = append(entries, scored{
			col:   c,
			score: Score(c, s.weights, s.efficacyChoice, objCoefs, nil),
			force: forced[c],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].force != entries[j].force {
			return entries[i].force // forced entries sort first
		}
		return entries[i].score > entries[j].score
	})

	var picked []*column.Column
	var leftover []*column.Column
	var specs []master.VarSpec
	nonForcedPicked := 0
	for _, e := range entries {
		if !e.force {
			// maxcols == 0 picks none.
			if nonForcedPicked >= roundCap {
				leftover = append(leftover, e.col)
				continue
			}
			if orthoToPicked(e.col, picked) < s.minColOrth {
				leftover = append(leftover, e.col)
				continue
			}
		}
		picked = append(picked, e.col)
		specs = append(specs, newVar(e.col))
		if !e.force {
			nonForcedPicked++
		}
	}

	s.Clear()
	s.logger.V(4).Info("applied columns to master", "picked", len(picked), "staged", len(cols))
	return specs, leftover
}
