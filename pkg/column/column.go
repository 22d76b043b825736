// Package column implements the Column value object: a candidate master
// column produced by solving a block subproblem, together with the
// provenance and cached master-side coefficients it needs to travel through
// ColumnPool, PriceStore, and finally into the master LP.
package column

import (
	"math"
	"sort"

	"github.com/scipgcg/pricing/pkg/master"
	"github.com/scipgcg/pricing/pkg/pricingerr"
)

// Tolerance is the numerical tolerance used throughout this package for
// equality checks and zero-testing of sparse entries.
const Tolerance = 1e-9

// Column is a sparse vector over one block's original variables, interpreted
// as an extreme point (IsRay == false) or extreme ray (IsRay == true) of that
// block's LP relaxation. It is immutable except for the fields documented
// below.
//
// A Column is exclusively owned at every point in its lifetime: by a
// ColumnPool, by a PriceStore, by a controller's per-problem buffer, or by
// whatever in-flight code just received it from a solver. Nothing else may
// hold a reference while it is mutated.
type Column struct {
	Block BlockOf

	// Vars/Vals are the sorted sparse representation over the block's
	// original variables. Vars is strictly increasing, Vals has no zero
	// entries; both invariants are enforced by New.
	Vars []string
	Vals []float64
	IsRay bool

	// RedCost is the last evaluated reduced cost; stale until
	// ComputeReducedCost is called again after a dual update.
	RedCost float64

	// Age counts rounds since creation or last improving use; incremented
	// by UpdateAge, reset to 0 by the owning container when the column is
	// used or newly created.
	Age int

	// mastercoefs, mastercuts, linkvars are lazily filled by
	// ComputeMasterCoefs and are the only other mutable state.
	masterCoefs []float64
	masterCoefIDs []master.ConstraintID
	cutCoefs    []float64
	cutIDs      []master.ConstraintID
	linkVars    []string
	coefsValid  bool
}

// BlockOf is an alias kept local to this package so call sites read
// column.BlockOf instead of master.BlockIndex; the two are the same type.
type BlockOf = master.BlockIndex

// New transforms subproblem-space variables back to original-problem
// variables by applying the affine map (val - constant) / scalar, drops
// zeros, sorts by variable identity, and asserts uniqueness
// Column.create).
//
// affine maps a variable id to the (scalar, constant) pair used to convert
// its subproblem value into an original-problem value; a nil affine means
// the identity map (scalar=1, constant=0), which is the common case.
func New(block BlockOf, varIDs []string, vals []float64, isRay bool, redcost float64, affine func(varID string) (scalar, constant float64)) (*Column, error) {
	if len(varIDs) != len(vals) {
		return nil, pricingerr.Invalidf("column.create.length_mismatch", "len(vars)=%d != len(vals)=%d", len(varIDs), len(vals))
	}

	type entry struct {
		id  string
		val float64
	}
	entries := make([]entry, 0, len(varIDs))
	for i, id := range varIDs {
		v := vals[i]
		if affine != nil {
			scalar, constant := affine(id)
			if scalar == 0 {
				return nil, pricingerr.Invalidf("column.create.zero_scalar", "variable %s has zero affine scalar", id)
			}
			v = (v - constant) / scalar
		}
		if math.Abs(v) <= Tolerance {
			continue
		}
		entries = append(entries, entry{id: id, val: v})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	out := &Column{
		Block:   block,
		Vars:    make([]string, len(entries)),
		Vals:    make([]float64, len(entries)),
		IsRay:   isRay,
		RedCost: redcost,
	}
	for i, e := range entries {
		if i > 0 && out.Vars[i-1] == e.id {
			return nil, pricingerr.Invalidf("column.create.duplicate_var", "variable %s appears twice in column for block %d", e.id, block)
		}
		out.Vars[i] = e.id
		out.Vals[i] = e.val
	}
	return out, nil
}

// IsEmpty reports whether the column has no nonzero entries — the zero
// column that callers must reject before inserting into a ColumnPool.
func (c *Column) IsEmpty() bool { return len(c.Vars) == 0 }

// Clone returns a defensive, unowned copy for diagnostics (e.g. report
// rendering) without ever being registered in a Pool or Store.
func (c *Column) Clone() *Column {
	clone := *c
	clone.Vars = append([]string(nil), c.Vars...)
	clone.Vals = append([]float64(nil), c.Vals...)
	clone.masterCoefs = append([]float64(nil), c.masterCoefs...)
	clone.masterCoefIDs = append([]master.ConstraintID(nil), c.masterCoefIDs...)
	clone.cutCoefs = append([]float64(nil), c.cutCoefs...)
	clone.cutIDs = append([]master.ConstraintID(nil), c.cutIDs...)
	clone.linkVars = append([]string(nil), c.linkVars...)
	return &clone
}

// valueOf returns the column's coefficient on variable id, or 0.
func (c *Column) valueOf(id string) float64 {
	i := sort.SearchStrings(c.Vars, id)
	if i < len(c.Vars) && c.Vars[i] == id {
		return c.Vals[i]
	}
	return 0
}

// ComputeMasterCoefs computes, for every row in rows, the coefficient of c by
// multiplying the row's coefficients against c's original-variable
// expansion, and caches the result. Cuts (Row.IsCut) are cached separately as
// mastercuts. linkVars is populated from the block's linking-variable rows.
// Idempotent: calling it twice with the same rows produces the same cache.
func (c *Column) ComputeMasterCoefs(rows []master.Row, linkRows []master.Row) {
	coefs := make([]float64, 0, len(rows))
	ids := make([]master.ConstraintID, 0, len(rows))
	var cutCoefs []float64
	var cutIDs []master.ConstraintID

	for _, row := range rows {
		var sum float64
		for i, v := range row.VarID {
			sum += row.Coef[i] * c.valueOf(v)
		}
		if row.IsCut {
			cutCoefs = append(cutCoefs, sum)
			cutIDs = append(cutIDs, row.ID)
		} else {
			coefs = append(coefs, sum)
			ids = append(ids, row.ID)
		}
	}

	var linkVars []string
	for _, v := range c.Vars {
		if master.LinkingMembership(v, linkRows) {
			linkVars = append(linkVars, v)
		}
	}

	c.masterCoefs = coefs
	c.masterCoefIDs = ids
	c.cutCoefs = cutCoefs
	c.cutIDs = cutIDs
	c.linkVars = linkVars
	c.coefsValid = true
}

// MasterCoefs returns the cached (coefficient, row ID) pairs, excluding cuts.
// Empty and invalid until ComputeMasterCoefs has run.
func (c *Column) MasterCoefs() (ids []master.ConstraintID, coefs []float64) {
	return c.masterCoefIDs, c.masterCoefs
}

// MasterCuts returns the cached cut coefficients.
func (c *Column) MasterCuts() (ids []master.ConstraintID, coefs []float64) {
	return c.cutIDs, c.cutCoefs
}

// LinkVars returns the cached linking-variable membership.
func (c *Column) LinkVars() []string { return c.linkVars }

// CoefsValid reports whether ComputeMasterCoefs has been called since the
// last structural change (it never is, post-construction, but a future
// mutation path would need to clear this).
func (c *Column) CoefsValid() bool { return c.coefsValid }

// ComputeReducedCost recomputes c.RedCost:
//
//	c·x − π^T(A_b x) − π^c_b − Σμ_i    (reduced-cost mode)
//	 −y^T(A_b x) − y^c_b − Σμ_i       (Farkas mode, block objective zeroed)
//
// objCoefOf supplies the original-problem objective coefficient c_j for each
// variable the column touches; it is ignored entirely in Farkas mode, where
// the block objective contribution c·x is replaced by zero. branchingDual is
// the sum of μ_i over the generic-branching constraints active for c's
// block: these are master rows like any other, so their dual is subtracted
// unconditionally, in both reduced-cost and Farkas mode.
func (c *Column) ComputeReducedCost(inFarkas bool, duals master.DualValues, objCoefOf func(varID string) float64, branchingDual float64) {
	var objTerm float64
	if !inFarkas && objCoefOf != nil {
		for i, v := range c.Vars {
			objTerm += objCoefOf(v) * c.Vals[i]
		}
	}

	var dualTerm float64
	for i, id := range c.masterCoefIDs {
		dualTerm += duals.RowValue(id) * c.masterCoefs[i]
	}

	convexity := duals.ConvexityValue(c.Block)

	c.RedCost = objTerm - dualTerm - convexity - branchingDual
}

// UpdateAge tracks staleness: if grow and the column is currently
// non-improving (RedCost >= 0), Age increments; otherwise it resets to 0.
func (c *Column) UpdateAge(grow bool) {
	if grow && c.RedCost >= -Tolerance {
		c.Age++
	} else {
		c.Age = 0
	}
}

// IsEqual implements the full structural equality ColumnPool uses for
// deduplication: same block, ray flag, variable count, and componentwise
// equal (var, val) pairs within Tolerance. RedCost and Age never participate.
func IsEqual(a, b *Column) bool {
	if a.Block != b.Block || a.IsRay != b.IsRay || len(a.Vars) != len(b.Vars) {
		return false
	}
	for i := range a.Vars {
		if a.Vars[i] != b.Vars[i] {
			return false
		}
		if math.Abs(a.Vals[i]-b.Vals[i]) > Tolerance {
			return false
		}
	}
	return true
}

// Fingerprint is the hash key of a Column: block, ray flag, and variable
// count combined into a 64-bit value. RedCost and Age never participate.
// Equality collisions are resolved by IsEqual separately from the hash.
type Fingerprint uint64

// Hash computes c's Fingerprint by combining (Block, IsRay, nvars) into a
// single 64-bit value.
func Hash(c *Column) Fingerprint {
	h := uint64(14695981039346656037) // FNV offset basis
	mix := func(x uint64) {
		h ^= x
		h *= 1099511628211 // FNV prime
	}
	mix(uint64(int64(c.Block)))
	if c.IsRay {
		mix(1)
	} else {
		mix(0)
	}
	mix(uint64(len(c.Vars)))
	return Fingerprint(h)
}
