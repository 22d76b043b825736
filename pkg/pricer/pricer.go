// Package pricer implements the Pricer facade: the single entry point that
// runs one full pricing round — dispatching jobs through the controller,
// staging and applying columns through the PriceStore, and archiving
// leftovers through the ColumnPool.
package pricer

import (
	"context"
	"fmt"
	"time"

	"k8s.io/klog/v2"

	v1alpha1 "github.com/scipgcg/pricing/pkg/api/v1alpha1"
	"github.com/scipgcg/pricing/pkg/colpool"
	"github.com/scipgcg/pricing/pkg/column"
	"github.com/scipgcg/pricing/pkg/controller"
	"github.com/scipgcg/pricing/pkg/master"
	"github.com/scipgcg/pricing/pkg/metrics"
	"github.com/scipgcg/pricing/pkg/pricingerr"
	"github.com/scipgcg/pricing/pkg/pricestore"
	"github.com/scipgcg/pricing/pkg/solver"
	"github.com/scipgcg/pricing/pkg/tracing"
)

// BlockSpec is everything the Pricer needs to dispatch one block this round:
// its subproblem model, active branching, candidate solvers (the controller
// filters and orders them), original objective coefficients (used both to build each solver's
// Objective and to evaluate a returned column's reduced cost), this block's
// master rows (for Column.ComputeMasterCoefs), and the factory that turns an
// accepted Column into a master.VarSpec.
type BlockSpec struct {
	ProbNr    master.BlockIndex
	Model     interface{}
	Branching master.ActiveBranching
	Solvers   []solver.Capability
	ObjCoefOf func(varID string) float64
	NewVar    pricestore.NewVar
	Rows      []master.Row
}

// Pricer is the facade that drives one pricing round end to end.
type Pricer struct {
	logger klog.Logger
	opts   v1alpha1.Options

	ctrl  *controller.Controller
	pool  *colpool.Pool
	store *pricestore.Store

	metrics *metrics.Metrics
	tracer  *tracing.Provider

	round int
}

// New builds a Pricer. m and tp may be nil, in which case metrics/tracing
// are skipped (used by tests).
func New(logger klog.Logger, opts v1alpha1.Options, m *metrics.Metrics, tp *tracing.Provider) *Pricer {
	return &Pricer{
		logger: logger,
		opts:   opts,
		ctrl:   controller.New(logger, opts),
		pool:   colpool.New(logger, opts.AgeLimit),
		store: pricestore.New(logger, pricestore.Config{
			Weights:        opts.Weights,
			MinColOrth:     opts.MinColOrth,
			Caps:           opts.Caps,
			EfficacyChoice: opts.EfficacyChoice,
		}),
		metrics: m,
		tracer:  tp,
	}
}

// RoundsExhausted reports whether the Pricer has already run
// opts.MaxPriceRounds rounds; callers loop while !RoundsExhausted(), which
// cmd/pricingctl combines with its own --rounds bound. MaxPriceRounds <= 0
// means unbounded.
func (p *Pricer) RoundsExhausted() bool {
	return p.opts.MaxPriceRounds > 0 && p.round >= p.opts.MaxPriceRounds
}

// useColpool reports whether the ColumnPool participates in this round at
// all, per opts.UseColpool (nil defaults to enabled via SetDefaults, but a
// Pricer built without SetDefaults treats a nil pointer as enabled too).
func (p *Pricer) useColpool() bool {
	return p.opts.UseColpool == nil || *p.opts.UseColpool
}

// usePriceStore reports whether generated columns are staged and scored by
// PriceStore before injection (opts.UsePriceStore) or forced straight
// through to the master unconditionally.
func (p *Pricer) usePriceStore() bool {
	return p.opts.UsePriceStore == nil || *p.opts.UsePriceStore
}

// RunRound executes one full pricing round:
//
//  1. invalidates the ColumnPool if node is not the node it was last primed
//     for, then sets the PriceStore's root/Farkas mode and the ColumnPool's
//     Farkas mode,
//  2. if UseColpool, reprices the ColumnPool against current duals and moves
//     improving entries straight into the PriceStore,
//  3. sets up the Controller's job queue for this round's blocks,
//  4. dispatches jobs chunk by chunk until done or the abort policy fires;
//     if !UsePriceStore, every generated column is forced straight through
//     PriceStore's selection, bypassing scoring and orthogonality,
//  5. removes inefficacious staged columns,
//  6. applies the surviving columns to produce master.VarSpecs, archiving
//     whatever wasn't picked into the ColumnPool (skipped if !UseColpool),
//  7. computes the round's Lagrangian lower bound and statistics.
func (p *Pricer) RunRound(ctx context.Context, node master.NodeIdentity, blocks []BlockSpec, duals master.DualValues, linkRows []master.Row, atRoot, inFarkas bool) (RoundStats, []master.VarSpec, error) {
	p.round++
	roundStart := time.Now()

	roundCtx := ctx
	if p.tracer != nil {
		c, sp := p.tracer.StartRound(ctx, p.round)
		roundCtx = c
		defer sp.End()
	}

	p.pool.UpdateNode(node)
	p.store.SetAtRoot(atRoot)
	p.pool.SetFarkas(inFarkas)
	if inFarkas {
		p.store.StartFarkas()
	} else {
		p.store.EndFarkas()
	}

	rowsByBlock := make(map[master.BlockIndex][]master.Row, len(blocks))
	objByBlock := make(map[master.BlockIndex]func(string) float64, len(blocks))
	newVarByBlock := make(map[master.BlockIndex]pricestore.NewVar, len(blocks))
	branchingDualByBlock := make(map[master.BlockIndex]float64, len(blocks))

	// A column pulled out of the ColumnPool carries no block-objective
	// closure of its own, only its Block tag and variable IDs; build one
	// global lookup from every block's own rows so the pool can still
	// evaluate a reduced cost for an archived column from any block.
	globalObjCoef := make(map[string]float64)
	var globalRows []master.Row
	for _, b := range blocks {
		rowsByBlock[b.ProbNr] = b.Rows
		objByBlock[b.ProbNr] = b.ObjCoefOf
		newVarByBlock[b.ProbNr] = b.NewVar
		// The node's full generic-branching set for a block is permanently
		// active regardless of how far a round's incremental cursor has
		// folded it into bound tightening, so the pool's global reprice
		// always sees every constraint's dual.
		branchingDualByBlock[b.ProbNr] = b.Branching.DualSum(0)
		globalRows = append(globalRows, b.Rows...)
		if b.ObjCoefOf == nil {
			continue
		}
		for _, row := range b.Rows {
			for _, v := range row.VarID {
				if _, seen := globalObjCoef[v]; !seen {
					globalObjCoef[v] = b.ObjCoefOf(v)
				}
			}
		}
	}

	// A column's valueOf is 0 for any variable outside its own support, so
	// folding every block's rows into one global list is safe even though
	// any single pool entry only belongs to one block: rows naming other
	// blocks' variables contribute 0 to that entry's dot product.
	useColpool := p.useColpool()
	if useColpool {
		p.pool.UpdateRedcostAndCoefs(colpool.DualContext{
			Rows:            globalRows,
			LinkRows:        linkRows,
			Duals:           duals,
			ObjCoefOf:       func(varID string) float64 { return globalObjCoef[varID] },
			BranchingDualOf: func(b master.BlockIndex) float64 { return branchingDualByBlock[b] },
		})
		p.pool.Price(p.store)
	}

	defs := make([]controller.BlockDef, 0, len(blocks))
	for _, b := range blocks {
		defs = append(defs, controller.BlockDef{
			ProbNr:    b.ProbNr,
			Model:     b.Model,
			Branching: b.Branching,
			Solvers:   b.Solvers,
		})
	}
	p.ctrl.Setup(defs, duals.ConvexityValue)

	stats := RoundStats{Round: p.round, EagerRound: p.ctrl.IsEagerRound()}
	forceAllCols := !p.usePriceStore()

	for {
		if err := ctx.Err(); err != nil {
			// Cooperative cancellation: store and pool are left as they are.
			return stats, nil, pricingerr.New(pricingerr.Interrupted, err)
		}
		j, ok := p.ctrl.NextJob()
		if !ok {
			if p.ctrl.CanAbort() {
				break
			}
			if !p.ctrl.CheckNextChunk() {
				break
			}
			continue
		}

		h := p.ctrl.HandleFor(j)
		cand, ok := j.Solver.(solver.Capability)
		if !ok {
			return stats, nil, pricingerr.Invalidf("pricer.job.solver_type", "job solver %q is not a solver.Capability", j.Solver.Name())
		}

		active := j.Problem.Branching.Applied(j.Problem.NextConsIdx)
		objCoefOf := objByBlock[j.ProbNr()]
		rows := rowsByBlock[j.ProbNr()]
		// Subproblem objective: c_j (zero in Farkas mode) minus the row duals
		// times this block's row coefficients on variable j.
		subObj := func(varID string) float64 {
			var coef float64
			if !inFarkas && objCoefOf != nil {
				coef = objCoefOf(varID)
			}
			for _, row := range rows {
				for i, v := range row.VarID {
					if v == varID {
						coef -= duals.RowValue(row.ID) * row.Coef[i]
					}
				}
			}
			return coef
		}
		solveCtx, endJobSpan := roundCtx, func() {}
		if p.tracer != nil {
			c, sp := p.tracer.StartJob(roundCtx, int(j.ProbNr()), cand.Name())
			solveCtx, endJobSpan = c, func() { sp.End() }
		}
		solveStart := time.Now()
		result, err := cand.Solve(solveCtx, j.Problem.PricingModel, solver.Objective{CoefOf: subObj}, active, solver.Limits{
			JobTimeLimit: p.opts.JobTimeLimit,
			Heuristic:    j.Heuristic,
		})
		solveSeconds := time.Since(solveStart).Seconds()
		endJobSpan()
		if err != nil {
			return stats, nil, err
		}

		stats.ColumnsGen += len(result.Columns)
		if p.metrics != nil {
			p.metrics.BlockSolveCount.WithLabelValues(blockLabel(j.ProbNr()), cand.Name(), result.Status.String()).Inc()
			p.metrics.ColumnsGenerated.WithLabelValues(blockLabel(j.ProbNr()), cand.Name()).Add(float64(len(result.Columns)))
			p.metrics.BlockSolveSeconds.WithLabelValues(blockLabel(j.ProbNr()), cand.Name()).Observe(solveSeconds)
		}

		branchingDual := j.Problem.Branching.DualSum(0)
		for _, col := range result.Columns {
			col.ComputeMasterCoefs(rows, linkRows)
			col.ComputeReducedCost(inFarkas, duals, objCoefOf, branchingDual)
			p.store.AddCol(col, forceAllCols)
		}

		p.ctrl.EvaluateJob(h, j, result.Status, result.LowerBound, result.Columns, duals.ConvexityValue)
	}

	p.ctrl.ExitPricing()
	p.store.RemoveInefficaciousCols(atRoot)

	specs, leftover := p.store.ApplyCols(func(col *column.Column) master.VarSpec {
		if nv := newVarByBlock[col.Block]; nv != nil {
			return nv(col)
		}
		return master.VarSpec{Block: col.Block, OrigVars: col.Vars, OrigVals: col.Vals, IsRay: col.IsRay}
	})

	if useColpool {
		p.ctrl.MoveColsToColpool(p.pool, leftover)
	}

	stats.ColumnsKept = len(specs)
	stats.ColumnsPooled = p.pool.Len()
	stats.Optimal = p.ctrl.PricingIsOptimal()
	stats.Infeasible = p.ctrl.PricingIsInfeasible()
	stats.RedcostValid = p.ctrl.RedcostIsValid()
	stats.LowerBound = p.lagrangianBound()

	if p.metrics != nil {
		p.metrics.Rounds.Inc()
		p.metrics.RoundDuration.Observe(time.Since(roundStart).Seconds())
		p.metrics.LowerBound.Set(stats.LowerBound)
		p.metrics.ColumnsPooled.Set(float64(stats.ColumnsPooled))
		for block, count := range keptByBlock(specs) {
			p.metrics.ColumnsKept.WithLabelValues(blockLabel(block)).Add(float64(count))
		}
	}

	return stats, specs, nil
}

// lagrangianBound sums every block's reported LowerBound
// "Lagrangian lower bound"). The master's own fixed objective contribution
// is outside this subsystem's scope and is added by the caller.
func (p *Pricer) lagrangianBound() float64 {
	var sum float64
	for _, prob := range p.ctrl.Blocks() {
		sum += prob.LowerBound
	}
	return sum
}

func keptByBlock(specs []master.VarSpec) map[master.BlockIndex]int {
	out := make(map[master.BlockIndex]int, len(specs))
	for _, s := range specs {
		out[s.Block]++
	}
	return out
}

func blockLabel(b master.BlockIndex) string {
	return fmt.Sprintf("%d", int(b))
}
