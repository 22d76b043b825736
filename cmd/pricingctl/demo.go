package main

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/scipgcg/pricing/pkg/column"
	"github.com/scipgcg/pricing/pkg/master"
	"github.com/scipgcg/pricing/pkg/metrics"
	"github.com/scipgcg/pricing/pkg/pricer"
	"github.com/scipgcg/pricing/pkg/report"
	"github.com/scipgcg/pricing/pkg/solver"
	"github.com/scipgcg/pricing/pkg/tracing"
)

// runDemo builds a small fixed set of synthetic blocks, runs up to
// opts.rounds pricing rounds against them with a static zero-dual master
// (this module has no real master LP to solve against), and prints each
// round's RoundStats. It stops early once a round is optimal or the
// configured MaxPriceRounds is reached.
func runDemo(opts *options) error {
	cfg, err := loadOptions(opts.configPath)
	if err != nil {
		return err
	}

	logger := klog.Background()
	m := metrics.NewUnregistered()
	tp := tracing.NewNoop()
	defer tp.Shutdown(context.Background())

	p := pricer.New(logger, *cfg, m, tp)

	blocks := demoBlocks()
	duals := master.DualValues{
		Rows:      map[master.ConstraintID]float64{},
		Convexity: map[master.BlockIndex]float64{},
	}

	const rootNode master.NodeIdentity = 0

	var history []pricer.RoundStats
	for round := 0; round < opts.rounds && !p.RoundsExhausted(); round++ {
		stats, _, err := p.RunRound(context.Background(), rootNode, blocks, duals, nil, round == 0, false)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		history = append(history, stats)
		fmt.Printf("round=%d lb=%.4f gen=%d kept=%d pooled=%d optimal=%v infeasible=%v\n",
			stats.Round, stats.LowerBound, stats.ColumnsGen, stats.ColumnsKept, stats.ColumnsPooled,
			stats.Optimal, stats.Infeasible)

		if stats.Optimal {
			break
		}
	}

	if opts.reportPath != "" {
		if err := report.PlotRounds(history, opts.reportPath); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("wrote report to %s\n", opts.reportPath)
	}

	return nil
}

// demoBlocks builds two independent two-variable box blocks with a shared
// coupling row, enough to exercise dispatch, scoring, and pool aging without
// any real LP/MIP backend.
func demoBlocks() []pricer.BlockSpec {
	// Each block's Row carries only that block's variables of the coupling
	// constraint.
	couplingRow := func(vars ...string) []master.Row {
		return []master.Row{{ID: "coupling", VarID: vars, Coef: []float64{1, 1}}}
	}

	newVar := func(col *column.Column) master.VarSpec {
		return master.VarSpec{
			Block:    col.Block,
			IsRay:    col.IsRay,
			OrigVars: col.Vars,
			OrigVals: col.Vals,
		}
	}

	return []pricer.BlockSpec{
		{
			ProbNr: 0,
			Model: &solver.SyntheticModel{
				Block:  0,
				VarIDs: []string{"b0:x1", "b0:x2"},
				Lower:  []float64{0, 0},
				Upper:  []float64{1, 1},
			},
			Solvers:   []solver.Capability{solver.NewExactSolver()},
			ObjCoefOf: func(varID string) float64 { return -1 },
			Rows:      couplingRow("b0:x1", "b0:x2"),
			NewVar:    newVar,
		},
		{
			ProbNr: 1,
			Model: &solver.SyntheticModel{
				Block:  1,
				VarIDs: []string{"b1:x1", "b1:x2"},
				Lower:  []float64{0, 0},
				Upper:  []float64{2, 1},
			},
			Solvers:   []solver.Capability{solver.NewExactSolver()},
			ObjCoefOf: func(varID string) float64 { return -2 },
			Rows:      couplingRow("b1:x1", "b1:x2"),
			NewVar:    newVar,
		},
	}
}
