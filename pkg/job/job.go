// Package job implements PricingJob: one concrete attempt of one solver on
// one PricingProblem, together with the scoring formulas that order the
// controller's priority queue.
package job

import (
	v1alpha1 "github.com/scipgcg/pricing/pkg/api/v1alpha1"
	"github.com/scipgcg/pricing/pkg/master"
	"github.com/scipgcg/pricing/pkg/problem"
)

// Solver is the narrow handle a Job carries to its candidate solver. The
// full SolverCapability contract lives in package solver; Job only needs
// enough to identify and invoke it, keeping this package free of a solver
// import cycle.
type Solver interface {
	Name() string
}

// Job is one (PricingProblem, Solver, chunk, score, heuristic) unit of work
// placed on the controller's priority queue.
type Job struct {
	Problem   *problem.Problem
	Solver    Solver
	Chunk     int
	Score     float64
	Heuristic bool
	NHeurIters int
}

// SetExact clears the heuristic flag so the next solve always runs the
// block's exact solver.
func (j *Job) SetExact() {
	j.Heuristic = false
}

// SetupParams bundles the inputs Setup needs to compute a job's score under
// each sorting mode's formula.
type SetupParams struct {
	Mode          v1alpha1.SortingMode
	NRoundsCol    int
	DualConv      float64 // π^c_b, the block's convexity dual
	NPointsProb   int     // number of extreme points known for this block
	NRaysProb     int     // number of extreme rays known for this block
}

// Setup computes the job's score according to p.Mode:
//
//	i (index):       -probnr
//	d (dual):        dualconv_b
//	r (reliability): -(0.2*nPointsProb + nRaysProb)
//	l (last-round):  improving columns counted over the last nroundscol rounds
//	else:            0
func (j *Job) Setup(heuristic bool, p SetupParams) {
	j.Heuristic = heuristic
	j.NHeurIters = 0

	switch p.Mode {
	case v1alpha1.SortIndex:
		j.Score = -float64(j.Problem.ProbNr)
	case v1alpha1.SortDual:
		j.Score = p.DualConv
	case v1alpha1.SortReliability:
		j.Score = -(0.2*float64(p.NPointsProb) + float64(p.NRaysProb))
	case v1alpha1.SortLastRound:
		j.Score = float64(j.Problem.ImprovingColsInWindow(p.NRoundsCol))
	default:
		j.Score = 0
	}
}

// RecordHeurIter increments NHeurIters; called once per solver invocation
// while the job remains heuristic.
func (j *Job) RecordHeurIter() {
	if j.Heuristic {
		j.NHeurIters++
	}
}

// ProbNr is a convenience accessor used for tie-breaking in the controller's
// priority queue.
func (j *Job) ProbNr() master.BlockIndex {
	return j.Problem.ProbNr
}
