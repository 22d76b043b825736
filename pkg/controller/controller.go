// Package controller implements PricingController: the orchestrator that
// turns one round's set of per-block PricingProblems into an ordered queue of
// PricingJobs, dispatches them in chunks, and decides when enough blocks have
// priced successfully to stop early.
package controller

import (
	"sort"

	"k8s.io/klog/v2"

	v1alpha1 "github.com/scipgcg/pricing/pkg/api/v1alpha1"
	"github.com/scipgcg/pricing/pkg/colpool"
	"github.com/scipgcg/pricing/pkg/column"
	"github.com/scipgcg/pricing/pkg/job"
	"github.com/scipgcg/pricing/pkg/master"
	"github.com/scipgcg/pricing/pkg/problem"
	"github.com/scipgcg/pricing/pkg/solver"
)

// BlockDef is the caller-supplied description of one pricing block: its
// opaque subproblem model, active branching, and the full set of solver
// candidates that might bind to it. Setup narrows Solvers to the ones whose
// CanHandle accepts ProbNr and orders the survivors by Priority descending —
// callers do not pre-filter or pre-sort this list themselves.
type BlockDef struct {
	ProbNr    master.BlockIndex
	Model     interface{}
	Branching master.ActiveBranching
	Solvers   []solver.Capability
}

// block is the controller's internal bookkeeping for one BlockDef across a
// round: its Problem state machine plus the candidate solvers still
// untried this attempt, already filtered to those that can handle this
// block and ordered by descending priority.
type block struct {
	problem    *problem.Problem
	candidates []solver.Capability
	nextCand   int
}

// bindCandidates returns the solvers in all that report CanHandle(probNr),
// stable-sorted by Priority descending so the highest-priority capable
// solver is tried first.
func bindCandidates(all []solver.Capability, probNr master.BlockIndex) []solver.Capability {
	bound := make([]solver.Capability, 0, len(all))
	for _, s := range all {
		if s.CanHandle(probNr) {
			bound = append(bound, s)
		}
	}
	sort.SliceStable(bound, func(i, j int) bool {
		return bound[i].Priority() > bound[j].Priority()
	})
	return bound
}

// Controller is the round-level job scheduler.
type Controller struct {
	logger klog.Logger
	opts   v1alpha1.Options

	blocks []*block
	queue  []*job.Job

	round int

	chunkSize  int
	nChunks    int
	curChunk   int
	startChunk int

	nSuccessThisChunk int
}

// New builds an empty Controller configured from opts.
func New(logger klog.Logger, opts v1alpha1.Options) *Controller {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1
	}
	return &Controller{
		logger:    logger,
		opts:      opts,
		chunkSize: chunkSize,
	}
}

// Setup (re)builds the block/problem set and priority queue for a new round
// from defs, computing each job's score via job.Setup per the controller's
// configured SortingMode.
func (c *Controller) Setup(defs []BlockDef, dualOf func(b master.BlockIndex) float64) {
	c.blocks = make([]*block, 0, len(defs))
	c.queue = nil

	for _, def := range defs {
		candidates := bindCandidates(def.Solvers, def.ProbNr)
		if len(candidates) == 0 {
			continue
		}
		p := problem.New(def.ProbNr, def.Model, def.Branching, c.opts.NRoundsCol)
		p.InitPricing()
		bl := &block{
			problem:    p,
			candidates: candidates,
		}
		c.blocks = append(c.blocks, bl)
		c.enqueueNext(bl, dualOf)
	}

	c.nChunks = (len(c.blocks) + c.chunkSize - 1) / c.chunkSize
	if c.nChunks == 0 {
		c.nChunks = 1
	}
	c.curChunk = 0
	c.startChunk = 0
	c.nSuccessThisChunk = 0
	c.round++
}

// enqueueNext binds bl's next untried candidate solver as a fresh Job and
// pushes it onto the queue, scored per the configured sorting mode.
func (c *Controller) enqueueNext(bl *block, dualOf func(b master.BlockIndex) float64) {
	if bl.nextCand >= len(bl.candidates) {
		return
	}
	s := bl.candidates[bl.nextCand]

	var dualConv float64
	if dualOf != nil {
		dualConv = dualOf(bl.problem.ProbNr)
	}

	j := &job.Job{
		Problem: bl.problem,
		Solver:  s,
		Chunk:   len(c.blocks) - 1,
	}
	j.Setup(c.round > 1 && c.opts.HeurPricingIters > 0, job.SetupParams{
		Mode:        c.opts.Sorting,
		NRoundsCol:  c.opts.NRoundsCol,
		DualConv:    dualConv,
		NPointsProb: 0,
		NRaysProb:   0,
	})
	c.queue = append(c.queue, j)
}

// NextJob pops the highest-scoring Job whose block lies within the chunk
// range [startchunk, startchunk+curchunk], tie-broken by probnr. Returns
// ok=false when no eligible job remains.
func (c *Controller) NextJob() (*job.Job, bool) {
	best := -1
	for i, j := range c.queue {
		if !c.inWindow(j.Chunk) {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		bj := c.queue[best]
		if j.Score > bj.Score || (j.Score == bj.Score && j.ProbNr() < bj.ProbNr()) {
			best = i
		}
	}
	if best == -1 {
		return nil, false
	}
	j := c.queue[best]
	c.queue = append(c.queue[:best], c.queue[best+1:]...)
	return j, true
}

func (c *Controller) inWindow(chunk int) bool {
	return chunk >= c.startchunkIndex() && chunk < c.startchunkIndex()+c.curchunkSize()
}

func (c *Controller) startchunkIndex() int { return c.startChunk * c.chunkSize }
func (c *Controller) curchunkSize() int    { return c.chunkSize * (c.curChunk + 1 - c.startChunk) }

// CheckNextChunk widens the dispatch window by one chunk, used once the
// current window is exhausted without triggering abort.
func (c *Controller) CheckNextChunk() bool {
	if c.startChunk+c.curChunk+1 >= c.nChunks {
		return false
	}
	c.curChunk++
	return true
}

// EvaluateJob records one solver invocation's outcome against j's Problem,
// updating both the Problem state machine and, when the candidate declined
// the subproblem or reported a recoverable limit, requeuing follow-up work.
//
// EvaluateJob does not take ownership of cols; see Pricer/ColumnPool for
// column lifetime.
func (c *Controller) EvaluateJob(bl *BlockHandle, j *job.Job, status problem.Status, lb float64, cols []*column.Column, dualOf func(b master.BlockIndex) float64) {
	p := j.Problem
	impCols := 0
	for _, col := range cols {
		if col.RedCost < -column.Tolerance {
			impCols++
		}
	}
	p.Update(status, lb, impCols)
	j.RecordHeurIter()

	if status == problem.StatusNotApplicable {
		bl.b.nextCand++
		c.enqueueNext(bl.b, dualOf)
		return
	}

	if j.Heuristic && j.NHeurIters >= c.opts.HeurPricingIters {
		j.SetExact()
	}

	if !p.Status.IsTerminal() {
		// Limit/time/node status: retry the same candidate.
		c.queue = append(c.queue, j)
		return
	}

	if p.Branching.Len() > 0 && !p.Branching.AllApplied(p.NextConsIdx) {
		p.AdvanceCons()
		c.queue = append(c.queue, j)
		return
	}

	// Done. Success counts toward the abort policy if at least one
	// improving column was produced.
	if impCols > 0 {
		c.nSuccessThisChunk++
	}
}

// BlockHandle is the opaque reference EvaluateJob needs back from NextJob's
// caller to locate the owning block bookkeeping without exposing the
// unexported block type across the package boundary.
type BlockHandle struct{ b *block }

// HandleFor returns the BlockHandle for j's block, for use in the
// NextJob -> solve -> EvaluateJob cycle.
func (c *Controller) HandleFor(j *job.Job) *BlockHandle {
	for _, bl := range c.blocks {
		if bl.problem == j.Problem {
			return &BlockHandle{b: bl}
		}
	}
	return nil
}

// CanAbort reports whether the controller may stop dispatching further jobs
// this round: the fraction of blocks that finished with at least one
// improving column must meet relmaxsuccessfulprobs, and this must not be an
// eager round.
func (c *Controller) CanAbort() bool {
	if c.IsEagerRound() {
		return false
	}
	if len(c.blocks) == 0 {
		return true
	}
	required := c.opts.RelMaxSuccessfulProbs * float64(len(c.blocks))
	return float64(c.nSuccessThisChunk) >= required
}

// IsEagerRound reports whether this round must solve every block regardless
// of the abort policy
// solved"). eagerfreq <= 0 disables eager rounds entirely.
func (c *Controller) IsEagerRound() bool {
	if c.opts.EagerFreq <= 0 {
		return false
	}
	return c.round%c.opts.EagerFreq == 0
}

// PricingIsOptimal reports whether every block's Problem is Done with status
// Optimal: no block can still improve the bound.
func (c *Controller) PricingIsOptimal() bool {
	for _, bl := range c.blocks {
		if !bl.problem.Done() || bl.problem.Status != problem.StatusOptimal {
			return false
		}
	}
	return true
}

// PricingIsInfeasible reports whether any block's Problem concluded
// infeasible, which makes the whole master LP infeasible at this node.
func (c *Controller) PricingIsInfeasible() bool {
	for _, bl := range c.blocks {
		if bl.problem.Status == problem.StatusInfeasible {
			return true
		}
	}
	return false
}

// RedcostIsValid reports whether every block has been solved at least once
// this round (NSolves > 0). Block status and limit hits are not checked, so
// a true result does not by itself mean every block was solved to
// optimality.
func (c *Controller) RedcostIsValid() bool {
	for _, bl := range c.blocks {
		if bl.problem.NSolves == 0 {
			return false
		}
	}
	return true
}

// MoveColsToColpool archives cols that were not selected by PriceStore into
// pool for potential reuse in a later round, skipping the empty column: the
// zero column is never archived.
func (c *Controller) MoveColsToColpool(pool *colpool.Pool, cols []*column.Column) {
	for _, col := range cols {
		if col.IsEmpty() {
			continue
		}
		pool.Add(col)
	}
}

// Blocks exposes the round's Problems in probnr order, for callers (Pricer)
// that need to iterate every block — e.g. to compute the round's Lagrangian
// bound or to decide SetAtRoot.
func (c *Controller) Blocks() []*problem.Problem {
	out := make([]*problem.Problem, len(c.blocks))
	for i, bl := range c.blocks {
		out[i] = bl.problem
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProbNr < out[j].ProbNr })
	return out
}

// ExitPricing slides every block's improving-columns window at the end of a
// round.
func (c *Controller) ExitPricing() {
	for _, bl := range c.blocks {
		bl.problem.ExitPricing()
	}
}

// QueueLen reports the number of jobs still pending dispatch this round,
// mainly for tests and diagnostics.
func (c *Controller) QueueLen() int { return len(c.queue) }
