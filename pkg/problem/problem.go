// Package problem implements PricingProblem: the per-block state machine
// tracked across one pricing round.
//
// Status is a set of typed int constants; branching progress is kept
// separately in NextConsIdx and Phase.
package problem

import (
	"math"

	"github.com/scipgcg/pricing/pkg/master"
)

// Status is the terminal/non-terminal state of a block's pricing attempt
// this round.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusInfeasible
	StatusSolLimit
	StatusObjLimit
	StatusNodeLimit
	StatusTimeLimit
	StatusUserInterrupt
	StatusNotApplicable
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusSolLimit:
		return "sollimit"
	case StatusObjLimit:
		return "objlimit"
	case StatusNodeLimit:
		return "nodelimit"
	case StatusTimeLimit:
		return "timelimit"
	case StatusUserInterrupt:
		return "userinterrupt"
	case StatusNotApplicable:
		return "notApplicable"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether s is a terminal status (optimal or infeasible);
// any limit status keeps the problem open for retry.
func (s Status) IsTerminal() bool {
	return s == StatusOptimal || s == StatusInfeasible
}

// Phase tracks the state machine's coarse lifecycle:
// idle -> initialized -> (solving <-> awaitingNextCons) -> terminal.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInitialized
	PhaseSolving
	PhaseAwaitingNextCons
	PhaseTerminal
)

// nroundscolDefault bounds the sliding window size used when the caller
// configures 0; callers should pass api/v1alpha1.Options.NRoundsCol instead.
const nroundscolDefault = 2

// Problem is the per-block pricing state machine.
type Problem struct {
	ProbNr       master.BlockIndex
	PricingModel interface{} // opaque handle to the block's subproblem

	Branching   master.ActiveBranching
	NextConsIdx int

	Phase      Phase
	Status     Status
	LowerBound float64

	NImpCols int
	NSolves  int

	nColsRound []int // sliding window, most recent first
	windowLen  int
}

// New creates a PricingProblem for block b with the given active
// branching constraints.
func New(b master.BlockIndex, model interface{}, branching master.ActiveBranching, windowLen int) *Problem {
	if windowLen <= 0 {
		windowLen = nroundscolDefault
	}
	return &Problem{
		ProbNr:       b,
		PricingModel: model,
		Branching:    branching,
		NextConsIdx:  branching.Len(),
		Phase:        PhaseIdle,
		LowerBound:   math.Inf(-1),
		windowLen:    windowLen,
		nColsRound:   make([]int, windowLen),
	}
}

// InitPricing clears per-round counters and moves idle -> initialized.
func (p *Problem) InitPricing() {
	p.NImpCols = 0
	p.NSolves = 0
	p.Phase = PhaseInitialized
}

// Reset clears status, resets LowerBound to -inf and NSolves to 0, ready
// for a fresh attempt at this block.
func (p *Problem) Reset() {
	p.Status = StatusUnknown
	p.LowerBound = math.Inf(-1)
	p.NSolves = 0
	p.Phase = PhaseInitialized
	p.NextConsIdx = p.Branching.Len()
}

// Update is called after each solver invocation. It merges the reported
// status (last wins unless NotApplicable, which is ignored so a solver that
// declines the problem never overwrites a real status from a prior
// candidate), raises LowerBound monotonically via max, and accumulates
// NImpCols and NSolves.
func (p *Problem) Update(status Status, lb float64, impColsDelta int) {
	if status != StatusNotApplicable {
		p.Status = status
	}
	if lb > p.LowerBound {
		p.LowerBound = lb
	}
	p.NImpCols += impColsDelta
	p.NSolves++

	switch {
	case status.IsTerminal():
		p.Phase = PhaseTerminal
	default:
		if p.NextConsIdx > 0 {
			p.Phase = PhaseAwaitingNextCons
		} else {
			p.Phase = PhaseSolving
		}
	}
}

// AdvanceCons decrements NextConsIdx towards 0 as the controller incorporates
// one more generic-branching constraint per solve, until every constraint
// has been folded in.
func (p *Problem) AdvanceCons() {
	if p.NextConsIdx > 0 {
		p.NextConsIdx--
	}
}

// Done reports whether this problem is fully solved for the round: status is
// terminal AND every branching constraint has been incorporated.
func (p *Problem) Done() bool {
	return p.Status.IsTerminal() && p.Branching.AllApplied(p.NextConsIdx)
}

// ExitPricing slides nColsRound: drops the oldest entry and prepends NImpCols.
func (p *Problem) ExitPricing() {
	copy(p.nColsRound[1:], p.nColsRound[:len(p.nColsRound)-1])
	p.nColsRound[0] = p.NImpCols
	p.Phase = PhaseIdle
}

// ImprovingColsInWindow sums nColsRound over the most recent n rounds (n <=
// windowLen), used by job scoring mode "l".
func (p *Problem) ImprovingColsInWindow(n int) int {
	if n > len(p.nColsRound) {
		n = len(p.nColsRound)
	}
	sum := 0
	for i := 0; i < n; i++ {
		sum += p.nColsRound[i]
	}
	return sum
}
