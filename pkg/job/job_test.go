package job_test

import (
	"testing"

	v1alpha1 "github.com/scipgcg/pricing/pkg/api/v1alpha1"
	"github.com/scipgcg/pricing/pkg/job"
	"github.com/scipgcg/pricing/pkg/master"
	"github.com/scipgcg/pricing/pkg/problem"
)

func newJob(probNr master.BlockIndex) *job.Job {
	return &job.Job{Problem: problem.New(probNr, nil, master.ActiveBranching{}, 2)}
}

func TestSetupIndexModeScoresByNegativeProbNr(t *testing.T) {
	j := newJob(5)
	j.Setup(false, job.SetupParams{Mode: v1alpha1.SortIndex})
	if j.Score != -5 {
		t.Fatalf("expected score -5, got %v", j.Score)
	}
}

func TestSetupDualModeScoresByConvexityDual(t *testing.T) {
	j := newJob(0)
	j.Setup(false, job.SetupParams{Mode: v1alpha1.SortDual, DualConv: 3.5})
	if j.Score != 3.5 {
		t.Fatalf("expected score 3.5, got %v", j.Score)
	}
}

func TestSetupReliabilityModeWeightsPointsAndRays(t *testing.T) {
	j := newJob(0)
	j.Setup(false, job.SetupParams{Mode: v1alpha1.SortReliability, NPointsProb: 10, NRaysProb: 2})
	want := -(0.2*10 + 2)
	if j.Score != want {
		t.Fatalf("expected score %v, got %v", want, j.Score)
	}
}

func TestSetExactClearsHeuristicFlag(t *testing.T) {
	j := newJob(0)
	j.Setup(true, job.SetupParams{})
	if !j.Heuristic {
		t.Fatalf("expected heuristic true after Setup(true, ...)")
	}
	j.SetExact()
	if j.Heuristic {
		t.Fatalf("expected SetExact to clear the heuristic flag")
	}
}

func TestRecordHeurIterOnlyCountsWhileHeuristic(t *testing.T) {
	j := newJob(0)
	j.Setup(true, job.SetupParams{})
	j.RecordHeurIter()
	j.RecordHeurIter()
	if j.NHeurIters != 2 {
		t.Fatalf("expected 2 heuristic iterations recorded, got %d", j.NHeurIters)
	}
	j.SetExact()
	j.RecordHeurIter()
	if j.NHeurIters != 2 {
		t.Fatalf("expected no further increments once exact, got %d", j.NHeurIters)
	}
}
