package pricingerr_test

import (
	"errors"
	"testing"

	"github.com/scipgcg/pricing/pkg/pricingerr"
)

func TestIsMatchesKind(t *testing.T) {
	err := pricingerr.New(pricingerr.Limit, errors.New("boom"))
	if !pricingerr.Is(err, pricingerr.Limit) {
		t.Fatalf("expected Is to match the wrapped Kind")
	}
	if pricingerr.Is(err, pricingerr.Invalid) {
		t.Fatalf("expected Is to reject a mismatched Kind")
	}
}

func TestInvalidfSetsInvariantName(t *testing.T) {
	err := pricingerr.Invalidf("column.dup", "duplicate %s", "x1")
	if err.Kind != pricingerr.Invalid {
		t.Fatalf("expected Kind Invalid, got %v", err.Kind)
	}
	if err.Invariant != "column.dup" {
		t.Fatalf("expected invariant name preserved, got %q", err.Invariant)
	}
}

func TestUnwrapExposesUnderlyingError(t *testing.T) {
	inner := errors.New("root cause")
	err := pricingerr.New(pricingerr.Numerical, inner)
	if !errors.Is(err, inner) {
		t.Fatalf("expected errors.Is to see through Unwrap to the inner error")
	}
}
