package v1alpha1_test

import (
	"testing"

	v1alpha1 "github.com/scipgcg/pricing/pkg/api/v1alpha1"
)

func defaulted() *v1alpha1.Options {
	opts := &v1alpha1.Options{}
	v1alpha1.SetDefaults(opts)
	return opts
}

func TestSetDefaultsFillsZeroFields(t *testing.T) {
	opts := defaulted()
	if opts.HeurPricingIters != v1alpha1.DefaultHeurPricingIters {
		t.Fatalf("expected default heur pricing iters, got %d", opts.HeurPricingIters)
	}
	if opts.UseColpool == nil || !*opts.UseColpool {
		t.Fatalf("expected UseColpool defaulted to true")
	}
	if opts.UsePriceStore == nil || !*opts.UsePriceStore {
		t.Fatalf("expected UsePriceStore defaulted to true")
	}
}

func TestSetDefaultsPreservesExplicitFalse(t *testing.T) {
	f := false
	opts := &v1alpha1.Options{UseColpool: &f}
	v1alpha1.SetDefaults(opts)
	if opts.UseColpool == nil || *opts.UseColpool {
		t.Fatalf("expected an explicit false to survive defaulting")
	}
}

func TestValidateRejectsOutOfRangeFractions(t *testing.T) {
	opts := defaulted()
	opts.RelMaxSuccessfulProbs = 1.5
	if err := v1alpha1.Validate(opts); err == nil {
		t.Fatalf("expected an error for relmaxsuccessfulprobs > 1")
	}
}

func TestValidateRejectsNegativeWeights(t *testing.T) {
	opts := defaulted()
	opts.Weights.OrthoFactor = -1
	if err := v1alpha1.Validate(opts); err == nil {
		t.Fatalf("expected an error for a negative weight")
	}
}

func TestValidateRejectsUnknownSortingMode(t *testing.T) {
	opts := defaulted()
	opts.Sorting = "bogus"
	if err := v1alpha1.Validate(opts); err == nil {
		t.Fatalf("expected an error for an unknown sorting mode")
	}
}

func TestValidateAcceptsDefaultedOptions(t *testing.T) {
	if err := v1alpha1.Validate(defaulted()); err != nil {
		t.Fatalf("unexpected error validating defaulted options: %v", err)
	}
}
