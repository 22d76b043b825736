package v1alpha1

import "fmt"

// Validate checks an Options value with straightforward range checks on
// weights and fractions, returning the first violation found.
func Validate(opts *Options) error {
	if opts.RelMaxSuccessfulProbs < 0 || opts.RelMaxSuccessfulProbs > 1 {
		return fmt.Errorf("relmaxsuccessfulprobs must be between 0 and 1, got %v", opts.RelMaxSuccessfulProbs)
	}
	if opts.MinColOrth < 0 || opts.MinColOrth > 1 {
		return fmt.Errorf("mincolorth must be between 0 and 1, got %v", opts.MinColOrth)
	}
	if opts.Weights.RedCostFactor < 0 {
		return fmt.Errorf("weights.redcostfac must be non-negative, got %v", opts.Weights.RedCostFactor)
	}
	if opts.Weights.ObjParalFactor < 0 {
		return fmt.Errorf("weights.objparalfac must be non-negative, got %v", opts.Weights.ObjParalFactor)
	}
	if opts.Weights.OrthoFactor < 0 {
		return fmt.Errorf("weights.orthofac must be non-negative, got %v", opts.Weights.OrthoFactor)
	}
	if opts.Caps.MaxColsRoot < 0 || opts.Caps.MaxCols < 0 || opts.Caps.MaxColsFarkas < 0 {
		return fmt.Errorf("column caps must be non-negative, got %+v", opts.Caps)
	}
	if opts.ChunkSize < 0 {
		return fmt.Errorf("chunksize must be non-negative, got %v", opts.ChunkSize)
	}
	if opts.EagerFreq < 0 {
		return fmt.Errorf("eagerfreq must be non-negative, got %v", opts.EagerFreq)
	}
	if opts.AgeLimit < -1 {
		return fmt.Errorf("agelimit must be >= -1, got %v", opts.AgeLimit)
	}
	switch opts.Sorting {
	case SortIndex, SortDual, SortReliability, SortLastRound, "":
	default:
		return fmt.Errorf("unknown sorting mode %q", opts.Sorting)
	}
	switch opts.EfficacyChoice {
	case EfficacyDual, EfficacyRedcost, EfficacyMastercoef, "":
	default:
		return fmt.Errorf("unknown efficacyChoice %q", opts.EfficacyChoice)
	}
	return nil
}
