package v1alpha1

import (
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"
)

// Default* constants for the pricing domain's own knobs.
const (
	DefaultHeurPricingIters      = 3
	DefaultNRoundsCol            = 2
	DefaultRelMaxSuccessfulProbs = 1.0
	DefaultChunkSize             = 1
	DefaultEagerFreq             = 10
	DefaultJobTimeLimit          = 60.0
	DefaultAgeLimit              = -1
	DefaultMinColOrth            = 0.0
	DefaultMaxColsRoot           = 100
	DefaultMaxCols               = 10
	DefaultMaxColsFarkas         = 10
	DefaultMaxPriceRounds        = -1

	DefaultRedCostFactor  = 1.0
	DefaultObjParalFactor = 0.0
	DefaultOrthoFactor    = 0.0
)

// SetDefaults fills in zero-valued fields of opts with the defaults above.
// No runtime.Scheme registration (RegisterDefaults/addDefaultingFuncs) — that
// machinery only exists to plug into an apiserver's defaulting webhook; this
// module has no apiserver to register with (see DESIGN.md).
func SetDefaults(opts *Options) {
	klog.V(5).InfoS("applying pricing option defaults")

	if opts.HeurPricingIters == 0 {
		opts.HeurPricingIters = DefaultHeurPricingIters
	}
	if opts.Sorting == "" {
		opts.Sorting = SortReliability
	}
	if opts.NRoundsCol == 0 {
		opts.NRoundsCol = DefaultNRoundsCol
	}
	if opts.RelMaxSuccessfulProbs == 0 {
		opts.RelMaxSuccessfulProbs = DefaultRelMaxSuccessfulProbs
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.EagerFreq == 0 {
		opts.EagerFreq = DefaultEagerFreq
	}
	if opts.JobTimeLimit == 0 {
		opts.JobTimeLimit = DefaultJobTimeLimit
	}
	if opts.AgeLimit == 0 {
		opts.AgeLimit = DefaultAgeLimit
	}
	if opts.Weights == (ScoreWeights{}) {
		opts.Weights = ScoreWeights{
			RedCostFactor:  DefaultRedCostFactor,
			ObjParalFactor: DefaultObjParalFactor,
			OrthoFactor:    DefaultOrthoFactor,
		}
	}
	if opts.Caps == (ColumnCaps{}) {
		opts.Caps = ColumnCaps{
			MaxColsRoot:   DefaultMaxColsRoot,
			MaxCols:       DefaultMaxCols,
			MaxColsFarkas: DefaultMaxColsFarkas,
		}
	}
	if opts.EfficacyChoice == "" {
		opts.EfficacyChoice = EfficacyRedcost
	}
	if opts.MaxPriceRounds == 0 {
		opts.MaxPriceRounds = DefaultMaxPriceRounds
	}
	if opts.UseColpool == nil {
		opts.UseColpool = ptr.To(true)
	}
	if opts.UsePriceStore == nil {
		opts.UsePriceStore = ptr.To(true)
	}
}
