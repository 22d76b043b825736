// Package v1alpha1 holds the pricing subsystem's configuration types: a
// defaults.go / validation.go pair around a flat struct, with no CRD/
// apiserver machinery (metav1.TypeMeta, genclient markers, scheme
// registration) since this
// module is a library embedded in a solver process, not a Kubernetes
// controller, so there is no API server to register types with. See
// DESIGN.md for the full justification.
package v1alpha1

// EfficacyChoice selects which norm PriceStore uses to turn a reduced cost
// into a dimensionless efficacy score.
type EfficacyChoice string

const (
	EfficacyDual       EfficacyChoice = "DUAL"
	EfficacyRedcost    EfficacyChoice = "REDCOST"
	EfficacyMastercoef EfficacyChoice = "MASTERCOEF"
)

// SortingMode selects the PricingJob scoring formula.
type SortingMode string

const (
	SortIndex       SortingMode = "i"
	SortDual        SortingMode = "d"
	SortReliability SortingMode = "r"
	SortLastRound   SortingMode = "l"
)

// ScoreWeights are the PriceStore scoring weights used in the score(col)
// formula. Unlike a cost/disruption/
// balance, which must sum to 1 for a convex combination of normalized
// objectives) these three need not sum to 1: they weight three differently
// scaled terms (a normalized reduced cost, a cosine, a cosine), so only
// non-negativity is required. See Validate.
type ScoreWeights struct {
	RedCostFactor  float64 `json:"redcostfac" yaml:"redcostfac"`
	ObjParalFactor float64 `json:"objparalfac" yaml:"objparalfac"`
	OrthoFactor    float64 `json:"orthofac" yaml:"orthofac"`
}

// ColumnCaps are the per-round column injection caps.
type ColumnCaps struct {
	MaxColsRoot   int `json:"maxcolsroot" yaml:"maxcolsroot"`
	MaxCols       int `json:"maxcols" yaml:"maxcols"`
	MaxColsFarkas int `json:"maxcolsfarkas" yaml:"maxcolsfarkas"`
}

// Options is the single flat configuration struct for the whole pricing
// loop. No global mutable state: every pricing component that needs a
// configuration value receives it explicitly at construction time.
type Options struct {
	// HeurPricingIters caps heuristic iterations per (problem, call) before
	// escalation to an exact solver.
	HeurPricingIters int `json:"heurpricingiters" yaml:"heurpricingiters"`

	// Sorting selects the PricingJob scoring formula.
	Sorting SortingMode `json:"sorting" yaml:"sorting"`

	// NRoundsCol is the window length for "recent improving columns" scoring.
	NRoundsCol int `json:"nroundscol" yaml:"nroundscol"`

	// RelMaxSuccessfulProbs is the fraction of blocks that must succeed
	// before the controller allows abort.
	RelMaxSuccessfulProbs float64 `json:"relmaxsuccessfulprobs" yaml:"relmaxsuccessfulprobs"`

	// ChunkSize is the max blocks solved per chunk before re-checking abort.
	ChunkSize int `json:"chunksize" yaml:"chunksize"`

	// EagerFreq: every N rounds, all blocks are solved regardless of abort.
	EagerFreq int `json:"eagerfreq" yaml:"eagerfreq"`

	// JobTimeLimit is the per-job wall-clock cap, in seconds.
	JobTimeLimit float64 `json:"jobtimelimit" yaml:"jobtimelimit"`

	// AgeLimit is the ColumnPool eviction age; -1 disables eviction.
	AgeLimit int `json:"agelimit" yaml:"agelimit"`

	Weights ScoreWeights `json:"weights" yaml:"weights"`

	// MinColOrth is the minimum pairwise orthogonality PriceStore requires
	// between a candidate column and every already-picked column.
	MinColOrth float64 `json:"mincolorth" yaml:"mincolorth"`

	Caps ColumnCaps `json:"caps" yaml:"caps"`

	EfficacyChoice EfficacyChoice `json:"efficacyChoice" yaml:"efficacyChoice"`

	// UseColpool: whether to archive non-improving columns for later reuse.
	// A *bool (rather than bool) so SetDefaults can tell "unset" apart from
	// an explicit false.
	UseColpool *bool `json:"useColpool" yaml:"useColpool"`

	// UsePriceStore: whether to stage columns at all before master
	// injection. If false, columns go straight to the master. Same *bool
	// rationale as UseColpool.
	UsePriceStore *bool `json:"usePriceStore" yaml:"usePriceStore"`

	// MaxPriceRounds bounds the number of pricing rounds; -1 is unbounded.
	MaxPriceRounds int `json:"maxpricerounds" yaml:"maxpricerounds"`
}
