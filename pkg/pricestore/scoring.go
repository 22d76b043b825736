package pricestore

import (
	"math"

	v1alpha1 "github.com/scipgcg/pricing/pkg/api/v1alpha1"
	"github.com/scipgcg/pricing/pkg/column"
)

// norm2 is the Euclidean norm of a coefficient vector.
func norm2(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// normRedcost computes norm_redcost(col) = −redcost / ‖A_b x‖, where the
// norm is taken over whichever coefficient vector efficacyChoice selects.
func normRedcost(c *column.Column, choice v1alpha1.EfficacyChoice) float64 {
	_, coefs := c.MasterCoefs()
	var denom float64
	switch choice {
	case v1alpha1.EfficacyDual, v1alpha1.EfficacyMastercoef:
		denom = norm2(coefs)
	default: // EfficacyRedcost and unset
		denom = norm2(c.Vals)
	}
	if denom <= column.Tolerance {
		return 0
	}
	return -c.RedCost / denom
}

// cosine is the cosine similarity between two coefficient vectors aligned by
// position (both are master coefficients over the same ordered row list, so
// positional alignment is valid — see Column.ComputeMasterCoefs). Returns 0
// when either norm is 0: an all-zero column is never "maximally orthogonal",
// so a degenerate vector must not spuriously score as 1.
func cosine(a, b []float64) float64 {
	na, nb := norm2(a), norm2(b)
	if na <= column.Tolerance || nb <= column.Tolerance {
		return 0
	}
	var dot float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return dot / (na * nb)
}

// objParallelism is cos(obj, col): the cosine between the block's objective
// coefficients and col's master coefficients, used as the objParalFactor
// term of the score formula.
func objParallelism(c *column.Column, objCoefs []float64) float64 {
	_, coefs := c.MasterCoefs()
	return cosine(objCoefs, coefs)
}

// orthoToPicked returns min_i cos(picked_i, col): the minimum cosine between
// col and every already-picked column, the orthoFactor term of the score
// formula. An empty picked set returns 1 (maximally orthogonal to "nothing"), matching
// the greedy-selection convention that the very first pick always clears any
// mincolorth threshold.
func orthoToPicked(c *column.Column, picked []*column.Column) float64 {
	if len(picked) == 0 {
		return 1
	}
	_, coefs := c.MasterCoefs()
	min := math.Inf(1)
	for _, p := range picked {
		_, pCoefs := p.MasterCoefs()
		cos := cosine(coefs, pCoefs)
		if cos < min {
			min = cos
		}
	}
	return min
}

// Score computes score(col) = redcostfac·norm_redcost(col) +
// objparalfac·cos(obj,col) + orthofac·min_i cos(picked_i,col).
func Score(c *column.Column, weights v1alpha1.ScoreWeights, choice v1alpha1.EfficacyChoice, objCoefs []float64, picked []*column.Column) float64 {
	return weights.RedCostFactor*normRedcost(c, choice) +
		weights.ObjParalFactor*objParallelism(c, objCoefs) +
		weights.OrthoFactor*orthoToPicked(c, picked)
}
