package zeta

import (
	"math"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GetZetaPOne is GetZetaP for a single observed maximum.
func GetZetaPOne(maxD float64, nullMaxima []float64, directQuantile bool) (float64, float64) {
	p, z := GetZetaP([]float64{maxD}, nullMaxima, directQuantile)
	return p[0], z[0]
}

// GetZetaP expresses each observed maximum deviation as a p-value and z-score
// against the resampled null maxima, either by empirical quantile or by a
// Gumbel fit of the null maxima.
func GetZetaP(maxD []float64, nullMaxima []float64, directQuantile bool) ([]float64, []float64) {
	sortedNull := make([]float64, 0, len(nullMaxima))
	for _, v := range nullMaxima {
		if !math.IsNaN(v) {
			sortedNull = append(sortedNull, v)
		}
	}
	sortedNull = uniqueSorted(sortedNull)

	if len(sortedNull) == 0 {
		p, z := make([]float64, len(maxD)), make([]float64, len(maxD))
		for i := range p {
			p[i] = 1
		}
		return p, z
	}

	if directQuantile {
		return getQuantileP(maxD, sortedNull)
	}

	mean, variance := popMeanVariance(sortedNull)
	return GetGumbel(mean, variance, maxD)
}

// sortedNull must be sorted, unique and not empty.
func getQuantileP(maxD []float64, sortedNull []float64) ([]float64, []float64) {
	n := len(sortedNull)

	var rank interp.PiecewiseLinear
	if n > 1 {
		ranks := make([]float64, n)
		for i := range ranks {
			ranks[i] = float64(i + 1)
		}
		// sortedNull is strictly increasing, Fit cannot fail
		_ = rank.Fit(sortedNull, ranks)
	}

	p, z := make([]float64, len(maxD)), make([]float64, len(maxD))
	for i, d := range maxD {
		var value float64
		switch {
		case math.IsNaN(d) || d < sortedNull[0]:
			value = 0
		case d > sortedNull[n-1] || math.IsInf(d, 1):
			value = float64(n)
		case n == 1:
			value = 1
		default:
			value = rank.Predict(d)
		}
		p[i] = 1 - value/float64(1+n)
		z[i] = pToZ(p[i])
	}
	return p, z
}

// GetGumbel returns p-values and z-scores of x under the Gumbel distribution
// of the maximum of Gaussian samples, fitted from the given mean and variance
// of that maximum.
func GetGumbel(mean, variance float64, x []float64) ([]float64, []float64) {
	beta := math.Sqrt(6*variance) / math.Pi
	mode := mean - beta*EulerMascheroni
	gumbel := distuv.GumbelRight{Mu: mode, Beta: beta}

	p, z := make([]float64, len(x)), make([]float64, len(x))
	if !(beta > 0) {
		// degenerate null, all maxima at the mode: a step at the mode
		for i := range x {
			p[i] = 1
			if x[i] > mode {
				p[i] = 0
			}
			z[i] = pToZ(p[i])
		}
		return p, z
	}
	for i := range x {
		p[i] = 1 - gumbel.CDF(x[i])
		z[i] = pToZ(p[i])

		// cdf saturates at 1 for large x, use the tail approximation
		if math.IsInf(z[i], 0) {
			p[i] = math.Exp((mode - x[i]) / beta)
			z[i] = pToZ(p[i])
		}
	}
	return p, z
}

// pToZ converts a two-sided p-value into a z-score.
func pToZ(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return math.NaN()
	case p <= 0:
		return math.Inf(1)
	case p > 1:
		p = 1
	}
	// 0 - q keeps p == 1 at +0
	return 0 - distuv.UnitNormal.Quantile(p/2)
}

// popMeanVariance returns the mean and the population (1/n) variance.
func popMeanVariance(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	mean, variance := stat.MeanVariance(x, nil)
	n := float64(len(x))
	return mean, variance * (n - 1) / n
}
