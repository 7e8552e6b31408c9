package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Median returns the middle value of values, or the mean of the two middle
// values for an even count. ok is false for an empty slice.
// stat.Quantile(0.5, stat.Empirical, ...) picks the lower middle value
// instead, so the even case is computed here.
func Median(values []float64) (median float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := sortedCopy(values)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2, true
	}
	return sorted[n/2], true
}

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// SampleStdDev returns the sample standard deviation (n-1 denominator).
// It is undefined for fewer than two values.
func SampleStdDev(values []float64) (std float64, ok bool) {
	if len(values) < 2 {
		return 0, false
	}
	return stat.StdDev(values, nil), true
}

// Quantile returns the p-quantile using inclusive linear interpolation
// between closest ranks (index = p*(n-1)). ok is false for an empty slice.
// gonum's stat.LinInterp interpolates on p*n, which gives different
// quartiles for small peer groups.
func Quantile(values []float64, p float64) (q float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := sortedCopy(values)
	n := len(sorted)
	if p <= 0 {
		return sorted[0], true
	}
	if p >= 1 {
		return sorted[n-1], true
	}

	index := p * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower], true
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight, true
}

// ZScore standardizes value against center and spread. It is undefined when
// spread is zero, NaN or infinite.
func ZScore(value, center, spread float64) (z float64, ok bool) {
	if spread == 0 || math.IsNaN(spread) || math.IsInf(spread, 0) {
		return 0, false
	}
	z = (value - center) / spread
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, false
	}
	return z, true
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}
