package utils

import (
	"math"
	"sort"
)

// FormatFloat rounds f to the given number of decimals.
func FormatFloat(f float64, round int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	scale := math.Pow(10, float64(round))
	return math.Round(f*scale) / scale
}

func AllFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SortedCopy returns a sorted copy, the input is left untouched.
func SortedCopy(values []float64) []float64 {
	res := make([]float64, len(values))
	copy(res, values)
	sort.Float64s(res)
	return res
}
