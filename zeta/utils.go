package zeta

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

func linspace(start, stop float64, num int) []float64 {
	if num < 1 {
		return []float64{}
	}
	if num < 2 {
		return []float64{start}
	}
	step := (stop - start) / float64(num-1)
	grid := make([]float64, num)
	for i := 0; i < num; i++ {
		grid[i] = start + float64(i)*step
	}
	grid[num-1] = stop
	return grid
}

// firstAtLeast returns the index of the first sorted value >= x, len(sorted) if none.
func firstAtLeast(sorted []float64, x float64) int {
	return sort.SearchFloat64s(sorted, x)
}

// firstAbove returns the index of the first sorted value > x, len(sorted) if none.
func firstAbove(sorted []float64, x float64) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] > x })
}

// uniqueSorted sorts in place and drops exact repeats.
func uniqueSorted(values []float64) []float64 {
	sort.Float64s(values)
	res := values[:0]
	for i, v := range values {
		if i == 0 || v != res[len(res)-1] {
			res = append(res, v)
		}
	}
	return res
}

func meanCenter(values []float64) {
	if len(values) == 0 {
		return
	}
	floats.AddConst(-floats.Sum(values)/float64(len(values)), values)
}
