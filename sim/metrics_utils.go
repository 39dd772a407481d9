// sim/metrics_utils.go
package sim

import (
	"math"
	"strconv"
)

type IntOrFloat64 interface {
	int | int64 | float64
}

// CalculateMean is a util function that calculates the mean of a data list.
// Returns 0 for an empty list.
func CalculateMean[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, number := range numbers {
		sum += float64(number)
	}

	return sum / float64(len(numbers))
}

// CalculatePercentile returns the p-th percentile of data using linear
// interpolation between closest ranks. data must be sorted ascending.
func CalculatePercentile[T IntOrFloat64](data []T, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}

	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))
	if upperIdx >= n {
		return float64(data[n-1])
	}
	if lowerIdx == upperIdx {
		return float64(data[lowerIdx])
	}
	lowerVal := float64(data[lowerIdx])
	upperVal := float64(data[upperIdx])
	return lowerVal + (upperVal-lowerVal)*(rank-float64(lowerIdx))
}

// FormatAverage renders an average rounded to one decimal for display.
func FormatAverage(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
