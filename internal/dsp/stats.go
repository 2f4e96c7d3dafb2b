package dsp

import (
	"math"
	"slices"
)

// Median returns the median of values, averaging the two middle elements for even lengths.
// It returns NaN for an empty input. values is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}

// FillGaps replaces NaN entries by linear interpolation between the nearest valid neighbours.
// Leading and trailing gaps take the value of the closest valid entry.
// It returns false when no entry is valid. values is modified in place.
func FillGaps(values []float64) bool {
	prev := -1

	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}

		switch {
		case prev < 0:
			for j := range i {
				values[j] = v
			}
		case i-prev > 1:
			from := values[prev]
			span := float64(i - prev)

			for j := prev + 1; j < i; j++ {
				values[j] = from + (v-from)*float64(j-prev)/span
			}
		}

		prev = i
	}

	if prev < 0 {
		return false
	}

	for j := prev + 1; j < len(values); j++ {
		values[j] = values[prev]
	}

	return true
}

// LocalMaxima marks entries strictly greater than their left neighbour and greater or equal to their right one.
// The first entry is never a maximum, the last one only needs to beat its left neighbour.
func LocalMaxima(values []float64) []bool {
	maxima := make([]bool, len(values))

	for i, v := range values {
		left := i > 0 && v > values[i-1]
		right := i == len(values)-1 || v >= values[i+1]
		maxima[i] = left && right
	}

	return maxima
}
