package metrics

import (
	"slices"
	"time"
)

// mean returns nil for an empty slice.
func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

// median returns nil for an empty slice. values is not modified.
func median(values []float64) *float64 {
	n := len(values)
	if n == 0 {
		return nil
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var m float64
	if n%2 != 0 {
		m = sorted[n/2]
	} else {
		m = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return &m
}

func hoursBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours()
}
