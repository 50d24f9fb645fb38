package spc

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// HistogramResult holds bin counts and the len(Counts)+1 bin edges
type HistogramResult struct {
	Counts []int     `json:"counts"`
	Bins   []float64 `json:"bins"`
}

// Histogram bins values with the "auto" rule: the smaller of the
// Freedman-Diaconis and Sturges widths, or Sturges alone when the
// interquartile range is zero. The last bin is closed on the right.
func Histogram(values []float64) HistogramResult {
	if len(values) == 0 {
		return HistogramResult{Counts: []int{}, Bins: []float64{}}
	}

	lo, hi := floats.Min(values), floats.Max(values)
	first, last := lo, hi
	if first == last {
		first -= 0.5
		last += 0.5
	}

	nbins := 1
	if width := autoBinWidth(values, hi-lo); width > 0 {
		nbins = binCount(last-first, width, len(values))
	}

	edges := make([]float64, nbins+1)
	floats.Span(edges, first, last)

	counts := make([]int, nbins)
	norm := float64(nbins) / (last - first)
	for _, v := range values {
		i := int((v - first) * norm)
		if i >= nbins {
			i = nbins - 1
		}
		// the computed index can be off by one at edge boundaries
		if i > 0 && v < edges[i] {
			i--
		} else if i < nbins-1 && v >= edges[i+1] {
			i++
		}
		counts[i]++
	}

	return HistogramResult{Counts: counts, Bins: edges}
}

// binCount converts a bin width into a count. A far outlier can shrink the
// Freedman-Diaconis width to almost nothing; counts above max(n, Sturges)
// fall back to the Sturges count.
func binCount(span, width float64, n int) int {
	sturges := int(math.Ceil(math.Log2(float64(n)))) + 1
	count := math.Ceil(span / width)
	if count > float64(max(n, sturges)) {
		return sturges
	}
	return max(int(count), 1)
}

func autoBinWidth(values []float64, ptp float64) float64 {
	n := float64(len(values))
	sturges := ptp / (math.Log2(n) + 1)

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	iqr := percentile(sorted, 75) - percentile(sorted, 25)
	fd := 2 * iqr * math.Pow(n, -1.0/3)

	if fd > 0 {
		return math.Min(fd, sturges)
	}
	return sturges
}

// percentile uses linear interpolation between closest ranks on sorted data
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := (float64(len(sorted)) - 1) * p / 100
	lo := math.Floor(h)
	i := int(lo)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}
