package spc

import "sort"

// ParetoResult ranks categories by frequency with a running percentage
type ParetoResult struct {
	Labels     []any     `json:"labels"`
	Counts     []int     `json:"counts"`
	Cumulative []float64 `json:"cumulative"`
}

// Pareto counts the distinct non-missing values of column, most frequent
// first. Equal counts keep the order in which the values first appear.
// The final cumulative percentage is exactly 100.
func Pareto(t Table, column string) ParetoResult {
	type bucket struct {
		label any
		count int
	}

	index := make(map[string]int)
	var buckets []bucket
	for _, row := range t {
		v, ok := row[column]
		if !ok {
			continue
		}
		key, ok := categoryKey(v)
		if !ok {
			continue
		}
		if i, seen := index[key]; seen {
			buckets[i].count++
			continue
		}
		index[key] = len(buckets)
		buckets = append(buckets, bucket{label: v, count: 1})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].count > buckets[j].count
	})

	res := ParetoResult{
		Labels:     make([]any, len(buckets)),
		Counts:     make([]int, len(buckets)),
		Cumulative: make([]float64, len(buckets)),
	}
	total := 0
	for _, b := range buckets {
		total += b.count
	}
	running := 0
	for i, b := range buckets {
		running += b.count
		res.Labels[i] = b.label
		res.Counts[i] = b.count
		res.Cumulative[i] = float64(running) / float64(total) * 100
	}
	if n := len(buckets); n > 0 {
		res.Cumulative[n-1] = 100
	}
	return res
}
