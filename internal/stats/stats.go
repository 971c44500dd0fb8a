// Package stats implements the null-safe numeric helpers shared by the
// query executor, comparator, and analyzer. No function here panics or
// returns NaN/Inf; degenerate computations report ok=false or nil.
package stats

import (
	"math"
	"sort"
)

// Compact drops nil entries, returning the concrete values.
func Compact(vals []*float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Sum returns the total of vals; ok is false for empty input.
func Sum(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return sanitizeOK(total)
}

// Mean returns the arithmetic mean; ok is false for empty input.
func Mean(vals []float64) (float64, bool) {
	total, ok := Sum(vals)
	if !ok {
		return 0, false
	}
	return sanitizeOK(total / float64(len(vals)))
}

// Median returns the middle value (average of the two middles for even
// counts); ok is false for empty input.
func Median(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sanitizeOK(sorted[mid])
	}
	return sanitizeOK((sorted[mid-1] + sorted[mid]) / 2)
}

// Std returns the sample standard deviation (n-1 denominator); ok is
// false for fewer than two values.
func Std(vals []float64) (float64, bool) {
	if len(vals) < 2 {
		return 0, false
	}
	mean, ok := Mean(vals)
	if !ok {
		return 0, false
	}
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return sanitizeOK(math.Sqrt(ss / float64(len(vals)-1)))
}

// StdP returns the population standard deviation (n denominator); ok
// is false for empty input.
func StdP(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	mean, ok := Mean(vals)
	if !ok {
		return 0, false
	}
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return sanitizeOK(math.Sqrt(ss / float64(len(vals))))
}

// Min returns the smallest value; ok is false for empty input.
func Min(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m, true
}

// Max returns the largest value; ok is false for empty input.
func Max(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m, true
}

// Round rounds to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Sanitize converts NaN and infinities to nil so floating-point
// sentinels never reach serialized output.
func Sanitize(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// PercentChange returns 100*(new-old)/old, nil exactly when old is 0.
func PercentChange(old, new float64) *float64 {
	if old == 0 {
		return nil
	}
	return Sanitize((new - old) / old * 100)
}

// Pearson returns the Pearson correlation coefficient of two
// equal-length series; ok is false for fewer than two pairs or when
// either side is constant.
func Pearson(x, y []float64) (float64, bool) {
	n := len(x)
	if n != len(y) || n < 2 {
		return 0, false
	}
	mx, _ := Mean(x)
	my, _ := Mean(y)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sanitizeOK(sxy / math.Sqrt(sxx*syy))
}

// Spearman returns the Spearman rank correlation: Pearson over average
// ranks, so ties receive fractional ranks.
func Spearman(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	return Pearson(ranks(x), ranks(y))
}

// ranks assigns 1-based ranks, averaging over ties.
func ranks(vals []float64) []float64 {
	n := len(vals)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return vals[idx[a]] < vals[idx[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && vals[idx[j+1]] == vals[idx[i]] {
			j++
		}
		avg := float64(i+j+2) / 2 // mean of 1-based ranks i+1..j+1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

func sanitizeOK(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
