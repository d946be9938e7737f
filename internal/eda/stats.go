// ABOUTME: Descriptive statistics over nullable numeric columns.
// ABOUTME: Histograms, quantiles, describe summaries and pairwise Pearson correlation.
package eda

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo    float64 `json:"lo" yaml:"lo"`
	Hi    float64 `json:"hi" yaml:"hi"`
	Count int     `json:"count" yaml:"count"`
}

// Histogram buckets values into n equal-width bins spanning their range.
// The maximum falls into the last bin. Constant input yields one bin.
func Histogram(values []float64, n int) []Bin {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lo = lo + float64(i)*width
		bins[i].Hi = lo + float64(i+1)*width
	}
	bins[n-1].Hi = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		bins[i].Count++
	}
	return bins
}

// Describe mirrors the usual count/mean/std/min/quartiles/max summary.
// Std is the sample standard deviation and is 0 for fewer than two values.
type Describe struct {
	Count int     `json:"count" yaml:"count"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Std   float64 `json:"std" yaml:"std"`
	Min   float64 `json:"min" yaml:"min"`
	P25   float64 `json:"p25" yaml:"p25"`
	P50   float64 `json:"p50" yaml:"p50"`
	P75   float64 `json:"p75" yaml:"p75"`
	Max   float64 `json:"max" yaml:"max"`
}

// Summarize computes Describe for values. Empty input gives a zero summary.
func Summarize(values []float64) Describe {
	if len(values) == 0 {
		return Describe{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	d := Describe{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Min:   sorted[0],
		P25:   Quantile(sorted, 0.25),
		P50:   Quantile(sorted, 0.5),
		P75:   Quantile(sorted, 0.75),
		Max:   sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		d.Std = stat.StdDev(sorted, nil)
	}
	return d
}

// FiveNumber is the box-plot summary of a column.
type FiveNumber struct {
	Min    float64 `json:"min" yaml:"min"`
	Q1     float64 `json:"q1" yaml:"q1"`
	Median float64 `json:"median" yaml:"median"`
	Q3     float64 `json:"q3" yaml:"q3"`
	Max    float64 `json:"max" yaml:"max"`
}

// FiveNumber returns the box-plot view of a Describe.
func (d Describe) FiveNumber() FiveNumber {
	return FiveNumber{Min: d.Min, Q1: d.P25, Median: d.P50, Q3: d.P75, Max: d.Max}
}

// Quantile returns the p-quantile of sorted values using linear
// interpolation between closest ranks.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Pearson returns the correlation of x and y over the pairs where both are
// present, and the number of such pairs. It is nil for fewer than two pairs
// or when either side is constant.
func Pearson(x, y []*float64) (*float64, int) {
	var xs, ys []float64
	for i := range x {
		if i >= len(y) || x[i] == nil || y[i] == nil {
			continue
		}
		xs = append(xs, *x[i])
		ys = append(ys, *y[i])
	}
	if len(xs) < 2 {
		return nil, len(xs)
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, len(xs)
	}
	return &r, len(xs)
}

// present drops nil entries.
func present(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil && !math.IsNaN(*v) {
			out = append(out, *v)
		}
	}
	return out
}
