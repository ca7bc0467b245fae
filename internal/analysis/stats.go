// Package analysis computes descriptive statistics, t-based confidence
// intervals and grouped summaries, and renders them as a text report.
package analysis

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// DefaultAlpha gives 95% confidence intervals.
const DefaultAlpha = 0.05

// Interval is a two-sided confidence interval for a mean.
type Interval struct {
	Level     float64 // 1 - alpha
	Lower     float64
	Upper     float64
	HalfWidth float64
	TCrit     float64 // t quantile at 1-alpha/2 with n-1 degrees of freedom
}

// Summary describes one numeric sample. Quantiles use linear interpolation
// between order statistics. CI is nil when fewer than two values are present.
type Summary struct {
	Count   int
	Missing int
	Mean    float64
	Std     float64
	Min     float64
	Q1      float64
	Median  float64
	Q3      float64
	Max     float64
	CI      *Interval
}

// Describe summarizes values. NaN entries count as missing.
func Describe(values []float64, alpha float64) Summary {
	xs := make([]float64, 0, len(values))
	var s Summary
	for _, v := range values {
		if math.IsNaN(v) {
			s.Missing++
			continue
		}
		xs = append(xs, v)
	}
	s.Count = len(xs)
	if s.Count == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q1, s.Median, s.Q3, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	sort.Float64s(xs)
	sample := stats.Sample{Xs: xs, Sorted: true}
	s.Mean = sample.Mean()
	if s.Count > 1 {
		s.Std = sample.StdDev()
	}
	s.Min = xs[0]
	s.Max = xs[len(xs)-1]
	s.Q1 = quantile(xs, 0.25)
	s.Median = quantile(xs, 0.5)
	s.Q3 = quantile(xs, 0.75)
	if ci, ok := ConfidenceInterval(s.Mean, s.Std, s.Count, alpha); ok {
		s.CI = &ci
	}
	return s
}

// ConfidenceInterval returns mean ± t(1-alpha/2, n-1) · sd/√n. It is not
// defined for n < 2 or alpha outside (0, 1).
func ConfidenceInterval(mean, sd float64, n int, alpha float64) (Interval, bool) {
	if n < 2 || !(alpha > 0 && alpha < 1) || math.IsNaN(sd) {
		return Interval{}, false
	}
	t := TQuantile(1-alpha/2, n-1)
	hw := t * sd / math.Sqrt(float64(n))
	return Interval{
		Level:     1 - alpha,
		Lower:     mean - hw,
		Upper:     mean + hw,
		HalfWidth: hw,
		TCrit:     t,
	}, true
}

// TQuantile is the inverse CDF of Student's t distribution with df degrees of freedom.
func TQuantile(p float64, df int) float64 {
	return stats.InvCDF(stats.TDist{V: float64(df)})(p)
}

// quantile interpolates linearly on sorted data (the default of most
// statistics packages, "type 7").
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
