package analysis

import (
	"math"
	"strings"
	"testing"
)

func TestConfidenceIntervalKnownSample(t *testing.T) {
	ci, ok := ConfidenceInterval(100, 20, 12, DefaultAlpha)
	if !ok {
		t.Fatalf("expected CI to be defined")
	}
	if !almostEqual(ci.TCrit, 2.200985, 1e-5) {
		t.Fatalf("t crit = %f, want 2.200985", ci.TCrit)
	}
	if !almostEqual(ci.HalfWidth, 12.7074, 1e-3) {
		t.Fatalf("half width = %f, want ~12.707", ci.HalfWidth)
	}
	if !almostEqual(ci.Lower, 87.29, 1e-2) || !almostEqual(ci.Upper, 112.71, 1e-2) {
		t.Fatalf("CI = [%f, %f], want ~[87.29, 112.71]", ci.Lower, ci.Upper)
	}
	if !almostEqual(ci.Level, 0.95, 1e-12) {
		t.Fatalf("level = %f", ci.Level)
	}
}

func TestConfidenceIntervalUndefined(t *testing.T) {
	for _, tt := range []struct {
		n     int
		alpha float64
	}{{1, 0.05}, {0, 0.05}, {10, 0}, {10, 1}} {
		if _, ok := ConfidenceInterval(1, 1, tt.n, tt.alpha); ok {
			t.Errorf("ConfidenceInterval(n=%d, alpha=%v) should be undefined", tt.n, tt.alpha)
		}
	}
}

func TestTQuantile(t *testing.T) {
	tests := []struct {
		p    float64
		df   int
		want float64
	}{
		{0.975, 1, 12.7062},
		{0.975, 5, 2.5706},
		{0.975, 11, 2.2010},
		{0.95, 11, 1.7959},
		{0.975, 1000, 1.9623},
		{0.5, 7, 0},
	}
	for _, tt := range tests {
		if got := TQuantile(tt.p, tt.df); !almostEqual(got, tt.want, 1e-3) {
			t.Errorf("TQuantile(%v, %d) = %f, want %f", tt.p, tt.df, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{5, 1, 4, math.NaN(), 2, 3}, DefaultAlpha)
	if s.Count != 5 || s.Missing != 1 {
		t.Fatalf("count = %d missing = %d", s.Count, s.Missing)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"mean", s.Mean, 3},
		{"std", s.Std, math.Sqrt(2.5)},
		{"min", s.Min, 1},
		{"q1", s.Q1, 2},
		{"median", s.Median, 3},
		{"q3", s.Q3, 4},
		{"max", s.Max, 5},
	}
	for _, c := range checks {
		if !almostEqual(c.got, c.want, 1e-9) {
			t.Errorf("%s = %f, want %f", c.name, c.got, c.want)
		}
	}
	if s.CI == nil {
		t.Fatalf("CI missing")
	}
	want := 2.776445 * math.Sqrt(2.5) / math.Sqrt(5)
	if !almostEqual(s.CI.HalfWidth, want, 1e-4) {
		t.Fatalf("half width = %f, want %f", s.CI.HalfWidth, want)
	}
}

func TestDescribeSmallSamples(t *testing.T) {
	one := Describe([]float64{7}, DefaultAlpha)
	if one.Count != 1 || one.Mean != 7 || one.Std != 0 || one.CI != nil {
		t.Fatalf("single value summary = %+v", one)
	}
	none := Describe(nil, DefaultAlpha)
	if none.Count != 0 || !math.IsNaN(none.Mean) || none.CI != nil {
		t.Fatalf("empty summary = %+v", none)
	}
}

func TestQuantileInterpolates(t *testing.T) {
	xs := []float64{10, 20, 30, 40}
	if got := quantile(xs, 0.25); !almostEqual(got, 17.5, 1e-12) {
		t.Fatalf("q1 = %f, want 17.5", got)
	}
	if got := quantile(xs, 0.5); !almostEqual(got, 25, 1e-12) {
		t.Fatalf("median = %f, want 25", got)
	}
}

type subject struct {
	sex string
	auc float64
}

func TestGroupByAndDescribeBy(t *testing.T) {
	items := []subject{{"M", 10}, {"F", 20}, {"M", 30}, {"F", 40}, {"M", 50}}
	groups := GroupBy(items, func(s subject) string { return s.sex })
	if len(groups) != 2 || groups[0].Key != "F" || groups[1].Key != "M" {
		t.Fatalf("groups = %+v", groups)
	}
	if len(groups[1].Items) != 3 || groups[1].Items[0].auc != 10 || groups[1].Items[2].auc != 50 {
		t.Fatalf("M items = %+v", groups[1].Items)
	}

	sums := DescribeBy(items, func(s subject) string { return s.sex }, func(s subject) float64 { return s.auc }, DefaultAlpha)
	if len(sums) != 2 {
		t.Fatalf("summaries = %d", len(sums))
	}
	if sums[0].Key != "F" || sums[0].Count != 2 || sums[0].Mean != 30 {
		t.Fatalf("F summary = %+v", sums[0])
	}
	if sums[1].Key != "M" || sums[1].Count != 3 || sums[1].Mean != 30 || sums[1].Median != 30 {
		t.Fatalf("M summary = %+v", sums[1])
	}
}

func TestReportMarkdown(t *testing.T) {
	overall := Describe([]float64{90, 100, 110, 120}, DefaultAlpha)
	rep := &Report{
		Name:       "theoph (built-in) + dm.csv",
		RunID:      "run-1",
		Rows:       8,
		Subjects:   4,
		Alpha:      DefaultAlpha,
		Metric:     "AUC",
		MetricUnit: "mg·h/L",
		GroupKey:   "sex",
		Overall:    overall,
		Groups: []GroupSummary{
			{Key: "F", Summary: Describe([]float64{90, 100}, DefaultAlpha)},
			{Key: "M", Summary: Describe([]float64{110}, DefaultAlpha)},
		},
		Covariates: []Covariate{{
			Name:    "Weight",
			Unit:    "kg",
			Overall: Describe([]float64{60, 70}, DefaultAlpha),
			Groups:  []GroupSummary{{Key: "F", Summary: Describe([]float64{60}, DefaultAlpha)}},
		}},
		SampleHeader: []string{"Subject", "Sex", "AUC"},
		Samples:      [][]string{{"1", "F", "90"}, {"2", "M|X", "110"}},
		Warnings:     []string{"age override for subject 9"},
	}
	md := rep.Markdown()
	for _, want := range []string{
		"[PK SUMMARY]",
		"Dataset: theoph (built-in) + dm.csv",
		"Run: run-1",
		"Subjects: 4",
		"Metric: AUC [mg·h/L]",
		"Confidence: 95% two-sided",
		"[AUC]\n- all (n=4): mean 105",
		"[AUC BY SEX]",
		"- sex=F (n=2)",
		"- sex=M (n=1): mean 110",
		"CI undefined (n<2)",
		"[COVARIATES BY SEX]",
		"- Weight [kg]: n=2",
		"  • sex=F (n=1)",
		"[SUBJECTS]",
		"| Subject | Sex | AUC |",
		"| 2 | M/X | 110 |",
		"[NOTES]\n- age override for subject 9",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
