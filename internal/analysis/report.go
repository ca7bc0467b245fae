package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Covariate is a descriptive summary of one input variable by group.
type Covariate struct {
	Name    string
	Unit    string
	Overall Summary
	Groups  []GroupSummary
}

// Report is a markdown-friendly summary of one pipeline run.
type Report struct {
	Name     string
	RunID    string
	Rows     int
	Subjects int
	Alpha    float64
	// Metric labels the summarized value, e.g. "AUC".
	Metric     string
	MetricUnit string
	GroupKey   string
	Overall    Summary
	Groups     []GroupSummary
	Covariates []Covariate
	// SampleHeader and Samples form the per-subject table.
	SampleHeader []string
	Samples      [][]string
	Warnings     []string
}

// Markdown renders the report in bracketed sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[PK SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Dataset: %s\n", r.Name))
	}
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	}
	b.WriteString(fmt.Sprintf("Observations: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Subjects: %d\n", r.Subjects))
	metric := r.metricLabel()
	b.WriteString(fmt.Sprintf("Metric: %s (trapezoidal rule)\n", metric))
	b.WriteString(fmt.Sprintf("Confidence: %s two-sided, Student's t with n-1 df\n", levelPct(1-r.Alpha)))

	b.WriteString(fmt.Sprintf("\n[%s]\n", strings.ToUpper(r.Metric)))
	writeSummary(&b, "- ", "all", r.Overall)

	if len(r.Groups) > 0 {
		b.WriteString(fmt.Sprintf("\n[%s BY %s]\n", strings.ToUpper(r.Metric), strings.ToUpper(r.GroupKey)))
		for _, g := range r.Groups {
			writeSummary(&b, "- ", fmt.Sprintf("%s=%s", r.GroupKey, g.Key), g.Summary)
		}
	}

	if len(r.Covariates) > 0 {
		b.WriteString(fmt.Sprintf("\n[COVARIATES BY %s]\n", strings.ToUpper(r.GroupKey)))
		for _, c := range r.Covariates {
			name := c.Name
			if c.Unit != "" {
				name = fmt.Sprintf("%s [%s]", c.Name, c.Unit)
			}
			b.WriteString(fmt.Sprintf("- %s: n=%d, mean %.4g, std %.4g, min %.4g, max %.4g\n",
				name, c.Overall.Count, c.Overall.Mean, c.Overall.Std, c.Overall.Min, c.Overall.Max))
			for _, g := range c.Groups {
				b.WriteString(fmt.Sprintf("  • %s=%s (n=%d): mean %.4g, std %.4g, median %.4g (IQR %.4g–%.4g)\n",
					r.GroupKey, g.Key, g.Count, g.Mean, g.Std, g.Median, g.Q1, g.Q3))
			}
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[SUBJECTS]\n")
		b.WriteString("| " + strings.Join(r.SampleHeader, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(r.SampleHeader)) + "\n")
		for _, row := range r.Samples {
			cells := make([]string, len(r.SampleHeader))
			for i := range cells {
				if i < len(row) {
					cells[i] = safeVal(row[i])
				}
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (r *Report) metricLabel() string {
	if r.MetricUnit == "" {
		return r.Metric
	}
	return fmt.Sprintf("%s [%s]", r.Metric, r.MetricUnit)
}

func writeSummary(b *strings.Builder, prefix, label string, s Summary) {
	b.WriteString(fmt.Sprintf("%s%s (n=%d", prefix, label, s.Count))
	if s.Missing > 0 {
		b.WriteString(fmt.Sprintf(", missing %d", s.Missing))
	}
	b.WriteString(")")
	if s.Count == 0 {
		b.WriteString(": no values\n")
		return
	}
	b.WriteString(fmt.Sprintf(": mean %.4g, std %.4g, min %.4g, q1 %.4g, median %.4g, q3 %.4g, max %.4g",
		s.Mean, s.Std, s.Min, s.Q1, s.Median, s.Q3, s.Max))
	if s.CI != nil {
		b.WriteString(fmt.Sprintf("; %s CI [%.4g, %.4g] (t=%.3f, ±%.4g)",
			levelPct(s.CI.Level), s.CI.Lower, s.CI.Upper, s.CI.TCrit, s.CI.HalfWidth))
	} else {
		b.WriteString("; CI undefined (n<2)")
	}
	b.WriteString("\n")
}

func levelPct(level float64) string {
	pct := level * 100
	if math.Abs(pct-math.Round(pct)) < 1e-9 {
		return fmt.Sprintf("%.0f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
