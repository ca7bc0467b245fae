package pk

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/pkloom-cli/internal/merge"
)

// SubjectSummary collapses one subject's rows into a single record.
type SubjectSummary struct {
	Subject     string
	WeightKg    float64
	DoseMgPerKg float64
	// AgeYears is NaN and Sex empty when the subject had no demographics.
	AgeYears float64
	Sex      string
	AUC      float64
	Points   int
	// Insufficient is set when fewer than two points made AUC undefined (AUC is 0).
	Insufficient bool
}

// HasDemographics reports whether sex and age are known.
func (s SubjectSummary) HasDemographics() bool { return s.Sex != "" }

// Summarize returns one summary per distinct subject, in first-seen order.
// Per-subject constant fields are taken from the subject's first row.
func Summarize(rows []merge.Row) []SubjectSummary {
	var order []string
	first := map[string]merge.Row{}
	series := map[string][]Point{}
	for _, r := range rows {
		if _, ok := first[r.Subject]; !ok {
			first[r.Subject] = r
			order = append(order, r.Subject)
		}
		series[r.Subject] = append(series[r.Subject], Point{Time: r.TimeHr, Conc: r.ConcMgPerL})
	}
	out := make([]SubjectSummary, 0, len(order))
	for _, subj := range order {
		r := first[subj]
		s := SubjectSummary{
			Subject:     subj,
			WeightKg:    r.WeightKg,
			DoseMgPerKg: r.DoseMgPerKg,
			AgeYears:    math.NaN(),
			Points:      len(series[subj]),
		}
		if r.Demographics != nil {
			s.AgeYears = r.Demographics.AgeYears
			s.Sex = r.Demographics.Sex
		}
		auc, ok := TrapezoidAUC(series[subj])
		s.AUC = auc
		s.Insufficient = !ok
		out = append(out, s)
	}
	return out
}

// ConstantFieldConflicts describes subjects whose weight or dose vary across
// rows. Summarize keeps the first value; these notes make that visible.
func ConstantFieldConflicts(rows []merge.Row) []string {
	first := map[string]merge.Row{}
	flagged := map[string]bool{}
	var notes []string
	for _, r := range rows {
		f, ok := first[r.Subject]
		if !ok {
			first[r.Subject] = r
			continue
		}
		if flagged[r.Subject] {
			continue
		}
		if f.WeightKg != r.WeightKg || f.DoseMgPerKg != r.DoseMgPerKg {
			flagged[r.Subject] = true
			notes = append(notes, fmt.Sprintf("subject %s: weight/dose vary across rows (%.4g kg, %.4g mg/kg vs %.4g kg, %.4g mg/kg); first value kept",
				r.Subject, f.WeightKg, f.DoseMgPerKg, r.WeightKg, r.DoseMgPerKg))
		}
	}
	return notes
}
