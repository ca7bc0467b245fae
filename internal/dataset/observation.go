// Package dataset loads the clinical concentration-time observations.
package dataset

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/KaramelBytes/pkloom-cli/internal/tabular"
)

//go:embed theoph.csv
var theophCSV []byte

// ReferenceName labels the built-in theophylline dataset in reports.
const ReferenceName = "theoph (built-in)"

// Observation is one concentration measurement of one subject.
type Observation struct {
	Subject     string
	WeightKg    float64
	DoseMgPerKg float64
	TimeHr      float64
	ConcMgPerL  float64
}

// Column aliases accepted for each observation field, first entry is canonical.
var (
	subjectCols = []string{"Subject", "SUBJECT", "subject_id", "id"}
	weightCols  = []string{"Wt", "weight", "weight_kg"}
	doseCols    = []string{"Dose", "dose_mg_per_kg"}
	timeCols    = []string{"Time", "time_hr"}
	concCols    = []string{"conc", "concentration", "concentration_mg_per_l"}
)

// Reference returns the built-in theophylline study: 12 subjects, 11 samples each.
func Reference() ([]Observation, error) {
	t, err := tabular.ParseCSV(ReferenceName, bytes.NewReader(theophCSV), ',')
	if err != nil {
		return nil, err
	}
	return FromTable(t)
}

// LoadObservations reads observations from an external CSV/TSV/XLSX file with
// the same columns as the reference dataset.
func LoadObservations(path string, opt tabular.Options) ([]Observation, error) {
	t, err := tabular.ReadFile(path, opt)
	if err != nil {
		return nil, err
	}
	return FromTable(t)
}

// FromTable converts a table into observations. Only column presence and
// numeric cells are validated.
func FromTable(t *tabular.Table) ([]Observation, error) {
	var idx [5]int
	for i, aliases := range [][]string{subjectCols, weightCols, doseCols, timeCols, concCols} {
		j, err := t.Lookup(aliases...)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}
	out := make([]Observation, 0, len(t.Rows))
	for r, row := range t.Rows {
		o := Observation{Subject: SubjectKey(row[idx[0]])}
		if o.Subject == "" {
			return nil, fmt.Errorf("%s row %d: empty subject", t.Name, r+1)
		}
		for k, dst := range []*float64{&o.WeightKg, &o.DoseMgPerKg, &o.TimeHr, &o.ConcMgPerL} {
			v, ok := tabular.ParseNumber(row[idx[k+1]])
			if !ok {
				return nil, fmt.Errorf("%s row %d: column %s: not a number: %q", t.Name, r+1, t.Header[idx[k+1]], row[idx[k+1]])
			}
			*dst = v
		}
		out = append(out, o)
	}
	return out, nil
}

// Subjects returns the distinct subject keys in first-seen order.
func Subjects(obs []Observation) []string {
	seen := make(map[string]struct{}, len(obs))
	var out []string
	for _, o := range obs {
		if _, ok := seen[o.Subject]; ok {
			continue
		}
		seen[o.Subject] = struct{}{}
		out = append(out, o.Subject)
	}
	return out
}
