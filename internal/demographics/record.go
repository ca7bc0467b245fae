// Package demographics loads and cleans the per-subject demographic supplement.
package demographics

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/pkloom-cli/internal/dataset"
	"github.com/KaramelBytes/pkloom-cli/internal/tabular"
)

// ErrDuplicateSubject is returned when a subject appears more than once.
var ErrDuplicateSubject = errors.New("duplicate subject")

// Record is one subject's demographics. Sex and AgeYears are set by Clean.
type Record struct {
	Subject  string
	Sex      string
	AgeRaw   string
	AgeYears float64
	// Override is the reason of the data-quality override applied to the age, if any.
	Override string
}

// Load reads SUBJECT, SEX and Age columns from a CSV/TSV/XLSX file.
func Load(path string, opt tabular.Options) ([]Record, error) {
	t, err := tabular.ReadFile(path, opt)
	if err != nil {
		return nil, err
	}
	return FromTable(t)
}

// FromTable extracts raw records; values are not normalized yet.
func FromTable(t *tabular.Table) ([]Record, error) {
	si, err := t.Lookup("SUBJECT", "subject_id")
	if err != nil {
		return nil, err
	}
	xi, err := t.Lookup("SEX")
	if err != nil {
		return nil, err
	}
	ai, err := t.Lookup("Age", "age_raw")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]int, len(t.Rows))
	out := make([]Record, 0, len(t.Rows))
	for r, row := range t.Rows {
		key := dataset.SubjectKey(row[si])
		if key == "" {
			return nil, fmt.Errorf("%s row %d: empty subject", t.Name, r+1)
		}
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("%s row %d: %w %s (first at row %d)", t.Name, r+1, ErrDuplicateSubject, key, prev)
		}
		seen[key] = r + 1
		out = append(out, Record{Subject: key, Sex: row[xi], AgeRaw: row[ai]})
	}
	return out, nil
}
