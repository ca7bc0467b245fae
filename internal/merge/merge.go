// Package merge attaches subject demographics to clinical observations.
package merge

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/pkloom-cli/internal/dataset"
	"github.com/KaramelBytes/pkloom-cli/internal/demographics"
)

// Row is an observation enriched with its subject's demographics.
// Demographics is nil when the subject has no demographic record.
type Row struct {
	dataset.Observation
	Demographics *demographics.Record
}

// Matched reports whether the row found a demographic record.
func (r Row) Matched() bool { return r.Demographics != nil }

// LeftJoin returns one Row per observation, in input order. Both sides must
// already carry canonical subject keys. Unmatched observations are kept with
// nil demographics; only duplicate demographic keys are an error.
func LeftJoin(obs []dataset.Observation, demo []demographics.Record) ([]Row, error) {
	bySubject := make(map[string]*demographics.Record, len(demo))
	for i := range demo {
		rec := &demo[i]
		if _, ok := bySubject[rec.Subject]; ok {
			return nil, fmt.Errorf("join: %w %s", demographics.ErrDuplicateSubject, rec.Subject)
		}
		bySubject[rec.Subject] = rec
	}
	out := make([]Row, len(obs))
	for i, o := range obs {
		out[i] = Row{Observation: o, Demographics: bySubject[o.Subject]}
	}
	return out, nil
}

// Unmatched lists the distinct subjects whose rows have no demographics, sorted.
func Unmatched(rows []Row) []string {
	seen := map[string]struct{}{}
	for _, r := range rows {
		if !r.Matched() {
			seen[r.Subject] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
