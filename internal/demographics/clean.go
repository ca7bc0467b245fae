package demographics

import (
	"fmt"
	"strconv"
)

// CleanOptions configures Clean.
type CleanOptions struct {
	Overrides Overrides
	// MaxPlausibleAge flags parsed ages above it; 0 disables the check.
	MaxPlausibleAge float64
}

// DefaultCleanOptions returns the shipped overrides and a 120-year ceiling.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{Overrides: DefaultOverrides(), MaxPlausibleAge: 120}
}

// Clean normalizes sex labels and parses ages into years. It returns new
// records, data-quality notes, and fails on the first row it cannot coerce.
// Input records are not modified.
func Clean(recs []Record, opt CleanOptions) ([]Record, []string, error) {
	out := make([]Record, len(recs))
	var notes []string
	for i, rec := range recs {
		sex, err := NormalizeSex(rec.Sex)
		if err != nil {
			return nil, notes, fmt.Errorf("subject %s: %w", rec.Subject, err)
		}
		rec.Sex = sex
		rec.Override = ""

		ov, matched, found := opt.Overrides.Match(rec.Subject, rec.AgeRaw)
		switch {
		case matched:
			years, err := ov.Years(rec.AgeRaw)
			if err != nil {
				return nil, notes, fmt.Errorf("subject %s: %w", rec.Subject, err)
			}
			rec.AgeYears = years
			rec.Override = ov.Reason
			notes = append(notes, fmt.Sprintf("age override for subject %s: %q read as %s → %s years (%s)",
				rec.Subject, rec.AgeRaw, ov.Unit, formatAge(years), ov.Reason))
		default:
			if found {
				notes = append(notes, fmt.Sprintf("age override for subject %s skipped: expected raw %q, found %q",
					rec.Subject, ov.Raw, rec.AgeRaw))
			}
			years, err := ParseAge(rec.AgeRaw)
			if err != nil {
				return nil, notes, fmt.Errorf("subject %s: %w", rec.Subject, err)
			}
			rec.AgeYears = years
			if opt.MaxPlausibleAge > 0 && years > opt.MaxPlausibleAge {
				notes = append(notes, fmt.Sprintf("subject %s: age %s years exceeds %s and has no override",
					rec.Subject, formatAge(years), formatAge(opt.MaxPlausibleAge)))
			}
		}
		out[i] = rec
	}
	return out, notes, nil
}

func formatAge(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
