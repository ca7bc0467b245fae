package demographics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Override is a known data-quality correction for one subject's age: the raw
// value was recorded in Unit even though it carries no unit indicator.
type Override struct {
	Raw    string `mapstructure:"raw" yaml:"raw"`
	Unit   string `mapstructure:"unit" yaml:"unit"`
	Reason string `mapstructure:"reason" yaml:"reason"`
}

// Overrides is keyed by subject key.
type Overrides map[string]Override

// DefaultOverrides holds the corrections shipped with the study data.
func DefaultOverrides() Overrides {
	return Overrides{
		"9": {Raw: "636", Unit: "months", Reason: "age entered in months without a unit (636 years is implausible)"},
	}
}

// Match returns the override for subject if its expected raw value equals raw.
// found reports whether the subject has an override at all.
func (o Overrides) Match(subject, raw string) (ov Override, matched, found bool) {
	ov, found = o[subject]
	if !found {
		return Override{}, false, false
	}
	return ov, strings.TrimSpace(ov.Raw) == strings.TrimSpace(raw), true
}

// Years converts raw using the override's unit.
func (ov Override) Years(raw string) (float64, error) {
	unit := ClassifyUnit(ov.Unit)
	if unit == UnitNone {
		return 0, fmt.Errorf("override unit %q: want years, months or weeks", ov.Unit)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: override raw %q", ErrAgeUnparseable, raw)
	}
	return v / unit.perYear(), nil
}

// Subjects lists the overridden subject keys in sorted order.
func (o Overrides) Subjects() []string {
	out := make([]string, 0, len(o))
	for k := range o {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
