package demographics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrAgeUnparseable is returned when an age string matches no parse rule.
var ErrAgeUnparseable = errors.New("unparseable age")

// AgeUnit is the unit a free-text age was recorded in.
type AgeUnit int

const (
	UnitNone AgeUnit = iota
	UnitYears
	UnitMonths
	UnitWeeks
)

func (u AgeUnit) String() string {
	switch u {
	case UnitYears:
		return "years"
	case UnitMonths:
		return "months"
	case UnitWeeks:
		return "weeks"
	default:
		return "none"
	}
}

// perYear is how many of the unit fit in one year.
func (u AgeUnit) perYear() float64 {
	switch u {
	case UnitMonths:
		return 12
	case UnitWeeks:
		return 52
	default:
		return 1
	}
}

// ClassifyUnit finds the unit indicator in s, ignoring case. "year" wins over
// "month" and "month" over "week" when several are present.
func ClassifyUnit(s string) AgeUnit {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "year"):
		return UnitYears
	case strings.Contains(l, "month"):
		return UnitMonths
	case strings.Contains(l, "week"):
		return UnitWeeks
	default:
		return UnitNone
	}
}

// ParseAge converts a free-text age into years.
//
// With a unit indicator the leading number is taken and divided by 1, 12 or 52.
// Without one the whole string must be a bare number of years. The result is
// always finite and non-negative.
func ParseAge(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrAgeUnparseable)
	}
	unit := ClassifyUnit(s)
	var v float64
	if unit == UnitNone {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrAgeUnparseable, raw)
		}
		v = f
	} else {
		f, ok := leadingNumber(s)
		if !ok {
			return 0, fmt.Errorf("%w: %q has a unit but no number", ErrAgeUnparseable, raw)
		}
		v = f / unit.perYear()
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %q is not a non-negative finite age", ErrAgeUnparseable, raw)
	}
	return v, nil
}

// leadingNumber returns the first integer or decimal token in s.
func leadingNumber(s string) (float64, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) || (s[i] == '.' && i+1 < len(s) && isDigit(s[i+1])) {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	end := start
	dot := false
	for end < len(s) {
		c := s[end]
		if c == '.' && !dot && end+1 < len(s) && isDigit(s[end+1]) {
			dot = true
			end++
			continue
		}
		if !isDigit(c) {
			break
		}
		end++
	}
	f, err := strconv.ParseFloat(s[start:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
