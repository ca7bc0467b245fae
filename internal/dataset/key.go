package dataset

import (
	"math"
	"strconv"
	"strings"
)

// SubjectKey canonicalizes a subject identifier so that keys read as text in
// one table and as numbers in another compare equal: "01", "1" and "1.0" all
// become "1". Non-numeric identifiers are only trimmed.
func SubjectKey(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
