package demographics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSex is returned for labels that map to neither M nor F.
var ErrUnknownSex = errors.New("unknown sex label")

const (
	SexMale   = "M"
	SexFemale = "F"
)

// NormalizeSex maps long-form labels to their one-letter code. Codes already
// in canonical form pass through, so the mapping is idempotent.
func NormalizeSex(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "m", "male":
		return SexMale, nil
	case "f", "female":
		return SexFemale, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSex, raw)
	}
}
