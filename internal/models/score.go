package models

import (
	"bytes"
	"math"
	"strconv"
)

// Score is a numeric rating or duration that may be NaN when the catalog
// returned a non-numeric value such as "N/A".
type Score float64

// IsNaN reports whether the score could not be parsed
func (s Score) IsNaN() bool {
	return math.IsNaN(float64(s))
}

// MarshalJSON encodes NaN and infinities as null
func (s Score) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

// UnmarshalJSON decodes null back into NaN
func (s *Score) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = Score(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*s = Score(f)
	return nil
}
