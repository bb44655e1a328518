package catalog

import (
	"math"
	"strconv"
)

// Float is a float64 whose JSON form holds NaN and the infinities as the
// strings "NaN", "+Inf" and "-Inf". Finite values encode as plain numbers.
type Float float64

// FormatFloat formats v so that ParseFloat returns it unchanged.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseFloat parses a value written by FormatFloat.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if !IsFinite(v) {
		return strconv.AppendQuote(nil, FormatFloat(v)), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = u
	}
	v, err := ParseFloat(s)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}
