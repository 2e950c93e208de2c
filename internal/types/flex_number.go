package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexNumber is a float64 that can be unmarshaled from either a JSON number or a JSON string.
// Strings may carry values JSON numbers cannot, such as "NaN" or "Infinity",
// so callers must still check IsFinite.
type FlexNumber float64

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexNumber(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		switch strings.ToLower(s) {
		case "infinity", "+infinity":
			*f = FlexNumber(math.Inf(1))
			return nil
		case "-infinity":
			*f = FlexNumber(math.Inf(-1))
			return nil
		}
		val, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("FlexNumber: invalid number string %q: %w", s, err)
		}
		*f = FlexNumber(val)
		return nil
	}

	return fmt.Errorf("FlexNumber: unexpected type, expected number or string")
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if !f.IsFinite() {
		return json.Marshal(strconv.FormatFloat(float64(f), 'g', -1, 64))
	}
	return json.Marshal(float64(f))
}

// Float64 converts FlexNumber back to float64.
func (f FlexNumber) Float64() float64 {
	return float64(f)
}

// IsFinite reports whether the value is neither NaN nor infinite.
func (f FlexNumber) IsFinite() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsWhole reports whether the value is finite and has no fractional part.
func (f FlexNumber) IsWhole() bool {
	return f.IsFinite() && math.Trunc(float64(f)) == float64(f)
}
