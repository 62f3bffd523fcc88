package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Rate is a derived statistic that may be missing. Missing rates are NaN in
// memory and null in JSON.
type Rate float64

// MissingRate returns a missing rate.
func MissingRate() Rate {
	return Rate(math.NaN())
}

// RateOf divides n by d, missing when d is zero.
func RateOf(n, d int) Rate {
	return Rate(ratio(n, d))
}

// Missing reports whether the rate has no value.
func (r Rate) Missing() bool {
	f := float64(r)
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// Format renders the rate with the given number of decimals, or "" when missing.
func (r Rate) Format(decimals int) string {
	if r.Missing() {
		return ""
	}
	return strconv.FormatFloat(float64(r), 'f', decimals, 64)
}

// String renders the rate baseball style with three decimals.
func (r Rate) String() string {
	return r.Format(3)
}

// MarshalJSON implements json.Marshaler.
func (r Rate) MarshalJSON() ([]byte, error) {
	if r.Missing() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(r))
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = MissingRate()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Rate(f)
	return nil
}

// Float returns the rate as a float64, NaN when missing.
func (r Rate) Float() float64 {
	return float64(r)
}
