package models

import (
	"bytes"
	"strconv"
	"strings"
)

// Money is a monetary amount as delivered by the marketplace API.
//
// The upstream API is loose about numeric fields: the same field may arrive
// as a JSON number, a numeric string, null, or be absent entirely. Money
// absorbs all of those shapes at the decoding boundary and coerces anything
// unparsable to 0, so downstream arithmetic never has to null-coalesce.
type Money float64

// UnmarshalJSON implements json.Unmarshaler. It never fails: malformed or
// null values decode to 0.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}

	// Strip quotes when the amount arrives as a string
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}

	f, err := strconv.ParseFloat(string(bytes.TrimSpace(data)), 64)
	if err != nil {
		*m = 0
		return nil
	}

	*m = Money(f)
	return nil
}

// MarshalJSON renders the amount as a plain JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(m), 'f', -1, 64)), nil
}

// Float returns the amount as a float64.
func (m Money) Float() float64 {
	return float64(m)
}

// ParseAmount parses a user-supplied amount string. Unparsable input
// coerces to 0, mirroring the decoding behavior of Money.
func ParseAmount(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
