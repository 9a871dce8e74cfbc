package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// MM is a length in millimeters. The zero value means "not set".
type MM float64

// Or returns m, or def when m is not a positive value.
func (m MM) Or(def float64) float64 {
	if m > 0 {
		return float64(m)
	}
	return def
}

// Set reports whether m holds a positive value.
func (m MM) Set() bool { return m > 0 }

// String formats m without a fractional part when it is integral.
func (m MM) String() string {
	return strconv.FormatFloat(float64(m), 'f', -1, 64)
}

// UnmarshalJSON accepts numbers, numeric strings and null. Any other value
// decodes to zero instead of failing.
func (m *MM) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*m = MM(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*m = MM(f)
			return nil
		}
	}
	*m = 0
	return nil
}
