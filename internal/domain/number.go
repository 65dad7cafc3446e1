package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotNumeric is returned when a present numeric field cannot be coerced.
var ErrNotNumeric = errors.New("not numeric")

// Number is an upstream numeric field that may arrive as a JSON number,
// a numeric string or null. Coercion is deferred until the value is read
// so that one malformed field only affects the record that carries it.
type Number struct {
	raw   string
	valid bool
}

// NumberOf returns a Number holding v.
func NumberOf(v float64) Number {
	return Number{raw: decimal.NewFromFloat(v).String(), valid: true}
}

// NumberFromString returns a Number holding s verbatim. An empty string is absent.
func NumberFromString(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	return Number{raw: s, valid: true}
}

// IsSet reports whether the field was present and non-null.
func (n Number) IsSet() bool {
	return n.valid
}

// String returns the raw text of the field.
func (n Number) String() string {
	return n.raw
}

// Decimal coerces the field. Absent fields yield zero.
func (n Number) Decimal() (decimal.Decimal, error) {
	if !n.valid {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(n.raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotNumeric, n.raw)
	}
	return d, nil
}

// Float coerces the field to float64. Absent fields yield zero.
func (n Number) Float() (float64, error) {
	d, err := n.Decimal()
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// Int coerces the field to int64, truncating any fraction. Absent fields yield zero.
func (n Number) Int() (int64, error) {
	d, err := n.Decimal()
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}

// UnmarshalJSON accepts numbers, strings and null. Any other JSON value is
// kept verbatim and fails on coercion.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*n = Number{}
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*n = NumberFromString(str)
		return nil
	}
	*n = Number{raw: s, valid: true}
	return nil
}

// MarshalJSON writes numeric values as JSON numbers and anything else as a string.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	if d, err := decimal.NewFromString(n.raw); err == nil {
		return []byte(d.String()), nil
	}
	return json.Marshal(n.raw)
}
