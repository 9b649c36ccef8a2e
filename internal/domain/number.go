package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a possibly-missing finite reading. The zero value is missing.
type Number struct {
	Value float64
	Valid bool
}

// Missing is the absent reading.
var Missing = Number{}

// Num wraps a float. NaN and infinities are treated as missing.
func Num(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return Number{Value: v, Valid: true}
}

// ParseNumber coerces a raw value of unknown shape into a Number. Numbers,
// numeric strings, json.Number and pointers to those are accepted; nil,
// empty strings, sentinels such as "N/A" and non-finite values are missing.
func ParseNumber(raw any) Number {
	switch v := raw.(type) {
	case nil:
		return Missing
	case Number:
		return v
	case *Number:
		if v == nil {
			return Missing
		}
		return *v
	case float64:
		return Num(v)
	case *float64:
		if v == nil {
			return Missing
		}
		return Num(*v)
	case float32:
		return Num(float64(v))
	case int:
		return Num(float64(v))
	case int8:
		return Num(float64(v))
	case int16:
		return Num(float64(v))
	case int32:
		return Num(float64(v))
	case int64:
		return Num(float64(v))
	case *int:
		if v == nil {
			return Missing
		}
		return Num(float64(*v))
	case uint:
		return Num(float64(v))
	case uint8:
		return Num(float64(v))
	case uint16:
		return Num(float64(v))
	case uint32:
		return Num(float64(v))
	case uint64:
		return Num(float64(v))
	case json.Number:
		return parseNumberString(string(v))
	case string:
		return parseNumberString(v)
	case *string:
		if v == nil {
			return Missing
		}
		return parseNumberString(*v)
	default:
		return Missing
	}
}

func parseNumberString(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing
	}
	return Num(f)
}

// Or returns the value, or fallback when missing.
func (n Number) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Value
}

// Comparisons against a missing Number are always false.

func (n Number) GE(x float64) bool { return n.Valid && n.Value >= x }
func (n Number) GT(x float64) bool { return n.Valid && n.Value > x }
func (n Number) LE(x float64) bool { return n.Valid && n.Value <= x }
func (n Number) LT(x float64) bool { return n.Valid && n.Value < x }
func (n Number) EQ(x float64) bool { return n.Valid && n.Value == x }

// MarshalJSON writes missing numbers as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts JSON numbers, numeric strings and null. Anything else
// (including sentinels like "N/A") decodes to Missing rather than failing,
// so one bad field never rejects a whole payload.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Missing
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = Missing
			return nil
		}
		*n = parseNumberString(s)
		return nil
	}
	*n = parseNumberString(string(data))
	return nil
}
