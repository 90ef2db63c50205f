package source

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Number is a nullable float decoded opportunistically: JSON numbers,
// numeric strings and null are accepted. Any other string is kept in Text.
type Number struct {
	Value float64
	Valid bool
	Text  string
}

func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*n = ParseNumber(unquoted)
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		// booleans, objects and arrays survive as text instead of failing the parent record
		n.Text = string(data)
		return nil
	}
	n.Value, n.Valid = v, true
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	switch {
	case n.Valid && !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0):
		return strconv.AppendFloat(nil, n.Value, 'g', -1, 64), nil
	case n.Text != "":
		return []byte(strconv.Quote(n.Text)), nil
	default:
		return []byte("null"), nil
	}
}

// Ptr returns nil for a null or non-numeric value.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// ParseNumber coerces text to a number when it parses, keeping it as text otherwise.
func ParseNumber(raw string) Number {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Number{}
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return Number{Value: v, Valid: true}
	}
	return Number{Text: text}
}
