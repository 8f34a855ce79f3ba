package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric field as the draft service sends it. Sheet-backed
// services emit blanks, nulls and text where a number is expected, so the
// value is only meaningful when Finite reports true.
type Number struct {
	Value float64
	Valid bool
	// Raw keeps non-numeric text so it can be shown as-is.
	Raw string
}

func NumberOf(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Finite returns the value when it is present and neither NaN nor infinite.
func (n Number) Finite() (float64, bool) {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return 0, false
	}
	return n.Value, true
}

// OrLowest maps missing and non-finite values to negative infinity.
func (n Number) OrLowest() float64 {
	if v, ok := n.Finite(); ok {
		return v
	}
	return math.Inf(-1)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			*n = Number{Value: v, Valid: true}
			return nil
		}
		n.Raw = text
		return nil
	}

	if trimmed[0] == 't' || trimmed[0] == 'f' {
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		if b {
			*n = NumberOf(1)
		} else {
			*n = NumberOf(0)
		}
		return nil
	}

	v, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		// Out of range literals and anything that is not a number at all are
		// kept as text rather than failing the whole snapshot.
		n.Raw = string(trimmed)
		return nil
	}
	*n = NumberOf(v)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if v, ok := n.Finite(); ok {
		return json.Marshal(v)
	}
	if n.Raw != "" {
		return json.Marshal(n.Raw)
	}
	return []byte("null"), nil
}

// Format renders the value with a fixed number of decimals, "—" when missing
// and the raw text when the service sent something non-numeric.
func (n Number) Format(digits int) string {
	if v, ok := n.Finite(); ok {
		return strconv.FormatFloat(v, 'f', digits, 64)
	}
	if n.Raw != "" {
		return n.Raw
	}
	return "—"
}
