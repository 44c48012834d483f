package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NumberOrZero coerces a loosely typed stored value into a float64.
// Missing, non-numeric, NaN and infinite values become 0. Callers apply it once,
// when records are decoded, so that aggregation code only sees clean numbers.
func NumberOrZero(v interface{}) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case interface{ String() string }:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n.String()), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// IntOrZero is NumberOrZero truncated towards zero.
func IntOrZero(v interface{}) int {
	return int(NumberOrZero(v))
}
