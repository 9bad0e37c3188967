package form

import (
	"math"
	"strconv"
	"strings"
)

// Coerce converts operator text into a typed value: "true"/"false" in any
// case become a bool, a base-10 integer becomes an int, a finite decimal
// becomes a float64 and anything else is returned as a string without
// surrounding whitespace.
func Coerce(raw string) any {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if isDecimal(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
	}
	return s
}

// isDecimal rejects the forms ParseFloat accepts beyond plain decimal
// notation: hex mantissas, underscores and the inf/nan words.
func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return digits
}

// Normalize applies Coerce to strings and widens other numeric kinds to int
// or float64. Normalize(Normalize(v)) == Normalize(v).
func Normalize(v any) any {
	switch t := v.(type) {
	case string:
		return Coerce(t)
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		if t >= math.MinInt && t <= math.MaxInt {
			return int(t)
		}
		return t
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return int(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}
