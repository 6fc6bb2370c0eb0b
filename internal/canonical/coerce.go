package canonical

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// String returns the first candidate that coerces to a non-blank string.
func (r Record) String(def string, paths ...string) string {
	for _, p := range paths {
		v, ok := r.Get(p)
		if !ok {
			continue
		}
		if s := toString(v); s != "" {
			return s
		}
	}
	return def
}

// Number returns the first candidate that parses as a number. Numeric
// strings may carry a unit suffix or a leading comparison sign.
func (r Record) Number(def float64, paths ...string) float64 {
	for _, p := range paths {
		v, ok := r.Get(p)
		if !ok {
			continue
		}
		if n, ok := toNumber(v); ok {
			return n
		}
	}
	return def
}

// Int is Number truncated to an int.
func (r Record) Int(def int, paths ...string) int {
	n := r.Number(math.NaN(), paths...)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return def
	}
	return int(n)
}

// Bool returns the first candidate that reads as a yes/no value.
func (r Record) Bool(def bool, paths ...string) bool {
	for _, p := range paths {
		v, ok := r.Get(p)
		if !ok {
			continue
		}
		if b, ok := toBool(v); ok {
			return b
		}
	}
	return def
}

// WithUnit resolves a string and appends unit unless one is already present.
func (r Record) WithUnit(unit, def string, paths ...string) string {
	s := r.String("", paths...)
	if s == "" {
		return def
	}
	return AppendUnit(s, unit)
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(t)
		switch strings.ToLower(s) {
		case "null", "undefined", "nan":
			return ""
		}
		return s
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return toString(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := toString(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := strings.TrimSpace(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		return toNumber(float64(t))
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return parseLeadingNumber(t)
	}
	return 0, false
}

// parseLeadingNumber reads "32A", ">200", " 0.35 Ω" and similar.
func parseLeadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "<>=≥≤ ")
	end := 0
	seenDigit, seenDot := false, false
loop:
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			seenDigit = true
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break loop
		}
		end = i + 1
	}
	if !seenDigit {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseBool reads v as a yes/no value; ok is false when v is neither.
func ParseBool(v any) (b bool, ok bool) { return toBool(v) }

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case float64:
		return t != 0, true
	case int:
		return t != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1", "on", "✓", "pass", "passed", "ok", "satisfactory":
			return true, true
		case "false", "no", "n", "0", "off", "✗", "fail", "failed":
			return false, true
		}
	}
	return false, false
}
