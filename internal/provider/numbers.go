package provider

import (
	"math"
	"strconv"
	"strings"
)

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		return parseFloatString(n)
	default:
		return 0
	}
}

func parseFloatString(v string) float64 {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return n
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// optional treats zero and non-finite values as not reported.
func optional(v float64) *float64 {
	if v == 0 || !finite(v) {
		return nil
	}
	return &v
}

// scaled is optional(v*factor); Finnhub reports several fields in millions.
func scaled(v, factor float64) *float64 {
	return optional(v * factor)
}

func valueOf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sanitizeText(in string, maxLen int) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	in = strings.Join(strings.Fields(in), " ")
	if r := []rune(in); maxLen > 0 && len(r) > maxLen {
		in = string(r[:maxLen])
	}
	return in
}
