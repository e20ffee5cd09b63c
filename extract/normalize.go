package extract

import (
	"strconv"
	"strings"
)

// Normalize converts one raw extracted string into its typed value. Fields
// whose name contains "price" parse to float64; anything unparseable falls
// back to the original raw string, so no data is ever dropped. Other
// fields pass through trimmed.
func Normalize(field, raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.Contains(strings.ToLower(field), "price") {
		return raw
	}
	if f, ok := parsePrice(raw); ok {
		return f
	}
	return raw
}

// parsePrice keeps digits, commas and periods, then resolves the comma's
// locale ambiguity: next to a period it is a grouping separator, on its
// own it is the decimal mark.
func parsePrice(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return 0, false
	}

	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
