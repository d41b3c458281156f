package parse

import (
	"math"
	"strconv"
	"strings"
)

// monthFixups maps exchange month spellings onto standard abbreviations.
var monthFixups = map[string]string{
	"JLY": "JUL",
	"JNE": "JUN",
	"SEPT": "SEP",
}

// FixMonthCode normalizes non-standard month codes found in settlement
// symbols (JLY → JUL). Unrecognized codes pass through unchanged.
func FixMonthCode(s string) string {
	up := strings.ToUpper(s)
	for bad, good := range monthFixups {
		if strings.Contains(up, bad) {
			return strings.ReplaceAll(up, bad, good)
		}
	}
	return up
}

// Number parses a human-formatted numeric cell. It tolerates currency
// symbols, percent signs, thousands separators (both "," and "."), leading
// +/−, and single suffix letters such as the A/B settlement markers. The
// placeholder "-" and empty string return nil; "UNCH" returns zero. A second
// return of false means the cell held no parseable number.
func Number(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "-" || s == "--" || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "null"):
		return nil, true
	case strings.EqualFold(s, "UNCH"):
		z := 0.0
		return &z, true
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}

	// Strip currency, percent, spaces, and single trailing letter markers.
	s = strings.TrimRight(s, "ABab'")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-', r == '+':
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" || s == "-" || s == "+" {
		return nil, false
	}

	// Disambiguate separators: when both appear, the last one is decimal.
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	} else if strings.Count(s, ",") == 1 && len(s)-strings.Index(s, ",") <= 3 {
		// A single comma followed by 1-2 digits reads as a decimal comma.
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	if neg {
		v = -v
	}
	return &v, true
}

// Percent parses a percentage cell into a fraction in [0, 1], rounded to 4
// decimal places. "45.2%" → 0.452.
func Percent(s string) *float64 {
	v, ok := Number(s)
	if !ok || v == nil {
		return nil
	}
	f := math.Round(*v / 100 * 1e4) / 1e4
	return &f
}

// Int parses an integral cell (share counts, volumes), nil for placeholders.
func Int(s string) (*int64, bool) {
	v, ok := Number(s)
	if !ok || v == nil {
		return nil, ok
	}
	n := int64(*v)
	return &n, true
}

// Millions converts a value quoted in millions to absolute integer units:
// int64(round(v * 1e6)).
func Millions(v float64) int64 {
	if v < 0 {
		return -int64(-v*1e6 + 0.5)
	}
	return int64(v*1e6 + 0.5)
}

// UnitSuffix undoes a compressed-units label: "Revenue (B)" yields
// ("Revenue", 1e9). Labels without a recognized suffix return multiplier 1.
func UnitSuffix(label string) (string, float64) {
	trimmed := strings.TrimSpace(label)
	for suffix, mult := range map[string]float64{"(K)": 1e3, "(M)": 1e6, "(B)": 1e9} {
		if strings.HasSuffix(trimmed, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(trimmed, suffix)), mult
		}
	}
	return trimmed, 1
}
