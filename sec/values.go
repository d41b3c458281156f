package sec

import (
	"strconv"
	"strings"

	"github.com/quantfetch/quantfetch/internal/parse"
)

// xmlFloat parses a numeric XML text node; empty and "N/A" yield nil.
func xmlFloat(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || strings.EqualFold(s, "n/a") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// xmlInt parses an integral XML text node, zero for anything unparseable.
func xmlInt(s string) int64 {
	v := xmlFloat(s)
	if v == nil {
		return 0
	}
	return int64(*v)
}

// xmlPercent converts a cover-page percentage ("5.2") to a fraction.
func xmlPercent(s string) *float64 {
	return parse.Percent(s)
}

// xmlBool reads the Y/N and true/false spellings EDGAR mixes freely.
func xmlBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "YES", "TRUE", "1":
		return true
	}
	return false
}

func addFloat(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	sum := *a + *b
	return &sum
}

func derefZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
