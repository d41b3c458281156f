package parse

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/quantfetch/quantfetch/pkg/fault"
)

// Hydration locates the first application/json script whose content contains
// the marker bytes, slices out the JSON body, and returns it raw. Sources
// that hydrate client state through a script tag (Next.js __NEXT_DATA__ and
// kin) are parsed this way.
func Hydration(html, marker string) (json.RawMessage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fault.Wrap(fault.Parse, "parse", "hydration", err)
	}

	var raw string
	doc.Find(`script[type="application/json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if marker == "" || strings.Contains(text, marker) {
			raw = text
			return false
		}
		return true
	})
	if raw == "" {
		// Fall back to scanning inline scripts for the marker followed by a
		// JSON object, for sources that assign hydration state directly.
		doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := sel.Text()
			idx := strings.Index(text, marker)
			if marker == "" || idx < 0 {
				return true
			}
			if body := sliceJSON(text[idx+len(marker):]); body != "" {
				raw = body
				return false
			}
			return true
		})
	}
	if raw == "" {
		return nil, fault.Newf(fault.SourceSchemaChanged, "parse", "hydration",
			"no hydration payload matching marker %q", marker)
	}

	if !json.Valid([]byte(raw)) {
		return nil, fault.New(fault.SourceSchemaChanged, "parse", "hydration",
			"hydration payload is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

// sliceJSON returns the first balanced {...} or [...] in s, respecting
// string literals and escapes.
func sliceJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	open := s[start]
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
