package parse

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/quantfetch/quantfetch/pkg/fault"
)

// CSVOptions adjusts CSV decoding.
type CSVOptions struct {
	// Comma defaults to ','.
	Comma rune
	// SkipCommentPrefix drops leading lines starting with the prefix.
	SkipCommentPrefix string
	// Unzip unwraps a single-member zip archive before decoding.
	Unzip bool
}

// Unzip extracts the single member of a zip archive. Archives with more than
// one member fail: the factor-library downloads always wrap exactly one file.
func Unzip(b []byte) ([]byte, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, "", fault.Wrap(fault.Parse, "parse", "unzip", err)
	}
	if len(zr.File) != 1 {
		return nil, "", fault.Newf(fault.SourceSchemaChanged, "parse", "unzip",
			"expected a single-member archive, found %d members", len(zr.File))
	}
	f := zr.File[0]
	rc, err := f.Open()
	if err != nil {
		return nil, "", fault.Wrap(fault.Parse, "parse", "unzip", err)
	}
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fault.Wrap(fault.Parse, "parse", "unzip", err)
	}
	return out, f.Name, nil
}

// CSV decodes a payload into rows of string cells. Rows may be ragged; the
// reader does not enforce a fixed field count because the factor archives
// interleave chunks of differing width.
func CSV(b []byte, opts CSVOptions) ([][]string, error) {
	if opts.Unzip {
		inner, _, err := Unzip(b)
		if err != nil {
			return nil, err
		}
		b = inner
	}

	text := string(b)
	if opts.SkipCommentPrefix != "" {
		var kept []string
		for _, line := range strings.Split(text, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), opts.SkipCommentPrefix) {
				continue
			}
			kept = append(kept, line)
		}
		text = strings.Join(kept, "\n")
	}

	r := csv.NewReader(strings.NewReader(text))
	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true // archive preambles carry unbalanced quotes
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fault.Wrap(fault.Parse, "parse", "csv", err)
	}
	return rows, nil
}

// InferHeader reports whether the first row looks like a header: no cell in
// it parses as a number.
func InferHeader(rows [][]string) bool {
	if len(rows) == 0 {
		return false
	}
	for _, cell := range rows[0] {
		if cell == "" {
			continue
		}
		if v, ok := Number(cell); ok && v != nil {
			return false
		}
	}
	return true
}

// SplitChunks splits text into chunks separated by runs of two or more blank
// lines. The factor archives pack several logical datasets into one file
// this way.
func SplitChunks(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	var chunks []string
	var current []string
	blanks := 0
	for _, line := range strings.Split(normalized, "\n") {
		if strings.TrimSpace(line) == "" {
			blanks++
			continue
		}
		if blanks >= 2 && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
		} else if blanks > 0 && len(current) > 0 {
			current = append(current, "")
		}
		blanks = 0
		current = append(current, line)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}
