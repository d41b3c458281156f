// Package parse is the parser toolkit shared by the adapters: HTML tables,
// embedded JSON hydration payloads, CSV (with optional zip wrapper), Excel
// workbooks, tolerant number parsing, and date coercion. Every function here
// is pure over its input bytes.
package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/quantfetch/quantfetch/pkg/fault"
)

// Table is one HTML table: a header row plus rows of string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Tables extracts every <table> from an HTML document. The header comes from
// <thead> th cells when present, otherwise the first row. Cells are
// whitespace-trimmed but otherwise untouched; numeric normalization is the
// caller's choice via Number.
func Tables(html string) ([]Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fault.Wrap(fault.Parse, "parse", "tables", err)
	}

	var tables []Table
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		var t Table
		sel.Find("thead tr").First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			t.Header = append(t.Header, clean(cell.Text()))
		})
		rows := sel.Find("tbody tr")
		if rows.Length() == 0 {
			rows = sel.Find("tr")
		}
		rows.Each(func(i int, row *goquery.Selection) {
			var cells []string
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, clean(cell.Text()))
			})
			if len(cells) == 0 {
				return
			}
			if t.Header == nil && i == 0 {
				t.Header = cells
				return
			}
			t.Rows = append(t.Rows, cells)
		})
		tables = append(tables, t)
	})
	return tables, nil
}

// Column returns the index of a header cell, -1 when absent.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, named column), empty when out of range.
func (t Table) Cell(row int, name string) string {
	col := t.Column(name)
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
