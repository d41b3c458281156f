// Package french reads the Fama/French research factor library: zip-wrapped
// CSV archives packing several logical tables per file, separated by blank
// runs, with 4/6/8-digit date tokens and -99.99/-999 missing-value
// sentinels.
package french

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/quantfetch/quantfetch/adapter"
	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/internal/fetch"
	"github.com/quantfetch/quantfetch/internal/parse"
	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

const sourceName = "french"

const (
	indexPage  = "/pages/faculty/ken.french/data_library.html"
	zipSuffix  = "_CSV.zip"
	ftpPrefix  = "ftp/"
)

// Adapter reads the factor library.
type Adapter struct {
	client  *fetch.Client
	memo    *adapter.Memo
	baseURL string
}

// Option adjusts adapter construction.
type Option func(*Adapter)

// WithBaseURL overrides the library origin; used by tests.
func WithBaseURL(u string) Option {
	return func(a *Adapter) { a.baseURL = strings.TrimRight(u, "/") }
}

// WithClient injects a prebuilt fetch client.
func WithClient(c *fetch.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// New creates an adapter bound to the process identity.
func New(id config.Identity, opts ...Option) *Adapter {
	a := &Adapter{
		client:  fetch.NewClient(id),
		memo:    adapter.NewMemo(),
		baseURL: "https://mba.tuck.dartmouth.edu",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func init() {
	adapter.Register(sourceName, func(id config.Identity) (adapter.Adapter, error) {
		return New(id), nil
	})
}

// Name implements adapter.Adapter.
func (a *Adapter) Name() string { return sourceName }

// Close drops the memo table.
func (a *Adapter) Close(ctx context.Context) error {
	a.memo.Drop()
	return nil
}

// Datasets scrapes the library index for the dataset identifiers that Read
// accepts. The list is memoized for the adapter's lifetime.
func (a *Adapter) Datasets(ctx context.Context) ([]string, error) {
	if v, ok := a.memo.Get("datasets"); ok {
		return v.([]string), nil
	}

	resp, err := a.client.Get(ctx, a.baseURL+indexPage, fetch.Options{})
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Text()))
	if err != nil {
		return nil, fault.Wrap(fault.Parse, sourceName, "datasets", err)
	}

	seen := make(map[string]bool)
	var ids []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, ftpPrefix) || !strings.HasSuffix(href, zipSuffix) {
			return
		}
		id := strings.TrimSuffix(strings.TrimPrefix(href, ftpPrefix), zipSuffix)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	})
	if len(ids) == 0 {
		return nil, fault.New(fault.SourceSchemaChanged, sourceName, "datasets",
			"library index lists no CSV archives")
	}

	a.memo.Put("datasets", ids)
	return ids, nil
}

// ReadOptions bounds the rows a Read returns.
type ReadOptions struct {
	Start, End time.Time
	Timestamps bool
}

// Dataset is one archive decoded into its constituent tables, in file order.
type Dataset struct {
	ID     string
	Names  []string
	Tables map[string]*models.TimeSeries
}

// Table returns a decoded table by name, nil when absent.
func (d *Dataset) Table(name string) *models.TimeSeries {
	return d.Tables[name]
}

// First returns the archive's first table. Most callers want only the main
// factor table.
func (d *Dataset) First() *models.TimeSeries {
	if len(d.Names) == 0 {
		return nil
	}
	return d.Tables[d.Names[0]]
}

// Read downloads and decodes one dataset archive. Archives whose single
// member is a workbook decode through the xlsx path; everything else is
// treated as chunked CSV text.
func (a *Adapter) Read(ctx context.Context, id string, opts ReadOptions) (*Dataset, error) {
	if id == "" {
		return nil, fault.New(fault.InvalidInput, sourceName, "read", "empty dataset id")
	}

	u := fmt.Sprintf("%s/pages/faculty/ken.french/%s%s%s", a.baseURL, ftpPrefix, id, zipSuffix)
	resp, err := a.client.Get(ctx, u, fetch.Options{})
	if err != nil {
		if fault.IsKind(err, fault.Upstream4xx) {
			return nil, fault.Newf(fault.NotFound, sourceName, "read", "no dataset %q", id)
		}
		return nil, err
	}

	inner, member, err := parse.Unzip(resp.Body)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{ID: id, Tables: make(map[string]*models.TimeSeries)}
	if strings.HasSuffix(strings.ToLower(member), ".xlsx") {
		rows, err := parse.XLSX(inner, "")
		if err != nil {
			return nil, err
		}
		if err := a.addTable(ds, "", rows, opts); err != nil {
			return nil, err
		}
	} else {
		for _, chunk := range parse.SplitChunks(string(inner)) {
			rows, err := parse.CSV([]byte(chunk), parse.CSVOptions{})
			if err != nil {
				return nil, err
			}
			if err := a.addTable(ds, "", rows, opts); err != nil {
				return nil, err
			}
		}
	}

	if len(ds.Names) == 0 {
		return nil, fault.Newf(fault.SourceSchemaChanged, sourceName, "read",
			"archive %q decoded to no tables", id)
	}
	return ds, nil
}

// addTable decodes one chunk into a TimeSeries and attaches it under its
// inferred title. Chunks without any dated row (archive preamble) are
// skipped.
func (a *Adapter) addTable(ds *Dataset, title string, rows [][]string, opts ReadOptions) error {
	rows, inferred := splitTitle(rows)
	if title == "" {
		title = inferred
	}

	var header []string
	if len(rows) > 0 && parse.InferHeader(rows) {
		header = rows[0]
		rows = rows[1:]
	}

	// Column names come from the header cells to the right of the date
	// column; headerless chunks get positional names.
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if width < 2 {
		return nil // preamble chunk, nothing tabular
	}
	columns := make([]string, 0, width-1)
	for i := 1; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("col%d", i)
		}
		columns = append(columns, name)
	}

	b := models.NewBuilder(columns...)
	dated := 0
	for _, r := range rows {
		if len(r) == 0 {
			continue
		}
		when, ok := parse.FactorDate(r[0])
		if !ok {
			continue
		}
		if !opts.Start.IsZero() && when.Before(opts.Start) {
			continue
		}
		if !opts.End.IsZero() && when.After(opts.End) {
			continue
		}
		dated++
		for i, col := range columns {
			var cell string
			if i+1 < len(r) {
				cell = r[i+1]
			}
			b.Set(when, col, factorValue(cell))
		}
	}
	if dated == 0 {
		return nil
	}

	// The first table is the dataset's main series; its preamble is archive
	// boilerplate, not a name. Later chunks are named by their prose title
	// truncated at the first comma or colon.
	if len(ds.Names) == 0 {
		title = "Main"
	} else {
		title = trimTitle(title)
	}
	if title == "" {
		title = fmt.Sprintf("table_%d", len(ds.Names))
	}
	if _, dup := ds.Tables[title]; dup {
		title = fmt.Sprintf("%s_%d", title, len(ds.Names))
	}
	ds.Names = append(ds.Names, title)
	ds.Tables[title] = b.Build().Timestamps(opts.Timestamps)
	return nil
}

// splitTitle peels leading prose off a chunk and joins it into the table
// title. Header and data rows always span several cells, so any leading row
// with at most one non-empty cell is preamble.
func splitTitle(rows [][]string) ([][]string, string) {
	var parts []string
	for len(rows) > 0 {
		cell := ""
		multi := false
		for i, c := range rows[0] {
			if strings.TrimSpace(c) == "" {
				continue
			}
			if i == 0 {
				cell = strings.TrimSpace(c)
			} else {
				multi = true
			}
		}
		if multi {
			break
		}
		if cell != "" {
			parts = append(parts, cell)
		}
		rows = rows[1:]
	}
	return rows, strings.Join(parts, " ")
}

// trimTitle cuts a prose chunk title at the first comma or colon.
func trimTitle(title string) string {
	if i := strings.IndexAny(title, ",:"); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

// factorValue parses one factor cell, nulling the library's missing-value
// sentinels.
func factorValue(cell string) *float64 {
	v, ok := parse.Number(cell)
	if !ok || v == nil {
		return nil
	}
	if *v == -99.99 || *v == -999 {
		return nil
	}
	return v
}
