// Package sec reads SEC EDGAR: the company and mutual-fund ticker maps, the
// latest-filings index, and the filing families the library parses into
// structured records (forms 3/4/5, 13D/G, 13F, NPORT, and XBRL company
// facts).
//
// EDGAR requires a declared contact identity on every request; calls fail
// with a Configuration fault when none is configured.
package sec

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantfetch/quantfetch/adapter"
	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/internal/fetch"
	"github.com/quantfetch/quantfetch/internal/parse"
	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

const sourceName = "sec"

// Adapter reads EDGAR. Instances memoize the ticker maps and are not safe
// for concurrent use.
type Adapter struct {
	client  *fetch.Client
	memo    *adapter.Memo
	baseURL string // www.sec.gov
	dataURL string // data.sec.gov (XBRL facts)
}

// Option adjusts adapter construction.
type Option func(*Adapter)

// WithBaseURL overrides the www origin; used by tests.
func WithBaseURL(u string) Option {
	return func(a *Adapter) { a.baseURL = strings.TrimRight(u, "/") }
}

// WithDataURL overrides the data-API origin; used by tests.
func WithDataURL(u string) Option {
	return func(a *Adapter) { a.dataURL = strings.TrimRight(u, "/") }
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
		baseURL: "https://www.sec.gov",
		dataURL: "https://data.sec.gov",
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

// get fetches an EDGAR URL with the SEC contact identity.
func (a *Adapter) get(ctx context.Context, rawURL string) (*fetch.Response, error) {
	return a.client.Get(ctx, rawURL, fetch.Options{SEC: true})
}

// document returns a filing body: raw text passes through, anything that
// looks like a URL is fetched.
func (a *Adapter) document(ctx context.Context, docOrURL string) (string, error) {
	if !strings.HasPrefix(docOrURL, "http://") && !strings.HasPrefix(docOrURL, "https://") {
		return docOrURL, nil
	}
	resp, err := a.get(ctx, docOrURL)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Companies returns the ticker↔CIK map. The map is memoized for the
// adapter's lifetime.
func (a *Adapter) Companies(ctx context.Context) ([]models.CompanyRecord, error) {
	if v, ok := a.memo.Get("companies"); ok {
		return v.([]models.CompanyRecord), nil
	}

	resp, err := a.get(ctx, a.baseURL+"/files/company_tickers_exchange.json")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Fields []string `json:"fields"`
		Data   [][]any  `json:"data"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(payload.Fields))
	for i, f := range payload.Fields {
		idx[f] = i
	}
	for _, want := range []string{"cik", "ticker", "name"} {
		if _, ok := idx[want]; !ok {
			return nil, fault.Newf(fault.SourceSchemaChanged, sourceName, "companies",
				"ticker map is missing the %q field", want)
		}
	}

	out := make([]models.CompanyRecord, 0, len(payload.Data))
	for _, row := range payload.Data {
		rec := models.CompanyRecord{
			CIK:    anyToCIK(row[idx["cik"]]),
			Ticker: anyToString(row[idx["ticker"]]),
			Name:   anyToString(row[idx["name"]]),
		}
		if i, ok := idx["exchange"]; ok && i < len(row) {
			rec.Exchange = anyToString(row[i])
		}
		if rec.CIK != "" && rec.Ticker != "" {
			out = append(out, rec)
		}
	}
	a.memo.Put("companies", out)
	return out, nil
}

// MutualFunds returns the mutual-fund ticker map (CIK, series, class,
// ticker), memoized.
func (a *Adapter) MutualFunds(ctx context.Context) ([]models.MutualFundRecord, error) {
	if v, ok := a.memo.Get("mutualfunds"); ok {
		return v.([]models.MutualFundRecord), nil
	}

	resp, err := a.get(ctx, a.baseURL+"/files/company_tickers_mf.json")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Fields []string `json:"fields"`
		Data   [][]any  `json:"data"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(payload.Fields))
	for i, f := range payload.Fields {
		idx[f] = i
	}
	out := make([]models.MutualFundRecord, 0, len(payload.Data))
	for _, row := range payload.Data {
		rec := models.MutualFundRecord{}
		if i, ok := idx["cik"]; ok && i < len(row) {
			rec.CIK = anyToCIK(row[i])
		}
		if i, ok := idx["seriesId"]; ok && i < len(row) {
			rec.SeriesID = anyToString(row[i])
		}
		if i, ok := idx["classId"]; ok && i < len(row) {
			rec.ClassID = anyToString(row[i])
		}
		if i, ok := idx["symbol"]; ok && i < len(row) {
			rec.Ticker = anyToString(row[i])
		}
		if rec.CIK != "" {
			out = append(out, rec)
		}
	}
	a.memo.Put("mutualfunds", out)
	return out, nil
}

// LatestFilingsOptions bounds a LatestFilings walk.
type LatestFilingsOptions struct {
	// Start stops the walk once filings older than the cutoff appear
	// (the index is newest-first). ISO date; empty walks one page.
	Start string
	// PageSize is the entries-per-page hint sent to the index; default 40.
	PageSize int
	// MaxPages caps the walk regardless of Start.
	MaxPages int
}

// LatestFilings walks the full-index "latest filings" pages, newest first.
// A page delivering fewer entries than requested marks the end of the
// stream; whatever has been collected is returned.
func (a *Adapter) LatestFilings(ctx context.Context, opts LatestFilingsOptions) ([]models.FilingRef, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 40
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = 1
		if opts.Start != "" {
			maxPages = 100
		}
	}

	var out []models.FilingRef
	for page := 0; page < maxPages; page++ {
		u := fmt.Sprintf("%s/cgi-bin/browse-edgar?action=getcurrent&type=&company=&datea=&owner=include&count=%d&start=%d",
			a.baseURL, pageSize, page*pageSize)
		resp, err := a.get(ctx, u)
		if err != nil {
			return nil, err
		}
		refs, err := filingRefs(resp.Text(), a.baseURL)
		if err != nil {
			return nil, err
		}
		out = append(out, refs...)

		if len(refs) < pageSize {
			break // end of stream
		}
		if opts.Start != "" && len(refs) > 0 && refs[len(refs)-1].DateFiled < opts.Start {
			break
		}
	}

	if opts.Start != "" {
		kept := out[:0]
		for _, r := range out {
			if r.DateFiled >= opts.Start {
				kept = append(kept, r)
			}
		}
		out = kept
	}
	return out, nil
}

// filingRefs parses the latest-filings index page: pairs of company and
// filing rows inside the results tables.
func filingRefs(html, base string) ([]models.FilingRef, error) {
	tables, err := parse.Tables(html)
	if err != nil {
		return nil, err
	}

	var out []models.FilingRef
	for _, t := range tables {
		form := t.Column("form")
		if form < 0 {
			form = t.Column("type")
		}
		if form < 0 || t.Column("description") < 0 && t.Column("accession number") < 0 {
			continue
		}
		for i, row := range t.Rows {
			if form >= len(row) {
				continue
			}
			ref := models.FilingRef{
				FormType:        row[form],
				CompanyName:     t.Cell(i, "company"),
				CIK:             t.Cell(i, "cik"),
				DateFiled:       t.Cell(i, "date filed"),
				AccessionNumber: t.Cell(i, "accession number"),
			}
			if ref.FormType == "" {
				continue
			}
			if ref.AccessionNumber != "" {
				ref.URL = accessionURL(base, ref.CIK, ref.AccessionNumber)
			}
			out = append(out, ref)
		}
	}
	return out, nil
}

// accessionURL builds the canonical document URL for an accession number.
func accessionURL(base, cik, accession string) string {
	flat := strings.ReplaceAll(accession, "-", "")
	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s.txt",
		base, strings.TrimLeft(cik, "0"), flat, accession)
}

func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return ""
	}
}

// anyToCIK renders a CIK zero-padded to the canonical 10 digits.
func anyToCIK(v any) string {
	s := anyToString(v)
	if s == "" {
		return ""
	}
	return fmt.Sprintf("%010s", s)
}

