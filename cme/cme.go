// Package cme reads futures settlement tables. The exchange renders the
// grid client-side behind a trade-date selector, so the adapter drives a
// headless browser: dismiss whatever popups appear, enumerate the available
// settlement dates, select each in turn, and parse the resulting table.
package cme

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quantfetch/quantfetch/adapter"
	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/internal/browser"
	"github.com/quantfetch/quantfetch/internal/parse"
	"github.com/quantfetch/quantfetch/pkg/fault"
)

const sourceName = "cme"

const (
	tableSelector = "table.main-table-wrapper, table"
	tableWait     = 15 * time.Second

	datesScript  = `Array.from(document.querySelectorAll("select.trade-date option")).map(o => o.value)`
	selectScript = `(function(v){var s=document.querySelectorAll("select.trade-date")[0];s.value=v;s.dispatchEvent(new Event("change",{bubbles:true}));})(%q)`
)

// popupSelectors are dismissed tolerantly; a popup that never shows is fine.
var popupSelectors = []string{
	"#onetrust-accept-btn-handler",
	".fancybox-close",
}

// session is the slice of the browser layer the adapter needs; tests inject
// a fake.
type session interface {
	WaitVisible(selector string, timeout time.Duration) error
	DismissPopup(selector string)
	Eval(script string, dest any) error
	HTML() (string, error)
	Close()
}

// Row is one contract-month line of a settlement table.
type Row struct {
	Month        string   `json:"month"`
	Open         *float64 `json:"open"`
	High         *float64 `json:"high"`
	Low          *float64 `json:"low"`
	Last         *float64 `json:"last"`
	Change       *float64 `json:"change"`
	Settle       *float64 `json:"settle"`
	Volume       *int64   `json:"volume"`
	OpenInterest *int64   `json:"open_interest"`
}

// Adapter reads settlement tables. One browser session serves one call.
type Adapter struct {
	identity config.Identity
	baseURL  string
	open     func(ctx context.Context, url string) (session, error)
}

// Option adjusts adapter construction.
type Option func(*Adapter)

// WithBaseURL overrides the site origin; used by tests.
func WithBaseURL(u string) Option {
	return func(a *Adapter) { a.baseURL = strings.TrimRight(u, "/") }
}

// WithOpener replaces the browser launcher; used by tests.
func WithOpener(open func(ctx context.Context, url string) (session, error)) Option {
	return func(a *Adapter) { a.open = open }
}

// New creates an adapter bound to the process identity.
func New(id config.Identity, opts ...Option) *Adapter {
	a := &Adapter{
		identity: id,
		baseURL:  "https://www.cmegroup.com",
	}
	a.open = func(ctx context.Context, url string) (session, error) {
		return browser.Open(ctx, a.identity, url)
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

// Close implements adapter.Adapter; sessions are scoped per call.
func (a *Adapter) Close(ctx context.Context) error { return nil }

// Settlements returns the settlement grid for one product page path, keyed
// by trade date as the selector lists it. At least one date must be
// available or the call fails.
func (a *Adapter) Settlements(ctx context.Context, productPath string) (map[string][]Row, error) {
	if productPath == "" {
		return nil, fault.New(fault.InvalidInput, sourceName, "settlements", "empty product path")
	}

	s, err := a.open(ctx, a.baseURL+"/"+strings.TrimPrefix(productPath, "/"))
	if err != nil {
		return nil, err
	}
	defer s.Close()

	for _, sel := range popupSelectors {
		s.DismissPopup(sel)
	}
	if err := s.WaitVisible(tableSelector, tableWait); err != nil {
		return nil, fault.Wrap(fault.SourceSchemaChanged, sourceName, "settlements", err)
	}

	var dates []string
	if err := s.Eval(datesScript, &dates); err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, fault.New(fault.SourceSchemaChanged, sourceName, "settlements",
			"no settlement dates offered")
	}

	out := make(map[string][]Row, len(dates))
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, fault.Wrap(fault.Cancelled, sourceName, "settlements", err)
		}
		if err := s.Eval(fmt.Sprintf(selectScript, date), nil); err != nil {
			return nil, err
		}
		if err := s.WaitVisible(tableSelector, tableWait); err != nil {
			return nil, fault.Wrap(fault.SourceSchemaChanged, sourceName, "settlements", err)
		}
		html, err := s.HTML()
		if err != nil {
			return nil, err
		}
		rows, err := settlementRows(html)
		if err != nil {
			return nil, err
		}
		out[date] = rows
	}
	return out, nil
}

// settlementRows parses the first table that looks like a settlement grid.
func settlementRows(html string) ([]Row, error) {
	tables, err := parse.Tables(html)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t.Column("settle") < 0 || t.Column("month") < 0 {
			continue
		}
		rows := make([]Row, 0, len(t.Rows))
		for i := range t.Rows {
			month := parse.FixMonthCode(t.Cell(i, "month"))
			if month == "" {
				continue
			}
			open, _ := parse.Number(t.Cell(i, "open"))
			high, _ := parse.Number(t.Cell(i, "high"))
			low, _ := parse.Number(t.Cell(i, "low"))
			last, _ := parse.Number(t.Cell(i, "last"))
			change, _ := parse.Number(t.Cell(i, "change"))
			settle, _ := parse.Number(t.Cell(i, "settle"))
			volume, _ := parse.Int(t.Cell(i, "volume"))
			oi, _ := parse.Int(t.Cell(i, "open interest"))
			rows = append(rows, Row{
				Month:        month,
				Open:         open,
				High:         high,
				Low:          low,
				Last:         last,
				Change:       change,
				Settle:       settle,
				Volume:       volume,
				OpenInterest: oi,
			})
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, fault.New(fault.SourceSchemaChanged, sourceName, "settlements",
		"no settlement table in snapshot")
}
