// Package stockanalysis reads the vendor fundamentals pages that embed their
// state as JSON hydration payloads inside an HTML shell. Each dataset lives
// on its own URL suffix; the adapter visits the suffix, slices the payload
// out, and reshapes it onto the canonical model.
//
// The vendor compresses large numbers through column labels like
// "Revenue (B)"; the adapter multiplies values back to absolute units and
// strips the suffix.
package stockanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/quantfetch/quantfetch/adapter"
	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/internal/fetch"
	"github.com/quantfetch/quantfetch/internal/parse"
	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

const sourceName = "stockanalysis"

// Adapter reads the vendor fundamentals pages. Instances memoize raw
// payloads per page and are not safe for concurrent use.
type Adapter struct {
	client  *fetch.Client
	memo    *adapter.Memo
	baseURL string
}

// Option adjusts adapter construction.
type Option func(*Adapter)

// WithBaseURL overrides the site origin; used by tests.
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
		baseURL: "https://stockanalysis.com",
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

// payload fetches one page suffix and slices out the hydration payload for
// the marker, memoizing per suffix.
func (a *Adapter) payload(ctx context.Context, ticker, suffix, marker string) (json.RawMessage, error) {
	key := "page:" + ticker + ":" + suffix
	if v, ok := a.memo.Get(key); ok {
		return v.(json.RawMessage), nil
	}

	u := fmt.Sprintf("%s/stocks/%s/%s", a.baseURL, strings.ToLower(ticker), suffix)
	resp, err := a.client.Get(ctx, u, fetch.Options{})
	if err != nil {
		if fault.IsKind(err, fault.Upstream4xx) {
			return nil, fault.Newf(fault.NotFound, sourceName, "payload", "no page for %s", ticker)
		}
		return nil, err
	}

	raw, err := parse.Hydration(resp.Text(), marker)
	if err != nil {
		return nil, err
	}
	a.memo.Put(key, raw)
	return raw, nil
}

// tableData is the vendor's column-table shape: one period axis, rows of
// labelled value arrays aligned to it.
type tableData struct {
	Currency string   `json:"currency"`
	Periods  []string `json:"periods"`
	Rows     []struct {
		Label  string     `json:"label"`
		Values []*float64 `json:"values"`
	} `json:"rows"`
}

// statement reshapes a tableData payload into a Statement, undoing the
// compressed-units labels.
func statement(raw json.RawMessage, envelopeKey string, freq models.Frequency) (*models.Statement, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fault.Wrap(fault.Parse, sourceName, "statement", err)
	}
	// Inline-script hydration slices out the inner object directly; the
	// application/json path wraps it under the marker key.
	inner, ok := envelope[envelopeKey]
	if !ok {
		inner = raw
	}
	var td tableData
	if err := json.Unmarshal(inner, &td); err != nil {
		return nil, fault.Wrap(fault.Parse, sourceName, "statement", err)
	}
	if len(td.Periods) == 0 {
		return nil, fault.New(fault.SourceSchemaChanged, sourceName, "statement",
			"payload has no period axis")
	}

	st := models.NewStatement(freq, td.Currency)
	for _, row := range td.Rows {
		label, mult := parse.UnitSuffix(row.Label)
		for i, period := range td.Periods {
			if i >= len(row.Values) {
				break
			}
			v := row.Values[i]
			if v != nil && mult != 1 {
				v = models.Float(*v * mult)
			}
			st.Set(period, label, v)
		}
	}
	return st, nil
}

var statementSuffixes = map[string]string{
	"income":   "financials/",
	"balance":  "financials/balance-sheet/",
	"cashflow": "financials/cash-flow-statement/",
	"ratios":   "financials/ratios/",
}

// Financials returns the four statements at the requested frequency.
func (a *Adapter) Financials(ctx context.Context, ticker string, freq models.Frequency) (*models.StatementSet, error) {
	if freq != models.Annual && freq != models.Quarterly {
		return nil, fault.Newf(fault.InvalidInput, sourceName, "financials",
			"frequency must be annual or quarterly, got %q", freq)
	}

	fetchOne := func(kind string) (*models.Statement, error) {
		suffix := statementSuffixes[kind]
		if freq == models.Quarterly {
			suffix += "?p=quarterly"
		}
		raw, err := a.payload(ctx, ticker, suffix, "financialData")
		if err != nil {
			return nil, err
		}
		return statement(raw, "financialData", freq)
	}

	set := &models.StatementSet{}
	var err error
	if set.Income, err = fetchOne("income"); err != nil {
		return nil, err
	}
	if set.Balance, err = fetchOne("balance"); err != nil {
		return nil, err
	}
	if set.CashFlow, err = fetchOne("cashflow"); err != nil {
		return nil, err
	}
	if set.Ratios, err = fetchOne("ratios"); err != nil {
		return nil, err
	}
	return set, nil
}

// Segments returns revenue and KPI breakdowns by business segment.
func (a *Adapter) Segments(ctx context.Context, ticker string) (*models.Statement, error) {
	raw, err := a.payload(ctx, ticker, "metrics/revenue-by-segment/", "segmentData")
	if err != nil {
		return nil, err
	}
	return statement(raw, "segmentData", models.Annual)
}

// Estimates returns forward analyst estimates keyed by forecast period.
func (a *Adapter) Estimates(ctx context.Context, ticker string) (*models.Statement, error) {
	raw, err := a.payload(ctx, ticker, "forecast/", "analystEstimates")
	if err != nil {
		return nil, err
	}
	return statement(raw, "analystEstimates", models.Annual)
}

// PriceTarget is one analyst action with a target price.
type PriceTarget struct {
	Date    string   `json:"date"`
	Analyst string   `json:"analyst"`
	Rating  string   `json:"rating"`
	Target  *float64 `json:"target"`
}

// PriceTargetSummary aggregates the targets the vendor displays.
type PriceTargetSummary struct {
	Average *float64      `json:"average"`
	High    *float64      `json:"high"`
	Low     *float64      `json:"low"`
	Count   int           `json:"count"`
	Targets []PriceTarget `json:"targets"`
}

// PriceTargets returns the analyst price-target block.
func (a *Adapter) PriceTargets(ctx context.Context, ticker string) (*PriceTargetSummary, error) {
	raw, err := a.payload(ctx, ticker, "forecast/price-target/", "priceTargets")
	if err != nil {
		return nil, err
	}
	var envelope struct {
		PriceTargets PriceTargetSummary `json:"priceTargets"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fault.Wrap(fault.Parse, sourceName, "price_targets", err)
	}
	return &envelope.PriceTargets, nil
}

// Prices returns the daily close/volume series the vendor embeds on the
// history page.
func (a *Adapter) Prices(ctx context.Context, ticker string, timestamps bool) (*models.TimeSeries, error) {
	raw, err := a.payload(ctx, ticker, "history/", "priceHistory")
	if err != nil {
		return nil, err
	}
	var envelope struct {
		PriceHistory []struct {
			Date   string   `json:"date"`
			Close  *float64 `json:"close"`
			Volume *float64 `json:"volume"`
		} `json:"priceHistory"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fault.Wrap(fault.Parse, sourceName, "prices", err)
	}
	if len(envelope.PriceHistory) == 0 {
		return nil, fault.Newf(fault.NotFound, sourceName, "prices", "no price history for %s", ticker)
	}

	b := models.NewBuilder("close", "volume")
	for _, p := range envelope.PriceHistory {
		when, err := time.Parse(models.ISODate, p.Date)
		if err != nil {
			return nil, fault.Newf(fault.SourceSchemaChanged, sourceName, "prices",
				"unparseable date %q", p.Date)
		}
		b.Set(when.UTC(), "close", p.Close)
		b.Set(when.UTC(), "volume", p.Volume)
	}
	return b.Build().Timestamps(timestamps), nil
}

// Profile returns the descriptive company record.
func (a *Adapter) Profile(ctx context.Context, ticker string) (*models.Profile, error) {
	raw, err := a.payload(ctx, ticker, "company/", "companyProfile")
	if err != nil {
		return nil, err
	}
	var envelope struct {
		CompanyProfile struct {
			Name        string `json:"name"`
			Ticker      string `json:"ticker"`
			Sector      string `json:"sector"`
			Industry    string `json:"industry"`
			Country     string `json:"country"`
			Website     string `json:"website"`
			Description string `json:"description"`
			Employees   int64  `json:"employees"`
			Currency    string `json:"currency"`
			Exchange    string `json:"exchange"`
		} `json:"companyProfile"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fault.Wrap(fault.Parse, sourceName, "profile", err)
	}
	cp := envelope.CompanyProfile
	if cp.Name == "" {
		return nil, fault.Newf(fault.NotFound, sourceName, "profile", "no profile for %s", ticker)
	}
	return &models.Profile{
		Security: models.Security{
			Ticker:   strings.ToUpper(ticker),
			Name:     cp.Name,
			Type:     models.TypeEquity,
			Currency: cp.Currency,
			Exchange: cp.Exchange,
		},
		Sector:      cp.Sector,
		Industry:    cp.Industry,
		Country:     cp.Country,
		Website:     cp.Website,
		Description: cp.Description,
		Employees:   cp.Employees,
	}, nil
}
