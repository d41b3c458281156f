// Package yahoo implements the historical-quote adapter for the primary
// equity/FX/crypto source. It wraps the public v8 chart, v10 quoteSummary,
// v7 options, and v1 search endpoints and emits canonical model values.
//
// One Adapter instance memoizes raw quoteSummary payloads per sub-page id so
// that asking for the balance sheet and then the cash-flow statement reuses
// a single fetch. Instances are not safe for concurrent use; create one per
// goroutine.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/quantfetch/quantfetch/adapter"
	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/internal/fetch"
	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

const sourceName = "yahoo"

// Adapter fetches Yahoo Finance data.
type Adapter struct {
	client  *fetch.Client
	memo    *adapter.Memo
	baseURL string
}

// Option adjusts adapter construction.
type Option func(*Adapter)

// WithBaseURL overrides the API origin; used by tests against a local server.
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
		baseURL: "https://query1.finance.yahoo.com",
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

// Close drops the memo table. The shared HTTP client is unaffected.
func (a *Adapter) Close(ctx context.Context) error {
	a.memo.Drop()
	return nil
}

// --- Shared plumbing ---

func (a *Adapter) getJSON(ctx context.Context, rawURL string, dest any) error {
	resp, err := a.client.Get(ctx, rawURL, fetch.Options{
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return err
	}
	return resp.JSON(dest)
}

// modules fetches quoteSummary modules, memoizing each raw module payload
// per ticker. A module the source has no data for yields a NotAvailable
// fault (the object exists, the dataset does not apply to it).
func (a *Adapter) modules(ctx context.Context, ticker string, names ...string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(names))
	var missing []string
	for _, n := range names {
		if v, ok := a.memo.Get("quoteSummary:" + ticker + ":" + n); ok {
			out[n] = v.(json.RawMessage)
		} else {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		a.baseURL, url.PathEscape(ticker), strings.Join(missing, ","))

	var resp quoteSummaryEnvelope
	if err := a.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fault.Newf(fault.NotFound, sourceName, "quote_summary",
			"%s: %s", ticker, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fault.Newf(fault.NotFound, sourceName, "quote_summary", "no data for %s", ticker)
	}

	for name, raw := range resp.QuoteSummary.Result[0] {
		a.memo.Put("quoteSummary:"+ticker+":"+name, raw)
		out[name] = raw
	}
	for _, n := range missing {
		if _, ok := out[n]; !ok {
			return nil, fault.Newf(fault.NotAvailable, sourceName, "quote_summary",
				"module %s does not apply to %s", n, ticker)
		}
	}
	return out, nil
}

// decodeModule unmarshals one memoized module into dest.
func decodeModule(raw json.RawMessage, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return fault.Wrap(fault.Parse, sourceName, "quote_summary", err)
	}
	return nil
}

// Profile returns the descriptive record for a ticker.
func (a *Adapter) Profile(ctx context.Context, ticker string) (*models.Profile, error) {
	mods, err := a.modules(ctx, ticker, "assetProfile", "quoteType", "price")
	if err != nil {
		return nil, err
	}

	var ap assetProfile
	if err := decodeModule(mods["assetProfile"], &ap); err != nil {
		return nil, err
	}
	var qt quoteType
	if err := decodeModule(mods["quoteType"], &qt); err != nil {
		return nil, err
	}
	var pr priceModule
	if err := decodeModule(mods["price"], &pr); err != nil {
		return nil, err
	}

	p := &models.Profile{
		Security: models.Security{
			Ticker:   ticker,
			Name:     coalesce(qt.LongName, qt.ShortName),
			Type:     securityType(qt.QuoteType),
			Currency: pr.Currency,
			Exchange: qt.Exchange,
		},
		Sector:      ap.Sector,
		Industry:    ap.Industry,
		Country:     ap.Country,
		Website:     ap.Website,
		Description: ap.LongBusinessSummary,
		Employees:   ap.FullTimeEmployees,
	}
	return p, nil
}

// ResolveISIN resolves a ticker from an ISIN via the search endpoint. A
// NotFound fault is returned when no mapping exists.
func (a *Adapter) ResolveISIN(ctx context.Context, isin string) (string, error) {
	u := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=5&newsCount=0",
		a.baseURL, url.QueryEscape(isin))

	var resp searchResponse
	if err := a.getJSON(ctx, u, &resp); err != nil {
		return "", err
	}
	for _, q := range resp.Quotes {
		if q.Symbol != "" {
			return q.Symbol, nil
		}
	}
	return "", fault.Newf(fault.NotFound, sourceName, "resolve_isin",
		"no ticker mapped to ISIN %s", isin)
}

// Logo fetches the issuer's logo bytes via the website domain from the
// profile.
func (a *Adapter) Logo(ctx context.Context, ticker string) ([]byte, error) {
	p, err := a.Profile(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if p.Website == "" {
		return nil, fault.Newf(fault.NotAvailable, sourceName, "logo",
			"%s has no website on record", ticker)
	}
	domain := p.Website
	if u, err := url.Parse(domain); err == nil && u.Host != "" {
		domain = u.Host
	}
	resp, err := a.client.Get(ctx, "https://logo.clearbit.com/"+domain, fetch.Options{})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func securityType(quoteType string) models.SecurityType {
	switch strings.ToUpper(quoteType) {
	case "EQUITY":
		return models.TypeEquity
	case "ETF":
		return models.TypeETF
	case "MUTUALFUND":
		return models.TypeMutualFund
	case "INDEX":
		return models.TypeIndex
	case "FUTURE":
		return models.TypeFuture
	case "CURRENCY":
		return models.TypeCurrency
	case "CRYPTOCURRENCY":
		return models.TypeCrypto
	case "OPTION":
		return models.TypeOption
	default:
		return models.TypeEquity
	}
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
