// Package msci reads end-of-day index levels from the MSCI index-master
// graph endpoint.
package msci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quantfetch/quantfetch/adapter"
	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/internal/fetch"
	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

const sourceName = "msci"

// epochFloor is the earliest calc date the endpoint serves. Requests before
// it are raised to it with a Clamped warning rather than failing or being
// silently narrowed.
var epochFloor = time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC)

// Frequency selects the level cadence.
type Frequency string

const (
	Daily   Frequency = "DAILY"
	Monthly Frequency = "END_OF_MONTH"
)

// Options configures an IndexLevels fetch. Zero values select daily STRD
// levels in USD over the full history.
type Options struct {
	Start, End     time.Time
	Variant        string // STRD, NETR, GRTR; default STRD
	Currency       string // default USD
	Frequency      Frequency
	BaseHundred    bool // rescale so the first level is 100
	IncludeReturns bool
	Timestamps     bool
}

// Information describes what a returned series actually is.
type Information struct {
	Code     string `json:"code"`
	Variant  string `json:"variant"`
	Currency string `json:"currency"`
	URL      string `json:"url"`
}

// Adapter fetches MSCI index levels.
type Adapter struct {
	client  *fetch.Client
	baseURL string
}

// Option adjusts adapter construction.
type Option func(*Adapter)

// WithBaseURL overrides the API origin; used by tests.
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
		baseURL: "https://app2.msci.com",
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

// Close implements adapter.Adapter; the adapter holds no resources.
func (a *Adapter) Close(ctx context.Context) error { return nil }

type levelsEnvelope struct {
	Indexes struct {
		IndexLevels []struct {
			Level    float64 `json:"level_eod"`
			CalcDate int64   `json:"calc_date"` // yyyymmdd
		} `json:"INDEX_LEVELS"`
	} `json:"indexes"`
}

// IndexLevels returns the level series for one index code along with a
// description of what was fetched and any warnings raised while normalizing
// the request.
func (a *Adapter) IndexLevels(ctx context.Context, code string, opts Options) (*models.TimeSeries, *Information, []fault.Warning, error) {
	if code == "" {
		return nil, nil, nil, fault.New(fault.InvalidInput, sourceName, "index_levels", "empty index code")
	}
	variant := opts.Variant
	if variant == "" {
		variant = "STRD"
	}
	currency := opts.Currency
	if currency == "" {
		currency = "USD"
	}
	freq := opts.Frequency
	if freq == "" {
		freq = Daily
	}

	end := opts.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	start := opts.Start
	if start.IsZero() {
		start = epochFloor
	}

	var warnings []fault.Warning
	if start.Before(epochFloor) {
		warnings = append(warnings, fault.WarnClamped(fmt.Sprintf(
			"start %s raised to the %s history floor %s",
			start.Format(models.ISODate), sourceName, epochFloor.Format(models.ISODate))))
		start = epochFloor
	}
	if !start.Before(end) {
		return nil, nil, nil, fault.New(fault.InvalidInput, sourceName, "index_levels",
			"start must precede end")
	}

	u := fmt.Sprintf("%s/products/service/index/indexmaster/getLevelDataForGraph"+
		"?currency_symbol=%s&index_variant=%s&start_date=%s&end_date=%s&data_frequency=%s&index_codes=%s",
		a.baseURL, currency, variant,
		start.Format("20060102"), end.Format("20060102"), freq, code)

	resp, err := a.client.Get(ctx, u, fetch.Options{
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		if fault.IsKind(err, fault.Upstream4xx) {
			return nil, nil, nil, fault.Newf(fault.NotFound, sourceName, "index_levels",
				"no index %q", code)
		}
		return nil, nil, nil, err
	}

	var envelope levelsEnvelope
	if err := resp.JSON(&envelope); err != nil {
		return nil, nil, nil, err
	}
	levels := envelope.Indexes.IndexLevels
	if len(levels) == 0 {
		return nil, nil, nil, fault.Newf(fault.NotFound, sourceName, "index_levels",
			"no levels for index %q in the requested window", code)
	}

	b := models.NewBuilder("level")
	for _, l := range levels {
		when, err := time.Parse("20060102", strconv.FormatInt(l.CalcDate, 10))
		if err != nil {
			return nil, nil, nil, fault.Newf(fault.SourceSchemaChanged, sourceName, "index_levels",
				"unparseable calc_date %d", l.CalcDate)
		}
		b.Set(when.UTC(), "level", models.Float(l.Level))
	}
	ts := b.Build()

	if opts.BaseHundred {
		ts = ts.Rebase("level", 100)
	}
	if opts.IncludeReturns {
		ts = ts.WithReturns("level", "")
	}

	info := &Information{Code: code, Variant: variant, Currency: currency, URL: u}
	return ts.Timestamps(opts.Timestamps), info, warnings, nil
}
