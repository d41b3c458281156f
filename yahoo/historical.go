package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

// Frequency enumerates the supported chart intervals.
type Frequency string

const (
	Min1     Frequency = "1m"
	Min2     Frequency = "2m"
	Min5     Frequency = "5m"
	Min15    Frequency = "15m"
	Min30    Frequency = "30m"
	Min60    Frequency = "60m"
	Min90    Frequency = "90m"
	Hour1    Frequency = "1h"
	Day1     Frequency = "1d"
	Day5     Frequency = "5d"
	Week1    Frequency = "1wk"
	Month1   Frequency = "1mo"
	Quarter1 Frequency = "3mo"
)

var validFrequencies = map[Frequency]bool{
	Min1: true, Min2: true, Min5: true, Min15: true, Min30: true,
	Min60: true, Min90: true, Hour1: true, Day1: true, Day5: true,
	Week1: true, Month1: true, Quarter1: true,
}

// HistoricalOptions configures HistoricalData.
type HistoricalOptions struct {
	Frequency      Frequency // default 1d
	Start, End     time.Time // default: one year back to now
	IncludeReturns bool
	Timestamps     bool
}

// Frequency-window constraints. Exceeding a range is an InvalidInput fault;
// the adapter never silently clips.
const (
	min1MaxSpan     = 7 * 24 * time.Hour
	min1MaxLookback = 30 * 24 * time.Hour
	intradayLookback = 60 * 24 * time.Hour
	hourlyLookback  = 730 * 24 * time.Hour
)

func validateWindow(freq Frequency, start, end time.Time) error {
	now := time.Now().UTC()
	span := end.Sub(start)
	switch freq {
	case Min1:
		if span > min1MaxSpan {
			return fault.Newf(fault.InvalidInput, sourceName, "historical_data",
				"1m data is limited to %d days per call, requested %.0f days",
				int(min1MaxSpan.Hours()/24), span.Hours()/24)
		}
		if now.Sub(start) > min1MaxLookback {
			return fault.New(fault.InvalidInput, sourceName, "historical_data",
				"1m data is only available 30 days back")
		}
	case Min2, Min5, Min15, Min30, Min90:
		if now.Sub(start) > intradayLookback {
			return fault.Newf(fault.InvalidInput, sourceName, "historical_data",
				"%s data is only available 60 days back", freq)
		}
	case Min60, Hour1:
		if now.Sub(start) > hourlyLookback {
			return fault.Newf(fault.InvalidInput, sourceName, "historical_data",
				"%s data is only available 730 days back", freq)
		}
	}
	return nil
}

// HistoricalData returns an OHLCV series with dividends and splits merged on
// the same calendar keys. Columns: open, high, low, close, adj_close,
// volume, dividends, splits (+ simple_returns, log_returns when enabled).
//
// An event landing on a non-trading boundary at lower frequencies is
// forward-filled onto the earliest subsequent observed close; rows without a
// close are dropped. Multiple dividends folding into one bucket sum; splits
// multiply.
func (a *Adapter) HistoricalData(ctx context.Context, ticker string, opts HistoricalOptions) (*models.TimeSeries, error) {
	freq := opts.Frequency
	if freq == "" {
		freq = Day1
	}
	if !validFrequencies[freq] {
		return nil, fault.Newf(fault.InvalidInput, sourceName, "historical_data",
			"unsupported frequency %q", freq)
	}

	end := opts.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	start := opts.Start
	if start.IsZero() {
		start = end.AddDate(-1, 0, 0)
	}
	if !start.Before(end) {
		return nil, fault.New(fault.InvalidInput, sourceName, "historical_data",
			"start must precede end")
	}
	if err := validateWindow(freq, start, end); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=%s&events=div%%2Csplits",
		a.baseURL, url.PathEscape(ticker), start.Unix(), end.Unix(), freq)

	var resp chartEnvelope
	if err := a.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fault.Newf(fault.NotFound, sourceName, "historical_data",
			"%s: %s", ticker, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fault.Newf(fault.NotFound, sourceName, "historical_data", "no data for %s", ticker)
	}

	ts, err := buildPriceFrame(resp.Chart.Result[0])
	if err != nil {
		return nil, err
	}
	if opts.IncludeReturns {
		ts = ts.WithReturns("close", "dividends")
	}
	return ts.Timestamps(opts.Timestamps), nil
}

func buildPriceFrame(result chartResult) (*models.TimeSeries, error) {
	if len(result.Indicators.Quote) == 0 {
		return nil, fault.New(fault.SourceSchemaChanged, sourceName, "historical_data",
			"chart result carries no quote block")
	}
	q := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	b := models.NewBuilder("open", "high", "low", "close", "adj_close",
		"volume", "dividends", "splits")

	keys := make([]time.Time, 0, len(result.Timestamp))
	for i, sec := range result.Timestamp {
		when := time.Unix(sec, 0).UTC()
		keys = append(keys, when)
		b.Set(when, "open", at(q.Open, i))
		b.Set(when, "high", at(q.High, i))
		b.Set(when, "low", at(q.Low, i))
		b.Set(when, "close", at(q.Close, i))
		b.Set(when, "volume", at(q.Volume, i))
		b.Set(when, "adj_close", at(adj, i))
		b.Set(when, "dividends", models.Float(0))
		b.Set(when, "splits", models.Float(1))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	if ev := result.Events; ev != nil {
		for _, d := range ev.Dividends {
			if when, ok := fillKey(keys, b, time.Unix(d.Date, 0).UTC()); ok {
				prev := b.Value(when, "dividends")
				total := d.Amount
				if prev != nil {
					total += *prev
				}
				b.Set(when, "dividends", models.Float(total))
			}
		}
		for _, s := range ev.Splits {
			if s.Denominator == 0 {
				continue
			}
			if when, ok := fillKey(keys, b, time.Unix(s.Date, 0).UTC()); ok {
				ratio := s.Numerator / s.Denominator
				prev := b.Value(when, "splits")
				if prev != nil {
					ratio *= *prev
				}
				b.Set(when, "splits", models.Float(ratio))
			}
		}
	}

	// Drop rows without a close: boundary buckets the chart emits for
	// events only.
	for _, k := range keys {
		if b.Value(k, "close") == nil {
			b.Delete(k)
		}
	}
	return b.Build(), nil
}

// fillKey maps an event instant onto the earliest observation key at or
// after it whose close is present. Events after the last close are dropped.
func fillKey(keys []time.Time, b *models.Builder, event time.Time) (time.Time, bool) {
	for _, k := range keys {
		if !k.Before(event) && b.Value(k, "close") != nil {
			return k, true
		}
	}
	return time.Time{}, false
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}
