package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

// OptionsOptions filters an option-chain fetch.
type OptionsOptions struct {
	// Date selects a single expiry; zero fetches the front expiry.
	Date time.Time
	// StrikeMin/StrikeMax bound included strikes when non-zero.
	StrikeMin, StrikeMax float64
}

// Options returns the option chain for the underlying. Strikes within a
// maturity are unique per leg type; duplicate strikes from the source are a
// schema fault.
func (a *Adapter) Options(ctx context.Context, ticker string, opts OptionsOptions) (*models.OptionChain, error) {
	u := fmt.Sprintf("%s/v7/finance/options/%s", a.baseURL, url.PathEscape(ticker))
	if !opts.Date.IsZero() {
		u += fmt.Sprintf("?date=%d", opts.Date.UTC().Unix())
	}

	var resp optionsEnvelope
	if err := a.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.OptionChain.Error != nil {
		return nil, fault.Newf(fault.NotFound, sourceName, "options",
			"%s: %s", ticker, resp.OptionChain.Error.Description)
	}
	if len(resp.OptionChain.Result) == 0 {
		return nil, fault.Newf(fault.NotFound, sourceName, "options", "no chain for %s", ticker)
	}

	r := resp.OptionChain.Result[0]
	chain := &models.OptionChain{
		Underlying: models.Security{
			Ticker:   r.UnderlyingSymbol,
			Name:     coalesce(r.Quote.LongName, r.Quote.ShortName),
			Type:     models.TypeEquity,
			Currency: r.Quote.Currency,
		},
	}

	for _, exp := range r.Options {
		maturity := time.Unix(exp.ExpirationDate, 0).UTC().Format(models.ISODate)
		calls, err := convertLegs(exp.Calls, maturity, opts)
		if err != nil {
			return nil, err
		}
		puts, err := convertLegs(exp.Puts, maturity, opts)
		if err != nil {
			return nil, err
		}
		chain.Calls = append(chain.Calls, calls...)
		chain.Puts = append(chain.Puts, puts...)
	}
	return chain, nil
}

func convertLegs(legs []optionLeg, maturity string, opts OptionsOptions) ([]models.OptionLeg, error) {
	seen := make(map[float64]bool, len(legs))
	out := make([]models.OptionLeg, 0, len(legs))
	for _, l := range legs {
		if opts.StrikeMin != 0 && l.Strike < opts.StrikeMin {
			continue
		}
		if opts.StrikeMax != 0 && l.Strike > opts.StrikeMax {
			continue
		}
		if seen[l.Strike] {
			return nil, fault.Newf(fault.SourceSchemaChanged, sourceName, "options",
				"duplicate strike %.2f within maturity %s", l.Strike, maturity)
		}
		seen[l.Strike] = true
		out = append(out, models.OptionLeg{
			Maturity:     maturity,
			Strike:       l.Strike,
			Symbol:       l.ContractSymbol,
			Last:         l.LastPrice,
			Bid:          l.Bid,
			Ask:          l.Ask,
			Volume:       l.Volume,
			OpenInterest: l.OpenInterest,
			IV:           l.ImpliedVolatility,
			ITM:          l.InTheMoney,
		})
	}
	return out, nil
}
