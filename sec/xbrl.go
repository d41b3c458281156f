package sec

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

// conceptAliases maps each canonical fundamental variable onto the XBRL
// concept names that report it; the first alias present in the facts wins.
// Registrants migrate between concepts across taxonomy vintages, so every
// list carries the spellings seen in live filings.
var conceptAliases = map[string][]string{
	"revenue": {
		"Revenues",
		"RevenueFromContractWithCustomerExcludingAssessedTax",
		"RevenueFromContractWithCustomerIncludingAssessedTax",
		"SalesRevenueNet",
		"SalesRevenueGoodsNet",
	},
	"cost_of_revenue": {
		"CostOfRevenue",
		"CostOfGoodsAndServicesSold",
		"CostOfGoodsSold",
	},
	"gross_profit":     {"GrossProfit"},
	"operating_income": {"OperatingIncomeLoss"},
	"net_income": {
		"NetIncomeLoss",
		"ProfitLoss",
		"NetIncomeLossAvailableToCommonStockholdersBasic",
	},
	"eps_basic":   {"EarningsPerShareBasic"},
	"eps_diluted": {"EarningsPerShareDiluted"},
	"total_assets": {
		"Assets",
	},
	"total_liabilities": {
		"Liabilities",
		"LiabilitiesAndStockholdersEquity",
	},
	"stockholders_equity": {
		"StockholdersEquity",
		"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest",
	},
	"cash_and_equivalents": {
		"CashAndCashEquivalentsAtCarryingValue",
		"CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents",
	},
	"long_term_debt": {
		"LongTermDebtNoncurrent",
		"LongTermDebt",
	},
	"operating_cash_flow": {
		"NetCashProvidedByUsedInOperatingActivities",
		"NetCashProvidedByUsedInOperatingActivitiesContinuingOperations",
	},
	"capital_expenditure": {
		"PaymentsToAcquirePropertyPlantAndEquipment",
		"PaymentsToAcquireProductiveAssets",
	},
}

// flowVariables report over a period and need cumulative decomposition;
// everything else is a point-in-time balance.
var flowVariables = map[string]bool{
	"revenue":             true,
	"cost_of_revenue":     true,
	"gross_profit":        true,
	"operating_income":    true,
	"net_income":          true,
	"eps_basic":           true,
	"eps_diluted":         true,
	"operating_cash_flow": true,
	"capital_expenditure": true,
}

type xbrlFact struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
	Form  string  `json:"form"`
}

type companyFacts struct {
	EntityName string `json:"entityName"`
	Facts      map[string]map[string]struct {
		Units map[string][]xbrlFact `json:"units"`
	} `json:"facts"`
}

// Fundamentals builds a canonical fundamentals series from the company-facts
// feed. The input may be a CIK or a ticker; tickers resolve through the
// company map. Quarterly flow variables reported cumulatively are decomposed
// by subtracting the prior quarters of the same fiscal year; a restatement
// that breaks the cumulative ordering yields a null for that quarter rather
// than a negative synthetic value. Annual values keep only 10-K facts whose
// reporting span exceeds ten months.
func (a *Adapter) Fundamentals(ctx context.Context, cikOrTicker string, freq models.Frequency) (*models.TimeSeries, error) {
	if freq != models.Annual && freq != models.Quarterly {
		return nil, fault.Newf(fault.InvalidInput, sourceName, "fundamentals",
			"frequency %q: want %q or %q", freq, models.Annual, models.Quarterly)
	}
	cik, err := a.resolveCIK(ctx, cikOrTicker)
	if err != nil {
		return nil, err
	}

	resp, err := a.get(ctx, fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", a.dataURL, cik))
	if err != nil {
		if fault.IsKind(err, fault.Upstream4xx) {
			return nil, fault.Newf(fault.NotFound, sourceName, "fundamentals",
				"no company facts for CIK %s", cik)
		}
		return nil, err
	}
	var facts companyFacts
	if err := resp.JSON(&facts); err != nil {
		return nil, err
	}
	if len(facts.Facts) == 0 {
		return nil, fault.Newf(fault.NotFound, sourceName, "fundamentals",
			"company facts for CIK %s are empty", cik)
	}

	variables := make([]string, 0, len(conceptAliases))
	for v := range conceptAliases {
		variables = append(variables, v)
	}
	sort.Strings(variables)

	b := models.NewBuilder(variables...)
	for _, variable := range variables {
		series := conceptSeries(&facts, variable)
		if series == nil {
			continue
		}
		var points map[string]*float64
		if freq == models.Annual {
			points = annualPoints(series, flowVariables[variable])
		} else if flowVariables[variable] {
			points = quarterlyFlowPoints(series)
		} else {
			points = quarterlyBalancePoints(series)
		}
		for end, v := range points {
			t, err := time.Parse(models.ISODate, end)
			if err != nil {
				continue
			}
			b.Set(t, variable, v)
		}
	}

	ts := b.Build()
	if ts.Len() == 0 {
		return nil, fault.Newf(fault.NotAvailable, sourceName, "fundamentals",
			"no mapped concepts reported for CIK %s", cik)
	}
	return ts, nil
}

// resolveCIK accepts a raw CIK (digits) or a ticker looked up in the company
// map.
func (a *Adapter) resolveCIK(ctx context.Context, cikOrTicker string) (string, error) {
	tok := strings.TrimSpace(cikOrTicker)
	if tok == "" {
		return "", fault.New(fault.InvalidInput, sourceName, "fundamentals", "empty CIK or ticker")
	}
	if isDigits(tok) {
		return fmt.Sprintf("%010s", tok), nil
	}
	companies, err := a.Companies(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range companies {
		if strings.EqualFold(c.Ticker, tok) {
			return c.CIK, nil
		}
	}
	return "", fault.Newf(fault.NotFound, sourceName, "fundamentals",
		"ticker %s is not in the EDGAR company map", tok)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// conceptSeries returns the facts of the first matching alias, in a
// deterministic unit (USD preferred).
func conceptSeries(facts *companyFacts, variable string) []xbrlFact {
	for _, taxonomy := range []string{"us-gaap", "ifrs-full", "dei"} {
		concepts, ok := facts.Facts[taxonomy]
		if !ok {
			continue
		}
		for _, alias := range conceptAliases[variable] {
			concept, ok := concepts[alias]
			if !ok || len(concept.Units) == 0 {
				continue
			}
			units := make([]string, 0, len(concept.Units))
			for u := range concept.Units {
				units = append(units, u)
			}
			sort.Slice(units, func(i, j int) bool {
				return unitRank(units[i]) < unitRank(units[j])
			})
			return concept.Units[units[0]]
		}
	}
	return nil
}

func unitRank(unit string) string {
	switch unit {
	case "USD":
		return "0"
	case "USD/shares":
		return "1"
	case "shares":
		return "2"
	}
	return "9" + unit
}

// annualPoints keeps 10-K facts; flow variables must additionally span more
// than ten months so cumulative quarters reported on the annual form do not
// leak in.
func annualPoints(series []xbrlFact, flow bool) map[string]*float64 {
	out := make(map[string]*float64)
	for _, f := range series {
		if !strings.HasPrefix(f.Form, "10-K") {
			continue
		}
		if flow {
			if f.Start == "" || f.End == "" || !spanExceedsMonths(f.Start, f.End, 10) {
				continue
			}
		} else if f.FP != "FY" && f.FP != "" {
			continue
		}
		if _, seen := out[f.End]; !seen {
			v := f.Val
			out[f.End] = &v
		}
	}
	return out
}

// quarterlyBalancePoints keeps instant facts from quarterly and annual forms.
func quarterlyBalancePoints(series []xbrlFact) map[string]*float64 {
	out := make(map[string]*float64)
	for _, f := range series {
		if !strings.HasPrefix(f.Form, "10-Q") && !strings.HasPrefix(f.Form, "10-K") {
			continue
		}
		if _, seen := out[f.End]; !seen {
			v := f.Val
			out[f.End] = &v
		}
	}
	return out
}

// fpOrder fixes the within-year ordering of fiscal period labels.
var fpOrder = map[string]int{"Q1": 1, "Q2": 2, "Q3": 3, "Q4": 4, "FY": 5}

// quarterlyFlowPoints reconstructs discrete quarters. Facts spanning a single
// quarter pass through; cumulative facts (Q2/Q3/FY measured from the fiscal
// year start) are decomposed by subtracting the running total of the prior
// quarters. A cumulative value below the running total means a restatement
// broke the ordering: that quarter becomes null and the running total resets
// to the reported cumulative.
func quarterlyFlowPoints(series []xbrlFact) map[string]*float64 {
	byYear := make(map[int][]xbrlFact)
	for _, f := range series {
		if !strings.HasPrefix(f.Form, "10-Q") && !strings.HasPrefix(f.Form, "10-K") {
			continue
		}
		if f.Start == "" || f.End == "" || f.FY == 0 {
			continue
		}
		byYear[f.FY] = append(byYear[f.FY], f)
	}

	out := make(map[string]*float64)
	for _, facts := range byYear {
		sort.SliceStable(facts, func(i, j int) bool {
			if facts[i].End != facts[j].End {
				return facts[i].End < facts[j].End
			}
			return fpOrder[facts[i].FP] < fpOrder[facts[j].FP]
		})

		running := 0.0
		seen := make(map[string]bool)
		for _, f := range facts {
			if seen[f.End] {
				continue
			}
			seen[f.End] = true

			if !spanExceedsMonths(f.Start, f.End, 4) {
				// Discrete quarter, reported as such.
				v := f.Val
				out[f.End] = &v
				running += f.Val
				continue
			}
			// Cumulative from fiscal year start.
			if f.Val < running {
				out[f.End] = nil
				running = f.Val
				continue
			}
			v := f.Val - running
			out[f.End] = &v
			running = f.Val
		}
	}
	return out
}

// spanExceedsMonths reports whether end is more than n calendar months after
// start. Malformed dates report false.
func spanExceedsMonths(start, end string, n int) bool {
	s, err := time.Parse(models.ISODate, start)
	if err != nil {
		return false
	}
	e, err := time.Parse(models.ISODate, end)
	if err != nil {
		return false
	}
	return e.After(s.AddDate(0, n, 0))
}
