package models

import "time"

// Article is one news item. Date carries the best-effort parsed time; when
// the source supplied only a date, the time-of-day is midnight UTC.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Date        time.Time `json:"-"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Authors     []string  `json:"authors,omitempty"`
}

// DateKey renders the article date per the timestamps convention: epoch
// seconds when timestamps is true, ISO date otherwise.
func (a Article) DateKey(timestamps bool) any {
	if timestamps {
		return a.Date.UTC().Unix()
	}
	return a.Date.UTC().Format(ISODate)
}

// OwnershipRow is one row of an ownership table (insider, institutional, or
// fund ownership). Percentages are fractions in [0, 1].
type OwnershipRow struct {
	Holder       string   `json:"holder"`
	Relation     string   `json:"relation,omitempty"`
	ReportDate   string   `json:"report_date,omitempty"`
	Shares       *float64 `json:"shares,omitempty"`
	Value        *float64 `json:"value,omitempty"`
	PctHeld      *float64 `json:"pct_held,omitempty"`
	PctChange    *float64 `json:"pct_change,omitempty"`
	LatestTrans  string   `json:"latest_transaction,omitempty"`
}

// InsiderTrade is one insider transaction.
type InsiderTrade struct {
	Insider     string   `json:"insider"`
	Relation    string   `json:"relation,omitempty"`
	Date        string   `json:"date"`
	Transaction string   `json:"transaction"`
	Shares      *float64 `json:"shares,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Value       *float64 `json:"value,omitempty"`
}

// Recommendation is one analyst action.
type Recommendation struct {
	Date     string `json:"date"`
	Firm     string `json:"firm"`
	ToGrade  string `json:"to_grade,omitempty"`
	FromGrade string `json:"from_grade,omitempty"`
	Action   string `json:"action,omitempty"`
}

// RecommendationTrend is the buy/hold/sell count for one trailing period.
// Average is the canonical score (5·buy + 3·hold + 1·sell) / n, where buy
// and sell fold in their strong variants.
type RecommendationTrend struct {
	Period     string   `json:"period"` // e.g. "0m", "-1m"
	StrongBuy  int      `json:"strong_buy"`
	Buy        int      `json:"buy"`
	Hold       int      `json:"hold"`
	Sell       int      `json:"sell"`
	StrongSell int      `json:"strong_sell"`
	Average    *float64 `json:"average"`
}

// ESGScores is the sustainability block for a security.
type ESGScores struct {
	Total        *float64 `json:"total"`
	Environment  *float64 `json:"environment"`
	Social       *float64 `json:"social"`
	Governance   *float64 `json:"governance"`
	Percentile   *float64 `json:"percentile,omitempty"`
	ControversyLevel *float64 `json:"controversy_level,omitempty"`
}

// OwnershipBreakdown is the major-holders summary. All values fractions.
type OwnershipBreakdown struct {
	InsidersPct              *float64 `json:"insiders_pct"`
	InstitutionsPct          *float64 `json:"institutions_pct"`
	InstitutionsFloatPct     *float64 `json:"institutions_float_pct,omitempty"`
	InstitutionsCount        *float64 `json:"institutions_count,omitempty"`
}

// FundStatistics is the summary block for ETFs and mutual funds.
type FundStatistics struct {
	Category       string   `json:"category,omitempty"`
	Family         string   `json:"family,omitempty"`
	TotalAssets    *float64 `json:"total_assets,omitempty"`
	ExpenseRatio   *float64 `json:"expense_ratio,omitempty"` // fraction
	Yield          *float64 `json:"yield,omitempty"`         // fraction
	Turnover       *float64 `json:"turnover,omitempty"`      // fraction
	InceptionDate  string   `json:"inception_date,omitempty"`
}

// FundHolding is one position of an ETF/fund top-holdings table.
type FundHolding struct {
	Symbol  string   `json:"symbol"`
	Name    string   `json:"name,omitempty"`
	PctHeld *float64 `json:"pct_held,omitempty"` // fraction
}
