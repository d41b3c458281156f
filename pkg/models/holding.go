package models

// Issuer identifies the entity behind a held instrument.
type Issuer struct {
	Name    string `json:"name"`
	LEI     string `json:"lei,omitempty"`
	Country string `json:"country,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Identifiers carries whichever security identifiers the source disclosed.
type Identifiers struct {
	CUSIP  string            `json:"cusip,omitempty"`
	ISIN   string            `json:"isin,omitempty"`
	Ticker string            `json:"ticker,omitempty"`
	Other  map[string]string `json:"other,omitempty"`
}

// CurrencyAmount is a value in a named currency with an optional FX rate to
// the portfolio's reporting currency.
type CurrencyAmount struct {
	Name   string   `json:"name"`
	FXRate *float64 `json:"fx_rate,omitempty"`
}

// Amount describes position size and valuation.
type Amount struct {
	Quantity           *float64       `json:"quantity"`
	QuantityUnit       string         `json:"quantity_unit,omitempty"` // e.g. "NS" (number of shares), "PA" (principal)
	MarketValue        *float64       `json:"market_value"`
	Currency           CurrencyAmount `json:"currency"`
	PctOfPortfolio     *float64       `json:"percentage_of_portfolio,omitempty"` // fraction in [0,1]
}

// PayoffDirection is long, short, or unknown (empty).
type PayoffDirection string

const (
	Long  PayoffDirection = "long"
	Short PayoffDirection = "short"
)

// AssetClass pairs the filing's abbreviation with a readable name.
type AssetClass struct {
	Abbr string `json:"abbr"` // e.g. "EC" equity-common
	Name string `json:"name,omitempty"`
}

// DebtInfo carries the fields meaningful only for debt holdings.
type DebtInfo struct {
	MaturityDate     string   `json:"maturity_date,omitempty"`
	CouponRate       *float64 `json:"coupon_rate,omitempty"`
	CouponKind       string   `json:"coupon_kind,omitempty"`
	InDefault        bool     `json:"in_default,omitempty"`
	CouponsDeferred  bool     `json:"coupons_deferred,omitempty"`
	PaidInKind       bool     `json:"paid_in_kind,omitempty"`
	Convertible      bool     `json:"convertible,omitempty"`
}

// LendingInfo carries securities-lending state for a holding.
type LendingInfo struct {
	CashCollateral     *float64 `json:"cash_collateral,omitempty"`
	NonCashCollateral  *float64 `json:"non_cash_collateral,omitempty"`
	OnLoan             *float64 `json:"on_loan,omitempty"`
}

// Holding is one position inside a portfolio.
type Holding struct {
	Issuer          Issuer          `json:"issuer"`
	Title           string          `json:"title,omitempty"`
	Identifiers     Identifiers     `json:"identifiers"`
	Amount          Amount          `json:"amount"`
	PayoffDirection PayoffDirection `json:"payoff_direction,omitempty"`
	AssetClass      AssetClass      `json:"asset_class"`
	Restricted      bool            `json:"restricted"`
	FairValueLevel  *int            `json:"fair_value_level,omitempty"` // 1, 2, 3 or nil
	Debt            *DebtInfo       `json:"debt_info,omitempty"`
	Derivative      *Derivative     `json:"derivative_info,omitempty"`
	Lending         *LendingInfo    `json:"lending_info,omitempty"`

	// VotingAuthority is populated only for 13F holdings.
	VotingAuthority *VotingAuthority `json:"voting_authority,omitempty"`
}

// VotingAuthority is the 13F sole/shared/none share split.
type VotingAuthority struct {
	Sole   int64 `json:"sole"`
	Shared int64 `json:"shared"`
	None   int64 `json:"none"`
}

// Portfolio is an unordered set of holdings at a report date.
type Portfolio struct {
	ReportDate string    `json:"report_date"`
	TotalAUM   *float64  `json:"total_aum,omitempty"`
	Holdings   []Holding `json:"holdings"`
	CoManagers []string  `json:"co_managers,omitempty"`
}
