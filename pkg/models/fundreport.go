package models

// GeneralInfo is the registrant block of an NPORT fund report.
type GeneralInfo struct {
	Name             string `json:"name"`
	CIK              string `json:"cik,omitempty"`
	LEI              string `json:"lei,omitempty"`
	SeriesName       string `json:"series_name,omitempty"`
	SeriesLEI        string `json:"series_lei,omitempty"`
	SeriesID         string `json:"series_id,omitempty"`
	FiscalYearEnd    string `json:"fiscal_year_end,omitempty"`
	ReportingPeriod  string `json:"reporting_period"` // ISO date
	IsFinalFiling    bool   `json:"is_final_filing"`
	Address          *Address `json:"address,omitempty"`
}

// FundTotals are fund-level aggregate values.
type FundTotals struct {
	TotalAssets      *float64 `json:"total_assets"`
	TotalLiabilities *float64 `json:"total_liabilities"`
	NetAssets        *float64 `json:"net_assets"`

	AssetsAttrMiscSecurities *float64 `json:"assets_attr_misc_securities,omitempty"`
	AssetsInvested           *float64 `json:"assets_invested,omitempty"`
	BorrowingPayableOneYr    *float64 `json:"borrowing_payable_within_one_year,omitempty"`
	BorrowingPayableLongTerm *float64 `json:"borrowing_payable_long_term,omitempty"`
	DelayedDeliveryPayable   *float64 `json:"delayed_delivery_payable,omitempty"`
	StandbyCommitmentPayable *float64 `json:"standby_commitment_payable,omitempty"`
	LiquidationPreference    *float64 `json:"liquidation_preference,omitempty"`
	CashNotReported          *float64 `json:"cash_not_reported,omitempty"`
}

// FundRisk carries interest-rate and credit-spread risk metrics, present
// only when the fund is large enough to be required to report them.
type FundRisk struct {
	// DV01 and DV100 are keyed by tenor bucket, e.g. "3M", "1Y", "30Y".
	DV01  map[string]*float64 `json:"dv01,omitempty"`
	DV100 map[string]*float64 `json:"dv100,omitempty"`
	// Credit spread risk split by investment grade / non-investment grade.
	SpreadRiskIG    map[string]*float64 `json:"spread_risk_ig,omitempty"`
	SpreadRiskNonIG map[string]*float64 `json:"spread_risk_non_ig,omitempty"`
}

// FundLending summarizes securities-lending counterparties and collateral.
type FundLending struct {
	Counterparties       []LendingCounterparty `json:"counterparties,omitempty"`
	NonCashCollateral    *float64              `json:"non_cash_collateral,omitempty"`
	LoanedSecuritiesValue *float64             `json:"loaned_securities_value,omitempty"`
}

// LendingCounterparty is a borrower of fund securities.
type LendingCounterparty struct {
	Name  string   `json:"name"`
	LEI   string   `json:"lei,omitempty"`
	Value *float64 `json:"value,omitempty"`
}

// MonthlyValue keys a metric by calendar month (ISO date of month end).
type MonthlyValue struct {
	Month string   `json:"month"`
	Value *float64 `json:"value"`
}

// FundReturnInfo is the three-month return block, including class returns
// and derivative-category gains.
type FundReturnInfo struct {
	ClassReturns map[string][]MonthlyValue `json:"class_returns,omitempty"` // class id → returns as fractions
	// Realized and unrealized gains per derivative category, per month.
	DerivativeGains map[string][]MonthlyValue `json:"derivative_gains,omitempty"`
}

// FundFlowInfo is the three-month subscription/redemption block. Exactly the
// three calendar months of the reporting period appear, in ascending order.
type FundFlowInfo struct {
	Sales       []MonthlyValue `json:"sales"`
	Reinvestment []MonthlyValue `json:"reinvestment"`
	Redemptions []MonthlyValue `json:"redemptions"`
}

// FundInfo groups the fund-level sections of an NPORT report.
type FundInfo struct {
	Totals  FundTotals      `json:"totals"`
	Risk    *FundRisk       `json:"risk,omitempty"`
	Lending *FundLending    `json:"lending,omitempty"`
	Returns *FundReturnInfo `json:"return_info,omitempty"`
	Flows   *FundFlowInfo   `json:"flow_info,omitempty"`
}

// Signature closes an NPORT report.
type Signature struct {
	DateSigned string `json:"date_signed,omitempty"`
	NameOfApplicant string `json:"name_of_applicant,omitempty"`
	Signer     string `json:"signer,omitempty"`
	Title      string `json:"title,omitempty"`
}

// FundReport is a parsed NPORT filing body.
type FundReport struct {
	GeneralInfo      GeneralInfo `json:"general_info"`
	FundInfo         FundInfo    `json:"fund_info"`
	Portfolio        []Holding   `json:"portfolio"`
	ExplanatoryNotes map[string]string `json:"explanatory_notes,omitempty"`
	Signature        *Signature  `json:"signature,omitempty"`
}

// HasShortPositions reports whether any holding is marked short.
func (r *FundReport) HasShortPositions() bool {
	for _, h := range r.Portfolio {
		if h.PayoffDirection == Short {
			return true
		}
	}
	return false
}
