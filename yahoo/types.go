package yahoo

import "encoding/json"

// rawFmt is Yahoo's {raw, fmt} number wrapper. Raw is nil when the field is
// absent or the source sends an empty object.
type rawFmt struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- quoteSummary ---

type quoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *apiError                    `json:"error"`
	} `json:"quoteSummary"`
}

type assetProfile struct {
	Sector              string `json:"sector"`
	Industry            string `json:"industry"`
	Country             string `json:"country"`
	Website             string `json:"website"`
	LongBusinessSummary string `json:"longBusinessSummary"`
	FullTimeEmployees   int64  `json:"fullTimeEmployees"`
}

type quoteType struct {
	QuoteType string `json:"quoteType"`
	LongName  string `json:"longName"`
	ShortName string `json:"shortName"`
	Exchange  string `json:"exchange"`
}

type priceModule struct {
	Currency string `json:"currency"`
}

// --- chart ---

type chartEnvelope struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency string `json:"currency"`
		Symbol   string `json:"symbol"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Events     *chartEvents `json:"events"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

type chartEvents struct {
	Dividends map[string]struct {
		Amount float64 `json:"amount"`
		Date   int64   `json:"date"`
	} `json:"dividends"`
	Splits map[string]struct {
		Numerator   float64 `json:"numerator"`
		Denominator float64 `json:"denominator"`
		Date        int64   `json:"date"`
	} `json:"splits"`
}

// --- search ---

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		LongName  string `json:"longname"`
		ShortName string `json:"shortname"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// --- options ---

type optionsEnvelope struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string  `json:"underlyingSymbol"`
			ExpirationDates  []int64 `json:"expirationDates"`
			Quote            struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				Currency           string  `json:"currency"`
				LongName           string  `json:"longName"`
				ShortName          string  `json:"shortName"`
			} `json:"quote"`
			Options []struct {
				ExpirationDate int64       `json:"expirationDate"`
				Calls          []optionLeg `json:"calls"`
				Puts           []optionLeg `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"optionChain"`
}

type optionLeg struct {
	ContractSymbol    string   `json:"contractSymbol"`
	Strike            float64  `json:"strike"`
	LastPrice         *float64 `json:"lastPrice"`
	Bid               *float64 `json:"bid"`
	Ask               *float64 `json:"ask"`
	Volume            *float64 `json:"volume"`
	OpenInterest      *float64 `json:"openInterest"`
	ImpliedVolatility *float64 `json:"impliedVolatility"`
	InTheMoney        bool     `json:"inTheMoney"`
	Expiration        int64    `json:"expiration"`
}

// --- fundamentals ---

type statementHistory struct {
	IncomeStatementHistory struct {
		Statements []map[string]json.RawMessage `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
	IncomeStatementHistoryQuarterly struct {
		Statements []map[string]json.RawMessage `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistoryQuarterly"`
	BalanceSheetHistory struct {
		Statements []map[string]json.RawMessage `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
	BalanceSheetHistoryQuarterly struct {
		Statements []map[string]json.RawMessage `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistoryQuarterly"`
	CashflowStatementHistory struct {
		Statements []map[string]json.RawMessage `json:"cashflowStatements"`
	} `json:"cashflowStatementHistory"`
	CashflowStatementHistoryQuarterly struct {
		Statements []map[string]json.RawMessage `json:"cashflowStatements"`
	} `json:"cashflowStatementHistoryQuarterly"`
}

// --- ownership and analyst modules ---

type holderList struct {
	Holders []struct {
		Name              string `json:"name"`
		Relation          string `json:"relation"`
		Organization      string `json:"organization"`
		LatestTransDate   rawFmt `json:"latestTransDate"`
		TransactionDescription string `json:"transactionDescription"`
		PositionDirect    rawFmt `json:"positionDirect"`
	} `json:"holders"`
}

type ownershipList struct {
	OwnershipList []struct {
		Organization string `json:"organization"`
		ReportDate   rawFmt `json:"reportDate"`
		PctHeld      rawFmt `json:"pctHeld"`
		Position     rawFmt `json:"position"`
		Value        rawFmt `json:"value"`
		PctChange    rawFmt `json:"pctChange"`
	} `json:"ownershipList"`
}

type insiderTransactions struct {
	Transactions []struct {
		FilerName       string `json:"filerName"`
		FilerRelation   string `json:"filerRelation"`
		TransactionText string `json:"transactionText"`
		StartDate       rawFmt `json:"startDate"`
		Shares          rawFmt `json:"shares"`
		Value           rawFmt `json:"value"`
	} `json:"transactions"`
}

type upgradeDowngradeHistory struct {
	History []struct {
		EpochGradeDate int64  `json:"epochGradeDate"`
		Firm           string `json:"firm"`
		ToGrade        string `json:"toGrade"`
		FromGrade      string `json:"fromGrade"`
		Action         string `json:"action"`
	} `json:"history"`
}

type recommendationTrend struct {
	Trend []struct {
		Period     string `json:"period"`
		StrongBuy  int    `json:"strongBuy"`
		Buy        int    `json:"buy"`
		Hold       int    `json:"hold"`
		Sell       int    `json:"sell"`
		StrongSell int    `json:"strongSell"`
	} `json:"trend"`
}

type secFilingsModule struct {
	Filings []struct {
		Date    string `json:"date"`
		Type    string `json:"type"`
		Title   string `json:"title"`
		EdgarURL string `json:"edgarUrl"`
	} `json:"filings"`
}

type esgScoresModule struct {
	TotalEsg         rawFmt  `json:"totalEsg"`
	EnvironmentScore rawFmt  `json:"environmentScore"`
	SocialScore      rawFmt  `json:"socialScore"`
	GovernanceScore  rawFmt  `json:"governanceScore"`
	Percentile       rawFmt  `json:"percentile"`
	HighestControversy *float64 `json:"highestControversy"`
}

type majorHoldersBreakdown struct {
	InsidersPercentHeld       rawFmt `json:"insidersPercentHeld"`
	InstitutionsPercentHeld   rawFmt `json:"institutionsPercentHeld"`
	InstitutionsFloatPercentHeld rawFmt `json:"institutionsFloatPercentHeld"`
	InstitutionsCount         rawFmt `json:"institutionsCount"`
}

type fundProfileModule struct {
	CategoryName string `json:"categoryName"`
	Family       string `json:"family"`
	FeesExpensesInvestment struct {
		AnnualReportExpenseRatio rawFmt `json:"annualReportExpenseRatio"`
		AnnualHoldingsTurnover   rawFmt `json:"annualHoldingsTurnover"`
	} `json:"feesExpensesInvestment"`
}

type topHoldingsModule struct {
	Holdings []struct {
		Symbol      string `json:"symbol"`
		HoldingName string `json:"holdingName"`
		HoldingPercent rawFmt `json:"holdingPercent"`
	} `json:"holdings"`
}

type defaultKeyStatistics struct {
	TotalAssets rawFmt `json:"totalAssets"`
	Yield       rawFmt `json:"yield"`
	FundInceptionDate rawFmt `json:"fundInceptionDate"`
}
