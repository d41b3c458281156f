package sec

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

// assetCategories maps NPORT asset category codes onto readable names.
var assetCategories = map[string]string{
	"EC":      "equity-common",
	"EP":      "equity-preferred",
	"DBT":     "debt",
	"LON":     "loan",
	"STIV":    "short-term-investment-vehicle",
	"RA":      "repurchase-agreement",
	"ABS-MBS": "asset-backed-mortgage-backed",
	"ABS-O":   "asset-backed-other",
	"COMM":    "commodity",
	"DCO":     "derivative-commodity",
	"DCR":     "derivative-credit",
	"DE":      "derivative-equity",
	"DFE":     "derivative-foreign-exchange",
	"DIR":     "derivative-interest-rate",
	"DO":      "derivative-other",
	"RE":      "real-estate",
	"SN":      "structured-note",
	"OTH":     "other",
}

// riskTenors maps the NPORT risk-metric attribute names onto tenor keys.
var riskTenors = []struct{ attr, tenor string }{
	{"period3Mon", "3M"},
	{"period1Yr", "1Y"},
	{"period5Yr", "5Y"},
	{"period10Yr", "10Y"},
	{"period30Yr", "30Y"},
}

type xmlRiskMetric struct {
	Period3Mon string `xml:"period3Mon,attr"`
	Period1Yr  string `xml:"period1Yr,attr"`
	Period5Yr  string `xml:"period5Yr,attr"`
	Period10Yr string `xml:"period10Yr,attr"`
	Period30Yr string `xml:"period30Yr,attr"`
}

func (m *xmlRiskMetric) tenorMap() map[string]*float64 {
	values := []string{m.Period3Mon, m.Period1Yr, m.Period5Yr, m.Period10Yr, m.Period30Yr}
	out := make(map[string]*float64, len(riskTenors))
	any := false
	for i, t := range riskTenors {
		v := xmlFloat(values[i])
		out[t.tenor] = v
		if v != nil {
			any = true
		}
	}
	if !any {
		return nil
	}
	return out
}

type xmlNPORTSecurity struct {
	Name        string `xml:"name"`
	LEI         string `xml:"lei"`
	Title       string `xml:"title"`
	CUSIP       string `xml:"cusip"`
	Identifiers struct {
		ISIN struct {
			Value string `xml:"value,attr"`
		} `xml:"isin"`
		Ticker struct {
			Value string `xml:"value,attr"`
		} `xml:"ticker"`
		Other []struct {
			Desc  string `xml:"otherDesc,attr"`
			Value string `xml:"value,attr"`
		} `xml:"other"`
	} `xml:"identifiers"`
	Balance        string `xml:"balance"`
	Units          string `xml:"units"`
	CurCode        string `xml:"curCd"`
	CurConditional struct {
		Code   string `xml:"curCd,attr"`
		FXRate string `xml:"exchangeRt,attr"`
	} `xml:"currencyConditional"`
	ValUSD        string `xml:"valUSD"`
	PctVal        string `xml:"pctVal"`
	PayoffProfile string `xml:"payoffProfile"`
	AssetCat      string `xml:"assetCat"`
	IssuerCat     string `xml:"issuerCat"`
	InvCountry    string `xml:"invCountry"`
	IsRestricted  string `xml:"isRestrictedSec"`
	FairValLevel  string `xml:"fairValLevel"`


	Debt *struct {
		MaturityDate string `xml:"maturityDt"`
		CouponKind   string `xml:"couponKind"`
		AnnualizedRt string `xml:"annualizedRt"`
		IsDefault    string `xml:"isDefault"`
		InArrears    string `xml:"areIntrstPmntsInArrs"`
		PaidInKind   string `xml:"isPaidKind"`
		ConvMand     string `xml:"isConvtblMandatory"`
		ConvContngnt string `xml:"isConvtblContngnt"`
	} `xml:"debtSec"`

	Lending *struct {
		IsCash     string `xml:"isCashCollateral"`
		CashVal    string `xml:"cashCollateralVal"`
		IsNonCash  string `xml:"isNonCashCollateral"`
		NonCashVal string `xml:"nonCashCollateralVal"`
		IsLoaned   string `xml:"isLoanByFund"`
		LoanVal    string `xml:"loanVal"`
	} `xml:"securityLending"`

	Derivative *xmlNPORTDerivative `xml:"derivativeInfo"`
}

type xmlNPORTDerivative struct {
	Forward *struct {
		Counterparty  string `xml:"counterparties>counterpartyName"`
		CurSold       string `xml:"curSold"`
		AmtCurSold    string `xml:"amtCurSold"`
		CurPurchased  string `xml:"curPur"`
		AmtPurchased  string `xml:"amtCurPur"`
		Settlement    string `xml:"settlementDt"`
		Unrealized    string `xml:"unrealizedAppr"`
	} `xml:"fwdDeriv"`
	Future *struct {
		Counterparty string `xml:"counterparties>counterpartyName"`
		Payoff       string `xml:"payOffProf"`
		RefInstr     xmlNPORTReference `xml:"descRefInstrmnt"`
		Expiration   string `xml:"expDate"`
		Notional     string `xml:"notionalAmt"`
		Unrealized   string `xml:"unrealizedAppr"`
	} `xml:"futrDeriv"`
	Option *struct {
		Counterparty string `xml:"counterparties>counterpartyName"`
		PutOrCall    string `xml:"putOrCall"`
		WrittenPurch string `xml:"writtenOrPur"`
		RefInstr     xmlNPORTReference `xml:"descRefInstrmnt"`
		ShareNo      string `xml:"shareNo"`
		ExercisePrice string `xml:"exercisePrice"`
		ExerciseCur  string `xml:"exercisePriceCurCd"`
		Expiration   string `xml:"expDt"`
	} `xml:"optionSwaptionWarrantDeriv"`
	Swap *struct {
		Counterparty string `xml:"counterparties>counterpartyName"`
		RefInstr     xmlNPORTReference `xml:"descRefInstrmnt"`
		Termination  string `xml:"terminationDt"`
		Notional     string `xml:"notionalAmt"`
		Unrealized   string `xml:"unrealizedAppr"`
		FixedRecDesc *xmlSwapLeg `xml:"fixedRecDesc"`
		FloatRecDesc *xmlSwapLeg `xml:"floatingRecDesc"`
		FixedPmtDesc *xmlSwapLeg `xml:"fixedPmntDesc"`
		FloatPmtDesc *xmlSwapLeg `xml:"floatingPmntDesc"`
	} `xml:"swapDeriv"`
	Other *struct {
		Counterparty string `xml:"counterparties>counterpartyName"`
		Description  string `xml:"othDesc"`
		Notional     string `xml:"notionalAmt"`
	} `xml:"othDeriv"`
}

type xmlSwapLeg struct {
	FixedRate string `xml:"fixedRt,attr"`
	Index     string `xml:"floatingRtIndex,attr"`
	Spread    string `xml:"floatingRtSpread,attr"`
	Currency  string `xml:"curCd,attr"`
	Amount    string `xml:"amount,attr"`
}

func (l *xmlSwapLeg) leg(fixed bool) *models.SwapLeg {
	if l == nil {
		return nil
	}
	out := &models.SwapLeg{
		Fixed:    fixed,
		Index:    strings.TrimSpace(l.Index),
		Currency: strings.TrimSpace(l.Currency),
		Amount:   xmlFloat(l.Amount),
		Spread:   xmlFloat(l.Spread),
	}
	if fixed {
		out.Rate = xmlFloat(l.FixedRate)
	}
	return out
}

type xmlNPORTReference struct {
	Security *struct {
		Name  string `xml:"issuerName"`
		Title string `xml:"issueTitle"`
	} `xml:"otherRefInst"`
	Index *struct {
		Name       string `xml:"indexName"`
		Identifier string `xml:"indexIdentifier"`
		Narrative  string `xml:"narrativeDesc"`
	} `xml:"indexBasketInfo"`
	Other string `xml:"otherDesc"`
}

func (r *xmlNPORTReference) reference() *models.ReferenceAsset {
	switch {
	case r.Index != nil:
		return &models.ReferenceAsset{
			Kind: models.RefIndex,
			Index: &models.IndexBasket{
				Name:        strings.TrimSpace(r.Index.Name),
				Identifier:  strings.TrimSpace(r.Index.Identifier),
				Description: strings.TrimSpace(r.Index.Narrative),
			},
		}
	case r.Security != nil:
		name := strings.TrimSpace(r.Security.Name)
		if name == "" {
			name = strings.TrimSpace(r.Security.Title)
		}
		return &models.ReferenceAsset{
			Kind:     models.RefSecurity,
			Security: &models.Security{Name: name},
		}
	case strings.TrimSpace(r.Other) != "":
		return &models.ReferenceAsset{Kind: models.RefOther, Other: strings.TrimSpace(r.Other)}
	}
	return nil
}

type xmlMonthlyReturn struct {
	ClassID string `xml:"classId,attr"`
	Rtn1    string `xml:"rtn1,attr"`
	Rtn2    string `xml:"rtn2,attr"`
	Rtn3    string `xml:"rtn3,attr"`
}

type xmlMonthlyFlow struct {
	Sales        string `xml:"sales,attr"`
	Reinvestment string `xml:"reinvestment,attr"`
	Redemption   string `xml:"redemption,attr"`
}

type xmlNPORT struct {
	FormData struct {
		GenInfo struct {
			RegName       string `xml:"regName"`
			RegCIK        string `xml:"regCik"`
			RegLEI        string `xml:"regLei"`
			Street1       string `xml:"regStreet1"`
			Street2       string `xml:"regStreet2"`
			City          string `xml:"regCity"`
			State         string `xml:"regStateConditional>regState"`
			Zip           string `xml:"regZipOrPostalCode"`
			Phone         string `xml:"regPhone"`
			SeriesName    string `xml:"seriesName"`
			SeriesLEI     string `xml:"seriesLei"`
			SeriesID      string `xml:"seriesId"`
			FiscalYearEnd string `xml:"repPdEnd"`
			ReportDate    string `xml:"repPdDate"`
			IsFinal       string `xml:"isFinalFiling"`
		} `xml:"genInfo"`
		FundInfo struct {
			TotAssets      string `xml:"totAssets"`
			TotLiabs       string `xml:"totLiabs"`
			NetAssets      string `xml:"netAssets"`
			AssetsAttrMisc string `xml:"assetsAttrMiscSec"`
			AssetsInvested string `xml:"assetsInvested"`
			BorrOneYr      string `xml:"amtPayOneYrBanksBorr"`
			BorrLongTerm   string `xml:"amtPayAftOneYrBanksBorr"`
			DelayedDeliv   string `xml:"delayDeliv"`
			StandbyCommit  string `xml:"standByCommit"`
			LiquidPref     string `xml:"liquidPref"`
			CashNotRptd    string `xml:"cshNotRptdInCorD"`

			CurMetrics struct {
				DV01  *xmlRiskMetric `xml:"intrstRtRiskdv01"`
				DV100 *xmlRiskMetric `xml:"intrstRtRiskdv100"`
			} `xml:"curMetrics>curMetric"`
			SpreadIG    *xmlRiskMetric `xml:"creditSprdRiskInvstGrade"`
			SpreadNonIG *xmlRiskMetric `xml:"creditSprdRiskNonInvstGrade"`

			Borrowers []struct {
				Name  string `xml:"name,attr"`
				LEI   string `xml:"lei,attr"`
				Value string `xml:"aggrVal,attr"`
			} `xml:"borrowers>borrower"`
			NonCashCollateralVal string `xml:"aggregateInfo>amt"`
			LoanedValue          string `xml:"aggregateCondition>amt"`

			MonthlyReturns []xmlMonthlyReturn `xml:"returnInfo>monthlyTotReturns>monthlyTotReturn"`
			Mon1Flow       *xmlMonthlyFlow    `xml:"mon1Flow"`
			Mon2Flow       *xmlMonthlyFlow    `xml:"mon2Flow"`
			Mon3Flow       *xmlMonthlyFlow    `xml:"mon3Flow"`
		} `xml:"fundInfo"`
		Securities []xmlNPORTSecurity `xml:"invstOrSecs>invstOrSec"`
		Notes      []struct {
			Item string `xml:"noteItem,attr"`
			Note string `xml:"note,attr"`
		} `xml:"explntrNotes>explntrNote"`
		Signature struct {
			DateSigned string `xml:"dateSigned"`
			Applicant  string `xml:"nameOfApplicant"`
			Signature  string `xml:"signature"`
			Title      string `xml:"title"`
		} `xml:"signature"`
	} `xml:"formData"`
}

// FilingNPORT parses an NPORT-P submission given raw text or a URL.
func (a *Adapter) FilingNPORT(ctx context.Context, docOrURL string) (*models.FundReport, error) {
	document, err := a.document(ctx, docOrURL)
	if err != nil {
		return nil, err
	}
	// NPORT headers exist on archived submissions but not on raw primary
	// documents, so the header is optional here.
	if _, hdrErr := ParseHeader(document); hdrErr != nil && !strings.Contains(document, "<?xml") {
		return nil, hdrErr
	}

	var doc xmlNPORT
	if err := decodeXML(xmlBody(document), &doc, "filing_nport"); err != nil {
		return nil, err
	}
	gen := doc.FormData.GenInfo
	if gen.ReportDate == "" {
		return nil, fault.New(fault.SourceSchemaChanged, sourceName, "filing_nport",
			"general info carries no reporting period date")
	}

	report := &models.FundReport{
		GeneralInfo: models.GeneralInfo{
			Name:            strings.TrimSpace(gen.RegName),
			CIK:             strings.TrimSpace(gen.RegCIK),
			LEI:             strings.TrimSpace(gen.RegLEI),
			SeriesName:      strings.TrimSpace(gen.SeriesName),
			SeriesLEI:       strings.TrimSpace(gen.SeriesLEI),
			SeriesID:        strings.TrimSpace(gen.SeriesID),
			FiscalYearEnd:   strings.TrimSpace(gen.FiscalYearEnd),
			ReportingPeriod: strings.TrimSpace(gen.ReportDate),
			IsFinalFiling:   xmlBool(gen.IsFinal),
		},
	}
	if addr := (models.Address{
		Street1: strings.TrimSpace(gen.Street1),
		Street2: strings.TrimSpace(gen.Street2),
		City:    strings.TrimSpace(gen.City),
		State:   strings.TrimSpace(gen.State),
		Zip:     strings.TrimSpace(gen.Zip),
		Phone:   strings.TrimSpace(gen.Phone),
	}); addr != (models.Address{}) {
		report.GeneralInfo.Address = &addr
	}

	fund := doc.FormData.FundInfo
	report.FundInfo.Totals = models.FundTotals{
		TotalAssets:              xmlFloat(fund.TotAssets),
		TotalLiabilities:         xmlFloat(fund.TotLiabs),
		NetAssets:                xmlFloat(fund.NetAssets),
		AssetsAttrMiscSecurities: xmlFloat(fund.AssetsAttrMisc),
		AssetsInvested:           xmlFloat(fund.AssetsInvested),
		BorrowingPayableOneYr:    xmlFloat(fund.BorrOneYr),
		BorrowingPayableLongTerm: xmlFloat(fund.BorrLongTerm),
		DelayedDeliveryPayable:   xmlFloat(fund.DelayedDeliv),
		StandbyCommitmentPayable: xmlFloat(fund.StandbyCommit),
		LiquidationPreference:    xmlFloat(fund.LiquidPref),
		CashNotReported:          xmlFloat(fund.CashNotRptd),
	}

	risk := models.FundRisk{}
	if fund.CurMetrics.DV01 != nil {
		risk.DV01 = fund.CurMetrics.DV01.tenorMap()
	}
	if fund.CurMetrics.DV100 != nil {
		risk.DV100 = fund.CurMetrics.DV100.tenorMap()
	}
	if fund.SpreadIG != nil {
		risk.SpreadRiskIG = fund.SpreadIG.tenorMap()
	}
	if fund.SpreadNonIG != nil {
		risk.SpreadRiskNonIG = fund.SpreadNonIG.tenorMap()
	}
	if risk.DV01 != nil || risk.DV100 != nil || risk.SpreadRiskIG != nil || risk.SpreadRiskNonIG != nil {
		report.FundInfo.Risk = &risk
	}

	if len(fund.Borrowers) > 0 || fund.NonCashCollateralVal != "" || fund.LoanedValue != "" {
		lending := &models.FundLending{
			NonCashCollateral:     xmlFloat(fund.NonCashCollateralVal),
			LoanedSecuritiesValue: xmlFloat(fund.LoanedValue),
		}
		for _, b := range fund.Borrowers {
			lending.Counterparties = append(lending.Counterparties, models.LendingCounterparty{
				Name:  strings.TrimSpace(b.Name),
				LEI:   strings.TrimSpace(b.LEI),
				Value: xmlFloat(b.Value),
			})
		}
		report.FundInfo.Lending = lending
	}

	months, err := reportMonths(gen.ReportDate)
	if err != nil {
		return nil, err
	}

	if len(fund.MonthlyReturns) > 0 {
		returns := &models.FundReturnInfo{ClassReturns: make(map[string][]models.MonthlyValue)}
		for _, mr := range fund.MonthlyReturns {
			classID := strings.TrimSpace(mr.ClassID)
			values := []string{mr.Rtn1, mr.Rtn2, mr.Rtn3}
			series := make([]models.MonthlyValue, 0, 3)
			for i, month := range months {
				series = append(series, models.MonthlyValue{Month: month, Value: xmlPercent(values[i])})
			}
			returns.ClassReturns[classID] = series
		}
		report.FundInfo.Returns = returns
	}

	if fund.Mon1Flow != nil || fund.Mon2Flow != nil || fund.Mon3Flow != nil {
		flows := &models.FundFlowInfo{}
		monthly := []*xmlMonthlyFlow{fund.Mon1Flow, fund.Mon2Flow, fund.Mon3Flow}
		for i, month := range months {
			var sales, reinvest, redemption *float64
			if m := monthly[i]; m != nil {
				sales = xmlFloat(m.Sales)
				reinvest = xmlFloat(m.Reinvestment)
				redemption = xmlFloat(m.Redemption)
			}
			flows.Sales = append(flows.Sales, models.MonthlyValue{Month: month, Value: sales})
			flows.Reinvestment = append(flows.Reinvestment, models.MonthlyValue{Month: month, Value: reinvest})
			flows.Redemptions = append(flows.Redemptions, models.MonthlyValue{Month: month, Value: redemption})
		}
		report.FundInfo.Flows = flows
	}

	for _, s := range doc.FormData.Securities {
		report.Portfolio = append(report.Portfolio, nportHolding(s))
	}

	for _, n := range doc.FormData.Notes {
		if report.ExplanatoryNotes == nil {
			report.ExplanatoryNotes = make(map[string]string)
		}
		report.ExplanatoryNotes[strings.TrimSpace(n.Item)] = strings.TrimSpace(n.Note)
	}

	sig := doc.FormData.Signature
	if sig.Signature != "" || sig.DateSigned != "" {
		report.Signature = &models.Signature{
			DateSigned:      strings.TrimSpace(sig.DateSigned),
			NameOfApplicant: strings.TrimSpace(sig.Applicant),
			Signer:          strings.TrimSpace(sig.Signature),
			Title:           strings.TrimSpace(sig.Title),
		}
	}
	return report, nil
}

// nportHolding converts one invstOrSec entry.
func nportHolding(s xmlNPORTSecurity) models.Holding {
	h := models.Holding{
		Issuer: models.Issuer{
			Name:    strings.TrimSpace(s.Name),
			LEI:     strings.TrimSpace(s.LEI),
			Country: strings.TrimSpace(s.InvCountry),
			Type:    strings.TrimSpace(s.IssuerCat),
		},
		Title: strings.TrimSpace(s.Title),
		Identifiers: models.Identifiers{
			CUSIP:  strings.TrimSpace(s.CUSIP),
			ISIN:   strings.TrimSpace(s.Identifiers.ISIN.Value),
			Ticker: strings.TrimSpace(s.Identifiers.Ticker.Value),
		},
		Amount: models.Amount{
			Quantity:       xmlFloat(s.Balance),
			QuantityUnit:   strings.TrimSpace(s.Units),
			MarketValue:    xmlFloat(s.ValUSD),
			PctOfPortfolio: xmlPercent(s.PctVal),
		},
		Restricted: xmlBool(s.IsRestricted),
	}
	for _, other := range s.Identifiers.Other {
		if h.Identifiers.Other == nil {
			h.Identifiers.Other = make(map[string]string)
		}
		h.Identifiers.Other[strings.TrimSpace(other.Desc)] = strings.TrimSpace(other.Value)
	}

	currency := strings.TrimSpace(s.CurCode)
	var fx *float64
	if currency == "" && s.CurConditional.Code != "" {
		currency = strings.TrimSpace(s.CurConditional.Code)
		fx = xmlFloat(s.CurConditional.FXRate)
	}
	h.Amount.Currency = models.CurrencyAmount{Name: currency, FXRate: fx}

	abbr := strings.TrimSpace(s.AssetCat)
	h.AssetClass = models.AssetClass{Abbr: abbr, Name: assetCategories[abbr]}

	switch strings.ToLower(strings.TrimSpace(s.PayoffProfile)) {
	case "long":
		h.PayoffDirection = models.Long
	case "short":
		h.PayoffDirection = models.Short
	}

	if lvl, err := strconv.Atoi(strings.TrimSpace(s.FairValLevel)); err == nil && lvl >= 1 && lvl <= 3 {
		h.FairValueLevel = &lvl
	}

	if s.Debt != nil {
		h.Debt = &models.DebtInfo{
			MaturityDate:    strings.TrimSpace(s.Debt.MaturityDate),
			CouponRate:      xmlFloat(s.Debt.AnnualizedRt),
			CouponKind:      strings.TrimSpace(s.Debt.CouponKind),
			InDefault:       xmlBool(s.Debt.IsDefault),
			CouponsDeferred: xmlBool(s.Debt.InArrears),
			PaidInKind:      xmlBool(s.Debt.PaidInKind),
			Convertible:     xmlBool(s.Debt.ConvMand) || xmlBool(s.Debt.ConvContngnt),
		}
	}

	if s.Lending != nil {
		lending := &models.LendingInfo{}
		if xmlBool(s.Lending.IsCash) {
			lending.CashCollateral = xmlFloat(s.Lending.CashVal)
		}
		if xmlBool(s.Lending.IsNonCash) {
			lending.NonCashCollateral = xmlFloat(s.Lending.NonCashVal)
		}
		if xmlBool(s.Lending.IsLoaned) {
			lending.OnLoan = xmlFloat(s.Lending.LoanVal)
		}
		if *lending != (models.LendingInfo{}) {
			h.Lending = lending
		}
	}

	if s.Derivative != nil {
		h.Derivative = nportDerivative(s.Derivative)
	}
	return h
}

// nportDerivative converts the derivativeInfo variant block.
func nportDerivative(d *xmlNPORTDerivative) *models.Derivative {
	switch {
	case d.Forward != nil:
		f := d.Forward
		return &models.Derivative{
			Kind:         models.KindForward,
			Counterparty: strings.TrimSpace(f.Counterparty),
			Forward: &models.ForwardTerms{
				CurrencySold:      strings.TrimSpace(f.CurSold),
				AmountSold:        xmlFloat(f.AmtCurSold),
				CurrencyPurchased: strings.TrimSpace(f.CurPurchased),
				AmountPurchased:   xmlFloat(f.AmtPurchased),
				SettlementDate:    strings.TrimSpace(f.Settlement),
				UnrealizedPnL:     xmlFloat(f.Unrealized),
			},
		}
	case d.Future != nil:
		f := d.Future
		return &models.Derivative{
			Kind:         models.KindFuture,
			Counterparty: strings.TrimSpace(f.Counterparty),
			Future: &models.FutureTerms{
				Reference:      f.RefInstr.reference(),
				PayoffProfile:  strings.TrimSpace(f.Payoff),
				ExpirationDate: strings.TrimSpace(f.Expiration),
				NotionalAmount: xmlFloat(f.Notional),
				UnrealizedPnL:  xmlFloat(f.Unrealized),
			},
		}
	case d.Option != nil:
		o := d.Option
		terms := &models.OptionTerms{
			Reference:       o.RefInstr.reference(),
			PutOrCall:       strings.ToLower(strings.TrimSpace(o.PutOrCall)),
			WrittenOrBought: strings.ToLower(strings.TrimSpace(o.WrittenPurch)),
			StrikePrice:     xmlFloat(o.ExercisePrice),
			StrikeCurrency:  strings.TrimSpace(o.ExerciseCur),
			ShareQuantity:   xmlFloat(o.ShareNo),
			ExpirationDate:  strings.TrimSpace(o.Expiration),
		}
		return &models.Derivative{
			Kind:         models.KindOption,
			Counterparty: strings.TrimSpace(o.Counterparty),
			Option:       terms,
		}
	case d.Swap != nil:
		s := d.Swap
		terms := &models.SwapTerms{
			Reference:       s.RefInstr.reference(),
			TerminationDate: strings.TrimSpace(s.Termination),
			NotionalAmount:  xmlFloat(s.Notional),
			UnrealizedPnL:   xmlFloat(s.Unrealized),
		}
		if s.FixedRecDesc != nil {
			terms.Receive = s.FixedRecDesc.leg(true)
		} else if s.FloatRecDesc != nil {
			terms.Receive = s.FloatRecDesc.leg(false)
		}
		if s.FixedPmtDesc != nil {
			terms.Pay = s.FixedPmtDesc.leg(true)
		} else if s.FloatPmtDesc != nil {
			terms.Pay = s.FloatPmtDesc.leg(false)
		}
		return &models.Derivative{
			Kind:         models.KindSwap,
			Counterparty: strings.TrimSpace(s.Counterparty),
			Swap:         terms,
		}
	case d.Other != nil:
		o := d.Other
		return &models.Derivative{
			Kind:         models.KindOther,
			Counterparty: strings.TrimSpace(o.Counterparty),
			Other: &models.OtherTerms{
				Description:    strings.TrimSpace(o.Description),
				NotionalAmount: xmlFloat(o.Notional),
			},
		}
	}
	return nil
}

// reportMonths derives the three calendar month-ends of a reporting period,
// ascending, ending on the report date.
func reportMonths(reportDate string) ([3]string, error) {
	var out [3]string
	t, err := time.Parse(models.ISODate, strings.TrimSpace(reportDate))
	if err != nil {
		return out, fault.Wrap(fault.Parse, sourceName, "filing_nport", err)
	}
	for i := 0; i < 3; i++ {
		back := 2 - i
		first := time.Date(t.Year(), t.Month()-time.Month(back), 1, 0, 0, 0, 0, time.UTC)
		end := first.AddDate(0, 1, -1)
		out[i] = end.Format(models.ISODate)
	}
	return out, nil
}
