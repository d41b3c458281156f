package sec

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

func testIdentity() config.Identity {
	return config.New(config.WithSECIdentity("Test Runner test@example.com"))
}

func testAdapter(srv *httptest.Server) *Adapter {
	return New(testIdentity(), WithBaseURL(srv.URL), WithDataURL(srv.URL))
}

const sampleHeader = `<SEC-HEADER>0001104659-24-000123.hdr.sgml : 20240214
ACCESSION NUMBER:		0001104659-24-000123
CONFORMED SUBMISSION TYPE:	4
PUBLIC DOCUMENT COUNT:		1
CONFORMED PERIOD OF REPORT:	20240212
FILED AS OF DATE:		20240214

REPORTING-OWNER:

	COMPANY DATA:
		COMPANY CONFORMED NAME:			DOE JANE
		CENTRAL INDEX KEY:			0001234567

ISSUER:

	COMPANY DATA:
		COMPANY CONFORMED NAME:			ACME CORP
		CENTRAL INDEX KEY:			0000320193
		STANDARD INDUSTRIAL CLASSIFICATION:	ELECTRONIC COMPUTERS [3571]
		FISCAL YEAR END:			0930
	BUSINESS ADDRESS:
		STREET 1:		1 LOOP RD
		CITY:			CUPERTINO
		STATE:			CA
		ZIP:			95014
	FORMER COMPANY:
		FORMER CONFORMED NAME:	ACME COMPUTER CORP
		DATE OF NAME CHANGE:	20070109
</SEC-HEADER>`

func TestParseHeader(t *testing.T) {
	f, err := ParseHeader(sampleHeader)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if f.AccessionNumber != "0001104659-24-000123" {
		t.Errorf("accession = %q", f.AccessionNumber)
	}
	if f.FormType != "4" || f.IsAmendment {
		t.Errorf("form = %q amendment=%v, want 4 false", f.FormType, f.IsAmendment)
	}
	if f.DateFiled != "2024-02-14" || f.DateOfPeriod != "2024-02-12" {
		t.Errorf("dates = %q %q", f.DateFiled, f.DateOfPeriod)
	}
	if f.ReportingOwner == nil || f.ReportingOwner.Name != "DOE JANE" {
		t.Fatalf("reporting owner = %+v", f.ReportingOwner)
	}
	issuer := f.Issuer
	if issuer == nil || issuer.Name != "ACME CORP" || issuer.CIK != "0000320193" {
		t.Fatalf("issuer = %+v", issuer)
	}
	if issuer.SIC == nil || issuer.SIC.Code != "3571" || issuer.SIC.Name != "ELECTRONIC COMPUTERS" {
		t.Errorf("sic = %+v", issuer.SIC)
	}
	if issuer.FiscalYearEnd == nil || issuer.FiscalYearEnd.Month != 9 || issuer.FiscalYearEnd.Day != 30 {
		t.Errorf("fiscal year end = %+v", issuer.FiscalYearEnd)
	}
	if issuer.BusinessAddress == nil || issuer.BusinessAddress.City != "CUPERTINO" {
		t.Errorf("business address = %+v", issuer.BusinessAddress)
	}
	if len(issuer.FormerNames) != 1 || issuer.FormerNames[0].DateChanged != "2007-01-09" {
		t.Errorf("former names = %+v", issuer.FormerNames)
	}
	if f.Filer != nil || f.SubjectCompany != nil {
		t.Error("roles absent from the header must stay nil")
	}
}

// Parsing the same document twice yields structurally equal results.
func TestParseHeaderIdempotent(t *testing.T) {
	first, err := ParseHeader(sampleHeader)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	second, err := ParseHeader(sampleHeader)
	if err != nil {
		t.Fatalf("ParseHeader (again): %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("re-parse is not structurally equal")
	}
}

func TestParseHeaderNoEnvelope(t *testing.T) {
	_, err := ParseHeader("just some text")
	if !fault.IsKind(err, fault.SourceSchemaChanged) {
		t.Fatalf("err = %v, want SourceSchemaChanged", err)
	}
}

func form4Document() string {
	return sampleHeader + `
<DOCUMENT>
<TYPE>4
<SEQUENCE>1
<TEXT>
<XML>
<?xml version="1.0"?>
<ownershipDocument>
  <issuer>
    <issuerCik>0000320193</issuerCik>
    <issuerTradingSymbol>ACME</issuerTradingSymbol>
  </issuer>
  <nonDerivativeTable>
    <nonDerivativeTransaction>
      <securityTitle><value>Common Stock</value></securityTitle>
      <transactionDate><value>2024-02-12</value></transactionDate>
      <transactionCoding><transactionCode>S</transactionCode></transactionCoding>
      <transactionAmounts>
        <transactionShares><value>1500</value></transactionShares>
        <transactionPricePerShare><value>187.50</value></transactionPricePerShare>
        <transactionAcquiredDisposedCode><value>D</value></transactionAcquiredDisposedCode>
      </transactionAmounts>
      <postTransactionAmounts>
        <sharesOwnedFollowingTransaction><value>10500</value></sharesOwnedFollowingTransaction>
      </postTransactionAmounts>
      <ownershipNature>
        <directOrIndirectOwnership><value>D</value></directOrIndirectOwnership>
      </ownershipNature>
    </nonDerivativeTransaction>
  </nonDerivativeTable>
</ownershipDocument>
</XML>
</TEXT>
</DOCUMENT>`
}

func TestFiling345(t *testing.T) {
	a := New(testIdentity())
	out, err := a.Filing345(context.Background(), form4Document())
	if err != nil {
		t.Fatalf("Filing345: %v", err)
	}
	if out.IssuerTicker != "ACME" {
		t.Errorf("ticker = %q", out.IssuerTicker)
	}
	if len(out.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(out.Transactions))
	}
	tr := out.Transactions[0]
	if tr.Code != "S" || tr.AcquiredDisposed != "D" || tr.Derivative {
		t.Errorf("transaction = %+v", tr)
	}
	if tr.Shares == nil || *tr.Shares != 1500 {
		t.Errorf("shares = %v", tr.Shares)
	}
	if tr.PricePerShare == nil || *tr.PricePerShare != 187.50 {
		t.Errorf("price = %v", tr.PricePerShare)
	}
	if tr.SharesOwnedAfter == nil || *tr.SharesOwnedAfter != 10500 {
		t.Errorf("shares after = %v", tr.SharesOwnedAfter)
	}
}

func TestFiling345WrongForm(t *testing.T) {
	doc := `<SEC-HEADER>
ACCESSION NUMBER:		0000000000-24-000001
CONFORMED SUBMISSION TYPE:	10-K
</SEC-HEADER>`
	a := New(testIdentity())
	if _, err := a.Filing345(context.Background(), doc); !fault.IsKind(err, fault.InvalidInput) {
		t.Fatalf("err = %v, want InvalidInput", err)
	}
}

func TestFiling13D(t *testing.T) {
	doc := `<SEC-HEADER>
ACCESSION NUMBER:		0000902664-24-003000
CONFORMED SUBMISSION TYPE:	SC 13D
FILED AS OF DATE:		20240301
SUBJECT COMPANY:
	COMPANY DATA:
		COMPANY CONFORMED NAME:			WIDGET INC
		CENTRAL INDEX KEY:			0000789019
FILED BY:
	COMPANY DATA:
		COMPANY CONFORMED NAME:			ACTIVIST FUND LP
		CENTRAL INDEX KEY:			0001555555
</SEC-HEADER>
<XML>
<edgarSubmission>
  <formData>
    <coverPageHeader>
      <issuerCusip>94987B104</issuerCusip>
    </coverPageHeader>
    <reportingPersonDetails>
      <reportingPersonName>Activist Fund LP</reportingPersonName>
      <aggregateAmountOwned>5200000</aggregateAmountOwned>
      <percentOfClass>6.4</percentOfClass>
      <memberOfGroup>N</memberOfGroup>
    </reportingPersonDetails>
    <purposeOfTransaction>The reporting person acquired the shares for investment purposes.</purposeOfTransaction>
  </formData>
</edgarSubmission>
</XML>`
	a := New(testIdentity())
	out, err := a.Filing13D(context.Background(), doc)
	if err != nil {
		t.Fatalf("Filing13D: %v", err)
	}
	if out.CUSIP != "94987B104" {
		t.Errorf("cusip = %q", out.CUSIP)
	}
	if len(out.ReportingPersons) != 1 {
		t.Fatalf("reporting persons = %d, want 1", len(out.ReportingPersons))
	}
	p := out.ReportingPersons[0]
	if p.SharesOwned == nil || *p.SharesOwned != 5200000 {
		t.Errorf("shares = %v", p.SharesOwned)
	}
	if p.PercentOfClass == nil || *p.PercentOfClass != 0.064 {
		t.Errorf("percent = %v, want 0.064", p.PercentOfClass)
	}
	if out.Purpose == "" {
		t.Error("13D purpose is empty")
	}
	if out.Filing.SubjectCompany == nil || out.Filing.SubjectCompany.Name != "WIDGET INC" {
		t.Errorf("subject company = %+v", out.Filing.SubjectCompany)
	}
}

func filing13FDocument() string {
	header := `<SEC-HEADER>
ACCESSION NUMBER:		0000919574-24-001000
CONFORMED SUBMISSION TYPE:	13F-HR
CONFORMED PERIOD OF REPORT:	20231231
FILED AS OF DATE:		20240214
FILER:
	COMPANY DATA:
		COMPANY CONFORMED NAME:			EXAMPLE CAPITAL LP
		CENTRAL INDEX KEY:			0001067983
</SEC-HEADER>`
	primary := `<XML>
<edgarSubmission xmlns="http://www.sec.gov/edgar/thirteenffiler">
  <formData>
    <coverPage>
      <reportCalendarOrQuarter>12-31-2023</reportCalendarOrQuarter>
    </coverPage>
  </formData>
</edgarSubmission>
</XML>`
	table := `<XML>
<informationTable xmlns="http://www.sec.gov/edgar/document/thirteenf/informationtable">
  <infoTable>
    <nameOfIssuer>ACME CORP</nameOfIssuer>
    <titleOfClass>COM</titleOfClass>
    <cusip>037833100</cusip>
    <value>600</value>
    <shrsOrPrnAmt><sshPrnamt>3000</sshPrnamt><sshPrnamtType>SH</sshPrnamtType></shrsOrPrnAmt>
    <votingAuthority><Sole>3000</Sole><Shared>0</Shared><None>0</None></votingAuthority>
  </infoTable>
  <infoTable>
    <nameOfIssuer>ACME CORP</nameOfIssuer>
    <titleOfClass>COM</titleOfClass>
    <cusip>037833100</cusip>
    <value>400</value>
    <shrsOrPrnAmt><sshPrnamt>2000</sshPrnamt><sshPrnamtType>SH</sshPrnamtType></shrsOrPrnAmt>
    <votingAuthority><Sole>0</Sole><Shared>2000</Shared><None>0</None></votingAuthority>
  </infoTable>
  <infoTable>
    <nameOfIssuer>WIDGET INC</nameOfIssuer>
    <titleOfClass>COM</titleOfClass>
    <cusip>94987B104</cusip>
    <value>500</value>
    <shrsOrPrnAmt><sshPrnamt>1000</sshPrnamt><sshPrnamtType>SH</sshPrnamtType></shrsOrPrnAmt>
    <votingAuthority><Sole>1000</Sole><Shared>0</Shared><None>0</None></votingAuthority>
  </infoTable>
</informationTable>
</XML>`
	return header + "\n" + primary + "\n" + table
}

func TestFiling13F(t *testing.T) {
	a := New(testIdentity())
	report, err := a.Filing13F(context.Background(), filing13FDocument())
	if err != nil {
		t.Fatalf("Filing13F: %v", err)
	}
	if report.ReportDate != "2023-12-31" {
		t.Errorf("report date = %q", report.ReportDate)
	}
	if len(report.Portfolio.Holdings) != 3 {
		t.Fatalf("holdings = %d, want 3", len(report.Portfolio.Holdings))
	}
	if report.Portfolio.TotalAUM == nil || *report.Portfolio.TotalAUM != 1500 {
		t.Errorf("total AUM = %v, want 1500", report.Portfolio.TotalAUM)
	}
}

func TestAggregatePortfolio(t *testing.T) {
	a := New(testIdentity())
	report, err := a.Filing13F(context.Background(), filing13FDocument())
	if err != nil {
		t.Fatalf("Filing13F: %v", err)
	}
	agg, err := report.AggregatePortfolio("market_value")
	if err != nil {
		t.Fatalf("AggregatePortfolio: %v", err)
	}
	if len(agg.Holdings) != 2 {
		t.Fatalf("aggregated holdings = %d, want 2", len(agg.Holdings))
	}

	// The first holding carries the maximum market value.
	first := agg.Holdings[0]
	if first.Identifiers.CUSIP != "037833100" {
		t.Errorf("first holding = %q, want the merged ACME position", first.Identifiers.CUSIP)
	}
	for _, h := range agg.Holdings[1:] {
		if derefZero(h.Amount.MarketValue) > derefZero(first.Amount.MarketValue) {
			t.Errorf("holding %q outranks the first", h.Identifiers.CUSIP)
		}
	}
	if mv := derefZero(first.Amount.MarketValue); mv != 1000 {
		t.Errorf("merged market value = %v, want 1000", mv)
	}
	if q := derefZero(first.Amount.Quantity); q != 5000 {
		t.Errorf("merged quantity = %v, want 5000", q)
	}

	// Percentages sum to 1 within 1e-6.
	var pctSum float64
	for _, h := range agg.Holdings {
		if h.Amount.PctOfPortfolio == nil {
			t.Fatalf("holding %q has no portfolio percentage", h.Identifiers.CUSIP)
		}
		pctSum += *h.Amount.PctOfPortfolio
	}
	if math.Abs(pctSum-1.0) > 1e-6 {
		t.Errorf("percentage sum = %v, want 1.0 ± 1e-6", pctSum)
	}

	// Voting authority aggregates consistently with the raw entries.
	var sole, shared, none int64
	for _, h := range report.Portfolio.Holdings {
		sole += h.VotingAuthority.Sole
		shared += h.VotingAuthority.Shared
		none += h.VotingAuthority.None
	}
	var aggSole, aggShared, aggNone int64
	for _, h := range agg.Holdings {
		aggSole += h.VotingAuthority.Sole
		aggShared += h.VotingAuthority.Shared
		aggNone += h.VotingAuthority.None
	}
	if aggSole != sole || aggShared != shared || aggNone != none {
		t.Errorf("voting totals %d/%d/%d, want %d/%d/%d",
			aggSole, aggShared, aggNone, sole, shared, none)
	}
	if first.VotingAuthority.Sole != 3000 || first.VotingAuthority.Shared != 2000 {
		t.Errorf("merged voting = %+v", first.VotingAuthority)
	}
}

func TestAggregatePortfolioBadOrder(t *testing.T) {
	a := New(testIdentity())
	report, err := a.Filing13F(context.Background(), filing13FDocument())
	if err != nil {
		t.Fatalf("Filing13F: %v", err)
	}
	if _, err := report.AggregatePortfolio("sharpe"); !fault.IsKind(err, fault.InvalidInput) {
		t.Fatalf("err = %v, want InvalidInput", err)
	}
}

func nportDocument() string {
	return `<SEC-HEADER>
ACCESSION NUMBER:		0001752724-24-080000
CONFORMED SUBMISSION TYPE:	NPORT-P
CONFORMED PERIOD OF REPORT:	20240331
</SEC-HEADER>
<XML>
<?xml version="1.0" encoding="UTF-8"?>
<edgarSubmission xmlns="http://www.sec.gov/edgar/nport">
<formData>
  <genInfo>
    <regName>Example Funds Trust</regName>
    <regCik>0000872323</regCik>
    <seriesName>Example Growth Fund</seriesName>
    <seriesId>S000001234</seriesId>
    <repPdEnd>2024-12-31</repPdEnd>
    <repPdDate>2024-03-31</repPdDate>
    <isFinalFiling>N</isFinalFiling>
  </genInfo>
  <fundInfo>
    <totAssets>5000000.00</totAssets>
    <totLiabs>250000.00</totLiabs>
    <netAssets>4750000.00</netAssets>
    <returnInfo>
      <monthlyTotReturns>
        <monthlyTotReturn classId="C000009876" rtn1="1.25" rtn2="-0.40" rtn3="2.10"/>
      </monthlyTotReturns>
    </returnInfo>
    <mon1Flow sales="10000" reinvestment="500" redemption="2000"/>
    <mon2Flow sales="12000" reinvestment="600" redemption="1500"/>
    <mon3Flow sales="9000" reinvestment="450" redemption="3000"/>
  </fundInfo>
  <invstOrSecs>
    <invstOrSec>
      <name>ACME CORP</name>
      <lei>HWUPKR0MPOU8FGXBT394</lei>
      <title>Common Stock</title>
      <cusip>037833100</cusip>
      <identifiers><isin value="US0378331005"/></identifiers>
      <balance>1000</balance>
      <units>NS</units>
      <curCd>USD</curCd>
      <valUSD>187500.00</valUSD>
      <pctVal>3.947</pctVal>
      <payoffProfile>Long</payoffProfile>
      <assetCat>EC</assetCat>
      <issuerCat>CORP</issuerCat>
      <invCountry>US</invCountry>
      <isRestrictedSec>N</isRestrictedSec>
      <fairValLevel>1</fairValLevel>
    </invstOrSec>
    <invstOrSec>
      <name>US TREASURY NOTE</name>
      <title>2.5% 2031</title>
      <cusip>91282CAB7</cusip>
      <balance>50000</balance>
      <units>PA</units>
      <curCd>USD</curCd>
      <valUSD>48750.00</valUSD>
      <pctVal>1.026</pctVal>
      <payoffProfile>Long</payoffProfile>
      <assetCat>DBT</assetCat>
      <issuerCat>UST</issuerCat>
      <invCountry>US</invCountry>
      <isRestrictedSec>N</isRestrictedSec>
      <fairValLevel>2</fairValLevel>
      <debtSec>
        <maturityDt>2031-05-15</maturityDt>
        <couponKind>Fixed</couponKind>
        <annualizedRt>2.5</annualizedRt>
        <isDefault>N</isDefault>
      </debtSec>
    </invstOrSec>
  </invstOrSecs>
  <signature>
    <dateSigned>2024-04-25</dateSigned>
    <nameOfApplicant>Example Funds Trust</nameOfApplicant>
    <signature>Pat Smith</signature>
    <title>Treasurer</title>
  </signature>
</formData>
</edgarSubmission>
</XML>`
}

func TestFilingNPORT(t *testing.T) {
	a := New(testIdentity())
	report, err := a.FilingNPORT(context.Background(), nportDocument())
	if err != nil {
		t.Fatalf("FilingNPORT: %v", err)
	}
	if report.GeneralInfo.ReportingPeriod != "2024-03-31" {
		t.Errorf("reporting period = %q", report.GeneralInfo.ReportingPeriod)
	}
	if report.GeneralInfo.SeriesID != "S000001234" || report.GeneralInfo.IsFinalFiling {
		t.Errorf("general info = %+v", report.GeneralInfo)
	}
	if report.HasShortPositions() {
		t.Error("no holding is short")
	}
	if na := report.FundInfo.Totals.NetAssets; na == nil || *na != 4750000 {
		t.Errorf("net assets = %v", na)
	}

	if len(report.Portfolio) != 2 {
		t.Fatalf("portfolio = %d holdings, want 2", len(report.Portfolio))
	}
	equity := report.Portfolio[0]
	if equity.AssetClass.Abbr != "EC" || equity.AssetClass.Name != "equity-common" {
		t.Errorf("asset class = %+v", equity.AssetClass)
	}
	if equity.Identifiers.ISIN != "US0378331005" {
		t.Errorf("isin = %q", equity.Identifiers.ISIN)
	}
	if equity.Amount.PctOfPortfolio == nil || *equity.Amount.PctOfPortfolio != 0.0395 {
		t.Errorf("pct = %v, want 0.0395", equity.Amount.PctOfPortfolio)
	}
	for _, h := range report.Portfolio {
		if h.FairValueLevel == nil || *h.FairValueLevel < 1 || *h.FairValueLevel > 3 {
			t.Errorf("fair value level = %v for %q", h.FairValueLevel, h.Issuer.Name)
		}
	}
	bond := report.Portfolio[1]
	if bond.Debt == nil || bond.Debt.MaturityDate != "2031-05-15" || bond.Debt.CouponRate == nil {
		t.Errorf("debt info = %+v", bond.Debt)
	}

	// Flow information covers exactly the three contiguous calendar months
	// ending on the reporting date.
	flows := report.FundInfo.Flows
	if flows == nil {
		t.Fatal("no flow info")
	}
	wantMonths := []string{"2024-01-31", "2024-02-29", "2024-03-31"}
	if len(flows.Sales) != 3 {
		t.Fatalf("sales months = %d, want 3", len(flows.Sales))
	}
	for i, mv := range flows.Sales {
		if mv.Month != wantMonths[i] {
			t.Errorf("sales[%d].Month = %q, want %q", i, mv.Month, wantMonths[i])
		}
	}
	if last := flows.Redemptions[2]; last.Month != report.GeneralInfo.ReportingPeriod {
		t.Errorf("last flow month %q does not end on the report date", last.Month)
	}
	if v := flows.Sales[2].Value; v == nil || *v != 9000 {
		t.Errorf("march sales = %v, want 9000", v)
	}

	returns := report.FundInfo.Returns
	if returns == nil || len(returns.ClassReturns["C000009876"]) != 3 {
		t.Fatalf("class returns = %+v", returns)
	}
	if r := returns.ClassReturns["C000009876"][0].Value; r == nil || *r != 0.0125 {
		t.Errorf("january return = %v, want 0.0125", r)
	}

	if report.Signature == nil || report.Signature.Signer != "Pat Smith" {
		t.Errorf("signature = %+v", report.Signature)
	}
}

func companyFactsJSON() string {
	return `{
  "cik": 320193,
  "entityName": "ACME CORP",
  "facts": {
    "us-gaap": {
      "Revenues": {
        "units": {
          "USD": [
            {"start": "2023-01-01", "end": "2023-03-31", "val": 100, "fy": 2023, "fp": "Q1", "form": "10-Q"},
            {"start": "2023-01-01", "end": "2023-06-30", "val": 220, "fy": 2023, "fp": "Q2", "form": "10-Q"},
            {"start": "2023-01-01", "end": "2023-09-30", "val": 210, "fy": 2023, "fp": "Q3", "form": "10-Q"},
            {"start": "2023-01-01", "end": "2023-12-31", "val": 460, "fy": 2023, "fp": "FY", "form": "10-K"}
          ]
        }
      },
      "NetIncomeLoss": {
        "units": {
          "USD": [
            {"start": "2023-01-01", "end": "2023-12-31", "val": 500, "fy": 2023, "fp": "FY", "form": "10-K"},
            {"start": "2023-10-01", "end": "2023-12-31", "val": 120, "fy": 2023, "fp": "FY", "form": "10-K"}
          ]
        }
      },
      "Assets": {
        "units": {
          "USD": [
            {"end": "2023-03-31", "val": 1000, "fy": 2023, "fp": "Q1", "form": "10-Q"},
            {"end": "2023-12-31", "val": 1100, "fy": 2023, "fp": "FY", "form": "10-K"}
          ]
        }
      }
    }
  }
}`
}

func factsServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/xbrl/companyfacts/CIK0000320193.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, companyFactsJSON())
	})
	mux.HandleFunc("/files/company_tickers_exchange.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"fields":["cik","name","ticker","exchange"],"data":[[320193,"ACME CORP","ACME","Nasdaq"]]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// rowIndex locates a series row by ISO date.
func rowIndex(t *testing.T, ts *models.TimeSeries, iso string) int {
	t.Helper()
	for i := 0; i < ts.Len(); i++ {
		if ts.ISO(i) == iso {
			return i
		}
	}
	t.Fatalf("no row for %s", iso)
	return -1
}

func TestFundamentalsQuarterlyDecomposition(t *testing.T) {
	srv := factsServer(t)
	a := testAdapter(srv)

	ts, err := a.Fundamentals(context.Background(), "320193", models.Quarterly)
	if err != nil {
		t.Fatalf("Fundamentals: %v", err)
	}

	// Q1 is discrete and passes through.
	if v := ts.Value(rowIndex(t, ts, "2023-03-31"), "revenue"); v == nil || *v != 100 {
		t.Errorf("Q1 revenue = %v, want 100", v)
	}
	// Q2 is cumulative 220 minus the running 100.
	if v := ts.Value(rowIndex(t, ts, "2023-06-30"), "revenue"); v == nil || *v != 120 {
		t.Errorf("Q2 revenue = %v, want 120", v)
	}
	// Q3's cumulative 210 is below the running total: a restatement broke
	// the ordering, so the quarter is null rather than negative.
	if v := ts.Value(rowIndex(t, ts, "2023-09-30"), "revenue"); v != nil {
		t.Errorf("Q3 revenue = %v, want nil", *v)
	}
	// Q4 subtracts from the reset running total (460 − 210).
	if v := ts.Value(rowIndex(t, ts, "2023-12-31"), "revenue"); v == nil || *v != 250 {
		t.Errorf("Q4 revenue = %v, want 250", v)
	}

	// Balance variables key by instant.
	if v := ts.Value(rowIndex(t, ts, "2023-03-31"), "total_assets"); v == nil || *v != 1000 {
		t.Errorf("Q1 assets = %v, want 1000", v)
	}
}

func TestFundamentalsAnnualFilter(t *testing.T) {
	srv := factsServer(t)
	a := testAdapter(srv)

	ts, err := a.Fundamentals(context.Background(), "320193", models.Annual)
	if err != nil {
		t.Fatalf("Fundamentals: %v", err)
	}
	i := rowIndex(t, ts, "2023-12-31")
	// The full-year 10-K fact survives; the three-month 10-K fact is
	// rejected by the ten-month span filter.
	if v := ts.Value(i, "net_income"); v == nil || *v != 500 {
		t.Errorf("annual net income = %v, want 500", v)
	}
	if v := ts.Value(i, "revenue"); v == nil || *v != 460 {
		t.Errorf("annual revenue = %v, want 460", v)
	}
	if v := ts.Value(i, "total_assets"); v == nil || *v != 1100 {
		t.Errorf("annual assets = %v, want 1100", v)
	}
}

func TestFundamentalsTickerResolution(t *testing.T) {
	srv := factsServer(t)
	a := testAdapter(srv)

	ts, err := a.Fundamentals(context.Background(), "acme", models.Annual)
	if err != nil {
		t.Fatalf("Fundamentals by ticker: %v", err)
	}
	if ts.Len() == 0 {
		t.Fatal("empty series")
	}

	if _, err := a.Fundamentals(context.Background(), "nope", models.Annual); !fault.IsKind(err, fault.NotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestFundamentalsInvalidFrequency(t *testing.T) {
	a := New(testIdentity())
	if _, err := a.Fundamentals(context.Background(), "320193", "weekly"); !fault.IsKind(err, fault.InvalidInput) {
		t.Fatalf("err = %v, want InvalidInput", err)
	}
}

func TestCompaniesRequiresIdentity(t *testing.T) {
	a := New(config.New()) // no sec_identity
	if _, err := a.Companies(context.Background()); !fault.IsKind(err, fault.Configuration) {
		t.Fatalf("err = %v, want Configuration", err)
	}
}

func TestCompanies(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"fields":["cik","name","ticker","exchange"],"data":[[320193,"ACME CORP","ACME","Nasdaq"],[789019,"WIDGET INC","WDGT","NYSE"]]}`)
	}))
	defer srv.Close()
	a := testAdapter(srv)

	for i := 0; i < 2; i++ {
		out, err := a.Companies(context.Background())
		if err != nil {
			t.Fatalf("Companies: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("records = %d, want 2", len(out))
		}
		if out[0].CIK != "0000320193" {
			t.Errorf("cik = %q, want zero-padded 0000320193", out[0].CIK)
		}
		if out[1].Ticker != "WDGT" || out[1].Exchange != "NYSE" {
			t.Errorf("record = %+v", out[1])
		}
	}
	if hits != 1 {
		t.Errorf("hits = %d, want memoized single fetch", hits)
	}
}

func latestFilingsPage(rows int, startDate int) string {
	page := `<html><body><table><thead><tr>
		<th>Company</th><th>Form</th><th>CIK</th><th>Date Filed</th><th>Accession Number</th>
	</tr></thead><tbody>`
	for i := 0; i < rows; i++ {
		page += fmt.Sprintf(`<tr><td>CO %d</td><td>8-K</td><td>100%d</td><td>2024-02-%02d</td><td>0000000000-24-%06d</td></tr>`,
			i, i, startDate-i, i)
	}
	return page + `</tbody></table></body></html>`
}

func TestLatestFilingsEndOfStream(t *testing.T) {
	pages := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		if pages == 1 {
			fmt.Fprint(w, latestFilingsPage(2, 20))
			return
		}
		fmt.Fprint(w, latestFilingsPage(1, 10)) // short page: stream ends
	}))
	defer srv.Close()
	a := testAdapter(srv)

	out, err := a.LatestFilings(context.Background(), LatestFilingsOptions{PageSize: 2, MaxPages: 10})
	if err != nil {
		t.Fatalf("LatestFilings: %v", err)
	}
	if pages != 2 {
		t.Errorf("pages fetched = %d, want 2 (short page stops the walk)", pages)
	}
	if len(out) != 3 {
		t.Fatalf("refs = %d, want 3", len(out))
	}
	if out[0].FormType != "8-K" || out[0].URL == "" {
		t.Errorf("ref = %+v", out[0])
	}
}
