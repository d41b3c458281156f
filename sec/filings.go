package sec

import (
	"context"
	"encoding/xml"
	"sort"
	"strings"

	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

// decodeXML unmarshals a normalized filing XML body with structural failures
// mapped onto the taxonomy.
func decodeXML(body string, dest any, op string) error {
	dec := xml.NewDecoder(strings.NewReader(normalizeXML(body)))
	// EDGAR bodies mix charsets and stray entities; be permissive.
	dec.Strict = false
	if err := dec.Decode(dest); err != nil {
		return fault.Wrap(fault.Parse, sourceName, op, err)
	}
	return nil
}

// --- Forms 3, 4, 5 ---

// Transaction345 is one insider transaction or holding line.
type Transaction345 struct {
	SecurityTitle    string   `json:"security_title"`
	Date             string   `json:"date,omitempty"`
	Code             string   `json:"code,omitempty"`
	Shares           *float64 `json:"shares,omitempty"`
	PricePerShare    *float64 `json:"price_per_share,omitempty"`
	AcquiredDisposed string   `json:"acquired_disposed,omitempty"` // "A" | "D"
	SharesOwnedAfter *float64 `json:"shares_owned_after,omitempty"`
	Ownership        string   `json:"ownership,omitempty"` // "D" direct | "I" indirect
	Derivative       bool     `json:"derivative"`
}

// Ownership345 is a parsed form 3, 4, or 5.
type Ownership345 struct {
	Filing       *models.Filing   `json:"filing"`
	IssuerTicker string           `json:"issuer_ticker,omitempty"`
	Transactions []Transaction345 `json:"transactions"`
}

type xmlValue struct {
	Value string `xml:"value"`
}

type xml345Transaction struct {
	SecurityTitle   xmlValue `xml:"securityTitle"`
	TransactionDate xmlValue `xml:"transactionDate"`
	Coding          struct {
		Code string `xml:"transactionCode"`
	} `xml:"transactionCoding"`
	Amounts struct {
		Shares           xmlValue `xml:"transactionShares"`
		PricePerShare    xmlValue `xml:"transactionPricePerShare"`
		AcquiredDisposed xmlValue `xml:"transactionAcquiredDisposedCode"`
	} `xml:"transactionAmounts"`
	PostAmounts struct {
		SharesOwned xmlValue `xml:"sharesOwnedFollowingTransaction"`
	} `xml:"postTransactionAmounts"`
	Nature struct {
		DirectOrIndirect xmlValue `xml:"directOrIndirectOwnership"`
	} `xml:"ownershipNature"`
}

type xml345Document struct {
	Issuer struct {
		Ticker string `xml:"issuerTradingSymbol"`
	} `xml:"issuer"`
	NonDerivative struct {
		Transactions []xml345Transaction `xml:"nonDerivativeTransaction"`
		Holdings     []xml345Transaction `xml:"nonDerivativeHolding"`
	} `xml:"nonDerivativeTable"`
	Derivative struct {
		Transactions []xml345Transaction `xml:"derivativeTransaction"`
		Holdings     []xml345Transaction `xml:"derivativeHolding"`
	} `xml:"derivativeTable"`
}

// Filing345 parses a form 3, 4, or 5 submission given raw text or a URL.
func (a *Adapter) Filing345(ctx context.Context, docOrURL string) (*Ownership345, error) {
	document, err := a.document(ctx, docOrURL)
	if err != nil {
		return nil, err
	}
	filing, err := ParseHeader(document)
	if err != nil {
		return nil, err
	}
	switch strings.TrimSuffix(filing.FormType, "/A") {
	case "3", "4", "5":
	default:
		return nil, fault.Newf(fault.InvalidInput, sourceName, "filing_345",
			"submission type %s is not a form 3, 4, or 5", filing.FormType)
	}

	var doc xml345Document
	if err := decodeXML(xmlBody(document), &doc, "filing_345"); err != nil {
		return nil, err
	}

	out := &Ownership345{Filing: filing, IssuerTicker: strings.TrimSpace(doc.Issuer.Ticker)}
	add := func(rows []xml345Transaction, derivative bool) {
		for _, r := range rows {
			out.Transactions = append(out.Transactions, Transaction345{
				SecurityTitle:    strings.TrimSpace(r.SecurityTitle.Value),
				Date:             strings.TrimSpace(r.TransactionDate.Value),
				Code:             strings.TrimSpace(r.Coding.Code),
				Shares:           xmlFloat(r.Amounts.Shares.Value),
				PricePerShare:    xmlFloat(r.Amounts.PricePerShare.Value),
				AcquiredDisposed: strings.TrimSpace(r.Amounts.AcquiredDisposed.Value),
				SharesOwnedAfter: xmlFloat(r.PostAmounts.SharesOwned.Value),
				Ownership:        strings.TrimSpace(r.Nature.DirectOrIndirect.Value),
				Derivative:       derivative,
			})
		}
	}
	add(doc.NonDerivative.Transactions, false)
	add(doc.NonDerivative.Holdings, false)
	add(doc.Derivative.Transactions, true)
	add(doc.Derivative.Holdings, true)
	return out, nil
}

// --- Schedules 13D and 13G ---

// ReportingPerson13 is one reporting person on a schedule 13D/G cover page.
type ReportingPerson13 struct {
	Name           string   `json:"name"`
	SharesOwned    *float64 `json:"shares_owned,omitempty"`
	PercentOfClass *float64 `json:"percent_of_class,omitempty"` // fraction in [0,1]
	MemberOfGroup  bool     `json:"member_of_group,omitempty"`
}

// Schedule13 is a parsed schedule 13D or 13G.
type Schedule13 struct {
	Filing           *models.Filing      `json:"filing"`
	CUSIP            string              `json:"cusip,omitempty"`
	ReportingPersons []ReportingPerson13 `json:"reporting_persons"`
	// Purpose is item 4 text; populated for 13D only.
	Purpose string `json:"purpose,omitempty"`
}

type xmlSchedule13 struct {
	FormData struct {
		Cover struct {
			CUSIP string `xml:"issuerCusip"`
		} `xml:"coverPageHeader"`
		Persons []struct {
			Name           string `xml:"reportingPersonName"`
			Aggregate      string `xml:"aggregateAmountOwned"`
			PercentOfClass string `xml:"percentOfClass"`
			GroupMember    string `xml:"memberOfGroup"`
		} `xml:"reportingPersonDetails"`
		Purpose string `xml:"purposeOfTransaction"`
	} `xml:"formData"`
}

// Filing13D parses a schedule 13D submission given raw text or a URL.
func (a *Adapter) Filing13D(ctx context.Context, docOrURL string) (*Schedule13, error) {
	return a.schedule13(ctx, docOrURL, "SC 13D")
}

// Filing13G parses a schedule 13G submission given raw text or a URL.
func (a *Adapter) Filing13G(ctx context.Context, docOrURL string) (*Schedule13, error) {
	return a.schedule13(ctx, docOrURL, "SC 13G")
}

func (a *Adapter) schedule13(ctx context.Context, docOrURL, wantForm string) (*Schedule13, error) {
	document, err := a.document(ctx, docOrURL)
	if err != nil {
		return nil, err
	}
	filing, err := ParseHeader(document)
	if err != nil {
		return nil, err
	}
	form := strings.TrimSuffix(filing.FormType, "/A")
	if form != wantForm {
		return nil, fault.Newf(fault.InvalidInput, sourceName, "schedule_13",
			"submission type %s, want %s", filing.FormType, wantForm)
	}

	if !strings.Contains(document, "<XML>") && !strings.Contains(document, "<?xml") {
		// Pre-2024 schedules are free text; the structured parse does not
		// apply to them.
		return nil, fault.Newf(fault.NotImplemented, sourceName, "schedule_13",
			"%s body is not XML; legacy text schedules are not parsed", filing.FormType)
	}
	body := xmlBody(document)

	var doc xmlSchedule13
	if err := decodeXML(body, &doc, "schedule_13"); err != nil {
		return nil, err
	}

	out := &Schedule13{
		Filing: filing,
		CUSIP:  strings.TrimSpace(doc.FormData.Cover.CUSIP),
	}
	if wantForm == "SC 13D" {
		out.Purpose = strings.TrimSpace(doc.FormData.Purpose)
	}
	for _, p := range doc.FormData.Persons {
		out.ReportingPersons = append(out.ReportingPersons, ReportingPerson13{
			Name:           strings.TrimSpace(p.Name),
			SharesOwned:    xmlFloat(p.Aggregate),
			PercentOfClass: xmlPercent(p.PercentOfClass),
			MemberOfGroup:  strings.EqualFold(strings.TrimSpace(p.GroupMember), "Y"),
		})
	}
	if len(out.ReportingPersons) == 0 {
		return nil, fault.New(fault.SourceSchemaChanged, sourceName, "schedule_13",
			"cover page lists no reporting persons")
	}
	return out, nil
}

// --- Form 13F ---

// Report13F is a parsed 13F-HR holdings report.
type Report13F struct {
	Filing     *models.Filing   `json:"filing"`
	ReportDate string           `json:"report_date"`
	Portfolio  models.Portfolio `json:"portfolio"`
}

type xml13FPrimary struct {
	FormData struct {
		CoverPage struct {
			ReportCalendarOrQuarter string `xml:"reportCalendarOrQuarter"`
		} `xml:"coverPage"`
		Summary struct {
			OtherIncludedManagers []struct {
				Name string `xml:"name"`
			} `xml:"otherManagers2Info>otherManager2>otherManager"`
		} `xml:"summaryPage"`
	} `xml:"formData"`
}

type xml13FInfoTable struct {
	Entries []struct {
		NameOfIssuer string `xml:"nameOfIssuer"`
		TitleOfClass string `xml:"titleOfClass"`
		CUSIP        string `xml:"cusip"`
		Value        string `xml:"value"`
		SharesOrPrn  struct {
			Amount string `xml:"sshPrnamt"`
			Type   string `xml:"sshPrnamtType"`
		} `xml:"shrsOrPrnAmt"`
		PutCall         string `xml:"putCall"`
		VotingAuthority struct {
			Sole   string `xml:"Sole"`
			Shared string `xml:"Shared"`
			None   string `xml:"None"`
		} `xml:"votingAuthority"`
	} `xml:"infoTable"`
}

// Filing13F parses a 13F-HR submission given raw text or a URL. The
// submission text carries both the cover document and the information table.
func (a *Adapter) Filing13F(ctx context.Context, docOrURL string) (*Report13F, error) {
	document, err := a.document(ctx, docOrURL)
	if err != nil {
		return nil, err
	}
	filing, err := ParseHeader(document)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(filing.FormType, "13F") {
		return nil, fault.Newf(fault.InvalidInput, sourceName, "filing_13f",
			"submission type %s is not a 13F", filing.FormType)
	}

	var primary xml13FPrimary
	var table xml13FInfoTable
	for _, body := range xmlBodies(document) {
		normalized := normalizeXML(body)
		if strings.Contains(normalized, "<informationTable") ||
			strings.Contains(normalized, "<infoTable") {
			if err := decodeXML(body, &table, "filing_13f"); err != nil {
				return nil, err
			}
			continue
		}
		if strings.Contains(normalized, "<edgarSubmission") {
			if err := decodeXML(body, &primary, "filing_13f"); err != nil {
				return nil, err
			}
		}
	}
	if len(table.Entries) == 0 {
		return nil, fault.New(fault.SourceSchemaChanged, sourceName, "filing_13f",
			"submission carries no information table")
	}

	report := &Report13F{
		Filing:     filing,
		ReportDate: headerDate(strings.ReplaceAll(primary.FormData.CoverPage.ReportCalendarOrQuarter, "-", "")),
	}
	if report.ReportDate == "" {
		report.ReportDate = coverDate(primary.FormData.CoverPage.ReportCalendarOrQuarter)
	}
	if report.ReportDate == "" {
		report.ReportDate = filing.DateOfPeriod
	}

	report.Portfolio.ReportDate = report.ReportDate
	for _, m := range primary.FormData.Summary.OtherIncludedManagers {
		if name := strings.TrimSpace(m.Name); name != "" {
			report.Portfolio.CoManagers = append(report.Portfolio.CoManagers, name)
		}
	}

	var total float64
	for _, e := range table.Entries {
		mv := xmlFloat(e.Value)
		h := models.Holding{
			Issuer:      models.Issuer{Name: strings.TrimSpace(e.NameOfIssuer)},
			Title:       strings.TrimSpace(e.TitleOfClass),
			Identifiers: models.Identifiers{CUSIP: strings.TrimSpace(e.CUSIP)},
			Amount: models.Amount{
				Quantity:     xmlFloat(e.SharesOrPrn.Amount),
				QuantityUnit: strings.TrimSpace(e.SharesOrPrn.Type),
				MarketValue:  mv,
				Currency:     models.CurrencyAmount{Name: "USD"},
			},
			AssetClass: models.AssetClass{Abbr: "EC", Name: "equity-common"},
			VotingAuthority: &models.VotingAuthority{
				Sole:   xmlInt(e.VotingAuthority.Sole),
				Shared: xmlInt(e.VotingAuthority.Shared),
				None:   xmlInt(e.VotingAuthority.None),
			},
		}
		switch strings.ToLower(strings.TrimSpace(e.PutCall)) {
		case "put":
			h.PayoffDirection = models.Short
		case "call":
			h.PayoffDirection = models.Long
		}
		if mv != nil {
			total += *mv
		}
		report.Portfolio.Holdings = append(report.Portfolio.Holdings, h)
	}
	if total > 0 {
		report.Portfolio.TotalAUM = models.Float(total)
	}
	return report, nil
}

// AggregatePortfolio merges duplicate CUSIPs (sub-managers reporting the
// same position) and attaches each holding's share of the total market
// value. Recognized sort orders: "market_value" (descending), "name",
// "quantity" (descending); anything else fails with InvalidInput.
func (r *Report13F) AggregatePortfolio(sortedBy string) (*models.Portfolio, error) {
	merged := make(map[string]*models.Holding)
	var order []string
	for _, h := range r.Portfolio.Holdings {
		key := h.Identifiers.CUSIP
		if key == "" {
			key = h.Issuer.Name + "|" + h.Title
		}
		got, ok := merged[key]
		if !ok {
			clone := h
			if h.VotingAuthority != nil {
				va := *h.VotingAuthority
				clone.VotingAuthority = &va
			}
			merged[key] = &clone
			order = append(order, key)
			continue
		}
		got.Amount.Quantity = addFloat(got.Amount.Quantity, h.Amount.Quantity)
		got.Amount.MarketValue = addFloat(got.Amount.MarketValue, h.Amount.MarketValue)
		if h.VotingAuthority != nil {
			if got.VotingAuthority == nil {
				got.VotingAuthority = &models.VotingAuthority{}
			}
			got.VotingAuthority.Sole += h.VotingAuthority.Sole
			got.VotingAuthority.Shared += h.VotingAuthority.Shared
			got.VotingAuthority.None += h.VotingAuthority.None
		}
	}

	out := &models.Portfolio{
		ReportDate: r.Portfolio.ReportDate,
		CoManagers: r.Portfolio.CoManagers,
	}
	var total float64
	for _, key := range order {
		if mv := merged[key].Amount.MarketValue; mv != nil {
			total += *mv
		}
	}
	for _, key := range order {
		h := *merged[key]
		if h.Amount.MarketValue != nil && total > 0 {
			h.Amount.PctOfPortfolio = models.Float(*h.Amount.MarketValue / total)
		}
		out.Holdings = append(out.Holdings, h)
	}
	if total > 0 {
		out.TotalAUM = models.Float(total)
	}

	switch sortedBy {
	case "", "name":
		sort.SliceStable(out.Holdings, func(i, j int) bool {
			return out.Holdings[i].Issuer.Name < out.Holdings[j].Issuer.Name
		})
	case "market_value":
		sort.SliceStable(out.Holdings, func(i, j int) bool {
			return derefZero(out.Holdings[i].Amount.MarketValue) > derefZero(out.Holdings[j].Amount.MarketValue)
		})
	case "quantity":
		sort.SliceStable(out.Holdings, func(i, j int) bool {
			return derefZero(out.Holdings[i].Amount.Quantity) > derefZero(out.Holdings[j].Amount.Quantity)
		})
	default:
		return nil, fault.Newf(fault.InvalidInput, sourceName, "aggregate_portfolio",
			"unrecognized sort order %q", sortedBy)
	}
	return out, nil
}

// xmlBodies returns every <XML>...</XML> section of a submission.
func xmlBodies(document string) []string {
	var out []string
	rest := document
	for {
		i := strings.Index(rest, "<XML>")
		if i < 0 {
			break
		}
		j := strings.Index(rest[i:], "</XML>")
		if j < 0 {
			break
		}
		out = append(out, strings.TrimSpace(rest[i+len("<XML>"):i+j]))
		rest = rest[i+j+len("</XML>"):]
	}
	if len(out) == 0 {
		if body := xmlBody(document); body != "" {
			out = append(out, body)
		}
	}
	return out
}

// coverDate parses the 13F cover "MM-DD-YYYY" quarter date.
func coverDate(tok string) string {
	tok = strings.TrimSpace(tok)
	parts := strings.Split(tok, "-")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return ""
	}
	return headerDate(parts[2] + parts[0] + parts[1])
}
