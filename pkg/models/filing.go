package models

// SICCode is an EDGAR standard industrial classification.
type SICCode struct {
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

// FiscalYearEnd is a month/day pair from an EDGAR header.
type FiscalYearEnd struct {
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Address is a business or mailing address block.
type Address struct {
	Street1 string `json:"street1,omitempty"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Entity is one role block from an EDGAR filing header: the filer, issuer,
// subject company, or reporting owner.
type Entity struct {
	Name            string         `json:"name"`
	CIK             string         `json:"cik"`
	SIC             *SICCode       `json:"sic,omitempty"`
	IRSNumber       string         `json:"irs_number,omitempty"`
	State           string         `json:"state,omitempty"`
	FiscalYearEnd   *FiscalYearEnd `json:"fiscal_year_end,omitempty"`
	BusinessAddress *Address       `json:"business_address,omitempty"`
	MailAddress     *Address       `json:"mail_address,omitempty"`
	FormerNames     []FormerName   `json:"former_names,omitempty"`
	FileNumber      string         `json:"file_number,omitempty"`
	FilmNumber      string         `json:"film_number,omitempty"`
	StateOfIncorp   string         `json:"state_of_incorporation,omitempty"`
}

// FormerName records a prior registrant name and when it changed.
type FormerName struct {
	Name        string `json:"name"`
	DateChanged string `json:"date_changed,omitempty"`
}

// Filing is a parsed EDGAR submission. Exactly the entity roles relevant to
// the form type are populated; irrelevant roles are nil, not zero-filled.
type Filing struct {
	AccessionNumber   string  `json:"accession_number"`
	FormType          string  `json:"form_type"`
	IsAmendment       bool    `json:"is_amendment"`
	DateFiled         string  `json:"date_filed"`
	DateOfPeriod      string  `json:"date_of_period,omitempty"`
	EffectivenessDate string  `json:"effectiveness_date,omitempty"`
	DocumentCount     int     `json:"document_count,omitempty"`
	Filer             *Entity `json:"filer,omitempty"`
	FiledBy           *Entity `json:"filed_by,omitempty"`
	Issuer            *Entity `json:"issuer,omitempty"`
	ReportingOwner    *Entity `json:"reporting_owner,omitempty"`
	SubjectCompany    *Entity `json:"subject_company,omitempty"`
	DocumentBody      string  `json:"-"`
}

// FilingRef is a lightweight pointer to a filing on EDGAR, as returned by
// list endpoints.
type FilingRef struct {
	AccessionNumber string `json:"accession_number"`
	FormType        string `json:"form_type"`
	CompanyName     string `json:"company_name,omitempty"`
	CIK             string `json:"cik,omitempty"`
	DateFiled       string `json:"date_filed"`
	URL             string `json:"url"`
}

// CompanyRecord is a ticker↔CIK map entry.
type CompanyRecord struct {
	CIK      string `json:"cik"`
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
}

// MutualFundRecord is one row of the EDGAR mutual-fund ticker map.
type MutualFundRecord struct {
	CIK      string `json:"cik"`
	SeriesID string `json:"series_id"`
	ClassID  string `json:"class_id"`
	Ticker   string `json:"ticker"`
}
