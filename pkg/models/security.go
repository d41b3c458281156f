package models

// SecurityType enumerates the instrument classes the library understands.
type SecurityType string

const (
	TypeEquity     SecurityType = "equity"
	TypeETF        SecurityType = "etf"
	TypeMutualFund SecurityType = "mutualfund"
	TypeIndex      SecurityType = "index"
	TypeFuture     SecurityType = "future"
	TypeCurrency   SecurityType = "currency"
	TypeCrypto     SecurityType = "crypto"
	TypeOption     SecurityType = "option"
	TypeBond       SecurityType = "bond"
)

// Security identifies an instrument. Equality is by (Type, primary
// identifier), where the primary identifier is ISIN when present, otherwise
// the ticker.
type Security struct {
	Ticker   string       `json:"ticker"`
	ISIN     string       `json:"isin,omitempty"`
	Name     string       `json:"name"`
	Type     SecurityType `json:"type"`
	Currency string       `json:"currency,omitempty"`
	Exchange string       `json:"exchange,omitempty"`
}

// PrimaryIdentifier returns ISIN when set, otherwise the ticker.
func (s Security) PrimaryIdentifier() string {
	if s.ISIN != "" {
		return s.ISIN
	}
	return s.Ticker
}

// Equal compares by (type, primary identifier).
func (s Security) Equal(o Security) bool {
	return s.Type == o.Type && s.PrimaryIdentifier() == o.PrimaryIdentifier()
}

// Profile is the descriptive record returned by profile lookups.
type Profile struct {
	Security    Security `json:"security"`
	Sector      string   `json:"sector,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Country     string   `json:"country,omitempty"`
	Website     string   `json:"website,omitempty"`
	Description string   `json:"description,omitempty"`
	Employees   int64    `json:"employees,omitempty"`
}
