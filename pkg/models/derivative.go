package models

// DerivativeKind tags the closed set of derivative variants.
type DerivativeKind string

const (
	KindForward  DerivativeKind = "forward"
	KindFuture   DerivativeKind = "future"
	KindOption   DerivativeKind = "option"
	KindSwap     DerivativeKind = "swap"
	KindSwaption DerivativeKind = "swaption"
	KindWarrant  DerivativeKind = "warrant"
	KindOther    DerivativeKind = "other"
)

// Derivative is a tagged variant: exactly the field matching Kind is set,
// all others are nil. Reference assets may nest arbitrarily.
type Derivative struct {
	Kind         DerivativeKind `json:"kind"`
	Counterparty string         `json:"counterparty,omitempty"`

	Forward  *ForwardTerms  `json:"forward,omitempty"`
	Future   *FutureTerms   `json:"future,omitempty"`
	Option   *OptionTerms   `json:"option,omitempty"`
	Swap     *SwapTerms     `json:"swap,omitempty"`
	Swaption *SwaptionTerms `json:"swaption,omitempty"`
	Warrant  *WarrantTerms  `json:"warrant,omitempty"`
	Other    *OtherTerms    `json:"other,omitempty"`
}

// ForwardTerms covers FX and other forwards.
type ForwardTerms struct {
	CurrencySold      string   `json:"currency_sold,omitempty"`
	AmountSold        *float64 `json:"amount_sold,omitempty"`
	CurrencyPurchased string   `json:"currency_purchased,omitempty"`
	AmountPurchased   *float64 `json:"amount_purchased,omitempty"`
	SettlementDate    string   `json:"settlement_date,omitempty"`
	UnrealizedPnL     *float64 `json:"unrealized_pnl,omitempty"`
}

// FutureTerms covers exchange-traded futures.
type FutureTerms struct {
	Reference      *ReferenceAsset `json:"reference,omitempty"`
	PayoffProfile  string          `json:"payoff_profile,omitempty"`
	ExpirationDate string          `json:"expiration_date,omitempty"`
	NotionalAmount *float64        `json:"notional_amount,omitempty"`
	UnrealizedPnL  *float64        `json:"unrealized_pnl,omitempty"`
}

// OptionTerms covers options and warrants' option-like fields.
type OptionTerms struct {
	Reference      *ReferenceAsset `json:"reference,omitempty"`
	PutOrCall      string          `json:"put_or_call,omitempty"` // "put" | "call"
	WrittenOrBought string         `json:"written_or_bought,omitempty"`
	StrikePrice    *float64        `json:"strike_price,omitempty"`
	StrikeCurrency string          `json:"strike_currency,omitempty"`
	ShareQuantity  *float64        `json:"share_quantity,omitempty"`
	ExpirationDate string          `json:"expiration_date,omitempty"`
}

// SwapLeg is one side of a swap.
type SwapLeg struct {
	Fixed       bool     `json:"fixed"`
	Rate        *float64 `json:"rate,omitempty"`
	Index       string   `json:"index,omitempty"`
	Spread      *float64 `json:"spread,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	UpfrontPaid *float64 `json:"upfront_paid,omitempty"`
}

// SwapTerms covers rate/total-return swaps.
type SwapTerms struct {
	Reference       *ReferenceAsset `json:"reference,omitempty"`
	Receive         *SwapLeg        `json:"receive,omitempty"`
	Pay             *SwapLeg        `json:"pay,omitempty"`
	TerminationDate string          `json:"termination_date,omitempty"`
	NotionalAmount  *float64        `json:"notional_amount,omitempty"`
	UnrealizedPnL   *float64        `json:"unrealized_pnl,omitempty"`
}

// SwaptionTerms wraps an option on a swap.
type SwaptionTerms struct {
	Option *OptionTerms `json:"option,omitempty"`
	Swap   *SwapTerms   `json:"swap,omitempty"`
}

// WarrantTerms reuses the option shape.
type WarrantTerms struct {
	Option *OptionTerms `json:"option,omitempty"`
}

// OtherTerms carries the free-form category some filings use.
type OtherTerms struct {
	Description    string   `json:"description,omitempty"`
	NotionalAmount *float64 `json:"notional_amount,omitempty"`
}

// ReferenceKind tags what a derivative references.
type ReferenceKind string

const (
	RefSecurity   ReferenceKind = "security"
	RefDerivative ReferenceKind = "derivative"
	RefIndex      ReferenceKind = "index_basket"
	RefOther      ReferenceKind = "other"
)

// ReferenceAsset is the tagged variant for a derivative's underlying:
// another security, a nested derivative, or an index basket.
type ReferenceAsset struct {
	Kind       ReferenceKind `json:"kind"`
	Security   *Security     `json:"security,omitempty"`
	Derivative *Derivative   `json:"derivative,omitempty"`
	Index      *IndexBasket  `json:"index,omitempty"`
	Other      string        `json:"other,omitempty"`
}

// IndexBasket names an index or custom basket referenced by a derivative.
type IndexBasket struct {
	Name        string `json:"name"`
	Identifier  string `json:"identifier,omitempty"`
	Description string `json:"description,omitempty"`
	Components  int    `json:"components,omitempty"`
}
