package models

// OptionLeg is one contract within a chain. Strikes within a maturity are
// unique per leg type.
type OptionLeg struct {
	Maturity string   `json:"maturity"` // ISO date
	Strike   float64  `json:"strike"`
	Symbol   string   `json:"symbol"`
	Last     *float64 `json:"last"`
	Bid      *float64 `json:"bid,omitempty"`
	Ask      *float64 `json:"ask,omitempty"`
	Volume   *float64 `json:"volume,omitempty"`
	OpenInterest *float64 `json:"open_interest,omitempty"`
	IV       *float64 `json:"iv"`
	ITM      bool     `json:"itm"`
}

// OptionChain pairs call and put legs for an underlying.
type OptionChain struct {
	Underlying Security    `json:"underlying"`
	Calls      []OptionLeg `json:"calls"`
	Puts       []OptionLeg `json:"puts"`
}
