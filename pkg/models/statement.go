package models

import "sort"

// Frequency selects a statement reporting cadence.
type Frequency string

const (
	Annual    Frequency = "annual"
	Quarterly Frequency = "quarterly"
)

// Statement maps a reporting period (ISO date) to canonical variable values.
// Values are in the instrument's reporting currency, already multiplied out
// to absolute units; missing values are explicit nils.
type Statement struct {
	Frequency Frequency                      `json:"frequency"`
	Currency  string                         `json:"currency"`
	Periods   map[string]map[string]*float64 `json:"periods"`
}

// NewStatement creates an empty statement.
func NewStatement(freq Frequency, currency string) *Statement {
	return &Statement{
		Frequency: freq,
		Currency:  currency,
		Periods:   make(map[string]map[string]*float64),
	}
}

// Set records one variable for one period.
func (s *Statement) Set(period, variable string, v *float64) {
	row, ok := s.Periods[period]
	if !ok {
		row = make(map[string]*float64)
		s.Periods[period] = row
	}
	row[variable] = v
}

// Get returns a value, nil when the period or variable is absent.
func (s *Statement) Get(period, variable string) *float64 {
	if row, ok := s.Periods[period]; ok {
		return row[variable]
	}
	return nil
}

// PeriodKeys returns the reporting periods in ascending order.
func (s *Statement) PeriodKeys() []string {
	keys := make([]string, 0, len(s.Periods))
	for k := range s.Periods {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Variables returns the union of variable names across all periods, sorted.
func (s *Statement) Variables() []string {
	seen := make(map[string]bool)
	for _, row := range s.Periods {
		for v := range row {
			seen[v] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// StatementSet groups the statements one fundamentals fetch produces.
type StatementSet struct {
	Income   *Statement `json:"income,omitempty"`
	Balance  *Statement `json:"balance,omitempty"`
	CashFlow *Statement `json:"cashflow,omitempty"`
	Ratios   *Statement `json:"ratios,omitempty"`
}
