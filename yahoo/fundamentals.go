package yahoo

import (
	"context"
	"encoding/json"

	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

// FinancialStatement returns income, balance, and cash-flow statements at
// the requested frequency. Values come through in the reporting currency in
// absolute units.
func (a *Adapter) FinancialStatement(ctx context.Context, ticker string, freq models.Frequency) (*models.StatementSet, error) {
	if freq != models.Annual && freq != models.Quarterly {
		return nil, fault.Newf(fault.InvalidInput, sourceName, "financial_statement",
			"frequency must be annual or quarterly, got %q", freq)
	}

	var incomeMod, balanceMod, cashMod string
	if freq == models.Annual {
		incomeMod, balanceMod, cashMod = "incomeStatementHistory", "balanceSheetHistory", "cashflowStatementHistory"
	} else {
		incomeMod, balanceMod, cashMod = "incomeStatementHistoryQuarterly", "balanceSheetHistoryQuarterly", "cashflowStatementHistoryQuarterly"
	}

	mods, err := a.modules(ctx, ticker, incomeMod, balanceMod, cashMod, "price")
	if err != nil {
		return nil, err
	}
	var pr priceModule
	if err := decodeModule(mods["price"], &pr); err != nil {
		return nil, err
	}

	set := &models.StatementSet{}
	if set.Income, err = decodeStatement(mods[incomeMod], "incomeStatementHistory", freq, pr.Currency); err != nil {
		return nil, err
	}
	if set.Balance, err = decodeStatement(mods[balanceMod], "balanceSheetStatements", freq, pr.Currency); err != nil {
		return nil, err
	}
	if set.CashFlow, err = decodeStatement(mods[cashMod], "cashflowStatements", freq, pr.Currency); err != nil {
		return nil, err
	}
	return set, nil
}

// decodeStatement turns one statement-history module into a Statement. Each
// entry is a map of variable name to a {raw, fmt} wrapper, plus an endDate.
func decodeStatement(raw json.RawMessage, listKey string, freq models.Frequency, currency string) (*models.Statement, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fault.Wrap(fault.Parse, sourceName, "financial_statement", err)
	}
	listRaw, ok := envelope[listKey]
	if !ok {
		return nil, fault.Newf(fault.SourceSchemaChanged, sourceName, "financial_statement",
			"statement module is missing the %q list", listKey)
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(listRaw, &entries); err != nil {
		return nil, fault.Wrap(fault.Parse, sourceName, "financial_statement", err)
	}

	st := models.NewStatement(freq, currency)
	for _, entry := range entries {
		var endDate struct {
			Fmt string `json:"fmt"`
		}
		dateRaw, ok := entry["endDate"]
		if !ok {
			return nil, fault.New(fault.SourceSchemaChanged, sourceName, "financial_statement",
				"statement entry has no endDate")
		}
		if err := json.Unmarshal(dateRaw, &endDate); err != nil || endDate.Fmt == "" {
			return nil, fault.New(fault.SourceSchemaChanged, sourceName, "financial_statement",
				"statement endDate is unparseable")
		}

		for name, valRaw := range entry {
			if name == "endDate" || name == "maxAge" {
				continue
			}
			var rf rawFmt
			if err := json.Unmarshal(valRaw, &rf); err != nil {
				continue // non-numeric ancillary fields
			}
			st.Set(endDate.Fmt, name, rf.Raw)
		}
	}
	return st, nil
}
