package yahoo

import (
	"context"
	"time"

	"github.com/quantfetch/quantfetch/pkg/models"
)

// InsiderOwnership lists the current insider roster and their direct
// positions.
func (a *Adapter) InsiderOwnership(ctx context.Context, ticker string) ([]models.OwnershipRow, error) {
	mods, err := a.modules(ctx, ticker, "insiderHolders")
	if err != nil {
		return nil, err
	}
	var hl holderList
	if err := decodeModule(mods["insiderHolders"], &hl); err != nil {
		return nil, err
	}
	out := make([]models.OwnershipRow, 0, len(hl.Holders))
	for _, h := range hl.Holders {
		out = append(out, models.OwnershipRow{
			Holder:      h.Name,
			Relation:    h.Relation,
			ReportDate:  h.LatestTransDate.Fmt,
			Shares:      h.PositionDirect.Raw,
			LatestTrans: h.TransactionDescription,
		})
	}
	return out, nil
}

// InstitutionalOwnership lists the largest institutional holders.
func (a *Adapter) InstitutionalOwnership(ctx context.Context, ticker string) ([]models.OwnershipRow, error) {
	return a.ownership(ctx, ticker, "institutionOwnership")
}

// FundOwnership lists the largest mutual-fund holders.
func (a *Adapter) FundOwnership(ctx context.Context, ticker string) ([]models.OwnershipRow, error) {
	return a.ownership(ctx, ticker, "fundOwnership")
}

func (a *Adapter) ownership(ctx context.Context, ticker, module string) ([]models.OwnershipRow, error) {
	mods, err := a.modules(ctx, ticker, module)
	if err != nil {
		return nil, err
	}
	var ol ownershipList
	if err := decodeModule(mods[module], &ol); err != nil {
		return nil, err
	}
	out := make([]models.OwnershipRow, 0, len(ol.OwnershipList))
	for _, o := range ol.OwnershipList {
		out = append(out, models.OwnershipRow{
			Holder:     o.Organization,
			ReportDate: o.ReportDate.Fmt,
			Shares:     o.Position.Raw,
			Value:      o.Value.Raw,
			PctHeld:    models.FractionPtr(o.PctHeld.Raw),
			PctChange:  models.FractionPtr(o.PctChange.Raw),
		})
	}
	return out, nil
}

// InsiderTrades lists recent insider transactions, newest first as the
// source delivers them.
func (a *Adapter) InsiderTrades(ctx context.Context, ticker string) ([]models.InsiderTrade, error) {
	mods, err := a.modules(ctx, ticker, "insiderTransactions")
	if err != nil {
		return nil, err
	}
	var it insiderTransactions
	if err := decodeModule(mods["insiderTransactions"], &it); err != nil {
		return nil, err
	}
	out := make([]models.InsiderTrade, 0, len(it.Transactions))
	for _, t := range it.Transactions {
		out = append(out, models.InsiderTrade{
			Insider:     t.FilerName,
			Relation:    t.FilerRelation,
			Date:        t.StartDate.Fmt,
			Transaction: t.TransactionText,
			Shares:      t.Shares.Raw,
			Value:       t.Value.Raw,
		})
	}
	return out, nil
}

// AnalystRecommendations lists upgrade/downgrade actions.
func (a *Adapter) AnalystRecommendations(ctx context.Context, ticker string) ([]models.Recommendation, error) {
	mods, err := a.modules(ctx, ticker, "upgradeDowngradeHistory")
	if err != nil {
		return nil, err
	}
	var hist upgradeDowngradeHistory
	if err := decodeModule(mods["upgradeDowngradeHistory"], &hist); err != nil {
		return nil, err
	}
	out := make([]models.Recommendation, 0, len(hist.History))
	for _, h := range hist.History {
		out = append(out, models.Recommendation{
			Date:      time.Unix(h.EpochGradeDate, 0).UTC().Format(models.ISODate),
			Firm:      h.Firm,
			ToGrade:   h.ToGrade,
			FromGrade: h.FromGrade,
			Action:    h.Action,
		})
	}
	return out, nil
}

// RecommendationTrend returns the trailing buy/hold/sell counts with the
// canonical average score attached.
func (a *Adapter) RecommendationTrend(ctx context.Context, ticker string) ([]models.RecommendationTrend, error) {
	mods, err := a.modules(ctx, ticker, "recommendationTrend")
	if err != nil {
		return nil, err
	}
	var rt recommendationTrend
	if err := decodeModule(mods["recommendationTrend"], &rt); err != nil {
		return nil, err
	}
	out := make([]models.RecommendationTrend, 0, len(rt.Trend))
	for _, t := range rt.Trend {
		row := models.RecommendationTrend{
			Period:     t.Period,
			StrongBuy:  t.StrongBuy,
			Buy:        t.Buy,
			Hold:       t.Hold,
			Sell:       t.Sell,
			StrongSell: t.StrongSell,
		}
		buy := t.StrongBuy + t.Buy
		sell := t.StrongSell + t.Sell
		if n := buy + t.Hold + sell; n > 0 {
			row.Average = models.Float(float64(5*buy+3*t.Hold+1*sell) / float64(n))
		}
		out = append(out, row)
	}
	return out, nil
}

// SECFilings lists the regulatory filings the source indexes for the ticker.
func (a *Adapter) SECFilings(ctx context.Context, ticker string) ([]models.FilingRef, error) {
	mods, err := a.modules(ctx, ticker, "secFilings")
	if err != nil {
		return nil, err
	}
	var sf secFilingsModule
	if err := decodeModule(mods["secFilings"], &sf); err != nil {
		return nil, err
	}
	out := make([]models.FilingRef, 0, len(sf.Filings))
	for _, f := range sf.Filings {
		out = append(out, models.FilingRef{
			FormType:  f.Type,
			DateFiled: f.Date,
			URL:       f.EdgarURL,
		})
	}
	return out, nil
}

// ESGScores returns the sustainability block.
func (a *Adapter) ESGScores(ctx context.Context, ticker string) (*models.ESGScores, error) {
	mods, err := a.modules(ctx, ticker, "esgScores")
	if err != nil {
		return nil, err
	}
	var es esgScoresModule
	if err := decodeModule(mods["esgScores"], &es); err != nil {
		return nil, err
	}
	return &models.ESGScores{
		Total:            es.TotalEsg.Raw,
		Environment:      es.EnvironmentScore.Raw,
		Social:           es.SocialScore.Raw,
		Governance:       es.GovernanceScore.Raw,
		Percentile:       es.Percentile.Raw,
		ControversyLevel: es.HighestControversy,
	}, nil
}

// OwnershipBreakdown returns the major-holders summary as fractions.
func (a *Adapter) OwnershipBreakdown(ctx context.Context, ticker string) (*models.OwnershipBreakdown, error) {
	mods, err := a.modules(ctx, ticker, "majorHoldersBreakdown")
	if err != nil {
		return nil, err
	}
	var mh majorHoldersBreakdown
	if err := decodeModule(mods["majorHoldersBreakdown"], &mh); err != nil {
		return nil, err
	}
	return &models.OwnershipBreakdown{
		InsidersPct:          models.FractionPtr(mh.InsidersPercentHeld.Raw),
		InstitutionsPct:      models.FractionPtr(mh.InstitutionsPercentHeld.Raw),
		InstitutionsFloatPct: models.FractionPtr(mh.InstitutionsFloatPercentHeld.Raw),
		InstitutionsCount:    mh.InstitutionsCount.Raw,
	}, nil
}

// FundStatistics returns the ETF/mutual-fund summary block.
func (a *Adapter) FundStatistics(ctx context.Context, ticker string) (*models.FundStatistics, error) {
	mods, err := a.modules(ctx, ticker, "fundProfile", "defaultKeyStatistics")
	if err != nil {
		return nil, err
	}
	var fp fundProfileModule
	if err := decodeModule(mods["fundProfile"], &fp); err != nil {
		return nil, err
	}
	var ks defaultKeyStatistics
	if err := decodeModule(mods["defaultKeyStatistics"], &ks); err != nil {
		return nil, err
	}

	fs := &models.FundStatistics{
		Category:     fp.CategoryName,
		Family:       fp.Family,
		TotalAssets:  ks.TotalAssets.Raw,
		ExpenseRatio: models.FractionPtr(fp.FeesExpensesInvestment.AnnualReportExpenseRatio.Raw),
		Yield:        models.FractionPtr(ks.Yield.Raw),
		Turnover:     models.FractionPtr(fp.FeesExpensesInvestment.AnnualHoldingsTurnover.Raw),
	}
	if ks.FundInceptionDate.Raw != nil {
		fs.InceptionDate = time.Unix(int64(*ks.FundInceptionDate.Raw), 0).UTC().Format(models.ISODate)
	}
	return fs, nil
}

// Holdings returns the fund's top positions.
func (a *Adapter) Holdings(ctx context.Context, ticker string) ([]models.FundHolding, error) {
	mods, err := a.modules(ctx, ticker, "topHoldings")
	if err != nil {
		return nil, err
	}
	var th topHoldingsModule
	if err := decodeModule(mods["topHoldings"], &th); err != nil {
		return nil, err
	}
	out := make([]models.FundHolding, 0, len(th.Holdings))
	for _, h := range th.Holdings {
		out = append(out, models.FundHolding{
			Symbol:  h.Symbol,
			Name:    h.HoldingName,
			PctHeld: models.FractionPtr(h.HoldingPercent.Raw),
		})
	}
	return out, nil
}
