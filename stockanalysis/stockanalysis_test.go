package stockanalysis

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

func page(payload string) string {
	return fmt.Sprintf(
		`<html><head></head><body><script type="application/json">%s</script></body></html>`,
		payload)
}

func testAdapter(t *testing.T, handler http.Handler) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.New(), WithBaseURL(srv.URL))
}

func TestFinancialsCompressedUnits(t *testing.T) {
	body := page(`{"financialData":{
		"currency":"USD",
		"periods":["2023-12-31","2022-12-31"],
		"rows":[
			{"label":"Revenue (B)","values":[383.29,394.33]},
			{"label":"EPS","values":[6.13,6.11]},
			{"label":"Depreciation (M)","values":[11.5,null]}
		]}}`)
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))

	set, err := a.Financials(context.Background(), "AAPL", models.Annual)
	if err != nil {
		t.Fatalf("Financials: %v", err)
	}
	st := set.Income
	if st.Currency != "USD" {
		t.Errorf("currency = %q, want USD", st.Currency)
	}
	// "(B)" stripped, value multiplied to absolute units.
	if v := st.Get("2023-12-31", "Revenue"); v == nil || *v != 383.29e9 {
		t.Errorf("Revenue = %v, want 3.8329e11", v)
	}
	if v := st.Get("2023-12-31", "Revenue (B)"); v != nil {
		t.Error("compressed label survived normalization")
	}
	// Unsuffixed labels pass through untouched.
	if v := st.Get("2023-12-31", "EPS"); v == nil || *v != 6.13 {
		t.Errorf("EPS = %v, want 6.13", v)
	}
	// Nulls stay null after the multiply.
	if v := st.Get("2022-12-31", "Depreciation"); v != nil {
		t.Errorf("null cell = %v, want nil", v)
	}
}

func TestFinancialsInvalidFrequency(t *testing.T) {
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	_, err := a.Financials(context.Background(), "AAPL", "weekly")
	if !fault.IsKind(err, fault.InvalidInput) {
		t.Fatalf("err = %v, want InvalidInput", err)
	}
}

func TestFinancialsMemoizedPerSuffix(t *testing.T) {
	hits := make(map[string]int)
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits[r.URL.Path]++
		fmt.Fprint(w, page(`{"financialData":{
			"currency":"USD","periods":["2023-12-31"],
			"rows":[{"label":"Revenue","values":[1.0]}]}}`))
	}))

	for i := 0; i < 2; i++ {
		if _, err := a.Financials(context.Background(), "AAPL", models.Annual); err != nil {
			t.Fatalf("Financials: %v", err)
		}
	}
	if len(hits) != 4 {
		t.Fatalf("distinct pages = %d, want 4", len(hits))
	}
	for path, n := range hits {
		if n != 1 {
			t.Errorf("page %s fetched %d times, want 1", path, n)
		}
	}
}

func TestPrices(t *testing.T) {
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page(`{"priceHistory":[
			{"date":"2024-01-03","close":184.25,"volume":58414500},
			{"date":"2024-01-02","close":185.64,"volume":82488700}
		]}`))
	}))

	ts, err := a.Prices(context.Background(), "AAPL", false)
	if err != nil {
		t.Fatalf("Prices: %v", err)
	}
	if ts.Len() != 2 {
		t.Fatalf("rows = %d, want 2", ts.Len())
	}
	// Keys sort ascending regardless of source order.
	if iso := ts.ISO(0); iso != "2024-01-02" {
		t.Errorf("first key = %s, want 2024-01-02", iso)
	}
	if v := ts.Value(0, "close"); v == nil || *v != 185.64 {
		t.Errorf("close[0] = %v, want 185.64", v)
	}
}

func TestProfile(t *testing.T) {
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/stocks/aapl/") {
			t.Errorf("path = %s, want lowercased ticker", r.URL.Path)
		}
		fmt.Fprint(w, page(`{"companyProfile":{
			"name":"Apple Inc.","ticker":"AAPL","sector":"Technology",
			"industry":"Consumer Electronics","country":"United States",
			"website":"https://www.apple.com","employees":161000,
			"currency":"USD","exchange":"NASDAQ"}}`))
	}))

	p, err := a.Profile(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Security.Name != "Apple Inc." || p.Sector != "Technology" || p.Security.Ticker != "AAPL" {
		t.Errorf("profile = %+v", p)
	}
}

func TestPriceTargets(t *testing.T) {
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page(`{"priceTargets":{
			"average":205.5,"high":250,"low":160,"count":30,
			"targets":[{"date":"2024-01-05","analyst":"Example Research","rating":"Buy","target":210}]}}`))
	}))

	pt, err := a.PriceTargets(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("PriceTargets: %v", err)
	}
	if pt.Count != 30 || pt.Average == nil || *pt.Average != 205.5 {
		t.Errorf("summary = %+v", pt)
	}
	if len(pt.Targets) != 1 || pt.Targets[0].Analyst != "Example Research" {
		t.Errorf("targets = %+v", pt.Targets)
	}
}

func TestPayloadSchemaChanged(t *testing.T) {
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>no scripts here</p></body></html>")
	}))
	_, err := a.Prices(context.Background(), "AAPL", false)
	if !fault.IsKind(err, fault.SourceSchemaChanged) {
		t.Fatalf("err = %v, want SourceSchemaChanged", err)
	}
}
