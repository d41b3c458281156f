package cme

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/pkg/fault"
)

// fakeSession serves two settlement dates; the table swaps when a date is
// selected.
type fakeSession struct {
	dates   []string
	current string
	closed  bool
}

func (f *fakeSession) WaitVisible(selector string, timeout time.Duration) error { return nil }
func (f *fakeSession) DismissPopup(selector string)                             {}
func (f *fakeSession) Close()                                                   { f.closed = true }

func (f *fakeSession) Eval(script string, dest any) error {
	switch {
	case strings.Contains(script, "trade-date option"):
		*dest.(*[]string) = f.dates
	case strings.Contains(script, "dispatchEvent"):
		for _, d := range f.dates {
			if strings.Contains(script, d) {
				f.current = d
			}
		}
	}
	return nil
}

func (f *fakeSession) HTML() (string, error) {
	if f.current == "2024-01-04" {
		return settlementHTML("JLY 24", "73.50", "75.10", "72.80", "74.20", "+0.70", "74.25", "310,500", "295,000"), nil
	}
	return settlementHTML("JNE 24", "74.00", "75.80", "73.10", "75.00", "-0.25", "74.95", "350,200", "301,450"), nil
}

func settlementHTML(month, open, high, low, last, change, settle, volume, oi string) string {
	return `<html><body><table>
		<thead><tr><th>Month</th><th>Open</th><th>High</th><th>Low</th><th>Last</th><th>Change</th><th>Settle</th><th>Volume</th><th>Open Interest</th></tr></thead>
		<tbody><tr><td>` + month + `</td><td>` + open + `</td><td>` + high + `</td><td>` + low +
		`</td><td>` + last + `</td><td>` + change + `</td><td>` + settle + `</td><td>` + volume +
		`</td><td>` + oi + `</td></tr></tbody></table></body></html>`
}

func testAdapter(f *fakeSession) *Adapter {
	return New(config.New(), WithOpener(func(ctx context.Context, url string) (session, error) {
		return f, nil
	}))
}

func TestSettlements(t *testing.T) {
	f := &fakeSession{dates: []string{"2024-01-05", "2024-01-04"}}
	a := testAdapter(f)

	out, err := a.Settlements(context.Background(), "markets/energy/crude-oil/light-sweet-crude.settlements.html")
	if err != nil {
		t.Fatalf("Settlements: %v", err)
	}
	if !f.closed {
		t.Error("session not closed")
	}
	if len(out) != 2 {
		t.Fatalf("dates = %d, want 2", len(out))
	}

	rows := out["2024-01-04"]
	if len(rows) != 1 {
		t.Fatalf("rows for 2024-01-04 = %d, want 1", len(rows))
	}
	r := rows[0]
	// Month codes are normalized: JLY → JUL.
	if r.Month != "JUL 24" {
		t.Errorf("month = %q, want JUL 24", r.Month)
	}
	if r.Settle == nil || *r.Settle != 74.25 {
		t.Errorf("settle = %v, want 74.25", r.Settle)
	}
	if r.Change == nil || *r.Change != 0.70 {
		t.Errorf("change = %v, want 0.70", r.Change)
	}
	if r.Volume == nil || *r.Volume != 310500 {
		t.Errorf("volume = %v, want 310500", r.Volume)
	}

	// JNE normalizes to JUN.
	if first := out["2024-01-05"][0]; first.Month != "JUN 24" {
		t.Errorf("month = %q, want JUN 24", first.Month)
	}
	if oi := out["2024-01-05"][0].OpenInterest; oi == nil || *oi != 301450 {
		t.Errorf("open interest = %v, want 301450", oi)
	}
}

func TestSettlementsNoDates(t *testing.T) {
	a := testAdapter(&fakeSession{dates: nil})
	_, err := a.Settlements(context.Background(), "markets/energy/crude-oil/x.settlements.html")
	if !fault.IsKind(err, fault.SourceSchemaChanged) {
		t.Fatalf("err = %v, want SourceSchemaChanged", err)
	}
}

func TestSettlementsEmptyPath(t *testing.T) {
	a := testAdapter(&fakeSession{})
	_, err := a.Settlements(context.Background(), "")
	if !fault.IsKind(err, fault.InvalidInput) {
		t.Fatalf("err = %v, want InvalidInput", err)
	}
}
