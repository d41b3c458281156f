package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/pkg/fault"
)

func TestGetRetries5xx(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	c := NewClient(config.New())
	resp, err := c.Get(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("body = %q", resp.Body)
	}
}

func TestGetExhausts5xx(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(config.New())
	_, err := c.Get(context.Background(), srv.URL, Options{})
	if !fault.IsKind(err, fault.Upstream5xx) {
		t.Fatalf("err = %v, want Upstream5xx", err)
	}
	if attempts != maxAttempts {
		t.Errorf("attempts = %d, want %d", attempts, maxAttempts)
	}
}

func TestGetNeverRetries4xx(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(config.New())
	_, err := c.Get(context.Background(), srv.URL, Options{})
	if !fault.IsKind(err, fault.Upstream4xx) {
		t.Fatalf("err = %v, want Upstream4xx", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want exactly 1", attempts)
	}
}

func TestGetParamsAndHeaders(t *testing.T) {
	var gotUA, gotHeader, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Test")
		gotQuery = r.URL.RawQuery
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := NewClient(config.New(config.WithUserAgent("custom-agent")))
	_, err := c.Get(context.Background(), srv.URL+"?a=1", Options{
		Headers: map[string]string{"X-Test": "yes"},
		Params:  map[string][]string{"b": {"2"}},
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotUA != "custom-agent" {
		t.Errorf("user agent = %q", gotUA)
	}
	if gotHeader != "yes" {
		t.Errorf("header = %q", gotHeader)
	}
	if gotQuery != "a=1&b=2" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestGetSECIdentity(t *testing.T) {
	c := NewClient(config.New()) // no sec_identity configured
	_, err := c.Get(context.Background(), "https://example.invalid/x", Options{SEC: true})
	if !fault.IsKind(err, fault.Configuration) {
		t.Fatalf("err = %v, want Configuration before any request is sent", err)
	}

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c = NewClient(config.New(config.WithSECIdentity("Jo Dev jo@example.com")))
	if _, err := c.Get(context.Background(), srv.URL, Options{SEC: true}); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotUA != "Jo Dev jo@example.com" {
		t.Errorf("user agent = %q, want the EDGAR contact identity", gotUA)
	}
}

func TestGetCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(config.New())
	_, err := c.Get(ctx, "https://example.invalid/x", Options{})
	if !fault.IsKind(err, fault.Cancelled) {
		t.Fatalf("err = %v, want Cancelled", err)
	}
}

func TestResponseJSON(t *testing.T) {
	r := &Response{Body: []byte(`{"n": 7}`)}
	var dest struct {
		N int `json:"n"`
	}
	if err := r.JSON(&dest); err != nil || dest.N != 7 {
		t.Fatalf("JSON: %v, n=%d", err, dest.N)
	}

	bad := &Response{Body: []byte(`{"n":`)}
	if err := bad.JSON(&dest); !fault.IsKind(err, fault.Parse) {
		t.Fatalf("err = %v, want Parse", err)
	}
}

func TestResponseTextCharsetFallback(t *testing.T) {
	// "café" in Windows-1252: é is 0xE9, invalid as UTF-8.
	r := &Response{Body: []byte{'c', 'a', 'f', 0xE9}}
	if got := r.Text(); got != "café" {
		t.Errorf("Text() = %q, want café via Windows-1252 fallback", got)
	}

	declared := &Response{Body: []byte{'c', 'a', 'f', 0xE9}, ContentType: "text/plain; charset=windows-1252"}
	if got := declared.Text(); got != "café" {
		t.Errorf("Text() = %q, want café via declared charset", got)
	}
}
