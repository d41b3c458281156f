package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/pkg/fault"
)

const newsTablePage1 = `<html><body><table id="news-table">
<tr><td>Jan-05-24 09:30AM</td><td><a href="https://example.com/a1">Apple launches thing</a> <span>(Example Wire)</span></td></tr>
<tr><td>08:15AM</td><td><a href="https://example.com/a2">Analysts react</a> <span>(Example News)</span></td></tr>
<tr><td>Jan-04-24 04:00PM</td><td><a href="https://example.com/a3">Closing recap</a> <span>(Example Wire)</span></td></tr>
</table></body></html>`

const newsTablePage2 = `<html><body><table id="news-table">
<tr><td>Jan-02-24 10:00AM</td><td><a href="https://example.com/a4">Older story</a> <span>(Example Wire)</span></td></tr>
</table></body></html>`

func TestFinvizNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("p") {
		case "", "1":
			fmt.Fprint(w, newsTablePage1)
		case "2":
			fmt.Fprint(w, newsTablePage2)
		default:
			// Pager refuses to advance: repeat the last page.
			fmt.Fprint(w, newsTablePage2)
		}
	}))
	t.Cleanup(srv.Close)
	f := NewFinviz(config.New(), WithFinvizBaseURL(srv.URL))

	articles, err := f.News(context.Background(), "AAPL", Options{})
	if err != nil {
		t.Fatalf("News: %v", err)
	}
	if len(articles) != 4 {
		t.Fatalf("articles = %d, want 4 (pager stop on repeat)", len(articles))
	}
	for _, a := range articles {
		if a.URL == "" || a.Source == "" || a.Title == "" {
			t.Errorf("incomplete article: %+v", a)
		}
		if key, ok := a.DateKey(true).(int64); !ok || key <= 0 {
			t.Errorf("timestamp key = %v, want positive int64", a.DateKey(true))
		}
	}
	// Ascending order.
	for i := 1; i < len(articles); i++ {
		if articles[i].Date.Before(articles[i-1].Date) {
			t.Fatalf("articles out of order at %d: %v before %v", i, articles[i].Date, articles[i-1].Date)
		}
	}
	// Time-only row inherits the preceding row's date.
	var inherited bool
	for _, a := range articles {
		if a.URL == "https://example.com/a2" {
			inherited = a.Date.Year() == 2024 && a.Date.Month() == 1 && a.Date.Day() == 5
		}
	}
	if !inherited {
		t.Error("time-only row did not inherit the previous date")
	}
}

func TestFinvizNewsStartCutoff(t *testing.T) {
	var pages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		if r.URL.Query().Get("p") == "1" {
			fmt.Fprint(w, newsTablePage1)
		} else {
			fmt.Fprint(w, newsTablePage2)
		}
	}))
	t.Cleanup(srv.Close)
	f := NewFinviz(config.New(), WithFinvizBaseURL(srv.URL))

	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	articles, err := f.News(context.Background(), "AAPL", Options{Start: start})
	if err != nil {
		t.Fatalf("News: %v", err)
	}
	if pages != 1 {
		t.Errorf("pages fetched = %d, want 1 (page tail older than cutoff)", pages)
	}
	for _, a := range articles {
		if a.Date.Before(start) {
			t.Errorf("article %s older than cutoff", a.URL)
		}
	}
	if len(articles) != 2 {
		t.Errorf("articles = %d, want 2", len(articles))
	}
}

func TestFinvizNoTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>nothing here</body></html>")
	}))
	t.Cleanup(srv.Close)
	f := NewFinviz(config.New(), WithFinvizBaseURL(srv.URL))

	_, err := f.News(context.Background(), "AAPL", Options{})
	if !fault.IsKind(err, fault.SourceSchemaChanged) {
		t.Fatalf("err = %v, want SourceSchemaChanged", err)
	}
}

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Markets</title>
<item>
  <title>Stocks rise</title>
  <description>Markets moved up.</description>
  <category>equities</category>
  <link>https://example.com/rss1</link>
  <pubDate>Fri, 05 Jan 2024 14:30:00 GMT</pubDate>
  <author>desk@example.com (Market Desk)</author>
</item>
<item>
  <title>Bonds fall</title>
  <link>https://example.com/rss2</link>
  <pubDate>Thu, 04 Jan 2024 10:00:00 GMT</pubDate>
</item>
</channel></rss>`

func TestRSSSection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleFeed)
	}))
	t.Cleanup(srv.Close)
	r := NewRSS(config.New(), WithFeed("markets", srv.URL))

	articles, err := r.Section(context.Background(), "markets", Options{})
	if err != nil {
		t.Fatalf("Section: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("articles = %d, want 2", len(articles))
	}
	// Oldest first.
	if articles[0].Title != "Bonds fall" {
		t.Errorf("first article = %q, want the older item", articles[0].Title)
	}
	a := articles[1]
	if a.Description != "Markets moved up." || a.Category != "equities" || a.Source != "markets" {
		t.Errorf("article = %+v", a)
	}
	if a.Date.IsZero() {
		t.Error("pubDate not parsed")
	}
}

func TestRSSUnknownSection(t *testing.T) {
	r := NewRSS(config.New())
	_, err := r.Section(context.Background(), "no-such-section", Options{})
	if !fault.IsKind(err, fault.InvalidInput) {
		t.Fatalf("err = %v, want InvalidInput", err)
	}
}
