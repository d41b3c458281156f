package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/quantfetch/quantfetch/adapter"
	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/internal/fetch"
	"github.com/quantfetch/quantfetch/internal/parse"
	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

const finvizSource = "finviz"

// Finviz reads the quote-news table.
type Finviz struct {
	client  *fetch.Client
	baseURL string
}

// FinvizOption adjusts construction.
type FinvizOption func(*Finviz)

// WithFinvizBaseURL overrides the site origin; used by tests.
func WithFinvizBaseURL(u string) FinvizOption {
	return func(f *Finviz) { f.baseURL = strings.TrimRight(u, "/") }
}

// NewFinviz creates a Finviz news reader bound to the process identity.
func NewFinviz(id config.Identity, opts ...FinvizOption) *Finviz {
	f := &Finviz{
		client:  fetch.NewClient(id),
		baseURL: "https://finviz.com",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func init() {
	adapter.Register(finvizSource, func(id config.Identity) (adapter.Adapter, error) {
		return NewFinviz(id), nil
	})
}

// Name implements adapter.Adapter.
func (f *Finviz) Name() string { return finvizSource }

// Close implements adapter.Adapter; the reader holds no resources.
func (f *Finviz) Close(ctx context.Context) error { return nil }

// News walks the quote-news table page by page. The walk stops when a page
// falls entirely before opts.Start, when the pager refuses to advance (the
// page repeats), or at opts.MaxPages.
func (f *Finviz) News(ctx context.Context, ticker string, opts Options) ([]models.Article, error) {
	if ticker == "" {
		return nil, fault.New(fault.InvalidInput, finvizSource, "news", "empty ticker")
	}

	var all []models.Article
	var prevFirstURL string
	for pageNum := 1; opts.MaxPages == 0 || pageNum <= opts.MaxPages; pageNum++ {
		u := fmt.Sprintf("%s/quote.ashx?t=%s&p=%d", f.baseURL, url.QueryEscape(ticker), pageNum)
		resp, err := f.client.Get(ctx, u, fetch.Options{})
		if err != nil {
			if fault.IsKind(err, fault.Upstream4xx) && pageNum == 1 {
				return nil, fault.Newf(fault.NotFound, finvizSource, "news", "no quote page for %s", ticker)
			}
			if pageNum > 1 {
				break // pager exhausted
			}
			return nil, err
		}

		articles, err := parseNewsTable(resp.Text())
		if err != nil {
			return nil, err
		}
		if len(articles) == 0 {
			break
		}
		// A repeating first article means the pager refused to advance.
		if articles[0].URL == prevFirstURL {
			break
		}
		prevFirstURL = articles[0].URL
		all = append(all, articles...)

		if !opts.Start.IsZero() && articles[len(articles)-1].Date.Before(opts.Start) {
			break
		}
	}
	return ascending(all, opts.Start), nil
}

// parseNewsTable reads the news table rows: a date/time cell followed by a
// link cell with the publisher in a trailing span. Rows carry the date only
// on the first entry of each day; time-only rows inherit it.
func parseNewsTable(html string) ([]models.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fault.Wrap(fault.Parse, finvizSource, "news", err)
	}

	table := doc.Find("table#news-table")
	if table.Length() == 0 {
		return nil, fault.New(fault.SourceSchemaChanged, finvizSource, "news",
			"quote page carries no news table")
	}

	var articles []models.Article
	var lastDate time.Time
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		link := cells.Eq(1).Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		when := parse.CoerceDate(cells.Eq(0).Text())
		if when.IsZero() {
			return
		}
		tok := strings.TrimSpace(cells.Eq(0).Text())
		if isTimeOnly(tok) && !lastDate.IsZero() {
			when = time.Date(lastDate.Year(), lastDate.Month(), lastDate.Day(),
				when.Hour(), when.Minute(), 0, 0, time.UTC)
		} else {
			lastDate = when
		}

		articles = append(articles, models.Article{
			Title:  strings.TrimSpace(link.Text()),
			Date:   when,
			URL:    href,
			Source: strings.TrimSpace(cells.Eq(1).Find("span").First().Text()),
		})
	})
	return articles, nil
}

// isTimeOnly reports whether the token is a bare clock reading like
// "09:30AM".
func isTimeOnly(tok string) bool {
	_, err := time.Parse("03:04PM", strings.TrimSpace(tok))
	return err == nil
}
