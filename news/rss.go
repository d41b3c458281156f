package news

import (
	"context"
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/quantfetch/quantfetch/adapter"
	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/internal/fetch"
	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

const rssSource = "rss"

// defaultFeeds maps section keys onto their feed URLs. WithFeed extends or
// overrides the set.
var defaultFeeds = map[string]string{
	"markets":     "https://feeds.content.dowjones.io/public/rss/RSSMarketsMain",
	"economy":     "https://feeds.content.dowjones.io/public/rss/RSSEconomy",
	"technology":  "https://feeds.content.dowjones.io/public/rss/RSSWSJD",
	"world":       "https://feeds.content.dowjones.io/public/rss/RSSWorldNews",
	"commodities": "https://www.investing.com/rss/news_11.rss",
}

// RSS reads section feeds.
type RSS struct {
	client *fetch.Client
	feeds  map[string]string
	parser *gofeed.Parser
}

// RSSOption adjusts construction.
type RSSOption func(*RSS)

// WithFeed binds a section key to a feed URL.
func WithFeed(key, feedURL string) RSSOption {
	return func(r *RSS) { r.feeds[key] = feedURL }
}

// NewRSS creates a feed reader bound to the process identity.
func NewRSS(id config.Identity, opts ...RSSOption) *RSS {
	r := &RSS{
		client: fetch.NewClient(id),
		feeds:  make(map[string]string, len(defaultFeeds)),
		parser: gofeed.NewParser(),
	}
	for k, v := range defaultFeeds {
		r.feeds[k] = v
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func init() {
	adapter.Register(rssSource, func(id config.Identity) (adapter.Adapter, error) {
		return NewRSS(id), nil
	})
}

// Name implements adapter.Adapter.
func (r *RSS) Name() string { return rssSource }

// Close implements adapter.Adapter; the reader holds no resources.
func (r *RSS) Close(ctx context.Context) error { return nil }

// Sections lists the configured section keys, sorted.
func (r *RSS) Sections() []string {
	keys := make([]string, 0, len(r.feeds))
	for k := range r.feeds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Section reads one section feed. Unknown keys fail with InvalidInput; the
// recognized set is enumerated by Sections.
func (r *RSS) Section(ctx context.Context, key string, opts Options) ([]models.Article, error) {
	feedURL, ok := r.feeds[key]
	if !ok {
		return nil, fault.Newf(fault.InvalidInput, rssSource, "section",
			"unknown section %q, have %s", key, strings.Join(r.Sections(), ", "))
	}

	resp, err := r.client.Get(ctx, feedURL, fetch.Options{})
	if err != nil {
		return nil, err
	}
	feed, err := r.parser.ParseString(resp.Text())
	if err != nil {
		return nil, fault.Wrap(fault.Parse, rssSource, "section", err)
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.Article{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.Link,
			Source:      key,
		}
		if len(item.Categories) > 0 {
			a.Category = item.Categories[0]
		}
		for _, author := range item.Authors {
			if author != nil && author.Name != "" {
				a.Authors = append(a.Authors, author.Name)
			}
		}
		switch {
		case item.PublishedParsed != nil:
			a.Date = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			a.Date = item.UpdatedParsed.UTC()
		}
		articles = append(articles, a)
	}
	return ascending(articles, opts.Start), nil
}
