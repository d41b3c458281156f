// Package news reads market news: the Finviz quote-news table (paginated
// HTML) and RSS section feeds. Articles come back in ascending date order.
package news

import (
	"sort"
	"time"

	"github.com/quantfetch/quantfetch/pkg/models"
)

// Options bounds a news fetch.
type Options struct {
	// Start drops articles older than the cutoff and stops pagination once
	// a page is entirely older.
	Start time.Time
	// MaxPages caps pagination; 0 means the source decides (the walk stops
	// when the pager refuses to advance).
	MaxPages int
}

// ascending sorts articles oldest-first and drops those before the cutoff.
func ascending(articles []models.Article, start time.Time) []models.Article {
	out := articles[:0]
	for _, a := range articles {
		if !start.IsZero() && a.Date.Before(start) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
