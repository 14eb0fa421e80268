// Package feed turns a journal's RSS or Atom feed into article records.
package feed

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/config"
	"github.com/matheuskafuri/folio/internal/logger"
	"github.com/mmcdole/gofeed"
)

type RSSFetcher struct {
	parser *gofeed.Parser
}

func NewRSSFetcher() *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser()}
}

func (f *RSSFetcher) Fetch(ctx context.Context, source config.Source) ([]catalog.Record, error) {
	feed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}
	records, skipped := f.records(feed)
	if skipped > 0 {
		logger.With("feed").Debug().
			Str("source", source.Name).
			Int("skipped", skipped).
			Msg("items without a date have no stable id")
	}
	return records, nil
}

// records maps feed items to articles. Ids are publish times in Unix
// seconds so that a higher id is always a newer post. Undated items are
// skipped and counted.
func (f *RSSFetcher) records(feed *gofeed.Feed) ([]catalog.Record, int) {
	records := make([]catalog.Record, 0, len(feed.Items))
	seen := map[int]bool{}
	skipped := 0
	for _, item := range feed.Items {
		var pub time.Time
		switch {
		case item.PublishedParsed != nil:
			pub = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			pub = *item.UpdatedParsed
		default:
			skipped++
			continue
		}

		id := int(pub.Unix())
		// Same-second posts: nudge forward until unique
		for seen[id] {
			id++
		}
		seen[id] = true

		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		r := catalog.Record{
			ID:      id,
			Kind:    catalog.Article,
			Slug:    slugFromLink(item.Link),
			Title:   strings.TrimSpace(item.Title),
			Summary: truncate(stripHTML(desc), 300),
			URL:     item.Link,
			Tags:    item.Categories,
			Date:    pub.UTC().Format(time.RFC3339),
		}
		if item.Image != nil {
			r.Image = item.Image.URL
		}
		records = append(records, r)
	}
	return records, skipped
}

func slugFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}
	base := path.Base(strings.TrimSuffix(u.Path, "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
