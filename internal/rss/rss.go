package rss

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/deusflow/adtrends/internal/config"
	"github.com/deusflow/adtrends/internal/logger"
	"github.com/deusflow/adtrends/internal/metrics"
	"github.com/deusflow/adtrends/internal/news"
)

// MaxSummaryChars caps the stored feed summary.
const MaxSummaryChars = 1000

// Collector downloads trade press feeds.
type Collector struct {
	parser   *gofeed.Parser
	lookback time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

func NewCollector(client *http.Client, userAgent string, timeout, lookback time.Duration) *Collector {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	if client != nil {
		parser.Client = client
	}
	return &Collector{
		parser:   parser,
		lookback: lookback,
		timeout:  timeout,
		log:      logger.Component("rss"),
	}
}

// Collect reads every feed in order. A broken feed is logged and skipped.
func (c *Collector) Collect(ctx context.Context, feeds []config.Feed, now time.Time) []news.Item {
	cutoff := news.Naive(now).Add(-c.lookback)
	var items []news.Item
	successCount := 0

	for _, feed := range feeds {
		parsed, err := c.fetch(ctx, feed.URL)
		if err != nil {
			metrics.SourceErrors.WithLabelValues(feed.Name).Inc()
			c.log.Warn().Err(err).Str("source", feed.Name).Msg("⚠️ error parsing RSS")
			continue
		}

		count := 0
		for _, entry := range parsed.Items {
			it, ok := toItem(feed.Name, entry, cutoff)
			if !ok {
				continue
			}
			items = append(items, it)
			count++
		}
		successCount++
		metrics.ItemsCollected.WithLabelValues(feed.Name, string(news.KindIndustry)).Add(float64(count))
		c.log.Info().Str("source", feed.Name).Int("items", count).Msg("loaded feed")
	}

	c.log.Info().Int("ok", successCount).Int("feeds", len(feeds)).Int("items", len(items)).Msg("processed RSS feeds")
	return items
}

func (c *Collector) fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.parser.ParseURLWithContext(url, ctx)
}

func toItem(source string, entry *gofeed.Item, cutoff time.Time) (news.Item, bool) {
	published := entryDate(entry)
	if published != nil && published.Before(cutoff) {
		return news.Item{}, false
	}

	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return news.Item{}, false
	}

	summary := entry.Description
	if summary == "" {
		summary = entry.Content
	}

	it := news.Item{
		Source:        source,
		Kind:          news.KindIndustry,
		Title:         title,
		URL:           strings.TrimSpace(entry.Link),
		Summary:       news.Truncate(StripHTML(summary), MaxSummaryChars),
		PublishedDate: published,
		Authors:       entryAuthor(entry),
	}
	it.AssignID()
	return it, true
}

// entryDate tries the published then the updated date, returning it
// without zone information.
func entryDate(entry *gofeed.Item) *time.Time {
	candidates := []struct {
		parsed *time.Time
		raw    string
	}{
		{entry.PublishedParsed, entry.Published},
		{entry.UpdatedParsed, entry.Updated},
	}
	for _, c := range candidates {
		if c.parsed != nil {
			t := news.Naive(*c.parsed)
			return &t
		}
		if c.raw == "" {
			continue
		}
		if parsed, err := dateparse.ParseAny(c.raw); err == nil {
			t := news.Naive(parsed)
			return &t
		}
	}
	return nil
}

func entryAuthor(entry *gofeed.Item) string {
	if entry.Author != nil {
		return entry.Author.Name
	}
	if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		return entry.Authors[0].Name
	}
	return ""
}

// StripHTML returns the text content of an HTML fragment.
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
