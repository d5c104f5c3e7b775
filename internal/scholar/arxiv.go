package scholar

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/deusflow/adtrends/internal/logger"
	"github.com/deusflow/adtrends/internal/metrics"
	"github.com/deusflow/adtrends/internal/news"
	"github.com/deusflow/adtrends/internal/ratelimit"
)

const (
	ArxivSource = "arXiv"

	// MaxAbstractChars caps stored paper abstracts.
	MaxAbstractChars = 1500
	maxAuthors       = 5
)

// Arxiv queries the arXiv Atom API.
type Arxiv struct {
	endpoint   string
	maxResults int
	timeout    time.Duration
	parser     *gofeed.Parser
	limiter    *ratelimit.Limiter
	log        zerolog.Logger
}

func NewArxiv(client *http.Client, endpoint string, maxResults int, timeout time.Duration, limiter *ratelimit.Limiter) *Arxiv {
	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}
	if limiter == nil {
		limiter = ratelimit.New(0, 0)
	}
	return &Arxiv{
		endpoint:   endpoint,
		maxResults: maxResults,
		timeout:    timeout,
		parser:     parser,
		limiter:    limiter,
		log:        logger.Component("arxiv"),
	}
}

// Search runs each query, newest submissions first. Titles are
// deduplicated across queries.
func (a *Arxiv) Search(ctx context.Context, queries []string) []news.Item {
	seen := make(map[string]struct{})
	var papers []news.Item

	for _, q := range queries {
		if err := a.limiter.Wait(ctx); err != nil {
			break
		}
		a.log.Info().Str("query", q).Msg("searching")

		feed, err := a.fetch(ctx, q)
		if err != nil {
			metrics.SourceErrors.WithLabelValues(ArxivSource).Inc()
			a.log.Warn().Err(err).Str("query", q).Msg("search failed, skipping query")
			continue
		}

		for _, entry := range feed.Items {
			title := strings.Join(strings.Fields(entry.Title), " ")
			key := news.DedupKey(title)
			if title == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			papers = append(papers, arxivItem(entry, title))
		}
	}

	metrics.ItemsCollected.WithLabelValues(ArxivSource, string(news.KindAcademic)).Add(float64(len(papers)))
	a.log.Info().Int("papers", len(papers)).Msg("search complete")
	return papers
}

func (a *Arxiv) fetch(ctx context.Context, query string) (*gofeed.Feed, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(a.maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.parser.ParseURLWithContext(a.endpoint+"?"+params.Encode(), ctx)
}

func arxivItem(entry *gofeed.Item, title string) news.Item {
	var names []string
	for _, p := range entry.Authors {
		if p != nil {
			names = append(names, p.Name)
		}
	}

	link := entry.GUID
	if link == "" {
		link = entry.Link
	}

	summary := entry.Description
	if summary == "" {
		summary = entry.Content
	}

	it := news.Item{
		Source:     ArxivSource,
		Kind:       news.KindAcademic,
		Title:      title,
		URL:        link,
		Summary:    news.Truncate(strings.TrimSpace(summary), MaxAbstractChars),
		Authors:    joinAuthors(names),
		Categories: entry.Categories,
	}
	if entry.PublishedParsed != nil {
		t := entry.PublishedParsed.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		it.PublishedDate = &day
	}
	it.AssignID()
	return it
}

func joinAuthors(names []string) string {
	if len(names) > maxAuthors {
		names = names[:maxAuthors]
	}
	return strings.Join(names, ", ")
}
