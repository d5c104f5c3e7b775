package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/deusflow/adtrends/internal/logger"
	"github.com/deusflow/adtrends/internal/metrics"
	"github.com/deusflow/adtrends/internal/news"
)

// maxPageBytes bounds how much of a page is read.
const maxPageBytes = 5 << 20

// Fetcher downloads article pages and extracts their body text.
type Fetcher struct {
	client    *http.Client
	userAgent string
	extractor *Extractor
	log       zerolog.Logger
}

func NewFetcher(client *http.Client, userAgent string, timeout time.Duration, extractor *Extractor) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout > 0 {
		c := *client
		c.Timeout = timeout
		client = &c
	}
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
		extractor: extractor,
		log:       logger.Component("scraper"),
	}
}

// Fetch returns the cleaned body text of pageURL, or "" on any failure.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) string {
	if pageURL == "" {
		return ""
	}

	raw, err := f.download(ctx, pageURL)
	if err != nil {
		metrics.FulltextFetches.WithLabelValues("error").Inc()
		f.log.Debug().Err(err).Str("url", pageURL).Msg("fulltext fetch failed")
		return ""
	}

	text := f.extractor.ExtractHTML(raw, pageURL)
	if text == "" {
		metrics.FulltextFetches.WithLabelValues("empty").Inc()
	} else {
		metrics.FulltextFetches.WithLabelValues("ok").Inc()
	}
	return text
}

// Fulltext returns the body text for it. Papers use their abstract.
func (f *Fetcher) Fulltext(ctx context.Context, it news.Item) string {
	if it.IsAcademic() {
		return it.Summary
	}
	return f.Fetch(ctx, it.URL)
}

func (f *Fetcher) download(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return raw, nil
}
