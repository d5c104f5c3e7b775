package scholar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"github.com/deusflow/adtrends/internal/logger"
	"github.com/deusflow/adtrends/internal/metrics"
	"github.com/deusflow/adtrends/internal/news"
	"github.com/deusflow/adtrends/internal/ratelimit"
	"github.com/deusflow/adtrends/internal/retry"
)

const (
	SemanticScholarSource = "Semantic Scholar"
	semanticFields        = "title,authors,abstract,url,year,citationCount,publicationDate,externalIds"
)

var ErrRateLimited = errors.New("rate limited")

type SemanticScholarOptions struct {
	Endpoint    string
	Limit       int           // results per keyword
	MaxKeywords int           // only the first keywords are searched
	Lookback    time.Duration // publication window
	RetryDelay  time.Duration // wait before the single 429 retry
	Timeout     time.Duration
}

// SemanticScholar searches the Semantic Scholar Graph API.
type SemanticScholar struct {
	client  *http.Client
	opts    SemanticScholarOptions
	limiter *ratelimit.Limiter
	log     zerolog.Logger
}

func NewSemanticScholar(client *http.Client, opts SemanticScholarOptions, limiter *ratelimit.Limiter) *SemanticScholar {
	if client == nil {
		client = &http.Client{}
	}
	if limiter == nil {
		limiter = ratelimit.New(0, 0)
	}
	return &SemanticScholar{client: client, opts: opts, limiter: limiter, log: logger.Component("semantic_scholar")}
}

type semanticResponse struct {
	Data []semanticPaper `json:"data"`
}

type semanticPaper struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	Abstract        string `json:"abstract"`
	Year            int    `json:"year"`
	CitationCount   int    `json:"citationCount"`
	PublicationDate string `json:"publicationDate"`
	Authors         []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ExternalIDs map[string]any `json:"externalIds"`
}

// Search runs one query per keyword. A keyword whose request fails is
// skipped; titles are deduplicated across keywords.
func (s *SemanticScholar) Search(ctx context.Context, keywords []string, now time.Time) []news.Item {
	if s.opts.MaxKeywords > 0 && len(keywords) > s.opts.MaxKeywords {
		keywords = keywords[:s.opts.MaxKeywords]
	}
	cutoff := now.Add(-s.opts.Lookback).Format("2006-01-02")

	seen := make(map[string]struct{})
	var papers []news.Item
	for _, keyword := range keywords {
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}
		s.log.Info().Str("keyword", keyword).Msg("searching")

		resp, err := s.query(ctx, keyword, cutoff)
		if err != nil {
			metrics.SourceErrors.WithLabelValues(SemanticScholarSource).Inc()
			s.log.Warn().Err(err).Str("keyword", keyword).Msg("search failed, skipping keyword")
			continue
		}

		for _, p := range resp.Data {
			title := strings.TrimSpace(p.Title)
			key := news.DedupKey(title)
			if title == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			papers = append(papers, p.toItem(title, keyword))
		}
	}

	metrics.ItemsCollected.WithLabelValues(SemanticScholarSource, string(news.KindAcademic)).Add(float64(len(papers)))
	s.log.Info().Int("papers", len(papers)).Msg("search complete")
	return papers
}

func (s *SemanticScholar) query(ctx context.Context, keyword, cutoff string) (*semanticResponse, error) {
	params := url.Values{}
	params.Set("query", keyword)
	params.Set("fields", semanticFields)
	params.Set("limit", strconv.Itoa(s.opts.Limit))
	params.Set("publicationDateOrYear", cutoff+":")
	endpoint := s.opts.Endpoint + "?" + params.Encode()

	var out *semanticResponse
	err := retry.WithRetry(ctx, retry.RetryConfig{
		MaxAttempts: 2,
		Delay:       s.opts.RetryDelay,
		RetryIf:     func(err error) bool { return errors.Is(err, ErrRateLimited) },
	}, func() error {
		var err error
		out, err = s.get(ctx, endpoint)
		if errors.Is(err, ErrRateLimited) {
			s.log.Warn().Dur("wait", s.opts.RetryDelay).Msg("rate limited, retrying once")
		}
		return err
	})
	return out, err
}

func (s *SemanticScholar) get(ctx context.Context, endpoint string) (*semanticResponse, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("semantic scholar returned status: %d", resp.StatusCode)
	}

	var out semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func (p semanticPaper) toItem(title, keyword string) news.Item {
	link := p.URL
	if doi, _ := p.ExternalIDs["DOI"].(string); doi != "" && link == "" {
		link = "https://doi.org/" + doi
	}

	it := news.Item{
		Source:    SemanticScholarSource,
		Kind:      news.KindAcademic,
		Title:     title,
		URL:       link,
		Summary:   news.Truncate(p.Abstract, MaxAbstractChars),
		Authors:   joinAuthors(authorNames(p)),
		Year:      p.Year,
		Citations: p.CitationCount,
		Keyword:   keyword,
	}
	if p.PublicationDate != "" {
		if t, err := dateparse.ParseAny(p.PublicationDate); err == nil {
			naive := news.Naive(t)
			it.PublishedDate = &naive
		}
	}
	it.AssignID()
	return it
}

func authorNames(p semanticPaper) []string {
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		names = append(names, a.Name)
	}
	return names
}
