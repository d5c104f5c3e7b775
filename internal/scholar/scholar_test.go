package scholar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/adtrends/internal/news"
)

const semanticBody = `{"total":3,"data":[
 {"paperId":"a","title":"Measuring Programmatic Advertising Effectiveness","url":"https://www.semanticscholar.org/paper/a",
  "abstract":"We measure.","year":2025,"citationCount":4,"publicationDate":"2025-02-20",
  "authors":[{"name":"A1"},{"name":"A2"},{"name":"A3"},{"name":"A4"},{"name":"A5"},{"name":"A6"}],
  "externalIds":{"DOI":"10.1/x","CorpusId":123}},
 {"paperId":"b","title":"Video Ads and Attention","url":"","abstract":null,"year":2025,"citationCount":0,
  "publicationDate":null,"authors":[],"externalIds":{"DOI":"10.2/y"}},
 {"paperId":"c","title":"","url":"https://x","abstract":"","authors":[],"externalIds":null}
]}`

func TestSemanticScholarSearch(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		queries = append(queries, q.Get("query"))
		assert.Equal(t, semanticFields, q.Get("fields"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "2025-02-03:", q.Get("publicationDateOrYear"))
		if q.Get("query") == "broken" {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(semanticBody))
	}))
	defer srv.Close()

	s := NewSemanticScholar(srv.Client(), SemanticScholarOptions{
		Endpoint: srv.URL, Limit: 10, MaxKeywords: 3, Lookback: 30 * 24 * time.Hour, Timeout: time.Second,
	}, nil)
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)

	papers := s.Search(context.Background(), []string{"programmatic advertising", "broken", "video advertising", "never searched"}, now)

	assert.Equal(t, []string{"programmatic advertising", "broken", "video advertising"}, queries)
	require.Len(t, papers, 2, "repeat titles from the second keyword are dropped")

	p := papers[0]
	assert.Equal(t, SemanticScholarSource, p.Source)
	assert.Equal(t, news.KindAcademic, p.Kind)
	assert.Equal(t, "https://www.semanticscholar.org/paper/a", p.URL)
	assert.Equal(t, "A1, A2, A3, A4, A5", p.Authors)
	assert.Equal(t, 2025, p.Year)
	assert.Equal(t, 4, p.Citations)
	assert.Equal(t, "programmatic advertising", p.Keyword)
	require.NotNil(t, p.PublishedDate)
	assert.Equal(t, "2025-02-20", p.PublishedDate.Format("2006-01-02"))

	assert.Equal(t, "https://doi.org/10.2/y", papers[1].URL, "DOI fills a missing url")
	assert.Nil(t, papers[1].PublishedDate)
}

func TestSemanticScholarRetriesOnceOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(semanticBody))
	}))
	defer srv.Close()

	s := NewSemanticScholar(srv.Client(), SemanticScholarOptions{
		Endpoint: srv.URL, Limit: 10, Lookback: time.Hour, RetryDelay: 10 * time.Millisecond,
	}, nil)

	papers := s.Search(context.Background(), []string{"ad tech"}, time.Now())

	assert.Len(t, papers, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSemanticScholarGivesUpAfterSecond429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewSemanticScholar(srv.Client(), SemanticScholarOptions{
		Endpoint: srv.URL, Limit: 10, Lookback: time.Hour, RetryDelay: time.Millisecond,
	}, nil)

	papers := s.Search(context.Background(), []string{"ad tech"}, time.Now())

	assert.Empty(t, papers)
	assert.Equal(t, int32(2), calls.Load())
}

const arxivFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query</title>
  <entry>
    <id>http://arxiv.org/abs/2503.00001v1</id>
    <published>2025-03-01T17:59:59Z</published>
    <updated>2025-03-01T17:59:59Z</updated>
    <title>Auction Design for
      Programmatic Advertising</title>
    <summary>  We study first-price auctions.  </summary>
    <author><name>Kim</name></author>
    <author><name>Lee</name></author>
    <link href="http://arxiv.org/abs/2503.00001v1" rel="alternate" type="text/html"/>
    <category term="cs.GT" scheme="http://arxiv.org/schemas/atom"/>
    <category term="econ.TH" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
</feed>`

func TestArxivSearch(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = append(got, q.Get("search_query"))
		assert.Equal(t, "10", q.Get("max_results"))
		assert.Equal(t, "submittedDate", q.Get("sortBy"))
		assert.Equal(t, "descending", q.Get("sortOrder"))
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(arxivFeed))
	}))
	defer srv.Close()

	a := NewArxiv(srv.Client(), srv.URL, 10, time.Second, nil)

	papers := a.Search(context.Background(), []string{"advertising media", "digital advertising"})

	assert.Equal(t, []string{"all:advertising media", "all:digital advertising"}, got)
	require.Len(t, papers, 1, "same paper from the second query is dropped")

	p := papers[0]
	assert.Equal(t, ArxivSource, p.Source)
	assert.Equal(t, "Auction Design for Programmatic Advertising", p.Title)
	assert.Equal(t, "http://arxiv.org/abs/2503.00001v1", p.URL)
	assert.Equal(t, "We study first-price auctions.", p.Summary)
	assert.Equal(t, "Kim, Lee", p.Authors)
	assert.Equal(t, []string{"cs.GT", "econ.TH"}, p.Categories)
	require.NotNil(t, p.PublishedDate)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *p.PublishedDate)
}

func TestCrossSourceDeduplication(t *testing.T) {
	ss := []news.Item{{Source: SemanticScholarSource, Kind: news.KindAcademic, Title: "Programmatic Advertising Auctions"}}
	ax := []news.Item{{Source: ArxivSource, Kind: news.KindAcademic, Title: "programmatic advertising auctions"}}

	merged := news.Deduplicate(append(ss, ax...))

	require.Len(t, merged, 1)
	assert.Equal(t, SemanticScholarSource, merged[0].Source)
}
