package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/adtrends/internal/config"
	"github.com/deusflow/adtrends/internal/news"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>Trade Feed</title>
  <item>
    <title>  Retail media budgets climb  </title>
    <link>https://example.com/retail</link>
    <description><![CDATA[<p>Brands <b>shift</b> spend to retail media &amp; commerce.</p>]]></description>
    <pubDate>Mon, 03 Mar 2025 09:00:00 +0900</pubDate>
    <dc:creator>Jane Doe</dc:creator>
  </item>
  <item>
    <title>Old news about print</title>
    <link>https://example.com/old</link>
    <pubDate>Mon, 03 Feb 2025 09:00:00 +0000</pubDate>
  </item>
  <item>
    <title></title>
    <link>https://example.com/untitled</link>
    <pubDate>Mon, 03 Mar 2025 09:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Undated CTV explainer</title>
    <link>https://example.com/ctv</link>
    <description>LONGSUMMARY</description>
  </item>
</channel>
</rss>`

func TestCollect(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path == "/broken" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(strings.Replace(feedXML, "LONGSUMMARY", strings.Repeat("x", 1500), 1)))
	}))
	defer srv.Close()

	c := NewCollector(srv.Client(), "test-agent", 5*time.Second, 7*24*time.Hour)
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)

	items := c.Collect(context.Background(), []config.Feed{
		{Name: "Broken", URL: srv.URL + "/broken"},
		{Name: "Trade", URL: srv.URL + "/feed"},
	}, now)

	require.Len(t, items, 2)
	assert.Equal(t, "test-agent", gotUA)

	first := items[0]
	assert.Equal(t, "Retail media budgets climb", first.Title)
	assert.Equal(t, "Trade", first.Source)
	assert.Equal(t, news.KindIndustry, first.Kind)
	assert.Equal(t, "https://example.com/retail", first.URL)
	assert.Equal(t, "Brands shift spend to retail media & commerce.", first.Summary)
	assert.Equal(t, "Jane Doe", first.Authors)
	assert.NotEmpty(t, first.ID)
	require.NotNil(t, first.PublishedDate)
	assert.Equal(t, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), *first.PublishedDate, "wall clock kept, zone dropped")

	undated := items[1]
	assert.Equal(t, "Undated CTV explainer", undated.Title)
	assert.Nil(t, undated.PublishedDate)
	assert.Len(t, undated.Summary, MaxSummaryChars)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", StripHTML("  plain text "))
	assert.Equal(t, "Hello world", StripHTML("<div>Hello <em>world</em></div>"))
}
