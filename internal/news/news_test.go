package news

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "the state of retail media", DedupKey("  The State of Retail Media "))
	assert.Equal(t, DedupKey("CTV Ad Spend Surges"), DedupKey("ctv ad spend surges  "))
	assert.Equal(t, "straße der werbung 2025", DedupKey("Straße der Werbung 2025"))
	assert.Equal(t, "überblick media", DedupKey("ÜBERBLICK Media"))
}

func TestDeduplicateKeepsTitlesThatDifferAfterLowerCasing(t *testing.T) {
	got := Deduplicate([]Item{{Title: "Straße der Werbung 2025"}, {Title: "STRASSE DER WERBUNG 2025"}})
	assert.Len(t, got, 2)
}

func TestDeduplicate(t *testing.T) {
	items := []Item{
		{Source: "Semantic Scholar", Title: "Programmatic Advertising Auctions Revisited"},
		{Source: "arXiv", Title: "programmatic advertising auctions revisited "},
		{Source: "Adweek", Title: "Short"},
		{Source: "Adweek", Title: "   "},
		{Source: "Digiday", Title: "Retail media networks mature"},
	}

	got := Deduplicate(items)

	require.Len(t, got, 2)
	assert.Equal(t, "Semantic Scholar", got[0].Source, "first occurrence wins")
	assert.Equal(t, "Digiday", got[1].Source)
}

func TestDeduplicateCountsCharactersNotBytes(t *testing.T) {
	// nine Hangul syllables: 27 bytes, but under the 10 character floor
	got := Deduplicate([]Item{{Title: "광고시장동향분석보"}, {Title: "광고시장동향분석보고"}})
	require.Len(t, got, 1)
	assert.Equal(t, "광고시장동향분석보고", got[0].Title)
}

func TestAssignIDIsStable(t *testing.T) {
	a := Item{Source: "Digiday", URL: "https://digiday.com/x", Title: "Same title"}
	b := a
	c := Item{Source: "Adweek", URL: "https://adweek.com/x", Title: "Same title"}
	a.AssignID()
	b.AssignID()
	c.AssignID()

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID, "same title from another source gets its own id")
}

func TestNaiveKeepsWallClock(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	got := Naive(time.Date(2025, 3, 1, 9, 30, 0, 0, kst))
	assert.Equal(t, time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC), got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "광고", Truncate("광고시장", 2))
	assert.Equal(t, "abc", Truncate("abc", 10))
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want int
	}{
		{
			name: "brand and data with ai",
			item: Item{Kind: KindIndustry, Title: "Brands race to adopt AI in 2025", Summary: "programmatic data attribution"},
			want: 4,
		},
		{
			name: "academic bonus",
			item: Item{Kind: KindAcademic, Title: "A study of consumer response", Summary: ""},
			want: 2 + academicBonus,
		},
		{
			name: "nothing relevant",
			item: Item{Kind: KindIndustry, Title: "Weekend weather outlook"},
			want: 0,
		},
		{
			name: "substring ai match inside a word",
			item: Item{Kind: KindIndustry, Title: "Retail wins"},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.item))
		})
	}
}

func TestRankIsStable(t *testing.T) {
	items := []Item{
		{Title: "first zero"},
		{Title: "marketing one"},
		{Title: "second zero"},
	}

	got := Rank(items)

	require.Len(t, got, 3)
	assert.Equal(t, "marketing one", got[0].Item.Title)
	assert.Equal(t, "first zero", got[1].Item.Title)
	assert.Equal(t, "second zero", got[2].Item.Title)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"ai wins", "generative ai chatgpt", CategoryAI},
		{"no hits", "Quarterly earnings call", CategoryOther},
		{"retail media", "Walmart expands retail media network", "retail_media"},
		// one hit each: programmatic and data tie, declaration order wins
		{"tie keeps order", "programmatic data", "programmatic_adtech"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(Item{Title: tt.title}).Key)
		})
	}
}

func TestSelectCaps(t *testing.T) {
	var articles []Item
	for s := 0; s < 6; s++ {
		for i := 0; i < 5; i++ {
			articles = append(articles, Item{
				Source: fmt.Sprintf("source-%d", s),
				Kind:   KindIndustry,
				Title:  fmt.Sprintf("marketing story %d-%d", s, i),
			})
		}
	}
	var papers []Item
	for i := 0; i < 11; i++ {
		papers = append(papers, Item{Kind: KindAcademic, Title: fmt.Sprintf("paper number %d", i)})
	}

	top, topPapers := Select(articles, papers, DefaultCaps)

	assert.Len(t, top, 12)
	assert.Len(t, topPapers, 8)
	counts := map[string]int{}
	for _, a := range top {
		counts[a.Source]++
	}
	for src, n := range counts {
		assert.LessOrEqual(t, n, 3, src)
	}
}

func TestSelectPerSourceRoundTrip(t *testing.T) {
	// A outranks B; B items are ordered by descending score
	mk := func(src string, hits int) Item {
		kws := coreKeywords[:hits]
		title := ""
		for _, k := range kws {
			title += k + " "
		}
		return Item{Source: src, Kind: KindIndustry, Title: title}
	}
	articles := []Item{
		mk("A", 10), mk("A", 9), mk("A", 8), mk("A", 7), mk("A", 6),
		mk("B", 5), mk("B", 4), mk("B", 3),
	}

	top, _ := Select(articles, nil, Caps{PerSource: 3, MaxArticles: 5, MaxPapers: 8})

	require.Len(t, top, 5)
	for i := 0; i < 3; i++ {
		assert.Equal(t, "A", top[i].Source)
	}
	assert.Equal(t, articles[5].Title, top[3].Title)
	assert.Equal(t, articles[6].Title, top[4].Title)
}
