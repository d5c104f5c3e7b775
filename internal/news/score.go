package news

import (
	"sort"
	"strings"
)

// coreKeywords each add one point when present in title or summary.
var coreKeywords = []string{
	"advertising", "marketing", "media", "campaign", "brand",
	"consumer", "digital", "tech", "data", "platform",
	"content", "strategy", "research", "study", "analysis",
}

var aiKeywords = []string{"ai", "gpt", "generative"}

const (
	academicBonus = 3
	aiBonus       = 2
)

func searchText(it Item) string {
	return Lower(it.Title + " " + it.Summary)
}

// Score rates an item's relevance to the advertising/media digest.
// Keywords match as plain substrings, so short tokens like "ai" also hit
// inside longer words.
func Score(it Item) int {
	text := searchText(it)

	score := 0
	for _, kw := range coreKeywords {
		if strings.Contains(text, kw) {
			score++
		}
	}
	if it.IsAcademic() {
		score += academicBonus
	}
	if containsAny(text, aiKeywords) {
		score += aiBonus
	}
	return score
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Scored pairs an item with its relevance score.
type Scored struct {
	Item  Item
	Score int
}

// Rank scores items and sorts them by descending score. Equal scores keep
// their input order.
func Rank(items []Item) []Scored {
	out := make([]Scored, len(items))
	for i, it := range items {
		out[i] = Scored{Item: it, Score: Score(it)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
