package news

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind separates trade press from academic publications.
type Kind string

const (
	KindIndustry Kind = "industry"
	KindAcademic Kind = "academic"
)

// minDedupKeyLen drops near-empty titles during deduplication.
const minDedupKeyLen = 10

// Item is one collected article or paper.
type Item struct {
	ID            string     `json:"id"`
	Source        string     `json:"source"`
	Kind          Kind       `json:"type"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Summary       string     `json:"summary"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Authors       string     `json:"authors,omitempty"`
	Year          int        `json:"year,omitempty"`
	Citations     int        `json:"citations,omitempty"`
	Keyword       string     `json:"keyword,omitempty"`
	Categories    []string   `json:"categories,omitempty"`
}

// IsAcademic reports whether the item is a paper.
func (it Item) IsAcademic() bool {
	return it.Kind == KindAcademic
}

// AssignID sets a stable ID derived from source, URL and title.
func (it *Item) AssignID() {
	it.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(it.Source+"|"+it.URL+"|"+it.Title)).String()
}

// Naive strips the zone from t, keeping the wall-clock reading.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Lower lower-cases s with Unicode rules and no language tailoring.
// Casers are stateful, so each call gets its own.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// DedupKey normalizes a title for duplicate detection.
func DedupKey(title string) string {
	return strings.TrimSpace(Lower(title))
}

// Deduplicate keeps the first item per DedupKey and drops items whose key
// is shorter than 10 characters. Order is preserved.
func Deduplicate(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		key := DedupKey(it.Title)
		if utf8.RuneCountInString(key) < minDedupKeyLen {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}
