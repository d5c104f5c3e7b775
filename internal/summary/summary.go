// Package summary condenses an item into a short translated digest entry by
// picking clean, complete sentences from the best available text.
package summary

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/deusflow/adtrends/internal/news"
	"github.com/deusflow/adtrends/internal/noise"
)

// Translator converts text to the report language. It never fails; on
// error it returns its input.
type Translator interface {
	Text(ctx context.Context, text string) string
}

type Options struct {
	FulltextMin    int // fulltext at least this long is the preferred source
	FulltextChars  int // how much fulltext is sent for translation
	SummaryMin     int // RSS summary at least this long is the second choice
	FallbackChars  int // fulltext appended to the title in the last resort
	MaxSentences   int
	SentenceMin    int
	ResultMin      int // shorter results fall back to the title notice
	SkipPrefixes   []string
	FallbackNotice string
}

func DefaultOptions() Options {
	return Options{
		FulltextMin:    300,
		FulltextChars:  1500,
		SummaryMin:     100,
		FallbackChars:  500,
		MaxSentences:   6,
		SentenceMin:    10,
		ResultMin:      50,
		SkipPrefixes:   []string{"202", "작성자:", "사진:", "이미지:"},
		FallbackNotice: ". (상세 내용 확인을 위해 원문을 참고하세요.)",
	}
}

// sentenceEnd matches whitespace, Unicode spaces included, that follows
// terminal punctuation.
var sentenceEnd = regexp.MustCompile(`[.?!][\s\p{Z}]+`)

var entities = strings.NewReplacer("&quot;", "'", "&#39;", "'")

type Summarizer struct {
	translator Translator
	noise      *noise.Filter
	opts       Options
}

func New(t Translator, nf *noise.Filter, opts Options) *Summarizer {
	if nf == nil {
		nf = noise.Default()
	}
	return &Summarizer{translator: t, noise: nf, opts: opts}
}

// Summarize returns up to MaxSentences translated sentences for it. The
// result is never empty when the item has a title.
func (s *Summarizer) Summarize(ctx context.Context, it news.Item, fulltext string) string {
	translated := s.translator.Text(ctx, s.sourceText(it, fulltext))

	translated = s.noise.CleanTranslated(translated)
	translated = strings.TrimSpace(entities.Replace(translated))

	picked := s.pickSentences(splitSentences(translated))
	result := strings.Join(picked, " ")

	if utf8.RuneCountInString(result) < s.opts.ResultMin {
		return s.translator.Text(ctx, it.Title) + s.opts.FallbackNotice
	}
	return result
}

func (s *Summarizer) sourceText(it news.Item, fulltext string) string {
	switch {
	case utf8.RuneCountInString(fulltext) >= s.opts.FulltextMin:
		return news.Truncate(fulltext, s.opts.FulltextChars)
	case utf8.RuneCountInString(it.Summary) >= s.opts.SummaryMin:
		return it.Summary
	case fulltext != "":
		return it.Title + ". " + news.Truncate(fulltext, s.opts.FallbackChars)
	default:
		return it.Title
	}
}

func (s *Summarizer) pickSentences(sentences []string) []string {
	seen := make(map[string]struct{})
	var picked []string
	for _, sent := range sentences {
		sent = strings.TrimSpace(sent)
		if utf8.RuneCountInString(sent) < s.opts.SentenceMin {
			continue
		}
		if _, dup := seen[sent]; dup {
			continue
		}
		if s.hasSkipPrefix(sent) {
			continue
		}
		seen[sent] = struct{}{}
		picked = append(picked, sent)
	}

	if len(picked) > s.opts.MaxSentences {
		picked = picked[:s.opts.MaxSentences]
	}
	if n := len(picked); n > 0 && !endsSentence(picked[n-1]) {
		picked = picked[:n-1]
	}
	return picked
}

func (s *Summarizer) hasSkipPrefix(sent string) bool {
	for _, p := range s.opts.SkipPrefixes {
		if strings.HasPrefix(sent, p) {
			return true
		}
	}
	return false
}

// splitSentences splits after '.', '?' or '!' when whitespace follows,
// keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		out = append(out, text[start:loc[0]+1])
		start = loc[1]
	}
	return append(out, text[start:])
}

func endsSentence(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!")
}
