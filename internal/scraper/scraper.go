package scraper

import (
	"bytes"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/deusflow/adtrends/internal/noise"
)

// Options tunes the extraction cascade.
type Options struct {
	MinLength    int // a strategy result shorter than this falls through
	MaxLength    int // hard cap on returned text
	ParagraphMin int // paragraph sweep keeps <p> longer than this
	LineMin      int // final line filter drops shorter lines
	StripTags    []string
	Selectors    []string
	SkipPrefixes []string
}

func DefaultOptions() Options {
	return Options{
		MinLength:    500,
		MaxLength:    4000,
		ParagraphMin: 40,
		LineMin:      30,
		StripTags: []string{
			"script", "style", "nav", "footer", "header",
			"aside", "iframe", "noscript", "form", "svg", "button",
		},
		Selectors: []string{
			".article-content", ".post-content", ".entry-content",
			".story-body", ".article-body", ".content-body",
			`[itemprop="articleBody"]`, ".article__body",
			"#article-body", ".node-body", ".wysiwyg",
		},
		SkipPrefixes: []string{"author:", "by:", "written by:", "published:", "source:"},
	}
}

// Strategy pulls candidate body text from a cleaned document.
type Strategy func(doc *goquery.Document) string

// Extractor turns article HTML into cleaned body text.
type Extractor struct {
	opts       Options
	noise      *noise.Filter
	strategies []Strategy
}

func NewExtractor(opts Options, nf *noise.Filter) *Extractor {
	if nf == nil {
		nf = noise.Default()
	}
	e := &Extractor{opts: opts, noise: nf}
	e.strategies = []Strategy{e.articleText, e.selectorText}
	return e
}

// Extract runs the cascade on doc. The document is modified: boilerplate
// elements are removed first.
func (e *Extractor) Extract(doc *goquery.Document) string {
	return e.clean(e.body(doc))
}

// ExtractHTML parses raw and runs the cascade. When every strategy comes up
// empty, a readability pass over the raw page is tried.
func (e *Extractor) ExtractHTML(raw []byte, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	body := e.body(doc)
	if strings.TrimSpace(body) == "" {
		body = readabilityText(raw, pageURL)
	}
	return e.clean(body)
}

func (e *Extractor) body(doc *goquery.Document) string {
	doc.Find(strings.Join(e.opts.StripTags, ", ")).Remove()

	for _, s := range e.strategies {
		if text := s(doc); utf8.RuneCountInString(text) >= e.opts.MinLength {
			return text
		}
	}
	return e.paragraphText(doc)
}

// articleText reads the first <article> element.
func (e *Extractor) articleText(doc *goquery.Document) string {
	sel := doc.Find("article").First()
	if sel.Length() == 0 {
		return ""
	}
	return blockText(sel)
}

// selectorText tries the known body containers in order and returns the
// first one that reaches MinLength.
func (e *Extractor) selectorText(doc *goquery.Document) string {
	for _, selector := range e.opts.Selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := blockText(sel); utf8.RuneCountInString(text) >= e.opts.MinLength {
			return text
		}
	}
	return ""
}

// paragraphText joins every sufficiently long paragraph.
func (e *Extractor) paragraphText(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(text) > e.opts.ParagraphMin {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n")
}

// clean applies the noise patterns, filters lines and caps the length.
func (e *Extractor) clean(text string) string {
	text = e.noise.Clean(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) < e.opts.LineMin {
			continue
		}
		if e.hasSkipPrefix(line) || e.noise.IsNoiseLine(line) {
			continue
		}
		lines = append(lines, line)
	}

	out := strings.Join(lines, "\n\n")
	if utf8.RuneCountInString(out) > e.opts.MaxLength {
		out = string([]rune(out)[:e.opts.MaxLength])
	}
	return out
}

func (e *Extractor) hasSkipPrefix(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range e.opts.SkipPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// blockText collects the trimmed text nodes under sel, one per line.
func blockText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				if t := strings.TrimSpace(c.Text()); t != "" {
					parts = append(parts, t)
				}
				return
			}
			walk(c)
		})
	}
	walk(sel)
	return strings.Join(parts, "\n")
}

func readabilityText(raw []byte, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(raw), u)
	if err != nil {
		return ""
	}
	return article.TextContent
}
