// Package noise removes boilerplate (subscription prompts, event promos,
// copyright notices) from extracted article text and from translated
// summaries.
package noise

import (
	"fmt"
	"regexp"
	"strings"
)

// Config lists the pattern sets a Filter is built from. Zero-valued fields
// fall back to the defaults.
type Config struct {
	// Patterns are case-insensitive regular expressions applied to source
	// language text, in order.
	Patterns []string `yaml:"patterns"`
	// Phrases are literal strings removed from translated text, in order.
	Phrases []string `yaml:"phrases"`
	// LineSubstrings mark a whole extracted line as promotional.
	LineSubstrings []string `yaml:"line_substrings"`
}

var defaultPatterns = []string{
	`subscribe.*?newsletter`,
	`sign up for.*?email`,
	`get your.*?ticket`,
	`secure your spot.*?summit`,
	`digiday media buying summit.*?\.`,
	`subscribe to continue reading`,
	`subscription only`,
	`become a member`,
	`already a subscriber`,
	`read more about.*?membership`,
	`all rights reserved`,
	`copyright \d{4}`,
	`advertisement`,
	`follow us on`,
	`answers to common questions brands might have about the nation.*?s semiquincentennial`,
	`play them all`,
	`future of marketing briefing`,
	`latest marketing briefing`,
}

var defaultPhrases = []string{
	"구독 전용",
	"뉴스레터 신청",
	"자리를 확보하세요",
	"국가의 500주년에 대해 가질 수 있는 일반적인 질문에 대한 답변입니다",
	"모두 재생해 보세요",
	"Digiday Media Buying Summit",
}

var defaultLineSubstrings = []string{
	"digiday media buying summit",
	"answers to common questions brands might have",
}

// DefaultConfig returns a copy of the built-in pattern sets.
func DefaultConfig() Config {
	return Config{
		Patterns:       append([]string(nil), defaultPatterns...),
		Phrases:        append([]string(nil), defaultPhrases...),
		LineSubstrings: append([]string(nil), defaultLineSubstrings...),
	}
}

// Filter is immutable after construction and safe for concurrent use.
type Filter struct {
	patterns       []*regexp.Regexp
	phrases        []string
	lineSubstrings []string
}

// New compiles cfg. Empty sections use the defaults.
func New(cfg Config) (*Filter, error) {
	def := DefaultConfig()
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = def.Patterns
	}
	if len(cfg.Phrases) == 0 {
		cfg.Phrases = def.Phrases
	}
	if len(cfg.LineSubstrings) == 0 {
		cfg.LineSubstrings = def.LineSubstrings
	}

	f := &Filter{phrases: cfg.Phrases}
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("compile noise pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	for _, s := range cfg.LineSubstrings {
		f.lineSubstrings = append(f.lineSubstrings, strings.ToLower(s))
	}
	return f, nil
}

// Default returns a Filter built from the default pattern sets.
func Default() *Filter {
	f, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return f
}

// Clean removes every pattern match from text, in declared order. Passes
// repeat until nothing changes, so a removal cannot leave behind a match
// for an earlier pattern.
func (f *Filter) Clean(text string) string {
	for {
		prev := text
		for _, re := range f.patterns {
			text = re.ReplaceAllString(text, "")
		}
		if text == prev {
			return text
		}
	}
}

// CleanTranslated removes the literal phrases from translated text.
func (f *Filter) CleanTranslated(text string) string {
	for _, p := range f.phrases {
		text = strings.ReplaceAll(text, p, "")
	}
	return text
}

// IsNoiseLine reports whether line contains a promotional substring.
func (f *Filter) IsNoiseLine(line string) bool {
	lower := strings.ToLower(line)
	for _, s := range f.lineSubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
