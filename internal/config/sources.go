package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/adtrends/internal/noise"
)

// Feed is a named RSS source.
type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Sources is the YAML file structure
//
//	feeds:
//	  - name: Digiday
//	    url: https://digiday.com/feed/
//	search_keywords: [...]
//	arxiv_queries: [...]
//	noise:
//	  patterns: [...]
type Sources struct {
	Feeds          []Feed       `yaml:"feeds"`
	SearchKeywords []string     `yaml:"search_keywords"`
	ArxivQueries   []string     `yaml:"arxiv_queries"`
	Noise          noise.Config `yaml:"noise"`
}

// DefaultSources returns the built-in source lists.
func DefaultSources() *Sources {
	return &Sources{
		Feeds: []Feed{
			{Name: "AdAge", URL: "https://adage.com/arc/outboundfeeds/rss/"},
			{Name: "Adweek", URL: "https://www.adweek.com/feed/"},
			{Name: "The Drum", URL: "https://www.thedrum.com/search?refinementList%5Bcontent_type%5D%5B0%5D=article&query=marketing&format=rss"},
			{Name: "Marketing Dive", URL: "https://www.marketingdive.com/feeds/news/"},
			{Name: "Digiday", URL: "https://digiday.com/feed/"},
			{Name: "MediaPost", URL: "https://www.mediapost.com/rss/MediapostMediaDailyNews/"},
			{Name: "매드타임스", URL: "http://www.madtimes.org/rss/allArticle.xml"},
			{Name: "모비인사이드", URL: "https://mobiinside.co.kr/feed/"},
			{Name: "블로터", URL: "https://www.bloter.net/rss/allArticle.xml"},
			{Name: "아주경제(광고)", URL: "https://www.ajunews.com/rss/040106"},
		},
		SearchKeywords: []string{
			"advertising media effectiveness",
			"digital advertising technology",
			"programmatic advertising",
			"social media advertising",
			"video advertising",
			"mobile advertising",
			"advertising measurement",
			"media planning optimization",
			"brand advertising strategy",
			"ad tech innovation",
		},
		ArxivQueries: []string{
			"advertising media",
			"digital advertising",
			"ad technology",
			"programmatic advertising",
			"social media marketing",
		},
		Noise: noise.DefaultConfig(),
	}
}

// LoadSources reads the YAML sources file. A missing file yields the
// defaults; sections absent from the file keep their defaults.
func LoadSources(path string) (*Sources, error) {
	src := DefaultSources()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return src, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var file Sources
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}

	if len(file.Feeds) > 0 {
		src.Feeds = file.Feeds
	}
	if len(file.SearchKeywords) > 0 {
		src.SearchKeywords = file.SearchKeywords
	}
	if len(file.ArxivQueries) > 0 {
		src.ArxivQueries = file.ArxivQueries
	}
	if len(file.Noise.Patterns) > 0 {
		src.Noise.Patterns = file.Noise.Patterns
	}
	if len(file.Noise.Phrases) > 0 {
		src.Noise.Phrases = file.Noise.Phrases
	}
	if len(file.Noise.LineSubstrings) > 0 {
		src.Noise.LineSubstrings = file.Noise.LineSubstrings
	}

	for i, f := range src.Feeds {
		if f.Name == "" || f.URL == "" {
			return nil, fmt.Errorf("feed #%d in %s needs both name and url", i+1, path)
		}
	}
	return src, nil
}
