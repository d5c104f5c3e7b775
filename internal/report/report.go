package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deusflow/adtrends/internal/news"
)

const (
	timeLayout      = "2006-01-02 15:04"
	academicDefault = "Academic Source"
)

// Translator renders item titles in the report language.
type Translator interface {
	Text(ctx context.Context, text string) string
}

// Entry is one selected item with its generated summary and category.
type Entry struct {
	Item     news.Item
	Summary  string
	Category news.Category
}

// Input is everything Build needs. Entries hold the selected articles
// followed by the selected papers.
type Input struct {
	Entries []Entry
	Titles  Translator
	Now     time.Time
}

type group struct {
	category news.Category
	entries  []Entry
}

// Build renders the Markdown report.
func Build(ctx context.Context, in Input) string {
	now := in.Now.Format(timeLayout)
	title := func(it news.Item) string {
		if in.Titles == nil {
			return it.Title
		}
		return in.Titles.Text(ctx, it.Title)
	}

	groups := groupByCategory(in.Entries)
	var papers []Entry
	for _, e := range in.Entries {
		if e.Item.IsAcademic() {
			papers = append(papers, e)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `# 📢 주간 광고/미디어 심층 리포트

> **발행일**: %s
> **주요 내용**: 업계 최신 뉴스 및 **핵심 학술 연구** 분석

---

## 💡 이번 주 핵심 요약 (Executive Summary)

`, now)

	for _, g := range groups {
		if g.category.Key == news.CategoryAI {
			top := g.entries[0]
			fmt.Fprintf(&b, "### 🤖 AI 트렌드: %s\n%s\n\n", title(top.Item), top.Summary)
			break
		}
	}
	if len(papers) > 0 {
		top := papers[0]
		fmt.Fprintf(&b, "### 📚 주목할 연구: %s\n%s\n\n", title(top.Item), top.Summary)
	}
	b.WriteString("---\n\n")

	b.WriteString("## 📰 업계 주요 트렌드 (Industry News)\n\n")
	for _, g := range groups {
		var industry []Entry
		for _, e := range g.entries {
			if !e.Item.IsAcademic() {
				industry = append(industry, e)
			}
		}
		if len(industry) == 0 {
			continue
		}

		fmt.Fprintf(&b, "### %s %s\n\n", g.category.Emoji, g.category.Title)
		for _, e := range industry {
			fmt.Fprintf(&b, "**%s**\n*(%s)*\n\n%s\n\n", title(e.Item), e.Item.Source, e.Summary)
			if e.Item.URL != "" {
				fmt.Fprintf(&b, "[🔗 기사 원문](%s)\n\n", e.Item.URL)
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("---\n\n")

	b.WriteString("## 📚 최신 학술 연구 및 이론 (Research & Theory)\n\n")
	if len(papers) == 0 {
		b.WriteString("> *이번 주 수집된 주요 학술 논문이 없습니다.*\n\n")
	}
	for _, e := range papers {
		source := e.Item.Source
		if source == "" {
			source = academicDefault
		}
		fmt.Fprintf(&b, "### %s\n*출처: %s*\n\n", title(e.Item), source)
		if e.Summary != "" {
			fmt.Fprintf(&b, "%s\n\n", e.Summary)
		}
		if e.Item.URL != "" {
			fmt.Fprintf(&b, "[👉 논문/URL 확인](%s)\n\n", e.Item.URL)
		}
		b.WriteString("---\n\n")
	}

	fmt.Fprintf(&b, `---
> **[안내]** 본 보고서는 자동화된 시스템에 의해 수집 및 요약되었습니다. 상세한 내용은 반드시 원문을 참고하시기 바랍니다.
> 생성 시간: %s
`, now)
	return b.String()
}

// groupByCategory buckets entries by category, papers included. The AI
// bucket comes first, the rest by size; equal sizes keep the order in
// which the category first appeared.
func groupByCategory(entries []Entry) []group {
	index := make(map[string]int)
	var groups []group
	for _, e := range entries {
		i, ok := index[e.Category.Key]
		if !ok {
			i = len(groups)
			index[e.Category.Key] = i
			groups = append(groups, group{category: e.Category})
		}
		groups[i].entries = append(groups[i].entries, e)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		ai, aj := groups[i].category.Key == news.CategoryAI, groups[j].category.Key == news.CategoryAI
		if ai != aj {
			return ai
		}
		return len(groups[i].entries) > len(groups[j].entries)
	})
	return groups
}
