package news

// Caps bounds the selection.
type Caps struct {
	PerSource   int
	MaxArticles int
	MaxPapers   int
}

var DefaultCaps = Caps{PerSource: 3, MaxArticles: 12, MaxPapers: 8}

// Select picks the highest-scoring articles, at most caps.PerSource per
// source and caps.MaxArticles in total, and the top caps.MaxPapers papers.
// Inputs are expected to be deduplicated already.
func Select(articles, papers []Item, caps Caps) (topArticles, topPapers []Item) {
	perSource := make(map[string]int)
	for _, s := range Rank(articles) {
		if len(topArticles) >= caps.MaxArticles {
			break
		}
		src := s.Item.Source
		if src == "" {
			src = "unknown"
		}
		if perSource[src] >= caps.PerSource {
			continue
		}
		perSource[src]++
		topArticles = append(topArticles, s.Item)
	}

	for _, s := range Rank(papers) {
		if len(topPapers) >= caps.MaxPapers {
			break
		}
		topPapers = append(topPapers, s.Item)
	}
	return topArticles, topPapers
}
