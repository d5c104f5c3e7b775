package news

import "strings"

// Category is a topical bucket for the industry section of the report.
type Category struct {
	Key      string
	Title    string
	Emoji    string
	Keywords []string
	Weight   float64
}

const (
	CategoryAI    = "ai_automation"
	CategoryOther = "other"
)

// Categories are evaluated in declaration order; earlier entries win ties.
var Categories = []Category{
	{
		Key: CategoryAI, Title: "AI 및 자동화 기술", Emoji: "🤖", Weight: 1.5,
		Keywords: []string{"ai", "artificial intelligence", "machine learning", "automation", "generative", "chatgpt", "llm"},
	},
	{
		Key: "programmatic_adtech", Title: "프로그래매틱 & 애드테크", Emoji: "⚙️", Weight: 1,
		Keywords: []string{"programmatic", "ad tech", "adtech", "rtb", "real-time bidding", "dsp", "ssp"},
	},
	{
		Key: "social_media", Title: "소셜미디어 & 플랫폼", Emoji: "📱", Weight: 1,
		Keywords: []string{"social media", "instagram", "tiktok", "facebook", "meta", "youtube", "influencer", "creator"},
	},
	{
		Key: "video_ctv", Title: "동영상/CTV/OTT", Emoji: "🎬", Weight: 1,
		Keywords: []string{"video", "ctv", "connected tv", "streaming", "ott", "youtube"},
	},
	{
		Key: "mobile", Title: "모바일 & 앱 마케팅", Emoji: "📲", Weight: 1,
		Keywords: []string{"mobile", "app", "in-app", "smartphone"},
	},
	{
		Key: "data_privacy", Title: "데이터 & 프라이버시", Emoji: "🔒", Weight: 1,
		Keywords: []string{"data", "privacy", "cookie", "cookieless", "first-party", "gdpr", "consent"},
	},
	{
		Key: "brand_creative", Title: "브랜드 & 크리에이티브", Emoji: "🎨", Weight: 1,
		Keywords: []string{"brand", "creative", "campaign", "storytelling", "content marketing"},
	},
	{
		Key: "measurement", Title: "효과 측정 & 분석", Emoji: "📊", Weight: 1,
		Keywords: []string{"measurement", "roi", "attribution", "effectiveness", "kpi", "analytics"},
	},
	{
		Key: "retail_media", Title: "리테일 미디어", Emoji: "🛒", Weight: 1,
		Keywords: []string{"retail media", "commerce media", "amazon ads", "walmart"},
	},
}

var otherCategory = Category{Key: CategoryOther, Title: "기타", Emoji: "🔹"}

// Categorize assigns the best-matching category. Items with no keyword hit
// are "other".
func Categorize(it Item) Category {
	text := searchText(it)

	best := otherCategory
	bestScore := 0.0
	for _, c := range Categories {
		hits := 0
		for _, kw := range c.Keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		score := float64(hits) * c.Weight
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}
