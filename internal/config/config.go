package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	// Paths
	DataDir     string `env:"DATA_DIR" envDefault:"data"`
	ReportsDir  string `env:"REPORTS_DIR" envDefault:"reports"`
	SourcesPath string `env:"SOURCES_CONFIG_PATH" envDefault:"configs/sources.yaml"`

	// App settings
	Debug     bool   `env:"DEBUG" envDefault:"false"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// HTTP
	UserAgent      string        `env:"USER_AGENT"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"20s"`
	SearchTimeout  time.Duration `env:"SEARCH_TIMEOUT" envDefault:"15s"`

	// Collection windows and throttles
	ArticleLookback    time.Duration `env:"ARTICLE_LOOKBACK" envDefault:"168h"`
	PaperLookback      time.Duration `env:"PAPER_LOOKBACK" envDefault:"720h"`
	SearchInterval     time.Duration `env:"SEARCH_INTERVAL" envDefault:"1s"`
	RateLimitDelay     time.Duration `env:"RATE_LIMIT_DELAY" envDefault:"5s"`
	SearchKeywordsMax  int           `env:"SEARCH_KEYWORDS_MAX" envDefault:"5"`
	SearchResultLimit  int           `env:"SEARCH_RESULT_LIMIT" envDefault:"10"`
	SemanticScholarURL string        `env:"SEMANTIC_SCHOLAR_URL" envDefault:"https://api.semanticscholar.org/graph/v1/paper/search"`
	ArxivURL           string        `env:"ARXIV_URL" envDefault:"http://export.arxiv.org/api/query"`

	// Selection caps
	MaxArticles  int `env:"MAX_ARTICLES" envDefault:"12"`
	MaxPerSource int `env:"MAX_PER_SOURCE" envDefault:"3"`
	MaxPapers    int `env:"MAX_PAPERS" envDefault:"8"`

	// Translation
	TargetLanguage      string         `env:"TARGET_LANGUAGE" envDefault:"ko"`
	TranslationBackends []string       `env:"TRANSLATION_BACKENDS" envSeparator:"," envDefault:"google"`
	TranslateInterval   time.Duration  `env:"TRANSLATE_INTERVAL" envDefault:"500ms"`
	MaxTranslations     int            `env:"MAX_TRANSLATIONS" envDefault:"0"`
	TranslationBudgets  map[string]int `env:"TRANSLATION_BUDGETS"`
	GeminiAPIKey        string         `env:"GEMINI_API_KEY"`
	GeminiModel         string         `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	OpenAIAPIKey        string         `env:"OPENAI_API_KEY"`
	OpenAIModel         string         `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Telegram settings
	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`

	// Email settings
	SMTPHost      string   `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort      int      `env:"SMTP_PORT" envDefault:"587"`
	SMTPPassword  string   `env:"GMAIL_APP_PASSWORD"`
	EmailSender   string   `env:"EMAIL_SENDER"`
	EmailTo       []string `env:"EMAIL_RECIPIENTS" envSeparator:","`
	SubjectPrefix string   `env:"EMAIL_SUBJECT_PREFIX" envDefault:"[광고 트렌드 리포트]"`

	// Archive
	PostgresDSN string `env:"POSTGRES_DSN"`

	// Monitoring
	MonitoringPort int `env:"MONITORING_PORT" envDefault:"0"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxArticles <= 0 || c.MaxPerSource <= 0 || c.MaxPapers < 0 {
		return errors.New("MAX_ARTICLES and MAX_PER_SOURCE must be positive, MAX_PAPERS non-negative")
	}
	if c.RequestTimeout <= 0 || c.SearchTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT and SEARCH_TIMEOUT must be positive")
	}
	if c.ArticleLookback <= 0 || c.PaperLookback <= 0 {
		return errors.New("ARTICLE_LOOKBACK and PAPER_LOOKBACK must be positive")
	}
	if c.SearchInterval < 0 || c.TranslateInterval < 0 || c.RateLimitDelay < 0 {
		return errors.New("throttle intervals must not be negative")
	}
	for backend, n := range c.TranslationBudgets {
		if n < 0 {
			return fmt.Errorf("TRANSLATION_BUDGETS: %s budget must not be negative", backend)
		}
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be 'console' or 'json', got %q", c.LogFormat)
	}
	if c.SMTPPassword != "" && (c.EmailSender == "" || len(c.EmailTo) == 0) {
		return errors.New("EMAIL_SENDER and EMAIL_RECIPIENTS are required when GMAIL_APP_PASSWORD is set")
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		return errors.New("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

// TelegramEnabled reports whether Telegram delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
