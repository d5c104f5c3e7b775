package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/deusflow/adtrends/internal/config"
	"github.com/deusflow/adtrends/internal/ratelimit"
	"github.com/deusflow/adtrends/internal/storage"
	"github.com/deusflow/adtrends/internal/translate"
)

// Archiver persists the reported items of a run.
type Archiver interface {
	ArchiveRun(ctx context.Context, day string, records []storage.Record, reportPath string) error
}

type noopArchiver struct{}

func (noopArchiver) ArchiveRun(context.Context, string, []storage.Record, string) error { return nil }

// newArchiver connects to Postgres when a DSN is configured.
func newArchiver(ctx context.Context, cfg *config.Config) (Archiver, func(), error) {
	if cfg.PostgresDSN == "" {
		return noopArchiver{}, func() {}, nil
	}
	archive, err := storage.NewArchive(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	return archive, archive.Close, nil
}

// newTranslator builds the backend chain named by TRANSLATION_BACKENDS.
// Backends without credentials are skipped; an empty chain disables
// translation.
func newTranslator(ctx context.Context, cfg *config.Config, limiter *ratelimit.Limiter) (translate.Translator, []func(), error) {
	var chain translate.Chain
	var closers []func()

	for _, name := range cfg.TranslationBackends {
		key := strings.ToLower(strings.TrimSpace(name))
		if n, ok := cfg.TranslationBudgets[key]; ok {
			limiter.SetLimit(key, n)
		}
		switch key {
		case "", "none":
		case "google":
			chain = append(chain, translate.Limited(translate.NewGoogle(cfg.RequestTimeout), limiter))
		case "openai":
			if cfg.OpenAIAPIKey == "" {
				continue
			}
			chain = append(chain, translate.Limited(translate.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, ""), limiter))
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				continue
			}
			g, err := translate.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				return nil, closers, err
			}
			closers = append(closers, g.Close)
			chain = append(chain, translate.Limited(g, limiter))
		default:
			return nil, closers, fmt.Errorf("unknown translation backend %q", name)
		}
	}

	if len(chain) == 0 {
		return nil, closers, nil
	}
	return chain, closers, nil
}
