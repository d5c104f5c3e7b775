package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deusflow/adtrends/internal/cache"
	"github.com/deusflow/adtrends/internal/logger"
	"github.com/deusflow/adtrends/internal/metrics"
	"github.com/deusflow/adtrends/internal/news"
	"github.com/deusflow/adtrends/internal/ratelimit"
)

// MaxInputChars bounds the text sent to a backend in one call.
const MaxInputChars = 4500

// Translator is a translation backend.
type Translator interface {
	Name() string
	Translate(ctx context.Context, text, target string) (string, error)
}

var ErrEmptyTranslation = errors.New("empty translation")

// Chain tries each backend in order and returns the first non-empty result.
type Chain []Translator

func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, t := range c {
		names[i] = t.Name()
	}
	return strings.Join(names, ",")
}

func (c Chain) Translate(ctx context.Context, text, target string) (string, error) {
	var errs []error
	for _, t := range c {
		out, err := t.Translate(ctx, text, target)
		if err == nil && strings.TrimSpace(out) != "" {
			return out, nil
		}
		if err == nil {
			err = ErrEmptyTranslation
		}
		errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
	}
	if len(errs) == 0 {
		return "", errors.New("no translation backends configured")
	}
	return "", errors.Join(errs...)
}

// Limited charges every call to t against limiter's budget for t.
func Limited(t Translator, limiter *ratelimit.Limiter) Translator {
	return &limited{Translator: t, limiter: limiter}
}

type limited struct {
	Translator
	limiter *ratelimit.Limiter
}

func (l *limited) Translate(ctx context.Context, text, target string) (string, error) {
	if err := l.limiter.Use(l.Name()); err != nil {
		return "", err
	}
	return l.Translator.Translate(ctx, text, target)
}

// Service is the never-failing translation entry point used by the report.
// It truncates input, paces and budgets backend calls, and memoizes results
// for the life of the run.
type Service struct {
	backend Translator
	target  string
	limiter *ratelimit.Limiter
	memo    *cache.Cache[string]
}

// NewService wraps backend. A nil backend makes Text the identity.
func NewService(backend Translator, target string, limiter *ratelimit.Limiter) *Service {
	if limiter == nil {
		limiter = ratelimit.New(0, 0)
	}
	return &Service{
		backend: backend,
		target:  target,
		limiter: limiter,
		memo:    cache.New[string](0),
	}
}

// Text translates text into the target language. On any failure, or when
// the backend returns nothing, the (possibly truncated) input is returned.
func (s *Service) Text(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" || s.backend == nil {
		return text
	}

	text = news.Truncate(text, MaxInputChars)
	key := cache.GenerateKey(s.target, text)
	if out, ok := s.memo.Get(key); ok {
		s.limiter.RecordCacheHit()
		return out
	}

	out, err := s.call(ctx, text)
	if err != nil {
		metrics.Translations.WithLabelValues("failed").Inc()
		logger.Debug("translation failed, using original", "backend", s.backend.Name(), "error", err.Error())
		return text
	}

	metrics.Translations.WithLabelValues("ok").Inc()
	s.memo.Set(key, out)
	return out
}

func (s *Service) call(ctx context.Context, text string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := s.backend.Translate(ctx, text, s.target)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyTranslation
	}
	return out, nil
}

// LogStats logs the limiter counters.
func (s *Service) LogStats() {
	s.limiter.LogStats()
}
