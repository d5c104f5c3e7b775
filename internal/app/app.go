package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/deusflow/adtrends/internal/config"
	"github.com/deusflow/adtrends/internal/logger"
	"github.com/deusflow/adtrends/internal/mail"
	"github.com/deusflow/adtrends/internal/metrics"
	"github.com/deusflow/adtrends/internal/news"
	"github.com/deusflow/adtrends/internal/noise"
	"github.com/deusflow/adtrends/internal/ratelimit"
	"github.com/deusflow/adtrends/internal/report"
	"github.com/deusflow/adtrends/internal/rss"
	"github.com/deusflow/adtrends/internal/scholar"
	"github.com/deusflow/adtrends/internal/scraper"
	"github.com/deusflow/adtrends/internal/storage"
	"github.com/deusflow/adtrends/internal/summary"
	"github.com/deusflow/adtrends/internal/translate"
)

// ErrNoData is returned by Report when the day's snapshot has no items.
var ErrNoData = errors.New("no collected articles or papers")

// Deliverer sends a finished report somewhere.
type Deliverer interface {
	Deliver(ctx context.Context, subject, body string) error
}

type namedDeliverer struct {
	name string
	d    Deliverer
}

// Collection is the output of one collection pass.
type Collection struct {
	Articles []news.Item
	Papers   []news.Item
}

// App wires collectors, enrichment, storage and delivery for one run.
type App struct {
	cfg     *config.Config
	sources *config.Sources

	rss        *rss.Collector
	semantic   *scholar.SemanticScholar
	arxiv      *scholar.Arxiv
	fetcher    *scraper.Fetcher
	translator *translate.Service
	summarizer *summary.Summarizer

	store      *storage.SnapshotStore
	archive    Archiver
	deliverers []namedDeliverer

	now     func() time.Time
	closers []func()
	log     zerolog.Logger
}

// New builds an App from configuration. Deliverers are added separately.
func New(ctx context.Context, cfg *config.Config, sources *config.Sources) (*App, error) {
	nf, err := noise.New(sources.Noise)
	if err != nil {
		return nil, fmt.Errorf("failed to compile noise patterns: %w", err)
	}

	client := &http.Client{}
	searchLimiter := ratelimit.New(cfg.SearchInterval, 0)
	translateLimiter := ratelimit.New(cfg.TranslateInterval, cfg.MaxTranslations)

	a := &App{
		cfg:     cfg,
		sources: sources,
		rss:     rss.NewCollector(client, cfg.UserAgent, cfg.RequestTimeout, cfg.ArticleLookback),
		semantic: scholar.NewSemanticScholar(client, scholar.SemanticScholarOptions{
			Endpoint:    cfg.SemanticScholarURL,
			Limit:       cfg.SearchResultLimit,
			MaxKeywords: cfg.SearchKeywordsMax,
			Lookback:    cfg.PaperLookback,
			RetryDelay:  cfg.RateLimitDelay,
			Timeout:     cfg.SearchTimeout,
		}, searchLimiter),
		arxiv:   scholar.NewArxiv(client, cfg.ArxivURL, cfg.SearchResultLimit, cfg.SearchTimeout, searchLimiter),
		fetcher: scraper.NewFetcher(client, cfg.UserAgent, cfg.RequestTimeout, scraper.NewExtractor(scraper.DefaultOptions(), nf)),
		store:   storage.NewSnapshotStore(cfg.DataDir, cfg.ReportsDir),
		now:     time.Now,
		log:     logger.Component("app"),
	}

	backend, closers, err := newTranslator(ctx, cfg, translateLimiter)
	a.closers = append(a.closers, closers...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.translator = translate.NewService(backend, cfg.TargetLanguage, translateLimiter)
	a.summarizer = summary.New(a.translator, nf, summary.DefaultOptions())

	archive, closeArchive, err := newArchiver(ctx, cfg)
	if err != nil {
		a.log.Warn().Err(err).Msg("archive unavailable, continuing without it")
		archive, closeArchive = noopArchiver{}, func() {}
	}
	a.archive = archive
	a.closers = append(a.closers, closeArchive)

	return a, nil
}

// AddDeliverer registers a delivery channel.
func (a *App) AddDeliverer(name string, d Deliverer) {
	a.deliverers = append(a.deliverers, namedDeliverer{name: name, d: d})
}

func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
}

// Day is today's snapshot key.
func (a *App) Day() string {
	return storage.Day(a.now())
}

// Collect gathers feeds and papers and saves today's snapshot.
func (a *App) Collect(ctx context.Context) (*Collection, error) {
	now := a.now()

	articles := a.rss.Collect(ctx, a.sources.Feeds, now)
	ss := a.semantic.Search(ctx, a.sources.SearchKeywords, now)
	ax := a.arxiv.Search(ctx, a.sources.ArxivQueries)

	merged := append(append([]news.Item{}, ss...), ax...)
	papers := news.Deduplicate(merged)
	metrics.DuplicatesFiltered.Add(float64(len(merged) - len(papers)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := a.store.SaveCollection(storage.Day(now), articles, papers); err != nil {
		return nil, fmt.Errorf("failed to save collection: %w", err)
	}

	a.log.Info().Int("articles", len(articles)).Int("papers", len(papers)).Msg("✅ collection saved")
	return &Collection{Articles: articles, Papers: papers}, nil
}

// Report builds today's report from the saved snapshot and returns its
// path.
func (a *App) Report(ctx context.Context) (string, error) {
	day := a.Day()
	articles, papers, err := a.store.LoadCollection(day)
	if err != nil {
		return "", fmt.Errorf("failed to load collection: %w", err)
	}
	if len(articles) == 0 && len(papers) == 0 {
		return "", ErrNoData
	}

	dedupArticles := news.Deduplicate(articles)
	dedupPapers := news.Deduplicate(papers)
	metrics.DuplicatesFiltered.Add(float64(len(articles) - len(dedupArticles) + len(papers) - len(dedupPapers)))

	topArticles, topPapers := news.Select(dedupArticles, dedupPapers, news.Caps{
		PerSource:   a.cfg.MaxPerSource,
		MaxArticles: a.cfg.MaxArticles,
		MaxPapers:   a.cfg.MaxPapers,
	})
	selected := append(append([]news.Item{}, topArticles...), topPapers...)
	a.log.Info().Int("articles", len(topArticles)).Int("papers", len(topPapers)).Msg("analyzing selection")

	entries := make([]report.Entry, 0, len(selected))
	records := make([]storage.Record, 0, len(selected))
	for i, it := range selected {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		a.log.Info().Msgf("[%d/%d] analyzing: %s", i+1, len(selected), news.Truncate(it.Title, 30))

		fulltext := a.fetcher.Fulltext(ctx, it)
		sum := a.summarizer.Summarize(ctx, it, fulltext)
		cat := news.Categorize(it)

		entries = append(entries, report.Entry{Item: it, Summary: sum, Category: cat})
		records = append(records, storage.Record{Item: it, Summary: sum, Category: cat.Key, Score: news.Score(it)})
	}

	body := report.Build(ctx, report.Input{Entries: entries, Titles: a.translator, Now: a.now()})
	path, err := a.store.SaveReport(day, body)
	if err != nil {
		return "", err
	}
	metrics.ReportsGenerated.Inc()

	if err := a.archive.ArchiveRun(ctx, day, records, path); err != nil {
		a.log.Warn().Err(err).Msg("failed to archive run")
	}

	a.translator.LogStats()
	a.log.Info().Str("path", path).Msg("✅ report written")
	return path, nil
}

// Deliver sends the report at path through every deliverer and returns
// how many succeeded. Failures are logged, never returned.
func (a *App) Deliver(ctx context.Context, path string) int {
	if path == "" {
		path = a.store.ReportPath(a.Day())
	}
	body, err := a.store.ReadReport(path)
	if err != nil {
		a.log.Error().Err(err).Str("path", path).Msg("report file not found")
		return 0
	}

	subject := mail.Subject(a.cfg.SubjectPrefix, a.Day())
	sent := 0
	for _, nd := range a.deliverers {
		if err := nd.d.Deliver(ctx, subject, body); err != nil {
			a.log.Warn().Err(err).Str("channel", nd.name).Msg("⚠️ delivery failed, report kept on disk")
			continue
		}
		sent++
	}
	return sent
}

// Run collects, reports and delivers. Delivery problems do not fail the
// run.
func (a *App) Run(ctx context.Context, skipDelivery bool) error {
	start := time.Now()
	a.log.Info().Str("day", a.Day()).Msg("📢 starting pipeline")

	err := a.run(ctx, skipDelivery)

	elapsed := time.Since(start)
	metrics.RunDuration.Observe(elapsed.Seconds())
	if err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}
	metrics.Global.SetLastRun()
	a.log.Info().Int("elapsed_seconds", int(elapsed.Seconds())).Msg("🏁 pipeline finished")
	return nil
}

func (a *App) run(ctx context.Context, skipDelivery bool) error {
	a.log.Info().Msg("📥 [1/3] collecting trends and papers")
	if _, err := a.Collect(ctx); err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	a.log.Info().Msg("📊 [2/3] building report")
	path, err := a.Report(ctx)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if skipDelivery {
		a.log.Info().Msg("📧 [3/3] delivery skipped")
		return nil
	}
	a.log.Info().Msg("📧 [3/3] delivering report")
	a.Deliver(ctx, path)
	return nil
}
