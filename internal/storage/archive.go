package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/deusflow/adtrends/internal/logger"
	"github.com/deusflow/adtrends/internal/news"
)

const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
	archiveTable    = "trend_items"
)

const schema = `
CREATE TABLE IF NOT EXISTS trend_items (
	id UUID PRIMARY KEY,
	run_day DATE NOT NULL,
	source TEXT NOT NULL,
	kind VARCHAR(16) NOT NULL,
	title TEXT NOT NULL,
	url TEXT,
	summary TEXT,
	category VARCHAR(50),
	score INTEGER NOT NULL DEFAULT 0,
	published_at TIMESTAMP,
	report_path TEXT,
	archived_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_trend_items_run_day ON trend_items(run_day);
CREATE INDEX IF NOT EXISTS idx_trend_items_category ON trend_items(category);
`

// Record is one reported item together with what the run derived for it.
type Record struct {
	Item     news.Item
	Summary  string
	Category string
	Score    int
}

// Archive stores reported items in PostgreSQL.
type Archive struct {
	pool *pgxpool.Pool
	psql sq.StatementBuilderType
	log  zerolog.Logger
}

// NewArchive connects to dsn, retrying a few times, and creates the table
// when missing.
func NewArchive(ctx context.Context, dsn string) (*Archive, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database dsn: %w", err)
	}

	var pool *pgxpool.Pool
	for i := 0; i < connectAttempts; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
			pool = nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectDelay):
		}
	}
	if pool == nil {
		return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
	}

	a := &Archive{
		pool: pool,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		log:  logger.Component("archive"),
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	a.log.Info().Msg("✅ PostgreSQL archive connected")
	return a, nil
}

// ArchiveRun upserts the run's records keyed by item ID.
func (a *Archive) ArchiveRun(ctx context.Context, day string, records []Record, reportPath string) error {
	if len(records) == 0 {
		return nil
	}

	query, args, err := a.upsert(day, records, reportPath)
	if err != nil {
		return fmt.Errorf("failed to build archive query: %w", err)
	}

	tag, err := a.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to archive run: %w", err)
	}
	a.log.Info().Int64("rows", tag.RowsAffected()).Str("day", day).Msg("archived run")

	counts, err := a.CountByCategory(ctx, day)
	if err != nil {
		a.log.Warn().Err(err).Str("day", day).Msg("failed to count archived categories")
		return nil
	}
	for category, n := range counts {
		a.log.Info().Str("day", day).Str("category", category).Int("items", n).Msg("archived category")
	}
	return nil
}

func (a *Archive) upsert(day string, records []Record, reportPath string) (string, []any, error) {
	b := a.psql.Insert(archiveTable).Columns(
		"id", "run_day", "source", "kind", "title", "url", "summary",
		"category", "score", "published_at", "report_path",
	)
	for _, r := range records {
		b = b.Values(
			r.Item.ID, day, r.Item.Source, string(r.Item.Kind), r.Item.Title,
			r.Item.URL, r.Summary, r.Category, r.Score, r.Item.PublishedDate, reportPath,
		)
	}
	b = b.Suffix(`ON CONFLICT (id) DO UPDATE SET
		run_day = EXCLUDED.run_day,
		summary = EXCLUDED.summary,
		category = EXCLUDED.category,
		score = EXCLUDED.score,
		report_path = EXCLUDED.report_path,
		archived_at = NOW()`)
	return b.ToSql()
}

// CountByCategory returns how many archived items fall in each category
// for day.
func (a *Archive) CountByCategory(ctx context.Context, day string) (map[string]int, error) {
	query, args, err := a.countQuery(day)
	if err != nil {
		return nil, err
	}

	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats[category] = count
	}
	return stats, rows.Err()
}

func (a *Archive) countQuery(day string) (string, []any, error) {
	return a.psql.Select("category", "COUNT(*)").
		From(archiveTable).
		Where(sq.Eq{"run_day": day}).
		GroupBy("category").
		ToSql()
}

func (a *Archive) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
