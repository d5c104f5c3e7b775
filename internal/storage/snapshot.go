package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deusflow/adtrends/internal/news"
)

const (
	articlesFile = "raw_articles.json"
	papersFile   = "raw_papers.json"
	trendsFile   = "trends.json"
	dayLayout    = "2006-01-02"
)

// ErrNoSnapshot is returned when a day has no collection on disk.
var ErrNoSnapshot = errors.New("no snapshot for day")

// SnapshotStore keeps the daily collection and the generated reports on
// the local filesystem.
type SnapshotStore struct {
	DataDir    string
	ReportsDir string
}

func NewSnapshotStore(dataDir, reportsDir string) *SnapshotStore {
	return &SnapshotStore{DataDir: dataDir, ReportsDir: reportsDir}
}

// Day formats t as the directory and file prefix used for snapshots.
func Day(t time.Time) string {
	return t.Format(dayLayout)
}

func (s *SnapshotStore) dayDir(day string) string {
	return filepath.Join(s.DataDir, day)
}

// SaveCollection writes raw_articles.json, raw_papers.json and the
// combined trends.json under DataDir/day.
func (s *SnapshotStore) SaveCollection(day string, articles, papers []news.Item) error {
	dir := s.dayDir(day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	all := make([]news.Item, 0, len(articles)+len(papers))
	all = append(all, articles...)
	all = append(all, papers...)

	files := []struct {
		name  string
		items []news.Item
	}{
		{articlesFile, articles},
		{papersFile, papers},
		{trendsFile, all},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.items); err != nil {
			return err
		}
	}
	return nil
}

// LoadCollection reads the raw articles and papers saved for day.
func (s *SnapshotStore) LoadCollection(day string) (articles, papers []news.Item, err error) {
	dir := s.dayDir(day)
	if articles, err = readJSON(filepath.Join(dir, articlesFile)); err != nil {
		return nil, nil, err
	}
	if papers, err = readJSON(filepath.Join(dir, papersFile)); err != nil {
		return nil, nil, err
	}
	return articles, papers, nil
}

// ReportPath is where the report for day is written.
func (s *SnapshotStore) ReportPath(day string) string {
	return filepath.Join(s.ReportsDir, day+"_report.md")
}

// SaveReport writes body to the report path for day and returns it.
func (s *SnapshotStore) SaveReport(day, body string) (string, error) {
	if err := os.MkdirAll(s.ReportsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports dir: %w", err)
	}
	path := s.ReportPath(day)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// ReadReport returns the contents of a report file.
func (s *SnapshotStore) ReadReport(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read report: %w", err)
	}
	return string(data), nil
}

func writeJSON(path string, items []news.Item) error {
	if items == nil {
		items = []news.Item{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string) ([]news.Item, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var items []news.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return items, nil
}
