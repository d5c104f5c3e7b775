package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ItemsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adtrends_items_collected_total",
		Help: "Items collected per source",
	}, []string{"source", "kind"})

	SourceErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adtrends_source_errors_total",
		Help: "Feed or search requests that failed",
	}, []string{"source"})

	DuplicatesFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adtrends_duplicates_filtered_total",
		Help: "Items dropped by title deduplication",
	})

	FulltextFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adtrends_fulltext_fetches_total",
		Help: "Article page fetches by outcome",
	}, []string{"status"})

	Translations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adtrends_translations_total",
		Help: "Translation calls by outcome",
	}, []string{"status"})

	ReportsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adtrends_reports_generated_total",
		Help: "Reports written to disk",
	})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adtrends_deliveries_total",
		Help: "Report deliveries by channel and outcome",
	}, []string{"channel", "status"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "adtrends_run_duration_seconds",
		Help:    "Duration of a full run",
		Buckets: []float64{10, 30, 60, 120, 300, 600, 1200},
	})
)

// Health tracks the outcome of the last run for the /health endpoint.
type Health struct {
	mu sync.RWMutex

	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Health{IsHealthy: true}

func (h *Health) SetLastRun() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastRunTime = time.Now()
	h.IsHealthy = true
}

func (h *Health) SetError(err string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastError = err
	h.LastErrorTime = time.Now()
	h.IsHealthy = false
}

func (h *Health) GetStats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"last_run_time":   h.LastRunTime.Format(time.RFC3339),
		"last_error_time": h.LastErrorTime.Format(time.RFC3339),
		"last_error":      h.LastError,
		"is_healthy":      h.IsHealthy,
	}
}
