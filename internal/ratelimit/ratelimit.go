package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/deusflow/adtrends/internal/logger"
)

// Limiter paces outbound calls and enforces per-backend and total call
// budgets for a run.
type Limiter struct {
	pace *rate.Limiter

	mu          sync.Mutex
	counts      map[string]int
	limits      map[string]int
	totalCount  int
	maxTotal    int
	cacheHits   int
	cacheMisses int
}

// New returns a Limiter spacing calls at least interval apart. maxTotal
// caps the calls across all backends; 0 means unlimited.
func New(interval time.Duration, maxTotal int) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{
		pace:     rate.NewLimiter(limit, 1),
		counts:   make(map[string]int),
		limits:   make(map[string]int),
		maxTotal: maxTotal,
	}
}

// SetLimit caps calls for one backend; 0 means unlimited.
func (l *Limiter) SetLimit(backend string, max int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limits[backend] = max
}

// Wait blocks until the next call may start.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.pace.Wait(ctx)
}

// Use records one call against backend's budget.
func (l *Limiter) Use(backend string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.check(backend); err != nil {
		return err
	}
	l.counts[backend]++
	l.totalCount++
	l.cacheMisses++

	logger.Debug("📊 translation usage", "backend", backend, "used", l.counts[backend], "total", l.totalCount)
	return nil
}

func (l *Limiter) check(backend string) error {
	if max := l.limits[backend]; max > 0 && l.counts[backend] >= max {
		return fmt.Errorf("%s rate limit exceeded (%d/%d)", backend, l.counts[backend], max)
	}
	if l.maxTotal > 0 && l.totalCount >= l.maxTotal {
		return fmt.Errorf("total rate limit exceeded (%d/%d)", l.totalCount, l.maxTotal)
	}
	return nil
}

// RecordCacheHit counts a call served without touching a backend.
func (l *Limiter) RecordCacheHit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cacheHits++
}

func (l *Limiter) hitRate() float64 {
	total := l.cacheHits + l.cacheMisses
	if total == 0 {
		return 0
	}
	return float64(l.cacheHits) / float64(total) * 100
}

// GetStats returns current usage counters.
func (l *Limiter) GetStats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := map[string]interface{}{
		"total_used":     l.totalCount,
		"total_limit":    l.maxTotal,
		"cache_hits":     l.cacheHits,
		"cache_misses":   l.cacheMisses,
		"cache_hit_rate": l.hitRate(),
	}
	for backend, n := range l.counts {
		stats[backend+"_used"] = n
	}
	return stats
}

// LogStats writes the usage summary at info level.
func (l *Limiter) LogStats() {
	stats := l.GetStats()
	logger.Info("📊 translation usage summary",
		"total", stats["total_used"],
		"cache_hits", stats["cache_hits"],
		"cache_misses", stats["cache_misses"],
		"hit_rate", stats["cache_hit_rate"],
	)
}
