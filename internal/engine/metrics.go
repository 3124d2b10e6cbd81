package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests atomic.Int64
	DetailRequests atomic.Int64
	FetchRequests  atomic.Int64
	FetchErrors    atomic.Int64
	PipelineRuns   atomic.Int64
	RowsWritten    atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"search_requests": metrics.SearchRequests.Load(),
		"detail_requests": metrics.DetailRequests.Load(),
		"fetch_requests":  metrics.FetchRequests.Load(),
		"fetch_errors":    metrics.FetchErrors.Load(),
		"pipeline_runs":   metrics.PipelineRuns.Load(),
		"rows_written":    metrics.RowsWritten.Load(),
		"cache_hits":      hits,
		"cache_misses":    misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"search_requests", "detail_requests",
		"fetch_requests", "fetch_errors",
		"pipeline_runs", "rows_written",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the seek, jobs and store packages.
func IncrSearchRequests() { metrics.SearchRequests.Add(1) }
func IncrDetailRequests() { metrics.DetailRequests.Add(1) }
func IncrPipelineRuns() { metrics.PipelineRuns.Add(1) }
func AddRowsWritten(n int) { metrics.RowsWritten.Add(int64(n)) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	} else {
		slog.Debug("operation done", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
