package svmcorpus

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    fetchCounter   prometheus.Counter
//	    fetchHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordFetch(duration time.Duration, err error) {
//	    p.fetchCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordIterate is called after each iteration pass, full or partial.
	// docs is the number of documents yielded, duration is the total time
	// taken, err is nil if the pass ended cleanly.
	RecordIterate(docs int, duration time.Duration, err error)

	// RecordFetch is called after each offset-addressed document read.
	RecordFetch(duration time.Duration, err error)

	// RecordSave is called after each save operation.
	// docs is the number of documents written and bytes the logical corpus
	// size before compression.
	RecordSave(docs int, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIterate(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordFetch(time.Duration, error)            {}
func (NoopMetricsCollector) RecordSave(int, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	IterateCount      atomic.Int64
	IterateErrors     atomic.Int64
	IterateDocs       atomic.Int64
	IterateTotalNanos atomic.Int64
	FetchCount        atomic.Int64
	FetchErrors       atomic.Int64
	FetchTotalNanos   atomic.Int64
	SaveCount         atomic.Int64
	SaveErrors        atomic.Int64
	SaveDocs          atomic.Int64
	SaveBytes         atomic.Int64
}

// RecordIterate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIterate(docs int, duration time.Duration, err error) {
	b.IterateCount.Add(1)
	b.IterateDocs.Add(int64(docs))
	b.IterateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.IterateErrors.Add(1)
	}
}

// RecordFetch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFetch(duration time.Duration, err error) {
	b.FetchCount.Add(1)
	b.FetchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FetchErrors.Add(1)
	}
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(docs int, bytes int64, duration time.Duration, err error) {
	b.SaveCount.Add(1)
	b.SaveDocs.Add(int64(docs))
	b.SaveBytes.Add(bytes)
	if err != nil {
		b.SaveErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		IterateCount:  b.IterateCount.Load(),
		IterateErrors: b.IterateErrors.Load(),
		IterateDocs:   b.IterateDocs.Load(),
		FetchCount:    b.FetchCount.Load(),
		FetchErrors:   b.FetchErrors.Load(),
		FetchAvgNanos: b.getAvgFetchNanos(),
		SaveCount:     b.SaveCount.Load(),
		SaveErrors:    b.SaveErrors.Load(),
		SaveDocs:      b.SaveDocs.Load(),
		SaveBytes:     b.SaveBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgFetchNanos() int64 {
	count := b.FetchCount.Load()
	if count == 0 {
		return 0
	}
	return b.FetchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	IterateCount  int64
	IterateErrors int64
	IterateDocs   int64
	FetchCount    int64
	FetchErrors   int64
	FetchAvgNanos int64
	SaveCount     int64
	SaveErrors    int64
	SaveDocs      int64
	SaveBytes     int64
}
