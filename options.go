package svmcorpus

import (
	"log/slog"

	"github.com/sharecqy/svmcorpus/blobstore"
	"github.com/sharecqy/svmcorpus/codec"
	"golang.org/x/time/rate"
)

type options struct {
	store            blobstore.Store
	codec            codec.LineCodec
	offsets          []int64
	limiter          *rate.Limiter
	fetchConcurrency int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Open behavior.
type Option func(*options)

// WithStore configures the storage backend the corpus is read from.
// The default is the local file system; see blobstore/s3 and
// blobstore/minio for object-store backends.
func WithStore(store blobstore.Store) Option {
	return func(o *options) {
		if store != nil {
			o.store = store
		}
	}
}

// WithCodec configures the line codec used to decode documents.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.LineCodec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithOffsets supplies the byte-offset index for the corpus, enabling
// DocByNum and Select. The slice is the one returned by Save for the same
// file; it is copied.
func WithOffsets(offsets []int64) Option {
	return func(o *options) {
		if offsets == nil {
			o.offsets = nil
			return
		}
		o.offsets = make([]int64, len(offsets))
		copy(o.offsets, offsets)
	}
}

// WithRateLimiter throttles offset-addressed document fetches. Useful to
// keep batch random access polite towards shared object stores.
// Pass nil to disable (the default).
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(o *options) {
		o.limiter = limiter
	}
}

// WithFetchConcurrency bounds how many documents DocsByOffset fetches in
// parallel. Values below 1 keep the default of 16.
func WithFetchConcurrency(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.fetchConcurrency = n
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations.
//
// Example with BasicMetricsCollector:
//
//	metrics := &svmcorpus.BasicMetricsCollector{}
//	corpus, _ := svmcorpus.Open(path, svmcorpus.WithMetricsCollector(metrics))
//	// ... use corpus ...
//	stats := metrics.GetStats()
//	fmt.Printf("Fetches: %d, Avg latency: %dns\n", stats.FetchCount, stats.FetchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metricsCollector = mc
		}
	}
}

// WithLogger configures structured logging for operations.
//
// Example with JSON logging:
//
//	logger := svmcorpus.NewJSONLogger(slog.LevelInfo)
//	corpus, _ := svmcorpus.Open(path, svmcorpus.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		store:            blobstore.NewLocalStore(),
		codec:            codec.Default,
		fetchConcurrency: 16,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
