package geoknn

import (
	"log/slog"

	"github.com/hupe1980/geoknn/blobstore"
	"github.com/hupe1980/geoknn/catalog"
	"github.com/hupe1980/geoknn/codec"
	"github.com/hupe1980/geoknn/distance"
	"github.com/hupe1980/geoknn/engine"
	"github.com/hupe1980/geoknn/resource"
)

type options struct {
	codec            codec.Codec
	catalog          catalog.Catalog
	metricsCollector MetricsCollector
	logger           *Logger
	executor         engine.Executor
	workers          int
	retry            engine.RetryPolicy
	resources        *resource.Controller
	parquetBatchSize int
	dist             distance.Func
	err              error
}

// Option configures NearestK, Open and Write.
type Option func(*options)

// WithCodec configures the codec used for catalog manifests.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCatalog configures where dataset partition lists are stored.
// Defaults to a manifest blob next to the dataset (catalog.BlobCatalog).
func WithCatalog(c catalog.Catalog) Option {
	return func(o *options) {
		o.catalog = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &geoknn.BasicMetricsCollector{}
//	ds, _ := geoknn.Open(ctx, store, "cities", geoknn.WithMetricsCollector(metrics))
//	// ... use ds ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithExecutor runs phase-1 scans on e. The caller keeps ownership and
// must close e after the last search.
func WithExecutor(e engine.Executor) Option {
	return func(o *options) {
		o.executor = e
	}
}

// WithWorkers runs phase-1 scans on a fixed pool of n workers.
// Ignored if WithExecutor is set.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithRetryPolicy configures how failed partitions are re-scanned.
// Defaults to engine.DefaultRetryPolicy.
func WithRetryPolicy(p engine.RetryPolicy) Option {
	return func(o *options) {
		o.retry = p
	}
}

// WithResourceController bounds candidate memory, concurrent scans and blob
// read throughput.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithMetric selects the distance metric used to rank points. Reported
// distances are in the metric's units. Defaults to distance.MetricEuclidean.
//
// An unknown metric makes searches fail with ErrUnknownMetric.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		fn, err := distance.Provider(m)
		if err != nil {
			o.err = err
			return
		}
		o.dist, o.err = fn, nil
	}
}

// WithParquetBatchSize sets the number of rows decoded per Parquet read.
func WithParquetBatchSize(n int) Option {
	return func(o *options) {
		o.parquetBatchSize = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		retry:            engine.DefaultRetryPolicy(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// sharedExecutor keeps a caller-owned executor open when the selector closes.
type sharedExecutor struct {
	engine.Executor
}

func (sharedExecutor) Close() error { return nil }

func (o options) newSelector() *engine.Selector {
	opts := []engine.Option{
		engine.WithRetryPolicy(o.retry),
		engine.WithResourceController(o.resources),
		engine.WithLogger(o.logger.Logger),
		engine.WithMetricsObserver(observer{mc: o.metricsCollector}),
		engine.WithDistance(o.dist),
	}
	switch {
	case o.executor != nil:
		opts = append(opts, engine.WithExecutor(sharedExecutor{o.executor}))
	case o.workers > 0:
		opts = append(opts, engine.WithExecutor(engine.NewPoolExecutor(o.workers)))
	}
	return engine.NewSelector(opts...)
}

func (o options) catalogFor(store blobstore.BlobStore) catalog.Catalog {
	if o.catalog != nil {
		return o.catalog
	}
	return catalog.NewBlobCatalog(store, o.codec)
}
