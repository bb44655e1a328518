// Command geoknn generates partitioned point datasets and runs K-nearest
// neighbor queries against them.
//
//	geoknn --generate 1000000 --partitions 16 --format pts --compress zst
//	geoknn --query 13.4,52.5 --k 10
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	_ "modernc.org/sqlite"

	"github.com/hupe1980/geoknn"
	"github.com/hupe1980/geoknn/catalog"
	"github.com/hupe1980/geoknn/codec"
	"github.com/hupe1980/geoknn/engine"
	geoprom "github.com/hupe1980/geoknn/metrics/prometheus"
	"github.com/hupe1980/geoknn/model"
	"github.com/hupe1980/geoknn/partition"
	"github.com/hupe1980/geoknn/resource"
)

// extent bounds generated points (WGS84 longitude, latitude).
var extent = model.Bound{Min: model.Point{-180, -90}, Max: model.Point{180, 90}}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "geoknn: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "geoknn: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg Config, w io.Writer) (*geoknn.Logger, error) {
	level, err := geoknn.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch cfg.LogFormat {
	case "json":
		return geoknn.NewLogger(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return geoknn.NewLogger(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	metric, err := cfg.metric()
	if err != nil {
		return err
	}

	opts := []geoknn.Option{
		geoknn.WithLogger(logger),
		geoknn.WithRetryPolicy(retryPolicy(cfg.Retries)),
		geoknn.WithMetric(metric),
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, geoknn.WithMetricsCollector(geoprom.NewCollector(reg)))
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	var rc *resource.Controller
	if cfg.IOLimitMB > 0 {
		rc = resource.NewController(resource.Config{IOLimitBytesPerSec: int64(cfg.IOLimitMB) << 20})
		opts = append(opts, geoknn.WithResourceController(rc))
	}

	switch cfg.Executor {
	case "pool":
		opts = append(opts, geoknn.WithWorkers(cfg.Workers))
	default:
		exec := engine.NewGroupExecutor(cfg.Workers)
		defer exec.Close()
		opts = append(opts, geoknn.WithExecutor(exec))
	}

	if cfg.SQLite != "" {
		return runSQLite(ctx, cfg, out, logger, opts)
	}
	return runStore(ctx, cfg, out, rc, opts)
}

func runStore(ctx context.Context, cfg Config, out io.Writer, rc *resource.Controller, opts []geoknn.Option) error {
	store, closeStore, err := openStore(ctx, cfg, rc)
	if err != nil {
		return err
	}
	defer closeStore()

	cat, err := openCatalog(ctx, cfg, store)
	if err != nil {
		return err
	}
	opts = append(opts, geoknn.WithCatalog(cat))

	if cfg.Generate > 0 {
		f, _ := cfg.format()
		c, _ := cfg.compression()
		pts := generatePoints(cfg.Generate, cfg.Seed)
		if _, err := geoknn.Write(ctx, store, partition.DatasetSpec{
			Dataset:     cfg.Dataset,
			Partitions:  cfg.Partitions,
			Format:      f,
			Compression: c,
		}, pts, opts...); err != nil {
			return err
		}
	}

	if cfg.Query == "" {
		return nil
	}
	q, _ := parsePoint(cfg.Query)

	ds, err := geoknn.Open(ctx, store, cfg.Dataset, opts...)
	if err != nil {
		return err
	}
	defer ds.Close()

	res, err := ds.Search(ctx, q, cfg.K)
	if err != nil {
		return err
	}
	return printResults(out, cfg.Dataset, q, res)
}

func runSQLite(ctx context.Context, cfg Config, out io.Writer, logger *geoknn.Logger, opts []geoknn.Option) error {
	db, err := sql.Open("sqlite", cfg.SQLite)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Generate > 0 {
		if err := partition.CreateTable(ctx, db, cfg.Table); err != nil {
			return err
		}
		pts := generatePoints(cfg.Generate, cfg.Seed)
		for i, s := range partition.Split(pts, cfg.Partitions) {
			if err := partition.InsertPoints(ctx, db, cfg.Table, s.Name(), s.Pts); err != nil {
				return fmt.Errorf("insert partition %d: %w", i, err)
			}
		}
		logger.LogWrite(ctx, cfg.Table, max(cfg.Partitions, 1), len(pts), nil)
	}

	if cfg.Query == "" {
		return nil
	}
	q, _ := parsePoint(cfg.Query)

	parts, err := partition.SQLPartitions(ctx, db, cfg.Table)
	if err != nil {
		return err
	}
	res, err := geoknn.NearestK(ctx, q, cfg.K, partition.Partitions(parts), opts...)
	if err != nil {
		return err
	}
	return printResults(out, cfg.Table, q, res)
}

func retryPolicy(attempts int) engine.RetryPolicy {
	p := engine.DefaultRetryPolicy()
	p.MaxAttempts = max(attempts, 1)
	return p
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *geoknn.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("starting metrics server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func generatePoints(n int, seed uint64) []model.Point {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	w, h := extent.Max.X()-extent.Min.X(), extent.Max.Y()-extent.Min.Y()
	pts := make([]model.Point, n)
	for i := range pts {
		pts[i] = model.Point{extent.Min.X() + rng.Float64()*w, extent.Min.Y() + rng.Float64()*h}
	}
	return pts
}

// Non-finite coordinates and distances print as "NaN", "+Inf" or "-Inf".
type result struct {
	X        catalog.Float `json:"x"`
	Y        catalog.Float `json:"y"`
	Distance catalog.Float `json:"distance"`
}

type output struct {
	Dataset string           `json:"dataset"`
	Query   [2]catalog.Float `json:"query"`
	Results []result         `json:"results"`
}

func printResults(w io.Writer, dataset string, q model.Point, res []model.Neighbor) error {
	o := output{
		Dataset: dataset,
		Query:   [2]catalog.Float{catalog.Float(q.X()), catalog.Float(q.Y())},
		Results: make([]result, len(res)),
	}
	for i, n := range res {
		o.Results[i] = result{
			X:        catalog.Float(n.Point.X()),
			Y:        catalog.Float(n.Point.Y()),
			Distance: catalog.Float(n.Distance),
		}
	}
	b, err := codec.GoJSON{}.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
