package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/geoknn/distance"
	"github.com/hupe1980/geoknn/model"
	"github.com/hupe1980/geoknn/partition"
)

// envPrefix namespaces environment variables, e.g. GEOKNN_STORE.
const envPrefix = "GEOKNN"

// Config is the merged CLI configuration.
type Config struct {
	// Storage
	Store     string `mapstructure:"store"` // local, s3, minio
	Root      string `mapstructure:"root"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
	CacheMB   int    `mapstructure:"cache_mb"`
	IOLimitMB int    `mapstructure:"io_limit_mb"`

	// Catalog
	Catalog     string `mapstructure:"catalog"` // blob, dynamo
	DynamoTable string `mapstructure:"dynamo_table"`

	// SQLite source
	SQLite string `mapstructure:"sqlite"`
	Table  string `mapstructure:"table"`

	// Dataset
	Dataset    string `mapstructure:"dataset"`
	Generate   int    `mapstructure:"generate"`
	Partitions int    `mapstructure:"partitions"`
	Format     string `mapstructure:"format"`
	Compress   string `mapstructure:"compress"`
	Seed       uint64 `mapstructure:"seed"`

	// Query
	Query  string `mapstructure:"query"`
	K      int    `mapstructure:"k"`
	Metric string `mapstructure:"metric"` // euclidean, squared

	// Execution
	Workers  int    `mapstructure:"workers"`
	Executor string `mapstructure:"executor"` // pool, group
	Retries  int    `mapstructure:"retries"`

	// Observability
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"` // text, json
	MetricsAddr string `mapstructure:"metrics_addr"`
}

func newFlagSet() *pflag.FlagSet {
	f := pflag.NewFlagSet("geoknn", pflag.ContinueOnError)

	f.String("config", "", "Path to a YAML configuration file")
	f.String("env-file", ".env", "Path to a dotenv file; missing files are ignored")

	f.String("store", "local", "Blob store: local, s3 or minio")
	f.String("root", "./data", "Root directory of the local store")
	f.String("bucket", "", "Bucket of the s3/minio store")
	f.String("prefix", "", "Key prefix inside the bucket")
	f.String("endpoint", "", "Custom S3 endpoint or MinIO host:port")
	f.String("region", "", "Bucket region")
	f.String("access-key", "", "MinIO access key")
	f.String("secret-key", "", "MinIO secret key")
	f.Bool("secure", false, "Use TLS for MinIO")
	f.Int("cache-mb", 0, "Block cache size in MiB (0 disables)")
	f.Int("io-limit-mb", 0, "Blob read throughput limit in MiB/s (0 is unlimited)")

	f.String("catalog", "blob", "Catalog: blob or dynamo")
	f.String("dynamo-table", "geoknn-catalog", "DynamoDB table of the dynamo catalog")

	f.String("sqlite", "", "Read partitions from this SQLite database instead of the blob store")
	f.String("table", partition.DefaultTable, "SQLite table holding the points")

	f.String("dataset", "default", "Dataset name")
	f.Int("generate", 0, "Generate a random dataset with this many points")
	f.Int("partitions", 8, "Number of partitions to generate")
	f.String("format", "pts", "Partition format: pts, shp or parquet")
	f.String("compress", "", "Partition compression: lz4 or zst")
	f.Uint64("seed", 1, "Random seed for --generate")

	f.String("query", "", "Query point as X,Y")
	f.Int("k", 10, "Number of neighbors")
	f.String("metric", "euclidean", "Distance metric: euclidean or squared")

	f.Int("workers", 0, "Concurrent partition scans (0 uses GOMAXPROCS)")
	f.String("executor", "group", "Executor: pool or group")
	f.Int("retries", 3, "Scan attempts per partition")

	f.String("log-level", "info", "Log level: debug, info, warn or error")
	f.String("log-format", "text", "Log format: text or json")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address")

	normalizeFunc := f.GetNormalizeFunc()
	f.SetNormalizeFunc(func(set *pflag.FlagSet, name string) pflag.NormalizedName {
		result := normalizeFunc(set, name)
		name = strings.ReplaceAll(string(result), "-", "_")
		return pflag.NormalizedName(name)
	})
	return f
}

// loadConfig merges, in increasing precedence, defaults, the config file,
// the dotenv file, the environment and the command line.
func loadConfig(args []string) (Config, error) {
	f := newFlagSet()
	if err := f.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(f); err != nil {
		return Config{}, err
	}

	if envFile := v.GetString("env_file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Store {
	case "local", "s3", "minio":
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	switch c.Catalog {
	case "blob", "dynamo":
	default:
		return fmt.Errorf("unknown catalog %q", c.Catalog)
	}
	switch c.Executor {
	case "pool", "group":
	default:
		return fmt.Errorf("unknown executor %q", c.Executor)
	}
	if (c.Store == "s3" || c.Store == "minio") && c.Bucket == "" {
		return fmt.Errorf("--bucket is required for store %s", c.Store)
	}
	if _, err := c.format(); err != nil {
		return err
	}
	if _, err := c.compression(); err != nil {
		return err
	}
	if _, err := c.metric(); err != nil {
		return err
	}
	if c.Query != "" {
		if _, err := parsePoint(c.Query); err != nil {
			return err
		}
	}
	if c.Generate == 0 && c.Query == "" {
		return errors.New("nothing to do: pass --generate and/or --query")
	}
	return nil
}

func (c Config) format() (partition.Format, error) {
	return partition.ParseFormat(c.Format)
}

func (c Config) compression() (partition.Compression, error) {
	return partition.ParseCompression(c.Compress)
}

func (c Config) metric() (distance.Metric, error) {
	return distance.ParseMetric(c.Metric)
}

// parsePoint parses "X,Y".
func parsePoint(s string) (model.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return model.Point{}, fmt.Errorf("invalid point %q: want X,Y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return model.Point{x, y}, nil
}
