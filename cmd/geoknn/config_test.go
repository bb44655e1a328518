package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geoknn/distance"
	"github.com/hupe1980/geoknn/model"
	"github.com/hupe1980/geoknn/partition"
)

func noEnvFile(t *testing.T) string {
	t.Helper()
	return "--env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig([]string{noEnvFile(t), "--query", "1,2"})
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Store)
	assert.Equal(t, "./data", cfg.Root)
	assert.Equal(t, "blob", cfg.Catalog)
	assert.Equal(t, "default", cfg.Dataset)
	assert.Equal(t, 8, cfg.Partitions)
	assert.Equal(t, "pts", cfg.Format)
	assert.Equal(t, 10, cfg.K)
	assert.Equal(t, "group", cfg.Executor)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, partition.DefaultTable, cfg.Table)
	assert.Equal(t, uint64(1), cfg.Seed)
	assert.Equal(t, "euclidean", cfg.Metric)
}

func TestLoadConfigMetric(t *testing.T) {
	cfg, err := loadConfig([]string{noEnvFile(t), "--query", "1,2", "--metric", "squared"})
	require.NoError(t, err)
	m, err := cfg.metric()
	require.NoError(t, err)
	assert.Equal(t, distance.MetricSquaredEuclidean, m)

	_, err = loadConfig([]string{noEnvFile(t), "--query", "1,2", "--metric", "manhattan"})
	assert.ErrorIs(t, err, distance.ErrUnknownMetric)
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := loadConfig([]string{
		noEnvFile(t),
		"--store", "minio", "--bucket", "geo", "--access-key", "ak",
		"--generate", "100", "--format", "shp", "--compress", "zst",
		"--executor", "pool", "--workers", "4", "--cache-mb", "64",
	})
	require.NoError(t, err)

	assert.Equal(t, "minio", cfg.Store)
	assert.Equal(t, "geo", cfg.Bucket)
	assert.Equal(t, "ak", cfg.AccessKey)
	assert.Equal(t, 100, cfg.Generate)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 64, cfg.CacheMB)

	f, err := cfg.format()
	require.NoError(t, err)
	assert.Equal(t, partition.FormatShapefile, f)
	c, err := cfg.compression()
	require.NoError(t, err)
	assert.Equal(t, partition.CompressionZstd, c)
}

func TestLoadConfigEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "geoknn.yaml")
	require.NoError(t, os.WriteFile(file, []byte("dataset: from-file\nk: 3\nlog_level: debug\n"), 0o600))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GEOKNN_PARTITIONS=12\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("GEOKNN_PARTITIONS") })

	t.Setenv("GEOKNN_K", "7")

	cfg, err := loadConfig([]string{"--env-file", envFile, "--config", file, "--query", "0,0"})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Dataset)
	assert.Equal(t, 7, cfg.K)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 12, cfg.Partitions)

	cfg, err = loadConfig([]string{"--env-file", envFile, "--config", file, "--query", "0,0", "--k", "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.K)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"NothingToDo", nil},
		{"UnknownStore", []string{"--store", "ftp", "--query", "1,1"}},
		{"BucketRequired", []string{"--store", "s3", "--query", "1,1"}},
		{"UnknownCatalog", []string{"--catalog", "etcd", "--query", "1,1"}},
		{"UnknownExecutor", []string{"--executor", "cluster", "--query", "1,1"}},
		{"BadFormat", []string{"--format", "csv", "--generate", "1"}},
		{"BadCompression", []string{"--compress", "gzip", "--generate", "1"}},
		{"BadQuery", []string{"--query", "1;2"}},
		{"MissingConfig", []string{"--config", "/does/not/exist.yaml", "--query", "1,1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(append([]string{noEnvFile(t)}, tt.args...))
			assert.Error(t, err)
		})
	}

	_, err := loadConfig([]string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint(" 13.4, 52.5 ")
	require.NoError(t, err)
	assert.Equal(t, model.Point{13.4, 52.5}, p)

	for _, s := range []string{"", "1", "a,1", "1,b"} {
		_, err := parsePoint(s)
		assert.Error(t, err, s)
	}
}
