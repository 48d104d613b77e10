package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "dataset", cfg.Dataset)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, StoreNone, cfg.Store.Kind)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset: fixtures
schema_dir: schemas
concurrency: 2
store:
  kind: redis
  redis_addr: cache:6379
  ttl: 1h
kafka:
  enabled: true
  brokers: [k1:9092, k2:9092]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fixtures", cfg.Dataset)
	assert.Equal(t, "schemas", cfg.SchemaDir)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "schemata.violations", cfg.Kafka.Topic, "unset keys keep defaults")
}

func TestLoad_MissingFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err, "the implicit file is optional")
	assert.Equal(t, Default(), cfg)

	_, err = Load("nope.yaml")
	assert.Error(t, err, "an explicit file must exist")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(FileName, []byte("dataset: from-file\nconcurrency: 2\n"), 0o644))

	t.Setenv("SCHEMATA_DATASET", "from-env")
	t.Setenv("SCHEMATA_CONCURRENCY", "8")
	t.Setenv("SCHEMATA_KAFKA_BROKERS", "a:1, b:2")
	t.Setenv("SCHEMATA_STORE_TTL", "30m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Dataset)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Store.TTL)
}

func TestApplyEnv_Errors(t *testing.T) {
	tests := map[string]string{
		"SCHEMATA_CONCURRENCY":   "many",
		"SCHEMATA_STORE_TTL":     "soon",
		"SCHEMATA_KAFKA_ENABLED": "maybe",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := cfg.applyEnv(func(k string) (string, bool) {
				if k == key {
					return val, true
				}
				return "", false
			})
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Concurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Store.Kind = "s3"
	assert.Error(t, cfg.Validate())
}
