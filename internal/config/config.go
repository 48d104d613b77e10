// Package config resolves runtime settings from an optional schemata.yaml,
// SCHEMATA_* environment variables and defaults, in that order of precedence
// below command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "schemata.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCHEMATA_"

// Store kinds.
const (
	StoreNone   = "none"
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the resolved runtime configuration.
type Config struct {
	Dataset     string      `yaml:"dataset"`
	SchemaDir   string      `yaml:"schema_dir"`
	Format      string      `yaml:"format"`
	LogLevel    string      `yaml:"log_level"`
	LogFormat   string      `yaml:"log_format"`
	Concurrency int         `yaml:"concurrency"`
	Store       StoreConfig `yaml:"store"`
	Kafka       KafkaConfig `yaml:"kafka"`
	HTTP        HTTPConfig  `yaml:"http"`
}

// StoreConfig selects where reports are kept.
type StoreConfig struct {
	Kind          string        `yaml:"kind"`
	Path          string        `yaml:"path"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// KafkaConfig configures the violation publisher.
type KafkaConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Brokers   []string `yaml:"brokers"`
	Topic     string   `yaml:"topic"`
	Principal string   `yaml:"principal"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Dataset:     "dataset",
		Format:      "auto",
		LogLevel:    "warn",
		LogFormat:   "text",
		Concurrency: 4,
		Store: StoreConfig{
			Kind:      StoreNone,
			Path:      ".schemata/reports",
			RedisAddr: "localhost:6379",
		},
		Kafka: KafkaConfig{
			Topic: "schemata.violations",
		},
		HTTP: HTTPConfig{Port: 8080},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path tries FileName and tolerates its absence; an explicit
// path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// applyEnv overrides fields from SCHEMATA_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
		return nil
	}

	str("DATASET", &c.Dataset)
	str("SCHEMA_DIR", &c.SchemaDir)
	str("FORMAT", &c.Format)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("STORE", &c.Store.Kind)
	str("STORE_PATH", &c.Store.Path)
	str("REDIS_ADDR", &c.Store.RedisAddr)
	str("REDIS_PASSWORD", &c.Store.RedisPassword)
	str("KAFKA_TOPIC", &c.Kafka.Topic)
	str("KAFKA_PRINCIPAL", &c.Kafka.Principal)

	for key, dst := range map[string]*int{
		"CONCURRENCY": &c.Concurrency,
		"REDIS_DB":    &c.Store.RedisDB,
		"HTTP_PORT":   &c.HTTP.Port,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup(EnvPrefix + "STORE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSTORE_TTL: %w", EnvPrefix, err)
		}
		c.Store.TTL = d
	}
	if v, ok := lookup(EnvPrefix + "KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v, ok := lookup(EnvPrefix + "KAFKA_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sKAFKA_ENABLED: %w", EnvPrefix, err)
		}
		c.Kafka.Enabled = b
	}
	return nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	switch c.Store.Kind {
	case "", StoreNone, StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("store ttl must not be negative")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
