package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/schemata/internal/config"
	"github.com/aretw0/schemata/pkg/adapters/file"
	"github.com/aretw0/schemata/pkg/adapters/kafka"
	loamAdapter "github.com/aretw0/schemata/pkg/adapters/loam"
	"github.com/aretw0/schemata/pkg/adapters/memory"
	"github.com/aretw0/schemata/pkg/adapters/redis"
	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/observability"
	"github.com/aretw0/schemata/pkg/ports"
	"github.com/aretw0/schemata/pkg/runner"
)

// buildCatalog returns the built-in schemas merged with cfg.SchemaDir.
func buildCatalog(cfg config.Config) (*catalog.Catalog, error) {
	cat := catalog.Builtin()
	if cfg.SchemaDir == "" {
		return cat, nil
	}
	extra, err := catalog.LoadDir(cfg.SchemaDir)
	if err != nil {
		return nil, err
	}
	cat.Merge(extra)
	return cat, nil
}

// reloadCatalog replaces cat with the built-in schemas plus everything the
// loader currently sees.
func reloadCatalog(ctx context.Context, cat *catalog.Catalog, loader *loamAdapter.Loader) error {
	loaded, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	merged := catalog.Builtin().Snapshot()
	for name, node := range loaded {
		merged[name] = node
	}
	return cat.Replace(merged)
}

// refreshCatalog applies the change of a single schema document. Removed
// documents and documents that now name another collection fall back to a
// full reload.
func refreshCatalog(ctx context.Context, cat *catalog.Catalog, loader *loamAdapter.Loader, id string) error {
	previous, known := loader.Owner(id)
	name, node, err := loader.Get(ctx, id)
	if err != nil || (known && previous != name) {
		return reloadCatalog(ctx, cat, loader)
	}
	return cat.Register(name, node)
}

// watchCatalog refreshes cat on every schema change until ctx is done. Each
// successful refresh is passed to notify.
func watchCatalog(ctx context.Context, logger *slog.Logger, cat *catalog.Catalog, loader *loamAdapter.Loader, notify func(id string)) error {
	events, err := loader.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for id := range events {
			if err := refreshCatalog(ctx, cat, loader, id); err != nil {
				logger.Error("schema reload failed", "id", id, "err", err)
				continue
			}
			logger.Info("schemas reloaded", "id", id, "schemas", cat.Len())
			if notify != nil {
				notify(id)
			}
		}
	}()
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// errEphemeralStore rejects the memory store in commands that exit right
// after saving, where nothing could ever read the report back.
var errEphemeralStore = errors.New("store kind memory only lives as long as the process; use it with serve, or pick file or redis")

// openStore builds the configured report store. It returns a nil store for
// kind none. The memory store is only accepted for long-running commands.
func openStore(ctx context.Context, cfg config.StoreConfig, longRunning bool) (ports.ReportStore, io.Closer, error) {
	switch cfg.Kind {
	case "", config.StoreNone:
		return nil, nopCloser{}, nil
	case config.StoreMemory:
		if !longRunning {
			return nil, nil, errEphemeralStore
		}
		return memory.NewStore(), nopCloser{}, nil
	case config.StoreFile:
		return file.New(cfg.Path), nopCloser{}, nil
	case config.StoreRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.TTL))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis store at %s: %w", cfg.RedisAddr, err)
		}
		return store, store, nil
	}
	return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
}

// runnerOptions wires the store, locker, publisher and metrics selected by cfg.
func runnerOptions(cfg config.Config, logger *slog.Logger, cat *catalog.Catalog, store ports.ReportStore, pub ports.Publisher, metrics *observability.Metrics) []runner.Option {
	opts := []runner.Option{
		runner.WithCatalog(cat),
		runner.WithLogger(logger),
		runner.WithConcurrency(cfg.Concurrency),
	}
	if metrics != nil {
		opts = append(opts, runner.WithHooks(metrics.Hooks()))
	}
	if store != nil {
		opts = append(opts, runner.WithStore(store))
	}
	if rs, ok := store.(*redis.Store); ok {
		opts = append(opts, runner.WithLocker(redis.NewLocker(rs.Client(), redis.DefaultLockPrefix), runner.DefaultLockTTL))
	}
	if pub != nil {
		opts = append(opts, runner.WithPublisher(pub))
	}
	return opts
}

func newPublisher(cfg config.KafkaConfig, logger *slog.Logger, metrics *observability.Metrics) *kafka.Publisher {
	opts := []kafka.Option{kafka.WithLogger(logger)}
	if metrics != nil {
		opts = append(opts, kafka.WithRecorder(metrics))
	}
	return kafka.New(&kafka.Config{
		Brokers:   cfg.Brokers,
		Topic:     cfg.Topic,
		Principal: cfg.Principal,
		Enabled:   cfg.Enabled,
	}, opts...)
}
