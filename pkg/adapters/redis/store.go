// Package redis persists run reports and coordinates runs through Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/schemata/pkg/ports"
	"github.com/aretw0/schemata/pkg/report"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces report keys.
const DefaultPrefix = "schemata:report:"

// DefaultLockPrefix namespaces run locks apart from reports: schemata:lock:<key>.
const DefaultLockPrefix = "schemata:"

// noExpiryScore is the index score of reports stored without a TTL (2100-01-01).
const noExpiryScore = 4102444800

// Store implements ports.ReportStore using Redis.
//
// Each report is a JSON string under prefix+ID. A sorted set under
// prefix+"index" tracks IDs scored by expiry so List can prune lazily.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for reports. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for reports.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the Redis server at address.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying connection so a Locker can share it.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Save stores the report and indexes its ID in a single pipeline.
func (s *Store) Save(ctx context.Context, r *report.Report) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("report ID cannot be empty")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	score := float64(noExpiryScore)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(r.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: r.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save report to redis: %w", err)
	}
	return nil
}

// Load fetches a report, mapping a missing key to ports.ErrReportNotFound.
func (s *Store) Load(ctx context.Context, id string) (*report.Report, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ports.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report from redis: %w", err)
	}

	var r report.Report
	if err := json.Unmarshal(val, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &r, nil
}

// Delete removes the report and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// List prunes expired index entries and returns the remaining IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired reports: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
