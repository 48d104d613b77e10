// Package kafka publishes violation events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/schemata/pkg/ports"
	"github.com/segmentio/kafka-go"
)

// DefaultTopic receives violation events when no topic is configured.
const DefaultTopic = "schemata.violations"

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers   []string
	Topic     string
	Principal string
	Enabled   bool
}

// Recorder observes publish attempts, e.g. observability.Metrics.
type Recorder interface {
	RecordPublish(topic string, err error, seconds float64)
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements ports.Publisher on top of a kafka-go writer.
// When disabled it only logs the events it would have sent.
type Publisher struct {
	writer    messageWriter
	topic     string
	principal string
	enabled   bool
	logger    *slog.Logger
	recorder  Recorder
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithRecorder reports every publish attempt to r.
func WithRecorder(r Recorder) Option {
	return func(p *Publisher) {
		p.recorder = r
	}
}

// withWriter replaces the kafka writer; used by tests.
func withWriter(w messageWriter) Option {
	return func(p *Publisher) {
		p.writer = w
		p.enabled = true
	}
}

// New creates a publisher. A nil config, Enabled=false or an empty broker
// list yields a log-only publisher.
func New(cfg *Config, opts ...Option) *Publisher {
	p := &Publisher{
		topic:  DefaultTopic,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if cfg != nil {
		p.principal = cfg.Principal
		if cfg.Topic != "" {
			p.topic = cfg.Topic
		}
	}

	if cfg != nil && cfg.Enabled && len(cfg.Brokers) > 0 {
		// Longer dial timeout for DNS resolution inside clusters.
		dialer := &kafka.Dialer{
			Timeout:   10 * time.Second,
			DualStack: true,
		}
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        p.topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
			Transport:    &kafka.Transport{Dial: dialer.DialFunc},
		}
		p.enabled = true
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.enabled {
		p.logger.Info("kafka publisher initialized", "topic", p.topic, "principal", p.principal)
	} else {
		p.logger.Info("kafka disabled, using log-only mode")
	}
	return p
}

// Enabled reports whether events reach a broker.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// Topic returns the destination topic.
func (p *Publisher) Topic() string {
	return p.topic
}

// Publish sends one event keyed by its document key so all events for the
// same document land on the same partition.
func (p *Publisher) Publish(ctx context.Context, event ports.ViolationEvent) error {
	start := time.Now()
	key := event.Key()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal violation event: %w", err)
	}

	p.logger.Debug("publishing violation event", "topic", p.topic, "key", key, "payload", string(payload))

	if !p.enabled || p.writer == nil {
		p.record(nil, start)
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType(event))},
			{Key: "principal", Value: []byte(p.principal)},
			{Key: "runId", Value: []byte(event.RunID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to write to kafka", "topic", p.topic, "key", key, "err", err)
		p.record(err, start)
		return fmt.Errorf("kafka write: %w", err)
	}

	p.record(nil, start)
	return nil
}

func (p *Publisher) record(err error, start time.Time) {
	if p.recorder != nil {
		p.recorder.RecordPublish(p.topic, err, time.Since(start).Seconds())
	}
}

func eventType(e ports.ViolationEvent) string {
	if e.Unreadable {
		return "unreadable"
	}
	return "invalid"
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		p.logger.Error("error closing kafka writer", "err", err)
		return err
	}
	return nil
}

var _ ports.Publisher = (*Publisher)(nil)
