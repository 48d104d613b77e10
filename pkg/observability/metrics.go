package observability

import (
	"context"

	"github.com/aretw0/schemata/pkg/report"
	"github.com/aretw0/schemata/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "schemata"

// Metrics holds the Prometheus collectors of the validator.
type Metrics struct {
	DocumentsTotal     *prometheus.CounterVec
	ViolationsTotal    *prometheus.CounterVec
	FilesTotal         *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec

	PublishTotal   *prometheus.CounterVec
	PublishErrors  *prometheus.CounterVec
	PublishLatency *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered, which suits tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DocumentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Total number of validated documents",
		}, []string{"collection", "result"}),
		ViolationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Total number of schema violations by rule",
		}, []string{"collection", "code"}),
		FilesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Total number of collection files by outcome",
		}, []string{"status"}),
		ValidationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Time spent reading and validating one collection file",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"collection"}),

		PublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Total number of violation events published",
		}, []string{"topic"}),
		PublishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total number of violation events that failed to publish",
		}, []string{"topic"}),
		PublishLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_latency_seconds",
			Help:      "Violation event publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordDocument counts one validated document and its violations.
func (m *Metrics) RecordDocument(collection string, violations []string) {
	result := "valid"
	if len(violations) > 0 {
		result = "invalid"
	}
	m.DocumentsTotal.WithLabelValues(collection, result).Inc()
	for _, code := range violations {
		m.ViolationsTotal.WithLabelValues(collection, code).Inc()
	}
}

// RecordFile counts one finished file.
func (m *Metrics) RecordFile(collection string, status report.Status, seconds float64) {
	m.FilesTotal.WithLabelValues(string(status)).Inc()
	if status == report.StatusValid || status == report.StatusInvalid {
		m.ValidationDuration.WithLabelValues(collection).Observe(seconds)
	}
}

// RecordPublish records one publish attempt.
func (m *Metrics) RecordPublish(topic string, err error, seconds float64) {
	m.PublishTotal.WithLabelValues(topic).Inc()
	if err != nil {
		m.PublishErrors.WithLabelValues(topic).Inc()
	}
	m.PublishLatency.WithLabelValues(topic).Observe(seconds)
}

// Hooks adapts the metrics to runner lifecycle callbacks.
func (m *Metrics) Hooks() runner.Hooks {
	return runner.Hooks{
		OnFileDone: func(_ context.Context, e *runner.FileEvent) {
			m.RecordFile(e.Collection, e.Status, e.Duration.Seconds())
		},
		OnDocument: func(_ context.Context, e *runner.DocumentEvent) {
			codes := make([]string, 0, len(e.Violations))
			for _, v := range e.Violations {
				codes = append(codes, string(v.Code))
			}
			m.RecordDocument(e.Collection, codes)
		},
	}
}
