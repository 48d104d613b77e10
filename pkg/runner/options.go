package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/ports"
)

// DefaultConcurrency is the number of files validated in parallel.
const DefaultConcurrency = 4

// DefaultLockTTL bounds how long a crashed runner can hold the dataset lock.
const DefaultLockTTL = 5 * time.Minute

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithCatalog sets the schemas files are validated against.
// Defaults to catalog.Builtin().
func WithCatalog(c *catalog.Catalog) Option {
	return func(r *Runner) {
		r.catalog = c
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks Hooks) Option {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithConcurrency bounds the number of files validated at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithStore persists every finished report.
func WithStore(store ports.ReportStore) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// WithPublisher forwards every invalid or unreadable document.
func WithPublisher(p ports.Publisher) Option {
	return func(r *Runner) {
		r.publisher = p
	}
}

// WithLocker serializes runs over the same directory across processes.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(r *Runner) {
		r.locker = l
		if ttl > 0 {
			r.lockTTL = ttl
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithIDGenerator overrides how run IDs are generated.
func WithIDGenerator(gen func(time.Time) string) Option {
	return func(r *Runner) {
		r.newID = gen
	}
}
