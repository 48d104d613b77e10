package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/dataset"
	"github.com/aretw0/schemata/pkg/ports"
	"github.com/aretw0/schemata/pkg/report"
	"github.com/aretw0/schemata/pkg/schema"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrPersist is returned alongside a complete report when the store rejects it.
var ErrPersist = errors.New("failed to persist report")

// Runner validates dataset directories against a catalog.
type Runner struct {
	catalog     *catalog.Catalog
	logger      *slog.Logger
	hooks       Hooks
	concurrency int
	store       ports.ReportStore
	publisher   ports.Publisher
	locker      ports.DistributedLocker
	lockTTL     time.Duration
	now         func() time.Time
	newID       func(time.Time) string
}

// New creates a Runner. Without options it validates against the bundled
// schemas, four files at a time, and keeps nothing.
func New(opts ...Option) *Runner {
	r := &Runner{
		concurrency: DefaultConcurrency,
		lockTTL:     DefaultLockTTL,
		now:         time.Now,
		newID:       NewRunID,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.catalog == nil {
		r.catalog = catalog.Builtin()
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Catalog returns the schemas the runner validates against.
func (r *Runner) Catalog() *catalog.Catalog {
	return r.catalog
}

// NewRunID returns a time-ordered unique run identifier.
func NewRunID(at time.Time) string {
	return at.UTC().Format("20060102T150405Z") + "-" + uuid.NewString()[:8]
}

// Run validates every collection file in dir.
//
// A missing or unusable directory returns an error wrapping
// dataset.ErrSourceMissing and no report. Unknown collections are skipped and
// unreadable files are recorded, neither aborts the run. Cancelling ctx does.
func (r *Runner) Run(ctx context.Context, dir string) (*report.Report, error) {
	src, err := dataset.Open(dir)
	if err != nil {
		return nil, err
	}

	if r.locker != nil {
		unlock, err := r.lock(ctx, dir)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				r.logger.Warn("failed to release run lock", "dir", dir, "err", err)
			}
		}()
	}

	files, err := src.Files()
	if err != nil {
		return nil, err
	}

	started := r.now()
	rep := &report.Report{
		ID:        r.newID(started),
		Dir:       dir,
		StartedAt: started,
	}
	logger := r.logger.With("run_id", rep.ID)
	logger.Info("run started", "dir", dir, "files", len(files), "concurrency", r.concurrency)

	results := make([]report.FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, f := range files {
		g.Go(func() error {
			res, err := r.runFile(gctx, logger, rep.ID, src, f)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run aborted: %w", err)
	}

	rep.Files = results
	rep.FinishedAt = r.now()

	sum := rep.Summary()
	logger.Info("run finished",
		"outcome", rep.Outcome().String(),
		"valid", sum.Valid,
		"invalid", sum.Invalid,
		"unreadable", sum.Unreadable,
		"skipped", sum.Skipped,
		"duration", rep.Duration(),
	)

	if r.store != nil {
		if err := r.store.Save(ctx, rep); err != nil {
			return rep, fmt.Errorf("%w: %v", ErrPersist, err)
		}
		logger.Debug("report saved", "id", rep.ID)
	}
	return rep, nil
}

func (r *Runner) lock(ctx context.Context, dir string) (ports.UnlockFunc, error) {
	key := dir
	if abs, err := filepath.Abs(dir); err == nil {
		key = abs
	}
	unlock, err := r.locker.Lock(ctx, "run:"+filepath.ToSlash(key), r.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	return unlock, nil
}

// runFile validates one file. Only context cancellation is returned as an error;
// every other problem is recorded on the result.
func (r *Runner) runFile(ctx context.Context, logger *slog.Logger, runID string, src *dataset.Source, f dataset.File) (report.FileResult, error) {
	res := report.FileResult{Name: f.Name, Collection: f.Collection}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	start := time.Now()
	event := &FileEvent{RunID: runID, File: f.Name, Collection: f.Collection}
	r.hooks.fileStart(ctx, event)

	finish := func(status report.Status, err error) (report.FileResult, error) {
		res.Status = status
		event.Status = status
		event.Documents = res.Documents
		event.Duration = time.Since(start)
		event.Err = err
		r.hooks.fileDone(ctx, event)
		return res, nil
	}

	node, ok := r.catalog.Lookup(f.Collection)
	if !ok {
		logger.Warn("no schema for collection, skipping", "file", f.Name, "collection", f.Collection)
		return finish(report.StatusSkipped, nil)
	}

	docs, err := src.Read(f)
	if err != nil {
		logger.Error("unreadable file", "file", f.Name, "err", err)
		res.Error = err.Error()
		r.publish(ctx, logger, ports.ViolationEvent{
			RunID:      runID,
			Collection: f.Collection,
			File:       f.Name,
			Unreadable: true,
			Error:      res.Error,
		})
		return finish(report.StatusUnreadable, err)
	}

	res.Documents = len(docs)
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		vs := schema.Validate(doc, node, "")
		r.hooks.document(ctx, &DocumentEvent{
			RunID:      runID,
			File:       f.Name,
			Collection: f.Collection,
			Index:      i,
			Violations: vs,
		})
		if len(vs) == 0 {
			continue
		}
		res.Invalid = append(res.Invalid, report.DocumentResult{Index: i, Violations: vs})
		r.publish(ctx, logger, ports.ViolationEvent{
			RunID:      runID,
			Collection: f.Collection,
			File:       f.Name,
			Index:      i,
			Violations: vs,
		})
	}

	if len(res.Invalid) > 0 {
		logger.Debug("invalid documents", "file", f.Name, "count", len(res.Invalid))
		return finish(report.StatusInvalid, nil)
	}
	return finish(report.StatusValid, nil)
}

// publish forwards an event. Sink failures are logged and never fail the run.
func (r *Runner) publish(ctx context.Context, logger *slog.Logger, event ports.ViolationEvent) {
	if r.publisher == nil {
		return
	}
	event.At = r.now()
	if err := r.publisher.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish violation event", "key", event.Key(), "err", err)
	}
}
