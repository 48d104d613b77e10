package runner_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/schemata/internal/testutils"
	"github.com/aretw0/schemata/pkg/adapters/memory"
	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/dataset"
	"github.com/aretw0/schemata/pkg/ports"
	"github.com/aretw0/schemata/pkg/report"
	"github.com/aretw0/schemata/pkg/runner"
	"github.com/aretw0/schemata/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validUsers = `[
  {"user_id": 1, "name": "Ana", "email": "ana@example.com",
   "preferences": {"vegan": true, "allergies": ["nuts"]}, "joined": "2023-05-01T10:00:00Z"},
  {"user_id": 2, "name": "Bo", "email": "bo@example.com",
   "preferences": {"vegan": false, "allergies": []}, "joined": "2023-06-01"}
]`

const invalidOrders = `[
  {"order_id": 1, "user_id": 1, "restaurant_id": 1, "items": [{"dish": "soup", "qty": 1, "price": 4.5}],
   "total": 4.5, "ordered_at": "2023-05-01T10:00:00Z", "delivered_at": "2023-05-01T10:30:00Z"},
  {"order_id": 2, "user_id": 1, "restaurant_id": 1, "items": [],
   "total": -1, "ordered_at": "2023-05-01T10:00:00Z", "delivered_at": "2023-05-01T10:30:00Z"}
]`

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.ViolationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e ports.ViolationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.Key())
	}
	return keys
}

func TestRunner_Run_ValidDataset(t *testing.T) {
	dir := testutils.Dataset(t, map[string]string{"users.json": validUsers})

	rep, err := runner.New().Run(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, rep.Files, 1)
	assert.Equal(t, report.StatusValid, rep.Files[0].Status)
	assert.Equal(t, 2, rep.Files[0].Documents)
	assert.Equal(t, report.OutcomeValid, rep.Outcome())
	assert.NotEmpty(t, rep.ID)
	assert.False(t, rep.FinishedAt.Before(rep.StartedAt))
}

func TestRunner_Run_MixedDataset(t *testing.T) {
	dir := testutils.Dataset(t, map[string]string{
		"users.json":   validUsers,
		"orders.json":  invalidOrders,
		"reviews.json": `[{"stars": 5}]`,
		"broken.json":  `[{"a":`,
		"notes.txt":    "ignored",
	})

	// broken is unknown too, so register a schema to force a read.
	cat := catalog.Builtin()
	require.NoError(t, cat.Register("broken", schema.ObjectSchema()))

	rep, err := runner.New(runner.WithCatalog(cat)).Run(context.Background(), dir)
	require.NoError(t, err)

	names := make([]string, 0, len(rep.Files))
	for _, f := range rep.Files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"broken.json", "orders.json", "reviews.json", "users.json"}, names)

	assert.Equal(t, report.StatusUnreadable, rep.Files[0].Status)
	assert.Contains(t, rep.Files[0].Error, "broken.json")

	orders := rep.Files[1]
	assert.Equal(t, report.StatusInvalid, orders.Status)
	assert.Equal(t, 2, orders.Documents)
	require.Len(t, orders.Invalid, 1)
	assert.Equal(t, 1, orders.Invalid[0].Index)
	assert.Equal(t, []string{"items: minItems 1", "total: minimum 0"}, orders.Invalid[0].Violations.Strings())

	assert.Equal(t, report.StatusSkipped, rep.Files[2].Status)
	assert.Equal(t, report.StatusValid, rep.Files[3].Status)
	assert.Equal(t, report.OutcomeInvalid, rep.Outcome())
}

func TestRunner_Run_MissingDirectory(t *testing.T) {
	rep, err := runner.New().Run(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Nil(t, rep)
	assert.ErrorIs(t, err, dataset.ErrSourceMissing)
}

func TestRunner_Run_EmptyDirectoryIsValid(t *testing.T) {
	rep, err := runner.New().Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, rep.Files)
	assert.Equal(t, report.OutcomeValid, rep.Outcome())
}

func TestRunner_Run_PreservesOrderUnderConcurrency(t *testing.T) {
	files := map[string]string{}
	cat := catalog.New()
	want := []string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files[name+".json"] = `[1, 2, 3]`
		require.NoError(t, cat.Register(name, schema.IntegerSchema()))
		want = append(want, name)
	}
	dir := testutils.Dataset(t, files)

	rep, err := runner.New(runner.WithCatalog(cat), runner.WithConcurrency(3)).Run(context.Background(), dir)
	require.NoError(t, err)

	got := make([]string, 0, len(rep.Files))
	for _, f := range rep.Files {
		got = append(got, f.Collection)
		assert.Equal(t, 3, f.Documents)
	}
	assert.Equal(t, want, got)
}

func TestRunner_Run_Hooks(t *testing.T) {
	dir := testutils.Dataset(t, map[string]string{
		"orders.json":  invalidOrders,
		"unknown.json": `{}`,
	})

	var mu sync.Mutex
	started, done := map[string]bool{}, map[string]report.Status{}
	var docs []int

	hooks := runner.Hooks{
		OnFileStart: func(_ context.Context, e *runner.FileEvent) {
			mu.Lock()
			defer mu.Unlock()
			started[e.File] = true
		},
		OnFileDone: func(_ context.Context, e *runner.FileEvent) {
			mu.Lock()
			defer mu.Unlock()
			done[e.File] = e.Status
		},
		OnDocument: func(_ context.Context, e *runner.DocumentEvent) {
			mu.Lock()
			defer mu.Unlock()
			docs = append(docs, e.Index)
			if e.Index == 1 {
				assert.False(t, e.Valid())
			}
		},
	}

	_, err := runner.New(runner.WithHooks(runner.ChainHooks(hooks, runner.Hooks{}))).Run(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, started["orders.json"])
	assert.True(t, started["unknown.json"])
	assert.Equal(t, report.StatusInvalid, done["orders.json"])
	assert.Equal(t, report.StatusSkipped, done["unknown.json"])
	assert.Equal(t, []int{0, 1}, docs)
}

func TestRunner_Run_StoreAndPublisher(t *testing.T) {
	dir := testutils.Dataset(t, map[string]string{
		"orders.json": invalidOrders,
		"users.json":  `{"name": 1}`,
		"bad.json":    `nope`,
	})
	cat := catalog.Builtin()
	require.NoError(t, cat.Register("bad", schema.ObjectSchema()))

	store := memory.NewStore()
	pub := &recordingPublisher{}
	fixed := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	r := runner.New(
		runner.WithCatalog(cat),
		runner.WithStore(store),
		runner.WithPublisher(pub),
		runner.WithClock(func() time.Time { return fixed }),
		runner.WithIDGenerator(func(time.Time) string { return "run-1" }),
		runner.WithConcurrency(1),
	)
	rep, err := r.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "run-1", rep.ID)

	saved, err := store.Load(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, rep.Summary(), saved.Summary())

	assert.Equal(t, []string{"bad/bad.json", "orders/orders.json#1", "users/users.json#0"}, pub.keys())
	for _, e := range pub.events {
		assert.Equal(t, "run-1", e.RunID)
		assert.Equal(t, fixed, e.At)
	}
}

func TestRunner_Run_PublisherErrorsDoNotFailRun(t *testing.T) {
	dir := testutils.Dataset(t, map[string]string{"orders.json": invalidOrders})
	pub := &recordingPublisher{err: errors.New("broker down")}

	rep, err := runner.New(runner.WithPublisher(pub)).Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, report.OutcomeInvalid, rep.Outcome())
	assert.Len(t, pub.keys(), 1)
}

type failingStore struct{ memory.Store }

func (*failingStore) Save(context.Context, *report.Report) error { return errors.New("disk full") }

func TestRunner_Run_StoreFailure(t *testing.T) {
	dir := testutils.Dataset(t, map[string]string{"users.json": validUsers})

	rep, err := runner.New(runner.WithStore(&failingStore{})).Run(context.Background(), dir)
	assert.ErrorIs(t, err, runner.ErrPersist)
	require.NotNil(t, rep, "the report survives a persistence failure")
	assert.Equal(t, report.OutcomeValid, rep.Outcome())
}

func TestRunner_Run_Cancelled(t *testing.T) {
	dir := testutils.Dataset(t, map[string]string{"users.json": validUsers})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := runner.New().Run(ctx, dir)
	assert.Nil(t, rep)
	assert.ErrorIs(t, err, context.Canceled)
}

type stubLocker struct {
	keys     []string
	unlocked int
	err      error
}

func (l *stubLocker) Lock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.unlocked++
		return nil
	}, nil
}

func TestRunner_Run_Locker(t *testing.T) {
	dir := testutils.Dataset(t, map[string]string{"users.json": validUsers})

	locker := &stubLocker{}
	_, err := runner.New(runner.WithLocker(locker, time.Minute)).Run(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, locker.keys, 1)
	assert.Equal(t, "run:"+filepath.ToSlash(dir), locker.keys[0])
	assert.Equal(t, 1, locker.unlocked)

	busy := &stubLocker{err: context.DeadlineExceeded}
	_, err = runner.New(runner.WithLocker(busy, 0)).Run(context.Background(), dir)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRunID(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	id := runner.NewRunID(at)
	assert.Regexp(t, `^20240102T030405Z-[0-9a-f]{8}$`, id)
	assert.NotEqual(t, id, runner.NewRunID(at))
}
