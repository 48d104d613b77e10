package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/schemata/pkg/report"
	"github.com/aretw0/schemata/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleReport builds a small report with one invalid file.
func sampleReport(id string) *report.Report {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &report.Report{
		ID:         id,
		Dir:        "dataset",
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Files: []report.FileResult{
			{Name: "users.json", Collection: "users", Status: report.StatusValid, Documents: 2},
			{Name: "orders.json", Collection: "orders", Status: report.StatusInvalid, Documents: 1,
				Invalid: []report.DocumentResult{{
					Index: 0,
					Violations: schema.Violations{
						{Path: "items", Message: "minItems 1", Code: schema.CodeMinItems},
					},
				}},
			},
		},
	}
}

// RunReportStoreContract runs a suite of tests to verify that a ReportStore
// implementation adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ReportStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		r := sampleReport(runID)

		err := store.Save(ctx, r)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, r.ID, loaded.ID)
		assert.True(t, r.StartedAt.Equal(loaded.StartedAt))
		require.Len(t, loaded.Files, 2)
		assert.Equal(t, report.StatusInvalid, loaded.Files[1].Status)
		assert.Equal(t, r.Files[1].Invalid, loaded.Files[1].Invalid)
		assert.Equal(t, report.OutcomeInvalid, loaded.Outcome())
	})

	t.Run("Save requires ID", func(t *testing.T) {
		assert.Error(t, store.Save(ctx, sampleReport("")))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, ErrReportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sampleReport(runID))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, ErrReportNotFound, "Load after Delete should return ErrReportNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, sampleReport(id1))
		_ = store.Save(ctx, sampleReport(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
