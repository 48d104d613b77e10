package ports

import (
	"context"
	"errors"

	"github.com/aretw0/schemata/pkg/report"
)

// ErrReportNotFound is returned when a report ID cannot be found in the store.
var ErrReportNotFound = errors.New("report not found")

// ReportStore defines the interface for persisting run reports.
type ReportStore interface {
	// Save persists the report under its ID.
	Save(ctx context.Context, r *report.Report) error

	// Load retrieves the report for a given ID.
	// Returns ErrReportNotFound if the report does not exist.
	Load(ctx context.Context, id string) (*report.Report, error)

	// Delete removes the report for a given ID.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of stored reports.
	List(ctx context.Context) ([]string, error)
}
