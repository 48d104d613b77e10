// Package report holds the result of validating a dataset directory.
package report

import (
	"time"

	"github.com/aretw0/schemata/pkg/schema"
)

// Status is the outcome of a single collection file.
type Status string

const (
	StatusValid      Status = "valid"
	StatusInvalid    Status = "invalid"
	StatusUnreadable Status = "unreadable"
	StatusSkipped    Status = "skipped"
)

// Outcome is the overall result of a run.
type Outcome int

const (
	// OutcomeValid means every validated document satisfied its schema.
	OutcomeValid Outcome = iota
	// OutcomeInvalid means at least one document was invalid or unreadable.
	OutcomeInvalid
	// OutcomeEnvironment means the dataset could not be accessed at all.
	OutcomeEnvironment
)

// Process exit codes per outcome.
const (
	ExitValid       = 0
	ExitInvalid     = 1
	ExitEnvironment = 2
)

// ExitCode maps an outcome to its process exit status.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeValid:
		return ExitValid
	case OutcomeInvalid:
		return ExitInvalid
	default:
		return ExitEnvironment
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "environment failure"
	}
}

// DocumentResult lists the violations of one invalid document.
type DocumentResult struct {
	Index      int               `json:"index"`
	Violations schema.Violations `json:"violations"`
}

// FileResult is the outcome of one collection file.
type FileResult struct {
	Name       string           `json:"name"`
	Collection string           `json:"collection"`
	Status     Status           `json:"status"`
	Error      string           `json:"error,omitempty"`
	Documents  int              `json:"documents"`
	Invalid    []DocumentResult `json:"invalid,omitempty"`
}

// Report is the result of one run over a dataset directory.
type Report struct {
	ID         string       `json:"id"`
	Dir        string       `json:"dir"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Files      []FileResult `json:"files"`
}

// Summary counts files and documents by outcome.
type Summary struct {
	Files      int `json:"files"`
	Valid      int `json:"valid"`
	Invalid    int `json:"invalid"`
	Unreadable int `json:"unreadable"`
	Skipped    int `json:"skipped"`
	Documents  int `json:"documents"`
	Violations int `json:"violations"`
}

// Summary aggregates the file results.
func (r *Report) Summary() Summary {
	var s Summary
	for _, f := range r.Files {
		s.Files++
		s.Documents += f.Documents
		switch f.Status {
		case StatusValid:
			s.Valid++
		case StatusInvalid:
			s.Invalid++
		case StatusUnreadable:
			s.Unreadable++
		case StatusSkipped:
			s.Skipped++
		}
		for _, d := range f.Invalid {
			s.Violations += len(d.Violations)
		}
	}
	return s
}

// Outcome is OutcomeInvalid when any file is invalid or unreadable.
// Skipped files do not affect the outcome.
func (r *Report) Outcome() Outcome {
	for _, f := range r.Files {
		if f.Status == StatusInvalid || f.Status == StatusUnreadable {
			return OutcomeInvalid
		}
	}
	return OutcomeValid
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
