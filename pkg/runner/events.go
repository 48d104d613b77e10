package runner

import (
	"context"
	"time"

	"github.com/aretw0/schemata/pkg/report"
	"github.com/aretw0/schemata/pkg/schema"
)

// FileEvent describes one collection file entering or leaving the runner.
type FileEvent struct {
	RunID      string        `json:"run_id"`
	File       string        `json:"file"`
	Collection string        `json:"collection"`
	Status     report.Status `json:"status,omitempty"`
	Documents  int           `json:"documents,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Err        error         `json:"-"`
}

// DocumentEvent describes one validated document.
type DocumentEvent struct {
	RunID      string            `json:"run_id"`
	File       string            `json:"file"`
	Collection string            `json:"collection"`
	Index      int               `json:"index"`
	Violations schema.Violations `json:"violations,omitempty"`
}

// Valid reports whether the document satisfied its schema.
func (e *DocumentEvent) Valid() bool { return len(e.Violations) == 0 }

// Hooks defines callbacks for run observability.
// Files are processed concurrently, so hooks must be safe for concurrent use.
type Hooks struct {
	OnFileStart func(context.Context, *FileEvent)
	OnFileDone  func(context.Context, *FileEvent)
	OnDocument  func(context.Context, *DocumentEvent)
}

// ChainHooks fans each callback out to every non-nil hook in order.
func ChainHooks(all ...Hooks) Hooks {
	return Hooks{
		OnFileStart: func(ctx context.Context, e *FileEvent) {
			for _, h := range all {
				if h.OnFileStart != nil {
					h.OnFileStart(ctx, e)
				}
			}
		},
		OnFileDone: func(ctx context.Context, e *FileEvent) {
			for _, h := range all {
				if h.OnFileDone != nil {
					h.OnFileDone(ctx, e)
				}
			}
		},
		OnDocument: func(ctx context.Context, e *DocumentEvent) {
			for _, h := range all {
				if h.OnDocument != nil {
					h.OnDocument(ctx, e)
				}
			}
		},
	}
}

func (h Hooks) fileStart(ctx context.Context, e *FileEvent) {
	if h.OnFileStart != nil {
		h.OnFileStart(ctx, e)
	}
}

func (h Hooks) fileDone(ctx context.Context, e *FileEvent) {
	if h.OnFileDone != nil {
		h.OnFileDone(ctx, e)
	}
}

func (h Hooks) document(ctx context.Context, e *DocumentEvent) {
	if h.OnDocument != nil {
		h.OnDocument(ctx, e)
	}
}
