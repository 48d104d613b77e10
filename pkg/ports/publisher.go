package ports

import (
	"context"
	"strconv"
	"time"

	"github.com/aretw0/schemata/pkg/schema"
)

// ViolationEvent describes one document that failed validation.
type ViolationEvent struct {
	RunID      string            `json:"run_id"`
	Collection string            `json:"collection"`
	File       string            `json:"file"`
	Index      int               `json:"index"`
	Unreadable bool              `json:"unreadable,omitempty"`
	Error      string            `json:"error,omitempty"`
	Violations schema.Violations `json:"violations,omitempty"`
	At         time.Time         `json:"at"`
}

// Key identifies the document an event refers to.
func (e ViolationEvent) Key() string {
	if e.Unreadable {
		return e.Collection + "/" + e.File
	}
	return e.Collection + "/" + e.File + "#" + strconv.Itoa(e.Index)
}

// Publisher forwards violation events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, event ViolationEvent) error
	Close() error
}
