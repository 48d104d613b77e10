package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/schemata/pkg/ports"
	"github.com/aretw0/schemata/pkg/report"
)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*report.Report
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*report.Report),
	}
}

// Save keeps a copy of the report.
func (s *Store) Save(ctx context.Context, r *report.Report) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("report ID cannot be empty")
	}
	copied := clone(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[r.ID] = copied
	return nil
}

// Load retrieves the report from memory.
func (s *Store) Load(ctx context.Context, id string) (*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[id]
	if !ok {
		return nil, ports.ErrReportNotFound
	}

	// Copy on read so callers can't mutate stored reports through the pointer.
	return clone(r), nil
}

// Delete removes the report.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored report IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func clone(r *report.Report) *report.Report {
	copied := *r
	copied.Files = append([]report.FileResult(nil), r.Files...)
	return &copied
}
