// Package memstore provides an in-memory record store for development and
// testing.
package memstore

import (
	"context"
	"sort"
	"sync"

	leadgenius "github.com/ronfux/LeadGenius"
	"github.com/ronfux/LeadGenius/record"
)

// Ensure Store implements record.Store at compile time.
var _ record.Store = (*Store)(nil)

// Store is a mutex-guarded map of records keyed by task ID. Reads and
// writes copy records so callers never share memory with the store.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record.Record
	closed  bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		records: make(map[string]*record.Record),
	}
}

// Save persists a copy of the record, overwriting any existing record for
// the same task ID.
func (m *Store) Save(_ context.Context, r *record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return leadgenius.ErrStoreClosed
	}

	cp := *r
	m.records[r.TaskID] = &cp
	return nil
}

// Get retrieves a copy of the record for a task ID.
func (m *Store) Get(_ context.Context, taskID string) (*record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, leadgenius.ErrStoreClosed
	}

	r, ok := m.records[taskID]
	if !ok {
		return nil, leadgenius.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

// List returns copies of all records in ascending Seq order, ties broken by
// task ID.
func (m *Store) List(_ context.Context) ([]*record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, leadgenius.ErrStoreClosed
	}

	result := make([]*record.Record, 0, len(m.records))
	for _, r := range m.records {
		cp := *r
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, k int) bool {
		if result[i].Seq != result[k].Seq {
			return result[i].Seq < result[k].Seq
		}
		return result[i].TaskID < result[k].TaskID
	})

	return result, nil
}

// Close marks the store closed; all later calls fail with ErrStoreClosed.
func (m *Store) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
