package sheet

import (
	"context"
	"sync"
)

// MemoryStore keeps worksheets in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	sheets map[string][]Row
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sheets: make(map[string][]Row)}
}

func (m *MemoryStore) Read(_ context.Context, worksheet string) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.sheets[worksheet]
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = clone(r)
	}
	return out, nil
}

func (m *MemoryStore) Append(_ context.Context, worksheet string, columns []string, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make(Row, len(columns))
	for i, v := range ordered(columns, row) {
		stored[columns[i]] = v
	}
	m.sheets[worksheet] = append(m.sheets[worksheet], stored)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func clone(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
