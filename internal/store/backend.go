package store

import (
	"context"
	"sync"

	"salesdash/internal/domain"
)

// Backend is the size-unlimited fallback tier. LoadRecords returns an empty
// slice when nothing is stored.
type Backend interface {
	LoadRecords(ctx context.Context) ([]domain.SalesRecord, error)
	ReplaceRecords(ctx context.Context, records []domain.SalesRecord) error
	ClearRecords(ctx context.Context) error
}

// MemoryBackend is a Backend that lives only as long as the process.
type MemoryBackend struct {
	mu      sync.Mutex
	records []domain.SalesRecord
	err     error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// FailWith makes every following call return err. A nil err restores
// normal behavior.
func (m *MemoryBackend) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryBackend) LoadRecords(context.Context) ([]domain.SalesRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.SalesRecord(nil), m.records...), nil
}

func (m *MemoryBackend) ReplaceRecords(_ context.Context, records []domain.SalesRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append([]domain.SalesRecord(nil), records...)
	return nil
}

func (m *MemoryBackend) ClearRecords(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = nil
	return nil
}
