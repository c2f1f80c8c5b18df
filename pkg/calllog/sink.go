package calllog

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/hostline/pkg/outcome"
)

// Sink stores call-log records.
type Sink interface {
	Append(ctx context.Context, rec outcome.Record) error
}

// MemorySink keeps records in memory. It is safe for concurrent use.
type MemorySink struct {
	mu      sync.Mutex
	records []outcome.Record
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Append(_ context.Context, rec outcome.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// Records returns a copy of everything appended so far.
func (m *MemorySink) Records() []outcome.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.records)
}
