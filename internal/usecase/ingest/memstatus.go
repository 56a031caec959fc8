package ingest

import (
	"context"
	"errors"
	"sync"

	domain "github.com/campushub/batch-ingest/internal/domain/ingest"
)

const ERR_BATCH_NOT_FOUND = "no batch found for the given batch id"

var ErrBatchNotFound = errors.New(ERR_BATCH_NOT_FOUND)

// MemoryStatusStore is a process-local status store for embedded and test
// use. Deployments that poll across processes use the Mongo-backed repo.
type MemoryStatusStore struct {
	mu        sync.RWMutex
	summaries map[string]*domain.BatchSummary
}

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{
		summaries: make(map[string]*domain.BatchSummary),
	}
}

// SaveSummary stores a copy of the summary under its batch id.
func (ms *MemoryStatusStore) SaveSummary(ctx context.Context, summary *domain.BatchSummary) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.summaries[summary.BatchId] = summary.Clone()
	return nil
}

// GetSummary returns a copy of the stored summary.
func (ms *MemoryStatusStore) GetSummary(ctx context.Context, batchId string) (*domain.BatchSummary, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	s, ok := ms.summaries[batchId]
	if !ok {
		return nil, ErrBatchNotFound
	}
	return s.Clone(), nil
}
