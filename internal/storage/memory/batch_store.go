package memory

import (
	"sync"

	"github.com/JakeFAU/editorial-harvester/internal/orchestrator"
)

// BatchStore holds the most recent feed batch produced by a scheduled
// refresh.
type BatchStore struct {
	mu     sync.RWMutex
	latest *orchestrator.Batch
}

// NewBatchStore creates an empty BatchStore.
func NewBatchStore() *BatchStore {
	return &BatchStore{}
}

// Put replaces the cached batch with a copy of batch.
func (s *BatchStore) Put(batch orchestrator.Batch) {
	b := batch
	b.Items = append(b.Items[:0:0], batch.Items...)
	b.FailedSources = append(b.FailedSources[:0:0], batch.FailedSources...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &b
}

// Latest returns the cached batch and whether one exists.
func (s *BatchStore) Latest() (orchestrator.Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return orchestrator.Batch{}, false
	}
	return *s.latest, true
}
