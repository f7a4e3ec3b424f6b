package memory

import (
	"context"
	"sync"

	"uniswap-sim-lab/internal/storage"
)

// ProgressStore is an in-memory implementation of storage.ProgressStore.
type ProgressStore struct {
	mu   sync.RWMutex
	data map[string][]int // checkpoint history, keyed by simulation ID
}

// NewProgressStore creates a new in-memory progress store.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		data: make(map[string][]int),
	}
}

// RecordProgress appends a progress checkpoint for a run.
func (s *ProgressStore) RecordProgress(_ context.Context, simulationID string, progress int) error {
	if simulationID == "" || progress < 0 || progress > 100 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[simulationID] = append(s.data[simulationID], progress)
	return nil
}

// GetProgress returns the most recent checkpoint for a run.
func (s *ProgressStore) GetProgress(_ context.Context, simulationID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[simulationID]
	if len(history) == 0 {
		return 0, storage.ErrNotFound
	}
	return history[len(history)-1], nil
}

// History returns all recorded checkpoints for a run, in order.
func (s *ProgressStore) History(simulationID string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int, len(s.data[simulationID]))
	copy(out, s.data[simulationID])
	return out
}

var _ storage.ProgressStore = (*ProgressStore)(nil)
