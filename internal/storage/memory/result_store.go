package memory

import (
	"context"
	"sync"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/storage"
)

// ResultStore is an in-memory implementation of storage.ResultStore.
type ResultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SimulationResult // keyed by simulation ID
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		data: make(map[string]*domain.SimulationResult),
	}
}

// Insert adds a completed result. Returns ErrDuplicateKey if simulation_id exists.
func (s *ResultStore) Insert(_ context.Context, result *domain.SimulationResult) error {
	if result == nil || result.SimulationID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[result.SimulationID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *result
	s.data[result.SimulationID] = &copy
	return nil
}

// GetByID retrieves a result by simulation ID. Returns ErrNotFound if not exists.
func (s *ResultStore) GetByID(_ context.Context, simulationID string) (*domain.SimulationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, exists := s.data[simulationID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *result
	return &copy, nil
}

var _ storage.ResultStore = (*ResultStore)(nil)
