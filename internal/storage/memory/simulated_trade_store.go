package memory

import (
	"context"
	"sort"
	"sync"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/storage"
)

// SimulatedTradeStore is an in-memory implementation of storage.SimulatedTradeStore.
type SimulatedTradeStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.SimulationTrade // keyed by simulation ID
}

// NewSimulatedTradeStore creates a new in-memory simulated trade store.
func NewSimulatedTradeStore() *SimulatedTradeStore {
	return &SimulatedTradeStore{
		data: make(map[string][]*domain.SimulationTrade),
	}
}

// Insert records a single simulated trade for a run.
func (s *SimulatedTradeStore) Insert(_ context.Context, simulationID, _ string, trade *domain.SimulationTrade) error {
	if simulationID == "" || trade == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *trade
	if trade.Profit != nil {
		p := *trade.Profit
		copy.Profit = &p
	}
	s.data[simulationID] = append(s.data[simulationID], &copy)
	return nil
}

// GetBySimulationID retrieves all trades for a run, ordered by timestamp ASC.
func (s *SimulatedTradeStore) GetBySimulationID(_ context.Context, simulationID string) ([]*domain.SimulationTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SimulationTrade
	for _, trade := range s.data[simulationID] {
		copy := *trade
		if trade.Profit != nil {
			p := *trade.Profit
			copy.Profit = &p
		}
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

var _ storage.SimulatedTradeStore = (*SimulatedTradeStore)(nil)
