package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/storage"
)

// HistoricalTradeStore is an in-memory implementation of storage.HistoricalTradeStore.
type HistoricalTradeStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.HistoricalTrade // keyed by pool ID
}

// NewHistoricalTradeStore creates a new in-memory historical trade store.
func NewHistoricalTradeStore() *HistoricalTradeStore {
	return &HistoricalTradeStore{
		data: make(map[string][]*domain.HistoricalTrade),
	}
}

// InsertBulk adds multiple trades for a pool.
func (s *HistoricalTradeStore) InsertBulk(_ context.Context, poolID string, trades []*domain.HistoricalTrade) error {
	if poolID == "" {
		return storage.ErrInvalidInput
	}
	if len(trades) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, trade := range trades {
		if trade == nil {
			return storage.ErrInvalidInput
		}
		copy := *trade
		s.data[poolID] = append(s.data[poolID], &copy)
	}

	return nil
}

// GetHistoricalTrades retrieves trades for a pool within [start, end), ordered by timestamp ASC.
func (s *HistoricalTradeStore) GetHistoricalTrades(_ context.Context, poolID string, start, end time.Time) ([]*domain.HistoricalTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.HistoricalTrade
	for _, trade := range s.data[poolID] {
		if !trade.Timestamp.Before(start) && trade.Timestamp.Before(end) {
			copy := *trade
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

var _ storage.HistoricalTradeStore = (*HistoricalTradeStore)(nil)
