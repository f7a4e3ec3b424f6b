package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/storage"
)

// ResultStore implements storage.ResultStore using PostgreSQL.
// The full result document is kept as JSONB next to a few queryable
// columns, since results are read back whole.
type ResultStore struct {
	pool *Pool
}

// NewResultStore creates a new ResultStore.
func NewResultStore(pool *Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ResultStore = (*ResultStore)(nil)

// Insert adds a completed result. Returns ErrDuplicateKey if simulation_id exists.
func (s *ResultStore) Insert(ctx context.Context, result *domain.SimulationResult) error {
	if result == nil || result.SimulationID == "" {
		return storage.ErrInvalidInput
	}

	doc, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal simulation result: %w", err)
	}

	query := `
		INSERT INTO simulation_results (
			simulation_id, is_live, used_extended_window,
			simulation_duration, total_trades, total_profit, result
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.pool.Exec(ctx, query,
		result.SimulationID, result.IsLiveSimulation, result.UsedExtendedWindow,
		result.SimulationDuration, result.Metrics.TotalTrades, result.Metrics.TotalProfit,
		doc,
	)
	if err != nil {
		return mapError("insert simulation result", err)
	}
	return nil
}

// GetByID retrieves a result by simulation ID. Returns ErrNotFound if not exists.
func (s *ResultStore) GetByID(ctx context.Context, simulationID string) (*domain.SimulationResult, error) {
	query := `
		SELECT result
		FROM simulation_results
		WHERE simulation_id = $1
	`

	var doc []byte
	if err := s.pool.QueryRow(ctx, query, simulationID).Scan(&doc); err != nil {
		return nil, mapError("get simulation result by id", err)
	}

	var result domain.SimulationResult
	if err := json.Unmarshal(doc, &result); err != nil {
		return nil, fmt.Errorf("decode simulation result: %w", err)
	}
	return &result, nil
}
