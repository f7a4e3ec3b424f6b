package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/storage"
)

// SimulatedTradeStore implements storage.SimulatedTradeStore using PostgreSQL.
type SimulatedTradeStore struct {
	pool *Pool
}

// NewSimulatedTradeStore creates a new SimulatedTradeStore.
func NewSimulatedTradeStore(pool *Pool) *SimulatedTradeStore {
	return &SimulatedTradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SimulatedTradeStore = (*SimulatedTradeStore)(nil)

// Insert records a single simulated trade for a run.
func (s *SimulatedTradeStore) Insert(ctx context.Context, simulationID, poolID string, trade *domain.SimulationTrade) error {
	if simulationID == "" || trade == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO simulated_trades (
			simulation_id, pool_id, ts, trade_type,
			price, amount, confidence, reasoning, profit
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		simulationID, poolID, trade.Timestamp, string(trade.Type),
		trade.Price, trade.Amount, trade.Confidence, trade.Reasoning, trade.Profit,
	)
	if err != nil {
		return mapError("insert simulated trade", err)
	}
	return nil
}

// GetBySimulationID retrieves all trades for a run, ordered by timestamp ASC.
func (s *SimulatedTradeStore) GetBySimulationID(ctx context.Context, simulationID string) ([]*domain.SimulationTrade, error) {
	query := `
		SELECT ts, trade_type, price, amount, confidence, reasoning, profit
		FROM simulated_trades
		WHERE simulation_id = $1
		ORDER BY ts ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, simulationID)
	if err != nil {
		return nil, mapError("get simulated trades by simulation id", err)
	}
	defer rows.Close()

	return scanSimulatedTrades(rows)
}

// scanSimulatedTrades scans multiple rows into a slice of SimulationTrade.
func scanSimulatedTrades(rows pgx.Rows) ([]*domain.SimulationTrade, error) {
	var trades []*domain.SimulationTrade

	for rows.Next() {
		var t domain.SimulationTrade
		var tradeType string

		err := rows.Scan(
			&t.Timestamp, &tradeType, &t.Price, &t.Amount,
			&t.Confidence, &t.Reasoning, &t.Profit,
		)
		if err != nil {
			return nil, fmt.Errorf("scan simulated trade row: %w", err)
		}

		t.Type = domain.TradeType(tradeType)
		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate simulated trade rows: %w", err)
	}

	return trades, nil
}
