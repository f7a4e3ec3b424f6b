package storage

import (
	"context"
	"time"

	"uniswap-sim-lab/internal/domain"
)

// HistoricalTradeStore provides access to archived pool trades.
type HistoricalTradeStore interface {
	// InsertBulk adds multiple trades for a pool. Fails entire batch on error.
	InsertBulk(ctx context.Context, poolID string, trades []*domain.HistoricalTrade) error

	// GetHistoricalTrades retrieves trades for a pool within [start, end),
	// ordered by timestamp ASC.
	GetHistoricalTrades(ctx context.Context, poolID string, start, end time.Time) ([]*domain.HistoricalTrade, error)
}

// SimulatedTradeStore provides access to trades produced by simulation runs.
type SimulatedTradeStore interface {
	// Insert records a single simulated trade for a run.
	Insert(ctx context.Context, simulationID, poolID string, trade *domain.SimulationTrade) error

	// GetBySimulationID retrieves all trades for a run, ordered by timestamp ASC.
	GetBySimulationID(ctx context.Context, simulationID string) ([]*domain.SimulationTrade, error)
}

// ProgressStore provides persistence for run progress checkpoints.
// Writes are best-effort from the runner's point of view: a failed
// write must never abort a simulation.
type ProgressStore interface {
	// RecordProgress appends a progress checkpoint (0-100) for a run.
	RecordProgress(ctx context.Context, simulationID string, progress int) error

	// GetProgress returns the most recent checkpoint for a run.
	// Returns ErrNotFound if no progress has been recorded yet.
	GetProgress(ctx context.Context, simulationID string) (int, error)
}

// ResultStore provides access to completed simulation results.
type ResultStore interface {
	// Insert adds a completed result. Returns ErrDuplicateKey if simulation_id exists.
	Insert(ctx context.Context, result *domain.SimulationResult) error

	// GetByID retrieves a result by simulation ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, simulationID string) (*domain.SimulationResult, error)
}
