package clickhouse

import (
	"context"
	"fmt"
	"time"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/storage"
)

// HistoricalTradeStore implements storage.HistoricalTradeStore using ClickHouse.
// Archived swaps are append-only; MergeTree does not enforce uniqueness,
// so callers are responsible for not re-ingesting the same window twice.
type HistoricalTradeStore struct {
	conn *Conn
}

// NewHistoricalTradeStore creates a new HistoricalTradeStore.
func NewHistoricalTradeStore(conn *Conn) *HistoricalTradeStore {
	return &HistoricalTradeStore{conn: conn}
}

// Compile-time interface check.
var _ storage.HistoricalTradeStore = (*HistoricalTradeStore)(nil)

// InsertBulk adds multiple trades for a pool via a prepared batch.
func (s *HistoricalTradeStore) InsertBulk(ctx context.Context, poolID string, trades []*domain.HistoricalTrade) error {
	if poolID == "" {
		return storage.ErrInvalidInput
	}
	if len(trades) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO historical_trades (
			pool_id, ts, price, amount_usd, side
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range trades {
		if t == nil {
			return storage.ErrInvalidInput
		}
		err = batch.Append(
			poolID, t.Timestamp, t.Price, t.AmountUSD, string(t.Side),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetHistoricalTrades retrieves trades for a pool within [start, end), ordered by timestamp ASC.
func (s *HistoricalTradeStore) GetHistoricalTrades(ctx context.Context, poolID string, start, end time.Time) ([]*domain.HistoricalTrade, error) {
	query := `
		SELECT ts, price, amount_usd, side
		FROM historical_trades
		WHERE pool_id = ? AND ts >= ? AND ts < ?
		ORDER BY ts ASC
	`

	rows, err := s.conn.Query(ctx, query, poolID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query historical trades: %w", err)
	}
	defer rows.Close()

	return scanHistoricalTrades(rows)
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanHistoricalTrades scans multiple rows into a slice of HistoricalTrade.
func scanHistoricalTrades(rows chRows) ([]*domain.HistoricalTrade, error) {
	var trades []*domain.HistoricalTrade

	for rows.Next() {
		var t domain.HistoricalTrade
		var side string

		if err := rows.Scan(&t.Timestamp, &t.Price, &t.AmountUSD, &side); err != nil {
			return nil, fmt.Errorf("scan historical trade row: %w", err)
		}

		t.Side = domain.TradeSide(side)
		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate historical trade rows: %w", err)
	}

	return trades, nil
}
