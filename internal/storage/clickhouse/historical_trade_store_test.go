package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/storage"
)

func TestHistoricalTradeStore_InsertAndQuery(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewHistoricalTradeStore(conn)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	trades := []*domain.HistoricalTrade{
		{Timestamp: base.Add(30 * time.Minute), Price: 2.5, AmountUSD: "2500.50", Side: domain.TradeSideSell},
		{Timestamp: base, Price: 2.4, AmountUSD: "1000", Side: domain.TradeSideBuy},
		{Timestamp: base.Add(2 * time.Hour), Price: 2.6, AmountUSD: "500", Side: domain.TradeSideBuy},
	}

	require.NoError(t, store.InsertBulk(ctx, "0xpool", trades))

	// [base, base+1h) excludes the trade two hours in
	got, err := store.GetHistoricalTrades(ctx, "0xpool", base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.True(t, got[0].Timestamp.Equal(base))
	assert.Equal(t, 2.4, got[0].Price)
	assert.Equal(t, "1000", got[0].AmountUSD)
	assert.Equal(t, domain.TradeSideBuy, got[0].Side)
	assert.Equal(t, domain.TradeSideSell, got[1].Side)
}

func TestHistoricalTradeStore_EmptyAndInvalid(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewHistoricalTradeStore(conn)

	// Empty batch is a no-op
	require.NoError(t, store.InsertBulk(ctx, "0xpool", nil))

	// Empty pool ID is rejected
	err := store.InsertBulk(ctx, "", []*domain.HistoricalTrade{{}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	// Unknown pool returns no rows
	got, err := store.GetHistoricalTrades(ctx, "0xmissing", time.Unix(0, 0), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}
