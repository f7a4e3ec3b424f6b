package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/storage"
)

// TradeCache is a Redis-backed implementation of storage.SimulatedTradeStore.
// Each trade lives under its own TTL-bounded key; a per-run sorted set
// indexes the keys so a run's trades can be listed before they expire.
type TradeCache struct {
	client *Client
	ttl    time.Duration
	seq    atomic.Int64
}

// NewTradeCache creates a Redis trade cache with the given TTL.
// Zero ttl falls back to DefaultTradeTTL.
func NewTradeCache(client *Client, ttl time.Duration) *TradeCache {
	if ttl <= 0 {
		ttl = DefaultTradeTTL
	}
	return &TradeCache{client: client, ttl: ttl}
}

type cachedTrade struct {
	PoolID string                  `json:"poolId"`
	Trade  *domain.SimulationTrade `json:"trade"`
}

// Insert records a single simulated trade for a run.
func (c *TradeCache) Insert(ctx context.Context, simulationID, poolID string, trade *domain.SimulationTrade) error {
	if simulationID == "" || trade == nil {
		return storage.ErrInvalidInput
	}

	payload, err := json.Marshal(cachedTrade{PoolID: poolID, Trade: trade})
	if err != nil {
		return fmt.Errorf("marshal simulated trade: %w", err)
	}

	seq := c.seq.Add(1)
	key := tradeKey(simulationID, seq)

	pipe := c.client.rdb.TxPipeline()
	pipe.Set(ctx, key, payload, c.ttl)
	pipe.ZAdd(ctx, tradeIndexKey(simulationID), redis.Z{
		Score:  float64(trade.Timestamp.UnixMilli()),
		Member: key,
	})
	pipe.Expire(ctx, tradeIndexKey(simulationID), c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache trade for %s: %w", simulationID, err)
	}
	return nil
}

// GetBySimulationID retrieves all cached trades for a run, ordered by timestamp ASC.
// Keys that expired between indexing and lookup are skipped.
func (c *TradeCache) GetBySimulationID(ctx context.Context, simulationID string) ([]*domain.SimulationTrade, error) {
	keys, err := c.client.rdb.ZRange(ctx, tradeIndexKey(simulationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list trades for %s: %w", simulationID, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := c.client.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch trades for %s: %w", simulationID, err)
	}

	var trades []*domain.SimulationTrade
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var entry cachedTrade
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("decode cached trade: %w", err)
		}
		trades = append(trades, entry.Trade)
	}

	sort.Slice(trades, func(i, j int) bool {
		return trades[i].Timestamp.Before(trades[j].Timestamp)
	})

	return trades, nil
}

var _ storage.SimulatedTradeStore = (*TradeCache)(nil)
