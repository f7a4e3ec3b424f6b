// Package redis provides Redis-backed sinks for simulation runs.
// Progress checkpoints and simulated trades land here so dashboards
// can poll runs without touching the primary store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTradeTTL bounds how long cached simulated trades survive.
const DefaultTradeTTL = time.Hour

// Client wraps redis.Client with connection lifecycle helpers.
type Client struct {
	rdb *redis.Client
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func progressKey(simulationID string) string {
	return fmt.Sprintf("simulation:%s:progress", simulationID)
}

func tradeKey(simulationID string, seq int64) string {
	return fmt.Sprintf("trade:%s:%d", simulationID, seq)
}

func tradeIndexKey(simulationID string) string {
	return fmt.Sprintf("idx:trades:%s", simulationID)
}
