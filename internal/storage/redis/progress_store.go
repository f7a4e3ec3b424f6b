package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"uniswap-sim-lab/internal/storage"
)

// ProgressStore is a Redis-backed implementation of storage.ProgressStore.
// Checkpoints are kept in a sorted set scored by wall-clock milliseconds,
// so consumers see the full history of a run, not just the latest value.
type ProgressStore struct {
	client *Client
	now    func() time.Time
}

// NewProgressStore creates a Redis progress store.
func NewProgressStore(client *Client) *ProgressStore {
	return &ProgressStore{
		client: client,
		now:    time.Now,
	}
}

type progressEntry struct {
	Progress  int   `json:"progress"`
	Timestamp int64 `json:"timestamp"`
}

// RecordProgress appends a progress checkpoint for a run.
func (s *ProgressStore) RecordProgress(ctx context.Context, simulationID string, progress int) error {
	if simulationID == "" || progress < 0 || progress > 100 {
		return storage.ErrInvalidInput
	}

	nowMs := s.now().UnixMilli()
	member, err := json.Marshal(progressEntry{Progress: progress, Timestamp: nowMs})
	if err != nil {
		return fmt.Errorf("marshal progress entry: %w", err)
	}

	err = s.client.rdb.ZAdd(ctx, progressKey(simulationID), redis.Z{
		Score:  float64(nowMs),
		Member: member,
	}).Err()
	if err != nil {
		return fmt.Errorf("record progress for %s: %w", simulationID, err)
	}
	return nil
}

// GetProgress returns the most recent checkpoint for a run.
func (s *ProgressStore) GetProgress(ctx context.Context, simulationID string) (int, error) {
	members, err := s.client.rdb.ZRevRange(ctx, progressKey(simulationID), 0, 0).Result()
	if err != nil {
		return 0, fmt.Errorf("get progress for %s: %w", simulationID, err)
	}
	if len(members) == 0 {
		return 0, storage.ErrNotFound
	}

	var entry progressEntry
	if err := json.Unmarshal([]byte(members[0]), &entry); err != nil {
		return 0, fmt.Errorf("decode progress entry: %w", err)
	}
	return entry.Progress, nil
}

var _ storage.ProgressStore = (*ProgressStore)(nil)
