package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"uniswap-sim-lab/internal/storage"
)

func TestKeyLayout(t *testing.T) {
	if got := progressKey("sim_abc"); got != "simulation:sim_abc:progress" {
		t.Errorf("progressKey = %q", got)
	}
	if got := tradeKey("sim_abc", 3); got != "trade:sim_abc:3" {
		t.Errorf("tradeKey = %q", got)
	}
	if got := tradeIndexKey("sim_abc"); got != "idx:trades:sim_abc" {
		t.Errorf("tradeIndexKey = %q", got)
	}
}

func TestProgressEntryEncoding(t *testing.T) {
	data, err := json.Marshal(progressEntry{Progress: 60, Timestamp: 1700000000000})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"progress":60,"timestamp":1700000000000}`
	if string(data) != want {
		t.Errorf("entry = %s, want %s", data, want)
	}
}

func TestRecordProgressValidation(t *testing.T) {
	// Validation runs before any network call, so no client is needed.
	s := &ProgressStore{now: time.Now}

	cases := []struct {
		name         string
		simulationID string
		progress     int
	}{
		{"empty id", "", 20},
		{"negative progress", "sim_abc", -1},
		{"progress over 100", "sim_abc", 101},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.RecordProgress(context.Background(), tc.simulationID, tc.progress)
			if !errors.Is(err, storage.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestTradeCacheInsertValidation(t *testing.T) {
	c := NewTradeCache(&Client{}, 0)
	if c.ttl != DefaultTradeTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTradeTTL)
	}

	if err := c.Insert(context.Background(), "", "pool", nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if err := c.Insert(context.Background(), "sim_abc", "pool", nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}
