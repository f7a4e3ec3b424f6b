package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// SimulationIDPrefix is prepended to every simulation identifier.
const SimulationIDPrefix = "sim_"

// simulationIDHexLen is the number of hash characters kept after the prefix.
const simulationIDHexLen = 16

// ComputeSimulationID computes a deterministic simulation_id using SHA256.
// Formula: sim_ + SHA256(pool_id|start_unix|end_unix|started_at_nanos)[:16]
// Two runs over the same window get distinct IDs through started_at_nanos.
func ComputeSimulationID(poolID string, start, end time.Time, startedAtNanos int64) string {
	data := fmt.Sprintf("%s|%d|%d|%d",
		poolID,
		start.Unix(),
		end.Unix(),
		startedAtNanos,
	)

	hash := sha256.Sum256([]byte(data))
	return SimulationIDPrefix + hex.EncodeToString(hash[:])[:simulationIDHexLen]
}
