package idhash

import (
	"strings"
	"testing"
	"time"
)

func TestComputeSimulationID(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	got := ComputeSimulationID("0xpool", start, end, 1704067200000000000)

	if !strings.HasPrefix(got, SimulationIDPrefix) {
		t.Errorf("ComputeSimulationID() = %s, want prefix %s", got, SimulationIDPrefix)
	}
	if len(got) != len(SimulationIDPrefix)+simulationIDHexLen {
		t.Errorf("ComputeSimulationID() length = %d, want %d", len(got), len(SimulationIDPrefix)+simulationIDHexLen)
	}

	// Verify determinism: same inputs should produce same output
	got2 := ComputeSimulationID("0xpool", start, end, 1704067200000000000)
	if got != got2 {
		t.Errorf("ComputeSimulationID() not deterministic: %s != %s", got, got2)
	}
}

func TestComputeSimulationID_DifferentInputs(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	base := ComputeSimulationID("0xpool", start, end, 1000)

	// Different pool should produce different ID
	diffPool := ComputeSimulationID("0xother", start, end, 1000)
	if base == diffPool {
		t.Error("Different pool should produce different ID")
	}

	// Different window should produce different ID
	diffWindow := ComputeSimulationID("0xpool", start, end.Add(time.Hour), 1000)
	if base == diffWindow {
		t.Error("Different window should produce different ID")
	}

	// Different start instant should produce different ID
	diffNanos := ComputeSimulationID("0xpool", start, end, 2000)
	if base == diffNanos {
		t.Error("Different start instant should produce different ID")
	}
}
