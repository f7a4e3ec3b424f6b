package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/simulation"
	"uniswap-sim-lab/internal/storage/memory"
)

type staticSource struct {
	trades []*domain.HistoricalTrade
}

func (s *staticSource) GetHistoricalTrades(_ context.Context, _ string, start, end time.Time) ([]*domain.HistoricalTrade, error) {
	var out []*domain.HistoricalTrade
	for _, t := range s.trades {
		if !t.Timestamp.Before(start) && t.Timestamp.Before(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func testTrades(start time.Time, n int) []*domain.HistoricalTrade {
	trades := make([]*domain.HistoricalTrade, 0, n)
	for i := 0; i < n; i++ {
		trades = append(trades, &domain.HistoricalTrade{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Price:     100 + 10*math.Sin(float64(i)/3),
			AmountUSD: "1000",
			Side:      domain.TradeSideBuy,
		})
	}
	return trades
}

func newTestServer(t *testing.T, start time.Time) (*httptest.Server, *memory.ResultStore) {
	t.Helper()

	results := memory.NewResultStore()
	progress := memory.NewProgressStore()

	runner := simulation.NewRunner(simulation.RunnerOptions{
		Source:        &staticSource{trades: testTrades(start, 45)},
		ProgressStore: progress,
	})

	srv := New(Options{
		Runner:        runner,
		ResultStore:   results,
		ProgressStore: progress,
	})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, results
}

func postSimulation(t *testing.T, ts *httptest.Server, params map[string]any) map[string]any {
	t.Helper()

	body, err := json.Marshal(params)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/v1/simulations", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func TestServer_CreateAndFetchResult(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ts, _ := newTestServer(t, start)

	created := postSimulation(t, ts, map[string]any{
		"poolId":    "0xpool",
		"startDate": start.Format(time.RFC3339),
		"endDate":   start.Add(45 * time.Minute).Format(time.RFC3339),
	})

	id, ok := created["simulationId"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(id, "sim_"))

	// The run is asynchronous; poll until the result lands
	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/api/v1/simulations/" + id)
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		var result domain.SimulationResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return false
		}
		return result.Progress == 100 && !result.IsRunning
	}, 5*time.Second, 50*time.Millisecond)
}

func TestServer_CreateValidation(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ts, _ := newTestServer(t, start)

	resp, err := http.Post(ts.URL+"/api/v1/simulations", "application/json",
		strings.NewReader(`{"startDate":"2024-03-01T00:00:00Z"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/v1/simulations", "application/json",
		strings.NewReader(`{"poolId":"0xpool","strategyConfig":{"strategy":"nope","stopLoss":0.2,"takeProfit":0.5,"tradeSizeScaling":1}}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_UnknownSimulation(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ts, _ := newTestServer(t, start)

	resp, err := http.Get(ts.URL + "/api/v1/simulations/sim_missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/v1/simulations/sim_missing/progress")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ProgressAfterCompletion(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ts, results := newTestServer(t, start)

	created := postSimulation(t, ts, map[string]any{
		"poolId":    "0xpool",
		"startDate": start.Format(time.RFC3339),
		"endDate":   start.Add(45 * time.Minute).Format(time.RFC3339),
	})
	id := created["simulationId"].(string)

	require.Eventually(t, func() bool {
		_, err := results.GetByID(context.Background(), id)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	// The running flag clears just after the result lands
	var decoded map[string]any
	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/api/v1/simulations/" + id + "/progress")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		decoded = map[string]any{}
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return false
		}
		return decoded["isRunning"] == false
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, float64(100), decoded["progress"])
}

func TestServer_ProgressStream(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ts, _ := newTestServer(t, start)

	created := postSimulation(t, ts, map[string]any{
		"poolId":    "0xpool",
		"startDate": start.Format(time.RFC3339),
		"endDate":   start.Add(45 * time.Minute).Format(time.RFC3339),
	})
	id := created["simulationId"].(string)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/simulations/" + id + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	sawFinal := false
	for !sawFinal {
		var msg struct {
			Progress  int  `json:"progress"`
			IsRunning bool `json:"isRunning"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		require.GreaterOrEqual(t, msg.Progress, 0)
		require.LessOrEqual(t, msg.Progress, 100)
		if msg.Progress == 100 {
			sawFinal = true
		}
	}
	assert.True(t, sawFinal, "stream should reach progress 100")
}

func TestServer_StreamClosesForInactiveRun(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	results := memory.NewResultStore()
	progress := memory.NewProgressStore()
	runner := simulation.NewRunner(simulation.RunnerOptions{
		Source:        &staticSource{trades: testTrades(start, 45)},
		ProgressStore: progress,
	})
	srv := New(Options{Runner: runner, ResultStore: results, ProgressStore: progress})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	// A run that died mid-way: a checkpoint exists but nothing is running
	id := "sim_dead"
	require.NoError(t, progress.RecordProgress(context.Background(), id, 60))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/simulations/" + id + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg struct {
		Progress  int  `json:"progress"`
		IsRunning bool `json:"isRunning"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, 60, msg.Progress)
	assert.False(t, msg.IsRunning)

	// The server must close the stream rather than poll forever
	err = conn.ReadJSON(&msg)
	require.Error(t, err)
}

func TestServer_Health(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ts, _ := newTestServer(t, start)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
