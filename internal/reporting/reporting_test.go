package reporting

import (
	"math"
	"strings"
	"testing"
	"time"

	"uniswap-sim-lab/internal/domain"
)

func sampleResult() *domain.SimulationResult {
	profit := 1.25
	return &domain.SimulationResult{
		SimulationID:       "sim_1a2b3c4d5e6f7a8b",
		SimulationDuration: 60,
		UsedExtendedWindow: true,
		Metrics: domain.SimulationMetrics{
			TotalTrades:           2,
			SuccessfulTrades:      1,
			TotalProfit:           1.25,
			WinRate:               50,
			ProfitFactor:          math.Inf(1),
			BenchmarkProfitFactor: 1,
		},
		Trades: []*domain.SimulationTrade{
			{
				Timestamp:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				Type:       domain.TradeTypeBuy,
				Price:      100,
				Amount:     0.1,
				Confidence: 0.8,
				Reasoning:  "macd crossed above signal",
			},
			{
				Timestamp:  time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC),
				Type:       domain.TradeTypeSell,
				Price:      112.5,
				Amount:     0.1,
				Confidence: 0.6,
				Reasoning:  "rsi overbought, exiting",
				Profit:     &profit,
			},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown(sampleResult())

	for _, want := range []string{
		"# Simulation Report",
		"sim_1a2b3c4d5e6f7a8b",
		"extended window",
		"| Total Trades | 2 |",
		"| Win Rate | 50.00% |",
		"| Profit Factor | inf |",
		"| BUY |",
		"| SELL |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestRenderMarkdown_NoTrades(t *testing.T) {
	r := sampleResult()
	r.Trades = nil

	out := RenderMarkdown(r)

	if !strings.Contains(out, "No trades executed.") {
		t.Error("expected no-trades marker")
	}
}

func TestRenderTradesCSV(t *testing.T) {
	out := RenderTradesCSV(sampleResult().Trades)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "timestamp,type,price,amount,confidence,profit,reasoning" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "BUY") || strings.Contains(lines[1], "1.250000") {
		t.Errorf("first row should be the BUY without profit: %s", lines[1])
	}
	// Reasoning with a comma gets quoted
	if !strings.Contains(lines[2], `"rsi overbought, exiting"`) {
		t.Errorf("expected quoted reasoning field: %s", lines[2])
	}
}
