// Package reporting renders simulation results for humans.
package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"

	"uniswap-sim-lab/internal/domain"
)

// RenderMarkdown renders a simulation result as a Markdown string.
func RenderMarkdown(r *domain.SimulationResult) string {
	var sb strings.Builder

	sb.WriteString("# Simulation Report\n\n")
	sb.WriteString(fmt.Sprintf("Simulation: %s\n\n", r.SimulationID))

	mode := "historical replay"
	if r.IsLiveSimulation {
		mode = "live"
	}
	sb.WriteString(fmt.Sprintf("Mode: %s | Duration: %d min", mode, r.SimulationDuration))
	if r.UsedExtendedWindow {
		sb.WriteString(" | extended window")
	}
	sb.WriteString("\n\n")

	m := r.Metrics
	sb.WriteString("## Metrics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", m.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Successful Trades | %d |\n", m.SuccessfulTrades))
	sb.WriteString(fmt.Sprintf("| Total Profit | %.6f |\n", m.TotalProfit))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.2f%% |\n", m.WinRate))
	sb.WriteString(fmt.Sprintf("| Average Return | %.6f |\n", m.AverageReturn))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.6f |\n", m.MaxDrawdown))
	sb.WriteString(fmt.Sprintf("| Sharpe Ratio | %.4f |\n", m.SharpeRatio))
	sb.WriteString(fmt.Sprintf("| Profit Factor | %s |\n", formatRatio(m.ProfitFactor)))
	sb.WriteString(fmt.Sprintf("| Transaction Costs | %.6f |\n", m.TotalTransactionCost))
	sb.WriteString(fmt.Sprintf("| Average Slippage | %.6f |\n", m.AverageSlippage))
	sb.WriteString(fmt.Sprintf("| Benchmark Return | %.4f%% |\n", m.BenchmarkReturn))
	sb.WriteString(fmt.Sprintf("| Benchmark Profit Factor | %s |\n", formatRatio(m.BenchmarkProfitFactor)))
	sb.WriteString("\n")

	mc := r.MarketContext
	sb.WriteString("## Market Context\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Volatility | %.6f |\n", mc.Volatility))
	sb.WriteString(fmt.Sprintf("| Average Spread | %.6f |\n", mc.AverageSpread))
	sb.WriteString(fmt.Sprintf("| Volume (USD) | %.2f |\n", mc.Volume))
	sb.WriteString("\n")

	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Time | Type | Price | Amount | Confidence | Profit | Reasoning |\n")
		sb.WriteString("|------|------|-------|--------|------------|--------|----------|\n")
		for _, t := range r.Trades {
			profit := "-"
			if t.Profit != nil {
				profit = fmt.Sprintf("%.6f", *t.Profit)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %.6f | %.4f | %.2f | %s | %s |\n",
				t.Timestamp.Format(time.RFC3339), t.Type, t.Price, t.Amount,
				t.Confidence, profit, t.Reasoning))
		}
	} else {
		sb.WriteString("No trades executed.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// formatRatio renders profit factors, which are infinite when a run had
// no losing side.
func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.4f", v)
}
