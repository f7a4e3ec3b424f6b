// Package metrics aggregates simulated trades into performance metrics.
// Every function is total: degenerate inputs (no trades, zero variance,
// zero losses) produce the documented fallback value instead of panicking
// or returning NaN.
package metrics

import (
	"math"

	"uniswap-sim-lab/internal/domain"
)

// Cost model defaults.
const (
	// DefaultFeePercentage is the flat transaction fee per trade.
	DefaultFeePercentage = 0.003

	// DefaultBaseSlippage is the floor slippage applied to every trade.
	DefaultBaseSlippage = 0.001
)

// TradeMetrics holds the aggregates derived purely from the trade list.
type TradeMetrics struct {
	SuccessfulTrades int
	TotalProfit      float64
	WinRate          float64
	AverageReturn    float64
	MaxDrawdown      float64
}

// ComputeTradeMetrics walks the trades in order, counting wins, summing
// profit, and tracking drawdown on the cumulative-profit curve. A trade is
// successful when its realized profit is positive; trades without a profit
// (the opening trade) contribute to neither count.
func ComputeTradeMetrics(trades []*domain.SimulationTrade) TradeMetrics {
	var m TradeMetrics
	if len(trades) == 0 {
		return m
	}

	cumulative := 0.0
	peak := 0.0
	for _, t := range trades {
		if t.Profit == nil {
			continue
		}
		profit := *t.Profit
		m.TotalProfit += profit
		if profit > 0 {
			m.SuccessfulTrades++
		}

		cumulative += profit
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > m.MaxDrawdown {
			m.MaxDrawdown = dd
		}
	}

	m.WinRate = 100 * float64(m.SuccessfulTrades) / float64(len(trades))
	m.AverageReturn = m.TotalProfit / float64(len(trades))
	return m
}

// SharpeRatio is mean(returns)/sampleStddev(returns) with a zero risk-free
// rate. Fewer than two returns or zero variance yield 0.
func SharpeRatio(returns []float64) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(n)

	sumSq := 0.0
	for _, r := range returns {
		diff := r - mean
		sumSq += diff * diff
	}
	stddev := math.Sqrt(sumSq / float64(n-1))
	if stddev == 0 {
		return 0
	}
	return mean / stddev
}

// ProfitFactor is total gains over total absolute losses. With zero losses
// it is +Inf when any gain exists, otherwise 1.
func ProfitFactor(trades []*domain.SimulationTrade) float64 {
	var gains, losses float64
	for _, t := range trades {
		if t.Profit == nil {
			continue
		}
		switch p := *t.Profit; {
		case p > 0:
			gains += p
		case p < 0:
			losses -= p
		}
	}

	if losses == 0 {
		if gains > 0 {
			return math.Inf(1)
		}
		return 1
	}
	return gains / losses
}

// TransactionCosts sums amount*feePercentage over all trades.
func TransactionCosts(trades []*domain.SimulationTrade, feePercentage float64) float64 {
	total := 0.0
	for _, t := range trades {
		total += t.Amount * feePercentage
	}
	return total
}

// AverageSlippage models per-trade slippage as the base rate plus a
// log10 volume adjustment for trades larger than one unit, averaged over
// all trades. No trades means no slippage.
func AverageSlippage(trades []*domain.SimulationTrade, baseSlippage float64) float64 {
	if len(trades) == 0 {
		return 0
	}

	total := 0.0
	for _, t := range trades {
		adjustment := 0.0
		if t.Amount > 1 {
			adjustment = math.Log10(t.Amount) * 0.0001
		}
		total += baseSlippage + adjustment
	}
	return total / float64(len(trades))
}

// BenchmarkReturn is the buy-and-hold percentage return over the window.
// A zero first price yields 0 rather than dividing by zero.
func BenchmarkReturn(firstPrice, lastPrice float64) float64 {
	if firstPrice == 0 {
		return 0
	}
	return 100 * (lastPrice - firstPrice) / firstPrice
}

// BenchmarkProfitFactor is the profit factor of the buy-and-hold
// benchmark: +Inf on a gain, 0 on a loss, 1 when flat.
func BenchmarkProfitFactor(firstPrice, lastPrice float64) float64 {
	switch {
	case lastPrice > firstPrice:
		return math.Inf(1)
	case lastPrice < firstPrice:
		return 0
	default:
		return 1
	}
}

// PeriodicReturns derives consecutive relative price changes from the
// emitted trade sequence. Steps with a non-positive base price are skipped
// to keep every return finite.
func PeriodicReturns(trades []*domain.SimulationTrade) []float64 {
	returns := make([]float64, 0)
	for i := 1; i < len(trades); i++ {
		prev := trades[i-1].Price
		if prev <= 0 {
			continue
		}
		returns = append(returns, (trades[i].Price-prev)/prev)
	}
	return returns
}

// Compute assembles the full SimulationMetrics for a run from the emitted
// trades and the first/last observed raw prices.
func Compute(trades []*domain.SimulationTrade, firstPrice, lastPrice float64) domain.SimulationMetrics {
	tm := ComputeTradeMetrics(trades)
	return domain.SimulationMetrics{
		TotalTrades:           len(trades),
		SuccessfulTrades:      tm.SuccessfulTrades,
		TotalProfit:           tm.TotalProfit,
		WinRate:               tm.WinRate,
		AverageReturn:         tm.AverageReturn,
		MaxDrawdown:           tm.MaxDrawdown,
		SharpeRatio:           SharpeRatio(PeriodicReturns(trades)),
		ProfitFactor:          ProfitFactor(trades),
		TotalTransactionCost:  TransactionCosts(trades, DefaultFeePercentage),
		AverageSlippage:       AverageSlippage(trades, DefaultBaseSlippage),
		BenchmarkReturn:       BenchmarkReturn(firstPrice, lastPrice),
		BenchmarkProfitFactor: BenchmarkProfitFactor(firstPrice, lastPrice),
	}
}
