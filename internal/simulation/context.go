package simulation

import (
	"math"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/indicators"
)

// computeIndicators computes the full indicator set over a price series.
func computeIndicators(prices []float64) domain.TechnicalIndicators {
	return domain.TechnicalIndicators{
		SMA:            indicators.SMA(prices, indicators.DefaultSMAPeriod),
		EMA:            indicators.EMA(prices, indicators.DefaultEMAPeriod),
		RSI:            indicators.RSI(prices, indicators.DefaultRSIPeriod),
		MACD:           indicators.MACD(prices, indicators.DefaultMACDFastPeriod, indicators.DefaultMACDSlowPeriod, indicators.DefaultMACDSignal),
		BollingerBands: indicators.BollingerBands(prices, indicators.DefaultBollingerPeriod, indicators.DefaultBollingerStdDev),
	}
}

// buildMarketContext assembles the per-window market snapshot.
// With fewer than two usable prices only the traded volume is populated.
func buildMarketContext(trades []*domain.HistoricalTrade) domain.MarketContext {
	ctx := domain.MarketContext{
		Volume: totalVolume(trades),
	}

	prices := indicators.ExtractPrices(trades)
	if len(prices) < 2 {
		return ctx
	}

	ctx.Volatility = volatility(prices)
	ctx.AverageSpread = averageSpread(prices)
	ctx.TechnicalIndicators = computeIndicators(prices)
	return ctx
}

func totalVolume(trades []*domain.HistoricalTrade) float64 {
	var total float64
	for _, t := range trades {
		total += t.AmountUSDValue()
	}
	return total
}

// volatility is the sample standard deviation of successive price returns.
func volatility(prices []float64) float64 {
	var returns []float64
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance)
}

// averageSpread is the mean absolute relative change between consecutive prices.
func averageSpread(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	var sum float64
	var n int
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 {
			continue
		}
		sum += math.Abs(prices[i]-prices[i-1]) / prices[i-1]
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
