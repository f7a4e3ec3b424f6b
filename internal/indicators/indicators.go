// Package indicators provides technical indicators over price series.
// Every function is total: a series too short for the requested period
// yields an empty result, and no output value is ever NaN or infinite.
package indicators

import (
	"math"

	"uniswap-sim-lab/internal/domain"
)

// Default periods, matching common charting conventions.
const (
	DefaultSMAPeriod       = 20
	DefaultEMAPeriod       = 20
	DefaultRSIPeriod       = 14
	DefaultMACDFastPeriod  = 12
	DefaultMACDSlowPeriod  = 26
	DefaultMACDSignal      = 9
	DefaultBollingerPeriod = 20
	DefaultBollingerStdDev = 2.0
)

// SMA computes the simple moving average with a single-pass sliding sum.
// Output length is len(prices)-period+1 when len(prices) >= period.
func SMA(prices []float64, period int) []float64 {
	out := make([]float64, 0)
	if period <= 0 || len(prices) < period {
		return out
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	out = append(out, sum/float64(period))

	for i := period; i < len(prices); i++ {
		sum += prices[i] - prices[i-period]
		out = append(out, sum/float64(period))
	}
	return out
}

// EMA computes the exponential moving average seeded with the SMA of the
// first period values, then ema[i] = price[i]*m + ema[i-1]*(1-m) with
// m = 2/(period+1).
func EMA(prices []float64, period int) []float64 {
	out := make([]float64, 0)
	if period <= 0 || len(prices) < period {
		return out
	}

	multiplier := 2.0 / float64(period+1)
	inverse := 1.0 - multiplier

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	out = append(out, sum/float64(period))

	for i := period; i < len(prices); i++ {
		out = append(out, prices[i]*multiplier+out[len(out)-1]*inverse)
	}
	return out
}

// RSI computes the relative strength index over price deltas. The first
// period deltas seed the smoothed averages; subsequent values use Wilder's
// recurrence avg = (avg*(period-1) + value)/period. When the average loss
// is zero RSI is 100 by definition, so no division by zero can occur.
// Requires at least period+1 prices.
func RSI(prices []float64, period int) []float64 {
	out := make([]float64, 0)
	if period <= 0 || len(prices) < 2 {
		return out
	}

	changes := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		changes[i-1] = prices[i] - prices[i-1]
	}
	if len(changes) < period {
		return out
	}

	var sumGain, sumLoss float64
	for i := 0; i < period; i++ {
		if changes[i] > 0 {
			sumGain += changes[i]
		} else {
			sumLoss -= changes[i]
		}
	}
	avgGain := sumGain / float64(period)
	avgLoss := sumLoss / float64(period)
	out = append(out, rsiValue(avgGain, avgLoss))

	for i := period; i < len(changes); i++ {
		change := changes[i]
		if change > 0 {
			avgGain = (avgGain*float64(period-1) + change) / float64(period)
			avgLoss = (avgLoss * float64(period-1)) / float64(period)
		} else {
			avgGain = (avgGain * float64(period-1)) / float64(period)
			avgLoss = (avgLoss*float64(period-1) - change) / float64(period)
		}
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// MACD computes the MACD line as fastEMA-slowEMA, the signal line as an EMA
// of the MACD line, and the histogram as their difference. The shorter fast
// EMA is aligned to the slow EMA start with offset slowPeriod-fastPeriod;
// the histogram aligns the MACD line to the signal line the same way.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) domain.MACDSeries {
	series := domain.MACDSeries{
		MACDLine:   make([]float64, 0),
		SignalLine: make([]float64, 0),
		Histogram:  make([]float64, 0),
	}
	if fastPeriod <= 0 || slowPeriod <= fastPeriod || signalPeriod <= 0 {
		return series
	}

	fastEMA := EMA(prices, fastPeriod)
	slowEMA := EMA(prices, slowPeriod)
	if len(slowEMA) == 0 {
		return series
	}

	offset := slowPeriod - fastPeriod
	for i := range slowEMA {
		series.MACDLine = append(series.MACDLine, fastEMA[i+offset]-slowEMA[i])
	}

	series.SignalLine = EMA(series.MACDLine, signalPeriod)

	histOffset := len(series.MACDLine) - len(series.SignalLine)
	for i := range series.SignalLine {
		series.Histogram = append(series.Histogram, series.MACDLine[i+histOffset]-series.SignalLine[i])
	}
	return series
}

// BollingerBands computes the middle band as an SMA and the outer bands at
// multiplier population standard deviations of each window. Population
// stddev (divide by period) is the deliberate convention here; the Sharpe
// ratio elsewhere uses the sample formula.
func BollingerBands(prices []float64, period int, multiplier float64) domain.BollingerSeries {
	series := domain.BollingerSeries{
		Upper:  make([]float64, 0),
		Middle: make([]float64, 0),
		Lower:  make([]float64, 0),
	}
	if period <= 0 || len(prices) < period {
		return series
	}

	series.Middle = SMA(prices, period)
	for i := range series.Middle {
		mean := series.Middle[i]
		sumSq := 0.0
		for j := i; j < i+period; j++ {
			diff := prices[j] - mean
			sumSq += diff * diff
		}
		width := multiplier * math.Sqrt(sumSq/float64(period))
		series.Upper = append(series.Upper, mean+width)
		series.Lower = append(series.Lower, mean-width)
	}
	return series
}

// ExtractPrices pulls the positive prices out of a trade sequence,
// preserving order. Non-positive entries are skipped.
func ExtractPrices(trades []*domain.HistoricalTrade) []float64 {
	prices := make([]float64, 0, len(trades))
	for _, t := range trades {
		if t != nil && t.Price > 0 {
			prices = append(prices, t.Price)
		}
	}
	return prices
}
