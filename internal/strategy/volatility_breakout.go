package strategy

import (
	"math"

	"uniswap-sim-lab/internal/domain"
)

// breakoutWidthRatio is the expansion factor over the mean band width that
// qualifies as a volatility breakout.
const breakoutWidthRatio = 1.2

// VolatilityBreakoutStrategy trades Bollinger Band width expansions in the
// direction of MACD momentum.
type VolatilityBreakoutStrategy struct{}

// NewVolatilityBreakoutStrategy creates a volatility-breakout strategy.
func NewVolatilityBreakoutStrategy() *VolatilityBreakoutStrategy {
	return &VolatilityBreakoutStrategy{}
}

// Name returns the strategy identifier.
func (s *VolatilityBreakoutStrategy) Name() domain.StrategyType {
	return domain.StrategyVolatilityBreakout
}

// Evaluate compares the current band width against the mean width over the
// whole series. Current width above breakoutWidthRatio times the mean emits
// in the MACD direction with confidence min(width/meanWidth - 1, 1).
func (s *VolatilityBreakoutStrategy) Evaluate(_ *domain.HistoricalTrade, indicators *domain.TechnicalIndicators) Decision {
	upper, okUpper := latest(indicators.BollingerBands.Upper)
	lower, okLower := latest(indicators.BollingerBands.Lower)
	macd, okMACD := latest(indicators.MACD.MACDLine)
	signal, okSignal := latest(indicators.MACD.SignalLine)
	if !okUpper || !okLower || !okMACD || !okSignal {
		return Hold("")
	}

	meanWidth := meanBandWidth(indicators.BollingerBands)
	if meanWidth <= 0 {
		return Hold("")
	}

	width := upper - lower
	if width <= meanWidth*breakoutWidthRatio {
		return Hold("")
	}

	conf := math.Min(width/meanWidth-1, 1)
	switch {
	case macd > signal:
		return Decision{
			ShouldTrade: true,
			Type:        domain.TradeTypeBuy,
			Confidence:  conf,
			Reasoning:   "Volatility expansion with positive MACD momentum",
		}
	case macd < signal:
		return Decision{
			ShouldTrade: true,
			Type:        domain.TradeTypeSell,
			Confidence:  conf,
			Reasoning:   "Volatility expansion with negative MACD momentum",
		}
	}
	return Hold("")
}

// meanBandWidth averages upper-lower over the whole band series.
func meanBandWidth(bands domain.BollingerSeries) float64 {
	n := len(bands.Upper)
	if n == 0 || len(bands.Lower) != n {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += bands.Upper[i] - bands.Lower[i]
	}
	return sum / float64(n)
}

// Ensure VolatilityBreakoutStrategy implements Strategy
var _ Strategy = (*VolatilityBreakoutStrategy)(nil)
