package strategy

import "uniswap-sim-lab/internal/domain"

// MeanReversionStrategy fades Bollinger Band touches confirmed by RSI
// extremes: buy at or below the lower band while oversold, sell at or above
// the upper band while overbought.
type MeanReversionStrategy struct{}

// NewMeanReversionStrategy creates a mean-reversion strategy.
func NewMeanReversionStrategy() *MeanReversionStrategy {
	return &MeanReversionStrategy{}
}

// Name returns the strategy identifier.
func (s *MeanReversionStrategy) Name() domain.StrategyType {
	return domain.StrategyMeanReversion
}

// Evaluate compares the trade price against the latest Bollinger Bands.
// Confidence is the price's normalized position inside the band.
func (s *MeanReversionStrategy) Evaluate(trade *domain.HistoricalTrade, indicators *domain.TechnicalIndicators) Decision {
	rsi, okRSI := latest(indicators.RSI)
	upper, okUpper := latest(indicators.BollingerBands.Upper)
	lower, okLower := latest(indicators.BollingerBands.Lower)
	if !okRSI || !okUpper || !okLower || trade == nil {
		return Hold("")
	}

	switch {
	case trade.Price <= lower && rsi < rsiOversold:
		return Decision{
			ShouldTrade: true,
			Type:        domain.TradeTypeBuy,
			Confidence:  confidence(trade.Price, lower, upper),
			Reasoning:   "Price below lower Bollinger Band with oversold RSI",
		}
	case trade.Price >= upper && rsi > rsiOverbought:
		return Decision{
			ShouldTrade: true,
			Type:        domain.TradeTypeSell,
			Confidence:  confidence(trade.Price, lower, upper),
			Reasoning:   "Price above upper Bollinger Band with overbought RSI",
		}
	}
	return Hold("")
}

// Ensure MeanReversionStrategy implements Strategy
var _ Strategy = (*MeanReversionStrategy)(nil)
