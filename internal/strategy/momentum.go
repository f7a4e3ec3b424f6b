package strategy

import "uniswap-sim-lab/internal/domain"

// RSI thresholds shared by the momentum strategies.
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// MomentumStrategy trades MACD crossovers confirmed by RSI: buy while not
// overbought, sell while not oversold.
type MomentumStrategy struct{}

// NewMomentumStrategy creates a momentum strategy.
func NewMomentumStrategy() *MomentumStrategy {
	return &MomentumStrategy{}
}

// Name returns the strategy identifier.
func (s *MomentumStrategy) Name() domain.StrategyType {
	return domain.StrategyMomentum
}

// Evaluate compares the latest MACD line against its signal line with RSI
// confirmation. Missing indicator data abstains.
func (s *MomentumStrategy) Evaluate(_ *domain.HistoricalTrade, indicators *domain.TechnicalIndicators) Decision {
	rsi, okRSI := latest(indicators.RSI)
	macd, okMACD := latest(indicators.MACD.MACDLine)
	signal, okSignal := latest(indicators.MACD.SignalLine)
	if !okRSI || !okMACD || !okSignal {
		return Hold("")
	}

	switch {
	case macd > signal && rsi < rsiOverbought:
		return Decision{
			ShouldTrade: true,
			Type:        domain.TradeTypeBuy,
			Confidence:  confidence(rsi, rsiOversold, rsiOverbought),
			Reasoning:   "MACD crossed above signal line with RSI below overbought",
		}
	case macd < signal && rsi > rsiOversold:
		return Decision{
			ShouldTrade: true,
			Type:        domain.TradeTypeSell,
			Confidence:  confidence(rsi, rsiOversold, rsiOverbought),
			Reasoning:   "MACD crossed below signal line with RSI above oversold",
		}
	}
	return Hold("")
}

// Ensure MomentumStrategy implements Strategy
var _ Strategy = (*MomentumStrategy)(nil)
