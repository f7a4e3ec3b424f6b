// Package strategy implements the per-trade decision engine. A Strategy
// evaluates one historical trade against the latest indicator values and
// either proposes a BUY/SELL or abstains; abstaining is the explicit HOLD
// outcome and never materializes a simulated trade.
package strategy

import (
	"math"

	"uniswap-sim-lab/internal/domain"
)

// Decision is the outcome of evaluating one historical trade.
type Decision struct {
	ShouldTrade bool
	Type        domain.TradeType
	Confidence  float64
	Reasoning   string
}

// Hold is the abstain decision with an optional reason.
func Hold(reason string) Decision {
	return Decision{Reasoning: reason}
}

// Strategy evaluates a single trade against the indicator snapshot.
type Strategy interface {
	// Evaluate returns the raw strategy decision for one trade. Same-type
	// suppression against the previous simulated trade is applied by
	// Decide, not here.
	Evaluate(trade *domain.HistoricalTrade, indicators *domain.TechnicalIndicators) Decision

	// Name returns the strategy identifier.
	Name() domain.StrategyType
}

// Decide runs a strategy for one trade and applies the cross-cutting rule:
// a decision whose type matches the previously emitted simulated trade is
// overridden to hold, regardless of strategy.
func Decide(s Strategy, trade *domain.HistoricalTrade, indicators *domain.TechnicalIndicators, prev *domain.SimulationTrade) Decision {
	decision := s.Evaluate(trade, indicators)
	if prev != nil && decision.ShouldTrade && decision.Type == prev.Type {
		return Hold("avoiding consecutive trades of same type")
	}
	return decision
}

// confidence normalizes value into [0,1] relative to the [min,max] band.
// A degenerate band yields zero confidence rather than NaN.
func confidence(value, min, max float64) float64 {
	band := max - min
	if band <= 0 {
		return 0
	}
	normalized := math.Abs((value - min) / band)
	return math.Max(0, math.Min(1, normalized))
}

// latest returns the trailing value of a series, false when empty.
func latest(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}
