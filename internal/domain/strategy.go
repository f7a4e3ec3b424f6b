package domain

import "errors"

// StrategyType identifies a trading strategy. The set is closed; the
// strategy factory rejects anything else.
type StrategyType string

// Strategy type constants.
const (
	StrategyMomentum           StrategyType = "momentum"
	StrategyMeanReversion      StrategyType = "meanReversion"
	StrategyVolatilityBreakout StrategyType = "volatilityBreakout"
)

// Validation errors.
var (
	ErrUnknownStrategyType = errors.New("unknown strategy type")
	ErrNonPositiveParam    = errors.New("strategy parameter must be positive")
)

// StrategyConfig holds the user-selected strategy and risk parameters.
type StrategyConfig struct {
	Strategy         StrategyType `json:"strategy"`
	StopLoss         float64      `json:"stopLoss"`
	TakeProfit       float64      `json:"takeProfit"`
	TradeSizeScaling float64      `json:"tradeSizeScaling"`
}

// DefaultStrategyConfig returns the configuration used when a run request
// carries none: momentum with 20% stop loss, 50% take profit, unit scaling.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		Strategy:         StrategyMomentum,
		StopLoss:         0.2,
		TakeProfit:       0.5,
		TradeSizeScaling: 1.0,
	}
}

// Validate checks the strategy is known and all risk parameters are positive.
func (c StrategyConfig) Validate() error {
	switch c.Strategy {
	case StrategyMomentum, StrategyMeanReversion, StrategyVolatilityBreakout:
	default:
		return ErrUnknownStrategyType
	}
	if c.StopLoss <= 0 || c.TakeProfit <= 0 || c.TradeSizeScaling <= 0 {
		return ErrNonPositiveParam
	}
	return nil
}
