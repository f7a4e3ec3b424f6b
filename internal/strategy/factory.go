package strategy

import "uniswap-sim-lab/internal/domain"

// FromConfig creates a Strategy from a validated configuration.
// Returns domain.ErrUnknownStrategyType for anything outside the closed set.
func FromConfig(cfg domain.StrategyConfig) (Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Strategy {
	case domain.StrategyMomentum:
		return NewMomentumStrategy(), nil
	case domain.StrategyMeanReversion:
		return NewMeanReversionStrategy(), nil
	case domain.StrategyVolatilityBreakout:
		return NewVolatilityBreakoutStrategy(), nil
	default:
		return nil, domain.ErrUnknownStrategyType
	}
}
