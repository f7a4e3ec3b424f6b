// Package simulation executes trade simulations over historical pool data.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/idhash"
	"uniswap-sim-lab/internal/indicators"
	"uniswap-sim-lab/internal/metrics"
	"uniswap-sim-lab/internal/observability"
	"uniswap-sim-lab/internal/sampling"
	"uniswap-sim-lab/internal/storage"
	"uniswap-sim-lab/internal/strategy"
)

// Runner errors
var (
	ErrNoHistoricalData = errors.New("no historical trades available for simulation window")
	ErrInvalidParams    = errors.New("invalid simulation parameters")
)

// Defaults applied when the corresponding parameter is zero.
const (
	DefaultTradeSize       = 0.1
	DefaultLiveDurationMin = 15

	progressFetched      = 20
	progressContextBuilt = 60
	progressDecided      = 80
	progressAggregating  = 90
	progressDone         = 100
)

// TradeSource fetches historical trades for a pool window.
// Implemented by the subgraph client and the ClickHouse archive.
type TradeSource interface {
	GetHistoricalTrades(ctx context.Context, poolID string, start, end time.Time) ([]*domain.HistoricalTrade, error)
}

// Runner executes simulations end to end.
type Runner struct {
	source         TradeSource
	simulatedStore storage.SimulatedTradeStore
	progressStore  storage.ProgressStore
	logger         *zap.Logger
	metrics        *observability.Metrics
	now            func() time.Time
}

// RunnerOptions contains configuration for creating a Runner.
// SimulatedTradeStore and ProgressStore are optional best-effort sinks;
// Source is required.
type RunnerOptions struct {
	Source              TradeSource
	SimulatedTradeStore storage.SimulatedTradeStore
	ProgressStore       storage.ProgressStore
	Logger              *zap.Logger
	Metrics             *observability.Metrics
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		source:         opts.Source,
		simulatedStore: opts.SimulatedTradeStore,
		progressStore:  opts.ProgressStore,
		logger:         logger,
		metrics:        opts.Metrics,
		now:            time.Now,
	}
}

// Run executes one simulation.
// Phases:
//  1. Fetch historical trades, extending the window once if allowed
//  2. Sample long windows down to one trade per bucket
//  3. Build the market context
//  4. Walk the sampled trades through the strategy
//  5. Aggregate metrics into the result
//
// Missing historical data is the only fatal condition; sink write
// failures are logged and counted but never abort the run.
func (r *Runner) Run(ctx context.Context, params domain.SimulationParams) (*domain.SimulationResult, error) {
	return r.RunWithID(ctx, r.NewSimulationID(params), params)
}

// NewSimulationID derives a fresh run ID for the given parameters.
func (r *Runner) NewSimulationID(params domain.SimulationParams) string {
	start, end, _ := r.resolveWindow(params)
	return idhash.ComputeSimulationID(params.PoolID, start, end, r.now().UnixNano())
}

// RunWithID executes one simulation under a caller-assigned ID, so the
// caller can report progress for runs it started asynchronously.
func (r *Runner) RunWithID(ctx context.Context, simulationID string, params domain.SimulationParams) (*domain.SimulationResult, error) {
	started := r.now()

	if params.PoolID == "" {
		return nil, fmt.Errorf("%w: pool id is required", ErrInvalidParams)
	}

	start, end, duration := r.resolveWindow(params)
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrInvalidParams)
	}

	cfg := domain.DefaultStrategyConfig()
	if params.StrategyConfig != nil {
		cfg = *params.StrategyConfig
	}
	strat, err := strategy.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	logger := r.logger.With(
		zap.String("simulationId", simulationID),
		zap.String("pool", params.PoolID))

	r.recordProgress(ctx, logger, simulationID, 0)

	// Phase 1: fetch
	trades, usedExtended, err := r.fetch(ctx, logger, params.PoolID, start, end, params.WindowExtensionFactor)
	if err != nil {
		r.recordRun("error", started)
		return nil, err
	}
	if len(trades) == 0 {
		r.recordRun("no_data", started)
		return nil, ErrNoHistoricalData
	}
	if r.metrics != nil {
		r.metrics.TradesFetched.Add(float64(len(trades)))
	}
	r.recordProgress(ctx, logger, simulationID, progressFetched)

	// Phase 2: sample
	interval := params.SamplingInterval
	if interval <= 0 {
		interval = sampling.DefaultIntervalMinutes
	}
	sampled := sampling.SampleTrades(trades, start, end, interval)
	if r.metrics != nil {
		r.metrics.TradesSampledOut.Add(float64(len(trades) - len(sampled)))
	}

	// Phase 3: market context
	marketCtx := buildMarketContext(sampled)
	r.recordProgress(ctx, logger, simulationID, progressContextBuilt)

	// Phase 4: decision loop
	simTrades := r.decide(ctx, logger, simulationID, params, cfg, strat, sampled)
	r.recordProgress(ctx, logger, simulationID, progressDecided)

	// Phase 5: aggregate
	r.recordProgress(ctx, logger, simulationID, progressAggregating)
	prices := indicators.ExtractPrices(sampled)
	var firstPrice, lastPrice float64
	if len(prices) > 0 {
		firstPrice = prices[0]
		lastPrice = prices[len(prices)-1]
	}

	result := &domain.SimulationResult{
		SimulationID:           simulationID,
		Trades:                 simTrades,
		LinkedHistoricalTrades: sampled,
		Metrics:                metrics.Compute(simTrades, firstPrice, lastPrice),
		MarketContext:          marketCtx,
		SimulationDuration:     duration,
		IsLiveSimulation:       params.SimulateLive,
		UsedExtendedWindow:     usedExtended,
		Progress:               progressDone,
		IsRunning:              false,
	}
	r.recordProgress(ctx, logger, simulationID, progressDone)

	logger.Info("simulation completed",
		zap.Int("historicalTrades", len(trades)),
		zap.Int("sampledTrades", len(sampled)),
		zap.Int("simulatedTrades", len(simTrades)),
		zap.Float64("totalProfit", result.Metrics.TotalProfit))

	r.recordRun("success", started)
	if r.metrics != nil {
		r.metrics.TradesSimulated.Add(float64(len(simTrades)))
		r.metrics.LastSuccessfulRun.SetToCurrentTime()
	}

	return result, nil
}

// resolveWindow derives the effective [start, end) window and the stated
// duration in minutes. Live runs simulate the most recent N minutes.
func (r *Runner) resolveWindow(params domain.SimulationParams) (time.Time, time.Time, int) {
	if params.SimulateLive {
		duration := params.SimulationDuration
		if duration <= 0 {
			duration = DefaultLiveDurationMin
		}
		end := r.now()
		return end.Add(-time.Duration(duration) * time.Minute), end, duration
	}

	duration := int(params.EndDate.Sub(params.StartDate).Minutes())
	return params.StartDate, params.EndDate, duration
}

// fetch pulls historical trades, retrying once with an extended window
// when the first attempt comes back empty and extension is allowed.
func (r *Runner) fetch(ctx context.Context, logger *zap.Logger, poolID string, start, end time.Time, extensionFactor float64) ([]*domain.HistoricalTrade, bool, error) {
	trades, err := r.source.GetHistoricalTrades(ctx, poolID, start, end)
	if err != nil {
		if r.metrics != nil {
			r.metrics.SubgraphFetchErrors.Inc()
		}
		return nil, false, fmt.Errorf("fetch historical trades: %w", err)
	}
	if len(trades) > 0 || extensionFactor <= 1 {
		return trades, false, nil
	}

	window := end.Sub(start)
	extendedStart := end.Add(-time.Duration(float64(window) * extensionFactor))
	logger.Info("no trades in window, retrying with extended window",
		zap.Time("extendedStart", extendedStart),
		zap.Float64("factor", extensionFactor))

	trades, err = r.source.GetHistoricalTrades(ctx, poolID, extendedStart, end)
	if err != nil {
		if r.metrics != nil {
			r.metrics.SubgraphFetchErrors.Inc()
		}
		return nil, false, fmt.Errorf("fetch historical trades (extended window): %w", err)
	}
	return trades, len(trades) > 0, nil
}

// decideLookback caps the price history fed to the indicator kernels on
// each decide step, keeping long runs linear in the sampled trade count.
// Must exceed the longest warmup (slow MACD EMA plus its signal line);
// prices older than that no longer move the latest values the strategies
// read.
const decideLookback = 120

// decide walks sampled trades through the strategy, threading profit
// from each executed trade to the next.
func (r *Runner) decide(ctx context.Context, logger *zap.Logger, simulationID string, params domain.SimulationParams, cfg domain.StrategyConfig, strat strategy.Strategy, sampled []*domain.HistoricalTrade) []*domain.SimulationTrade {
	tradeSize := params.TradeSize
	if tradeSize <= 0 {
		tradeSize = DefaultTradeSize
	}
	amount := tradeSize * cfg.TradeSizeScaling

	var executed []*domain.SimulationTrade
	var prev *domain.SimulationTrade
	prices := make([]float64, 0, len(sampled))

	for _, ht := range sampled {
		if ht.Price > 0 {
			prices = append(prices, ht.Price)
		}
		ind := computeIndicators(tailPrices(prices, decideLookback))

		decision := strategy.Decide(strat, ht, &ind, prev)
		if !decision.ShouldTrade {
			continue
		}

		trade := &domain.SimulationTrade{
			Timestamp:  ht.Timestamp,
			Type:       decision.Type,
			Price:      ht.Price,
			Amount:     amount,
			Confidence: decision.Confidence,
			Reasoning:  decision.Reasoning,
		}
		if prev != nil {
			profit := positionProfit(prev, trade)
			trade.Profit = &profit
		}

		executed = append(executed, trade)
		prev = trade

		if r.simulatedStore != nil {
			if err := r.simulatedStore.Insert(ctx, simulationID, params.PoolID, trade); err != nil {
				logger.Warn("failed to persist simulated trade", zap.Error(err))
				if r.metrics != nil {
					r.metrics.RecordSinkFailure("simulated_trades")
				}
			}
		}
	}

	return executed
}

// tailPrices returns at most the last n prices.
func tailPrices(prices []float64, n int) []float64 {
	if len(prices) <= n {
		return prices
	}
	return prices[len(prices)-n:]
}

// positionProfit closes the previous position at the current price.
// A previous BUY profits when the price rose, a previous SELL when it fell.
func positionProfit(prev, cur *domain.SimulationTrade) float64 {
	direction := 1.0
	if prev.Type == domain.TradeTypeSell {
		direction = -1.0
	}
	return direction * cur.Amount * (cur.Price - prev.Price)
}

// recordProgress writes a checkpoint to the progress sink, best effort.
func (r *Runner) recordProgress(ctx context.Context, logger *zap.Logger, simulationID string, progress int) {
	if r.progressStore == nil {
		return
	}
	if err := r.progressStore.RecordProgress(ctx, simulationID, progress); err != nil {
		logger.Warn("failed to record progress",
			zap.Int("progress", progress),
			zap.Error(err))
		if r.metrics != nil {
			r.metrics.RecordSinkFailure("progress")
		}
	}
}

func (r *Runner) recordRun(status string, started time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordRun(status, r.now().Sub(started).Seconds())
}
