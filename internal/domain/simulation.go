package domain

import (
	"encoding/json"
	"math"
	"time"
)

// TradeType is the direction of a synthetic simulated trade.
// A HOLD decision never materializes a trade at all.
type TradeType string

// Trade type constants.
const (
	TradeTypeBuy  TradeType = "BUY"
	TradeTypeSell TradeType = "SELL"
)

// SimulationTrade is one synthetic decision emitted by the engine.
// Profit is nil for the first emitted trade of a run, which has no
// position to close against.
type SimulationTrade struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       TradeType `json:"type"`
	Price      float64   `json:"price"`
	Amount     float64   `json:"amount"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
	Profit     *float64  `json:"profit,omitempty"`
}

// MACDSeries holds the MACD line, its signal line, and their difference.
// The three series have different lengths; alignment is by trailing end.
type MACDSeries struct {
	MACDLine   []float64 `json:"macdLine"`
	SignalLine []float64 `json:"signalLine"`
	Histogram  []float64 `json:"histogram"`
}

// BollingerSeries holds the three Bollinger Bands, all of equal length.
type BollingerSeries struct {
	Upper  []float64 `json:"upper"`
	Middle []float64 `json:"middle"`
	Lower  []float64 `json:"lower"`
}

// TechnicalIndicators holds every indicator series computed for a run.
// All series are empty when the price series was too short.
type TechnicalIndicators struct {
	SMA            []float64       `json:"sma"`
	EMA            []float64       `json:"ema"`
	RSI            []float64       `json:"rsi"`
	MACD           MACDSeries      `json:"macd"`
	BollingerBands BollingerSeries `json:"bollingerBands"`
}

// MarketContext is the indicator snapshot the decision engine evaluates
// against, plus coarse per-window market statistics.
type MarketContext struct {
	AverageSpread       float64             `json:"averageSpread"`
	Volatility          float64             `json:"volatility"`
	Volume              float64             `json:"volume"`
	TechnicalIndicators TechnicalIndicators `json:"technicalIndicators"`
}

// SimulationMetrics aggregates performance over one run.
type SimulationMetrics struct {
	TotalTrades           int     `json:"totalTrades"`
	SuccessfulTrades      int     `json:"successfulTrades"`
	TotalProfit           float64 `json:"totalProfit"`
	WinRate               float64 `json:"winRate"`
	AverageReturn         float64 `json:"averageReturn"`
	MaxDrawdown           float64 `json:"maxDrawdown"`
	SharpeRatio           float64 `json:"sharpeRatio"`
	ProfitFactor          float64 `json:"profitFactor"`
	TotalTransactionCost  float64 `json:"totalTransactionCost"`
	AverageSlippage       float64 `json:"averageSlippage"`
	BenchmarkReturn       float64 `json:"benchmarkReturn"`
	BenchmarkProfitFactor float64 `json:"benchmarkProfitFactor"`
}

// MarshalJSON renders non-finite metric values as null. ProfitFactor and
// BenchmarkProfitFactor are +Inf by definition when there are no losses,
// and encoding/json refuses to marshal infinities.
func (m SimulationMetrics) MarshalJSON() ([]byte, error) {
	type alias SimulationMetrics
	out := struct {
		alias
		ProfitFactor          *float64 `json:"profitFactor"`
		BenchmarkProfitFactor *float64 `json:"benchmarkProfitFactor"`
	}{alias: alias(m)}
	out.ProfitFactor = finiteOrNil(m.ProfitFactor)
	out.BenchmarkProfitFactor = finiteOrNil(m.BenchmarkProfitFactor)
	return json.Marshal(out)
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// SimulationParams is one run request.
type SimulationParams struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	PoolID    string    `json:"poolId"`

	InitialCapital float64 `json:"initialCapital"`
	TradeSize      float64 `json:"tradeSize"`

	// SimulateLive marks the run as a live simulation of SimulationDuration
	// minutes instead of a replay over past data.
	SimulateLive       bool `json:"simulateLive,omitempty"`
	SimulationDuration int  `json:"simulationDuration,omitempty"`

	// WindowExtensionFactor > 1 allows one retry with an extended lookup
	// window when the initial fetch returns no trades.
	WindowExtensionFactor float64 `json:"windowExtensionFactor,omitempty"`

	StrategyConfig *StrategyConfig `json:"strategyConfig,omitempty"`

	// SamplingInterval is the bucket width in minutes for long windows.
	SamplingInterval int `json:"samplingInterval,omitempty"`
}

// SimulationResult is the final output of one run.
type SimulationResult struct {
	SimulationID           string             `json:"simulationId"`
	Trades                 []*SimulationTrade `json:"trades"`
	LinkedHistoricalTrades []*HistoricalTrade `json:"linkedHistoricalTrades"`
	Metrics                SimulationMetrics  `json:"metrics"`
	MarketContext          MarketContext      `json:"marketContext"`
	SimulationDuration     int                `json:"simulationDuration"`
	IsLiveSimulation       bool               `json:"isLiveSimulation"`
	UsedExtendedWindow     bool               `json:"usedExtendedWindow,omitempty"`
	Progress               int                `json:"progress"`
	IsRunning              bool               `json:"isRunning"`
}
