package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/reporting"
	"uniswap-sim-lab/internal/simulation"
	chstore "uniswap-sim-lab/internal/storage/clickhouse"
	pgstore "uniswap-sim-lab/internal/storage/postgres"
	redisstore "uniswap-sim-lab/internal/storage/redis"
	"uniswap-sim-lab/internal/subgraph"
)

func main() {
	// Simulation window
	poolID := flag.String("pool", "", "Uniswap V3 pool ID to simulate (required)")
	startStr := flag.String("start", "", "Window start, RFC3339 (required unless --live)")
	endStr := flag.String("end", "", "Window end, RFC3339 (required unless --live)")
	live := flag.Bool("live", false, "Simulate the most recent N minutes instead of a fixed window")
	durationMin := flag.Int("duration", simulation.DefaultLiveDurationMin, "Live window length in minutes")
	windowExtension := flag.Float64("window-extension", 0, "Extend the window by this factor when no trades are found (>1 to enable)")
	samplingInterval := flag.Int("sampling-interval", 0, "Sampling bucket size in minutes (0 = default)")

	// Strategy parameters
	strategyType := flag.String("strategy", string(domain.StrategyMomentum), "Strategy: momentum, meanReversion, volatilityBreakout")
	stopLoss := flag.Float64("stop-loss", 0.2, "Stop-loss fraction")
	takeProfit := flag.Float64("take-profit", 0.5, "Take-profit fraction")
	tradeSizeScaling := flag.Float64("trade-size-scaling", 1.0, "Trade size multiplier")
	tradeSize := flag.Float64("trade-size", simulation.DefaultTradeSize, "Base trade size in token units")
	initialCapital := flag.Float64("initial-capital", 0, "Initial capital in USD (informational)")

	// Data source
	subgraphEndpoint := flag.String("subgraph-endpoint",
		"https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v3",
		"Graph endpoint to fetch swaps from")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "Read trades from a ClickHouse archive instead of the subgraph")

	// Sinks
	postgresDSN := flag.String("postgres-dsn", "", "Persist simulated trades to PostgreSQL")
	redisAddr := flag.String("redis-addr", "", "Publish progress checkpoints to Redis")

	// Output
	format := flag.String("format", "text", "Output format: text, json, markdown, csv")

	flag.Parse()

	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)

	if *poolID == "" {
		logger.Fatal("--pool is required")
	}

	params := domain.SimulationParams{
		PoolID:                *poolID,
		InitialCapital:        *initialCapital,
		TradeSize:             *tradeSize,
		SimulateLive:          *live,
		SimulationDuration:    *durationMin,
		WindowExtensionFactor: *windowExtension,
		SamplingInterval:      *samplingInterval,
		StrategyConfig: &domain.StrategyConfig{
			Strategy:         domain.StrategyType(*strategyType),
			StopLoss:         *stopLoss,
			TakeProfit:       *takeProfit,
			TradeSizeScaling: *tradeSizeScaling,
		},
	}
	if err := params.StrategyConfig.Validate(); err != nil {
		logger.Fatalf("invalid strategy config: %v", err)
	}

	if !*live {
		start, err := time.Parse(time.RFC3339, *startStr)
		if err != nil {
			logger.Fatalf("invalid --start: %v", err)
		}
		end, err := time.Parse(time.RFC3339, *endStr)
		if err != nil {
			logger.Fatalf("invalid --end: %v", err)
		}
		params.StartDate = start
		params.EndDate = end
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	zlog := zap.NewNop()
	if *format == "text" {
		// Keep structured logs off stdout so the report stays clean
		zl, err := zap.NewDevelopment()
		if err == nil {
			zlog = zl
		}
	}

	// Trade source: ClickHouse archive when given, subgraph otherwise
	var source simulation.TradeSource
	if *clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		source = chstore.NewHistoricalTradeStore(conn)
	} else {
		source = subgraph.NewClient(subgraph.Options{
			Endpoint: *subgraphEndpoint,
			Logger:   zlog,
		})
	}

	opts := simulation.RunnerOptions{
		Source: source,
		Logger: zlog,
	}

	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		opts.SimulatedTradeStore = pgstore.NewSimulatedTradeStore(pool)
	}

	if *redisAddr != "" {
		client, err := redisstore.NewClient(ctx, *redisAddr, "", 0)
		if err != nil {
			logger.Fatalf("connect to redis: %v", err)
		}
		defer client.Close()
		opts.ProgressStore = redisstore.NewProgressStore(client)
	}

	runner := simulation.NewRunner(opts)

	logger.Printf("Running simulation: pool=%s strategy=%s live=%v",
		*poolID, *strategyType, *live)

	result, err := runner.Run(ctx, params)
	if err != nil {
		logger.Fatalf("simulation failed: %v", err)
	}

	switch strings.ToLower(*format) {
	case "json":
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	case "markdown":
		fmt.Print(reporting.RenderMarkdown(result))
	case "csv":
		fmt.Print(reporting.RenderTradesCSV(result.Trades))
	default:
		printSummary(result)
	}
}

// printSummary outputs a human-readable run summary.
func printSummary(r *domain.SimulationResult) {
	fmt.Println()
	fmt.Println("=== Simulation Result ===")
	fmt.Printf("Simulation ID:      %s\n", r.SimulationID)
	fmt.Printf("Duration:           %d min\n", r.SimulationDuration)
	fmt.Printf("Live:               %v\n", r.IsLiveSimulation)
	if r.UsedExtendedWindow {
		fmt.Println("Window:             extended (initial fetch was empty)")
	}
	fmt.Println()

	m := r.Metrics
	fmt.Println("Metrics:")
	fmt.Printf("  Total Trades:     %d\n", m.TotalTrades)
	fmt.Printf("  Win Rate:         %.2f%%\n", m.WinRate)
	fmt.Printf("  Total Profit:     %.6f\n", m.TotalProfit)
	fmt.Printf("  Max Drawdown:     %.6f\n", m.MaxDrawdown)
	fmt.Printf("  Sharpe Ratio:     %.4f\n", m.SharpeRatio)
	fmt.Printf("  Profit Factor:    %s\n", formatRatio(m.ProfitFactor))
	fmt.Printf("  Transaction Cost: %.6f\n", m.TotalTransactionCost)
	fmt.Printf("  Avg Slippage:     %.6f\n", m.AverageSlippage)
	fmt.Printf("  Benchmark Return: %.2f%%\n", m.BenchmarkReturn)
	fmt.Println()

	fmt.Println("Market Context:")
	fmt.Printf("  Volume:           %.2f\n", r.MarketContext.Volume)
	fmt.Printf("  Volatility:       %.6f\n", r.MarketContext.Volatility)
	fmt.Printf("  Avg Spread:       %.6f\n", r.MarketContext.AverageSpread)
	fmt.Println()

	fmt.Printf("Trades: %d (sampled input: %d)\n", len(r.Trades), len(r.LinkedHistoricalTrades))
	for _, t := range r.Trades {
		profit := "-"
		if t.Profit != nil {
			profit = fmt.Sprintf("%.6f", *t.Profit)
		}
		fmt.Printf("  %s  %-4s price=%.6f amount=%.4f conf=%.2f profit=%s\n",
			t.Timestamp.Format(time.RFC3339), t.Type, t.Price, t.Amount, t.Confidence, profit)
	}
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.4f", v)
}
