// Package main runs the simulation HTTP API: REST endpoints for starting
// runs, fetching results and progress, plus a websocket progress stream.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"uniswap-sim-lab/internal/config"
	"uniswap-sim-lab/internal/observability"
	"uniswap-sim-lab/internal/server"
	"uniswap-sim-lab/internal/simulation"
	"uniswap-sim-lab/internal/storage"
	chstore "uniswap-sim-lab/internal/storage/clickhouse"
	"uniswap-sim-lab/internal/storage/memory"
	"uniswap-sim-lab/internal/storage/migrations"
	pgstore "uniswap-sim-lab/internal/storage/postgres"
	redisstore "uniswap-sim-lab/internal/storage/redis"
	"uniswap-sim-lab/internal/subgraph"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("")

	// Trade source: archived ClickHouse trades when enabled, subgraph otherwise
	var source simulation.TradeSource
	if cfg.ClickHouse.Enabled {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.DSN)
		if err != nil {
			logger.Fatal("clickhouse setup failed", zap.Error(err))
		}
		defer conn.Close()
		source = chstore.NewHistoricalTradeStore(conn)
		logger.Info("using clickhouse trade archive")
	} else {
		source = subgraph.NewClient(subgraph.Options{
			Endpoint:   cfg.Subgraph.Endpoint,
			Logger:     logger,
			HTTPClient: &http.Client{Timeout: cfg.Subgraph.Timeout},
			MaxRetries: uint64(cfg.Subgraph.MaxRetries),
		})
		logger.Info("using subgraph trade source", zap.String("endpoint", cfg.Subgraph.Endpoint))
	}

	// Result store: PostgreSQL when enabled, in-memory otherwise
	var results storage.ResultStore = memory.NewResultStore()
	var simulated storage.SimulatedTradeStore
	if cfg.Postgres.Enabled {
		pool, err := pgstore.NewPoolWithOptions(ctx, cfg.Postgres.DSN, pgstore.Options{
			MaxConns:       cfg.Postgres.MaxConns,
			ConnectTimeout: cfg.Postgres.ConnectTimeout,
		})
		if err != nil {
			logger.Fatal("postgres connect failed", zap.Error(err))
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatal("postgres migrations failed", zap.Error(err))
		}
		results = pgstore.NewResultStore(pool)
		simulated = pgstore.NewSimulatedTradeStore(pool)
		logger.Info("using postgres result store")
	}

	// Progress sink: Redis when enabled, in-memory otherwise
	var progress storage.ProgressStore = memory.NewProgressStore()
	if cfg.Redis.Enabled {
		client, err := redisstore.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("redis connect failed", zap.Error(err))
		}
		defer client.Close()
		progress = redisstore.NewProgressStore(client)
		if simulated == nil {
			simulated = redisstore.NewTradeCache(client, cfg.Redis.TradeTTL)
		}
		logger.Info("using redis progress store")
	}

	runner := simulation.NewRunner(simulation.RunnerOptions{
		Source:              source,
		SimulatedTradeStore: simulated,
		ProgressStore:       progress,
		Logger:              logger,
		Metrics:             metrics,
	})

	srv := server.New(server.Options{
		Runner:        runner,
		ResultStore:   results,
		ProgressStore: progress,
		Metrics:       metrics,
		Logger:        logger,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
