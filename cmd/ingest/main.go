// Package main archives pool swaps from a Graph endpoint into ClickHouse so
// later simulations can replay them without hitting the subgraph.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	chstore "uniswap-sim-lab/internal/storage/clickhouse"
	"uniswap-sim-lab/internal/storage/migrations"
	"uniswap-sim-lab/internal/subgraph"
)

func main() {
	poolID := flag.String("pool", "", "Uniswap V3 pool ID to archive (required)")
	startStr := flag.String("start", "", "Window start, RFC3339 (required)")
	endStr := flag.String("end", "", "Window end, RFC3339 (default: now)")
	chunk := flag.Duration("chunk", 24*time.Hour, "Fetch window per batch")
	subgraphEndpoint := flag.String("subgraph-endpoint",
		"https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v3",
		"Graph endpoint to fetch swaps from")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (required)")

	flag.Parse()

	logger := log.New(os.Stderr, "[ingest] ", log.LstdFlags)

	if *poolID == "" {
		logger.Fatal("--pool is required")
	}
	if *clickhouseDSN == "" {
		logger.Fatal("--clickhouse-dsn is required")
	}

	start, err := time.Parse(time.RFC3339, *startStr)
	if err != nil {
		logger.Fatalf("invalid --start: %v", err)
	}
	end := time.Now().UTC()
	if *endStr != "" {
		end, err = time.Parse(time.RFC3339, *endStr)
		if err != nil {
			logger.Fatalf("invalid --end: %v", err)
		}
	}
	if !end.After(start) {
		logger.Fatal("--end must be after --start")
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

	conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("clickhouse setup failed: %v", err)
	}
	defer conn.Close()

	zlog, err := zap.NewDevelopment()
	if err != nil {
		logger.Fatalf("create logger: %v", err)
	}
	client := subgraph.NewClient(subgraph.Options{
		Endpoint: *subgraphEndpoint,
		Logger:   zlog,
	})
	store := chstore.NewHistoricalTradeStore(conn)

	logger.Printf("Archiving pool=%s window=[%s, %s) chunk=%v",
		*poolID, start.Format(time.RFC3339), end.Format(time.RFC3339), *chunk)

	total := 0
	for cur := start; cur.Before(end); cur = cur.Add(*chunk) {
		if ctx.Err() != nil {
			logger.Printf("Interrupted after %d trades", total)
			return
		}

		chunkEnd := cur.Add(*chunk)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		trades, err := client.GetHistoricalTrades(ctx, *poolID, cur, chunkEnd)
		if err != nil {
			logger.Fatalf("fetch [%s, %s): %v", cur.Format(time.RFC3339), chunkEnd.Format(time.RFC3339), err)
		}
		if len(trades) == 0 {
			continue
		}

		if err := store.InsertBulk(ctx, *poolID, trades); err != nil {
			logger.Fatalf("insert batch: %v", err)
		}
		total += len(trades)
		logger.Printf("Archived %d trades through %s (total %d)",
			len(trades), chunkEnd.Format(time.RFC3339), total)
	}

	logger.Printf("Done: %d trades archived", total)
}
