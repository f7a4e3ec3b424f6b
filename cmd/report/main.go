// Package main renders a saved simulation result as a markdown report or a
// trades CSV. Results come either from a JSON file produced by the simulate
// command or straight from the PostgreSQL result store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"uniswap-sim-lab/internal/domain"
	"uniswap-sim-lab/internal/reporting"
	pgstore "uniswap-sim-lab/internal/storage/postgres"
)

func main() {
	inputFile := flag.String("input", "", "Result JSON file (from simulate --format json)")
	simulationID := flag.String("simulation-id", "", "Load the result from storage instead of a file")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (with --simulation-id)")
	format := flag.String("format", "markdown", "Output format: markdown, csv")
	outputFile := flag.String("output", "", "Write to this file instead of stdout")

	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *inputFile == "" && *simulationID == "" {
		logger.Fatal("either --input or --simulation-id is required")
	}

	result, err := loadResult(*inputFile, *simulationID, *postgresDSN)
	if err != nil {
		logger.Fatalf("load result: %v", err)
	}

	var rendered string
	switch strings.ToLower(*format) {
	case "markdown":
		rendered = reporting.RenderMarkdown(result)
	case "csv":
		rendered = reporting.RenderTradesCSV(result.Trades)
	default:
		logger.Fatalf("invalid format: %s. Must be markdown or csv", *format)
	}

	if *outputFile == "" {
		fmt.Print(rendered)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(rendered), 0o644); err != nil {
		logger.Fatalf("write %s: %v", *outputFile, err)
	}
	logger.Printf("Wrote %s", *outputFile)
}

// loadResult reads the result from a file or from the result store.
func loadResult(inputFile, simulationID, postgresDSN string) (*domain.SimulationResult, error) {
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, err
		}
		var result domain.SimulationResult
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("parse %s: %w", inputFile, err)
		}
		return &result, nil
	}

	if postgresDSN == "" {
		return nil, fmt.Errorf("--postgres-dsn is required with --simulation-id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	return pgstore.NewResultStore(pool).GetByID(ctx, simulationID)
}
