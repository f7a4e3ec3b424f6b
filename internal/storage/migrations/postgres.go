package migrations

import (
	"context"
	"fmt"

	"uniswap-sim-lab/internal/storage/postgres"
)

// RunPostgresMigrations creates the simulation_results and simulated_trades
// tables if they do not exist yet.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := schemaFiles("postgres")
	if err != nil {
		return err
	}

	for _, file := range files {
		if _, err := pool.Exec(ctx, file.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", file.name, err)
		}
	}
	return nil
}
