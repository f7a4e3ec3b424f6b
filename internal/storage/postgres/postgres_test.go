package postgres

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"uniswap-sim-lab/internal/storage"
)

func TestMapError(t *testing.T) {
	if err := mapError("op", nil); err != nil {
		t.Errorf("nil error should map to nil, got %v", err)
	}

	if err := mapError("op", pgx.ErrNoRows); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("ErrNoRows should map to ErrNotFound, got %v", err)
	}

	dup := &pgconn.PgError{Code: pgErrUniqueViolation}
	if err := mapError("op", dup); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("unique violation should map to ErrDuplicateKey, got %v", err)
	}

	other := &pgconn.PgError{Code: "42601"}
	err := mapError("insert simulated trade", other)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("unrelated error should not map to a sentinel, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "insert simulated trade") {
		t.Errorf("unclassified error should carry the operation, got %v", err)
	}
	if !errors.Is(err, other) {
		t.Errorf("unclassified error should wrap the cause, got %v", err)
	}
}
