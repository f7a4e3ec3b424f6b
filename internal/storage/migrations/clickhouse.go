package migrations

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	chstore "uniswap-sim-lab/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the archive database named in the DSN,
// applies the embedded schema, and returns a connection to that database
// for the caller to keep.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	// The target database may not exist yet, so create it from the
	// server's default database first.
	adminConn, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse admin: %w", err)
	}
	err = adminConn.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", dbName))
	if closeErr := adminConn.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("create database %s: %w", dbName, err)
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	files, err := schemaFiles("clickhouse")
	if err != nil {
		conn.Close()
		return nil, err
	}

	for _, file := range files {
		// The driver rejects multi-statement Exec calls, so each file is
		// split into single statements.
		for _, stmt := range splitStatements(file.sql) {
			if err := conn.Exec(ctx, stmt); err != nil {
				conn.Close()
				return nil, fmt.Errorf("apply migration %s: %w", file.name, err)
			}
		}
	}

	return conn, nil
}

// splitStatements splits SQL into single statements on semicolons outside
// single-quoted literals. Line comments (--) are stripped first; block
// comments are not supported in migration files.
func splitStatements(input string) []string {
	var lines []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		lines = append(lines, line)
	}
	joined := strings.Join(lines, "\n")

	var stmts []string
	var cur strings.Builder
	inString := false
	for i := 0; i < len(joined); i++ {
		ch := joined[i]
		switch {
		case ch == '\'':
			// '' escapes a quote inside a literal
			if inString && i+1 < len(joined) && joined[i+1] == '\'' {
				cur.WriteByte(ch)
				i++
				cur.WriteByte(joined[i])
				continue
			}
			inString = !inString
			cur.WriteByte(ch)
		case ch == ';' && !inString:
			if stmt := strings.TrimSpace(cur.String()); stmt != "" {
				stmts = append(stmts, stmt)
			}
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if stmt := strings.TrimSpace(cur.String()); stmt != "" {
		stmts = append(stmts, stmt)
	}
	return stmts
}

// databaseFromDSN extracts the database name from a clickhouse:// DSN path.
func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn missing database")
	}
	return db, nil
}
