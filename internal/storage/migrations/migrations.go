// Package migrations applies the embedded schema for both backing stores:
// the PostgreSQL result/trade tables and the ClickHouse trade archive.
// Files run in lexical order and every statement is written to be
// idempotent (CREATE ... IF NOT EXISTS), so re-running on boot is safe.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed postgres/*.sql clickhouse/*.sql
var schemaFS embed.FS

// schemaFile is one embedded migration, already loaded.
type schemaFile struct {
	name string
	sql  string
}

// schemaFiles returns the migrations for one dialect directory, sorted by
// file name. Empty files are dropped.
func schemaFiles(dialect string) ([]schemaFile, error) {
	entries, err := fs.ReadDir(schemaFS, dialect)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dialect, err)
	}

	var files []schemaFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := fs.ReadFile(schemaFS, dialect+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		files = append(files, schemaFile{name: entry.Name(), sql: string(data)})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}
