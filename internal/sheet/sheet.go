// Package sheet treats a spreadsheet as a flat, append-only database.
// Worksheets are addressed by name; rows are column-name → cell maps.
// There are no uniqueness, update or transactional guarantees.
package sheet

import (
	"context"
	"fmt"
	"strings"
)

// Row is one record keyed by column header.
type Row map[string]string

// Store reads and appends worksheet rows.
type Store interface {
	Read(ctx context.Context, worksheet string) ([]Row, error)
	Append(ctx context.Context, worksheet string, columns []string, row Row) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory  = "memory"
	BackendSQLite  = "sqlite"
	BackendGSheets = "gsheets"
)

// Options carries backend-specific settings.
type Options struct {
	// GoogleCredentials is the service-account JSON for the gsheets backend.
	GoogleCredentials []byte
}

// Open returns a store for the provided backend target.
// Examples:
//   - "sqlite:data/hub.db"
//   - "gsheets:https://docs.google.com/spreadsheets/d/<id>/edit"
//   - "memory"
//
// A target without a backend prefix is treated as a SQLite path.
func Open(ctx context.Context, target string, opts Options) (Store, error) {
	backend, arg := parseTarget(target)

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		if arg == "" {
			arg = "data/hub.db"
		}
		return NewSQLiteStore(arg)
	case BackendGSheets:
		return NewGoogleStore(ctx, arg, opts.GoogleCredentials)
	default:
		return nil, fmt.Errorf("unsupported sheet backend: %s", backend)
	}
}

func parseTarget(target string) (backend, arg string) {
	if target == "" {
		return BackendSQLite, ""
	}
	if !strings.Contains(target, ":") {
		backend = strings.ToLower(target)
		switch backend {
		case BackendMemory, BackendSQLite, BackendGSheets:
			return backend, ""
		default:
			return BackendSQLite, target
		}
	}
	parts := strings.SplitN(target, ":", 2)
	return strings.ToLower(parts[0]), parts[1]
}

// ordered returns row values in column order; missing cells are empty.
func ordered(columns []string, row Row) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = row[c]
	}
	return out
}
