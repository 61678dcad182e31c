package sheet

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every worksheet in a single table of JSON rows.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sheet_rows (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			worksheet  TEXT NOT NULL,
			payload    TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sheet_rows_ws ON sheet_rows(worksheet, id)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	log.Printf("[INFO] sqlite sheet store opened: %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Read(ctx context.Context, worksheet string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM sheet_rows WHERE worksheet = ? ORDER BY id`, worksheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", worksheet, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", worksheet, err)
		}
		var r Row
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			log.Printf("[WARN] skipping corrupt row in %s: %v", worksheet, err)
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Append(ctx context.Context, worksheet string, columns []string, row Row) error {
	stored := make(Row, len(columns))
	for i, v := range ordered(columns, row) {
		stored[columns[i]] = v
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sheet_rows (worksheet, payload, created_at) VALUES (?,?,?)`,
		worksheet, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("append %s: %w", worksheet, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite sheet store")
	return s.db.Close()
}
