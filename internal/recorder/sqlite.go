package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/guregu/null/v6"
	_ "modernc.org/sqlite"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
)

var nowUnix = func() int64 { return time.Now().Unix() }

// SQLiteRecorder persists watchlist snapshots and alerts to SQLite.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the scanner writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			as_of     INTEGER,
			price     REAL,
			sma20     REAL,
			rsi14     REAL,
			zone      TEXT,
			trend     TEXT,
			label     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_ts ON snapshots(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			from_zone TEXT,
			to_zone   TEXT,
			price     REAL,
			label     TEXT,
			note      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSnapshot(ctx context.Context, snap *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO snapshots
		(timestamp, symbol, as_of, price, sma20, rsi14, zone, trend, label)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		nowUnix(), snap.Symbol, snap.AsOf.Unix(), snap.Price,
		snap.SMA20, snap.RSI14,
		string(snap.Signal.Zone), string(snap.Signal.Trend), snap.Signal.Label,
	)
	return err
}

func (r *SQLiteRecorder) RecordAlert(ctx context.Context, evt *AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.SentAt.Unix()
	if evt.SentAt.IsZero() {
		ts = nowUnix()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO alerts
		(timestamp, symbol, from_zone, to_zone, price, label, note)
		VALUES (?,?,?,?,?,?,?)`,
		ts, evt.Symbol, string(evt.FromZone), string(evt.ToZone),
		evt.Price, evt.Label, evt.Note,
	)
	return err
}

func (r *SQLiteRecorder) LastZone(ctx context.Context, symbol string) (model.Zone, bool, error) {
	var zone null.String
	err := r.db.QueryRowContext(ctx,
		`SELECT zone FROM snapshots WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT 1`,
		symbol).Scan(&zone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if !zone.Valid || zone.String == "" {
		return "", false, nil
	}
	return model.Zone(zone.String), true, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
