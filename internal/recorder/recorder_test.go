package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/guregu/null/v6"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_SnapshotsAndLastZone(t *testing.T) {
	r := openTestRecorder(t)
	ctx := context.Background()

	if _, ok, err := r.LastZone(ctx, "NVDA"); err != nil || ok {
		t.Fatalf("expected no zone yet, got ok=%v err=%v", ok, err)
	}

	ts := int64(1_700_000_000)
	nowUnix = func() int64 { ts++; return ts }
	t.Cleanup(func() { nowUnix = func() int64 { return time.Now().Unix() } })

	snaps := []model.Snapshot{
		{Symbol: "NVDA", Price: 100, RSI14: null.FloatFrom(25), Signal: model.Signal{Zone: model.ZoneOversold}},
		{Symbol: "AAPL", Price: 200, Signal: model.Signal{Zone: model.ZoneOverbought}},
		{Symbol: "NVDA", Price: 110, SMA20: null.FloatFrom(105), RSI14: null.FloatFrom(50), Signal: model.Signal{Zone: model.ZoneNeutral}},
	}
	for i := range snaps {
		if err := r.RecordSnapshot(ctx, &snaps[i]); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	zone, ok, err := r.LastZone(ctx, "NVDA")
	if err != nil || !ok {
		t.Fatalf("last zone: ok=%v err=%v", ok, err)
	}
	if zone != model.ZoneNeutral {
		t.Errorf("expected NEUTRAL, got %s", zone)
	}

	var nullSMA int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE sma20 IS NULL`).Scan(&nullSMA); err != nil {
		t.Fatalf("count: %v", err)
	}
	if nullSMA != 2 {
		t.Errorf("expected 2 snapshots without SMA, got %d", nullSMA)
	}
}

func TestSQLiteRecorder_RecordAlert(t *testing.T) {
	r := openTestRecorder(t)
	ctx := context.Background()
	evt := &AlertEvent{
		Symbol:   "BTC-USD",
		FromZone: model.ZoneNeutral,
		ToZone:   model.ZoneOverbought,
		Price:    70000,
		Label:    "Ipercomprato",
	}
	if err := r.RecordAlert(ctx, evt); err != nil {
		t.Fatalf("record alert: %v", err)
	}
	var to string
	if err := r.db.QueryRow(`SELECT to_zone FROM alerts WHERE symbol = 'BTC-USD'`).Scan(&to); err != nil {
		t.Fatalf("query: %v", err)
	}
	if to != string(model.ZoneOverbought) {
		t.Errorf("expected OVERBOUGHT, got %s", to)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordSnapshot(context.Background(), &model.Snapshot{}); err != nil {
		t.Error(err)
	}
	if _, ok, _ := r.LastZone(context.Background(), "X"); ok {
		t.Error("noop has no history")
	}
}
