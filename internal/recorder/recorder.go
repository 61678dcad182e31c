package recorder

import (
	"context"
	"time"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
)

// AlertEvent is a zone change pushed to the operator chat.
type AlertEvent struct {
	Symbol   string
	FromZone model.Zone
	ToZone   model.Zone
	Price    float64
	Label    string
	SentAt   time.Time
	Note     string // delivery error, if any
}

// Recorder persists watchlist history for later analysis.
type Recorder interface {
	RecordSnapshot(ctx context.Context, snap *model.Snapshot) error
	RecordAlert(ctx context.Context, evt *AlertEvent) error
	// LastZone returns the zone of the most recent snapshot for symbol.
	LastZone(ctx context.Context, symbol string) (model.Zone, bool, error)
	Close() error
}
