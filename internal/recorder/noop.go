package recorder

import (
	"context"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(context.Context, *model.Snapshot) error { return nil }
func (n *NoopRecorder) RecordAlert(context.Context, *AlertEvent) error       { return nil }
func (n *NoopRecorder) LastZone(context.Context, string) (model.Zone, bool, error) {
	return "", false, nil
}
func (n *NoopRecorder) Close() error { return nil }
