package metrics

import "context"

// NoopCollector discards every measurement. It is the session default.
type NoopCollector struct{}

var _ Collector = NoopCollector{}

// NewNoopCollector creates a no-op collector
func NewNoopCollector() NoopCollector {
	return NoopCollector{}
}

// RecordOperation does nothing
func (NoopCollector) RecordOperation(ctx context.Context, operation string, status string, durationMs int64) {
}

// RecordStage does nothing
func (NoopCollector) RecordStage(ctx context.Context, operation string, stage string, durationMs int64) {
}

// RecordError does nothing
func (NoopCollector) RecordError(ctx context.Context, operation string, errorType string) {
}

// SetStorageCount does nothing
func (NoopCollector) SetStorageCount(ctx context.Context, storageType string, count int64) {
}
