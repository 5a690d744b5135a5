package metrics

import "context"

// Operation labels recorded by the session facade.
const (
	OpAddEntity       = "add_entity"
	OpAddRelationship = "add_relationship"
	OpRecord          = "record"
	OpResolve         = "resolve"
	OpHitTest         = "hit_test"
	OpIngest          = "ingest"
)

// Status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusMiss    = "miss"
)

// Collector is the interface for metrics collection.
// Implementations are the Prometheus-backed collector and the no-op collector.
// Label values are operation and stage names only, never queries or audit details.
type Collector interface {
	RecordOperation(ctx context.Context, operation string, status string, durationMs int64)
	RecordStage(ctx context.Context, operation string, stage string, durationMs int64)
	RecordError(ctx context.Context, operation string, errorType string)
	SetStorageCount(ctx context.Context, storageType string, count int64)
}
