// Package trace exports per-operation timing records for resolutions and
// ingestions. Records carry identifiers and counters only.
package trace

import (
	"context"
	"time"
)

// Exporter defines the interface for exporting operation traces.
// Implementations must be safe for concurrent use.
type Exporter interface {
	// Export writes a trace record to the configured destination.
	Export(ctx context.Context, record *TraceRecord) error

	// Close flushes any buffered records and releases resources.
	Close() error
}

// TraceRecord is a sanitized operation trace ready for export.
// It never holds query text, audit details or artifact content.
type TraceRecord struct {
	// Timestamp is the operation start time
	Timestamp time.Time `json:"timestamp"`

	// OperationID uniquely identifies this operation (for correlation)
	OperationID string `json:"operationId"`

	// Operation is the operation type: "resolve", "ingest"
	Operation string `json:"operation"`

	// DurationMs is the total operation duration in milliseconds
	DurationMs int64 `json:"durationMs"`

	// Status is "success" or "error"
	Status string `json:"status"`

	Spans []SpanRecord `json:"spans"`

	// ErrorType classifies the error (if Status == "error")
	// Values: graph, audit, validation, database, timeout, unknown
	ErrorType string `json:"errorType,omitempty"`

	// IDs holds operation identifiers such as answerId and category
	IDs map[string]interface{} `json:"ids,omitempty"`
}

// SpanRecord is a single stage within an operation.
type SpanRecord struct {
	// Name is the stage name (see OperationTrace)
	Name string `json:"name"`

	DurationMs int64 `json:"durationMs"`

	// OK indicates success (true) or failure (false)
	OK bool `json:"ok"`

	// ErrorType classifies the error (if OK == false)
	ErrorType string `json:"errorType,omitempty"`

	// Counters provides stage-specific metrics (e.g., citations, entryId)
	Counters map[string]int64 `json:"counters,omitempty"`
}

// FileExporterOption configures a FileExporter.
type FileExporterOption func(*FileExporter)
