package cognis

import (
	"context"
	"errors"
	"strings"

	"github.com/dan-solli/cognis/pkg/artifact"
	"github.com/dan-solli/cognis/pkg/audit"
	"github.com/dan-solli/cognis/pkg/chat"
	"github.com/dan-solli/cognis/pkg/config"
	"github.com/dan-solli/cognis/pkg/graph"
)

// Error type constants for classification
const (
	ErrTypeGraph      = "graph"
	ErrTypeAudit      = "audit"
	ErrTypeValidation = "validation"
	ErrTypeDatabase   = "database"
	ErrTypeTimeout    = "timeout"
	ErrTypeUnknown    = "unknown"
)

// ClassifyError inspects an error and returns its type classification.
// The result is used as the error_type label in metrics and traces.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	// Audit failures outrank whatever the sink wrapped.
	if errors.Is(err, audit.ErrWrite) || errors.Is(err, audit.ErrUnknownAction) || errors.Is(err, audit.ErrSequence) {
		return ErrTypeAudit
	}

	if errors.Is(err, graph.ErrDuplicateID) ||
		errors.Is(err, graph.ErrUnknownEntity) ||
		errors.Is(err, graph.ErrInvalidWeight) ||
		errors.Is(err, graph.ErrSelfLoop) {
		return ErrTypeGraph
	}

	if errors.Is(err, graph.ErrInvalidKind) ||
		errors.Is(err, graph.ErrEmptyID) ||
		errors.Is(err, artifact.ErrInvalidID) ||
		errors.Is(err, artifact.ErrDuplicate) ||
		errors.Is(err, artifact.ErrUnknownType) ||
		errors.Is(err, chat.ErrEmptyQuery) ||
		errors.Is(err, chat.ErrTurnInFlight) ||
		errors.Is(err, ErrClosed) ||
		errors.Is(err, config.ErrInvalid) {
		return ErrTypeValidation
	}

	errStrLower := strings.ToLower(err.Error())

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(errStrLower, "timeout") || strings.Contains(errStrLower, "deadline exceeded") {
		return ErrTypeTimeout
	}

	if strings.Contains(errStrLower, "sql") ||
		strings.Contains(errStrLower, "database") ||
		strings.Contains(errStrLower, "constraint") {
		return ErrTypeDatabase
	}

	if strings.Contains(errStrLower, "validation") ||
		strings.Contains(errStrLower, "invalid") ||
		strings.Contains(errStrLower, "required") ||
		strings.Contains(errStrLower, "cannot be empty") ||
		strings.Contains(errStrLower, "must be") {
		return ErrTypeValidation
	}

	return ErrTypeUnknown
}
