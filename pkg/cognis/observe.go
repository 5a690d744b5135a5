package cognis

import (
	"context"
	"time"

	"github.com/dan-solli/cognis/pkg/citation"
	"github.com/dan-solli/cognis/pkg/metrics"
	"github.com/dan-solli/cognis/pkg/trace"
)

// observe records the outcome of one operation.
func (s *Session) observe(ctx context.Context, op string, start time.Time, err error) {
	ms := time.Since(start).Milliseconds()
	if err != nil {
		s.metrics.RecordOperation(ctx, op, metrics.StatusError, ms)
		s.metrics.RecordError(ctx, op, ClassifyError(err))
		return
	}
	s.metrics.RecordOperation(ctx, op, metrics.StatusSuccess, ms)
}

// observeResolution is the resolver hook. Answers whose response reached the
// audit trail join the session history; every resolution is reported to
// metrics and traces.
func (s *Session) observeResolution(ctx context.Context, o citation.Outcome) {
	a := o.Answer
	if o.Err == nil && a.ID != "" {
		s.mu.Lock()
		s.answers = append(s.answers, a)
		s.mu.Unlock()
	}

	status := metrics.StatusSuccess
	if o.Err != nil {
		status = metrics.StatusError
		s.metrics.RecordError(ctx, metrics.OpResolve, ClassifyError(o.Err))
	}
	s.metrics.RecordOperation(ctx, metrics.OpResolve, status, o.Duration.Milliseconds())
	if a.Trace != nil {
		for _, span := range a.Trace.Spans {
			s.metrics.RecordStage(ctx, metrics.OpResolve, span.Name, span.DurationMs)
		}
	}
	s.metrics.SetStorageCount(ctx, "audit_entries", s.trail.Count())

	opID := a.ID
	if opID == "" {
		opID = "unrecorded"
	}
	s.exportTrace(ctx, metrics.OpResolve, opID, time.Now().Add(-o.Duration), a.Trace, o.Err, map[string]interface{}{
		"answerId":        a.ID,
		"category":        a.Category.String(),
		"citations":       len(a.Citations),
		"queryEntryId":    a.QueryEntryID,
		"responseEntryId": a.ResponseEntryID,
		"async":           o.Async,
	})
}

func (s *Session) exportTrace(ctx context.Context, op, opID string, start time.Time, ot *trace.OperationTrace, err error, ids map[string]interface{}) {
	record := trace.NewRecord(op, opID, start, ot, ClassifyError(err), ids)
	if xerr := s.exporter.Export(ctx, record); xerr != nil {
		s.logger.Warn("trace export failed", "operation", op, "error", xerr)
	}
}
