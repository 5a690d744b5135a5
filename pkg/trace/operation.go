package trace

import "time"

// OperationTrace captures per-stage timing for one resolution or ingestion.
// Stage names are stable:
//   - "audit-query": recording the AI Query Sent entry
//   - "latency": the simulated backend delay
//   - "classify": keyword classification of the query
//   - "cite": citation ranking and validation
//   - "audit-response": recording the AI Response Generated entry
//   - "load-entities", "load-relationships", "load-artifacts": snapshot ingestion
type OperationTrace struct {
	Spans []SpanRecord `json:"spans"`

	// TotalDurationMs is the sum of span durations in milliseconds
	TotalDurationMs int64 `json:"totalDurationMs"`
}

// NewOperationTrace creates a trace with no spans.
func NewOperationTrace() *OperationTrace {
	return &OperationTrace{Spans: make([]SpanRecord, 0)}
}

// AddSpan appends a completed span.
func (t *OperationTrace) AddSpan(span SpanRecord) {
	t.Spans = append(t.Spans, span)
	t.TotalDurationMs += span.DurationMs
}

// SpanTimer measures one span. A timer from a nil trace is a no-op.
type SpanTimer struct {
	name  string
	start time.Time
	trace *OperationTrace
}

// StartSpan begins timing the named stage. It is safe to call on a nil trace.
func (t *OperationTrace) StartSpan(name string) *SpanTimer {
	if t == nil {
		return &SpanTimer{}
	}
	return &SpanTimer{name: name, start: time.Now(), trace: t}
}

// Finish records the span. errType is empty on success.
func (st *SpanTimer) Finish(errType string, counters map[string]int64) {
	if st.trace == nil {
		return
	}
	st.trace.AddSpan(SpanRecord{
		Name:       st.name,
		DurationMs: time.Since(st.start).Milliseconds(),
		OK:         errType == "",
		ErrorType:  errType,
		Counters:   counters,
	})
}
