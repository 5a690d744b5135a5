package citation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/cognis/pkg/artifact"
	"github.com/dan-solli/cognis/pkg/audit"
	"github.com/dan-solli/cognis/pkg/graph"
	"github.com/dan-solli/cognis/pkg/trace"
)

// DefaultLatency is the simulated backend delay of the search view.
const DefaultLatency = 1500 * time.Millisecond

// Answer is a resolved query with its provenance.
type Answer struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Category  Category  `json:"category"`
	Text      string    `json:"text"`
	Citations []string  `json:"citations"` // Artifact ids, most relevant first
	CreatedAt time.Time `json:"createdAt"`

	// Audit entries bracketing the resolution.
	QueryEntryID    int64 `json:"queryEntryId"`
	ResponseEntryID int64 `json:"responseEntryId"`

	// Trace is set when the resolver was built WithTracing.
	Trace *trace.OperationTrace `json:"trace,omitempty"`
}

// Outcome describes one finished resolution, successful or not.
type Outcome struct {
	Answer   Answer
	Err      error
	Duration time.Duration
	Async    bool
}

// Hook observes finished resolutions. It runs on the resolving goroutine.
type Hook func(ctx context.Context, o Outcome)

// Resolver classifies queries, cites artifacts and records both halves of
// every resolution in the audit trail.
type Resolver struct {
	catalog artifact.Catalog
	trail   *audit.Trail
	actor   string
	latency time.Duration
	tracing bool
	hook    Hook
	logger  *slog.Logger
	now     func() time.Time

	inflight sync.WaitGroup
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLatency sets the simulated backend delay. Zero resolves immediately.
func WithLatency(d time.Duration) Option {
	return func(r *Resolver) { r.latency = d }
}

// WithActor sets the identity recorded on audit entries.
func WithActor(actor string) Option {
	return func(r *Resolver) { r.actor = actor }
}

// WithTracing attaches an OperationTrace to every Answer.
func WithTracing(enabled bool) Option {
	return func(r *Resolver) { r.tracing = enabled }
}

// WithHook installs an observer for finished resolutions.
func WithHook(h Hook) Option {
	return func(r *Resolver) { r.hook = h }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithClock overrides the answer timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a resolver citing from catalog and auditing to trail.
func NewResolver(catalog artifact.Catalog, trail *audit.Trail, opts ...Option) *Resolver {
	r := &Resolver{
		catalog: catalog,
		trail:   trail,
		actor:   "system",
		latency: DefaultLatency,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// pending is a resolution whose query has been recorded.
type pending struct {
	query string
	entry audit.Entry
	start time.Time
	trace *trace.OperationTrace
}

// Resolve records the query, waits out the backend latency, then cites and
// records the response. It blocks for the whole resolution; ctx
// cancellation does not abort it once the query is on record.
func (r *Resolver) Resolve(ctx context.Context, query string, snap graph.Snapshot) (Answer, error) {
	p, err := r.begin(ctx, query)
	if err != nil {
		return Answer{}, err
	}
	return r.complete(context.WithoutCancel(ctx), p, snap, false)
}

// Submit records the query synchronously and completes the resolution in the
// background. The returned Future settles exactly once.
func (r *Resolver) Submit(ctx context.Context, query string, snap graph.Snapshot) (*Future, error) {
	p, err := r.begin(ctx, query)
	if err != nil {
		return nil, err
	}

	f := newFuture()
	bg := context.WithoutCancel(ctx)
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		f.settle(r.complete(bg, p, snap, true))
	}()
	return f, nil
}

// Drain blocks until every submitted resolution has settled.
func (r *Resolver) Drain() {
	r.inflight.Wait()
}

func (r *Resolver) begin(ctx context.Context, query string) (*pending, error) {
	p := &pending{query: query, start: time.Now()}
	if r.tracing {
		p.trace = trace.NewOperationTrace()
	}

	span := p.trace.StartSpan("audit-query")
	entry, err := r.trail.Record(ctx, audit.ActionAIQuerySent, r.actor, fmt.Sprintf("User query: %q", query))
	if err != nil {
		span.Finish("audit", nil)
		r.logger.Error("query not recorded; resolution refused", "error", err)
		r.notify(ctx, Outcome{Err: err, Duration: time.Since(p.start)})
		return nil, fmt.Errorf("failed to record query: %w", err)
	}
	span.Finish("", map[string]int64{"entryId": entry.ID})
	p.entry = entry

	r.logger.Debug("query recorded", "entry_id", entry.ID, "query", query)
	return p, nil
}

func (r *Resolver) complete(ctx context.Context, p *pending, snap graph.Snapshot, async bool) (Answer, error) {
	if r.latency > 0 {
		span := p.trace.StartSpan("latency")
		timer := time.NewTimer(r.latency)
		<-timer.C
		span.Finish("", nil)
	}

	span := p.trace.StartSpan("classify")
	category := Classify(p.query)
	span.Finish("", nil)

	span = p.trace.StartSpan("cite")
	ids := Cite(category, p.query, snap, r.catalog)
	cited := make([]artifact.Artifact, 0, len(ids))
	for _, id := range ids {
		a, _ := r.catalog.Get(id)
		cited = append(cited, a)
	}
	span.Finish("", map[string]int64{"citations": int64(len(ids))})

	answer := Answer{
		ID:           uuid.New().String(),
		Query:        p.query,
		Category:     category,
		Text:         compose(category, snap, cited),
		Citations:    ids,
		QueryEntryID: p.entry.ID,
		Trace:        p.trace,
	}

	span = p.trace.StartSpan("audit-response")
	entry, err := r.trail.Record(ctx, audit.ActionAIResponseGenerated, r.actor, fmt.Sprintf("Response to query about: %q", p.query))
	if err != nil {
		span.Finish("audit", nil)
		r.logger.Error("response not recorded", "answer_id", answer.ID, "error", err)
		err = fmt.Errorf("failed to record response: %w", err)
		r.notify(ctx, Outcome{Answer: answer, Err: err, Duration: time.Since(p.start), Async: async})
		return answer, err
	}
	span.Finish("", map[string]int64{"entryId": entry.ID})

	answer.ResponseEntryID = entry.ID
	answer.CreatedAt = r.now()

	r.logger.Info("resolution complete",
		"answer_id", answer.ID,
		"category", category.String(),
		"citations", len(ids),
		"duration_ms", time.Since(p.start).Milliseconds())
	r.notify(ctx, Outcome{Answer: answer, Duration: time.Since(p.start), Async: async})
	return answer, nil
}

func (r *Resolver) notify(ctx context.Context, o Outcome) {
	if r.hook != nil {
		r.hook(ctx, o)
	}
}
