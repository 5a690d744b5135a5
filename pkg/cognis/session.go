// Package cognis is the investigation session: it owns the evidentiary graph,
// the audit trail and the artifact catalog, and records the audit entries
// that tie investigator actions to them.
package cognis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dan-solli/cognis/pkg/artifact"
	"github.com/dan-solli/cognis/pkg/audit"
	"github.com/dan-solli/cognis/pkg/chat"
	"github.com/dan-solli/cognis/pkg/citation"
	"github.com/dan-solli/cognis/pkg/config"
	"github.com/dan-solli/cognis/pkg/graph"
	"github.com/dan-solli/cognis/pkg/metrics"
	"github.com/dan-solli/cognis/pkg/report"
	"github.com/dan-solli/cognis/pkg/spatial"
	"github.com/dan-solli/cognis/pkg/trace"
)

// ErrClosed is returned for work submitted after Close.
var ErrClosed = errors.New("session closed")

// Options configures a Session. The zero value is usable.
type Options struct {
	// Actor is the investigator recorded on audit entries (default "system")
	Actor string

	// ResponseLatency is the simulated backend delay per resolution
	ResponseLatency time.Duration

	// Sizing derives rendered radii (default graph.DefaultSizing)
	Sizing graph.Sizing

	// SeedAudit records the session-opening entries on an empty trail
	SeedAudit bool

	// AuditSink durably persists audit entries; nil keeps them in memory.
	// A sink that is also an audit.Source is read back first, and numbering
	// continues after its last entry.
	AuditSink audit.Sink

	// Metrics receives operation metrics (default no-op)
	Metrics metrics.Collector

	// Exporter receives operation traces (default no-op)
	Exporter trace.Exporter

	// Logger for session diagnostics. If nil, logging is disabled.
	Logger *slog.Logger

	// Clock stamps audit entries and reports (default time.Now)
	Clock func() time.Time
}

// Session is one investigator's working session. Safe for concurrent use.
type Session struct {
	actor    string
	graph    *graph.MemoryStore
	trail    *audit.Trail
	catalog  *artifact.MemoryCatalog
	resolver *citation.Resolver
	metrics  metrics.Collector
	exporter trace.Exporter
	logger   *slog.Logger
	now      func() time.Time
	closers  []io.Closer

	// lifecycle is held shared while work is handed to the resolver and
	// exclusively while Close marks the session closed.
	lifecycle sync.RWMutex
	closed    bool

	mu           sync.Mutex
	index        *spatial.Index
	indexVersion uint64
	threads      []*chat.Thread
	answers      []citation.Answer
}

// New creates a session from opts.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Actor == "" {
		opts.Actor = "system"
	}
	if opts.Sizing == (graph.Sizing{}) {
		opts.Sizing = graph.DefaultSizing
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNoopCollector()
	}
	if opts.Exporter == nil {
		opts.Exporter = trace.NoopExporter{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Session{
		actor:    opts.Actor,
		graph:    graph.NewMemoryStore(graph.WithSizing(opts.Sizing), graph.WithClock(opts.Clock)),
		catalog:  artifact.NewMemoryCatalog(),
		metrics:  opts.Metrics,
		exporter: opts.Exporter,
		logger:   opts.Logger,
		now:      opts.Clock,
	}

	trailOpts := []audit.Option{audit.WithClock(opts.Clock), audit.WithLogger(opts.Logger)}
	if opts.AuditSink != nil {
		trailOpts = append(trailOpts, audit.WithSink(opts.AuditSink))
	}
	s.trail = audit.NewTrail(trailOpts...)

	s.resolver = citation.NewResolver(s.catalog, s.trail,
		citation.WithActor(opts.Actor),
		citation.WithLatency(opts.ResponseLatency),
		citation.WithTracing(true),
		citation.WithClock(opts.Clock),
		citation.WithLogger(opts.Logger),
		citation.WithHook(s.observeResolution),
	)

	resumed := 0
	if src, ok := opts.AuditSink.(audit.Source); ok {
		n, err := s.trail.Resume(ctx, src)
		if err != nil {
			return nil, err
		}
		resumed = n
	}

	// A resumed trail already holds its opening entries.
	if opts.SeedAudit && resumed == 0 {
		if err := s.trail.Seed(ctx, audit.DefaultSeed()); err != nil {
			return nil, fmt.Errorf("failed to seed audit trail: %w", err)
		}
	}
	s.updateStorageCounts(ctx)

	s.logger.Info("session started", "actor", opts.Actor, "resumed_entries", resumed, "audit_entries", s.trail.Count())
	return s, nil
}

// Open builds a session from loaded configuration, opening the durable audit
// database and the trace file it names. Close releases them.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	opts := Options{
		Actor:           cfg.Actor,
		ResponseLatency: cfg.ResponseLatency,
		Sizing:          cfg.Sizing,
		SeedAudit:       cfg.SeedAudit,
		Logger:          logger,
	}

	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	if cfg.AuditDB != "" {
		sink, err := audit.NewSQLiteSink(cfg.AuditDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		opts.AuditSink = sink
		closers = append(closers, sink)
	}

	exporter, err := trace.NewFileExporter(cfg.TraceFile)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	opts.Exporter = exporter
	closers = append(closers, exporter)

	if cfg.Metrics {
		opts.Metrics = metrics.NewCollector()
	}

	s, err := New(ctx, opts)
	if err != nil {
		closeAll()
		return nil, err
	}
	s.closers = closers
	return s, nil
}

// Graph returns the session's graph store.
func (s *Session) Graph() graph.Store { return s.graph }

// Trail returns the session's audit trail.
func (s *Session) Trail() *audit.Trail { return s.trail }

// Catalog returns the session's artifact catalog.
func (s *Session) Catalog() artifact.Catalog { return s.catalog }

// Resolver returns the session's citation resolver.
func (s *Session) Resolver() *citation.Resolver { return s.resolver }

// Metrics returns the session's metrics collector.
func (s *Session) Metrics() metrics.Collector { return s.metrics }

// Actor returns the investigator recorded on audit entries.
func (s *Session) Actor() string { return s.actor }

// Close rejects further resolutions with ErrClosed, waits for in-flight ones,
// then releases the audit database and trace file. Later calls return nil.
func (s *Session) Close() error {
	s.lifecycle.Lock()
	if s.closed {
		s.lifecycle.Unlock()
		return nil
	}
	s.closed = true
	s.lifecycle.Unlock()

	s.resolver.Drain()
	s.mu.Lock()
	threads := append([]*chat.Thread(nil), s.threads...)
	s.mu.Unlock()
	for _, t := range threads {
		t.Wait()
	}

	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	s.logger.Info("session closed", "audit_entries", s.trail.Count())
	return errors.Join(errs...)
}

// Login records the investigator signing in.
func (s *Session) Login(ctx context.Context) (audit.Entry, error) {
	return s.record(ctx, audit.ActionLogin, "User logged into system")
}

// Logout records the investigator signing out.
func (s *Session) Logout(ctx context.Context) (audit.Entry, error) {
	return s.record(ctx, audit.ActionLogout, "User logged out of system")
}

// Record appends an investigator action to the audit trail.
func (s *Session) Record(ctx context.Context, action audit.Action, details string) (audit.Entry, error) {
	return s.record(ctx, action, details)
}

func (s *Session) record(ctx context.Context, action audit.Action, details string) (audit.Entry, error) {
	start := time.Now()
	entry, err := s.trail.Record(ctx, action, s.actor, details)
	s.observe(ctx, metrics.OpRecord, start, err)
	if err != nil {
		return audit.Entry{}, err
	}
	s.metrics.SetStorageCount(ctx, "audit_entries", s.trail.Count())
	return entry, nil
}

// QueryAudit filters the audit trail, most recent first. action may be
// empty or "all".
func (s *Session) QueryAudit(text, action string) ([]audit.Entry, error) {
	f, err := audit.ParseFilter(text, action)
	if err != nil {
		return nil, err
	}
	return s.trail.Query(f), nil
}

// AddEntity inserts one entity into the graph.
func (s *Session) AddEntity(ctx context.Context, e graph.Entity) (graph.Entity, error) {
	start := time.Now()
	stored, err := s.graph.AddEntity(ctx, e)
	s.observe(ctx, metrics.OpAddEntity, start, err)
	if err == nil {
		s.updateStorageCounts(ctx)
	}
	return stored, err
}

// AddRelationship inserts one relationship into the graph.
func (s *Session) AddRelationship(ctx context.Context, from, to, kind string, weight int) (graph.Relationship, error) {
	start := time.Now()
	rel, err := s.graph.AddRelationship(ctx, from, to, kind, weight)
	s.observe(ctx, metrics.OpAddRelationship, start, err)
	if err == nil {
		s.updateStorageCounts(ctx)
	}
	return rel, err
}

// MoveEntity repositions an entity on the canvas.
func (s *Session) MoveEntity(ctx context.Context, id string, p graph.Point) (graph.Entity, error) {
	return s.graph.MoveEntity(ctx, id, p)
}

// NewThread opens a conversation backed by the session resolver.
func (s *Session) NewThread() (*chat.Thread, error) {
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	t, err := chat.NewThread(guardedResolver{s}, s.graph, s.logger)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.threads = append(s.threads, t)
	s.mu.Unlock()
	return t, nil
}

// Thread returns the open thread with id.
func (s *Session) Thread(id string) (*chat.Thread, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.threads {
		if t.ID() == id {
			return t, true
		}
	}
	return nil, false
}

// Ask resolves a query synchronously against the current graph.
func (s *Session) Ask(ctx context.Context, query string) (citation.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return citation.Answer{}, chat.ErrEmptyQuery
	}
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	if s.closed {
		return citation.Answer{}, ErrClosed
	}
	return s.resolver.Resolve(ctx, query, s.graph.Snapshot())
}

// guardedResolver hands thread submissions to the session resolver until the
// session closes.
type guardedResolver struct {
	s *Session
}

func (g guardedResolver) Submit(ctx context.Context, query string, snap graph.Snapshot) (*citation.Future, error) {
	g.s.lifecycle.RLock()
	defer g.s.lifecycle.RUnlock()
	if g.s.closed {
		return nil, ErrClosed
	}
	return g.s.resolver.Submit(ctx, query, snap)
}

// Answers returns every answer resolved in the session, in completion order.
func (s *Session) Answers() []citation.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]citation.Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

// ExportReport assembles the case report from the current graph and every
// answer so far, and records the export.
func (s *Session) ExportReport(ctx context.Context) (report.Report, error) {
	r := report.Build(s.graph.Snapshot(), s.catalog, s.Answers(), s.now())
	details := fmt.Sprintf("Report generated with %d findings and %d source artifacts", len(r.Findings), len(r.Sources))
	if _, err := s.record(ctx, audit.ActionReportExported, details); err != nil {
		return report.Report{}, err
	}
	return r, nil
}

func (s *Session) updateStorageCounts(ctx context.Context) {
	snap := s.graph.Snapshot()
	s.metrics.SetStorageCount(ctx, "entities", int64(len(snap.Entities)))
	s.metrics.SetStorageCount(ctx, "relationships", int64(len(snap.Relationships)))
	s.metrics.SetStorageCount(ctx, "artifacts", int64(s.catalog.Len()))
	s.metrics.SetStorageCount(ctx, "audit_entries", s.trail.Count())
}
