package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Sink durably persists entries. Append is called with entries in strictly
// increasing id order, one at a time.
type Sink interface {
	Append(ctx context.Context, entry Entry) error
}

// Source reads back entries a Sink persisted in an earlier session.
type Source interface {
	Entries(ctx context.Context) ([]Entry, error)
}

// ErrSequence is returned when persisted entries are not numbered 1..n.
var ErrSequence = errors.New("audit entries out of sequence")

// Trail is the in-memory system of record for audit entries. Record calls are
// serialized; Query and Count may run concurrently with them.
type Trail struct {
	mu      sync.RWMutex
	entries []Entry // Ascending id; entries[i].ID == i+1
	sink    Sink
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Trail.
type Option func(*Trail)

// WithSink makes every Record persist through sink before it is appended.
func WithSink(sink Sink) Option {
	return func(t *Trail) { t.sink = sink }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(t *Trail) { t.now = now }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trail) { t.logger = logger }
}

// NewTrail creates an empty trail.
func NewTrail(opts ...Option) *Trail {
	t := &Trail{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return t
}

// Record appends a new entry stamped with the current time and returns it.
// When a sink is configured and refuses the entry, Record returns a
// *WriteError and the trail is left unchanged.
func (t *Trail) Record(ctx context.Context, action Action, actor, details string) (Entry, error) {
	if !action.Valid() {
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownAction, uint8(action))
	}
	return t.append(ctx, action, actor, details, time.Time{})
}

func (t *Trail) append(ctx context.Context, action Action, actor, details string, ts time.Time) (Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ts.IsZero() {
		ts = t.now()
	}
	entry := Entry{
		ID:        int64(len(t.entries)) + 1,
		Action:    action,
		Actor:     actor,
		Timestamp: ts,
		Details:   details,
	}

	if t.sink != nil {
		if err := t.sink.Append(ctx, entry); err != nil {
			t.logger.Error("audit entry not persisted",
				"id", entry.ID,
				"action", entry.Action.String(),
				"error", err)
			return Entry{}, &WriteError{Entry: entry, Err: err}
		}
	}

	t.entries = append(t.entries, entry)
	return entry, nil
}

// Query returns the entries matching f, most recent first. It never returns
// nil for an empty result.
func (t *Trail) Query(f Filter) []Entry {
	match := f.compile()

	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, 0)
	for i := len(t.entries) - 1; i >= 0; i-- {
		if match(t.entries[i]) {
			out = append(out, t.entries[i])
		}
	}
	return out
}

// Count returns the number of recorded entries, which is also the id of the
// most recent one.
func (t *Trail) Count() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int64(len(t.entries))
}

// Latest returns the most recent entry, or false on an empty trail.
func (t *Trail) Latest() (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// Resume loads the entries already held by src into an empty trail, so that
// numbering continues after the last persisted id. It returns how many
// entries were loaded. The entries are not written back to the sink.
func (t *Trail) Resume(ctx context.Context, src Source) (int, error) {
	persisted, err := src.Entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read persisted audit entries: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) > 0 {
		return 0, fmt.Errorf("failed to resume audit trail: %d entries already recorded", len(t.entries))
	}
	for i, e := range persisted {
		if e.ID != int64(i)+1 {
			return 0, fmt.Errorf("%w: entry %d found at position %d", ErrSequence, e.ID, i+1)
		}
	}
	t.entries = append(t.entries, persisted...)

	if len(persisted) > 0 {
		t.logger.Info("audit trail resumed", "entries", len(persisted))
	}
	return len(persisted), nil
}

// SeedEntry is a pre-timestamped entry used to initialise a session.
type SeedEntry struct {
	Action    Action
	Actor     string
	Timestamp time.Time
	Details   string
}

// Seed records entries with their own timestamps, in order. It stops at the
// first failure.
func (t *Trail) Seed(ctx context.Context, seeds []SeedEntry) error {
	for i, s := range seeds {
		if !s.Action.Valid() {
			return fmt.Errorf("failed to seed entry %d: %w: %d", i, ErrUnknownAction, uint8(s.Action))
		}
		if _, err := t.append(ctx, s.Action, s.Actor, s.Details, s.Timestamp); err != nil {
			return fmt.Errorf("failed to seed entry %d: %w", i, err)
		}
	}
	return nil
}

// DefaultSeed is the activity already on record when a session opens.
func DefaultSeed() []SeedEntry {
	const actor = "Detective Sarah Chen"
	day := func(h, m, s int) time.Time {
		return time.Date(2024, time.January, 15, h, m, s, 0, time.UTC)
	}
	return []SeedEntry{
		{Action: ActionLogin, Actor: actor, Timestamp: day(9, 15, 23), Details: "User logged into system"},
		{Action: ActionFileUploaded, Actor: actor, Timestamp: day(9, 22, 45), Details: "case_001_whatsapp.zip uploaded successfully"},
		{Action: ActionSearchPerformed, Actor: actor, Timestamp: day(9, 25, 12), Details: `Search query: "crypto addresses bitcoin"`},
	}
}
