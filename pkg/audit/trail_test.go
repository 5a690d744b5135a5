package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	var mu sync.Mutex
	ts := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		ts = ts.Add(time.Second)
		return ts
	}
}

// failingSink accepts the first n entries and refuses the rest.
type failingSink struct {
	mu       sync.Mutex
	accept   int
	appended []Entry
}

var errDiskFull = errors.New("disk full")

func (s *failingSink) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.appended) >= s.accept {
		return errDiskFull
	}
	s.appended = append(s.appended, e)
	return nil
}

func TestTrail_RecordThenQuery(t *testing.T) {
	ctx := context.Background()
	trail := NewTrail(WithClock(fixedClock()))

	first, err := trail.Record(ctx, ActionLogin, "alice", "User logged into system")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	second, err := trail.Record(ctx, ActionNodeSelected, "alice", "Selected person: John Doe")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
	assert.True(t, second.Timestamp.After(first.Timestamp))

	all := trail.Query(Filter{})
	require.Len(t, all, 2)
	assert.Equal(t, second, all[0], "most recent first")
	assert.Equal(t, first, all[1])
	assert.Equal(t, int64(2), trail.Count())

	latest, ok := trail.Latest()
	require.True(t, ok)
	assert.Equal(t, second, latest)
}

func TestTrail_CountMatchesSuccessfulRecords(t *testing.T) {
	ctx := context.Background()
	trail := NewTrail()

	for i := 0; i < 25; i++ {
		e, err := trail.Record(ctx, ActionSearchPerformed, "bob", fmt.Sprintf("query %d", i))
		require.NoError(t, err)
		assert.Equal(t, trail.Count(), e.ID)
	}
	assert.Equal(t, int64(25), trail.Count())
}

func TestTrail_RejectsUnknownAction(t *testing.T) {
	trail := NewTrail()

	_, err := trail.Record(context.Background(), ActionUnknown, "bob", "x")
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = trail.Record(context.Background(), Action(99), "bob", "x")
	assert.ErrorIs(t, err, ErrUnknownAction)

	assert.Equal(t, int64(0), trail.Count())
}

func TestTrail_QueryByAction(t *testing.T) {
	ctx := context.Background()
	trail := NewTrail()

	actions := []Action{ActionLogin, ActionFileUploaded, ActionLogin, ActionLogout, ActionLogin, ActionAIQuerySent}
	var logins []int64
	for _, a := range actions {
		e, err := trail.Record(ctx, a, "carol", "details")
		require.NoError(t, err)
		if a == ActionLogin {
			logins = append([]int64{e.ID}, logins...)
		}
	}

	got := trail.Query(Filter{Action: ActionLogin})
	var ids []int64
	for _, e := range got {
		assert.Equal(t, ActionLogin, e.Action)
		ids = append(ids, e.ID)
	}
	assert.Equal(t, logins, ids, "exactly the Login subset, id descending")
}

func TestTrail_QueryByGroup(t *testing.T) {
	ctx := context.Background()
	trail := NewTrail()

	for _, a := range []Action{ActionLogin, ActionNodeSelected, ActionAIQuerySent, ActionNetworkSearch, ActionLogout} {
		_, err := trail.Record(ctx, a, "carol", "details")
		require.NoError(t, err)
	}

	got := trail.Query(Filter{Group: GroupNetwork})
	require.Len(t, got, 2)
	assert.Equal(t, ActionNetworkSearch, got[0].Action)
	assert.Equal(t, ActionNodeSelected, got[1].Action)

	assert.Len(t, trail.Query(Filter{Group: GroupAuth, Action: ActionLogout}), 1)
	assert.Empty(t, trail.Query(Filter{Group: GroupAuth, Action: ActionNodeSelected}))
}

func TestTrail_QueryText(t *testing.T) {
	ctx := context.Background()
	trail := NewTrail()
	require.NoError(t, trail.Seed(ctx, DefaultSeed()))
	_, err := trail.Record(ctx, ActionReportExported, "Officer Mike Rodriguez", "PDF report generated and downloaded")
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"matches details", Filter{Text: "whatsapp"}, []int64{2}},
		{"matches actor", Filter{Text: "RODRIGUEZ"}, []int64{4}},
		{"matches action name", Filter{Text: "file up"}, []int64{2}},
		{"shared actor", Filter{Text: "sarah"}, []int64{3, 2, 1}},
		{"text and action", Filter{Text: "sarah", Action: ActionLogin}, []int64{1}},
		{"text and mismatched action", Filter{Text: "pdf", Action: ActionLogin}, []int64{}},
		{"no match", Filter{Text: "ethereum"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trail.Query(tt.filter)
			require.NotNil(t, got)
			ids := make([]int64, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestTrail_QueryReturnsCopies(t *testing.T) {
	trail := NewTrail()
	_, err := trail.Record(context.Background(), ActionLogin, "dave", "original")
	require.NoError(t, err)

	got := trail.Query(Filter{})
	got[0].Details = "tampered"

	again := trail.Query(Filter{})
	assert.Equal(t, "original", again[0].Details)
}

func TestTrail_Seed(t *testing.T) {
	ctx := context.Background()
	trail := NewTrail()
	require.NoError(t, trail.Seed(ctx, DefaultSeed()))

	entries := trail.Query(Filter{})
	require.Len(t, entries, 3)
	assert.Equal(t, ActionSearchPerformed, entries[0].Action)
	assert.Equal(t, ActionLogin, entries[2].Action)
	assert.Equal(t, "Detective Sarah Chen", entries[2].Actor)
	assert.Equal(t, time.Date(2024, time.January, 15, 9, 15, 23, 0, time.UTC), entries[2].Timestamp)

	err := trail.Seed(ctx, []SeedEntry{{Action: ActionUnknown}})
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, int64(3), trail.Count())
}

// staticSource hands back a fixed set of persisted entries.
type staticSource struct {
	entries []Entry
	err     error
}

func (s staticSource) Entries(ctx context.Context) ([]Entry, error) {
	return s.entries, s.err
}

func TestTrail_Resume(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	src := staticSource{entries: []Entry{
		{ID: 1, Timestamp: ts, Action: ActionLogin, Actor: "Detective Sarah Chen", Details: "User logged in"},
		{ID: 2, Timestamp: ts.Add(time.Minute), Action: ActionNodeSelected, Actor: "Detective Sarah Chen", Details: "Selected person: John Doe"},
	}}

	sink := &failingSink{accept: 10}
	trail := NewTrail(WithSink(sink), WithClock(fixedClock()))
	n, err := trail.Resume(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, sink.appended, "resumed entries are not written back")

	e, err := trail.Record(ctx, ActionSearchPerformed, "Detective Sarah Chen", `Searched for: "wallet"`)
	require.NoError(t, err)
	assert.Equal(t, int64(3), e.ID)

	got := trail.Query(Filter{Text: "john doe"})
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestTrail_ResumeRejectsGaps(t *testing.T) {
	ctx := context.Background()
	src := staticSource{entries: []Entry{
		{ID: 1, Action: ActionLogin},
		{ID: 3, Action: ActionLogout},
	}}

	trail := NewTrail()
	_, err := trail.Resume(ctx, src)
	assert.ErrorIs(t, err, ErrSequence)
	assert.Equal(t, int64(0), trail.Count())
}

func TestTrail_ResumeErrors(t *testing.T) {
	ctx := context.Background()

	trail := NewTrail()
	_, err := trail.Resume(ctx, staticSource{err: errDiskFull})
	assert.ErrorIs(t, err, errDiskFull)

	require.NoError(t, trail.Seed(ctx, DefaultSeed()))
	_, err = trail.Resume(ctx, staticSource{entries: []Entry{{ID: 1, Action: ActionLogin}}})
	require.Error(t, err)
	assert.Equal(t, int64(3), trail.Count())
}

func TestTrail_WriteFailureLeavesTrailUnchanged(t *testing.T) {
	ctx := context.Background()
	sink := &failingSink{accept: 2}
	trail := NewTrail(WithSink(sink))

	for i := 0; i < 2; i++ {
		_, err := trail.Record(ctx, ActionLogin, "erin", "ok")
		require.NoError(t, err)
	}
	before := trail.Query(Filter{})

	_, err := trail.Record(ctx, ActionReportExported, "erin", "must not vanish")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, err, errDiskFull)

	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, int64(3), werr.Entry.ID)
	assert.Equal(t, ActionReportExported, werr.Entry.Action)
	assert.Equal(t, "must not vanish", werr.Entry.Details)

	assert.Equal(t, int64(2), trail.Count())
	if diff := cmp.Diff(before, trail.Query(Filter{})); diff != "" {
		t.Errorf("trail changed after failed write (-before +after):\n%s", diff)
	}

	// Once the sink recovers the same id is reused, keeping ids gapless.
	sink.mu.Lock()
	sink.accept = 10
	sink.mu.Unlock()
	e, err := trail.Record(ctx, ActionReportExported, "erin", "retry")
	require.NoError(t, err)
	assert.Equal(t, int64(3), e.ID)
	assert.Len(t, sink.appended, 3)
}

func TestTrail_ConcurrentRecord(t *testing.T) {
	ctx := context.Background()
	trail := NewTrail()

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := trail.Record(ctx, ActionNetworkSearch, fmt.Sprintf("worker-%d", w), "q"); err != nil {
					t.Errorf("Record failed: %v", err)
				}
				_ = trail.Query(Filter{Text: "worker"})
			}
		}(w)
	}
	wg.Wait()

	entries := trail.Query(Filter{})
	require.Len(t, entries, workers*perWorker)
	for i, e := range entries {
		assert.Equal(t, int64(len(entries)-i), e.ID, "ids are gapless and strictly ordered")
	}
}
