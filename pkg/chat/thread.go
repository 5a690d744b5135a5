// Package chat models a conversational thread: one question in flight at a
// time, and the answer history that reports cite from.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/dan-solli/cognis/pkg/citation"
	"github.com/dan-solli/cognis/pkg/graph"
)

var (
	// ErrTurnInFlight is returned when a thread is already awaiting an answer.
	ErrTurnInFlight = errors.New("a query is already awaiting an answer on this thread")

	// ErrEmptyQuery is returned for blank submissions.
	ErrEmptyQuery = errors.New("query cannot be empty")
)

// State is the turn state of a thread.
type State uint8

const (
	StateIdle State = iota
	StateAwaitingAnswer
	StateAnswered
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAnswer:
		return "awaiting_answer"
	case StateAnswered:
		return "answered"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Submitter starts an asynchronous resolution. *citation.Resolver implements it.
type Submitter interface {
	Submit(ctx context.Context, query string, snap graph.Snapshot) (*citation.Future, error)
}

// SnapshotSource supplies the graph a query is resolved against.
// graph.Store implements it.
type SnapshotSource interface {
	Snapshot() graph.Snapshot
}

// Thread is one conversation. Safe for concurrent use.
type Thread struct {
	id       string
	resolver Submitter
	graph    SnapshotSource
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	answers []citation.Answer
	watch   sync.WaitGroup
}

// NewThread creates an idle thread with a fresh short id.
func NewThread(resolver Submitter, source SnapshotSource, logger *slog.Logger) (*Thread, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate thread id: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Thread{
		id:       id,
		resolver: resolver,
		graph:    source,
		logger:   logger.With("thread_id", id),
	}, nil
}

// ID returns the thread id.
func (t *Thread) ID() string {
	return t.id
}

// State returns the current turn state.
func (t *Thread) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Submit starts a turn. Blank queries are ignored with ErrEmptyQuery and
// leave no audit trace; a second submission while one is pending is
// rejected with ErrTurnInFlight.
func (t *Thread) Submit(ctx context.Context, query string) (*citation.Future, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	t.mu.Lock()
	if t.state == StateAwaitingAnswer {
		t.mu.Unlock()
		t.logger.Warn("submission rejected while awaiting answer")
		return nil, ErrTurnInFlight
	}
	prev := t.state
	t.state = StateAwaitingAnswer
	t.mu.Unlock()

	// Counted before submitting so a concurrent Wait cannot miss the turn.
	t.watch.Add(1)
	f, err := t.resolver.Submit(ctx, query, t.graph.Snapshot())
	if err != nil {
		t.mu.Lock()
		t.state = prev
		t.mu.Unlock()
		t.watch.Done()
		return nil, err
	}

	go func() {
		defer t.watch.Done()
		<-f.Done()
		answer, err := f.Wait(context.Background())

		t.mu.Lock()
		defer t.mu.Unlock()
		if answer.ID != "" {
			t.answers = append(t.answers, answer)
		}
		t.state = StateAnswered
		if err != nil {
			t.logger.Error("turn settled with error", "error", err)
		}
	}()
	return f, nil
}

// Wait blocks until the pending turn, if any, has been folded into the history.
func (t *Thread) Wait() {
	t.watch.Wait()
}

// Answers returns the thread's answers, oldest first.
func (t *Thread) Answers() []citation.Answer {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]citation.Answer, len(t.answers))
	copy(out, t.answers)
	return out
}

// Answer returns the historical answer with id.
func (t *Thread) Answer(id string) (citation.Answer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, a := range t.answers {
		if a.ID == id {
			return a, true
		}
	}
	return citation.Answer{}, false
}
