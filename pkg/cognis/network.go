package cognis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dan-solli/cognis/pkg/audit"
	"github.com/dan-solli/cognis/pkg/graph"
	"github.com/dan-solli/cognis/pkg/metrics"
	"github.com/dan-solli/cognis/pkg/spatial"
)

// HitTest returns the entity drawn at p without recording anything.
func (s *Session) HitTest(p graph.Point) (graph.Entity, bool) {
	snap, ix := s.currentIndex()
	id, ok := ix.HitTest(p)
	if !ok {
		return graph.Entity{}, false
	}
	return snap.Entity(id)
}

// SelectNodeAt hit-tests p and, on a hit, records a Node Selected entry.
// A miss records nothing and is not an error.
func (s *Session) SelectNodeAt(ctx context.Context, p graph.Point) (graph.Entity, bool, error) {
	start := time.Now()
	e, ok := s.HitTest(p)
	if !ok {
		s.metrics.RecordOperation(ctx, metrics.OpHitTest, metrics.StatusMiss, time.Since(start).Milliseconds())
		s.logger.Debug("hit test missed", "x", p.X, "y", p.Y)
		return graph.Entity{}, false, nil
	}
	s.metrics.RecordOperation(ctx, metrics.OpHitTest, metrics.StatusSuccess, time.Since(start).Milliseconds())

	details := fmt.Sprintf("Selected %s: %s", strings.ToLower(e.Kind.String()), e.DisplayName)
	if _, err := s.record(ctx, audit.ActionNodeSelected, details); err != nil {
		return e, true, err
	}
	return e, true, nil
}

// currentIndex returns the spatial index for the current graph version,
// rebuilding it after any mutation.
func (s *Session) currentIndex() (graph.Snapshot, *spatial.Index) {
	snap := s.graph.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil || s.indexVersion != snap.Version {
		s.index = spatial.FromSnapshot(snap)
		s.indexVersion = snap.Version
	}
	return snap, s.index
}

// SearchNetwork returns entities whose display name or id contains q,
// case-insensitively, and records the search. A blank query returns every
// entity and records nothing.
func (s *Session) SearchNetwork(ctx context.Context, q string) ([]graph.Entity, error) {
	entities := s.graph.ListEntities()
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return entities, nil
	}

	if _, err := s.record(ctx, audit.ActionNetworkSearch, fmt.Sprintf("Searched for: %q", strings.TrimSpace(q))); err != nil {
		return nil, err
	}

	matches := make([]graph.Entity, 0)
	for _, e := range entities {
		if strings.Contains(strings.ToLower(e.DisplayName), needle) || strings.Contains(strings.ToLower(e.ID), needle) {
			matches = append(matches, e)
		}
	}
	return matches, nil
}
