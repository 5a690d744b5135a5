package graph

import (
	"context"
	"fmt"
	"sort"
)

// Snapshot is an immutable copy of the graph at one Version.
// Entities and relationships are in insertion order.
type Snapshot struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Version       uint64         `json:"version"`
}

// Entity returns the entity with the given ID from the snapshot.
func (s Snapshot) Entity(id string) (Entity, bool) {
	for _, e := range s.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// RankedByConnections returns entities ordered by connection count
// (descending). Equal counts keep insertion order.
func (s Snapshot) RankedByConnections() []Entity {
	ranked := make([]Entity, len(s.Entities))
	copy(ranked, s.Entities)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Connections > ranked[j].Connections
	})
	return ranked
}

// TotalWeight sums the weight of every relationship.
func (s Snapshot) TotalWeight() int {
	total := 0
	for _, r := range s.Relationships {
		total += r.Weight
	}
	return total
}

// WeightOf sums the weight of relationships touching id.
func (s Snapshot) WeightOf(id string) int {
	total := 0
	for _, r := range s.Relationships {
		if r.Touches(id) {
			total += r.Weight
		}
	}
	return total
}

// Load ingests a snapshot produced by an external collaborator into store.
// Entities are inserted first, then relationships; every relationship
// endpoint must be among the loaded (or already stored) entities.
// Loading stops at the first error. Relationship IDs in the input are ignored.
func Load(ctx context.Context, store Store, snap Snapshot) error {
	for i, e := range snap.Entities {
		if _, err := store.AddEntity(ctx, e); err != nil {
			return fmt.Errorf("failed to load entity %d: %w", i, err)
		}
	}

	for i, r := range snap.Relationships {
		if _, err := store.AddRelationship(ctx, r.From, r.To, r.Kind, r.Weight); err != nil {
			return fmt.Errorf("failed to load relationship %d: %w", i, err)
		}
	}

	return nil
}
