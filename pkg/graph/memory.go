package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of Store.
// Mutations are serialized by a write lock; reads take the read lock and
// return copies, so callers never observe a partially applied mutation.
type MemoryStore struct {
	mu            sync.RWMutex
	entities      map[string]*Entity
	order         []string // Entity IDs in insertion order
	relationships []Relationship
	sizing        Sizing
	version       uint64
	now           func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithSizing overrides the radius derivation used for Entity.Size.
func WithSizing(s Sizing) MemoryOption {
	return func(m *MemoryStore) {
		m.sizing = s
	}
}

// WithClock overrides the clock used to stamp relationships.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		m.now = now
	}
}

// NewMemoryStore creates an empty in-memory graph store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		entities: make(map[string]*Entity),
		sizing:   DefaultSizing,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

// AddEntity inserts a new entity. Derived fields are reset.
func (m *MemoryStore) AddEntity(ctx context.Context, entity Entity) (Entity, error) {
	if entity.ID == "" {
		return Entity{}, ErrEmptyID
	}
	if !entity.Kind.Valid() {
		return Entity{}, fmt.Errorf("entity %q: %w: %s", entity.ID, ErrInvalidKind, entity.Kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entities[entity.ID]; exists {
		return Entity{}, &DuplicateIDError{ID: entity.ID}
	}

	stored := entity.clone()
	stored.Connections = 0
	stored.Size = m.sizing.Radius(0)

	m.entities[stored.ID] = &stored
	m.order = append(m.order, stored.ID)
	m.version++

	return stored.clone(), nil
}

// AddRelationship validates both endpoints and the weight before touching any state.
func (m *MemoryStore) AddRelationship(ctx context.Context, from, to, kind string, weight int) (Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.entities[from]
	if !ok {
		return Relationship{}, &UnknownEntityError{ID: from}
	}
	dst, ok := m.entities[to]
	if !ok {
		return Relationship{}, &UnknownEntityError{ID: to}
	}
	if from == to {
		return Relationship{}, ErrSelfLoop
	}
	if weight <= 0 {
		return Relationship{}, &InvalidWeightError{Weight: weight}
	}

	rel := Relationship{
		ID:        uuid.New().String(),
		From:      from,
		To:        to,
		Kind:      kind,
		Weight:    weight,
		CreatedAt: m.now(),
	}
	m.relationships = append(m.relationships, rel)

	// Incremental update: only the two endpoints change.
	src.Connections++
	src.Size = m.sizing.Radius(src.Connections)
	dst.Connections++
	dst.Size = m.sizing.Radius(dst.Connections)
	m.version++

	return rel, nil
}

// MoveEntity sets a new render position.
func (m *MemoryStore) MoveEntity(ctx context.Context, id string, position Point) (Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entities[id]
	if !ok {
		return Entity{}, &UnknownEntityError{ID: id}
	}
	e.Position = position
	m.version++

	return e.clone(), nil
}

// GetEntity returns a copy of the entity, or false if absent.
func (m *MemoryStore) GetEntity(id string) (Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entities[id]
	if !ok {
		return Entity{}, false
	}
	return e.clone(), true
}

// ListEntities returns all entities in insertion order.
func (m *MemoryStore) ListEntities() []Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listEntitiesLocked()
}

func (m *MemoryStore) listEntitiesLocked() []Entity {
	result := make([]Entity, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.entities[id].clone())
	}
	return result
}

// ListRelationships returns all relationships in insertion order.
func (m *MemoryStore) ListRelationships() []Relationship {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Relationship, len(m.relationships))
	copy(result, m.relationships)
	return result
}

// ConnectionCount returns the number of relationships touching id, or 0 if absent.
func (m *MemoryStore) ConnectionCount(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if e, ok := m.entities[id]; ok {
		return e.Connections
	}
	return 0
}

// Snapshot copies the graph under a single read lock.
func (m *MemoryStore) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rels := make([]Relationship, len(m.relationships))
	copy(rels, m.relationships)

	return Snapshot{
		Entities:      m.listEntitiesLocked(),
		Relationships: rels,
		Version:       m.version,
	}
}

// Version returns the mutation counter.
func (m *MemoryStore) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}
