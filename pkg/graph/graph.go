// Package graph provides the evidentiary graph: investigation entities and the
// typed, weighted relationships between them.
package graph

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// Kind is the closed set of entity kinds an investigation graph can hold.
type Kind uint8

const (
	// KindUnknown is the zero value and is never accepted by a store.
	KindUnknown Kind = iota
	KindPerson
	KindPhone
	KindLocation
	KindFile
	KindAddress
)

type kindInfo struct {
	name  string
	color string
}

// kindTable is the only place kind names and render colours live.
var kindTable = map[Kind]kindInfo{
	KindPerson:   {name: "Person", color: "#3B82F6"},
	KindPhone:    {name: "Phone", color: "#10B981"},
	KindLocation: {name: "Location", color: "#EF4444"},
	KindFile:     {name: "File", color: "#8B5CF6"},
	KindAddress:  {name: "Address", color: "#F59E0B"},
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindPerson, KindPhone, KindLocation, KindFile, KindAddress}
}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.TrimSpace(s)
	for _, k := range Kinds() {
		if strings.EqualFold(kindTable[k].name, name) {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

func (k Kind) String() string {
	if info, ok := kindTable[k]; ok {
		return info.name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Color returns the hex colour the network canvas draws this kind with.
func (k Kind) Color() string {
	return kindTable[k].color
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, uint8(k))
	}
	return []byte(kindTable[k].name), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Point is a 2-D render coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Entity is a graph node: a person, device, location, file or address.
type Entity struct {
	ID          string   `json:"id"`          // Unique, stable identifier
	Kind        Kind     `json:"kind"`        // Immutable after creation
	DisplayName string   `json:"displayName"` // Human-readable label
	Position    Point    `json:"position"`    // Render position, owned by the UI
	ArtifactIDs []string `json:"artifactIds,omitempty"`

	// Connections and Size are derived by the store; values supplied on insert are ignored.
	Connections int     `json:"connections"`
	Size        float64 `json:"size"`
}

func (e Entity) clone() Entity {
	if e.ArtifactIDs != nil {
		ids := make([]string, len(e.ArtifactIDs))
		copy(ids, e.ArtifactIDs)
		e.ArtifactIDs = ids
	}
	return e
}

// Relationship is a directed, typed, weighted edge between two entities.
type Relationship struct {
	ID        string    `json:"id"`     // UUID assigned by the store
	From      string    `json:"from"`   // Source entity ID
	To        string    `json:"to"`     // Target entity ID
	Kind      string    `json:"kind"`   // Free-form tag (owns, located_at, visited, created)
	Weight    int       `json:"weight"` // Positive strength
	CreatedAt time.Time `json:"createdAt"`
}

// Touches reports whether id is either endpoint of r.
func (r Relationship) Touches(id string) bool {
	return r.From == id || r.To == id
}

// Sizing derives an entity's rendered radius from its connection count.
type Sizing struct {
	Base          float64 `yaml:"base"`
	PerConnection float64 `yaml:"per_connection"`
	Max           float64 `yaml:"max"`
}

// DefaultSizing roughly reproduces the dashboard's hand-tuned node sizes.
var DefaultSizing = Sizing{Base: 10, PerConnection: 3, Max: 30}

// Radius returns the rendered radius for an entity with the given connection count.
func (s Sizing) Radius(connections int) float64 {
	r := s.Base + s.PerConnection*float64(connections)
	if s.Max > 0 && r > s.Max {
		return s.Max
	}
	return r
}

// Store defines the evidentiary graph contract.
// Mutations are serialized by the implementation; reads never fail.
type Store interface {
	// AddEntity inserts a new entity and returns the stored copy.
	// Returns a *DuplicateIDError if the ID is already present.
	AddEntity(ctx context.Context, entity Entity) (Entity, error)

	// AddRelationship inserts an edge and updates both endpoints' derived
	// connection count and size. Nothing changes when it fails.
	AddRelationship(ctx context.Context, from, to, kind string, weight int) (Relationship, error)

	// MoveEntity updates the UI-owned position of an entity.
	MoveEntity(ctx context.Context, id string, position Point) (Entity, error)

	// GetEntity returns the entity with the given ID, or false if absent.
	GetEntity(id string) (Entity, bool)

	// ListEntities returns all entities in insertion order.
	ListEntities() []Entity

	// ListRelationships returns all relationships in insertion order.
	ListRelationships() []Relationship

	// ConnectionCount returns the number of relationships touching id.
	ConnectionCount(id string) int

	// Snapshot returns an immutable copy of the whole graph.
	Snapshot() Snapshot

	// Version increases on every successful mutation.
	Version() uint64
}
