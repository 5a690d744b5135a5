package artifact

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryCatalog is an in-memory Catalog. Ingest is serialized; reads take a
// shared lock.
type MemoryCatalog struct {
	mu     sync.RWMutex
	byID   map[string]Artifact
	sorted []Artifact // Chronological; kept sorted on ingest
}

var _ Catalog = (*MemoryCatalog)(nil)

// NewMemoryCatalog creates an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{byID: make(map[string]Artifact)}
}

// Ingest validates and stores an artifact. The id must be well formed and its
// prefix must agree with the artifact type.
func (c *MemoryCatalog) Ingest(ctx context.Context, a Artifact) error {
	t, _, err := ParseID(a.ID)
	if err != nil {
		return err
	}
	if a.Type != t {
		return fmt.Errorf("%w: %s is prefixed for %s but typed %s", ErrInvalidID, a.ID, t, a.Type)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[a.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, a.ID)
	}
	c.byID[a.ID] = a

	i := sort.Search(len(c.sorted), func(i int) bool { return a.Before(c.sorted[i]) })
	c.sorted = append(c.sorted, Artifact{})
	copy(c.sorted[i+1:], c.sorted[i:])
	c.sorted[i] = a
	return nil
}

// IngestAll ingests artifacts in order, stopping at the first failure.
func (c *MemoryCatalog) IngestAll(ctx context.Context, artifacts []Artifact) error {
	for i, a := range artifacts {
		if err := c.Ingest(ctx, a); err != nil {
			return fmt.Errorf("failed to ingest artifact %d: %w", i, err)
		}
	}
	return nil
}

// Get returns the artifact with id.
func (c *MemoryCatalog) Get(id string) (Artifact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.byID[id]
	return a, ok
}

// List returns all artifacts chronologically.
func (c *MemoryCatalog) List() []Artifact {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Artifact, len(c.sorted))
	copy(out, c.sorted)
	return out
}

// ByType returns artifacts of type t chronologically.
func (c *MemoryCatalog) ByType(t Type) []Artifact {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Artifact
	for _, a := range c.sorted {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Search scans artifacts chronologically for content matching any term.
func (c *MemoryCatalog) Search(terms []string, limit int) []Artifact {
	needles := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			needles = append(needles, t)
		}
	}
	if len(needles) == 0 {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Artifact
	for _, a := range c.sorted {
		if limit > 0 && len(out) == limit {
			break
		}
		content := strings.ToLower(a.Content)
		for _, n := range needles {
			if strings.Contains(content, n) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Len returns the number of artifacts.
func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
