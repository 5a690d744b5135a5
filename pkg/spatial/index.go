// Package spatial maps 2-D render coordinates to the graph entities drawn there.
package spatial

import (
	"math"

	"github.com/dan-solli/cognis/pkg/graph"
)

// maxCellCoord bounds grid coordinates so float-to-int conversion stays exact.
const maxCellCoord = 1 << 52

type cell struct {
	x, y int64
}

type item struct {
	id     string
	pos    graph.Point
	radius float64
}

// Index is an immutable uniform-grid index over entity render circles.
// The cell size equals the largest radius, so any circle containing a point
// has its centre in the point's cell or one of the eight neighbours.
type Index struct {
	items    []item // Insertion order; the position is the tie-break rank
	cells    map[cell][]int
	far      []int // Items whose cell coordinates overflow; always scanned
	cellSize float64
}

// Build indexes entities by Position and Size (rendered radius).
// Entities with a non-finite position or a negative or non-finite radius can never be hit and are skipped.
func Build(entities []graph.Entity) *Index {
	ix := &Index{
		cells:    make(map[cell][]int),
		cellSize: 1,
	}

	for _, e := range entities {
		if !finite(e.Position.X) || !finite(e.Position.Y) || !finite(e.Size) || e.Size < 0 {
			continue
		}
		ix.items = append(ix.items, item{id: e.ID, pos: e.Position, radius: e.Size})
		if e.Size > ix.cellSize {
			ix.cellSize = e.Size
		}
	}

	for i, it := range ix.items {
		c, ok := ix.cellOf(it.pos)
		if !ok {
			ix.far = append(ix.far, i)
			continue
		}
		ix.cells[c] = append(ix.cells[c], i)
	}

	return ix
}

// FromSnapshot indexes every entity of a graph snapshot.
func FromSnapshot(s graph.Snapshot) *Index {
	return Build(s.Entities)
}

// Len returns the number of hittable entities.
func (ix *Index) Len() int {
	return len(ix.items)
}

// HitTest returns the ID of the entity whose rendered circle contains p and
// whose centre is nearest to p. Equal distances resolve to the entity
// inserted first. Returns false when no circle contains p.
func (ix *Index) HitTest(p graph.Point) (string, bool) {
	if !finite(p.X) || !finite(p.Y) || len(ix.items) == 0 {
		return "", false
	}

	best := -1
	bestDist := math.Inf(1)

	consider := func(i int) {
		it := ix.items[i]
		d := p.Distance(it.pos)
		if d > it.radius {
			return
		}
		if d < bestDist || (d == bestDist && i < best) {
			best = i
			bestDist = d
		}
	}

	if c, ok := ix.cellOf(p); ok {
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for _, i := range ix.cells[cell{x: c.x + dx, y: c.y + dy}] {
					consider(i)
				}
			}
		}
	} else {
		// p lies outside the gridded range; fall back to a full scan.
		for _, list := range ix.cells {
			for _, i := range list {
				consider(i)
			}
		}
	}
	for _, i := range ix.far {
		consider(i)
	}

	if best < 0 {
		return "", false
	}
	return ix.items[best].id, true
}

func (ix *Index) cellOf(p graph.Point) (cell, bool) {
	cx := math.Floor(p.X / ix.cellSize)
	cy := math.Floor(p.Y / ix.cellSize)
	if math.Abs(cx) > maxCellCoord || math.Abs(cy) > maxCellCoord {
		return cell{}, false
	}
	return cell{x: int64(cx), y: int64(cy)}, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
