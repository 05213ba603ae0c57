package nav

import (
	"sync"
	"sync/atomic"

	"github.com/udisondev/hostile/internal/model"
)

// DefaultPathCacheSize bounds the number of memoized routes per pathfinder.
const DefaultPathCacheSize = 256

// Pathfinder answers route queries against the graph held by a Handle and
// memoizes results by (start, goal) node pair. The cache is dropped whenever
// the handle's graph is swapped. Safe for concurrent use.
type Pathfinder struct {
	handle   *Handle
	capacity int

	mu    sync.Mutex
	graph *Graph // graph the cache belongs to
	cache map[pathKey][]*Node
	order []pathKey // FIFO eviction

	hits   atomic.Uint64
	misses atomic.Uint64
}

type pathKey struct {
	start, goal int
}

// NewPathfinder creates a pathfinder. capacity <= 0 uses DefaultPathCacheSize.
func NewPathfinder(handle *Handle, capacity int) *Pathfinder {
	if capacity <= 0 {
		capacity = DefaultPathCacheSize
	}
	return &Pathfinder{
		handle:   handle,
		capacity: capacity,
		cache:    make(map[pathKey][]*Node, capacity),
	}
}

// Graph returns the current graph (may be nil).
func (p *Pathfinder) Graph() *Graph {
	if p == nil || p.handle == nil {
		return nil
	}
	return p.handle.Load()
}

// Find returns the A* path between two nodes of the current graph.
// The returned slice is shared and must not be modified.
func (p *Pathfinder) Find(start, goal *Node) []*Node {
	g := p.Graph()
	if g == nil || start == nil || goal == nil {
		return nil
	}
	key := pathKey{start: start.ID, goal: goal.ID}

	p.mu.Lock()
	if p.graph != g {
		p.graph = g
		clear(p.cache)
		p.order = p.order[:0]
	}
	if path, ok := p.cache[key]; ok {
		p.mu.Unlock()
		p.hits.Add(1)
		return path
	}
	p.mu.Unlock()

	p.misses.Add(1)
	path := FindPath(g, start, goal)

	p.mu.Lock()
	if p.graph == g {
		if _, exists := p.cache[key]; !exists {
			if len(p.order) >= p.capacity {
				delete(p.cache, p.order[0])
				p.order = p.order[1:]
			}
			p.order = append(p.order, key)
			p.cache[key] = path
		}
	}
	p.mu.Unlock()

	return path
}

// Route plans movement from one world position to another.
// Returns waypoints ending at `to`. Without a graph the route is the direct
// line (single waypoint). ok is false when the goal node is unreachable.
func (p *Pathfinder) Route(from, to model.Vec3) (waypoints []model.Vec3, ok bool) {
	g := p.Graph()
	if g.Len() == 0 {
		return []model.Vec3{to}, true
	}

	start := g.NearestNode(from)
	goal := g.NearestNode(to)
	path := p.Find(start, goal)
	if len(path) == 0 {
		return nil, false
	}

	waypoints = make([]model.Vec3, 0, len(path)+1)
	for _, n := range path {
		waypoints = append(waypoints, n.Position)
	}
	waypoints = append(waypoints, to)
	return waypoints, true
}

// Stats returns cache hit/miss counters.
func (p *Pathfinder) Stats() (hits, misses uint64) {
	return p.hits.Load(), p.misses.Load()
}
