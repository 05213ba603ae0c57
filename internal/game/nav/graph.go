package nav

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/udisondev/hostile/internal/model"
)

// ErrInvalidGraph is returned by Validate when the edge relation is broken.
var ErrInvalidGraph = errors.New("invalid navigation graph")

// Graph is a static set of waypoints connected by undirected edges.
// Read-only after BuildGraph, safe for concurrent readers.
type Graph struct {
	nodes     []*Node
	threshold float64
}

// BuildGraph creates nodes from specs (node ID = index in specs) and connects
// every pair whose Euclidean distance is <= threshold.
// O(N^2) pair scan, intended for level load time.
func BuildGraph(specs []NodeSpec, threshold float64) *Graph {
	g := &Graph{
		nodes:     make([]*Node, len(specs)),
		threshold: threshold,
	}
	for i, s := range specs {
		g.nodes[i] = &Node{ID: i, Position: s.Position, Type: s.Type}
	}

	thresholdSq := threshold * threshold
	for i := 0; i < len(g.nodes); i++ {
		a := g.nodes[i]
		for j := i + 1; j < len(g.nodes); j++ {
			b := g.nodes[j]
			if a.Position.DistanceSquared(b.Position) <= thresholdSq {
				a.Neighbors = append(a.Neighbors, b.ID)
				b.Neighbors = append(b.Neighbors, a.ID)
			}
		}
	}
	return g
}

// Len returns number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// Threshold returns the connection distance used to build the graph.
func (g *Graph) Threshold() float64 {
	if g == nil {
		return 0
	}
	return g.threshold
}

// Node returns node by ID or nil if out of range.
func (g *Graph) Node(id int) *Node {
	if g == nil || id < 0 || id >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns all nodes. The slice must not be modified.
func (g *Graph) Nodes() []*Node {
	if g == nil {
		return nil
	}
	return g.nodes
}

// NearestNode returns the node closest to pos (linear scan, first wins on ties).
// Returns nil for an empty graph.
func (g *Graph) NearestNode(pos model.Vec3) *Node {
	if g.Len() == 0 {
		return nil
	}
	best := g.nodes[0]
	bestDist := best.Position.DistanceSquared(pos)
	for _, n := range g.nodes[1:] {
		if d := n.Position.DistanceSquared(pos); d < bestDist {
			best = n
			bestDist = d
		}
	}
	return best
}

// NodesWithin returns nodes within radius of center, in ID order.
func (g *Graph) NodesWithin(center model.Vec3, radius float64) []*Node {
	if g.Len() == 0 {
		return nil
	}
	radiusSq := radius * radius
	var out []*Node
	for _, n := range g.nodes {
		if n.Position.DistanceSquared(center) <= radiusSq {
			out = append(out, n)
		}
	}
	return out
}

// NodesOfType returns nodes tagged with t, in ID order.
func (g *Graph) NodesOfType(t NodeType) []*Node {
	if g.Len() == 0 {
		return nil
	}
	var out []*Node
	for _, n := range g.nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks the edge relation: no self-loops, no dangling IDs, symmetric edges.
func (g *Graph) Validate() error {
	for _, n := range g.Nodes() {
		for _, nb := range n.Neighbors {
			if nb == n.ID {
				return fmt.Errorf("%w: node %d has a self-loop", ErrInvalidGraph, n.ID)
			}
			other := g.Node(nb)
			if other == nil {
				return fmt.Errorf("%w: node %d references missing node %d", ErrInvalidGraph, n.ID, nb)
			}
			if !other.IsNeighbor(n.ID) {
				return fmt.Errorf("%w: edge %d->%d is not symmetric", ErrInvalidGraph, n.ID, nb)
			}
		}
	}
	return nil
}

// Handle owns the current graph of a level. Agents receive the handle at
// construction time; a rebuild swaps the whole graph atomically so readers
// never observe a partially built one.
type Handle struct {
	current atomic.Pointer[Graph]
	swaps   atomic.Uint64
}

// NewHandle creates a handle holding g (may be nil).
func NewHandle(g *Graph) *Handle {
	h := &Handle{}
	h.current.Store(g)
	return h
}

// Load returns the current graph.
func (h *Handle) Load() *Graph {
	return h.current.Load()
}

// Swap replaces the current graph (level reload / rebuild).
func (h *Handle) Swap(g *Graph) {
	h.current.Store(g)
	h.swaps.Add(1)
}

// Swaps returns how many times the graph was replaced.
func (h *Handle) Swaps() uint64 {
	return h.swaps.Load()
}
