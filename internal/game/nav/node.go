package nav

import (
	"fmt"

	"github.com/udisondev/hostile/internal/model"
)

// NodeType tags a navigation node with its tactical meaning.
type NodeType uint8

const (
	NodeNormal NodeType = iota
	NodeCover
	NodeVantage
	NodeChokepoint
	NodeSpawn
)

// String returns human-readable node type
func (t NodeType) String() string {
	switch t {
	case NodeNormal:
		return "normal"
	case NodeCover:
		return "cover"
	case NodeVantage:
		return "vantage"
	case NodeChokepoint:
		return "chokepoint"
	case NodeSpawn:
		return "spawn"
	default:
		return "unknown"
	}
}

// ParseNodeType converts a level config tag into a NodeType.
// Empty string means NodeNormal.
func ParseNodeType(s string) (NodeType, error) {
	switch s {
	case "", "normal":
		return NodeNormal, nil
	case "cover":
		return NodeCover, nil
	case "vantage":
		return NodeVantage, nil
	case "chokepoint":
		return NodeChokepoint, nil
	case "spawn":
		return NodeSpawn, nil
	default:
		return NodeNormal, fmt.Errorf("unknown node type %q", s)
	}
}

// NodeSpec describes a node before the graph is built.
type NodeSpec struct {
	Position model.Vec3
	Type     NodeType
}

// Node is a waypoint of the navigation graph.
// Nodes are immutable once the graph is built.
type Node struct {
	ID        int
	Position  model.Vec3
	Type      NodeType
	Neighbors []int // node IDs, ascending
}

// IsNeighbor reports whether id is adjacent to n.
func (n *Node) IsNeighbor(id int) bool {
	for _, nb := range n.Neighbors {
		if nb == id {
			return true
		}
	}
	return false
}
