package nav

import (
	"container/heap"
	"math"
)

// FindPath finds the shortest route from start to goal using A*.
// Heuristic and edge cost are Euclidean distance (admissible and consistent).
// Returns nodes from start to goal inclusive, or nil if goal is unreachable.
// Unreachable is not an error: callers hold position or fall back to a default behavior.
func FindPath(g *Graph, start, goal *Node) []*Node {
	if g.Len() == 0 || start == nil || goal == nil {
		return nil
	}
	if g.Node(start.ID) != start || g.Node(goal.ID) != goal {
		return nil // nodes from another graph
	}
	if start.ID == goal.ID {
		return []*Node{start}
	}

	n := g.Len()
	gScore := make([]float64, n)
	cameFrom := make([]int, n)
	closed := make([]bool, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
		cameFrom[i] = -1
	}

	openList := &openSet{}
	heap.Init(openList)

	var seq uint64
	push := func(id int, f float64) {
		heap.Push(openList, &openEntry{id: id, fScore: f, seq: seq})
		seq++
	}

	gScore[start.ID] = 0
	push(start.ID, start.Position.Distance(goal.Position))

	for openList.Len() > 0 {
		current := heap.Pop(openList).(*openEntry)
		if closed[current.id] {
			continue // stale duplicate
		}
		if current.id == goal.ID {
			return reconstructPath(g, cameFrom, goal.ID)
		}
		closed[current.id] = true

		node := g.nodes[current.id]
		for _, nb := range node.Neighbors {
			if closed[nb] {
				continue
			}
			next := g.nodes[nb]
			tentative := gScore[current.id] + node.Position.Distance(next.Position)
			if tentative < gScore[nb] {
				gScore[nb] = tentative
				cameFrom[nb] = current.id
				push(nb, tentative+next.Position.Distance(goal.Position))
			}
		}
	}

	return nil
}

// reconstructPath walks cameFrom links back from goal and reverses them.
func reconstructPath(g *Graph, cameFrom []int, goal int) []*Node {
	path := make([]*Node, 0, 16)
	for id := goal; id != -1; id = cameFrom[id] {
		path = append(path, g.nodes[id])
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathLength returns the summed edge length of a path.
func PathLength(path []*Node) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += path[i-1].Position.Distance(path[i].Position)
	}
	return total
}

// openEntry is a frontier entry. Duplicates are allowed and skipped on pop
// once the node is closed (lazy decrease-key).
type openEntry struct {
	id     int
	fScore float64
	seq    uint64 // insertion order, breaks fScore ties deterministically
	index  int
}

// openSet implements container/heap for the A* frontier (min-heap by fScore, then seq).
type openSet []*openEntry

func (h openSet) Len() int { return len(h) }
func (h openSet) Less(i, j int) bool {
	if h[i].fScore != h[j].fScore {
		return h[i].fScore < h[j].fScore
	}
	return h[i].seq < h[j].seq
}
func (h openSet) Swap(i, j int) { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *openSet) Push(x any) { e := x.(*openEntry); e.index = len(*h); *h = append(*h, e) }
func (h *openSet) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil // GC
	e.index = -1
	*h = old[:n-1]
	return e
}
