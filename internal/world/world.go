package world

import (
	"cmp"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/udisondev/hostile/internal/game/nav"
	"github.com/udisondev/hostile/internal/model"
)

// samplingAttempts bounds rejection sampling of free points without a graph.
const samplingAttempts = 16

// World is the reference level: static box obstacles, scripted players and
// the movement drivers of agents. It implements the agent collaborators
// (world query, damage applier, movement driver) for simulations and tests.
//
// Queries are safe for concurrent use by agents ticking in parallel.
// Step must not run concurrently with agent ticks.
type World struct {
	graph *nav.Handle
	boxes []Box
	grid  *obstacleGrid

	mu      sync.RWMutex
	players map[uint32]*Player
	movers  map[uint32]*Mover // agentID → driver

	rngMu sync.Mutex
	rng   *rand.Rand

	onAgentHit func(agentID uint32, amount float64)

	rays atomic.Uint64
}

// New creates a world. graph may hold an empty graph (free movement).
func New(graph *nav.Handle, boxes []Box, cellSize float64, seed uint64) *World {
	if graph == nil {
		graph = nav.NewHandle(nil)
	}
	return &World{
		graph:   graph,
		boxes:   append([]Box(nil), boxes...),
		grid:    newObstacleGrid(boxes, cellSize),
		players: make(map[uint32]*Player),
		movers:  make(map[uint32]*Mover),
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Graph returns the navigation graph handle.
func (w *World) Graph() *nav.Handle {
	return w.graph
}

// Boxes returns the obstacles.
func (w *World) Boxes() []Box {
	return w.boxes
}

// Rays returns number of raycasts served.
func (w *World) Rays() uint64 {
	return w.rays.Load()
}

// SetOnAgentHit installs the callback used when a player shoots an agent.
// Must be set before the simulation starts.
func (w *World) SetOnAgentHit(fn func(agentID uint32, amount float64)) {
	w.onAgentHit = fn
}

// AddPlayer registers a player.
func (w *World) AddPlayer(p *Player) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.players[p.ID()] = p
}

// Player returns a player by ID.
func (w *World) Player(id uint32) (*Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[id]
	return p, ok
}

// Players returns players ordered by ID.
func (w *World) Players() []*Player {
	w.mu.RLock()
	out := make([]*Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	w.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Player) int { return cmp.Compare(a.ID(), b.ID()) })
	return out
}

// NewMover creates and registers the movement driver of agent.
func (w *World) NewMover(agent *model.Agent) *Mover {
	m := newMover(agent)
	w.mu.Lock()
	w.movers[agent.ID] = m
	w.mu.Unlock()
	return m
}

// RemoveAgent drops the agent's driver (after corpse removal).
func (w *World) RemoveAgent(agentID uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.movers, agentID)
}

// Raycast returns the nearest obstacle or player hit along dir.
func (w *World) Raycast(origin, dir model.Vec3, maxDist float64, mask model.Layer) model.RaycastHit {
	w.rays.Add(1)
	dir = dir.Normalized()
	if dir == (model.Vec3{}) || maxDist <= 0 {
		return model.RaycastHit{}
	}

	best := model.RaycastHit{Distance: maxDist}
	if mask.Has(model.LayerObstacle) {
		end := origin.Add(dir.Scale(maxDist))
		for _, i := range w.grid.candidates(origin, end, nil) {
			if t, ok := w.boxes[i].Intersect(origin, dir, best.Distance); ok && (!best.Hit || t < best.Distance) {
				best = model.RaycastHit{Hit: true, Distance: t, Layer: model.LayerObstacle}
			}
		}
	}

	if mask.Has(model.LayerPlayer) {
		w.mu.RLock()
		for id, p := range w.players {
			if !p.IsAlive() {
				continue
			}
			t, ok := intersectSphere(origin, dir, p.hitCenter(), playerRadius, best.Distance)
			if ok && (!best.Hit || t < best.Distance) {
				best = model.RaycastHit{Hit: true, Distance: t, Layer: model.LayerPlayer, EntityID: id}
			}
		}
		w.mu.RUnlock()
	}

	if !best.Hit {
		return model.RaycastHit{}
	}
	best.Point = origin.Add(dir.Scale(best.Distance))
	return best
}

// SampleNavigablePoint picks a random graph node within radius of center.
// Without a graph it picks a random free point in the disk instead.
func (w *World) SampleNavigablePoint(center model.Vec3, radius float64) (model.Vec3, bool) {
	if radius <= 0 {
		return model.Vec3{}, false
	}

	if g := w.graph.Load(); g.Len() > 0 {
		nodes := g.NodesWithin(center, radius)
		if len(nodes) == 0 {
			return model.Vec3{}, false
		}
		return nodes[w.intN(len(nodes))].Position, true
	}

	for range samplingAttempts {
		angle, r := w.float()*2*math.Pi, radius*math.Sqrt(w.float())
		p := center.Add(model.V3(math.Cos(angle)*r, 0, math.Sin(angle)*r))
		if !w.blocked(p) {
			return p, true
		}
	}
	return model.Vec3{}, false
}

// blocked reports whether p lies inside an obstacle.
func (w *World) blocked(p model.Vec3) bool {
	for _, i := range w.grid.candidates(p, p, nil) {
		if w.boxes[i].Contains(p) {
			return true
		}
	}
	return false
}

// ApplyDamage damages a player. Updates of the same player are serialized.
func (w *World) ApplyDamage(targetID uint32, amount float64, kind model.DamageKind) {
	p, ok := w.Player(targetID)
	if !ok {
		slog.Warn("damage to unknown entity", "targetID", targetID, "kind", kind)
		return
	}
	if p.takeDamage(amount) {
		logPlayerDeath(p)
	}
}

// Step advances players and agent movement by dt.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}

	players := w.Players()
	for _, p := range players {
		p.step(dt)
	}

	w.mu.RLock()
	movers := make([]*Mover, 0, len(w.movers))
	for _, m := range w.movers {
		movers = append(movers, m)
	}
	w.mu.RUnlock()
	slices.SortFunc(movers, func(a, b *Mover) int { return cmp.Compare(a.agent.ID, b.agent.ID) })

	for _, m := range movers {
		m.step(dt)
	}

	for _, p := range players {
		w.playerFire(p, movers, dt)
	}
}

// playerFire shoots the nearest visible living agent in range.
func (w *World) playerFire(p *Player, movers []*Mover, dt float64) {
	weapon, ready := p.readyToFire(dt)
	if !ready || w.onAgentHit == nil {
		return
	}

	eye := p.hitCenter()
	var target *model.Agent
	bestDist := weapon.Range
	for _, m := range movers {
		a := m.agent
		if a.IsDead() {
			continue
		}
		chest := a.Position.Add(model.V3(0, playerCenterHeight, 0))
		d := eye.Distance(chest)
		if d > bestDist {
			continue
		}
		if hit := w.Raycast(eye, chest.Sub(eye), d, model.LayerObstacle); hit.Hit {
			continue
		}
		target, bestDist = a, d
	}
	if target == nil {
		return
	}

	p.resetCooldown()
	w.onAgentHit(target.ID, weapon.Damage)
}

func (w *World) intN(n int) int {
	w.rngMu.Lock()
	defer w.rngMu.Unlock()
	return w.rng.IntN(n)
}

func (w *World) float() float64 {
	w.rngMu.Lock()
	defer w.rngMu.Unlock()
	return w.rng.Float64()
}
