package main

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/udisondev/hostile/internal/ai"
	"github.com/udisondev/hostile/internal/config"
	"github.com/udisondev/hostile/internal/db"
	"github.com/udisondev/hostile/internal/event"
	"github.com/udisondev/hostile/internal/game/nav"
	"github.com/udisondev/hostile/internal/model"
	"github.com/udisondev/hostile/internal/world"
)

// simulation is a scenario wired together: level, players, agents and loop.
type simulation struct {
	graph   *nav.Handle
	paths   *nav.Pathfinder
	world   *world.World
	bus     *event.Bus
	manager *ai.TickManager
	agents  []*ai.AgentAI
	names   map[uint32]string
}

// buildSimulation creates the world and registers one controller per agent.
func buildSimulation(cfg config.Config) (*simulation, error) {
	specs, err := cfg.Navigation.NodeSpecs()
	if err != nil {
		return nil, err
	}
	graph := nav.BuildGraph(specs, cfg.Navigation.ConnectDistance)
	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("navigation graph: %w", err)
	}
	handle := nav.NewHandle(graph)

	boxes := make([]world.Box, 0, len(cfg.Obstacles))
	for _, o := range cfg.Obstacles {
		boxes = append(boxes, world.NewBox(o.Center, o.Size))
	}

	sim := &simulation{
		graph: handle,
		paths: nav.NewPathfinder(handle, cfg.Navigation.PathCache),
		world: world.New(handle, boxes, cfg.Navigation.CellSize, cfg.Simulation.Seed),
		bus:   event.NewBus(),
		manager: ai.NewTickManager(ai.ManagerConfig{
			TickRate:     cfg.Simulation.TickRate,
			Workers:      cfg.Simulation.Workers,
			RemovalDelay: cfg.Simulation.RemovalDelay,
		}),
		names: make(map[uint32]string, len(cfg.Agents)),
	}

	for _, pc := range cfg.Players {
		p := world.NewPlayer(pc.ID, pc.Position, pc.Health)
		p.SetPath(pc.Path, pc.Speed)
		p.SetWeapon(world.PlayerWeapon{
			Damage:   pc.Weapon.Damage,
			FireRate: pc.Weapon.FireRate,
			Range:    pc.Weapon.Range,
		})
		sim.world.AddPlayer(p)
	}

	for _, ac := range cfg.Agents {
		controller, err := sim.spawnAgent(cfg, ac)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", ac.ID, err)
		}
		sim.agents = append(sim.agents, controller)
		sim.names[ac.ID] = ac.Name
	}

	sim.world.SetOnAgentHit(func(agentID uint32, amount float64) {
		c, err := sim.manager.GetController(agentID)
		if err != nil {
			return
		}
		if agent, ok := c.(*ai.AgentAI); ok {
			agent.TakeDamage(amount)
		}
	})
	sim.manager.SetAfterStep(sim.world.Step)
	sim.manager.SetOnRemove(sim.world.RemoveAgent)
	sim.manager.SetTimeScale(cfg.Simulation.TimeScale)

	for _, a := range sim.agents {
		sim.manager.Register(a)
	}

	slog.Info("simulation built",
		"nodes", graph.Len(),
		"obstacles", len(boxes),
		"players", len(cfg.Players),
		"agents", len(sim.agents))
	return sim, nil
}

func (s *simulation) spawnAgent(cfg config.Config, ac config.AgentConfig) (*ai.AgentAI, error) {
	mode, err := ai.ParsePatrolMode(ac.Patrol.Mode)
	if err != nil {
		return nil, err
	}

	agent := model.NewAgent(ac.ID, ac.Name, ac.Stats.Profile(), ac.Spawn, ac.YawDeg*math.Pi/180)

	// Agents may tick in parallel: each owns its random source.
	rng := rand.New(rand.NewPCG(cfg.Simulation.Seed, uint64(ac.ID)))
	route := ai.NewPatrolRoute(ac.PatrolPoints(), mode, ac.Patrol.DwellTime, rng)

	deps := ai.Deps{
		Query:        s.world,
		Damage:       s.world,
		Mover:        s.world.NewMover(agent),
		Paths:        s.paths,
		Bus:          s.bus,
		Rand:         rng,
		Clock:        s.manager.Now,
		RemovalDelay: cfg.Simulation.RemovalDelay,
	}
	if target := s.pickTarget(ac.Target); target != nil {
		deps.Target = target
	}
	return ai.NewAgentAI(agent, ac.Weapon.CombatProfile(), route, deps), nil
}

// pickTarget returns the player by ID, or the first player for 0.
func (s *simulation) pickTarget(id uint32) *world.Player {
	if id != 0 {
		p, _ := s.world.Player(id)
		return p
	}
	if players := s.world.Players(); len(players) > 0 {
		return players[0]
	}
	return nil
}

// summaries returns the state of every spawned agent.
func (s *simulation) summaries() []db.AgentSummary {
	now := s.manager.Now()
	out := make([]db.AgentSummary, 0, len(s.agents))
	for _, a := range s.agents {
		shots, hits := a.Combat().Stats()
		out = append(out, db.AgentSummary{
			AgentID:    a.AgentID(),
			Name:       s.names[a.AgentID()],
			FinalState: a.CurrentState().String(),
			Health:     a.Agent().Health,
			Shots:      shots,
			Hits:       hits,
			SimTime:    now,
		})
	}
	return out
}

// logSummary logs the end state of agents and players.
func (s *simulation) logSummary() {
	for _, sum := range s.summaries() {
		slog.Info("agent summary",
			"agentID", sum.AgentID,
			"name", sum.Name,
			"state", sum.FinalState,
			"health", sum.Health,
			"shots", sum.Shots,
			"hits", sum.Hits)
	}
	for _, p := range s.world.Players() {
		total, hits := p.DamageStats()
		slog.Info("player summary",
			"playerID", p.ID(),
			"health", p.Health(),
			"damageTaken", total,
			"hitsTaken", hits)
	}
	hits, misses := s.paths.Stats()
	slog.Info("simulation summary",
		"simTime", s.manager.Now(),
		"steps", s.manager.Steps(),
		"events", s.bus.Published(),
		"raycasts", s.world.Rays(),
		"pathCacheHits", hits,
		"pathCacheMisses", misses)
}
