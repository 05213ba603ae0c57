package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/udisondev/hostile/internal/ai"
	"github.com/udisondev/hostile/internal/game/nav"
	"github.com/udisondev/hostile/internal/model"
)

// Validate checks the scenario for inconsistent values.
// All returned errors wrap ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	sim := c.Simulation
	if sim.TickRate <= 0 {
		add("simulation.tick_rate must be positive, got %d", sim.TickRate)
	}
	if sim.TimeScale < 0 {
		add("simulation.time_scale must not be negative, got %v", sim.TimeScale)
	}
	if sim.Workers < 0 {
		add("simulation.workers must not be negative, got %d", sim.Workers)
	}
	if sim.RemovalDelay < 0 {
		add("simulation.removal_delay must not be negative, got %v", sim.RemovalDelay)
	}

	if len(c.Navigation.Nodes) > 0 && c.Navigation.ConnectDistance <= 0 {
		add("navigation.connect_distance must be positive, got %v", c.Navigation.ConnectDistance)
	}
	for i, n := range c.Navigation.Nodes {
		if _, err := nav.ParseNodeType(n.Type); err != nil {
			add("navigation.nodes[%d]: %v", i, err)
		}
	}

	for i, o := range c.Obstacles {
		if o.Size.X <= 0 || o.Size.Y <= 0 || o.Size.Z <= 0 {
			add("obstacles[%d].size must be positive, got %+v", i, o.Size)
		}
	}

	players := make(map[uint32]bool, len(c.Players))
	for i, p := range c.Players {
		if p.ID == 0 {
			add("players[%d].id must not be zero", i)
		}
		if players[p.ID] {
			add("players[%d]: duplicate id %d", i, p.ID)
		}
		players[p.ID] = true
		if p.Health <= 0 {
			add("players[%d].health must be positive, got %v", i, p.Health)
		}
		if p.Speed < 0 {
			add("players[%d].speed must not be negative, got %v", i, p.Speed)
		}
	}

	agents := make(map[uint32]bool, len(c.Agents))
	for i, a := range c.Agents {
		if a.ID == 0 {
			add("agents[%d].id must not be zero", i)
		}
		if agents[a.ID] {
			add("agents[%d]: duplicate id %d", i, a.ID)
		}
		agents[a.ID] = true
		if a.Target != 0 && !players[a.Target] {
			add("agents[%d].target: unknown player %d", i, a.Target)
		}
		errs = append(errs, validateAgent(i, a)...)
	}

	if c.Telemetry.BufferSize <= 0 || c.Telemetry.BatchSize <= 0 || c.Telemetry.FlushInterval <= 0 {
		add("telemetry buffer_size, batch_size and flush_interval must be positive")
	}
	if c.Stream.Enabled && c.Stream.Address == "" {
		add("stream.address is required when the stream is enabled")
	}
	if c.Database.Enabled && c.Database.Host == "" {
		add("database.host is required when the database is enabled")
	}

	return errors.Join(errs...)
}

func validateAgent(i int, a AgentConfig) []error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: agents[%d]."+format, append([]any{ErrInvalid, i}, args...)...))
	}

	if math.IsNaN(a.YawDeg) || math.IsInf(a.YawDeg, 0) {
		add("yaw_deg must be finite, got %v", a.YawDeg)
	}

	p := a.Stats
	if p.MaxHealth <= 0 {
		add("profile.max_health must be positive, got %v", p.MaxHealth)
	}
	if p.DetectionRange < 0 || p.AttackRange < 0 || p.SearchRadius < 0 {
		add("profile ranges must not be negative")
	}
	if p.FieldOfView <= 0 || p.FieldOfView > 360 {
		add("profile.field_of_view must be in (0, 360], got %v", p.FieldOfView)
	}
	if p.WalkSpeed < 0 || p.RunSpeed < 0 || p.RotationSpeed < 0 {
		add("profile speeds must not be negative")
	}
	if p.WaitTime < 0 || p.SearchTime < 0 {
		add("profile timers must not be negative")
	}

	w := a.Weapon
	if _, ok := model.ParseTactic(w.Tactic); !ok {
		add("weapon.tactic: unknown tactic %q", w.Tactic)
	}
	if w.Accuracy < 0 || w.Accuracy > 1 {
		add("weapon.accuracy must be in [0, 1], got %v", w.Accuracy)
	}
	if w.Damage < 0 || w.Range < 0 || w.FireRate < 0 || w.ReloadTime < 0 || w.BurstDelay < 0 {
		add("weapon values must not be negative")
	}
	if w.MagazineSize < 0 || w.BurstCount < 0 {
		add("weapon counts must not be negative")
	}

	if _, err := ai.ParsePatrolMode(a.Patrol.Mode); err != nil {
		add("patrol.mode: %v", err)
	}
	if a.Patrol.DwellTime < 0 {
		add("patrol.dwell_time must not be negative, got %v", a.Patrol.DwellTime)
	}
	if c := a.Patrol.Circle; c != nil && (c.Radius <= 0 || c.Count <= 0) {
		add("patrol.circle radius and count must be positive")
	}
	return errs
}

// PatrolPoints returns the configured patrol points, generating the circle
// around spawn when set.
func (a AgentConfig) PatrolPoints() []model.Vec3 {
	if c := a.Patrol.Circle; c != nil {
		return ai.GenerateCircle(a.Spawn, c.Radius, c.Count)
	}
	return a.Patrol.Points
}

// NodeSpecs converts configured nodes for nav.BuildGraph.
func (n Navigation) NodeSpecs() ([]nav.NodeSpec, error) {
	specs := make([]nav.NodeSpec, 0, len(n.Nodes))
	for i, node := range n.Nodes {
		typ, err := nav.ParseNodeType(node.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: navigation.nodes[%d]: %w", ErrInvalid, i, err)
		}
		specs = append(specs, nav.NodeSpec{Position: node.Position, Type: typ})
	}
	return specs, nil
}
