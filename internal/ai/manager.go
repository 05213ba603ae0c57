package ai

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/hostile/internal/model"
)

// ErrControllerNotFound is returned by GetController for unknown agents.
var ErrControllerNotFound = errors.New("controller not found")

// Default tick settings.
const (
	DefaultTickRate = 30
	maxTimeScale    = 10.0
)

// ManagerConfig configures the simulation loop.
type ManagerConfig struct {
	// TickRate is the number of fixed steps per wall-clock second.
	TickRate int
	// Workers > 1 ticks agents in parallel with at most Workers goroutines.
	Workers int
	// RemovalDelay is how long dead agents stay registered (seconds of sim time).
	RemovalDelay float64
}

// TickManager drives all registered controllers with a fixed simulation step.
// Simulation time is decoupled from wall-clock: Step advances it by dt scaled
// by the time scale, and a time scale of zero pauses the world.
type TickManager struct {
	cfg ManagerConfig

	controllers     sync.Map // map[uint32]Controller, keyed by agentID
	controllerCount atomic.Int32

	now       atomic.Uint64 // float64 bits of simulation time
	timeScale atomic.Uint64 // float64 bits
	steps     atomic.Uint64

	stepMu    sync.Mutex
	deadSince map[uint32]float64
	afterStep func(dt float64)
	onRemove  func(agentID uint32)

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewTickManager creates new tick manager.
func NewTickManager(cfg ManagerConfig) *TickManager {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	if cfg.RemovalDelay <= 0 {
		cfg.RemovalDelay = DefaultRemovalDelay
	}
	m := &TickManager{
		cfg:       cfg,
		deadSince: make(map[uint32]float64),
		stopCh:    make(chan struct{}),
	}
	m.timeScale.Store(math.Float64bits(1))
	return m
}

// FixedStep returns the simulation step used by Start.
func (m *TickManager) FixedStep() float64 {
	return 1 / float64(m.cfg.TickRate)
}

// Now returns current simulation time in seconds. Safe as an event clock.
func (m *TickManager) Now() float64 {
	return math.Float64frombits(m.now.Load())
}

// Steps returns number of executed steps.
func (m *TickManager) Steps() uint64 {
	return m.steps.Load()
}

// TimeScale returns current time scale.
func (m *TickManager) TimeScale() float64 {
	return math.Float64frombits(m.timeScale.Load())
}

// SetTimeScale sets simulation speed multiplier, clamped to [0, 10].
// Zero pauses the simulation.
func (m *TickManager) SetTimeScale(scale float64) {
	if math.IsNaN(scale) || scale < 0 {
		scale = 0
	}
	scale = min(scale, maxTimeScale)
	m.timeScale.Store(math.Float64bits(scale))
	slog.Info("simulation time scale changed", "scale", scale)
}

// Pause stops simulation time.
func (m *TickManager) Pause() {
	m.SetTimeScale(0)
}

// Paused reports whether simulation time is stopped.
func (m *TickManager) Paused() bool {
	return m.TimeScale() == 0
}

// SetAfterStep installs a hook called after every step with the scaled dt
// (world physics, telemetry). Must be set before Start.
func (m *TickManager) SetAfterStep(fn func(dt float64)) {
	m.afterStep = fn
}

// SetOnRemove installs a hook called when a dead agent is removed.
// Must be set before Start.
func (m *TickManager) SetOnRemove(fn func(agentID uint32)) {
	m.onRemove = fn
}

// Register registers and starts a controller.
func (m *TickManager) Register(controller Controller) {
	id := controller.AgentID()
	if _, loaded := m.controllers.Swap(id, controller); !loaded {
		m.controllerCount.Add(1)
	}
	controller.Start()

	slog.Debug("agent controller registered",
		"agentID", id,
		"state", controller.CurrentState())
}

// Unregister stops and removes a controller.
func (m *TickManager) Unregister(agentID uint32) {
	value, ok := m.controllers.LoadAndDelete(agentID)
	if !ok {
		return
	}
	m.controllerCount.Add(-1)

	value.(Controller).Stop()

	slog.Debug("agent controller unregistered", "agentID", agentID)
}

// Count returns number of registered controllers (O(1) cached count).
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// GetController returns controller of the agent.
func (m *TickManager) GetController(agentID uint32) (Controller, error) {
	value, ok := m.controllers.Load(agentID)
	if !ok {
		return nil, fmt.Errorf("agent %d: %w", agentID, ErrControllerNotFound)
	}
	return value.(Controller), nil
}

// Controllers returns registered controllers ordered by agent ID.
func (m *TickManager) Controllers() []Controller {
	out := make([]Controller, 0, m.Count())
	m.controllers.Range(func(_, value any) bool {
		out = append(out, value.(Controller))
		return true
	})
	slices.SortFunc(out, func(a, b Controller) int {
		return cmp.Compare(a.AgentID(), b.AgentID())
	})
	return out
}

// Start runs the fixed-step loop until ctx is canceled or Stop is called.
func (m *TickManager) Start(ctx context.Context) error {
	interval := time.Second / time.Duration(m.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("agent tick manager started",
		"interval", interval,
		"workers", m.cfg.Workers)

	dt := m.FixedStep()
	for {
		select {
		case <-ctx.Done():
			slog.Info("agent tick manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("agent tick manager stopped")
			return nil

		case <-ticker.C:
			if err := m.Step(ctx, dt); err != nil {
				return err
			}
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Step advances the simulation by dt scaled by the time scale.
// Agents are ticked in agent ID order, or in parallel when Workers > 1.
// A paused simulation does not tick agents.
func (m *TickManager) Step(ctx context.Context, dt float64) error {
	m.stepMu.Lock()
	defer m.stepMu.Unlock()

	scaled := dt * m.TimeScale()
	if scaled <= 0 {
		return nil
	}

	now := m.Now() + scaled
	m.now.Store(math.Float64bits(now))
	m.steps.Add(1)

	controllers := m.Controllers()
	if err := m.tickAll(ctx, controllers, scaled); err != nil {
		return fmt.Errorf("tick agents: %w", err)
	}

	if m.afterStep != nil {
		m.afterStep(scaled)
	}

	m.reapDead(controllers, now)

	if len(controllers) > 0 && IsDebugEnabled() {
		slog.Debug("simulation step completed",
			"controllers", len(controllers),
			"simTime", now)
	}
	return nil
}

func (m *TickManager) tickAll(ctx context.Context, controllers []Controller, dt float64) error {
	if m.cfg.Workers <= 1 {
		for _, c := range controllers {
			c.Tick(dt)
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Workers)
	for _, c := range controllers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.Tick(dt)
			return nil
		})
	}
	return g.Wait()
}

// reapDead unregisters agents that have been dead for RemovalDelay.
func (m *TickManager) reapDead(controllers []Controller, now float64) {
	for _, c := range controllers {
		id := c.AgentID()
		if c.CurrentState() != model.StateDead {
			delete(m.deadSince, id)
			continue
		}
		since, ok := m.deadSince[id]
		if !ok {
			m.deadSince[id] = now
			continue
		}
		if now-since < m.cfg.RemovalDelay-timeEpsilon {
			continue
		}

		delete(m.deadSince, id)
		m.Unregister(id)
		if m.onRemove != nil {
			m.onRemove(id)
		}
		slog.Info("dead agent removed", "agentID", id, "simTime", now)
	}
}
