package world

import (
	"math"
	"sync"

	"github.com/udisondev/hostile/internal/model"
)

// Mover is the reference movement driver of one agent: straight-line motion
// toward the destination at the commanded speed. Obstacles are not avoided;
// routes from the navigation graph keep agents off them.
type Mover struct {
	agent *model.Agent

	mu             sync.Mutex
	dest           model.Vec3
	hasDest        bool
	speed          float64
	updateRotation bool
	disabled       bool
	velocity       model.Vec3
}

func newMover(agent *model.Agent) *Mover {
	return &Mover{agent: agent, updateRotation: true}
}

// Agent returns the driven agent.
func (m *Mover) Agent() *model.Agent {
	return m.agent
}

func (m *Mover) SetDestination(pos model.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return
	}
	m.dest = pos
	m.hasDest = true
}

func (m *Mover) SetSpeed(speed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = max(0, speed)
}

func (m *Mover) SetUpdateRotation(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateRotation = enabled
}

func (m *Mover) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasDest = false
	m.velocity = model.Vec3{}
}

func (m *Mover) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = true
	m.hasDest = false
	m.velocity = model.Vec3{}
}

func (m *Mover) Velocity() model.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.velocity
}

func (m *Mover) IsGrounded() bool { return true }

// Disabled reports whether the driver was turned off.
func (m *Mover) Disabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disabled
}

// step moves the agent. Called between agent ticks only.
func (m *Mover) step(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled || !m.hasDest || m.speed <= 0 || dt <= 0 {
		m.velocity = model.Vec3{}
		return
	}

	pos := m.agent.Position
	to := m.dest.Sub(pos).Flat()
	dist := to.Length()
	travel := m.speed * dt
	if dist <= travel {
		m.agent.Position = model.V3(m.dest.X, pos.Y, m.dest.Z)
		m.velocity = model.Vec3{}
		m.hasDest = false
		return
	}

	dir := to.Scale(1 / dist)
	m.agent.Position = pos.Add(dir.Scale(travel))
	m.velocity = dir.Scale(m.speed)

	if m.updateRotation {
		maxStep := m.agent.Profile.RotationSpeed * math.Pi / 180 * dt
		m.agent.Yaw = model.RotateTowards(m.agent.Yaw, model.YawOf(dir), maxStep)
	}
}
