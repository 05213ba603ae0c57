package testutil

import (
	"sync"

	"github.com/udisondev/hostile/internal/model"
)

// DamageCall — один вызов ApplyDamage.
type DamageCall struct {
	TargetID uint32
	Amount   float64
	Kind     model.DamageKind
}

// RecordingDamage — ai.DamageApplier, запоминающий все вызовы.
type RecordingDamage struct {
	mu    sync.Mutex
	calls []DamageCall
}

// ApplyDamage записывает вызов.
func (d *RecordingDamage) ApplyDamage(targetID uint32, amount float64, kind model.DamageKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, DamageCall{TargetID: targetID, Amount: amount, Kind: kind})
}

// Calls возвращает копию всех вызовов.
func (d *RecordingDamage) Calls() []DamageCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DamageCall(nil), d.calls...)
}

// Total возвращает суммарный урон.
func (d *RecordingDamage) Total() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var sum float64
	for _, c := range d.calls {
		sum += c.Amount
	}
	return sum
}

// FakeMover — ai.MovementDriver без физики: хранит последние команды.
// Step телепортирует агента к цели с заданной скоростью, если Agent задан.
type FakeMover struct {
	mu sync.Mutex

	Agent          *model.Agent
	Destination    model.Vec3
	HasDestination bool
	Speed          float64
	UpdateRotation bool
	Stopped        bool
	Disabled       bool

	Destinations []model.Vec3
	StopCalls    int
}

// SetDestination запоминает цель.
func (m *FakeMover) SetDestination(pos model.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Disabled {
		return
	}
	m.Destination = pos
	m.HasDestination = true
	m.Stopped = false
	m.Destinations = append(m.Destinations, pos)
}

// SetSpeed запоминает скорость.
func (m *FakeMover) SetSpeed(speed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Speed = speed
}

// SetUpdateRotation запоминает флаг поворота.
func (m *FakeMover) SetUpdateRotation(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateRotation = enabled
}

// Stop останавливает движение.
func (m *FakeMover) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HasDestination = false
	m.Stopped = true
	m.StopCalls++
}

// Disable выключает движение навсегда.
func (m *FakeMover) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Disabled = true
	m.HasDestination = false
}

// Velocity всегда нулевая.
func (m *FakeMover) Velocity() model.Vec3 { return model.Vec3{} }

// IsGrounded всегда true.
func (m *FakeMover) IsGrounded() bool { return true }

// Step двигает Agent к Destination на Speed*dt.
func (m *FakeMover) Step(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Agent == nil || !m.HasDestination || m.Disabled {
		return
	}
	to := m.Destination.Sub(m.Agent.Position).Flat()
	dist := to.Length()
	step := m.Speed * dt
	if dist <= step || dist < 1e-9 {
		m.Agent.Position = model.V3(m.Destination.X, m.Agent.Position.Y, m.Destination.Z)
		return
	}
	m.Agent.Position = m.Agent.Position.Add(to.Scale(step / dist))
}

// FakeTarget — ai.Target с изменяемым положением.
type FakeTarget struct {
	mu      sync.Mutex
	id      uint32
	pos     model.Vec3
	forward model.Vec3
	alive   bool
}

// NewFakeTarget создаёт живую цель, смотрящую в +Z.
func NewFakeTarget(id uint32, pos model.Vec3) *FakeTarget {
	return &FakeTarget{id: id, pos: pos, forward: model.V3(0, 0, 1), alive: true}
}

func (t *FakeTarget) ID() uint32 { return t.id }

func (t *FakeTarget) Position() model.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

func (t *FakeTarget) Forward() model.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.forward
}

func (t *FakeTarget) IsAlive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alive
}

// MoveTo перемещает цель.
func (t *FakeTarget) MoveTo(pos model.Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pos = pos
}

// SetForward задаёт направление взгляда.
func (t *FakeTarget) SetForward(f model.Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.forward = f
}

// Kill убивает цель.
func (t *FakeTarget) Kill() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alive = false
}
