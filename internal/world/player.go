package world

import (
	"log/slog"
	"sync"

	"github.com/udisondev/hostile/internal/model"
)

// Player hit volume: a sphere centered above the feet.
const (
	playerCenterHeight = 1.0
	playerRadius       = 0.5
)

// PlayerWeapon lets a scripted player shoot back at agents.
type PlayerWeapon struct {
	Damage   float64
	FireRate float64
	Range    float64
}

// Player is a scripted target entity. All methods are safe for concurrent use;
// damage from many agents is serialized by the player's mutex.
type Player struct {
	id uint32

	mu       sync.Mutex
	position model.Vec3
	forward  model.Vec3
	health   float64
	alive    bool

	path    []model.Vec3
	pathIdx int
	speed   float64

	weapon   PlayerWeapon
	cooldown float64

	damageTaken float64
	hitsTaken   int
}

// NewPlayer creates a living player facing +Z.
func NewPlayer(id uint32, pos model.Vec3, health float64) *Player {
	return &Player{
		id:       id,
		position: pos,
		forward:  model.V3(0, 0, 1),
		health:   health,
		alive:    health > 0,
	}
}

// SetPath makes the player walk a looped path at speed.
func (p *Player) SetPath(path []model.Vec3, speed float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.path = append([]model.Vec3(nil), path...)
	p.pathIdx = 0
	p.speed = speed
}

// SetWeapon arms the player.
func (p *Player) SetWeapon(w PlayerWeapon) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.weapon = w
}

func (p *Player) ID() uint32 { return p.id }

// Position returns feet position.
func (p *Player) Position() model.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

// Forward returns facing direction.
func (p *Player) Forward() model.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.forward
}

// IsAlive reports whether the player has health left.
func (p *Player) IsAlive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

// Health returns remaining health.
func (p *Player) Health() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.health
}

// DamageStats returns total damage and number of hits taken.
func (p *Player) DamageStats() (total float64, hits int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.damageTaken, p.hitsTaken
}

// Teleport moves the player.
func (p *Player) Teleport(pos model.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = pos
}

// takeDamage subtracts health. Returns true if this hit killed the player.
func (p *Player) takeDamage(amount float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.alive || amount <= 0 {
		return false
	}
	p.health = max(0, p.health-amount)
	p.damageTaken += amount
	p.hitsTaken++
	if p.health > 0 {
		return false
	}
	p.alive = false
	return true
}

// hitCenter returns center of the hit sphere.
func (p *Player) hitCenter() model.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position.Add(model.V3(0, playerCenterHeight, 0))
}

// step walks the scripted path.
func (p *Player) step(dt float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.alive || len(p.path) == 0 || p.speed <= 0 {
		return
	}

	remaining := p.speed * dt
	// Each waypoint is visited at most once per step.
	for range len(p.path) + 1 {
		if remaining <= 0 {
			return
		}
		goal := p.path[p.pathIdx]
		to := goal.Sub(p.position).Flat()
		dist := to.Length()
		if dist <= remaining {
			p.position = model.V3(goal.X, p.position.Y, goal.Z)
			remaining -= dist
			p.pathIdx = (p.pathIdx + 1) % len(p.path)
			continue
		}
		dir := to.Scale(1 / dist)
		p.position = p.position.Add(dir.Scale(remaining))
		p.forward = dir
		remaining = 0
	}
}

// readyToFire advances the weapon cooldown and reports whether a shot is due.
func (p *Player) readyToFire(dt float64) (PlayerWeapon, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.alive || p.weapon.FireRate <= 0 || p.weapon.Damage <= 0 {
		return PlayerWeapon{}, false
	}
	p.cooldown -= dt
	if p.cooldown > 0 {
		return p.weapon, false
	}
	return p.weapon, true
}

func (p *Player) resetCooldown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cooldown = 1 / p.weapon.FireRate
}

func logPlayerDeath(p *Player) {
	total, hits := p.DamageStats()
	slog.Info("player killed", "playerID", p.id, "damageTaken", total, "hits", hits)
}
