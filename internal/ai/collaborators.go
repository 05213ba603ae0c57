package ai

import "github.com/udisondev/hostile/internal/model"

// WorldQuery answers spatial questions about the level.
// Must be safe to call from many agents within the same tick.
type WorldQuery interface {
	// Raycast returns the nearest hit along dir (unit vector) up to maxDist
	// against colliders matching mask.
	Raycast(origin, dir model.Vec3, maxDist float64, mask model.Layer) model.RaycastHit
	// SampleNavigablePoint returns a walkable point within radius of center.
	SampleNavigablePoint(center model.Vec3, radius float64) (model.Vec3, bool)
}

// DamageApplier applies damage to entities hit by agent weapons.
// Implementations serialize updates per target entity.
type DamageApplier interface {
	ApplyDamage(targetID uint32, amount float64, kind model.DamageKind)
}

// MovementDriver commands locomotion of one agent.
// Steering and physics are the driver's business.
type MovementDriver interface {
	SetDestination(pos model.Vec3)
	SetSpeed(speed float64)
	// SetUpdateRotation toggles whether the driver turns the agent along its motion.
	SetUpdateRotation(enabled bool)
	Stop()
	// Disable turns off collision and movement for good (death).
	Disable()
	Velocity() model.Vec3
	IsGrounded() bool
}

// Target is the entity hostile agents hunt (the player).
type Target interface {
	ID() uint32
	Position() model.Vec3
	Forward() model.Vec3
	IsAlive() bool
}
