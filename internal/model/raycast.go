package model

// Layer is a bitmask of collision classifications used by world queries.
type Layer uint8

const (
	// LayerObstacle - static geometry that blocks sight and bullets
	LayerObstacle Layer = 1 << iota
	// LayerPlayer - player hit volumes
	LayerPlayer
)

// Has reports whether mask contains l.
func (m Layer) Has(l Layer) bool {
	return m&l != 0
}

// RaycastHit is the result of a world raycast. Zero value means no hit.
type RaycastHit struct {
	Hit      bool
	Point    Vec3
	Distance float64
	Layer    Layer
	EntityID uint32 // set for LayerPlayer hits
}

// DamageKind classifies applied damage.
type DamageKind uint8

const (
	DamageBullet DamageKind = iota + 1
	DamageExplosion
	DamageMelee
)

// String returns human-readable damage kind
func (k DamageKind) String() string {
	switch k {
	case DamageBullet:
		return "bullet"
	case DamageExplosion:
		return "explosion"
	case DamageMelee:
		return "melee"
	default:
		return "unknown"
	}
}
