// Package event defines typed events emitted by hostile agents and the bus
// that dispatches them to UI, audio, effects, network and telemetry consumers.
package event

import "github.com/udisondev/hostile/internal/model"

// Kind identifies an event variant.
type Kind uint8

const (
	KindEnemyAlerted Kind = iota + 1
	KindEnemyDamaged
	KindEnemyDied
	KindEnemyWeaponFired
	KindPlayerHit
	KindEnemyStateChanged
)

// String returns the wire name of the event kind.
func (k Kind) String() string {
	switch k {
	case KindEnemyAlerted:
		return "EnemyAlerted"
	case KindEnemyDamaged:
		return "EnemyDamaged"
	case KindEnemyDied:
		return "EnemyDied"
	case KindEnemyWeaponFired:
		return "EnemyWeaponFired"
	case KindPlayerHit:
		return "PlayerHit"
	case KindEnemyStateChanged:
		return "EnemyStateChanged"
	default:
		return "Unknown"
	}
}

// Kinds lists every event kind.
var Kinds = []Kind{
	KindEnemyAlerted,
	KindEnemyDamaged,
	KindEnemyDied,
	KindEnemyWeaponFired,
	KindPlayerHit,
	KindEnemyStateChanged,
}

// Event is implemented only by the types in this package.
type Event interface {
	Kind() Kind
	Source() Header
	sealed()
}

// Header carries fields common to every event.
type Header struct {
	AgentID uint32  `json:"agent_id"`
	SimTime float64 `json:"sim_time"` // simulation seconds
}

// Source returns the header.
func (h Header) Source() Header { return h }
func (Header) sealed()          {}

// EnemyAlerted is emitted when an agent enters Alert (target acquired or damage taken).
type EnemyAlerted struct {
	Header
	Position model.Vec3 `json:"position"`
	ByDamage bool       `json:"by_damage"`
}

// EnemyDamaged is emitted for every damage application that reached the agent.
type EnemyDamaged struct {
	Header
	Amount    float64 `json:"amount"`
	Remaining float64 `json:"remaining"`
}

// EnemyDied is emitted once when an agent's health drops to zero.
type EnemyDied struct {
	Header
	Position    model.Vec3 `json:"position"`
	RemoveAfter float64    `json:"remove_after"` // seconds until the body is removed
}

// EnemyWeaponFired is emitted for every shot, hit or miss.
type EnemyWeaponFired struct {
	Header
	Origin    model.Vec3 `json:"origin"`
	Direction model.Vec3 `json:"direction"`
	AmmoLeft  int        `json:"ammo_left"`
}

// PlayerHit is emitted when a shot lands on a player.
type PlayerHit struct {
	Header
	PlayerID uint32     `json:"player_id"`
	Amount   float64    `json:"amount"`
	Point    model.Vec3 `json:"point"`
}

// EnemyStateChanged notifies animation/audio hooks of behavior transitions.
type EnemyStateChanged struct {
	Header
	From model.AgentState `json:"-"`
	To   model.AgentState `json:"-"`
}

func (EnemyAlerted) Kind() Kind      { return KindEnemyAlerted }
func (EnemyDamaged) Kind() Kind      { return KindEnemyDamaged }
func (EnemyDied) Kind() Kind         { return KindEnemyDied }
func (EnemyWeaponFired) Kind() Kind  { return KindEnemyWeaponFired }
func (PlayerHit) Kind() Kind         { return KindPlayerHit }
func (EnemyStateChanged) Kind() Kind { return KindEnemyStateChanged }

// Envelope is the JSON form of an event shared by telemetry and the stream.
type Envelope struct {
	Kind    string  `json:"kind"`
	AgentID uint32  `json:"agent_id"`
	SimTime float64 `json:"sim_time"`
	Payload any     `json:"payload"`
}

// stateChange is the payload of EnemyStateChanged with readable states.
type stateChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Encode wraps an event into its Envelope.
func Encode(e Event) Envelope {
	h := e.Source()
	env := Envelope{
		Kind:    e.Kind().String(),
		AgentID: h.AgentID,
		SimTime: h.SimTime,
		Payload: e,
	}
	if sc, ok := e.(EnemyStateChanged); ok {
		env.Payload = stateChange{From: sc.From.String(), To: sc.To.String()}
	}
	return env
}
