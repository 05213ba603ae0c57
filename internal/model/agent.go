package model

// AgentProfile holds immutable per-agent tuning.
type AgentProfile struct {
	MaxHealth      float64
	DetectionRange float64
	AttackRange    float64
	FieldOfView    float64 // degrees, full cone width
	WalkSpeed      float64
	RunSpeed       float64
	RotationSpeed  float64 // degrees per second
	WaitTime       float64 // seconds idle between patrol legs
	SearchTime     float64 // seconds spent searching before giving up
	SearchRadius   float64
}

// DefaultAgentProfile returns tuning of a regular infantry enemy.
func DefaultAgentProfile() AgentProfile {
	return AgentProfile{
		MaxHealth:      100,
		DetectionRange: 15,
		AttackRange:    10,
		FieldOfView:    90,
		WalkSpeed:      2,
		RunSpeed:       5,
		RotationSpeed:  120,
		WaitTime:       2,
		SearchTime:     10,
		SearchRadius:   8,
	}
}

// Agent represents one hostile AI-controlled entity.
//
// Agent is owned by a single controller and is not safe for concurrent use.
// Position and Yaw are written by the agent's movement driver; everything else
// by the behavior state machine and perception of this agent.
type Agent struct {
	ID      uint32
	Name    string
	Profile AgentProfile

	Position Vec3
	Yaw      float64 // radians about Y, 0 faces +Z
	Spawn    Vec3

	State  AgentState
	Health float64

	LastKnownTargetPosition Vec3
	PlayerDetected          bool

	StateTimer float64 // seconds since entering State
	AlertTimer float64 // seconds since the target was last perceived
}

// NewAgent creates an agent at its spawn point with full health.
// Initial state is Idle; the controller moves it to Patrol when a route exists.
func NewAgent(id uint32, name string, profile AgentProfile, spawn Vec3, yaw float64) *Agent {
	return &Agent{
		ID:       id,
		Name:     name,
		Profile:  profile,
		Position: spawn,
		Spawn:    spawn,
		Yaw:      yaw,
		State:    StateIdle,
		Health:   profile.MaxHealth,
	}
}

// Forward returns the horizontal facing direction.
func (a *Agent) Forward() Vec3 {
	return ForwardFromYaw(a.Yaw)
}

// IsDead returns true if the agent reached the terminal state.
func (a *Agent) IsDead() bool {
	return a.State == StateDead
}

// HealthRatio returns current health in [0, 1].
func (a *Agent) HealthRatio() float64 {
	if a.Profile.MaxHealth <= 0 {
		return 0
	}
	return a.Health / a.Profile.MaxHealth
}
