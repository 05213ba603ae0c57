package model

// AgentState represents behavior state of a hostile agent.
type AgentState int32

const (
	// StateIdle - agent stands still and waits before resuming patrol
	StateIdle AgentState = iota
	// StatePatrol - agent walks its patrol route
	StatePatrol
	// StateChase - agent runs toward the target or its last known position
	StateChase
	// StateAttack - agent holds range and fires at the target
	StateAttack
	// StateSearch - agent sweeps random points around the last known position
	StateSearch
	// StateAlert - agent froze after noticing the target or taking damage
	StateAlert
	// StateDead - terminal, agent no longer ticks
	StateDead
)

// String returns human-readable state name
func (s AgentState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePatrol:
		return "PATROL"
	case StateChase:
		return "CHASE"
	case StateAttack:
		return "ATTACK"
	case StateSearch:
		return "SEARCH"
	case StateAlert:
		return "ALERT"
	case StateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// IsEngaged reports whether the agent is actively pursuing or fighting a target.
func (s AgentState) IsEngaged() bool {
	return s == StateChase || s == StateAttack
}
