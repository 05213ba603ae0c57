package ai

import "github.com/udisondev/hostile/internal/model"

// Controller represents a behavior controller driven by TickManager
type Controller interface {
	// Start starts the controller in its initial state
	Start()

	// Stop stops the controller and halts its agent
	Stop()

	// AgentID returns ID of the controlled agent
	AgentID() uint32

	// CurrentState returns current behavior state
	CurrentState() model.AgentState

	// Tick advances the controller by dt simulation seconds
	Tick(dt float64)
}

var _ Controller = (*AgentAI)(nil)
