package ai

import "github.com/udisondev/hostile/internal/model"

// Perception constants.
const (
	eyeHeight       = 1.5 // LOS rays start this far above the agent base
	lossRangeFactor = 1.5 // detection drops beyond DetectionRange * lossRangeFactor...
	lossTimeout     = 3.0 // ...or after this many seconds without a sighting
)

// PerceptionResult is the outcome of one sensor update.
type PerceptionResult struct {
	Visible  bool    // target passed range, FOV and LOS checks this tick
	Distance float64 // agent base to target
	Angle    float64 // degrees between agent forward and direction to target
	Acquired bool    // target noticed while not already alerted or engaged
	Lost     bool    // detection dropped this tick
}

// Perception is the range / field-of-view / line-of-sight sensor of an agent.
// Stateless itself: detection state lives on the Agent.
type Perception struct {
	query WorldQuery
}

// NewPerception creates a sensor backed by the world query.
func NewPerception(query WorldQuery) *Perception {
	return &Perception{query: query}
}

// Update senses the target at targetPos and updates the agent's detection fields.
//
// Loss of detection uses hysteresis: once detected, the target is dropped only
// when it is farther than DetectionRange*1.5 or unseen for more than 3s, AND
// line of sight is blocked at that moment. LOS is re-checked only after the
// distance/time gate opens, so a far target still in plain view stays detected
// without being reconfirmed every tick.
func (p *Perception) Update(agent *model.Agent, targetPos model.Vec3, dt float64) PerceptionResult {
	toTarget := targetPos.Sub(agent.Position)
	res := PerceptionResult{
		Distance: toTarget.Length(),
		Angle:    agent.Forward().AngleTo(toTarget),
	}

	if agent.PlayerDetected {
		agent.AlertTimer += dt
	}

	res.Visible = p.canSee(agent, targetPos, res)
	if res.Visible {
		agent.PlayerDetected = true
		agent.LastKnownTargetPosition = targetPos
		agent.AlertTimer = 0

		switch agent.State {
		case model.StateAlert, model.StateChase, model.StateAttack:
		default:
			res.Acquired = true
		}
		return res
	}

	if !agent.PlayerDetected {
		return res
	}

	gateOpen := res.Distance > agent.Profile.DetectionRange*lossRangeFactor ||
		agent.AlertTimer > lossTimeout
	if gateOpen && !p.HasLineOfSight(agent, targetPos) {
		agent.PlayerDetected = false
		res.Lost = true
	}
	return res
}

// canSee applies range, then FOV, then the LOS raycast (cheapest first).
func (p *Perception) canSee(agent *model.Agent, targetPos model.Vec3, res PerceptionResult) bool {
	if res.Distance > agent.Profile.DetectionRange {
		return false
	}
	if res.Angle > agent.Profile.FieldOfView/2 {
		return false
	}
	return p.HasLineOfSight(agent, targetPos)
}

// HasLineOfSight casts from the agent's eye toward targetPos against obstacles.
// A missing world query means nothing can block sight.
func (p *Perception) HasLineOfSight(agent *model.Agent, targetPos model.Vec3) bool {
	if p.query == nil {
		return true
	}
	origin := agent.Position.Add(model.V3(0, eyeHeight, 0))
	toTarget := targetPos.Sub(origin)
	dist := toTarget.Length()
	if dist < 1e-6 {
		return true
	}
	hit := p.query.Raycast(origin, toTarget.Scale(1/dist), dist, model.LayerObstacle)
	return !hit.Hit
}
