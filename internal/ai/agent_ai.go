package ai

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sync/atomic"

	"github.com/udisondev/hostile/internal/event"
	"github.com/udisondev/hostile/internal/game/nav"
	"github.com/udisondev/hostile/internal/model"
)

// Behavior constants.
const (
	alertDuration       = 2.0 // seconds frozen in Alert before chasing or searching
	attackExitFactor    = 1.2 // Attack -> Chase beyond AttackRange * attackExitFactor
	arriveDistance      = 0.5 // waypoint / patrol point reached
	repathInterval      = 0.5 // Chase re-plans at most this often...
	repathDistance      = 1.0 // ...and only if the goal moved this far
	searchRetryDelay    = 1.0 // wait before re-sampling an unreachable search point
	DefaultRemovalDelay = 5.0 // seconds a corpse stays before removal
)

// Deps are the collaborators injected into an agent controller.
// Only Mover is required; a nil Target, Paths or Query degrades the
// matching behavior to a no-op instead of failing.
type Deps struct {
	Query  WorldQuery
	Damage DamageApplier
	Mover  MovementDriver
	Target Target
	Paths  *nav.Pathfinder
	Bus    *event.Bus
	Rand   *rand.Rand
	// Clock returns simulation time for event stamps (TickManager.Now).
	Clock func() float64
	// RemovalDelay is advertised in EnemyDied; removal itself is done by TickManager.
	RemovalDelay float64
}

// tacticalMove is what Attack does with its legs.
type tacticalMove uint8

const (
	tacticalHold tacticalMove = iota
	tacticalCover
	tacticalFlank
)

// AgentAI is the behavior state machine of one hostile agent.
// States: IDLE, PATROL, ALERT, CHASE, ATTACK, SEARCH, DEAD (terminal).
// Perception runs first every tick and its transitions pre-empt the state's
// own exit checks.
type AgentAI struct {
	agent      *model.Agent
	deps       Deps
	perception *Perception
	patrol     *PatrolRoute
	combat     *Combat
	route      navigator

	isRunning atomic.Bool
	now       float64

	sensed       PerceptionResult
	hasLastKnown bool
	chaseGoal    model.Vec3
	repathIn     float64
	searchRetry  float64
	tactic       tacticalMove
}

// NewAgentAI creates a controller for agent. patrol may be nil (agent idles).
func NewAgentAI(agent *model.Agent, weapon model.CombatProfile, patrol *PatrolRoute, deps Deps) *AgentAI {
	if deps.RemovalDelay <= 0 {
		deps.RemovalDelay = DefaultRemovalDelay
	}
	ai := &AgentAI{
		agent:      agent,
		deps:       deps,
		perception: NewPerception(deps.Query),
		patrol:     patrol,
	}
	ai.combat = NewCombat(agent, weapon, deps.Query, deps.Damage, deps.Bus, deps.Rand, ai.clock)
	ai.route.mover = deps.Mover
	return ai
}

// Start starts the controller in PATROL when a route exists, IDLE otherwise.
func (ai *AgentAI) Start() {
	if ai.agent.IsDead() {
		return
	}
	ai.isRunning.Store(true)

	ai.agent.State = model.StateIdle
	ai.agent.StateTimer = 0
	ai.enter(model.StateIdle)
	if ai.patrol.HasPoints() {
		ai.SetState(model.StatePatrol)
	}

	if IsDebugEnabled() {
		slog.Debug("agent AI started",
			"agent", ai.agent.Name,
			"agentID", ai.agent.ID,
			"state", ai.agent.State)
	}
}

// Stop stops the controller and halts movement.
func (ai *AgentAI) Stop() {
	ai.isRunning.Store(false)
	ai.combat.Cancel()
	ai.route.clear()
	ai.mover().Stop()

	if IsDebugEnabled() {
		slog.Debug("agent AI stopped",
			"agent", ai.agent.Name,
			"agentID", ai.agent.ID)
	}
}

// AgentID returns the agent's ID.
func (ai *AgentAI) AgentID() uint32 {
	return ai.agent.ID
}

// Agent returns the controlled agent.
func (ai *AgentAI) Agent() *model.Agent {
	return ai.agent
}

// Combat returns the weapon controller.
func (ai *AgentAI) Combat() *Combat {
	return ai.combat
}

// Patrol returns the patrol route (may be nil).
func (ai *AgentAI) Patrol() *PatrolRoute {
	return ai.patrol
}

// Perceived returns the last perception result.
func (ai *AgentAI) Perceived() PerceptionResult {
	return ai.sensed
}

// CurrentState returns the agent's behavior state.
func (ai *AgentAI) CurrentState() model.AgentState {
	return ai.agent.State
}

// SetState transitions to state, resetting StateTimer and applying the
// state's setup. DEAD is only entered through damage and never left.
func (ai *AgentAI) SetState(state model.AgentState) {
	from := ai.agent.State
	if from == state || from == model.StateDead || state == model.StateDead {
		return
	}

	ai.agent.State = state
	ai.agent.StateTimer = 0
	ai.combat.Cancel()
	ai.route.clear()
	ai.enter(state)

	ai.deps.Bus.Publish(event.EnemyStateChanged{Header: ai.header(), From: from, To: state})

	if IsDebugEnabled() {
		slog.Debug("agent state changed",
			"agent", ai.agent.Name,
			"agentID", ai.agent.ID,
			"from", from,
			"to", state)
	}
}

// enter applies state-specific setup.
func (ai *AgentAI) enter(state model.AgentState) {
	mover := ai.mover()
	mover.SetUpdateRotation(state != model.StateAttack && state != model.StateAlert)
	ai.tactic = tacticalHold

	switch state {
	case model.StateIdle, model.StateAlert, model.StateAttack:
		mover.SetSpeed(0)
		mover.Stop()

	case model.StatePatrol:
		mover.SetSpeed(ai.agent.Profile.WalkSpeed)
		if target, ok := ai.patrol.Current(); ok {
			ai.moveTo(target)
		}

	case model.StateChase:
		mover.SetSpeed(ai.agent.Profile.RunSpeed)
		ai.chaseGoal = ai.agent.LastKnownTargetPosition
		ai.repathIn = repathInterval
		ai.moveTo(ai.chaseGoal)

	case model.StateSearch:
		mover.SetSpeed(ai.agent.Profile.WalkSpeed)
		ai.searchRetry = 0
		if !ai.moveTo(ai.agent.LastKnownTargetPosition) {
			ai.pickSearchPoint()
		}
	}
}

// Tick advances the agent by dt simulation seconds. dt <= 0 (paused) is a no-op.
func (ai *AgentAI) Tick(dt float64) {
	if !ai.isRunning.Load() || ai.agent.IsDead() || dt <= 0 {
		return
	}

	ai.now += dt
	ai.agent.StateTimer += dt
	ai.combat.Update(dt)

	if ai.sense(dt) {
		return
	}

	switch ai.agent.State {
	case model.StateIdle:
		ai.thinkIdle(dt)
	case model.StatePatrol:
		ai.thinkPatrol()
	case model.StateAlert:
		ai.thinkAlert(dt)
	case model.StateChase:
		ai.thinkChase(dt)
	case model.StateAttack:
		ai.thinkAttack(dt)
	case model.StateSearch:
		ai.thinkSearch(dt)
	}
}

// sense runs perception. Returns true if it caused a transition this tick.
func (ai *AgentAI) sense(dt float64) bool {
	target := ai.deps.Target
	if target == nil || !target.IsAlive() {
		ai.sensed = PerceptionResult{}
		if !ai.agent.PlayerDetected {
			return false
		}
		ai.agent.PlayerDetected = false
		if ai.agent.State.IsEngaged() {
			ai.SetState(model.StateSearch)
			return true
		}
		return false
	}

	ai.sensed = ai.perception.Update(ai.agent, target.Position(), dt)
	if ai.sensed.Visible {
		ai.hasLastKnown = true
	}

	switch {
	case ai.sensed.Acquired:
		ai.alert(false)
		return true
	case ai.sensed.Lost && ai.agent.State.IsEngaged():
		ai.SetState(model.StateSearch)
		return true
	}
	return false
}

// alert enters ALERT and notifies listeners.
func (ai *AgentAI) alert(byDamage bool) {
	ai.SetState(model.StateAlert)
	ai.deps.Bus.Publish(event.EnemyAlerted{
		Header:   ai.header(),
		Position: ai.agent.Position,
		ByDamage: byDamage,
	})
}

func (ai *AgentAI) thinkIdle(dt float64) {
	ai.patrol.Update(dt)
	if !ai.patrol.HasPoints() || ai.patrol.Dwelling() {
		return
	}
	if ai.agent.StateTimer > ai.agent.Profile.WaitTime {
		ai.SetState(model.StatePatrol)
	}
}

func (ai *AgentAI) thinkPatrol() {
	target, ok := ai.patrol.Current()
	if !ok {
		ai.SetState(model.StateIdle)
		return
	}

	if ai.patrol.HasReached(ai.agent.Position, arriveDistance) {
		ai.patrol.Arrive()
		ai.SetState(model.StateIdle)
		return
	}

	if !ai.route.active {
		// Unreachable patrol point: skip it instead of walking into a wall.
		if !ai.moveTo(target) {
			ai.patrol.Advance()
			ai.SetState(model.StateIdle)
			return
		}
	}
	ai.route.follow(ai.agent.Position)
}

func (ai *AgentAI) thinkAlert(dt float64) {
	if ai.hasLastKnown {
		ai.turnTowards(ai.agent.LastKnownTargetPosition, dt)
	}
	if ai.agent.StateTimer <= alertDuration {
		return
	}
	if ai.agent.PlayerDetected {
		ai.SetState(model.StateChase)
	} else {
		ai.SetState(model.StateSearch)
	}
}

func (ai *AgentAI) thinkChase(dt float64) {
	goal := ai.agent.LastKnownTargetPosition
	if ai.targetDistance() <= ai.agent.Profile.AttackRange {
		ai.SetState(model.StateAttack)
		return
	}

	ai.repathIn -= dt
	if ai.repathIn <= 0 && goal.Distance(ai.chaseGoal) > repathDistance {
		ai.chaseGoal = goal
		ai.repathIn = repathInterval
		ai.moveTo(goal)
	}
	ai.route.follow(ai.agent.Position)
}

func (ai *AgentAI) thinkAttack(dt float64) {
	target := ai.deps.Target
	dist := ai.targetDistance()
	// Falling back to cover may carry the agent past the exit range; it keeps fighting from there.
	if dist > ai.agent.Profile.AttackRange*attackExitFactor && ai.tactic != tacticalCover {
		ai.SetState(model.StateChase)
		return
	}

	aimAt := ai.agent.LastKnownTargetPosition
	if ai.sensed.Visible && target != nil {
		aimAt = target.Position()
	}
	ai.turnTowards(aimAt, dt)
	ai.tacticalLayer(target)
	ai.combat.Engage(aimAt, ai.sensed.Visible, dist)
}

// tacticalLayer picks what the legs do while fighting: back off to cover when
// hurt, flank when sight is lost, hold position otherwise.
func (ai *AgentAI) tacticalLayer(target Target) {
	switch {
	case ai.tactic == tacticalCover:
		// Committed; stays in cover once there.
	case ShouldSeekCover(ai.agent.Health, ai.agent.Profile.MaxHealth):
		dest := CoverPosition(ai.agent.Position, ai.agent.LastKnownTargetPosition)
		if node := NearestCoverNode(ai.deps.Paths.Graph(), dest, ai.agent.Profile.SearchRadius); node != nil {
			dest = node.Position
		}
		ai.mover().SetSpeed(ai.agent.Profile.RunSpeed)
		if ai.moveTo(dest) {
			ai.tactic = tacticalCover
		}
	case !ai.sensed.Visible && ai.tactic == tacticalHold && target != nil && ai.combat.Profile().FlankingRange > 0:
		dest := ai.combat.FlankPosition(target)
		ai.mover().SetSpeed(ai.agent.Profile.RunSpeed)
		if ai.moveTo(dest) {
			ai.tactic = tacticalFlank
		}
	case ai.sensed.Visible && ai.tactic == tacticalFlank:
		// Sight regained, stop and shoot.
		ai.route.clear()
		ai.mover().Stop()
		ai.tactic = tacticalHold
	}

	if ai.tactic != tacticalHold {
		ai.route.follow(ai.agent.Position)
		if ai.route.done && ai.tactic == tacticalFlank {
			ai.tactic = tacticalHold
		}
	}
}

func (ai *AgentAI) thinkSearch(dt float64) {
	if ai.agent.StateTimer > ai.agent.Profile.SearchTime {
		if ai.patrol.HasPoints() {
			ai.SetState(model.StatePatrol)
		} else {
			ai.SetState(model.StateIdle)
		}
		return
	}

	if ai.searchRetry > 0 {
		ai.searchRetry -= dt
		if ai.searchRetry > 0 {
			return
		}
		ai.pickSearchPoint()
		return
	}

	ai.route.follow(ai.agent.Position)
	if ai.route.done {
		ai.pickSearchPoint()
	}
}

// pickSearchPoint sends the agent to a random navigable point around the
// last known position. On failure the agent holds position and retries later.
func (ai *AgentAI) pickSearchPoint() {
	if ai.deps.Query != nil {
		point, ok := ai.deps.Query.SampleNavigablePoint(ai.agent.LastKnownTargetPosition, ai.agent.Profile.SearchRadius)
		if ok && ai.moveTo(point) {
			return
		}
	}
	ai.route.clear()
	ai.mover().Stop()
	ai.searchRetry = searchRetryDelay
}

// TakeDamage applies incoming damage. Lethal damage kills the agent for good;
// otherwise an IDLE or PATROL agent becomes ALERT even without line of sight.
func (ai *AgentAI) TakeDamage(amount float64) {
	if ai.agent.IsDead() || amount <= 0 {
		return
	}

	ai.agent.Health = max(0, ai.agent.Health-amount)
	ai.deps.Bus.Publish(event.EnemyDamaged{
		Header:    ai.header(),
		Amount:    amount,
		Remaining: ai.agent.Health,
	})

	if ai.agent.Health <= 0 {
		ai.die()
		return
	}

	if s := ai.agent.State; s == model.StateIdle || s == model.StatePatrol {
		if !ai.hasLastKnown {
			ai.agent.LastKnownTargetPosition = ai.agent.Position
		}
		ai.alert(true)
	}
}

// die enters the terminal DEAD state.
func (ai *AgentAI) die() {
	from := ai.agent.State
	ai.agent.State = model.StateDead
	ai.agent.StateTimer = 0
	ai.agent.PlayerDetected = false
	ai.combat.Cancel()
	ai.route.clear()

	mover := ai.mover()
	mover.Stop()
	mover.Disable()

	h := ai.header()
	ai.deps.Bus.Publish(event.EnemyStateChanged{Header: h, From: from, To: model.StateDead})
	ai.deps.Bus.Publish(event.EnemyDied{
		Header:      h,
		Position:    ai.agent.Position,
		RemoveAfter: ai.deps.RemovalDelay,
	})

	slog.Info("agent died",
		"agent", ai.agent.Name,
		"agentID", ai.agent.ID,
		"removeAfter", ai.deps.RemovalDelay)
}

// targetDistance returns distance to the live target, or to the last known
// position when there is none.
func (ai *AgentAI) targetDistance() float64 {
	if ai.deps.Target != nil && ai.deps.Target.IsAlive() {
		return ai.sensed.Distance
	}
	return ai.agent.Position.Distance(ai.agent.LastKnownTargetPosition)
}

// turnTowards rotates the agent toward pos at RotationSpeed.
func (ai *AgentAI) turnTowards(pos model.Vec3, dt float64) {
	dir := pos.Sub(ai.agent.Position).Flat()
	if dir.LengthSquared() < 1e-9 {
		return
	}
	maxStep := ai.agent.Profile.RotationSpeed * math.Pi / 180 * dt
	ai.agent.Yaw = model.RotateTowards(ai.agent.Yaw, model.YawOf(dir), maxStep)
}

// moveTo plans a route to goal and starts following it.
// Returns false (and holds position) when the goal is unreachable.
func (ai *AgentAI) moveTo(goal model.Vec3) bool {
	waypoints := []model.Vec3{goal}
	if ai.deps.Paths != nil {
		var ok bool
		waypoints, ok = ai.deps.Paths.Route(ai.agent.Position, goal)
		if !ok {
			ai.route.clear()
			ai.mover().Stop()
			if IsDebugEnabled() {
				slog.Debug("agent goal unreachable",
					"agent", ai.agent.Name,
					"agentID", ai.agent.ID,
					"goal", goal)
			}
			return false
		}
	}
	ai.route.set(waypoints)
	ai.route.follow(ai.agent.Position)
	return true
}

func (ai *AgentAI) mover() MovementDriver {
	if ai.deps.Mover == nil {
		return noopMover{}
	}
	return ai.deps.Mover
}

func (ai *AgentAI) clock() float64 {
	if ai.deps.Clock != nil {
		return ai.deps.Clock()
	}
	return ai.now
}

func (ai *AgentAI) header() event.Header {
	return event.Header{AgentID: ai.agent.ID, SimTime: ai.clock()}
}

// navigator feeds route waypoints to the movement driver one at a time.
type navigator struct {
	mover     MovementDriver
	waypoints []model.Vec3
	index     int
	active    bool
	done      bool // last route was completed
	issued    int  // waypoint index last sent to the driver
}

func (n *navigator) set(waypoints []model.Vec3) {
	n.waypoints = waypoints
	n.index = 0
	n.active = len(waypoints) > 0
	n.done = !n.active
	n.issued = -1
}

func (n *navigator) clear() {
	n.waypoints = nil
	n.index = 0
	n.active = false
	n.done = false
	n.issued = -1
}

// follow skips reached waypoints and issues the next one.
func (n *navigator) follow(pos model.Vec3) {
	if !n.active {
		return
	}
	for n.index < len(n.waypoints) && pos.Flat().Distance(n.waypoints[n.index].Flat()) < arriveDistance {
		n.index++
	}
	if n.index >= len(n.waypoints) {
		n.active = false
		n.done = true
		if n.mover != nil {
			n.mover.Stop()
		}
		return
	}
	if n.issued != n.index && n.mover != nil {
		n.mover.SetDestination(n.waypoints[n.index])
		n.issued = n.index
	}
}

// noopMover stands in when no movement driver is configured.
type noopMover struct{}

func (noopMover) SetDestination(model.Vec3) {}
func (noopMover) SetSpeed(float64)          {}
func (noopMover) SetUpdateRotation(bool)    {}
func (noopMover) Stop()                     {}
func (noopMover) Disable()                  {}
func (noopMover) Velocity() model.Vec3      { return model.Vec3{} }
func (noopMover) IsGrounded() bool          { return true }
