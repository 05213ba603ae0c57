package ai

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/hostile/internal/event"
	"github.com/udisondev/hostile/internal/model"
)

// Combat constants.
const (
	interBurstPause = 0.5  // seconds between bursts
	reloadFraction  = 0.3  // reload early below this share of the magazine when not firing
	muzzleHeight    = 1.5  // shots start this far above the agent base
	torsoHeight     = 1.0  // shots aim this far above the target base
	spreadCone      = 0.5  // aim perturbation radius at accuracy 0
	timeEpsilon     = 1e-9 // float slack for timer comparisons
)

// CombatState is the mutable weapon state of one agent.
type CombatState struct {
	CurrentAmmo     int
	IsReloading     bool
	IsFiring        bool
	BurstShotsFired int
	LastFireTime    float64
}

// burstPhase is the resumable phase of the burst tactic.
type burstPhase uint8

const (
	burstReady burstPhase = iota
	burstFiring
	burstPause
)

// FireResult describes one Fire call.
type FireResult struct {
	Fired     bool
	Direction model.Vec3
	Hit       model.RaycastHit
}

// Combat is the weapon scheduler of one agent: cadence, bursts, reload and
// shot resolution. All timers run on simulation time advanced by Update.
type Combat struct {
	agent   *model.Agent
	profile model.CombatProfile
	state   CombatState

	query  WorldQuery
	damage DamageApplier
	bus    *event.Bus
	rng    *rand.Rand
	clock  func() float64

	now        float64
	reloadLeft float64
	phase      burstPhase
	pauseLeft  float64

	shots int
	hits  int
}

// NewCombat creates a combat controller with a full magazine.
// rng may be nil (global source), clock may be nil (local time is used for events).
func NewCombat(agent *model.Agent, profile model.CombatProfile, query WorldQuery, damage DamageApplier, bus *event.Bus, rng *rand.Rand, clock func() float64) *Combat {
	c := &Combat{
		agent:   agent,
		profile: profile,
		query:   query,
		damage:  damage,
		bus:     bus,
		rng:     rng,
		clock:   clock,
	}
	c.state.CurrentAmmo = max(0, profile.MagazineSize)
	// First shot is never throttled by cadence.
	c.state.LastFireTime = -profile.FireInterval() - 1
	return c
}

// Profile returns the weapon profile.
func (c *Combat) Profile() model.CombatProfile {
	return c.profile
}

// State returns a copy of the weapon state.
func (c *Combat) State() CombatState {
	return c.state
}

// Now returns local simulation time of the weapon.
func (c *Combat) Now() float64 {
	return c.now
}

// Stats returns fired shots and player hits.
func (c *Combat) Stats() (shots, hits int) {
	return c.shots, c.hits
}

// Update advances weapon timers: automatic reload when NeedsReload holds,
// reload countdown and inter-burst pause.
func (c *Combat) Update(dt float64) {
	if dt <= 0 || !c.profile.IsArmed() {
		return
	}
	c.now += dt

	// The tick that starts a reload counts toward it.
	if !c.state.IsReloading && c.NeedsReload() {
		c.StartReload()
	}

	if c.state.IsReloading {
		c.reloadLeft -= dt
		if c.reloadLeft <= timeEpsilon {
			c.finishReload()
		}
	}

	if c.phase == burstPause {
		c.pauseLeft -= dt
		if c.pauseLeft <= timeEpsilon {
			c.phase = burstReady
			c.pauseLeft = 0
		}
	}
}

// CanFire reports whether a shot is allowed now: not reloading, ammo left and
// the fire interval elapsed since the last shot.
func (c *Combat) CanFire() bool {
	if !c.profile.IsArmed() || c.state.IsReloading || c.state.CurrentAmmo <= 0 {
		return false
	}
	return c.now-c.state.LastFireTime >= c.profile.FireInterval()-timeEpsilon
}

// NeedsReload reports an empty magazine, or a low one while not firing.
func (c *Combat) NeedsReload() bool {
	if !c.profile.IsArmed() {
		return false
	}
	if c.state.CurrentAmmo == 0 {
		return true
	}
	low := float64(c.state.CurrentAmmo) < reloadFraction*float64(c.profile.MagazineSize)
	return low && !c.state.IsFiring
}

// StartReload begins a reload. Returns false if already reloading or full.
func (c *Combat) StartReload() bool {
	if !c.profile.IsArmed() || c.state.IsReloading || c.state.CurrentAmmo >= c.profile.MagazineSize {
		return false
	}
	c.abortBurst()
	c.state.IsReloading = true
	c.reloadLeft = c.profile.ReloadTime
	if c.reloadLeft <= 0 {
		c.finishReload()
	}
	return true
}

func (c *Combat) finishReload() {
	c.state.CurrentAmmo = c.profile.MagazineSize
	c.state.IsReloading = false
	c.reloadLeft = 0
}

// Fire shoots at targetPos if CanFire holds.
func (c *Combat) Fire(targetPos model.Vec3) FireResult {
	if !c.CanFire() {
		return FireResult{}
	}
	return c.shoot(targetPos)
}

// shoot resolves one shot without cadence checks (bursts use their own delay).
func (c *Combat) shoot(targetPos model.Vec3) FireResult {
	c.state.CurrentAmmo--
	c.state.LastFireTime = c.now
	c.shots++

	origin := c.agent.Position.Add(model.V3(0, muzzleHeight, 0))
	aim := targetPos.Add(model.V3(0, torsoHeight, 0))
	dir := aim.Sub(origin).Normalized()
	if dir == (model.Vec3{}) {
		dir = c.agent.Forward()
	}
	if c.randFloat() > c.profile.Accuracy {
		dir = c.perturb(dir)
	}

	res := FireResult{Fired: true, Direction: dir}
	if c.query != nil {
		res.Hit = c.query.Raycast(origin, dir, c.profile.Range, model.LayerObstacle|model.LayerPlayer)
	}

	if res.Hit.Hit && res.Hit.Layer == model.LayerPlayer {
		c.hits++
		if c.damage != nil {
			c.damage.ApplyDamage(res.Hit.EntityID, c.profile.Damage, model.DamageBullet)
		}
		c.bus.Publish(event.PlayerHit{
			Header:   c.header(),
			PlayerID: res.Hit.EntityID,
			Amount:   c.profile.Damage,
			Point:    res.Hit.Point,
		})
	}

	c.bus.Publish(event.EnemyWeaponFired{
		Header:    c.header(),
		Origin:    origin,
		Direction: dir,
		AmmoLeft:  c.state.CurrentAmmo,
	})

	if IsDebugEnabled() {
		slog.Debug("agent fired",
			"agent", c.agent.Name,
			"agentID", c.agent.ID,
			"ammo", c.state.CurrentAmmo,
			"hit", res.Hit.Hit,
			"layer", res.Hit.Layer)
	}
	return res
}

// Engage runs the configured tactic for one tick.
// visible reports LOS to the target this tick, distance is agent-to-target.
func (c *Combat) Engage(targetPos model.Vec3, visible bool, distance float64) {
	if !c.profile.IsArmed() || c.state.IsReloading {
		return
	}

	switch c.profile.Tactic {
	case model.TacticBurst:
		c.engageBurst(targetPos, visible)
	case model.TacticSuppressive:
		if visible || ShouldSuppressFire(distance, c.profile.SuppressionRange, c.profile.Range) {
			c.Fire(targetPos)
		}
	default:
		if visible {
			c.Fire(targetPos)
		}
	}
}

// engageBurst drives the burst phases: ready -> firing (BurstCount shots
// BurstDelay apart) -> pause (interBurstPause) -> ready.
func (c *Combat) engageBurst(targetPos model.Vec3, visible bool) {
	switch c.phase {
	case burstReady:
		if !visible || !c.CanFire() {
			return
		}
		c.phase = burstFiring
		c.state.IsFiring = true
		c.state.BurstShotsFired = 0
		c.burstShot(targetPos)

	case burstFiring:
		if c.state.CurrentAmmo <= 0 {
			c.endBurst()
			return
		}
		if c.now-c.state.LastFireTime >= c.profile.BurstDelay-timeEpsilon {
			c.burstShot(targetPos)
		}

	case burstPause:
		// Update counts the pause down.
	}
}

func (c *Combat) burstShot(targetPos model.Vec3) {
	c.shoot(targetPos)
	c.state.BurstShotsFired++
	if c.state.BurstShotsFired >= max(1, c.profile.BurstCount) || c.state.CurrentAmmo <= 0 {
		c.endBurst()
	}
}

func (c *Combat) endBurst() {
	c.phase = burstPause
	c.pauseLeft = interBurstPause
	c.state.IsFiring = false
	c.state.BurstShotsFired = 0
}

// abortBurst ends a burst in progress; the inter-burst pause still applies.
func (c *Combat) abortBurst() {
	if c.phase == burstFiring {
		c.endBurst()
	}
}

// Cancel discards any in-progress tactical action (state transition).
func (c *Combat) Cancel() {
	c.abortBurst()
	c.state.IsFiring = false
}

// InBurst reports whether a burst is in progress.
func (c *Combat) InBurst() bool {
	return c.phase == burstFiring
}

// perturb offsets dir by a random point in a sphere scaled by (1 - accuracy).
func (c *Combat) perturb(dir model.Vec3) model.Vec3 {
	spread := (1 - c.profile.Accuracy) * spreadCone
	var off model.Vec3
	for {
		off = model.V3(c.randFloat()*2-1, c.randFloat()*2-1, c.randFloat()*2-1)
		if off.LengthSquared() <= 1 {
			break
		}
	}
	out := dir.Add(off.Scale(spread)).Normalized()
	if out == (model.Vec3{}) {
		return dir
	}
	return out
}

func (c *Combat) randFloat() float64 {
	if c.rng != nil {
		return c.rng.Float64()
	}
	return rand.Float64()
}

func (c *Combat) header() event.Header {
	t := c.now
	if c.clock != nil {
		t = c.clock()
	}
	return event.Header{AgentID: c.agent.ID, SimTime: t}
}
