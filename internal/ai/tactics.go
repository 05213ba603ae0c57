package ai

import (
	"github.com/udisondev/hostile/internal/game/nav"
	"github.com/udisondev/hostile/internal/model"
)

// Tactical query constants.
const (
	coverDistance     = 5.0 // CoverPosition backs off this far from the target
	seekCoverFraction = 0.3 // seek cover below this share of max health
)

// FlankPosition returns a point beside the target, flankingRange away along
// the axis perpendicular to the target's forward direction.
func FlankPosition(targetPos, targetForward model.Vec3, flankingRange float64, right bool) model.Vec3 {
	side := model.Up.Cross(targetForward.Flat()).Normalized()
	if side == (model.Vec3{}) {
		side = model.V3(1, 0, 0)
	}
	if !right {
		side = side.Scale(-1)
	}
	return targetPos.Add(side.Scale(flankingRange))
}

// CoverPosition returns a point coverDistance further away from the target.
func CoverPosition(agentPos, targetPos model.Vec3) model.Vec3 {
	away := agentPos.Sub(targetPos).Flat().Normalized()
	return agentPos.Add(away.Scale(coverDistance))
}

// ShouldSeekCover reports whether health dropped below 30% of max.
func ShouldSeekCover(health, maxHealth float64) bool {
	return health < seekCoverFraction*maxHealth
}

// ShouldSuppressFire reports whether the target sits between suppression
// range and weapon range (too far to push, close enough to pin down).
func ShouldSuppressFire(distance, suppressionRange, weaponRange float64) bool {
	return distance > suppressionRange && distance < weaponRange
}

// NearestCoverNode returns the cover-tagged node closest to pos within radius,
// or nil when the graph has none.
func NearestCoverNode(g *nav.Graph, pos model.Vec3, radius float64) *nav.Node {
	var best *nav.Node
	bestDist := radius * radius
	for _, n := range g.NodesOfType(nav.NodeCover) {
		if d := n.Position.DistanceSquared(pos); d <= bestDist {
			best = n
			bestDist = d
		}
	}
	return best
}

// FlankPosition picks a random side around the target.
func (c *Combat) FlankPosition(target Target) model.Vec3 {
	return FlankPosition(target.Position(), target.Forward(), c.profile.FlankingRange, c.randFloat() < 0.5)
}
