package ai

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/udisondev/hostile/internal/model"
)

// PatrolMode is the traversal policy of a patrol route.
type PatrolMode uint8

const (
	PatrolSequential PatrolMode = iota
	PatrolPingPong
	PatrolRandom
)

// String returns human-readable patrol mode
func (m PatrolMode) String() string {
	switch m {
	case PatrolSequential:
		return "sequential"
	case PatrolPingPong:
		return "pingpong"
	case PatrolRandom:
		return "random"
	default:
		return "unknown"
	}
}

// ParsePatrolMode converts a config value into a PatrolMode.
func ParsePatrolMode(s string) (PatrolMode, error) {
	switch s {
	case "", "sequential", "loop":
		return PatrolSequential, nil
	case "pingpong", "ping_pong":
		return PatrolPingPong, nil
	case "random":
		return PatrolRandom, nil
	default:
		return PatrolSequential, fmt.Errorf("unknown patrol mode %q", s)
	}
}

// defaultReachThreshold is used by HasReached callers without their own threshold.
const defaultReachThreshold = 1.0

// PatrolRoute holds patrol points of one agent and walks them by mode.
// Not safe for concurrent use; owned by the agent's controller.
type PatrolRoute struct {
	points    []model.Vec3
	mode      PatrolMode
	dwellTime float64

	index    int
	forward  bool // PingPong direction
	dwelling bool
	dwellFor float64

	intN func(n int) int
}

// NewPatrolRoute creates a route starting at index 0 moving forward.
// rng may be nil (global source).
func NewPatrolRoute(points []model.Vec3, mode PatrolMode, dwellTime float64, rng *rand.Rand) *PatrolRoute {
	r := &PatrolRoute{
		points:    append([]model.Vec3(nil), points...),
		mode:      mode,
		dwellTime: max(0, dwellTime),
		forward:   true,
		intN:      rand.IntN,
	}
	if rng != nil {
		r.intN = rng.IntN
	}
	return r
}

// GenerateCircle places count points evenly on a horizontal circle around center.
func GenerateCircle(center model.Vec3, radius float64, count int) []model.Vec3 {
	if count <= 0 {
		return nil
	}
	points := make([]model.Vec3, count)
	step := 2 * math.Pi / float64(count)
	for i := range count {
		a := step * float64(i)
		points[i] = center.Add(model.V3(math.Cos(a)*radius, 0, math.Sin(a)*radius))
	}
	return points
}

// Len returns number of patrol points.
func (r *PatrolRoute) Len() int {
	if r == nil {
		return 0
	}
	return len(r.points)
}

// HasPoints reports whether the route can be patrolled.
func (r *PatrolRoute) HasPoints() bool {
	return r.Len() > 0
}

// Mode returns traversal mode.
func (r *PatrolRoute) Mode() PatrolMode {
	return r.mode
}

// Index returns the current patrol point index.
func (r *PatrolRoute) Index() int {
	return r.index
}

// Current returns the current patrol target.
func (r *PatrolRoute) Current() (model.Vec3, bool) {
	if !r.HasPoints() {
		return model.Vec3{}, false
	}
	return r.points[r.index], true
}

// Advance selects the next patrol index according to the mode.
// Routes with a single point never move.
func (r *PatrolRoute) Advance() {
	n := r.Len()
	if n < 2 {
		return
	}

	switch r.mode {
	case PatrolSequential:
		r.index = (r.index + 1) % n

	case PatrolPingPong:
		if r.forward {
			if r.index >= n-1 {
				r.forward = false
				r.index = n - 2
			} else {
				r.index++
			}
		} else {
			if r.index <= 0 {
				r.forward = true
				r.index = 1
			} else {
				r.index--
			}
		}

	case PatrolRandom:
		// Uniform over every index except the current one.
		next := r.intN(n - 1)
		if next >= r.index {
			next++
		}
		r.index = next
	}
}

// HasReached reports whether pos is within threshold of the current target.
// threshold <= 0 uses the default of 1.0.
func (r *PatrolRoute) HasReached(pos model.Vec3, threshold float64) bool {
	target, ok := r.Current()
	if !ok {
		return false
	}
	if threshold <= 0 {
		threshold = defaultReachThreshold
	}
	return pos.Flat().Distance(target.Flat()) < threshold
}

// Arrive marks the current point as reached. Without dwell time the route
// advances immediately; otherwise it waits for Update to run out the dwell.
func (r *PatrolRoute) Arrive() {
	if r.dwellTime <= 0 {
		r.Advance()
		return
	}
	r.dwelling = true
	r.dwellFor = 0
}

// Update advances the dwell timer and moves on once it expires.
func (r *PatrolRoute) Update(dt float64) {
	if r == nil || !r.dwelling {
		return
	}
	r.dwellFor += dt
	if r.dwellFor >= r.dwellTime-timeEpsilon {
		r.dwelling = false
		r.dwellFor = 0
		r.Advance()
	}
}

// Dwelling reports whether the route waits at a reached point.
func (r *PatrolRoute) Dwelling() bool {
	return r != nil && r.dwelling
}
