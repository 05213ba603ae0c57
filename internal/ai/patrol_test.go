package ai

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/hostile/internal/model"
)

func squarePoints() []model.Vec3 {
	return []model.Vec3{
		model.V3(0, 0, 0),
		model.V3(10, 0, 0),
		model.V3(10, 0, 10),
		model.V3(0, 0, 10),
	}
}

func visit(r *PatrolRoute, n int) []int {
	out := []int{r.Index()}
	for range n {
		r.Advance()
		out = append(out, r.Index())
	}
	return out
}

func TestPatrolRoute_Sequential(t *testing.T) {
	r := NewPatrolRoute(squarePoints(), PatrolSequential, 0, nil)
	assert.Equal(t, []int{0, 1, 2, 3, 0, 1}, visit(r, 5))
}

func TestPatrolRoute_PingPong(t *testing.T) {
	r := NewPatrolRoute(squarePoints(), PatrolPingPong, 0, nil)
	assert.Equal(t, []int{0, 1, 2, 3, 2, 1, 0, 1}, visit(r, 7))
}

func TestPatrolRoute_PingPongTwoPoints(t *testing.T) {
	r := NewPatrolRoute(squarePoints()[:2], PatrolPingPong, 0, nil)
	assert.Equal(t, []int{0, 1, 0, 1, 0}, visit(r, 4))
}

func TestPatrolRoute_RandomNeverRepeats(t *testing.T) {
	r := NewPatrolRoute(squarePoints(), PatrolRandom, 0, rand.New(rand.NewPCG(1, 2)))

	seen := make(map[int]int)
	prev := r.Index()
	for range 400 {
		r.Advance()
		require.NotEqual(t, prev, r.Index())
		require.GreaterOrEqual(t, r.Index(), 0)
		require.Less(t, r.Index(), 4)
		seen[r.Index()]++
		prev = r.Index()
	}
	assert.Len(t, seen, 4, "every point is eventually visited")
}

func TestPatrolRoute_SinglePointIsInert(t *testing.T) {
	for _, mode := range []PatrolMode{PatrolSequential, PatrolPingPong, PatrolRandom} {
		r := NewPatrolRoute(squarePoints()[:1], mode, 0, nil)
		r.Advance()
		r.Advance()
		assert.Equal(t, 0, r.Index(), mode.String())
	}
}

func TestPatrolRoute_Empty(t *testing.T) {
	r := NewPatrolRoute(nil, PatrolSequential, 0, nil)
	assert.False(t, r.HasPoints())
	_, ok := r.Current()
	assert.False(t, ok)
	assert.False(t, r.HasReached(model.Vec3{}, 1))

	var nilRoute *PatrolRoute
	assert.False(t, nilRoute.HasPoints())
	assert.False(t, nilRoute.Dwelling())
	nilRoute.Update(1)
}

func TestPatrolRoute_HasReached(t *testing.T) {
	r := NewPatrolRoute(squarePoints(), PatrolSequential, 0, nil)

	assert.True(t, r.HasReached(model.V3(0.4, 5, 0), 0.5), "height is ignored")
	assert.False(t, r.HasReached(model.V3(0.6, 0, 0), 0.5))
	assert.True(t, r.HasReached(model.V3(0.9, 0, 0), 0), "default threshold is 1.0")
	assert.False(t, r.HasReached(model.V3(1.0, 0, 0), 0))
}

func TestPatrolRoute_Dwell(t *testing.T) {
	r := NewPatrolRoute(squarePoints(), PatrolSequential, 1.0, nil)

	r.Arrive()
	assert.True(t, r.Dwelling())
	assert.Equal(t, 0, r.Index())

	for range 9 {
		r.Update(0.1)
	}
	assert.True(t, r.Dwelling())
	assert.Equal(t, 0, r.Index())

	r.Update(0.1)
	assert.False(t, r.Dwelling())
	assert.Equal(t, 1, r.Index())
}

func TestPatrolRoute_ArriveWithoutDwellAdvances(t *testing.T) {
	r := NewPatrolRoute(squarePoints(), PatrolSequential, 0, nil)
	r.Arrive()
	assert.False(t, r.Dwelling())
	assert.Equal(t, 1, r.Index())
}

func TestGenerateCircle(t *testing.T) {
	center := model.V3(5, 1, 5)
	points := GenerateCircle(center, 4, 8)
	require.Len(t, points, 8)

	for _, p := range points {
		assert.InDelta(t, 4, p.Distance(center), 1e-9)
		assert.InDelta(t, 1, p.Y, 1e-12)
	}
	assert.InDelta(t, 9, points[0].X, 1e-9)
	assert.InDelta(t, 2*4*math.Sin(math.Pi/8), points[0].Distance(points[1]), 1e-9)

	assert.Nil(t, GenerateCircle(center, 4, 0))
}

func TestParsePatrolMode(t *testing.T) {
	tests := []struct {
		in   string
		want PatrolMode
		err  bool
	}{
		{"", PatrolSequential, false},
		{"loop", PatrolSequential, false},
		{"sequential", PatrolSequential, false},
		{"pingpong", PatrolPingPong, false},
		{"ping_pong", PatrolPingPong, false},
		{"random", PatrolRandom, false},
		{"zigzag", PatrolSequential, true},
	}
	for _, tt := range tests {
		got, err := ParsePatrolMode(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
