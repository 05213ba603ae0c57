package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Arithmetic(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, -1, 0.5)

	assert.Equal(t, V3(5, 1, 3.5), a.Add(b))
	assert.Equal(t, V3(-3, 3, 2.5), a.Sub(b))
	assert.Equal(t, V3(2, 4, 6), a.Scale(2))
	assert.InDelta(t, 3.5, a.Dot(b), 1e-9)
}

func TestVec3Distance(t *testing.T) {
	a := V3(0, 0, 0)
	b := V3(3, 0, 4)

	assert.InDelta(t, 5.0, a.Distance(b), 1e-9)
	assert.InDelta(t, 25.0, a.DistanceSquared(b), 1e-9)
}

func TestVec3Normalized(t *testing.T) {
	n := V3(0, 0, 10).Normalized()
	assert.InDelta(t, 1.0, n.Length(), 1e-9)
	assert.InDelta(t, 1.0, n.Z, 1e-9)

	assert.Equal(t, Vec3{}, Vec3{}.Normalized(), "zero vector stays zero")
}

func TestVec3AngleTo(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want float64
	}{
		{"same", V3(0, 0, 1), V3(0, 0, 5), 0},
		{"right angle", V3(0, 0, 1), V3(1, 0, 0), 90},
		{"opposite", V3(0, 0, 1), V3(0, 0, -1), 180},
		{"45 degrees", V3(0, 0, 1), V3(1, 0, 1), 45},
		{"zero vector", Vec3{}, V3(1, 0, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.a.AngleTo(tt.b), 1e-6)
		})
	}
}

func TestForwardFromYaw(t *testing.T) {
	f := ForwardFromYaw(0)
	assert.InDelta(t, 0.0, f.X, 1e-9)
	assert.InDelta(t, 1.0, f.Z, 1e-9)

	f = ForwardFromYaw(math.Pi / 2)
	assert.InDelta(t, 1.0, f.X, 1e-9)
	assert.InDelta(t, 0.0, f.Z, 1e-9)

	assert.InDelta(t, math.Pi/2, YawOf(V3(1, 0, 0)), 1e-9)
}

func TestRotateTowards(t *testing.T) {
	// Small step clamps
	got := RotateTowards(0, math.Pi/2, 0.1)
	assert.InDelta(t, 0.1, got, 1e-9)

	// Reaching target snaps
	got = RotateTowards(0, 0.05, 0.1)
	assert.InDelta(t, 0.05, got, 1e-9)

	// Shortest direction across the -pi/pi seam
	got = RotateTowards(math.Pi-0.05, -math.Pi+0.05, 0.2)
	assert.InDelta(t, -math.Pi+0.05, got, 1e-9)
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0.5, NormalizeAngle(0.5+4*math.Pi), 1e-9)
	assert.InDelta(t, -0.5, NormalizeAngle(-0.5-6*math.Pi), 1e-9)
	assert.InDelta(t, math.Pi/2, NormalizeAngle(-3*math.Pi/2), 1e-9)

	// Non-finite input must not hang.
	assert.True(t, math.IsNaN(NormalizeAngle(math.Inf(1))))
	assert.True(t, math.IsNaN(NormalizeAngle(math.Inf(-1))))
	assert.True(t, math.IsNaN(NormalizeAngle(math.NaN())))
}

func TestCrossUpGivesRight(t *testing.T) {
	// up × forward(yaw 0) points to the agent's right (+X)
	right := Up.Cross(V3(0, 0, 1))
	assert.InDelta(t, 1.0, right.X, 1e-9)
	assert.InDelta(t, 0.0, right.Z, 1e-9)
}
