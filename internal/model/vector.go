package model

import "math"

// Vec3 представляет точку или направление в мире (Y — вверх).
// Value type, передаётся по значению.
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Up is the world up axis.
var Up = Vec3{Y: 1}

// V3 создаёт Vec3 с указанными координатами.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * k.
func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Dot returns the dot product.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// LengthSquared возвращает квадрат длины (без sqrt).
func (v Vec3) LengthSquared() float64 {
	return v.Dot(v)
}

// Length returns the Euclidean length.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// Normalized returns the unit vector in the direction of v.
// Zero vector stays zero.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l < 1e-9 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Flat drops the vertical component.
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// Distance returns the Euclidean distance to o.
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt для производительности).
func (v Vec3) DistanceSquared(o Vec3) float64 {
	return v.Sub(o).LengthSquared()
}

// AngleTo returns the unsigned angle between v and o in degrees.
// Returns 0 if either vector is zero.
func (v Vec3) AngleTo(o Vec3) float64 {
	denom := v.Length() * o.Length()
	if denom < 1e-9 {
		return 0
	}
	c := v.Dot(o) / denom
	c = max(-1, min(1, c))
	return math.Acos(c) * 180 / math.Pi
}

// ForwardFromYaw returns the horizontal unit vector for a yaw angle (radians about Y).
// Yaw 0 faces +Z.
func ForwardFromYaw(yaw float64) Vec3 {
	return Vec3{X: math.Sin(yaw), Z: math.Cos(yaw)}
}

// YawOf returns the yaw (radians) of the horizontal projection of dir.
func YawOf(dir Vec3) float64 {
	return math.Atan2(dir.X, dir.Z)
}

// NormalizeAngle wraps an angle to [-pi, pi]. Non-finite input yields NaN.
func NormalizeAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}

// RotateTowards turns yaw toward target by at most maxStep radians.
func RotateTowards(yaw, target, maxStep float64) float64 {
	diff := NormalizeAngle(target - yaw)
	if math.Abs(diff) <= maxStep {
		return NormalizeAngle(target)
	}
	if diff > 0 {
		return NormalizeAngle(yaw + maxStep)
	}
	return NormalizeAngle(yaw - maxStep)
}
