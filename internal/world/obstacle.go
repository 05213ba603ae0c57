package world

import (
	"math"

	"github.com/udisondev/hostile/internal/model"
)

// Box is an axis-aligned solid obstacle.
type Box struct {
	Min model.Vec3
	Max model.Vec3
}

// NewBox creates a box from center and full size.
func NewBox(center, size model.Vec3) Box {
	half := size.Scale(0.5)
	return Box{Min: center.Sub(half), Max: center.Add(half)}
}

// Contains reports whether p lies inside the box (inclusive).
func (b Box) Contains(p model.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersect returns the distance along dir (unit vector) at which the ray
// enters the box, using the slab method. A ray starting inside hits at 0.
func (b Box) Intersect(origin, dir model.Vec3, maxDist float64) (float64, bool) {
	tMin, tMax := 0.0, maxDist
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := range 3 {
		if math.Abs(d[axis]) < 1e-12 {
			if o[axis] < lo[axis] || o[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		inv := 1 / d[axis]
		t1 := (lo[axis] - o[axis]) * inv
		t2 := (hi[axis] - o[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = max(tMin, t1)
		tMax = min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// intersectSphere returns the entry distance of a ray into a sphere.
func intersectSphere(origin, dir, center model.Vec3, radius, maxDist float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.LengthSquared() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 || t > maxDist {
		return 0, false
	}
	if c <= 0 {
		t = 0
	}
	return t, true
}
