package testutil

import (
	"math"
	"sync"

	"github.com/udisondev/hostile/internal/model"
)

// Wall — вертикальная стена-препятствие в плоскости XZ для FakeWorld.
// Луч блокируется, если пересекает отрезок From→To (высота не учитывается).
type Wall struct {
	From, To model.Vec3
}

// FakeWorld — минимальная реализация ai.WorldQuery для unit тестов.
// Игрок моделируется вертикальной окружностью радиуса PlayerRadius в точке Player.
type FakeWorld struct {
	mu sync.Mutex

	Walls        []Wall
	Player       model.Vec3
	PlayerID     uint32
	PlayerRadius float64
	HasPlayer    bool

	// Navigable — если false, SampleNavigablePoint всегда неудачен.
	Navigable bool
	// Samples — точки, которые SampleNavigablePoint отдаёт по кругу.
	Samples []model.Vec3
	sampleN int

	rays int
}

// NewFakeWorld создаёт пустой мир без стен, где любая точка проходима.
func NewFakeWorld() *FakeWorld {
	return &FakeWorld{PlayerRadius: 0.5, Navigable: true}
}

// SetPlayer размещает игрока.
func (w *FakeWorld) SetPlayer(id uint32, pos model.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.PlayerID = id
	w.Player = pos
	w.HasPlayer = true
}

// AddWall добавляет стену.
func (w *FakeWorld) AddWall(from, to model.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Walls = append(w.Walls, Wall{From: from, To: to})
}

// ClearWalls убирает все стены.
func (w *FakeWorld) ClearWalls() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Walls = nil
}

// Rays возвращает количество выполненных Raycast.
func (w *FakeWorld) Rays() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rays
}

// Raycast проверяет стены и игрока в плоскости XZ.
func (w *FakeWorld) Raycast(origin, dir model.Vec3, maxDist float64, mask model.Layer) model.RaycastHit {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rays++

	best := model.RaycastHit{Distance: maxDist}
	flatDir := dir.Flat()
	flatLen := flatDir.Length()
	if flatLen < 1e-9 {
		return model.RaycastHit{}
	}
	// Дистанция по XZ → по лучу.
	scale := 1 / flatLen
	o := origin.Flat()
	d := flatDir.Scale(scale)

	if mask.Has(model.LayerObstacle) {
		for _, wall := range w.Walls {
			t, ok := segmentHit(o, d, wall.From.Flat(), wall.To.Flat())
			if ok && t*scale <= best.Distance {
				best = model.RaycastHit{Hit: true, Distance: t * scale, Layer: model.LayerObstacle}
			}
		}
	}

	if mask.Has(model.LayerPlayer) && w.HasPlayer {
		if t, ok := circleHit(o, d, w.Player.Flat(), w.PlayerRadius); ok && t*scale <= best.Distance {
			best = model.RaycastHit{Hit: true, Distance: t * scale, Layer: model.LayerPlayer, EntityID: w.PlayerID}
		}
	}

	if !best.Hit {
		return model.RaycastHit{}
	}
	best.Point = origin.Add(dir.Scale(best.Distance))
	return best
}

// SampleNavigablePoint отдаёт Samples по кругу или center, если Samples пуст.
func (w *FakeWorld) SampleNavigablePoint(center model.Vec3, radius float64) (model.Vec3, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.Navigable {
		return model.Vec3{}, false
	}
	if len(w.Samples) == 0 {
		return center, true
	}
	p := w.Samples[w.sampleN%len(w.Samples)]
	w.sampleN++
	return p, true
}

// segmentHit пересекает луч o+t*d (d единичный, y=0) с отрезком a→b в XZ.
func segmentHit(o, d, a, b model.Vec3) (float64, bool) {
	e := b.Sub(a)
	den := d.X*e.Z - d.Z*e.X
	if math.Abs(den) < 1e-12 {
		return 0, false
	}
	ao := a.Sub(o)
	t := (ao.X*e.Z - ao.Z*e.X) / den
	u := (ao.X*d.Z - ao.Z*d.X) / den
	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// circleHit пересекает луч с окружностью центра c радиуса r в XZ.
func circleHit(o, d, c model.Vec3, r float64) (float64, bool) {
	oc := o.Sub(c)
	b := oc.Dot(d)
	disc := b*b - (oc.LengthSquared() - r*r)
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
