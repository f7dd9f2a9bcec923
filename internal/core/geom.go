// Package core provides fundamental types and utilities for the battle simulation.
// It contains no external dependencies to keep game logic pure and testable.
package core

import "math"

// Epsilon is the tolerance used when comparing world coordinates.
const Epsilon = 1e-9

// Vec is a point on the fixed-height battle plane.
// X runs east-west, Z runs north-south; height is implied by the terrain.
type Vec struct {
	X, Z float64
}

// V creates a new point.
func V(x, z float64) Vec {
	return Vec{X: x, Z: z}
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Z: v.Z - o.Z}
}

// Scale multiplies both components by f.
func (v Vec) Scale(f float64) Vec {
	return Vec{X: v.X * f, Z: v.Z * f}
}

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Z)
}

// Dist returns the Euclidean distance between two points.
func (v Vec) Dist(o Vec) float64 {
	return v.Sub(o).Len()
}

// Manhattan returns |dx| + |dz| between two points.
func (v Vec) Manhattan(o Vec) float64 {
	return math.Abs(v.X-o.X) + math.Abs(v.Z-o.Z)
}

// Normalized returns the unit vector pointing the same way as v.
// The zero vector is returned unchanged.
func (v Vec) Normalized() Vec {
	l := v.Len()
	if l < Epsilon {
		return Vec{}
	}
	return Vec{X: v.X / l, Z: v.Z / l}
}

// Snap rounds the point to the nearest lattice node of the given cell size.
func (v Vec) Snap(cell float64) Vec {
	return Vec{
		X: math.Round(v.X/cell) * cell,
		Z: math.Round(v.Z/cell) * cell,
	}
}

// ApproxEqual reports whether two points coincide within Epsilon.
func (v Vec) ApproxEqual(o Vec) bool {
	return math.Abs(v.X-o.X) < Epsilon && math.Abs(v.Z-o.Z) < Epsilon
}

// Finite reports whether both coordinates are real numbers.
func (v Vec) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Box is an axis-aligned footprint on the battle plane, used for obstacles.
type Box struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// BoxAt creates a box of the given width (X) and depth (Z) centred on c.
func BoxAt(c Vec, width, depth float64) Box {
	return Box{
		MinX: c.X - width/2,
		MinZ: c.Z - depth/2,
		MaxX: c.X + width/2,
		MaxZ: c.Z + depth/2,
	}
}

// Center returns the centre point of the box.
func (b Box) Center() Vec {
	return Vec{X: (b.MinX + b.MaxX) / 2, Z: (b.MinZ + b.MaxZ) / 2}
}

// Radius returns the larger half extent of the box.
func (b Box) Radius() float64 {
	return math.Max(b.MaxX-b.MinX, b.MaxZ-b.MinZ) / 2
}

// Expand grows the box by pad on every side.
func (b Box) Expand(pad float64) Box {
	return Box{MinX: b.MinX - pad, MinZ: b.MinZ - pad, MaxX: b.MaxX + pad, MaxZ: b.MaxZ + pad}
}

// Intersects returns true if the interiors of the two boxes overlap.
// Boxes that only share an edge do not intersect.
func (b Box) Intersects(o Box) bool {
	if b.MinX >= o.MaxX || o.MinX >= b.MaxX {
		return false
	}
	if b.MinZ >= o.MaxZ || o.MinZ >= b.MaxZ {
		return false
	}
	return true
}

// Contains returns true if p lies inside the box or on its boundary.
func (b Box) Contains(p Vec) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Z >= b.MinZ && p.Z <= b.MaxZ
}

// SegmentHitsBox reports whether the segment a->b touches the box.
// Slab test over both axes; a zero-length segment degenerates to Contains.
func SegmentHitsBox(a, b Vec, box Box) bool {
	tMin, tMax := 0.0, 1.0

	clip := func(origin, delta, lo, hi float64) bool {
		if math.Abs(delta) < Epsilon {
			return origin >= lo && origin <= hi
		}
		inv := 1.0 / delta
		t1 := (lo - origin) * inv
		t2 := (hi - origin) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		return tMin <= tMax
	}

	if !clip(a.X, b.X-a.X, box.MinX, box.MaxX) {
		return false
	}
	if !clip(a.Z, b.Z-a.Z, box.MinZ, box.MaxZ) {
		return false
	}
	return true
}

// DistToSegment returns the shortest distance from p to the segment a->b.
func DistToSegment(p, a, b Vec) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Z*ab.Z
	if lenSq < Epsilon {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Z-a.Z)*ab.Z) / lenSq
	t = ClampF(t, 0, 1)
	return p.Dist(a.Add(ab.Scale(t)))
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
