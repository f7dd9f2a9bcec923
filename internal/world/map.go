// Package world models the battlefield: bounds, obstacles and spawn zones.
// Map implements the terrain queries the pathfinder and combat resolver use.
package world

import (
	"github.com/vovakirdan/skirmish/internal/core"
)

// Obstacle is a static, line-of-sight blocking footprint.
type Obstacle struct {
	Type string
	Box  core.Box
}

// Map is a generated battlefield. It is immutable once generated and safe
// for concurrent reads.
type Map struct {
	Width         float64
	Height        float64
	Margin        float64 // Playable area is [Margin, Width-Margin] x [Margin, Height-Margin]
	SpawnZoneSize float64
	Layout        SpawnLayout
	Obstacles     []Obstacle

	spawns [2]core.Vec
}

// NewMap creates an empty map with spawn centres placed for layout.
func NewMap(width, height, margin, spawnZone float64, layout SpawnLayout) *Map {
	m := &Map{
		Width:         width,
		Height:        height,
		Margin:        margin,
		SpawnZoneSize: spawnZone,
		Layout:        layout,
	}
	m.spawns = layout.centers(width, height, spawnZone)
	return m
}

// AddObstacle places an obstacle without validation.
func (m *Map) AddObstacle(o Obstacle) {
	m.Obstacles = append(m.Obstacles, o)
}

// SpawnCenter returns the centre of side's spawn zone.
func (m *Map) SpawnCenter(side core.Side) core.Vec {
	switch side {
	case core.Player1:
		return m.spawns[0]
	case core.Player2:
		return m.spawns[1]
	default:
		return core.V(m.Width/2, m.Height/2)
	}
}

// IsInsideMapBounds reports whether p lies in the playable area, edges included.
func (m *Map) IsInsideMapBounds(p core.Vec) bool {
	return p.X >= m.Margin &&
		p.X <= m.Width-m.Margin &&
		p.Z >= m.Margin &&
		p.Z <= m.Height-m.Margin
}

// IsWalkable reports whether p is free of obstacles.
func (m *Map) IsWalkable(p core.Vec) bool {
	for _, o := range m.Obstacles {
		if o.Box.Contains(p) {
			return false
		}
	}
	return true
}

// RaycastBlocked reports whether any obstacle touches the segment from->to.
func (m *Map) RaycastBlocked(from, to core.Vec) bool {
	for _, o := range m.Obstacles {
		if core.SegmentHitsBox(from, to, o.Box) {
			return true
		}
	}
	return false
}

// nearObstacle reports whether p is within pad of any obstacle.
func (m *Map) nearObstacle(p core.Vec, pad float64) bool {
	for _, o := range m.Obstacles {
		if o.Box.Expand(pad).Contains(p) {
			return true
		}
	}
	return false
}
