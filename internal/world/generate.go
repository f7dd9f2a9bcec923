package world

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/skirmish/internal/core"
)

// maxPlacementAttempts bounds the random search for one obstacle position.
const maxPlacementAttempts = 100

// ObstacleSpec describes one kind of obstacle and how many to scatter.
type ObstacleSpec struct {
	Type     string
	Width    float64
	Depth    float64
	MinCount int
	MaxCount int
}

// Spec describes a map to generate.
type Spec struct {
	Width         float64
	Height        float64
	Margin        float64
	SpawnZoneSize float64
	Layout        string // horizontal, vertical, diagonal or random
	Obstacles     []ObstacleSpec
}

// DefaultSpec returns a 32x32 map with a handful of rocks and walls.
func DefaultSpec() Spec {
	return Spec{
		Width:         32,
		Height:        32,
		Margin:        1,
		SpawnZoneSize: 10,
		Layout:        "random",
		Obstacles: []ObstacleSpec{
			{Type: "rock", Width: 1.5, Depth: 1.5, MinCount: 3, MaxCount: 6},
			{Type: "wall", Width: 4, Depth: 1, MinCount: 1, MaxCount: 3},
		},
	}
}

// Validate checks that the spec describes a usable map.
func (s Spec) Validate() error {
	if s.Width <= 2*s.Margin || s.Height <= 2*s.Margin {
		return fmt.Errorf("world: map %gx%g leaves no room inside margin %g", s.Width, s.Height, s.Margin)
	}
	if s.SpawnZoneSize <= 0 {
		return fmt.Errorf("world: spawn zone size must be positive, got %g", s.SpawnZoneSize)
	}
	if _, _, err := ParseSpawnLayout(s.Layout); err != nil {
		return err
	}
	for _, o := range s.Obstacles {
		if o.Width <= 0 || o.Depth <= 0 {
			return fmt.Errorf("world: obstacle %q has non-positive size", o.Type)
		}
		if o.MinCount < 0 || o.MaxCount < o.MinCount {
			return fmt.Errorf("world: obstacle %q has invalid count range [%d, %d]", o.Type, o.MinCount, o.MaxCount)
		}
	}
	return nil
}

// Generate builds a map from spec using rng. The same spec and seed always
// yield the same map.
func Generate(spec Spec, rng *rand.Rand) (*Map, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	layout, fixed, _ := ParseSpawnLayout(spec.Layout)
	if !fixed {
		layout = SpawnLayout(rng.Intn(layoutCount))
	}

	m := NewMap(spec.Width, spec.Height, spec.Margin, spec.SpawnZoneSize, layout)
	for _, ospec := range spec.Obstacles {
		count := ospec.MinCount
		if ospec.MaxCount > ospec.MinCount {
			count += rng.Intn(ospec.MaxCount - ospec.MinCount + 1)
		}
		for i := 0; i < count; i++ {
			if box, ok := m.findObstacleSlot(ospec, rng); ok {
				m.AddObstacle(Obstacle{Type: ospec.Type, Box: box})
			}
		}
	}
	return m, nil
}

// findObstacleSlot samples positions until one is clear of both spawn zones
// and of every placed obstacle. Obstacles that do not fit are skipped.
func (m *Map) findObstacleSlot(spec ObstacleSpec, rng *rand.Rand) (core.Box, bool) {
	halfW, halfD := spec.Width/2, spec.Depth/2
	radius := max(halfW, halfD)

	for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
		c := core.V(
			halfW+rng.Float64()*(m.Width-spec.Width),
			halfD+rng.Float64()*(m.Height-spec.Depth),
		)

		if c.Dist(m.spawns[0]) <= m.SpawnZoneSize+radius ||
			c.Dist(m.spawns[1]) <= m.SpawnZoneSize+radius {
			continue
		}

		box := core.BoxAt(c, spec.Width, spec.Depth)
		overlaps := false
		for _, o := range m.Obstacles {
			if o.Box.Intersects(box) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			return box, true
		}
	}
	return core.Box{}, false
}
