package world

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/core"
)

const (
	maxRings      = 20
	spawnJitter   = 0.3
	unitFootprint = 0.4
)

// Spawner places units. *battle.Game satisfies it.
type Spawner interface {
	Spawn(owner core.Side, pos core.Vec, spec battle.UnitSpec) (battle.Unit, error)
	Units() []battle.Unit
}

// SpawnArmy places units for side in concentric rings around its spawn
// centre. Ring r has radius r*spacing and floor(2*pi*r) slots; every
// position is jittered and must be in bounds and clear of obstacles and
// other units.
func SpawnArmy(s Spawner, m *Map, side core.Side, army []battle.UnitSpec, spacing float64, rng *rand.Rand) ([]battle.Unit, error) {
	if spacing <= 0 {
		return nil, fmt.Errorf("world: unit spacing must be positive, got %g", spacing)
	}

	var taken []core.Vec
	for _, u := range s.Units() {
		taken = append(taken, u.Pos)
	}

	center := m.SpawnCenter(side)
	clearance := spacing/2 + unitFootprint
	placed := make([]battle.Unit, 0, len(army))

	for ring := 0; ring <= maxRings && len(placed) < len(army); ring++ {
		radius := float64(ring) * spacing
		slots := int(math.Floor(2 * math.Pi * radius / spacing))
		if slots <= 0 {
			slots = 1
		}

		for i := 0; i < slots && len(placed) < len(army); i++ {
			angle := float64(i) * 2 * math.Pi / float64(slots)
			pos := center.Add(core.V(
				math.Cos(angle)*(radius+jitter(rng)),
				math.Sin(angle)*(radius+jitter(rng)),
			))

			if !m.IsInsideMapBounds(pos) || m.nearObstacle(pos, spacing/2) || crowded(pos, taken, clearance) {
				continue
			}

			u, err := s.Spawn(side, pos, army[len(placed)])
			if err != nil {
				return placed, err
			}
			placed = append(placed, u)
			taken = append(taken, pos)
		}
	}

	if len(placed) < len(army) {
		return placed, fmt.Errorf("world: placed %d of %d units for %s", len(placed), len(army), side)
	}
	return placed, nil
}

func jitter(rng *rand.Rand) float64 {
	return (rng.Float64()*2 - 1) * spawnJitter
}

func crowded(p core.Vec, taken []core.Vec, clearance float64) bool {
	for _, q := range taken {
		if p.Dist(q) < clearance {
			return true
		}
	}
	return false
}
