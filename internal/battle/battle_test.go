package battle

import (
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/pathfind"
)

// testTerrain is a rectangular field with inclusive bounds and box obstacles.
type testTerrain struct {
	w, h  float64
	boxes []core.Box
}

func (t testTerrain) IsInsideMapBounds(p core.Vec) bool {
	return p.X >= 0 && p.X <= t.w && p.Z >= 0 && p.Z <= t.h
}

func (t testTerrain) IsWalkable(p core.Vec) bool {
	for _, b := range t.boxes {
		if b.Contains(p) {
			return false
		}
	}
	return true
}

func (t testTerrain) RaycastBlocked(from, to core.Vec) bool {
	for _, b := range t.boxes {
		if core.SegmentHitsBox(from, to, b) {
			return true
		}
	}
	return false
}

var (
	soldier = UnitSpec{Type: "soldier", Kind: KindMelee, MoveRange: 5, AttackRange: 5}
	archer  = UnitSpec{Type: "archer", Kind: KindRanged, MoveRange: 2, AttackRange: 8}
)

func newTestGame(terrain testTerrain, rules Rules) *Game {
	return NewGame(Config{Rules: rules, Terrain: terrain, Path: pathfind.DefaultOptions()})
}

func mustSpawn(g *Game, owner core.Side, pos core.Vec, spec UnitSpec) Unit {
	u, err := g.Spawn(owner, pos, spec)
	if err != nil {
		panic(err)
	}
	return u
}
