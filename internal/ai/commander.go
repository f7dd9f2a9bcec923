// Package ai implements the CPU commander. It only ever reads a snapshot of
// the battle and answers with an intent; the authoritative game decides.
package ai

import (
	"math"
	"sort"

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/pathfind"
)

// DefaultMaxPreviews bounds how many units one decision plans routes for.
const DefaultMaxPreviews = 3

// Commander picks intents for one side.
type Commander struct {
	Side        core.Side
	MaxPreviews int
	Path        pathfind.Options
}

// NewCommander creates a commander for side with default settings.
func NewCommander(side core.Side) *Commander {
	return &Commander{
		Side:        side,
		MaxPreviews: DefaultMaxPreviews,
		Path:        pathfind.DefaultOptions(),
	}
}

// Decide returns the next intent for the commander's side, or an intent of
// kind ActionNone when it is not this side's turn.
//
// Attacks come first: any own unit with an enemy in range and sight fires at
// the nearest one. Otherwise the unit closest to the enemy that is not
// already engaged walks along its route toward the nearest target. When neither is possible
// the turn is ended.
func (c *Commander) Decide(snap battle.Snapshot, terrain pathfind.Terrain) core.Intent {
	ts := snap.Turn
	if !snap.Started || snap.Result != battle.ResultNone || ts.Side != c.Side {
		return core.Intent{}
	}

	var own, enemies []battle.Unit
	for _, u := range snap.Units {
		if u.Owner == c.Side {
			own = append(own, u)
		} else {
			enemies = append(enemies, u)
		}
	}
	if len(own) == 0 || len(enemies) == 0 {
		return core.EndTurnIntent()
	}

	if !ts.HasAttacked {
		if in, ok := c.pickAttack(own, enemies, terrain); ok {
			return in
		}
	}
	if !ts.HasMoved || ts.Unbounded {
		if in, ok := c.pickMove(snap.Units, own, enemies, terrain); ok {
			return in
		}
	}
	return core.EndTurnIntent()
}

func (c *Commander) pickAttack(own, enemies []battle.Unit, terrain pathfind.Terrain) (core.Intent, bool) {
	for _, u := range own {
		if t, ok := targetInRange(u, enemies, terrain); ok {
			return core.AttackIntent(u.ID, t.ID), true
		}
	}
	return core.Intent{}, false
}

type candidate struct {
	unit   battle.Unit
	target battle.Unit
	dist   float64
}

func (c *Commander) pickMove(all, own, enemies []battle.Unit, terrain pathfind.Terrain) (core.Intent, bool) {
	var cands []candidate
	for _, u := range own {
		if _, engaged := targetInRange(u, enemies, terrain); engaged {
			continue
		}
		t, d := nearest(u, enemies)
		cands = append(cands, candidate{unit: u, target: t, dist: d})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	limit := c.MaxPreviews
	if limit <= 0 || limit > len(cands) {
		limit = len(cands)
	}
	pf := pathfind.New(terrain, battle.NewRegistryFrom(all), c.Path)
	for _, cd := range cands[:limit] {
		if to, ok := stepToward(pf, cd.unit, cd.target.Pos); ok {
			return core.MoveIntent(cd.unit.ID, to), true
		}
	}
	return core.Intent{}, false
}

// stepToward plans a route to goal with no budget and returns the furthest
// point on it that u can reach this turn.
func stepToward(pf *pathfind.Pathfinder, u battle.Unit, goal core.Vec) (core.Vec, bool) {
	route := pf.FindPath(u.Pos, goal, math.Inf(1), u.ID)
	if route.Empty() {
		return core.Vec{}, false
	}
	for i := len(route.Waypoints) - 1; i >= 0; i-- {
		w := route.Waypoints[i]
		if d := u.Pos.Dist(w); d <= core.Epsilon || d > u.MoveRange+core.Epsilon {
			continue
		}
		if pf.FindPath(u.Pos, w, u.MoveRange, u.ID).Reached {
			return w, true
		}
	}

	// No waypoint within reach: a straight route, walked as far as the
	// budget allows.
	step := pf.FindPath(u.Pos, goal, u.MoveRange, u.ID)
	if step.Empty() || step.Final(u.Pos).Dist(u.Pos) <= core.Epsilon {
		return core.Vec{}, false
	}
	return goal, true
}

// targetInRange returns the nearest enemy u can hit right now.
func targetInRange(u battle.Unit, enemies []battle.Unit, terrain pathfind.Terrain) (battle.Unit, bool) {
	best := math.Inf(1)
	var found battle.Unit
	ok := false
	for _, e := range enemies {
		d := u.Pos.Dist(e.Pos)
		if d > u.AttackRange+core.Epsilon || d >= best {
			continue
		}
		if terrain.RaycastBlocked(u.Pos, e.Pos) {
			continue
		}
		best, found, ok = d, e, true
	}
	return found, ok
}

func nearest(u battle.Unit, enemies []battle.Unit) (battle.Unit, float64) {
	best := math.Inf(1)
	var found battle.Unit
	for _, e := range enemies {
		if d := u.Pos.Dist(e.Pos); d < best {
			best, found = d, e
		}
	}
	return found, best
}
