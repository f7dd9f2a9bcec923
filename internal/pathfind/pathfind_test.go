package pathfind

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/skirmish/internal/core"
)

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

type testUnits map[core.UnitID]core.Vec

func (u testUnits) UnitsOverlapping(p core.Vec, radius float64) []core.UnitID {
	var ids []core.UnitID
	for id, pos := range u {
		if pos.Dist(p) < radius {
			ids = append(ids, id)
		}
	}
	return ids
}

func (u testUnits) UnitsAlongSegment(a, b core.Vec, radius float64) []core.UnitID {
	var ids []core.UnitID
	for id, pos := range u {
		if core.DistToSegment(pos, a, b) < radius {
			ids = append(ids, id)
		}
	}
	return ids
}

func openField() testTerrain {
	return testTerrain{w: 10, h: 10}
}

func TestFindPathDirect(t *testing.T) {
	pf := New(openField(), testUnits{1: core.V(0, 0)}, DefaultOptions())

	res := pf.FindPath(core.V(0, 0), core.V(3, 0), 5, 1)
	if !res.Reached {
		t.Fatal("expected destination to be reached")
	}
	if !reflect.DeepEqual(res.Waypoints, []core.Vec{core.V(3, 0)}) {
		t.Errorf("Waypoints = %v, expected [(3,0)]", res.Waypoints)
	}
}

func TestFindPathPartialMove(t *testing.T) {
	pf := New(openField(), testUnits{1: core.V(0, 0)}, DefaultOptions())

	res := pf.FindPath(core.V(0, 0), core.V(10, 0), 5, 1)
	if res.Reached {
		t.Error("partial move should not report reached")
	}
	if len(res.Waypoints) != 1 {
		t.Fatalf("expected one waypoint, got %v", res.Waypoints)
	}
	if !res.Waypoints[0].ApproxEqual(core.V(5, 0)) {
		t.Errorf("waypoint = %v, expected (5,0)", res.Waypoints[0])
	}
}

func TestFindPathAroundWall(t *testing.T) {
	terrain := openField()
	terrain.boxes = []core.Box{{MinX: 2, MinZ: -1, MaxX: 3, MaxZ: 5}}
	pf := New(terrain, testUnits{}, DefaultOptions())

	start, goal := core.V(0, 2), core.V(5, 2)
	res := pf.FindPath(start, goal, 20, 1)
	if !res.Reached {
		t.Fatalf("expected a detour to reach the goal, got %v", res.Waypoints)
	}

	prev := start
	for _, wp := range res.Waypoints {
		if !terrain.IsWalkable(wp) {
			t.Errorf("waypoint %v lies inside the wall", wp)
		}
		if wp.Dist(prev) > 1.5 {
			t.Errorf("waypoint %v is not adjacent to %v", wp, prev)
		}
		prev = wp
	}
	if res.Final(start).Dist(goal) > 1 {
		t.Errorf("final waypoint %v is not within one cell of the goal", res.Final(start))
	}
}

func TestFindPathBudgetFallback(t *testing.T) {
	terrain := openField()
	terrain.boxes = []core.Box{{MinX: 2, MinZ: -1, MaxX: 3, MaxZ: 5}}
	pf := New(terrain, testUnits{}, DefaultOptions())

	res := pf.FindPath(core.V(0, 2), core.V(5, 2), 3, 1)
	if res.Reached {
		t.Error("budget should not allow reaching the goal")
	}
	if !reflect.DeepEqual(res.Waypoints, []core.Vec{core.V(1, 2)}) {
		t.Errorf("Waypoints = %v, expected the explored cell nearest the goal [(1,2)]", res.Waypoints)
	}
}

func TestFindPathBlockedStart(t *testing.T) {
	terrain := openField()
	terrain.boxes = []core.Box{{MinX: -1, MinZ: -1, MaxX: 1, MaxZ: 1}}
	pf := New(terrain, testUnits{}, DefaultOptions())

	res := pf.FindPath(core.V(0, 0), core.V(5, 5), 10, 1)
	if res.Reached || !res.Empty() {
		t.Errorf("expected empty unreached result, got %+v", res)
	}
}

func TestFindPathAvoidsForeignUnits(t *testing.T) {
	units := testUnits{1: core.V(0, 0), 2: core.V(2, 0)}
	pf := New(openField(), units, DefaultOptions())

	goal := core.V(4, 0)
	res := pf.FindPath(core.V(0, 0), goal, 10, 1)
	if !res.Reached {
		t.Fatalf("expected to route around the blocker, got %v", res.Waypoints)
	}
	if len(res.Waypoints) == 1 && res.Waypoints[0] == goal {
		t.Fatal("direct line through a foreign unit must not be taken")
	}
	for _, wp := range res.Waypoints {
		if wp.Dist(units[2]) < 0.9 {
			t.Errorf("waypoint %v overlaps the foreign unit", wp)
		}
	}
}

func TestFindPathIdempotent(t *testing.T) {
	terrain := openField()
	terrain.boxes = []core.Box{
		{MinX: 2, MinZ: 1, MaxX: 3, MaxZ: 8},
		{MinX: 5, MinZ: 3, MaxX: 7, MaxZ: 4},
	}
	units := testUnits{1: core.V(0, 5), 2: core.V(4, 5), 3: core.V(8, 8)}
	pf := New(terrain, units, DefaultOptions())

	first := pf.FindPath(core.V(0, 5), core.V(9, 5), 16, 1)
	for i := 0; i < 5; i++ {
		again := pf.FindPath(core.V(0, 5), core.V(9, 5), 16, 1)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestFindPathOutOfBoundsGoal(t *testing.T) {
	pf := New(openField(), testUnits{}, DefaultOptions())

	res := pf.FindPath(core.V(5, 5), core.V(15, 5), 3, 1)
	if res.Reached {
		t.Error("goal outside the map must not be reached")
	}
	for _, wp := range res.Waypoints {
		if !pf.IsWalkable(wp, 1) {
			t.Errorf("waypoint %v is not walkable", wp)
		}
	}
}
