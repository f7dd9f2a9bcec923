// Package pathfind computes budget-bounded movement paths on a unit-cell lattice.
//
// The search is a pure function of the terrain, the unit occupancy and its
// arguments: a client preview and the host's binding computation agree whenever
// they run on the same state.
package pathfind

import (
	"container/heap"
	"math"

	"github.com/vovakirdan/skirmish/internal/core"
)

// Terrain answers static map queries.
type Terrain interface {
	IsInsideMapBounds(p core.Vec) bool
	IsWalkable(p core.Vec) bool
	RaycastBlocked(from, to core.Vec) bool
}

// Occupancy answers dynamic unit queries.
type Occupancy interface {
	UnitsOverlapping(p core.Vec, radius float64) []core.UnitID
	UnitsAlongSegment(a, b core.Vec, radius float64) []core.UnitID
}

// Options tunes the lattice and the unit footprint.
type Options struct {
	CellSize   float64
	UnitRadius float64
}

// DefaultOptions returns the standard one-unit lattice with 0.4 radius units.
func DefaultOptions() Options {
	return Options{CellSize: 1, UnitRadius: 0.4}
}

// Result is the outcome of a path query.
type Result struct {
	Waypoints []core.Vec
	Reached   bool
}

// Empty reports whether the result carries no waypoints.
func (r Result) Empty() bool {
	return len(r.Waypoints) == 0
}

// Final returns the last waypoint, or from when the path is empty.
func (r Result) Final(from core.Vec) core.Vec {
	if len(r.Waypoints) == 0 {
		return from
	}
	return r.Waypoints[len(r.Waypoints)-1]
}

// Pathfinder runs path queries against one terrain and occupancy view.
type Pathfinder struct {
	terrain   Terrain
	occupancy Occupancy
	opts      Options
}

// New creates a pathfinder. Zero option fields fall back to DefaultOptions.
func New(terrain Terrain, occupancy Occupancy, opts Options) *Pathfinder {
	def := DefaultOptions()
	if opts.CellSize <= 0 {
		opts.CellSize = def.CellSize
	}
	if opts.UnitRadius <= 0 {
		opts.UnitRadius = def.UnitRadius
	}
	return &Pathfinder{terrain: terrain, occupancy: occupancy, opts: opts}
}

// FindPath computes a path for the moving unit from start toward goal whose
// accumulated cost stays within budget.
//
// A clear straight line is preferred: it yields [goal] when within budget, or a
// single point budget units along the bearing when that point is walkable.
// Otherwise an A* search over lattice cells runs with |dx|+|dz| step costs.
func (pf *Pathfinder) FindPath(start, goal core.Vec, budget float64, moving core.UnitID) Result {
	if pf.hasDirectPath(start, goal, moving) {
		dist := start.Dist(goal)
		if dist <= budget+core.Epsilon {
			return Result{Waypoints: []core.Vec{goal}, Reached: true}
		}
		partial := start.Add(goal.Sub(start).Normalized().Scale(budget))
		if pf.walkable(partial, moving) {
			return Result{Waypoints: []core.Vec{partial}, Reached: false}
		}
	}
	return pf.search(start, goal, budget, moving)
}

// IsWalkable reports whether the moving unit may stand at p.
func (pf *Pathfinder) IsWalkable(p core.Vec, moving core.UnitID) bool {
	return pf.walkable(p, moving)
}

func (pf *Pathfinder) hasDirectPath(start, goal core.Vec, moving core.UnitID) bool {
	if !pf.walkable(goal, moving) {
		return false
	}
	if pf.terrain.RaycastBlocked(start, goal) {
		return false
	}
	for _, id := range pf.occupancy.UnitsAlongSegment(start, goal, 2*pf.opts.UnitRadius) {
		if id != moving {
			return false
		}
	}
	return true
}

// walkable checks bounds, static obstacles and foreign units overlapping the
// cell footprint around p.
func (pf *Pathfinder) walkable(p core.Vec, moving core.UnitID) bool {
	if !pf.terrain.IsInsideMapBounds(p) {
		return false
	}
	if !pf.terrain.IsWalkable(p) {
		return false
	}
	for _, id := range pf.occupancy.UnitsOverlapping(p, pf.opts.CellSize/2+pf.opts.UnitRadius) {
		if id != moving {
			return false
		}
	}
	return true
}

type cellKey struct {
	x, z int
}

type node struct {
	key    cellKey
	pos    core.Vec
	g, h   float64
	parent *node
	seq    int
	index  int // heap index, -1 when not queued
	closed bool
}

func (n *node) f() float64 { return n.g + n.h }

type openList []*node

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].f(), ol[j].f()
	if fi != fj {
		return fi < fj
	}
	if ol[i].h != ol[j].h {
		return ol[i].h < ol[j].h
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)      { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*node); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	n.index = -1
	*ol = old[:len(old)-1]
	return n
}

var neighborOffsets = [8]cellKey{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

func (pf *Pathfinder) keyOf(p core.Vec) cellKey {
	return cellKey{
		x: int(math.Round(p.X / pf.opts.CellSize)),
		z: int(math.Round(p.Z / pf.opts.CellSize)),
	}
}

func (pf *Pathfinder) posOf(k cellKey) core.Vec {
	return core.V(float64(k.x)*pf.opts.CellSize, float64(k.z)*pf.opts.CellSize)
}

func (pf *Pathfinder) search(start, goal core.Vec, budget float64, moving core.UnitID) Result {
	startKey := pf.keyOf(start)
	goalPos := pf.posOf(pf.keyOf(goal))

	startNode := &node{key: startKey, pos: pf.posOf(startKey), index: -1}
	if !pf.walkable(startNode.pos, moving) {
		return Result{}
	}
	startNode.h = startNode.pos.Manhattan(goalPos)

	nodes := map[cellKey]*node{startKey: startNode}
	blocked := make(map[cellKey]bool)
	var closed []*node
	seq := 0

	ol := &openList{}
	heap.Init(ol)
	heap.Push(ol, startNode)

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*node)

		if cur.pos.Dist(goal) <= pf.opts.CellSize+core.Epsilon {
			return Result{Waypoints: retrace(cur), Reached: true}
		}

		cur.closed = true
		closed = append(closed, cur)

		for _, off := range neighborOffsets {
			key := cellKey{cur.key.x + off.x, cur.key.z + off.z}
			if blocked[key] {
				continue
			}
			nb, seen := nodes[key]
			if seen && nb.closed {
				continue
			}
			if !seen {
				pos := pf.posOf(key)
				if !pf.walkable(pos, moving) {
					blocked[key] = true
					continue
				}
				nb = &node{key: key, pos: pos, index: -1}
				nodes[key] = nb
			}

			g := cur.g + cur.pos.Manhattan(nb.pos)
			if g > budget+core.Epsilon {
				continue
			}

			if nb.index < 0 {
				seq++
				nb.g = g
				nb.h = nb.pos.Manhattan(goalPos)
				nb.parent = cur
				nb.seq = seq
				heap.Push(ol, nb)
			} else if g < nb.g {
				nb.g = g
				nb.parent = cur
				heap.Fix(ol, nb.index)
			}
		}
	}

	// Open set exhausted: settle for the explored cell nearest the goal.
	var best *node
	bestDist := math.MaxFloat64
	for _, n := range closed {
		if d := n.pos.Manhattan(goalPos); d < bestDist {
			best, bestDist = n, d
		}
	}
	if best == nil {
		return Result{}
	}
	return Result{Waypoints: retrace(best), Reached: false}
}

// retrace walks parents back to the start node, which is not included.
func retrace(end *node) []core.Vec {
	var path []core.Vec
	for n := end; n.parent != nil; n = n.parent {
		path = append(path, n.pos)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
