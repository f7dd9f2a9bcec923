// Package battle is the authoritative simulation of a two-sided, turn-based
// tactical battle: unit registry, turn state, action validation, combat and
// victory evaluation.
//
// The package does no I/O and does not log. Every operation returns a
// definite Outcome; no error crosses the simulation boundary.
package battle

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/skirmish/internal/core"
)

// UnitKind is the combat role of a unit.
type UnitKind int

const (
	KindMelee UnitKind = iota
	KindRanged
)

// String returns a human-readable name for the kind.
func (k UnitKind) String() string {
	switch k {
	case KindMelee:
		return "melee"
	case KindRanged:
		return "ranged"
	default:
		return "unknown"
	}
}

// ParseUnitKind converts a config name into a UnitKind.
func ParseUnitKind(name string) (UnitKind, error) {
	switch name {
	case "melee", "":
		return KindMelee, nil
	case "ranged":
		return KindRanged, nil
	default:
		return KindMelee, fmt.Errorf("unknown unit kind %q", name)
	}
}

// UnitSpec describes the stats a unit is created with.
type UnitSpec struct {
	Type        string // Config name, e.g. "swordsman"
	Kind        UnitKind
	MoveRange   float64
	AttackRange float64
}

// Unit is a live unit. Destroyed units are removed from the registry,
// so a Unit value always describes a living unit.
type Unit struct {
	ID          core.UnitID
	Owner       core.Side
	Type        string
	Kind        UnitKind
	Pos         core.Vec
	MoveRange   float64
	AttackRange float64
}

// Registry maps unit identity to unit state.
// It is not safe for concurrent use; Game serializes access.
type Registry struct {
	units map[core.UnitID]*Unit
	next  core.UnitID
}

// NewRegistry creates an empty registry. The first spawned unit gets ID 1.
func NewRegistry() *Registry {
	return &Registry{
		units: make(map[core.UnitID]*Unit),
		next:  1,
	}
}

// NewRegistryFrom rebuilds a registry from a unit list, keeping their IDs.
func NewRegistryFrom(units []Unit) *Registry {
	r := NewRegistry()
	for _, u := range units {
		cp := u
		r.units[u.ID] = &cp
		if u.ID >= r.next {
			r.next = u.ID + 1
		}
	}
	return r
}

// Spawn adds a unit for owner at pos and returns it.
// IDs increase monotonically and are never handed out twice.
func (r *Registry) Spawn(owner core.Side, pos core.Vec, spec UnitSpec) (Unit, error) {
	if !owner.Valid() {
		return Unit{}, fmt.Errorf("battle: cannot spawn unit for side %s", owner)
	}
	u := &Unit{
		ID:          r.next,
		Owner:       owner,
		Type:        spec.Type,
		Kind:        spec.Kind,
		Pos:         pos,
		MoveRange:   spec.MoveRange,
		AttackRange: spec.AttackRange,
	}
	r.next++
	r.units[u.ID] = u
	return *u, nil
}

// Get returns a copy of the unit with the given ID.
func (r *Registry) Get(id core.UnitID) (Unit, bool) {
	u, ok := r.units[id]
	if !ok {
		return Unit{}, false
	}
	return *u, true
}

// Move updates a unit's position.
func (r *Registry) Move(id core.UnitID, pos core.Vec) bool {
	u, ok := r.units[id]
	if !ok {
		return false
	}
	u.Pos = pos
	return true
}

// Remove deletes a unit. The ID is not reused.
func (r *Registry) Remove(id core.UnitID) bool {
	if _, ok := r.units[id]; !ok {
		return false
	}
	delete(r.units, id)
	return true
}

// Len returns the number of live units.
func (r *Registry) Len() int {
	return len(r.units)
}

// Count returns the number of live units owned by side.
func (r *Registry) Count(side core.Side) int {
	n := 0
	for _, u := range r.units {
		if u.Owner == side {
			n++
		}
	}
	return n
}

// All returns copies of every live unit ordered by ID.
func (r *Registry) All() []Unit {
	out := make([]Unit, 0, len(r.units))
	for _, id := range r.ids() {
		out = append(out, *r.units[id])
	}
	return out
}

// BySide returns copies of the units owned by side ordered by ID.
func (r *Registry) BySide(side core.Side) []Unit {
	var out []Unit
	for _, id := range r.ids() {
		if u := r.units[id]; u.Owner == side {
			out = append(out, *u)
		}
	}
	return out
}

// UnitsOverlapping returns the IDs of units whose centre lies closer than radius to p.
func (r *Registry) UnitsOverlapping(p core.Vec, radius float64) []core.UnitID {
	var out []core.UnitID
	for _, id := range r.ids() {
		if r.units[id].Pos.Dist(p) < radius {
			out = append(out, id)
		}
	}
	return out
}

// UnitsAlongSegment returns the IDs of units whose centre lies closer than
// radius to the segment a->b.
func (r *Registry) UnitsAlongSegment(a, b core.Vec, radius float64) []core.UnitID {
	var out []core.UnitID
	for _, id := range r.ids() {
		if core.DistToSegment(r.units[id].Pos, a, b) < radius {
			out = append(out, id)
		}
	}
	return out
}

// ids returns every unit ID in ascending order.
func (r *Registry) ids() []core.UnitID {
	ids := make([]core.UnitID, 0, len(r.units))
	for id := range r.units {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
