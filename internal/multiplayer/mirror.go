package multiplayer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/pathfind"
)

// ErrSequenceGap is returned when a replication event arrives out of order.
// The mirror can no longer be trusted and must be reseeded from a snapshot.
var ErrSequenceGap = errors.New("multiplayer: replication sequence gap")

// Mirror is a read-only replica of a hosted battle. It is seeded from a
// snapshot and changes only through replication events, never through
// intents. The turn timer is not replicated.
type Mirror struct {
	mu sync.RWMutex

	terrain pathfind.Terrain
	units   *battle.Registry
	paths   *pathfind.Pathfinder

	seq       uint64
	started   bool
	turn      battle.TurnState
	result    battle.Result
	condition string
}

// NewMirror creates a replica from snap over the battle's static terrain.
func NewMirror(snap battle.Snapshot, terrain pathfind.Terrain, opts pathfind.Options) *Mirror {
	units := battle.NewRegistryFrom(snap.Units)
	return &Mirror{
		terrain:   terrain,
		units:     units,
		paths:     pathfind.New(terrain, units, opts),
		seq:       snap.Seq,
		started:   snap.Started,
		turn:      snap.Turn,
		result:    snap.Result,
		condition: snap.Condition,
	}
}

// Apply folds one replication event into the replica. Events at or below
// the current sequence number are ignored.
func (m *Mirror) Apply(e battle.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seq := e.Sequence()
	if seq <= m.seq {
		return nil
	}
	if seq != m.seq+1 {
		return fmt.Errorf("%w: have %d, got %d", ErrSequenceGap, m.seq, seq)
	}

	switch ev := e.(type) {
	case battle.GameStarted:
		m.started = true
		m.turn = battle.TurnState{
			Side:             ev.FirstSide,
			Turn:             ev.Turn,
			Timer:            m.turn.Timer,
			ActionsRemaining: ev.ActionsRemaining,
		}
	case battle.UnitMoved:
		m.units.Move(ev.Unit, ev.Final)
		m.turn.HasMoved = true
		m.spend()
	case battle.UnitDestroyed:
		m.units.Remove(ev.Unit)
		m.turn.HasAttacked = true
		m.spend()
	case battle.TurnChanged:
		m.turn.Side = ev.Side
		m.turn.Turn = ev.Turn
		m.turn.ActionsRemaining = ev.ActionsRemaining
		m.turn.HasMoved = false
		m.turn.HasAttacked = false
	case battle.UnboundedMovementEnabled:
		m.turn.Unbounded = true
	case battle.GameEnded:
		m.result = ev.Result
		m.condition = ev.Condition
	}
	m.seq = seq
	return nil
}

// ApplyAll applies a batch in order and stops at the first error.
func (m *Mirror) ApplyAll(events []battle.Event) error {
	for _, e := range events {
		if err := m.Apply(e); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mirror) spend() {
	if m.turn.ActionsRemaining > 0 {
		m.turn.ActionsRemaining--
	}
}

// Snapshot copies the replica state.
func (m *Mirror) Snapshot() battle.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return battle.Snapshot{
		Seq:       m.seq,
		Started:   m.started,
		Turn:      m.turn,
		Units:     m.units.All(),
		Result:    m.result,
		Condition: m.condition,
	}
}

// Seq returns the sequence number of the last applied event.
func (m *Mirror) Seq() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seq
}

// Unit returns a copy of a mirrored unit.
func (m *Mirror) Unit(id core.UnitID) (battle.Unit, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.units.Get(id)
}

// Over reports whether the mirrored battle has ended.
func (m *Mirror) Over() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.result != battle.ResultNone
}

// PreviewPath runs the pathfinder on the replica. The host recomputes the
// path on commit, so this is advisory only.
func (m *Mirror) PreviewPath(id core.UnitID, to core.Vec) pathfind.Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.units.Get(id)
	if !ok {
		return pathfind.Result{}
	}
	return m.paths.FindPath(u.Pos, to, u.MoveRange, id)
}

// Terrain returns the static terrain the replica runs on.
func (m *Mirror) Terrain() pathfind.Terrain {
	return m.terrain
}
