package battle

import "github.com/vovakirdan/skirmish/internal/core"

// EventType names a replication event.
type EventType string

const (
	EventGameStarted              EventType = "game_started"
	EventUnitMoved                EventType = "unit_moved"
	EventUnitDestroyed            EventType = "unit_destroyed"
	EventTurnChanged              EventType = "turn_changed"
	EventUnboundedMovementEnabled EventType = "unbounded_movement_enabled"
	EventGameEnded                EventType = "game_ended"
)

// Event is one committed mutation, emitted in commit order.
// Seq numbers start at 1 and increase by one per event within a battle.
type Event interface {
	Sequence() uint64
	Type() EventType
}

// GameStarted is emitted once when play begins.
type GameStarted struct {
	Seq              uint64
	FirstSide        core.Side
	Turn             int
	ActionsRemaining int
}

func (e GameStarted) Sequence() uint64 { return e.Seq }
func (GameStarted) Type() EventType { return EventGameStarted }

// UnitMoved carries the path a unit took and where it stopped.
type UnitMoved struct {
	Seq   uint64
	Unit  core.UnitID
	Path  []core.Vec
	Final core.Vec
}

func (e UnitMoved) Sequence() uint64 { return e.Seq }
func (UnitMoved) Type() EventType { return EventUnitMoved }

// UnitDestroyed reports a unit removed by an attack.
type UnitDestroyed struct {
	Seq      uint64
	Unit     core.UnitID
	Attacker core.UnitID
}

func (e UnitDestroyed) Sequence() uint64 { return e.Seq }
func (UnitDestroyed) Type() EventType { return EventUnitDestroyed }

// TurnChanged reports control passing to Side.
type TurnChanged struct {
	Seq              uint64
	Side             core.Side
	Turn             int
	ActionsRemaining int
	Expired          bool // Timer ran out
}

func (e TurnChanged) Sequence() uint64 { return e.Seq }
func (TurnChanged) Type() EventType { return EventTurnChanged }

// UnboundedMovementEnabled reports the one-way latch flipping.
type UnboundedMovementEnabled struct {
	Seq  uint64
	Turn int
}

func (e UnboundedMovementEnabled) Sequence() uint64 { return e.Seq }
func (UnboundedMovementEnabled) Type() EventType { return EventUnboundedMovementEnabled }

// GameEnded reports the final result and the condition that produced it.
type GameEnded struct {
	Seq       uint64
	Result    Result
	Condition string
	Turn      int
}

func (e GameEnded) Sequence() uint64 { return e.Seq }
func (GameEnded) Type() EventType { return EventGameEnded }

// Sink receives committed events in order. Publish is called while the game
// holds its lock, so implementations must not call back into the Game.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Publish calls f(e).
func (f SinkFunc) Publish(e Event) { f(e) }
