package battle

import (
	"time"

	"github.com/vovakirdan/skirmish/internal/core"
)

// Rules are the tunable parameters of a battle.
type Rules struct {
	ActionsPerTurn int
	TurnDuration   time.Duration

	UnitCountCondition bool

	UnboundedMovement     bool
	UnboundedMovementTurn int

	Stalemate     bool
	StalemateTurn int
}

// DefaultRules returns the standard two-action, sixty-second rules.
func DefaultRules() Rules {
	return Rules{
		ActionsPerTurn:        2,
		TurnDuration:          60 * time.Second,
		UnitCountCondition:    true,
		UnboundedMovement:     true,
		UnboundedMovementTurn: 15,
		Stalemate:             true,
		StalemateTurn:         30,
	}
}

func (r Rules) budget() int {
	if r.ActionsPerTurn < 1 {
		return 1
	}
	return r.ActionsPerTurn
}

// TurnState tracks whose turn it is and what they may still do.
// Only the authoritative Game writes it; snapshots hand out copies.
type TurnState struct {
	Side             core.Side
	Turn             int
	Timer            time.Duration
	ActionsRemaining int
	HasMoved         bool
	HasAttacked      bool
	Unbounded        bool // One-way latch lifting the has-moved gate
}

// NewTurnState starts turn 1 with first to act.
func NewTurnState(first core.Side, rules Rules) TurnState {
	return TurnState{
		Side:             first,
		Turn:             1,
		Timer:            rules.TurnDuration,
		ActionsRemaining: rules.budget(),
	}
}

// ConsumeAction marks the action kind as spent and decrements the budget.
// When the budget runs out the turn ends before returning; the result
// reports whether that happened.
func (ts *TurnState) ConsumeAction(kind core.ActionKind, rules Rules) bool {
	switch kind {
	case core.ActionMove:
		ts.HasMoved = true
	case core.ActionAttack:
		ts.HasAttacked = true
	}
	ts.ActionsRemaining--
	if ts.ActionsRemaining <= 0 {
		ts.EndTurn(rules)
		return true
	}
	return false
}

// EndTurn hands control to the other side. The turn counter advances when
// Player1 relinquishes control.
func (ts *TurnState) EndTurn(rules Rules) {
	if ts.Side == core.Player1 {
		ts.Turn++
	}
	ts.Side = ts.Side.Opponent()
	ts.ActionsRemaining = rules.budget()
	ts.HasMoved = false
	ts.HasAttacked = false
	ts.Timer = rules.TurnDuration
}

// Tick runs the countdown by dt. Expiry ends the turn; the result reports
// whether it did.
func (ts *TurnState) Tick(dt time.Duration, rules Rules) bool {
	ts.Timer -= dt
	if ts.Timer <= 0 {
		ts.EndTurn(rules)
		return true
	}
	return false
}

// LatchUnbounded enables unbounded movement. It reports whether the latch
// flipped on this call.
func (ts *TurnState) LatchUnbounded() bool {
	if ts.Unbounded {
		return false
	}
	ts.Unbounded = true
	return true
}
