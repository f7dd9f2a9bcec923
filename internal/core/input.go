package core

// ActionKind is the kind of intent a player can issue against the simulation.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionMove
	ActionAttack
	ActionEndTurn
)

// String returns a human-readable name for the action.
func (a ActionKind) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionEndTurn:
		return "end_turn"
	default:
		return "unknown"
	}
}

// Intent is a player-issued request: move a unit, attack with a unit, or end the turn.
// Only the fields relevant to Kind are read.
type Intent struct {
	Kind   ActionKind
	Unit   UnitID // Acting unit (move, attack)
	Target UnitID // Attacked unit (attack)
	To     Vec    // Requested destination (move)
}

// MoveIntent builds a move request.
func MoveIntent(unit UnitID, to Vec) Intent {
	return Intent{Kind: ActionMove, Unit: unit, To: to}
}

// AttackIntent builds an attack request.
func AttackIntent(attacker, target UnitID) Intent {
	return Intent{Kind: ActionAttack, Unit: attacker, Target: target}
}

// EndTurnIntent builds a skip-turn request.
func EndTurnIntent() Intent {
	return Intent{Kind: ActionEndTurn}
}
