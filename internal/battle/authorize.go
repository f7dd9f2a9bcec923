package battle

import "github.com/vovakirdan/skirmish/internal/core"

// authorize checks turn ownership, unit ownership and the per-turn action
// gates. Unbounded movement lifts only the has-moved gate.
func authorize(ts TurnState, requester, owner core.Side, kind core.ActionKind) bool {
	if !requester.Valid() || ts.Side != requester {
		return false
	}
	switch kind {
	case core.ActionMove:
		if owner != requester {
			return false
		}
		return !ts.HasMoved || ts.Unbounded
	case core.ActionAttack:
		if owner != requester {
			return false
		}
		return !ts.HasAttacked
	case core.ActionEndTurn:
		return true
	default:
		return false
	}
}
