package battle

import "github.com/vovakirdan/skirmish/internal/core"

// Sightlines answers line-of-sight queries against static obstacles.
type Sightlines interface {
	RaycastBlocked(from, to core.Vec) bool
}

// checkAttack validates an attack between two live units. Range is Euclidean;
// only obstacles block line of sight, never other units.
func checkAttack(attacker, target Unit, sight Sightlines) Rejection {
	if attacker.Owner == target.Owner {
		return RejectFriendlyTarget
	}
	if attacker.Pos.Dist(target.Pos) > attacker.AttackRange+core.Epsilon {
		return RejectOutOfRange
	}
	if sight.RaycastBlocked(attacker.Pos, target.Pos) {
		return RejectNoLineOfSight
	}
	return RejectNone
}
