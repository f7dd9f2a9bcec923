package core

import "fmt"

// Side identifies one of the two competing players in a battle.
// SideNone is the sentinel for neutral or unset ownership.
type Side int

const (
	SideNone Side = iota
	Player1
	Player2
)

// Sides lists the two active sides in turn order.
var Sides = [2]Side{Player1, Player2}

// String returns a human-readable name for the side.
func (s Side) String() string {
	switch s {
	case SideNone:
		return "none"
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the two active sides.
func (s Side) Valid() bool {
	return s == Player1 || s == Player2
}

// Opponent returns the other active side. SideNone maps to itself.
func (s Side) Opponent() Side {
	switch s {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return SideNone
	}
}

// ParseSide converts a config or CLI name into a Side.
func ParseSide(name string) (Side, error) {
	switch name {
	case "player1", "p1", "1":
		return Player1, nil
	case "player2", "p2", "2":
		return Player2, nil
	case "none", "":
		return SideNone, nil
	default:
		return SideNone, fmt.Errorf("unknown side %q", name)
	}
}

// UnitID is the stable identity of a unit. IDs are never reused within a battle.
type UnitID int
