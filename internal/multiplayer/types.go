// Package multiplayer hosts authoritative battles for connected sessions.
// A BattleMatch is the single writer of its battle; sessions only ever see
// replication events and keep read-only mirrors.
package multiplayer

import "github.com/google/uuid"

// SessionID uniquely identifies a participant's session.
// CPU commanders get sessions too, so the match loop treats every side alike.
type SessionID string

// MatchID uniquely identifies a hosted battle.
type MatchID string

// NewMatchID returns a fresh random match identifier.
func NewMatchID() MatchID {
	return MatchID(uuid.NewString())
}

// MatchMode describes who plays each side.
type MatchMode int

const (
	// MatchModeVsCPU is a session against a CPU commander.
	MatchModeVsCPU MatchMode = iota

	// MatchModeCPUvsCPU pits two CPU commanders against each other.
	MatchModeCPUvsCPU

	// MatchModePvP is two sessions against each other.
	MatchModePvP
)

// String returns the name stored in battle history.
func (m MatchMode) String() string {
	switch m {
	case MatchModeVsCPU:
		return "vs_cpu"
	case MatchModeCPUvsCPU:
		return "cpu_vs_cpu"
	case MatchModePvP:
		return "pvp"
	default:
		return "unknown"
	}
}
