package multiplayer

import (
	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/world"
)

// SessionEvent represents an event sent from the host to a session.
type SessionEvent interface {
	sessionEvent()
}

// MatchStartedEvent seeds a session's mirror. Snapshot is taken before the
// battle starts, so the GameStarted replication event follows it.
type MatchStartedEvent struct {
	MatchID  MatchID
	Scenario string
	Side     core.Side // Which side this session plays
	Map      *world.Map
	Snapshot battle.Snapshot
}

func (MatchStartedEvent) sessionEvent() {}

// ReplicationEvent carries the events committed by one intent or one timer
// tick, in sequence order. A batch is never split across two events.
type ReplicationEvent struct {
	MatchID MatchID
	Events  []battle.Event
}

func (ReplicationEvent) sessionEvent() {}

// IntentRejectedEvent tells the issuing session why its intent was refused.
type IntentRejectedEvent struct {
	MatchID MatchID
	Intent  core.Intent
	Reason  battle.Rejection
}

func (IntentRejectedEvent) sessionEvent() {}

// SelectionEvent answers a SelectUnitMsg. Unit is the side's focused unit
// after the request, zero when nothing is selected. Selection is private to
// the side and never enters the replication log.
type SelectionEvent struct {
	MatchID MatchID
	Unit    core.UnitID
	Reason  battle.Rejection
}

func (SelectionEvent) sessionEvent() {}

// MatchErrorEvent is sent when a match could not be set up.
type MatchErrorEvent struct {
	Message string
}

func (MatchErrorEvent) sessionEvent() {}

// MatchEndedEvent is sent when the match ends.
type MatchEndedEvent struct {
	MatchID   MatchID
	Reason    MatchEndReason
	Result    battle.Result
	Condition string
	Winner    core.Side // SideNone on a draw or cancellation
	Turns     int
}

func (MatchEndedEvent) sessionEvent() {}

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // A victory condition fired
	MatchEndReasonDisconnect                       // A side left and forfeited
	MatchEndReasonCancelled                        // Host shut down
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "completed"
	case MatchEndReasonDisconnect:
		return "disconnect"
	case MatchEndReasonCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// StartMatchMsg asks the coordinator to host a new battle.
// Empty player slots are filled with CPU commanders run by the coordinator.
type StartMatchMsg struct {
	Scenario string
	Mode     MatchMode
	Player1  SessionID
	Player2  SessionID
	Seed     int64
}

func (StartMatchMsg) coordinatorMessage() {}

// IntentMsg submits an intent to a running match.
type IntentMsg struct {
	MatchID   MatchID
	SessionID SessionID
	Intent    core.Intent
}

func (IntentMsg) coordinatorMessage() {}

// SelectUnitMsg focuses one of the sender's units. A zero Unit clears the
// selection.
type SelectUnitMsg struct {
	MatchID   MatchID
	SessionID SessionID
	Unit      core.UnitID
}

func (SelectUnitMsg) coordinatorMessage() {}

// LeaveMatchMsg requests leaving an active match. The leaver forfeits.
type LeaveMatchMsg struct {
	SessionID SessionID
	MatchID   MatchID
}

func (LeaveMatchMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
