package multiplayer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/skirmish/internal/ai"
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/pathfind"
)

// ErrSessionClosed is returned by Play when the session is closed mid-match.
var ErrSessionClosed = errors.New("multiplayer: session closed")

// CPUSession is a session driven by an ai.Commander. It keeps its own
// mirror of the battle and never touches the authoritative game.
type CPUSession struct {
	*ChannelSession
	logger *log.Logger
}

// NewCPUSession creates a CPU session. A nil logger discards output.
func NewCPUSession(id SessionID, logger *log.Logger) *CPUSession {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CPUSession{
		ChannelSession: NewChannelSession(id, 256),
		logger:         logger.WithPrefix(string(id)),
	}
}

// Play consumes session events until the match ends and submits the
// commander's intents through send. It returns the final MatchEndedEvent.
func (c *CPUSession) Play(ctx context.Context, send func(CoordinatorMessage)) (MatchEndedEvent, error) {
	var (
		mirror   *Mirror
		cmd      *ai.Commander
		matchID  MatchID
		pending  bool
		rejected *core.Intent
	)

	act := func() {
		if mirror == nil || pending {
			return
		}
		in := cmd.Decide(mirror.Snapshot(), mirror.Terrain())
		if in.Kind == core.ActionNone {
			return
		}
		if rejected != nil && *rejected == in {
			in = core.EndTurnIntent()
		}
		pending = true
		send(IntentMsg{MatchID: matchID, SessionID: c.ID(), Intent: in})
	}

	for {
		select {
		case <-ctx.Done():
			return MatchEndedEvent{}, ctx.Err()
		case <-c.Done():
			return MatchEndedEvent{}, ErrSessionClosed
		case evt := <-c.Events():
			switch ev := evt.(type) {
			case MatchStartedEvent:
				matchID = ev.MatchID
				mirror = NewMirror(ev.Snapshot, ev.Map, pathfind.DefaultOptions())
				cmd = ai.NewCommander(ev.Side)
				pending, rejected = false, nil
				c.logger.Debug("match started", "match", ev.MatchID, "side", ev.Side)
			case ReplicationEvent:
				if mirror == nil || ev.MatchID != matchID {
					continue
				}
				if err := mirror.ApplyAll(ev.Events); err != nil {
					return MatchEndedEvent{}, fmt.Errorf("%s lost sync after %d dropped events: %w", c.ID(), c.Dropped(), err)
				}
				pending, rejected = false, nil
				act()
			case IntentRejectedEvent:
				c.logger.Debug("intent rejected", "kind", ev.Intent.Kind, "reason", ev.Reason)
				in := ev.Intent
				rejected = &in
				pending = false
				act()
			case MatchErrorEvent:
				return MatchEndedEvent{}, errors.New(ev.Message)
			case MatchEndedEvent:
				return ev, nil
			}
		}
	}
}
