package multiplayer

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/registry"
	"github.com/vovakirdan/skirmish/internal/telemetry"
)

// MatchConfig holds everything a BattleMatch needs.
type MatchConfig struct {
	ID       MatchID
	Scenario string
	Mode     MatchMode
	Seed     int64
	Battle   *registry.Battle
	Player1  SessionHandle
	Player2  SessionHandle
	TickRate int
	Logger   *log.Logger        // Optional
	Metrics  *telemetry.Metrics // Optional
}

// MatchResult contains the outcome of a finished match.
type MatchResult struct {
	MatchID   MatchID
	Scenario  string
	Mode      MatchMode
	Seed      int64
	Army      string
	Player1   SessionID
	Player2   SessionID
	Reason    MatchEndReason
	Result    battle.Result
	Condition string
	Winner    core.Side
	Turns     int
	Survivors [2]int // Units left for Player1 and Player2
	StartedAt time.Time
	Duration  time.Duration
	Events    []battle.Event // Full replication log
}

// BattleMatch hosts one authoritative battle. Its Run loop is the only
// goroutine that mutates the game.
type BattleMatch struct {
	id       MatchID
	scenario string
	mode     MatchMode
	seed     int64
	setup    *registry.Battle
	game     *battle.Game

	sessions [2]SessionHandle // Indexed by side-1

	intents        chan sideIntent
	disconnectChan chan SessionID

	tickRate  int
	logger    *log.Logger
	metrics   *telemetry.Metrics
	history   []battle.Event
	startedAt time.Time

	done     chan struct{}
	doneOnce sync.Once
}

type sideIntent struct {
	session SessionID
	intent  core.Intent
}

// NewBattleMatch creates a match around a prepared battle.
func NewBattleMatch(cfg MatchConfig) *BattleMatch {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	tickRate := cfg.TickRate
	if tickRate < 1 {
		tickRate = core.DefaultConfig().TickRate
	}
	return &BattleMatch{
		id:             cfg.ID,
		scenario:       cfg.Scenario,
		mode:           cfg.Mode,
		seed:           cfg.Seed,
		setup:          cfg.Battle,
		game:           cfg.Battle.Game,
		sessions:       [2]SessionHandle{cfg.Player1, cfg.Player2},
		intents:        make(chan sideIntent, 64),
		disconnectChan: make(chan SessionID, 2),
		tickRate:       tickRate,
		logger:         logger.With("match", string(cfg.ID)),
		metrics:        cfg.Metrics,
		done:           make(chan struct{}),
	}
}

// ID returns the match identifier.
func (m *BattleMatch) ID() MatchID {
	return m.id
}

// Scenario returns the scenario the battle was built from.
func (m *BattleMatch) Scenario() string {
	return m.scenario
}

// Game exposes the authoritative game for read-only queries such as
// PreviewPath and Snapshot.
func (m *BattleMatch) Game() *battle.Game {
	return m.game
}

// Session returns the session playing side.
func (m *BattleMatch) Session(side core.Side) (SessionHandle, bool) {
	if !side.Valid() {
		return nil, false
	}
	return m.sessions[side-1], true
}

// SideOf returns the side a session plays, or SideNone.
func (m *BattleMatch) SideOf(id SessionID) core.Side {
	for i, s := range m.sessions {
		if s != nil && s.ID() == id {
			return core.Sides[i]
		}
	}
	return core.SideNone
}

// SubmitIntent queues an intent from a session. It blocks while the queue
// is full and returns once the match has ended.
func (m *BattleMatch) SubmitIntent(id SessionID, in core.Intent) {
	select {
	case m.intents <- sideIntent{session: id, intent: in}:
	case <-m.done:
	}
}

// Select changes the focused unit of the session's side and reports the
// outcome to that session. A zero unit clears the selection.
func (m *BattleMatch) Select(id SessionID, unit core.UnitID) battle.Rejection {
	side := m.SideOf(id)
	s, seated := m.Session(side)
	if !seated {
		return battle.RejectUnauthorized
	}

	rej := battle.RejectNone
	if unit == 0 {
		m.game.Deselect(side)
	} else {
		rej = m.game.Select(side, unit)
	}
	current, _ := m.game.Selected(side)
	s.Send(SelectionEvent{MatchID: m.id, Unit: current, Reason: rej})
	return rej
}

// PlayerDisconnected signals that a session has left. Its side forfeits.
func (m *BattleMatch) PlayerDisconnected(id SessionID) {
	select {
	case m.disconnectChan <- id:
	default:
	}
}

// Run starts the battle and processes intents, timer ticks and disconnects
// one at a time until the battle ends, ctx is cancelled or Stop is called.
func (m *BattleMatch) Run(ctx context.Context) MatchResult {
	defer m.Stop()

	m.startedAt = time.Now()
	snap := m.game.Snapshot()
	for i, s := range m.sessions {
		s.Send(MatchStartedEvent{
			MatchID:  m.id,
			Scenario: m.scenario,
			Side:     core.Sides[i],
			Map:      m.setup.Map,
			Snapshot: snap,
		})
	}

	events, err := m.game.Start(m.setup.FirstSide)
	if err != nil {
		m.logger.Error("start battle", "err", err)
		return m.finish(ctx, MatchEndReasonCancelled)
	}
	m.logger.Info("match started",
		"scenario", m.scenario,
		"mode", m.mode,
		"first", m.setup.FirstSide,
		"units", len(snap.Units),
	)
	m.publish(ctx, events)
	if m.game.Over() {
		return m.finish(ctx, MatchEndReasonCompleted)
	}

	tick := time.Second / time.Duration(m.tickRate)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	go m.monitorSessions()

	for {
		select {
		case <-ticker.C:
			m.publish(ctx, m.game.Tick(tick))

		case req := <-m.intents:
			m.apply(ctx, req)

		case id := <-m.disconnectChan:
			side := m.SideOf(id)
			if !side.Valid() {
				continue
			}
			m.logger.Info("side left", "side", side, "session", id)
			m.publish(ctx, m.game.Forfeit(side))
			return m.finish(ctx, MatchEndReasonDisconnect)

		case <-ctx.Done():
			return m.finish(ctx, MatchEndReasonCancelled)

		case <-m.done:
			return m.finish(ctx, MatchEndReasonCancelled)
		}

		if m.game.Over() {
			return m.finish(ctx, MatchEndReasonCompleted)
		}
	}
}

func (m *BattleMatch) apply(ctx context.Context, req sideIntent) {
	side := m.SideOf(req.session)
	out := m.game.Apply(side, req.intent)
	kind := req.intent.Kind.String()
	if !out.Accepted {
		m.metrics.IntentRejected(ctx, kind, out.Reason.Class().String())
		m.logger.Debug("intent rejected",
			"side", side,
			"kind", kind,
			"reason", out.Reason,
		)
		if s, ok := m.Session(side); ok {
			s.Send(IntentRejectedEvent{MatchID: m.id, Intent: req.intent, Reason: out.Reason})
		}
		return
	}
	m.metrics.IntentAccepted(ctx, kind)
	m.publish(ctx, out.Events)
}

// publish appends a committed batch to the log and fans it out to both sides.
func (m *BattleMatch) publish(ctx context.Context, events []battle.Event) {
	if len(events) == 0 {
		return
	}
	m.history = append(m.history, events...)
	for _, e := range events {
		if tc, ok := e.(battle.TurnChanged); ok {
			m.metrics.TurnChanged(ctx, tc.Expired)
			if tc.Expired {
				m.logger.Debug("turn timer expired", "turn", tc.Turn, "next", tc.Side)
			}
		}
	}
	evt := ReplicationEvent{MatchID: m.id, Events: events}
	for _, s := range m.sessions {
		s.Send(evt)
	}
}

func (m *BattleMatch) finish(ctx context.Context, reason MatchEndReason) MatchResult {
	snap := m.game.Snapshot()
	res, cond := m.game.Result()
	var survivors [2]int
	for _, u := range snap.Units {
		if u.Owner.Valid() {
			survivors[u.Owner-1]++
		}
	}

	r := MatchResult{
		MatchID:   m.id,
		Scenario:  m.scenario,
		Mode:      m.mode,
		Seed:      m.seed,
		Army:      m.setup.Army,
		Player1:   m.sessions[0].ID(),
		Player2:   m.sessions[1].ID(),
		Reason:    reason,
		Result:    res,
		Condition: cond,
		Winner:    res.Winner(),
		Turns:     snap.Turn.Turn,
		Survivors: survivors,
		StartedAt: m.startedAt,
		Duration:  time.Since(m.startedAt),
		Events:    m.history,
	}
	m.metrics.MatchFinished(ctx, res.String(), reason.String())
	m.logger.Info("match ended",
		"result", res,
		"condition", cond,
		"reason", reason,
		"turns", r.Turns,
		"survivors1", survivors[0],
		"survivors2", survivors[1],
	)
	return r
}

func (m *BattleMatch) monitorSessions() {
	select {
	case <-m.sessions[0].Done():
		m.PlayerDisconnected(m.sessions[0].ID())
	case <-m.sessions[1].Done():
		m.PlayerDisconnected(m.sessions[1].ID())
	case <-m.done:
	}
}

// Stop ends the match loop. Safe to call multiple times.
func (m *BattleMatch) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}
