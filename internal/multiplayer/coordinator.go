package multiplayer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/config"
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/registry"
	"github.com/vovakirdan/skirmish/internal/telemetry"
)

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	TickRate int                 // Host loop rate (Hz)
	Battle   config.BattleConfig // Rules, map and armies for new matches
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		TickRate: core.DefaultConfig().TickRate,
		Battle:   config.DefaultBattleConfig(),
	}
}

// MatchResultSaver is an interface for saving match results.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID        string
	Scenario       string
	Mode           string
	Seed           int64
	Army           string
	Player1Session string
	Player2Session string
	Result         string
	Condition      string
	WinnerSession  string
	EndReason      string
	Turns          int
	Survivors1     int
	Survivors2     int
	StartedAt      time.Time
	DurationMs     int64
	Events         []battle.Event
}

// Coordinator creates and tracks concurrent matches.
type Coordinator struct {
	config      CoordinatorConfig
	sessions    *SessionRegistry
	resultSaver MatchResultSaver // Optional, can be nil
	logger      *log.Logger
	metrics     *telemetry.Metrics

	mu           sync.RWMutex
	matches      map[MatchID]*BattleMatch
	sessionMatch map[SessionID]MatchID
	cpus         map[MatchID][]*CPUSession // CPU seats the coordinator owns

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	msgChan chan CoordinatorMessage
	done    chan struct{}
}

// NewCoordinator creates a new coordinator. A nil logger discards output.
func NewCoordinator(cfg CoordinatorConfig, sessions *SessionRegistry, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		config:       cfg,
		sessions:     sessions,
		logger:       logger.WithPrefix("coordinator"),
		matches:      make(map[MatchID]*BattleMatch),
		sessionMatch: make(map[SessionID]MatchID),
		cpus:         make(map[MatchID][]*CPUSession),
		ctx:          ctx,
		cancel:       cancel,
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// SetMetrics sets the optional metric instruments and reports the number
// of hosted matches through their gauge.
func (c *Coordinator) SetMetrics(m *telemetry.Metrics) error {
	c.metrics = m
	return m.ObserveActive(c.MatchCount)
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
}

// Stop cancels running matches, waits for them to wind down and shuts the
// coordinator down.
func (c *Coordinator) Stop() {
	c.cancel()
	c.wg.Wait()
	close(c.done)
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// processMessages handles incoming messages.
func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case StartMatchMsg:
		c.handleStartMatch(m)
	case IntentMsg:
		c.handleIntent(m)
	case SelectUnitMsg:
		c.handleSelectUnit(m)
	case LeaveMatchMsg:
		c.handleLeaveMatch(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	}
}

func (c *Coordinator) handleStartMatch(msg StartMatchMsg) {
	if c.ctx.Err() != nil {
		return
	}
	seats := [2]SessionID{msg.Player1, msg.Player2}
	if msg.Player1 != "" && msg.Player1 == msg.Player2 {
		c.sendError([2]SessionID{msg.Player1}, fmt.Sprintf("session %s cannot take both seats", msg.Player1))
		return
	}
	var handles [2]SessionHandle
	var cpus []*CPUSession

	c.mu.Lock()
	for i, id := range seats {
		if id == "" {
			continue
		}
		s, ok := c.sessions.Get(id)
		if !ok {
			c.mu.Unlock()
			c.sendError(seats, fmt.Sprintf("unknown session %s", id))
			return
		}
		if _, busy := c.sessionMatch[id]; busy {
			c.mu.Unlock()
			c.sendError(seats, fmt.Sprintf("session %s is already in a match", id))
			return
		}
		handles[i] = s
	}
	c.mu.Unlock()

	b, err := c.setupBattle(msg)
	if err != nil {
		c.logger.Warn("match setup failed", "scenario", msg.Scenario, "err", err)
		c.sendError(seats, err.Error())
		return
	}

	matchID := NewMatchID()
	for i := range handles {
		if handles[i] != nil {
			continue
		}
		cpu := NewCPUSession(SessionID(fmt.Sprintf("cpu-%d-%s", i+1, matchID)), c.logger)
		handles[i] = cpu
		cpus = append(cpus, cpu)
	}

	match := NewBattleMatch(MatchConfig{
		ID:       matchID,
		Scenario: msg.Scenario,
		Mode:     msg.Mode,
		Seed:     msg.Seed,
		Battle:   b,
		Player1:  handles[0],
		Player2:  handles[1],
		TickRate: c.config.TickRate,
		Logger:   c.logger,
		Metrics:  c.metrics,
	})

	c.mu.Lock()
	c.matches[matchID] = match
	for _, h := range handles {
		c.sessionMatch[h.ID()] = matchID
	}
	c.cpus[matchID] = cpus
	c.mu.Unlock()

	for _, cpu := range cpus {
		c.wg.Add(1)
		go func(cpu *CPUSession) {
			defer c.wg.Done()
			if _, err := cpu.Play(c.ctx, c.Send); err != nil && err != ErrSessionClosed && c.ctx.Err() == nil {
				c.logger.Warn("cpu stopped", "session", cpu.ID(), "err", err)
			}
		}(cpu)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		result := match.Run(c.ctx)
		c.handleMatchEnded(match, result)
	}()
}

func (c *Coordinator) setupBattle(msg StartMatchMsg) (*registry.Battle, error) {
	sc, err := registry.Get(msg.Scenario)
	if err != nil {
		return nil, err
	}
	rt := core.RuntimeConfig{TickRate: c.config.TickRate, Seed: msg.Seed}
	return sc.Setup(c.config.Battle, rt, nil)
}

func (c *Coordinator) sendError(seats [2]SessionID, message string) {
	for _, id := range seats {
		if id == "" {
			continue
		}
		if s, ok := c.sessions.Get(id); ok {
			s.Send(MatchErrorEvent{Message: message})
		}
	}
}

func (c *Coordinator) handleMatchEnded(match *BattleMatch, result MatchResult) {
	c.save(result)

	c.mu.Lock()
	delete(c.matches, match.ID())
	for _, side := range core.Sides {
		if s, ok := match.Session(side); ok {
			delete(c.sessionMatch, s.ID())
		}
	}
	cpus := c.cpus[match.ID()]
	delete(c.cpus, match.ID())
	c.mu.Unlock()

	endEvent := MatchEndedEvent{
		MatchID:   match.ID(),
		Reason:    result.Reason,
		Result:    result.Result,
		Condition: result.Condition,
		Winner:    result.Winner,
		Turns:     result.Turns,
	}
	for _, side := range core.Sides {
		if s, ok := match.Session(side); ok {
			s.Send(endEvent)
		}
	}
	for _, cpu := range cpus {
		cpu.Close()
	}
}

// save persists a finished match. Errors are logged, not returned: the
// match has already ended for both sides.
func (c *Coordinator) save(result MatchResult) {
	if c.resultSaver == nil {
		return
	}
	winnerSession := ""
	switch result.Winner {
	case core.Player1:
		winnerSession = string(result.Player1)
	case core.Player2:
		winnerSession = string(result.Player2)
	}
	data := MatchResultData{
		MatchID:        string(result.MatchID),
		Scenario:       result.Scenario,
		Mode:           result.Mode.String(),
		Seed:           result.Seed,
		Army:           result.Army,
		Player1Session: string(result.Player1),
		Player2Session: string(result.Player2),
		Result:         result.Result.String(),
		Condition:      result.Condition,
		WinnerSession:  winnerSession,
		EndReason:      result.Reason.String(),
		Turns:          result.Turns,
		Survivors1:     result.Survivors[0],
		Survivors2:     result.Survivors[1],
		StartedAt:      result.StartedAt,
		DurationMs:     result.Duration.Milliseconds(),
		Events:         result.Events,
	}
	if err := c.resultSaver.SaveMatchResult(data); err != nil {
		c.logger.Error("save match result", "match", result.MatchID, "err", err)
	}
}

func (c *Coordinator) handleIntent(msg IntentMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if !exists {
		return
	}
	match.SubmitIntent(msg.SessionID, msg.Intent)
}

func (c *Coordinator) handleSelectUnit(msg SelectUnitMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if !exists {
		return
	}
	if rej := match.Select(msg.SessionID, msg.Unit); rej != battle.RejectNone {
		c.logger.Debug("selection refused", "session", msg.SessionID, "unit", msg.Unit, "reason", rej)
	}
}

func (c *Coordinator) handleLeaveMatch(msg LeaveMatchMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if !exists {
		return
	}
	match.PlayerDisconnected(msg.SessionID)
}

func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if matchID, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		if match, exists := c.matches[matchID]; exists {
			match.PlayerDisconnected(msg.SessionID)
		}
	}
}

// GetMatch returns a match by ID (for testing/debug).
func (c *Coordinator) GetMatch(id MatchID) (*BattleMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[id]
	return m, ok
}

// MatchOf returns the match a session is playing in.
func (c *Coordinator) MatchOf(id SessionID) (MatchID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.sessionMatch[id]
	return m, ok
}

// MatchCount returns the number of active matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}
