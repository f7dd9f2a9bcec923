package battle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/pathfind"
)

// ConditionForfeit names the end condition used when a side leaves.
const ConditionForfeit = "forfeit"

var (
	// ErrAlreadyStarted is returned when setup is attempted on a running game.
	ErrAlreadyStarted = errors.New("battle: game already started")
)

// Config holds what a Game needs at construction.
type Config struct {
	Rules   Rules
	Terrain pathfind.Terrain
	Path    pathfind.Options
	Sink    Sink // Optional
}

// Outcome is the definite result of one intent.
type Outcome struct {
	Accepted bool
	Reason   Rejection
	Path     pathfind.Result // Set for moves
	Events   []Event
}

func reject(r Rejection) Outcome {
	return Outcome{Reason: r}
}

// Game is one battle: the unit registry and turn state behind a single
// lock. All mutations go through its methods, one intent at a time.
type Game struct {
	mu sync.RWMutex

	rules   Rules
	conds   []Condition
	terrain pathfind.Terrain
	units   *Registry
	paths   *pathfind.Pathfinder
	sink    Sink

	turn       TurnState
	selections map[core.Side]core.UnitID
	seq        uint64
	started    bool
	result     Result
	endedBy    string
}

// NewGame creates a game with no units. Spawn armies, then call Start.
func NewGame(cfg Config) *Game {
	units := NewRegistry()
	return &Game{
		rules:      cfg.Rules,
		conds:      ConditionsFor(cfg.Rules),
		terrain:    cfg.Terrain,
		units:      units,
		paths:      pathfind.New(cfg.Terrain, units, cfg.Path),
		sink:       cfg.Sink,
		selections: make(map[core.Side]core.UnitID),
	}
}

// Spawn places a unit before the game starts.
func (g *Game) Spawn(owner core.Side, pos core.Vec, spec UnitSpec) (Unit, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return Unit{}, ErrAlreadyStarted
	}
	return g.units.Spawn(owner, pos, spec)
}

// Start begins play with first holding the turn. Victory is polled at once
// so that an empty army ends the game immediately.
func (g *Game) Start(first core.Side) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return nil, ErrAlreadyStarted
	}
	if !first.Valid() {
		return nil, fmt.Errorf("battle: invalid first side %s", first)
	}
	g.started = true
	g.turn = NewTurnState(first, g.rules)

	var out Outcome
	g.emit(&out, GameStarted{
		Seq:              g.nextSeq(),
		FirstSide:        first,
		Turn:             g.turn.Turn,
		ActionsRemaining: g.turn.ActionsRemaining,
	})
	g.evaluate(&out)
	return out.Events, nil
}

// Move asks for unit id to walk toward to on behalf of side.
func (g *Game) Move(side core.Side, id core.UnitID, to core.Vec) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rej := g.checkActor(side); rej != RejectNone {
		return reject(rej)
	}
	u, ok := g.units.Get(id)
	if !ok {
		return reject(RejectNotFound)
	}
	if !authorize(g.turn, side, u.Owner, core.ActionMove) {
		return reject(RejectUnauthorized)
	}
	if !to.Finite() {
		return reject(RejectNoPath)
	}

	res := g.paths.FindPath(u.Pos, to, u.MoveRange, id)
	if res.Empty() {
		return Outcome{Reason: RejectNoPath, Path: res}
	}
	final := res.Final(u.Pos)
	g.units.Move(id, final)

	out := Outcome{Accepted: true, Path: res}
	g.emit(&out, UnitMoved{Seq: g.nextSeq(), Unit: id, Path: res.Waypoints, Final: final})
	g.consume(&out, core.ActionMove)
	g.evaluate(&out)
	return out
}

// Attack asks for attacker to destroy target on behalf of side.
func (g *Game) Attack(side core.Side, attacker, target core.UnitID) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rej := g.checkActor(side); rej != RejectNone {
		return reject(rej)
	}
	a, ok := g.units.Get(attacker)
	if !ok {
		return reject(RejectNotFound)
	}
	if !authorize(g.turn, side, a.Owner, core.ActionAttack) {
		return reject(RejectUnauthorized)
	}
	t, ok := g.units.Get(target)
	if !ok {
		return reject(RejectNotFound)
	}
	if rej := checkAttack(a, t, g.terrain); rej != RejectNone {
		return reject(rej)
	}

	g.units.Remove(target)
	for s, sel := range g.selections {
		if sel == target {
			delete(g.selections, s)
		}
	}

	out := Outcome{Accepted: true}
	g.emit(&out, UnitDestroyed{Seq: g.nextSeq(), Unit: target, Attacker: attacker})
	g.consume(&out, core.ActionAttack)
	g.evaluate(&out)
	return out
}

// EndTurn skips the rest of side's turn.
func (g *Game) EndTurn(side core.Side) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rej := g.checkActor(side); rej != RejectNone {
		return reject(rej)
	}
	out := Outcome{Accepted: true}
	g.turn.EndTurn(g.rules)
	g.emitTurnChanged(&out, false)
	g.evaluate(&out)
	return out
}

// Apply dispatches an intent issued by side.
func (g *Game) Apply(side core.Side, in core.Intent) Outcome {
	switch in.Kind {
	case core.ActionMove:
		return g.Move(side, in.Unit, in.To)
	case core.ActionAttack:
		return g.Attack(side, in.Unit, in.Target)
	case core.ActionEndTurn:
		return g.EndTurn(side)
	default:
		return reject(RejectUnauthorized)
	}
}

// Tick runs the turn timer by dt. Expiry counts as the current side ending
// its turn. Ticks before start or after the end do nothing.
func (g *Game) Tick(dt time.Duration) []Event {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started || g.result != ResultNone {
		return nil
	}
	var out Outcome
	if g.turn.Tick(dt, g.rules) {
		g.emitTurnChanged(&out, true)
		g.evaluate(&out)
	}
	return out.Events
}

// Forfeit ends the game in the opponent's favour.
func (g *Game) Forfeit(side core.Side) []Event {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started || g.result != ResultNone || !side.Valid() {
		return nil
	}
	var out Outcome
	g.finish(&out, WinFor(side.Opponent()), ConditionForfeit)
	return out.Events
}

// EvaluateAll polls the victory conditions and commits their verdict.
func (g *Game) EvaluateAll() (Result, []Event) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started {
		return ResultNone, nil
	}
	var out Outcome
	g.evaluate(&out)
	return g.result, out.Events
}

// Authorize reports whether side may perform kind with unit id right now.
func (g *Game) Authorize(side core.Side, id core.UnitID, kind core.ActionKind) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.checkActor(side) != RejectNone {
		return false
	}
	if kind == core.ActionEndTurn {
		return authorize(g.turn, side, side, kind)
	}
	u, ok := g.units.Get(id)
	if !ok {
		return false
	}
	return authorize(g.turn, side, u.Owner, kind)
}

// PreviewPath runs the pathfinder without committing anything.
func (g *Game) PreviewPath(id core.UnitID, to core.Vec) pathfind.Result {
	g.mu.RLock()
	defer g.mu.RUnlock()

	u, ok := g.units.Get(id)
	if !ok || !to.Finite() {
		return pathfind.Result{}
	}
	return g.paths.FindPath(u.Pos, to, u.MoveRange, id)
}

// Select focuses one of side's own units for that observer.
func (g *Game) Select(side core.Side, id core.UnitID) Rejection {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, ok := g.units.Get(id)
	if !ok {
		return RejectNotFound
	}
	if u.Owner != side {
		return RejectUnauthorized
	}
	g.selections[side] = id
	return RejectNone
}

// Deselect clears side's focused unit.
func (g *Game) Deselect(side core.Side) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.selections, side)
}

// Selected returns side's focused unit, if any.
func (g *Game) Selected(side core.Side) (core.UnitID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.selections[side]
	return id, ok
}

// Unit returns a copy of a live unit.
func (g *Game) Unit(id core.UnitID) (Unit, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.units.Get(id)
}

// Units returns copies of all live units ordered by ID.
func (g *Game) Units() []Unit {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.units.All()
}

// Turn returns a copy of the turn state.
func (g *Game) Turn() TurnState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.turn
}

// Result returns the committed result and the condition that produced it.
func (g *Game) Result() (Result, string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.result, g.endedBy
}

// Over reports whether a result has been committed.
func (g *Game) Over() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.result != ResultNone
}

// Rules returns the rules the game was created with.
func (g *Game) Rules() Rules {
	return g.rules
}

// Terrain returns the static map the game runs on.
func (g *Game) Terrain() pathfind.Terrain {
	return g.terrain
}

// Snapshot is a consistent copy of the full game state.
type Snapshot struct {
	Seq       uint64 // Last event sequence number included
	Started   bool
	Turn      TurnState
	Units     []Unit
	Result    Result
	Condition string
}

// Snapshot copies the full state for initial sync of a mirror.
func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Snapshot{
		Seq:       g.seq,
		Started:   g.started,
		Turn:      g.turn,
		Units:     g.units.All(),
		Result:    g.result,
		Condition: g.endedBy,
	}
}

// checkActor rejects intents outside play or from a side not holding the turn.
// Must be called with the lock held.
func (g *Game) checkActor(side core.Side) Rejection {
	if !g.started || g.result != ResultNone {
		return RejectUnauthorized
	}
	if !side.Valid() || g.turn.Side != side {
		return RejectUnauthorized
	}
	return RejectNone
}

func (g *Game) nextSeq() uint64 {
	g.seq++
	return g.seq
}

func (g *Game) emit(out *Outcome, e Event) {
	out.Events = append(out.Events, e)
	if g.sink != nil {
		g.sink.Publish(e)
	}
}

func (g *Game) emitTurnChanged(out *Outcome, expired bool) {
	g.emit(out, TurnChanged{
		Seq:              g.nextSeq(),
		Side:             g.turn.Side,
		Turn:             g.turn.Turn,
		ActionsRemaining: g.turn.ActionsRemaining,
		Expired:          expired,
	})
}

func (g *Game) consume(out *Outcome, kind core.ActionKind) {
	if g.turn.ConsumeAction(kind, g.rules) {
		g.emitTurnChanged(out, false)
	}
}

func (g *Game) victoryState() VictoryState {
	return VictoryState{
		Turn:      g.turn.Turn,
		Player1:   g.units.Count(core.Player1),
		Player2:   g.units.Count(core.Player2),
		Unbounded: g.turn.Unbounded,
	}
}

func (g *Game) evaluate(out *Outcome) {
	if g.result != ResultNone {
		return
	}
	v := Evaluate(g.conds, g.victoryState())
	if v.EnableUnbounded && g.turn.LatchUnbounded() {
		g.emit(out, UnboundedMovementEnabled{Seq: g.nextSeq(), Turn: g.turn.Turn})
	}
	if v.Result != ResultNone {
		g.finish(out, v.Result, v.Condition)
	}
}

func (g *Game) finish(out *Outcome, r Result, condition string) {
	g.result = r
	g.endedBy = condition
	g.emit(out, GameEnded{Seq: g.nextSeq(), Result: r, Condition: condition, Turn: g.turn.Turn})
}
