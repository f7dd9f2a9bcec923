package ai

import (
	"testing"

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/pathfind"
	"github.com/vovakirdan/skirmish/internal/world"
)

var (
	swordsman = battle.UnitSpec{Type: "swordsman", Kind: battle.KindMelee, MoveRange: 2, AttackRange: 1.5}
	archer    = battle.UnitSpec{Type: "archer", Kind: battle.KindRanged, MoveRange: 2, AttackRange: 5}
)

func openField() *world.Map {
	return world.NewMap(20, 20, 1, 6, world.LayoutHorizontal)
}

func newGame(t *testing.T, m *world.Map) *battle.Game {
	t.Helper()
	return battle.NewGame(battle.Config{
		Rules:   battle.DefaultRules(),
		Terrain: m,
		Path:    pathfind.DefaultOptions(),
	})
}

func spawn(t *testing.T, g *battle.Game, side core.Side, pos core.Vec, spec battle.UnitSpec) battle.Unit {
	t.Helper()
	u, err := g.Spawn(side, pos, spec)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	return u
}

func start(t *testing.T, g *battle.Game, first core.Side) {
	t.Helper()
	if _, err := g.Start(first); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func TestDecideNotOurTurn(t *testing.T) {
	m := openField()
	g := newGame(t, m)
	spawn(t, g, core.Player1, core.V(3, 10), swordsman)
	spawn(t, g, core.Player2, core.V(17, 10), swordsman)
	start(t, g, core.Player1)

	in := NewCommander(core.Player2).Decide(g.Snapshot(), m)
	if in.Kind != core.ActionNone {
		t.Errorf("Decide() kind = %v, want none", in.Kind)
	}
}

func TestDecideAttacksNearestInRange(t *testing.T) {
	m := openField()
	g := newGame(t, m)
	a := spawn(t, g, core.Player1, core.V(5, 10), archer)
	spawn(t, g, core.Player2, core.V(9, 10), swordsman)
	near := spawn(t, g, core.Player2, core.V(7, 10), swordsman)
	start(t, g, core.Player1)

	in := NewCommander(core.Player1).Decide(g.Snapshot(), m)
	if in.Kind != core.ActionAttack || in.Unit != a.ID || in.Target != near.ID {
		t.Fatalf("Decide() = %+v, want attack %d -> %d", in, a.ID, near.ID)
	}
	if out := g.Apply(core.Player1, in); !out.Accepted {
		t.Errorf("attack rejected: %s", out.Reason)
	}
}

func TestDecideMovesWhenSightBlocked(t *testing.T) {
	m := openField()
	m.AddObstacle(world.Obstacle{Type: "wall", Box: core.BoxAt(core.V(7, 10), 1, 3)})
	g := newGame(t, m)
	a := spawn(t, g, core.Player1, core.V(5, 10), archer)
	spawn(t, g, core.Player2, core.V(9, 10), swordsman)
	start(t, g, core.Player1)

	in := NewCommander(core.Player1).Decide(g.Snapshot(), m)
	if in.Kind != core.ActionMove || in.Unit != a.ID {
		t.Fatalf("Decide() = %+v, want move of unit %d", in, a.ID)
	}
	out := g.Apply(core.Player1, in)
	if !out.Accepted {
		t.Fatalf("move rejected: %s", out.Reason)
	}
}

func TestDecideMovesTowardEnemy(t *testing.T) {
	m := openField()
	g := newGame(t, m)
	s := spawn(t, g, core.Player1, core.V(3, 10), swordsman)
	enemy := spawn(t, g, core.Player2, core.V(17, 10), swordsman)
	start(t, g, core.Player1)

	in := NewCommander(core.Player1).Decide(g.Snapshot(), m)
	if in.Kind != core.ActionMove || in.Unit != s.ID {
		t.Fatalf("Decide() = %+v, want move of unit %d", in, s.ID)
	}
	before := s.Pos.Dist(enemy.Pos)
	out := g.Apply(core.Player1, in)
	if !out.Accepted {
		t.Fatalf("move rejected: %s", out.Reason)
	}
	moved, _ := g.Unit(s.ID)
	if moved.Pos.Dist(enemy.Pos) >= before {
		t.Errorf("unit did not close distance: %v -> %v", before, moved.Pos.Dist(enemy.Pos))
	}
}

func TestDecideEndsTurnWhenSpent(t *testing.T) {
	m := openField()
	rules := battle.DefaultRules()
	rules.ActionsPerTurn = 3
	g := battle.NewGame(battle.Config{Rules: rules, Terrain: m, Path: pathfind.DefaultOptions()})
	s := spawn(t, g, core.Player1, core.V(3, 10), swordsman)
	spawn(t, g, core.Player2, core.V(17, 10), swordsman)
	start(t, g, core.Player1)

	if out := g.Move(core.Player1, s.ID, core.V(4, 10)); !out.Accepted {
		t.Fatalf("move rejected: %s", out.Reason)
	}
	in := NewCommander(core.Player1).Decide(g.Snapshot(), m)
	if in.Kind != core.ActionEndTurn {
		t.Errorf("Decide() kind = %v, want end_turn", in.Kind)
	}
}

func TestCommandersPlayToAResult(t *testing.T) {
	m := openField()
	g := newGame(t, m)
	spawn(t, g, core.Player1, core.V(3, 9), swordsman)
	spawn(t, g, core.Player1, core.V(3, 11), archer)
	spawn(t, g, core.Player2, core.V(17, 9), swordsman)
	spawn(t, g, core.Player2, core.V(17, 11), archer)
	start(t, g, core.Player1)

	cmds := map[core.Side]*Commander{
		core.Player1: NewCommander(core.Player1),
		core.Player2: NewCommander(core.Player2),
	}
	for i := 0; i < 1000 && !g.Over(); i++ {
		side := g.Turn().Side
		in := cmds[side].Decide(g.Snapshot(), m)
		if in.Kind == core.ActionNone {
			t.Fatalf("commander for %s had nothing to do on its turn", side)
		}
		if out := g.Apply(side, in); !out.Accepted {
			g.EndTurn(side)
		}
	}
	if !g.Over() {
		t.Fatal("battle did not finish")
	}
	res, cond := g.Result()
	if cond == "" {
		t.Errorf("result %s has no condition", res)
	}
}
