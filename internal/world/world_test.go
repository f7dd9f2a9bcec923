package world

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/core"
)

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(DefaultSpec(), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	b, err := Generate(DefaultSpec(), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different maps")
	}
}

func TestGenerateObstaclePlacement(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		m, err := Generate(DefaultSpec(), rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("seed %d: Generate() error: %v", seed, err)
		}

		for i, o := range m.Obstacles {
			c := o.Box.Center()
			for _, side := range core.Sides {
				if c.Dist(m.SpawnCenter(side)) <= m.SpawnZoneSize+o.Box.Radius() {
					t.Errorf("seed %d: obstacle %d at %v intrudes on %s spawn zone", seed, i, c, side)
				}
			}
			if o.Box.MinX < 0 || o.Box.MinZ < 0 || o.Box.MaxX > m.Width || o.Box.MaxZ > m.Height {
				t.Errorf("seed %d: obstacle %d %+v leaves the map", seed, i, o.Box)
			}
			for j := i + 1; j < len(m.Obstacles); j++ {
				if o.Box.Intersects(m.Obstacles[j].Box) {
					t.Errorf("seed %d: obstacles %d and %d overlap", seed, i, j)
				}
			}
		}
	}
}

func TestGenerateFixedLayout(t *testing.T) {
	spec := DefaultSpec()
	spec.Layout = "vertical"
	spec.Obstacles = nil

	m, err := Generate(spec, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if m.Layout != LayoutVertical {
		t.Errorf("Layout = %v, expected vertical", m.Layout)
	}
	if got := m.SpawnCenter(core.Player1); got != core.V(16, 5) {
		t.Errorf("player1 spawn = %v, expected (16,5)", got)
	}
	if got := m.SpawnCenter(core.Player2); got != core.V(16, 27) {
		t.Errorf("player2 spawn = %v, expected (16,27)", got)
	}
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Spec)
		wantErr bool
	}{
		{"default", func(*Spec) {}, false},
		{"too small", func(s *Spec) { s.Width = 2 }, true},
		{"bad layout", func(s *Spec) { s.Layout = "spiral" }, true},
		{"zero spawn zone", func(s *Spec) { s.SpawnZoneSize = 0 }, true},
		{"inverted counts", func(s *Spec) { s.Obstacles[0].MaxCount = 0 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := DefaultSpec()
			tc.mutate(&spec)
			if err := spec.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestMapQueries(t *testing.T) {
	m := NewMap(10, 10, 1, 2, LayoutHorizontal)
	m.AddObstacle(Obstacle{Type: "wall", Box: core.Box{MinX: 4, MinZ: 2, MaxX: 5, MaxZ: 8}})

	tests := []struct {
		name     string
		got      bool
		expected bool
	}{
		{"inside bounds", m.IsInsideMapBounds(core.V(1, 9)), true},
		{"inside margin", m.IsInsideMapBounds(core.V(0.5, 5)), false},
		{"walkable open ground", m.IsWalkable(core.V(2, 5)), true},
		{"walkable inside wall", m.IsWalkable(core.V(4.5, 5)), false},
		{"ray through wall", m.RaycastBlocked(core.V(2, 5), core.V(7, 5)), true},
		{"ray past wall", m.RaycastBlocked(core.V(2, 9), core.V(7, 9)), false},
	}

	for _, tc := range tests {
		if tc.got != tc.expected {
			t.Errorf("%s: got %v, expected %v", tc.name, tc.got, tc.expected)
		}
	}
}

func TestSpawnArmy(t *testing.T) {
	spec := DefaultSpec()
	spec.Layout = "horizontal"
	rng := rand.New(rand.NewSource(3))
	m, err := Generate(spec, rng)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	g := battle.NewGame(battle.Config{Rules: battle.DefaultRules(), Terrain: m})
	unit := battle.UnitSpec{Type: "soldier", MoveRange: 2, AttackRange: 5}
	army := make([]battle.UnitSpec, 8)
	for i := range army {
		army[i] = unit
	}

	for _, side := range core.Sides {
		placed, err := SpawnArmy(g, m, side, army, 1.5, rng)
		if err != nil {
			t.Fatalf("SpawnArmy(%s) error: %v", side, err)
		}
		if len(placed) != len(army) {
			t.Fatalf("placed %d units, expected %d", len(placed), len(army))
		}
		for _, u := range placed {
			if u.Owner != side {
				t.Errorf("unit %d owner %s, expected %s", u.ID, u.Owner, side)
			}
			if !m.IsInsideMapBounds(u.Pos) || !m.IsWalkable(u.Pos) {
				t.Errorf("unit %d spawned on invalid ground %v", u.ID, u.Pos)
			}
			if u.Pos.Dist(m.SpawnCenter(side)) > m.SpawnZoneSize {
				t.Errorf("unit %d at %v strays from spawn centre", u.ID, u.Pos)
			}
		}
	}

	all := g.Units()
	if len(all) != 16 {
		t.Fatalf("game has %d units, expected 16", len(all))
	}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			if all[i].Pos.Dist(all[j].Pos) < 1.15 {
				t.Errorf("units %d and %d spawned too close", all[i].ID, all[j].ID)
			}
		}
	}
}

func TestSpawnArmyDoesNotFit(t *testing.T) {
	m := NewMap(4, 4, 1, 2, LayoutHorizontal)
	g := battle.NewGame(battle.Config{Rules: battle.DefaultRules(), Terrain: m})
	army := make([]battle.UnitSpec, 30)

	placed, err := SpawnArmy(g, m, core.Player1, army, 1.5, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("expected an error when the army cannot fit")
	}
	if len(placed) >= len(army) {
		t.Errorf("placed %d units on a tiny map", len(placed))
	}
}
