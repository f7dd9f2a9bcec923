// Package scenarios contains the built-in battle scenarios.
// Importing it for side effects registers them with the registry.
package scenarios

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/config"
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/pathfind"
	"github.com/vovakirdan/skirmish/internal/registry"
	"github.com/vovakirdan/skirmish/internal/world"
)

func init() {
	registry.Register(skirmish{})
	registry.Register(duel{})
	registry.Register(openField{})
}

// mapFunc builds the scenario's map from config.
type mapFunc func(cfg config.BattleConfig, rng *rand.Rand) (*world.Map, error)

// build generates the map, spawns both armies and picks the first side,
// all from one seeded RNG.
func build(cfg config.BattleConfig, rt core.RuntimeConfig, sink battle.Sink, makeMap mapFunc) (*registry.Battle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(rt.Seed))

	m, err := makeMap(cfg, rng)
	if err != nil {
		return nil, err
	}

	armyName, army, err := cfg.ResolveArmy(rng)
	if err != nil {
		return nil, err
	}

	g := battle.NewGame(battle.Config{
		Rules:   cfg.BattleRules(),
		Terrain: m,
		Path:    pathfind.DefaultOptions(),
		Sink:    sink,
	})
	for _, side := range core.Sides {
		if _, err := world.SpawnArmy(g, m, side, army, cfg.Map.UnitSpacing, rng); err != nil {
			return nil, fmt.Errorf("scenarios: spawn %s: %w", side, err)
		}
	}

	return &registry.Battle{
		Game:      g,
		Map:       m,
		FirstSide: cfg.PickFirstSide(rng),
		Army:      armyName,
	}, nil
}

// skirmish is the standard generated battlefield.
type skirmish struct{}

func (skirmish) ID() string    { return "skirmish" }
func (skirmish) Title() string { return "Skirmish" }
func (skirmish) Description() string {
	return "Generated battlefield with scattered obstacles"
}

func (skirmish) Setup(cfg config.BattleConfig, rt core.RuntimeConfig, sink battle.Sink) (*registry.Battle, error) {
	return build(cfg, rt, sink, func(cfg config.BattleConfig, rng *rand.Rand) (*world.Map, error) {
		return world.Generate(cfg.MapSpec(), rng)
	})
}

// openField keeps the configured size but places no obstacles.
type openField struct{}

func (openField) ID() string    { return "open-field" }
func (openField) Title() string { return "Open Field" }
func (openField) Description() string {
	return "Obstacle-free battlefield, every shot has line of sight"
}

func (openField) Setup(cfg config.BattleConfig, rt core.RuntimeConfig, sink battle.Sink) (*registry.Battle, error) {
	return build(cfg, rt, sink, func(cfg config.BattleConfig, rng *rand.Rand) (*world.Map, error) {
		spec := cfg.MapSpec()
		spec.Obstacles = nil
		return world.Generate(spec, rng)
	})
}

// duel is a small fixed arena split by a wall with gaps at both ends.
type duel struct{}

const duelSize = 20

func (duel) ID() string    { return "duel" }
func (duel) Title() string { return "Duel" }
func (duel) Description() string {
	return "Small fixed arena with a central wall"
}

func (duel) Setup(cfg config.BattleConfig, rt core.RuntimeConfig, sink battle.Sink) (*registry.Battle, error) {
	return build(cfg, rt, sink, func(cfg config.BattleConfig, _ *rand.Rand) (*world.Map, error) {
		m := world.NewMap(duelSize, duelSize, 1, 6, world.LayoutHorizontal)
		m.AddObstacle(world.Obstacle{
			Type: "wall",
			Box:  core.BoxAt(core.V(duelSize/2, duelSize/2), 1, 10),
		})
		m.AddObstacle(world.Obstacle{
			Type: "rock",
			Box:  core.BoxAt(core.V(duelSize/2-4, 4), 1.5, 1.5),
		})
		m.AddObstacle(world.Obstacle{
			Type: "rock",
			Box:  core.BoxAt(core.V(duelSize/2+4, duelSize-4), 1.5, 1.5),
		})
		return m, nil
	})
}
