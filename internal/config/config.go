// Package config provides YAML-based battle configuration loading, rule
// presets and environment overrides.
package config

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/world"
)

// BattleConfig contains all configuration for a battle.
type BattleConfig struct {
	Rules  RulesConfig           `yaml:"rules"`
	Map    MapConfig             `yaml:"map"`
	Units  map[string]UnitConfig `yaml:"units"`
	Armies []ArmyConfig          `yaml:"armies"`
	Army   string                `yaml:"army"` // Army name, or "random"
}

// RulesConfig defines turn pacing and victory conditions.
type RulesConfig struct {
	TurnDuration       time.Duration   `yaml:"turn_duration"`
	ActionsPerTurn     int             `yaml:"actions_per_turn"`
	FirstSide          string          `yaml:"first_side"` // "random", "player1" or "player2"
	UnitCountCondition bool            `yaml:"unit_count_condition"`
	UnboundedMovement  ThresholdConfig `yaml:"unbounded_movement"`
	Stalemate          ThresholdConfig `yaml:"stalemate"`
}

// ThresholdConfig is a turn-triggered rule.
type ThresholdConfig struct {
	Enabled bool `yaml:"enabled"`
	Turn    int  `yaml:"turn"`
}

// MapConfig defines map size, spawn zones and obstacles.
type MapConfig struct {
	Width         float64          `yaml:"width"`
	Height        float64          `yaml:"height"`
	Margin        float64          `yaml:"margin"`
	SpawnZoneSize float64          `yaml:"spawn_zone_size"`
	UnitSpacing   float64          `yaml:"unit_spacing"`
	Layout        string           `yaml:"layout"`
	Obstacles     []ObstacleConfig `yaml:"obstacles"`
}

// ObstacleConfig defines one obstacle kind.
type ObstacleConfig struct {
	Type     string  `yaml:"type"`
	Width    float64 `yaml:"width"`
	Depth    float64 `yaml:"depth"`
	MinCount int     `yaml:"min_count"`
	MaxCount int     `yaml:"max_count"`
}

// UnitConfig defines one unit type's stats.
type UnitConfig struct {
	Type        string  `yaml:"type"` // "melee" or "ranged"
	MoveRange   float64 `yaml:"move_range"`
	AttackRange float64 `yaml:"attack_range"`
}

// ArmyConfig is a named army composition.
type ArmyConfig struct {
	Name  string     `yaml:"name"`
	Slots []ArmySlot `yaml:"slots"`
}

// ArmySlot is a number of units of one type.
type ArmySlot struct {
	Unit  string `yaml:"unit"`
	Count int    `yaml:"count"`
}

// Validate checks cross references and ranges.
func (c BattleConfig) Validate() error {
	if c.Rules.ActionsPerTurn < 1 {
		return fmt.Errorf("config: actions_per_turn must be at least 1, got %d", c.Rules.ActionsPerTurn)
	}
	if c.Rules.TurnDuration <= 0 {
		return fmt.Errorf("config: turn_duration must be positive, got %s", c.Rules.TurnDuration)
	}
	if c.Rules.UnboundedMovement.Enabled && c.Rules.UnboundedMovement.Turn < 1 {
		return fmt.Errorf("config: unbounded_movement.turn must be at least 1, got %d", c.Rules.UnboundedMovement.Turn)
	}
	if c.Rules.Stalemate.Enabled && c.Rules.Stalemate.Turn < 1 {
		return fmt.Errorf("config: stalemate.turn must be at least 1, got %d", c.Rules.Stalemate.Turn)
	}
	switch c.Rules.FirstSide {
	case "", "random", "player1", "player2":
	default:
		return fmt.Errorf("config: unknown first_side %q", c.Rules.FirstSide)
	}
	if c.Map.UnitSpacing <= 0 {
		return fmt.Errorf("config: unit_spacing must be positive, got %g", c.Map.UnitSpacing)
	}
	if err := c.MapSpec().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	for name, u := range c.Units {
		if _, err := battle.ParseUnitKind(u.Type); err != nil {
			return fmt.Errorf("config: unit %q: %w", name, err)
		}
		if u.MoveRange <= 0 || u.AttackRange <= 0 {
			return fmt.Errorf("config: unit %q needs positive ranges", name)
		}
	}

	if len(c.Armies) == 0 {
		return fmt.Errorf("config: no armies defined")
	}
	for _, a := range c.Armies {
		if len(a.Slots) == 0 {
			return fmt.Errorf("config: army %q has no slots", a.Name)
		}
		for _, s := range a.Slots {
			if _, ok := c.Units[s.Unit]; !ok {
				return fmt.Errorf("config: army %q references unknown unit %q", a.Name, s.Unit)
			}
			if s.Count < 1 {
				return fmt.Errorf("config: army %q slot %q has count %d", a.Name, s.Unit, s.Count)
			}
		}
	}
	if c.Army != "" && c.Army != "random" {
		if _, ok := c.findArmy(c.Army); !ok {
			return fmt.Errorf("config: unknown army %q", c.Army)
		}
	}
	return nil
}

// BattleRules converts the rules section for the simulation.
func (c BattleConfig) BattleRules() battle.Rules {
	return battle.Rules{
		ActionsPerTurn:        c.Rules.ActionsPerTurn,
		TurnDuration:          c.Rules.TurnDuration,
		UnitCountCondition:    c.Rules.UnitCountCondition,
		UnboundedMovement:     c.Rules.UnboundedMovement.Enabled,
		UnboundedMovementTurn: c.Rules.UnboundedMovement.Turn,
		Stalemate:             c.Rules.Stalemate.Enabled,
		StalemateTurn:         c.Rules.Stalemate.Turn,
	}
}

// MapSpec converts the map section for the generator.
func (c BattleConfig) MapSpec() world.Spec {
	spec := world.Spec{
		Width:         c.Map.Width,
		Height:        c.Map.Height,
		Margin:        c.Map.Margin,
		SpawnZoneSize: c.Map.SpawnZoneSize,
		Layout:        c.Map.Layout,
	}
	for _, o := range c.Map.Obstacles {
		spec.Obstacles = append(spec.Obstacles, world.ObstacleSpec{
			Type:     o.Type,
			Width:    o.Width,
			Depth:    o.Depth,
			MinCount: o.MinCount,
			MaxCount: o.MaxCount,
		})
	}
	return spec
}

// UnitSpec resolves a unit type by name.
func (c BattleConfig) UnitSpec(name string) (battle.UnitSpec, error) {
	u, ok := c.Units[name]
	if !ok {
		return battle.UnitSpec{}, fmt.Errorf("config: unknown unit %q", name)
	}
	kind, err := battle.ParseUnitKind(u.Type)
	if err != nil {
		return battle.UnitSpec{}, fmt.Errorf("config: unit %q: %w", name, err)
	}
	return battle.UnitSpec{
		Type:        name,
		Kind:        kind,
		MoveRange:   u.MoveRange,
		AttackRange: u.AttackRange,
	}, nil
}

// ResolveArmy picks the configured army (or a random one) and expands its
// slots into one spec per unit.
func (c BattleConfig) ResolveArmy(rng *rand.Rand) (string, []battle.UnitSpec, error) {
	if len(c.Armies) == 0 {
		return "", nil, fmt.Errorf("config: no armies defined")
	}

	var army ArmyConfig
	if c.Army == "" || c.Army == "random" {
		army = c.Armies[rng.Intn(len(c.Armies))]
	} else {
		a, ok := c.findArmy(c.Army)
		if !ok {
			return "", nil, fmt.Errorf("config: unknown army %q", c.Army)
		}
		army = a
	}

	var specs []battle.UnitSpec
	for _, slot := range army.Slots {
		spec, err := c.UnitSpec(slot.Unit)
		if err != nil {
			return "", nil, err
		}
		for i := 0; i < slot.Count; i++ {
			specs = append(specs, spec)
		}
	}
	return army.Name, specs, nil
}

// PickFirstSide returns the configured first side, or a random one.
func (c BattleConfig) PickFirstSide(rng *rand.Rand) core.Side {
	side, err := core.ParseSide(c.Rules.FirstSide)
	if err == nil && side.Valid() {
		return side
	}
	return core.Sides[rng.Intn(len(core.Sides))]
}

// UnitNames returns the configured unit type names in sorted order.
func (c BattleConfig) UnitNames() []string {
	names := make([]string, 0, len(c.Units))
	for name := range c.Units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c BattleConfig) findArmy(name string) (ArmyConfig, bool) {
	for _, a := range c.Armies {
		if a.Name == name {
			return a, true
		}
	}
	return ArmyConfig{}, false
}
