package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/battle.yaml
var defaultBattleYAML []byte

// DefaultBattleConfig returns the default battle configuration.
func DefaultBattleConfig() BattleConfig {
	return BattleConfig{
		Rules: RulesConfig{
			TurnDuration:       60 * time.Second,
			ActionsPerTurn:     2,
			FirstSide:          "random",
			UnitCountCondition: true,
			UnboundedMovement: ThresholdConfig{
				Enabled: true,
				Turn:    15,
			},
			Stalemate: ThresholdConfig{
				Enabled: true,
				Turn:    30,
			},
		},
		Map: MapConfig{
			Width:         32,
			Height:        32,
			Margin:        1,
			SpawnZoneSize: 10,
			UnitSpacing:   1.5,
			Layout:        "random",
			Obstacles: []ObstacleConfig{
				{Type: "rock", Width: 1.5, Depth: 1.5, MinCount: 3, MaxCount: 6},
				{Type: "wall", Width: 4, Depth: 1, MinCount: 1, MaxCount: 3},
			},
		},
		Units: map[string]UnitConfig{
			"swordsman": {Type: "melee", MoveRange: 2, AttackRange: 1.5},
			"archer":    {Type: "ranged", MoveRange: 2, AttackRange: 5},
		},
		Armies: []ArmyConfig{
			{
				Name: "vanguard",
				Slots: []ArmySlot{
					{Unit: "swordsman", Count: 4},
					{Unit: "archer", Count: 2},
				},
			},
			{
				Name: "skirmishers",
				Slots: []ArmySlot{
					{Unit: "swordsman", Count: 2},
					{Unit: "archer", Count: 4},
				},
			},
		},
		Army: "random",
	}
}

// DefaultYAML returns the embedded default battle YAML.
func DefaultYAML() []byte {
	return defaultBattleYAML
}
