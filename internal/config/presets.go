package config

import (
	"fmt"
	"time"
)

// RulesPreset represents a named pacing profile.
type RulesPreset string

const (
	PresetBlitz    RulesPreset = "blitz"
	PresetStandard RulesPreset = "standard"
	PresetMarathon RulesPreset = "marathon"
)

// Presets lists the presets in display order.
var Presets = []RulesPreset{PresetBlitz, PresetStandard, PresetMarathon}

// ParsePreset converts a flag or env value into a preset.
func ParsePreset(name string) (RulesPreset, error) {
	switch p := RulesPreset(name); p {
	case PresetBlitz, PresetStandard, PresetMarathon:
		return p, nil
	default:
		return "", fmt.Errorf("unknown rules preset %q (want blitz, standard or marathon)", name)
	}
}

// ApplyRulesPreset modifies the rules based on a preset.
func ApplyRulesPreset(cfg *BattleConfig, preset RulesPreset) {
	switch preset {
	case PresetBlitz:
		cfg.Rules.TurnDuration = 20 * time.Second
		cfg.Rules.UnboundedMovement.Turn = 8
		cfg.Rules.Stalemate.Turn = 15
	case PresetStandard:
		cfg.Rules.TurnDuration = 60 * time.Second
		cfg.Rules.UnboundedMovement.Turn = 15
		cfg.Rules.Stalemate.Turn = 30
	case PresetMarathon:
		cfg.Rules.TurnDuration = 120 * time.Second
		cfg.Rules.UnboundedMovement.Turn = 25
		cfg.Rules.Stalemate.Turn = 50
	}
}
