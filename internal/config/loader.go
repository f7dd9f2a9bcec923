package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const battleFile = "battle.yaml"

// LoadBattle loads battle configuration.
// Search order: customPath -> ~/.skirmish/configs/battle.yaml -> ./configs/battle.yaml -> embedded default
//
// Files are decoded over DefaultBattleConfig, so a partial file only
// overrides the keys it sets.
func LoadBattle(customPath string) (BattleConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return BattleConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := ParseBattle(data)
		if err != nil {
			return BattleConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(battleFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := ParseBattle(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", battleFile)); err == nil {
		if cfg, err := ParseBattle(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := ParseBattle(defaultBattleYAML)
	if err != nil {
		return DefaultBattleConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// ParseBattle decodes YAML over the defaults and validates the result.
func ParseBattle(data []byte) (BattleConfig, error) {
	cfg := DefaultBattleConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return BattleConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return BattleConfig{}, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c BattleConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".skirmish", "configs", filename)
}
