package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds runtime overrides read from the environment.
type Env struct {
	DBPath   string `env:"SKIRMISH_DB" envDefault:"~/.skirmish/battles.db"`
	LogLevel string `env:"SKIRMISH_LOG_LEVEL" envDefault:"info"`
	TickRate int    `env:"SKIRMISH_TICK_RATE" envDefault:"20"`
	Seed     int64  `env:"SKIRMISH_SEED"`
	Preset   string `env:"SKIRMISH_PRESET"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
