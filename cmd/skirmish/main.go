// skirmish hosts turn-based tactical battles between two sides.
//
// Usage:
//
//	skirmish scenarios            - List available scenarios
//	skirmish simulate <scenario>  - Run a CPU vs CPU battle and record it
//	skirmish history              - Show recorded battles and per-scenario stats
//	skirmish replay <match-id>    - Step through a recorded battle
//	skirmish rules                - Print the effective battle configuration
//
// Global flags:
//
//	--seed <value>      - RNG seed for map generation (0 = random based on time)
//	--tick-rate <hz>    - Host timer rate (default: 20)
//	--db <path>         - Battle database (default: ~/.skirmish/battles.db)
//	--config <path>     - Battle YAML file
//	--preset <name>     - Rules preset: blitz, standard or marathon
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/skirmish/internal/config"

	// Import scenarios to register them
	_ "github.com/vovakirdan/skirmish/internal/scenarios"
)

var (
	// Global flags
	flagSeed     int64
	flagTickRate int
	flagDBPath   string
	flagConfig   string
	flagPreset   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "skirmish",
	Short: "Skirmish - Turn-based tactical battles",
	Long: `Skirmish hosts turn-based tactical battles between two sides on a
generated battlefield. Each side spends a small action budget per turn
moving and attacking, and the host replicates every accepted action.

Available commands:
  scenarios - Show all available scenarios
  simulate  - Run a CPU vs CPU battle and record it
  history   - View recorded battles
  replay    - Step through a recorded battle
  rules     - Print the effective battle configuration

Environment:
  SKIRMISH_DB, SKIRMISH_LOG_LEVEL, SKIRMISH_TICK_RATE, SKIRMISH_SEED and
  SKIRMISH_PRESET are used for any flag not given on the command line.

Examples:
  skirmish scenarios
  skirmish simulate duel --seed 7
  skirmish history
  skirmish replay 3f2a
  skirmish rules --preset blitz`,
	SilenceUsage:      true,
	PersistentPreRunE: applyEnv,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().IntVar(&flagTickRate, "tick-rate", 20, "Host timer rate (ticks per second)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.skirmish/battles.db", "Path to battle database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to battle config YAML")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Rules preset (blitz, standard, marathon)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(rulesCmd)
}

// applyEnv fills every flag left at its default from the environment.
func applyEnv(cmd *cobra.Command, _ []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("db") {
		flagDBPath = env.DBPath
	}
	if !flags.Changed("log-level") {
		flagLogLevel = env.LogLevel
	}
	if !flags.Changed("tick-rate") {
		flagTickRate = env.TickRate
	}
	if !flags.Changed("seed") {
		flagSeed = env.Seed
	}
	if !flags.Changed("preset") {
		flagPreset = env.Preset
	}
	return nil
}

// newLogger creates the process logger at the configured level.
func newLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "skirmish",
		Level:           level,
	}), nil
}

// loadBattleConfig loads the battle YAML and applies the rules preset.
func loadBattleConfig() (config.BattleConfig, error) {
	cfg, err := config.LoadBattle(flagConfig)
	if err != nil {
		return config.BattleConfig{}, err
	}
	if flagPreset != "" {
		preset, err := config.ParsePreset(flagPreset)
		if err != nil {
			return config.BattleConfig{}, err
		}
		config.ApplyRulesPreset(&cfg, preset)
	}
	return cfg, nil
}

// resolveSeed returns the seed flag, or a time-based seed when it is 0.
func resolveSeed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}
