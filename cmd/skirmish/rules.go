package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective battle configuration",
	Long: `Print the battle configuration new matches would use, as YAML.

The configuration is resolved the same way simulate resolves it:
  1. --config <path>
  2. ~/.skirmish/configs/battle.yaml
  3. ./configs/battle.yaml
  4. built-in defaults
and the --preset (or SKIRMISH_PRESET) rules preset is applied on top.

The output is a complete config file and can be saved and edited.

Examples:
  skirmish rules
  skirmish rules --preset marathon > ~/.skirmish/configs/battle.yaml`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadBattleConfig()
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}
