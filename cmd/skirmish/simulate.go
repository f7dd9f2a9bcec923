package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/skirmish/internal/multiplayer"
	"github.com/vovakirdan/skirmish/internal/registry"
	"github.com/vovakirdan/skirmish/internal/storage"
	"github.com/vovakirdan/skirmish/internal/telemetry"
)

var flagBattles int

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario>",
	Short: "Run CPU vs CPU battles and record them",
	Long: `Host one or more battles of the given scenario with a CPU commander on
each side. Every battle is recorded with its full event log and can be
inspected later with 'skirmish history' and 'skirmish replay'.

Consecutive battles use consecutive seeds starting from --seed.

Examples:
  skirmish simulate duel
  skirmish simulate skirmish --seed 42
  skirmish simulate open-field --battles 5 --preset blitz`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVarP(&flagBattles, "battles", "n", 1, "Number of battles to run")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	scenarioID := args[0]
	if !registry.Exists(scenarioID) {
		return fmt.Errorf("unknown scenario %q (run 'skirmish scenarios' to see available scenarios)", scenarioID)
	}
	if flagBattles < 1 {
		return fmt.Errorf("--battles must be at least 1")
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	battleCfg, err := loadBattleConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening battle database: %w", err)
	}
	defer store.Close()

	metrics, err := telemetry.New()
	if err != nil {
		return err
	}

	sessions := multiplayer.NewSessionRegistry()
	coord := multiplayer.NewCoordinator(multiplayer.CoordinatorConfig{
		TickRate: flagTickRate,
		Battle:   battleCfg,
	}, sessions, logger)
	coord.SetResultSaver(store)
	if err := coord.SetMetrics(metrics); err != nil {
		return err
	}
	coord.Start()
	defer coord.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	seed := resolveSeed()
	for i := range flagBattles {
		ended, err := simulateBattle(ctx, coord, sessions, logger, scenarioID, seed+int64(i), i+1)
		if err != nil {
			return err
		}

		rec, err := store.BattleByMatchID(string(ended.MatchID))
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("battle %s was not recorded", ended.MatchID)
		}
		printBattleSummary(rec)
	}
	return nil
}

// simulateBattle seats two CPU sessions, starts the match and waits for it
// to end.
func simulateBattle(ctx context.Context, coord *multiplayer.Coordinator, sessions *multiplayer.SessionRegistry,
	logger *log.Logger, scenarioID string, seed int64, n int,
) (multiplayer.MatchEndedEvent, error) {
	type outcome struct {
		ended multiplayer.MatchEndedEvent
		err   error
	}

	cpus := [2]*multiplayer.CPUSession{
		multiplayer.NewCPUSession(multiplayer.SessionID(fmt.Sprintf("cpu-%d-a", n)), logger),
		multiplayer.NewCPUSession(multiplayer.SessionID(fmt.Sprintf("cpu-%d-b", n)), logger),
	}
	outcomes := make(chan outcome, len(cpus))
	for _, cpu := range cpus {
		if err := sessions.Register(cpu); err != nil {
			return multiplayer.MatchEndedEvent{}, fmt.Errorf("seating %s: %w", cpu.ID(), err)
		}
		defer func() {
			sessions.Unregister(cpu.ID())
			cpu.Close()
		}()
		go func() {
			ended, err := cpu.Play(ctx, coord.Send)
			outcomes <- outcome{ended, err}
		}()
	}

	coord.Send(multiplayer.StartMatchMsg{
		Scenario: scenarioID,
		Mode:     multiplayer.MatchModeCPUvsCPU,
		Player1:  cpus[0].ID(),
		Player2:  cpus[1].ID(),
		Seed:     seed,
	})

	first := <-outcomes
	if first.err != nil {
		return multiplayer.MatchEndedEvent{}, first.err
	}
	<-outcomes
	return first.ended, nil
}

func printBattleSummary(rec *storage.BattleRecord) {
	outcome := styleResult(rec.Result)
	if rec.Condition != "" {
		outcome += dimStyle.Render(" by " + rec.Condition)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Battle %s", rec.MatchID)))
	fmt.Println(field("Scenario", fmt.Sprintf("%s (army %s, seed %d)", rec.Scenario, rec.Army, rec.Seed)))
	fmt.Println(field("Result", outcome))
	fmt.Println(field("Turns", fmt.Sprintf("%d", rec.Turns)))
	fmt.Println(field("Survivors", fmt.Sprintf("%d vs %d", rec.Survivors1, rec.Survivors2)))
	fmt.Println(field("Events", fmt.Sprintf("%d", rec.EventCount)))
	fmt.Println(field("Duration", rec.Duration.String()))
	fmt.Println()
}
