package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/multiplayer"
	"github.com/vovakirdan/skirmish/internal/pathfind"
	"github.com/vovakirdan/skirmish/internal/registry"
	"github.com/vovakirdan/skirmish/internal/storage"
)

var flagReplayDelay time.Duration

var replayCmd = &cobra.Command{
	Use:   "replay <match>",
	Short: "Step through a recorded battle",
	Long: `Print the replication log of a recorded battle event by event.

The match may be given as a full ID or any unique prefix of one (as shown
by 'skirmish history'). When the scenario is still registered, the battle
is rebuilt from its seed and the log is applied to a fresh replica, which
names the units involved and checks that the log reproduces the recorded
outcome. The rebuild uses the current battle config, so a config change
since the recording shows up as a divergence.

Examples:
  skirmish replay 3f2a9c1e
  skirmish replay 3f2a --delay 200ms`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().DurationVar(&flagReplayDelay, "delay", 0, "Pause between events")
}

func runReplay(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening battle database: %w", err)
	}
	defer store.Close()

	rec, err := store.FindBattle(args[0])
	if errors.Is(err, storage.ErrAmbiguous) {
		return fmt.Errorf("match prefix %q matches several battles, give more characters", args[0])
	}
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no battle matches %q", args[0])
	}

	events, err := store.BattleEvents(rec.MatchID)
	if err != nil {
		return err
	}

	printBattleSummary(rec)

	mirror, err := rebuildMirror(rec)
	if err != nil {
		fmt.Println(dimStyle.Render(fmt.Sprintf("Replaying without unit details: %v", err)))
		fmt.Println()
	}

	t := newTable("Seq", "Event", "Details")
	for _, e := range events {
		details := describeEvent(e, mirror)
		if mirror != nil {
			if err := mirror.Apply(e); err != nil {
				return fmt.Errorf("event %d: %w", e.Sequence(), err)
			}
		}
		t.Row(strconv.FormatUint(e.Sequence(), 10), string(e.Type()), details)

		if flagReplayDelay > 0 {
			fmt.Printf("%4d  %-28s %s\n", e.Sequence(), e.Type(), details)
			time.Sleep(flagReplayDelay)
		}
	}
	if flagReplayDelay == 0 {
		fmt.Println(t)
	}
	fmt.Println()

	if mirror != nil {
		printVerification(rec, mirror)
	}
	return nil
}

// rebuildMirror sets the recorded battle up again from its scenario and
// seed and returns a replica seeded with its pre-start state.
func rebuildMirror(rec *storage.BattleRecord) (*multiplayer.Mirror, error) {
	sc, err := registry.Get(rec.Scenario)
	if err != nil {
		return nil, err
	}
	cfg, err := loadBattleConfig()
	if err != nil {
		return nil, err
	}
	b, err := sc.Setup(cfg, core.RuntimeConfig{TickRate: flagTickRate, Seed: rec.Seed}, nil)
	if err != nil {
		return nil, err
	}
	return multiplayer.NewMirror(b.Game.Snapshot(), b.Map, pathfind.DefaultOptions()), nil
}

// describeEvent renders one event. Units are named from the replica when
// there is one, so it must be called before the event is applied.
func describeEvent(e battle.Event, mirror *multiplayer.Mirror) string {
	name := func(id core.UnitID) string {
		if mirror != nil {
			if u, ok := mirror.Unit(id); ok {
				return fmt.Sprintf("%s %s#%d", u.Owner, u.Type, u.ID)
			}
		}
		return fmt.Sprintf("unit#%d", id)
	}

	switch ev := e.(type) {
	case battle.GameStarted:
		return fmt.Sprintf("%s opens turn %d with %d actions", ev.FirstSide, ev.Turn, ev.ActionsRemaining)
	case battle.UnitMoved:
		return fmt.Sprintf("%s moves to (%.1f, %.1f) in %d steps", name(ev.Unit), ev.Final.X, ev.Final.Z, len(ev.Path))
	case battle.UnitDestroyed:
		return fmt.Sprintf("%s destroys %s", name(ev.Attacker), name(ev.Unit))
	case battle.TurnChanged:
		s := fmt.Sprintf("turn %d: %s to act with %d actions", ev.Turn, ev.Side, ev.ActionsRemaining)
		if ev.Expired {
			s += dimStyle.Render(" (timer expired)")
		}
		return s
	case battle.UnboundedMovementEnabled:
		return fmt.Sprintf("movement unbounded from turn %d", ev.Turn)
	case battle.GameEnded:
		return fmt.Sprintf("%s by %s on turn %d", styleResult(ev.Result.String()), ev.Condition, ev.Turn)
	default:
		return ""
	}
}

func printVerification(rec *storage.BattleRecord, mirror *multiplayer.Mirror) {
	snap := mirror.Snapshot()
	var survivors [2]int
	for _, u := range snap.Units {
		switch u.Owner {
		case core.Player1:
			survivors[0]++
		case core.Player2:
			survivors[1]++
		}
	}

	consistent := survivors == [2]int{rec.Survivors1, rec.Survivors2}
	if rec.EndReason == multiplayer.MatchEndReasonCompleted.String() {
		consistent = consistent && snap.Result.String() == rec.Result && snap.Condition == rec.Condition
	}
	if consistent {
		fmt.Println(field("Replay", "log reproduces the recorded outcome"))
		return
	}
	fmt.Println(field("Replay", resultStyles[battle.ResultPlayer2Wins.String()].Render(
		fmt.Sprintf("diverged: replica ends %s with %d vs %d survivors", snap.Result, survivors[0], survivors[1]))))
	fmt.Println(dimStyle.Render("  The battle config may have changed since this battle was recorded."))
}
