package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/skirmish/internal/storage"
)

var (
	flagHistoryLimit    int
	flagHistoryScenario string
	flagHistorySession  string
	flagHistoryStats    bool
	flagHistoryDelete   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded battles",
	Long: `Display the most recent recorded battles, newest first.

Examples:
  skirmish history
  skirmish history --scenario duel --limit 5
  skirmish history --session cpu-1-a
  skirmish history --stats
  skirmish history --delete 3f2a9c1e`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "l", 10, "Number of battles to show")
	historyCmd.Flags().StringVar(&flagHistoryScenario, "scenario", "", "Only show battles of this scenario")
	historyCmd.Flags().StringVar(&flagHistorySession, "session", "", "Only show battles this session took part in")
	historyCmd.Flags().BoolVar(&flagHistoryStats, "stats", false, "Show per-scenario totals instead")
	historyCmd.Flags().StringVar(&flagHistoryDelete, "delete", "", "Delete the battle with this match ID or prefix")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening battle database: %w", err)
	}
	defer store.Close()

	if flagHistoryDelete != "" {
		return deleteBattle(store, flagHistoryDelete)
	}
	if flagHistoryStats {
		return printScenarioStats(store)
	}

	var battles []storage.BattleRecord
	switch {
	case flagHistorySession != "":
		battles, err = store.SessionHistory(flagHistorySession, flagHistoryLimit)
	case flagHistoryScenario != "":
		battles, err = store.ScenarioBattles(flagHistoryScenario, flagHistoryLimit)
	default:
		battles, err = store.RecentBattles(flagHistoryLimit)
	}
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Recorded battles"))
	fmt.Println()

	if len(battles) == 0 {
		fmt.Println("No battles recorded yet.")
		fmt.Println()
		fmt.Println("Run 'skirmish simulate <scenario>' to record the first one.")
		return nil
	}

	t := newTable("Match", "Scenario", "Mode", "Result", "Condition", "Turns", "Survivors", "Ended", "Date")
	for _, b := range battles {
		t.Row(
			shortID(b.MatchID),
			b.Scenario,
			b.Mode,
			styleResult(b.Result),
			b.Condition,
			strconv.Itoa(b.Turns),
			fmt.Sprintf("%d/%d", b.Survivors1, b.Survivors2),
			b.EndReason,
			b.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	fmt.Println(t)
	fmt.Println()
	fmt.Println(dimStyle.Render("Run 'skirmish replay <match>' to step through a battle."))
	return nil
}

func printScenarioStats(store *storage.Store) error {
	stats, err := store.AllScenarioStats()
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Scenario totals"))
	fmt.Println()

	if len(stats) == 0 {
		fmt.Println("No battles recorded yet.")
		return nil
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := newTable("Scenario", "Battles", "P1 wins", "P2 wins", "Draws", "Avg turns", "Last played")
	for _, id := range ids {
		s := stats[id]
		t.Row(
			s.Scenario,
			strconv.Itoa(s.Battles),
			strconv.Itoa(s.Player1Wins),
			strconv.Itoa(s.Player2Wins),
			strconv.Itoa(s.Draws),
			strconv.FormatFloat(s.AvgTurns, 'f', 1, 64),
			s.LastPlayed.Format("2006-01-02 15:04"),
		)
	}
	fmt.Println(t)
	return nil
}

func deleteBattle(store *storage.Store, prefix string) error {
	rec, err := store.FindBattle(prefix)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no battle matches %q", prefix)
	}
	if err := store.DeleteBattle(rec.MatchID); err != nil {
		return err
	}
	fmt.Printf("Deleted battle %s (%s, %d events)\n", rec.MatchID, rec.Scenario, rec.EventCount)
	return nil
}

// shortID trims a match ID to a prefix that replay still accepts.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
