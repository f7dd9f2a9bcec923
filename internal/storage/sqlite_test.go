package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/multiplayer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEvents() []battle.Event {
	return []battle.Event{
		battle.GameStarted{Seq: 1, FirstSide: core.Player1, Turn: 1, ActionsRemaining: 2},
		battle.UnitMoved{Seq: 2, Unit: 1, Path: []core.Vec{core.V(4, 10), core.V(5, 10.5)}, Final: core.V(5, 10.5)},
		battle.UnitDestroyed{Seq: 3, Unit: 7, Attacker: 1},
		battle.TurnChanged{Seq: 4, Side: core.Player2, Turn: 1, ActionsRemaining: 2, Expired: true},
		battle.UnboundedMovementEnabled{Seq: 5, Turn: 15},
		battle.GameEnded{Seq: 6, Result: battle.ResultPlayer1Wins, Condition: battle.ConditionUnitCount, Turn: 15},
	}
}

func sampleRecord(matchID, scenario, result string) BattleRecord {
	return BattleRecord{
		MatchID:        matchID,
		Scenario:       scenario,
		Mode:           "cpu_vs_cpu",
		Seed:           42,
		Army:           "vanguard",
		Player1Session: "cpu-1",
		Player2Session: "cpu-2",
		Result:         result,
		Condition:      battle.ConditionUnitCount,
		WinnerSession:  "cpu-1",
		EndReason:      "completed",
		Turns:          12,
		Survivors1:     3,
		Survivors2:     0,
		Duration:       1500 * time.Millisecond,
		StartedAt:      time.UnixMilli(1_700_000_000_000),
	}
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieveBattle(t *testing.T) {
	store := openTestStore(t)

	rec := sampleRecord("match-1", "skirmish", battle.ResultPlayer1Wins.String())
	if _, err := store.SaveBattle(rec, sampleEvents()); err != nil {
		t.Fatalf("SaveBattle() failed: %v", err)
	}

	got, err := store.BattleByMatchID("match-1")
	if err != nil {
		t.Fatalf("BattleByMatchID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("BattleByMatchID() returned nil")
	}
	if got.Scenario != "skirmish" || got.Army != "vanguard" || got.Seed != 42 {
		t.Errorf("record = %+v", got)
	}
	if got.Result != "player1_wins" || got.Condition != battle.ConditionUnitCount || got.WinnerSession != "cpu-1" {
		t.Errorf("outcome = %s/%s/%s", got.Result, got.Condition, got.WinnerSession)
	}
	if got.Turns != 12 || got.Survivors1 != 3 || got.Survivors2 != 0 {
		t.Errorf("turns/survivors = %d/%d/%d", got.Turns, got.Survivors1, got.Survivors2)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v", got.Duration)
	}
	if !got.StartedAt.Equal(rec.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, rec.StartedAt)
	}
	if got.EventCount != len(sampleEvents()) {
		t.Errorf("EventCount = %d, want %d", got.EventCount, len(sampleEvents()))
	}

	missing, err := store.BattleByMatchID("nope")
	if err != nil || missing != nil {
		t.Errorf("BattleByMatchID(nope) = %v, %v; want nil, nil", missing, err)
	}
}

func TestStoreEventLogRoundTrip(t *testing.T) {
	store := openTestStore(t)

	want := sampleEvents()
	if _, err := store.SaveBattle(sampleRecord("match-1", "duel", "player1_wins"), want); err != nil {
		t.Fatalf("SaveBattle() failed: %v", err)
	}

	got, err := store.BattleEvents("match-1")
	if err != nil {
		t.Fatalf("BattleEvents() failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BattleEvents() = %+v\nwant %+v", got, want)
	}
}

func TestStoreDuplicateMatchID(t *testing.T) {
	store := openTestStore(t)

	rec := sampleRecord("match-1", "duel", "draw")
	if _, err := store.SaveBattle(rec, sampleEvents()); err != nil {
		t.Fatalf("SaveBattle() failed: %v", err)
	}
	if _, err := store.SaveBattle(rec, sampleEvents()); err == nil {
		t.Error("second SaveBattle() with the same match id should fail")
	}

	events, err := store.BattleEvents("match-1")
	if err != nil {
		t.Fatalf("BattleEvents() failed: %v", err)
	}
	if len(events) != len(sampleEvents()) {
		t.Errorf("failed save left %d events, want %d", len(events), len(sampleEvents()))
	}
}

func TestStoreRecentBattles(t *testing.T) {
	store := openTestStore(t)

	for _, id := range []string{"a", "b", "c", "d"} {
		if _, err := store.SaveBattle(sampleRecord(id, "skirmish", "draw"), nil); err != nil {
			t.Fatalf("SaveBattle(%s) failed: %v", id, err)
		}
	}

	recs, err := store.RecentBattles(3)
	if err != nil {
		t.Fatalf("RecentBattles() failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("RecentBattles(3) returned %d records", len(recs))
	}
	if recs[0].MatchID != "d" || recs[2].MatchID != "b" {
		t.Errorf("order = %s, %s, %s; want newest first", recs[0].MatchID, recs[1].MatchID, recs[2].MatchID)
	}
}

func TestStoreFindBattleByPrefix(t *testing.T) {
	store := openTestStore(t)

	for _, id := range []string{"abc-111", "abc-222", "xyz-333"} {
		if _, err := store.SaveBattle(sampleRecord(id, "duel", "draw"), nil); err != nil {
			t.Fatalf("SaveBattle(%s) failed: %v", id, err)
		}
	}

	tests := []struct {
		prefix  string
		want    string
		wantErr error
	}{
		{"xyz", "xyz-333", nil},
		{"abc-2", "abc-222", nil},
		{"abc-111", "abc-111", nil},
		{"abc", "", ErrAmbiguous},
		{"none", "", nil},
		{"%", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			rec, err := store.FindBattle(tt.prefix)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FindBattle(%q) error = %v, want %v", tt.prefix, err, tt.wantErr)
			}
			got := ""
			if rec != nil {
				got = rec.MatchID
			}
			if got != tt.want {
				t.Errorf("FindBattle(%q) = %q, want %q", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestStoreSessionHistoryAndDelete(t *testing.T) {
	store := openTestStore(t)

	rec := sampleRecord("m1", "duel", "player2_wins")
	rec.Player1Session = "alice"
	if _, err := store.SaveBattle(rec, sampleEvents()); err != nil {
		t.Fatalf("SaveBattle() failed: %v", err)
	}
	if _, err := store.SaveBattle(sampleRecord("m2", "duel", "draw"), nil); err != nil {
		t.Fatalf("SaveBattle() failed: %v", err)
	}

	hist, err := store.SessionHistory("alice", 10)
	if err != nil {
		t.Fatalf("SessionHistory() failed: %v", err)
	}
	if len(hist) != 1 || hist[0].MatchID != "m1" {
		t.Errorf("SessionHistory(alice) = %+v", hist)
	}

	if err := store.DeleteBattle("m1"); err != nil {
		t.Fatalf("DeleteBattle() failed: %v", err)
	}
	if rec, _ := store.BattleByMatchID("m1"); rec != nil {
		t.Error("battle still present after delete")
	}
	if events, _ := store.BattleEvents("m1"); len(events) != 0 {
		t.Errorf("%d events left after delete", len(events))
	}
}

func TestStoreScenarioStats(t *testing.T) {
	store := openTestStore(t)

	results := []struct {
		id, scenario, result string
		turns                int
	}{
		{"1", "duel", "player1_wins", 10},
		{"2", "duel", "player2_wins", 20},
		{"3", "duel", "draw", 30},
		{"4", "skirmish", "player1_wins", 5},
	}
	for _, r := range results {
		rec := sampleRecord(r.id, r.scenario, r.result)
		rec.Turns = r.turns
		if _, err := store.SaveBattle(rec, nil); err != nil {
			t.Fatalf("SaveBattle() failed: %v", err)
		}
	}

	stats, err := store.AllScenarioStats()
	if err != nil {
		t.Fatalf("AllScenarioStats() failed: %v", err)
	}
	duel := stats["duel"]
	if duel == nil {
		t.Fatal("no stats for duel")
	}
	if duel.Battles != 3 || duel.Player1Wins != 1 || duel.Player2Wins != 1 || duel.Draws != 1 {
		t.Errorf("duel stats = %+v", duel)
	}
	if duel.AvgTurns != 20 {
		t.Errorf("duel AvgTurns = %v, want 20", duel.AvgTurns)
	}
	if stats["skirmish"] == nil || stats["skirmish"].Battles != 1 {
		t.Errorf("skirmish stats = %+v", stats["skirmish"])
	}

	duelOnly, err := store.ScenarioBattles("duel", 10)
	if err != nil {
		t.Fatalf("ScenarioBattles() failed: %v", err)
	}
	if len(duelOnly) != 3 {
		t.Errorf("ScenarioBattles(duel) returned %d records", len(duelOnly))
	}
}

func TestStoreSaveMatchResult(t *testing.T) {
	store := openTestStore(t)

	data := multiplayer.MatchResultData{
		MatchID:        "m-42",
		Scenario:       "open-field",
		Mode:           "vs_cpu",
		Seed:           9,
		Player1Session: "human",
		Player2Session: "cpu-2-m-42",
		Result:         "player2_wins",
		Condition:      battle.ConditionForfeit,
		WinnerSession:  "cpu-2-m-42",
		EndReason:      "disconnect",
		Turns:          2,
		Survivors1:     6,
		Survivors2:     6,
		DurationMs:     250,
		Events:         sampleEvents()[:1],
	}
	if err := store.SaveMatchResult(data); err != nil {
		t.Fatalf("SaveMatchResult() failed: %v", err)
	}

	rec, err := store.BattleByMatchID("m-42")
	if err != nil || rec == nil {
		t.Fatalf("BattleByMatchID() = %v, %v", rec, err)
	}
	if rec.EndReason != "disconnect" || rec.Duration != 250*time.Millisecond || rec.EventCount != 1 {
		t.Errorf("record = %+v", rec)
	}
	if !rec.StartedAt.IsZero() {
		t.Errorf("StartedAt = %v, want zero", rec.StartedAt)
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
