// Package storage provides SQLite-based persistence for finished battles
// and their replication logs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/multiplayer"
)

// ErrAmbiguous is returned when a match ID prefix matches several battles.
var ErrAmbiguous = errors.New("storage: match id prefix is ambiguous")

// Store manages the SQLite database connection for battle history.
type Store struct {
	db *sql.DB
}

// BattleRecord is one finished battle.
type BattleRecord struct {
	ID             int64
	MatchID        string
	Scenario       string
	Mode           string
	Seed           int64
	Army           string
	Player1Session string
	Player2Session string
	Result         string // "player1_wins", "player2_wins", "draw" or "none"
	Condition      string // Victory condition or "forfeit"
	WinnerSession  string // Empty on a draw or cancellation
	EndReason      string // "completed", "disconnect", "cancelled"
	Turns          int
	Survivors1     int
	Survivors2     int
	Duration       time.Duration
	EventCount     int
	StartedAt      time.Time
	CreatedAt      time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS battles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			scenario TEXT NOT NULL,
			mode TEXT NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			army TEXT NOT NULL DEFAULT '',
			player1_session TEXT NOT NULL,
			player2_session TEXT NOT NULL,
			result TEXT NOT NULL,
			end_condition TEXT NOT NULL DEFAULT '',
			winner_session TEXT,
			end_reason TEXT NOT NULL,
			turns INTEGER NOT NULL DEFAULT 0,
			survivors1 INTEGER NOT NULL DEFAULT 0,
			survivors2 INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			started_at INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_battles_scenario ON battles(scenario);
		CREATE INDEX IF NOT EXISTS idx_battles_player1 ON battles(player1_session);
		CREATE INDEX IF NOT EXISTS idx_battles_player2 ON battles(player2_session);

		CREATE TABLE IF NOT EXISTS battle_events (
			match_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (match_id, seq)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveBattle records a finished battle and its event log in one transaction.
// Returns the ID of the inserted battle row.
func (s *Store) SaveBattle(rec BattleRecord, events []battle.Event) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	var startedAt int64
	if !rec.StartedAt.IsZero() {
		startedAt = rec.StartedAt.UnixMilli()
	}

	res, err := tx.Exec(
		`INSERT INTO battles
		 (match_id, scenario, mode, seed, army, player1_session, player2_session,
		  result, end_condition, winner_session, end_reason, turns, survivors1, survivors2,
		  duration_ms, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.MatchID,
		rec.Scenario,
		rec.Mode,
		rec.Seed,
		rec.Army,
		rec.Player1Session,
		rec.Player2Session,
		rec.Result,
		rec.Condition,
		nullString(rec.WinnerSession),
		rec.EndReason,
		rec.Turns,
		rec.Survivors1,
		rec.Survivors2,
		rec.Duration.Milliseconds(),
		startedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save battle: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO battle_events (match_id, seq, type, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		payload, err := encodeEvent(e)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot encode event %d: %w", e.Sequence(), err)
		}
		if _, err := stmt.Exec(rec.MatchID, int64(e.Sequence()), string(e.Type()), payload); err != nil { //nolint:gosec // sequence numbers stay far below 2^63
			return 0, fmt.Errorf("storage: cannot save event %d: %w", e.Sequence(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit battle: %w", err)
	}
	return id, nil
}

const battleColumns = `b.id, b.match_id, b.scenario, b.mode, b.seed, b.army,
	b.player1_session, b.player2_session, b.result, b.end_condition, b.winner_session,
	b.end_reason, b.turns, b.survivors1, b.survivors2, b.duration_ms, b.started_at,
	(SELECT COUNT(*) FROM battle_events e WHERE e.match_id = b.match_id),
	b.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBattle(row rowScanner) (BattleRecord, error) {
	var rec BattleRecord
	var winnerSession sql.NullString
	var durationMs, startedAt int64
	var createdAt any

	err := row.Scan(
		&rec.ID,
		&rec.MatchID,
		&rec.Scenario,
		&rec.Mode,
		&rec.Seed,
		&rec.Army,
		&rec.Player1Session,
		&rec.Player2Session,
		&rec.Result,
		&rec.Condition,
		&winnerSession,
		&rec.EndReason,
		&rec.Turns,
		&rec.Survivors1,
		&rec.Survivors2,
		&durationMs,
		&startedAt,
		&rec.EventCount,
		&createdAt,
	)
	if err != nil {
		return rec, err
	}

	if winnerSession.Valid {
		rec.WinnerSession = winnerSession.String
	}
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	if startedAt != 0 {
		rec.StartedAt = time.UnixMilli(startedAt)
	}
	rec.CreatedAt = parseTime(createdAt)
	return rec, nil
}

// BattleByMatchID retrieves a battle by its full match ID.
// Returns nil without error when there is none.
func (s *Store) BattleByMatchID(matchID string) (*BattleRecord, error) {
	row := s.db.QueryRow(`SELECT `+battleColumns+` FROM battles b WHERE b.match_id = ?`, matchID)
	rec, err := scanBattle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query battle: %w", err)
	}
	return &rec, nil
}

// FindBattle resolves a match ID or a unique prefix of one.
// Returns nil without error when nothing matches.
func (s *Store) FindBattle(prefix string) (*BattleRecord, error) {
	if rec, err := s.BattleByMatchID(prefix); rec != nil || err != nil {
		return rec, err
	}

	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := s.db.Query(
		`SELECT `+battleColumns+` FROM battles b WHERE b.match_id LIKE ? ESCAPE '\' LIMIT 2`,
		escaped+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query battle: %w", err)
	}
	defer rows.Close()

	recs, err := collectBattles(rows)
	if err != nil {
		return nil, err
	}
	switch len(recs) {
	case 0:
		return nil, nil
	case 1:
		return &recs[0], nil
	default:
		return nil, ErrAmbiguous
	}
}

// RecentBattles retrieves the most recent battles, newest first.
func (s *Store) RecentBattles(limit int) ([]BattleRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+battleColumns+` FROM battles b ORDER BY b.id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query battles: %w", err)
	}
	defer rows.Close()

	return collectBattles(rows)
}

// ScenarioBattles retrieves the most recent battles of one scenario.
func (s *Store) ScenarioBattles(scenario string, limit int) ([]BattleRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+battleColumns+` FROM battles b WHERE b.scenario = ? ORDER BY b.id DESC LIMIT ?`,
		scenario, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query battles: %w", err)
	}
	defer rows.Close()

	return collectBattles(rows)
}

// SessionHistory retrieves battles a session took part in.
func (s *Store) SessionHistory(sessionID string, limit int) ([]BattleRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+battleColumns+` FROM battles b
		 WHERE b.player1_session = ? OR b.player2_session = ?
		 ORDER BY b.id DESC
		 LIMIT ?`,
		sessionID, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session battles: %w", err)
	}
	defer rows.Close()

	return collectBattles(rows)
}

func collectBattles(rows *sql.Rows) ([]BattleRecord, error) {
	var recs []BattleRecord
	for rows.Next() {
		rec, err := scanBattle(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return recs, nil
}

// BattleEvents returns the replication log of a battle in sequence order.
func (s *Store) BattleEvents(matchID string) ([]battle.Event, error) {
	rows, err := s.db.Query(
		`SELECT seq, type, payload FROM battle_events WHERE match_id = ? ORDER BY seq`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query events: %w", err)
	}
	defer rows.Close()

	var events []battle.Event
	for rows.Next() {
		var seq int64
		var typ, payload string
		if err := rows.Scan(&seq, &typ, &payload); err != nil {
			return nil, fmt.Errorf("storage: cannot scan event: %w", err)
		}
		e, err := decodeEvent(battle.EventType(typ), []byte(payload))
		if err != nil {
			return nil, fmt.Errorf("storage: event %d: %w", seq, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return events, nil
}

// DeleteBattle removes a battle and its events.
func (s *Store) DeleteBattle(matchID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := tx.Exec("DELETE FROM battle_events WHERE match_id = ?", matchID); err != nil {
		return fmt.Errorf("storage: cannot delete events: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM battles WHERE match_id = ?", matchID); err != nil {
		return fmt.Errorf("storage: cannot delete battle: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit delete: %w", err)
	}
	return nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
// This adapter allows the coordinator to save match results without direct storage dependency.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	rec := BattleRecord{
		MatchID:        data.MatchID,
		Scenario:       data.Scenario,
		Mode:           data.Mode,
		Seed:           data.Seed,
		Army:           data.Army,
		Player1Session: data.Player1Session,
		Player2Session: data.Player2Session,
		Result:         data.Result,
		Condition:      data.Condition,
		WinnerSession:  data.WinnerSession,
		EndReason:      data.EndReason,
		Turns:          data.Turns,
		Survivors1:     data.Survivors1,
		Survivors2:     data.Survivors2,
		Duration:       time.Duration(data.DurationMs) * time.Millisecond,
		StartedAt:      data.StartedAt,
	}
	_, err := s.SaveBattle(rec, data.Events)
	return err
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)

// ScenarioStats contains aggregated results for a scenario.
type ScenarioStats struct {
	Scenario    string
	Battles     int
	Player1Wins int
	Player2Wins int
	Draws       int
	AvgTurns    float64
	LastPlayed  time.Time
}

// AllScenarioStats aggregates results for every scenario that has been played.
func (s *Store) AllScenarioStats() (map[string]*ScenarioStats, error) {
	rows, err := s.db.Query(
		`SELECT scenario,
		        COUNT(*),
		        SUM(CASE WHEN result = ? THEN 1 ELSE 0 END),
		        SUM(CASE WHEN result = ? THEN 1 ELSE 0 END),
		        SUM(CASE WHEN result = ? THEN 1 ELSE 0 END),
		        AVG(turns),
		        MAX(created_at)
		 FROM battles
		 GROUP BY scenario`,
		battle.ResultPlayer1Wins.String(),
		battle.ResultPlayer2Wins.String(),
		battle.ResultDraw.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get scenario stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ScenarioStats)
	for rows.Next() {
		var st ScenarioStats
		var lastPlayed any
		if err := rows.Scan(&st.Scenario, &st.Battles, &st.Player1Wins, &st.Player2Wins, &st.Draws, &st.AvgTurns, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.Scenario] = &st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
