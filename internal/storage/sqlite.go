// Package storage provides SQLite-based persistence for session history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// End reasons recorded for a session.
const (
	EndQuit   = "quit"
	EndFault  = "fault"
	EndFrames = "frames"
	EndDrop   = "disconnect"
)

// Store manages the SQLite database connection for session history.
type Store struct {
	db *sql.DB
}

// SessionRecord is one finished script session.
type SessionRecord struct {
	ID           int64
	Script       string
	StartedAt    time.Time
	Duration     time.Duration
	UpdateCount  int
	LastFPS      float64
	DrawCalls    int
	Objects      int
	EndReason    string // quit, fault, frames, disconnect
	FaultKind    string // empty unless EndReason is fault
	FaultMessage string
}

// ScriptStats aggregates the history of one script.
type ScriptStats struct {
	Script    string
	Runs      int
	Faults    int
	TotalTime time.Duration
	LastRun   time.Time
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

	// Create parent directories
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
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			script TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			update_count INTEGER NOT NULL DEFAULT 0,
			last_fps REAL NOT NULL DEFAULT 0,
			draw_calls INTEGER NOT NULL DEFAULT 0,
			obj_count INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			fault_kind TEXT NOT NULL DEFAULT '',
			fault_message TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_script ON sessions(script);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);
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

// SaveSession records a finished session.
// Returns the ID of the inserted record.
func (s *Store) SaveSession(rec SessionRecord) (int64, error) {
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}
	result, err := s.db.Exec(
		`INSERT INTO sessions
		 (script, started_at, duration_ms, update_count, last_fps, draw_calls, obj_count, end_reason, fault_kind, fault_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Script,
		rec.StartedAt.UnixMilli(),
		rec.Duration.Milliseconds(),
		rec.UpdateCount,
		rec.LastFPS,
		rec.DrawCalls,
		rec.Objects,
		rec.EndReason,
		rec.FaultKind,
		rec.FaultMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const sessionColumns = `id, script, started_at, duration_ms, update_count, last_fps,
	draw_calls, obj_count, end_reason, fault_kind, fault_message`

// RecentSessions retrieves the most recent sessions across all scripts.
func (s *Store) RecentSessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+sessionColumns+`
		 FROM sessions
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	return scanSessions(rows)
}

// SessionsForScript retrieves the most recent sessions of one script.
func (s *Store) SessionsForScript(script string, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE script = ?
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		script, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	return scanSessions(rows)
}

func scanSessions(rows *sql.Rows) ([]SessionRecord, error) {
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var startedMs, durationMs int64
		if err := rows.Scan(
			&rec.ID,
			&rec.Script,
			&startedMs,
			&durationMs,
			&rec.UpdateCount,
			&rec.LastFPS,
			&rec.DrawCalls,
			&rec.Objects,
			&rec.EndReason,
			&rec.FaultKind,
			&rec.FaultMessage,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		rec.StartedAt = time.UnixMilli(startedMs)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// Stats aggregates history for the given script.
// A script with no sessions yields zero Runs.
func (s *Store) Stats(script string) (ScriptStats, error) {
	st := ScriptStats{Script: script}
	var total, last sql.NullInt64
	var faults sql.NullInt64

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        SUM(CASE WHEN end_reason = ? THEN 1 ELSE 0 END),
		        SUM(duration_ms),
		        MAX(started_at)
		 FROM sessions
		 WHERE script = ?`,
		EndFault, script,
	).Scan(&st.Runs, &faults, &total, &last)
	if err != nil {
		return st, fmt.Errorf("storage: cannot query stats: %w", err)
	}

	if faults.Valid {
		st.Faults = int(faults.Int64)
	}
	if total.Valid {
		st.TotalTime = time.Duration(total.Int64) * time.Millisecond
	}
	if last.Valid {
		st.LastRun = time.UnixMilli(last.Int64)
	}
	return st, nil
}

// ClearSessions deletes history for the given script, or all history when
// script is empty.
func (s *Store) ClearSessions(script string) error {
	var err error
	if script == "" {
		_, err = s.db.Exec("DELETE FROM sessions")
	} else {
		_, err = s.db.Exec("DELETE FROM sessions WHERE script = ?", script)
	}
	if err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return nil
}
