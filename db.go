package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// migration queries
	createSessionsTableSQL = `
  CREATE TABLE IF NOT EXISTS sessions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  data_file TEXT NOT NULL,
  project TEXT NOT NULL,
  start_time DATETIME NOT NULL,
  end_time DATETIME,
  elapsed INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
  )`

	// at most one open session per project and file
	createOpenSessionIndexSQL = `
  CREATE UNIQUE INDEX IF NOT EXISTS sessions_open
  ON sessions (data_file, project) WHERE end_time IS NULL`

	// session queries
	getOpenSessionsSQL   = `SELECT project, start_time FROM sessions WHERE data_file = ? AND end_time IS NULL`
	createSessionSQL     = `INSERT INTO sessions (data_file, project, start_time) VALUES (?, ?, ?)`
	createFullSessionSQL = `INSERT INTO sessions (data_file, project, start_time, end_time, elapsed) VALUES (?, ?, ?, ?, ?)`
	finishSessionSQL     = `UPDATE sessions SET end_time = ?, elapsed = ? WHERE data_file = ? AND project = ? AND end_time IS NULL`
	discardSessionSQL    = `DELETE FROM sessions WHERE data_file = ? AND project = ? AND end_time IS NULL`
	forgetSessionsSQL    = `DELETE FROM sessions WHERE data_file = ? AND project = ?`
	renameSessionsSQL    = `UPDATE sessions SET project = ? WHERE data_file = ? AND project = ?`
	getHistorySQL        = `
  SELECT project, start_time, end_time, elapsed
  FROM sessions
  WHERE data_file = ? AND end_time IS NOT NULL
  AND start_time >= ? AND start_time < ?
  ORDER BY project, start_time`
)

// Repo is the sqlite session journal. It keeps open sessions between
// invocations and the finished ones for the history report.
type Repo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRepo(dbPath string, logger *slog.Logger) (*Repo, error) {
	// ensure directory exists
	err := os.MkdirAll(filepath.Dir(dbPath), 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// open database
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// verify connection with database
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &Repo{db: db, logger: logger}

	// run migrations
	if err := repo.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

// runs migrations on initial start
func (r *Repo) runMigrations() error {
	stmts := []string{
		createSessionsTableSQL,
		createOpenSessionIndexSQL,
	}

	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}

	return nil
}

// +---------------------+
// |                     |
// |    Open Sessions    |
// |                     |
// +---------------------+

// Active returns the start of every open session for file, by project name.
func (r *Repo) Active(file string) (map[string]time.Time, error) {
	rows, err := r.db.Query(getOpenSessionsSQL, file)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	active := make(map[string]time.Time)
	for rows.Next() {
		var name string
		var start time.Time
		if err := rows.Scan(&name, &start); err != nil {
			return nil, err
		}
		active[name] = start
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return active, nil
}

func (r *Repo) Begin(file, name string, start time.Time) error {
	_, err := r.db.Exec(createSessionSQL, file, name, start)
	if err != nil {
		return fmt.Errorf("error recording session start: %w", err)
	}
	return nil
}

// Finish closes the open session. If none is journaled the finished session
// is recorded as a whole so it still shows up in history.
func (r *Repo) Finish(file, name string, start, end time.Time, elapsed int64) error {
	res, err := r.db.Exec(finishSessionSQL, end, elapsed, file, name)
	if err != nil {
		return fmt.Errorf("error closing session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error closing session: %w", err)
	}
	if n > 0 {
		return nil
	}

	r.logger.Debug("no open session journaled, recording finished session", "project", name)
	if _, err := r.db.Exec(createFullSessionSQL, file, name, start, end, elapsed); err != nil {
		return fmt.Errorf("error recording finished session: %w", err)
	}
	return nil
}

func (r *Repo) Discard(file, name string) error {
	_, err := r.db.Exec(discardSessionSQL, file, name)
	if err != nil {
		return fmt.Errorf("error discarding session: %w", err)
	}
	return nil
}

// Forget removes every session of a project, open or finished. History is
// keyed by name, so a deleted project's sessions must go before the name can
// be reused.
func (r *Repo) Forget(file, name string) error {
	res, err := r.db.Exec(forgetSessionsSQL, file, name)
	if err != nil {
		return fmt.Errorf("error forgetting sessions: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		r.logger.Debug("forgot sessions", "project", name, "rows", n)
	}
	return nil
}

func (r *Repo) Rename(file, oldName, newName string) error {
	_, err := r.db.Exec(renameSessionsSQL, newName, file, oldName)
	if err != nil {
		return fmt.Errorf("error renaming sessions: %w", err)
	}
	return nil
}

// +---------------------+
// |                     |
// |      History        |
// |                     |
// +---------------------+

// History returns finished sessions started within [from, to), grouped by
// project.
func (r *Repo) History(file string, from, to time.Time) ([]ProjectHistory, error) {
	rows, err := r.db.Query(getHistorySQL, file, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []ProjectHistory
	for rows.Next() {
		var name string
		var entry Entry
		if err := rows.Scan(&name, &entry.StartTime, &entry.EndTime, &entry.Elapsed); err != nil {
			return nil, err
		}

		if len(history) == 0 || history[len(history)-1].Name != name {
			history = append(history, ProjectHistory{Name: name})
		}
		last := &history[len(history)-1]
		last.Entries = append(last.Entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}
