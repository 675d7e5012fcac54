// Package history keeps a record of past analysis runs in a local SQLite
// database so score drift is visible across invocations.
package history

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at   TEXT NOT NULL,
	files         INTEGER NOT NULL,
	rules         INTEGER NOT NULL,
	issues        INTEGER NOT NULL,
	overall_score INTEGER NOT NULL,
	grade         TEXT NOT NULL,
	passed        INTEGER NOT NULL
);`

// Entry is one recorded run.
type Entry struct {
	ID           int64     `json:"id"`
	RecordedAt   time.Time `json:"recorded_at"`
	Files        int       `json:"files"`
	Rules        int       `json:"rules"`
	Issues       int       `json:"issues"`
	OverallScore int       `json:"overall_score"`
	Grade        string    `json:"grade"`
	Passed       bool      `json:"passed"`
}

// Store wraps a single SQLite connection. Not safe for concurrent use,
// which matches the one-run-per-process CLI.
type Store struct {
	conn *sqlite.Conn
	log  *zap.Logger
}

// Open opens (creating when necessary) the history database at path.
func Open(path string, log *zap.Logger) (*Store, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("unable to open history database %q: %w", path, err)
	}
	if err := sqlitex.ExecuteTransient(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare history schema: %w", err)
	}
	return &Store{conn: conn, log: log.Named("history")}, nil
}

// Record stores the outcome of one analysis run. Entry.ID is assigned by
// the database and ignored on input.
func (s *Store) Record(e Entry) error {
	passed := 0
	if e.Passed {
		passed = 1
	}
	err := sqlitex.Execute(s.conn,
		`INSERT INTO runs (recorded_at, files, rules, issues, overall_score, grade, passed) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				e.RecordedAt.UTC().Format(time.RFC3339),
				e.Files,
				e.Rules,
				e.Issues,
				e.OverallScore,
				e.Grade,
				passed,
			},
		})
	if err != nil {
		return fmt.Errorf("unable to record run: %w", err)
	}
	s.log.Debug("Run recorded",
		zap.Int("score", e.OverallScore),
		zap.String("grade", e.Grade))
	return nil
}

// List returns up to limit most recent runs, newest first. Non-positive
// limit means no limit.
func (s *Store) List(limit int) ([]Entry, error) {
	query := `SELECT id, recorded_at, files, rules, issues, overall_score, grade, passed FROM runs ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var entries []Entry
	err := sqlitex.Execute(s.conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			at, err := time.Parse(time.RFC3339, stmt.ColumnText(1))
			if err != nil {
				return fmt.Errorf("bad timestamp in run %d: %w", stmt.ColumnInt64(0), err)
			}
			entries = append(entries, Entry{
				ID:           stmt.ColumnInt64(0),
				RecordedAt:   at,
				Files:        stmt.ColumnInt(2),
				Rules:        stmt.ColumnInt(3),
				Issues:       stmt.ColumnInt(4),
				OverallScore: stmt.ColumnInt(5),
				Grade:        stmt.ColumnText(6),
				Passed:       stmt.ColumnInt(7) != 0,
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list runs: %w", err)
	}
	return entries, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
