// Package history keeps a local journal of handled utterances for later
// inspection. It is bookkeeping only; the vector store owns the notes.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one handled utterance: what came in, how it was classified and
// what went back.
type Entry struct {
	ID     int64
	Time   time.Time
	Chat   int64
	Input  string
	Intent string
	Reply  string
}

type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	pragmas := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
	}
	for _, stmt := range pragmas {
		if _, err := j.db.Exec(stmt); err != nil {
			return fmt.Errorf("init journal db: %w", err)
		}
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS utterances (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			chat INTEGER,
			input TEXT NOT NULL,
			intent TEXT NOT NULL,
			reply TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_utterances_ts ON utterances (ts);`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.Exec(stmt); err != nil {
			return fmt.Errorf("init journal db: %w", err)
		}
	}
	return nil
}

// Record appends one entry. Time defaults to now when unset.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO utterances (ts, chat, input, intent, reply) VALUES (?, ?, ?, ?, ?)`,
		e.Time.Unix(), e.Chat, e.Input, e.Intent, e.Reply)
	if err != nil {
		return fmt.Errorf("record utterance: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, ts, chat, input, intent, reply FROM utterances ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ID, &ts, &e.Chat, &e.Input, &e.Intent, &e.Reply); err != nil {
			return nil, err
		}
		e.Time = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *Journal) Close() error {
	return j.db.Close()
}
