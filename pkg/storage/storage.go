// Package storage keeps a history of recommendation runs in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"deck-recommender/pkg/deck"
)

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

type DB struct {
	sql *sql.DB
}

// Run is one stored recommendation call and its ranked decks.
type Run struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	Algorithm  string         `json:"algorithm"`
	Objective  string         `json:"objective"`
	LiveType   string         `json:"liveType"`
	EventID    int            `json:"eventId"`
	Member     int            `json:"member"`
	DurationMs int64          `json:"durationMs"`
	Decks      []*deck.Detail `json:"decks"`
}

// BestValue is the target value of the top deck, or 0 for an empty run.
func (r *Run) BestValue() float64 {
	if len(r.Decks) == 0 {
		return 0
	}
	return r.Decks[0].TargetValue
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id          TEXT PRIMARY KEY,
  name        TEXT NOT NULL DEFAULT '',
  created_at  TEXT NOT NULL,
  algorithm   TEXT NOT NULL,
  objective   TEXT NOT NULL,
  live_type   TEXT NOT NULL,
  event_id    INTEGER NOT NULL DEFAULT 0,
  member      INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL DEFAULT 0,
  best_value  REAL NOT NULL DEFAULT 0,
  decks       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_time ON runs(created_at);
    `); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// SaveRun inserts r, filling in ID and CreatedAt when unset.
func (d *DB) SaveRun(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	decks, err := json.Marshal(r.Decks)
	if err != nil {
		return fmt.Errorf("encode decks: %w", err)
	}
	_, err = d.sql.ExecContext(ctx, `INSERT INTO runs(id, name, created_at, algorithm, objective, live_type, event_id, member, duration_ms, best_value, decks) VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.Name, r.CreatedAt.UTC().Format(timeLayout), r.Algorithm, r.Objective, r.LiveType, r.EventID, r.Member, r.DurationMs, r.BestValue(), string(decks))
	return err
}

const runColumns = "id, name, created_at, algorithm, objective, live_type, event_id, member, duration_ms, decks"

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	var createdAt, decks string
	if err := s.Scan(&r.ID, &r.Name, &createdAt, &r.Algorithm, &r.Objective, &r.LiveType, &r.EventID, &r.Member, &r.DurationMs, &decks); err != nil {
		return r, err
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return r, fmt.Errorf("run %s: bad created_at %q", r.ID, createdAt)
	}
	r.CreatedAt = t
	if err := json.Unmarshal([]byte(decks), &r.Decks); err != nil {
		return r, fmt.Errorf("run %s: decode decks: %w", r.ID, err)
	}
	return r, nil
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

func (d *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
