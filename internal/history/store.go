package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"belltower/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; operators clear the history database after a mismatch.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages trigger history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// RecordTrigger inserts a new trigger event and returns it with its assigned id.
func (s *Store) RecordTrigger(ctx context.Context, event Event) (*Event, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	if event.Outcome == "" {
		event.Outcome = OutcomeFired
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO trigger_events (
            alarm_id, label, day, scheduled_time, sound, backend,
            outcome, detail, fired_on, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.AlarmID,
		event.Label,
		event.Day,
		event.ScheduledTime,
		event.Sound,
		event.Backend,
		string(event.Outcome),
		event.Detail,
		event.FiredOn,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert trigger event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// SetOutcome updates the outcome and detail of a recorded event.
func (s *Store) SetOutcome(ctx context.Context, id int64, outcome Outcome, detail string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE trigger_events SET outcome = ?, detail = ?, updated_at = ? WHERE id = ?`,
		string(outcome), detail, timestamp, id,
	)
	if err != nil {
		return fmt.Errorf("update trigger event %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("trigger event %d not found", id)
	}
	return nil
}

// GetByID fetches a single event.
func (s *Store) GetByID(ctx context.Context, id int64) (*Event, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM trigger_events WHERE id = ?", id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("trigger event %d not found", id)
		}
		return nil, err
	}
	return event, nil
}

// ListByDate returns every event fired on the given calendar date, oldest first.
func (s *Store) ListByDate(ctx context.Context, date string) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+" FROM trigger_events WHERE fired_on = ? ORDER BY id ASC", date)
	if err != nil {
		return nil, fmt.Errorf("list trigger events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// PruneBefore removes events fired before the given calendar date and reports
// how many were removed.
func (s *Store) PruneBefore(ctx context.Context, date string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM trigger_events WHERE fired_on < ?", date)
	if err != nil {
		return 0, fmt.Errorf("prune trigger events: %w", err)
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT id, alarm_id, label, day, scheduled_time, sound, backend,
    outcome, detail, fired_on, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		event     Event
		outcome   string
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&event.ID,
		&event.AlarmID,
		&event.Label,
		&event.Day,
		&event.ScheduledTime,
		&event.Sound,
		&event.Backend,
		&outcome,
		&event.Detail,
		&event.FiredOn,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.Outcome = Outcome(outcome)
	if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		event.CreatedAt = ts
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, updatedAt); parseErr == nil {
		event.UpdatedAt = ts
	}
	return &event, nil
}
