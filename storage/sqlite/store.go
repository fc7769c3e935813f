// Package sqlite persists tick results in a SQLite database so a race can be
// reviewed after the fact: one row per recommendation, one row per trigger
// event, keyed by lap.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/racelab/pitwall/core"
	"github.com/racelab/pitwall/race"
)

const schema = `
CREATE TABLE IF NOT EXISTS recommendations (
	id TEXT PRIMARY KEY,
	lap INTEGER NOT NULL,
	produced_at_lap INTEGER NOT NULL,
	source TEXT NOT NULL,
	consensus TEXT NOT NULL,
	type TEXT NOT NULL,
	urgency TEXT NOT NULL,
	confidence REAL NOT NULL,
	pit_window_start INTEGER,
	pit_window_end INTEGER,
	target_compound TEXT,
	driver_instruction TEXT NOT NULL,
	pit_crew_instruction TEXT NOT NULL,
	reasoning TEXT NOT NULL,
	key_events TEXT NOT NULL,
	degraded_reason TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recommendations_lap ON recommendations(lap);

CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	lap INTEGER NOT NULL,
	type TEXT NOT NULL,
	urgency TEXT NOT NULL,
	message TEXT NOT NULL,
	call_ai INTEGER NOT NULL,
	payload TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_lap ON events(lap);
`

// Store provides SQLite-backed persistence for tick results. It implements
// race.Sink.
type Store struct {
	sqlDB *sql.DB
}

var _ race.Sink = (*Store)(nil)

// Open opens (or creates) a store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// DB returns the underlying sql.DB instance.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordTick persists the recommendation and every event of one tick in a
// single transaction.
func (s *Store) RecordTick(ctx context.Context, result race.TickResult) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rec := result.Recommendation
	keyEvents, err := encodeJSON(rec.KeyEvents)
	if err != nil {
		return fmt.Errorf("marshal key events: %w", err)
	}

	var windowStart, windowEnd sql.NullInt64
	if rec.PitWindow != nil {
		windowStart = sql.NullInt64{Int64: int64(rec.PitWindow.Start), Valid: true}
		windowEnd = sql.NullInt64{Int64: int64(rec.PitWindow.End), Valid: true}
	}
	var compound sql.NullString
	if rec.TargetCompound != nil {
		compound = sql.NullString{String: string(*rec.TargetCompound), Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO recommendations (
			id, lap, produced_at_lap, source, consensus, type, urgency,
			confidence, pit_window_start, pit_window_end, target_compound,
			driver_instruction, pit_crew_instruction, reasoning, key_events,
			degraded_reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, result.Lap, rec.ProducedAtLap, string(rec.Source),
		string(rec.Consensus), string(rec.Type), string(rec.Urgency),
		rec.Confidence, windowStart, windowEnd, compound,
		rec.DriverInstruction, rec.PitCrewInstruction, rec.Reasoning,
		keyEvents, result.DegradedReason, toMillis(time.Now()),
	); err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}

	for _, e := range result.Events {
		payload, perr := encodeJSON(e.Payload)
		if perr != nil {
			return fmt.Errorf("marshal event payload: %w", perr)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events (id, lap, type, urgency, message, call_ai, payload, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Lap, string(e.Type), string(e.Urgency), e.Message,
			e.CallAI, payload, toMillis(e.Timestamp),
		); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// RecommendationForLap returns the recommendation recorded for a lap, or
// sql.ErrNoRows if the lap was never ticked.
func (s *Store) RecommendationForLap(ctx context.Context, lap int) (core.Recommendation, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
		SELECT id, produced_at_lap, source, consensus, type, urgency, confidence,
			pit_window_start, pit_window_end, target_compound,
			driver_instruction, pit_crew_instruction, reasoning, key_events
		FROM recommendations WHERE lap = ? ORDER BY rowid DESC LIMIT 1`, lap)
	return scanRecommendation(row)
}

// EventCount returns the number of events recorded for a lap.
func (s *Store) EventCount(ctx context.Context, lap int) (int, error) {
	var n int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE lap = ?`, lap).Scan(&n)
	return n, err
}

func scanRecommendation(row *sql.Row) (core.Recommendation, error) {
	var (
		rec          core.Recommendation
		source       string
		consensus    string
		recType      string
		urgency      string
		windowStart  sql.NullInt64
		windowEnd    sql.NullInt64
		compound     sql.NullString
		keyEventsRaw string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.ProducedAtLap,
		&source,
		&consensus,
		&recType,
		&urgency,
		&rec.Confidence,
		&windowStart,
		&windowEnd,
		&compound,
		&rec.DriverInstruction,
		&rec.PitCrewInstruction,
		&rec.Reasoning,
		&keyEventsRaw,
	); err != nil {
		return core.Recommendation{}, err
	}
	rec.Source = core.Source(source)
	rec.Consensus = core.Consensus(consensus)
	rec.Type = core.RecommendationType(recType)
	rec.Urgency = core.Urgency(urgency)
	if windowStart.Valid && windowEnd.Valid {
		rec.PitWindow = &core.PitWindow{Start: int(windowStart.Int64), End: int(windowEnd.Int64)}
	}
	if compound.Valid {
		c := core.Compound(compound.String)
		rec.TargetCompound = &c
	}
	if err := json.Unmarshal([]byte(keyEventsRaw), &rec.KeyEvents); err != nil {
		return core.Recommendation{}, fmt.Errorf("unmarshal key events: %w", err)
	}
	return rec, nil
}

func encodeJSON(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		value = time.Now()
	}
	return value.UTC().UnixMilli()
}
