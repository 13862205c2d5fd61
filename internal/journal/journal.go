// Package journal persists derived session state to SQLite: level
// transitions and unlock events, never raw input samples. The journal is an
// observer; the engine runs identically with or without one attached.
package journal

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/engagement-engine/internal/engine"
	"github.com/danielpatrickdp/engagement-engine/internal/feedback"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id    TEXT PRIMARY KEY,
	started_at    TEXT NOT NULL,
	closed_at     TEXT
);

CREATE TABLE IF NOT EXISTS level_snapshots (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	level         INTEGER NOT NULL,
	confidence    REAL NOT NULL,
	label         TEXT NOT NULL,
	sync_count    INTEGER NOT NULL,
	flags         TEXT,
	taken_at      TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS unlock_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	discovery_id  TEXT NOT NULL,
	level         INTEGER NOT NULL,
	source        TEXT,
	unlocked_at   TEXT NOT NULL,
	UNIQUE (session_id, discovery_id),
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`
// #endregion schema

// #region records

// LevelRecord is one persisted level snapshot row.
type LevelRecord struct {
	SessionID  string
	Level      int
	Confidence float64
	Label      string
	SyncCount  int
	Flags      string
	TakenAt    time.Time
}

// UnlockRecord is one persisted unlock row.
type UnlockRecord struct {
	SessionID  string
	Discovery  string
	Level      int
	Source     string
	UnlockedAt time.Time
}

// SessionRecord is one persisted session row.
type SessionRecord struct {
	SessionID string
	StartedAt time.Time
	ClosedAt  time.Time // zero when the session never closed cleanly
}

// #endregion records

// #region journal-struct

// Journal manages the session database.
type Journal struct {
	db  *sql.DB
	log *zap.Logger
	wg  sync.WaitGroup
}

// #endregion journal-struct

// #region constructor

// Open opens (or creates) the journal database and runs migrations.
func Open(dbPath string, log *zap.Logger) (*Journal, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Journal{db: db, log: log}, nil
}

// Close waits for any attached consumers and closes the database.
func (j *Journal) Close() error {
	j.wg.Wait()
	return j.db.Close()
}

// #endregion constructor

// #region writes

// BeginSession inserts the session row.
func (j *Journal) BeginSession(sessionID string, startedAt time.Time) error {
	_, err := j.db.Exec(
		`INSERT INTO sessions (session_id, started_at) VALUES (?, ?)`,
		sessionID, startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	return nil
}

// EndSession stamps the session's close time.
func (j *Journal) EndSession(sessionID string, closedAt time.Time) error {
	_, err := j.db.Exec(
		`UPDATE sessions SET closed_at = ? WHERE session_id = ?`,
		closedAt.UTC().Format(time.RFC3339Nano), sessionID,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// RecordLevel appends a level snapshot row.
func (j *Journal) RecordLevel(rec LevelRecord) error {
	_, err := j.db.Exec(
		`INSERT INTO level_snapshots (session_id, level, confidence, label, sync_count, flags, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID,
		rec.Level,
		rec.Confidence,
		rec.Label,
		rec.SyncCount,
		nullIfEmpty(rec.Flags),
		rec.TakenAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record level: %w", err)
	}
	return nil
}

// RecordUnlock appends an unlock row. A repeat of the same discovery within a
// session is ignored, matching the engine's at-most-once unlock rule.
func (j *Journal) RecordUnlock(rec UnlockRecord) error {
	_, err := j.db.Exec(
		`INSERT INTO unlock_log (session_id, discovery_id, level, source, unlocked_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id, discovery_id) DO NOTHING`,
		rec.SessionID,
		rec.Discovery,
		rec.Level,
		nullIfEmpty(rec.Source),
		rec.UnlockedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record unlock: %w", err)
	}
	return nil
}

// #endregion writes

// #region reads

// Sessions lists all sessions, oldest first.
func (j *Journal) Sessions() ([]SessionRecord, error) {
	rows, err := j.db.Query(
		`SELECT session_id, started_at, closed_at FROM sessions ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var started string
		var closed sql.NullString
		if err := rows.Scan(&rec.SessionID, &started, &closed); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if closed.Valid {
			if rec.ClosedAt, err = time.Parse(time.RFC3339Nano, closed.String); err != nil {
				return nil, fmt.Errorf("parse closed_at: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Levels lists a session's level snapshots in write order.
func (j *Journal) Levels(sessionID string) ([]LevelRecord, error) {
	rows, err := j.db.Query(
		`SELECT session_id, level, confidence, label, sync_count, flags, taken_at
		 FROM level_snapshots WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query levels: %w", err)
	}
	defer rows.Close()

	var out []LevelRecord
	for rows.Next() {
		var rec LevelRecord
		var flags sql.NullString
		var taken string
		if err := rows.Scan(&rec.SessionID, &rec.Level, &rec.Confidence,
			&rec.Label, &rec.SyncCount, &flags, &taken); err != nil {
			return nil, fmt.Errorf("scan level: %w", err)
		}
		rec.Flags = flags.String
		if rec.TakenAt, err = time.Parse(time.RFC3339Nano, taken); err != nil {
			return nil, fmt.Errorf("parse taken_at: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Unlocks lists a session's unlocks in write order.
func (j *Journal) Unlocks(sessionID string) ([]UnlockRecord, error) {
	rows, err := j.db.Query(
		`SELECT session_id, discovery_id, level, source, unlocked_at
		 FROM unlock_log WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query unlocks: %w", err)
	}
	defer rows.Close()

	var out []UnlockRecord
	for rows.Next() {
		var rec UnlockRecord
		var source sql.NullString
		var unlocked string
		if err := rows.Scan(&rec.SessionID, &rec.Discovery, &rec.Level,
			&source, &unlocked); err != nil {
			return nil, fmt.Errorf("scan unlock: %w", err)
		}
		rec.Source = source.String
		if rec.UnlockedAt, err = time.Parse(time.RFC3339Nano, unlocked); err != nil {
			return nil, fmt.Errorf("parse unlocked_at: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// #endregion reads

// #region attach

// Attach consumes an engine's state and unlock subscriptions until both
// close (the engine closes them on shutdown). Write failures are logged and
// skipped; persistence problems must never stall the session.
func (j *Journal) Attach(sessionID string, states <-chan engine.StateChange, unlocks <-chan feedback.Notification) {
	j.wg.Add(2)

	go func() {
		defer j.wg.Done()
		for change := range states {
			rec := LevelRecord{
				SessionID:  sessionID,
				Level:      change.Snapshot.Level,
				Confidence: change.Estimate.Confidence,
				Label:      string(change.Estimate.Label),
				SyncCount:  change.Snapshot.SynchronicityCount,
				Flags:      strings.Join(change.Snapshot.Flags, ","),
				TakenAt:    change.Snapshot.TakenAt,
			}
			if err := j.RecordLevel(rec); err != nil {
				j.log.Warn("journal level write failed", zap.Error(err))
			}
		}
	}()

	go func() {
		defer j.wg.Done()
		for n := range unlocks {
			rec := UnlockRecord{
				SessionID:  sessionID,
				Discovery:  n.Discovery,
				Level:      n.Level,
				Source:     n.Source,
				UnlockedAt: n.At,
			}
			if err := j.RecordUnlock(rec); err != nil {
				j.log.Warn("journal unlock write failed", zap.Error(err))
			}
		}
	}()
}

// #endregion attach

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
