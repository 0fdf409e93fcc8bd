// Package store persists questioning sessions, rule violations, and
// amendments in SQLite.
//
// The engine core performs no I/O; the session owner calls this layer
// after each transition. Sessions are stored whole as JSON snapshots with
// queryable columns alongside, and an FTS5 index over task descriptions
// supports both operator search and the pattern-history feed that lowers
// thresholds for familiar work.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/readygate/readygate/internal/rules"
	"github.com/readygate/readygate/internal/session"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotFound reports a missing session.
var ErrNotFound = errors.New("store: session not found")

// Summary is the compact list view of a stored session.
type Summary struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Phase       string  `json:"phase"`
	Status      string  `json:"status"`
	Confidence  float64 `json:"confidence"`
	Target      float64 `json:"target"`
	StartedAt   string  `json:"started_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ViolationRecord is a persisted rule violation tied to a session.
type ViolationRecord struct {
	SessionID   string `json:"session_id"`
	ViolationID string `json:"violation_id"`
	Family      string `json:"family"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Blocking    bool   `json:"blocking"`
	Resolution  string `json:"resolution,omitempty"`
	RecordedAt  string `json:"recorded_at"`
}

// Store is the persistence layer backed by SQLite + FTS5.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database under dataDir, applies the WAL
// pragmas, and runs migrations.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "readygate.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- Migrations ---

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id          TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			phase       TEXT NOT NULL,
			status      TEXT NOT NULL,
			confidence  REAL NOT NULL,
			target      REAL NOT NULL,
			started_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			snapshot    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_status  ON sessions(status);
		CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at DESC);

		CREATE TABLE IF NOT EXISTS answers (
			session_id  TEXT NOT NULL,
			question_id TEXT NOT NULL,
			text        TEXT NOT NULL,
			answered_at TEXT NOT NULL,
			PRIMARY KEY (session_id, question_id),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		);

		CREATE TABLE IF NOT EXISTS violations (
			session_id   TEXT NOT NULL,
			violation_id TEXT NOT NULL,
			family       TEXT NOT NULL,
			severity     TEXT NOT NULL,
			description  TEXT NOT NULL,
			blocking     INTEGER NOT NULL DEFAULT 0,
			resolution   TEXT,
			recorded_at  TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_violations_session ON violations(session_id);

		CREATE TABLE IF NOT EXISTS amendments (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			rule_id     TEXT NOT NULL,
			previous    REAL NOT NULL,
			value       REAL NOT NULL,
			rationale   TEXT NOT NULL,
			accepted_at TEXT NOT NULL
		);

		CREATE VIRTUAL TABLE IF NOT EXISTS sessions_fts USING fts5(
			id UNINDEXED,
			description
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.migrateTriggers()
}

// migrateTriggers keeps the FTS index in lockstep with the sessions table.
func (s *Store) migrateTriggers() error {
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='trigger' AND name='sessions_fts_insert'",
	).Scan(&name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = s.db.Exec(`
		CREATE TRIGGER sessions_fts_insert AFTER INSERT ON sessions BEGIN
			INSERT INTO sessions_fts(id, description) VALUES (new.id, new.description);
		END;
		CREATE TRIGGER sessions_fts_delete AFTER DELETE ON sessions BEGIN
			DELETE FROM sessions_fts WHERE id = old.id;
		END;
		CREATE TRIGGER sessions_fts_update AFTER UPDATE OF description ON sessions BEGIN
			DELETE FROM sessions_fts WHERE id = old.id;
			INSERT INTO sessions_fts(id, description) VALUES (new.id, new.description);
		END;
	`)
	return err
}

// --- Sessions ---

// SaveSession upserts a session snapshot and appends any answers not yet
// on record, in one transaction.
func (s *Store) SaveSession(sess *session.Session) error {
	snapshot, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("store: marshal session: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sessions (id, description, phase, status, confidence, target, started_at, updated_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			phase = excluded.phase,
			status = excluded.status,
			confidence = excluded.confidence,
			updated_at = excluded.updated_at,
			snapshot = excluded.snapshot`,
		sess.ID, sess.Context.Description, string(sess.Phase), string(sess.Status),
		sess.Confidence, sess.Target,
		sess.StartedAt.Format(time.RFC3339), sess.UpdatedAt.Format(time.RFC3339),
		string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("store: upsert session: %w", err)
	}

	for _, a := range sess.Answers {
		_, err = tx.Exec(`
			INSERT INTO answers (session_id, question_id, text, answered_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(session_id, question_id) DO NOTHING`,
			sess.ID, a.QuestionID, a.Text, a.AnsweredAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("store: insert answer: %w", err)
		}
	}

	return tx.Commit()
}

// LoadSession reads a session back from its snapshot.
func (s *Store) LoadSession(id string) (*session.Session, error) {
	var snapshot string
	err := s.db.QueryRow("SELECT snapshot FROM sessions WHERE id = ?", id).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(snapshot), &sess); err != nil {
		return nil, fmt.Errorf("store: unmarshal session %s: %w", id, err)
	}
	return &sess, nil
}

// ActiveSession returns the most recently updated ACTIVE session, or
// ErrNotFound when none is active.
func (s *Store) ActiveSession() (*session.Session, error) {
	var id string
	err := s.db.QueryRow(
		"SELECT id FROM sessions WHERE status = ? ORDER BY updated_at DESC LIMIT 1",
		string(session.StatusActive),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no active session", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: active session: %w", err)
	}
	return s.LoadSession(id)
}

// ListSessions returns session summaries, most recently updated first.
func (s *Store) ListSessions(limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, description, phase, status, confidence, target, started_at, updated_at
		FROM sessions ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// SearchSessions runs an FTS5 match over task descriptions.
func (s *Store) SearchSessions(query string, limit int) ([]Summary, error) {
	ftsQuery := ftsTerms(query)
	if ftsQuery == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT s.id, s.description, s.phase, s.status, s.confidence, s.target, s.started_at, s.updated_at
		FROM sessions_fts f
		JOIN sessions s ON s.id = f.id
		WHERE sessions_fts MATCH ?
		ORDER BY rank LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search sessions: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// CountSimilar counts completed sessions whose description shares terms
// with the given one. Feeds threshold adjustment: familiar work earns a
// lower bar. Implements session.PatternSource.
func (s *Store) CountSimilar(description string) (int, error) {
	ftsQuery := ftsTerms(description)
	if ftsQuery == "" {
		return 0, nil
	}
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM sessions_fts f
		JOIN sessions s ON s.id = f.id
		WHERE sessions_fts MATCH ? AND s.status = ?`,
		ftsQuery, string(session.StatusCompleted),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count similar: %w", err)
	}
	return n, nil
}

func scanSummaries(rows *sql.Rows) ([]Summary, error) {
	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.Description, &sm.Phase, &sm.Status,
			&sm.Confidence, &sm.Target, &sm.StartedAt, &sm.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan session: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// ftsTerms builds an OR query from the distinctive words of a description.
// Terms are quoted so punctuation cannot break the MATCH syntax.
func ftsTerms(text string) string {
	seen := map[string]bool{}
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if len(w) < 4 || seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, `"`+strings.ReplaceAll(w, `"`, ``)+`"`)
		if len(terms) >= 6 {
			break
		}
	}
	return strings.Join(terms, " OR ")
}

// --- Violations ---

// RecordViolations appends a session's violation set.
func (s *Store) RecordViolations(sessionID string, vs []rules.Violation) error {
	if len(vs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	for _, v := range vs {
		_, err = tx.Exec(`
			INSERT INTO violations (session_id, violation_id, family, severity, description, blocking, resolution)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sessionID, v.ID, string(v.Family), string(v.Severity),
			v.Description, boolToInt(v.Blocking), v.Resolution,
		)
		if err != nil {
			return fmt.Errorf("store: insert violation: %w", err)
		}
	}
	return tx.Commit()
}

// ListViolations returns a session's recorded violations, oldest first.
func (s *Store) ListViolations(sessionID string) ([]ViolationRecord, error) {
	rows, err := s.db.Query(`
		SELECT session_id, violation_id, family, severity, description, blocking, COALESCE(resolution, ''), recorded_at
		FROM violations WHERE session_id = ? ORDER BY recorded_at, violation_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: list violations: %w", err)
	}
	defer rows.Close()

	var out []ViolationRecord
	for rows.Next() {
		var vr ViolationRecord
		var blocking int
		if err := rows.Scan(&vr.SessionID, &vr.ViolationID, &vr.Family, &vr.Severity,
			&vr.Description, &blocking, &vr.Resolution, &vr.RecordedAt); err != nil {
			return nil, fmt.Errorf("store: scan violation: %w", err)
		}
		vr.Blocking = blocking != 0
		out = append(out, vr)
	}
	return out, rows.Err()
}

// --- Amendments ---

// RecordAmendment appends an accepted amendment to the audit log.
func (s *Store) RecordAmendment(a rules.Amendment) error {
	_, err := s.db.Exec(`
		INSERT INTO amendments (rule_id, previous, value, rationale, accepted_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.RuleID, a.Previous, a.Value, a.Rationale, a.AcceptedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: insert amendment: %w", err)
	}
	return nil
}

// ListAmendments returns the amendment log, oldest first.
func (s *Store) ListAmendments() ([]rules.Amendment, error) {
	rows, err := s.db.Query(
		"SELECT rule_id, previous, value, rationale, accepted_at FROM amendments ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("store: list amendments: %w", err)
	}
	defer rows.Close()

	var out []rules.Amendment
	for rows.Next() {
		var a rules.Amendment
		var accepted string
		if err := rows.Scan(&a.RuleID, &a.Previous, &a.Value, &a.Rationale, &accepted); err != nil {
			return nil, fmt.Errorf("store: scan amendment: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, accepted); err == nil {
			a.AcceptedAt = t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
