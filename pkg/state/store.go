// Package state persists blocked network attempts so a run's violations can
// be inspected after the fact (airgap report). Writes are best-effort from
// the check path; a broken store never fails a policy decision.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/airgaplab/airgap/internal/errx"
	"github.com/airgaplab/airgap/pkg/api"
)

// Violation is one recorded denial.
type Violation struct {
	ID        int64
	SessionID string
	Timestamp time.Time
	Host      string
	Port      int
	Caller    string
	Pattern   string
	URL       string
}

// Store is a sqlite-backed violation log. Safe for concurrent use; the
// underlying *sql.DB serializes access.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the violation store at path and applies
// pending migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errx.Wrap(ErrOpenStore, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errx.Wrap(ErrOpenStore, err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

type migration struct {
	version int
	name    string
	sql     string
}

func migrations() []migration {
	return []migration{
		{
			version: 1,
			name:    "create_violations",
			sql: `
CREATE TABLE IF NOT EXISTS violations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL,
  ts TEXT NOT NULL,
  host TEXT NOT NULL,
  port INTEGER NOT NULL,
  caller TEXT NOT NULL,
  pattern TEXT,
  url TEXT
);
CREATE INDEX IF NOT EXISTS idx_violations_session ON violations(session_id, ts);
`,
		},
	}
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, name TEXT NOT NULL)`); err != nil {
		return errx.Wrap(ErrMigrate, err)
	}
	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return errx.Wrap(ErrMigrate, err)
	}
	for _, m := range migrations() {
		if m.version <= current {
			continue
		}
		if _, err := db.Exec(m.sql); err != nil {
			return errx.With(ErrMigrate, " %q: %w", m.name, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
			return errx.Wrap(ErrMigrate, err)
		}
	}
	return nil
}

// Record persists one denial under the given session.
func (s *Store) Record(sessionID string, blocked *api.BlockedError) error {
	_, err := s.db.Exec(
		`INSERT INTO violations (session_id, ts, host, port, caller, pattern, url) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		time.Now().UTC().Format(time.RFC3339Nano),
		blocked.Host,
		blocked.Port,
		blocked.Caller,
		blocked.Pattern,
		blocked.URL,
	)
	if err != nil {
		return errx.Wrap(ErrRecord, err)
	}
	return nil
}

// List returns the most recent violations, newest first. limit <= 0 means
// no limit.
func (s *Store) List(limit int) ([]Violation, error) {
	query := `SELECT id, session_id, ts, host, port, caller, COALESCE(pattern, ''), COALESCE(url, '') FROM violations ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errx.Wrap(ErrList, err)
	}
	defer rows.Close()

	var out []Violation
	for rows.Next() {
		var v Violation
		var ts string
		if err := rows.Scan(&v.ID, &v.SessionID, &ts, &v.Host, &v.Port, &v.Caller, &v.Pattern, &v.URL); err != nil {
			return nil, errx.Wrap(ErrList, err)
		}
		v.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, v)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
