// Package index maintains the on-disk cache of session summaries so
// listing and browsing do not reparse every log file. The cache is
// advisory: any entry can be rebuilt from its source file.
package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ccview/ccview/internal/session"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS sessions (
    session_id     TEXT PRIMARY KEY,
    workspace      TEXT NOT NULL DEFAULT '',
    file_path      TEXT NOT NULL,
    cwd            TEXT NOT NULL DEFAULT '',
    description    TEXT NOT NULL DEFAULT '',
    message_count  INTEGER NOT NULL DEFAULT 0,
    size           INTEGER NOT NULL DEFAULT 0,
    mtime          INTEGER NOT NULL DEFAULT 0,
    first_ts       TEXT NOT NULL DEFAULT '',
    last_ts        TEXT NOT NULL DEFAULT '',
    model          TEXT NOT NULL DEFAULT '',
    input_tokens   INTEGER NOT NULL DEFAULT 0,
    output_tokens  INTEGER NOT NULL DEFAULT 0,
    cache_read     INTEGER NOT NULL DEFAULT 0,
    cache_create   INTEGER NOT NULL DEFAULT 0,
    tool_calls     TEXT NOT NULL DEFAULT '{}',
    sub_agent      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// schemaVersion should be bumped whenever summary extraction changes,
// to force a full re-index.
const schemaVersion = "1"

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	d.migrateSchemaVersion()
	return d, nil
}

func (d *DB) migrateSchemaVersion() {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil || ver != schemaVersion {
		// force re-summarize by resetting all mtime/size
		d.db.Exec("UPDATE sessions SET mtime = 0, size = 0")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error { return d.db.Close() }

func (d *DB) Raw() *sql.DB { return d.db }

// FileState is what incremental reindexing compares against the file on
// disk.
type FileState struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetFileState(sessionID string) (*FileState, error) {
	var st FileState
	err := d.db.QueryRow(
		"SELECT mtime, size FROM sessions WHERE session_id = ?",
		sessionID,
	).Scan(&st.Mtime, &st.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (d *DB) UpsertSummary(s *session.Summary) error {
	tools, err := json.Marshal(s.ToolCalls)
	if err != nil {
		tools = []byte("{}")
	}
	_, err = d.db.Exec(`
		INSERT OR REPLACE INTO sessions (
			session_id, workspace, file_path, cwd, description,
			message_count, size, mtime, first_ts, last_ts, model,
			input_tokens, output_tokens, cache_read, cache_create,
			tool_calls, sub_agent
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.Workspace, s.FilePath, s.Cwd, s.Description,
		s.MessageCount, s.Size, s.Modified.Unix(),
		formatTS(s.First), formatTS(s.Last), s.Model,
		s.Tokens.Input, s.Tokens.Output, s.Tokens.CacheRead, s.Tokens.CacheCreation,
		string(tools), boolInt(s.SubAgent),
	)
	return err
}

func (d *DB) GetSummary(sessionID string) (*session.Summary, error) {
	row := d.db.QueryRow(selectSummary+" WHERE session_id = ?", sessionID)
	s, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSummaries returns all cached summaries, newest first.
func (d *DB) ListSummaries(includeSubAgents bool) ([]session.Summary, error) {
	q := selectSummary
	if !includeSubAgents {
		q += " WHERE sub_agent = 0"
	}
	q += " ORDER BY mtime DESC"

	rows, err := d.db.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []session.Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (d *DB) AllSessionIDs() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT session_id FROM sessions")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (d *DB) DeleteSession(sessionID string) error {
	_, err := d.db.Exec("DELETE FROM sessions WHERE session_id = ?", sessionID)
	return err
}

func (d *DB) SessionCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

const selectSummary = `
	SELECT session_id, workspace, file_path, cwd, description,
	       message_count, size, mtime, first_ts, last_ts, model,
	       input_tokens, output_tokens, cache_read, cache_create,
	       tool_calls, sub_agent
	FROM sessions`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSummary(row rowScanner) (*session.Summary, error) {
	var s session.Summary
	var mtime int64
	var first, last, tools string
	var subAgent int
	err := row.Scan(
		&s.SessionID, &s.Workspace, &s.FilePath, &s.Cwd, &s.Description,
		&s.MessageCount, &s.Size, &mtime, &first, &last, &s.Model,
		&s.Tokens.Input, &s.Tokens.Output, &s.Tokens.CacheRead, &s.Tokens.CacheCreation,
		&tools, &subAgent,
	)
	if err != nil {
		return nil, err
	}
	s.Modified = time.Unix(mtime, 0)
	s.First = parseTS(first)
	s.Last = parseTS(last)
	s.SubAgent = subAgent != 0
	s.ToolCalls = make(map[string]int)
	json.Unmarshal([]byte(tools), &s.ToolCalls)
	return &s, nil
}

func formatTS(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTS(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
