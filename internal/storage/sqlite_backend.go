package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

// SQLiteBackend stores the record as rows of a key/value table.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at dbPath and runs
// migrations. Use ":memory:" for an in-memory database.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory database only exists on its own connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	backend := &SQLiteBackend{db: db}
	if err := backend.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return backend, nil
}

func (backend *SQLiteBackend) migrate() error {
	var version int
	if err := backend.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}

	const ddl = `
	CREATE TABLE IF NOT EXISTS timer_state (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);`
	if _, err := backend.db.Exec(ddl); err != nil {
		return fmt.Errorf("create timer_state: %w", err)
	}

	_, err := backend.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion))
	return err
}

func (backend *SQLiteBackend) ReadRecord() (Record, bool, error) {
	rows, err := backend.db.Query(`SELECT key, value FROM timer_state`)
	if err != nil {
		return Record{}, false, fmt.Errorf("query timer state: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, 4)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Record{}, false, fmt.Errorf("scan timer state: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return Record{}, false, fmt.Errorf("iterate timer state: %w", err)
	}

	remaining, ok := values[KeyTimeRemaining]
	if !ok {
		return Record{}, false, nil
	}

	var record Record
	if record.TimeRemaining, err = strconv.Atoi(remaining); err != nil {
		return Record{}, false, fmt.Errorf("parse %s: %w", KeyTimeRemaining, err)
	}
	if raw, ok := values[KeyIsWorkSession]; ok {
		if record.IsWorkSession, err = strconv.ParseBool(raw); err != nil {
			return Record{}, false, fmt.Errorf("parse %s: %w", KeyIsWorkSession, err)
		}
	}
	if raw, ok := values[KeyCompletedSessions]; ok {
		if record.CompletedSessions, err = strconv.Atoi(raw); err != nil {
			return Record{}, false, fmt.Errorf("parse %s: %w", KeyCompletedSessions, err)
		}
	}
	if raw, ok := values[KeyIsPaused]; ok {
		if record.IsPaused, err = strconv.ParseBool(raw); err != nil {
			return Record{}, false, fmt.Errorf("parse %s: %w", KeyIsPaused, err)
		}
	}
	return record, true, nil
}

// WriteRecord upserts all four keys in one transaction.
func (backend *SQLiteBackend) WriteRecord(record Record) error {
	tx, err := backend.db.Begin()
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO timer_state (key, value, updated_at) VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ','now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare write: %w", err)
	}
	defer stmt.Close()

	values := [][2]string{
		{KeyTimeRemaining, strconv.Itoa(record.TimeRemaining)},
		{KeyIsWorkSession, strconv.FormatBool(record.IsWorkSession)},
		{KeyCompletedSessions, strconv.Itoa(record.CompletedSessions)},
		{KeyIsPaused, strconv.FormatBool(record.IsPaused)},
	}
	for _, kv := range values {
		if _, err := stmt.Exec(kv[0], kv[1]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write %s: %w", kv[0], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write: %w", err)
	}
	return nil
}

func (backend *SQLiteBackend) Clear() error {
	if _, err := backend.db.Exec(`DELETE FROM timer_state`); err != nil {
		return fmt.Errorf("clear timer state: %w", err)
	}
	return nil
}

func (backend *SQLiteBackend) Close() error {
	return backend.db.Close()
}
