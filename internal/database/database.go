// Package database is the SQLite backend for items, areas, and demands.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the SQLite database at path and brings the
// schema up to date. ":memory:" opens a private in-memory database.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("database path is empty")
	}
	memory := path == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	if memory {
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return db, nil
}

func dsn(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: path}
	q := url.Values{}
	q.Set("mode", "rwc")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	u.RawQuery = q.Encode()
	return u.String()
}

func ensureSchema(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	kind TEXT NOT NULL,
	start_date TEXT NOT NULL,
	recurrence_days TEXT NOT NULL DEFAULT '[]',
	target_repetitions INTEGER NOT NULL DEFAULT 1,
	global_status TEXT NOT NULL DEFAULT 'pending',
	history TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS areas (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS demands (
	id TEXT PRIMARY KEY,
	area_id TEXT NOT NULL REFERENCES areas(id) ON DELETE CASCADE,
	description TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'PENDENTE',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_demands_area ON demands(area_id, created_at);`
	if _, err := db.Exec(ddl); err != nil {
		return err
	}
	return ensureColumns(db, "items", map[string]string{
		"category":   "ALTER TABLE items ADD COLUMN category TEXT NOT NULL DEFAULT '';",
		"icon":       "ALTER TABLE items ADD COLUMN icon TEXT NOT NULL DEFAULT '';",
		"icon_color": "ALTER TABLE items ADD COLUMN icon_color TEXT NOT NULL DEFAULT '';",
	})
}

// ensureColumns adds any column in required that table does not have yet.
func ensureColumns(db *sql.DB, table string, required map[string]string) error {
	rows, err := db.Query(`PRAGMA table_info(` + table + `);`)
	if err != nil {
		return err
	}
	existing := map[string]struct{}{}
	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := db.Exec(alter); err != nil {
			return fmt.Errorf("adding %s.%s: %w", table, col, err)
		}
	}
	return nil
}
