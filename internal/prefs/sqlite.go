package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "preferences.sqlite"

// SQLiteStore keeps one row per preference key. Per-key upserts make writes
// naturally partial, so the merge discipline costs nothing here.
type SQLiteStore struct {
	Dir string
}

func (s SQLiteStore) path() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure prefs dir: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.path())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness with a concurrent CLI process.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS preferences (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

func (s SQLiteStore) Read(ctx context.Context) (Document, error) {
	db, err := s.open(ctx)
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, `SELECT key, value FROM preferences`)
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = rows.Close() }()

	raw := map[string]json.RawMessage{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Document{}, err
		}
		if !json.Valid([]byte(v)) {
			// Skip damaged rows; same tolerance as a corrupt file.
			continue
		}
		raw[k] = json.RawMessage(v)
	}
	if err := rows.Err(); err != nil {
		return Document{}, err
	}
	return fromRaw(raw), nil
}

func (s SQLiteStore) Write(ctx context.Context, doc Document) error {
	keys, err := setKeys(doc)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for k, v := range keys {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO preferences (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
			k, string(v)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert %s: %w", k, err)
		}
	}
	return tx.Commit()
}
