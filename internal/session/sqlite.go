package session

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the session credential so a CLI session survives
// process restarts. The token is the only state kept on disk; the feed
// itself is never persisted.
type SQLiteStore struct{ sql *sql.DB }

const tokenKey = "auth_token"

func Open(path string) (*SQLiteStore, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = d.Close()
		return nil, err
	}
	s := &SQLiteStore{sql: d}
	if err := s.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.sql.Close() }

func (s *SQLiteStore) migrate() error {
	_, err := s.sql.Exec(`
	CREATE TABLE IF NOT EXISTS session (
	  key TEXT PRIMARY KEY,
	  value TEXT NOT NULL
	);
	`)
	return err
}

func (s *SQLiteStore) Token(ctx context.Context) (string, error) {
	row := s.sql.QueryRowContext(ctx, `SELECT value FROM session WHERE key=?`, tokenKey)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return v, nil
}

func (s *SQLiteStore) SetToken(ctx context.Context, token string) error {
	_, err := s.sql.ExecContext(ctx,
		`INSERT INTO session(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		tokenKey, token)
	return err
}

func (s *SQLiteStore) ClearToken(ctx context.Context) error { return s.SetToken(ctx, "") }
