package cache

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"
)

// SqliteStore keeps snapshots in a single key-value table inside a local
// sqlite file. The default backend.
type SqliteStore struct {
	conn *sql.DB
}

func NewSqliteStore(path string) (*SqliteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers and keeps :memory: databases
	// from splitting across pooled connections.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		return nil, err
	}

	store := &SqliteStore{conn: conn}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

func (s *SqliteStore) migrate() error {
	_, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func (s *SqliteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	row := s.conn.QueryRowContext(ctx, "SELECT value FROM snapshots WHERE key = ?", key)

	var value []byte
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (s *SqliteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}

func (s *SqliteStore) Delete(ctx context.Context, key string) error {
	_, err := s.conn.ExecContext(ctx, "DELETE FROM snapshots WHERE key = ?", key)
	return err
}

func (s *SqliteStore) Close() error {
	return s.conn.Close()
}
