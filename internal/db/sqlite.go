package db

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	path string
	conn *sql.DB
}

func NewSQLite(path string) *SQLite {
	return &SQLite{
		path: path,
		conn: nil,
	}
}

func (s *SQLite) InitDB() error {
	var err error
	s.conn, err = sql.Open("sqlite3", s.path)
	if err != nil {
		return err
	}

	// One row per cached post, keyed by slug. Content is the compressed JSON
	// of the fully assembled post; content_hash detects upstream edits.
	_, err = s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS cached_posts (
			slug TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content BLOB NOT NULL,
			content_hash TEXT NOT NULL,
			fetched_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	dbLogger.Debug().Str("path", s.path).Msg("Post cache database initialized")
	return nil
}

func (s *SQLite) Get() *sql.DB {
	return s.conn
}

func (s *SQLite) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *SQLite) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return s.conn.Query(query, args...)
}

func (s *SQLite) Exec(query string, args ...interface{}) (sql.Result, error) {
	return s.conn.Exec(query, args...)
}
