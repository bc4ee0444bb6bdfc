package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/joaovasc10/bora/types"
)

const sessionKey = "session"

// SessionStore persists the auth session across restarts in a local sqlite
// database, the durable key-value storage of this client.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(path string) (*SessionStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening session db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating kv table: %w", err)
	}

	return &SessionStore{db: db}, nil
}

// Load returns the persisted session, or an empty (logged-out) session when
// none has been saved yet.
func (s *SessionStore) Load() (*types.Session, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, sessionKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return &types.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading session: %w", err)
	}

	var session types.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// A corrupt row should not lock the user out of the app.
		return &types.Session{}, nil
	}
	return &session, nil
}

func (s *SessionStore) Save(session *types.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		sessionKey, string(raw),
	)
	if err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, sessionKey)
	if err != nil {
		return fmt.Errorf("error clearing session: %w", err)
	}
	return nil
}

func (s *SessionStore) Close() error {
	return s.db.Close()
}
