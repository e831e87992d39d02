package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"school-admin/internal/models"
)

// Keys under which the session is persisted. Both are written and cleared together.
const (
	SessionKey = "session"
	TokenKey   = "token"
)

// KVStore is a small string key/value table
type KVStore struct {
	db *sql.DB
}

// NewKVStore creates a new key/value store
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the value for key; ok is false when the key is absent
func (s *KVStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes the values of all given keys in one transaction
func (s *KVStore) Set(values map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range values {
		_, err := tx.Exec(`INSERT OR REPLACE INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`, key, value)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// Delete removes the given keys in one transaction. Missing keys are not an error.
func (s *KVStore) Delete(keys ...string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.Exec(`DELETE FROM kv_store WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// SessionStore persists the session under SessionKey (JSON) and TokenKey (bare token)
type SessionStore struct {
	kv *KVStore
}

// NewSessionStore creates a session store on top of kv
func NewSessionStore(kv *KVStore) *SessionStore {
	return &SessionStore{kv: kv}
}

// Load returns the persisted session, or nil when none is stored.
// A session whose two keys disagree is treated as absent.
func (s *SessionStore) Load() (*models.Session, error) {
	raw, ok, err := s.kv.Get(SessionKey)
	if err != nil || !ok {
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to decode stored session: %w", err)
	}

	token, ok, err := s.kv.Get(TokenKey)
	if err != nil {
		return nil, err
	}
	if !ok || token != session.Token {
		return nil, nil
	}

	return &session, nil
}

// Save writes both keys atomically
func (s *SessionStore) Save(session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.kv.Set(map[string]string{
		SessionKey: string(data),
		TokenKey:   session.Token,
	})
}

// Clear removes both keys
func (s *SessionStore) Clear() error {
	return s.kv.Delete(SessionKey, TokenKey)
}
