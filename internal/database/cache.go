package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ListCacheEntry is a cached list response body
type ListCacheEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"-"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ListCacheStore handles database operations for the list response cache
type ListCacheStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewListCacheStore creates a new list cache store
func NewListCacheStore(db *sql.DB) *ListCacheStore {
	return &ListCacheStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Get retrieves a cached body; a miss or an expired entry returns nil
func (r *ListCacheStore) Get(key string) ([]byte, error) {
	query := `SELECT response_data, expires_at FROM list_cache WHERE cache_key = ?`

	var responseData string
	var expiresAt time.Time

	err := r.db.QueryRow(query, key).Scan(&responseData, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached response: %w", err)
	}

	if !r.now().Before(expiresAt) {
		if err := r.Delete(key); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return []byte(responseData), nil
}

// Set stores a response body with the specified TTL
func (r *ListCacheStore) Set(key string, data []byte, ttl time.Duration) error {
	expiresAt := r.now().Add(ttl)

	query := `INSERT OR REPLACE INTO list_cache (cache_key, response_data, cached_at, expires_at)
			  VALUES (?, ?, ?, ?)`

	if _, err := r.db.Exec(query, key, string(data), r.now(), expiresAt); err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}

	return nil
}

// Delete removes one cached entry
func (r *ListCacheStore) Delete(key string) error {
	if _, err := r.db.Exec(`DELETE FROM list_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cached entry: %w", err)
	}
	return nil
}

// DeletePrefix removes the entry for prefix itself and every entry under
// prefix+"/" or prefix+"?". It returns the number of rows removed.
func (r *ListCacheStore) DeletePrefix(prefix string) (int64, error) {
	query := `DELETE FROM list_cache
			  WHERE cache_key = ?
			     OR substr(cache_key, 1, ?) = ?
			     OR substr(cache_key, 1, ?) = ?`

	n := len(prefix) + 1
	result, err := r.db.Exec(query, prefix, n, prefix+"/", n, prefix+"?")
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate %s: %w", prefix, err)
	}

	return result.RowsAffected()
}

// DeleteExpired removes all expired cache entries and returns how many went
func (r *ListCacheStore) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM list_cache WHERE expires_at <= ?`, r.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired entries: %w", err)
	}
	return result.RowsAffected()
}

// Purge empties the cache
func (r *ListCacheStore) Purge() error {
	if _, err := r.db.Exec(`DELETE FROM list_cache`); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

// LoadAll loads all non-expired cache entries.
// Used for initializing the in-memory cache on startup.
func (r *ListCacheStore) LoadAll() ([]ListCacheEntry, error) {
	query := `SELECT cache_key, response_data, cached_at, expires_at FROM list_cache WHERE expires_at > ? ORDER BY cache_key`

	rows, err := r.db.Query(query, r.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load cache entries: %w", err)
	}
	defer rows.Close()

	var entries []ListCacheEntry
	for rows.Next() {
		var entry ListCacheEntry
		var data string
		if err := rows.Scan(&entry.Key, &data, &entry.CachedAt, &entry.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		entry.Data = []byte(data)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache entries: %w", err)
	}

	return entries, nil
}

// GetStats returns the total and expired entry counts
func (r *ListCacheStore) GetStats() (int, int, error) {
	var total, expired int

	if err := r.db.QueryRow("SELECT COUNT(*) FROM list_cache").Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to get total cache entries: %w", err)
	}

	if err := r.db.QueryRow("SELECT COUNT(*) FROM list_cache WHERE expires_at <= ?", r.now()).Scan(&expired); err != nil {
		return 0, 0, fmt.Errorf("failed to get expired cache entries: %w", err)
	}

	return total, expired, nil
}

// HasPrefix reports whether key falls under prefix using the same rule as DeletePrefix
func HasPrefix(key, prefix string) bool {
	if key == prefix {
		return true
	}
	return strings.HasPrefix(key, prefix+"/") || strings.HasPrefix(key, prefix+"?")
}
