package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"school-admin/internal/database"
)

// Store is the persistent layer behind the in-memory cache
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, data []byte, ttl time.Duration) error
	DeletePrefix(prefix string) (int64, error)
	DeleteExpired() (int64, error)
	Purge() error
	LoadAll() ([]database.ListCacheEntry, error)
	GetStats() (int, int, error)
}

// CachedResponse represents an in-memory cached body with expiry
type CachedResponse struct {
	Data      []byte
	ExpiresAt time.Time
}

// IsExpired checks if the cached response has expired
func (c *CachedResponse) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Manager caches list responses in memory and in the local database.
// Keys are request paths including the query string.
type Manager struct {
	store    Store
	memory   sync.Map // map[string]*CachedResponse
	disabled bool
	ttl      time.Duration
	logger   *slog.Logger

	// Cleanup goroutine control
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a new cache manager. store may be nil when disabled is true.
func NewManager(store Store, disabled bool, ttl time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	manager := &Manager{
		store:    store,
		disabled: disabled || store == nil,
		ttl:      ttl,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	if !manager.disabled {
		if err := manager.loadFromDatabase(); err != nil {
			logger.Warn("Failed to load cache from database", "error", err)
		}

		go manager.cleanupLoop()
	}

	return manager
}

// Get returns the cached body for key, or nil on a miss
func (m *Manager) Get(key string) ([]byte, error) {
	if m.disabled {
		return nil, nil
	}

	if value, ok := m.memory.Load(key); ok {
		cached := value.(*CachedResponse)
		if !cached.IsExpired() {
			return cached.Data, nil
		}
		m.memory.Delete(key)
	}

	data, err := m.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get from database cache: %w", err)
	}

	if data != nil {
		m.memory.Store(key, &CachedResponse{
			Data:      data,
			ExpiresAt: time.Now().Add(m.ttl),
		})
	}

	return data, nil
}

// Set stores a body in both memory and database
func (m *Manager) Set(key string, data []byte) error {
	if m.disabled {
		return nil
	}

	if err := m.store.Set(key, data, m.ttl); err != nil {
		return fmt.Errorf("failed to store in database cache: %w", err)
	}

	m.memory.Store(key, &CachedResponse{
		Data:      data,
		ExpiresAt: time.Now().Add(m.ttl),
	})

	return nil
}

// InvalidatePrefix drops every entry whose key is prefix or lies under it
func (m *Manager) InvalidatePrefix(prefix string) error {
	if m.disabled {
		return nil
	}

	dropped := 0
	m.memory.Range(func(key, _ interface{}) bool {
		if database.HasPrefix(key.(string), prefix) {
			m.memory.Delete(key)
			dropped++
		}
		return true
	})

	removed, err := m.store.DeletePrefix(prefix)
	if err != nil {
		return fmt.Errorf("failed to invalidate database cache: %w", err)
	}

	if dropped > 0 || removed > 0 {
		m.logger.Debug("Invalidated cache entries", "prefix", prefix, "memory", dropped, "database", removed)
	}

	return nil
}

// Purge drops everything. Called when the session changes.
func (m *Manager) Purge() error {
	if m.disabled {
		return nil
	}

	m.memory.Range(func(key, _ interface{}) bool {
		m.memory.Delete(key)
		return true
	})

	if err := m.store.Purge(); err != nil {
		return fmt.Errorf("failed to purge database cache: %w", err)
	}

	return nil
}

// IsEnabled returns true if caching is enabled
func (m *Manager) IsEnabled() bool {
	return !m.disabled
}

// loadFromDatabase loads all non-expired cache entries from database into memory
func (m *Manager) loadFromDatabase() error {
	entries, err := m.store.LoadAll()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		m.memory.Store(entry.Key, &CachedResponse{
			Data:      entry.Data,
			ExpiresAt: entry.ExpiresAt,
		})
	}

	if len(entries) > 0 {
		m.logger.Debug("Loaded cache entries from database", "count", len(entries))
	}

	return nil
}

// cleanupLoop runs periodically to clean up expired entries
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

// cleanup removes expired entries from both memory and database
func (m *Manager) cleanup() {
	memoryCount := 0
	m.memory.Range(func(key, value interface{}) bool {
		if value.(*CachedResponse).IsExpired() {
			m.memory.Delete(key)
			memoryCount++
		}
		return true
	})

	if _, err := m.store.DeleteExpired(); err != nil {
		m.logger.Warn("Failed to clean up expired database cache entries", "error", err)
	}

	if memoryCount > 0 {
		m.logger.Debug("Cleaned up expired memory cache entries", "count", memoryCount)
	}
}

// GetStats returns cache statistics
func (m *Manager) GetStats() (CacheStats, error) {
	stats := CacheStats{
		Disabled: m.disabled,
		TTL:      m.ttl,
	}

	if m.disabled {
		return stats, nil
	}

	m.memory.Range(func(_, value interface{}) bool {
		stats.MemoryTotal++
		if value.(*CachedResponse).IsExpired() {
			stats.MemoryExpired++
		}
		return true
	})

	dbTotal, dbExpired, err := m.store.GetStats()
	if err != nil {
		return stats, fmt.Errorf("failed to get database stats: %w", err)
	}

	stats.DatabaseTotal = dbTotal
	stats.DatabaseExpired = dbExpired

	return stats, nil
}

// Close shuts down the cache manager and cleanup goroutine
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// CacheStats represents cache statistics
type CacheStats struct {
	Disabled        bool          `json:"disabled"`
	TTL             time.Duration `json:"ttl"`
	MemoryTotal     int           `json:"memory_total"`
	MemoryExpired   int           `json:"memory_expired"`
	DatabaseTotal   int           `json:"database_total"`
	DatabaseExpired int           `json:"database_expired"`
}
