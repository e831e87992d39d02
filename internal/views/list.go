// Package views holds the state behind list and form screens: list results
// guarded by request generations, search filters, and the mutation state
// machine that drives notifications.
package views

import (
	"context"
	"errors"
	"sync"
)

// ErrStale is returned by Load when a newer request superseded this one
var ErrStale = errors.New("superseded by a newer request")

// Generation identifies one list request
type Generation uint64

// ListState holds the latest list result of a screen. Each request takes a
// generation from Begin; a response is kept only if no later request began
// in the meantime, so a slow answer for an old filter never overwrites a
// newer one.
type ListState[T any] struct {
	mu      sync.RWMutex
	current Generation
	items   []T
	err     error
	loaded  bool
	loading bool
}

// Begin starts a request and returns its generation
func (s *ListState[T]) Begin() Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current++
	s.loading = true
	return s.current
}

// Commit stores the outcome of request gen. It returns false and leaves the
// state untouched when gen is stale.
func (s *ListState[T]) Commit(gen Generation, items []T, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.current {
		return false
	}
	s.loading = false
	s.err = err
	if err == nil {
		s.items = items
		s.loaded = true
	}
	return true
}

// Load runs fetch as a new request and commits its result
func (s *ListState[T]) Load(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	gen := s.Begin()
	items, err := fetch(ctx)
	if !s.Commit(gen, items, err) {
		return ErrStale
	}
	return err
}

// Items returns a copy of the current items
func (s *ListState[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Err returns the error of the last committed request
func (s *ListState[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Loaded reports whether a request has ever succeeded
func (s *ListState[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Loading reports whether the latest request is still in flight
func (s *ListState[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Replace swaps the first item matching match for item, appending when none matches
func (s *ListState[T]) Replace(match func(T) bool, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if match(s.items[i]) {
			s.items[i] = item
			return
		}
	}
	s.items = append(s.items, item)
}

// Remove drops every item matching match
func (s *ListState[T]) Remove(match func(T) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, item := range s.items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	s.items = kept
}
