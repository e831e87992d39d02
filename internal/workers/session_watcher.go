package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Expirer clears a session whose token has expired
type Expirer interface {
	ExpireIfNeeded() (bool, error)
}

// SessionWatcher checks the session periodically during long-running
// commands so that an expired token logs the user out without waiting
// for the next request to fail
type SessionWatcher struct {
	ctx      context.Context
	cancel   context.CancelFunc
	sessions Expirer
	interval time.Duration
	onExpire func()
	paused   atomic.Bool
	running  atomic.Bool
	done     chan struct{}
	logger   *slog.Logger
}

// NewSessionWatcher creates a watcher. onExpire runs on the watcher goroutine
// after a session has been cleared.
func NewSessionWatcher(sessions Expirer, interval time.Duration, onExpire func(), logger *slog.Logger) *SessionWatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionWatcher{
		ctx:      ctx,
		cancel:   cancel,
		sessions: sessions,
		interval: interval,
		onExpire: onExpire,
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Start begins watching in the background
func (w *SessionWatcher) Start() {
	if !w.running.CompareAndSwap(false, true) {
		return
	}
	w.logger.Debug("Starting session watcher", "interval", w.interval)
	go w.watchLoop()
}

// Stop stops the watcher and waits for its goroutine to exit
func (w *SessionWatcher) Stop() {
	w.cancel()
	if w.running.Load() {
		<-w.done
	}
}

// Pause temporarily suspends checks
func (w *SessionWatcher) Pause() {
	w.paused.Store(true)
}

// Resume resumes checks
func (w *SessionWatcher) Resume() {
	w.paused.Store(false)
}

// IsPaused returns true if the watcher is currently paused
func (w *SessionWatcher) IsPaused() bool {
	return w.paused.Load()
}

// IsRunning returns true while the watcher goroutine is active
func (w *SessionWatcher) IsRunning() bool {
	if !w.running.Load() {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

func (w *SessionWatcher) watchLoop() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// check once immediately
	if w.check() {
		return
	}

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Debug("Session watcher stopped")
			return
		case <-ticker.C:
			if w.check() {
				return
			}
		}
	}
}

// check returns true once the session has expired and the watcher is done
func (w *SessionWatcher) check() bool {
	if w.paused.Load() {
		return false
	}

	expired, err := w.sessions.ExpireIfNeeded()
	if err != nil {
		w.logger.Warn("Session check failed", "error", err)
		return false
	}
	if !expired {
		return false
	}

	w.logger.Info("Session expired, logging out")
	if w.onExpire != nil {
		w.onExpire()
	}
	return true
}
