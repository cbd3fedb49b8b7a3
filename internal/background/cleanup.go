package background

import (
	"context"
	"log/slog"
	"time"
)

// LockoutPurger is the part of the lockout tracker the sweeper needs
type LockoutPurger interface {
	PurgeExpired() int
}

// CleanupManager periodically drops stale lockout records so accounts that
// never retry do not pin their entries for the life of the process.
type CleanupManager struct {
	lockout  LockoutPurger
	logger   *slog.Logger
	interval time.Duration
	done     chan struct{}
}

// NewCleanupManager creates a new CleanupManager
func NewCleanupManager(lockout LockoutPurger, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		lockout:  lockout,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start runs the cleanup loop until the context is cancelled or Stop is called
func (m *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("lockout cleanup started", slog.Duration("interval", m.interval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			if removed := m.lockout.PurgeExpired(); removed > 0 {
				m.logger.Info("purged stale lockout records", slog.Int("removed", removed))
			}
		}
	}
}

// Stop signals the cleanup loop to exit
func (m *CleanupManager) Stop() {
	close(m.done)
}
