package services

import (
	"log/slog"
	"sync"
	"time"
)

// LockoutConfig holds configuration for login lockout behavior
type LockoutConfig struct {
	MaxFailedAttempts int           // Failures before the account locks
	LockDuration      time.Duration // Window measured from the most recent failure
}

// DefaultLockoutConfig returns the stock lockout policy: three strikes,
// thirty seconds out.
func DefaultLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxFailedAttempts: 3,
		LockDuration:      30 * time.Second,
	}
}

// LockoutStatus is the result of a lockout check
type LockoutStatus struct {
	Locked     bool
	RetryAfter time.Duration // Remaining wait, only set when Locked
}

// lockoutRecord exists only while an account has at least one failed attempt
type lockoutRecord struct {
	failedAttempts int
	lastAttemptAt  time.Time
}

// LockoutService tracks failed login attempts per account identifier and
// locks accounts that hit the failure threshold. State is process-local and
// in-memory: a restart clears all lockouts, which is acceptable because this
// is a throttling aid, not the security boundary of record.
//
// All per-key read-modify-write sequences run under a single mutex so
// concurrent attempts for the same account can neither lose updates nor slip
// between a check and a record.
type LockoutService struct {
	mu      sync.Mutex
	records map[string]*lockoutRecord
	config  LockoutConfig
	logger  *slog.Logger
}

// NewLockoutService creates a new LockoutService
func NewLockoutService(config LockoutConfig, logger *slog.Logger) *LockoutService {
	return &LockoutService{
		records: make(map[string]*lockoutRecord),
		config:  config,
		logger:  logger,
	}
}

// CheckLocked reports whether the account is currently locked and, if so,
// how long until it unlocks. A lock whose window has lapsed is cleared here,
// on read: the next attempt after the window starts from a clean record.
func (s *LockoutService) CheckLocked(id string) LockoutStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok || record.failedAttempts < s.config.MaxFailedAttempts {
		return LockoutStatus{}
	}

	remaining := s.config.LockDuration - time.Since(record.lastAttemptAt)
	if remaining <= 0 {
		// Lock expired; clearing inside the check is deliberate
		delete(s.records, id)
		s.logger.Info("account lock expired", slog.String("account", id))
		return LockoutStatus{}
	}

	return LockoutStatus{Locked: true, RetryAfter: remaining}
}

// RecordFailure registers a failed verification for the account, creating
// the record on the first failure and refreshing the window on every later one.
func (s *LockoutService) RecordFailure(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		record = &lockoutRecord{}
		s.records[id] = record
	}

	record.failedAttempts++
	record.lastAttemptAt = time.Now()

	if record.failedAttempts >= s.config.MaxFailedAttempts {
		s.logger.Warn("account locked after repeated failures",
			slog.String("account", id),
			slog.Int("failed_attempts", record.failedAttempts),
			slog.Duration("lock_duration", s.config.LockDuration))
	}
}

// RecordSuccess resets the account to a clean state unconditionally.
func (s *LockoutService) RecordSuccess(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
}

// FailedAttempts returns the current failure count for the account.
func (s *LockoutService) FailedAttempts(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return 0
	}
	return record.failedAttempts
}

// PurgeExpired drops records whose lock window has lapsed and records that
// went stale below the threshold. Accounts that never retry would otherwise
// pin their entries forever. Returns the number of records removed.
func (s *LockoutService) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, record := range s.records {
		if time.Since(record.lastAttemptAt) >= s.config.LockDuration {
			delete(s.records, id)
			removed++
		}
	}

	return removed
}
