package services_test

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/acarrillo/tasknest/internal/services"
	"github.com/stretchr/testify/assert"
)

func newLockoutService(config services.LockoutConfig) *services.LockoutService {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return services.NewLockoutService(config, logger)
}

func TestLockoutService_CleanAccountNotLocked(t *testing.T) {
	service := newLockoutService(services.DefaultLockoutConfig())

	status := service.CheckLocked("a@x.com")

	assert.False(t, status.Locked)
	assert.Zero(t, status.RetryAfter)
}

func TestLockoutService_LocksAfterMaxAttempts(t *testing.T) {
	service := newLockoutService(services.DefaultLockoutConfig())

	for i := 0; i < 3; i++ {
		service.RecordFailure("a@x.com")
	}

	status := service.CheckLocked("a@x.com")
	assert.True(t, status.Locked)
	assert.Greater(t, status.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, status.RetryAfter, 30*time.Second)
}

func TestLockoutService_NotLockedBelowThreshold(t *testing.T) {
	service := newLockoutService(services.DefaultLockoutConfig())

	service.RecordFailure("a@x.com")
	service.RecordFailure("a@x.com")

	status := service.CheckLocked("a@x.com")
	assert.False(t, status.Locked)
	assert.Equal(t, 2, service.FailedAttempts("a@x.com"))
}

func TestLockoutService_RetryAfterDecreases(t *testing.T) {
	service := newLockoutService(services.LockoutConfig{
		MaxFailedAttempts: 3,
		LockDuration:      time.Second,
	})

	for i := 0; i < 3; i++ {
		service.RecordFailure("a@x.com")
	}

	first := service.CheckLocked("a@x.com")
	assert.True(t, first.Locked)

	time.Sleep(50 * time.Millisecond)

	second := service.CheckLocked("a@x.com")
	assert.True(t, second.Locked)
	assert.Less(t, second.RetryAfter, first.RetryAfter)
}

func TestLockoutService_LockExpiresAndClearsRecord(t *testing.T) {
	service := newLockoutService(services.LockoutConfig{
		MaxFailedAttempts: 3,
		LockDuration:      50 * time.Millisecond,
	})

	for i := 0; i < 3; i++ {
		service.RecordFailure("a@x.com")
	}
	assert.True(t, service.CheckLocked("a@x.com").Locked)

	time.Sleep(60 * time.Millisecond)

	// The expiry-observing check clears the record
	status := service.CheckLocked("a@x.com")
	assert.False(t, status.Locked)
	assert.Equal(t, 0, service.FailedAttempts("a@x.com"))
}

func TestLockoutService_SuccessResetsCounter(t *testing.T) {
	service := newLockoutService(services.DefaultLockoutConfig())

	service.RecordFailure("a@x.com")
	service.RecordFailure("a@x.com")
	service.RecordSuccess("a@x.com")

	assert.Equal(t, 0, service.FailedAttempts("a@x.com"))
	assert.False(t, service.CheckLocked("a@x.com").Locked)
}

func TestLockoutService_AccountsTrackedIndependently(t *testing.T) {
	service := newLockoutService(services.DefaultLockoutConfig())

	for i := 0; i < 3; i++ {
		service.RecordFailure("a@x.com")
	}

	assert.True(t, service.CheckLocked("a@x.com").Locked)
	assert.False(t, service.CheckLocked("b@x.com").Locked)
}

func TestLockoutService_ConcurrentFailuresAllRegister(t *testing.T) {
	service := newLockoutService(services.LockoutConfig{
		MaxFailedAttempts: 1000, // Keep the account under threshold for counting
		LockDuration:      time.Minute,
	})

	service.RecordFailure("a@x.com")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			service.RecordFailure("a@x.com")
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, service.FailedAttempts("a@x.com"))
}

func TestLockoutService_PurgeExpired(t *testing.T) {
	service := newLockoutService(services.LockoutConfig{
		MaxFailedAttempts: 3,
		LockDuration:      30 * time.Millisecond,
	})

	service.RecordFailure("stale@x.com")

	time.Sleep(40 * time.Millisecond)
	service.RecordFailure("fresh@x.com")

	removed := service.PurgeExpired()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, service.FailedAttempts("stale@x.com"))
	assert.Equal(t, 1, service.FailedAttempts("fresh@x.com"))
}
