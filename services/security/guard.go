package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthcare-booking/models/account"
)

var ErrAccountNotFound = errors.New("account not found")

// FailureState is the lockout state stored after a failed login.
type FailureState struct {
	FailedLoginAttempts int
	LockedUntil         *time.Time
}

// Store persists lockout state. IncrementFailure must be a single atomic write so concurrent
// failures are all counted.
type Store interface {
	ClearExpiredLock(ctx context.Context, accountID uint, now time.Time) error
	IncrementFailure(ctx context.Context, accountID uint, now time.Time, threshold int, lockFor time.Duration) (FailureState, error)
	ResetFailures(ctx context.Context, accountID uint) error
}

// Guard tracks failed logins and locks accounts that exceed the threshold.
type Guard struct {
	store        Store
	MaxAttempts  int
	LockDuration time.Duration
}

func NewGuard(store Store, maxAttempts int, lockDuration time.Duration) *Guard {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if lockDuration <= 0 {
		lockDuration = 30 * time.Minute
	}
	return &Guard{store: store, MaxAttempts: maxAttempts, LockDuration: lockDuration}
}

// IsLocked reports whether a lock is in force. An expired lock is cleared and persisted.
func (g *Guard) IsLocked(ctx context.Context, acct *account.Account, now time.Time) (bool, error) {
	if acct.IsLockedAt(now) {
		return true, nil
	}
	if acct.LockExpiredAt(now) {
		if err := g.store.ClearExpiredLock(ctx, acct.ID, now); err != nil {
			return false, fmt.Errorf("failed to clear expired lock: %w", err)
		}
		acct.ClearLock()
	}
	return false, nil
}

// RemainingLockMinutes is the lock time left, rounded up to whole minutes.
func (g *Guard) RemainingLockMinutes(acct *account.Account, now time.Time) int {
	return acct.RemainingLockMinutes(now)
}

// RecordFailure counts a failed attempt and copies the stored state back onto acct.
func (g *Guard) RecordFailure(ctx context.Context, acct *account.Account, now time.Time) error {
	state, err := g.store.IncrementFailure(ctx, acct.ID, now, g.MaxAttempts, g.LockDuration)
	if err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}
	failedAt := now
	acct.FailedLoginAttempts = state.FailedLoginAttempts
	acct.LockedUntil = state.LockedUntil
	acct.LastFailedLoginAt = &failedAt
	return nil
}

// RecordSuccess clears the counter and any lock after a successful login.
func (g *Guard) RecordSuccess(ctx context.Context, acct *account.Account) error {
	if acct.FailedLoginAttempts == 0 && acct.LockedUntil == nil && acct.LastFailedLoginAt == nil {
		return nil
	}
	if err := g.store.ResetFailures(ctx, acct.ID); err != nil {
		return fmt.Errorf("failed to reset login failures: %w", err)
	}
	acct.ResetLockout()
	return nil
}
