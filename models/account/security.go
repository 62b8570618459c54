package account

import (
	"math"
	"time"
)

// IsLockedAt reports whether a lock is in force at now.
func (a *Account) IsLockedAt(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// LockExpiredAt reports whether a lock is recorded but has run out at now.
func (a *Account) LockExpiredAt(now time.Time) bool {
	return a.LockedUntil != nil && !now.Before(*a.LockedUntil)
}

// RemainingLockMinutes rounds the time left on the lock up to whole minutes.
func (a *Account) RemainingLockMinutes(now time.Time) int {
	if !a.IsLockedAt(now) {
		return 0
	}
	return int(math.Ceil(a.LockedUntil.Sub(now).Minutes()))
}

// ClearLock drops an expired lock and its counter.
func (a *Account) ClearLock() {
	a.FailedLoginAttempts = 0
	a.LockedUntil = nil
}

// ResetLockout clears every piece of lockout state after a successful login.
func (a *Account) ResetLockout() {
	a.FailedLoginAttempts = 0
	a.LockedUntil = nil
	a.LastFailedLoginAt = nil
}
