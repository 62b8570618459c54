package security

import (
	"context"
	"time"

	"healthcare-booking/models/account"

	"gorm.io/gorm"
)

// GormStore keeps lockout state in the accounts table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// A lock still in force is kept as is; otherwise the lock starts once the new count reaches the threshold.
const incrementFailureSQL = `UPDATE accounts SET
	failed_login_attempts = failed_login_attempts + 1,
	last_failed_login_at = ?,
	locked_until = CASE
		WHEN locked_until IS NOT NULL AND locked_until > ? THEN locked_until
		WHEN failed_login_attempts + 1 >= ? THEN ?
		ELSE locked_until
	END,
	updated_at = ?
WHERE id = ?
RETURNING failed_login_attempts, locked_until`

func (s *GormStore) IncrementFailure(ctx context.Context, accountID uint, now time.Time, threshold int, lockFor time.Duration) (FailureState, error) {
	var state FailureState
	result := s.db.WithContext(ctx).
		Raw(incrementFailureSQL, now, now, threshold, now.Add(lockFor), now, accountID).
		Scan(&state)
	if result.Error != nil {
		return FailureState{}, result.Error
	}
	if result.RowsAffected == 0 {
		return FailureState{}, ErrAccountNotFound
	}
	return state, nil
}

func (s *GormStore) ClearExpiredLock(ctx context.Context, accountID uint, now time.Time) error {
	return s.db.WithContext(ctx).
		Model(&account.Account{}).
		Where("id = ? AND locked_until IS NOT NULL AND locked_until <= ?", accountID, now).
		Updates(map[string]interface{}{
			"failed_login_attempts": 0,
			"locked_until":          nil,
		}).Error
}

func (s *GormStore) ResetFailures(ctx context.Context, accountID uint) error {
	return s.db.WithContext(ctx).
		Model(&account.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"failed_login_attempts": 0,
			"locked_until":          nil,
			"last_failed_login_at":  nil,
		}).Error
}
