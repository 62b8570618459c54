package security

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"healthcare-booking/models/account"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// memStore mirrors the SQL semantics of GormStore on in-memory rows.
type memStore struct {
	mu   sync.Mutex
	rows map[uint]*account.Account
}

func newMemStore(rows ...*account.Account) *memStore {
	s := &memStore{rows: make(map[uint]*account.Account)}
	for _, r := range rows {
		copied := *r
		s.rows[r.ID] = &copied
	}
	return s
}

func (s *memStore) ClearExpiredLock(_ context.Context, id uint, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row := s.rows[id]; row != nil && row.LockExpiredAt(now) {
		row.ClearLock()
	}
	return nil
}

// registerFailure applies the lockout rule of GormStore.IncrementFailure to an in-memory row.
func registerFailure(row *account.Account, now time.Time, threshold int, lockFor time.Duration) {
	row.FailedLoginAttempts++
	failedAt := now
	row.LastFailedLoginAt = &failedAt
	if row.FailedLoginAttempts >= threshold && !row.IsLockedAt(now) {
		lockUntil := now.Add(lockFor)
		row.LockedUntil = &lockUntil
	}
}

func (s *memStore) IncrementFailure(_ context.Context, id uint, now time.Time, threshold int, lockFor time.Duration) (FailureState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[id]
	if row == nil {
		return FailureState{}, ErrAccountNotFound
	}
	registerFailure(row, now, threshold, lockFor)
	return FailureState{FailedLoginAttempts: row.FailedLoginAttempts, LockedUntil: row.LockedUntil}, nil
}

func (s *memStore) ResetFailures(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row := s.rows[id]; row != nil {
		row.ResetLockout()
	}
	return nil
}

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func TestGuard_LocksAfterFiveFailures(t *testing.T) {
	acct := &account.Account{ID: 1}
	store := newMemStore(acct)
	guard := NewGuard(store, 5, 30*time.Minute)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		require.NoError(t, guard.RecordFailure(ctx, acct, t0))
		locked, err := guard.IsLocked(ctx, acct, t0)
		require.NoError(t, err)
		assert.False(t, locked, "attempt %d", i)
	}

	require.NoError(t, guard.RecordFailure(ctx, acct, t0))
	locked, err := guard.IsLocked(ctx, acct, t0)
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Equal(t, 30, guard.RemainingLockMinutes(acct, t0))
	assert.Equal(t, t0.Add(30*time.Minute), *store.rows[1].LockedUntil)
}

func TestGuard_FailureDuringLockDoesNotExtendIt(t *testing.T) {
	lockedUntil := t0.Add(5 * time.Minute)
	acct := &account.Account{ID: 1, FailedLoginAttempts: 5, LockedUntil: &lockedUntil}
	guard := NewGuard(newMemStore(acct), 5, 30*time.Minute)

	require.NoError(t, guard.RecordFailure(context.Background(), acct, t0))

	assert.Equal(t, 6, acct.FailedLoginAttempts)
	assert.Equal(t, lockedUntil, *acct.LockedUntil)
	assert.Equal(t, 5, guard.RemainingLockMinutes(acct, t0))
}

func TestGuard_ExpiredLockIsClearedLazily(t *testing.T) {
	lockedUntil := t0.Add(-time.Second)
	acct := &account.Account{ID: 1, FailedLoginAttempts: 5, LockedUntil: &lockedUntil}
	store := newMemStore(acct)
	guard := NewGuard(store, 5, 30*time.Minute)

	locked, err := guard.IsLocked(context.Background(), acct, t0)
	require.NoError(t, err)

	assert.False(t, locked)
	assert.Nil(t, acct.LockedUntil)
	assert.Zero(t, acct.FailedLoginAttempts)
	assert.Nil(t, store.rows[1].LockedUntil)
	assert.Zero(t, store.rows[1].FailedLoginAttempts)
}

func TestGuard_RecordSuccessResets(t *testing.T) {
	acct := &account.Account{ID: 1, FailedLoginAttempts: 3, LastFailedLoginAt: &t0}
	store := newMemStore(acct)
	guard := NewGuard(store, 5, 30*time.Minute)

	require.NoError(t, guard.RecordSuccess(context.Background(), acct))

	assert.Zero(t, acct.FailedLoginAttempts)
	assert.Nil(t, acct.LastFailedLoginAt)
	assert.Zero(t, store.rows[1].FailedLoginAttempts)
}

func TestGuard_ConcurrentFailuresAreAllCounted(t *testing.T) {
	store := newMemStore(&account.Account{ID: 7})
	guard := NewGuard(store, 5, 30*time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acct := &account.Account{ID: 7}
			assert.NoError(t, guard.RecordFailure(context.Background(), acct, t0))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, store.rows[7].FailedLoginAttempts)
	assert.Equal(t, t0.Add(30*time.Minute), *store.rows[7].LockedUntil)
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestGormStore_IncrementFailureUsesSingleStatement(t *testing.T) {
	db, mock := newMockDB(t)
	lockedUntil := t0.Add(30 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE accounts SET")).
		WithArgs(t0, t0, 5, lockedUntil, t0, uint(3)).
		WillReturnRows(sqlmock.NewRows([]string{"failed_login_attempts", "locked_until"}).AddRow(5, lockedUntil))

	state, err := NewGormStore(db).IncrementFailure(context.Background(), 3, t0, 5, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5, state.FailedLoginAttempts)
	require.NotNil(t, state.LockedUntil)
	assert.True(t, lockedUntil.Equal(*state.LockedUntil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_IncrementFailureUnknownAccount(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE accounts SET")).
		WillReturnRows(sqlmock.NewRows([]string{"failed_login_attempts", "locked_until"}))

	_, err := NewGormStore(db).IncrementFailure(context.Background(), 99, t0, 5, 30*time.Minute)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
