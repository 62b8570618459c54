package accounts

import (
	"context"
	"regexp"
	"testing"

	"healthcare-booking/models/account"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

func TestGormStore_UpdateWritesOnlyNamedColumns(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "accounts" SET "name"=$1,"phone"=$2,"updated_at"=$3 WHERE "id" = $4`)).
		WithArgs("Pat Doe", "5550100", sqlmock.AnyArg(), 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// A stale row: the counters below must not reach the database.
	acct := &account.Account{ID: 4, Name: "Pat Doe", Phone: "5550100", FailedLoginAttempts: 4, Rating: 3.5, TotalReviews: 2}
	require.NoError(t, store.Update(context.Background(), acct, "name", "phone"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UpdateMissingAccount(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "accounts" SET "is_active"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := store.Update(context.Background(), &account.Account{ID: 9}, "is_active")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UpdateWithoutColumnsIsNoop(t *testing.T) {
	store, mock := newMockStore(t)

	require.NoError(t, store.Update(context.Background(), &account.Account{ID: 1}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
