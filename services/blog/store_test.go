package blog

import (
	"context"
	"regexp"
	"testing"

	model "healthcare-booking/models/blog"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormStore_UpdateLeavesCountersAlone(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "blog_posts" SET "title"=$1,"slug"=$2,"updated_at"=$3 WHERE "id" = $4`)).
		WithArgs("Sleep Well", "sleep-well", sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	post := &model.Post{ID: 3, Title: "Sleep Well", Slug: "sleep-well", Views: 10, Likes: 2, Shares: 1}
	require.NoError(t, NewGormStore(db).Update(context.Background(), post, "title", "slug"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
