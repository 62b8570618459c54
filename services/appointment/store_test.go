package appointment

import (
	"context"
	"regexp"
	"testing"
	"time"

	model "healthcare-booking/models/appointment"
	"healthcare-booking/services/appointment_event"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
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

func TestGormStore_CreateMapsUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "appointments"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_appointments_active_slot"})
	mock.ExpectRollback()

	appt := &model.Appointment{
		PatientID: 1, DoctorID: 2, AppointmentDate: "2024-06-03", AppointmentTime: "10:00",
		ScheduledAt: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC), Status: model.StatusPending,
	}
	err := store.Create(context.Background(), appt, appointment_event.Actor{ID: 1, Role: "patient"})

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_TransitionLosesRace(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "appointments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	appt := &model.Appointment{ID: 7, Status: model.StatusConfirmed}
	err := store.Transition(context.Background(), appt, model.StatusPending, appointment_event.Actor{ID: 2, Role: "doctor"}, "")

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_IsSlotTaken(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "appointments"`)).
		WithArgs(uint(2), "2024-06-03", "10:00", model.StatusPending, model.StatusConfirmed).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	taken, err := store.IsSlotTaken(context.Background(), 2, "2024-06-03", "10:00")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
