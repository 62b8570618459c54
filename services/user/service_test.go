package user

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"healthcare-booking/models/account"
	"healthcare-booking/models/address"
	"healthcare-booking/services/storage"
	userTypes "healthcare-booking/types/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memAccounts struct {
	rows map[uint]*account.Account
}

func (m *memAccounts) FindByID(_ context.Context, id uint) (*account.Account, error) {
	a, ok := m.rows[id]
	if !ok {
		return nil, errors.New("account not found")
	}
	c := *a
	return &c, nil
}

func (m *memAccounts) Update(_ context.Context, acct *account.Account, _ ...string) error {
	c := *acct
	m.rows[acct.ID] = &c
	return nil
}

type passwordCheck string

var errWrongPassword = errors.New("wrong password")

func (p passwordCheck) VerifyPassword(_ *account.Account, password string) error {
	if password != string(p) {
		return errWrongPassword
	}
	return nil
}

type fakeActivity struct {
	counts map[string]int64
	after  time.Time
}

func (f *fakeActivity) AppointmentCounts(context.Context, *account.Account) (map[string]int64, error) {
	return f.counts, nil
}

func (f *fakeActivity) UpcomingCount(_ context.Context, _ *account.Account, after time.Time) (int64, error) {
	f.after = after
	return 1, nil
}

func (f *fakeActivity) ReviewsWritten(context.Context, uint) (int64, error) {
	return 2, nil
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) UploadImage(ctx context.Context, folder, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, folder, contentType, body)
	return args.String(0), args.Error(1)
}

func newFixture(uploader storage.Uploader) (*Service, *memAccounts, *fakeActivity) {
	accts := &memAccounts{rows: map[uint]*account.Account{
		1: {ID: 1, Name: "Pat", Role: account.RolePatient, IsActive: true},
		2: {ID: 2, Name: "Doc", Role: account.RoleDoctor, IsActive: true},
	}}
	activity := &fakeActivity{counts: map[string]int64{"completed": 3, "pending": 1}}
	return NewService(accts, passwordCheck("secret1"), activity, uploader), accts, activity
}

func TestUpdateProfile_PatientFields(t *testing.T) {
	svc, accts, _ := newFixture(nil)
	name, dob, gender := " Patricia ", "1992-04-11", "female"

	got, err := svc.UpdateProfile(context.Background(), 1, userTypes.UpdateProfileRequest{
		Name: &name, DateOfBirth: &dob, Gender: &gender, Address: &address.Address{City: "Dhaka"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Patricia", got.Name)
	require.NotNil(t, accts.rows[1].DateOfBirth)
	assert.Equal(t, 1992, accts.rows[1].DateOfBirth.Year())
	assert.Equal(t, "female", accts.rows[1].Gender)
	assert.Equal(t, "Dhaka", accts.rows[1].Address.City)
}

func TestUpdateProfile_DoctorIgnoresPatientFields(t *testing.T) {
	svc, accts, _ := newFixture(nil)
	gender := "male"

	_, err := svc.UpdateProfile(context.Background(), 2, userTypes.UpdateProfileRequest{Gender: &gender})
	require.NoError(t, err)
	assert.Empty(t, accts.rows[2].Gender)
}

func TestUploadProfilePicture(t *testing.T) {
	uploader := &mockUploader{}
	body := bytes.NewReader([]byte("png"))
	uploader.On("UploadImage", mock.Anything, "profiles", "image/png", body).Return("https://cdn.example.com/profiles/a.png", nil)
	svc, accts, _ := newFixture(uploader)

	_, err := svc.UploadProfilePicture(context.Background(), 1, "image/png", body)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/profiles/a.png", accts.rows[1].ProfilePicture)

	disabled, _, _ := newFixture(nil)
	_, err = disabled.UploadProfilePicture(context.Background(), 1, "image/png", body)
	assert.ErrorIs(t, err, storage.ErrDisabled)
}

func TestStats(t *testing.T) {
	svc, _, activity := newFixture(nil)
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	stats, err := svc.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalAppointments)
	assert.Equal(t, int64(1), stats.UpcomingAppointments)
	assert.Equal(t, int64(2), stats.ReviewsWritten)
	assert.Equal(t, fixed, activity.after)

	doctorStats, err := svc.Stats(context.Background(), 2)
	require.NoError(t, err)
	assert.Zero(t, doctorStats.ReviewsWritten)
}

func TestDelete_RequiresPassword(t *testing.T) {
	svc, accts, _ := newFixture(nil)

	err := svc.Delete(context.Background(), 1, "nope")
	assert.ErrorIs(t, err, errWrongPassword)
	assert.True(t, accts.rows[1].IsActive)

	require.NoError(t, svc.Delete(context.Background(), 1, "secret1"))
	assert.False(t, accts.rows[1].IsActive)
}
