package account

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemainingLockMinutes_RoundsUp(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	lockedUntil := now.Add(90 * time.Second)
	acct := &Account{LockedUntil: &lockedUntil}

	assert.Equal(t, 2, acct.RemainingLockMinutes(now))
	assert.Equal(t, 1, acct.RemainingLockMinutes(now.Add(31*time.Second)))
	assert.Equal(t, 0, acct.RemainingLockMinutes(now.Add(2*time.Minute)))
	assert.Equal(t, 0, (&Account{}).RemainingLockMinutes(now))
}

func TestResetLockout(t *testing.T) {
	now := time.Now()
	acct := &Account{FailedLoginAttempts: 7, LockedUntil: &now, LastFailedLoginAt: &now}

	acct.ResetLockout()

	assert.Zero(t, acct.FailedLoginAttempts)
	assert.Nil(t, acct.LockedUntil)
	assert.Nil(t, acct.LastFailedLoginAt)
}

func validBase() Base {
	return Base{Name: "Jane Roe", Email: " Jane@Example.com ", Phone: "+15550100", PasswordHash: "hash"}
}

func TestNewDoctorAccount_RequiresProfessionalFields(t *testing.T) {
	_, err := NewDoctorAccount(validBase(), DoctorProfile{Specialization: "Cardiology", Hospital: "City", City: "Dhaka"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProfile))
	assert.Contains(t, err.Error(), "education")

	_, err = NewDoctorAccount(validBase(), DoctorProfile{
		Specialization: "Cardiology", Education: "MBBS", Hospital: "City", City: "Dhaka", ConsultationFee: -1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consultation fee")
}

func TestNewDoctorAccount_BuildsDoctorRow(t *testing.T) {
	doc, err := NewDoctorAccount(validBase(), DoctorProfile{
		Specialization:      "Cardiology",
		Experience:          8,
		Education:           "MBBS",
		Hospital:            "City Hospital",
		City:                "Dhaka",
		ConsultationFee:     50,
		OnlineConsultation:  true,
		OfflineConsultation: true,
	})
	require.NoError(t, err)

	row := doc.Account()
	assert.Equal(t, RoleDoctor, row.Role)
	assert.Equal(t, "jane@example.com", row.Email)
	assert.True(t, row.IsActive)
	assert.Zero(t, row.FailedLoginAttempts)
	assert.True(t, row.OffersConsultation("online"))

	variant, err := row.Variant()
	require.NoError(t, err)
	_, isDoctor := variant.(DoctorAccount)
	assert.True(t, isDoctor)
}

func TestNewPatientAccount_RejectsUnknownGender(t *testing.T) {
	_, err := NewPatientAccount(validBase(), PatientProfile{Gender: "unknown"})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	p, err := NewPatientAccount(validBase(), PatientProfile{Gender: "female"})
	require.NoError(t, err)
	assert.Equal(t, RolePatient, p.Role())
	assert.Equal(t, RolePatient, p.Account().Role)
}

func TestVariant_RejectsIncompleteDoctorRow(t *testing.T) {
	row := &Account{Role: RoleDoctor, Specialization: "Neurology"}
	_, err := row.Variant()
	assert.ErrorIs(t, err, ErrInvalidProfile)

	_, err = (&Account{Role: RoleAdmin}).Variant()
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestAvailabilityOn(t *testing.T) {
	row := &Account{Availability: []DaySlot{
		{Day: "monday", Slots: []TimeSlot{{StartTime: "09:00", EndTime: "12:00", IsAvailable: true}}},
		{Day: "friday"},
	}}

	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	got := row.AvailabilityOn(monday)
	require.Len(t, got, 1)
	assert.Equal(t, "09:00", got[0].Slots[0].StartTime)
	assert.Empty(t, row.AvailabilityOn(monday.AddDate(0, 0, 1)))
}
