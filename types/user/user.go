package user

import (
	"fmt"
	"strings"
	"time"

	"healthcare-booking/models/account"
	"healthcare-booking/models/address"
)

// UpdateProfileRequest changes only the fields that are present.
type UpdateProfileRequest struct {
	Name             *string                   `json:"name"`
	Phone            *string                   `json:"phone"`
	Address          *address.Address          `json:"address"`
	DateOfBirth      *string                   `json:"date_of_birth"`
	Gender           *string                   `json:"gender"`
	EmergencyContact *account.EmergencyContact `json:"emergency_contact"`
}

func (r UpdateProfileRequest) Validate() error {
	if r.Name != nil {
		if n := len(strings.TrimSpace(*r.Name)); n < 2 || n > 50 {
			return fmt.Errorf("name must be between 2 and 50 characters")
		}
	}
	if r.Phone != nil && strings.TrimSpace(*r.Phone) == "" {
		return fmt.Errorf("phone cannot be empty")
	}
	if r.Gender != nil && *r.Gender != "" && !account.IsGender(*r.Gender) {
		return fmt.Errorf("gender must be male, female or other")
	}
	if r.DateOfBirth != nil && *r.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", *r.DateOfBirth); err != nil {
			return fmt.Errorf("date_of_birth must be YYYY-MM-DD")
		}
	}
	return nil
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

func (r DeleteAccountRequest) Validate() error {
	if r.Password == "" {
		return fmt.Errorf("password is required to delete the account")
	}
	return nil
}

type StatsResponse struct {
	TotalAppointments    int64            `json:"total_appointments"`
	AppointmentsByStatus map[string]int64 `json:"appointments_by_status"`
	UpcomingAppointments int64            `json:"upcoming_appointments"`
	ReviewsWritten       int64            `json:"reviews_written,omitempty"`
}
