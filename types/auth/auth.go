package auth

import (
	"fmt"
	"strings"
	"time"

	"healthcare-booking/models/account"
	"healthcare-booking/models/address"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// RegisterRequest carries the base fields plus the patient or doctor profile for the chosen role.
type RegisterRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Phone    string          `json:"phone"`
	Role     string          `json:"role"`
	Address  address.Address `json:"address"`

	// Patient
	DateOfBirth      string                   `json:"date_of_birth"`
	Gender           string                   `json:"gender"`
	EmergencyContact account.EmergencyContact `json:"emergency_contact"`

	// Doctor
	Specialization      string  `json:"specialization"`
	Experience          int     `json:"experience"`
	Education           string  `json:"education"`
	Hospital            string  `json:"hospital"`
	City                string  `json:"city"`
	ConsultationFee     float64 `json:"consultation_fee"`
	OnlineConsultation  bool    `json:"online_consultation"`
	OfflineConsultation *bool   `json:"offline_consultation"`
}

const MinPasswordLength = 6

func (r RegisterRequest) Validate() error {
	if n := len(strings.TrimSpace(r.Name)); n < 2 || n > 50 {
		return fmt.Errorf("name must be between 2 and 50 characters")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("please provide a valid email")
	}
	if len(r.Password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if strings.TrimSpace(r.Phone) == "" {
		return fmt.Errorf("phone is required")
	}
	switch account.Role(r.RoleOrDefault()) {
	case account.RolePatient, account.RoleDoctor:
	default:
		return fmt.Errorf("role must be patient or doctor")
	}
	if _, err := r.BirthDate(); err != nil {
		return err
	}
	return nil
}

// RoleOrDefault returns the requested role, defaulting to patient.
func (r RegisterRequest) RoleOrDefault() string {
	if r.Role == "" {
		return string(account.RolePatient)
	}
	return r.Role
}

// BirthDate parses the optional YYYY-MM-DD date of birth.
func (r RegisterRequest) BirthDate() (*time.Time, error) {
	if r.DateOfBirth == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", r.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("date_of_birth must be YYYY-MM-DD")
	}
	return &t, nil
}

// DoctorProfile builds the doctor profile, offering in-person consultations unless told otherwise.
func (r RegisterRequest) DoctorProfile() account.DoctorProfile {
	offline := true
	if r.OfflineConsultation != nil {
		offline = *r.OfflineConsultation
	}
	return account.DoctorProfile{
		Specialization:      r.Specialization,
		Experience:          r.Experience,
		Education:           r.Education,
		Hospital:            r.Hospital,
		City:                r.City,
		ConsultationFee:     r.ConsultationFee,
		OnlineConsultation:  r.OnlineConsultation,
		OfflineConsultation: offline,
	}
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("please provide a valid email")
	}
	return nil
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r ResetPasswordRequest) Validate() error {
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	if len(r.Password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return fmt.Errorf("current_password is required")
	}
	if len(r.NewPassword) < MinPasswordLength {
		return fmt.Errorf("new_password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// SessionResponse is returned by login and register alongside the token.
type SessionResponse struct {
	User      *account.Account `json:"user"`
	ExpiresAt time.Time        `json:"expires_at"`
}
