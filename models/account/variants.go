package account

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidProfile = errors.New("invalid account profile")

// Base holds the fields every account variant needs.
type Base struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
}

// PatientProfile holds patient-only details; all fields are optional.
type PatientProfile struct {
	DateOfBirth      *time.Time
	Gender           string
	EmergencyContact EmergencyContact
}

// DoctorProfile holds the details every doctor must provide.
type DoctorProfile struct {
	Specialization      string
	Experience          int
	Education           string
	Hospital            string
	City                string
	ConsultationFee     float64
	OnlineConsultation  bool
	OfflineConsultation bool
}

// Variant is implemented by PatientAccount and DoctorAccount.
type Variant interface {
	Account() *Account
	Role() Role
}

type PatientAccount struct {
	account *Account
}

func (p PatientAccount) Account() *Account { return p.account }
func (p PatientAccount) Role() Role        { return RolePatient }

type DoctorAccount struct {
	account *Account
}

func (d DoctorAccount) Account() *Account { return d.account }
func (d DoctorAccount) Role() Role        { return RoleDoctor }

// Profile returns the doctor fields of the underlying row.
func (d DoctorAccount) Profile() DoctorProfile {
	a := d.account
	return DoctorProfile{
		Specialization:      a.Specialization,
		Experience:          a.Experience,
		Education:           a.Education,
		Hospital:            a.Hospital,
		City:                a.City,
		ConsultationFee:     a.ConsultationFee,
		OnlineConsultation:  a.OnlineConsultation,
		OfflineConsultation: a.OfflineConsultation,
	}
}

func (b Base) validate() error {
	if n := len(strings.TrimSpace(b.Name)); n < 2 || n > 50 {
		return fmt.Errorf("%w: name must be between 2 and 50 characters", ErrInvalidProfile)
	}
	if !strings.Contains(b.Email, "@") {
		return fmt.Errorf("%w: email is invalid", ErrInvalidProfile)
	}
	if strings.TrimSpace(b.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidProfile)
	}
	if b.PasswordHash == "" {
		return fmt.Errorf("%w: password hash is required", ErrInvalidProfile)
	}
	return nil
}

func (p PatientProfile) validate() error {
	if p.Gender != "" && !IsGender(p.Gender) {
		return fmt.Errorf("%w: gender must be male, female or other", ErrInvalidProfile)
	}
	return nil
}

func (p DoctorProfile) validate() error {
	switch {
	case strings.TrimSpace(p.Specialization) == "":
		return fmt.Errorf("%w: specialization is required for doctors", ErrInvalidProfile)
	case strings.TrimSpace(p.Education) == "":
		return fmt.Errorf("%w: education is required for doctors", ErrInvalidProfile)
	case strings.TrimSpace(p.Hospital) == "":
		return fmt.Errorf("%w: hospital is required for doctors", ErrInvalidProfile)
	case strings.TrimSpace(p.City) == "":
		return fmt.Errorf("%w: city is required for doctors", ErrInvalidProfile)
	case p.Experience < 0:
		return fmt.Errorf("%w: experience must be a positive number", ErrInvalidProfile)
	case p.ConsultationFee < 0:
		return fmt.Errorf("%w: consultation fee must be a positive number", ErrInvalidProfile)
	}
	return nil
}

func newRow(base Base, role Role) *Account {
	return &Account{
		Name:         strings.TrimSpace(base.Name),
		Email:        NormalizeEmail(base.Email),
		Phone:        strings.TrimSpace(base.Phone),
		PasswordHash: base.PasswordHash,
		Role:         role,
		IsActive:     true,
	}
}

// NewPatientAccount validates and builds a patient row.
func NewPatientAccount(base Base, profile PatientProfile) (PatientAccount, error) {
	if err := base.validate(); err != nil {
		return PatientAccount{}, err
	}
	if err := profile.validate(); err != nil {
		return PatientAccount{}, err
	}

	row := newRow(base, RolePatient)
	row.DateOfBirth = profile.DateOfBirth
	row.Gender = profile.Gender
	row.EmergencyContact = profile.EmergencyContact
	return PatientAccount{account: row}, nil
}

// NewDoctorAccount validates and builds a doctor row.
func NewDoctorAccount(base Base, profile DoctorProfile) (DoctorAccount, error) {
	if err := base.validate(); err != nil {
		return DoctorAccount{}, err
	}
	if err := profile.validate(); err != nil {
		return DoctorAccount{}, err
	}

	row := newRow(base, RoleDoctor)
	row.Specialization = strings.TrimSpace(profile.Specialization)
	row.Experience = profile.Experience
	row.Education = strings.TrimSpace(profile.Education)
	row.Hospital = strings.TrimSpace(profile.Hospital)
	row.City = strings.TrimSpace(profile.City)
	row.ConsultationFee = profile.ConsultationFee
	row.OnlineConsultation = profile.OnlineConsultation
	row.OfflineConsultation = profile.OfflineConsultation
	return DoctorAccount{account: row}, nil
}

// NewAdminAccount builds an admin row; only the seeder creates admins.
func NewAdminAccount(base Base) (*Account, error) {
	if err := base.validate(); err != nil {
		return nil, err
	}
	row := newRow(base, RoleAdmin)
	row.IsVerified = true
	return row, nil
}

// Variant wraps a stored row in its role specific type, re-checking the role's rules.
func (a *Account) Variant() (Variant, error) {
	switch a.Role {
	case RolePatient:
		if err := (PatientProfile{Gender: a.Gender}).validate(); err != nil {
			return nil, err
		}
		return PatientAccount{account: a}, nil
	case RoleDoctor:
		d := DoctorAccount{account: a}
		if err := d.Profile().validate(); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: role %q has no variant", ErrInvalidProfile, a.Role)
	}
}

// ApplyDoctorProfile replaces the doctor fields after validating them.
func (d DoctorAccount) ApplyDoctorProfile(profile DoctorProfile) error {
	if err := profile.validate(); err != nil {
		return err
	}
	a := d.account
	a.Specialization = strings.TrimSpace(profile.Specialization)
	a.Experience = profile.Experience
	a.Education = strings.TrimSpace(profile.Education)
	a.Hospital = strings.TrimSpace(profile.Hospital)
	a.City = strings.TrimSpace(profile.City)
	a.ConsultationFee = profile.ConsultationFee
	a.OnlineConsultation = profile.OnlineConsultation
	a.OfflineConsultation = profile.OfflineConsultation
	return nil
}
