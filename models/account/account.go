package account

import (
	"strings"
	"time"

	"healthcare-booking/models/address"

	"gorm.io/datatypes"
)

// Account is the storage row shared by patients, doctors and admins. Role specific
// rules are enforced by the PatientAccount and DoctorAccount variants.
type Account struct {
	ID             uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid           string          `gorm:"type:varchar(64);not null;unique" json:"uuid"`
	Name           string          `gorm:"type:varchar(50);not null" json:"name"`
	Email          string          `gorm:"type:varchar(255);not null;unique" json:"email"`
	PasswordHash   string          `gorm:"type:varchar(255);not null" json:"-"`
	Phone          string          `gorm:"type:varchar(20);not null" json:"phone"`
	Role           Role            `gorm:"type:varchar(20);not null;default:patient" json:"role"`
	ProfilePicture string          `gorm:"type:varchar(2048)" json:"profile_picture"`
	IsVerified     bool            `gorm:"default:false" json:"is_verified"`
	IsActive       bool            `gorm:"not null;default:false" json:"is_active"`
	Address        address.Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`

	// Lockout state
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastFailedLoginAt   *time.Time `json:"-"`

	ResetPasswordToken      *string    `gorm:"type:varchar(128);index" json:"-"`
	ResetPasswordExpire     *time.Time `json:"-"`
	EmailVerificationToken  *string    `gorm:"type:varchar(128);index" json:"-"`
	EmailVerificationExpire *time.Time `json:"-"`

	// Doctor profile
	Specialization      string                       `gorm:"type:varchar(255)" json:"specialization,omitempty"`
	Experience          int                          `gorm:"default:0" json:"experience,omitempty"`
	Education           string                       `gorm:"type:varchar(255)" json:"education,omitempty"`
	Hospital            string                       `gorm:"type:varchar(255)" json:"hospital,omitempty"`
	City                string                       `gorm:"type:varchar(255)" json:"city,omitempty"`
	ConsultationFee     float64                      `gorm:"type:numeric(10,2);default:0" json:"consultation_fee,omitempty"`
	Availability        datatypes.JSONSlice[DaySlot] `gorm:"type:jsonb" json:"availability,omitempty"`
	OnlineConsultation  bool                         `gorm:"default:false" json:"online_consultation"`
	OfflineConsultation bool                         `gorm:"not null;default:false" json:"offline_consultation"`
	Rating              float64                      `gorm:"type:numeric(2,1);default:0" json:"rating"`
	TotalReviews        int                          `gorm:"default:0" json:"total_reviews"`

	// Patient profile
	DateOfBirth      *time.Time       `json:"date_of_birth,omitempty"`
	Gender           string           `gorm:"type:varchar(10)" json:"gender,omitempty"`
	EmergencyContact EmergencyContact `gorm:"embedded;embeddedPrefix:emergency_" json:"emergency_contact"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// EmergencyContact is the patient's emergency contact.
type EmergencyContact struct {
	Name         string `gorm:"type:varchar(255)" json:"name,omitempty"`
	Phone        string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Relationship string `gorm:"type:varchar(50)" json:"relationship,omitempty"`
}

// DaySlot is one weekday of a doctor's weekly availability.
type DaySlot struct {
	Day   string     `json:"day"`
	Slots []TimeSlot `json:"slots"`
}

type TimeSlot struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *Account) IsDoctor() bool  { return a.Role == RoleDoctor }
func (a *Account) IsPatient() bool { return a.Role == RolePatient }
func (a *Account) IsAdmin() bool   { return a.Role == RoleAdmin }

// OffersConsultation reports whether a doctor accepts the given appointment type.
func (a *Account) OffersConsultation(appointmentType string) bool {
	switch appointmentType {
	case "online":
		return a.OnlineConsultation
	case "offline":
		return a.OfflineConsultation
	default:
		return false
	}
}

// AvailabilityOn returns the availability entries for the weekday of t.
func (a *Account) AvailabilityOn(t time.Time) []DaySlot {
	day := strings.ToLower(t.Weekday().String())
	var out []DaySlot
	for _, d := range a.Availability {
		if d.Day == day {
			out = append(out, d)
		}
	}
	return out
}

// Summary is the public projection of an account embedded in other responses.
type Summary struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Hospital       string `json:"hospital,omitempty"`
	City           string `json:"city,omitempty"`
}

func (a *Account) Summary() Summary {
	return Summary{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		Phone:          a.Phone,
		ProfilePicture: a.ProfilePicture,
		Specialization: a.Specialization,
		Hospital:       a.Hospital,
		City:           a.City,
	}
}
