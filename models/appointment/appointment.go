package appointment

import (
	"fmt"
	"time"

	"healthcare-booking/models/account"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment is one booking of a doctor's slot by a patient.
type Appointment struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	PatientID uint             `gorm:"not null;index" json:"patient_id"`
	Patient   *account.Account `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	DoctorID  uint             `gorm:"not null;index" json:"doctor_id"`
	Doctor    *account.Account `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`

	// Wall clock in the clinic time zone; ScheduledAt is the same moment in UTC.
	AppointmentDate string    `gorm:"type:varchar(10);not null" json:"appointment_date"`
	AppointmentTime string    `gorm:"type:varchar(5);not null" json:"appointment_time"`
	ScheduledAt     time.Time `gorm:"not null;index" json:"scheduled_at"`

	AppointmentType  Type             `gorm:"type:varchar(10);not null" json:"appointment_type"`
	Status           Status           `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	ConsultationType ConsultationType `gorm:"type:varchar(20);not null;default:general" json:"consultation_type"`

	Symptoms        string        `gorm:"type:varchar(500)" json:"symptoms,omitempty"`
	Notes           string        `gorm:"type:varchar(1000)" json:"notes,omitempty"`
	DoctorNotes     string        `gorm:"type:varchar(1000)" json:"doctor_notes,omitempty"`
	Prescription    string        `gorm:"type:text" json:"prescription,omitempty"`
	ConsultationFee float64       `gorm:"type:numeric(10,2);not null" json:"consultation_fee"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null;default:pending" json:"payment_status"`

	MeetingLink     string `gorm:"type:varchar(512)" json:"meeting_link,omitempty"`
	MeetingPassword string `gorm:"type:text" json:"-"`

	IsRescheduled      bool         `gorm:"not null;default:false" json:"is_rescheduled"`
	RescheduledFrom    *uint        `json:"rescheduled_from,omitempty"`
	CancellationReason *string      `gorm:"type:varchar(500)" json:"cancellation_reason,omitempty"`
	CancelledBy        *CancelledBy `gorm:"type:varchar(10)" json:"cancelled_by,omitempty"`
	ReminderSent       bool         `gorm:"not null;default:false" json:"reminder_sent"`
	FollowUpDate       *time.Time   `json:"follow_up_date,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ScheduledInstant resolves a calendar day and HH:MM wall clock in loc to a UTC instant.
func ScheduledInstant(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid appointment date or time %q %q: %w", date, clock, err)
	}
	return t.UTC(), nil
}

// IsPast reports whether the appointment is not strictly in the future.
func (a *Appointment) IsPast(now time.Time) bool {
	return !a.ScheduledAt.After(now)
}

// Involves reports whether the account is the patient or the doctor of the appointment.
func (a *Appointment) Involves(accountID uint) bool {
	return a.PatientID == accountID || a.DoctorID == accountID
}
