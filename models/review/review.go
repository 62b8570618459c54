package review

import (
	"time"

	"healthcare-booking/models/account"
)

// Review is a patient's rating of a doctor after a completed appointment.
type Review struct {
	ID            uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID     uint             `gorm:"not null;index" json:"patient_id"`
	Patient       *account.Account `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	DoctorID      uint             `gorm:"not null;index" json:"doctor_id"`
	AppointmentID uint             `gorm:"not null;unique" json:"appointment_id"`
	Rating        int              `gorm:"not null" json:"rating"`
	Title         string           `gorm:"type:varchar(100)" json:"title,omitempty"`
	Comment       string           `gorm:"type:varchar(500)" json:"comment,omitempty"`
	IsAnonymous   bool             `gorm:"not null;default:false" json:"is_anonymous"`
	IsHidden      bool             `gorm:"not null;default:false" json:"-"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// Public hides the patient when the review is anonymous.
func (r Review) Public() Review {
	if r.IsAnonymous {
		r.Patient = nil
		r.PatientID = 0
	}
	return r
}
