package appointment_event

import (
	"healthcare-booking/models/appointment"

	"gorm.io/gorm"
)

// Actor is whoever caused a status change.
type Actor struct {
	ID   uint
	Role string
}

// RecordStatusChange appends a history row for appt inside tx; from is nil for a new booking.
func RecordStatusChange(tx *gorm.DB, appt *appointment.Appointment, from *appointment.Status, actor Actor, reason string) error {
	ev := appointment.StatusEvent{
		AppointmentID: appt.ID,
		FromStatus:    from,
		ToStatus:      appt.Status,
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		Reason:        reason,
	}
	return tx.Create(&ev).Error
}
