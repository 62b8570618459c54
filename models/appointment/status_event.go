package appointment

import "time"

// StatusEvent is the append-only history of an appointment's status changes.
type StatusEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	AppointmentID uint `gorm:"not null;index" json:"appointment_id"`

	FromStatus *Status   `gorm:"size:20" json:"from_status,omitempty"`
	ToStatus   Status    `gorm:"size:20;not null" json:"to_status"`
	ActorID    uint      `gorm:"not null" json:"actor_id"`
	ActorRole  string    `gorm:"size:20;not null" json:"actor_role"`
	Reason     string    `gorm:"type:varchar(500)" json:"reason,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (StatusEvent) TableName() string {
	return "appointment_status_events"
}
