package appointment

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusRejected},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusRejected:
		return true
	default:
		return false
	}
}

// IsActive reports whether the status still holds its slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal returns true for cancelled, completed and rejected.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusRejected
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ActiveStatuses are the statuses covered by the slot uniqueness index.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed}
}

func GetAllStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusRejected}
}

type Type string

const (
	TypeOnline  Type = "online"
	TypeOffline Type = "offline"
)

func (t Type) IsValid() bool {
	return t == TypeOnline || t == TypeOffline
}

type ConsultationType string

const (
	ConsultationGeneral   ConsultationType = "general"
	ConsultationFollowUp  ConsultationType = "follow-up"
	ConsultationEmergency ConsultationType = "emergency"
	ConsultationRoutine   ConsultationType = "routine"
)

func (c ConsultationType) IsValid() bool {
	switch c {
	case ConsultationGeneral, ConsultationFollowUp, ConsultationEmergency, ConsultationRoutine:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// CancelledBy names the role that cancelled an appointment.
type CancelledBy string

const (
	CancelledByPatient CancelledBy = "patient"
	CancelledByDoctor  CancelledBy = "doctor"
	CancelledByAdmin   CancelledBy = "admin"
)

// EventType is the suffix of the appointment.<event> messages published after a change.
type EventType string

const (
	EventBooked      EventType = "booked"
	EventConfirmed   EventType = "confirmed"
	EventCancelled   EventType = "cancelled"
	EventCompleted   EventType = "completed"
	EventRejected    EventType = "rejected"
	EventRescheduled EventType = "rescheduled"
)

// EventFor maps a target status onto its lifecycle event.
func EventFor(s Status) EventType {
	switch s {
	case StatusConfirmed:
		return EventConfirmed
	case StatusCancelled:
		return EventCancelled
	case StatusCompleted:
		return EventCompleted
	case StatusRejected:
		return EventRejected
	default:
		return EventBooked
	}
}
