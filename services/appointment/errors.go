package appointment

import "errors"

var (
	ErrNotFound                    = errors.New("appointment not found")
	ErrForbidden                   = errors.New("not authorized to access this appointment")
	ErrInvalidTransition           = errors.New("invalid status transition")
	ErrSlotUnavailable             = errors.New("selected time slot is not available")
	ErrAppointmentInPast           = errors.New("appointment time must be in the future")
	ErrDoctorNotFound              = errors.New("doctor not found")
	ErrConsultationTypeUnsupported = errors.New("doctor does not offer this consultation type")
	ErrInvalidSchedule             = errors.New("invalid appointment date or time")
)
