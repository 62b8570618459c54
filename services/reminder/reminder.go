package reminder

import (
	"context"
	"fmt"
	"time"

	"healthcare-booking/logger"
	apptModel "healthcare-booking/models/appointment"
	"healthcare-booking/services/notification"
)

// Store finds confirmed appointments due for a reminder and claims them so each is sent once.
type Store interface {
	Due(ctx context.Context, from, to time.Time) ([]apptModel.Appointment, error)
	Claim(ctx context.Context, id uint) (bool, error)
	Release(ctx context.Context, id uint) error
}

const Lookahead = 24 * time.Hour

type Service struct {
	store    Store
	notifier notification.Notifier
	now      func() time.Time
}

func NewService(store Store, notifier notification.Notifier) *Service {
	return &Service{store: store, notifier: notifier, now: time.Now}
}

// Run sends reminders for confirmed appointments starting within the next 24 hours.
func (s *Service) Run(ctx context.Context) error {
	now := s.now()
	due, err := s.store.Due(ctx, now, now.Add(Lookahead))
	if err != nil {
		return err
	}

	sent := 0
	for i := range due {
		appt := &due[i]
		claimed, err := s.store.Claim(ctx, appt.ID)
		if err != nil {
			return err
		}
		if !claimed {
			continue
		}
		if err := s.notifier.Notify(ctx, message(appt)); err != nil {
			logger.Error(fmt.Sprintf("Failed to queue reminder for appointment %d", appt.ID), err)
			if err := s.store.Release(ctx, appt.ID); err != nil {
				logger.Error(fmt.Sprintf("Failed to release reminder claim on appointment %d", appt.ID), err)
			}
			continue
		}
		sent++
	}
	if sent > 0 {
		logger.Success(fmt.Sprintf("Queued %d appointment reminders", sent))
	}
	return nil
}

func message(appt *apptModel.Appointment) notification.Message {
	msg := notification.Message{
		Type:      notification.TypeAppointmentReminder,
		AccountID: appt.PatientID,
		Data: map[string]string{
			"appointment_id":   fmt.Sprint(appt.ID),
			"appointment_date": appt.AppointmentDate,
			"appointment_time": appt.AppointmentTime,
			"appointment_type": string(appt.AppointmentType),
		},
	}
	if appt.Patient != nil {
		msg.Email = appt.Patient.Email
		msg.Name = appt.Patient.Name
	}
	if appt.Doctor != nil {
		msg.Data["doctor_name"] = appt.Doctor.Name
		msg.Data["hospital"] = appt.Doctor.Hospital
	}
	if appt.MeetingLink != "" {
		msg.Data["meeting_link"] = appt.MeetingLink
	}
	return msg
}
