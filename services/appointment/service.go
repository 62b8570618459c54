package appointment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"healthcare-booking/logger"
	"healthcare-booking/models/account"
	model "healthcare-booking/models/appointment"
	"healthcare-booking/services/appointment_event"
	"healthcare-booking/services/events"
	apptTypes "healthcare-booking/types/appointment"
	"healthcare-booking/utils"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
)

// Filter narrows an appointment listing.
type Filter struct {
	PatientID uint
	DoctorID  uint
	Status    model.Status
	Date      string
}

// Store persists appointments. Create, Transition and Reschedule write the status history in the
// same transaction as the change.
type Store interface {
	FindDoctor(ctx context.Context, doctorID uint) (*account.Account, error)
	FindByID(ctx context.Context, id uint) (*model.Appointment, error)
	IsSlotTaken(ctx context.Context, doctorID uint, date, clock string) (bool, error)
	Create(ctx context.Context, appt *model.Appointment, actor appointment_event.Actor) error
	Transition(ctx context.Context, appt *model.Appointment, from model.Status, actor appointment_event.Actor, reason string) error
	Reschedule(ctx context.Context, old *model.Appointment, from model.Status, next *model.Appointment, actor appointment_event.Actor, reason string) error
	List(ctx context.Context, filter Filter, offset, limit int) ([]model.Appointment, int64, error)
	Calendar(ctx context.Context, doctorID uint, startDate, endDate string) ([]model.Appointment, error)
}

// Actor is the authenticated account acting on an appointment.
type Actor struct {
	ID   uint
	Role account.Role
}

func (a Actor) event() appointment_event.Actor {
	return appointment_event.Actor{ID: a.ID, Role: string(a.Role)}
}

const MaxPageSize = 50

type Service struct {
	store          Store
	publisher      events.Publisher
	location       *time.Location
	meetingBaseURL string
	encrypt        func(string) (string, error)
	now            func() time.Time
}

// NewService builds the lifecycle manager; loc is the clinic time zone used to read dates and times.
func NewService(store Store, publisher events.Publisher, loc *time.Location, meetingBaseURL string) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		store:          store,
		publisher:      publisher,
		location:       loc,
		meetingBaseURL: strings.TrimRight(meetingBaseURL, "/"),
		encrypt:        utils.EncryptData,
		now:            time.Now,
	}
}

// IsSlotAvailable reports whether no pending or confirmed appointment holds the slot.
func (s *Service) IsSlotAvailable(ctx context.Context, doctorID uint, date, clock string) (bool, error) {
	taken, err := s.store.IsSlotTaken(ctx, doctorID, date, clock)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (s *Service) Book(ctx context.Context, patientID uint, req apptTypes.BookRequest) (*model.Appointment, error) {
	doctor, err := s.store.FindDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsDoctor() || !doctor.IsActive {
		return nil, ErrDoctorNotFound
	}

	apptType := model.Type(req.AppointmentType)
	if !doctor.OffersConsultation(string(apptType)) {
		return nil, fmt.Errorf("%w: %s", ErrConsultationTypeUnsupported, apptType)
	}

	scheduledAt, err := model.ScheduledInstant(req.AppointmentDate, req.AppointmentTime, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	available, err := s.IsSlotAvailable(ctx, doctor.ID, req.AppointmentDate, req.AppointmentTime)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrSlotUnavailable
	}
	if !scheduledAt.After(s.now()) {
		return nil, ErrAppointmentInPast
	}

	appt := &model.Appointment{
		PatientID:        patientID,
		DoctorID:         doctor.ID,
		AppointmentDate:  req.AppointmentDate,
		AppointmentTime:  req.AppointmentTime,
		ScheduledAt:      scheduledAt,
		AppointmentType:  apptType,
		Status:           model.StatusPending,
		ConsultationType: req.Consultation(),
		Symptoms:         strings.TrimSpace(req.Symptoms),
		Notes:            strings.TrimSpace(req.Notes),
		ConsultationFee:  doctor.ConsultationFee,
		PaymentStatus:    model.PaymentPending,
	}
	if err := s.store.Create(ctx, appt, Actor{ID: patientID, Role: account.RolePatient}.event()); err != nil {
		return nil, err
	}

	logger.Success(fmt.Sprintf("Appointment %d booked with doctor %d for %s %s", appt.ID, appt.DoctorID, appt.AppointmentDate, appt.AppointmentTime))
	s.publish(ctx, model.EventBooked, appt, patientID)
	return appt, nil
}

// UpdateStatus lets the appointment's doctor move it along the state machine.
func (s *Service) UpdateStatus(ctx context.Context, id, doctorID uint, req apptTypes.UpdateStatusRequest) (*model.Appointment, error) {
	appt, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, ErrForbidden
	}

	next := model.Status(req.Status)
	from := appt.Status
	if !from.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot change status from %s to %s", ErrInvalidTransition, from, next)
	}

	appt.Status = next
	if req.DoctorNotes != "" {
		appt.DoctorNotes = strings.TrimSpace(req.DoctorNotes)
	}
	if req.Prescription != "" {
		appt.Prescription = strings.TrimSpace(req.Prescription)
	}
	if followUp := req.FollowUp(); followUp != nil {
		appt.FollowUpDate = followUp
	}
	if next == model.StatusCancelled {
		by := model.CancelledByDoctor
		appt.CancelledBy = &by
	}
	if next == model.StatusConfirmed && appt.AppointmentType == model.TypeOnline && appt.MeetingLink == "" {
		if err := s.assignMeeting(appt); err != nil {
			return nil, err
		}
	}

	if err := s.store.Transition(ctx, appt, from, Actor{ID: doctorID, Role: account.RoleDoctor}.event(), ""); err != nil {
		return nil, err
	}
	s.publish(ctx, model.EventFor(next), appt, doctorID)
	return appt, nil
}

// Cancel lets the patient cancel an appointment that has not started.
func (s *Service) Cancel(ctx context.Context, id, patientID uint, reason string) (*model.Appointment, error) {
	appt, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != patientID {
		return nil, ErrForbidden
	}
	from := appt.Status
	if !from.CanTransitionTo(model.StatusCancelled) {
		return nil, fmt.Errorf("%w: appointment is already %s", ErrInvalidTransition, from)
	}
	if appt.IsPast(s.now()) {
		return nil, fmt.Errorf("%w: cannot cancel past appointments", ErrAppointmentInPast)
	}

	by := model.CancelledByPatient
	appt.Status = model.StatusCancelled
	appt.CancelledBy = &by
	if reason = strings.TrimSpace(reason); reason != "" {
		appt.CancellationReason = &reason
	}

	if err := s.store.Transition(ctx, appt, from, Actor{ID: patientID, Role: account.RolePatient}.event(), reason); err != nil {
		return nil, err
	}
	s.publish(ctx, model.EventCancelled, appt, patientID)
	return appt, nil
}

const defaultRescheduleReason = "Appointment rescheduled"

// Reschedule books the new slot and cancels the original in one transaction.
func (s *Service) Reschedule(ctx context.Context, id uint, actor Actor, req apptTypes.RescheduleRequest) (*model.Appointment, error) {
	old, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != account.RoleAdmin && !old.Involves(actor.ID) {
		return nil, ErrForbidden
	}
	from := old.Status
	if from.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot reschedule a %s appointment", ErrInvalidTransition, from)
	}

	scheduledAt, err := model.ScheduledInstant(req.NewDate, req.NewTime, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	available, err := s.IsSlotAvailable(ctx, old.DoctorID, req.NewDate, req.NewTime)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrSlotUnavailable
	}
	if !scheduledAt.After(s.now()) {
		return nil, fmt.Errorf("%w: cannot reschedule to a past date or time", ErrAppointmentInPast)
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = defaultRescheduleReason
	}
	originalID := old.ID
	next := &model.Appointment{
		PatientID:        old.PatientID,
		DoctorID:         old.DoctorID,
		AppointmentDate:  req.NewDate,
		AppointmentTime:  req.NewTime,
		ScheduledAt:      scheduledAt,
		AppointmentType:  old.AppointmentType,
		Status:           model.StatusPending,
		ConsultationType: old.ConsultationType,
		Symptoms:         old.Symptoms,
		Notes:            old.Notes,
		ConsultationFee:  old.ConsultationFee,
		PaymentStatus:    model.PaymentPending,
		IsRescheduled:    true,
		RescheduledFrom:  &originalID,
	}

	by := model.CancelledBy(actor.Role)
	old.Status = model.StatusCancelled
	old.CancelledBy = &by
	old.CancellationReason = &reason

	if err := s.store.Reschedule(ctx, old, from, next, actor.event(), reason); err != nil {
		return nil, err
	}

	logger.Success(fmt.Sprintf("Appointment %d rescheduled as %d", old.ID, next.ID))
	s.publish(ctx, model.EventCancelled, old, actor.ID)
	s.publish(ctx, model.EventRescheduled, next, actor.ID)
	return next, nil
}

// Get returns an appointment to its patient, its doctor or an admin.
func (s *Service) Get(ctx context.Context, id uint, actor Actor) (*model.Appointment, error) {
	appt, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != account.RoleAdmin && !appt.Involves(actor.ID) {
		return nil, ErrForbidden
	}
	return appt, nil
}

// MeetingPassword decrypts the stored meeting password.
func (s *Service) MeetingPassword(appt *model.Appointment) (string, error) {
	return utils.DecryptData(appt.MeetingPassword)
}

// Page is one page of an appointment listing.
type Page struct {
	Items []model.Appointment
	Total int64
	Page  int
	Limit int
}

func (s *Service) ListForPatient(ctx context.Context, patientID uint, q apptTypes.ListQuery) (*Page, error) {
	return s.list(ctx, Filter{PatientID: patientID, Status: model.Status(q.Status), Date: q.Date}, q.Page, q.Limit)
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uint, q apptTypes.ListQuery) (*Page, error) {
	return s.list(ctx, Filter{DoctorID: doctorID, Status: model.Status(q.Status), Date: q.Date}, q.Page, q.Limit)
}

func (s *Service) list(ctx context.Context, filter Filter, page, limit int) (*Page, error) {
	page, limit = utils.NormalizePage(page, limit, 10, MaxPageSize)
	rows, total, err := s.store.List(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &Page{Items: rows, Total: total, Page: page, Limit: limit}, nil
}

// Calendar lists a doctor's appointments between two days, defaulting to the current month.
func (s *Service) Calendar(ctx context.Context, doctorID uint, q apptTypes.CalendarQuery) ([]model.Appointment, error) {
	month := now.With(s.now().In(s.location))
	start, end := q.StartDate, q.EndDate
	if start == "" {
		start = month.BeginningOfMonth().Format(model.DateLayout)
	}
	if end == "" {
		end = month.EndOfMonth().Format(model.DateLayout)
	}
	return s.store.Calendar(ctx, doctorID, start, end)
}

func (s *Service) assignMeeting(appt *model.Appointment) error {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("failed to generate meeting password: %w", err)
	}
	encrypted, err := s.encrypt(hex.EncodeToString(buf))
	if err != nil {
		return fmt.Errorf("failed to encrypt meeting password: %w", err)
	}
	appt.MeetingLink = s.meetingBaseURL + "/" + uuid.NewString()
	appt.MeetingPassword = encrypted
	return nil
}

// publish runs after the change committed; a broker failure never fails the request.
func (s *Service) publish(ctx context.Context, kind model.EventType, appt *model.Appointment, actorID uint) {
	err := s.publisher.Publish(ctx, events.AppointmentEvent{
		Type:            "appointment." + string(kind),
		AppointmentID:   appt.ID,
		PatientID:       appt.PatientID,
		DoctorID:        appt.DoctorID,
		Status:          string(appt.Status),
		ScheduledAt:     appt.ScheduledAt,
		ActorID:         actorID,
		RescheduledFrom: appt.RescheduledFrom,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(fmt.Sprintf("Failed to publish appointment.%s for appointment %d", kind, appt.ID), err)
	}
}
