package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthcare-booking/models/account"
	model "healthcare-booking/models/appointment"
	"healthcare-booking/services/appointment_event"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// GormStore keeps appointments in PostgreSQL. Slot uniqueness is enforced by the partial unique
// index idx_appointments_active_slot.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *GormStore) FindDoctor(ctx context.Context, doctorID uint) (*account.Account, error) {
	var doctor account.Account
	err := s.db.WithContext(ctx).Where("id = ? AND role = ?", doctorID, account.RoleDoctor).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("failed to load doctor: %w", err)
	}
	return &doctor, nil
}

func (s *GormStore) FindByID(ctx context.Context, id uint) (*model.Appointment, error) {
	var appt model.Appointment
	err := s.db.WithContext(ctx).
		Preload("Patient").
		Preload("Doctor").
		First(&appt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}
	return &appt, nil
}

func (s *GormStore) IsSlotTaken(ctx context.Context, doctorID uint, date, clock string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status IN ?",
			doctorID, date, clock, model.ActiveStatuses()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) Create(ctx context.Context, appt *model.Appointment, actor appointment_event.Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Patient", "Doctor").Create(appt).Error; err != nil {
			return err
		}
		return appointment_event.RecordStatusChange(tx, appt, nil, actor, "")
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func transitionColumns(appt *model.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"status":              appt.Status,
		"doctor_notes":        appt.DoctorNotes,
		"prescription":        appt.Prescription,
		"follow_up_date":      appt.FollowUpDate,
		"meeting_link":        appt.MeetingLink,
		"meeting_password":    appt.MeetingPassword,
		"cancellation_reason": appt.CancellationReason,
		"cancelled_by":        appt.CancelledBy,
		"updated_at":          time.Now(),
	}
}

// transition applies the change only if the row still has status from.
func transition(tx *gorm.DB, appt *model.Appointment, from model.Status) error {
	result := tx.Model(&model.Appointment{}).
		Where("id = ? AND status = ?", appt.ID, from).
		Updates(transitionColumns(appt))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: appointment %d is no longer %s", ErrInvalidTransition, appt.ID, from)
	}
	return nil
}

func (s *GormStore) Transition(ctx context.Context, appt *model.Appointment, from model.Status, actor appointment_event.Actor, reason string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transition(tx, appt, from); err != nil {
			return err
		}
		return appointment_event.RecordStatusChange(tx, appt, &from, actor, reason)
	})
	if err != nil && !errors.Is(err, ErrInvalidTransition) {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return err
}

func (s *GormStore) Reschedule(ctx context.Context, old *model.Appointment, from model.Status, next *model.Appointment, actor appointment_event.Actor, reason string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transition(tx, old, from); err != nil {
			return err
		}
		if err := appointment_event.RecordStatusChange(tx, old, &from, actor, reason); err != nil {
			return err
		}
		if err := tx.Omit("Patient", "Doctor").Create(next).Error; err != nil {
			return err
		}
		return appointment_event.RecordStatusChange(tx, next, nil, actor, fmt.Sprintf("rescheduled from appointment %d", old.ID))
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidTransition):
		return err
	case isUniqueViolation(err):
		return ErrSlotUnavailable
	default:
		return fmt.Errorf("failed to reschedule appointment: %w", err)
	}
}

func (s *GormStore) List(ctx context.Context, filter Filter, offset, limit int) ([]model.Appointment, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.Appointment{})
	if filter.PatientID != 0 {
		tx = tx.Where("patient_id = ?", filter.PatientID).Preload("Doctor")
	}
	if filter.DoctorID != 0 {
		tx = tx.Where("doctor_id = ?", filter.DoctorID).Preload("Patient")
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		tx = tx.Where("appointment_date = ?", filter.Date)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	var rows []model.Appointment
	err := tx.Order("appointment_date desc, appointment_time desc").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return rows, total, nil
}

func (s *GormStore) Calendar(ctx context.Context, doctorID uint, startDate, endDate string) ([]model.Appointment, error) {
	var rows []model.Appointment
	err := s.db.WithContext(ctx).
		Preload("Patient").
		Where("doctor_id = ? AND appointment_date BETWEEN ? AND ?", doctorID, startDate, endDate).
		Order("appointment_date asc, appointment_time asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar: %w", err)
	}
	return rows, nil
}
