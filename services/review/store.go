package review

import (
	"context"
	"errors"
	"fmt"

	apptModel "healthcare-booking/models/appointment"
	model "healthcare-booking/models/review"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindAppointment(ctx context.Context, id uint) (*apptModel.Appointment, error) {
	var appt apptModel.Appointment
	if err := s.db.WithContext(ctx).First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}
	return &appt, nil
}

// Exists reports whether the appointment or the patient-doctor pair already has a review.
func (s *GormStore) Exists(ctx context.Context, appointmentID, patientID, doctorID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Review{}).
		Where("appointment_id = ? OR (patient_id = ? AND doctor_id = ?)", appointmentID, patientID, doctorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) Create(ctx context.Context, r *model.Review) error {
	err := s.db.WithContext(ctx).Omit("Patient").Create(r).Error
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.Is(err, gorm.ErrDuplicatedKey) || (errors.As(err, &pgErr) && pgErr.Code == "23505") {
		return ErrAlreadyReviewed
	}
	return fmt.Errorf("failed to create review: %w", err)
}

func (s *GormStore) RatingSummary(ctx context.Context, doctorID uint) (float64, int, error) {
	var summary struct {
		Average float64
		Total   int
	}
	err := s.db.WithContext(ctx).Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("doctor_id = ? AND is_hidden = ?", doctorID, false).
		Scan(&summary).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to summarize reviews: %w", err)
	}
	return summary.Average, summary.Total, nil
}

func (s *GormStore) ListForDoctor(ctx context.Context, doctorID uint, offset, limit int) ([]model.Review, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.Review{}).Where("doctor_id = ? AND is_hidden = ?", doctorID, false)
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	var rows []model.Review
	err := tx.Preload("Patient").Order("created_at desc").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return rows, total, nil
}
