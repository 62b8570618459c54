package reminder

import (
	"context"
	"fmt"
	"time"

	apptModel "healthcare-booking/models/appointment"

	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Due(ctx context.Context, from, to time.Time) ([]apptModel.Appointment, error) {
	var rows []apptModel.Appointment
	err := s.db.WithContext(ctx).
		Preload("Patient").
		Preload("Doctor").
		Where("status = ? AND reminder_sent = ? AND scheduled_at > ? AND scheduled_at <= ?",
			apptModel.StatusConfirmed, false, from, to).
		Order("scheduled_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load due reminders: %w", err)
	}
	return rows, nil
}

func (s *GormStore) Claim(ctx context.Context, id uint) (bool, error) {
	result := s.db.WithContext(ctx).Model(&apptModel.Appointment{}).
		Where("id = ? AND reminder_sent = ?", id, false).
		Update("reminder_sent", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim reminder: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *GormStore) Release(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&apptModel.Appointment{}).
		Where("id = ?", id).
		Update("reminder_sent", false).Error
}
