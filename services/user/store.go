package user

import (
	"context"
	"fmt"
	"time"

	"healthcare-booking/models/account"
	apptModel "healthcare-booking/models/appointment"
	reviewModel "healthcare-booking/models/review"

	"gorm.io/gorm"
)

type ActivityGormStore struct {
	db *gorm.DB
}

func NewActivityStore(db *gorm.DB) *ActivityGormStore {
	return &ActivityGormStore{db: db}
}

func participantColumn(acct *account.Account) string {
	if acct.IsDoctor() {
		return "doctor_id"
	}
	return "patient_id"
}

func (s *ActivityGormStore) AppointmentCounts(ctx context.Context, acct *account.Account) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&apptModel.Appointment{}).
		Select("status, COUNT(*) AS count").
		Where(participantColumn(acct)+" = ?", acct.ID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (s *ActivityGormStore) UpcomingCount(ctx context.Context, acct *account.Account, after time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&apptModel.Appointment{}).
		Where(participantColumn(acct)+" = ? AND status IN ? AND scheduled_at > ?", acct.ID, apptModel.ActiveStatuses(), after).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming appointments: %w", err)
	}
	return count, nil
}

func (s *ActivityGormStore) ReviewsWritten(ctx context.Context, patientID uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&reviewModel.Review{}).Where("patient_id = ?", patientID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}
