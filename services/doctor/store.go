package doctor

import (
	"context"
	"fmt"

	apptModel "healthcare-booking/models/appointment"

	"gorm.io/gorm"
)

// ScheduleStore reads doctor appointment aggregates.
type ScheduleStore struct {
	db *gorm.DB
}

func NewScheduleStore(db *gorm.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

func (s *ScheduleStore) BookedTimes(ctx context.Context, doctorID uint, date string) ([]string, error) {
	var times []string
	err := s.db.WithContext(ctx).Model(&apptModel.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND status IN ?", doctorID, date, apptModel.ActiveStatuses()).
		Pluck("appointment_time", &times).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load booked times: %w", err)
	}
	return times, nil
}

func (s *ScheduleStore) CountByStatus(ctx context.Context, doctorID uint) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&apptModel.Appointment{}).
		Select("status, COUNT(*) AS count").
		Where("doctor_id = ?", doctorID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	out := make(map[string]int64, len(apptModel.GetAllStatuses()))
	for _, st := range apptModel.GetAllStatuses() {
		out[st.String()] = 0
	}
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (s *ScheduleStore) CountBetween(ctx context.Context, doctorID uint, startDate, endDate string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&apptModel.Appointment{}).
		Where("doctor_id = ? AND appointment_date BETWEEN ? AND ?", doctorID, startDate, endDate).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}
