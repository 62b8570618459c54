package review

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"healthcare-booking/logger"
	apptModel "healthcare-booking/models/appointment"
	model "healthcare-booking/models/review"
	reviewTypes "healthcare-booking/types/review"
	"healthcare-booking/utils"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrForbidden           = errors.New("you can only review your own appointments")
	ErrNotCompleted        = errors.New("you can only review completed appointments")
	ErrAlreadyReviewed     = errors.New("you have already reviewed this doctor or appointment")
)

type Store interface {
	FindAppointment(ctx context.Context, id uint) (*apptModel.Appointment, error)
	Exists(ctx context.Context, appointmentID, patientID, doctorID uint) (bool, error)
	Create(ctx context.Context, r *model.Review) error
	RatingSummary(ctx context.Context, doctorID uint) (float64, int, error)
	ListForDoctor(ctx context.Context, doctorID uint, offset, limit int) ([]model.Review, int64, error)
}

// RatingWriter stores a doctor's aggregate rating on the account row.
type RatingWriter interface {
	UpdateRating(ctx context.Context, doctorID uint, rating float64, total int) error
}

type Service struct {
	store   Store
	ratings RatingWriter
}

func NewService(store Store, ratings RatingWriter) *Service {
	return &Service{store: store, ratings: ratings}
}

// RoundRating rounds an average to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// Create records a review for a completed appointment and refreshes the doctor's rating.
func (s *Service) Create(ctx context.Context, patientID uint, req reviewTypes.CreateRequest) (*model.Review, error) {
	appt, err := s.store.FindAppointment(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != patientID {
		return nil, ErrForbidden
	}
	if appt.Status != apptModel.StatusCompleted {
		return nil, ErrNotCompleted
	}
	exists, err := s.store.Exists(ctx, appt.ID, patientID, appt.DoctorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	r := &model.Review{
		PatientID:     patientID,
		DoctorID:      appt.DoctorID,
		AppointmentID: appt.ID,
		Rating:        req.Rating,
		Title:         strings.TrimSpace(req.Title),
		Comment:       strings.TrimSpace(req.Comment),
		IsAnonymous:   req.IsAnonymous,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}

	if err := s.RefreshDoctorRating(ctx, appt.DoctorID); err != nil {
		logger.Error(fmt.Sprintf("Failed to refresh rating of doctor %d", appt.DoctorID), err)
	}
	return r, nil
}

// RefreshDoctorRating recomputes the rating from every visible review.
func (s *Service) RefreshDoctorRating(ctx context.Context, doctorID uint) error {
	avg, count, err := s.store.RatingSummary(ctx, doctorID)
	if err != nil {
		return err
	}
	return s.ratings.UpdateRating(ctx, doctorID, RoundRating(avg), count)
}

type Page struct {
	Items []model.Review
	Total int64
	Page  int
	Limit int
}

// ListForDoctor returns visible reviews with anonymous authors masked.
func (s *Service) ListForDoctor(ctx context.Context, doctorID uint, page, limit int) (*Page, error) {
	page, limit = utils.NormalizePage(page, limit, 10, 50)
	rows, total, err := s.store.ListForDoctor(ctx, doctorID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = rows[i].Public()
	}
	return &Page{Items: rows, Total: total, Page: page, Limit: limit}, nil
}
