package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"healthcare-booking/logger"
	"healthcare-booking/models/account"
	apptModel "healthcare-booking/models/appointment"
	"healthcare-booking/services/accounts"
	doctorTypes "healthcare-booking/types/doctor"
	"healthcare-booking/utils"

	"github.com/jinzhu/now"
)

var ErrNotFound = errors.New("doctor not found")

// Directory reads and writes doctor accounts.
type Directory interface {
	FindByID(ctx context.Context, id uint) (*account.Account, error)
	Update(ctx context.Context, acct *account.Account, columns ...string) error
	SearchDoctors(ctx context.Context, q doctorTypes.SearchQuery, offset, limit int) ([]account.Account, int64, error)
}

// Schedule answers questions about a doctor's appointments.
type Schedule interface {
	BookedTimes(ctx context.Context, doctorID uint, date string) ([]string, error)
	CountByStatus(ctx context.Context, doctorID uint) (map[string]int64, error)
	CountBetween(ctx context.Context, doctorID uint, startDate, endDate string) (int64, error)
}

const statsMonths = 6

type Service struct {
	directory Directory
	schedule  Schedule
	location  *time.Location
	now       func() time.Time
}

func NewService(directory Directory, schedule Schedule, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{directory: directory, schedule: schedule, location: loc, now: time.Now}
}

type Page struct {
	Items []account.Account
	Total int64
	Page  int
	Limit int
}

func (s *Service) Search(ctx context.Context, q doctorTypes.SearchQuery) (*Page, error) {
	page, limit := utils.NormalizePage(q.Page, q.Limit, 10, 50)
	rows, total, err := s.directory.SearchDoctors(ctx, q, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &Page{Items: rows, Total: total, Page: page, Limit: limit}, nil
}

// Get returns an active doctor.
func (s *Service) Get(ctx context.Context, id uint) (*account.Account, error) {
	doc, err := s.directory.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !doc.IsDoctor() || !doc.IsActive {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Availability lists the doctor's slots for the weekday of date, marking those already booked.
// An empty date means today in the clinic time zone.
func (s *Service) Availability(ctx context.Context, id uint, date string) (*doctorTypes.AvailabilityResponse, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if date == "" {
		date = s.now().In(s.location).Format(apptModel.DateLayout)
	}
	day, err := time.ParseInLocation(apptModel.DateLayout, date, s.location)
	if err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}

	booked, err := s.schedule.BookedTimes(ctx, doc.ID, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(booked))
	for _, t := range booked {
		taken[t] = true
	}

	resp := &doctorTypes.AvailabilityResponse{
		DoctorID: doc.ID,
		Date:     date,
		Day:      strings.ToLower(day.Weekday().String()),
		Slots:    []doctorTypes.AvailabilitySlot{},
	}
	for _, d := range doc.AvailabilityOn(day) {
		for _, slot := range d.Slots {
			resp.Slots = append(resp.Slots, doctorTypes.AvailabilitySlot{
				StartTime:   slot.StartTime,
				EndTime:     slot.EndTime,
				IsAvailable: slot.IsAvailable && !taken[slot.StartTime],
				IsBooked:    taken[slot.StartTime],
			})
		}
	}
	return resp, nil
}

func (s *Service) UpdateProfile(ctx context.Context, doctorID uint, req doctorTypes.UpdateProfileRequest) (*account.Account, error) {
	doc, err := s.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	variant, err := doc.Variant()
	if err != nil {
		return nil, err
	}
	d, ok := variant.(account.DoctorAccount)
	if !ok {
		return nil, ErrNotFound
	}
	if err := d.ApplyDoctorProfile(req.Profile()); err != nil {
		return nil, err
	}
	if err := s.directory.Update(ctx, doc, account.DoctorProfileColumns...); err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("Doctor %d updated their profile", doc.ID))
	return doc, nil
}

func (s *Service) UpdateAvailability(ctx context.Context, doctorID uint, req doctorTypes.UpdateAvailabilityRequest) (*account.Account, error) {
	doc, err := s.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	days := make([]account.DaySlot, 0, len(req.Availability))
	for _, d := range req.Availability {
		d.Day = strings.ToLower(d.Day)
		days = append(days, d)
	}
	doc.Availability = days
	if err := s.directory.Update(ctx, doc, "availability"); err != nil {
		return nil, err
	}
	return doc, nil
}

// Stats summarizes a doctor's appointments by status and over the last six calendar months.
func (s *Service) Stats(ctx context.Context, doctorID uint) (*doctorTypes.StatsResponse, error) {
	doc, err := s.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.schedule.CountByStatus(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	current := now.With(s.now().In(s.location)).BeginningOfMonth()
	monthly := make([]doctorTypes.MonthlyCount, 0, statsMonths)
	for i := statsMonths - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		end := now.With(start).EndOfMonth()
		count, err := s.schedule.CountBetween(ctx, doc.ID, start.Format(apptModel.DateLayout), end.Format(apptModel.DateLayout))
		if err != nil {
			return nil, err
		}
		monthly = append(monthly, doctorTypes.MonthlyCount{Month: start.Format("2006-01"), Count: count})
	}

	return &doctorTypes.StatsResponse{
		ByStatus:      byStatus,
		Monthly:       monthly,
		AverageRating: doc.Rating,
		TotalReviews:  doc.TotalReviews,
	}, nil
}
