package doctor

import (
	"fmt"
	"strings"
	"time"

	"healthcare-booking/models/account"
)

var sortFields = map[string]string{
	"name":            "name",
	"rating":          "rating",
	"experience":      "experience",
	"consultationFee": "consultation_fee",
	"createdAt":       "created_at",
}

// SearchQuery is the public doctor directory filter.
type SearchQuery struct {
	Search         string   `query:"search"`
	Specialization string   `query:"specialization"`
	City           string   `query:"city"`
	Hospital       string   `query:"hospital"`
	MinFee         *float64 `query:"minFee"`
	MaxFee         *float64 `query:"maxFee"`
	Online         *bool    `query:"online"`
	Offline        *bool    `query:"offline"`
	Rating         *float64 `query:"rating"`
	SortBy         string   `query:"sortBy"`
	SortOrder      string   `query:"sortOrder"`
	Page           int      `query:"page"`
	Limit          int      `query:"limit"`
}

func (q SearchQuery) Validate() error {
	if q.SortBy != "" {
		if _, ok := sortFields[q.SortBy]; !ok {
			return fmt.Errorf("sortBy must be one of name, rating, experience, consultationFee, createdAt")
		}
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		return fmt.Errorf("sortOrder must be asc or desc")
	}
	if q.MinFee != nil && q.MaxFee != nil && *q.MinFee > *q.MaxFee {
		return fmt.Errorf("minFee must not exceed maxFee")
	}
	if q.Rating != nil && (*q.Rating < 0 || *q.Rating > 5) {
		return fmt.Errorf("rating must be between 0 and 5")
	}
	return nil
}

// OrderClause returns a safe ORDER BY clause; the default is highest rated first.
func (q SearchQuery) OrderClause() string {
	column, ok := sortFields[q.SortBy]
	if !ok {
		column = "rating"
	}
	direction := "desc"
	if q.SortOrder == "asc" {
		direction = "asc"
	}
	return column + " " + direction
}

type UpdateProfileRequest struct {
	Specialization      string  `json:"specialization"`
	Experience          int     `json:"experience"`
	Education           string  `json:"education"`
	Hospital            string  `json:"hospital"`
	City                string  `json:"city"`
	ConsultationFee     float64 `json:"consultation_fee"`
	OnlineConsultation  bool    `json:"online_consultation"`
	OfflineConsultation bool    `json:"offline_consultation"`
}

func (r UpdateProfileRequest) Validate() error {
	if r.Experience < 0 {
		return fmt.Errorf("experience cannot be negative")
	}
	if r.ConsultationFee < 0 {
		return fmt.Errorf("consultation_fee cannot be negative")
	}
	return nil
}

func (r UpdateProfileRequest) Profile() account.DoctorProfile {
	return account.DoctorProfile{
		Specialization:      r.Specialization,
		Experience:          r.Experience,
		Education:           r.Education,
		Hospital:            r.Hospital,
		City:                r.City,
		ConsultationFee:     r.ConsultationFee,
		OnlineConsultation:  r.OnlineConsultation,
		OfflineConsultation: r.OfflineConsultation,
	}
}

type UpdateAvailabilityRequest struct {
	Availability []account.DaySlot `json:"availability"`
}

func (r UpdateAvailabilityRequest) Validate() error {
	seen := make(map[string]bool)
	for _, d := range r.Availability {
		day := strings.ToLower(d.Day)
		if !account.IsWeekday(day) {
			return fmt.Errorf("invalid day %q", d.Day)
		}
		if seen[day] {
			return fmt.Errorf("day %q is listed twice", d.Day)
		}
		seen[day] = true
		for _, s := range d.Slots {
			if !validClock(s.StartTime) || !validClock(s.EndTime) {
				return fmt.Errorf("slot times on %s must be HH:MM", d.Day)
			}
			if s.EndTime <= s.StartTime {
				return fmt.Errorf("slot on %s ends before it starts", d.Day)
			}
		}
	}
	return nil
}

func validClock(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil && len(v) == 5
}

// AvailabilitySlot is one slot of a day's availability with its booking state.
type AvailabilitySlot struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
	IsBooked    bool   `json:"is_booked"`
}

type AvailabilityResponse struct {
	DoctorID uint               `json:"doctor_id"`
	Date     string             `json:"date"`
	Day      string             `json:"day"`
	Slots    []AvailabilitySlot `json:"slots"`
}

// MonthlyCount is the number of appointments in one calendar month.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type StatsResponse struct {
	ByStatus      map[string]int64 `json:"appointments_by_status"`
	Monthly       []MonthlyCount   `json:"monthly_appointments"`
	AverageRating float64          `json:"average_rating"`
	TotalReviews  int              `json:"total_reviews"`
}
