package appointment

import (
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	model "healthcare-booking/models/appointment"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func validateDate(field, value string) error {
	if _, err := time.Parse(model.DateLayout, value); err != nil {
		return fmt.Errorf("%s must be YYYY-MM-DD", field)
	}
	return nil
}

func validateClock(field, value string) error {
	if !clockPattern.MatchString(value) {
		return fmt.Errorf("%s must be HH:MM", field)
	}
	return nil
}

type BookRequest struct {
	DoctorID         uint   `json:"doctor_id"`
	AppointmentDate  string `json:"appointment_date"`
	AppointmentTime  string `json:"appointment_time"`
	AppointmentType  string `json:"appointment_type"`
	ConsultationType string `json:"consultation_type"`
	Symptoms         string `json:"symptoms"`
	Notes            string `json:"notes"`
}

func (r BookRequest) Validate() error {
	if r.DoctorID == 0 {
		return fmt.Errorf("doctor_id is required")
	}
	if err := validateDate("appointment_date", r.AppointmentDate); err != nil {
		return err
	}
	if err := validateClock("appointment_time", r.AppointmentTime); err != nil {
		return err
	}
	if !model.Type(r.AppointmentType).IsValid() {
		return fmt.Errorf("appointment_type must be online or offline")
	}
	if r.ConsultationType != "" && !model.ConsultationType(r.ConsultationType).IsValid() {
		return fmt.Errorf("consultation_type must be general, follow-up, emergency or routine")
	}
	if utf8.RuneCountInString(r.Symptoms) > 500 {
		return fmt.Errorf("symptoms cannot exceed 500 characters")
	}
	if utf8.RuneCountInString(r.Notes) > 1000 {
		return fmt.Errorf("notes cannot exceed 1000 characters")
	}
	return nil
}

// Consultation returns the consultation type, defaulting to general.
func (r BookRequest) Consultation() model.ConsultationType {
	if r.ConsultationType == "" {
		return model.ConsultationGeneral
	}
	return model.ConsultationType(r.ConsultationType)
}

type UpdateStatusRequest struct {
	Status       string `json:"status"`
	DoctorNotes  string `json:"doctor_notes"`
	Prescription string `json:"prescription"`
	FollowUpDate string `json:"follow_up_date"`
}

func (r UpdateStatusRequest) Validate() error {
	if !model.Status(r.Status).IsValid() {
		return fmt.Errorf("status must be one of pending, confirmed, cancelled, completed, rejected")
	}
	if utf8.RuneCountInString(r.DoctorNotes) > 1000 {
		return fmt.Errorf("doctor_notes cannot exceed 1000 characters")
	}
	if r.FollowUpDate != "" {
		return validateDate("follow_up_date", r.FollowUpDate)
	}
	return nil
}

// FollowUp parses the optional follow-up date.
func (r UpdateStatusRequest) FollowUp() *time.Time {
	if r.FollowUpDate == "" {
		return nil
	}
	t, err := time.Parse(model.DateLayout, r.FollowUpDate)
	if err != nil {
		return nil
	}
	return &t
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (r CancelRequest) Validate() error {
	if utf8.RuneCountInString(r.Reason) > 500 {
		return fmt.Errorf("reason cannot exceed 500 characters")
	}
	return nil
}

type RescheduleRequest struct {
	NewDate string `json:"new_date"`
	NewTime string `json:"new_time"`
	Reason  string `json:"reason"`
}

func (r RescheduleRequest) Validate() error {
	if err := validateDate("new_date", r.NewDate); err != nil {
		return err
	}
	if err := validateClock("new_time", r.NewTime); err != nil {
		return err
	}
	if utf8.RuneCountInString(r.Reason) > 500 {
		return fmt.Errorf("reason cannot exceed 500 characters")
	}
	return nil
}

// ListQuery filters a patient or doctor appointment list.
type ListQuery struct {
	Status string `query:"status"`
	Date   string `query:"date"`
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
}

func (q ListQuery) Validate() error {
	if q.Status != "" && !model.Status(q.Status).IsValid() {
		return fmt.Errorf("status filter is invalid")
	}
	if q.Date != "" {
		return validateDate("date", q.Date)
	}
	return nil
}

type CalendarQuery struct {
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

func (q CalendarQuery) Validate() error {
	if q.StartDate != "" {
		if err := validateDate("start_date", q.StartDate); err != nil {
			return err
		}
	}
	if q.EndDate != "" {
		if err := validateDate("end_date", q.EndDate); err != nil {
			return err
		}
	}
	if q.StartDate != "" && q.EndDate != "" && q.EndDate < q.StartDate {
		return fmt.Errorf("end_date must not be before start_date")
	}
	return nil
}

// SlotCheckResponse answers whether a doctor's slot can still be booked.
type SlotCheckResponse struct {
	DoctorID  uint   `json:"doctor_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}
