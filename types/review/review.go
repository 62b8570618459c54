package review

import (
	"fmt"
	"strings"
)

type CreateRequest struct {
	AppointmentID uint   `json:"appointment_id"`
	Rating        int    `json:"rating"`
	Title         string `json:"title"`
	Comment       string `json:"comment"`
	IsAnonymous   bool   `json:"is_anonymous"`
}

func (r CreateRequest) Validate() error {
	if r.AppointmentID == 0 {
		return fmt.Errorf("appointment_id is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	if len(strings.TrimSpace(r.Title)) > 100 {
		return fmt.Errorf("title cannot exceed 100 characters")
	}
	if len(strings.TrimSpace(r.Comment)) > 500 {
		return fmt.Errorf("comment cannot exceed 500 characters")
	}
	return nil
}
