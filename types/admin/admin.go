package admin

import (
	"fmt"

	"healthcare-booking/models/account"
)

type UserQuery struct {
	Role     string `query:"role"`
	IsActive *bool  `query:"isActive"`
	Search   string `query:"search"`
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
}

func (q UserQuery) Validate() error {
	if q.Role != "" && !account.Role(q.Role).IsValid() {
		return fmt.Errorf("role must be patient, doctor or admin")
	}
	return nil
}

type SuspendRequest struct {
	Reason string `json:"reason"`
}

type StatsResponse struct {
	TotalUsers     int64   `json:"total_users"`
	ActiveUsers    int64   `json:"active_users"`
	SuspendedUsers int64   `json:"suspended_users"`
	ActiveDoctors  int64   `json:"active_doctors"`
	ActivePatients int64   `json:"active_patients"`
	SuspensionRate float64 `json:"suspension_rate"`
}
