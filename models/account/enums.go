package account

import "healthcare-booking/constants"

// Role of an account
type Role string

const (
	RolePatient Role = constants.RolePatient
	RoleDoctor  Role = constants.RoleDoctor
	RoleAdmin   Role = constants.RoleAdmin
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	default:
		return false
	}
}

// Weekdays accepted in a doctor's availability, in calendar order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

func IsGender(g string) bool {
	return g == "male" || g == "female" || g == "other"
}
