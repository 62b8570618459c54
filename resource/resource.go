package resource

import (
	"time"

	"healthcare-booking/logger"
	"healthcare-booking/models/account"
	apptModel "healthcare-booking/models/appointment"
	"healthcare-booking/utils"
)

// AccountResponse is an account as returned to its owner or an admin.
type AccountResponse struct {
	*account.Account
	Age *int `json:"age,omitempty"`
}

func Account(acct *account.Account, at time.Time) AccountResponse {
	out := AccountResponse{Account: acct}
	if acct.DateOfBirth != nil {
		years, _, _ := utils.CalculateAge(*acct.DateOfBirth, at)
		out.Age = &years
	}
	return out
}

func Accounts(rows []account.Account, at time.Time) []AccountResponse {
	out := make([]AccountResponse, len(rows))
	for i := range rows {
		out[i] = Account(&rows[i], at)
	}
	return out
}

// AppointmentResponse exposes the meeting password to the participants of an online appointment.
type AppointmentResponse struct {
	*apptModel.Appointment
	MeetingPassword string `json:"meeting_password,omitempty"`
}

// Appointment decrypts the meeting password with reveal; a nil reveal leaves it out.
func Appointment(appt *apptModel.Appointment, reveal func(*apptModel.Appointment) (string, error)) AppointmentResponse {
	out := AppointmentResponse{Appointment: appt}
	if reveal == nil || appt.MeetingPassword == "" {
		return out
	}
	password, err := reveal(appt)
	if err != nil {
		logger.Error("Failed to decrypt meeting password", err)
		return out
	}
	out.MeetingPassword = password
	return out
}

func Appointments(rows []apptModel.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, len(rows))
	for i := range rows {
		out[i] = AppointmentResponse{Appointment: &rows[i]}
	}
	return out
}
