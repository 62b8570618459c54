package appointment

import (
	"errors"

	"healthcare-booking/middleware"
	model "healthcare-booking/models/appointment"
	"healthcare-booking/resource"
	apptService "healthcare-booking/services/appointment"
	"healthcare-booking/types"
	apptTypes "healthcare-booking/types/appointment"
	"healthcare-booking/utils"

	"github.com/gofiber/fiber/v2"
)

type AppointmentController struct {
	service *apptService.Service
}

func NewAppointmentController(service *apptService.Service) *AppointmentController {
	return &AppointmentController{service: service}
}

// fail maps lifecycle errors to their HTTP status.
func fail(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, apptService.ErrNotFound), errors.Is(err, apptService.ErrDoctorNotFound):
		return utils.RespondError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, apptService.ErrForbidden):
		return utils.RespondError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, apptService.ErrInvalidTransition),
		errors.Is(err, apptService.ErrSlotUnavailable),
		errors.Is(err, apptService.ErrAppointmentInPast),
		errors.Is(err, apptService.ErrConsultationTypeUnsupported),
		errors.Is(err, apptService.ErrInvalidSchedule):
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	default:
		return utils.RespondServerError(c, "Failed to "+action, err)
	}
}

func actor(c *fiber.Ctx) apptService.Actor {
	acct := middleware.CurrentAccount(c)
	return apptService.Actor{ID: acct.ID, Role: acct.Role}
}

func (h *AppointmentController) Book(c *fiber.Ctx) error {
	var req apptTypes.BookRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	appt, err := h.service.Book(c.UserContext(), middleware.CurrentAccount(c).ID, req)
	if err != nil {
		return fail(c, "book appointment", err)
	}
	return utils.Respond(c, fiber.StatusCreated, "Appointment booked successfully", resource.Appointment(appt, nil))
}

func (h *AppointmentController) CheckSlot(c *fiber.Ctx) error {
	doctorID := uint(c.QueryInt("doctor_id"))
	date, clock := c.Query("date"), c.Query("time")
	if doctorID == 0 || date == "" || clock == "" {
		return utils.RespondError(c, fiber.StatusBadRequest, "doctor_id, date and time are required")
	}
	available, err := h.service.IsSlotAvailable(c.UserContext(), doctorID, date, clock)
	if err != nil {
		return fail(c, "check slot", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Slot checked", apptTypes.SlotCheckResponse{
		DoctorID:  doctorID,
		Date:      date,
		Time:      clock,
		Available: available,
	})
}

func (h *AppointmentController) respondPage(c *fiber.Ctx, page *apptService.Page) error {
	return utils.RespondPage(c, "Appointments retrieved", resource.Appointments(page.Items),
		types.NewPagination(page.Page, page.Limit, page.Total))
}

func (h *AppointmentController) ListForPatient(c *fiber.Ctx) error {
	var q apptTypes.ListQuery
	if err := utils.BindQuery(c, &q); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	page, err := h.service.ListForPatient(c.UserContext(), middleware.CurrentAccount(c).ID, q)
	if err != nil {
		return fail(c, "list appointments", err)
	}
	return h.respondPage(c, page)
}

func (h *AppointmentController) ListForDoctor(c *fiber.Ctx) error {
	var q apptTypes.ListQuery
	if err := utils.BindQuery(c, &q); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	page, err := h.service.ListForDoctor(c.UserContext(), middleware.CurrentAccount(c).ID, q)
	if err != nil {
		return fail(c, "list appointments", err)
	}
	return h.respondPage(c, page)
}

func (h *AppointmentController) Get(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	appt, err := h.service.Get(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, "load appointment", err)
	}
	var reveal func(*model.Appointment) (string, error)
	if appt.Involves(middleware.CurrentAccount(c).ID) {
		reveal = h.service.MeetingPassword
	}
	return utils.Respond(c, fiber.StatusOK, "Appointment retrieved", resource.Appointment(appt, reveal))
}

func (h *AppointmentController) UpdateStatus(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	var req apptTypes.UpdateStatusRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	appt, err := h.service.UpdateStatus(c.UserContext(), id, middleware.CurrentAccount(c).ID, req)
	if err != nil {
		return fail(c, "update appointment status", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Appointment status updated", resource.Appointment(appt, h.service.MeetingPassword))
}

func (h *AppointmentController) Cancel(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	var req apptTypes.CancelRequest
	if len(c.Body()) > 0 {
		if err := utils.BindJSON(c, &req); err != nil {
			return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
		}
	}
	appt, err := h.service.Cancel(c.UserContext(), id, middleware.CurrentAccount(c).ID, req.Reason)
	if err != nil {
		return fail(c, "cancel appointment", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Appointment cancelled successfully", resource.Appointment(appt, nil))
}

func (h *AppointmentController) Reschedule(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	var req apptTypes.RescheduleRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	appt, err := h.service.Reschedule(c.UserContext(), id, actor(c), req)
	if err != nil {
		return fail(c, "reschedule appointment", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Appointment rescheduled successfully", resource.Appointment(appt, nil))
}

// Calendar is open to the doctor it belongs to and to admins.
func (h *AppointmentController) Calendar(c *fiber.Ctx) error {
	doctorID, err := utils.ParamID(c, "doctorId")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	acct := middleware.CurrentAccount(c)
	if !acct.IsAdmin() && acct.ID != doctorID {
		return utils.RespondError(c, fiber.StatusForbidden, "Not authorized to view this calendar")
	}
	var q apptTypes.CalendarQuery
	if err := utils.BindQuery(c, &q); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	rows, err := h.service.Calendar(c.UserContext(), doctorID, q)
	if err != nil {
		return fail(c, "load calendar", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Calendar retrieved", resource.Appointments(rows))
}
