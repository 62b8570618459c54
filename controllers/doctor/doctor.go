package doctor

import (
	"errors"
	"time"

	"healthcare-booking/middleware"
	"healthcare-booking/models/account"
	doctorService "healthcare-booking/services/doctor"
	reviewService "healthcare-booking/services/review"
	"healthcare-booking/types"
	doctorTypes "healthcare-booking/types/doctor"
	"healthcare-booking/utils"

	"github.com/gofiber/fiber/v2"
)

type DoctorController struct {
	doctors *doctorService.Service
	reviews *reviewService.Service
}

func NewDoctorController(doctors *doctorService.Service, reviews *reviewService.Service) *DoctorController {
	return &DoctorController{doctors: doctors, reviews: reviews}
}

func fail(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, doctorService.ErrNotFound):
		return utils.RespondError(c, fiber.StatusNotFound, "Doctor not found")
	case errors.Is(err, account.ErrInvalidProfile):
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	default:
		return utils.RespondServerError(c, "Failed to "+action, err)
	}
}

func (h *DoctorController) Search(c *fiber.Ctx) error {
	var q doctorTypes.SearchQuery
	if err := utils.BindQuery(c, &q); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	page, err := h.doctors.Search(c.UserContext(), q)
	if err != nil {
		return fail(c, "search doctors", err)
	}
	return utils.RespondPage(c, "Doctors retrieved", page.Items, types.NewPagination(page.Page, page.Limit, page.Total))
}

func (h *DoctorController) Get(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	doc, err := h.doctors.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "load doctor", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Doctor retrieved", doc)
}

func (h *DoctorController) Availability(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	date := c.Query("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return utils.RespondError(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}
	availability, err := h.doctors.Availability(c.UserContext(), id, date)
	if err != nil {
		return fail(c, "load availability", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Availability retrieved", availability)
}

func (h *DoctorController) Reviews(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	page, err := h.reviews.ListForDoctor(c.UserContext(), id, c.QueryInt("page"), c.QueryInt("limit"))
	if err != nil {
		return fail(c, "list reviews", err)
	}
	return utils.RespondPage(c, "Reviews retrieved", page.Items, types.NewPagination(page.Page, page.Limit, page.Total))
}

func (h *DoctorController) UpdateProfile(c *fiber.Ctx) error {
	var req doctorTypes.UpdateProfileRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	doc, err := h.doctors.UpdateProfile(c.UserContext(), middleware.CurrentAccount(c).ID, req)
	if err != nil {
		return fail(c, "update doctor profile", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Profile updated successfully", doc)
}

func (h *DoctorController) UpdateAvailability(c *fiber.Ctx) error {
	var req doctorTypes.UpdateAvailabilityRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	doc, err := h.doctors.UpdateAvailability(c.UserContext(), middleware.CurrentAccount(c).ID, req)
	if err != nil {
		return fail(c, "update availability", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Availability updated successfully", doc.Availability)
}

func (h *DoctorController) Stats(c *fiber.Ctx) error {
	stats, err := h.doctors.Stats(c.UserContext(), middleware.CurrentAccount(c).ID)
	if err != nil {
		return fail(c, "load doctor stats", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Statistics retrieved", stats)
}
