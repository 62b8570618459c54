package review

import (
	"errors"

	"healthcare-booking/middleware"
	reviewService "healthcare-booking/services/review"
	reviewTypes "healthcare-booking/types/review"
	"healthcare-booking/utils"

	"github.com/gofiber/fiber/v2"
)

type ReviewController struct {
	service *reviewService.Service
}

func NewReviewController(service *reviewService.Service) *ReviewController {
	return &ReviewController{service: service}
}

func (h *ReviewController) Create(c *fiber.Ctx) error {
	var req reviewTypes.CreateRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	review, err := h.service.Create(c.UserContext(), middleware.CurrentAccount(c).ID, req)
	switch {
	case err == nil:
		return utils.Respond(c, fiber.StatusCreated, "Review submitted successfully", review)
	case errors.Is(err, reviewService.ErrAppointmentNotFound):
		return utils.RespondError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, reviewService.ErrForbidden):
		return utils.RespondError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, reviewService.ErrNotCompleted), errors.Is(err, reviewService.ErrAlreadyReviewed):
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	default:
		return utils.RespondServerError(c, "Failed to create review", err)
	}
}
