package admin

import (
	"errors"
	"time"

	"healthcare-booking/resource"
	"healthcare-booking/services/accounts"
	adminService "healthcare-booking/services/admin"
	"healthcare-booking/types"
	adminTypes "healthcare-booking/types/admin"
	"healthcare-booking/utils"

	"github.com/gofiber/fiber/v2"
)

type AdminController struct {
	service *adminService.Service
}

func NewAdminController(service *adminService.Service) *AdminController {
	return &AdminController{service: service}
}

func fail(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, accounts.ErrNotFound):
		return utils.RespondError(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, adminService.ErrCannotSuspendAdmin),
		errors.Is(err, adminService.ErrAlreadySuspended),
		errors.Is(err, adminService.ErrAlreadyActive):
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	default:
		return utils.RespondServerError(c, "Failed to "+action, err)
	}
}

func (h *AdminController) ListUsers(c *fiber.Ctx) error {
	var q adminTypes.UserQuery
	if err := utils.BindQuery(c, &q); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	page, err := h.service.ListUsers(c.UserContext(), q)
	if err != nil {
		return fail(c, "list users", err)
	}
	return utils.RespondPage(c, "Users retrieved", resource.Accounts(page.Items, time.Now()),
		types.NewPagination(page.Page, page.Limit, page.Total))
}

func (h *AdminController) GetUser(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	acct, err := h.service.GetUser(c.UserContext(), id)
	if err != nil {
		return fail(c, "load user", err)
	}
	return utils.Respond(c, fiber.StatusOK, "User retrieved", resource.Account(acct, time.Now()))
}

func (h *AdminController) Suspend(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	var req adminTypes.SuspendRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.RespondError(c, fiber.StatusBadRequest, "error parsing request body")
		}
	}
	acct, err := h.service.Suspend(c.UserContext(), id, req.Reason)
	if err != nil {
		return fail(c, "suspend user", err)
	}
	return utils.Respond(c, fiber.StatusOK, "User suspended successfully", resource.Account(acct, time.Now()))
}

func (h *AdminController) Reactivate(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	acct, err := h.service.Reactivate(c.UserContext(), id)
	if err != nil {
		return fail(c, "reactivate user", err)
	}
	return utils.Respond(c, fiber.StatusOK, "User reactivated successfully", resource.Account(acct, time.Now()))
}

func (h *AdminController) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return fail(c, "load statistics", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Statistics retrieved", stats)
}
