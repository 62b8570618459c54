package user

import (
	"errors"
	"time"

	"healthcare-booking/middleware"
	"healthcare-booking/resource"
	"healthcare-booking/services/accounts"
	authService "healthcare-booking/services/auth"
	"healthcare-booking/services/storage"
	userService "healthcare-booking/services/user"
	userTypes "healthcare-booking/types/user"
	"healthcare-booking/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	service *userService.Service
}

func NewUserController(service *userService.Service) *UserController {
	return &UserController{service: service}
}

// failUpload maps storage errors shared by every image upload.
func failUpload(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrDisabled):
		return utils.RespondError(c, fiber.StatusServiceUnavailable, "File uploads are not available")
	default:
		return utils.RespondServerError(c, "Failed to upload image", err)
	}
}

func (h *UserController) UpdateProfile(c *fiber.Ctx) error {
	var req userTypes.UpdateProfileRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	acct, err := h.service.UpdateProfile(c.UserContext(), middleware.CurrentAccount(c).ID, req)
	if err != nil {
		return utils.RespondServerError(c, "Failed to update profile", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Profile updated successfully", resource.Account(acct, time.Now()))
}

func (h *UserController) UploadProfilePicture(c *fiber.Ctx) error {
	file, contentType, err := utils.FormImage(c, "image")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	defer file.Close()

	acct, err := h.service.UploadProfilePicture(c.UserContext(), middleware.CurrentAccount(c).ID, contentType, file)
	if err != nil {
		return failUpload(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, "Profile picture updated", fiber.Map{"profile_picture": acct.ProfilePicture})
}

func (h *UserController) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), middleware.CurrentAccount(c).ID)
	if err != nil {
		return utils.RespondServerError(c, "Failed to load statistics", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Statistics retrieved", stats)
}

func (h *UserController) Delete(c *fiber.Ctx) error {
	var req userTypes.DeleteAccountRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	err := h.service.Delete(c.UserContext(), middleware.CurrentAccount(c).ID, req.Password)
	switch {
	case err == nil:
		return utils.Respond(c, fiber.StatusOK, "Account deleted successfully", nil)
	case errors.Is(err, authService.ErrWrongPassword):
		return utils.RespondError(c, fiber.StatusUnauthorized, "Password is incorrect")
	case errors.Is(err, accounts.ErrNotFound):
		return utils.RespondError(c, fiber.StatusNotFound, "User not found")
	default:
		return utils.RespondServerError(c, "Failed to delete account", err)
	}
}
