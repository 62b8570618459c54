package auth

import (
	"errors"
	"time"

	"healthcare-booking/logger"
	"healthcare-booking/middleware"
	"healthcare-booking/models/account"
	"healthcare-booking/resource"
	"healthcare-booking/services/accounts"
	authService "healthcare-booking/services/auth"
	"healthcare-booking/types"
	authTypes "healthcare-booking/types/auth"
	"healthcare-booking/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	service       *authService.Service
	secureCookies bool
}

func NewAuthController(service *authService.Service, secureCookies bool) *AuthController {
	return &AuthController{service: service, secureCookies: secureCookies}
}

// setSessionCookie mirrors the bearer token into an http-only cookie; a zero expiry clears it.
func (h *AuthController) setSessionCookie(c *fiber.Ctx, value string, expires time.Time) {
	cookie := &fiber.Cookie{
		Name:     middleware.AccessCookie,
		Value:    value,
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: "Strict",
		Path:     "/",
	}
	if expires.IsZero() {
		cookie.Expires = time.Unix(0, 0)
		cookie.MaxAge = -1
	} else {
		cookie.Expires = expires
	}
	c.Cookie(cookie)
}

func (h *AuthController) sendSession(c *fiber.Ctx, status int, message string, session *authService.Session) error {
	h.setSessionCookie(c, session.Token, session.ExpiresAt)
	return c.Status(status).JSON(types.ApiResponse{
		Message: message,
		Status:  status,
		Token:   session.Token,
		Data: authTypes.SessionResponse{
			User:      session.Account,
			ExpiresAt: session.ExpiresAt,
		},
	})
}

func (h *AuthController) Register(c *fiber.Ctx) error {
	var req authTypes.RegisterRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := h.service.Register(c.UserContext(), req)
	switch {
	case err == nil:
	case errors.Is(err, accounts.ErrEmailTaken), errors.Is(err, account.ErrInvalidProfile):
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	default:
		return utils.RespondServerError(c, "Failed to register account", err)
	}
	return h.sendSession(c, fiber.StatusCreated, "Registration successful", session)
}

func (h *AuthController) Login(c *fiber.Ctx) error {
	var req authTypes.LoginRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		var locked *authService.LockedError
		switch {
		case errors.As(err, &locked):
			return utils.RespondError(c, fiber.StatusForbidden, locked.Error())
		case errors.Is(err, authService.ErrAccountSuspended):
			return utils.RespondError(c, fiber.StatusUnauthorized, "Your account has been suspended. Please contact support.")
		case errors.Is(err, authService.ErrInvalidCredentials):
			return utils.RespondError(c, fiber.StatusUnauthorized, "Invalid credentials")
		default:
			return utils.RespondServerError(c, "Failed to log in", err)
		}
	}

	logger.Success("Account " + session.Account.Email + " logged in")
	return h.sendSession(c, fiber.StatusOK, "Login successful", session)
}

func (h *AuthController) VerifyEmail(c *fiber.Ctx) error {
	var req authTypes.VerifyEmailRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.VerifyEmail(c.UserContext(), req.Token); err != nil {
		if errors.Is(err, authService.ErrInvalidVerifyToken) {
			return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
		}
		return utils.RespondServerError(c, "Failed to verify email", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Email verified", nil)
}

func (h *AuthController) Me(c *fiber.Ctx) error {
	acct, err := h.service.Me(c.UserContext(), middleware.CurrentAccount(c).ID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return utils.RespondError(c, fiber.StatusNotFound, "User not found")
		}
		return utils.RespondServerError(c, "Failed to load account", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Account retrieved", resource.Account(acct, time.Now()))
}

func (h *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req authTypes.ForgotPasswordRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.ForgotPassword(c.UserContext(), req.Email); err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return utils.RespondError(c, fiber.StatusNotFound, "There is no user with that email")
		}
		return utils.RespondServerError(c, "Failed to start password reset", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Password reset instructions have been sent", nil)
}

func (h *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req authTypes.ResetPasswordRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		if errors.Is(err, authService.ErrInvalidResetToken) {
			return utils.RespondError(c, fiber.StatusBadRequest, "Invalid or expired token")
		}
		return utils.RespondServerError(c, "Failed to reset password", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Password reset successful", nil)
}

func (h *AuthController) ChangePassword(c *fiber.Ctx) error {
	var req authTypes.ChangePasswordRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return utils.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	err := h.service.ChangePassword(c.UserContext(), middleware.CurrentAccount(c).ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, authService.ErrWrongPassword) {
			return utils.RespondError(c, fiber.StatusUnauthorized, "Current password is incorrect")
		}
		return utils.RespondServerError(c, "Failed to change password", err)
	}
	return utils.Respond(c, fiber.StatusOK, "Password updated successfully", nil)
}

func (h *AuthController) Logout(c *fiber.Ctx) error {
	h.setSessionCookie(c, "", time.Time{})
	return utils.Respond(c, fiber.StatusOK, "Logged out successfully", nil)
}
