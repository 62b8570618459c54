package middleware

import (
	"healthcare-booking/constants"
	"healthcare-booking/types"

	"github.com/gofiber/fiber/v2"
)

// Authorize allows the request when the session account holds one of roles. It must run after
// Session.Authenticate. constants.RoleAny admits every authenticated account.
func Authorize(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		acct := CurrentAccount(c)
		if acct == nil {
			return unauthorized(c, "Not authorized")
		}
		if HasRole(c, roles...) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Message: "User role " + string(acct.Role) + " is not authorized to access this route",
			Status:  fiber.StatusForbidden,
		})
	}
}

// HasRole checks the session account's role within a controller.
func HasRole(c *fiber.Ctx, roles ...string) bool {
	acct := CurrentAccount(c)
	if acct == nil {
		return false
	}
	for _, role := range roles {
		if role == constants.RoleAny || role == string(acct.Role) {
			return true
		}
	}
	return false
}
