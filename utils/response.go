package utils

import (
	"fmt"
	"strconv"

	"healthcare-booking/logger"
	"healthcare-booking/types"

	"github.com/gofiber/fiber/v2"
)

// Validator is implemented by every request DTO.
type Validator interface {
	Validate() error
}

// BindJSON parses the body into req and validates it. The returned error is safe to show to the client.
func BindJSON(c *fiber.Ctx, req Validator) error {
	if err := c.BodyParser(req); err != nil {
		return fmt.Errorf("error parsing request body: %v", err)
	}
	return req.Validate()
}

// BindQuery parses the query string into q and validates it.
func BindQuery(c *fiber.Ctx, q Validator) error {
	if err := c.QueryParser(q); err != nil {
		return fmt.Errorf("invalid query parameters: %v", err)
	}
	return q.Validate()
}

// ParamID reads a positive integer route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}

func Respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(types.ApiResponse{
		Message: message,
		Status:  status,
		Data:    data,
	})
}

func RespondPage(c *fiber.Ctx, message string, data interface{}, pagination *types.Pagination) error {
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message:    message,
		Status:     fiber.StatusOK,
		Data:       data,
		Pagination: pagination,
	})
}

func RespondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(types.ApiResponse{
		Message: message,
		Status:  status,
	})
}

// RespondServerError logs err and answers with a generic 500.
func RespondServerError(c *fiber.Ctx, message string, err error) error {
	logger.Error(message, err)
	return RespondError(c, fiber.StatusInternalServerError, "Internal server error")
}
