package middleware

import (
	"time"

	"healthcare-booking/logger"
	"healthcare-booking/utils"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger queues a sanitized copy of every request and response on the async logger.
// Handler errors are rendered first so the logged status matches what the client receives.
func RequestLogger(async *logger.AsyncLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		async.Log(utils.CreateSanitizedLogEntry(c, started, CurrentAccountID(c)))
		return nil
	}
}
