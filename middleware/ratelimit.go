package middleware

import (
	"fmt"
	"math"
	"strconv"

	"healthcare-booking/logger"
	"healthcare-booking/services/ratelimit"
	"healthcare-booking/types"

	"github.com/gofiber/fiber/v2"
)

// RateLimit admits at most the limiter's quota of requests per client IP. A failing counter store
// lets the request through.
func RateLimit(limiter *ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision, err := limiter.Allow(c.UserContext(), c.IP())
		if err != nil {
			logger.Error(fmt.Sprintf("Rate limiter %s unavailable", limiter.Name()), err)
			return c.Next()
		}
		if !decision.Allowed {
			return tooManyRequests(c, decision)
		}
		c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		return c.Next()
	}
}

// RateLimitFailures spends quota only on requests answered with a client error, so successful
// sign-ins from a shared address are never throttled.
func RateLimitFailures(limiter *ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision, err := limiter.Check(c.UserContext(), c.IP())
		if err != nil {
			logger.Error(fmt.Sprintf("Rate limiter %s unavailable", limiter.Name()), err)
			return c.Next()
		}
		if !decision.Allowed {
			return tooManyRequests(c, decision)
		}
		if err := c.Next(); err != nil {
			return err
		}
		if status := c.Response().StatusCode(); status >= fiber.StatusBadRequest && status < fiber.StatusInternalServerError {
			if _, err := limiter.Allow(c.UserContext(), c.IP()); err != nil {
				logger.Error(fmt.Sprintf("Failed to count attempt for rate limiter %s", limiter.Name()), err)
			}
		}
		return nil
	}
}

func tooManyRequests(c *fiber.Ctx, decision ratelimit.Decision) error {
	retry := int(math.Ceil(decision.RetryAfter.Seconds()))
	if retry < 1 {
		retry = 1
	}
	c.Set("X-RateLimit-Remaining", "0")
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
	return c.Status(fiber.StatusTooManyRequests).JSON(types.ApiResponse{
		Message: fmt.Sprintf("Too many attempts, please try again in %d minutes", int(math.Ceil(float64(retry)/60))),
		Status:  fiber.StatusTooManyRequests,
	})
}
