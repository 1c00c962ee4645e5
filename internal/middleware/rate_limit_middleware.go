package middleware

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Allower decides whether another hit for key is permitted.
type Allower interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit throttles requests per client IP. A nil limiter disables the
// check. Limiter errors let the request through.
func RateLimit(limiter Allower, scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		key := scope + ":" + c.IP()
		ok, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			slog.WarnContext(c.UserContext(), "rate limiter unavailable, allowing request", "key", key, "error", err)
			return c.Next()
		}
		if !ok {
			slog.InfoContext(c.UserContext(), "rate limit exceeded", "key", key, "path", c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests",
				"error":   "rate limit exceeded for " + scope,
			})
		}
		return c.Next()
	}
}
