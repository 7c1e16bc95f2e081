package middleware

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"vtelltales/internal/models"
	"vtelltales/internal/observability"
)

// RateLimitPolicy controls behavior when Redis is unavailable.
type RateLimitPolicy int

const (
	// FailOpen allows requests when Redis is down (availability over strictness).
	FailOpen RateLimitPolicy = iota
	// FailClosed denies requests when Redis is down (strictness over availability).
	FailClosed
)

// CheckRateLimit checks if the client has exceeded the rate limit.
// Returns true if the request is allowed, false otherwise.
func CheckRateLimit(c *fiber.Ctx, rdb *redis.Client, limit int, window time.Duration) (bool, error) {
	ctx := c.UserContext()
	key := fmt.Sprintf("ratelimit:%s:%s", c.IP(), c.Path())

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(limit), nil
}

// RateLimit returns a middleware that limits requests per IP per path,
// failing open if Redis is unreachable.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen)
}

// RateLimitWithPolicy returns a rate limiting middleware with an explicit
// failure policy for Redis outages.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy RateLimitPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Rate limiting is a production concern; skip it in local and test runs.
		env := os.Getenv("APP_ENV")
		if env == "test" || env == "development" || env == "" {
			return c.Next()
		}
		if rdb == nil {
			if policy == FailClosed {
				return models.RespondWithError(c, fiber.StatusServiceUnavailable,
					models.NewInternalError(fmt.Errorf("rate limiter unavailable")))
			}
			return c.Next()
		}

		allowed, err := CheckRateLimit(c, rdb, limit, window)
		if err != nil {
			observability.RedisErrors.WithLabelValues("ratelimit").Inc()
			Logger.WarnContext(c.UserContext(), "rate limit check failed", "error", err)
			if policy == FailClosed {
				return models.RespondWithError(c, fiber.StatusServiceUnavailable,
					models.NewInternalError(err))
			}
			return c.Next()
		}

		if !allowed {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				&models.AppError{Code: "RATE_LIMITED", Message: "too many requests, slow down"})
		}

		return c.Next()
	}
}
