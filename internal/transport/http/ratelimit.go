package http

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/AlexandreFrancony/Bartending-Back/internal/ratelimit"
	"github.com/AlexandreFrancony/Bartending-Back/internal/util"
)

const (
	headerRateLimitLimit     = "RateLimit-Limit"
	headerRateLimitRemaining = "RateLimit-Remaining"
	headerRateLimitReset     = "RateLimit-Reset"
)

// RateLimits holds one middleware per policy.
type RateLimits struct {
	Auth      echo.MiddlewareFunc
	General   echo.MiddlewareFunc
	Sensitive echo.MiddlewareFunc
}

// NewRateLimits builds the three policies over a shared store.
func NewRateLimits(store ratelimit.Store, logger *slog.Logger) RateLimits {
	return RateLimits{
		Auth:      RateLimit(ratelimit.New(ratelimit.AuthPolicy, store), logger),
		General:   RateLimit(ratelimit.New(ratelimit.GeneralPolicy, store), logger),
		Sensitive: RateLimit(ratelimit.New(ratelimit.SensitivePolicy, store), logger),
	}
}

// RateLimit counts requests per client address. Store failures let the
// request through.
func RateLimit(limiter *ratelimit.Limiter, logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	policy := limiter.Policy()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := c.RealIP()

			res, err := limiter.Hit(ctx, key)
			if err != nil {
				logger.WarnContext(ctx, "rate limit store unavailable", "policy", policy.Name, "error", err)
			}

			resetIn := secondsUntil(res.ResetAt)
			header := c.Response().Header()
			header.Set(headerRateLimitLimit, strconv.Itoa(res.Limit))
			header.Set(headerRateLimitRemaining, strconv.Itoa(res.Remaining))
			header.Set(headerRateLimitReset, strconv.Itoa(resetIn))

			if !res.Allowed {
				header.Set(echo.HeaderRetryAfter, strconv.Itoa(resetIn))
				logger.InfoContext(ctx, "rate limit exceeded", "policy", policy.Name, "path", c.Path())
				return c.JSON(http.StatusTooManyRequests, util.Error(policy.Message))
			}

			handlerErr := next(c)
			if policy.SkipSuccessful && err == nil && responseStatus(c, handlerErr) < http.StatusBadRequest {
				if undoErr := limiter.Undo(ctx, key); undoErr != nil {
					logger.WarnContext(ctx, "rate limit undo failed", "policy", policy.Name, "error", undoErr)
				}
			}
			return handlerErr
		}
	}
}

func responseStatus(c echo.Context, handlerErr error) int {
	if c.Response().Committed {
		return c.Response().Status
	}
	if handlerErr == nil {
		return http.StatusOK
	}
	var httpErr *echo.HTTPError
	if errors.As(handlerErr, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}

func secondsUntil(t time.Time) int {
	seconds := math.Ceil(time.Until(t).Seconds())
	if seconds < 0 {
		return 0
	}
	return int(seconds)
}
