package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/LDK/javascriv-api/internal/auth"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRetryAfter         = "Retry-After"
	msgRateLimitExceeded     = "rate limit exceeded"
)

// RateLimiter implements token bucket rate limiting per caller. Authenticated
// callers are keyed by user id, everyone else by client IP.
type RateLimiter struct {
	limiters sync.Map // key -> *rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	return limiter.(*rate.Limiter)
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter(callerKey(c))
			limit := strconv.Itoa(rl.burst)

			if !limiter.Allow() {
				c.Response().Header().Set(headerRateLimitLimit, limit)
				c.Response().Header().Set(headerRateLimitRemaining, "0")
				c.Response().Header().Set(headerRetryAfter, "1")

				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": msgRateLimitExceeded,
				})
			}

			c.Response().Header().Set(headerRateLimitLimit, limit)
			c.Response().Header().Set(headerRateLimitRemaining, strconv.Itoa(int(limiter.Tokens())))

			return next(c)
		}
	}
}

func callerKey(c echo.Context) string {
	if userID, err := auth.GetUserID(c); err == nil {
		return "user:" + strconv.FormatInt(userID, 10)
	}
	return "ip:" + c.RealIP()
}

// NewStrictRateLimiter guards credential endpoints.
func NewStrictRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond, burst = 5, 10
	}
	return NewRateLimiter(requestsPerSecond, burst)
}

// NewGlobalRateLimiter is the lenient limiter applied to every route.
func NewGlobalRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond, burst = 100, 200
	}
	return NewRateLimiter(requestsPerSecond, burst)
}
