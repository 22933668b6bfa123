package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the configuration for rate limiting
type RateLimitConfig struct {
	// Requests is the maximum number of requests allowed within the window
	Requests int
	// Window is the time window for rate limiting
	Window time.Duration
	// KeyFunc returns a unique key for rate limiting (defaults to IP)
	KeyFunc func(c echo.Context) string
	// Message is the error message returned when rate limit is exceeded
	Message string
}

// visitor tracks a token bucket and when its key was last seen
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token bucket limiter
type RateLimiter struct {
	config   RateLimitConfig
	visitors map[string]*visitor
	mu       sync.Mutex
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.Message == "" {
		config.Message = "Too many requests. Please try again later."
	}

	return &RateLimiter{
		config:   config,
		visitors: make(map[string]*visitor),
	}
}

// PublicFormRateLimiter limits contact form submissions per IP
func PublicFormRateLimiter(requests int, window time.Duration) *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Requests: requests,
		Window:   window,
		Message:  "Too many form submissions. Please wait before trying again.",
	})
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		perRequest := rl.config.Window / time.Duration(rl.config.Requests)
		if perRequest <= 0 {
			perRequest = time.Second
		}
		v = &visitor{limiter: rate.NewLimiter(rate.Every(perRequest), rl.config.Requests)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// Middleware returns the rate limiting middleware. A non-positive limit disables it.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rl.config.Requests <= 0 || rl.config.Window <= 0 {
				return next(c)
			}

			if !rl.allow(rl.config.KeyFunc(c)) {
				c.Response().Header().Set("Retry-After", retryAfterSeconds(rl.config))
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": rl.config.Message,
				})
			}
			return next(c)
		}
	}
}

// Run evicts idle visitors every interval until ctx is cancelled
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup(time.Now())
		}
	}
}

// cleanup drops visitors idle for longer than the window
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.config.Window {
			delete(rl.visitors, key)
		}
	}
}

func retryAfterSeconds(cfg RateLimitConfig) string {
	perRequest := cfg.Window / time.Duration(max(cfg.Requests, 1))
	secs := int(perRequest.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
