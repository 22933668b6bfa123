package middleware

import (
	"github.com/labstack/echo/v4"
)

// apiContentSecurityPolicy forbids loading or framing anything from JSON responses
const apiContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

// APISecurityHeaders sets the CSP and caching headers for JSON endpoints
func APISecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Content-Security-Policy", apiContentSecurityPolicy)
			h.Set("Cache-Control", "no-store")
			return next(c)
		}
	}
}
