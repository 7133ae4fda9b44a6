package ratelimit

import (
	xhttp "FinSignal/pkg/http"

	"github.com/labstack/echo/v4"
)

// Middleware rejects requests over the per-client budget with 429. Clients
// are keyed by scope and real IP so separate routes get separate budgets.
func Middleware(l *Limiter, scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l == nil || l.Allow(scope+":"+c.RealIP()) {
				return next(c)
			}
			c.Response().Header().Set("Retry-After", "1")
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
		}
	}
}
