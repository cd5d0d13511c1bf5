package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medrez/residency-api/internal/pkg/metrics"
	"github.com/medrez/residency-api/internal/core/domain"
)

// RequireRole admits a request only when its claims carry exactly role.
// Roles are not hierarchical. Must run after Auth.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	msg := fmt.Sprintf("Access denied for %ss", role)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok || claims.Role != role {
				metrics.TokenRejectionsTotal.WithLabelValues("role").Inc()
				return echo.NewHTTPError(http.StatusForbidden, msg)
			}
			return next(c)
		}
	}
}
