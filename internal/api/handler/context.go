package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medrez/residency-api/internal/api/middleware"
	"github.com/medrez/residency-api/internal/core/domain"
)

// currentClaims returns the identity injected by middleware.Auth. A missing
// value means the route was mounted without Auth, which is reported as 401.
func currentClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
