package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medrez/residency-api/internal/pkg/metrics"
	"github.com/medrez/residency-api/internal/core/domain"
	"github.com/medrez/residency-api/internal/core/ports"
)

// claimsKey is the echo context key holding *domain.Claims.
const claimsKey = "claims"

// Auth validates the bearer token and injects its claims into both the echo
// context and the request context.
func Auth(verifier ports.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized, no token provided")
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "Token is invalid")
			}

			c.Set(claimsKey, claims)
			req := c.Request()
			c.SetRequest(req.WithContext(domain.ContextWithClaims(req.Context(), claims)))

			return next(c)
		}
	}
}

// ClaimsFrom returns the claims set by Auth.
func ClaimsFrom(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}
