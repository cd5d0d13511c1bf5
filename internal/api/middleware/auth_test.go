package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/medrez/residency-api/internal/core/domain"
	"github.com/medrez/residency-api/internal/infrastructure/token"
)

func newTestIssuer(t *testing.T) *token.JWTIssuer {
	t.Helper()
	i, err := token.NewJWTIssuer("secret")
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	return i
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(newTestIssuer(t))(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	signed, err := newTestIssuer(t).Issue("user-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(newTestIssuer(t))(func(c echo.Context) error {
		called = true
		claims, ok := ClaimsFrom(c)
		if !ok || claims.UserID != "user-1" || claims.Role != domain.RoleAdmin {
			t.Fatalf("claims not set: %+v", claims)
		}
		ctxClaims, ok := domain.ClaimsFromContext(c.Request().Context())
		if !ok || ctxClaims.UserID != "user-1" {
			t.Fatalf("claims not on request context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec, called := runAuth(t, "")
	if called {
		t.Fatalf("should not reach next")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["message"] != "Unauthorized, no token provided" {
		t.Fatalf("unexpected message: %q", body["message"])
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, h := range []string{"Token abc", "Basic dXNlcjpwYXNz", "Bearer", "Bearer   "} {
		rec, called := runAuth(t, h)
		if called {
			t.Fatalf("%q: should not reach next", h)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", h, rec.Code)
		}
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	rec, called := runAuth(t, "Bearer not-a-token")
	if called {
		t.Fatalf("should not reach next")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ForgedToken(t *testing.T) {
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   "user-1",
		"role": "admin",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := forged.SignedString([]byte("attacker-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	rec, called := runAuth(t, "Bearer "+signed)
	if called {
		t.Fatalf("should not reach next")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	past := func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := token.NewJWTIssuer("secret", token.WithClock(past))
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	signed, err := old.Issue("user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, _ := runAuth(t, "Bearer "+signed)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	signed, err := newTestIssuer(t).Issue("user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, called := runAuth(t, "bearer "+signed)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected lower-case scheme to pass, got %d", rec.Code)
	}
}
