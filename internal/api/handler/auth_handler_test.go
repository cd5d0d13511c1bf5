package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medrez/residency-api/internal/core/domain"
	"github.com/medrez/residency-api/internal/core/ports"
)

type stubAuthService struct {
	signupFn     func(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error)
	loginFn      func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	createUserFn func(ctx context.Context, in ports.CreateUserInput) (*domain.PublicUser, error)
}

func (s *stubAuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	return s.signupFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.PublicUser, error) {
	return s.createUserFn(ctx, in)
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
			if in.Username != "alice" || in.Email != "a@x.io" || in.Password != "pw1" || in.Role != "" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				Token: "tok",
				User:  domain.PublicUser{ID: "u1", Username: "alice", Email: "a@x.io", Role: domain.RoleUser},
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/api/signup", `{"username":"alice","email":"a@x.io","password":"pw1"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "tok" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["id"] != "u1" || user["username"] != "alice" || user["email"] != "a@x.io" || user["role"] != "user" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("password must never be returned")
	}
	if len(user) != 4 {
		t.Fatalf("expected exactly id, username, email, role; got %+v", user)
	}
}

func TestAuthHandler_Signup_ServiceErrorPassesThrough(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/api/signup", `{"username":"alice","email":"a@x.io","password":"pw1"}`)
	if err := h.Signup(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Signup_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/api/signup", "not-json")
	if code := httpStatus(t, h.Signup(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	cases := map[string]string{
		"missing username": `{"email":"a@x.io","password":"pw1"}`,
		"short username":   `{"username":"al","email":"a@x.io","password":"pw1"}`,
		"bad email":        `{"username":"alice","email":"nope","password":"pw1"}`,
		"empty password":   `{"username":"alice","email":"a@x.io","password":""}`,
		"long password":    `{"username":"alice","email":"a@x.io","password":"` + strings.Repeat("p", 73) + `"}`,
		"multibyte 80B":    `{"username":"alice","email":"a@x.io","password":"` + strings.Repeat("é", 40) + `"}`,
	}
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newJSONContext(http.MethodPost, "/api/signup", body)
			if code := httpStatus(t, h.Signup(c)); code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", code)
			}
		})
	}
}

func TestAuthHandler_Signup_PasswordLimitCountsBytes(t *testing.T) {
	var got string
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
			got = in.Password
			return &ports.AuthResult{Token: "tok"}, nil
		},
	}
	h := NewAuthHandler(stub)

	// 36 two-byte runes is exactly 72 bytes.
	exact := strings.Repeat("é", 36)
	c, rec := newJSONContext(http.MethodPost, "/api/signup", `{"username":"alice","email":"a@x.io","password":"`+exact+`"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || got != exact {
		t.Fatalf("expected 72-byte password to pass, got %d", rec.Code)
	}

	c, _ = newJSONContext(http.MethodPost, "/api/signup", `{"username":"alice","email":"a@x.io","password":"`+exact+`x"}`)
	err := h.Signup(c)
	if code := httpStatus(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if !strings.Contains(err.Error(), "password must be at most 72 bytes") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "a@x.io" || password != "pw1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.AuthResult{
				Token: "tok",
				User:  domain.PublicUser{ID: "u1", Username: "alice", Email: "a@x.io", Role: domain.RoleAdmin},
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/api/login", `{"email":"a@x.io","password":"pw1"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Token string            `json:"token"`
		User  domain.PublicUser `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "tok" || resp.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/api/login", `{"email":"a@x.io","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/api/login", `{"email":"a@x.io"}`)
	err := h.Login(c)
	if code := httpStatus(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if !strings.Contains(err.Error(), "password is required") {
		t.Fatalf("expected field message, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	c, rec := newJSONContext(http.MethodGet, "/api/me", "")
	c.Set("claims", &domain.Claims{UserID: "u1", Role: domain.RoleUser, IssuedAt: now, ExpiresAt: now.Add(time.Hour)})

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "u1" || resp["role"] != "user" || resp["exp"] != "2024-01-01T13:00:00Z" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Me_WithoutClaims(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	c, _ := newJSONContext(http.MethodGet, "/api/me", "")
	if code := httpStatus(t, h.Me(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestUserHandler_Create(t *testing.T) {
	stub := &stubAuthService{
		createUserFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.PublicUser, error) {
			if in.Role != domain.RoleAdmin {
				t.Fatalf("expected admin role, got %q", in.Role)
			}
			return &domain.PublicUser{ID: "u2", Username: in.Username, Email: in.Email, Role: in.Role}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/api/admin/users", `{"username":"carol","email":"c@x.io","password":"pw1","role":"admin"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := resp["token"]; ok {
		t.Fatal("admin-created users must not receive a token in the response")
	}
	if user, _ := resp["user"].(map[string]any); user["role"] != "admin" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
}

func TestUserHandler_Create_RejectsUnknownRole(t *testing.T) {
	stub := &stubAuthService{
		createUserFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.PublicUser, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/api/admin/users", `{"username":"carol","email":"c@x.io","password":"pw1","role":"root"}`)
	if code := httpStatus(t, h.Create(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}
