package handler

import (
	"time"

	"github.com/medrez/residency-api/internal/core/domain"
)

// errorResponse documents the envelope rendered by api.NewHTTPErrorHandler.
type errorResponse struct {
	Message string `json:"message"`
}

type signupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
	Role     string `json:"role"     validate:"required,oneof=user admin"`
}

type authResponse struct {
	Token string             `json:"token,omitempty"`
	User  *domain.PublicUser `json:"user"`
}

type meResponse struct {
	ID        string      `json:"id"`
	Role      domain.Role `json:"role"`
	IssuedAt  time.Time   `json:"iat"`
	ExpiresAt time.Time   `json:"exp"`
}
