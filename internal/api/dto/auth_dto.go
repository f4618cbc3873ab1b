package dto

import "github.com/spec-kit/commerce-platform/internal/domain"

// TokenRequest is the body of POST /auth/token. Role is honored only by the
// local issuance variant.
type TokenRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role,omitempty"`
}

// TokenResponse is the successful issuance payload.
type TokenResponse struct {
	Token    string      `json:"token"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	Type     string      `json:"type"`
}

// RegisterRequest is the body of POST /users/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateRequest is the body of POST /users/validate.
type ValidateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
