package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-platform/internal/api/dto"
	"github.com/spec-kit/commerce-platform/internal/client"
	"github.com/spec-kit/commerce-platform/internal/gateway"
)

// AuthHandler exposes the gateway's token issuance and registration
// delegation endpoints. These routes are exempt from the bearer filter; they
// are how tokens are obtained.
type AuthHandler struct {
	issuer gateway.TokenIssuer
	users  client.CredentialGateway
}

// NewAuthHandler constructs handler.
func NewAuthHandler(issuer gateway.TokenIssuer, users client.CredentialGateway) *AuthHandler {
	return &AuthHandler{issuer: issuer, users: users}
}

// IssueToken handles POST /auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	issued, err := h.issuer.IssueToken(c.UserContext(), req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}

	return c.JSON(dto.TokenResponse{
		Token:    issued.Token,
		Username: issued.Username,
		Role:     issued.Role,
		Type:     "Bearer",
	})
}

// Register handles POST /auth/register: the body is forwarded to the
// credential store and its status code and body propagate verbatim.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	status, body, err := h.users.Register(c.UserContext(), c.Body())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(status).Send(body)
}

// Health handles GET /auth/health.
func (h *AuthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "API Gateway is running",
		"service": "api-gateway",
	})
}
