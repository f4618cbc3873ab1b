package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-platform/internal/api/dto"
	"github.com/spec-kit/commerce-platform/internal/auth"
	"github.com/spec-kit/commerce-platform/internal/domain"
	"github.com/spec-kit/commerce-platform/internal/service"
	apperrors "github.com/spec-kit/commerce-platform/pkg/util"
)

// UsersHandler exposes the credential store endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Register handles POST /users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username, email, password required")
	}

	user, err := h.users.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(user)
}

// Validate handles POST /users/validate.
func (h *UsersHandler) Validate(c *fiber.Ctx) error {
	var req dto.ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.Validate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// Get handles GET /users/:username. A non-admin caller may only read their
// own record; the identity comes from the gateway-forwarded headers.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	username := c.Params("username")
	if identity, ok := auth.IdentityFromHeaders(c); ok {
		if identity.Role != domain.RoleAdmin && identity.Username != username {
			return apperrors.NewNotFound("user", map[string]any{"username": username})
		}
	}

	user, err := h.users.FindByUsername(c.UserContext(), username)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
