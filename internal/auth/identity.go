package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-platform/internal/domain"
)

// IdentityFromHeaders reads the gateway-forwarded identity on a backend
// service. Backends trust these headers; re-validating the token here would
// duplicate the gateway's trust boundary.
func IdentityFromHeaders(c *fiber.Ctx) (Identity, bool) {
	username := c.Get(HeaderUserName)
	if username == "" {
		return Identity{}, false
	}
	role := domain.Role(c.Get(HeaderUserRole))
	if !domain.ValidRole(role) {
		role = domain.RoleUser
	}
	return Identity{Username: username, Role: role}, true
}
