package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Forwarded identity headers. The gateway is the sole trust boundary:
// backends trust these without re-validating the token.
const (
	HeaderUserName = "X-User-Name"
	HeaderUserRole = "X-User-Role"
)

const bearerPrefix = "Bearer "

// Middleware enforces bearer-token authentication at the gateway edge and
// injects the derived identity into the outgoing request metadata.
type Middleware struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewMiddleware constructs the gateway auth filter.
func NewMiddleware(tokens *TokenManager, logger *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, logger: logger}
}

// Handle rejects unauthenticated traffic before it reaches any backend.
// Rejections carry an empty 401 body. On success only the outgoing request
// metadata is mutated; client-supplied identity headers are discarded first
// so they cannot be spoofed past the gateway.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
		m.logger.Warn("missing or malformed authorization header", zap.String("path", c.Path()))
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	identity, err := m.tokens.Validate(strings.TrimPrefix(authHeader, bearerPrefix))
	if err != nil {
		m.logger.Warn("token rejected", zap.String("path", c.Path()), zap.Error(err))
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	c.Request().Header.Del(HeaderUserName)
	c.Request().Header.Del(HeaderUserRole)
	c.Request().Header.Set(HeaderUserName, identity.Username)
	c.Request().Header.Set(HeaderUserRole, string(identity.Role))

	m.logger.Debug("authenticated",
		zap.String("user", identity.Username),
		zap.String("role", string(identity.Role)),
	)
	return c.Next()
}
