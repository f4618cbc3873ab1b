package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"

	"github.com/spec-kit/commerce-platform/internal/api/http/handlers"
	"github.com/spec-kit/commerce-platform/internal/auth"
	"github.com/spec-kit/commerce-platform/internal/config"
	apperrors "github.com/spec-kit/commerce-platform/pkg/util"
)

// GatewayRouteConfig bundles dependencies for gateway route registration.
type GatewayRouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.Middleware
	Targets        config.GatewayConfig
}

// RegisterGatewayRoutes wires the edge: issuance and health stay open, every
// backend route sits behind the bearer filter and is proxied with the
// injected identity headers.
func RegisterGatewayRoutes(app *fiber.App, cfg GatewayRouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/token", cfg.Auth.IssueToken)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Get("/health", cfg.Auth.Health)

	app.Use("/products", cfg.AuthMiddleware.Handle, forwardTo(cfg.Targets.ProductServiceURL))
	app.Use("/orders", cfg.AuthMiddleware.Handle, forwardTo(cfg.Targets.OrderServiceURL))
	app.Use("/users", cfg.AuthMiddleware.Handle, forwardTo(cfg.Targets.UserServiceURL))
}

func forwardTo(baseURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := proxy.Do(c, baseURL+c.OriginalURL()); err != nil {
			return apperrors.NewUpstreamUnavailable("backend service", err)
		}
		c.Response().Header.Del(fiber.HeaderServer)
		return nil
	}
}

// ProductRouteConfig bundles dependencies for the product service.
type ProductRouteConfig struct {
	Health   *handlers.HealthHandler
	Products *handlers.ProductsHandler
}

// RegisterProductRoutes wires the product service HTTP surface.
func RegisterProductRoutes(app *fiber.App, cfg ProductRouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	products := app.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/in-stock", cfg.Products.ListInStock)
	products.Get("/search", cfg.Products.Search)
	products.Get("/:id", cfg.Products.Get)
	products.Post("/", cfg.Products.Create)
	products.Put("/:id", cfg.Products.Update)
	products.Delete("/:id", cfg.Products.Delete)
	products.Patch("/:id/stock", cfg.Products.DecreaseStock)
}

// OrderRouteConfig bundles dependencies for the order service.
type OrderRouteConfig struct {
	Health *handlers.HealthHandler
	Orders *handlers.OrdersHandler
}

// RegisterOrderRoutes wires the order service HTTP surface.
func RegisterOrderRoutes(app *fiber.App, cfg OrderRouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	orders := app.Group("/orders")
	orders.Post("/", cfg.Orders.Create)
	orders.Get("/", cfg.Orders.List)
	orders.Get("/status/:status", cfg.Orders.ListByStatus)
	orders.Get("/:id", cfg.Orders.Get)
	orders.Patch("/:id/status", cfg.Orders.UpdateStatus)
}

// UserRouteConfig bundles dependencies for the user service.
type UserRouteConfig struct {
	Health *handlers.HealthHandler
	Users  *handlers.UsersHandler
}

// RegisterUserRoutes wires the user service HTTP surface.
func RegisterUserRoutes(app *fiber.App, cfg UserRouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	users := app.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Post("/validate", cfg.Users.Validate)
	users.Get("/:username", cfg.Users.Get)
}
