package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/commerce-platform/internal/api/http"
	"github.com/spec-kit/commerce-platform/internal/api/http/handlers"
	"github.com/spec-kit/commerce-platform/internal/auth"
	"github.com/spec-kit/commerce-platform/internal/client"
	"github.com/spec-kit/commerce-platform/internal/config"
	"github.com/spec-kit/commerce-platform/internal/gateway"
	"github.com/spec-kit/commerce-platform/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	userClient := client.NewUserClient(cfg.Gateway.UserServiceURL, cfg.Upstream.Timeout())
	issuer := gateway.NewTokenIssuer(cfg.Gateway.IssuerMode, tokens, userClient, logger)
	authMiddleware := auth.NewMiddleware(tokens, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterGatewayRoutes(app, httptransport.GatewayRouteConfig{
		Health:         handlers.NewHealthHandler("api-gateway", cfg.App.Version, nil, nil),
		Auth:           handlers.NewAuthHandler(issuer, userClient),
		AuthMiddleware: authMiddleware,
		Targets:        cfg.Gateway,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
