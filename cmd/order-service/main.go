package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/commerce-platform/internal/api/http"
	"github.com/spec-kit/commerce-platform/internal/api/http/handlers"
	"github.com/spec-kit/commerce-platform/internal/client"
	"github.com/spec-kit/commerce-platform/internal/config"
	"github.com/spec-kit/commerce-platform/internal/events"
	"github.com/spec-kit/commerce-platform/internal/observability"
	"github.com/spec-kit/commerce-platform/internal/persistence"
	"github.com/spec-kit/commerce-platform/internal/repository"
	"github.com/spec-kit/commerce-platform/internal/service"
	"github.com/spec-kit/commerce-platform/internal/worker"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger, metrics)

	orderRepo := repository.NewOrderRepository(pg.PoolHandle())
	productClient := client.NewProductClient(cfg.Gateway.ProductServiceURL, cfg.Upstream.Timeout())

	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:      orderRepo,
		ProductGateway: productClient,
		Dispatcher:     dispatcher,
	}, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterOrderRoutes(app, httptransport.OrderRouteConfig{
		Health: handlers.NewHealthHandler("order-service", cfg.App.Version, pg, nil),
		Orders: handlers.NewOrdersHandler(orderService),
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
