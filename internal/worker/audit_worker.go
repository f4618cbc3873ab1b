package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-platform/internal/events"
	"github.com/spec-kit/commerce-platform/internal/observability"
)

// StartAuditWorker subscribes the audit handlers that keep a structured
// trail of order events. Failed best-effort decrements land here so the
// order/stock gap is observable instead of silent.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}

	dispatcher.Subscribe(events.EventOrderCreated, func(_ context.Context, event events.Event) error {
		logger.Info("audit: order created",
			zap.String("order_id", event.OrderID),
			zap.Any("payload", event.Payload),
		)
		return nil
	})

	dispatcher.Subscribe(events.EventOrderStatusChanged, func(_ context.Context, event events.Event) error {
		logger.Info("audit: order status changed",
			zap.String("order_id", event.OrderID),
			zap.Any("payload", event.Payload),
		)
		return nil
	})

	dispatcher.Subscribe(events.EventStockDecrementFailed, func(_ context.Context, event events.Event) error {
		logger.Warn("audit: stock decrement failed",
			zap.String("order_id", event.OrderID),
			zap.Any("payload", event.Payload),
		)
		metrics.RecordError("/orders", "POST", "STOCK_DECREMENT_FAILED")
		return nil
	})
}
