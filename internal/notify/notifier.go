package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/metrics"
)

// Sender publishes an event on some transport.
type Sender interface {
	Name() string
	Send(ctx context.Context, event Event) error
	Close() error
}

// Notifier turns order lifecycle moments into events and hands them to a
// Sender.
type Notifier struct {
	sender Sender
	logger *zap.Logger
	now    func() time.Time
}

func NewNotifier(sender Sender, logger *zap.Logger) *Notifier {
	if sender == nil {
		sender = NewLogSender(logger)
	}
	return &Notifier{sender: sender, logger: logging.OrNop(logger).Named("notify"), now: time.Now}
}

// OrderPlaced tells staff about a new order.
func (n *Notifier) OrderPlaced(ctx context.Context, order domain.Order, items []domain.OrderItem) error {
	return n.send(ctx, Event{
		Kind:    KindOrderPlaced,
		OrderID: order.ID,
		Payload: BuildOrderPlaced(order, items, n.now()),
	})
}

// StatusChanged records an admin status transition.
func (n *Notifier) StatusChanged(ctx context.Context, order domain.Order, status string) error {
	return n.send(ctx, Event{
		Kind:    KindStatusChanged,
		OrderID: order.ID,
		Payload: BuildStatusChanged(order, status, n.now()),
	})
}

func (n *Notifier) Close() error {
	return n.sender.Close()
}

func (n *Notifier) send(ctx context.Context, event Event) error {
	if err := n.sender.Send(ctx, event); err != nil {
		metrics.NotificationsTotal.WithLabelValues(n.sender.Name(), "error").Inc()
		n.logger.Warn("send notification",
			zap.String("transport", n.sender.Name()),
			zap.String("kind", event.Kind),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
		return err
	}
	metrics.NotificationsTotal.WithLabelValues(n.sender.Name(), "ok").Inc()
	n.logger.Info("notification sent",
		zap.String("transport", n.sender.Name()),
		zap.String("kind", event.Kind),
		zap.String("order_id", event.OrderID),
	)
	return nil
}

// LogSender only logs events. Used when no transport is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logging.OrNop(logger).Named("notify")}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(_ context.Context, event Event) error {
	s.logger.Warn("notification transport not configured, skipping",
		zap.String("kind", event.Kind),
		zap.String("order_id", event.OrderID),
	)
	return nil
}

func (s *LogSender) Close() error { return nil }
