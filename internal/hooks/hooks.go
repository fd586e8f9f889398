package hooks

import (
	"context"
	"log/slog"
)

// RefundExecutor is the payment-provider side channel. The engine
// signals refunds after a transition has been committed; a failing
// executor never rolls the transition back.
type RefundExecutor interface {
	Refund(ctx context.Context, bookingID string, amount float64) error
}

// Notifier is the fire-and-forget notification side channel.
type Notifier interface {
	Notify(ctx context.Context, event, recipient, bookingID string) error
}

type LogRefundExecutor struct {
	Log *slog.Logger
}

func (e *LogRefundExecutor) Refund(_ context.Context, bookingID string, amount float64) error {
	e.Log.Info("refund requested",
		slog.String("booking_id", bookingID),
		slog.Float64("amount", amount),
	)
	return nil
}

type LogNotifier struct {
	Log *slog.Logger
}

func (n *LogNotifier) Notify(_ context.Context, event, recipient, bookingID string) error {
	n.Log.Info("notification dispatched",
		slog.String("event", event),
		slog.String("recipient", recipient),
		slog.String("booking_id", bookingID),
	)
	return nil
}
