package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"salon-service/internal/models"
	"salon-service/pkg/response"
	"salon-service/pkg/sl"
)

const expiredReason = "No response within time limit"

// expireIfOverdue applies the auto-decline rule to a loaded booking.
// Both locks must be held. Reports whether the booking expired.
func (e *Engine) expireIfOverdue(ctx context.Context, b *models.Booking) (bool, error) {
	if b.Status != models.BookingPending || b.ConfirmationDeadline == nil {
		return false, nil
	}
	if !e.clock.Now().After(*b.ConfirmationDeadline) {
		return false, nil
	}

	return true, e.expireLocked(ctx, b)
}

func (e *Engine) expireLocked(ctx context.Context, b *models.Booking) error {
	const op = "workflow.expireLocked"

	oldSlot := slotFor(b)
	day := e.dayKey(b.StartTime)

	b.Status = models.BookingExpired
	b.RefundAmount = e.refundFor(b, models.ActorSystem)
	b.CalendarSlotStatus = ""
	b.TempHoldExpiresAt = nil

	e.appendHistory(b, models.StatusHistoryEntry{
		Status:    models.BookingExpired,
		ActorType: models.ActorSystem,
		Reason:    expiredReason,
	})

	if err := e.store.DeleteSlot(ctx, b.MasterID, day, b.ID); err != nil {
		return err
	}
	if err := e.store.RemoveSalonPending(ctx, b.SalonID, b.ID); err != nil {
		e.undo(op,
			func() error { return e.restoreSlot(ctx, b, day, oldSlot) },
		)
		return err
	}
	if err := e.store.SaveBooking(ctx, b); err != nil {
		e.undo(op,
			func() error { return e.restoreSlot(ctx, b, day, oldSlot) },
			func() error { return e.store.AppendSalonPending(ctx, b.SalonID, b.ID) },
		)
		return err
	}

	e.signalRefund(ctx, b)
	e.notify(ctx, "booking_expired", b.ClientID, b.ID)

	return nil
}

// releaseStaleHold drops the slot entry of a pending booking whose temp
// hold has lapsed. The booking itself stays pending until its
// confirmation deadline; only the calendar reservation is released.
func (e *Engine) releaseStaleHold(ctx context.Context, b *models.Booking) error {
	if b.Status != models.BookingPending || b.TempHoldExpiresAt == nil {
		return nil
	}
	if !e.clock.Now().After(*b.TempHoldExpiresAt) {
		return nil
	}

	oldSlot := slotFor(b)
	day := e.dayKey(b.StartTime)

	b.CalendarSlotStatus = ""
	b.TempHoldExpiresAt = nil
	b.UpdatedAt = e.clock.Now()

	if err := e.store.DeleteSlot(ctx, b.MasterID, day, b.ID); err != nil {
		return err
	}
	if err := e.store.SaveBooking(ctx, b); err != nil {
		e.undo("workflow.releaseStaleHold",
			func() error { return e.restoreSlot(ctx, b, day, oldSlot) },
		)
		return err
	}

	return nil
}

// SweepExpired walks the pending index once, expires every booking
// whose confirmation deadline has passed and releases stale holds.
// Reads already expire lazily; the sweep keeps the indexes tidy when
// nobody is reading.
func (e *Engine) SweepExpired(ctx context.Context) error {
	const op = "workflow.SweepExpired"

	ids, err := e.store.ListPendingBookings(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, id := range ids {
		err := e.withBooking(ctx, id, func(b *models.Booking) error {
			expired, err := e.expireIfOverdue(ctx, b)
			if err != nil || expired {
				return err
			}
			return e.releaseStaleHold(ctx, b)
		})
		if err != nil {
			// A held lock or an already-removed record just means
			// another caller got there first.
			if errors.Is(err, response.ErrLocked) || errors.Is(err, response.ErrNotFound) {
				continue
			}
			e.log.Error("sweep failed for booking", slog.String("booking_id", id), sl.Err(err))
		}
	}

	return nil
}

// Sweeper periodically runs the auto-decline sweep until its context
// is cancelled.
type Sweeper struct {
	log      *slog.Logger
	engine   *Engine
	interval time.Duration
}

func NewSweeper(log *slog.Logger, engine *Engine, interval time.Duration) *Sweeper {
	return &Sweeper{log: log, engine: engine, interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("auto-decline sweeper started", slog.String("interval", s.interval.String()))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("auto-decline sweeper stopped")
			return
		case <-ticker.C:
			if err := s.engine.SweepExpired(ctx); err != nil {
				s.log.Error("sweep iteration failed", sl.Err(err))
			}
		}
	}
}
