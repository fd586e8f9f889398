package workflow

import (
	"context"
	"fmt"

	"salon-service/api"
	"salon-service/internal/models"
	"salon-service/pkg/response"
)

// ConfirmBooking moves a pending booking to confirmed and promotes its
// temp_hold slot. The confirmed slot never auto-expires.
func (e *Engine) ConfirmBooking(ctx context.Context, id string, req *api.ConfirmBookingRequest) (*api.BookingResponse, error) {
	const op = "workflow.ConfirmBooking"

	var result *api.BookingResponse
	err := e.withBooking(ctx, id, func(b *models.Booking) error {
		if expired, err := e.expireIfOverdue(ctx, b); err != nil {
			return err
		} else if expired {
			return &response.StateError{Status: string(b.Status)}
		}
		if b.Status != models.BookingPending {
			return &response.StateError{Status: string(b.Status)}
		}

		// Holds are advisory, confirmed slots are not: two confirmed
		// bookings must never overlap, so the promotion re-checks the
		// calendar against confirmed entries.
		conflict, err := e.findConflict(ctx, b.MasterID, b.StartTime, b.EndTime, b.ID, true)
		if err != nil {
			return err
		}
		if conflict != nil {
			return conflict
		}

		oldSlot := slotFor(b)
		day := e.dayKey(b.StartTime)

		now := e.clock.Now()
		b.Status = models.BookingConfirmed
		b.ConfirmedAt = &now
		b.ConfirmedBy = req.ActorID
		b.CalendarSlotStatus = models.SlotConfirmed
		b.TempHoldExpiresAt = nil

		e.appendHistory(b, models.StatusHistoryEntry{
			Status:    models.BookingConfirmed,
			ActorType: models.ActorSalon,
			ActorID:   req.ActorID,
			ActorName: req.ActorName,
		})

		// Booking record last; a failed write reverts the slot and
		// queue so the booking reads back pending, exactly as before.
		if err := e.store.PutSlot(ctx, day, slotFor(b)); err != nil {
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

		e.notify(ctx, "booking_confirmed", b.ClientID, b.ID)

		result = e.view(b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// DeclineBooking is the salon rejecting a pending booking. The slot is
// released immediately and the full deposit is refunded.
func (e *Engine) DeclineBooking(ctx context.Context, id string, req *api.DeclineBookingRequest) (*api.BookingResponse, error) {
	const op = "workflow.DeclineBooking"

	var result *api.BookingResponse
	err := e.withBooking(ctx, id, func(b *models.Booking) error {
		if expired, err := e.expireIfOverdue(ctx, b); err != nil {
			return err
		} else if expired {
			return &response.StateError{Status: string(b.Status)}
		}
		if b.Status != models.BookingPending {
			return &response.StateError{Status: string(b.Status)}
		}

		oldSlot := slotFor(b)
		day := e.dayKey(b.StartTime)

		now := e.clock.Now()
		b.Status = models.BookingDeclinedBySalon
		b.DeclineReason = req.DeclineReason
		b.DeclinedAt = &now
		b.DeclinedBy = req.ActorID
		b.RefundAmount = e.refundFor(b, models.ActorSalon)
		b.CalendarSlotStatus = ""
		b.TempHoldExpiresAt = nil

		e.appendHistory(b, models.StatusHistoryEntry{
			Status:    models.BookingDeclinedBySalon,
			ActorType: models.ActorSalon,
			ActorID:   req.ActorID,
			ActorName: req.ActorName,
			Reason:    req.DeclineReason,
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
		e.notify(ctx, "booking_declined", b.ClientID, b.ID)

		result = e.view(b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// CancelBooking terminates a booking from either side. The refund
// follows the cancellation policy (see refundFor).
func (e *Engine) CancelBooking(ctx context.Context, id string, req *api.CancelBookingRequest) (*api.BookingResponse, error) {
	const op = "workflow.CancelBooking"

	var actor models.ActorType
	var target models.BookingStatus
	switch req.Actor {
	case "client":
		actor = models.ActorClient
		target = models.BookingCancelledByClient
	case "salon":
		actor = models.ActorSalon
		target = models.BookingCancelledBySalon
	case "master":
		actor = models.ActorMaster
		target = models.BookingCancelledBySalon
	default:
		return nil, fmt.Errorf("%s: %w", op, &response.ValidationError{Field: "actor", Msg: "must be client, salon or master"})
	}

	var result *api.BookingResponse
	err := e.withBooking(ctx, id, func(b *models.Booking) error {
		if expired, err := e.expireIfOverdue(ctx, b); err != nil {
			return err
		} else if expired {
			return &response.StateError{Status: string(b.Status)}
		}
		if !models.CanTransition(b.Status, target) {
			return &response.StateError{Status: string(b.Status)}
		}

		wasPending := b.Status == models.BookingPending
		oldSlot := slotFor(b)
		day := e.dayKey(b.StartTime)

		now := e.clock.Now()
		b.Status = target
		b.CancellationReason = req.Reason
		b.CancelledAt = &now
		b.CancelledBy = actor
		b.RefundAmount = e.refundFor(b, actor)
		b.RescheduleRequest = nil
		b.CalendarSlotStatus = ""
		b.TempHoldExpiresAt = nil

		e.appendHistory(b, models.StatusHistoryEntry{
			Status:    target,
			ActorType: actor,
			ActorID:   req.ActorID,
			ActorName: req.ActorName,
			Reason:    req.Reason,
		})

		if err := e.store.DeleteSlot(ctx, b.MasterID, day, b.ID); err != nil {
			return err
		}
		if wasPending {
			if err := e.store.RemoveSalonPending(ctx, b.SalonID, b.ID); err != nil {
				e.undo(op,
					func() error { return e.restoreSlot(ctx, b, day, oldSlot) },
				)
				return err
			}
		}
		if err := e.store.SaveBooking(ctx, b); err != nil {
			reverts := []func() error{
				func() error { return e.restoreSlot(ctx, b, day, oldSlot) },
			}
			if wasPending {
				reverts = append(reverts, func() error { return e.store.AppendSalonPending(ctx, b.SalonID, b.ID) })
			}
			e.undo(op, reverts...)
			return err
		}

		e.signalRefund(ctx, b)
		if actor == models.ActorClient {
			e.notify(ctx, "booking_cancelled", b.SalonID, b.ID)
		} else {
			e.notify(ctx, "booking_cancelled", b.ClientID, b.ID)
		}

		result = e.view(b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// MarkCompleted closes a confirmed booking after the appointment time.
func (e *Engine) MarkCompleted(ctx context.Context, id string, req *api.CompleteBookingRequest) (*api.BookingResponse, error) {
	const op = "workflow.MarkCompleted"

	var result *api.BookingResponse
	err := e.withBooking(ctx, id, func(b *models.Booking) error {
		if b.Status != models.BookingConfirmed {
			return &response.StateError{Status: string(b.Status)}
		}
		if e.clock.Now().Before(b.StartTime) {
			return fmt.Errorf("appointment has not started: %w", response.ErrInvalidState)
		}

		oldSlot := slotFor(b)
		day := e.dayKey(b.StartTime)

		b.Status = models.BookingCompleted
		b.CalendarSlotStatus = ""

		e.appendHistory(b, models.StatusHistoryEntry{
			Status:    models.BookingCompleted,
			ActorType: models.ActorSalon,
			ActorID:   req.ActorID,
			ActorName: req.ActorName,
		})

		if err := e.store.DeleteSlot(ctx, b.MasterID, day, b.ID); err != nil {
			return err
		}
		if err := e.store.SaveBooking(ctx, b); err != nil {
			e.undo(op,
				func() error { return e.restoreSlot(ctx, b, day, oldSlot) },
			)
			return err
		}

		result = e.view(b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// MarkNoShow records that the client did not appear. Same timing guard
// as MarkCompleted.
func (e *Engine) MarkNoShow(ctx context.Context, id string, req *api.NoShowRequest) (*api.BookingResponse, error) {
	const op = "workflow.MarkNoShow"

	var result *api.BookingResponse
	err := e.withBooking(ctx, id, func(b *models.Booking) error {
		if b.Status != models.BookingConfirmed {
			return &response.StateError{Status: string(b.Status)}
		}
		if e.clock.Now().Before(b.StartTime) {
			return fmt.Errorf("appointment has not started: %w", response.ErrInvalidState)
		}

		oldSlot := slotFor(b)
		day := e.dayKey(b.StartTime)

		b.Status = models.BookingNoShow
		b.NoShowPenalty = req.Penalty
		b.CalendarSlotStatus = ""

		e.appendHistory(b, models.StatusHistoryEntry{
			Status:    models.BookingNoShow,
			ActorType: models.ActorSalon,
			ActorID:   req.ActorID,
			ActorName: req.ActorName,
		})

		if err := e.store.DeleteSlot(ctx, b.MasterID, day, b.ID); err != nil {
			return err
		}
		if err := e.store.SaveBooking(ctx, b); err != nil {
			e.undo(op,
				func() error { return e.restoreSlot(ctx, b, day, oldSlot) },
			)
			return err
		}

		result = e.view(b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}
