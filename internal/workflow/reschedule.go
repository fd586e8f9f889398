package workflow

import (
	"context"
	"fmt"
	"time"

	"salon-service/api"
	"salon-service/internal/models"
	"salon-service/pkg/response"
)

const defaultRescheduleDeclineReason = "Declined reschedule request"

// ProposeReschedule opens a reschedule negotiation on a confirmed
// booking. The calendar slot stays at the original time until the
// client accepts, so the original slot remains reserved while the
// proposal is pending.
func (e *Engine) ProposeReschedule(ctx context.Context, id string, req *api.ProposeRescheduleRequest) (*api.BookingResponse, error) {
	const op = "workflow.ProposeReschedule"

	newTime, err := time.Parse(time.RFC3339, req.NewDateTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &response.ValidationError{Field: "new_datetime", Msg: "must be RFC3339"})
	}

	var result *api.BookingResponse
	err = e.withBooking(ctx, id, func(b *models.Booking) error {
		if b.Status != models.BookingConfirmed {
			return &response.StateError{Status: string(b.Status)}
		}

		now := e.clock.Now()
		original := b.StartTime
		b.Status = models.BookingReschedulePending
		b.RescheduleRequest = &models.RescheduleRequest{
			RequestedBy:      models.ActorSalon,
			OriginalDateTime: original,
			NewDateTime:      newTime,
			Reason:           req.RescheduleReason,
			RespondBy:        now.Add(e.cfg.RescheduleResponseDeadline),
		}

		e.appendHistory(b, models.StatusHistoryEntry{
			Status:       models.BookingReschedulePending,
			ActorType:    models.ActorSalon,
			ActorID:      req.ActorID,
			ActorName:    req.ActorName,
			Reason:       req.RescheduleReason,
			PreviousTime: &original,
			NewTime:      &newTime,
		})

		if err := e.store.SaveBooking(ctx, b); err != nil {
			return err
		}

		e.notify(ctx, "reschedule_proposed", b.ClientID, b.ID)

		result = e.view(b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// RespondToReschedule resolves a pending proposal. Accepting moves the
// calendar slot to the proposed time after re-checking for conflicts
// there; declining cancels the booking on the client's behalf with a
// full deposit refund.
func (e *Engine) RespondToReschedule(ctx context.Context, id string, req *api.RescheduleResponseRequest) (*api.BookingResponse, error) {
	const op = "workflow.RespondToReschedule"

	if req.Action != "accept" && req.Action != "decline" {
		return nil, fmt.Errorf("%s: %w", op, &response.ValidationError{Field: "action", Msg: "must be accept or decline"})
	}

	var result *api.BookingResponse
	err := e.withBooking(ctx, id, func(b *models.Booking) error {
		if b.Status != models.BookingReschedulePending || b.RescheduleRequest == nil {
			return &response.StateError{Status: string(b.Status)}
		}

		if req.Action == "accept" {
			return e.acceptReschedule(ctx, b, &result)
		}
		return e.declineReschedule(ctx, b, req.DeclineReason, &result)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (e *Engine) acceptReschedule(ctx context.Context, b *models.Booking, result **api.BookingResponse) error {
	const op = "workflow.acceptReschedule"

	proposal := b.RescheduleRequest
	newStart := proposal.NewDateTime
	newEnd := newStart.Add(time.Duration(b.ServiceDuration) * time.Minute)

	// The slot move must not silently double-book the new time.
	conflict, err := e.findConflict(ctx, b.MasterID, newStart, newEnd, b.ID, false)
	if err != nil {
		return err
	}
	if conflict != nil {
		return conflict
	}

	oldSlot := slotFor(b)
	oldDay := e.dayKey(b.StartTime)
	oldStart := b.StartTime

	b.Status = models.BookingConfirmed
	b.StartTime = newStart
	b.EndTime = newEnd
	b.ConfirmedDateTime = &newStart
	b.RescheduleRequest = nil
	b.CalendarSlotStatus = models.SlotConfirmed

	e.appendHistory(b, models.StatusHistoryEntry{
		Status:       models.BookingConfirmed,
		ActorType:    models.ActorClient,
		ActorID:      b.ClientID,
		ActorName:    b.ClientName,
		Reason:       "Reschedule accepted",
		PreviousTime: &oldStart,
		NewTime:      &newStart,
	})

	newDay := e.dayKey(newStart)
	if err := e.store.DeleteSlot(ctx, b.MasterID, oldDay, b.ID); err != nil {
		return err
	}
	if err := e.store.PutSlot(ctx, newDay, slotFor(b)); err != nil {
		e.undo(op,
			func() error { return e.restoreSlot(ctx, b, oldDay, oldSlot) },
		)
		return err
	}
	// Reverts run newest-first: the new slot entry is dropped before
	// the old one is restored, which also handles a same-day move where
	// both share one index key.
	if err := e.store.SaveBooking(ctx, b); err != nil {
		e.undo(op,
			func() error { return e.restoreSlot(ctx, b, oldDay, oldSlot) },
			func() error { return e.store.DeleteSlot(ctx, b.MasterID, newDay, b.ID) },
		)
		return err
	}

	e.notify(ctx, "reschedule_accepted", b.SalonID, b.ID)

	*result = e.view(b)
	return nil
}

func (e *Engine) declineReschedule(ctx context.Context, b *models.Booking, reason string, result **api.BookingResponse) error {
	const op = "workflow.declineReschedule"

	if reason == "" {
		reason = defaultRescheduleDeclineReason
	}

	oldSlot := slotFor(b)
	day := e.dayKey(b.StartTime)

	now := e.clock.Now()
	b.Status = models.BookingCancelledByClient
	b.CancellationReason = reason
	b.CancelledAt = &now
	b.CancelledBy = models.ActorClient
	b.RefundAmount = b.DepositAmount
	if !b.DepositPaid {
		b.RefundAmount = 0
	}
	b.RescheduleRequest = nil
	b.CalendarSlotStatus = ""

	e.appendHistory(b, models.StatusHistoryEntry{
		Status:    models.BookingCancelledByClient,
		ActorType: models.ActorClient,
		ActorID:   b.ClientID,
		ActorName: b.ClientName,
		Reason:    reason,
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

	e.signalRefund(ctx, b)
	e.notify(ctx, "reschedule_declined", b.SalonID, b.ID)

	*result = e.view(b)
	return nil
}
