package workflow

import (
	"context"
	"fmt"
	"time"

	"salon-service/internal/models"
	"salon-service/pkg/response"
)

// ConflictResult is the answer of the pure conflict query.
type ConflictResult struct {
	HasConflict          bool   `json:"has_conflict"`
	ConflictType         string `json:"conflict_type,omitempty"`
	ConflictingBookingID string `json:"conflicting_booking_id,omitempty"`
}

// CheckConflict reports whether [start, start+duration) overlaps any
// live slot entry of the master. Read-only; holds whose expiry has
// passed are treated as absent regardless of sweeper timing.
func (e *Engine) CheckConflict(ctx context.Context, masterID string, start time.Time, duration time.Duration) (*ConflictResult, error) {
	const op = "workflow.CheckConflict"

	conflict, err := e.findConflict(ctx, masterID, start, start.Add(duration), "", false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if conflict == nil {
		return &ConflictResult{}, nil
	}

	return &ConflictResult{
		HasConflict:          true,
		ConflictType:         conflict.SlotStatus,
		ConflictingBookingID: conflict.BookingID,
	}, nil
}

// findConflict scans the slot index for the day of start, the day
// before it and the day of end. Slots are bucketed under their start
// day, so the previous day catches an existing late-evening slot
// spilling into the candidate range and the end day catches slots the
// candidate itself spills into past midnight. A confirmed overlap
// always wins over a temp_hold overlap in the report. With
// confirmedOnly set, unexpired holds do not block; that is the check a
// confirm or an accepted reschedule runs, because holds are advisory
// while two confirmed bookings must never overlap.
func (e *Engine) findConflict(ctx context.Context, masterID string, start, end time.Time, excludeBookingID string, confirmedOnly bool) (*response.ConflictError, error) {
	now := e.clock.Now()
	days := []string{
		e.dayKey(start.AddDate(0, 0, -1)),
		e.dayKey(start),
	}
	if endDay := e.dayKey(end); endDay != days[1] {
		days = append(days, endDay)
	}

	var holdConflict *response.ConflictError
	for _, day := range days {
		slots, err := e.store.ListSlots(ctx, masterID, day)
		if err != nil {
			return nil, err
		}

		for _, slot := range slots {
			if slot.BookingID == excludeBookingID {
				continue
			}
			if slot.HoldExpired(now) {
				continue
			}
			if !slot.Overlaps(start, end) {
				continue
			}

			if slot.Status == models.SlotConfirmed {
				return &response.ConflictError{
					SlotStatus: string(slot.Status),
					BookingID:  slot.BookingID,
				}, nil
			}
			if !confirmedOnly && holdConflict == nil {
				holdConflict = &response.ConflictError{
					SlotStatus: string(slot.Status),
					BookingID:  slot.BookingID,
				}
			}
		}
	}

	return holdConflict, nil
}
