package workflow

import (
	"context"
	"errors"
	"fmt"

	"salon-service/api"
	"salon-service/internal/models"
	"salon-service/pkg/response"
)

// GetBooking returns the projection of one booking. Reads go through
// the same locks as writes and apply the auto-decline rule lazily, so
// a caller never observes a pending booking past its deadline even if
// the sweeper has not fired yet.
func (e *Engine) GetBooking(ctx context.Context, id string) (*api.BookingResponse, error) {
	const op = "workflow.GetBooking"

	var result *api.BookingResponse
	err := e.withBooking(ctx, id, func(b *models.Booking) error {
		if _, err := e.expireIfOverdue(ctx, b); err != nil {
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

// ListSalonPending returns the salon's confirmation queue in request
// order. Bookings that expire during the read drop out of the result.
func (e *Engine) ListSalonPending(ctx context.Context, salonID string) ([]*api.BookingResponse, error) {
	const op = "workflow.ListSalonPending"

	ids, err := e.store.ListSalonPending(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]*api.BookingResponse, 0, len(ids))
	for _, id := range ids {
		view, err := e.GetBooking(ctx, id)
		if err != nil {
			if errors.Is(err, response.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if view.Status != string(models.BookingPending) {
			continue
		}
		out = append(out, view)
	}

	return out, nil
}

// ListClientBookings returns every booking the client ever made, newest
// last, across all statuses.
func (e *Engine) ListClientBookings(ctx context.Context, clientID string) ([]*api.BookingResponse, error) {
	const op = "workflow.ListClientBookings"

	ids, err := e.store.ListClientBookings(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]*api.BookingResponse, 0, len(ids))
	for _, id := range ids {
		view, err := e.GetBooking(ctx, id)
		if err != nil {
			if errors.Is(err, response.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, view)
	}

	return out, nil
}
