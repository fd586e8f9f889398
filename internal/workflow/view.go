package workflow

import (
	"time"

	"salon-service/api"
	"salon-service/internal/models"
)

type statusView struct {
	Label string
	Color string
	Icon  string
}

var statusViews = map[models.BookingStatus]statusView{
	models.BookingPending:           {"Pending Confirmation", "yellow", "⏳"},
	models.BookingConfirmed:         {"Confirmed", "green", "✅"},
	models.BookingReschedulePending: {"Reschedule Request", "yellow", "🔄"},
	models.BookingDeclinedBySalon:   {"Declined by Salon", "red", "❌"},
	models.BookingCancelledByClient: {"Cancelled", "gray", "🚫"},
	models.BookingCancelledBySalon:  {"Cancelled by Salon", "red", "🚫"},
	models.BookingCompleted:         {"Completed", "green", "🎉"},
	models.BookingNoShow:            {"No Show", "red", "👻"},
	models.BookingExpired:           {"Expired", "gray", "⌛"},
}

// availableActions lists the operations callable on a booking in its
// current status. Each action exists only when the transition table
// allows the status it leads to, so the projection can not offer a
// button the engine would reject.
func availableActions(status models.BookingStatus) []string {
	actions := make([]string, 0, 4)

	switch status {
	case models.BookingPending:
		if models.CanTransition(status, models.BookingConfirmed) {
			actions = append(actions, "confirm")
		}
		if models.CanTransition(status, models.BookingDeclinedBySalon) {
			actions = append(actions, "decline")
		}
	case models.BookingConfirmed:
		if models.CanTransition(status, models.BookingReschedulePending) {
			actions = append(actions, "propose_reschedule")
		}
		if models.CanTransition(status, models.BookingCompleted) {
			actions = append(actions, "complete")
		}
		if models.CanTransition(status, models.BookingNoShow) {
			actions = append(actions, "no_show")
		}
	case models.BookingReschedulePending:
		if models.CanTransition(status, models.BookingConfirmed) {
			actions = append(actions, "accept_reschedule")
		}
		if models.CanTransition(status, models.BookingCancelledByClient) {
			actions = append(actions, "decline_reschedule")
		}
	}

	if models.CanTransition(status, models.BookingCancelledByClient) ||
		models.CanTransition(status, models.BookingCancelledBySalon) {
		actions = append(actions, "cancel")
	}

	return actions
}

func (e *Engine) minutesUntil(deadline time.Time) *int {
	left := int(deadline.Sub(e.clock.Now()) / time.Minute)
	if left < 0 {
		left = 0
	}
	return &left
}

// view builds the read projection of a booking.
func (e *Engine) view(b *models.Booking) *api.BookingResponse {
	sv := statusViews[b.Status]

	resp := &api.BookingResponse{
		ID:        b.ID,
		SalonID:   b.SalonID,
		ClientID:  b.ClientID,
		MasterID:  b.MasterID,
		ServiceID: b.ServiceID,

		ClientName:      b.ClientName,
		ClientEmail:     b.ClientEmail,
		ClientPhone:     b.ClientPhone,
		SalonName:       b.SalonName,
		ServiceName:     b.ServiceName,
		ServicePrice:    b.ServicePrice,
		ServiceDuration: b.ServiceDuration,
		MasterName:      b.MasterName,

		RequestedDateTime: b.RequestedDateTime,
		StartTime:         b.StartTime,
		EndTime:           b.EndTime,
		ConfirmedDateTime: b.ConfirmedDateTime,

		Status:             string(b.Status),
		CalendarSlotStatus: string(b.CalendarSlotStatus),

		TempHoldExpiresAt:    b.TempHoldExpiresAt,
		ConfirmationDeadline: b.ConfirmationDeadline,

		DepositPaid:     b.DepositPaid,
		DepositAmount:   b.DepositAmount,
		TotalAmount:     b.TotalAmount,
		RemainingAmount: b.RemainingAmount,
		RefundAmount:    b.RefundAmount,

		CancellationReason: b.CancellationReason,
		DeclineReason:      b.DeclineReason,

		StatusLabel:      sv.Label,
		StatusColor:      sv.Color,
		StatusIcon:       sv.Icon,
		AvailableActions: availableActions(b.Status),

		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}

	resp.StatusHistory = make([]api.StatusHistoryEntry, 0, len(b.StatusHistory))
	for _, h := range b.StatusHistory {
		resp.StatusHistory = append(resp.StatusHistory, api.StatusHistoryEntry{
			Status:       string(h.Status),
			Timestamp:    h.Timestamp,
			ActorType:    string(h.ActorType),
			ActorID:      h.ActorID,
			ActorName:    h.ActorName,
			Reason:       h.Reason,
			PreviousTime: h.PreviousTime,
			NewTime:      h.NewTime,
		})
	}

	if b.RescheduleRequest != nil {
		resp.RescheduleRequest = &api.RescheduleInfo{
			RequestedBy:      string(b.RescheduleRequest.RequestedBy),
			OriginalDateTime: b.RescheduleRequest.OriginalDateTime,
			NewDateTime:      b.RescheduleRequest.NewDateTime,
			Reason:           b.RescheduleRequest.Reason,
			RespondBy:        b.RescheduleRequest.RespondBy,
		}
	}

	switch b.Status {
	case models.BookingPending:
		if b.ConfirmationDeadline != nil {
			resp.ConfirmationMinutesLeft = e.minutesUntil(*b.ConfirmationDeadline)
		}
	case models.BookingReschedulePending:
		if b.RescheduleRequest != nil {
			resp.RescheduleMinutesLeft = e.minutesUntil(b.RescheduleRequest.RespondBy)
		}
	}

	return resp
}
