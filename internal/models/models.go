package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingPending           BookingStatus = "pending"
	BookingConfirmed         BookingStatus = "confirmed"
	BookingReschedulePending BookingStatus = "rescheduled_pending"
	BookingDeclinedBySalon   BookingStatus = "declined_by_salon"
	BookingCancelledByClient BookingStatus = "cancelled_by_client"
	BookingCancelledBySalon  BookingStatus = "cancelled_by_salon"
	BookingCompleted         BookingStatus = "completed"
	BookingNoShow            BookingStatus = "no_show"
	BookingExpired           BookingStatus = "expired"
)

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingReschedulePending,
		BookingDeclinedBySalon, BookingCancelledByClient, BookingCancelledBySalon,
		BookingCompleted, BookingNoShow, BookingExpired:
		return BookingStatus(s), nil
	default:
		return "", fmt.Errorf("unknown booking status: %s", s)
	}
}

// allowedTransitions is the single source of truth for the booking state
// machine. View projections derive available actions from it as well, so
// the two can not drift apart.
var allowedTransitions = map[BookingStatus]map[BookingStatus]bool{
	BookingPending: {
		BookingConfirmed:         true,
		BookingDeclinedBySalon:   true,
		BookingCancelledByClient: true,
		BookingCancelledBySalon:  true,
		BookingExpired:           true,
	},
	BookingConfirmed: {
		BookingReschedulePending: true,
		BookingCancelledByClient: true,
		BookingCancelledBySalon:  true,
		BookingCompleted:         true,
		BookingNoShow:            true,
	},
	BookingReschedulePending: {
		BookingConfirmed:         true,
		BookingCancelledByClient: true,
		BookingCancelledBySalon:  true,
	},
	BookingDeclinedBySalon:   {},
	BookingCancelledByClient: {},
	BookingCancelledBySalon:  {},
	BookingCompleted:         {},
	BookingNoShow:            {},
	BookingExpired:           {},
}

func CanTransition(from, to BookingStatus) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

func (s BookingStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

type ActorType string

const (
	ActorClient ActorType = "client"
	ActorSalon  ActorType = "salon"
	ActorMaster ActorType = "master"
	ActorSystem ActorType = "system"
)

type SlotStatus string

const (
	SlotTempHold  SlotStatus = "temp_hold"
	SlotConfirmed SlotStatus = "confirmed"
)

// CalendarSlot is one entry of the per-master, day-bucketed slot index.
// [Start, End) is half-open: touching ranges do not overlap.
type CalendarSlot struct {
	BookingID     string     `json:"booking_id"`
	MasterID      string     `json:"master_id"`
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
	Status        SlotStatus `json:"status"`
	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty"`
}

func (s *CalendarSlot) Overlaps(start, end time.Time) bool {
	return start.Before(s.End) && end.After(s.Start)
}

// HoldExpired reports whether a temp_hold entry is stale. Confirmed
// slots never expire.
func (s *CalendarSlot) HoldExpired(now time.Time) bool {
	if s.Status != SlotTempHold || s.HoldExpiresAt == nil {
		return false
	}
	return now.After(*s.HoldExpiresAt)
}

// StatusHistoryEntry is append-only: entries are never mutated or
// truncated once recorded.
type StatusHistoryEntry struct {
	Status       BookingStatus `json:"status"`
	Timestamp    time.Time     `json:"timestamp"`
	ActorType    ActorType     `json:"actor_type"`
	ActorID      string        `json:"actor_id,omitempty"`
	ActorName    string        `json:"actor_name,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	PreviousTime *time.Time    `json:"previous_time,omitempty"`
	NewTime      *time.Time    `json:"new_time,omitempty"`
}

// RescheduleRequest is present only while the booking status is
// rescheduled_pending.
type RescheduleRequest struct {
	RequestedBy      ActorType `json:"requested_by"`
	OriginalDateTime time.Time `json:"original_datetime"`
	NewDateTime      time.Time `json:"new_datetime"`
	Reason           string    `json:"reason,omitempty"`
	RespondBy        time.Time `json:"respond_by"`
}

type Booking struct {
	ID        string `json:"id"`
	SalonID   string `json:"salon_id"`
	ClientID  string `json:"client_id"`
	MasterID  string `json:"master_id"`
	ServiceID string `json:"service_id"`

	// Descriptive snapshot taken at creation time, kept stable even if
	// the source records change later.
	ClientName      string  `json:"client_name"`
	ClientEmail     string  `json:"client_email"`
	ClientPhone     string  `json:"client_phone"`
	SalonName       string  `json:"salon_name"`
	ServiceName     string  `json:"service_name"`
	ServicePrice    float64 `json:"service_price"`
	ServiceDuration int     `json:"service_duration"` // minutes
	MasterName      string  `json:"master_name"`
	IsNewClient     bool    `json:"is_new_client,omitempty"`

	RequestedDateTime time.Time  `json:"requested_datetime"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           time.Time  `json:"end_time"`
	ConfirmedDateTime *time.Time `json:"confirmed_datetime,omitempty"`

	Status        BookingStatus        `json:"status"`
	StatusHistory []StatusHistoryEntry `json:"status_history"`

	CalendarSlotStatus   SlotStatus `json:"calendar_slot_status,omitempty"`
	TempHoldExpiresAt    *time.Time `json:"temp_hold_expires_at,omitempty"`
	ConfirmationDeadline *time.Time `json:"confirmation_deadline,omitempty"`

	RescheduleRequest *RescheduleRequest `json:"reschedule_request,omitempty"`

	DepositPaid     bool    `json:"deposit_paid"`
	DepositAmount   float64 `json:"deposit_amount"`
	TotalAmount     float64 `json:"total_amount"`
	RemainingAmount float64 `json:"remaining_amount"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	ConfirmedBy string     `json:"confirmed_by,omitempty"`

	DeclineReason string     `json:"decline_reason,omitempty"`
	DeclinedAt    *time.Time `json:"declined_at,omitempty"`
	DeclinedBy    string     `json:"declined_by,omitempty"`

	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy        ActorType  `json:"cancelled_by,omitempty"`
	RefundAmount       float64    `json:"refund_amount,omitempty"`

	NoShowPenalty float64 `json:"no_show_penalty,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
