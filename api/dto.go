package api

import "time"

type CreateBookingRequest struct {
	ClientID        string  `json:"client_id"`
	ClientName      string  `json:"client_name"`
	ClientEmail     string  `json:"client_email"`
	ClientPhone     string  `json:"client_phone"`
	SalonID         string  `json:"salon_id"`
	SalonName       string  `json:"salon_name"`
	ServiceID       string  `json:"service_id"`
	ServiceName     string  `json:"service_name"`
	ServicePrice    float64 `json:"service_price"`
	ServiceDuration int     `json:"service_duration"`
	MasterID        string  `json:"master_id"`
	MasterName      string  `json:"master_name"`
	StartTime       string  `json:"start_time"`
	DepositPaid     bool    `json:"deposit_paid"`
	DepositAmount   float64 `json:"deposit_amount"`
	TotalAmount     float64 `json:"total_amount"`
	IsNewClient     bool    `json:"is_new_client,omitempty"`
}

type ConfirmBookingRequest struct {
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
}

type DeclineBookingRequest struct {
	DeclineReason string `json:"decline_reason"`
	ActorID       string `json:"actor_id"`
	ActorName     string `json:"actor_name"`
}

type ProposeRescheduleRequest struct {
	NewDateTime      string `json:"new_datetime"`
	RescheduleReason string `json:"reschedule_reason"`
	ActorID          string `json:"actor_id"`
	ActorName        string `json:"actor_name"`
}

type RescheduleResponseRequest struct {
	Action        string `json:"action"` // accept | decline
	DeclineReason string `json:"decline_reason,omitempty"`
}

type CancelBookingRequest struct {
	Reason    string `json:"reason"`
	Actor     string `json:"actor"` // client | salon
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
}

type CompleteBookingRequest struct {
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
}

type NoShowRequest struct {
	Penalty   float64 `json:"penalty,omitempty"`
	ActorID   string  `json:"actor_id"`
	ActorName string  `json:"actor_name"`
}

type StatusHistoryEntry struct {
	Status       string     `json:"status"`
	Timestamp    time.Time  `json:"timestamp"`
	ActorType    string     `json:"actor_type"`
	ActorID      string     `json:"actor_id,omitempty"`
	ActorName    string     `json:"actor_name,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	PreviousTime *time.Time `json:"previous_time,omitempty"`
	NewTime      *time.Time `json:"new_time,omitempty"`
}

type RescheduleInfo struct {
	RequestedBy      string    `json:"requested_by"`
	OriginalDateTime time.Time `json:"original_datetime"`
	NewDateTime      time.Time `json:"new_datetime"`
	Reason           string    `json:"reason,omitempty"`
	RespondBy        time.Time `json:"respond_by"`
}

type BookingResponse struct {
	ID        string `json:"id"`
	SalonID   string `json:"salon_id"`
	ClientID  string `json:"client_id"`
	MasterID  string `json:"master_id"`
	ServiceID string `json:"service_id"`

	ClientName      string  `json:"client_name"`
	ClientEmail     string  `json:"client_email"`
	ClientPhone     string  `json:"client_phone"`
	SalonName       string  `json:"salon_name"`
	ServiceName     string  `json:"service_name"`
	ServicePrice    float64 `json:"service_price"`
	ServiceDuration int     `json:"service_duration"`
	MasterName      string  `json:"master_name"`

	RequestedDateTime time.Time  `json:"requested_datetime"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           time.Time  `json:"end_time"`
	ConfirmedDateTime *time.Time `json:"confirmed_datetime,omitempty"`

	Status             string               `json:"status"`
	StatusHistory      []StatusHistoryEntry `json:"status_history"`
	CalendarSlotStatus string               `json:"calendar_slot_status,omitempty"`

	TempHoldExpiresAt    *time.Time `json:"temp_hold_expires_at,omitempty"`
	ConfirmationDeadline *time.Time `json:"confirmation_deadline,omitempty"`
	RescheduleRequest    *RescheduleInfo `json:"reschedule_request,omitempty"`

	DepositPaid     bool    `json:"deposit_paid"`
	DepositAmount   float64 `json:"deposit_amount"`
	TotalAmount     float64 `json:"total_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
	RefundAmount    float64 `json:"refund_amount,omitempty"`

	CancellationReason string `json:"cancellation_reason,omitempty"`
	DeclineReason      string `json:"decline_reason,omitempty"`

	// View projection: UI-ready fields derived from the current status.
	StatusLabel      string   `json:"status_label"`
	StatusColor      string   `json:"status_color"`
	StatusIcon       string   `json:"status_icon"`
	AvailableActions []string `json:"available_actions"`

	// Countdowns in whole minutes, present while the matching deadline
	// is ticking.
	ConfirmationMinutesLeft *int `json:"confirmation_minutes_left,omitempty"`
	RescheduleMinutesLeft   *int `json:"reschedule_minutes_left,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
