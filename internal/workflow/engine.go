package workflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"salon-service/api"
	"salon-service/internal/hooks"
	"salon-service/internal/lock"
	"salon-service/internal/models"
	"salon-service/pkg/clock"
	"salon-service/pkg/response"
	"salon-service/pkg/sl"
)

// Store is the persistence contract the engine drives. Implementations
// must make each call atomic on its own; the engine serializes
// multi-key updates through the Locker.
type Store interface {
	SaveBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)

	PutSlot(ctx context.Context, dayKey string, slot *models.CalendarSlot) error
	DeleteSlot(ctx context.Context, masterID, dayKey, bookingID string) error
	ListSlots(ctx context.Context, masterID, dayKey string) ([]*models.CalendarSlot, error)

	AppendSalonPending(ctx context.Context, salonID, bookingID string) error
	RemoveSalonPending(ctx context.Context, salonID, bookingID string) error
	ListSalonPending(ctx context.Context, salonID string) ([]string, error)

	AppendClientBooking(ctx context.Context, clientID, bookingID string) error
	RemoveClientBooking(ctx context.Context, clientID, bookingID string) error
	ListClientBookings(ctx context.Context, clientID string) ([]string, error)

	ListPendingBookings(ctx context.Context) ([]string, error)
}

// Config carries the wall-clock bounds of the confirmation protocol.
type Config struct {
	TempHoldTTL                time.Duration
	ConfirmationDeadline       time.Duration
	RescheduleResponseDeadline time.Duration
	CancelNoticePeriod         time.Duration
	LockTTL                    time.Duration
	Location                   *time.Location
}

// Engine owns every write to bookings and calendar slots. Callers only
// ever see read projections.
type Engine struct {
	log      *slog.Logger
	store    Store
	locker   lock.Locker
	clock    clock.Clock
	cfg      Config
	refunds  hooks.RefundExecutor
	notifier hooks.Notifier
}

func NewEngine(
	log *slog.Logger,
	store Store,
	locker lock.Locker,
	clk clock.Clock,
	cfg Config,
	refunds hooks.RefundExecutor,
	notifier hooks.Notifier,
) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Engine{
		log:      log,
		store:    store,
		locker:   locker,
		clock:    clk,
		cfg:      cfg,
		refunds:  refunds,
		notifier: notifier,
	}
}

// dayKey buckets an instant into a calendar day in the salon timezone.
// All slot-index keys and deadline math use this single policy.
func (e *Engine) dayKey(t time.Time) string {
	return t.In(e.cfg.Location).Format("2006-01-02")
}

func masterLockKey(masterID string) string { return "master:" + masterID }
func bookingLockKey(id string) string      { return "booking:" + id }

func (e *Engine) acquire(ctx context.Context, key string) (func(), error) {
	locked, err := e.locker.Lock(ctx, key, e.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, response.ErrLocked
	}
	return func() {
		if err := e.locker.Unlock(ctx, key); err != nil {
			e.log.Error("failed to release lock", slog.String("key", key), sl.Err(err))
		}
	}, nil
}

// withBooking loads the booking to learn its master, then takes the
// master lock followed by the booking lock and reloads under them. The
// master-before-booking order is the same everywhere, so slot reads and
// writes of different operations can not interleave.
func (e *Engine) withBooking(ctx context.Context, id string, fn func(b *models.Booking) error) error {
	peek, err := e.store.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	releaseMaster, err := e.acquire(ctx, masterLockKey(peek.MasterID))
	if err != nil {
		return err
	}
	defer releaseMaster()

	releaseBooking, err := e.acquire(ctx, bookingLockKey(id))
	if err != nil {
		return err
	}
	defer releaseBooking()

	b, err := e.store.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	return fn(b)
}

// slotFor builds the slot-index entry matching the booking's current
// calendar fields, or nil when the booking holds no slot.
func slotFor(b *models.Booking) *models.CalendarSlot {
	if b.CalendarSlotStatus == "" {
		return nil
	}
	return &models.CalendarSlot{
		BookingID:     b.ID,
		MasterID:      b.MasterID,
		Start:         b.StartTime,
		End:           b.EndTime,
		Status:        b.CalendarSlotStatus,
		HoldExpiresAt: b.TempHoldExpiresAt,
	}
}

// restoreSlot puts a previously captured slot entry back, or clears
// the booking's entry when there was none to restore.
func (e *Engine) restoreSlot(ctx context.Context, b *models.Booking, day string, slot *models.CalendarSlot) error {
	if slot == nil {
		return e.store.DeleteSlot(ctx, b.MasterID, day, b.ID)
	}
	return e.store.PutSlot(ctx, day, slot)
}

// undo reverts earlier writes of a failed multi-key update, newest
// first. Reverts are best effort; a revert failure is logged and the
// original error still wins.
func (e *Engine) undo(op string, reverts ...func() error) {
	for i := len(reverts) - 1; i >= 0; i-- {
		if err := reverts[i](); err != nil {
			e.log.Error("revert write failed", slog.String("op", op), sl.Err(err))
		}
	}
}

func (e *Engine) appendHistory(b *models.Booking, entry models.StatusHistoryEntry) {
	entry.Timestamp = e.clock.Now()
	b.StatusHistory = append(b.StatusHistory, entry)
	b.UpdatedAt = entry.Timestamp
}

func newID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// CreateBooking validates the request, checks the calendar for
// conflicts and persists the booking in pending status together with a
// temp_hold slot entry and both secondary indexes.
func (e *Engine) CreateBooking(ctx context.Context, req *api.CreateBookingRequest) (*api.BookingResponse, error) {
	const op = "workflow.CreateBooking"

	if err := validateCreate(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &response.ValidationError{Field: "start_time", Msg: "must be RFC3339"})
	}
	end := start.Add(time.Duration(req.ServiceDuration) * time.Minute)

	release, err := e.acquire(ctx, masterLockKey(req.MasterID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	conflict, err := e.findConflict(ctx, req.MasterID, start, end, "", false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if conflict != nil {
		return nil, fmt.Errorf("%s: %w", op, conflict)
	}

	now := e.clock.Now()
	holdExpiry := now.Add(e.cfg.TempHoldTTL)
	deadline := now.Add(e.cfg.ConfirmationDeadline)

	b := &models.Booking{
		ID:        newID(),
		SalonID:   req.SalonID,
		ClientID:  req.ClientID,
		MasterID:  req.MasterID,
		ServiceID: req.ServiceID,

		ClientName:      req.ClientName,
		ClientEmail:     req.ClientEmail,
		ClientPhone:     req.ClientPhone,
		SalonName:       req.SalonName,
		ServiceName:     req.ServiceName,
		ServicePrice:    req.ServicePrice,
		ServiceDuration: req.ServiceDuration,
		MasterName:      req.MasterName,
		IsNewClient:     req.IsNewClient,

		RequestedDateTime: start,
		StartTime:         start,
		EndTime:           end,

		Status: models.BookingPending,

		CalendarSlotStatus:   models.SlotTempHold,
		TempHoldExpiresAt:    &holdExpiry,
		ConfirmationDeadline: &deadline,

		DepositPaid:     req.DepositPaid,
		DepositAmount:   req.DepositAmount,
		TotalAmount:     req.TotalAmount,
		RemainingAmount: req.TotalAmount - req.DepositAmount,

		CreatedAt: now,
		UpdatedAt: now,
	}

	e.appendHistory(b, models.StatusHistoryEntry{
		Status:    models.BookingPending,
		ActorType: models.ActorClient,
		ActorID:   req.ClientID,
		ActorName: req.ClientName,
		Reason:    "Booking requested",
	})

	// The booking record commits last: a failure on any earlier write
	// reverts it, so a rejected create never leaves a persisted booking
	// or a stray slot/index entry behind.
	day := e.dayKey(start)
	if err := e.store.PutSlot(ctx, day, slotFor(b)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := e.store.AppendSalonPending(ctx, b.SalonID, b.ID); err != nil {
		e.undo(op,
			func() error { return e.store.DeleteSlot(ctx, b.MasterID, day, b.ID) },
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := e.store.AppendClientBooking(ctx, b.ClientID, b.ID); err != nil {
		e.undo(op,
			func() error { return e.store.DeleteSlot(ctx, b.MasterID, day, b.ID) },
			func() error { return e.store.RemoveSalonPending(ctx, b.SalonID, b.ID) },
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := e.store.SaveBooking(ctx, b); err != nil {
		e.undo(op,
			func() error { return e.store.DeleteSlot(ctx, b.MasterID, day, b.ID) },
			func() error { return e.store.RemoveSalonPending(ctx, b.SalonID, b.ID) },
			func() error { return e.store.RemoveClientBooking(ctx, b.ClientID, b.ID) },
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	e.notify(ctx, "booking_requested", b.SalonID, b.ID)

	return e.view(b), nil
}

func validateCreate(req *api.CreateBookingRequest) error {
	required := []struct {
		field string
		value string
	}{
		{"client_id", req.ClientID},
		{"salon_id", req.SalonID},
		{"service_id", req.ServiceID},
		{"master_id", req.MasterID},
		{"start_time", req.StartTime},
	}
	for _, r := range required {
		if r.value == "" {
			return &response.ValidationError{Field: r.field}
		}
	}

	if req.ServiceDuration <= 0 {
		return &response.ValidationError{Field: "service_duration", Msg: "must be positive"}
	}
	if req.TotalAmount < 0 {
		return &response.ValidationError{Field: "total_amount", Msg: "must not be negative"}
	}
	if req.DepositAmount < 0 {
		return &response.ValidationError{Field: "deposit_amount", Msg: "must not be negative"}
	}
	if req.DepositAmount > req.TotalAmount {
		return &response.ValidationError{Field: "deposit_amount", Msg: "exceeds total_amount"}
	}

	return nil
}

// refundFor applies the cancellation policy: salon-side terminations
// always return the full deposit; a client cancelling closer to the
// appointment than the notice period forfeits it.
func (e *Engine) refundFor(b *models.Booking, actor models.ActorType) float64 {
	if !b.DepositPaid || b.DepositAmount <= 0 {
		return 0
	}
	if actor == models.ActorClient {
		if e.clock.Now().Add(e.cfg.CancelNoticePeriod).After(b.StartTime) {
			return 0
		}
	}
	return b.DepositAmount
}

func (e *Engine) signalRefund(ctx context.Context, b *models.Booking) {
	if b.RefundAmount <= 0 {
		return
	}
	if err := e.refunds.Refund(ctx, b.ID, b.RefundAmount); err != nil {
		e.log.Error("refund side effect failed, transition is committed",
			slog.String("booking_id", b.ID), sl.Err(err))
	}
}

func (e *Engine) notify(ctx context.Context, event, recipient, bookingID string) {
	if err := e.notifier.Notify(ctx, event, recipient, bookingID); err != nil {
		e.log.Error("notification dispatch failed",
			slog.String("event", event), sl.Err(err))
	}
}
