package workflow

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-service/api"
	"salon-service/internal/lock"
	"salon-service/internal/storage/memory"
	"salon-service/pkg/clock"
	"salon-service/pkg/response"
)

type refundRecorder struct {
	calls []float64
}

func (r *refundRecorder) Refund(_ context.Context, _ string, amount float64) error {
	r.calls = append(r.calls, amount)
	return nil
}

type notifyRecorder struct {
	events []string
}

func (n *notifyRecorder) Notify(_ context.Context, event, _, _ string) error {
	n.events = append(n.events, event)
	return nil
}

type testEnv struct {
	engine  *Engine
	store   *memory.Storage
	clock   *clock.MockClock
	refunds *refundRecorder
	notices *notifyRecorder
}

var testBase = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New()
	clk := clock.NewMockClock(testBase)
	refunds := &refundRecorder{}
	notices := &notifyRecorder{}

	engine := NewEngine(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		store,
		lock.NewMemoryLock(),
		clk,
		Config{
			TempHoldTTL:                30 * time.Minute,
			ConfirmationDeadline:       2 * time.Hour,
			RescheduleResponseDeadline: 24 * time.Hour,
			CancelNoticePeriod:         24 * time.Hour,
			LockTTL:                    10 * time.Second,
		},
		refunds,
		notices,
	)

	return &testEnv{engine: engine, store: store, clock: clk, refunds: refunds, notices: notices}
}

func createReq(start time.Time) *api.CreateBookingRequest {
	return &api.CreateBookingRequest{
		ClientID:        "client-1",
		ClientName:      "Anna",
		ClientEmail:     "anna@example.com",
		ClientPhone:     "+10000000001",
		SalonID:         "salon-1",
		SalonName:       "Glow Studio",
		ServiceID:       "service-1",
		ServiceName:     "Haircut",
		ServicePrice:    50,
		ServiceDuration: 60,
		MasterID:        "master-1",
		MasterName:      "Olga",
		StartTime:       start.Format(time.RFC3339),
		DepositPaid:     true,
		DepositAmount:   10,
		TotalAmount:     50,
	}
}

func (env *testEnv) mustCreate(t *testing.T, start time.Time) *api.BookingResponse {
	t.Helper()

	booking, err := env.engine.CreateBooking(context.Background(), createReq(start))
	require.NoError(t, err)
	return booking
}

func TestCreateBooking_Pending(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)

	booking := env.mustCreate(t, start)

	assert.Equal(t, "pending", booking.Status)
	assert.Equal(t, "temp_hold", booking.CalendarSlotStatus)
	require.NotNil(t, booking.TempHoldExpiresAt)
	assert.Equal(t, testBase.Add(30*time.Minute), *booking.TempHoldExpiresAt)
	require.NotNil(t, booking.ConfirmationDeadline)
	assert.Equal(t, testBase.Add(2*time.Hour), *booking.ConfirmationDeadline)
	assert.Equal(t, float64(40), booking.RemainingAmount)

	require.Len(t, booking.StatusHistory, 1)
	assert.Equal(t, "pending", booking.StatusHistory[0].Status)
	assert.Equal(t, "client", booking.StatusHistory[0].ActorType)

	pending, err := env.engine.ListSalonPending(context.Background(), "salon-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, booking.ID, pending[0].ID)
}

func TestCreateBooking_Validation(t *testing.T) {
	env := newTestEnv(t)

	req := createReq(testBase.Add(48 * time.Hour))
	req.MasterID = ""

	_, err := env.engine.CreateBooking(context.Background(), req)
	assert.ErrorIs(t, err, response.ErrValidation)

	req = createReq(testBase.Add(48 * time.Hour))
	req.DepositAmount = 100

	_, err = env.engine.CreateBooking(context.Background(), req)
	assert.ErrorIs(t, err, response.ErrValidation)
}

func TestCreateBooking_HoldBlocksOverlap(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)

	first := env.mustCreate(t, start)

	_, err := env.engine.CreateBooking(context.Background(), createReq(start.Add(30*time.Minute)))
	require.ErrorIs(t, err, response.ErrConflict)

	var cerr *response.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, first.ID, cerr.BookingID)
	assert.Equal(t, "temp_hold", cerr.SlotStatus)
}

func TestCreateBooking_TouchingSlotsDoNotConflict(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)

	env.mustCreate(t, start)

	// [10:00, 11:00) then [11:00, 12:00): half-open ranges touch but
	// do not overlap.
	_, err := env.engine.CreateBooking(context.Background(), createReq(start.Add(60*time.Minute)))
	assert.NoError(t, err)
}

func TestCreateBooking_ExpiredHoldFreesSlot(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)

	env.mustCreate(t, start)

	env.clock.Add(31 * time.Minute)

	_, err := env.engine.CreateBooking(context.Background(), createReq(start))
	assert.NoError(t, err)
}

func TestCrossMidnightConflicts(t *testing.T) {
	t.Run("candidate spills into the next day", func(t *testing.T) {
		env := newTestEnv(t)

		early := env.mustCreate(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC))
		_, err := env.engine.ConfirmBooking(context.Background(), early.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
		require.NoError(t, err)

		// 23:30-00:30 overlaps the 00:00-01:00 booking indexed under
		// the following day.
		_, err = env.engine.CreateBooking(context.Background(), createReq(time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC)))
		require.ErrorIs(t, err, response.ErrConflict)

		var cerr *response.ConflictError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, early.ID, cerr.BookingID)
	})

	t.Run("existing slot spills into the candidate day", func(t *testing.T) {
		env := newTestEnv(t)

		late := env.mustCreate(t, time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC))
		_, err := env.engine.ConfirmBooking(context.Background(), late.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
		require.NoError(t, err)

		_, err = env.engine.CreateBooking(context.Background(), createReq(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)))
		assert.ErrorIs(t, err, response.ErrConflict)
	})

	t.Run("confirmation re-check crosses midnight", func(t *testing.T) {
		env := newTestEnv(t)

		late := env.mustCreate(t, time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC))

		// The hold lapses, another booking takes 00:00-01:00 of the
		// next day and gets confirmed.
		env.clock.Add(31 * time.Minute)
		other := env.mustCreate(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC))
		_, err := env.engine.ConfirmBooking(context.Background(), other.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
		require.NoError(t, err)

		// Confirming the late booking must re-check against confirmed
		// slots of the next day, not only its own.
		_, err = env.engine.ConfirmBooking(context.Background(), late.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
		assert.ErrorIs(t, err, response.ErrConflict)
	})
}

func TestConfirmBooking(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)
	booking := env.mustCreate(t, start)

	confirmed, err := env.engine.ConfirmBooking(context.Background(), booking.ID, &api.ConfirmBookingRequest{
		ActorID: "owner-1", ActorName: "Maria",
	})
	require.NoError(t, err)

	assert.Equal(t, "confirmed", confirmed.Status)
	assert.Equal(t, "confirmed", confirmed.CalendarSlotStatus)
	assert.Nil(t, confirmed.TempHoldExpiresAt)
	require.Len(t, confirmed.StatusHistory, 2)

	pending, err := env.engine.ListSalonPending(context.Background(), "salon-1")
	require.NoError(t, err)
	assert.Empty(t, pending)

	// The confirmed slot does not expire with hold TTLs.
	env.clock.Add(3 * time.Hour)
	_, err = env.engine.CreateBooking(context.Background(), createReq(start))
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestConfirmBooking_Twice(t *testing.T) {
	env := newTestEnv(t)
	booking := env.mustCreate(t, testBase.Add(48*time.Hour))

	_, err := env.engine.ConfirmBooking(context.Background(), booking.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.NoError(t, err)

	_, err = env.engine.ConfirmBooking(context.Background(), booking.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.ErrorIs(t, err, response.ErrInvalidState)

	var serr *response.StateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "confirmed", serr.Status)
}

func TestConfirmBooking_AfterDeadlineExpires(t *testing.T) {
	env := newTestEnv(t)
	booking := env.mustCreate(t, testBase.Add(48*time.Hour))

	env.clock.Add(2*time.Hour + time.Minute)

	_, err := env.engine.ConfirmBooking(context.Background(), booking.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.ErrorIs(t, err, response.ErrInvalidState)

	view, err := env.engine.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", view.Status)
	assert.Equal(t, float64(10), view.RefundAmount)
	assert.Equal(t, []float64{10}, env.refunds.calls)
}

func TestDeclineBooking(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)
	booking := env.mustCreate(t, start)

	declined, err := env.engine.DeclineBooking(context.Background(), booking.ID, &api.DeclineBookingRequest{
		DeclineReason: "Master is unavailable",
		ActorID:       "owner-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "declined_by_salon", declined.Status)
	assert.Equal(t, "Master is unavailable", declined.DeclineReason)
	assert.Equal(t, float64(10), declined.RefundAmount)
	assert.Equal(t, []float64{10}, env.refunds.calls)

	// Slot is released: the same time can be booked again.
	_, err = env.engine.CreateBooking(context.Background(), createReq(start))
	assert.NoError(t, err)

	// Terminal: no further transitions.
	_, err = env.engine.ConfirmBooking(context.Background(), booking.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	assert.ErrorIs(t, err, response.ErrInvalidState)
}

func TestRescheduleAccepted(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)
	newStart := start.Add(3 * time.Hour)

	booking := env.mustCreate(t, start)
	_, err := env.engine.ConfirmBooking(context.Background(), booking.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.NoError(t, err)

	proposed, err := env.engine.ProposeReschedule(context.Background(), booking.ID, &api.ProposeRescheduleRequest{
		NewDateTime:      newStart.Format(time.RFC3339),
		RescheduleReason: "Master unavailable at requested time",
		ActorID:          "owner-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "rescheduled_pending", proposed.Status)
	require.NotNil(t, proposed.RescheduleRequest)
	assert.Equal(t, newStart, proposed.RescheduleRequest.NewDateTime)
	assert.Equal(t, env.clock.Now().Add(24*time.Hour), proposed.RescheduleRequest.RespondBy)

	accepted, err := env.engine.RespondToReschedule(context.Background(), booking.ID, &api.RescheduleResponseRequest{Action: "accept"})
	require.NoError(t, err)

	assert.Equal(t, "confirmed", accepted.Status)
	assert.Equal(t, newStart, accepted.StartTime)
	assert.Nil(t, accepted.RescheduleRequest)

	// The original slot is free again, the new one is taken.
	_, err = env.engine.CreateBooking(context.Background(), createReq(start))
	assert.NoError(t, err)
	_, err = env.engine.CreateBooking(context.Background(), createReq(newStart))
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestRescheduleDeclined(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)

	booking := env.mustCreate(t, start)
	_, err := env.engine.ConfirmBooking(context.Background(), booking.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.NoError(t, err)

	_, err = env.engine.ProposeReschedule(context.Background(), booking.ID, &api.ProposeRescheduleRequest{
		NewDateTime: start.Add(3 * time.Hour).Format(time.RFC3339),
		ActorID:     "owner-1",
	})
	require.NoError(t, err)

	declined, err := env.engine.RespondToReschedule(context.Background(), booking.ID, &api.RescheduleResponseRequest{Action: "decline"})
	require.NoError(t, err)

	assert.Equal(t, "cancelled_by_client", declined.Status)
	assert.Equal(t, "Declined reschedule request", declined.CancellationReason)
	assert.Equal(t, float64(10), declined.RefundAmount)
	assert.Equal(t, start, declined.StartTime)

	_, err = env.engine.CreateBooking(context.Background(), createReq(start))
	assert.NoError(t, err)
}

func TestReschedule_InvalidAction(t *testing.T) {
	env := newTestEnv(t)
	booking := env.mustCreate(t, testBase.Add(48*time.Hour))

	_, err := env.engine.RespondToReschedule(context.Background(), booking.ID, &api.RescheduleResponseRequest{Action: "maybe"})
	assert.ErrorIs(t, err, response.ErrValidation)
}

func TestReschedule_RequiresConfirmed(t *testing.T) {
	env := newTestEnv(t)
	booking := env.mustCreate(t, testBase.Add(48*time.Hour))

	_, err := env.engine.ProposeReschedule(context.Background(), booking.ID, &api.ProposeRescheduleRequest{
		NewDateTime: testBase.Add(72 * time.Hour).Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, response.ErrInvalidState)
}

func TestReschedule_AcceptConflictsAtNewTime(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)
	newStart := start.Add(3 * time.Hour)

	booking := env.mustCreate(t, start)
	_, err := env.engine.ConfirmBooking(context.Background(), booking.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.NoError(t, err)

	other := env.mustCreate(t, newStart)
	_, err = env.engine.ConfirmBooking(context.Background(), other.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.NoError(t, err)

	_, err = env.engine.ProposeReschedule(context.Background(), booking.ID, &api.ProposeRescheduleRequest{
		NewDateTime: newStart.Format(time.RFC3339),
		ActorID:     "owner-1",
	})
	require.NoError(t, err)

	_, err = env.engine.RespondToReschedule(context.Background(), booking.ID, &api.RescheduleResponseRequest{Action: "accept"})
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestCancelBooking_RefundPolicy(t *testing.T) {
	env := newTestEnv(t)

	t.Run("client with enough notice gets full refund", func(t *testing.T) {
		booking := env.mustCreate(t, testBase.Add(48*time.Hour))

		cancelled, err := env.engine.CancelBooking(context.Background(), booking.ID, &api.CancelBookingRequest{
			Reason: "Changed plans", Actor: "client", ActorID: "client-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "cancelled_by_client", cancelled.Status)
		assert.Equal(t, float64(10), cancelled.RefundAmount)
	})

	t.Run("client inside notice period forfeits deposit", func(t *testing.T) {
		booking := env.mustCreate(t, env.clock.Now().Add(12*time.Hour))

		cancelled, err := env.engine.CancelBooking(context.Background(), booking.ID, &api.CancelBookingRequest{
			Reason: "Changed plans", Actor: "client", ActorID: "client-1",
		})
		require.NoError(t, err)
		assert.Equal(t, float64(0), cancelled.RefundAmount)
	})

	t.Run("salon always refunds in full", func(t *testing.T) {
		booking := env.mustCreate(t, env.clock.Now().Add(6*time.Hour))

		cancelled, err := env.engine.CancelBooking(context.Background(), booking.ID, &api.CancelBookingRequest{
			Reason: "Pipe burst", Actor: "salon", ActorID: "owner-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "cancelled_by_salon", cancelled.Status)
		assert.Equal(t, float64(10), cancelled.RefundAmount)
	})
}

func TestCancelBooking_TerminalRejected(t *testing.T) {
	env := newTestEnv(t)
	booking := env.mustCreate(t, testBase.Add(48*time.Hour))

	_, err := env.engine.CancelBooking(context.Background(), booking.ID, &api.CancelBookingRequest{
		Reason: "Changed plans", Actor: "client",
	})
	require.NoError(t, err)

	_, err = env.engine.CancelBooking(context.Background(), booking.ID, &api.CancelBookingRequest{
		Reason: "Again", Actor: "client",
	})
	assert.ErrorIs(t, err, response.ErrInvalidState)
}

func TestMarkCompletedAndNoShow(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)

	booking := env.mustCreate(t, start)
	_, err := env.engine.ConfirmBooking(context.Background(), booking.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.NoError(t, err)

	// Too early.
	_, err = env.engine.MarkCompleted(context.Background(), booking.ID, &api.CompleteBookingRequest{ActorID: "owner-1"})
	require.ErrorIs(t, err, response.ErrInvalidState)

	env.clock.Set(start.Add(time.Hour))

	completed, err := env.engine.MarkCompleted(context.Background(), booking.ID, &api.CompleteBookingRequest{ActorID: "owner-1"})
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)

	other := env.mustCreate(t, env.clock.Now().Add(48*time.Hour))
	_, err = env.engine.ConfirmBooking(context.Background(), other.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.NoError(t, err)

	env.clock.Add(49 * time.Hour)

	noShow, err := env.engine.MarkNoShow(context.Background(), other.ID, &api.NoShowRequest{Penalty: 10, ActorID: "owner-1"})
	require.NoError(t, err)
	assert.Equal(t, "no_show", noShow.Status)
}

func TestSweepExpired(t *testing.T) {
	env := newTestEnv(t)
	booking := env.mustCreate(t, testBase.Add(48*time.Hour))

	require.NoError(t, env.engine.SweepExpired(context.Background()))

	view, err := env.engine.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", view.Status)

	env.clock.Add(2*time.Hour + time.Minute)
	require.NoError(t, env.engine.SweepExpired(context.Background()))

	view, err = env.engine.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", view.Status)
	require.NotEmpty(t, view.StatusHistory)
	last := view.StatusHistory[len(view.StatusHistory)-1]
	assert.Equal(t, "system", last.ActorType)
	assert.Equal(t, "No response within time limit", last.Reason)

	pending, err := env.store.ListPendingBookings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSweepReleasesStaleHold(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)
	booking := env.mustCreate(t, start)

	// Hold lapses at 30m, the confirmation window runs to 2h.
	env.clock.Add(31 * time.Minute)
	require.NoError(t, env.engine.SweepExpired(context.Background()))

	view, err := env.engine.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", view.Status)
	assert.Empty(t, view.CalendarSlotStatus)
	assert.Nil(t, view.TempHoldExpiresAt)

	// The slot is free for others, but the booking can still be
	// confirmed inside its window.
	_, err = env.engine.CreateBooking(context.Background(), createReq(start))
	require.NoError(t, err)

	confirmed, err := env.engine.ConfirmBooking(context.Background(), booking.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)
}

func TestStatusHistoryAppendOnly(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)

	booking := env.mustCreate(t, start)
	_, err := env.engine.ConfirmBooking(context.Background(), booking.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.NoError(t, err)
	_, err = env.engine.ProposeReschedule(context.Background(), booking.ID, &api.ProposeRescheduleRequest{
		NewDateTime: start.Add(3 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	view, err := env.engine.RespondToReschedule(context.Background(), booking.ID, &api.RescheduleResponseRequest{Action: "accept"})
	require.NoError(t, err)

	require.Len(t, view.StatusHistory, 4)
	statuses := make([]string, 0, len(view.StatusHistory))
	for i, h := range view.StatusHistory {
		statuses = append(statuses, h.Status)
		if i > 0 {
			assert.False(t, h.Timestamp.Before(view.StatusHistory[i-1].Timestamp))
		}
	}
	assert.Equal(t, []string{"pending", "confirmed", "rescheduled_pending", "confirmed"}, statuses)
}

func TestCheckConflict(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)
	booking := env.mustCreate(t, start)

	result, err := env.engine.CheckConflict(context.Background(), "master-1", start.Add(30*time.Minute), time.Hour)
	require.NoError(t, err)
	assert.True(t, result.HasConflict)
	assert.Equal(t, "temp_hold", result.ConflictType)
	assert.Equal(t, booking.ID, result.ConflictingBookingID)

	result, err = env.engine.CheckConflict(context.Background(), "master-1", start.Add(time.Hour), time.Hour)
	require.NoError(t, err)
	assert.False(t, result.HasConflict)

	result, err = env.engine.CheckConflict(context.Background(), "master-2", start, time.Hour)
	require.NoError(t, err)
	assert.False(t, result.HasConflict)
}

func TestListClientBookings(t *testing.T) {
	env := newTestEnv(t)

	first := env.mustCreate(t, testBase.Add(48*time.Hour))
	second := env.mustCreate(t, testBase.Add(72*time.Hour))

	_, err := env.engine.ConfirmBooking(context.Background(), first.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.NoError(t, err)

	bookings, err := env.engine.ListClientBookings(context.Background(), "client-1")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, first.ID, bookings[0].ID)
	assert.Equal(t, "confirmed", bookings[0].Status)
	assert.Equal(t, second.ID, bookings[1].ID)
	assert.Equal(t, "pending", bookings[1].Status)
}

func TestGetBooking_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.GetBooking(context.Background(), "missing")
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestGetBooking_LazyExpiry(t *testing.T) {
	env := newTestEnv(t)
	start := testBase.Add(48 * time.Hour)
	booking := env.mustCreate(t, start)

	env.clock.Add(2*time.Hour + time.Minute)

	view, err := env.engine.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", view.Status)

	pending, err := env.engine.ListSalonPending(context.Background(), "salon-1")
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Expiry freed the slot.
	_, err = env.engine.CreateBooking(context.Background(), createReq(start))
	assert.NoError(t, err)
}

func TestNotificationsFireAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	booking := env.mustCreate(t, testBase.Add(48*time.Hour))

	_, err := env.engine.ConfirmBooking(context.Background(), booking.ID, &api.ConfirmBookingRequest{ActorID: "owner-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"booking_requested", "booking_confirmed"}, env.notices.events)
}
