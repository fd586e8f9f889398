package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingDeclinedBySalon, true},
		{BookingPending, BookingExpired, true},
		{BookingPending, BookingCancelledByClient, true},
		{BookingPending, BookingCompleted, false},
		{BookingPending, BookingReschedulePending, false},

		{BookingConfirmed, BookingReschedulePending, true},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingNoShow, true},
		{BookingConfirmed, BookingExpired, false},
		{BookingConfirmed, BookingPending, false},

		{BookingReschedulePending, BookingConfirmed, true},
		{BookingReschedulePending, BookingCancelledByClient, true},
		{BookingReschedulePending, BookingDeclinedBySalon, false},

		{BookingExpired, BookingConfirmed, false},
		{BookingCompleted, BookingNoShow, false},
		{BookingCancelledByClient, BookingPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []BookingStatus{
		BookingDeclinedBySalon,
		BookingCancelledByClient,
		BookingCancelledBySalon,
		BookingCompleted,
		BookingNoShow,
		BookingExpired,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s", s)
	}

	for _, s := range []BookingStatus{BookingPending, BookingConfirmed, BookingReschedulePending} {
		assert.False(t, s.IsTerminal(), "%s", s)
	}
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("rescheduled_pending")
	require.NoError(t, err)
	assert.Equal(t, BookingReschedulePending, status)

	_, err = ParseBookingStatus("held")
	assert.Error(t, err)
}

func TestCalendarSlotOverlaps(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	slot := &CalendarSlot{Start: base, End: base.Add(time.Hour)}

	assert.True(t, slot.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.True(t, slot.Overlaps(base.Add(-30*time.Minute), base.Add(30*time.Minute)))
	assert.True(t, slot.Overlaps(base.Add(-time.Hour), base.Add(2*time.Hour)))

	// Half-open: back-to-back appointments share an instant without
	// overlapping.
	assert.False(t, slot.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.False(t, slot.Overlaps(base.Add(-time.Hour), base))
}

func TestCalendarSlotHoldExpired(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	expiry := base.Add(30 * time.Minute)

	hold := &CalendarSlot{Status: SlotTempHold, HoldExpiresAt: &expiry}
	assert.False(t, hold.HoldExpired(base))
	assert.False(t, hold.HoldExpired(expiry))
	assert.True(t, hold.HoldExpired(expiry.Add(time.Second)))

	confirmed := &CalendarSlot{Status: SlotConfirmed, HoldExpiresAt: &expiry}
	assert.False(t, confirmed.HoldExpired(expiry.Add(time.Hour)))
}
