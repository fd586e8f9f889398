package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"salon-service/internal/models"
	"salon-service/pkg/response"
)

// Storage is the in-memory rendition of the booking store, used by
// tests and single-node deployments. Every read hands out a deep copy
// so callers can not mutate stored state behind the engine's back.
type Storage struct {
	mu            sync.RWMutex
	bookings      map[string]*models.Booking
	slots         map[string]map[string]*models.CalendarSlot // master|day -> bookingID -> slot
	salonPending  map[string][]string
	clientHistory map[string][]string
	pending       []string
}

func New() *Storage {
	return &Storage{
		bookings:      make(map[string]*models.Booking),
		slots:         make(map[string]map[string]*models.CalendarSlot),
		salonPending:  make(map[string][]string),
		clientHistory: make(map[string][]string),
	}
}

func (s *Storage) Close() error { return nil }

func slotKey(masterID, dayKey string) string {
	return masterID + "|" + dayKey
}

func (s *Storage) SaveBooking(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookings[b.ID] = copyBooking(b)
	return nil
}

func (s *Storage) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	const op = "storage.memory.GetBooking"

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return copyBooking(b), nil
}

func (s *Storage) PutSlot(_ context.Context, dayKey string, slot *models.CalendarSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey(slot.MasterID, dayKey)
	if s.slots[key] == nil {
		s.slots[key] = make(map[string]*models.CalendarSlot)
	}
	s.slots[key][slot.BookingID] = copySlot(slot)
	return nil
}

func (s *Storage) DeleteSlot(_ context.Context, masterID, dayKey, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots[slotKey(masterID, dayKey)], bookingID)
	return nil
}

func (s *Storage) ListSlots(_ context.Context, masterID, dayKey string) ([]*models.CalendarSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.slots[slotKey(masterID, dayKey)]
	result := make([]*models.CalendarSlot, 0, len(entries))
	for _, slot := range entries {
		result = append(result, copySlot(slot))
	}
	return result, nil
}

func (s *Storage) AppendSalonPending(_ context.Context, salonID, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.salonPending[salonID] = append(s.salonPending[salonID], bookingID)
	s.pending = append(s.pending, bookingID)
	return nil
}

func (s *Storage) RemoveSalonPending(_ context.Context, salonID, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.salonPending[salonID] = remove(s.salonPending[salonID], bookingID)
	s.pending = remove(s.pending, bookingID)
	return nil
}

func (s *Storage) ListSalonPending(_ context.Context, salonID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.salonPending[salonID]...), nil
}

func (s *Storage) AppendClientBooking(_ context.Context, clientID, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clientHistory[clientID] = append(s.clientHistory[clientID], bookingID)
	return nil
}

func (s *Storage) RemoveClientBooking(_ context.Context, clientID, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clientHistory[clientID] = remove(s.clientHistory[clientID], bookingID)
	return nil
}

func (s *Storage) ListClientBookings(_ context.Context, clientID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.clientHistory[clientID]...), nil
}

func (s *Storage) ListPendingBookings(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.pending...), nil
}

func remove(ids []string, id string) []string {
	result := ids[:0]
	for _, v := range ids {
		if v != id {
			result = append(result, v)
		}
	}
	return result
}

func copyBooking(b *models.Booking) *models.Booking {
	cp := *b
	cp.StatusHistory = append([]models.StatusHistoryEntry(nil), b.StatusHistory...)
	if b.RescheduleRequest != nil {
		r := *b.RescheduleRequest
		cp.RescheduleRequest = &r
	}
	cp.ConfirmedDateTime = copyTime(b.ConfirmedDateTime)
	cp.TempHoldExpiresAt = copyTime(b.TempHoldExpiresAt)
	cp.ConfirmationDeadline = copyTime(b.ConfirmationDeadline)
	cp.ConfirmedAt = copyTime(b.ConfirmedAt)
	cp.DeclinedAt = copyTime(b.DeclinedAt)
	cp.CancelledAt = copyTime(b.CancelledAt)
	return &cp
}

func copySlot(s *models.CalendarSlot) *models.CalendarSlot {
	cp := *s
	cp.HoldExpiresAt = copyTime(s.HoldExpiresAt)
	return &cp
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
