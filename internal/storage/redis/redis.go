package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"salon-service/internal/models"
	"salon-service/pkg/response"

	"github.com/redis/go-redis/v9"
)

// Storage keeps the booking workflow state in the flat key-value
// namespace the engine expects:
//
//	booking:{id}                 JSON booking record
//	slots:{master}:{day}         hash of bookingID -> JSON slot entry
//	salon:{id}:bookings:pending  list of booking ids
//	client:{id}:bookings         list of booking ids
//	bookings:pending             global list the sweeper walks
type Storage struct {
	client *redis.Client
}

func New(redisAddr string) (*Storage, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{client: client}, nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func bookingKey(id string) string          { return fmt.Sprintf("booking:%s", id) }
func slotsKey(masterID, day string) string { return fmt.Sprintf("slots:%s:%s", masterID, day) }
func salonPendingKey(salonID string) string {
	return fmt.Sprintf("salon:%s:bookings:pending", salonID)
}
func clientBookingsKey(clientID string) string { return fmt.Sprintf("client:%s:bookings", clientID) }

const pendingKey = "bookings:pending"

func (s *Storage) SaveBooking(ctx context.Context, b *models.Booking) error {
	const op = "storage.redis.SaveBooking"

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.client.Set(ctx, bookingKey(b.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.redis.GetBooking"

	data, err := s.client.Get(ctx, bookingKey(id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var b models.Booking
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &b, nil
}

func (s *Storage) PutSlot(ctx context.Context, dayKey string, slot *models.CalendarSlot) error {
	const op = "storage.redis.PutSlot"

	data, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.client.HSet(ctx, slotsKey(slot.MasterID, dayKey), slot.BookingID, data).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteSlot(ctx context.Context, masterID, dayKey, bookingID string) error {
	const op = "storage.redis.DeleteSlot"

	if err := s.client.HDel(ctx, slotsKey(masterID, dayKey), bookingID).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListSlots(ctx context.Context, masterID, dayKey string) ([]*models.CalendarSlot, error) {
	const op = "storage.redis.ListSlots"

	entries, err := s.client.HGetAll(ctx, slotsKey(masterID, dayKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*models.CalendarSlot, 0, len(entries))
	for _, raw := range entries {
		var slot models.CalendarSlot
		if err := json.Unmarshal([]byte(raw), &slot); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &slot)
	}

	return result, nil
}

func (s *Storage) AppendSalonPending(ctx context.Context, salonID, bookingID string) error {
	const op = "storage.redis.AppendSalonPending"

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, salonPendingKey(salonID), bookingID)
		pipe.RPush(ctx, pendingKey, bookingID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) RemoveSalonPending(ctx context.Context, salonID, bookingID string) error {
	const op = "storage.redis.RemoveSalonPending"

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, salonPendingKey(salonID), 0, bookingID)
		pipe.LRem(ctx, pendingKey, 0, bookingID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListSalonPending(ctx context.Context, salonID string) ([]string, error) {
	const op = "storage.redis.ListSalonPending"

	ids, err := s.client.LRange(ctx, salonPendingKey(salonID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}

func (s *Storage) AppendClientBooking(ctx context.Context, clientID, bookingID string) error {
	const op = "storage.redis.AppendClientBooking"

	if err := s.client.RPush(ctx, clientBookingsKey(clientID), bookingID).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) RemoveClientBooking(ctx context.Context, clientID, bookingID string) error {
	const op = "storage.redis.RemoveClientBooking"

	if err := s.client.LRem(ctx, clientBookingsKey(clientID), 0, bookingID).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListClientBookings(ctx context.Context, clientID string) ([]string, error) {
	const op = "storage.redis.ListClientBookings"

	ids, err := s.client.LRange(ctx, clientBookingsKey(clientID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}

func (s *Storage) ListPendingBookings(ctx context.Context) ([]string, error) {
	const op = "storage.redis.ListPendingBookings"

	ids, err := s.client.LRange(ctx, pendingKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}
