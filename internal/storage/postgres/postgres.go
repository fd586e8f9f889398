package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"salon-service/internal/models"
	"salon-service/pkg/response"

	"github.com/lib/pq"
)

// Storage is the Postgres rendition of the booking store. It keeps the
// same key/value shape the engine expects: booking records as JSONB,
// slot entries keyed by (master, day, booking) and plain index tables
// for the pending and client lists.
type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) SaveBooking(ctx context.Context, b *models.Booking) error {
	const op = "storage.postgres.SaveBooking"

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bookings (booking_id, data)
		VALUES ($1, $2)
		ON CONFLICT (booking_id)
		DO UPDATE SET data = EXCLUDED.data`,
		b.ID, data,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.postgres.GetBooking"

	var data []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM bookings WHERE booking_id=$1`, id).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var b models.Booking
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &b, nil
}

func (s *Storage) PutSlot(ctx context.Context, dayKey string, slot *models.CalendarSlot) error {
	const op = "storage.postgres.PutSlot"

	data, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO calendar_slots (master_id, day_key, booking_id, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (master_id, day_key, booking_id)
		DO UPDATE SET data = EXCLUDED.data`,
		slot.MasterID, dayKey, slot.BookingID, data,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteSlot(ctx context.Context, masterID, dayKey, bookingID string) error {
	const op = "storage.postgres.DeleteSlot"

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM calendar_slots WHERE master_id=$1 AND day_key=$2 AND booking_id=$3`,
		masterID, dayKey, bookingID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListSlots(ctx context.Context, masterID, dayKey string) ([]*models.CalendarSlot, error) {
	const op = "storage.postgres.ListSlots"

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM calendar_slots WHERE master_id=$1 AND day_key=$2`,
		masterID, dayKey,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var result []*models.CalendarSlot
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		var slot models.CalendarSlot
		if err := json.Unmarshal(data, &slot); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		result = append(result, &slot)
	}

	return result, rows.Err()
}

func (s *Storage) AppendSalonPending(ctx context.Context, salonID, bookingID string) error {
	const op = "storage.postgres.AppendSalonPending"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO salon_pending (salon_id, booking_id) VALUES ($1, $2)`,
		salonID, bookingID,
	)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23505" {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) RemoveSalonPending(ctx context.Context, salonID, bookingID string) error {
	const op = "storage.postgres.RemoveSalonPending"

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM salon_pending WHERE salon_id=$1 AND booking_id=$2`,
		salonID, bookingID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListSalonPending(ctx context.Context, salonID string) ([]string, error) {
	const op = "storage.postgres.ListSalonPending"

	rows, err := s.db.QueryContext(ctx,
		`SELECT booking_id FROM salon_pending WHERE salon_id=$1 ORDER BY pos`,
		salonID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	return scanIDs(rows, op)
}

func (s *Storage) AppendClientBooking(ctx context.Context, clientID, bookingID string) error {
	const op = "storage.postgres.AppendClientBooking"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO client_bookings (client_id, booking_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		clientID, bookingID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) RemoveClientBooking(ctx context.Context, clientID, bookingID string) error {
	const op = "storage.postgres.RemoveClientBooking"

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM client_bookings WHERE client_id=$1 AND booking_id=$2`,
		clientID, bookingID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListClientBookings(ctx context.Context, clientID string) ([]string, error) {
	const op = "storage.postgres.ListClientBookings"

	rows, err := s.db.QueryContext(ctx,
		`SELECT booking_id FROM client_bookings WHERE client_id=$1 ORDER BY pos`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	return scanIDs(rows, op)
}

func (s *Storage) ListPendingBookings(ctx context.Context) ([]string, error) {
	const op = "storage.postgres.ListPendingBookings"

	rows, err := s.db.QueryContext(ctx,
		`SELECT booking_id FROM salon_pending ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	return scanIDs(rows, op)
}

func scanIDs(rows *sql.Rows, op string) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}
