package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campus360/internal/model"
)

func (r *repository) CreateRoom(ctx context.Context, room *model.Room) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, capacity, location, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, room.ID, room.Name, room.Capacity, room.Location)
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

func (r *repository) ListRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, capacity, location, created_at FROM rooms ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Capacity, &rm.Location, &rm.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}

// BookRoomTx rejects any booking that overlaps an existing one for the same
// room. The room row lock serializes concurrent attempts on one room.
func (r *repository) BookRoomTx(ctx context.Context, booking *model.RoomBooking) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var roomID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM rooms WHERE id = $1 FOR UPDATE
	`, booking.RoomID).Scan(&roomID)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock room: %w", err)
	}

	var overlapping int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM room_bookings
		WHERE room_id = $1 AND status = $2 AND starts_at < $3 AND ends_at > $4
	`, booking.RoomID, model.BookingBooked, booking.EndsAt, booking.StartsAt).Scan(&overlapping)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to check booking overlap: %w", err)
	}
	if overlapping > 0 {
		_ = tx.Rollback()
		return ErrSlotTaken
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO room_bookings (id, room_id, user_id, starts_at, ends_at, purpose, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, booking.ID, booking.RoomID, booking.UserID, booking.StartsAt, booking.EndsAt, booking.Purpose, booking.Status)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking transaction: %w", err)
	}
	return nil
}

func (r *repository) ListRoomBookings(ctx context.Context, roomID string) ([]model.RoomBooking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, room_id, user_id, starts_at, ends_at, purpose, status, created_at
		FROM room_bookings
		WHERE room_id = $1
		ORDER BY starts_at ASC
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.RoomBooking
	for rows.Next() {
		var b model.RoomBooking
		if err := rows.Scan(&b.ID, &b.RoomID, &b.UserID, &b.StartsAt, &b.EndsAt, &b.Purpose, &b.Status, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
