package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"campus360/internal/model"
)

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) error {
	query := `
		INSERT INTO events
			(id, title, description, venue, category, starts_at, deadline, max_seats, seats_remaining, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Description, e.Venue, e.Category,
		e.StartsAt, e.Deadline, e.MaxSeats, e.SeatsRemaining,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (r *repository) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	query := `
		SELECT id, title, description, venue, category, starts_at, deadline,
		       max_seats, seats_remaining, created_at, updated_at
		FROM events WHERE id = $1
	`
	var e model.Event
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.Venue, &e.Category, &e.StartsAt, &e.Deadline,
		&e.MaxSeats, &e.SeatsRemaining, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *repository) ListEvents(ctx context.Context) ([]model.Event, error) {
	query := `
		SELECT id, title, description, venue, category, starts_at, deadline,
		       max_seats, seats_remaining, created_at, updated_at
		FROM events
		ORDER BY starts_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.Venue, &e.Category, &e.StartsAt, &e.Deadline,
			&e.MaxSeats, &e.SeatsRemaining, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// RegisterTx checks, in order: deadline, duplicate registration, seats. The
// seat decrement and the registration insert commit together.
func (r *repository) RegisterTx(ctx context.Context, eventID, userID string, now time.Time) (*model.Registration, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var deadline time.Time
	var seats int
	err = tx.QueryRowContext(ctx, `
		SELECT deadline, seats_remaining FROM events WHERE id = $1 FOR UPDATE
	`, eventID).Scan(&deadline, &seats)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}

	// Deadline wins over seat availability.
	if !now.Before(deadline) {
		_ = tx.Rollback()
		return nil, ErrDeadlinePassed
	}

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND user_id = $2
	`, eventID, userID).Scan(&existing)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to check duplicate registration: %w", err)
	}
	if existing > 0 {
		_ = tx.Rollback()
		return nil, ErrDuplicateRegistration
	}

	if seats <= 0 {
		_ = tx.Rollback()
		return nil, ErrEventFull
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE events SET seats_remaining = seats_remaining - 1, updated_at = NOW() WHERE id = $1
	`, eventID)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to decrement seats: %w", err)
	}

	reg := &model.Registration{
		ID:        uuid.NewString(),
		EventID:   eventID,
		UserID:    userID,
		Status:    model.RegistrationRegistered,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO registrations (id, event_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, reg.ID, reg.EventID, reg.UserID, reg.Status, reg.CreatedAt)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration transaction: %w", err)
	}
	return reg, nil
}

// CancelRegistrationTx deletes the registration row and gives the seat back
// in one transaction, so seat count and registration existence never diverge.
func (r *repository) CancelRegistrationTx(ctx context.Context, eventID, userID string) error {
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

	var regID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM registrations WHERE event_id = $1 AND user_id = $2 FOR UPDATE
	`, eventID, userID).Scan(&regID)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock registration: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, regID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete registration: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE events
		SET seats_remaining = LEAST(seats_remaining + 1, max_seats), updated_at = NOW()
		WHERE id = $1
	`, eventID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to release seat: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cancellation transaction: %w", err)
	}
	return nil
}

func (r *repository) MarkAttended(ctx context.Context, registrationID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE registrations SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, model.RegistrationAttended, registrationID, model.RegistrationRegistered)
	if err != nil {
		return fmt.Errorf("failed to mark attendance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListRegistrations(ctx context.Context, eventID string) ([]model.Registration, error) {
	query := `
		SELECT id, event_id, user_id, status, created_at, updated_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
