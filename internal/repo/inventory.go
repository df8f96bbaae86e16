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

func (r *repository) CreateEquipment(ctx context.Context, eq *model.Equipment) error {
	query := `
		INSERT INTO sports_equipment (id, name, category, total, remaining, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	eq.Status = model.EquipmentStatus(eq.Remaining)
	_, err := r.db.ExecContext(ctx, query, eq.ID, eq.Name, eq.Category, eq.Total, eq.Remaining, eq.Status)
	if err != nil {
		return fmt.Errorf("failed to insert equipment: %w", err)
	}
	return nil
}

func (r *repository) GetEquipmentByID(ctx context.Context, id string) (*model.Equipment, error) {
	query := `
		SELECT id, name, category, total, remaining, status, created_at, updated_at
		FROM sports_equipment WHERE id = $1
	`
	var eq model.Equipment
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&eq.ID, &eq.Name, &eq.Category, &eq.Total, &eq.Remaining, &eq.Status, &eq.CreatedAt, &eq.UpdatedAt,
	); err != nil {
		return nil, ErrNotFound
	}
	return &eq, nil
}

func (r *repository) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	query := `
		SELECT id, name, category, total, remaining, status, created_at, updated_at
		FROM sports_equipment ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer rows.Close()

	var items []model.Equipment
	for rows.Next() {
		var eq model.Equipment
		if err := rows.Scan(
			&eq.ID, &eq.Name, &eq.Category, &eq.Total, &eq.Remaining, &eq.Status, &eq.CreatedAt, &eq.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		items = append(items, eq)
	}
	return items, rows.Err()
}

// BorrowEquipmentTx is the decrement-if-positive helper: the row lock makes
// concurrent borrows serialize, so the counter can never go below zero. The
// borrow log row is written in the same transaction.
func (r *repository) BorrowEquipmentTx(ctx context.Context, equipmentID, userID string) (*model.ResourceLog, error) {
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

	var remaining int
	err = tx.QueryRowContext(ctx, `
		SELECT remaining FROM sports_equipment WHERE id = $1 FOR UPDATE
	`, equipmentID).Scan(&remaining)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock equipment: %w", err)
	}

	if remaining <= 0 {
		_ = tx.Rollback()
		return nil, ErrOutOfStock
	}

	remaining--
	_, err = tx.ExecContext(ctx, `
		UPDATE sports_equipment SET remaining = $1, status = $2, updated_at = NOW() WHERE id = $3
	`, remaining, model.EquipmentStatus(remaining), equipmentID)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to decrement equipment: %w", err)
	}

	logEntry := &model.ResourceLog{
		ID:          uuid.NewString(),
		EquipmentID: equipmentID,
		UserID:      userID,
		Status:      model.LogBorrowed,
		BorrowedAt:  time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO resource_logs (id, equipment_id, user_id, status, borrowed_at)
		VALUES ($1, $2, $3, $4, $5)
	`, logEntry.ID, logEntry.EquipmentID, logEntry.UserID, logEntry.Status, logEntry.BorrowedAt)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to insert resource log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit borrow transaction: %w", err)
	}
	return logEntry, nil
}

// ReturnEquipmentTx is the compensating increment: log close and counter bump
// happen together or not at all.
func (r *repository) ReturnEquipmentTx(ctx context.Context, logID, userID string) error {
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

	var equipmentID string
	err = tx.QueryRowContext(ctx, `
		SELECT equipment_id FROM resource_logs
		WHERE id = $1 AND user_id = $2 AND status = $3
		FOR UPDATE
	`, logID, userID, model.LogBorrowed).Scan(&equipmentID)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock resource log: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE resource_logs SET status = $1, returned_at = NOW() WHERE id = $2
	`, model.LogReturned, logID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to close resource log: %w", err)
	}

	var remaining int
	err = tx.QueryRowContext(ctx, `
		UPDATE sports_equipment
		SET remaining = LEAST(remaining + 1, total), updated_at = NOW()
		WHERE id = $1
		RETURNING remaining
	`, equipmentID).Scan(&remaining)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to increment equipment: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE sports_equipment SET status = $1 WHERE id = $2
	`, model.EquipmentStatus(remaining), equipmentID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to update equipment status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit return transaction: %w", err)
	}
	return nil
}

func (r *repository) ListResourceLogs(ctx context.Context, userID string) ([]model.ResourceLog, error) {
	query := `
		SELECT id, equipment_id, user_id, status, borrowed_at, returned_at
		FROM resource_logs
		WHERE user_id = $1
		ORDER BY borrowed_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resource logs: %w", err)
	}
	defer rows.Close()

	var logs []model.ResourceLog
	for rows.Next() {
		var l model.ResourceLog
		if err := rows.Scan(&l.ID, &l.EquipmentID, &l.UserID, &l.Status, &l.BorrowedAt, &l.ReturnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resource log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
