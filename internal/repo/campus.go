package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"campus360/internal/model"
)

// String-slice columns (emergency contacts, route stops) are kept as JSON
// text so scanning stays on database/sql without array support.
func encodeStrings(s []string) (string, error) {
	if s == nil {
		s = []string{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(b), nil
}

func decodeStrings(raw string, dst *[]string) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	return nil
}

func (r *repository) UpsertUser(ctx context.Context, u *model.User) error {
	contacts, err := encodeStrings(u.EmergencyContacts)
	if err != nil {
		return err
	}
	if u.Role == "" {
		u.Role = model.RoleStudent
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, avatar, phone, role, emergency_contacts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			avatar = EXCLUDED.avatar,
			phone = EXCLUDED.phone,
			emergency_contacts = EXCLUDED.emergency_contacts,
			updated_at = NOW()
	`, u.ID, u.Name, u.Email, u.Avatar, u.Phone, u.Role, contacts)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	var contacts string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, avatar, phone, role, emergency_contacts, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.Phone, &u.Role, &contacts, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	if err := decodeStrings(contacts, &u.EmergencyContacts); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) SaveFCMToken(ctx context.Context, t *model.FCMToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fcm_tokens (user_id, token, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token, updated_at = NOW()
	`, t.UserID, t.Token)
	if err != nil {
		return fmt.Errorf("failed to save fcm token: %w", err)
	}
	return nil
}

func (r *repository) CreateGrievance(ctx context.Context, g *model.Grievance) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO grievances (id, user_id, category, subject, body, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, g.ID, g.UserID, g.Category, g.Subject, g.Body, g.Status, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert grievance: %w", err)
	}
	return nil
}

// ListGrievances returns every grievance when userID is empty (admin view),
// otherwise only the user's own.
func (r *repository) ListGrievances(ctx context.Context, userID string) ([]model.Grievance, error) {
	query := `
		SELECT id, user_id, category, subject, body, status, created_at, updated_at
		FROM grievances
	`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list grievances: %w", err)
	}
	defer rows.Close()

	var list []model.Grievance
	for rows.Next() {
		var g model.Grievance
		if err := rows.Scan(&g.ID, &g.UserID, &g.Category, &g.Subject, &g.Body, &g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan grievance: %w", err)
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

func (r *repository) UpdateGrievanceStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE grievances SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update grievance status: %w", err)
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

func (r *repository) ListTransportRoutes(ctx context.Context) ([]model.TransportRoute, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, stops, first_departure, last_departure, frequency_minutes, updated_at
		FROM transport_routes ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transport routes: %w", err)
	}
	defer rows.Close()

	var routes []model.TransportRoute
	for rows.Next() {
		var rt model.TransportRoute
		var stops string
		if err := rows.Scan(&rt.ID, &rt.Name, &stops, &rt.FirstDeparture, &rt.LastDeparture, &rt.FrequencyMinutes, &rt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transport route: %w", err)
		}
		if err := decodeStrings(stops, &rt.Stops); err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

func (r *repository) UpsertTransportRoute(ctx context.Context, rt *model.TransportRoute) error {
	stops, err := encodeStrings(rt.Stops)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transport_routes (id, name, stops, first_departure, last_departure, frequency_minutes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			stops = EXCLUDED.stops,
			first_departure = EXCLUDED.first_departure,
			last_departure = EXCLUDED.last_departure,
			frequency_minutes = EXCLUDED.frequency_minutes,
			updated_at = NOW()
	`, rt.ID, rt.Name, stops, rt.FirstDeparture, rt.LastDeparture, rt.FrequencyMinutes)
	if err != nil {
		return fmt.Errorf("failed to upsert transport route: %w", err)
	}
	return nil
}
