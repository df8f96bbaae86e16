package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campus360/internal/model"
)

func (r *repository) CreateFoodItem(ctx context.Context, item *model.FoodItem) error {
	query := `
		INSERT INTO food_items (id, name, category, price_cents, stock, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	item.Available = item.Stock > 0
	_, err := r.db.ExecContext(ctx, query, item.ID, item.Name, item.Category, item.PriceCents, item.Stock, item.Available)
	if err != nil {
		return fmt.Errorf("failed to insert food item: %w", err)
	}
	return nil
}

func (r *repository) UpdateFoodItem(ctx context.Context, item *model.FoodItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE food_items
		SET name = $1, category = $2, price_cents = $3, stock = $4, available = $5, updated_at = NOW()
		WHERE id = $6
	`, item.Name, item.Category, item.PriceCents, item.Stock, item.Stock > 0, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update food item: %w", err)
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

func (r *repository) ListFoodItems(ctx context.Context) ([]model.FoodItem, error) {
	query := `
		SELECT id, name, category, price_cents, stock, available, created_at, updated_at
		FROM food_items ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}
	defer rows.Close()

	var items []model.FoodItem
	for rows.Next() {
		var it model.FoodItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Category, &it.PriceCents, &it.Stock, &it.Available, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan food item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// PlaceOrderTx decrements stock for every line item under row locks; any
// shortage aborts the whole order. Prices and the total are taken from the
// locked rows, not the request.
func (r *repository) PlaceOrderTx(ctx context.Context, order *model.Order) error {
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

	var total int64
	for i := range order.Items {
		item := &order.Items[i]

		var stock int
		var price int64
		var name string
		err = tx.QueryRowContext(ctx, `
			SELECT name, price_cents, stock FROM food_items WHERE id = $1 FOR UPDATE
		`, item.FoodItemID).Scan(&name, &price, &stock)
		if err != nil {
			_ = tx.Rollback()
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock food item: %w", err)
		}

		if stock < item.Qty {
			_ = tx.Rollback()
			return ErrOutOfStock
		}

		stock -= item.Qty
		_, err = tx.ExecContext(ctx, `
			UPDATE food_items SET stock = $1, available = $2, updated_at = NOW() WHERE id = $3
		`, stock, stock > 0, item.FoodItemID)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		item.Name = name
		item.PriceCents = price
		total += price * int64(item.Qty)
	}
	order.TotalCents = total

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_cents, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, order.ID, order.UserID, order.TotalCents, order.Status, order.CreatedAt)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, food_item_id, name, qty, price_cents)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, item.FoodItemID, item.Name, item.Qty, item.PriceCents)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order transaction: %w", err)
	}
	return nil
}

func (r *repository) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	var o model.Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, total_cents, status, created_at, updated_at
		FROM orders WHERE id = $1
	`, orderID).Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT food_item_id, name, qty, price_cents FROM order_items WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.FoodItemID, &it.Name, &it.Qty, &it.PriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
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

func (r *repository) ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, total_cents, status, created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		itemRows, err := r.db.QueryContext(ctx, `
			SELECT food_item_id, name, qty, price_cents FROM order_items WHERE order_id = $1
		`, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list order items: %w", err)
		}
		for itemRows.Next() {
			var it model.OrderItem
			if err := itemRows.Scan(&it.FoodItemID, &it.Name, &it.Qty, &it.PriceCents); err != nil {
				itemRows.Close()
				return nil, fmt.Errorf("failed to scan order item: %w", err)
			}
			orders[i].Items = append(orders[i].Items, it)
		}
		itemRows.Close()
		if err := itemRows.Err(); err != nil {
			return nil, err
		}
	}
	return orders, nil
}
