package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"activity-points/internal/model"
)

// OrderRepository handles shop order persistence and the spend read
// side of the ledger.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository instance.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create creates a new order for a user.
func (r *OrderRepository) Create(ctx context.Context, userID, totalAmount int64, status model.OrderStatus) (*model.Order, error) {
	const query = `
		INSERT INTO orders (user_id, total_amount, status, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, user_id, total_amount, status, created_at
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, query, userID, totalAmount, status).Scan(
		&order.ID,
		&order.UserID,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return &order, nil
}

// SetStatus updates an order's fulfillment status. The caller must
// reconcile the user afterwards when moving to or from cancelled.
func (r *OrderRepository) SetStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	const query = `UPDATE orders SET status = $2 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, orderID, status)
	if err != nil {
		return fmt.Errorf("failed to set order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %d not found", orderID)
	}
	return nil
}

// SumSpent returns the total amount over all non-cancelled orders for
// the user. Points are held the instant an order is placed, so every
// fulfillment status except cancelled counts.
func (r *OrderRepository) SumSpent(ctx context.Context, userID int64) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE user_id = $1 AND status <> $2
	`

	var sum int64
	err := r.pool.QueryRow(ctx, query, userID, model.OrderCancelled).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum spent points: %w", err)
	}
	return sum, nil
}

// CountActive returns the number of non-cancelled orders for the user.
func (r *OrderRepository) CountActive(ctx context.Context, userID int64) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM orders
		WHERE user_id = $1 AND status <> $2
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, userID, model.OrderCancelled).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
