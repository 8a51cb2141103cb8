// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"activity-points/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository handles user data persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, name, role, admin_points, total_earned_points, points_available, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Role,
		&user.AdminPoints,
		&user.TotalEarnedPoints,
		&user.PointsAvailable,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user with zero admin points and zero balances.
func (r *UserRepository) Create(ctx context.Context, name string, role model.Role) (*model.User, error) {
	const query = `
		INSERT INTO users (name, role, admin_points, total_earned_points, points_available, created_at, updated_at)
		VALUES ($1, $2, 0, 0, 0, NOW(), NOW())
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, name, role))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListStudentIDs returns the IDs of every student account.
// Administrators carry no derived balances and are excluded.
func (r *UserRepository) ListStudentIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT id FROM users WHERE role = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, model.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan student id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating students: %w", err)
	}

	return ids, nil
}

// UpdateBalances persists both derived point fields in a single
// statement, so no reader can observe one updated field and one stale
// field. Only the balance reconciler calls this.
func (r *UserRepository) UpdateBalances(ctx context.Context, userID, totalEarned, available int64) (*model.User, error) {
	const query = `
		UPDATE users
		SET total_earned_points = $2, points_available = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID, totalEarned, available))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update balances: %w", err)
	}
	return user, nil
}

// SetAdminPoints sets the administrator adjustment value for a user.
// The caller is responsible for reconciling afterwards.
func (r *UserRepository) SetAdminPoints(ctx context.Context, userID, points int64) error {
	const query = `
		UPDATE users
		SET admin_points = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID, points)
	if err != nil {
		return fmt.Errorf("failed to set admin points: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
