package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrations holds the schema as idempotent statements. The CRUD layer
// that owns user/event/achievement editing runs against the same tables.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(16) NOT NULL DEFAULT 'student',
		admin_points BIGINT NOT NULL DEFAULT 0,
		total_earned_points BIGINT NOT NULL DEFAULT 0,
		points_available BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		points BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS event_registrations (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		status VARCHAR(16) NOT NULL DEFAULT 'registered',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS achievements (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		points BIGINT NOT NULL DEFAULT 0,
		requirements TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_achievements (
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		achievement_id BIGINT NOT NULL REFERENCES achievements(id) ON DELETE CASCADE,
		awarded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, achievement_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		total_amount BIGINT NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_event_registrations_event_status
		ON event_registrations (event_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_user_achievements_achievement
		ON user_achievements (achievement_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id)`,
}

// Migrate applies the database schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
