package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"activity-points/internal/model"
)

// ErrEventNotFound is returned when an event does not exist.
var ErrEventNotFound = errors.New("event not found")

// EventRepository handles event data persistence.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository instance.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Create creates a new event.
func (r *EventRepository) Create(ctx context.Context, title string, points int64) (*model.Event, error) {
	const query = `
		INSERT INTO events (title, points, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, title, points, created_at
	`

	var event model.Event
	err := r.pool.QueryRow(ctx, query, title, points).Scan(
		&event.ID,
		&event.Title,
		&event.Points,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

// GetByID retrieves an event by ID.
func (r *EventRepository) GetByID(ctx context.Context, eventID int64) (*model.Event, error) {
	const query = `SELECT id, title, points, created_at FROM events WHERE id = $1`

	var event model.Event
	err := r.pool.QueryRow(ctx, query, eventID).Scan(
		&event.ID,
		&event.Title,
		&event.Points,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

// SetPoints changes an event's point value. Existing attendees keep
// rows referencing the event, so the caller must follow up with a
// scoped reconcile to backfill their balances.
func (r *EventRepository) SetPoints(ctx context.Context, eventID, points int64) error {
	const query = `UPDATE events SET points = $2 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, eventID, points)
	if err != nil {
		return fmt.Errorf("failed to set event points: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}
