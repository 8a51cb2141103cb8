package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"activity-points/internal/model"
)

// RegistrationRepository handles event registration persistence and the
// attended-points read side of the ledger.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository creates a new RegistrationRepository instance.
func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// Create registers a user for an event with the given status.
func (r *RegistrationRepository) Create(ctx context.Context, userID, eventID int64, status model.RegistrationStatus) (*model.EventRegistration, error) {
	const query = `
		INSERT INTO event_registrations (user_id, event_id, status, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, user_id, event_id, status, created_at
	`

	var reg model.EventRegistration
	err := r.pool.QueryRow(ctx, query, userID, eventID, status).Scan(
		&reg.ID,
		&reg.UserID,
		&reg.EventID,
		&reg.Status,
		&reg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return &reg, nil
}

// SetStatus updates a registration's status, e.g. when attendance is
// confirmed. The caller must reconcile the user afterwards.
func (r *RegistrationRepository) SetStatus(ctx context.Context, registrationID int64, status model.RegistrationStatus) error {
	const query = `UPDATE event_registrations SET status = $2 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, registrationID, status)
	if err != nil {
		return fmt.Errorf("failed to set registration status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("registration %d not found", registrationID)
	}
	return nil
}

// SumAttendedPoints returns the total points of every event the user
// attended, valued at the event's current point value. Users with no
// attended registrations yield 0.
func (r *RegistrationRepository) SumAttendedPoints(ctx context.Context, userID int64) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(e.points), 0)
		FROM event_registrations er
		JOIN events e ON e.id = er.event_id
		WHERE er.user_id = $1 AND er.status = $2
	`

	var sum int64
	err := r.pool.QueryRow(ctx, query, userID, model.RegistrationAttended).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum attended points: %w", err)
	}
	return sum, nil
}

// CountAttended returns the number of events the user attended.
func (r *RegistrationRepository) CountAttended(ctx context.Context, userID int64) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM event_registrations
		WHERE user_id = $1 AND status = $2
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, userID, model.RegistrationAttended).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attended registrations: %w", err)
	}
	return count, nil
}

// AttendeeIDs returns the distinct users with an attended registration
// on the given event. Used to backfill balances after an event's point
// value is edited.
func (r *RegistrationRepository) AttendeeIDs(ctx context.Context, eventID int64) ([]int64, error) {
	const query = `
		SELECT DISTINCT user_id
		FROM event_registrations
		WHERE event_id = $1 AND status = $2
		ORDER BY user_id
	`

	rows, err := r.pool.Query(ctx, query, eventID, model.RegistrationAttended)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan attendee id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendees: %w", err)
	}

	return ids, nil
}
