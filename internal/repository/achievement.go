package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"activity-points/internal/model"
)

// ErrAchievementNotFound is returned when an achievement does not exist.
var ErrAchievementNotFound = errors.New("achievement not found")

// AchievementRepository handles achievement definitions and the
// per-user award rows.
type AchievementRepository struct {
	pool *pgxpool.Pool
}

// NewAchievementRepository creates a new AchievementRepository instance.
func NewAchievementRepository(pool *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{pool: pool}
}

const achievementColumns = `id, title, points, requirements, created_at`

func scanAchievement(row pgx.Row) (*model.Achievement, error) {
	var a model.Achievement
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Points,
		&a.Requirements,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAchievementNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create creates a new achievement definition. A nil requirements value
// makes it admin-awarded only.
func (r *AchievementRepository) Create(ctx context.Context, title string, points int64, requirements *string) (*model.Achievement, error) {
	const query = `
		INSERT INTO achievements (title, points, requirements, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING ` + achievementColumns

	a, err := scanAchievement(r.pool.QueryRow(ctx, query, title, points, requirements))
	if err != nil {
		return nil, fmt.Errorf("failed to create achievement: %w", err)
	}
	return a, nil
}

// GetByID retrieves an achievement by ID.
func (r *AchievementRepository) GetByID(ctx context.Context, achievementID int64) (*model.Achievement, error) {
	const query = `SELECT ` + achievementColumns + ` FROM achievements WHERE id = $1`

	a, err := scanAchievement(r.pool.QueryRow(ctx, query, achievementID))
	if err != nil {
		if errors.Is(err, ErrAchievementNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get achievement: %w", err)
	}
	return a, nil
}

// SetPoints changes an achievement's point value. The caller must follow
// up with a scoped reconcile over current holders.
func (r *AchievementRepository) SetPoints(ctx context.Context, achievementID, points int64) error {
	const query = `UPDATE achievements SET points = $2 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, achievementID, points)
	if err != nil {
		return fmt.Errorf("failed to set achievement points: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAchievementNotFound
	}
	return nil
}

// SumAwardedPoints returns the total points of every achievement the
// user holds, valued at the achievement's current point value.
func (r *AchievementRepository) SumAwardedPoints(ctx context.Context, userID int64) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(a.points), 0)
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = $1
	`

	var sum int64
	err := r.pool.QueryRow(ctx, query, userID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum awarded points: %w", err)
	}
	return sum, nil
}

// CountHeld returns how many achievements the user currently holds.
func (r *AchievementRepository) CountHeld(ctx context.Context, userID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM user_achievements WHERE user_id = $1`

	var count int64
	err := r.pool.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count held achievements: %w", err)
	}
	return count, nil
}

// ListUnheldWithRequirements returns achievements carrying requirement
// text that the user does not already hold. These are the candidates for
// automatic awarding; admin-only achievements (null or empty
// requirements) never appear here.
func (r *AchievementRepository) ListUnheldWithRequirements(ctx context.Context, userID int64) ([]*model.Achievement, error) {
	const query = `
		SELECT ` + achievementColumns + `
		FROM achievements a
		WHERE a.requirements IS NOT NULL AND a.requirements <> ''
		  AND NOT EXISTS (
			SELECT 1 FROM user_achievements ua
			WHERE ua.user_id = $1 AND ua.achievement_id = a.id
		  )
		ORDER BY a.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate achievements: %w", err)
	}
	defer rows.Close()

	var achievements []*model.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}

	return achievements, nil
}

// Award inserts a user-achievement row. Returns false without error if
// the user already holds the achievement: the primary key on
// (user_id, achievement_id) makes concurrent award attempts safe.
func (r *AchievementRepository) Award(ctx context.Context, userID, achievementID int64) (bool, error) {
	const query = `
		INSERT INTO user_achievements (user_id, achievement_id, awarded_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("failed to award achievement: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Revoke removes a user-achievement row. Returns false if the user did
// not hold the achievement. The caller must reconcile afterwards.
func (r *AchievementRepository) Revoke(ctx context.Context, userID, achievementID int64) (bool, error) {
	const query = `
		DELETE FROM user_achievements
		WHERE user_id = $1 AND achievement_id = $2
	`

	result, err := r.pool.Exec(ctx, query, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke achievement: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// HolderIDs returns the users currently holding the given achievement.
// Used to backfill balances after the achievement's point value is
// edited.
func (r *AchievementRepository) HolderIDs(ctx context.Context, achievementID int64) ([]int64, error) {
	const query = `
		SELECT user_id FROM user_achievements
		WHERE achievement_id = $1
		ORDER BY user_id
	`

	rows, err := r.pool.Query(ctx, query, achievementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holders: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan holder id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holders: %w", err)
	}

	return ids, nil
}
