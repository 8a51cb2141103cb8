// Package service provides business logic implementations.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"activity-points/internal/metrics"
	"activity-points/internal/model"
	"activity-points/internal/pkg/lock"
	"activity-points/internal/repository"
)

// PointsService derives a user's two balance fields from the source
// tables and writes them back. It is the only legitimate writer of
// total_earned_points and points_available; any other code path
// touching those columns is a defect.
type PointsService struct {
	users         *repository.UserRepository
	registrations *repository.RegistrationRepository
	achievements  *repository.AchievementRepository
	orders        *repository.OrderRepository
	userLock      *lock.UserLock
}

// NewPointsService creates a new PointsService instance.
func NewPointsService(
	users *repository.UserRepository,
	registrations *repository.RegistrationRepository,
	achievements *repository.AchievementRepository,
	orders *repository.OrderRepository,
	userLock *lock.UserLock,
) *PointsService {
	return &PointsService{
		users:         users,
		registrations: registrations,
		achievements:  achievements,
		orders:        orders,
		userLock:      userLock,
	}
}

// computeBalances combines the three earning sources and the spend
// total into the two derived fields. The available balance is floored
// at zero: overspending is absorbed here, never surfaced as debt.
func computeBalances(eventPoints, achievementPoints, adminPoints, spent int64) model.Balance {
	total := eventPoints + achievementPoints + adminPoints
	available := total - spent
	if available < 0 {
		available = 0
	}
	return model.Balance{TotalEarned: total, Available: available}
}

// Reconcile recomputes and persists both derived balance fields for one
// user. The operation is idempotent: with unchanged source data a
// second call produces identical values. The per-user lock serializes
// the read-aggregate/write sequence within this process; cross-process
// races stay last-write-wins since values are always fully recomputed.
func (s *PointsService) Reconcile(ctx context.Context, userID int64) (model.Balance, error) {
	s.userLock.Lock(userID)
	defer s.userLock.Unlock(userID)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		metrics.ReconcileFailures.Inc()
		return model.Balance{}, fmt.Errorf("reconcile user %d: %w", userID, err)
	}

	eventPoints, err := s.registrations.SumAttendedPoints(ctx, userID)
	if err != nil {
		metrics.ReconcileFailures.Inc()
		return model.Balance{}, fmt.Errorf("reconcile user %d: %w", userID, err)
	}

	achievementPoints, err := s.achievements.SumAwardedPoints(ctx, userID)
	if err != nil {
		metrics.ReconcileFailures.Inc()
		return model.Balance{}, fmt.Errorf("reconcile user %d: %w", userID, err)
	}

	spent, err := s.orders.SumSpent(ctx, userID)
	if err != nil {
		metrics.ReconcileFailures.Inc()
		return model.Balance{}, fmt.Errorf("reconcile user %d: %w", userID, err)
	}

	balance := computeBalances(eventPoints, achievementPoints, user.AdminPoints, spent)

	if _, err := s.users.UpdateBalances(ctx, userID, balance.TotalEarned, balance.Available); err != nil {
		metrics.ReconcileFailures.Inc()
		return model.Balance{}, fmt.Errorf("reconcile user %d: %w", userID, err)
	}

	metrics.ReconcileRuns.Inc()
	log.Debug().
		Int64("user_id", userID).
		Int64("total_earned", balance.TotalEarned).
		Int64("available", balance.Available).
		Msg("Balances reconciled")

	return balance, nil
}

// SetAdminPoints stores a new administrator adjustment for the user and
// reconciles immediately so the derived fields reflect it.
func (s *PointsService) SetAdminPoints(ctx context.Context, userID, points int64) (model.Balance, error) {
	if err := s.users.SetAdminPoints(ctx, userID, points); err != nil {
		return model.Balance{}, fmt.Errorf("set admin points for user %d: %w", userID, err)
	}
	return s.Reconcile(ctx, userID)
}

// reconcileEach reconciles every listed user, continuing past single
// failures, and returns the number of successes. Order is irrelevant:
// there is no cross-user dependency and no transactional scope spanning
// users; a crash mid-run leaves stale users that the next trigger or
// sweep self-heals.
func (s *PointsService) reconcileEach(ctx context.Context, userIDs []int64) int {
	reconciled := 0
	for _, id := range userIDs {
		if _, err := s.Reconcile(ctx, id); err != nil {
			log.Warn().Err(err).Int64("user_id", id).Msg("Skipping user in bulk reconcile")
			continue
		}
		reconciled++
	}
	return reconciled
}

// ReconcileAll reconciles every student account. Used by administrative
// full-recompute actions and the maintenance sweep.
func (s *PointsService) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := s.users.ListStudentIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("reconcile all: %w", err)
	}
	return s.reconcileEach(ctx, ids), nil
}

// ReconcileForEvent reconciles every user with an attended registration
// on the event. Called after an event's point value is edited, so the
// change is backfilled to current attendees, not just future ones.
func (s *PointsService) ReconcileForEvent(ctx context.Context, eventID int64) (int, error) {
	ids, err := s.registrations.AttendeeIDs(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("reconcile for event %d: %w", eventID, err)
	}
	return s.reconcileEach(ctx, ids), nil
}

// ReconcileForAchievementEdit reconciles every user holding the
// achievement. Called after the achievement's point value is edited.
func (s *PointsService) ReconcileForAchievementEdit(ctx context.Context, achievementID int64) (int, error) {
	ids, err := s.achievements.HolderIDs(ctx, achievementID)
	if err != nil {
		return 0, fmt.Errorf("reconcile for achievement %d: %w", achievementID, err)
	}
	return s.reconcileEach(ctx, ids), nil
}
