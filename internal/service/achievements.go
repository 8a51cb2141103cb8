package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"activity-points/internal/condition"
	"activity-points/internal/metrics"
	"activity-points/internal/model"
	"activity-points/internal/notify"
	"activity-points/internal/repository"
)

// AchievementService evaluates unlock conditions and awards
// achievements. Awarding is idempotent per (user, achievement) pair and
// every award reconciles the user's balances before the next condition
// is evaluated.
type AchievementService struct {
	users         *repository.UserRepository
	registrations *repository.RegistrationRepository
	achievements  *repository.AchievementRepository
	orders        *repository.OrderRepository
	points        *PointsService
	notifier      notify.Notifier
	defaults      condition.Defaults
}

// NewAchievementService creates a new AchievementService instance.
func NewAchievementService(
	users *repository.UserRepository,
	registrations *repository.RegistrationRepository,
	achievements *repository.AchievementRepository,
	orders *repository.OrderRepository,
	points *PointsService,
	notifier notify.Notifier,
	defaults condition.Defaults,
) *AchievementService {
	return &AchievementService{
		users:         users,
		registrations: registrations,
		achievements:  achievements,
		orders:        orders,
		points:        points,
		notifier:      notifier,
		defaults:      defaults,
	}
}

// progress loads the current counter snapshot conditions are evaluated
// against.
func (s *AchievementService) progress(ctx context.Context, userID int64) (condition.Progress, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return condition.Progress{}, err
	}

	attended, err := s.registrations.CountAttended(ctx, userID)
	if err != nil {
		return condition.Progress{}, err
	}

	held, err := s.achievements.CountHeld(ctx, userID)
	if err != nil {
		return condition.Progress{}, err
	}

	purchases, err := s.orders.CountActive(ctx, userID)
	if err != nil {
		return condition.Progress{}, err
	}

	return condition.Progress{
		AttendedEvents:    attended,
		TotalEarnedPoints: user.TotalEarnedPoints,
		AchievementsHeld:  held,
		Purchases:         purchases,
	}, nil
}

// FindNewlyQualifying returns the achievements with requirement text
// the user does not yet hold but whose condition their current state
// satisfies.
func (s *AchievementService) FindNewlyQualifying(ctx context.Context, userID int64) ([]*model.Achievement, error) {
	progress, err := s.progress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find qualifying for user %d: %w", userID, err)
	}

	candidates, err := s.achievements.ListUnheldWithRequirements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find qualifying for user %d: %w", userID, err)
	}

	var qualifying []*model.Achievement
	for _, a := range candidates {
		if a.Requirements == nil {
			continue
		}
		cond := condition.ParseWithDefaults(*a.Requirements, s.defaults)
		if cond.Met(progress) {
			qualifying = append(qualifying, a)
		}
	}

	return qualifying, nil
}

// CheckAndAwardAll awards every achievement the user newly qualifies
// for and returns the ones awarded in this call.
//
// The evaluation loops to a fixed point: an award raises the user's
// lifetime points, which can qualify further achievements within the
// same call. Termination is guaranteed because awarded achievements
// drop out of the candidate set and are never re-awarded. A second
// immediate call with no intervening state change returns nil.
func (s *AchievementService) CheckAndAwardAll(ctx context.Context, userID int64) ([]*model.Achievement, error) {
	var awarded []*model.Achievement

	for {
		qualifying, err := s.FindNewlyQualifying(ctx, userID)
		if err != nil {
			return awarded, err
		}

		newThisPass := 0
		for _, a := range qualifying {
			inserted, err := s.achievements.Award(ctx, userID, a.ID)
			if err != nil {
				// Candidate may have been deleted since it was listed;
				// skip it rather than abort the batch.
				log.Warn().Err(err).
					Int64("user_id", userID).
					Int64("achievement_id", a.ID).
					Msg("Skipping achievement candidate")
				continue
			}
			if !inserted {
				// Concurrent process awarded it first.
				continue
			}

			if _, err := s.points.Reconcile(ctx, userID); err != nil {
				return awarded, fmt.Errorf("reconcile after award of achievement %d: %w", a.ID, err)
			}

			s.emit(ctx, userID, a)
			metrics.AchievementsAwarded.Inc()
			awarded = append(awarded, a)
			newThisPass++
		}

		if newThisPass == 0 {
			return awarded, nil
		}
	}
}

// Grant manually awards an achievement, e.g. from an admin action.
// Returns false without error if the user already holds it.
func (s *AchievementService) Grant(ctx context.Context, userID, achievementID int64) (bool, error) {
	achievement, err := s.achievements.GetByID(ctx, achievementID)
	if err != nil {
		return false, fmt.Errorf("grant achievement %d: %w", achievementID, err)
	}

	inserted, err := s.achievements.Award(ctx, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("grant achievement %d: %w", achievementID, err)
	}
	if !inserted {
		return false, nil
	}

	if _, err := s.points.Reconcile(ctx, userID); err != nil {
		return true, err
	}

	s.emit(ctx, userID, achievement)
	return true, nil
}

// Revoke removes an achievement from a user and reconciles their
// balances. Returns false without error if the user did not hold it.
func (s *AchievementService) Revoke(ctx context.Context, userID, achievementID int64) (bool, error) {
	removed, err := s.achievements.Revoke(ctx, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("revoke achievement %d: %w", achievementID, err)
	}
	if !removed {
		return false, nil
	}

	if _, err := s.points.Reconcile(ctx, userID); err != nil {
		return true, err
	}
	return true, nil
}

// emit hands an award notification to the external collaborator.
// Delivery failures are logged and never abort the award.
func (s *AchievementService) emit(ctx context.Context, userID int64, a *model.Achievement) {
	n := model.Notification{
		UserID:    userID,
		Type:      model.NotificationAchievementEarned,
		Title:     a.Title,
		Message:   fmt.Sprintf("Поздравляем! Вы получили достижение «%s» (+%d баллов)", a.Title, a.Points),
		RelatedID: a.ID,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Warn().Err(err).
			Int64("user_id", userID).
			Int64("achievement_id", a.ID).
			Msg("Failed to emit award notification")
	}
}
