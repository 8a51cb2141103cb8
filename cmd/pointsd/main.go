// Package main is the entry point for the points maintenance daemon.
// It periodically recomputes every student's derived balances and
// sweeps for newly earned achievements, and exposes Prometheus metrics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"activity-points/internal/condition"
	"activity-points/internal/config"
	"activity-points/internal/metrics"
	"activity-points/internal/notify"
	"activity-points/internal/pkg/db"
	"activity-points/internal/pkg/lock"
	"activity-points/internal/repository"
	"activity-points/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	registrationRepo := repository.NewRegistrationRepository(dbPool.Pool)
	achievementRepo := repository.NewAchievementRepository(dbPool.Pool)
	orderRepo := repository.NewOrderRepository(dbPool.Pool)

	// Initialize services
	userLock := lock.NewUserLock()
	pointsService := service.NewPointsService(userRepo, registrationRepo, achievementRepo, orderRepo, userLock)
	achievementService := service.NewAchievementService(
		userRepo,
		registrationRepo,
		achievementRepo,
		orderRepo,
		pointsService,
		notify.NewLogNotifier(log.Logger),
		condition.Defaults{
			EventCount:       cfg.Conditions.EventCount,
			PointsThreshold:  cfg.Conditions.PointsThreshold,
			AchievementCount: cfg.Conditions.AchievementCount,
			PurchaseCount:    cfg.Conditions.PurchaseCount,
		},
	)

	// Serve metrics and health endpoints
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbPool.HealthCheck(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux}
	go func() {
		log.Info().Str("addr", cfg.Server.MetricsAddr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	log.Info().
		Dur("interval", cfg.Reconcile.SweepInterval).
		Msg("Starting reconciliation sweep loop")

	runSweep(ctx, userRepo, pointsService, achievementService)

	ticker := time.NewTicker(cfg.Reconcile.SweepInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ticker.C:
			runSweep(ctx, userRepo, pointsService, achievementService)
		case <-ctx.Done():
			break loop
		}
	}

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Metrics server shutdown failed")
	}
}

// runSweep performs one full maintenance pass: recompute every
// student's balances, then evaluate achievement unlocks for each.
func runSweep(
	ctx context.Context,
	userRepo *repository.UserRepository,
	pointsService *service.PointsService,
	achievementService *service.AchievementService,
) {
	start := time.Now()

	reconciled, err := pointsService.ReconcileAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Full reconcile failed")
		return
	}

	ids, err := userRepo.ListStudentIDs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list students for award sweep")
		return
	}

	awardedTotal := 0
	for _, id := range ids {
		awarded, err := achievementService.CheckAndAwardAll(ctx, id)
		if err != nil {
			log.Warn().Err(err).Int64("user_id", id).Msg("Award sweep failed for user")
			continue
		}
		awardedTotal += len(awarded)
	}

	metrics.SweepRuns.Inc()
	log.Info().
		Int("reconciled", reconciled).
		Int("awarded", awardedTotal).
		Dur("took", time.Since(start)).
		Msg("Sweep complete")
}
