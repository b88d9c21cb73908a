package main

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/jobmate/dedup-service/internal/api"
	"github.com/jobmate/dedup-service/internal/config"
	"github.com/jobmate/dedup-service/internal/locks"
	"github.com/jobmate/dedup-service/internal/logger"
	"github.com/jobmate/dedup-service/internal/metrics"
	"github.com/jobmate/dedup-service/internal/repositories"
	"github.com/jobmate/dedup-service/internal/services"
	log "github.com/sirupsen/logrus"
	"os/signal"
	"syscall"
)

func newLocker(ctx context.Context, cfg *config.Config) locks.UserLocker {

	if cfg.Redis.URL == "" {
		log.Info("no redis configured, using in-process run lock")
		return locks.NewLocalLocker()
	}

	locker, err := locks.NewRedisLocker(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatalf("can't create redis locker: %v", err)
	}
	return locker
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.API.MetricsPort)

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	jobs := repositories.NewJobsRepository(dbContext.DB)
	duplicates := repositories.NewDuplicatesRepository(dbContext.DB)

	bus := EventBus.New()
	locker := newLocker(ctx, cfg)
	scorer := services.NewWeightedFieldScorer(cfg.Dedup)

	deduplicator, err := services.NewDeduplicator(bus, locker, jobs, duplicates, scorer, cfg.Dedup)
	if err != nil {
		log.Fatalf("can't create deduplicator: %v", err)
	}
	overrides := services.NewManualOverrides(locker, jobs, duplicates, scorer)

	sweeper, err := services.NewSweeper(jobs, deduplicator, cfg.Dedup.SweepCron)
	if err != nil {
		log.Fatalf("can't create sweeper: %v", err)
	}
	defer sweeper.Stop()

	server := api.NewServer(deduplicator, overrides, cfg.API.Port, cfg.Dedup.RunsPerMinutePerUser)
	go server.Run()

	<-ctx.Done()

	log.Info("Shutting down services...")
	if err = server.Stop(); err != nil {
		log.Errorf("failed to stop api server: %v", err)
	}
	log.Info("Services stopped.")
}
