package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/divebase/divebase/config"
	"github.com/divebase/divebase/internal/http/chi"
	"github.com/divebase/divebase/metrics"
	"github.com/divebase/divebase/webhook"
	"github.com/divebase/divebase/webhook/postgres"
	redisrepo "github.com/divebase/divebase/webhook/redis"
)

const shutdownTimeout = 30 * time.Second

// Retention sweeps are cheap; once a day is plenty
const cleanupInterval = 24 * time.Hour

/* The worker is the scheduler collaborator of the delivery engine: it owns
 * "when" (the polling loop), while the webhook service owns "what happens"
 * on each attempt. It also serves the ops API (health, metrics, delivery
 * administration) on the configured port.
 */

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "divebase-worker").Logger()

	cfg, err := config.GetConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("loading config")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	repo, redisRepo, err := newRepository(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to storage")
	}
	defer repo.Close(ctx)

	service := webhook.NewService(repo)
	service.Timeout = cfg.DeliveryTimeout()
	service.Client.Timeout = cfg.DeliveryTimeout()
	service.Logger = logger

	collector := newCollector(repo, redisRepo)
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		logger.Fatal().Err(err).Msg("creating metrics exporter")
	}
	defer exporter.Shutdown(context.Background())

	workerID := uuid.New().String()
	go runLoop(ctx, cfg, service, redisRepo, workerID, logger)

	r := chi.Handlers(ctx, service, exporter.ServeHTTP())
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)

	logger.Info().Str("worker_id", workerID).Str("port", cfg.Port).Msg("worker started")
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("serving ops API")
	}
	if err := <-errShutdown; err != nil {
		logger.Error().Err(err).Msg("shutting down")
	}
}

// runLoop polls for due deliveries and sweeps old history until the context
// is cancelled
func runLoop(ctx context.Context, cfg *config.Config, service *webhook.Service, redisRepo *redisrepo.Repository, workerID string, logger zerolog.Logger) {
	ticker := time.NewTicker(cfg.WorkerInterval())
	defer ticker.Stop()

	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()

	heartbeat(ctx, redisRepo, workerID, "idle")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			heartbeat(ctx, redisRepo, workerID, "processing")

			result, err := service.ProcessPending(ctx, cfg.BatchLimit)
			if err != nil {
				logger.Error().Err(err).Msg("processing pending deliveries")
			} else if result.Success+result.Failed > 0 {
				logger.Info().Int("success", result.Success).Int("failed", result.Failed).Msg("processed batch")
			}

			heartbeat(ctx, redisRepo, workerID, "idle")
		case <-cleanup.C:
			removed, err := service.Cleanup(ctx, cfg.RetentionDays)
			if err != nil {
				logger.Error().Err(err).Msg("cleaning up old deliveries")
			} else {
				logger.Info().Int64("removed", removed).Msg("retention sweep")
			}
		}
	}
}

// heartbeat is a no-op when the backend has no heartbeat support
func heartbeat(ctx context.Context, redisRepo *redisrepo.Repository, workerID, status string) {
	if redisRepo == nil {
		return
	}
	_ = redisRepo.SetWorkerHeartbeat(ctx, workerID, status)
}

/* newRepository builds the configured storage backend. The second return is
 * non-nil only for redis, which additionally supports worker heartbeats.
 */
func newRepository(ctx context.Context, cfg *config.Config) (webhook.Repository, *redisrepo.Repository, error) {
	switch cfg.StorageBackend {
	case "redis":
		repo, err := redisrepo.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	default:
		repo, err := postgres.NewRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		return repo, nil, nil
	}
}

func newCollector(repo webhook.Repository, redisRepo *redisrepo.Repository) metrics.Collector {
	source, _ := repo.(metrics.DeliverySource)

	var workers metrics.WorkerSource
	if redisRepo != nil {
		workers = heartbeatSource{repo: redisRepo}
	}

	return metrics.NewStoreCollector(source, workers)
}

// heartbeatSource adapts redis worker heartbeats to the metrics model
type heartbeatSource struct {
	repo *redisrepo.Repository
}

func (s heartbeatSource) ActiveWorkers(ctx context.Context) ([]metrics.WorkerInfo, error) {
	heartbeats, err := s.repo.GetActiveWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting active workers: %w", err)
	}

	workers := make([]metrics.WorkerInfo, 0, len(heartbeats))
	for _, hb := range heartbeats {
		workers = append(workers, metrics.WorkerInfo{
			WorkerID:      hb.WorkerID,
			Status:        hb.Status,
			LastHeartbeat: hb.LastHeartbeat,
		})
	}

	return workers, nil
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	errShutdown <- server.Shutdown(ctxTimeout)
}
