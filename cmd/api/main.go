package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/queuedesk/queue-service/internal/api/http"
	"github.com/queuedesk/queue-service/internal/api/http/handlers"
	"github.com/queuedesk/queue-service/internal/auth"
	"github.com/queuedesk/queue-service/internal/config"
	"github.com/queuedesk/queue-service/internal/events"
	"github.com/queuedesk/queue-service/internal/observability"
	"github.com/queuedesk/queue-service/internal/persistence"
	"github.com/queuedesk/queue-service/internal/repository"
	"github.com/queuedesk/queue-service/internal/repository/memory"
	"github.com/queuedesk/queue-service/internal/service"
	"github.com/queuedesk/queue-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var repos repository.Repositories
	dependencies := map[string]handlers.Pinger{}
	if pg.Enabled() {
		repos = repository.NewPostgresRepositories(pg.PoolHandle())
		dependencies["postgres"] = pg
	} else {
		repos = memory.NewStore().Repositories()
	}

	var broadcaster service.Broadcaster
	if redis.Client != nil {
		broadcaster = redis.Client
		dependencies["redis"] = redis
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	queueService := service.NewQueueService(service.QueueDependencies{
		Tickets:    repos.Tickets,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		PendingTTL: cfg.Queue.PendingTTL(),
	})
	notificationService := service.NewNotificationService(dispatcher, broadcaster, cfg.Queue.EventsChannel, logger)
	authService := service.NewAuthService(cfg.Auth, repos.Users, tokens, logger)
	adminService := service.NewAdminService(repos.Services, repos.Counters, logger)

	worker.StartNotificationWorker(notificationService)

	var expiry *worker.ExpiryWorker
	if cfg.Queue.PendingTTL() > 0 {
		expiry, err = worker.NewExpiryWorker(queueService, logger, cfg.Queue.ExpirySchedule)
		if err != nil {
			logger.Fatal("failed to schedule ticket expiry", zap.Error(err))
		}
		expiry.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Tickets:        handlers.NewTicketsHandler(queueService),
		Queue:          handlers.NewQueueHandler(queueService, notificationService),
		Auth:           handlers.NewAuthHandler(authService),
		Services:       handlers.NewServicesHandler(adminService),
		Counters:       handlers.NewCountersHandler(adminService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if expiry != nil {
		expiry.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
