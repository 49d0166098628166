package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/bootstrap"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))
	worker.StartHistoryWorker(service.NewHistoryRecorder(dispatcher, stores.History, logger))

	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo:  stores.Complaints,
		ProfileRepo:    stores.Profiles,
		HistoryRepo:    stores.History,
		Blobs:          stores.Attachments,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})
	profileService := service.NewProfileService(stores.Profiles, stores.Avatars, metrics, logger, cfg.Storage.MaxUploadBytes)
	dashboardService := service.NewDashboardService(stores.Complaints, stores.Profiles, cfg.Dashboard.RecentLimit)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, profileService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
		// multipart overhead on top of the file itself
		BodyLimit: cfg.Storage.MaxUploadBytes + 64<<10,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, stores.Postgres, stores.Redis),
		Complaints:     handlers.NewComplaintsHandler(complaintService, cfg.Storage.MaxUploadBytes),
		Profiles:       handlers.NewProfilesHandler(profileService, cfg.Storage.MaxUploadBytes),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Metrics:        metrics,
		AuthMiddleware: authMiddleware.Handle,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", zap.Error(err))
	}
}
