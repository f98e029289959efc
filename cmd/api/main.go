package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pcd-jobs-backend/config"
	_ "pcd-jobs-backend/docs" // Important for Swagger
	"pcd-jobs-backend/internal/delivery/http/middleware"
	v1 "pcd-jobs-backend/internal/delivery/http/v1"
	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/internal/notification"
	"pcd-jobs-backend/internal/repository/postgres"
	"pcd-jobs-backend/internal/repository/rediscache"
	"pcd-jobs-backend/internal/usecase"
	"pcd-jobs-backend/pkg/database"
	"pcd-jobs-backend/pkg/email"
	"pcd-jobs-backend/pkg/logger"
	redisclient "pcd-jobs-backend/pkg/redis"
	"pcd-jobs-backend/pkg/validation"

	"github.com/redis/go-redis/v9"
)

// @title           PCD Jobs API
// @version         1.0
// @description     Job board for candidates with disabilities: posting lifecycle, medical review and applications.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting PCD jobs backend", "port", cfg.Port)

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, database.PoolOptions{
		MaxConns: int32(cfg.DBMaxConns),
		MinConns: int32(cfg.DBMinConns),
	})
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, dbPool); err != nil {
			logger.Log.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// 4. Setup Redis (optional)
	rdb, err := redisclient.NewClient(ctx, redisclient.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	switch {
	case errors.Is(err, redisclient.ErrNotConfigured):
		rdb = nil
	case err != nil:
		logger.Log.Warn("Redis unavailable - running without cache and event publishing", "error", err)
		rdb = nil
	default:
		defer rdb.Close()
	}

	// 5. Setup Repositories
	tx := postgres.NewTransactor(dbPool)
	postingRepo := postgres.NewPostingRepository(dbPool)
	evalRepo := postgres.NewEvaluationRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	conversationRepo := postgres.NewConversationRepository(dbPool)
	actorRepo := postgres.NewActorRepository(dbPool)
	var categoryRepo domain.CategoryRepository = postgres.NewCategoryRepository(dbPool)
	if rdb != nil {
		categoryRepo = rediscache.NewCategoryCache(categoryRepo, rdb, cfg.CategoryCacheTTL)
	}

	// 6. Setup Notifications (delivered off the request path)
	notifier := notification.NewDispatcher(buildNotifier(cfg, rdb), notification.DispatcherOptions{
		QueueSize: cfg.NotifyQueueSize,
		Timeout:   cfg.NotifyTimeout,
	})

	// 7. Setup UseCases
	validate := validation.New()
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	postingUC := usecase.NewPostingUsecase(tx, postingRepo, evalRepo, categoryUC, notifier, validate)
	reviewUC := usecase.NewReviewUsecase(tx, postingRepo, evalRepo, categoryUC, notifier, validate,
		time.Duration(cfg.DoctorStatsWindowDays)*24*time.Hour)
	applicationUC := usecase.NewApplicationUsecase(tx, applicationRepo, postingRepo, evalRepo, conversationRepo, notifier, validate)
	conversationUC := usecase.NewConversationUsecase(applicationRepo, postingRepo, conversationRepo, validate)

	probes := map[string]usecase.HealthProbe{
		"database": dbPool.Ping,
		"redis":    nil,
	}
	var limiter *middleware.RateLimiter
	if rdb != nil {
		probes["redis"] = func(ctx context.Context) error { return redisclient.HealthCheck(ctx, rdb) }
		limiter = middleware.NewRateLimiter(rdb)
	} else {
		limiter = middleware.NewRateLimiter(nil)
	}
	healthUC := usecase.NewHealthUsecase(probes)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		CategoryUC:     categoryUC,
		PostingUC:      postingUC,
		ReviewUC:       reviewUC,
		ApplicationUC:  applicationUC,
		ConversationUC: conversationUC,
		HealthUC:       healthUC,
		ActorRepo:      actorRepo,
		RateLimiter:    limiter,
		Config:         cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	if err := notifier.Close(shutdownCtx); err != nil {
		logger.Log.Warn("Pending notifications dropped", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// buildNotifier fans events out to Redis pub/sub and e-mail, whichever is configured
func buildNotifier(cfg *config.Config, rdb *redis.Client) domain.Notifier {
	var notifiers notification.Multi

	if rdb != nil {
		notifiers = append(notifiers, notification.NewRedisPublisher(rdb, cfg.NotifyChannel))
	}

	emailService := email.NewEmailService(email.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
	})
	if emailService.IsConfigured() && cfg.NotifyEmailTo != "" {
		notifiers = append(notifiers, notification.NewEmailNotifier(emailService, cfg.NotifyEmailTo))
	} else {
		logger.Log.Warn("Email service not fully configured - e-mail notifications disabled")
	}

	if len(notifiers) == 0 {
		return notification.Noop{}
	}
	return notifiers
}
