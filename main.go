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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"sciencejournal/config"
	"sciencejournal/controllers"
	"sciencejournal/repository"
	"sciencejournal/routes"
	"sciencejournal/services"
	"sciencejournal/storage"
)

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database
	driver, dsn, err := cfg.Database()
	if err != nil {
		logging.Fatal("Invalid database configuration", zap.Error(err))
	}
	db, err := repository.Open(driver, dsn)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.", zap.String("driver", driver))

	logging.Info("Running database auto-migration...")
	if err := repository.Migrate(db); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Setup Storage
	store, err := storage.NewDocumentStore(cfg)
	if err != nil {
		logging.Fatal("Document store creation failed", zap.Error(err))
	}
	logging.Info("Document store ready", zap.String("backend", cfg.StorageBackend))

	views := newViewCounter(cfg, logging)

	// Setup Services
	authService := services.NewAuthService(repository.NewUserRepository(db), cfg.JWTSecret, cfg.TokenTTL, logging)
	conferenceService := services.NewConferenceService(repository.NewConferenceRepository(db), logging)
	paperService := services.NewPaperService(db, store, views, logging, cfg.MaxUploadBytes())
	documentService := services.NewDocumentService(repository.NewDocumentRepository(db), store, logging)

	// Seeding
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := authService.SeedAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logging.Fatal("Admin seeding failed", zap.Error(err))
	}
	if err := conferenceService.SeedDefaults(seedCtx); err != nil {
		logging.Fatal("Conference seeding failed", zap.Error(err))
	}
	cancelSeed()

	// Setup Router
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes()
	routes.Setup(router, routes.Deps{
		DB:            db,
		Logger:        logging,
		Secret:        cfg.JWTSecret,
		MetricsAPIKey: cfg.MetricsAPIKey,
		Resolver:      authService,
		Papers:        controllers.NewPaperController(paperService, documentService, conferenceService, logging, cfg.AbstractPreviewLen),
		Conferences:   controllers.NewConferenceController(conferenceService, logging),
		Auth:          controllers.NewAuthController(authService, cfg.JWTSecret, logging),
	})

	// Setup Cron
	cronScheduler := cron.New()
	if _, err := cronScheduler.AddFunc(cfg.ViewSyncSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		count, err := paperService.SyncViews(ctx)
		if err != nil {
			logging.Error("View sync failed", zap.Error(err))
			return
		}
		if count > 0 {
			logging.Info("View sync completed", zap.Int("papers", count))
		}
	}); err != nil {
		logging.Fatal("Invalid VIEW_SYNC_SCHEDULE", zap.Error(err))
	}
	if _, err := cronScheduler.AddFunc(cfg.BacklogSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		pending, err := paperService.RefreshBacklog(ctx)
		if err != nil {
			logging.Error("Backlog refresh failed", zap.Error(err))
			return
		}
		logging.Info("Review backlog", zap.Int64("pending", pending))
	}); err != nil {
		logging.Fatal("Invalid BACKLOG_SCHEDULE", zap.Error(err))
	}
	cronScheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	<-cronScheduler.Stop().Done()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown failed", zap.Error(err))
	}
	// Restliche Aufrufe nicht verlieren
	if _, err := paperService.SyncViews(ctx); err != nil {
		logging.Error("Final view sync failed", zap.Error(err))
	}
	logging.Info("Server stopped")
}

// newViewCounter nutzt Redis, wenn REDIS_ADDR gesetzt ist, sonst einen Zähler im Prozess.
func newViewCounter(cfg *config.Config, logging *zap.Logger) services.ViewCounter {
	if cfg.RedisAddr == "" {
		logging.Info("REDIS_ADDR not set, counting paper views in memory")
		return services.NewMemoryViewCounter()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logging.Warn("Redis not reachable, counting paper views in memory", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		client.Close()
		return services.NewMemoryViewCounter()
	}
	logging.Info("Counting paper views in Redis", zap.String("addr", cfg.RedisAddr))
	return services.NewRedisViewCounter(client, logging)
}
