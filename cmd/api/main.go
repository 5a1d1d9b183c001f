package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Application Layer
	appService "organizer/internal/application/service"
	// Domain Layer
	"organizer/internal/domain/repository"

	// Infrastructure Layer
	redisKV "organizer/internal/infrastructure/cache/redis"
	"organizer/internal/infrastructure/database/sqlite"
	lineClient "organizer/internal/infrastructure/line"
	"organizer/internal/infrastructure/notifier"
	"organizer/internal/infrastructure/scheduler"

	// Interfaces Layer
	"organizer/internal/interfaces/api/handler"
	"organizer/internal/interfaces/api/router"

	// Packages
	"organizer/internal/pkg/config"
	appLogger "organizer/internal/pkg/logger"

	"github.com/go-redis/redis/v8"
	_ "github.com/joho/godotenv/autoload" // Automatically load .env file
	"gorm.io/gorm"
)

type closers struct {
	dispatcher appService.DispatcherService
	db         *gorm.DB
	redis      *redis.Client
}

func gracefulShutdown(apiServer *http.Server, c closers, timeout time.Duration, appLog appLogger.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	appLog.Info("Shutting down gracefully, press Ctrl+C again to force")

	// Stop the scheduler first so no reminder fires against a closed store
	appLog.Info("Stopping scheduler...")
	c.dispatcher.Stop()

	appLog.Info("Closing database connection...")
	if err := sqlite.CloseDB(c.db); err != nil {
		appLog.Error("Error closing database", err)
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			appLog.Error("Error closing redis client", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", err)
	}

	appLog.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog, err := appLogger.New(appLogger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer appLogger.Sync(appLog)
	appLog.Info("Logger initialized.")

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		appLog.Error("Invalid scheduler timezone", err)
		os.Exit(1)
	}

	// --- Infrastructure ---
	db, err := sqlite.NewDB(cfg.Database.URL, cfg.Database.LogLevel)
	if err != nil {
		appLog.Error("Failed to open database", err)
		os.Exit(1)
	}
	notificationRepo := sqlite.NewNotificationRepository(db)

	var (
		kvStore     repository.KeyValueStore
		redisClient *redis.Client
	)
	switch cfg.KV.Backend {
	case "redis":
		kvStore, redisClient, err = redisKV.NewKVStore(context.Background(), redisKV.Options{
			Addr:     cfg.KV.RedisAddr,
			Password: cfg.KV.RedisPassword,
			DB:       cfg.KV.RedisDB,
			Prefix:   "organizer:",
		})
		if err != nil {
			appLog.Error("Failed to connect key-value store", err)
			os.Exit(1)
		}
	default:
		kvStore = sqlite.NewKVStore(db)
	}
	appLog.Info(fmt.Sprintf("Database and %s key-value store initialized.", cfg.KV.Backend))

	var (
		line     *lineClient.Client
		delivery appService.Notifier
	)
	if cfg.Line.Enabled() {
		line, err = lineClient.NewClient(cfg.Line.ChannelSecret, cfg.Line.ChannelToken, cfg.Line.DefaultRecipient, kvStore, appLog)
		if err != nil {
			appLog.Error("Failed to create LINE client", err)
			os.Exit(1)
		}
		delivery = line
	} else {
		appLog.Warn("LINE credentials not set, reminders will be written to the log")
		delivery = notifier.NewLogNotifier(appLog)
	}

	cronScheduler := scheduler.NewScheduler(loc, appLog)

	// --- Application Services ---
	dispatcherSvc := appService.NewDispatcherService(cronScheduler, notificationRepo, delivery, loc, appLog)
	reminderSvc := appService.NewReminderService(kvStore, dispatcherSvc, appService.Policy{
		MinLead:      cfg.Scheduler.MinLead,
		MinStartLead: cfg.Scheduler.MinStartLead,
	}, loc, appLog)
	appLog.Info("Application services initialized.")

	// --- Initialize Schedules ---
	appLog.Info("Initializing reminder schedules...")
	if err := dispatcherSvc.InitializeSchedules(context.Background()); err != nil {
		// Log the error but continue starting the server
		appLog.Error("Failed to initialize schedules on startup", err)
	} else {
		appLog.Info("Reminder schedules initialized.")
	}

	// --- API Handlers ---
	routerCfg := &router.Config{
		ReminderHandler: handler.NewReminderHandler(reminderSvc, loc, appLog),
		Logger:          appLog,
	}
	if line != nil {
		routerCfg.LineHandler = handler.NewLineHandler(line, appLog)
	}
	echoRouter := router.NewRouter(routerCfg)

	// --- HTTP Server ---
	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      echoRouter,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// --- Start Server & Shutdown Handling ---
	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, closers{dispatcher: dispatcherSvc, db: db, redis: redisClient}, cfg.Server.ShutdownTimeout, appLog, done)

	appLog.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))
	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		appLog.Error("HTTP server ListenAndServe error", err)
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for graceful shutdown signal
	<-done
	appLog.Info("Graceful shutdown complete.")
}
