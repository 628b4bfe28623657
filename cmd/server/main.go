package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/weabotalk/backend/internal/handlers"
	"github.com/anonto42/weabotalk/backend/internal/jobs"
	"github.com/anonto42/weabotalk/backend/internal/realtime"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"github.com/anonto42/weabotalk/backend/internal/router"
	"github.com/anonto42/weabotalk/backend/pkg/config"
	"github.com/anonto42/weabotalk/backend/pkg/firebase"
	"github.com/anonto42/weabotalk/backend/pkg/logger"
	"github.com/anonto42/weabotalk/backend/pkg/mailer"
	"github.com/anonto42/weabotalk/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() { _ = log.Sync() }()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Push sinks: Redis pub/sub for the websocket stream, FCM for devices.
	var sinks realtime.Multi
	var subscriber handlers.Subscriber
	if db.Redis != nil {
		redisBroadcaster := realtime.NewRedisBroadcaster(db.Redis)
		sinks = append(sinks, redisBroadcaster)
		subscriber = redisBroadcaster
	}
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Warn("Firebase disabled", zap.Error(err))
		} else {
			sinks = append(sinks, realtime.NewFirebaseBroadcaster(firebaseApp.MessagingClient))
			log.Info("Firebase Cloud Messaging enabled")
		}
	}

	dispatcher := jobs.NewDispatcher(log)
	var queue jobs.Queue = jobs.NewInlineQueue(dispatcher)
	if db.Redis != nil {
		queue = jobs.NewRedisQueue(db.Redis, jobs.DefaultQueueKey)
	}

	mailCfg := mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		AppHost:  cfg.AppHost,
	}
	accountMailer, err := mailer.New(mailer.NewDialer(mailCfg), mailCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	// Create Echo instance
	v := validators.NewValidator()
	e := echo.New()
	e.HideBanner = true
	e.Validator = v
	e.HTTPErrorHandler = handlers.ErrorHandler(log)

	// Setup global middleware
	config.SetupMiddleware(e, log)

	// Setup routes and dependencies
	err = router.SetupRoutes(e, router.Deps{
		DB:          db.Postgres,
		Images:      repositories.NewMongoPostImageRepository(db.Mongo.Database(cfg.MongoDatabase)),
		Queue:       queue,
		Dispatcher:  dispatcher,
		Broadcaster: sinks,
		Subscriber:  subscriber,
		Mailer:      accountMailer,
		Validator:   v,
		JWTSecret:   cfg.JWTSecret,
		Log:         log,
	})
	if err != nil {
		log.Fatal("Failed to set up routes", zap.Error(err))
	}

	workerDone := make(chan struct{})
	if db.Redis != nil {
		worker := jobs.NewWorker(db.Redis, jobs.DefaultQueueKey, dispatcher, log)
		go func() {
			defer close(workerDone)
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Job worker stopped", zap.Error(err))
			}
		}()
	} else {
		close(workerDone)
	}

	// Start server
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	<-workerDone
}
