package router

import (
	"fmt"

	"github.com/anonto42/weabotalk/backend/internal/handlers"
	"github.com/anonto42/weabotalk/backend/internal/jobs"
	"github.com/anonto42/weabotalk/backend/internal/middleware"
	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/realtime"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"github.com/anonto42/weabotalk/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the connections and sinks the routes are built on.
type Deps struct {
	DB          *gorm.DB
	Images      repositories.PostImageRepository
	Queue       jobs.Queue
	Dispatcher  *jobs.Dispatcher
	Broadcaster realtime.Broadcaster
	// Subscriber feeds the websocket stream; nil disables it.
	Subscriber handlers.Subscriber
	Mailer     services.AccountMailer
	Validator  services.StructValidator
	JWTSecret  string
	Log        *zap.Logger
}

// SetupRoutes migrates the schema, wires repositories, services and handlers,
// and registers the job handlers on d.Dispatcher.
func SetupRoutes(e *echo.Echo, d Deps) error {
	if err := models.AutoMigrate(d.DB); err != nil {
		return fmt.Errorf("auto migrate models: %w", err)
	}
	d.Log.Info("Auto-migrations completed for all models")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(d.DB)
	profileRepo := repositories.NewPostgresProfileRepository(d.DB)
	postRepo := repositories.NewPostgresPostRepository(d.DB)
	commentRepo := repositories.NewPostgresCommentRepository(d.DB)
	likeRepo := repositories.NewPostgresLikeRepository(d.DB)
	reactionRepo := repositories.NewPostgresReactionRepository(d.DB)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(d.DB)
	notificationRepo := repositories.NewPostgresNotificationRepository(d.DB)

	// --- Services ---
	notifier := services.NewNotifier(d.DB, notificationRepo, commentRepo, postRepo, d.Broadcaster, d.Log)
	notificationSvc := services.NewNotificationService(d.DB, notificationRepo, profileRepo, d.Log)
	friendshipSvc := services.NewFriendshipService(d.DB, friendshipRepo, userRepo, profileRepo, notificationRepo, notifier, d.Log)
	postSvc := services.NewPostService(d.DB, postRepo, d.Images, notificationRepo, d.Validator, d.Log)
	draftSvc := services.NewDraftService(postRepo, postSvc)
	searchSvc := services.NewSearchService(profileRepo, friendshipRepo)
	commentSvc := services.NewCommentService(d.DB, commentRepo, notificationRepo, profileRepo, postSvc, d.Queue, notifier, d.Validator, d.Log)
	likeSvc := services.NewLikeService(d.DB, likeRepo, notificationRepo, postSvc, notifier, d.Log)
	reactionSvc := services.NewReactionService(d.DB, reactionRepo, notificationRepo, postSvc, notifier, d.Validator, d.Log)
	accountSvc := services.NewAccountService(d.DB, userRepo, profileRepo, notificationRepo, d.Images, d.Queue, d.Mailer, d.Validator, d.Log)

	d.Dispatcher.Handle(jobs.KindCommentNotification, notifier.NotifyComment)
	d.Dispatcher.Handle(jobs.KindConfirmationMail, accountSvc.SendConfirmationMail)
	d.Dispatcher.Handle(jobs.KindResetPasswordMail, accountSvc.SendResetPasswordMail)
	d.Dispatcher.Handle(jobs.KindUnlockMail, accountSvc.SendUnlockMail)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(accountSvc, d.JWTSecret).RegisterAuthRoutes(authGroup)
	d.Log.Debug("Auth routes configured")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(d.JWTSecret))

	handlers.NewUserHandler(accountSvc, searchSvc, friendshipSvc).RegisterProfileRoutes(api)
	handlers.NewPostHandler(postSvc).RegisterPostRoutes(api)
	handlers.NewDraftHandler(draftSvc).RegisterDraftRoutes(api)
	handlers.NewFeedHandler(postSvc, likeSvc, profileRepo).RegisterFeedRoutes(api)
	handlers.NewFriendshipHandler(friendshipSvc).RegisterFriendshipRoutes(api)
	handlers.NewCommentHandler(commentSvc).RegisterCommentRoutes(api)
	handlers.NewLikeHandler(likeSvc).RegisterLikeRoutes(api)
	handlers.NewReactionHandler(reactionSvc).RegisterReactionRoutes(api)
	handlers.NewNotificationHandler(notificationSvc).RegisterNotificationRoutes(api)
	handlers.NewStreamHandler(d.Subscriber, d.Log).RegisterStreamRoutes(api)

	d.Log.Info("All routes configured", zap.Int("routes", len(e.Routes())))
	return nil
}
