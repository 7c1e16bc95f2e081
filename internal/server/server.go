// Package server contains the HTTP handlers for the application's API
// endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"vtelltales/internal/cache"
	"vtelltales/internal/config"
	"vtelltales/internal/database"
	"vtelltales/internal/featureflags"
	"vtelltales/internal/middleware"
	"vtelltales/internal/models"
	"vtelltales/internal/repository"
	"vtelltales/internal/service"
	"vtelltales/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager

	userRepo  repository.UserRepository
	storyRepo repository.StoryRepository
	feedRepo  repository.FeedRepository

	accounts      *service.AccountService
	stories       *service.StoryService
	feeds         *service.FeedService
	engagement    *service.EngagementService
	follows       *service.FollowService
	moderation    *service.ModerationService
	notifications *service.NotificationService
	media         storage.MediaStore
}

// NewServer creates a server instance, establishing the database and Redis
// connections itself.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server over already-initialized dependencies.
// Tests use it to run the full handler stack against an in-memory database.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	mediaDir := cfg.MediaDir
	if mediaDir == "" {
		mediaDir = "media"
	}
	media, err := storage.NewLocalStore(mediaDir)
	if err != nil {
		return nil, fmt.Errorf("media store init failed: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	storyRepo := repository.NewStoryRepository(db)
	feedRepo := repository.NewFeedRepository(db)
	followRepo := repository.NewFollowRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	modRepo := repository.NewModerationRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	notifier := service.NewNotificationService(notifRepo, followRepo)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("vtelltales-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       userRepo,
		storyRepo:      storyRepo,
		feedRepo:       feedRepo,
		accounts:       service.NewAccountService(userRepo, storyRepo, media, notifier, cfg),
		stories:        service.NewStoryService(storyRepo, feedRepo, media, notifier),
		feeds:          service.NewFeedService(feedRepo, modRepo),
		engagement:     service.NewEngagementService(reactionRepo, storyRepo, notifier),
		follows:        service.NewFollowService(followRepo, userRepo, notifier),
		moderation:     service.NewModerationService(modRepo, userRepo, storyRepo),
		notifications:  notifier,
		media:          media,
	}
	return s, nil
}

// SetupMiddleware configures the Fiber middleware chain.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit, so browser clients
	// still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute), s.Login)

	// Feeds. The global and top feeds serve anonymous viewers; the two
	// follow-graph feeds need one.
	feed := api.Group("/feed")
	feed.Get("/", middleware.OptionalAuth, s.GetGlobalFeed)
	feed.Get("/top", middleware.OptionalAuth, s.GetTopStories)
	feed.Get("/fan-of", middleware.AuthRequired, s.GetFanOfFeed)
	feed.Get("/became-fan", middleware.AuthRequired, s.GetBecameFanFeed)

	// Story reads accept an optional token: drafts and held stories are only
	// readable by their author and by admins, so the viewer matters.
	publicStories := api.Group("/stories")
	publicStories.Get("/types", s.GetStoryTypes)
	publicStories.Get("/:id/pages", middleware.OptionalAuth, s.GetStoryPages)
	publicStories.Get("/:id/comments", middleware.OptionalAuth, s.GetComments)
	publicStories.Get("/:id/summary", middleware.OptionalAuth, s.GetStorySummary)
	publicStories.Post("/:id/view", middleware.OptionalAuth, s.RecordView)
	publicStories.Get("/:id", middleware.OptionalAuth, s.GetStory)

	// Media files are public once uploaded.
	api.Get("/media/:ref", s.GetMedia)

	// Public user routes
	publicUsers := api.Group("/users")
	publicUsers.Get("/:id/stories", middleware.OptionalAuth, s.GetUserStories)
	publicUsers.Get("/:id/followers", s.GetFollowers)
	publicUsers.Get("/:id/following", s.GetFollowing)

	protected := api.Group("", middleware.AuthRequired)

	// Profile routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/:id/follow-status", s.GetFollowStatus)
	users.Post("/:id/follow", s.FollowUser)
	users.Delete("/:id/follow", s.UnfollowUser)
	users.Post("/:id/flag", s.ReportOrBlockUser)
	users.Delete("/:id/flag", s.UnblockUser)
	users.Get("/:id", s.GetUserProfile)

	// Story authoring
	stories := protected.Group("/stories")
	stories.Post("/", middleware.RateLimit(s.redis, 10, time.Minute), s.CreateStory)
	stories.Post("/:id/publish", s.PublishStory)
	stories.Post("/:id/pages", s.AddStoryPage)
	stories.Put("/:id/pages/:pageNumber", s.UpdateStoryPage)
	stories.Delete("/:id/pages/:pageNumber", s.DeleteStoryPage)

	// Engagement
	stories.Post("/:id/like", s.ToggleLike)
	stories.Post("/:id/bookmark", s.ToggleBookmark)
	stories.Post("/:id/comments", middleware.RateLimit(s.redis, 15, time.Minute), s.CreateComment)
	stories.Post("/:id/flag", s.ReportOrBlockStory)
	stories.Delete("/:id/flag", s.UnblockStory)
	stories.Put("/:id", s.UpdateStory)
	stories.Delete("/:id", s.DeleteStory)

	protected.Get("/bookmarks", s.GetBookmarks)

	// Media upload
	protected.Post("/media", middleware.RateLimit(s.redis, 20, time.Minute), s.UploadMedia)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.Get("/unread-count", s.GetUnreadCount)
	notifications.Get("/", s.GetNotifications)

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/reports/users", s.GetUserReports)
	admin.Get("/reports/stories", s.GetStoryReports)
	admin.Put("/users/:id/block-level", s.SetUserBlockLevel)
	admin.Delete("/users/:id", s.DeleteUserAccount)
	admin.Post("/stories/:id/hold", s.HoldStory)
	admin.Post("/stories/:id/release", s.ReleaseStory)
	admin.Delete("/comments/:id", s.DeleteComment)
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so a
// missing client degrades the report without failing it.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.isAdmin(c, userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required"))
		}
		return c.Next()
	}
}

// Start starts the server.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Telltales API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
