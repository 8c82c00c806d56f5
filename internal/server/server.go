// Package server contains the HTTP handlers and route wiring for the DishSwap API.
package server

import (
	"context"
	"errors"
	"time"

	_ "dishswap/docs" // swagger docs
	"dishswap/internal/config"
	"dishswap/internal/events"
	"dishswap/internal/featureflags"
	"dishswap/internal/middleware"
	"dishswap/internal/models"
	"dishswap/internal/repository"
	"dishswap/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// Pinger reports whether the primary store is reachable.
type Pinger func(ctx context.Context) error

// Deps are the already-initialized dependencies a Server is built from.
type Deps struct {
	Repos     repository.Set
	Redis     *redis.Client
	Publisher events.Publisher
	// PingDB backs the readiness probe. Nil reports the database as unavailable.
	PingDB Pinger
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	redis          *redis.Client
	pingDB         Pinger
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	verifier       *middleware.TokenVerifier
	featureFlags   *featureflags.Manager

	userService     *service.UserService
	recipeService   *service.RecipeService
	commentService  *service.CommentService
	favoriteService *service.FavoriteService
}

// NewServer wires the services on top of deps.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if deps.Repos.Users == nil || deps.Repos.Recipes == nil || deps.Repos.Comments == nil || deps.Repos.Favorites == nil {
		return nil, errors.New("all repositories are required")
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	if cfg.IsProduction() {
		models.HideDetails = true
	}

	flags := featureflags.NewManager(cfg.FeatureFlags)
	images := service.NewImageService(cfg, flags)
	repos := deps.Repos

	return &Server{
		config:         cfg,
		redis:          deps.Redis,
		pingDB:         deps.PingDB,
		promMiddleware: middleware.InitMetrics("dishswap-api"),
		verifier:       middleware.NewTokenVerifier(cfg.JWTSecret),
		featureFlags:   flags,

		userService:     service.NewUserService(repos.Users, repos.Recipes, repos.Favorites, publisher, cfg.BcryptCost),
		recipeService:   service.NewRecipeService(repos.Recipes, images, publisher),
		commentService:  service.NewCommentService(repos.Comments, repos.Recipes, repos.Users, publisher),
		favoriteService: service.NewFavoriteService(repos.Favorites, repos.Recipes, publisher),
	}, nil
}

// App builds the Fiber application on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "DishSwap API",
		BodyLimit:    int(s.config.MaxUploadBytes()) + 1024*1024,
		ErrorHandler: ErrorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing first so the trace id reaches the request context.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// 100 requests per minute per IP.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				&models.AppError{Code: models.CodeRateLimited, Message: "Too many requests, please try again later."})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	auth := middleware.AuthRequired(s.verifier)
	optionalAuth := middleware.OptionalAuth(s.verifier)
	upload := middleware.SingleImageUpload("image", s.config.MaxUploadBytes())

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "DishSwap Backend Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	users := api.Group("/users")
	users.Post("/", middleware.RateLimit(s.redis, s.config.Env, 5, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(s.redis, s.config.Env, 10, 5*time.Minute, "login"), s.Login)
	users.Get("/", s.GetUsers)

	api.Get("/profile", auth, s.GetProfile)
	api.Get("/features", optionalAuth, s.GetFeatureFlags)

	recipes := api.Group("/recipes")
	recipes.Get("/", optionalAuth, s.GetRecipes)
	recipes.Post("/", auth, middleware.RateLimit(s.redis, s.config.Env, 10, time.Minute, "create_recipe"), upload, s.CreateRecipe)
	// Specific routes before the generic /:id routes.
	recipes.Get("/user", auth, s.GetMyRecipes)
	recipes.Get("/:id/reactions", s.GetReactions)
	recipes.Post("/:id/reactions", auth, middleware.RateLimit(s.redis, s.config.Env, 60, time.Minute, "reactions"), s.AddReaction)
	recipes.Get("/:id/comments", s.GetRecipeComments)
	recipes.Get("/:id", s.GetRecipe)
	recipes.Put("/:id", auth, upload, s.UpdateRecipe)
	recipes.Delete("/:id", auth, s.DeleteRecipe)

	comments := api.Group("/comments")
	comments.Get("/", s.GetComments)
	comments.Post("/", auth, middleware.RateLimit(s.redis, s.config.Env, 20, time.Minute, "create_comment"), s.CreateComment)

	favorites := api.Group("/favorites", auth)
	favorites.Get("/", s.GetFavorites)
	favorites.Post("/", s.AddFavorite)
	favorites.Post("/toggle", s.ToggleFavorite)
	favorites.Delete("/", s.RemoveFavorite)
	favorites.Delete("/:id", s.RemoveFavorite)
	favorites.All("/", s.FavoritesMethodNotAllowed)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.pingDB == nil {
		dbStatus = "unavailable"
	} else if err := s.pingDB(ctx); err != nil {
		middleware.Logger.WarnContext(ctx, "database readiness check failed", "error", err)
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
	overallStatus := "healthy"
	// Redis is optional: without it the API runs uncached and without per-route limits.
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "DishSwap API",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// ErrorHandler renders errors that escape handlers, including Fiber's own
// routing errors, in the standard error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		appErr := &models.AppError{Code: models.CodeInternal, Message: fe.Message}
		switch fe.Code {
		case fiber.StatusBadRequest:
			appErr.Code = models.CodeValidation
		case fiber.StatusNotFound:
			appErr.Code = models.CodeNotFound
		case fiber.StatusMethodNotAllowed:
			appErr.Code = models.CodeMethodNotAllowed
		case fiber.StatusRequestEntityTooLarge:
			appErr.Code = models.CodePayloadTooLarge
		case fiber.StatusUnsupportedMediaType:
			appErr.Code = models.CodeUnsupportedMediaType
		case fiber.StatusTooManyRequests:
			appErr.Code = models.CodeRateLimited
		}
		return models.RespondWithError(c, fe.Code, appErr)
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err, "path", c.Path())
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// Start serves on the configured port until Shutdown is called.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and waits for in-flight ones.
// Storage, Redis and the event publisher are owned and closed by the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	return s.app.ShutdownWithContext(ctx)
}
