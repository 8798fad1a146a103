package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"yamdb/database"
	"yamdb/internal/cache"
	"yamdb/internal/config"
	"yamdb/internal/handler"
	"yamdb/internal/middleware"
	"yamdb/internal/repository"
	"yamdb/internal/service"
)

func main() {
	// 1. Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// 2. Connect to the database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// 3. Rating cache; the API keeps working without Redis
	var ratingCache *cache.RatingCache
	if cfg.RedisEnabled {
		ratingCache, err = cache.NewRatingCache(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
		if err != nil {
			logger.Warn("redis unavailable, rating cache disabled", "error", err)
			ratingCache = nil
		} else {
			defer ratingCache.Close()
		}
	}

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// 5. Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, reviewRepo, ratingCache)
	reviewService := service.NewReviewService(reviewRepo, titleRepo, ratingCache)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	// 6. Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	genreHandler := handler.NewGenreHandler(genreService)
	titleHandler := handler.NewTitleHandler(titleService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	commentHandler := handler.NewCommentHandler(commentService)

	// 7. Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/check-conn", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "API is alive and database connected",
		})
	})

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	api := r.Group("/api/v1")

	public := api.Group("")
	public.Use(authLimiter.Middleware())
	authHandler.RegisterRoutes(public)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(authService, userRepo))

	userHandler.RegisterRoutes(authed)
	categoryHandler.RegisterRoutes(api, authed)
	genreHandler.RegisterRoutes(api, authed)
	titleHandler.RegisterRoutes(api, authed)
	reviewHandler.RegisterRoutes(api, authed)
	commentHandler.RegisterRoutes(api, authed)

	httpServer := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("server starting", "addr", httpServer, "env", cfg.GoEnv)
	if err := r.Run(httpServer); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelDebug
	switch cfg.LogLevel {
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}
