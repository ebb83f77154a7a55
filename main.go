package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LovationAdmin/foodgram-api/config"
	"github.com/LovationAdmin/foodgram-api/handlers"
	"github.com/LovationAdmin/foodgram-api/middleware"
	"github.com/LovationAdmin/foodgram-api/routes"
	"github.com/LovationAdmin/foodgram-api/services"
	"github.com/LovationAdmin/foodgram-api/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		utils.SafeInfo("No .env file found, using environment variables")
	}
	defer utils.SyncLogger()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		utils.SafeError("Invalid configuration: %v", err)
		os.Exit(1)
	}
	utils.SetProduction(cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.InitJWT(cfg.JWTSecret, cfg.AccessTokenTTL)

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.SafeError("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()
	utils.SafeInfo("Database connected successfully")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	err = config.RunMigrations(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		utils.SafeError("Failed to run migrations: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := newSessionCartStore(ctx, cfg)
	if closer, ok := sessions.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	go limiter.StartCleanup(5*time.Minute, ctx.Done())

	userService := services.NewUserService(db)
	feed := handlers.NewFeedHandler(userService)
	defer feed.M.Close()

	h := routes.Handlers{
		Auth:    &handlers.AuthHandler{Users: userService},
		Users:   &handlers.UserHandler{Users: userService},
		Catalog: handlers.NewCatalogHandler(services.NewCatalogService(db)),
		Recipes: &handlers.RecipeHandler{Recipes: services.NewRecipeService(db), Feed: feed},
		Carts:   &handlers.CartHandler{Carts: services.NewCartService(db), Sessions: sessions},
		Feed:    feed,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	allowedOrigins := []string{cfg.FrontendURL}
	utils.SafeInfo("CORS: allowing origins %v", allowedOrigins)

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.RequestLogger())
	router.Use(limiter.Middleware())

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, h)
		routes.SetupUserRoutes(v1, h)
		routes.SetupCatalogRoutes(v1, h)
		routes.SetupRecipeRoutes(v1, h)
		routes.SetupFeedRoutes(v1, h)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogStartup("Foodgram API", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.SafeError("Failed to start server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	utils.SafeInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.SafeError("Server shutdown failed: %v", err)
	}
}

// newSessionCartStore uses Redis when REDIS_ADDR is set and falls back to
// process memory otherwise.
func newSessionCartStore(ctx context.Context, cfg *config.Config) services.SessionCartStore {
	if cfg.RedisAddr != "" {
		store, err := services.NewRedisSessionCart(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.SessionCartTTL)
		if err == nil {
			utils.SafeInfo("Session carts stored in Redis at %s", cfg.RedisAddr)
			return store
		}
		utils.SafeWarn("Redis unavailable (%v), session carts fall back to memory", err)
	}

	store := services.NewMemorySessionCart(cfg.SessionCartTTL)
	go scheduleSessionCleanup(ctx, store)
	return store
}

func scheduleSessionCleanup(ctx context.Context, store *services.MemorySessionCart) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if removed := store.Cleanup(); removed > 0 {
				utils.SafeInfo("Cleaned %d expired session carts", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}
