package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/windoze95/cookiify-api/internal/cache"
	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/db"
	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/normalize"
	"github.com/windoze95/cookiify-api/internal/router"
	"github.com/windoze95/cookiify-api/internal/upstream"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// init is called before the main function.
func init() {
	// Initialize structured logger (dev mode if GIN_MODE != release)
	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)

	// Configure the runtime
	ConfigureRuntime()
}

// Entry point for the API.
func main() {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		logger.Get().Fatal("failed to load .env", zap.Error(err))
	}

	// Load the config
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	}

	// Check that all ENV variables are set
	if err := cfg.CheckConfigEnvFields(); err != nil {
		logger.Get().Fatal("missing required config fields", zap.Error(err))
	}
	if !cfg.SpoonacularConfigured() {
		logger.Get().Warn("SPOONACULAR_API_KEY is not set, spoonacular search and suggestions will report not configured")
	}

	cfg.CategoryRules, err = config.LoadCategoryRules(cfg.EnvVars.CategoryRulesPath)
	if err != nil {
		logger.Get().Fatal("failed to load category rules", zap.Error(err))
	}

	picker := normalize.RandomPicker(rand.New(rand.NewSource(time.Now().UnixNano())))

	// Connect to the database
	database, err := db.New(cfg, picker)
	if err != nil {
		logger.Get().Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := database.DB()
	if err != nil {
		logger.Get().Fatal("failed to get underlying sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	var redisClient redis.UniversalClient
	if cfg.EnvVars.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.EnvVars.RedisURL)
		if err != nil {
			logger.Get().Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		redisClient = client
	}

	// Create a new gin router
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.SetupRouter(ctx, cfg, router.Deps{
		DB:          database,
		Redis:       redisClient,
		Spoonacular: upstream.NewSpoonacularClient(cfg.EnvVars.SpoonacularAPIKey, cfg.EnvVars.SpoonacularBaseURL),
		MealDB:      upstream.NewMealDBClient(cfg.EnvVars.TheMealDBBaseURL),
		Picker:      picker,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.EnvVars.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run the server
	go func() {
		logger.Get().Info("starting server", zap.String("port", cfg.EnvVars.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get().Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Get().Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Get().Error("graceful shutdown failed", zap.Error(err))
	}
}

// ConfigureRuntime sets the number of operating system threads.
func ConfigureRuntime() {
	nuCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(nuCPU)
	logger.Get().Info("runtime configured", zap.Int("cpus", nuCPU))
}
