// Command seed fills an empty recipe store with recipes pulled from
// TheMealDB and, when a key is configured, Spoonacular.
package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/db"
	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/normalize"
	"github.com/windoze95/cookiify-api/internal/repository"
	"github.com/windoze95/cookiify-api/internal/service"
	"github.com/windoze95/cookiify-api/internal/upstream"
	"go.uber.org/zap"
)

func main() {
	opts := service.DefaultSeedOptions()
	var seedVal int64

	flag.IntVar(&opts.MealDBPerCategory, "mealdb-per-category", opts.MealDBPerCategory, "recipes to fetch per TheMealDB category")
	flag.IntVar(&opts.SpoonacularPerCuisine, "spoonacular-per-cuisine", opts.SpoonacularPerCuisine, "recipes to fetch per Spoonacular cuisine")
	flag.DurationVar(&opts.Pause, "pause", opts.Pause, "delay between Spoonacular requests")
	flag.Int64Var(&seedVal, "seed", 0, "random seed for category picks (0 = random)")
	flag.Parse()

	logger.Init(os.Getenv("GIN_MODE") != "release")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		logger.Get().Fatal("failed to load .env", zap.Error(err))
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	}
	if cfg.EnvVars.DatabaseUrl == "" {
		logger.Get().Fatal("$DATABASE_URL must be set")
	}
	cfg.CategoryRules, err = config.LoadCategoryRules(cfg.EnvVars.CategoryRulesPath)
	if err != nil {
		logger.Get().Fatal("failed to load category rules", zap.Error(err))
	}

	if seedVal == 0 {
		seedVal = time.Now().UnixNano()
	}
	picker := normalize.RandomPicker(rand.New(rand.NewSource(seedVal)))

	database, err := db.New(cfg, picker)
	if err != nil {
		logger.Get().Fatal("failed to connect to database", zap.Error(err))
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	seeder := service.NewSeedService(
		cfg,
		repository.NewRecipeRepository(database),
		upstream.NewSpoonacularClient(cfg.EnvVars.SpoonacularAPIKey, cfg.EnvVars.SpoonacularBaseURL),
		upstream.NewMealDBClient(cfg.EnvVars.TheMealDBBaseURL),
		normalize.New(cfg.CategoryRules, picker),
	)

	report, err := seeder.Seed(ctx, opts)
	switch {
	case errors.Is(err, service.ErrNothingSeeded):
		logger.Get().Warn("no recipes were fetched from either provider")
		os.Exit(1)
	case err != nil:
		logger.Get().Fatal("seed failed", zap.Error(err))
	case report.Skipped:
		logger.Get().Info("recipe store is not empty, skipping seed", zap.Int64("existing", report.Existing))
	default:
		logger.Get().Info("seed complete",
			zap.Int("themealdb", report.MealDB),
			zap.Int("spoonacular", report.Spoonacular),
			zap.Int("rejected", report.Rejected),
			zap.Int("total", report.Total()),
			zap.Int64("picker_seed", seedVal))
	}
}
