package db

import (
	"fmt"
	"time"

	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/db/migrations"
	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/normalize"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// New creates a new database connection and brings the schema up to date.
func New(cfg *config.Config, picker normalize.Picker) (*gorm.DB, error) {
	database, err := connectToDatabaseWithRetry(cfg.EnvVars.DatabaseUrl)
	if err != nil {
		return nil, err
	}
	if err := Migrate(database, normalize.New(cfg.CategoryRules, picker)); err != nil {
		return nil, err
	}
	return database, nil
}

// connectToDatabaseWithRetry connects to the database and retries if necessary.
func connectToDatabaseWithRetry(databaseURL string) (*gorm.DB, error) {
	logger.Get().Info("connecting to database")
	var database *gorm.DB
	var err error

	start := time.Now()
	for {
		database, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		if time.Since(start) > 1*time.Minute {
			return nil, fmt.Errorf("could not connect to database after 1 minute: %w", err)
		}
		logger.Get().Warn("could not connect to database, retrying...", zap.Error(err))
		time.Sleep(5 * time.Second)
	}

	return database, nil
}

// Migrate creates or updates every table and runs the data migrations.
func Migrate(database *gorm.DB, normalizer *normalize.Normalizer) error {
	err := database.AutoMigrate(
		&models.User{},
		&models.UserAuth{},
		&models.Recipe{},
		&models.Review{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if err := migrations.RemapLegacyCategories(database, normalizer); err != nil {
		return fmt.Errorf("remap legacy categories: %w", err)
	}
	if err := migrations.RecomputeAverageRatings(database); err != nil {
		return fmt.Errorf("recompute average ratings: %w", err)
	}
	return nil
}
