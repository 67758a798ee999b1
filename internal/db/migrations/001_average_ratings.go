package migrations

import (
	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecomputeAverageRatings repairs any recipe whose stored average does not
// match its ratings, e.g. after a write was interrupted between the review
// and the recipe update.
//
// This migration is idempotent: consistent recipes are left untouched.
func RecomputeAverageRatings(db *gorm.DB) error {
	var recipes []models.Recipe
	if err := db.Select("id", "ratings", "average_rating").Find(&recipes).Error; err != nil {
		return err
	}

	repaired := 0
	for _, recipe := range recipes {
		want := recipe.CalculateAverageRating()
		if want == recipe.AverageRating {
			continue
		}
		err := db.Model(&models.Recipe{}).
			Where("id = ?", recipe.ID).
			UpdateColumn("average_rating", want).Error
		if err != nil {
			logger.Get().Error("failed to repair average rating",
				zap.Uint("recipe_id", recipe.ID),
				zap.Error(err))
			continue
		}
		repaired++
	}

	if repaired > 0 {
		logger.Get().Info("repaired stale average ratings", zap.Int("count", repaired))
	}
	return nil
}
