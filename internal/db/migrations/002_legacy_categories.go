package migrations

import (
	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/normalize"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RemapLegacyCategories rewrites recipes whose category is not a meal type,
// such as raw TheMealDB categories stored by older imports. Known TheMealDB
// categories are mapped through the normalizer and get their vegetarian flag
// recomputed; anything else falls back to the default category.
//
// This migration is idempotent: recipes with a valid category are skipped.
func RemapLegacyCategories(db *gorm.DB, n *normalize.Normalizer) error {
	var recipes []models.Recipe
	if err := db.Select("id", "category", "is_veg").
		Where("category NOT IN ?", n.Rules.Categories).
		Find(&recipes).Error; err != nil {
		return err
	}

	if len(recipes) == 0 {
		return nil
	}

	logger.Get().Info("remapping legacy recipe categories", zap.Int("count", len(recipes)))

	for _, recipe := range recipes {
		updates := map[string]interface{}{
			"category": n.MealDBCategory(recipe.Category),
		}
		if _, known := n.Rules.MealDBCategories[recipe.Category]; known {
			updates["is_veg"] = !n.Rules.IsNonVegetarian(recipe.Category)
		}

		err := db.Model(&models.Recipe{}).
			Where("id = ?", recipe.ID).
			UpdateColumns(updates).Error
		if err != nil {
			logger.Get().Error("failed to remap recipe category",
				zap.Uint("recipe_id", recipe.ID),
				zap.String("category", recipe.Category),
				zap.Error(err))
			continue // skip failed recipes rather than aborting entire migration
		}
	}

	return nil
}
