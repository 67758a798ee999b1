package repository

import (
	"strings"

	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Listing bounds.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	bulkBatchSize   = 100
)

// RecipeRepository is a repository for interacting with recipes.
type RecipeRepository struct {
	DB *gorm.DB
}

// NewRecipeRepository creates a new RecipeRepository.
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{DB: db}
}

// preloadCreator loads only the public fields of a recipe's author.
func preloadCreator(db *gorm.DB) *gorm.DB {
	return db.Preload("CreatedBy", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "username", "name")
	})
}

// Normalize clamps paging and fills the default sort.
func (f *RecipeFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	switch f.Sort {
	case SortNewest, SortOldest, SortRating:
	default:
		f.Sort = SortNewest
	}
}

func (f RecipeFilter) apply(db *gorm.DB) *gorm.DB {
	if search := strings.TrimSpace(f.Search); search != "" {
		db = db.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.Cuisine != "" {
		db = db.Where("cuisine = ?", f.Cuisine)
	}
	if f.Difficulty != "" {
		db = db.Where("difficulty = ?", f.Difficulty)
	}
	if f.IsVeg != nil {
		db = db.Where("is_veg = ?", *f.IsVeg)
	}
	if f.CreatedByID != nil {
		db = db.Where("created_by_id = ?", *f.CreatedByID)
	}
	return db
}

func (f RecipeFilter) order() string {
	switch f.Sort {
	case SortRating:
		return "average_rating DESC, created_at DESC, id DESC"
	case SortOldest:
		return "created_at ASC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

// ListRecipes returns one page of recipes matching filter and the total
// number of matches.
func (r *RecipeRepository) ListRecipes(filter RecipeFilter) ([]models.Recipe, int64, error) {
	filter.Normalize()

	var total int64
	if err := filter.apply(r.DB.Model(&models.Recipe{})).Count(&total).Error; err != nil {
		logger.Get().Error("failed to count recipes", zap.Error(err))
		return nil, 0, err
	}

	recipes := []models.Recipe{}
	err := preloadCreator(filter.apply(r.DB)).
		Order(filter.order()).
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&recipes).Error
	if err != nil {
		logger.Get().Error("failed to list recipes", zap.Error(err))
		return nil, 0, err
	}

	return recipes, total, nil
}

// GetFeaturedRecipes returns the highest rated recipes.
func (r *RecipeRepository) GetFeaturedRecipes(limit int) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	err := preloadCreator(r.DB).
		Order("average_rating DESC, created_at DESC, id DESC").
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		logger.Get().Error("failed to get featured recipes", zap.Error(err))
		return nil, err
	}
	return recipes, nil
}

// GetRecipeByID retrieves a recipe by its ID.
func (r *RecipeRepository) GetRecipeByID(recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := preloadCreator(r.DB).
		Where("id = ?", recipeID).
		First(&recipe).Error
	if err != nil {
		return nil, notFoundOr(err, "Recipe not found")
	}
	return &recipe, nil
}

// CreateRecipe creates a new recipe.
func (r *RecipeRepository) CreateRecipe(recipe *models.Recipe) error {
	err := r.DB.Create(recipe).Error
	if err != nil {
		logger.Get().Error("failed to create recipe", zap.String("title", recipe.Title), zap.Error(err))
	}
	return err
}

// CreateRecipes inserts recipes in batches within one transaction.
func (r *RecipeRepository) CreateRecipes(recipes []*models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(recipes, bulkBatchSize).Error
	})
	if err != nil {
		logger.Get().Error("failed to bulk create recipes", zap.Int("count", len(recipes)), zap.Error(err))
	}
	return err
}

// UpdateRecipe writes the user-editable fields of recipe. Ratings, source
// and ownership are left untouched.
func (r *RecipeRepository) UpdateRecipe(recipe *models.Recipe) error {
	result := r.DB.Model(recipe).
		Select("title", "ingredients", "steps", "category", "cuisine", "cooking_time",
			"difficulty", "image", "summary", "tags", "servings", "is_veg").
		Updates(recipe)
	if result.Error != nil {
		logger.Get().Error("failed to update recipe", zap.Uint("recipe_id", recipe.ID), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NotFoundError{message: "Recipe not found"}
	}
	return nil
}

// DeleteRecipe deletes a recipe together with its reviews and any favorites
// pointing at it.
func (r *RecipeRepository) DeleteRecipe(recipeID uint) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("recipe_id = ?", recipeID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_favorites WHERE recipe_id = ?", recipeID).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Recipe{}, recipeID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return NotFoundError{message: "Recipe not found"}
		}
		return nil
	})
	if err != nil && !IsNotFound(err) {
		logger.Get().Error("failed to delete recipe", zap.Uint("recipe_id", recipeID), zap.Error(err))
	}
	return err
}

// GetDistinctCategories returns every category in use, sorted.
func (r *RecipeRepository) GetDistinctCategories() ([]string, error) {
	return r.distinct("category")
}

// GetDistinctCuisines returns every cuisine in use, sorted.
func (r *RecipeRepository) GetDistinctCuisines() ([]string, error) {
	return r.distinct("cuisine")
}

func (r *RecipeRepository) distinct(column string) ([]string, error) {
	values := []string{}
	err := r.DB.Model(&models.Recipe{}).
		Where(column+" <> ''").
		Distinct().
		Order(column).
		Pluck(column, &values).Error
	if err != nil {
		logger.Get().Error("failed to list distinct values", zap.String("column", column), zap.Error(err))
		return nil, err
	}
	return values, nil
}

// CountRecipes returns the number of stored recipes.
func (r *RecipeRepository) CountRecipes() (int64, error) {
	var count int64
	err := r.DB.Model(&models.Recipe{}).Count(&count).Error
	return count, err
}
