package repository

import (
	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const duplicateReviewMessage = "You have already reviewed this recipe"

// ReviewRepository is a repository for interacting with reviews.
type ReviewRepository struct {
	DB *gorm.DB
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

// GetReviewsByRecipeID lists a recipe's reviews, newest first.
func (r *ReviewRepository) GetReviewsByRecipeID(recipeID uint) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.DB.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "username", "name")
	}).
		Where("recipe_id = ?", recipeID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		logger.Get().Error("failed to get reviews", zap.Uint("recipe_id", recipeID), zap.Error(err))
		return nil, err
	}
	return reviews, nil
}

// GetReviewByID retrieves a review by its ID.
func (r *ReviewRepository) GetReviewByID(reviewID uint) (*models.Review, error) {
	var review models.Review
	if err := r.DB.First(&review, reviewID).Error; err != nil {
		return nil, notFoundOr(err, "Review not found")
	}
	return &review, nil
}

// CreateReview inserts review and appends its rating to the recipe. It fails
// with a ConflictError when the user already reviewed the recipe and with a
// NotFoundError when the recipe does not exist.
func (r *ReviewRepository) CreateReview(review *models.Review) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&recipe, review.RecipeID).Error; err != nil {
			return notFoundOr(err, "Recipe not found")
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("user_id = ? AND recipe_id = ?", review.UserID, review.RecipeID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ConflictError{message: duplicateReviewMessage}
		}

		if err := tx.Create(review).Error; err != nil {
			return conflictOr(err, duplicateReviewMessage)
		}

		recipe.SetRating(review.UserID, review.Rating)
		return saveRatings(tx, &recipe)
	})
	if err != nil {
		if !IsConflict(err) && !IsNotFound(err) {
			logger.Get().Error("failed to create review", zap.Uint("recipe_id", review.RecipeID), zap.Error(err))
		}
		return nil, err
	}
	return &recipe, nil
}

// UpdateReview saves the review's rating and comment and overwrites the
// matching rating entry on the recipe.
func (r *ReviewRepository) UpdateReview(review *models.Review) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(review).Select("rating", "comment").Updates(review)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return NotFoundError{message: "Review not found"}
		}

		if err := tx.First(&recipe, review.RecipeID).Error; err != nil {
			return notFoundOr(err, "Recipe not found")
		}
		recipe.SetRating(review.UserID, review.Rating)
		return saveRatings(tx, &recipe)
	})
	if err != nil {
		if !IsNotFound(err) {
			logger.Get().Error("failed to update review", zap.Uint("review_id", review.ID), zap.Error(err))
		}
		return nil, err
	}
	return &recipe, nil
}

// DeleteReview removes the review and its rating entry from the recipe. The
// row is hard deleted so the user may review the recipe again.
func (r *ReviewRepository) DeleteReview(review *models.Review) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().Delete(&models.Review{}, review.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return NotFoundError{message: "Review not found"}
		}

		if err := tx.First(&recipe, review.RecipeID).Error; err != nil {
			return notFoundOr(err, "Recipe not found")
		}
		recipe.RemoveRating(review.UserID)
		return saveRatings(tx, &recipe)
	})
	if err != nil {
		if !IsNotFound(err) {
			logger.Get().Error("failed to delete review", zap.Uint("review_id", review.ID), zap.Error(err))
		}
		return nil, err
	}
	return &recipe, nil
}

// saveRatings persists only the rating columns of recipe.
func saveRatings(tx *gorm.DB, recipe *models.Recipe) error {
	recipe.RecomputeAverageRating()
	return tx.Model(recipe).
		Select("ratings", "average_rating").
		Updates(map[string]interface{}{
			"ratings":        recipe.Ratings,
			"average_rating": recipe.AverageRating,
		}).Error
}
